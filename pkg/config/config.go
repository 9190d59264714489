package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	Admin         AdminConfig
	DB            DBConfig
	Redis         RedisConfig
	Password      PasswordConfig
	RateLimit     RateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Cron          CronConfig
	MercadoPago   MercadoPagoConfig
	SMTP          SMTPConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Media         MediaConfig
	Gallery       GalleryConfig
	Notifications NotificationsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"CABANA_APP_ENV" required:"true"`
	Port         string   `envconfig:"CABANA_APP_PORT" required:"true"`
	PublicDomain string   `envconfig:"CABANA_PUBLIC_DOMAIN"`
	LogLevel     string   `envconfig:"CABANA_LOG_LEVEL" default:"info"`
	LogFormat    string   `envconfig:"CABANA_LOG_FORMAT"`
	LogWarnStack bool     `envconfig:"CABANA_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"CABANA_CORS_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"CABANA_SERVICE_KIND" default:"api"`
}

// AdminConfig holds the shared secret that gates every admin route. When
// PasswordHash is set it takes precedence over the plaintext secret.
type AdminConfig struct {
	Password     string `envconfig:"CABANA_ADMIN_PASSWORD"`
	PasswordHash string `envconfig:"CABANA_ADMIN_PASSWORD_HASH"`
}

func (a AdminConfig) Configured() bool {
	return a.Password != "" || a.PasswordHash != ""
}

type DBConfig struct {
	DSN    string `envconfig:"CABANA_DB_DSN"`
	Driver string `envconfig:"CABANA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CABANA_DB_HOST"`
	LegacyPort     int    `envconfig:"CABANA_DB_PORT"`
	LegacyUser     string `envconfig:"CABANA_DB_USER"`
	LegacyPassword string `envconfig:"CABANA_DB_PASSWORD"`
	LegacyName     string `envconfig:"CABANA_DB_NAME"`
	LegacySSLMode  string `envconfig:"CABANA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CABANA_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"CABANA_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"CABANA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CABANA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	KeepAlive       time.Duration `envconfig:"CABANA_DB_KEEPALIVE" default:"30s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CABANA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CABANA_REDIS_ADDR"`
	Password     string        `envconfig:"CABANA_REDIS_PASSWORD"`
	DB           int           `envconfig:"CABANA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CABANA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CABANA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CABANA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CABANA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CABANA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CABANA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CABANA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CABANA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CABANA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CABANA_ARGON_KEY_LEN" default:"32"`
}

type RateLimitConfig struct {
	QuoteWindow    time.Duration `envconfig:"CABANA_RATE_LIMIT_QUOTE_WINDOW" default:"10m"`
	QuoteIPLimit   int           `envconfig:"CABANA_RATE_LIMIT_QUOTE_IP_LIMIT" default:"10"`
	FeedbackWindow time.Duration `envconfig:"CABANA_RATE_LIMIT_FEEDBACK_WINDOW" default:"10m"`
	FeedbackLimit  int           `envconfig:"CABANA_RATE_LIMIT_FEEDBACK_IP_LIMIT" default:"5"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CABANA_AUTO_MIGRATE" default:"false"`
}

type CronConfig struct {
	Interval   time.Duration `envconfig:"CABANA_CRON_INTERVAL" default:"12h"`
	LockTTL    time.Duration `envconfig:"CABANA_CRON_LOCK_TTL" default:"11h"`
	JobTimeout time.Duration `envconfig:"CABANA_CRON_JOB_TIMEOUT" default:"10m"`
}

type MercadoPagoConfig struct {
	AccessToken         string        `envconfig:"CABANA_MERCADOPAGO_ACCESS_TOKEN"`
	WebhookSecret       string        `envconfig:"CABANA_MERCADOPAGO_WEBHOOK_SECRET"`
	Mock                bool          `envconfig:"CABANA_MERCADOPAGO_MOCK" default:"false"`
	Timeout             time.Duration `envconfig:"CABANA_MERCADOPAGO_TIMEOUT" default:"10s"`
	WebhookWorkers      int           `envconfig:"CABANA_WEBHOOK_WORKERS" default:"4"`
	WebhookTimeout      time.Duration `envconfig:"CABANA_WEBHOOK_TIMEOUT" default:"30s"`
	WebhookGuardTTL     time.Duration `envconfig:"CABANA_WEBHOOK_GUARD_TTL" default:"2m"`
	StatementDescriptor string        `envconfig:"CABANA_MERCADOPAGO_STATEMENT" default:"CABANA DE BRINCAR"`
}

type SMTPConfig struct {
	Host     string `envconfig:"CABANA_SMTP_HOST"`
	Port     int    `envconfig:"CABANA_SMTP_PORT" default:"465"`
	Username string `envconfig:"CABANA_SMTP_USERNAME"`
	Password string `envconfig:"CABANA_SMTP_PASSWORD"`
	From     string `envconfig:"CABANA_SMTP_FROM"`
	SSL      bool   `envconfig:"CABANA_SMTP_SSL" default:"true"`
}

func (s SMTPConfig) Configured() bool {
	return s.Host != "" && s.From != ""
}

type GCPConfig struct {
	ProjectID              string `envconfig:"CABANA_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"CABANA_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"CABANA_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"CABANA_GCS_BUCKET_NAME"`
	PublicBase string `envconfig:"CABANA_GCS_PUBLIC_BASE" default:"https://storage.googleapis.com"`
	Prefix     string `envconfig:"CABANA_GCS_PREFIX"`
}

type MediaConfig struct {
	MaxUploadMB     int    `envconfig:"CABANA_MAX_UPLOAD_MB" default:"8"`
	MaxFeedbackPics int    `envconfig:"CABANA_MAX_FEEDBACK_PHOTOS" default:"6"`
	LocalDir        string `envconfig:"CABANA_UPLOAD_DIR" default:"public/uploads"`
}

// MaxUploadBytes converts the configured per-file limit into bytes.
func (m MediaConfig) MaxUploadBytes() int64 {
	if m.MaxUploadMB <= 0 {
		return 0
	}
	return int64(m.MaxUploadMB) << 20
}

type GalleryConfig struct {
	Dir string `envconfig:"CABANA_GALLERY_DIR" default:"public/fotos"`
}

type NotificationsConfig struct {
	QueueSize int `envconfig:"CABANA_NOTIFICATIONS_QUEUE_SIZE" default:"64"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	driver := strings.ToLower(strings.TrimSpace(db.Driver))
	if driver == DriverSQLite {
		db.DSN = defaultSQLiteDSN
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	if driver == DriverMySQL {
		db.DSN = db.mysqlDSN()
		return nil
	}

	port := db.LegacyPort
	if port == 0 {
		port = 5432
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, port),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

// mysqlDSN follows the go-sql-driver format: user:pass@tcp(host:port)/name?params
func (db *DBConfig) mysqlDSN() string {
	port := db.LegacyPort
	if port == 0 {
		port = 3306
	}
	creds := db.LegacyUser
	if db.LegacyPassword != "" {
		creds = creds + ":" + db.LegacyPassword
	}
	return fmt.Sprintf("%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC", creds, db.LegacyHost, port, db.LegacyName)
}
