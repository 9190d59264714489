package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/cabanadebrincar/cabana-backend/pkg/config"
	"github.com/cabanadebrincar/cabana-backend/pkg/db"
	"github.com/cabanadebrincar/cabana-backend/pkg/logger"
	"github.com/cabanadebrincar/cabana-backend/pkg/migrate"
)

type flags struct {
	dir     string
	name    string
	version string
}

// offline commands work on the migrations directory only.
var offline = map[string]func(f flags) error{
	"create": func(f flags) error {
		if f.name == "" {
			return fmt.Errorf("missing -name")
		}
		paths, err := migrate.CreateSQLMigration(f.dir, f.name, time.Now())
		for _, path := range paths {
			fmt.Println("created migration:", path)
		}
		return err
	},
	"validate": func(f flags) error {
		if err := migrate.ValidateDir(f.dir); err != nil {
			return err
		}
		fmt.Println("migration validation passed")
		return nil
	},
}

type gooseCmd func(ctx context.Context, sqlDB *sql.DB, driver string, f flags) error

func goose(command string) gooseCmd {
	return func(ctx context.Context, sqlDB *sql.DB, driver string, f flags) error {
		return migrate.Run(ctx, sqlDB, driver, f.dir, command)
	}
}

var online = map[string]gooseCmd{
	"up":     goose("up"),
	"down":   goose("down"),
	"status": goose("status"),
	"version": func(ctx context.Context, sqlDB *sql.DB, driver string, f flags) error {
		if f.version == "" {
			return fmt.Errorf("missing -version")
		}
		return migrate.MigrateToVersion(ctx, sqlDB, driver, f.dir, f.version)
	},
}

func commandNames() string {
	names := []string{"automigrate"}
	for name := range offline {
		names = append(names, name)
	}
	for name := range online {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, "|")
}

func main() {
	var f flags
	cmd := flag.String("cmd", "up", "migration command: "+commandNames())
	flag.StringVar(&f.dir, "dir", migrate.DefaultDir, "goose migrations directory")
	flag.StringVar(&f.name, "name", "", "migration name for -cmd=create")
	flag.StringVar(&f.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "migrate"})
	_ = godotenv.Load()

	if run, ok := offline[*cmd]; ok {
		exitOn(context.Background(), logg, *cmd, run(f))
		return
	}
	run, ok := online[*cmd]
	if !ok && *cmd != "automigrate" {
		fmt.Fprintf(os.Stderr, "unknown -cmd %q, want one of %s\n", *cmd, commandNames())
		os.Exit(2)
	}

	cfg, err := config.Load()
	exitOn(context.Background(), logg, "config", err)
	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Environment: cfg.App.Env,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"cmd":    *cmd,
		"dir":    f.dir,
		"driver": cfg.DB.Driver,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	exitOn(ctx, logg, "database", err)
	defer dbClient.Close()

	if *cmd == "automigrate" {
		exitOn(ctx, logg, *cmd, migrate.AutoMigrateModels(dbClient))
		logg.Info(ctx, "auto-migrate completed")
		return
	}

	sqlDB, err := dbClient.DB().DB()
	exitOn(ctx, logg, "sql database", err)
	exitOn(ctx, logg, *cmd, run(ctx, sqlDB, dbClient.Driver(), f))
	logg.Info(ctx, "migrate finished")
}

func exitOn(ctx context.Context, logg *logger.Logger, step string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "migrate failed: "+step, err)
	os.Exit(1)
}
