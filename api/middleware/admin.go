package middleware

import (
	"net/http"

	"github.com/cabanadebrincar/cabana-backend/api/responses"
	"github.com/cabanadebrincar/cabana-backend/pkg/config"
	"github.com/cabanadebrincar/cabana-backend/pkg/logger"
	"github.com/cabanadebrincar/cabana-backend/pkg/security"
)

// AdminPasswordHeader carries the shared admin secret.
const AdminPasswordHeader = "x-admin-password"

const unauthorizedMessage = "Senha incorreta!"

// AdminAuth gates a route group behind the shared admin secret. An argon2id
// hash, when configured, is verified instead of the plaintext secret.
func AdminAuth(cfg config.AdminConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			provided := r.Header.Get(AdminPasswordHeader)
			if provided == "" || !adminSecretMatches(cfg, provided) {
				if logg != nil {
					logg.Warn(logg.WithFields(ctx, map[string]any{"ip": clientIP(r)}), "admin.auth.rejected")
				}
				responses.WriteMessage(w, http.StatusUnauthorized, unauthorizedMessage)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func adminSecretMatches(cfg config.AdminConfig, provided string) bool {
	if cfg.PasswordHash != "" {
		ok, err := security.VerifySecret(provided, cfg.PasswordHash)
		return err == nil && ok
	}
	return security.SecretEquals(provided, cfg.Password)
}
