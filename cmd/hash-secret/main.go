// Command hash-secret prints an argon2id hash for CABANA_ADMIN_PASSWORD_HASH.
// The secret is read from stdin so it never lands in shell history.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/cabanadebrincar/cabana-backend/pkg/config"
	"github.com/cabanadebrincar/cabana-backend/pkg/logger"
	"github.com/cabanadebrincar/cabana-backend/pkg/security"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "hash-secret", Output: os.Stderr})
	ctx := context.Background()

	_ = godotenv.Load()

	var cfg config.PasswordConfig
	if err := envconfig.Process("", &cfg); err != nil {
		logg.Error(ctx, "failed to load argon2 settings", err)
		os.Exit(1)
	}

	secret, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && secret == "" {
		logg.Error(ctx, "failed to read secret from stdin", err)
		os.Exit(1)
	}

	hash, err := security.HashSecret(strings.TrimRight(secret, "\r\n"), cfg)
	if err != nil {
		logg.Error(ctx, "failed to hash secret", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
