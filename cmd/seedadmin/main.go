// Command seedadmin creates an admin_users row for every allow-listed email
// that does not have one yet.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"littleforest/internal/app"
	"littleforest/internal/bootstrap"
	"littleforest/internal/config"
	"littleforest/internal/util"
	"littleforest/pkg/auth"
	"littleforest/pkg/store"
)

func main() {
	_ = godotenv.Load()

	password := flag.String("password", os.Getenv("ADMIN_SEED_PASSWORD"), "initial password for new admin accounts")
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	if err := auth.ValidatePassword(*password); err != nil {
		log.Fatalf("invalid seed password: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := util.InitLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	st, err := bootstrap.OpenStore(cfg)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	if missing := bootstrap.ProbeTables(ctx, st); len(missing) > 0 {
		log.Fatalf("tables unreachable: %v", missing)
	}

	// Seeding never issues tokens; the revoker-less session store only
	// satisfies app.New.
	sessions, err := store.NewJWTSessionStore(cfg.AdminTokenSecret, time.Minute, nil, store.JWTOptions{})
	if err != nil {
		log.Fatalf("failed to init sessions: %v", err)
	}
	appCore, err := app.New(app.Config{Store: st, Sessions: sessions, AdminEmails: cfg.AdminEmails})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	failed := false
	for _, email := range appCore.AdminEmails() {
		created, err := appCore.SeedAdmin(ctx, email, *password)
		if err != nil {
			logger.Error("seed admin failed", "email", email, "err", err)
			failed = true
			continue
		}
		logger.Info("admin seeded", "email", email, "created", created)
	}
	if failed {
		os.Exit(1)
	}
}
