package main

import (
	"context"
	"flag"
	"log"
	"time"

	"devhub/internal/app"
	"devhub/internal/config"
	dbpostgres "devhub/internal/database/postgres"
	"devhub/internal/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	seed := flag.Bool("seed", false, "insert demo developers after migrating")
	dir := flag.String("dir", "", "migrations directory (defaults to DB_MIGRATIONS_DIR)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	l, err := logger.Init(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		l.Fatal("failed to connect database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	dbCfg := cfg.Database
	dbCfg.RunMigrations = true
	dbCfg.RunSeeders = *seed
	if *dir != "" {
		dbCfg.MigrationsDir = *dir
	}

	if err := app.PrepareDatabase(ctx, dbCfg, db, l); err != nil {
		l.Fatal("prepare database failed", zap.Error(err))
	}
	l.Info("database ready", zap.Bool("seeded", *seed))
}
