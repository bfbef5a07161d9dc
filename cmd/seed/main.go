package main

import (
	"context"
	"flag"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leonid6372/cars-bot/internal/common/config"
	"github.com/leonid6372/cars-bot/internal/common/repositories/postgres"
	"github.com/leonid6372/cars-bot/internal/promo"
	"github.com/leonid6372/cars-bot/migrations"
	"github.com/leonid6372/cars-bot/pkg/errs"
	"github.com/leonid6372/cars-bot/pkg/goosemigrate"
	"github.com/leonid6372/cars-bot/pkg/log"
	"go.uber.org/zap"
)

// seed replaces every promo code with the ones listed in the config.
func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "debug.yaml", "bot config path")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg := config.GetConfig(configPath)

	if err := log.Setup(cfg.Log.Level, cfg.Log.Encoding, cfg.Log.File); err != nil {
		log.Fatal("logger setup failed", zap.Error(err))
	}

	loc, err := cfg.GetLocation()
	if err != nil {
		log.Fatal("location loading failed", zap.Error(err))
	}

	log.Info("init postgres...")
	pool, err := pgxpool.New(ctx, cfg.GetPostgresURL())
	if err != nil {
		log.Fatal("postgres init failed", zap.Error(err))
	}
	defer pool.Close()

	if err := goosemigrate.NewMigrator(cfg.GetPostgresURL(), migrations.FS, ".", cfg.Postgres.Schema).Up(); err != nil {
		log.Fatal("migrations up failed", zap.Error(err))
	}

	service := promo.NewService(postgres.NewPromocodesRepository(pool), &cfg.Promo, loc)

	codes, err := service.Seed(ctx, cfg.Promo.Codes, time.Now())
	if err != nil {
		log.Fatal("promocodes seeding failed", errs.Field(err))
	}

	log.Info("finish", zap.Int("promocodes", len(codes)))
}
