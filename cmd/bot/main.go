package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leonid6372/cars-bot/internal/bot"
	"github.com/leonid6372/cars-bot/internal/common/clients/cryptomus"
	"github.com/leonid6372/cars-bot/internal/common/config"
	"github.com/leonid6372/cars-bot/internal/common/conversation"
	"github.com/leonid6372/cars-bot/internal/common/repositories/postgres"
	"github.com/leonid6372/cars-bot/internal/payments"
	"github.com/leonid6372/cars-bot/internal/promo"
	"github.com/leonid6372/cars-bot/internal/web"
	"github.com/leonid6372/cars-bot/migrations"
	"github.com/leonid6372/cars-bot/pkg/dictionary"
	"github.com/leonid6372/cars-bot/pkg/errs"
	"github.com/leonid6372/cars-bot/pkg/goosemigrate"
	"github.com/leonid6372/cars-bot/pkg/log"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "prod.yaml", "bot config path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := config.GetConfig(configPath)

	if err := log.Setup(cfg.Log.Level, cfg.Log.Encoding, cfg.Log.File); err != nil {
		log.Fatal("logger setup failed", zap.Error(err))
	}

	log.Info("bot starting...", zap.String("env", cfg.Env))

	loc, err := cfg.GetLocation()
	if err != nil {
		log.Fatal("location loading failed", zap.Error(err))
	}

	log.Info("init dictionary...")
	dict, err := dictionary.New(cfg.Bot.Dictionary)
	if err != nil {
		log.Fatal("dictionary init failed", zap.Error(err))
	}

	log.Info("init postgres...")
	poolCfg, err := pgxpool.ParseConfig(cfg.GetPostgresURL())
	if err != nil {
		log.Fatal("postgres config parsing failed", zap.Error(err))
	}
	poolCfg.MaxConns = cfg.Postgres.MaxConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Fatal("postgres init failed", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatal("postgres ping failed", zap.Error(err))
	}

	if err := goosemigrate.NewMigrator(cfg.GetPostgresURL(), migrations.FS, ".", cfg.Postgres.Schema).Up(); err != nil {
		log.Fatal("migrations up failed", zap.Error(err))
	}

	usersRepository := postgres.NewUsersRepository(pool)
	carsRepository := postgres.NewCarsRepository(pool)
	purchasesRepository := postgres.NewPurchasesRepository(pool)
	promocodesRepository := postgres.NewPromocodesRepository(pool)
	paymentsRepository := postgres.NewPaymentsRepository(pool)
	earningsRepository := postgres.NewEarningsRepository(pool)

	promoService := promo.NewService(promocodesRepository, &cfg.Promo, loc)

	if cfg.Promo.SeedOnStart {
		log.Info("seeding promocodes...")
		if _, err := promoService.Seed(ctx, cfg.Promo.Codes, time.Now()); err != nil {
			log.Fatal("promocodes seeding failed", errs.Field(err))
		}
	}

	var conversations conversation.Store
	if cfg.Redis.Addr != "" {
		log.Info("init redis...")
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("redis ping failed", zap.Error(err))
		}

		conversations = conversation.NewRedisStore(rdb, cfg.Bot.StateTTL)
	} else {
		conversations = conversation.NewMemoryStore(cfg.Bot.StateTTL)
	}

	var paymentsService *payments.Service
	var gateway *cryptomus.Client
	if cfg.Cryptomus.Enabled() {
		gateway = cryptomus.NewClient(cfg.Cryptomus.BaseURL, cfg.Cryptomus.MerchantID, cfg.Cryptomus.APIKey)

		paymentsService, err = payments.NewService(paymentsRepository, gateway, &cfg.Cryptomus, cfg.TopUps)
		if err != nil {
			log.Fatal("payments init failed", zap.Error(err))
		}
	} else {
		log.Warn("cryptomus is not configured, top-ups are disabled")
	}

	log.Info("init telebot...")
	b, err := bot.New(ctx, &cfg.Bot, &bot.Dependencies{
		Dictionary:          dict,
		Conversations:       conversations,
		Promo:               promoService,
		Payments:            paymentsService,
		UsersRepository:     usersRepository,
		CarsRepository:      carsRepository,
		PurchasesRepository: purchasesRepository,
		EarningsRepository:  earningsRepository,
	})
	if err != nil {
		log.Fatal("bot starting failed", zap.Error(err))
	}

	var checker *payments.Checker
	var paymentChecker web.PaymentChecker
	if paymentsService != nil {
		checker = payments.NewChecker(paymentsRepository, gateway, b, cfg.Cryptomus.CheckSpec, cfg.Bot.HandlerTimeout)
		if err := checker.Start(ctx); err != nil {
			log.Fatal("payments checker starting failed", zap.Error(err))
		}

		paymentChecker = checker
	}

	server, err := web.New(&cfg.Web, usersRepository, paymentChecker)
	if err != nil {
		log.Fatal("http server init failed", zap.Error(err))
	}

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		b.Start()
	}()
	go func() {
		defer wg.Done()
		if err := server.Run(ctx); err != nil {
			log.Error("http server failed", errs.Field(err))
			cancel()
		}
	}()

	log.Info("bot starting complete")

	<-ctx.Done()
	log.Info("bot shutting down...")

	b.Stop()
	if checker != nil {
		checker.Stop()
	}

	wg.Wait()

	log.Info("bot shut down complete")

	if err := log.Sync(); err != nil {
		log.Error("log sync failed", zap.Error(err))
	}
}
