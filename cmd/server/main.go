package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/finance-tracker/internal/audit"
	"github.com/iliyamo/finance-tracker/internal/config"
	"github.com/iliyamo/finance-tracker/internal/database"
	"github.com/iliyamo/finance-tracker/internal/handler"
	"github.com/iliyamo/finance-tracker/internal/log"
	"github.com/iliyamo/finance-tracker/internal/repository"
	"github.com/iliyamo/finance-tracker/internal/router"
	"github.com/iliyamo/finance-tracker/internal/utils"
)

func main() {
	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		boot := log.New(log.Config{})
		boot.Error("invalid configuration", log.FieldError, err)
		os.Exit(1)
	}

	logger := log.New(log.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", log.FieldError, err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storeLog := logger.WithComponent(log.ComponentStorage)
	if err := database.Migrate(cfg); err != nil {
		return err
	}
	db, err := database.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	storeLog.Info("database ready", "driver", cfg.DBDriver)

	rdb, err := config.NewRedisClient(ctx)
	if err != nil {
		// the limiter falls back to process memory
		logger.Warn("redis unavailable, using in-memory rate limiter", log.FieldError, err)
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	var pub audit.Publisher = audit.Nop{}
	if cfg.AMQPURL != "" {
		pub = audit.NewAMQPPublisher(cfg.AMQPURL)
		logger.Info("audit events enabled", "queue", audit.QueueName)
	}

	tokens := utils.TokenService{
		AccessSecret:  cfg.AccessSecret,
		RefreshSecret: cfg.RefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	}
	users := repository.NewUserRepo(db)
	profiles := repository.NewProfileRepo(db)
	categories := repository.NewCategoryRepo(db)

	e := router.New(router.Handlers{
		Auth:         handler.NewAuthHandler(users, repository.NewTokenRepo(db), tokens, cfg.BcryptCost, pub),
		Users:        handler.NewUserHandler(users, profiles, cfg.BcryptCost, pub),
		Profiles:     handler.NewProfileHandler(profiles, pub),
		Categories:   handler.NewCategoryHandler(categories, pub),
		Transactions: handler.NewTransactionHandler(repository.NewTransactionRepo(db), categories, pub),
	}, router.Options{
		CORSOrigin: cfg.CORSOrigin,
		RateLimit:  config.LoadRateLimitConfig(),
		Redis:      rdb,
		Tokens:     tokens,
		Logger:     logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		logger.Info("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
