package main // Entry point of the room booking API

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/room-booking/internal/config"
	"github.com/iliyamo/room-booking/internal/database"
	"github.com/iliyamo/room-booking/internal/handler"
	"github.com/iliyamo/room-booking/internal/logger"
	"github.com/iliyamo/room-booking/internal/middleware"
	"github.com/iliyamo/room-booking/internal/queue"
	"github.com/iliyamo/room-booking/internal/repository"
	"github.com/iliyamo/room-booking/internal/router"
	"github.com/iliyamo/room-booking/internal/service"
	"github.com/iliyamo/room-booking/internal/utils"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	var (
		envFile   string
		migrate   bool
		hashToken bool
	)
	flagSet := pflag.NewFlagSet("room-booking", pflag.ContinueOnError)
	flagSet.StringVar(&envFile, "env-file", ".env", "load environment variables from this file if it exists")
	flagSet.BoolVar(&migrate, "migrate", false, "create the rooms and bookings tables before serving")
	flagSet.BoolVar(&hashToken, "hash-admin-token", false, "read an admin token on stdin, print its bcrypt hash and exit")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if hashToken {
		return printTokenHash(stdin, stdout)
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat, "room-booking")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	store, db, err := openStore(cfg, migrate, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var events service.EventPublisher
	if cfg.RabbitURL != "" {
		events = queue.NewPublisher(cfg.RabbitURL, log)
		consumer := queue.NewConsumer(cfg.RabbitURL, cfg.EventLogDir, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("booking consumer stopped", zap.Error(err))
			}
		}()
	} else {
		log.Info("RABBITMQ_URL not set, booking events disabled")
	}

	gate := service.NewSecretGate(cfg.AdminOverrideToken, cfg.AdminOverrideTokenHash)
	svc := service.NewBookingService(store, gate, events, log, service.Options{
		MinDuration:         time.Duration(cfg.MinBookingMinutes) * time.Minute,
		DefaultRoomCapacity: cfg.DefaultRoomCapacity,
		Timeout:             cfg.StoreTimeout,
	})

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unreachable, rate limiting and room cache disabled")
	} else {
		defer rdb.Close()
	}
	cacheCfg := config.LoadCacheConfig()
	purger := middleware.NewCachePurger(rdb, cacheCfg.Prefix)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler(log)
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.Recover())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log))

	bookings := handler.NewBookingHandler(svc, purger, log)
	router.RegisterRoutes(e, bookings)
	router.RegisterPublic(e, bookings, middleware.NewRedisCache(cacheCfg, rdb, log))
	router.RegisterAdmin(e, handler.NewAdminHandler(svc, cfg.JWTSecret, cfg.AdminSessionTTL, purger, log), cfg.JWTSecret)

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("store", cfg.StoreDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// openStore returns the configured store.  For SQL drivers the *sql.DB is
// returned as well so the caller can close it.
func openStore(cfg config.Config, migrate bool, log *zap.Logger) (service.Store, *sql.DB, error) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Warn("using in-memory store, bookings are lost on restart")
		return repository.NewMemoryStore(), nil, nil
	}

	db, err := database.Open(database.Options{
		Driver:  cfg.StoreDriver,
		User:    cfg.DBUser,
		Pass:    cfg.DBPass,
		Host:    cfg.DBHost,
		Port:    cfg.DBPort,
		Name:    cfg.DBName,
		SSLMode: cfg.DBSSLMode,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", cfg.StoreDriver, err)
	}
	if migrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := database.Migrate(ctx, db, cfg.StoreDriver); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		log.Info("schema migrated", zap.String("driver", cfg.StoreDriver))
	}

	dialect := repository.DialectMySQL
	if cfg.StoreDriver == config.DriverPostgres {
		dialect = repository.DialectPostgres
	}
	return repository.NewSQLStore(db, dialect), db, nil
}

// printTokenHash reads one line from in and writes its bcrypt hash, suitable
// for ADMIN_OVERRIDE_TOKEN_BCRYPT.
func printTokenHash(in io.Reader, out io.Writer) error {
	var token string
	if _, err := fmt.Fscanln(in, &token); err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	hash, err := utils.HashToken(token, bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, hash)
	return err
}
