package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"authcore/api/handler"
	apiMiddleware "authcore/api/middleware"
	"authcore/api/routes"
	"authcore/config"
	"authcore/internal/repository"
	"authcore/internal/service"
	"authcore/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type stores struct {
	users        repository.UserRepository
	sessions     repository.SessionRepository
	securityLogs repository.SecurityLogRepository
	close        func()
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	if cfg.Development() {
		logger.SetLevel(logrus.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("store init failed")
	}
	defer repos.close()

	redisClient, err := config.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		logger.WithError(err).Fatal("redis connection failed")
	}
	if redisClient != nil {
		defer func(client *redis.Client) { _ = client.Close() }(redisClient)
	}

	accessManager := utils.JWTManager{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		TokenTTL: cfg.EffectiveTokenTTL(),
	}
	clock := service.RealClock{}

	authService, err := service.NewAuthService(
		repos.users,
		repos.sessions,
		repos.securityLogs,
		service.BcryptPasswordHasher{Cost: cfg.BcryptCost},
		service.JWTAccessIssuer{Manager: &accessManager},
		clock,
		service.AuthConfig{
			SessionTTL:          cfg.SessionTTL,
			RegisterIssuesToken: cfg.RegisterIssuesToken,
		},
		logger,
	)
	if err != nil {
		logger.WithError(err).Fatal("auth service init failed")
	}
	sessionService := service.NewSessionService(repos.sessions, repos.securityLogs, clock, logger)
	userService := service.NewUserService(repos.users, sessionService, repos.securityLogs, logger)

	service.StartSessionSweeper(ctx, sessionService, cfg.SessionSweepInterval, cfg.SessionSweepTimeout, logger)

	validate := validator.New()
	app := echo.New()
	app.HideBanner = true
	app.HidePort = true
	app.HTTPErrorHandler = handler.ErrorHandler(logger, cfg.Development())
	app.Use(echoMiddleware.Recover())
	app.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogStatus:   true,
		LogMethod:   true,
		LogURI:      true,
		LogRemoteIP: true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"status":  v.Status,
				"method":  v.Method,
				"uri":     v.URI,
				"ip":      v.RemoteIP,
				"latency": v.Latency.String(),
			})
			if v.Error != nil && v.Status >= http.StatusInternalServerError {
				entry.WithError(v.Error).Error("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))

	authMiddleware := apiMiddleware.AuthMiddleware{
		Auth: authService,
		Activity: service.SessionActivity{
			Sessions: repos.sessions,
			Redis:    redisClient,
			Throttle: cfg.ActivityThrottle,
			Clock:    clock,
		},
		Logger: logger,
	}
	router := routes.NewRouter(
		app,
		handler.NewAuthHandler(authService, validate),
		handler.NewUserHandler(userService, validate),
		handler.NewSessionHandler(sessionService, validate, logger),
		authMiddleware,
	)
	router.RegisterRoutes()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{"addr": cfg.HTTPAddr, "store": cfg.Store}).Info("server started")
		if err := app.StartServer(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("shutdown error")
	}
	logger.Info("server stopped")
}

func openStores(ctx context.Context, cfg config.Config, logger logrus.FieldLogger) (stores, error) {
	if cfg.Store == config.StoreMemory {
		logger.Warn("using in-memory store, data is lost on restart")
		memory := repository.NewMemoryStore()
		return stores{
			users:        memory.Users(),
			sessions:     memory.Sessions(),
			securityLogs: memory.SecurityLogs(),
			close:        func() {},
		}, nil
	}

	db, err := config.ConnectionDb(cfg.DatabaseURL)
	if err != nil {
		return stores{}, err
	}
	if err := config.Migrate(ctx, db); err != nil {
		return stores{}, err
	}
	logger.Info("database ready")
	return stores{
		users:        repository.NewUserRepository(db),
		sessions:     repository.NewSessionRepository(db),
		securityLogs: repository.NewSecurityLogRepository(db),
		close: func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		},
	}, nil
}
