package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-storefront-service/config"
	"github.com/fekuna/omnipos-storefront-service/internal/platform/cache"
	"github.com/fekuna/omnipos-storefront-service/internal/platform/logger"
	"github.com/fekuna/omnipos-storefront-service/internal/platform/postgres"

	catH "github.com/fekuna/omnipos-storefront-service/internal/category/handler"
	catRepoPkg "github.com/fekuna/omnipos-storefront-service/internal/category/repository"
	catUCPkg "github.com/fekuna/omnipos-storefront-service/internal/category/usecase"

	navClientPkg "github.com/fekuna/omnipos-storefront-service/internal/navigation/client"
	navH "github.com/fekuna/omnipos-storefront-service/internal/navigation/handler"
	"github.com/fekuna/omnipos-storefront-service/internal/navigation/tree"
	navUCPkg "github.com/fekuna/omnipos-storefront-service/internal/navigation/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const navigationService = "omnipos.storefront.v1.NavigationService"

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}

	if cfg.Server.AppEnv == "development" || cfg.Server.AppEnv == "dev" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	e := newRouter(cfg.Server.AllowOrigins)

	// 3. Catalog origin (optional): Postgres + Redis behind /categories
	if cfg.Origin.Enabled {
		db, err := postgres.NewPostgres(&postgres.Config{
			Host:            cfg.Postgres.Host,
			Port:            cfg.Postgres.Port,
			User:            cfg.Postgres.User,
			Password:        cfg.Postgres.Password,
			DBName:          cfg.Postgres.DBName,
			SSLMode:         cfg.Postgres.SSLMode,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
			ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
		})
		if err != nil {
			appLogger.Fatal("Could not connect to database", zap.Error(err))
		}
		defer db.Close()
		appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

		catRepo := catRepoPkg.NewPGRepository(db)
		if cfg.Origin.AutoMigrate {
			if err := catRepo.Migrate(context.Background()); err != nil {
				appLogger.Fatal("Could not migrate categories table", zap.Error(err))
			}
		}

		var redisClient *cache.RedisClient
		if cfg.Origin.CacheEnabled {
			redisClient, err = cache.NewRedisClient(&cache.Config{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			if err != nil {
				// serve straight from Postgres
				appLogger.Warn("Could not connect to Redis, category cache disabled", zap.Error(err))
				redisClient = nil
			} else {
				defer redisClient.Close()
				appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
			}
		}

		catUC := catUCPkg.NewCategoryUseCase(catRepo, redisClient, cfg.Origin.CacheTTL, appLogger)
		catH.NewCategoryHandler(catUC, appLogger).Register(e)
		appLogger.Info("Catalog origin enabled")
	}

	// 4. Navigation: fetcher -> tree builder -> handler
	navClient, err := navClientPkg.NewClient(navClientPkg.Config{
		BaseURL:     cfg.Upstream.BaseURL,
		Path:        cfg.Upstream.Path,
		Timeout:     cfg.Upstream.Timeout,
		MaxAttempts: cfg.Upstream.MaxAttempts,
		BackoffStep: cfg.Upstream.BackoffStep,
	}, &http.Client{}, appLogger)
	if err != nil {
		appLogger.Fatal("Could not create categories client", zap.Error(err))
	}
	appLogger.Info("Navigation upstream configured", zap.String("endpoint", navClient.Endpoint()))

	navUC := navUCPkg.NewNavigationUseCase(navClient, tree.NewBuilder(), appLogger)
	navH.NewNavigationHandler(navUC, appLogger).Register(e.Group("/api/navigation"))

	// 5. gRPC health + reflection
	port := cfg.Server.GRPCPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	lis, err := net.Listen("tcp", port)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	appLogger.Info("Starting gRPC server", zap.String("port", port))
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve grpc", zap.Error(err))
		}
	}()

	// 6. Start HTTP server
	httpPort := cfg.Server.HTTPPort
	if !strings.HasPrefix(httpPort, ":") {
		httpPort = ":" + httpPort
	}

	appLogger.Info("Starting HTTP server", zap.String("port", httpPort))
	go func() {
		if err := e.Start(httpPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve http", zap.Error(err))
		}
	}()

	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(navigationService, healthpb.HealthCheckResponse_SERVING)

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		appLogger.Error("HTTP shutdown failed", zap.Error(err))
	}
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
}
