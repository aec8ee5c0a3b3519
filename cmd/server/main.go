package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/GideonMwiti/garagemaster-sub000/config"
	"github.com/GideonMwiti/garagemaster-sub000/internal/auth"
	"github.com/GideonMwiti/garagemaster-sub000/internal/events"
	"github.com/GideonMwiti/garagemaster-sub000/internal/migrations"
	"github.com/GideonMwiti/garagemaster-sub000/internal/server"
	"github.com/GideonMwiti/garagemaster-sub000/internal/settings"
	"github.com/GideonMwiti/garagemaster-sub000/internal/store"
	pgstore "github.com/GideonMwiti/garagemaster-sub000/internal/store/postgres"
	"github.com/GideonMwiti/garagemaster-sub000/pkg/broker"
	"github.com/GideonMwiti/garagemaster-sub000/pkg/cache"
	"github.com/GideonMwiti/garagemaster-sub000/pkg/database/postgres"
	"github.com/GideonMwiti/garagemaster-sub000/pkg/logger"
	"github.com/GideonMwiti/garagemaster-sub000/pkg/middleware"

	invH "github.com/GideonMwiti/garagemaster-sub000/internal/inventory/handler"
	invListenerPkg "github.com/GideonMwiti/garagemaster-sub000/internal/inventory/listener"
	invUCPkg "github.com/GideonMwiti/garagemaster-sub000/internal/inventory/usecase"

	invoiceH "github.com/GideonMwiti/garagemaster-sub000/internal/invoice/handler"
	invoiceUCPkg "github.com/GideonMwiti/garagemaster-sub000/internal/invoice/usecase"

	jobH "github.com/GideonMwiti/garagemaster-sub000/internal/jobcard/handler"
	jobUCPkg "github.com/GideonMwiti/garagemaster-sub000/internal/jobcard/usecase"

	payH "github.com/GideonMwiti/garagemaster-sub000/internal/payment/handler"
	payUCPkg "github.com/GideonMwiti/garagemaster-sub000/internal/payment/usecase"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = "console"
		logConfig.Level = "debug"
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	taxRate, err := decimal.NewFromString(cfg.Billing.DefaultTaxRate)
	if err != nil {
		appLogger.Fatal("Invalid BILLING_DEFAULT_TAX_RATE", zap.String("value", cfg.Billing.DefaultTaxRate), zap.Error(err))
	}

	// 3. Connect to Database
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := migrations.Run(ctx, db); err != nil {
		appLogger.Fatal("Could not apply migrations", zap.Error(err))
	}

	// 4. Initialize Store
	txManager := pgstore.NewStore(db, cfg.Postgres.LockTimeoutMS, appLogger)
	retry := store.RetryPolicy{
		Attempts: cfg.Retry.Attempts,
		Backoff:  time.Duration(cfg.Retry.BackoffMS) * time.Millisecond,
	}

	// 5. Initialize Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	garageSettings := settings.NewCached(
		settings.NewPGProvider(db, settings.Defaults{
			TaxRate:          taxRate,
			InvoicePrefix:    cfg.Billing.InvoicePrefix,
			PaymentTermsDays: cfg.Billing.PaymentTermsDays,
		}),
		redisClient,
		time.Duration(cfg.Redis.SettingsTTL)*time.Second,
		appLogger,
	)

	// 6. Initialize Kafka
	publisher := events.Noop()
	var consumer *broker.KafkaConsumer
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.OutboundTopic,
		})
		defer producer.Close()
		publisher = events.NewKafkaPublisher(producer)

		consumer = broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.InboundTopic,
			GroupID: cfg.Kafka.GroupID,
		})
		defer consumer.Close()
		appLogger.Info("Connected to Kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("inbound_topic", cfg.Kafka.InboundTopic),
			zap.String("outbound_topic", cfg.Kafka.OutboundTopic),
		)
	}

	// 7. Initialize UseCases
	invUC := invUCPkg.NewInventoryUseCase(txManager, retry, publisher, appLogger)
	invoiceUC := invoiceUCPkg.NewInvoiceUseCase(txManager, retry, garageSettings, publisher, appLogger)
	jobUC := jobUCPkg.NewJobCardUseCase(txManager, retry, invoiceUC, publisher, appLogger)
	payUC := payUCPkg.NewPaymentUseCase(txManager, retry, publisher, appLogger)

	// 8. Start Listeners
	if consumer != nil {
		purchaseListener := invListenerPkg.NewPurchaseListener(consumer, redisClient, invUC, appLogger)
		go purchaseListener.Start(ctx)
	}

	// 9. Start HTTP Server
	router := server.NewRouter(server.Handlers{
		Inventory: invH.NewInventoryHandler(invUC, appLogger),
		JobCards:  jobH.NewJobCardHandler(jobUC, appLogger),
		Invoices:  invoiceH.NewInvoiceHandler(invoiceUC, appLogger),
		Payments:  payH.NewPaymentHandler(payUC, appLogger),
	}, auth.NewTokens(cfg.JWT.SecretKey), server.Options{AllowedOrigins: cfg.Server.AllowedOrigins}, appLogger)

	httpServer := &http.Server{
		Addr:              listenAddr(cfg.Server.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve http", zap.Error(err))
		}
	}()

	// 10. Start gRPC Server
	lis, err := net.Listen("tcp", listenAddr(cfg.Server.GRPCPort))
	if err != nil {
		appLogger.Fatal("failed to listen", zap.Error(err))
	}

	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(middleware.LoggingInterceptor(appLogger)),
	)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	go func() {
		appLogger.Info("Starting gRPC server", zap.String("addr", lis.Addr().String()))
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve grpc", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("http shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
}

func listenAddr(port string) string {
	if !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
