package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/AVVlasov/procurement-pl-sub001/internal/api"
	"github.com/AVVlasov/procurement-pl-sub001/internal/auth"
	"github.com/AVVlasov/procurement-pl-sub001/internal/config"
	"github.com/AVVlasov/procurement-pl-sub001/internal/events"
	"github.com/AVVlasov/procurement-pl-sub001/internal/logger"
	"github.com/AVVlasov/procurement-pl-sub001/internal/repository"
	"github.com/AVVlasov/procurement-pl-sub001/internal/service"
	"github.com/AVVlasov/procurement-pl-sub001/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	var cfg *config.Config
	var err error
	if cfgPath != "" {
		cfg, err = config.Load(cfgPath)
		if err != nil {
			log.Fatalf("config load: %v", err)
		}
	} else {
		cfg = config.Default()
	}

	zlog, err := logger.New(cfg.Log.Development)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer zlog.Sync()

	ctx := context.Background()

	mc, err := repository.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		zlog.Fatalw("mongo connect", "err", err)
	}
	defer func() { _ = mc.Disconnect(context.Background()) }()
	db := mc.Database(cfg.Mongo.Database)

	var store storage.FileStore
	switch cfg.Storage.Backend {
	case "s3":
		store, err = storage.NewS3Store(ctx, cfg.AWS.Region, cfg.AWS.Bucket, cfg.AWS.Endpoint, cfg.AWS.PublicRead)
	default:
		store, err = storage.NewLocalStore(cfg.Storage.Dir)
	}
	if err != nil {
		zlog.Fatalw("storage init", "backend", cfg.Storage.Backend, "err", err)
	}

	verifier, err := auth.NewVerifier(cfg.JWT.PublicKeyPath, cfg.JWT.HMACSecret)
	if err != nil {
		zlog.Fatalw("auth init", "err", err)
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
	}

	pub := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, zlog)
	defer pub.Close()

	msgRepo := repository.NewMongoMessageRepository(db)
	reqRepo := repository.NewMongoRequestRepository(db)
	prodRepo := repository.NewMongoProductRepository(db)
	compRepo := repository.NewMongoCompanyRepository(db)

	svcs := api.Services{
		Messages:  service.NewMessageService(msgRepo, pub, zlog),
		Requests:  service.NewRequestService(reqRepo, prodRepo, store, pub, zlog, cfg.MaxFileSize),
		Companies: service.NewCompanyService(compRepo, store, zlog, cfg.MaxFileSize),
		Products:  service.NewProductService(prodRepo, store, zlog, cfg.MaxFileSize),
	}

	app := api.NewServer(cfg, verifier, rdb, svcs)

	go func() {
		if err := app.Listen(fmt.Sprintf(":%d", cfg.App.Port)); err != nil {
			zlog.Fatalw("server listen", "err", err)
		}
	}()
	zlog.Infow("server started", "port", cfg.App.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	_ = app.ShutdownWithContext(shutdownCtx)
	zlog.Infow("server stopped")
}
