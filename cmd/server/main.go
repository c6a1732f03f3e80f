package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sheikhmaazraheel/MYR-Backend/internal/auth"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/cache"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/config"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/database"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/events"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/jobs"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/logging"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/notify"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/receipt"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/routes"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/services"
)

const shopName = "MYR"

func main() {
	logger := logging.Init(os.Getenv("GIN_MODE"), os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FILE"))
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("❌ invalid configuration", zap.Error(err))
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := database.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("❌ database unavailable", zap.Error(err))
	}
	defer store.Close(context.Background())

	rdb, err := cache.Connect(ctx, cfg.RedisHost, cfg.RedisPassword)
	if err != nil {
		logger.Fatal("❌ redis unavailable", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
	}

	if cfg.MinioEndpoint == "" {
		logger.Fatal("❌ MINIO_ENDPOINT is required for image uploads")
	}
	host, err := services.ConnectMinio(ctx, cfg)
	if err != nil {
		logger.Fatal("❌ image host unavailable", zap.Error(err))
	}
	media := services.NewMedia(host, cfg.UploadDir, cfg.MaxUploadBytes)

	var index services.ProductIndex
	if es, err := services.ConnectElastic(cfg); err != nil {
		logger.Warn("⚠️ search index unavailable", zap.Error(err))
	} else if es != nil {
		index = es
	}

	var emitter events.Emitter = events.LogEmitter{}
	if len(cfg.KafkaBrokers) > 0 {
		k, err := events.NewKafkaEmitter(cfg.KafkaBrokers, cfg.KafkaReconcileTopic)
		if err != nil {
			logger.Warn("⚠️ kafka unavailable, reconciliation events go to the log", zap.Error(err))
		} else {
			defer k.Close()
			emitter = k
		}
	}

	sessionStore, err := auth.NewStore(rdb, cfg.SessionSecret, cfg.UploadDir, cfg.CookieSecure)
	if err != nil {
		logger.Fatal("❌ session store", zap.Error(err))
	}
	authenticator, err := auth.NewAuthenticator(cfg.AdminUsername, cfg.AdminPasswordHash)
	if err != nil {
		logger.Fatal("❌ admin credentials", zap.Error(err))
	}

	if len(cfg.CORSOrigins) == 0 {
		logger.Warn("⚠️ CORS_ORIGINS is empty, cross-origin admin panels will be refused")
	}

	receipts := receipt.New(shopName, cfg.DeliveryCharge)
	hub := notify.NewHub(cfg.CORSOrigins)
	senders := []notify.Sender{hub}
	if cfg.SMTPEnabled() {
		email, err := notify.NewEmailSender(cfg, receipts.Render)
		if err != nil {
			logger.Fatal("❌ smtp client", zap.Error(err))
		}
		senders = append(senders, email)
	} else {
		logger.Info("⚠️ SMTP not configured, order emails disabled")
	}

	queue := newQueue(rdb)
	worker, err := notify.NewWorker(queue, notify.WorkerOptions{
		Workers:     cfg.NotifyWorkers,
		MaxAttempts: cfg.NotifyMaxAttempts,
		Backoff:     cfg.NotifyBackoff,
	}, senders...)
	if err != nil {
		logger.Fatal("❌ notification worker", zap.Error(err))
	}
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Run(ctx)
	}()

	scheduler, err := jobs.Start(cfg.UploadDir)
	if err != nil {
		logger.Fatal("❌ scheduler", zap.Error(err))
	}

	r := gin.New()
	r.Use(gin.Recovery())
	routes.RegisterRoutes(r, routes.Deps{
		Store:       store,
		Media:       media,
		Index:       index,
		Events:      emitter,
		Auth:        authenticator,
		Sessions:    auth.NewSessions(sessionStore),
		Notifier:    notify.NewNotifier(queue, senders...),
		Receipts:    receipts,
		Hub:         hub,
		Redis:       rdb,
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("🚀 MYR backend listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("❌ server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("🛑 shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	<-scheduler.Stop().Done()
	<-workerDone
}

// newQueue keeps notifications in Redis when it is available so pending
// tasks survive a restart.
func newQueue(rdb *redis.Client) notify.Queue {
	if rdb != nil {
		return notify.NewRedisQueue(rdb)
	}
	return notify.NewMemoryQueue(1024)
}
