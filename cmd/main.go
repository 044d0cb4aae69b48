package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"complaintdesk/dashboard/internal/alerthub"
	"complaintdesk/dashboard/internal/api/handler"
	"complaintdesk/dashboard/internal/complaint"
	"complaintdesk/dashboard/internal/config"
	"complaintdesk/dashboard/internal/localization"
	"complaintdesk/dashboard/internal/models"
	"complaintdesk/dashboard/internal/session"
	"complaintdesk/dashboard/internal/storage"
	"complaintdesk/dashboard/internal/telegram"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupLogger(cfg *config.Config) *logrus.Logger {
	l := logrus.New()
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		l.SetLevel(lvl)
	}
	if cfg.LogFormat == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l
}

// setupDependencies opens the optional Postgres and Redis backends.
func setupDependencies(ctx context.Context, cfg *config.Config, log *logrus.Entry) (*gorm.DB, *redis.Client) {
	var db *gorm.DB
	if cfg.DBEnabled {
		var err error
		db, err = gorm.Open(postgres.Open(cfg.PostgresDSN()), &gorm.Config{})
		if err != nil {
			log.Fatalf("Failed to connect PostgreSQL: %v", err)
		}
		if err := db.AutoMigrate(&models.SeenSetRecord{}); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	var rdb *redis.Client
	if cfg.RedisEnabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Fatalf("Failed to connect Redis: %v", err)
		}
	}

	log.WithFields(logrus.Fields{"postgres": db != nil, "redis": rdb != nil}).Info("backends ready")
	return db, rdb
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	if err := cfg.RequireServer(); err != nil {
		logrus.Fatalf("config: %v", err)
	}
	logger := setupLogger(cfg)
	log := logrus.NewEntry(logger)
	log.Info("Starting complaint dashboard...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. SeenSet storage
	db, rdb := setupDependencies(ctx, cfg, log)
	var store storage.Storage
	var svc *storage.Service
	if db != nil || rdb != nil {
		svc = storage.NewStorageService(db, rdb, log)
		store = svc
	} else {
		log.WithField("dir", cfg.SeenDir).Warn("no database configured, keeping seen sets on disk")
		store = storage.NewFileStore(cfg.SeenDir)
	}

	// 2. Alert hub, fanned out through Redis when available
	var broker alerthub.Broker
	if rdb != nil {
		broker = svc
	}
	hub := alerthub.NewManager(broker, log)
	go hub.Run(ctx)
	if rdb != nil {
		go hub.StartPubSubListener(ctx, svc)
	}

	// 3. Popup presenters: the dashboard hub decides, Telegram is a best-effort copy
	var mirrors []complaint.Presenter
	if cfg.TelegramBotToken != "" && cfg.TelegramAdminChatID != 0 {
		l, err := localization.Default()
		if err != nil {
			log.Fatalf("Failed to load locales: %v", err)
		}
		tg, err := telegram.NewPresenter(cfg.TelegramBotToken, cfg.TelegramAdminChatID, l, cfg.Lang, log)
		if err != nil {
			log.Fatalf("Failed to start Telegram presenter: %v", err)
		}
		mirrors = append(mirrors, tg)
	}
	notifier := complaint.NewNotifier(store, hub, log, mirrors...)

	// 4. Sessions
	sessions := session.NewRegistry()
	go sweepSessions(ctx, sessions, log)

	h := handler.NewHandler(cfg, session.NewIssuer(cfg.JWTSecret, cfg.SessionTTL), sessions, hub, notifier, log)

	server := &http.Server{
		Addr:           cfg.HTTPAddr,
		Handler:        h.Router(),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("shutdown")
		}
	}()

	log.WithField("addr", cfg.HTTPAddr).Info("listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

func sweepSessions(ctx context.Context, sessions *session.Registry, log *logrus.Entry) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(); n > 0 {
				log.WithField("expired", n).Debug("sessions swept")
			}
		}
	}
}
