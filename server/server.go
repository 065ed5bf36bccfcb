package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"kedoo/config"
	"kedoo/core/events"
	"kedoo/core/lifecycle"
	"kedoo/core/notify"
	"kedoo/core/state"
	"kedoo/db"
	"kedoo/logger"
	"kedoo/repository"
	"kedoo/store"
)

// Start initializes and starts the HTTP server.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogOutputPath,
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})

	// Retune log level when .env changes, no restart needed.
	stopWatch, err := config.WatchEnv(func(vars map[string]string) {
		if level, ok := vars["LOG_LEVEL"]; ok {
			logger.SetLevel(logger.LogLevel(level))
			logger.Info("log level updated from .env", logger.String("level", level))
		}
	})
	if err != nil {
		logger.Warn("config watcher not started", logger.ErrorField(err))
	} else {
		defer stopWatch()
	}

	snapshots := openStore(cfg)
	defer db.CloseRedis()

	// The audit trail lives in MySQL regardless of the snapshot backend.
	// Required when MySQL is the backend, best-effort otherwise.
	var auditRepo *repository.AuditRepository
	if cfg.StoreBackend != "memory" {
		if err := db.ConnectDB(cfg); err != nil {
			if cfg.StoreBackend == "mysql" {
				logger.Fatal("failed to connect to database", logger.ErrorField(err))
			}
			logger.Warn("audit trail disabled, database unavailable", logger.ErrorField(err))
		} else {
			defer db.CloseDB()
			if err := db.InitDB(); err != nil {
				logger.Fatal("failed to initialize database", logger.ErrorField(err))
			}
			auditRepo = repository.NewAuditRepository()
		}
	}

	appState := state.New(snapshots, state.AdminSeed{
		ID:       cfg.AdminID,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Name:     cfg.AdminName,
	})
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	if err := appState.Load(loadCtx); err != nil {
		logger.Fatal("failed to load application state", logger.ErrorField(err))
	}
	cancelLoad()

	hub := events.NewHub()
	go hub.Run()

	notifier := notify.NewQueueNotifier(db.RedisClient, cfg.NotifyQueue, cfg.NotifyMailbox, hub)
	defer notifier.Close()

	var auditSink lifecycle.AuditSink
	if auditRepo != nil {
		auditSink = auditRepo
	}
	releaseEngine := lifecycle.NewEngine(appState, notifier, auditSink, cfg.MaxCoverBytes, cfg.MaxAudioBytes)
	ticketEngine := lifecycle.NewTicketEngine(appState)

	apiHandler := NewAPIHandler(appState, releaseEngine, ticketEngine, notifier, auditRepo, hub, cfg)

	router := mux.NewRouter()

	// CORS middleware.
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// Auth endpoints.
	router.HandleFunc("/api/auth/register", apiHandler.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/profile", apiHandler.AuthMiddleware(apiHandler.ProfileHandler)).Methods(http.MethodGet)

	// Release endpoints.
	router.HandleFunc("/api/releases", apiHandler.AuthMiddleware(apiHandler.GetReleasesHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/releases", apiHandler.AuthMiddleware(apiHandler.CreateReleaseHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/releases/drafts", apiHandler.AuthMiddleware(apiHandler.GetDraftsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/releases/{id}", apiHandler.AuthMiddleware(apiHandler.GetReleaseHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/releases/{id}", apiHandler.AuthMiddleware(apiHandler.UpdateReleaseHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/releases/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteReleaseHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/releases/{id}/submit", apiHandler.AuthMiddleware(apiHandler.SubmitReleaseHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/releases/{id}/approve", apiHandler.AuthMiddleware(apiHandler.ApproveReleaseHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/releases/{id}/reject", apiHandler.AuthMiddleware(apiHandler.RejectReleaseHandler)).Methods(http.MethodPost)

	// Ticket endpoints.
	router.HandleFunc("/api/tickets", apiHandler.AuthMiddleware(apiHandler.GetTicketsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/tickets", apiHandler.AuthMiddleware(apiHandler.CreateTicketHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/tickets/{id}/respond", apiHandler.AuthMiddleware(apiHandler.RespondTicketHandler)).Methods(http.MethodPost)

	// Theme and audit endpoints.
	router.HandleFunc("/api/theme", apiHandler.AuthMiddleware(apiHandler.GetThemeHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/theme/toggle", apiHandler.AuthMiddleware(apiHandler.ToggleThemeHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/audit", apiHandler.AuthMiddleware(apiHandler.GetAuditHandler)).Methods(http.MethodGet)

	// Live event feed for administrator dashboards.
	router.HandleFunc("/ws/events", apiHandler.AuthMiddleware(apiHandler.EventsHandler)).Methods(http.MethodGet)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting",
			logger.String("addr", cfg.ListenAddr),
			logger.String("storeBackend", cfg.StoreBackend))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("server stopped")
}

// openStore builds the snapshot store configured by STORE_BACKEND.
// The Redis connection is attempted for every backend because the
// notifier queue rides on it; only the redis backend treats a failure
// as fatal.
func openStore(cfg *config.Config) store.Store {
	if err := db.ConnectRedis(cfg); err != nil {
		if cfg.StoreBackend == "redis" {
			logger.Fatal("failed to connect to Redis", logger.ErrorField(err))
		}
		logger.Warn("Redis unavailable, notifier queue disabled", logger.ErrorField(err))
	}

	switch cfg.StoreBackend {
	case "memory":
		logger.Warn("using in-memory store; nothing will survive a restart")
		return store.NewMemoryStore()
	case "redis":
		return store.NewRedisStore(db.RedisClient)
	case "mysql":
		if err := db.ConnectGormDB(cfg); err != nil {
			logger.Fatal("failed to connect to MySQL", logger.ErrorField(err))
		}
		st, err := store.NewMySQLStore(db.GormDB)
		if err != nil {
			logger.Fatal("failed to initialize MySQL store", logger.ErrorField(err))
		}
		return st
	case "minio":
		client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
			Secure: cfg.MinioUseSSL,
			Region: cfg.MinioRegion,
		})
		if err != nil {
			logger.Fatal("failed to create MinIO client", logger.ErrorField(err))
		}
		st, err := store.NewMinioStore(client, cfg.MinioBucket, cfg.MinioRegion)
		if err != nil {
			logger.Fatal("failed to initialize MinIO store", logger.ErrorField(err))
		}
		return st
	default:
		logger.Fatal("unknown store backend", logger.String("backend", cfg.StoreBackend))
		return nil
	}
}
