package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"todo-service/internal/backup"
	"todo-service/internal/config"
	"todo-service/internal/handler"
	"todo-service/internal/middleware"
	"todo-service/internal/service"
	"todo-service/internal/store"
	"todo-service/internal/store/jsonstore"
	"todo-service/internal/store/sqlstore"
	"todo-service/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize storage
	var (
		users store.UserStore
		tasks store.TaskStore
	)
	switch cfg.StoreDriver {
	case config.DriverJSON:
		js, err := jsonstore.New(cfg.DataDir, logger)
		if err != nil {
			logger.Fatalf("Failed to open json store: %v", err)
		}
		users, tasks = js, js

		if cfg.BackupSchedule != "" {
			sched, err := backup.NewScheduler(cfg.BackupSchedule, js, filepath.Join(cfg.DataDir, "backups"), logger)
			if err != nil {
				logger.Fatalf("Failed to schedule backups: %v", err)
			}
			sched.Start()
			defer sched.Stop()
		}
	case config.DriverSQLite, config.DriverPostgres:
		driver := "sqlite3"
		if cfg.StoreDriver == config.DriverPostgres {
			driver = "postgres"
		}
		ss, err := sqlstore.New(driver, cfg.DBConn, logger)
		if err != nil {
			logger.Fatalf("Failed to open %s store: %v", cfg.StoreDriver, err)
		}
		defer ss.Close()
		users, tasks = ss, ss
	}

	// Initialize layers
	var mailer service.Mailer
	if cfg.SMTPEnabled() {
		mailer = email.NewSender(cfg, logger)
	}
	svc := service.New(users, tasks, mailer, logger)
	h := handler.NewHandler(svc, logger)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.CORS)

	api := r.PathPrefix("/api").Subrouter()
	// Public routes
	api.HandleFunc("/register", h.Register).Methods("POST")
	api.HandleFunc("/login", h.Login).Methods("POST")
	// Protected routes
	authRouter := api.PathPrefix("/tasks").Subrouter()
	authRouter.Use(middleware.Auth(users, logger))
	authRouter.HandleFunc("", h.ListTasks).Methods("GET")
	authRouter.HandleFunc("", h.CreateTask).Methods("POST")
	authRouter.HandleFunc("/export", h.ExportTasks).Methods("GET")
	authRouter.HandleFunc("/{id}", h.UpdateTask).Methods("PUT")
	authRouter.HandleFunc("/{id}", h.DeleteTask).Methods("DELETE")
	// Anything else under /api is a JSON 404
	api.PathPrefix("/").HandlerFunc(h.NotFound)
	// Non-/api paths fall through to static assets
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.StaticDir)))

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Infof("Starting server on %s (store: %s)", addr, cfg.StoreDriver)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Shutdown failed: %v", err)
	}
	logger.Info("Server stopped")
}
