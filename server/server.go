package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"riseup/config"
	"riseup/db"
	"riseup/logger"
	"riseup/mailer"
	"riseup/model"
	"riseup/repository"
	"riseup/session"
	"riseup/storage"

	"github.com/gorilla/mux"
)

// Start boots the API server: config, logging, backing stores, routes, then
// serves until SIGINT/SIGTERM and shuts down gracefully.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})
	logger.Info("Starting RiseUp Creators server", logger.String("addr", cfg.ServerAddr))

	if err := db.ConnectDB(cfg); err != nil {
		logger.Fatal("Failed to connect to MySQL", logger.ErrorField(err))
	}
	if err := db.InitDB(); err != nil {
		logger.Fatal("Failed to initialize database schema", logger.ErrorField(err))
	}
	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Fatal("Failed to connect GORM", logger.ErrorField(err))
	}
	if err := db.AutoMigrateModels(&model.Playlist{}, &model.PlaylistTrack{}, &model.Like{}); err != nil {
		logger.Fatal("Failed to migrate models", logger.ErrorField(err))
	}
	if err := db.ConnectRedis(cfg); err != nil {
		logger.Fatal("Failed to connect to Redis", logger.ErrorField(err))
	}
	defer db.CloseRedis()
	defer db.CloseGormDB()

	media, err := storage.NewMinioStore(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to MinIO", logger.ErrorField(err))
	}

	handler := NewAPIHandler(
		repository.NewMySQLUserRepository(db.DB),
		repository.NewMySQLTrackRepository(db.DB),
		repository.NewGormPlaylistRepository(db.GormDB),
		repository.NewGormLikeRepository(db.GormDB),
		session.NewRedisStore(db.RedisClient, cfg.SessionTTL),
		media,
		mailer.New(cfg),
		cfg,
	)

	// Mutable settings (log level, admin allow list) follow the .env file.
	watcher, err := config.NewWatcher(".env")
	if err != nil {
		logger.Warn("Config watcher unavailable", logger.ErrorField(err))
	} else {
		watcher.OnChange(func(cfg *config.Config) {
			logger.SetLevel(logger.LogLevel(cfg.LogLevel))
			handler.ReloadConfig(cfg)
			logger.Info("Configuration reloaded", logger.String("logLevel", cfg.LogLevel))
		})
		watcher.Start()
		defer watcher.Stop()
	}

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      newRouter(handler),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", logger.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", logger.ErrorField(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", logger.ErrorField(err))
	}
	logger.Info("Server stopped")
}

// newRouter wires every API route onto a gorilla/mux router with the shared
// middleware stack.
func newRouter(h *APIHandler) http.Handler {
	r := mux.NewRouter()
	r.Use(CORSMiddleware)
	r.Use(RequestLogMiddleware)
	r.Use(h.SessionMiddleware)

	api := r.PathPrefix("/api").Subrouter()

	// Auth.
	api.HandleFunc("/auth/signup", h.SignupHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/auth/login", h.LoginHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/auth/logout", h.LogoutHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/auth/user", h.RequireAuth(h.CurrentUserHandler)).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/auth/profile", h.RequireAuth(h.UpdateProfileHandler)).Methods(http.MethodPut, http.MethodOptions)
	api.HandleFunc("/auth/send-otp", h.SendOTPHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/auth/verify-otp", h.VerifyOTPHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/auth/reset-password", h.ResetPasswordHandler).Methods(http.MethodPost, http.MethodOptions)

	// Catalog.
	api.HandleFunc("/tracks", h.ListTracksHandler).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/tracks/search", h.SearchTracksHandler).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/tracks/{id:[0-9]+}", h.GetTrackHandler).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/tracks/{id:[0-9]+}/play", h.IncrementPlaysHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/tracks/{id:[0-9]+}/like", h.RequireAuth(h.ToggleLikeHandler)).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/tracks/{id:[0-9]+}/like", h.RequireAuth(h.LikeStatusHandler)).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/liked-songs", h.RequireAuth(h.LikedSongsHandler)).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/genres", h.GenresHandler).Methods(http.MethodGet, http.MethodOptions)

	// Playlists.
	api.HandleFunc("/playlists", h.RequireAuth(h.ListPlaylistsHandler)).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/playlists", h.RequireAuth(h.CreatePlaylistHandler)).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/playlists/{id:[0-9]+}", h.RequireAuth(h.GetPlaylistHandler)).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/playlists/{id:[0-9]+}", h.RequireAuth(h.DeletePlaylistHandler)).Methods(http.MethodDelete, http.MethodOptions)
	api.HandleFunc("/playlists/{id:[0-9]+}/tracks", h.RequireAuth(h.AddPlaylistTrackHandler)).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/playlists/{id:[0-9]+}/tracks/{trackId:[0-9]+}", h.RequireAuth(h.RemovePlaylistTrackHandler)).Methods(http.MethodDelete, http.MethodOptions)

	// Admin.
	api.HandleFunc("/admin/tracks", h.RequireAdmin(h.UploadTrackHandler)).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/admin/tracks", h.RequireAdmin(h.ListAdminTracksHandler)).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/admin/tracks/{id:[0-9]+}", h.RequireAdmin(h.DeleteTrackHandler)).Methods(http.MethodDelete, http.MethodOptions)

	return r
}
