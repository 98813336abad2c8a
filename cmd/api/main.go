package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/contacthub/contacthub-go/internal/config"
	"github.com/contacthub/contacthub-go/internal/handler"
	"github.com/contacthub/contacthub-go/internal/mailer"
	"github.com/contacthub/contacthub-go/internal/middleware"
	"github.com/contacthub/contacthub-go/internal/repository"
	"github.com/contacthub/contacthub-go/internal/service"
	"github.com/contacthub/contacthub-go/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := repository.NewDB(context.Background(), cfg.DatabaseDSN)
	if err != nil {
		slog.Error("database initialization failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	mail, err := mailer.NewMailer(cfg.BaseURL)
	if err != nil {
		slog.Error("mailer initialization failed", "error", err)
		os.Exit(1)
	}

	objects, err := storage.NewS3Client(context.Background(), storage.Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	})
	if err != nil {
		slog.Error("object storage initialization failed", "error", err)
		os.Exit(1)
	}

	userRepo := repository.NewUserRepository(db)
	contactRepo := repository.NewContactRepository(db)

	authService := service.NewAuthService(userRepo, mail, cfg.JWTSecret, cfg.AccessExpiry, cfg.RefreshExpiry, cfg.EmailExpiry)
	contactService := service.NewContactService(contactRepo)
	avatarService := service.NewAvatarService(userRepo, objects)

	authHandler := handler.NewAuthHandler(authService)
	contactHandler := handler.NewContactHandler(contactService)
	userHandler := handler.NewUserHandler(avatarService)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(5, time.Minute, 10))
			r.Post("/auth/signup", authHandler.HandleSignup)
			r.Post("/auth/login", authHandler.HandleLogin)
			r.Post("/auth/request_email", authHandler.HandleRequestEmail)
		})

		r.Get("/auth/refresh_token", authHandler.HandleRefresh)
		r.Get("/auth/confirmed_email/{token}", authHandler.HandleConfirmEmail)

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(cfg.JWTSecret, userRepo))

			// Read routes: no more than 10 requests per minute.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(10, time.Minute, 10))
				r.Get("/contacts", contactHandler.HandleList)
				r.Get("/contacts/birthdays", contactHandler.HandleBirthdays)
				r.Get("/contacts/{contact_id}", contactHandler.HandleGet)
				r.Get("/users/me", userHandler.HandleMe)
			})

			// Creation is capped tighter: 3 requests per 5 minutes.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(3, 5*time.Minute, 3))
				r.Post("/contacts", contactHandler.HandleCreate)
			})

			r.Put("/contacts/{contact_id}", contactHandler.HandleUpdate)
			r.Delete("/contacts/{contact_id}", contactHandler.HandleDelete)
			r.Patch("/users/avatar", userHandler.HandleUpdateAvatar)
		})
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
