package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pinpal-backend/internal/config"
	"pinpal-backend/internal/handlers"
	"pinpal-backend/internal/middleware"
	"pinpal-backend/internal/notify"
	"pinpal-backend/internal/repository"
	"pinpal-backend/internal/services"
	"pinpal-backend/internal/sms"
	"pinpal-backend/internal/storage"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Create tables on first run
	if err := repository.EnsureSchema(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure schema")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	friendshipRepo := repository.NewFriendshipRepository(db)
	pinRepo := repository.NewPinRepository(db)
	likeRepo := repository.NewLikeRepository(db)

	// Initialize external clients
	photoStore, err := storage.NewS3PhotoStore(context.Background(), cfg.AWS)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create photo store")
	}

	var notifier services.Notifier
	if cfg.APNS.KeyFile != "" {
		apnsNotifier, err := notify.NewAPNSNotifier(cfg.APNS)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create APNs client")
		}
		notifier = apnsNotifier
	} else {
		log.Warn().Msg("APNs not configured, push notifications disabled")
	}

	smsVerifier := sms.NewTwilioVerifier(cfg.Twilio)

	// Initialize services
	userService := services.NewUserService(userRepo, photoStore, cfg.JWT.Secret)
	verificationService := services.NewVerificationService(userRepo, smsVerifier)
	friendshipService := services.NewFriendshipService(friendshipRepo, userRepo, notifier)
	pinService := services.NewPinService(pinRepo, likeRepo, userRepo, photoStore, notifier)
	feedService := services.NewFeedService(
		pinRepo,
		cfg.Feed.PublicSampleSize,
		rand.New(rand.NewSource(time.Now().UnixNano())),
	)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, verificationService)
	userHandler := handlers.NewUserHandler(userService)
	pinHandler := handlers.NewPinHandler(pinService)
	friendshipHandler := handlers.NewFriendshipHandler(friendshipService)
	feedHandler := handlers.NewFeedHandler(feedService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api/user", func(r chi.Router) {
		// Public routes
		r.Get("/", authHandler.Welcome)
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
		r.Post("/send-verification", authHandler.SendVerification)
		r.Get("/username_exists/{username}", userHandler.UsernameExists)
		r.Get("/phone_no_exists/{phone_no}", userHandler.PhoneExists)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(userService))

			r.Post("/verify-code", authHandler.VerifyCode)
			r.Get("/search/{query}", userHandler.Search)

			r.Route("/users/{user_id}", func(r chi.Router) {
				r.Get("/info", userHandler.GetInfo)
				r.Post("/token", userHandler.SaveDeviceToken)
				r.Put("/update", userHandler.Update)
				r.Put("/update_profile_pic", userHandler.UpdateProfilePic)

				r.Get("/pins", pinHandler.List)
				r.Get("/pins/public", feedHandler.PublicPins)
				r.Get("/pins/tagged", feedHandler.TaggedPins)
				r.Get("/pins/friends", feedHandler.FriendPins)
				r.Post("/pin/add", pinHandler.Add)
				r.Get("/pin/{pin_id}/info", pinHandler.Get)
				r.Put("/pin/{pin_id}/update", pinHandler.Update)
				r.Patch("/pin/{pin_id}/update_loc", pinHandler.UpdateLocation)
				r.Delete("/pin/{pin_id}/delete", pinHandler.Delete)

				r.Get("/requests", friendshipHandler.Requests)
				r.Get("/friends", friendshipHandler.Friends)
				r.Get("/friends/recommended", friendshipHandler.Recommended)
				r.Get("/request/{target_id}/status", friendshipHandler.Status)
				r.Post("/request/{target_id}/create", friendshipHandler.Create)
				r.Patch("/request/{target_id}/accept", friendshipHandler.Accept)
				r.Delete("/request/{target_id}/delete", friendshipHandler.Delete)
			})

			r.Route("/pins/{pin_id}", func(r chi.Router) {
				r.Get("/likes", pinHandler.Likes)
				r.Post("/user/{user_id}/like", pinHandler.Like)
				r.Delete("/user/{user_id}/unlike", pinHandler.Unlike)
			})
		})
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
