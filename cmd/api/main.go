// cmd/api/main.go
// Main entry point for the application
// This file bootstraps all components and starts the server

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/imadgeboyega/covenant-backend/internal/auth"
	"github.com/imadgeboyega/covenant-backend/internal/common/database"
	"github.com/imadgeboyega/covenant-backend/internal/common/logger"
	"github.com/imadgeboyega/covenant-backend/internal/common/utils"
	"github.com/imadgeboyega/covenant-backend/internal/config"
	"github.com/imadgeboyega/covenant-backend/internal/dating"
	"github.com/imadgeboyega/covenant-backend/internal/discovery"
	"github.com/imadgeboyega/covenant-backend/internal/notification"
	"github.com/imadgeboyega/covenant-backend/internal/profile"
	"github.com/imadgeboyega/covenant-backend/internal/scoring"
)

func main() {
	// 1. Load environment variables
	envErr := godotenv.Load()

	// 2. Load and validate configuration
	cfg := config.Load()
	logger.Init(logger.Config{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		Caller:    cfg.LogCaller,
		Timestamp: true,
		Output:    os.Stderr,
	})
	if envErr != nil {
		logger.Debug().Err(envErr).Msg("no .env file found, using environment variables")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("configuration validation failed")
	}
	logger.Info().
		Str("environment", cfg.Environment).
		Str("store", cfg.StoreDriver).
		Msg("starting Covenant discovery and matching API")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Storage
	var (
		profiles  profile.Store
		matchRepo dating.MatchRepository
		dateRepo  dating.DateRepository
	)
	switch cfg.StoreDriver {
	case "postgres":
		db, err := database.NewPostgresDBFromURL(ctx, cfg.DatabaseURL, database.DefaultPoolConfig())
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to PostgreSQL")
		}
		defer db.Close()
		if cfg.RunMigrations {
			if err := database.Migrate(db); err != nil {
				logger.Fatal().Err(err).Msg("failed to run migrations")
			}
			logger.Info().Msg("database migrations completed")
		}
		profiles, matchRepo, dateRepo = postgresStores(db)
	default:
		logger.Warn().Msg("using in-memory store, data is lost on restart")
		profiles = profile.NewMemoryStore()
		matchRepo = dating.NewMemoryMatchRepository()
		dateRepo = dating.NewMemoryDateRepository(profiles)
	}

	// 4. Redis (optional)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := database.NewRedisClientFromURL(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("continuing without Redis")
		} else {
			redisClient = client
			defer redisClient.Close()
			logger.Info().Msg("connected to Redis")
		}
	}

	// 5. Notifications
	hub := notification.NewHub(cfg.WSAllowedOrigins)
	go hub.Run(ctx)
	bridge := notification.NewBridge(
		notification.BridgeConfig{Timeout: cfg.NotifyTimeout},
		notificationRoutes(ctx, cfg, profiles, hub, redisClient)...,
	)

	// 6. Domain services
	engine := scoring.NewEngine(scoring.Weights{
		Faith:     cfg.FaithWeight,
		Values:    cfg.ValuesWeight,
		Intention: cfg.IntentionWeight,
		Lifestyle: cfg.LifestyleWeight,
	})
	feed := discovery.NewService(profiles, engine, discovery.Config{
		DefaultPageSize:      cfg.FeedDefaultPageSize,
		MaxPageSize:          cfg.FeedMaxPageSize,
		CandidateLimit:       cfg.FeedCandidateLimit,
		ReputationMultiplier: cfg.ReputationMultiplier,
	})
	matches := dating.NewMatchService(matchRepo, profiles, bridge)
	dates := dating.NewDateService(dateRepo, matchRepo, profiles, bridge, cfg.ReputationAward)
	profileService := profile.NewService(profiles, cfg.BoostDuration)

	// 7. Background jobs
	if cfg.EnableJobs {
		dating.NewScheduler(dates, cfg.ReminderInterval, cfg.ReminderWindow, cfg.JobBatchSize).Start(ctx)
		digest := discovery.NewDigest(profiles, feed, bridge, cfg.JobBatchSize)
		discovery.NewScheduler(digest, cfg.DigestInterval).Start(ctx)
		logger.Info().
			Dur("reminder_interval", cfg.ReminderInterval).
			Dur("digest_interval", cfg.DigestInterval).
			Msg("background jobs started")
	}

	// 8. Routes
	router := mux.NewRouter()
	router.Use(logger.Middleware)

	authMiddleware := auth.NewMiddleware(cfg.JWTSecret)
	profile.RegisterRoutes(router, profile.NewHandler(profileService), authMiddleware)
	discovery.RegisterRoutes(router, discovery.NewHandler(feed), authMiddleware)
	dating.RegisterRoutes(router, dating.NewHandler(matches, dates), authMiddleware)
	notification.RegisterRoutes(router, hub, authMiddleware)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"status":      "healthy",
			"store":       cfg.StoreDriver,
			"redis":       redisClient != nil,
			"connections": hub.Connections(r.Context()),
			"time":        time.Now().UTC(),
		})
	}).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// 9. Serve
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := bridge.Close(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("pending notifications abandoned")
	}
	logger.Info().Msg("server exited")
}

func postgresStores(db *sqlx.DB) (profile.Store, dating.MatchRepository, dating.DateRepository) {
	return profile.NewPostgresStore(db),
		dating.NewPostgresMatchRepository(db),
		dating.NewPostgresDateRepository(db)
}

// notificationRoutes builds one route per enabled channel, each behind its
// own circuit breaker. The log route is always present.
func notificationRoutes(ctx context.Context, cfg *config.Config, profiles profile.Store, hub *notification.Hub, redisClient *redis.Client) []notification.Route {
	breaker := notification.BreakerConfig{
		MaxRequests:  cfg.BreakerMaxRequests,
		Interval:     cfg.BreakerInterval,
		Timeout:      cfg.BreakerTimeout,
		FailureRatio: cfg.BreakerFailureRatio,
		MinRequests:  cfg.BreakerMinRequests,
	}
	contacts := notification.NewProfileContacts(profiles)

	routes := []notification.Route{{Dispatcher: notification.LogDispatcher{}}}

	if cfg.EnableRealtimeNotifications {
		if redisClient != nil {
			// every instance relays the shared channel to its own sockets
			go func() {
				if err := hub.Relay(ctx, redisClient); err != nil {
					logger.Error().Err(err).Msg("realtime relay stopped")
				}
			}()
			routes = append(routes, notification.Route{
				Dispatcher: notification.WithBreaker(notification.NewRedisPublisher(redisClient), breaker),
			})
		} else {
			routes = append(routes, notification.Route{Dispatcher: hub})
		}
		logger.Info().Bool("redis", redisClient != nil).Msg("realtime notifications enabled")
	}

	if cfg.EnablePushNotifications {
		client, err := notification.NewFCMClient(ctx, cfg.FirebaseCredentialsFile)
		if err != nil {
			logger.Error().Err(err).Msg("push notifications disabled")
		} else {
			routes = append(routes, notification.Route{
				Dispatcher: notification.WithBreaker(notification.NewPushDispatcher(client, contacts), breaker),
				Events:     notification.PushEvents,
			})
			logger.Info().Msg("push notifications enabled")
		}
	}

	if cfg.EnableEmailNotifications {
		routes = append(routes, notification.Route{
			Dispatcher: notification.WithBreaker(
				notification.NewEmailDispatcher(notification.SendGridSender(cfg.SendGridAPIKey), cfg.EmailFrom, contacts),
				breaker,
			),
			Events: notification.EmailEvents,
		})
		logger.Info().Msg("email notifications enabled")
	}

	if cfg.EnableSMSNotifications {
		routes = append(routes, notification.Route{
			Dispatcher: notification.WithBreaker(
				notification.NewSMSDispatcher(
					notification.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken),
					cfg.TwilioFromNumber,
					contacts,
				),
				breaker,
			),
			Events: notification.SMSEvents,
		})
		logger.Info().Msg("sms notifications enabled")
	}

	return routes
}
