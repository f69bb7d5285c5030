// @title Trip Planner Backend API
// @version 1.0
// @description Trip planning API: itineraries, expenses in BRL, checklists, collaborators and reminders
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	_ "TRIPPLANNER_BACK-END/docs" // This is required for swagger
	"TRIPPLANNER_BACK-END/internal/ai"
	"TRIPPLANNER_BACK-END/internal/config"
	"TRIPPLANNER_BACK-END/internal/currency"
	"TRIPPLANNER_BACK-END/internal/enrichment"
	"TRIPPLANNER_BACK-END/internal/handlers"
	"TRIPPLANNER_BACK-END/internal/logger"
	"TRIPPLANNER_BACK-END/internal/mailer"
	"TRIPPLANNER_BACK-END/internal/reminders"
	"TRIPPLANNER_BACK-END/internal/repository/postgres"
	"TRIPPLANNER_BACK-END/internal/routes"
	"TRIPPLANNER_BACK-END/internal/storage"
)

func newRepos(pool *pgxpool.Pool) *handlers.Repos {
	return &handlers.Repos{
		Tx:            postgres.NewTxManager(pool),
		Users:         postgres.NewUserRepository(pool),
		Trips:         postgres.NewTripRepository(pool),
		Collaborators: postgres.NewCollaboratorRepository(pool),
		Items:         postgres.NewItemRepository(pool),
		Expenses:      postgres.NewExpenseRepository(pool),
		Checklists:    postgres.NewChecklistRepository(pool),
		Attachments:   postgres.NewAttachmentRepository(pool),
		Photos:        postgres.NewPhotoRepository(pool),
		Settings:      postgres.NewSettingsRepository(pool),
		AccessLogs:    postgres.NewAccessLogRepository(pool),
		Verifications: postgres.NewVerificationRepository(pool),
	}
}

// openRedis returns nil when REDIS_ADDR is empty or unreachable.
func openRedis(ctx context.Context, cfg config.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.L().Warnf("redis %s unreachable, reminder lock disabled: %v", cfg.Addr, err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.L().Fatalf("load config: %v", err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	loc := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Connect(ctx, cfg, "trip-planner-backend")
	if err != nil {
		logger.L().Fatalf("database: %v", err)
	}
	defer pool.Close()
	repos := newRepos(pool)

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.L().Fatalf("storage: %v", err)
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	// --- Adapters ---
	conv := currency.NewConverter(currency.NewAwesomeClient(cfg.Provider.QuoteBaseURL, cfg.Provider.HTTPTimeout))
	geocoder := enrichment.NewGeocodeClient(cfg.Provider.GeocodeBaseURL, repos.Settings, cfg.Provider.HTTPTimeout)
	forecaster := enrichment.NewWeatherClient(cfg.Provider.WeatherBaseURL, repos.Settings, cfg.Provider.HTTPTimeout)
	enricher := enrichment.NewEnricher(geocoder, forecaster, repos.Items, loc)
	llm := ai.NewClient(cfg.Provider.LLMBaseURL, cfg.Provider.LLMModel, repos.Settings, cfg.Provider.LLMTimeout)
	mail := mailer.New(repos.Settings, cfg.DefaultFromEmail)

	checks := map[string]handlers.HealthCheck{"postgres": pool.Ping}
	var locker reminders.Locker
	if rdb := openRedis(ctx, cfg.Redis); rdb != nil {
		defer rdb.Close()
		locker = reminders.NewRedisLocker(rdb)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	reminderJob := reminders.NewJob(repos.Items, mail, locker, cfg.Server.BaseURL, loc)
	enrichWorker := enrichment.NewWorker(repos.Items, enricher, cfg.Workers.EnrichmentInterval, cfg.Workers.EnrichmentHorizon, cfg.Workers.EnrichmentBatch)

	// --- HTTP Handlers ---
	h := &routes.Handlers{
		Health:         handlers.NewHealthHandler(checks),
		Auth:           handlers.NewAuthHandler(repos, &cfg.JWT),
		GoogleAuth:     handlers.NewGoogleAuthHandler(repos, cfg),
		ForgotPassword: handlers.NewForgotPasswordHandler(repos, mail, &cfg.JWT),
		Profile:        handlers.NewProfileHandler(repos),
		Trips:          handlers.NewTripsHandler(repos, store, conv, loc),
		Collaborators:  handlers.NewCollaboratorsHandler(repos),
		Items:          handlers.NewItemsHandler(repos, store, enricher, conv, loc),
		Expenses:       handlers.NewExpensesHandler(repos, conv, loc),
		Checklist:      handlers.NewChecklistHandler(repos),
		Files:          handlers.NewFilesHandler(repos, store, cfg.Server.MaxUploadBytes, loc),
		Exports:        handlers.NewExportsHandler(repos, conv, loc),
		AI:             handlers.NewAIHandler(repos, llm, loc),
		Admin:          handlers.NewAdminHandler(repos),
		Settings:       handlers.NewSettingsHandler(repos, mail),
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           c.Handler(routes.NewRouter(h, &cfg.JWT, repos.Users)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// --- HTTP Server + Graceful Shutdown ---
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.L().Infof("HTTP server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error { return enrichWorker.Run(gctx) })
	g.Go(func() error { return reminderJob.Loop(gctx, cfg.Workers.ReminderInterval) })
	g.Go(func() error {
		<-gctx.Done()
		logger.L().Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.L().Errorf("server stopped with error: %v", err)
		os.Exit(1)
	}
	logger.L().Info("Server stopped.")
}
