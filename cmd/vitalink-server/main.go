package main

import (
	"context"
	crand "crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vitalink/vitalink/internal/config"
	"github.com/vitalink/vitalink/internal/domain/appointment"
	"github.com/vitalink/vitalink/internal/domain/assessment"
	"github.com/vitalink/vitalink/internal/domain/consultation"
	"github.com/vitalink/vitalink/internal/domain/observation"
	"github.com/vitalink/vitalink/internal/domain/patient"
	"github.com/vitalink/vitalink/internal/domain/provider"
	"github.com/vitalink/vitalink/internal/platform/ai"
	"github.com/vitalink/vitalink/internal/platform/db"
	"github.com/vitalink/vitalink/internal/platform/middleware"
	"github.com/vitalink/vitalink/internal/platform/seed"
	"github.com/vitalink/vitalink/internal/platform/telemetry"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "vitalink-server",
		Short: "VitaLink health platform API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			ctx := context.Background()
			pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			ctx := context.Background()
			pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo providers and patient into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.UsePostgres() {
				return fmt.Errorf("seed requires DATABASE_URL; the in-memory store is seeded at startup with SEED_ON_START=true")
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			return seed.Run(ctx, seed.Services{
				Patients:     patient.NewService(patient.NewPGRepo(pool)),
				Providers:    provider.NewService(provider.NewPGRepo(pool), nil),
				Observations: observation.NewService(observation.NewPGRepo(pool)),
			}, logger)
		},
	}
}

func connect(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if !cfg.UsePostgres() {
		return nil, fmt.Errorf("DATABASE_URL is not configured")
	}
	return db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
}

func newLogger() zerolog.Logger {
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	signingKey := []byte(cfg.SessionSigningKey)
	if len(signingKey) == 0 {
		// Dev only; Validate refuses an empty key in production.
		signingKey = randomKey()
		logger.Warn().Msg("SESSION_SIGNING_KEY not set, using an ephemeral key")
	}

	ctx := context.Background()

	var pool *pgxpool.Pool
	if cfg.UsePostgres() {
		pool, err = db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		logger.Info().Msg("connected to database")
	} else {
		logger.Warn().Msg("DATABASE_URL not set, running on the in-memory store")
	}

	// Stores. Consultations are in-memory only; sessions are short-lived
	// and rebuilt from scheduling on restart.
	var (
		patientRepo     patient.Repository
		providerRepo    provider.Repository
		appointmentRepo appointment.Repository
		observationRepo observation.Repository
	)
	if pool != nil {
		patientRepo = patient.NewPGRepo(pool)
		providerRepo = provider.NewPGRepo(pool)
		appointmentRepo = appointment.NewPGRepo(pool)
		observationRepo = observation.NewPGRepo(pool)
	} else {
		patientRepo = patient.NewMemRepo()
		providerRepo = provider.NewMemRepo()
		appointmentRepo = appointment.NewMemRepo()
		observationRepo = observation.NewMemRepo()
	}
	consultationRepo := consultation.NewMemRepo()

	// Services. The consultation store doubles as the booking lookup so
	// provider availability reflects scheduled sessions.
	patientSvc := patient.NewService(patientRepo)
	providerSvc := provider.NewService(providerRepo, consultationRepo)
	observationSvc := observation.NewService(observationRepo)
	appointmentSvc := appointment.NewService(appointmentRepo,
		appointment.ProviderDirectoryFunc(func(ctx context.Context, id uuid.UUID) (bool, error) {
			p, err := providerSvc.Get(ctx, id)
			if err != nil {
				return false, err
			}
			return p.Active(), nil
		}))
	consultationSvc := consultation.NewService(consultationRepo, providerSvc, signingKey, logger)
	assessmentSvc := assessment.NewService(assessment.NewEngine(), assessment.DefaultKnowledgeBase(), observationSvc)

	aiClient := ai.NewGeminiClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey)

	if cfg.SeedOnStart {
		if err := seed.Run(ctx, seed.Services{
			Patients: patientSvc, Providers: providerSvc, Observations: observationSvc,
		}, logger); err != nil {
			logger.Fatal().Err(err).Msg("seed failed")
		}
	}

	tp := telemetry.NewTelemetryProvider(telemetry.TelemetryConfig{
		ServiceName:    "vitalink-server",
		ServiceVersion: version,
		Environment:    cfg.Env,
	})
	defer tp.Shutdown(ctx)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(tp.TracingMiddleware())
	e.Use(tp.MetricsMiddleware())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))
	e.GET("/metrics", tp.PrometheusHandler())

	apiV1 := e.Group("/api/v1")
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	patient.NewHandler(patientSvc).RegisterRoutes(apiV1)
	provider.NewHandler(providerSvc).RegisterRoutes(apiV1)
	appointment.NewHandler(appointmentSvc).RegisterRoutes(apiV1)
	observation.NewHandler(observationSvc).RegisterRoutes(apiV1)
	assessment.NewHandler(assessmentSvc, aiClient).RegisterRoutes(apiV1)
	consultation.NewHandler(consultationSvc).RegisterRoutes(apiV1)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func randomKey() []byte {
	b := make([]byte, 32)
	_, _ = crand.Read(b)
	return []byte(hex.EncodeToString(b))
}
