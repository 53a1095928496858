package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shootdesk-backend/internal/config"
	"shootdesk-backend/internal/handlers"
	"shootdesk-backend/internal/notify"
	"shootdesk-backend/internal/repository"
	"shootdesk-backend/internal/repository/postgres"
	"shootdesk-backend/internal/repository/sqlite"
	"shootdesk-backend/internal/services"
	"shootdesk-backend/internal/version"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var configPath string

// Execute runs the shootdesk command line
func Execute() {
	rootCmd := &cobra.Command{
		Use:     "shootdesk",
		Short:   "Shootdesk - restaurant photoshoot coordination backend",
		Version: version.String(),
		Long: `Shootdesk schedules restaurant photoshoots, tracks photographer availability,
walks each shoot through its workflow and aggregates photographer payouts.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config file")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(invoiceCmd())
	rootCmd.AddCommand(userCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration and sets up logging
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	setupLogger(cfg.Log.Level)
	return cfg, nil
}

// database is an opened store with its schema migration and close hooks
type database struct {
	store   *repository.Store
	migrate func(ctx context.Context) error
	close   func()
}

// openDatabase connects to the configured driver
func openDatabase(ctx context.Context, cfg *config.DatabaseConfig) (*database, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.Path).Msg("SQLite database opened")
		return &database{
			store:   sqlite.NewStore(db),
			migrate: func(ctx context.Context) error { return sqlite.Migrate(ctx, db) },
			close:   func() { db.Close() },
		}, nil

	default:
		db, err := pgxpool.New(ctx, cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.Ping(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		log.Info().Msg("Database connection established")
		return &database{
			store:   postgres.NewStore(db),
			migrate: func(ctx context.Context) error { return postgres.Migrate(ctx, db) },
			close:   db.Close,
		}, nil
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

func serve(cfg *config.Config) error {
	ctx := context.Background()

	db, err := openDatabase(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer db.close()

	if err := db.migrate(ctx); err != nil {
		return err
	}

	// Notification channels
	var sender notify.Sender
	if cfg.SMS.TwilioEnabled() {
		sender = notify.NewTwilioSender(cfg.SMS.BaseURL, cfg.SMS.AccountSID, cfg.SMS.AuthToken, cfg.SMS.FromNumber)
	} else {
		log.Warn().Msg("Twilio is not configured, SMS messages will only be logged")
		sender = notify.NewLogSender()
	}

	var pusher notify.Pusher
	if cfg.APNs.KeyFile != "" {
		apns, err := notify.NewAPNsPusher(cfg.APNs.KeyFile, cfg.APNs.KeyID, cfg.APNs.TeamID, cfg.APNs.Topic, cfg.APNs.Production)
		if err != nil {
			return err
		}
		pusher = apns
	}
	dispatcher := notify.NewDispatcher(sender, pusher, cfg.SMS.AdminPhone)

	// Initialize services
	broker := services.NewBroker()
	sessions := services.NewSessionStore(cfg.JWT.SessionTTL)
	authService := services.NewAuthService(db.store, sessions, cfg.JWT.Secret)
	availabilityService := services.NewAvailabilityService(db.store, broker, cfg.App.Location())
	shootService := services.NewShootService(db.store, availabilityService, dispatcher, broker)
	invoiceService := services.NewInvoiceService(db.store, cfg.App.RatePerShoot)
	deliverableService, err := services.NewDeliverableService(ctx, db.store, cfg.AWS)
	if err != nil {
		return err
	}
	wsHub := services.NewWSHub(broker)
	sessions.OnDelete(wsHub.DisconnectSession)

	// Setup router
	r := handlers.NewRouter(authService, handlers.Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		Shoots:       handlers.NewShootHandler(shootService),
		Availability: handlers.NewAvailabilityHandler(availabilityService),
		Invoices:     handlers.NewInvoiceHandler(invoiceService, availabilityService.Today),
		Uploads:      handlers.NewUploadHandler(deliverableService),
		Dashboard:    handlers.NewDashboardHandler(),
		WebSocket:    handlers.NewWebSocketHandler(wsHub, authService),
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
			Str("driver", cfg.Database.Driver).
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

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Let in-flight notifications finish
	shootService.Wait()

	log.Info().Msg("Server exited")
	return nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema for the configured driver",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := context.Background()
			db, err := openDatabase(ctx, &cfg.Database)
			if err != nil {
				return err
			}
			defer db.close()

			if err := db.migrate(ctx); err != nil {
				return err
			}
			log.Info().Str("driver", cfg.Database.Driver).Msg("Schema applied")
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
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
