package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"treesync/core/config"
	"treesync/core/database"
	"treesync/core/driver"
	"treesync/core/loader"
	"treesync/core/logger"
	"treesync/core/middleware/auth"
	"treesync/core/middleware/rayid"
	"treesync/core/storage"
	"treesync/feature/inspect"
	"treesync/feature/nodestore"
	"treesync/feature/stylesheet"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the session server",
	Long: `Starts the HTTP server hosting named sessions. Sessions are mirrored to
MySQL when the database is enabled and their styles are published to the
storage bucket when stylesheet publishing is enabled.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Both backends are optional; the server runs in memory without them.
		var db *gorm.DB
		if cfg.Database.Enabled {
			conn, err := database.Connect(cfg.Database)
			if err != nil {
				logg.Warn("Optional database connection failed", zap.Error(err))
			} else if err := nodestore.VerifySchema(conn); err != nil {
				logg.Warn("Database schema check failed, mirroring disabled", zap.Error(err))
			} else {
				db = conn
				logg.Info("Connected to mirror database", zap.String("database", cfg.Database.Name))
			}
		}

		var store storage.Client
		if cfg.Stylesheet.Enabled {
			client, err := storage.NewClient(cfg.Storage)
			if err != nil {
				logg.Fatal("Failed to create storage client", zap.Error(err))
			}
			if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
				logg.Fatal("Failed to prepare style bucket", zap.Error(err))
			}
			store = client
		}

		app, svc, err := newServer(ctx, cfg, logg, db, store)
		if err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		go func() {
			logg.Info("Starting server", zap.String("addr", cfg.Server.Addr()))
			if err := app.Listen(cfg.Server.Addr()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		<-ctx.Done()
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
		if err := svc.Close(); err != nil {
			logg.Warn("Failed to close sessions", zap.Error(err))
		}
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}

// newServer wires the HTTP application. db and store may be nil.
func newServer(ctx context.Context, cfg *config.Config, logg *zap.Logger, db *gorm.DB, store storage.Client) (*fiber.App, *inspect.Service, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := []inspect.Option{inspect.WithMetrics(driver.NewMetrics(reg))}
	if db != nil {
		opts = append(opts, inspect.WithMirror(func(session string) inspect.Mirror {
			return nodestore.NewMirror(ctx, db, session, logg)
		}))
	}
	if store != nil {
		opts = append(opts, inspect.WithPublisher(func(session string) inspect.Publisher {
			sc := cfg.Stylesheet
			sc.Prefix = sc.Prefix + session + "/"
			return stylesheet.NewPublisher(store, cfg.Storage.Bucket, sc, logg)
		}))
	}
	svc := inspect.NewService(cfg.Driver, logg, opts...)

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             cfg.Server.BodyLimit(),
	})

	// RayID first so every log line carries it.
	app.Use(rayid.New())

	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(logg, c)
		l.Info("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})

	var public []string
	if cfg.Server.MetricsPath != "" {
		app.Get(cfg.Server.MetricsPath, adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
		public = append(public, cfg.Server.MetricsPath)
	}

	app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey, Skip: public}))

	mgr := loader.NewManager(logg)
	mgr.Register(inspect.NewFeature(svc))
	if err := mgr.LoadAll(app); err != nil {
		_ = svc.Close()
		return nil, nil, fmt.Errorf("failed to load features: %w", err)
	}

	return app, svc, nil
}
