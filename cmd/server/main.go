package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/calvinwijaya/blackjack-engine/internal/api"
	"github.com/calvinwijaya/blackjack-engine/internal/config"
	"github.com/calvinwijaya/blackjack-engine/internal/db"
	"github.com/calvinwijaya/blackjack-engine/internal/store"
	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"
)

var CLI struct {
	Config   string `short:"c" long:"config" default:"blackjack.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" long:"addr" help:"Listen address host:port (overrides config)"`
	LogLevel string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	Frontend string `long:"frontend" help:"Frontend URL allowed by CORS (overrides config)"`
	DBDriver string `long:"db-driver" help:"Database driver: sqlite3 or postgres (overrides config)"`
	DBDSN    string `long:"db-dsn" help:"Database DSN; empty disables persistence (overrides config)"`
	NoDB     bool   `long:"no-db" help:"Run without bankroll persistence"`
}

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	ctx := kong.Parse(&CLI,
		kong.Name("blackjack-server"),
		kong.Description("Single-player blackjack server"),
		kong.UsageOnError(),
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		log.Error("Error loading config", "error", err)
		ctx.Exit(1)
	}
	applyOverrides(cfg)

	settings, err := cfg.Validate()
	if err != nil {
		log.Error("Invalid configuration", "error", err)
		ctx.Exit(1)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "blackjack",
	})
	level, err := log.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	logger.SetLevel(level)

	addr := cfg.ServerAddress()
	if CLI.Addr != "" {
		addr = CLI.Addr
	}

	var sessions store.Store = store.NewMemoryStore()
	if !CLI.NoDB && cfg.Database.DSN != "" {
		database, err := openDatabase(cfg.Database)
		if err != nil {
			logger.Warn("Failed to initialize database, continuing without persistence", "error", err)
		} else {
			defer database.Close()
			sessions = store.NewDatabaseStore(database)
			logger.Info("Database initialized", "driver", database.Driver())
		}
	}

	hub := api.NewHub(logger, cfg.Server.FrontendURL)
	handlers := api.NewHandlers(sessions, settings, hub, logger)

	r := mux.NewRouter()
	handlers.RegisterRoutes(r)
	r.Use(api.Logging(logger))

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.Server.FrontendURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      c.Handler(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		logger.Info("Starting server", "addr", addr, "decks", settings.DeckCount, "minBet", settings.MinBet, "maxBet", settings.MaxBet)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		stop()
		os.Exit(1)
	}
}

// applyOverrides layers environment variables, then flags, over the file.
func applyOverrides(cfg *config.Config) {
	if v := os.Getenv("BLACKJACK_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("BLACKJACK_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}

	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}
	if CLI.Frontend != "" {
		cfg.Server.FrontendURL = CLI.Frontend
	}
	if CLI.DBDriver != "" {
		cfg.Database.Driver = CLI.DBDriver
	}
	if CLI.DBDSN != "" {
		cfg.Database.DSN = CLI.DBDSN
	}
}

func openDatabase(settings config.DatabaseSettings) (*db.Database, error) {
	driver, err := db.NormalizeDriver(settings.Driver)
	if err != nil {
		return nil, err
	}

	// SQLite needs the directory of a plain file path to exist.
	if driver == db.DriverSQLite && settings.DSN != ":memory:" && !strings.HasPrefix(settings.DSN, "file:") {
		if err := os.MkdirAll(filepath.Dir(settings.DSN), 0o755); err != nil {
			return nil, err
		}
	}

	return db.NewDatabase(driver, settings.DSN)
}
