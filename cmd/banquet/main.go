package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	app "github.com/kode4food/banquet"
	"github.com/kode4food/banquet/internal/catalog"
	"github.com/kode4food/banquet/internal/client"
	"github.com/kode4food/banquet/internal/config"
	"github.com/kode4food/banquet/internal/engine"
	"github.com/kode4food/banquet/internal/report"
	"github.com/kode4food/banquet/internal/research"
	"github.com/kode4food/banquet/internal/server"
	"github.com/kode4food/banquet/internal/tools"
	"github.com/kode4food/banquet/pkg/log"
	"github.com/kode4food/banquet/pkg/util/call"
)

type banquet struct {
	cfg        *config.Config
	rdb        *redis.Client
	store      *catalog.Store
	research   *research.Client
	writer     *report.Writer
	local      client.Bindings
	engine     *engine.Engine
	apiServer  *server.Server
	httpServer *http.Server
	quit       chan os.Signal
}

var (
	ErrCreateReportWriter = errors.New("failed to create report writer")
	ErrSeedCatalog        = errors.New("failed to seed recipe catalog")
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

func main() {
	_ = godotenv.Load()

	cfg := config.NewDefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		slog.Error("Invalid configuration", log.Error(err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", log.Error(err))
		os.Exit(1)
	}

	s := &banquet{
		cfg:  cfg,
		quit: make(chan os.Signal, 1),
	}
	s.setupLogging()

	if err := s.run(); err != nil {
		slog.Error("Failed to start application", log.Error(err))
		os.Exit(1)
	}
}

func (s *banquet) run() error {
	if err := s.initializeProviders(); err != nil {
		return err
	}

	s.initializeEngine()
	s.startServer()

	signal.Notify(s.quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(s.quit)
	<-s.quit

	s.shutdown()
	return nil
}

func (s *banquet) setupLogging() {
	level, ok := logLevels[s.cfg.LogLevel]
	if !ok {
		level = slog.LevelInfo
	}

	env := os.Getenv("ENV")
	logger := log.NewWithLevel(app.Name, env, app.Version, level)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level)

	slog.Info("Banquet engine starting",
		slog.String("log_level", s.cfg.LogLevel))

	slog.Info("Configuration loaded",
		slog.String("catalog_redis_addr", s.cfg.Catalog.Addr),
		slog.Int("catalog_redis_db", s.cfg.Catalog.DB),
		slog.String("bucket_url", s.cfg.BucketURL),
		slog.String("capability_base_url", s.cfg.CapabilityBaseURL),
		slog.String("api_host", s.cfg.APIHost),
		slog.Int("api_port", s.cfg.APIPort))
}

func (s *banquet) initializeProviders() error {
	s.rdb = redis.NewClient(&redis.Options{
		Addr:     s.cfg.Catalog.Addr,
		Password: s.cfg.Catalog.Password,
		DB:       s.cfg.Catalog.DB,
	})
	s.store = catalog.NewStore(s.rdb, s.cfg.Catalog.Prefix)

	if s.cfg.SeedCatalog {
		if err := s.store.Seed(context.Background()); err != nil {
			return fmt.Errorf("%w: %w", ErrSeedCatalog, err)
		}
	}

	timeout := time.Duration(s.cfg.CapabilityTimeout) * time.Millisecond
	s.research = research.NewClient(
		s.cfg.Chat.BaseURL, s.cfg.Chat.APIKey, s.cfg.Chat.Model, timeout,
	)

	writer, err := report.NewWriter(
		context.Background(), s.cfg.BucketURL, s.cfg.ReportKey,
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCreateReportWriter, err)
	}
	s.writer = writer

	s.local = tools.NewBindings(&tools.Dependencies{
		Store:    s.store,
		Research: s.research,
		Writer:   s.writer,
	})
	return nil
}

// initializeEngine wires the engine to its capabilities. The local
// bindings serve unless a remote capability endpoint is configured
func (s *banquet) initializeEngine() {
	bindings := s.local
	if s.cfg.CapabilityBaseURL != "" {
		bindings = client.NewHTTPBindings(
			s.cfg.CapabilityBaseURL,
			time.Duration(s.cfg.CapabilityTimeout)*time.Millisecond,
			engine.RequiredCapabilities()...,
		)
	}

	s.engine = engine.New(s.cfg, bindings)
	s.engine.Start()
}

func (s *banquet) startServer() {
	s.apiServer = server.NewServer(s.engine, s.local)
	mux := s.apiServer.SetupRoutes()

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.APIHost, s.cfg.APIPort),
		Handler: mux,
	}

	go func() {
		slog.Info("HTTP server starting",
			slog.String("addr", s.httpServer.Addr))
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", log.Error(err))
		}
	}()
}

func (s *banquet) shutdown() {
	slog.Info("Shutting down")

	ctx, cancel := context.WithTimeout(
		context.Background(), s.cfg.ShutdownTimeout,
	)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", log.Error(err))
	}

	s.apiServer.CloseWebSockets()

	if err := call.Perform(
		s.engine.Stop,
		s.writer.Close,
		s.rdb.Close,
	); err != nil {
		slog.Error("Engine shutdown failed", log.Error(err))
	}

	slog.Info("Server exited")
}
