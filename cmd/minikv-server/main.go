// Package main provides the entry point for minikv-server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/okrski/minikv/internal/infra/buildinfo"
	"github.com/okrski/minikv/internal/infra/confloader"
	"github.com/okrski/minikv/internal/infra/shutdown"
	"github.com/okrski/minikv/internal/params"
	"github.com/okrski/minikv/internal/server/config"
	"github.com/okrski/minikv/internal/server/redisserver"
	"github.com/okrski/minikv/internal/store"
	"github.com/okrski/minikv/internal/telemetry/logger"
	"github.com/okrski/minikv/internal/telemetry/metric"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		port        = flag.Uint("port", 0, "Listen port (overrides configuration)")
		dir         = flag.String("dir", "", "Data directory (overrides configuration)")
		dbFilename  = flag.String("dbfilename", "", "Database filename (overrides configuration)")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("minikv-server %s\n", buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile, flagOverrides(*dir, *dbFilename))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *port != 0 {
		cfg.Server.Addr = overridePort(cfg.Server.Addr, *port)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})

	log.Info("starting minikv-server",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"config", *configFile)

	st := store.New()

	p := params.New(map[string]params.Value{
		"port":       params.Uint(uint64(cfg.Server.Port())),
		"dir":        params.Path(cfg.Storage.Dir),
		"dbfilename": params.String(cfg.Storage.DBFilename),
	})

	metrics := metric.NewRegistry(func() float64 {
		return float64(st.Len())
	})

	srv := redisserver.New(&redisserver.Config{
		Address:      cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		RateLimit:    cfg.Server.RateLimit,
	}, st, p, metrics, log)

	shutdownHandler := shutdown.NewHandler(30 * time.Second)

	ctx := context.Background()
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("start resp server: %w", err)
	}
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down resp server")
		return srv.Shutdown(ctx)
	})

	if cfg.Metrics.Enabled {
		metricsSrv := startMetricsServer(cfg.Metrics.Addr, metrics, log)
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			log.Info("shutting down metrics server")
			return metricsSrv.Shutdown(ctx)
		})
	}

	if *configFile != "" {
		watcher, err := watchLogLevel(*configFile, log)
		if err != nil {
			log.Warn("config watcher unavailable", "error", err)
		} else {
			shutdownHandler.OnShutdown(func(ctx context.Context) error {
				return watcher.Stop()
			})
		}
	}

	log.Info("server started, press Ctrl+C to stop", "address", srv.Addr().String())
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// flagOverrides converts set command line flags into configuration
// keys. Flags win over both the file and the environment.
func flagOverrides(dir, dbFilename string) map[string]any {
	overrides := make(map[string]any)
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dir":
			overrides["storage.dir"] = dir
		case "dbfilename":
			overrides["storage.dbfilename"] = dbFilename
		}
	})
	return overrides
}

// overridePort swaps the port of a host:port address.
func overridePort(addr string, port uint) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, strconv.FormatUint(uint64(port), 10))
}

// loadConfig loads configuration from file, environment and flag
// overrides, in increasing priority.
func loadConfig(configFile string, overrides map[string]any) (*config.ServerConfig, error) {
	cfg := config.Default()

	loader := confloader.NewLoader()
	if err := loader.LoadFile(configFile); err != nil {
		return nil, err
	}
	if err := loader.LoadEnv(); err != nil {
		return nil, err
	}
	if len(overrides) > 0 {
		if err := loader.LoadMap(overrides); err != nil {
			return nil, err
		}
	}
	if err := loader.Unmarshal(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// startMetricsServer serves the Prometheus scrape endpoint.
func startMetricsServer(addr string, metrics *metric.Registry, log *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		log.Info("metrics server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server error", "error", err)
		}
	}()

	return srv
}

// watchLogLevel reloads the log level when the configuration file
// changes. Other settings require a restart.
func watchLogLevel(configFile string, log *slog.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(configFile); err != nil {
		_ = watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(path string) {
		cfg := config.Default()
		loader := confloader.NewLoader()
		if err := loader.LoadFile(configFile); err != nil {
			log.Warn("config reload failed", "error", err)
			return
		}
		if err := loader.Unmarshal(cfg); err != nil {
			log.Warn("config reload failed", "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			log.Info("log level updated", "level", cfg.Log.Level)
		}
	})
	watcher.StartAsync()

	return watcher, nil
}
