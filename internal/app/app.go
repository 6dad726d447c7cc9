package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"snakepit/server"
	servernet "snakepit/server/internal/net"
	"snakepit/server/logging"
	loggingsinks "snakepit/server/logging/sinks"
)

// Config is the process-level configuration. A YAML file may override any
// field; compiled defaults cover the rest.
type Config struct {
	Addr  string             `yaml:"addr"`
	World server.WorldConfig `yaml:"world"`
	Sinks []string           `yaml:"sinks"`
}

func DefaultConfig() Config {
	return Config{
		Addr:  ":8080",
		World: server.DefaultWorldConfig(),
		Sinks: []string{"console"},
	}
}

// LoadConfig merges an optional YAML file over the defaults. Fields absent
// from the file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Run wires the logging router, room manager, and HTTP server, then blocks
// serving until the listener fails or ctx is done.
func Run(ctx context.Context, cfg Config) error {
	logConfig := logging.DefaultConfig()
	logConfig.EnabledSinks = cfg.Sinks

	named := make([]logging.NamedSink, 0, len(cfg.Sinks))
	if logConfig.HasSink("console") {
		named = append(named, logging.NamedSink{Name: "console", Sink: loggingsinks.NewConsoleSink(os.Stdout)})
	}

	router, err := logging.NewRouter(nil, logConfig, named)
	if err != nil {
		return fmt.Errorf("failed to construct logging router: %w", err)
	}
	defer func() {
		if cerr := router.Close(ctx); cerr != nil {
			log.Printf("failed to close logging router: %v", cerr)
		}
	}()

	world := cfg.World
	if raw := os.Getenv("KEYFRAME_INTERVAL_TICKS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			world.KeyframeInterval = value
		} else {
			log.Printf("invalid KEYFRAME_INTERVAL_TICKS=%q: %v", raw, err)
		}
	}

	rooms := server.NewManager(world, router)
	defer rooms.Shutdown()

	handler := servernet.NewHTTPHandler(rooms, servernet.HTTPHandlerConfig{Logger: log.Default()})
	srv := &http.Server{Addr: cfg.Addr, Handler: handler}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	log.Printf("server listening on %s", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
