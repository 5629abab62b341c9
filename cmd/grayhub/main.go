// Gray Logic Hub - smart-home device simulator.
//
// The hub keeps a registry of simulated devices (lights, plugs, speakers,
// thermostats, radiator valves and climate sensors), drives it from a text
// menu on stdin and persists it to a flat file. Device events can be
// mirrored to SQLite, MQTT, InfluxDB and Prometheus.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/gray-logic-hub/internal/api"
	"github.com/nerrad567/gray-logic-hub/internal/audit"
	"github.com/nerrad567/gray-logic-hub/internal/console"
	"github.com/nerrad567/gray-logic-hub/internal/device"
	"github.com/nerrad567/gray-logic-hub/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-hub/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-hub/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-hub/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-hub/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-hub/internal/metrics"
	"github.com/nerrad567/gray-logic-hub/internal/telemetry"
	_ "github.com/nerrad567/gray-logic-hub/migrations" // registers the journal schema
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application, separated from main for testability. The menu
// reads stdin and writes stdout; logs go wherever logging config says.
func run(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	log := logging.Default()

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	defer log.Close() //nolint:errcheck // nothing left to log to
	log.Info("starting Gray Logic Hub",
		"version", version,
		"commit", commit,
		"build_date", date,
		"config", configPath,
	)

	m := metrics.New()
	sinks, err := openSinks(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer sinks.close(log)

	disp := telemetry.NewDispatcher(telemetry.DefaultBuffer, log.With("component", "telemetry"),
		append(sinks.list, telemetry.ListenerSink("metrics", m))...)
	disp.Start(ctx)

	reg := device.NewRegistry(device.NewFileRepository(cfg.Store.Path))
	reg.SetLogger(log.With("component", "registry"))
	reg.SetTimerTick(cfg.Timers.Tick)
	reg.SetListener(disp)

	if err := reg.Load(ctx); err != nil {
		disp.Close()
		return fmt.Errorf("loading device store: %w", err)
	}
	if err := m.WatchDevices(reg.Summaries); err != nil {
		log.Warn("registering device gauges", "error", err)
	}

	var apiServer *api.Server
	if cfg.API.Enabled {
		apiServer, err = api.New(api.Deps{
			Config:  cfg.API,
			Logger:  log.With("component", "api"),
			Devices: reg,
			Journal: sinks.journal,
			Metrics: m.Handler(),
			Checks:  sinks.checks,
			Version: version,
		})
		if err == nil {
			err = apiServer.Start(ctx)
		}
		if err != nil {
			log.Error("admin API unavailable", "error", err)
			apiServer = nil
		}
	}

	menu := console.New(reg, stdin, stdout)
	menu.SetLogger(log.With("component", "console"))
	consoleErr := menu.Run(ctx)
	if errors.Is(consoleErr, context.Canceled) {
		consoleErr = nil
	}

	// Shutdown: console is done; stop timers before the single save so the
	// file never holds a half-expired countdown.
	log.Info("shutting down")
	if apiServer != nil {
		if err := apiServer.Close(); err != nil {
			log.Error("closing admin API", "error", err)
		}
	}
	reg.Close()
	saveErr := reg.Save(context.WithoutCancel(ctx))
	disp.Close()
	if dropped := disp.Dropped(); dropped > 0 {
		log.Warn("telemetry events dropped", "count", dropped)
	}

	if saveErr != nil {
		return fmt.Errorf("saving device store: %w", saveErr)
	}
	log.Info("device store saved", "path", cfg.Store.Path, "devices", reg.Count())
	return consoleErr
}

// getConfigPath returns the configuration file path.
func getConfigPath() string {
	if path := os.Getenv("GRAYHUB_CONFIG"); path != "" {
		return path
	}
	return config.DefaultPath
}

// sinkSet holds the optional event sinks that opened successfully.
type sinkSet struct {
	list    []telemetry.Sink
	checks  map[string]api.HealthChecker
	journal audit.Repository
	closers []func() error
}

// openSinks connects the enabled sinks. A journal database that cannot be
// opened is fatal; unreachable MQTT or InfluxDB servers are logged and
// skipped so the hub still runs offline.
func openSinks(ctx context.Context, cfg *config.Config, log *logging.Logger) (*sinkSet, error) {
	s := &sinkSet{checks: make(map[string]api.HealthChecker)}

	if cfg.Database.Enabled {
		db, err := database.Open(database.Config{
			Path:        cfg.Database.Path,
			WALMode:     cfg.Database.WALMode,
			BusyTimeout: cfg.Database.BusyTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close() //nolint:errcheck // already failing
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		s.journal = audit.NewSQLiteRepository(db.DB)
		s.list = append(s.list, telemetry.NewJournalSink(s.journal))
		s.checks["database"] = db
		s.closers = append(s.closers, db.Close)
		log.Info("device journal enabled", "path", cfg.Database.Path)
	}

	if cfg.MQTT.Enabled {
		client, err := mqtt.Connect(cfg.MQTT)
		if err != nil {
			log.Warn("MQTT publishing disabled", "error", err)
		} else {
			client.SetLogger(log.With("component", "mqtt"))
			s.list = append(s.list, telemetry.NewMQTTSink(client))
			s.checks["mqtt"] = client
			s.closers = append(s.closers, client.Close)
			log.Info("MQTT connected",
				"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
				"client_id", cfg.MQTT.Broker.ClientID,
			)
		}
	}

	if cfg.InfluxDB.Enabled {
		client, err := influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			log.Warn("InfluxDB history disabled", "error", err)
		} else {
			influxLog := log.With("component", "influxdb")
			client.SetOnError(func(err error) {
				influxLog.Warn("InfluxDB write failed", "error", err)
			})
			s.list = append(s.list, telemetry.NewInfluxSink(client))
			s.checks["influxdb"] = client
			s.closers = append(s.closers, client.Close)
			log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
		}
	}

	return s, nil
}

// close releases sinks in reverse order of opening.
func (s *sinkSet) close(log *logging.Logger) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			log.Error("closing sink", "error", err)
		}
	}
}
