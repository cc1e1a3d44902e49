// Appliance simulator - mock consumption API for household appliances.
//
// The process runs one simulation engine (on/off, wattage or stateless),
// serves the latest readings over HTTP and WebSocket, and optionally mirrors
// every snapshot to MQTT, InfluxDB and RabbitMQ.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/nerrad567/appliance-sim/internal/api"
	"github.com/nerrad567/appliance-sim/internal/infrastructure/amqp"
	"github.com/nerrad567/appliance-sim/internal/infrastructure/config"
	"github.com/nerrad567/appliance-sim/internal/infrastructure/influxdb"
	"github.com/nerrad567/appliance-sim/internal/infrastructure/logging"
	"github.com/nerrad567/appliance-sim/internal/infrastructure/mqtt"
	"github.com/nerrad567/appliance-sim/internal/simulation"
	"github.com/nerrad567/appliance-sim/internal/telemetry"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	defaultConfigPath = "configs/config.yaml"

	// amqpPublishTimeout bounds a single snapshot publish.
	amqpPublishTimeout = 5 * time.Second
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
// It returns nil on a clean shutdown after ctx is cancelled.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting appliance simulator",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	sim, err := newSimulator(cfg)
	if err != nil {
		return fmt.Errorf("creating simulator: %w", err)
	}
	log.Info("simulator ready",
		"mode", sim.Mode(),
		"devices", len(simulation.Catalog()),
		"tick_interval", cfg.GetTickInterval(),
	)

	collector := telemetry.NewCollector()
	hub := api.NewHub(cfg.WebSocket, log.With("component", "websocket"))
	exporters := map[string]api.ConnectionReporter{}
	var checks []namedCheck

	updater := sim.Updater()
	if updater != nil {
		updater.SetLogger(log.With("component", "updater"))
		updater.SetOnDrop(collector.ObserveDrop)
		updater.AddListener(hub)
		updater.AddListener(collector)
	} else if cfg.MQTT.Enabled || cfg.InfluxDB.Enabled || cfg.AMQP.Enabled {
		log.Warn("exporters are ignored in stateless mode")
	}

	if updater != nil && cfg.MQTT.Enabled {
		mqttClient, mqttErr := mqtt.Connect(cfg.MQTT)
		if mqttErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", mqttErr)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttLog := log.With("component", "mqtt")
		mqttClient.SetLogger(mqttLog)
		mqttClient.SetOnConnect(func() {
			mqttLog.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			mqttLog.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
			"topic_prefix", mqttClient.Topics().Prefix(),
		)

		updater.AddListener(telemetry.NewMQTTExporter(mqttClient, mqttClient.Topics(), mqttClient.QoS(), mqttLog, collector))
		exporters[telemetry.ExporterMQTT] = mqttClient
		checks = append(checks, namedCheck{telemetry.ExporterMQTT, mqttClient})
	}

	if updater != nil && cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(ctx, cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
			collector.ObserveExportFailure(telemetry.ExporterInfluxDB)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		updater.AddListener(telemetry.NewInfluxExporter(influxClient))
		exporters[telemetry.ExporterInfluxDB] = influxClient
		checks = append(checks, namedCheck{telemetry.ExporterInfluxDB, influxClient})
	}

	if updater != nil && cfg.AMQP.Enabled {
		amqpLog := log.With("component", "amqp")
		publisher, amqpErr := amqp.Connect(ctx, cfg.AMQP, amqpLog)
		if amqpErr != nil {
			return fmt.Errorf("connecting to AMQP: %w", amqpErr)
		}
		defer func() {
			log.Info("closing AMQP connection")
			if closeErr := publisher.Close(); closeErr != nil {
				log.Error("error closing AMQP", "error", closeErr)
			}
		}()
		log.Info("AMQP connected", "exchange", publisher.Exchange())

		updater.AddListener(telemetry.NewAMQPExporter(publisher, amqpPublishTimeout, amqpLog, collector))
		exporters[telemetry.ExporterAMQP] = publisher
	}

	go hub.Run(ctx)

	server, err := api.New(api.Deps{
		Config:    cfg.API,
		WS:        cfg.WebSocket,
		Metrics:   cfg.Metrics,
		Logger:    log.With("component", "api"),
		Provider:  sim,
		Mode:      sim.Mode(),
		Version:   version,
		Hub:       hub,
		Updater:   updater,
		Collector: collector,
		Exporters: exporters,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	checks = append(checks, namedCheck{"api", server})

	if err := healthCheck(ctx, checks); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	if updater != nil {
		if err := updater.Run(ctx); err != nil {
			return fmt.Errorf("running updater: %w", err)
		}
	} else {
		<-ctx.Done()
	}

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// API server, AMQP, InfluxDB, MQTT.

	log.Info("appliance simulator stopped")
	return nil
}

// newSimulator builds the simulator for the configured mode.
func newSimulator(cfg *config.Config) (*simulation.Simulator, error) {
	mode, err := simulation.ParseMode(cfg.Simulation.Mode)
	if err != nil {
		return nil, err
	}

	return simulation.New(simulation.Options{
		Mode:          mode,
		Seed:          cfg.Simulation.Seed,
		Location:      cfg.GetLocation(),
		Interval:      cfg.GetTickInterval(),
		WattageStep:   cfg.Simulation.Wattage.Step,
		AbsorbingZero: cfg.Simulation.Wattage.AbsorbingZero,
	})
}

// getConfigPath returns the configuration file path.
// APPLIANCESIM_CONFIG wins; otherwise the default path is used when it
// exists, and "" (defaults only) when it does not.
func getConfigPath() string {
	if path := os.Getenv("APPLIANCESIM_CONFIG"); path != "" {
		return path
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return defaultConfigPath
	}
	return ""
}

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

type namedCheck struct {
	name    string
	checker healthChecker
}

// healthCheck runs every check in order and reports all failures.
func healthCheck(ctx context.Context, checks []namedCheck) error {
	var errs []error
	for _, c := range checks {
		if err := c.checker.HealthCheck(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
		}
	}
	return errors.Join(errs...)
}
