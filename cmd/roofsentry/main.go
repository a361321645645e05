// RoofSentry - ASCOM Alpaca roof safety monitor
//
// This is the main entry point for the RoofSentry server. It exposes a
// SafetyMonitor device over the ASCOM Alpaca protocol so observatory
// control software (NINA, Voyager) can decide whether it is safe to
// keep imaging: a background poller classifies the newest roof camera
// frame, cross-checks the sun's elevation, and publishes one
// authoritative IsSafe verdict.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/ashdown-obs/roofsentry/migrations"

	"github.com/ashdown-obs/roofsentry/internal/alpaca"
	"github.com/ashdown-obs/roofsentry/internal/astro"
	"github.com/ashdown-obs/roofsentry/internal/classifier"
	"github.com/ashdown-obs/roofsentry/internal/device"
	"github.com/ashdown-obs/roofsentry/internal/discovery"
	"github.com/ashdown-obs/roofsentry/internal/infrastructure/config"
	"github.com/ashdown-obs/roofsentry/internal/infrastructure/database"
	"github.com/ashdown-obs/roofsentry/internal/infrastructure/influxdb"
	"github.com/ashdown-obs/roofsentry/internal/infrastructure/logging"
	"github.com/ashdown-obs/roofsentry/internal/infrastructure/mqtt"
	"github.com/ashdown-obs/roofsentry/internal/monitor"
	"github.com/ashdown-obs/roofsentry/internal/safety"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for
// testability. Returning an error allows main to handle exit codes
// consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting RoofSentry",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open decision history database (optional)
	var db *database.DB
	var history *safety.History
	if cfg.Database.Enabled {
		db, err = database.Open(database.Config{
			Path:        cfg.Database.Path,
			WALMode:     cfg.Database.WALMode,
			BusyTimeout: cfg.Database.BusyTimeout,
		})
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()

		if migrateErr := db.Migrate(ctx); migrateErr != nil {
			return fmt.Errorf("running migrations: %w", migrateErr)
		}
		history = safety.NewHistory(db.DB)
		log.Info("decision history enabled", "path", cfg.Database.Path)
	} else {
		log.Info("decision history disabled")
	}

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Build the safety decision engine and its collaborators
	imageClassifier, err := classifier.New(
		cfg.Safety.MonitorFolder,
		cfg.Safety.ClassifierCommand,
		cfg.GetClassifierTimeout(),
		log,
	)
	if err != nil {
		return fmt.Errorf("creating classifier: %w", err)
	}

	var secondary safety.SecondarySource
	if cfg.Safety.SecondarySource.Enabled {
		secondary = safety.NewFileSecondary(cfg.Safety.SecondarySource.Path, log)
		log.Info("secondary source enabled", "path", cfg.Safety.SecondarySource.Path)
	}

	sunAngle := siteSunAngle(cfg.Site.Location)
	statusLog := safety.NewStatusLog(cfg.Safety.StatusLog)
	engine := safety.NewEngine(
		imageClassifier,
		sunAngle,
		secondary,
		cfg.Safety.SunAngleThreshold,
		statusLog,
		log,
	)
	log.Info("safety engine initialised",
		"monitor_folder", cfg.Safety.MonitorFolder,
		"sun_angle_threshold", cfg.Safety.SunAngleThreshold,
	)

	// Device identity and shared state
	info := device.NewInfo(cfg.Device)
	state := device.NewState()

	// Background poller with optional recorders
	var recorders []monitor.Recorder
	if history != nil {
		recorders = append(recorders, monitor.NewHistoryRecorder(history, cfg.GetHistoryRetention(), log))
	}
	if mqttClient != nil {
		recorders = append(recorders, monitor.NewMQTTRecorder(mqttClient, log))
	}
	if influxClient != nil {
		recorders = append(recorders, monitor.NewInfluxRecorder(influxClient, cfg.Site.ID))
	}

	poller := monitor.New(state, engine, cfg.GetPollInterval(), recorders, log)

	// The poller is joined before the deferred database/MQTT/InfluxDB
	// closes run, so a mid-cycle recorder never writes to a closed sink.
	pollCtx, stopPoller := context.WithCancel(ctx)
	pollerDone := make(chan struct{})
	go func() {
		defer close(pollerDone)
		poller.Run(pollCtx)
	}()
	defer func() {
		stopPoller()
		<-pollerDone
	}()
	log.Info("safety poller started", "interval", cfg.GetPollInterval())

	// Discovery responder: a failed bind disables discovery but never
	// stops the Alpaca server.
	if cfg.Alpaca.Discovery.Enabled {
		responder := discovery.New(cfg.Alpaca.Discovery.Port, discovery.Announcement{
			AlpacaPort:          cfg.Alpaca.Port,
			ServerName:          cfg.Site.Name,
			Manufacturer:        cfg.Device.Manufacturer,
			ManufacturerVersion: version,
			Location:            cfg.Site.ID,
		}, log)
		if startErr := responder.Start(); startErr != nil {
			log.Warn("discovery responder disabled", "error", startErr)
		} else {
			defer func() {
				log.Info("stopping discovery responder")
				if closeErr := responder.Close(); closeErr != nil {
					log.Error("error closing discovery responder", "error", closeErr)
				}
			}()
			log.Info("discovery responder started", "port", cfg.Alpaca.Discovery.Port)
		}
	} else {
		log.Info("discovery disabled")
	}

	// Observation window calculator for the setup page
	windows := &astro.Calculator{
		Latitude:  cfg.Site.Location.Latitude,
		Longitude: cfg.Site.Location.Longitude,
		Threshold: cfg.Safety.SunAngleThreshold,
		Step:      cfg.GetSearchStep(),
		Horizon:   cfg.GetSearchHorizon(),
	}

	// Alpaca HTTP server
	server, err := alpaca.New(alpaca.Deps{
		Config:  cfg.Alpaca,
		Site:    cfg.Site,
		Logger:  log,
		Info:    info,
		State:   state,
		Windows: windows,
		History: history,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating alpaca server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting alpaca server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing alpaca server", "error", closeErr)
		}
	}()

	// Verify infrastructure connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient, server); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal",
		"device", info.Name,
		"port", cfg.Alpaca.Port,
	)

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. Alpaca server
	// 2. Discovery responder (if enabled)
	// 3. InfluxDB (if enabled)
	// 4. MQTT (if enabled)
	// 5. Database (if enabled)

	log.Info("RoofSentry stopped")
	return nil
}

// siteSunAngle binds the sun elevation calculation to the configured
// site, giving the engine a collaborator that only needs a time.
func siteSunAngle(loc config.LocationConfig) safety.SunAngleFunc {
	return func(now time.Time) (float64, error) {
		return astro.Elevation(loc.Latitude, loc.Longitude, now)
	}
}

// getConfigPath returns the configuration file path.
// Uses ROOFSENTRY_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("ROOFSENTRY_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
// Optional components pass nil and are skipped.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check (nil if disabled)
//   - mqttClient: MQTT client to check (nil if disabled)
//   - influxClient: InfluxDB client to check (nil if disabled)
//   - server: Alpaca server to check
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client, server *alpaca.Server) error {
	if db != nil {
		if err := db.HealthCheck(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	if err := server.HealthCheck(ctx); err != nil {
		return fmt.Errorf("alpaca: %w", err)
	}

	return nil
}
