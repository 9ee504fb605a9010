package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/codeshelf/Codeshelf-sub002/internal/api"
	"github.com/codeshelf/Codeshelf-sub002/internal/infrastructure/database"
	"github.com/codeshelf/Codeshelf-sub002/internal/infrastructure/influxdb"
	"github.com/codeshelf/Codeshelf-sub002/internal/infrastructure/metrics"
	"github.com/codeshelf/Codeshelf-sub002/internal/infrastructure/mqtt"
	"github.com/codeshelf/Codeshelf-sub002/internal/lighting"
	"github.com/codeshelf/Codeshelf-sub002/internal/receipt"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the MQTT import listener",
		Long: `Serve opens the facility database, connects to the MQTT broker and
InfluxDB when enabled, and runs the REST API until interrupted.

LED maps are published to controllers after every import or edit. Aisle
files published to <prefix>/facility/<id>/import/aisles are imported and
answered on <prefix>/facility/<id>/import/result.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(opts)
			if err != nil {
				return err
			}
			return a.serve(cmd.Context())
		},
	}
}

// serve wires infrastructure into the API server and blocks until ctx is
// cancelled or a component fails.
func (a *app) serve(ctx context.Context) error {
	log := a.log
	log.Info("starting Codeshelf",
		"version", version,
		"commit", commit,
		"build_date", date,
		"facility", a.cfg.Facility.ID,
	)

	db, err := a.openDatabase(ctx)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	store := a.newStore(db)
	importer := a.newImporter(db, store)

	// Prometheus collectors (optional)
	reg := metrics.NewRegistry()
	var importMetrics *metrics.Import
	if a.cfg.Metrics.Enabled {
		importMetrics, err = metrics.NewImport(reg)
		if err != nil {
			return fmt.Errorf("registering import metrics: %w", err)
		}
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if a.cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(a.cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected", "url", a.cfg.InfluxDB.URL, "bucket", a.cfg.InfluxDB.Bucket)
	} else {
		log.Info("InfluxDB disabled")
	}

	tel := &telemetry{metrics: importMetrics, influx: influxClient}
	importer.AddRecorder(tel)

	// Connect to MQTT broker (optional)
	var (
		mqttClient   *mqtt.Client
		ledPublisher api.LEDPublisher
		mqttStatus   api.ConnectionChecker
	)
	if a.cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(a.cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log.Component("mqtt"))
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", a.cfg.MQTT.Broker.Host, a.cfg.MQTT.Broker.Port),
			"client_id", a.cfg.MQTT.Broker.ClientID,
		)

		publisher := lighting.NewPublisher(mqttClient, mqttClient.Topics())
		publisher.SetLogger(log.Component("lighting"))
		importer.SetPublisher(publisher)
		ledPublisher = publisher
		mqttStatus = mqttClient
	} else {
		log.Info("MQTT disabled, LED maps will not be delivered")
	}

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	deps := api.Deps{
		Config:    a.cfg.API,
		Logger:    log.Component("api"),
		Store:     store,
		Importer:  importer,
		Publisher: ledPublisher,
		MQTT:      mqttStatus,
		DB:        db,
		Receipts:  receipt.NewSQLiteRepository(db.DB),
		Version:   version,
	}
	if a.cfg.Metrics.Enabled {
		deps.Metrics = metrics.Handler(reg)
		deps.MetricsPath = a.cfg.Metrics.Path
	}
	server, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx)
	})
	if mqttClient != nil {
		listener := &importListener{
			broker:   mqttClient,
			topics:   mqttClient.Topics(),
			qos:      byte(a.cfg.MQTT.QoS),
			importer: importer,
			log:      log.Component("mqtt-import"),
		}
		g.Go(func() error {
			return listener.Run(gctx)
		})
	}

	log.Info("initialisation complete, waiting for shutdown signal")
	if err := g.Wait(); err != nil {
		return err
	}

	influxClient.Flush()
	log.Info("Codeshelf stopped")
	return nil
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check (may be nil if disabled)
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
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
	return nil
}
