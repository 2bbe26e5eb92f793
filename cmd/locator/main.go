package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"yard-tracker/internal/config"
	"yard-tracker/internal/config/components"
	"yard-tracker/internal/dashboard"
	"yard-tracker/internal/database/influx"
	"yard-tracker/internal/database/postgres"
	"yard-tracker/internal/database/postgres/listeners"
	"yard-tracker/internal/database/postgres/repositories"
	"yard-tracker/internal/interfaces"
	"yard-tracker/internal/logger"
	"yard-tracker/internal/models"
	"yard-tracker/internal/mq"
	"yard-tracker/internal/mq/handlers"
	"yard-tracker/internal/positioning"
	"yard-tracker/internal/services"
	"yard-tracker/internal/survey"
	"yard-tracker/internal/web"
)

type Application struct {
	config *config.Config

	postgresDB      *postgres.PostgresDB
	listenerManager *listeners.ListenerManager
	influxDB        *influx.InfluxDB

	anchorRepository *repositories.AnchorRepository
	positionWriter   interfaces.IPositionWriter

	estimator       *positioning.Estimator
	trackingService *services.TrackingService

	mqttClient         *mq.Client
	topicManager       *mq.TopicManager
	observationHandler *handlers.ObservationHandler

	hub        *web.Hub
	httpServer *http.Server

	shutdownChan chan os.Signal
	ctx          context.Context
	cancelFunc   context.CancelFunc
}

func main() {
	app := &Application{}

	if err := app.initialize(); err != nil {
		app.abort(err)
	}

	if err := app.run(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run application")
	}
}

// abort releases whatever initialize opened. A failure caused by a shutdown
// signal exits cleanly.
func (app *Application) abort(err error) {
	if app.ctx == nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}

	_ = app.shutdown()
	if errors.Is(err, context.Canceled) || app.ctx.Err() != nil {
		log.Info().Msg("Shutdown requested during startup")
		os.Exit(0)
	}
	log.Fatal().Err(err).Msg("Failed to initialize application")
}

func (app *Application) initialize() error {
	var err error

	app.config, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.NewLogger(app.config.Logger)
	log.Info().
		Str("component", "main").
		Str("service", app.config.Service.Name).
		Str("version", app.config.Service.Version).
		Msg("Setting up locator...")

	app.ctx, app.cancelFunc = context.WithCancel(context.Background())
	app.shutdownChan = make(chan os.Signal, 1)
	signal.Notify(app.shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	app.watchSignals()

	if err := app.initializeDatabases(); err != nil {
		return fmt.Errorf("error while initializing databases: %w", err)
	}

	if err := app.initializeEstimator(); err != nil {
		return fmt.Errorf("error while initializing estimator: %w", err)
	}

	if err := app.initializeMQTT(); err != nil {
		return fmt.Errorf("error while initializing MQTT: %w", err)
	}

	app.initializeServices()

	if err := app.setupTopicHandlers(); err != nil {
		return fmt.Errorf("error while setting up topic handlers: %w", err)
	}

	if err := app.setupTableListeners(); err != nil {
		return fmt.Errorf("error while setting up table listeners: %w", err)
	}

	app.initializeHTTP()

	log.Info().Msg("Successfully initialized application")
	return nil
}

func (app *Application) initializeDatabases() error {
	if app.config.Positioning.AnchorSource == components.AnchorSourcePostgres {
		var err error
		app.postgresDB, err = postgres.NewConnection(app.config.Postgres)
		if err != nil {
			return fmt.Errorf("could not connect to PostgreSQL: %w", err)
		}
		app.anchorRepository = repositories.NewAnchorRepository(app.postgresDB.GetDB())

		log.Info().
			Str("component", "main").
			Str("host", app.config.Postgres.Host).
			Msg("Connected to anchor registry")
	}

	if app.config.InfluxDB.Enabled {
		var err error
		app.influxDB, err = influx.NewConnection(&app.config.InfluxDB, logger.GetLogger("influx"))
		if err != nil {
			return fmt.Errorf("could not connect to InfluxDB: %w", err)
		}
		app.positionWriter = influx.NewPositionWriter(app.influxDB.GetWriteAPI(), logger.GetLogger("position-writer"))

		log.Info().
			Str("component", "main").
			Str("url", app.config.InfluxDB.URL).
			Msg("Position history enabled")
	}

	return nil
}

func (app *Application) initializeEstimator() error {
	anchors, err := app.loadAnchors()
	if err != nil {
		return err
	}

	app.estimator, err = positioning.NewEstimator(anchors, app.config.Positioning.EstimatorOptions()...)
	if err != nil {
		return fmt.Errorf("could not build estimator: %w", err)
	}

	log.Info().
		Str("component", "main").
		Str("source", app.config.Positioning.AnchorSource).
		Int("anchors", len(anchors)).
		Msg("Estimator ready")
	return nil
}

// loadAnchors reads the anchor set once. An empty registry is seeded from
// the survey file.
func (app *Application) loadAnchors() ([]positioning.Anchor, error) {
	if app.anchorRepository == nil {
		anchors, err := survey.LoadFile(app.config.Positioning.AnchorFile)
		if err != nil {
			return nil, fmt.Errorf("could not load anchor survey: %w", err)
		}
		return anchors, nil
	}

	ctx, cancel := context.WithTimeout(app.ctx, 30*time.Second)
	defer cancel()

	rows, err := app.anchorRepository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not read anchor registry: %w", err)
	}
	if len(rows) > 0 {
		return models.AnchorsToPositioning(rows), nil
	}

	anchors, err := survey.LoadFile(app.config.Positioning.AnchorFile)
	if err != nil {
		return nil, fmt.Errorf("anchor registry is empty and survey could not be loaded: %w", err)
	}
	for _, anchor := range anchors {
		if err := app.anchorRepository.CreateOrUpdate(ctx, models.AnchorFromPositioning(anchor)); err != nil {
			return nil, fmt.Errorf("could not seed anchor %d: %w", anchor.ID, err)
		}
	}

	log.Info().
		Str("component", "main").
		Int("anchors", len(anchors)).
		Msg("Seeded anchor registry from survey")
	return anchors, nil
}

// watchSignals cancels app.ctx on SIGINT or SIGTERM, so a signal during
// startup aborts blocking steps such as the broker connect loop.
func (app *Application) watchSignals() {
	go func() {
		select {
		case sig := <-app.shutdownChan:
			log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			app.cancelFunc()
		case <-app.ctx.Done():
		}
	}()
}

func (app *Application) initializeMQTT() error {
	var err error

	app.topicManager = mq.NewTopicManager(app.config.MQTT.BaseTopic)

	app.mqttClient, err = mq.NewClient(&app.config.MQTT, mq.SourceLocator, logger.GetLogger("mq-client"))
	if err != nil {
		return fmt.Errorf("could not create MQTT client: %w", err)
	}

	policy := mq.NewRetryPolicy(app.config.MQTT.RetryInitial, app.config.MQTT.RetryMax)
	if err := app.mqttClient.ConnectWithRetry(app.ctx, policy, app.config.MQTT.ConnectTimeout); err != nil {
		return fmt.Errorf("could not connect to MQTT broker: %w", err)
	}

	log.Info().
		Str("component", "main").
		Msg("Successfully initialized MQTT client")
	return nil
}

func (app *Application) initializeServices() {
	app.hub = web.NewHub(logger.GetLogger("websocket-hub"))

	sinks := []interfaces.IPositionSink{app.hub}
	if app.config.Dashboard.ThingSpeakEnabled() {
		sinks = append(sinks, dashboard.NewThingSpeakSink(app.config.Dashboard, logger.GetLogger("thingspeak")))
	}
	if app.config.Dashboard.RestEnabled() {
		sinks = append(sinks, dashboard.NewRESTSink(app.config.Dashboard))
	}

	app.trackingService = services.NewTrackingService(
		app.estimator,
		app.mqttClient,
		app.topicManager,
		app.positionWriter,
		sinks,
		logger.GetLogger("tracking-service"),
	)

	log.Info().
		Str("component", "main").
		Int("sinks", len(sinks)).
		Msg("Successfully initialized services")
}

func (app *Application) setupTopicHandlers() error {
	app.observationHandler = handlers.NewObservationHandler(
		app.topicManager,
		app.trackingService,
		logger.GetLogger("observation-handler"),
	)

	qos := app.config.MQTT.QoS
	for _, topic := range []string{app.topicManager.GetTrackingTopic(), app.topicManager.GetObservationTopic()} {
		if err := app.mqttClient.Subscribe(topic, qos, app.observationHandler.HandleMessage); err != nil {
			return fmt.Errorf("error subscribing to %s: %w", topic, err)
		}
	}

	return nil
}

// setupTableListeners rebuilds the estimator on registry changes. File
// anchors are fixed for the life of the process.
func (app *Application) setupTableListeners() error {
	if app.postgresDB == nil {
		return nil
	}

	app.listenerManager = listeners.NewListenerManager(
		app.postgresDB.GetDB(),
		app.config.Postgres.GetDsn(),
		logger.GetLogger("listener-manager"),
	)

	anchorListener := listeners.NewAnchorTableListener(
		app.anchorRepository,
		app.trackingService,
		app.config.Positioning.EstimatorOptions(),
		app.mqttClient,
		app.topicManager.GetAnchorEventTopic(),
		logger.GetLogger("anchor-listener"),
	)
	if err := app.listenerManager.RegisterListener(anchorListener); err != nil {
		return fmt.Errorf("failed to register anchor listener: %w", err)
	}

	if err := app.listenerManager.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize listener manager: %w", err)
	}

	app.listenerManager.Start()

	log.Info().Msg("Anchor table listener started")
	return nil
}

func (app *Application) initializeHTTP() {
	server := web.NewServer(app.trackingService, app.hub, logger.GetLogger("web"))
	app.httpServer = &http.Server{
		Addr:              app.config.Service.HTTPAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (app *Application) run() error {
	go app.hub.Run(app.ctx)

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", app.httpServer.Addr).Msg("HTTP server listening")
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	var runErr error
	select {
	case err := <-serverErr:
		runErr = fmt.Errorf("http server failed: %w", err)
	case <-app.ctx.Done():
		log.Info().Msg("context cancelled, shutting down application")
	}

	if err := app.shutdown(); err != nil {
		return err
	}
	return runErr
}

func (app *Application) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if app.listenerManager != nil {
		app.listenerManager.Stop()
	}

	if app.httpServer != nil {
		if err := app.httpServer.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Error stopping HTTP server")
		}
	}

	if app.mqttClient != nil {
		app.mqttClient.Disconnect(ctx)
	}

	if app.influxDB != nil {
		app.influxDB.Close()
	}

	if app.postgresDB != nil {
		if err := app.postgresDB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing PostgreSQL connection")
		}
	}

	app.cancelFunc()
	return nil
}
