package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"yard-tracker/internal/config"
	"yard-tracker/internal/logger"
	"yard-tracker/internal/mq"
	"yard-tracker/internal/services"
	"yard-tracker/internal/simulation"
)

type Application struct {
	config *config.Config

	mqttClient       *mq.Client
	topicManager     *mq.TopicManager
	telemetryService *services.TelemetryService

	shutdownChan chan os.Signal
	ctx          context.Context
	cancelFunc   context.CancelFunc
}

func main() {
	app := &Application{}

	if err := app.initialize(); err != nil {
		app.shutdown()
		if app.ctx != nil && app.ctx.Err() != nil {
			log.Info().Msg("Shutdown requested during startup")
			return
		}
		log.Fatal().Err(err).Msg("Failed to initialize tracker")
	}

	app.run()
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
		Str("device_id", app.config.Service.DeviceID).
		Bool("simulated", app.config.Service.SimulationMode).
		Msg("Setting up tracker...")

	if !app.config.Service.SimulationMode {
		return fmt.Errorf("no radio source available, set SIMULATION_MODE=true")
	}

	app.ctx, app.cancelFunc = context.WithCancel(context.Background())
	app.shutdownChan = make(chan os.Signal, 1)
	signal.Notify(app.shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	app.watchSignals()

	if err := app.initializeMQTT(); err != nil {
		return fmt.Errorf("error while initializing MQTT: %w", err)
	}

	walkerConfig := simulation.DefaultWalkerConfig()
	walkerConfig.StepInterval = app.config.Service.SimulationStepInterval
	walkerConfig.PathLoss = app.config.Positioning.PathLoss()

	walker, err := simulation.NewWalker(walkerConfig, time.Now())
	if err != nil {
		return fmt.Errorf("error while initializing simulation: %w", err)
	}

	app.telemetryService = services.NewTelemetryService(
		walker,
		walkerConfig.PathLoss,
		app.mqttClient,
		app.topicManager.GetTrackingTopic(),
		app.config.Service.DeviceID,
		logger.GetLogger("telemetry-service"),
	)

	log.Info().Msg("Successfully initialized tracker")
	return nil
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

	app.mqttClient, err = mq.NewClient(&app.config.MQTT, mq.SourceTracker, logger.GetLogger("mq-client"))
	if err != nil {
		return fmt.Errorf("could not create MQTT client: %w", err)
	}

	policy := mq.NewRetryPolicy(app.config.MQTT.RetryInitial, app.config.MQTT.RetryMax)
	if err := app.mqttClient.ConnectWithRetry(app.ctx, policy, app.config.MQTT.ConnectTimeout); err != nil {
		return fmt.Errorf("could not connect to MQTT broker: %w", err)
	}

	return nil
}

func (app *Application) run() {
	done := make(chan struct{})
	go func() {
		defer close(done)
		app.telemetryService.Run(app.ctx, app.config.Service.PublishInterval)
	}()

	<-app.ctx.Done()
	<-done

	app.shutdown()
}

func (app *Application) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if app.mqttClient != nil {
		app.mqttClient.Disconnect(ctx)
	}
	if app.cancelFunc != nil {
		app.cancelFunc()
	}
}
