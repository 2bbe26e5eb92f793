package main

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yard-tracker/internal/config"
	"yard-tracker/internal/config/components"
)

func unreachableBroker() *config.Config {
	return &config.Config{
		MQTT: components.MQTTConfigImpl{
			// nothing listens on port 1
			Host:           "127.0.0.1",
			Port:           1,
			ClientID:       "test",
			BaseTopic:      "patio/motos",
			KeepAlive:      time.Second,
			ConnectTimeout: 200 * time.Millisecond,
			RetryInitial:   10 * time.Millisecond,
			RetryMax:       50 * time.Millisecond,
		},
	}
}

func newTestApplication(cfg *config.Config) *Application {
	app := &Application{config: cfg}
	app.ctx, app.cancelFunc = context.WithCancel(context.Background())
	app.shutdownChan = make(chan os.Signal, 1)
	app.watchSignals()
	return app
}

func TestWatchSignals_CancelsContext(t *testing.T) {
	app := newTestApplication(unreachableBroker())
	defer app.cancelFunc()

	app.shutdownChan <- syscall.SIGTERM

	select {
	case <-app.ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled after SIGTERM")
	}
}

func TestInitializeMQTT_SignalStopsConnectRetry(t *testing.T) {
	app := newTestApplication(unreachableBroker())
	defer app.cancelFunc()

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.initializeMQTT()
	}()

	time.Sleep(100 * time.Millisecond)
	app.shutdownChan <- syscall.SIGINT

	select {
	case err := <-errCh:
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("connect loop ignored the shutdown signal")
	}
}
