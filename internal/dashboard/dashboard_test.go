package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yard-tracker/internal/config/components"
	"yard-tracker/internal/models"
	"yard-tracker/internal/positioning"
)

func report() *models.PositionReport {
	return &models.PositionReport{
		DeviceID:    "moto_simulator",
		X:           3.14159,
		Y:           4,
		Valid:       true,
		HasFix:      true,
		Method:      positioning.MethodRanges,
		AnchorsUsed: 3,
	}
}

func TestThingSpeakSink_Send(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.PostForm.Get("api_key"))
		assert.Equal(t, "3.14", r.PostForm.Get("field1"))
		assert.Equal(t, "4.00", r.PostForm.Get("field2"))
		assert.Equal(t, "3", r.PostForm.Get("field3"))
		assert.Equal(t, "true", r.PostForm.Get("field4"))
		_, _ = w.Write([]byte("17"))
	}))
	defer srv.Close()

	sink := NewThingSpeakSink(components.DashboardConfigImpl{
		ThingSpeakURL:         srv.URL,
		ThingSpeakAPIKey:      "secret",
		ThingSpeakMinInterval: 15 * time.Second,
		Timeout:               time.Second,
	}, zerolog.Nop())

	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	sink.now = func() time.Time { return now }

	require.NoError(t, sink.Send(context.Background(), report()))
	assert.EqualValues(t, 1, calls.Load())

	// inside the rate window
	now = now.Add(10 * time.Second)
	require.NoError(t, sink.Send(context.Background(), report()))
	assert.EqualValues(t, 1, calls.Load())

	now = now.Add(6 * time.Second)
	require.NoError(t, sink.Send(context.Background(), report()))
	assert.EqualValues(t, 2, calls.Load())
}

func TestThingSpeakSink_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("0"))
	}))
	defer srv.Close()

	sink := NewThingSpeakSink(components.DashboardConfigImpl{ThingSpeakURL: srv.URL, ThingSpeakAPIKey: "k", Timeout: time.Second}, zerolog.Nop())
	assert.ErrorContains(t, sink.Send(context.Background(), report()), "rejected")
}

func TestThingSpeakSink_FailedUpdateKeepsWindowOpen(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("18"))
	}))
	defer srv.Close()

	sink := NewThingSpeakSink(components.DashboardConfigImpl{
		ThingSpeakURL:         srv.URL,
		ThingSpeakAPIKey:      "k",
		ThingSpeakMinInterval: 15 * time.Second,
		Timeout:               time.Second,
	}, zerolog.Nop())

	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	sink.now = func() time.Time { return now }

	assert.ErrorContains(t, sink.Send(context.Background(), report()), "status 503")

	now = now.Add(time.Second)
	require.NoError(t, sink.Send(context.Background(), report()))
	assert.EqualValues(t, 2, calls.Load())

	// accepted update starts the window
	now = now.Add(time.Second)
	require.NoError(t, sink.Send(context.Background(), report()))
	assert.EqualValues(t, 2, calls.Load())
}

func TestThingSpeakSink_SkipsWithoutFix(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	sink := NewThingSpeakSink(components.DashboardConfigImpl{ThingSpeakURL: srv.URL, ThingSpeakAPIKey: "k", Timeout: time.Second}, zerolog.Nop())
	r := report()
	r.HasFix = false
	require.NoError(t, sink.Send(context.Background(), r))
	assert.Zero(t, calls.Load())
}

func TestRESTSink_Send(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var got models.PositionReport
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "moto_simulator", got.DeviceID)
		assert.Equal(t, positioning.MethodRanges, got.Method)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sink := NewRESTSink(components.DashboardConfigImpl{RestEndpointURL: srv.URL, Timeout: time.Second})
	assert.Equal(t, "rest", sink.Name())
	require.NoError(t, sink.Send(context.Background(), report()))
}

func TestRESTSink_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink := NewRESTSink(components.DashboardConfigImpl{RestEndpointURL: srv.URL, Timeout: time.Second})
	assert.ErrorContains(t, sink.Send(context.Background(), report()), "status 500")
}
