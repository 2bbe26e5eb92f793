package mq

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doneToken struct {
	err error
}

func (t *doneToken) Wait() bool                     { return true }
func (t *doneToken) WaitTimeout(time.Duration) bool { return true }
func (t *doneToken) Error() error                   { return t.err }
func (t *doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// fakeBroker implements the paho client methods the wrapper calls.
type fakeBroker struct {
	mqtt.Client

	mu           sync.Mutex
	connectErrs  []error
	connectCalls int
	connected    bool
	published    []published
	subscribed   []string
}

func (f *fakeBroker) Connect() mqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connectCalls++
	if len(f.connectErrs) > 0 {
		err := f.connectErrs[0]
		f.connectErrs = f.connectErrs[1:]
		return &doneToken{err: err}
	}
	f.connected = true
	return &doneToken{}
}

func (f *fakeBroker) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeBroker) Disconnect(uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
}

func (f *fakeBroker) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, published{topic: topic, qos: qos, retained: retained, payload: payload.([]byte)})
	return &doneToken{}
}

func (f *fakeBroker) Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribed = append(f.subscribed, topic)
	return &doneToken{}
}

func TestClient_PublishRequiresConnection(t *testing.T) {
	broker := &fakeBroker{}
	c := newClientFrom(broker, SourceLocator, zerolog.Nop())

	assert.Error(t, c.Publish("a/b", []byte("x")))
	assert.Error(t, c.Subscribe("a/b", 1, nil))
	assert.Empty(t, broker.published)
}

func TestClient_PublishJsonEnvelope(t *testing.T) {
	broker := &fakeBroker{}
	c := newClientFrom(broker, SourceLocator, zerolog.Nop())
	require.NoError(t, c.Connect(context.Background()))

	require.NoError(t, c.PublishJson("patio/motos/v1/positions/m1", map[string]float64{"x": 1.5}))
	require.Len(t, broker.published, 1)

	msg := broker.published[0]
	assert.True(t, msg.retained)
	assert.JSONEq(t, `{"data":{"x":1.5},"source":"LOCATOR"}`, string(msg.payload))
}

func TestClient_PublishRawIsNotRetained(t *testing.T) {
	broker := &fakeBroker{}
	c := newClientFrom(broker, SourceTracker, zerolog.Nop())
	require.NoError(t, c.Connect(context.Background()))

	payload, _ := json.Marshal(map[string]int{"rssi": -64})
	require.NoError(t, c.Publish("patio/motos/tracking", payload))

	require.Len(t, broker.published, 1)
	assert.False(t, broker.published[0].retained)
	assert.Equal(t, payload, broker.published[0].payload)
}

func TestClient_Subscribe(t *testing.T) {
	broker := &fakeBroker{}
	c := newClientFrom(broker, SourceLocator, zerolog.Nop())
	require.NoError(t, c.Connect(context.Background()))

	require.NoError(t, c.Subscribe("patio/motos/tracking", 1, func(mqtt.Client, mqtt.Message) {}))
	assert.Equal(t, []string{"patio/motos/tracking"}, broker.subscribed)
}

func TestClient_ConnectWithRetry(t *testing.T) {
	broker := &fakeBroker{connectErrs: []error{errors.New("refused"), errors.New("refused")}}
	c := newClientFrom(broker, SourceLocator, zerolog.Nop())

	err := c.ConnectWithRetry(context.Background(), NewRetryPolicy(time.Millisecond, 5*time.Millisecond), time.Second)
	require.NoError(t, err)
	assert.Equal(t, 3, broker.connectCalls)
	assert.True(t, c.IsConnected())

	c.Disconnect(context.Background())
	assert.False(t, c.IsConnected())
}

func TestClient_ConnectWithRetryHonoursCancellation(t *testing.T) {
	errs := make([]error, 100)
	for i := range errs {
		errs[i] = errors.New("refused")
	}
	broker := &fakeBroker{connectErrs: errs}
	c := newClientFrom(broker, SourceLocator, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.ConnectWithRetry(ctx, NewRetryPolicy(5*time.Millisecond, 5*time.Millisecond), time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
