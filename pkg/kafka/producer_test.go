package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *memWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *memWriter) Close() error { return nil }

func TestProducer_PublishEncodesJSON(t *testing.T) {
	w := &memWriter{}
	p := NewProducerWithWriter(w, "none")
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	require.NoError(t, p.Publish(context.Background(), "signals", []byte("AAPL"), map[string]int{"n": 1}))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "signals", w.msgs[0].Topic)
	assert.Equal(t, []byte("AAPL"), w.msgs[0].Key)
	assert.Equal(t, fixed, w.msgs[0].Time)

	var got map[string]int
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, 1, got["n"])
}

func TestProducer_PublishMessagePassesRawBytes(t *testing.T) {
	w := &memWriter{}
	p := NewProducerWithWriter(w, "none")

	require.NoError(t, p.PublishMessage(context.Background(), "logs", []byte("raw")))
	require.Len(t, w.msgs, 1)
	assert.Nil(t, w.msgs[0].Key)
	assert.Equal(t, []byte("raw"), w.msgs[0].Value)
}

func TestProducer_PublishBatch(t *testing.T) {
	w := &memWriter{}
	p := NewProducerWithWriter(w, "none")

	require.NoError(t, p.PublishBatch(context.Background(), "t", nil))
	require.NoError(t, p.PublishBatch(context.Background(), "t", []Message{{Key: []byte("a"), Value: "x"}, {Value: 2}}))
	require.Len(t, w.msgs, 2)
	assert.Equal(t, []byte("2"), w.msgs[1].Value)
}

func TestProducer_WrapsWriterError(t *testing.T) {
	boom := errors.New("boom")
	p := NewProducerWithWriter(&memWriter{err: boom}, "none")

	err := p.Publish(context.Background(), "t", nil, "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer()
	assert.Error(t, err)
}

func TestNewProducerConfig(t *testing.T) {
	cfg, err := newProducerConfig([]ProducerOption{
		WithBrokers([]string{"k1:9092"}),
		WithRequiredAcks(0),
		WithBatchSize(0),
		WithTimeouts(0, 3*time.Second),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.RequiredAcks)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 10*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 3*time.Second, cfg.ReadTimeout)
	assert.Equal(t, "gzip", cfg.Compression)

	_, err = newProducerConfig([]ProducerOption{WithBrokers([]string{"k1:9092"}), WithCompression("brotli")})
	assert.Error(t, err)
}

func TestProducer_Headers(t *testing.T) {
	w := &memWriter{}
	p := NewProducerWithWriter(w, "none")

	require.NoError(t, p.PublishBatch(context.Background(), "signals", []Message{
		{Key: []byte("MSFT"), Value: map[string]string{"kind": "quote"}, Headers: map[string]string{"kind": "quote"}},
		{Value: "plain"},
	}))
	require.Len(t, w.msgs, 2)
	assert.Contains(t, w.msgs[0].Headers, kafka.Header{Key: HeaderContentType, Value: []byte("application/json")})
	assert.Contains(t, w.msgs[0].Headers, kafka.Header{Key: "kind", Value: []byte("quote")})
	assert.Empty(t, w.msgs[1].Headers)
}
