package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
)

// HeaderContentType marks JSON-encoded payloads.
const HeaderContentType = "content-type"

var compressions = map[string]kafka.Compression{
	"none":   0,
	"gzip":   kafka.Gzip,
	"snappy": kafka.Snappy,
	"lz4":    kafka.Lz4,
	"zstd":   kafka.Zstd,
}

// Writer is the subset of *kafka.Writer used by Producer.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes JSON payloads through a kafka-go writer.
type Producer struct {
	writer Writer
	comp   string
	now    func() time.Time
}

// Message is one record of a batch. Header values are attached verbatim.
type Message struct {
	Key     []byte
	Value   interface{}
	Headers map[string]string
}

// NewProducer creates a new Kafka producer.
func NewProducer(opts ...ProducerOption) (*Producer, error) {
	cfg, err := newProducerConfig(opts)
	if err != nil {
		return nil, err
	}

	bal := kafka.Balancer(&kafka.LeastBytes{})
	if cfg.HashByKey {
		bal = &kafka.Hash{}
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     bal,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:  compressions[cfg.Compression],
		MaxAttempts:  cfg.MaxAttempts,
		WriteTimeout: cfg.WriteTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		BatchSize:    cfg.BatchSize,
		BatchBytes:   int64(cfg.BatchBytes),
		BatchTimeout: cfg.BatchTimeout,
		Async:        cfg.Async,
	}
	return NewProducerWithWriter(writer, cfg.Compression), nil
}

// NewProducerWithWriter builds a Producer around an existing writer.
func NewProducerWithWriter(w Writer, compression string) *Producer {
	producerMetricsOnce.Do(registerProducerMetrics)
	return &Producer{writer: w, comp: compression, now: time.Now}
}

// Publish sends one keyed message to topic.
func (p *Producer) Publish(ctx context.Context, topic string, key []byte, value interface{}) error {
	return p.PublishBatch(ctx, topic, []Message{{Key: key, Value: value}})
}

// PublishMessage publishes an unkeyed payload. It satisfies logger.Publisher.
func (p *Producer) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.Publish(ctx, topic, nil, payload)
}

// PublishBatch sends messages to topic in a single write.
func (p *Producer) PublishBatch(ctx context.Context, topic string, messages []Message) error {
	if len(messages) == 0 {
		return nil
	}

	start := time.Now()
	ts := p.now()
	msgs := make([]kafka.Message, 0, len(messages))
	var size int
	for i, m := range messages {
		km, err := toKafka(topic, ts, m)
		if err != nil {
			return fmt.Errorf("kafka encode %s[%d]: %w", topic, i, err)
		}
		size += len(km.Value)
		msgs = append(msgs, km)
	}

	err := p.writer.WriteMessages(ctx, msgs...)
	observePublish(topic, p.comp, size, len(msgs), time.Since(start), err)
	if err != nil {
		return fmt.Errorf("kafka publish %s: %w", topic, err)
	}
	return nil
}

// Close flushes pending async writes and closes the writer.
func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

func toKafka(topic string, ts time.Time, m Message) (kafka.Message, error) {
	km := kafka.Message{Topic: topic, Key: m.Key, Time: ts}
	switch v := m.Value.(type) {
	case []byte:
		km.Value = v
	case string:
		km.Value = []byte(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return kafka.Message{}, err
		}
		km.Value = b
		km.Headers = append(km.Headers, kafka.Header{Key: HeaderContentType, Value: []byte("application/json")})
	}
	for k, v := range m.Headers {
		km.Headers = append(km.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return km, nil
}

var (
	producerMetricsOnce sync.Once
	producerMessages    *prometheus.CounterVec
	producerBytes       *prometheus.CounterVec
	producerLatency     *prometheus.HistogramVec
)

func registerProducerMetrics() {
	producerMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocklens_kafka_producer_messages_total",
			Help: "Messages handed to Kafka by topic, compression and result",
		},
		[]string{"topic", "compression", "result"},
	)
	producerBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocklens_kafka_producer_bytes_total",
			Help: "Encoded payload bytes handed to Kafka",
		},
		[]string{"topic"},
	)
	producerLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stocklens_kafka_producer_publish_seconds",
			Help:    "Latency of one Kafka write",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"topic"},
	)
}

func observePublish(topic, comp string, bytes, count int, dur time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	producerMessages.WithLabelValues(topic, comp, result).Add(float64(count))
	producerBytes.WithLabelValues(topic).Add(float64(bytes))
	producerLatency.WithLabelValues(topic).Observe(dur.Seconds())
}
