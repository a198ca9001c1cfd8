// Package notify publishes finished allocation runs to external systems.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/vsinha/jvalloc/pkg/application/dto"
	"github.com/vsinha/jvalloc/pkg/application/services/orchestration"
	"github.com/vsinha/jvalloc/pkg/infrastructure/events"
)

var (
	errNoBrokers = errors.New("kafka notifier requires at least one broker")
	errNoTopic   = errors.New("kafka notifier requires a topic")
)

type kafkaMessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type kafkaWriteCloser interface {
	Close() error
}

// KafkaConfig configures the Kafka notifier
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// KafkaNotifier publishes a JSON run summary keyed by receipt id, so every
// run for a receipt lands on the same partition in order
type KafkaNotifier struct {
	writer kafkaMessageWriter
	closer kafkaWriteCloser
	topic  string
	logger *zap.Logger
}

var _ orchestration.Notifier = (*KafkaNotifier)(nil)

// NewKafkaNotifier creates a notifier backed by a kafka-go writer
func NewKafkaNotifier(cfg KafkaConfig, logger *zap.Logger) (*KafkaNotifier, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errNoBrokers
	}
	if cfg.Topic == "" {
		return nil, errNoTopic
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: false,
		WriteTimeout:           cfg.WriteTimeout,
	}
	return newKafkaNotifierWithWriter(cfg.Topic, writer, writer, logger), nil
}

func newKafkaNotifierWithWriter(topic string, writer kafkaMessageWriter, closer kafkaWriteCloser, logger *zap.Logger) *KafkaNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaNotifier{writer: writer, closer: closer, topic: topic, logger: logger}
}

// Notify publishes the run summary
func (n *KafkaNotifier) Notify(ctx context.Context, run *dto.AllocationRun) error {
	value, err := json.Marshal(events.NewAllocationRecorded(run))
	if err != nil {
		return fmt.Errorf("encode allocation run %s: %w", run.RunID, err)
	}

	msg := kafka.Message{
		Key:   []byte(run.ReceiptID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(events.EventTypeFor(run.Status))},
			{Key: "run_id", Value: []byte(run.RunID)},
		},
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish allocation run %s to %s: %w", run.RunID, n.topic, err)
	}

	n.logger.Debug("Allocation run published",
		zap.String("topic", n.topic),
		zap.String("run_id", run.RunID),
		zap.String("receipt_id", run.ReceiptID))
	return nil
}

// Close flushes and closes the underlying writer
func (n *KafkaNotifier) Close() error {
	if n.closer == nil {
		return nil
	}
	return n.closer.Close()
}
