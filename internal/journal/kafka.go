package journal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/example/commit-swipe/internal/models"
)

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher emits each decision keyed by the deciding user, so one
// user's decisions stay ordered within a partition.
type KafkaPublisher struct {
	writer   MessageWriter
	attempts int
	delay    time.Duration
	timeout  time.Duration
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kafka.Writer{Addr: kafka.TCP(brokers...), Topic: topic, Balancer: &kafka.Hash{}}
	return NewKafkaPublisherWith(w)
}

func NewKafkaPublisherWith(w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w, attempts: 3, delay: 200 * time.Millisecond, timeout: 2 * time.Second}
}

func (k *KafkaPublisher) Record(ctx context.Context, d models.Decision) error {
	b, err := json.Marshal(d)
	if err != nil {
		return err
	}
	msg := kafka.Message{Key: []byte(d.UserID), Value: b, Time: d.CreatedAt}
	return publishWithRetry(ctx, k.writer, msg, k.attempts, k.delay, k.timeout)
}

func (k *KafkaPublisher) Close() error {
	if k.writer == nil {
		return nil
	}
	return k.writer.Close()
}

// publishWithRetry writes msg, doubling delay between failed attempts.
func publishWithRetry(ctx context.Context, w MessageWriter, msg kafka.Message, attempts int, delay, timeout time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		wctx, cancel := context.WithTimeout(ctx, timeout)
		err = w.WriteMessages(wctx, msg)
		cancel()
		if err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
