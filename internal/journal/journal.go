// Package journal fans completed swipe decisions out to the local decision
// log and, when configured, a Kafka topic.
package journal

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/commit-swipe/internal/models"
)

// Sink receives decisions. storage.DecisionStore and KafkaPublisher both
// satisfy it.
type Sink interface {
	Record(ctx context.Context, d models.Decision) error
}

type named struct {
	name string
	sink Sink
}

// Multi records into every sink. A failing sink does not stop the others.
type Multi struct {
	sinks  []named
	logger *slog.Logger
}

func NewMulti(logger *slog.Logger) *Multi {
	if logger == nil {
		logger = slog.Default()
	}
	return &Multi{logger: logger}
}

// Add registers sink under name. Nil sinks are ignored.
func (m *Multi) Add(name string, sink Sink) *Multi {
	if sink != nil {
		m.sinks = append(m.sinks, named{name: name, sink: sink})
	}
	return m
}

func (m *Multi) Len() int { return len(m.sinks) }

func (m *Multi) Record(ctx context.Context, d models.Decision) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.sink.Record(ctx, d); err != nil {
			m.logger.Warn("journal.record.failed", "sink", s.name, "decision_id", d.ID, "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
