package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/i474232898/weather-notifier/internal/weather"
)

// Sink is a named destination for emitted datasets.
type Sink struct {
	Name    string
	Emitter weather.Emitter
}

// Fanout delivers every dataset to all of its sinks. A failing sink does
// not prevent delivery to the others.
type Fanout struct {
	sinks  []Sink
	logger *zap.Logger
}

// NewFanout creates a Fanout over sinks.
func NewFanout(logger *zap.Logger, sinks ...Sink) *Fanout {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fanout{sinks: sinks, logger: logger.Named("notify")}
}

// Add registers another sink. It must not be called concurrently with Emit.
func (f *Fanout) Add(s Sink) {
	f.sinks = append(f.sinks, s)
}

func (f *Fanout) Emit(ctx context.Context, ds weather.Dataset) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Emitter.Emit(ctx, ds); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
			continue
		}
		f.logger.Debug("sending notification", zap.String("sink", s.Name), zap.String("dataset", string(ds.Name)))
	}
	return errors.Join(errs...)
}

// encode renders the wire form shared by the message sinks.
func encode(ds weather.Dataset) ([]byte, error) {
	b, err := json.Marshal(ds)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", ds.Name, err)
	}
	return b, nil
}
