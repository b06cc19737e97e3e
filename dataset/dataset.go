// Package dataset persists self-play records for training.
package dataset

import (
	"context"
	"errors"

	"jungle/engine"
)

type Sink = engine.Sink

// FilterSink forwards the records kept by a draw policy.
type FilterSink struct {
	Policy engine.DrawPolicy
	Next   Sink
}

func (f FilterSink) Write(ctx context.Context, rec engine.GameRecord) error {
	if !f.Policy.Keep(rec) {
		return nil
	}
	return f.Next.Write(ctx, rec)
}

func (f FilterSink) Close() error {
	return f.Next.Close()
}

// Tee writes every record to each sink in order.
type Tee []Sink

func (t Tee) Write(ctx context.Context, rec engine.GameRecord) error {
	for _, s := range t {
		if err := s.Write(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func (t Tee) Close() error {
	var errs []error
	for _, s := range t {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}
