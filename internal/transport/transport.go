// Package transport delivers session payloads to learners and observers.
package transport

import (
	"context"
	"errors"

	"github.com/abhisek/assessor/internal/knowledge"
	"github.com/abhisek/assessor/internal/session"
)

// Multi fans every call out to each transport in order. All transports are
// called even when one fails; the errors are joined.
type Multi []session.Transport

var _ session.Transport = Multi(nil)

func (m Multi) Present(ctx context.Context, in session.Instructions) error {
	var errs []error
	for _, t := range m {
		if err := t.Present(ctx, in); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Progress(ctx context.Context, ev session.ProgressEvent) error {
	var errs []error
	for _, t := range m {
		if err := t.Progress(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Complete(ctx context.Context, summary knowledge.SessionSummary) error {
	var errs []error
	for _, t := range m {
		if err := t.Complete(ctx, summary); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
