// Package publish delivers rendered leaderboard posts to chat channels.
// Platform publishers are REST-only: posting needs no gateway connection,
// so they stand apart from the roster source even when both talk to the
// same platform.
package publish

import (
	"context"
	"errors"
)

// Publisher posts one message to its configured destination.
type Publisher interface {
	Publish(ctx context.Context, text string) error
}

// multi fans a post out to every configured publisher. Failures do not stop
// the fan-out; the errors are joined so one broken destination cannot
// silence the rest.
type multi struct {
	pubs []Publisher
}

// Multi combines publishers into one. A single publisher is returned as is.
func Multi(pubs ...Publisher) Publisher {
	if len(pubs) == 1 {
		return pubs[0]
	}
	return &multi{pubs: pubs}
}

func (m *multi) Publish(ctx context.Context, text string) error {
	var errs []error
	for _, p := range m.pubs {
		if err := p.Publish(ctx, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
