// Package roster abstracts the source of "who is in the study call right
// now". The daemon polls a Source and feeds its snapshots to the session
// tracker; platform packages (discord) implement it.
package roster

import "context"

// Participant is one person currently in the tracked call.
type Participant struct {
	UserID      string
	Username    string
	DisplayName string
}

// Snapshot is the call state at one instant. An empty CallID means no call
// is in progress and Participants is empty.
type Snapshot struct {
	CallID       string
	Participants []Participant
}

// Present returns the participant set keyed by user id.
func (s Snapshot) Present() map[string]bool {
	out := make(map[string]bool, len(s.Participants))
	for _, p := range s.Participants {
		out[p.UserID] = true
	}
	return out
}

// Source provides call roster snapshots plus push notifications when the
// roster may have changed. Changes is a hint to poll sooner, not a data
// channel; consumers still call Snapshot for the authoritative state.
type Source interface {
	// Connect establishes the platform connection.
	Connect(ctx context.Context) error
	// Snapshot returns the current call roster.
	Snapshot(ctx context.Context) (Snapshot, error)
	// Changes returns a channel that receives a tick when the roster may
	// have changed. The channel is coalescing: a slow consumer sees at
	// least one tick, not one per event.
	Changes() <-chan struct{}
	// Close shuts the connection down.
	Close() error
}
