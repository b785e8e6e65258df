// Package tracker reconciles live voice-channel rosters into qualified,
// persisted time spans. One Tracker owns all mutable session state; it is
// constructed once and driven serially by the daemon loop.
package tracker

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"
)

// CommitStore is the slice of the duration store the tracker needs: durable
// span commits. Commits either succeed or return an error; the tracker never
// retries internally.
type CommitStore interface {
	AddSpan(userID string, start, end time.Time) error
}

// segment is a closed presence interval for one user within one session.
type segment struct {
	start time.Time
	end   time.Time
}

// Tracker is the presence session state machine. States are "no session"
// (callID empty) and "active session". All per-session maps are keyed by the
// raw, pre-alias user id; alias folding happens only at aggregation time.
type Tracker struct {
	store     CommitStore
	threshold int64 // qualification gate, seconds
	out       io.Writer

	mu        sync.Mutex
	callID    string
	active    map[string]time.Time // open segment start per present user
	pending   map[string][]segment // buffered sub-threshold segments
	accum     map[string]int64     // seconds accrued this session (pending + committed)
	qualified map[string]bool      // sticky once threshold crossed
}

// New creates a Tracker with the given qualification threshold.
func New(store CommitStore, threshold time.Duration, out io.Writer) *Tracker {
	if out == nil {
		out = io.Discard
	}
	return &Tracker{
		store:     store,
		threshold: int64(threshold / time.Second),
		out:       out,
		active:    make(map[string]time.Time),
		pending:   make(map[string][]segment),
		accum:     make(map[string]int64),
		qualified: make(map[string]bool),
	}
}

// Snapshot is a read-only copy of live tracker state, consumed by the
// aggregator to blend uncommitted time into current totals.
type Snapshot struct {
	CallID      string
	Active      map[string]time.Time // userID -> open segment start
	Accumulated map[string]int64     // userID -> session seconds so far
	Qualified   map[string]bool      // userID -> sticky qualification
}

// Snapshot returns a copy of the live state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := Snapshot{
		CallID:      t.callID,
		Active:      make(map[string]time.Time, len(t.active)),
		Accumulated: make(map[string]int64, len(t.accum)),
		Qualified:   make(map[string]bool, len(t.qualified)),
	}
	for k, v := range t.active {
		snap.Active[k] = v
	}
	for k, v := range t.accum {
		snap.Accumulated[k] = v
	}
	for k, v := range t.qualified {
		snap.Qualified[k] = v
	}
	return snap
}

// Reconcile applies a roster snapshot. An empty callID means no call is
// active: if a session was live it is finalized (qualified users' buffered
// segments commit, the rest are discarded). A changed callID finalizes the
// old session at now before starting the new one. Within a session, users
// newly present open tracking at now; users newly absent close their open
// segment.
//
// Persistence failures are joined and returned after the whole roster has
// been processed; in-memory state still advances so a transient store error
// cannot double-count time on the next poll.
func (t *Tracker) Reconcile(callID string, roster map[string]bool, now time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var errs []error

	if callID == "" {
		if t.callID != "" {
			if err := t.finalizeLocked(now); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	if t.callID != callID {
		if t.callID != "" {
			// The previous call ended unobserved. Close it out before
			// tracking the new one.
			if err := t.finalizeLocked(now); err != nil {
				errs = append(errs, err)
			}
		}
		t.startSessionLocked(callID)
	}

	// Joins.
	for uid := range roster {
		if _, ok := t.active[uid]; !ok {
			t.active[uid] = now
		}
	}

	// Leaves.
	for uid, start := range t.active {
		if roster[uid] {
			continue
		}
		delete(t.active, uid)
		if err := t.recordLocked(uid, segment{start: start, end: now}); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Checkpoint closes every open segment at now and reopens tracking from now,
// without removing anyone from the roster. This bounds how long a very long
// session can keep time uncommitted. The daemon calls it on the flush
// interval.
func (t *Tracker) Checkpoint(now time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var errs []error
	for uid, start := range t.active {
		if !now.After(start) {
			continue
		}
		if err := t.recordLocked(uid, segment{start: start, end: now}); err != nil {
			errs = append(errs, err)
		}
		t.active[uid] = now
	}
	if len(errs) == 0 && len(t.active) > 0 {
		fmt.Fprintf(t.out, "Checkpointed %d active participants\n", len(t.active))
	}
	return errors.Join(errs...)
}

// Finalize ends the current session, if any: every open segment is closed at
// now, qualified users' buffered segments commit, unqualified users' buffers
// are discarded entirely.
func (t *Tracker) Finalize(now time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.callID == "" {
		return nil
	}
	return t.finalizeLocked(now)
}

// startSessionLocked resets all per-session state for a new call.
func (t *Tracker) startSessionLocked(callID string) {
	t.callID = callID
	t.active = make(map[string]time.Time)
	t.pending = make(map[string][]segment)
	t.accum = make(map[string]int64)
	t.qualified = make(map[string]bool)
	fmt.Fprintf(t.out, "Session started (call %s), gating below %ds\n", callID, t.threshold)
}

// finalizeLocked closes all open segments and settles the qualification gate.
func (t *Tracker) finalizeLocked(now time.Time) error {
	var errs []error

	for uid, start := range t.active {
		if err := t.recordLocked(uid, segment{start: start, end: now}); err != nil {
			errs = append(errs, err)
		}
	}
	t.active = make(map[string]time.Time)

	// A qualified user can still hold buffered segments if an earlier flush
	// failed mid-way; give them one last chance to commit.
	for uid := range t.pending {
		if !t.qualified[uid] {
			continue
		}
		if err := t.flushPendingLocked(uid); err != nil {
			errs = append(errs, err)
		}
	}

	// Anyone still pending here never crossed the threshold: their buffered
	// segments count for nothing, not even partial credit.
	dropped := 0
	for uid := range t.pending {
		if !t.qualified[uid] {
			dropped++
		}
	}
	t.pending = make(map[string][]segment)
	t.accum = make(map[string]int64)
	t.qualified = make(map[string]bool)
	t.callID = ""

	fmt.Fprintf(t.out, "Session ended; %d sub-threshold participants dropped\n", dropped)
	return errors.Join(errs...)
}

// recordLocked is the single place a closed segment enters the gate. A
// qualified user's segment commits immediately; otherwise it is buffered,
// and the Pending → Qualified transition (the one place buffered segments
// flush) fires when the accumulated total reaches the threshold.
func (t *Tracker) recordLocked(uid string, seg segment) error {
	dur := int64(seg.end.Sub(seg.start) / time.Second)
	if dur <= 0 {
		return nil
	}
	t.accum[uid] += dur

	if t.qualified[uid] {
		// Retry any segments left buffered by an earlier failed flush first,
		// so commits stay ordered.
		if err := t.flushPendingLocked(uid); err != nil {
			t.pending[uid] = append(t.pending[uid], seg)
			return err
		}
		if err := t.store.AddSpan(uid, seg.start, seg.end); err != nil {
			t.pending[uid] = append(t.pending[uid], seg)
			return fmt.Errorf("tracker: commit segment for %s: %w", uid, err)
		}
		return nil
	}

	t.pending[uid] = append(t.pending[uid], seg)
	if t.accum[uid] < t.threshold {
		return nil
	}
	return t.promoteLocked(uid)
}

// promoteLocked flips a user from Pending to Qualified and commits every
// buffered segment exactly once. Qualification is sticky for the remainder
// of the session even if a commit fails; failed segments stay in the buffer
// so a later record or finalize does not lose them silently.
func (t *Tracker) promoteLocked(uid string) error {
	t.qualified[uid] = true
	return t.flushPendingLocked(uid)
}

// flushPendingLocked commits the user's buffered segments in order. On
// failure the unflushed remainder stays buffered and the error is returned.
func (t *Tracker) flushPendingLocked(uid string) error {
	segs := t.pending[uid]
	if len(segs) == 0 {
		return nil
	}
	delete(t.pending, uid)

	for i, s := range segs {
		if err := t.store.AddSpan(uid, s.start, s.end); err != nil {
			t.pending[uid] = append(segs[i:], t.pending[uid]...)
			log.Printf("tracker: flush buffered segments for %s: %v", uid, err)
			return fmt.Errorf("tracker: flush buffered segments for %s: %w", uid, err)
		}
	}
	return nil
}
