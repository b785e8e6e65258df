package tracker

import (
	"fmt"
	"io"
	"testing"
	"time"
)

// recordingStore captures committed spans and can simulate failures.
type recordingStore struct {
	spans   []recordedSpan
	failing bool
}

type recordedSpan struct {
	userID string
	start  time.Time
	end    time.Time
}

func (r *recordingStore) AddSpan(userID string, start, end time.Time) error {
	if r.failing {
		return fmt.Errorf("store unavailable")
	}
	r.spans = append(r.spans, recordedSpan{userID: userID, start: start, end: end})
	return nil
}

func (r *recordingStore) totalFor(userID string) int64 {
	var total int64
	for _, s := range r.spans {
		if s.userID == userID {
			total += int64(s.end.Sub(s.start) / time.Second)
		}
	}
	return total
}

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func at(secs int) time.Time { return t0.Add(time.Duration(secs) * time.Second) }

func roster(uids ...string) map[string]bool {
	m := make(map[string]bool, len(uids))
	for _, u := range uids {
		m[u] = true
	}
	return m
}

func newTestTracker(store CommitStore) *Tracker {
	return New(store, 300*time.Second, io.Discard)
}

func TestSubThresholdContributesNothing(t *testing.T) {
	rs := &recordingStore{}
	tr := newTestTracker(rs)

	// Two short visits inside one session, total 250s < 300s.
	tr.Reconcile("call-1", roster("u1"), at(0))
	tr.Reconcile("call-1", roster(), at(100))
	tr.Reconcile("call-1", roster("u1"), at(200))
	tr.Reconcile("call-1", roster(), at(350))
	tr.Reconcile("", nil, at(400))

	if got := rs.totalFor("u1"); got != 0 {
		t.Errorf("committed %ds for sub-threshold user, want 0", got)
	}
	if len(rs.spans) != 0 {
		t.Errorf("spans = %v, want none", rs.spans)
	}
}

func TestRetroactiveCommitOnQualification(t *testing.T) {
	rs := &recordingStore{}
	tr := newTestTracker(rs)

	// Spec example: join 0, leave 200 (pending); rejoin 400, leave 650
	// (200+250=450 >= 300, qualifies). Both fragments commit, total 450.
	tr.Reconcile("call-1", roster("u1"), at(0))
	tr.Reconcile("call-1", roster(), at(200))
	if len(rs.spans) != 0 {
		t.Fatalf("sub-threshold fragment committed early: %v", rs.spans)
	}

	tr.Reconcile("call-1", roster("u1"), at(400))
	tr.Reconcile("call-1", roster(), at(650))

	if got := rs.totalFor("u1"); got != 450 {
		t.Errorf("total = %d, want 450", got)
	}
	if len(rs.spans) != 2 {
		t.Fatalf("len(spans) = %d, want 2 (both fragments, exactly once)", len(rs.spans))
	}
	if !rs.spans[0].start.Equal(at(0)) || !rs.spans[0].end.Equal(at(200)) {
		t.Errorf("first fragment = %v", rs.spans[0])
	}
	if !rs.spans[1].start.Equal(at(400)) || !rs.spans[1].end.Equal(at(650)) {
		t.Errorf("second fragment = %v", rs.spans[1])
	}
}

func TestQualifiedCommitsDirectly(t *testing.T) {
	rs := &recordingStore{}
	tr := newTestTracker(rs)

	tr.Reconcile("call-1", roster("u1"), at(0))
	tr.Reconcile("call-1", roster(), at(400)) // qualifies on first leave
	before := len(rs.spans)

	// Later fragments commit immediately, no buffering.
	tr.Reconcile("call-1", roster("u1"), at(500))
	tr.Reconcile("call-1", roster(), at(530))
	if len(rs.spans) != before+1 {
		t.Fatalf("qualified follow-up fragment not committed immediately")
	}
	if got := rs.totalFor("u1"); got != 430 {
		t.Errorf("total = %d, want 430", got)
	}
}

func TestFinalizeClosesActiveParticipants(t *testing.T) {
	rs := &recordingStore{}
	tr := newTestTracker(rs)

	tr.Reconcile("call-1", roster("u1", "u2"), at(0))
	// Call disappears at t=600: u1 and u2 both have 600s >= 300s.
	tr.Reconcile("", nil, at(600))

	if got := rs.totalFor("u1"); got != 600 {
		t.Errorf("u1 total = %d, want 600", got)
	}
	if got := rs.totalFor("u2"); got != 600 {
		t.Errorf("u2 total = %d, want 600", got)
	}

	snap := tr.Snapshot()
	if snap.CallID != "" || len(snap.Active) != 0 {
		t.Errorf("state not cleared after finalize: %+v", snap)
	}
}

func TestFinalizeDropsSubThreshold(t *testing.T) {
	rs := &recordingStore{}
	tr := newTestTracker(rs)

	tr.Reconcile("call-1", roster("short", "long"), at(0))
	tr.Reconcile("call-1", roster("long"), at(100)) // short leaves at 100s
	tr.Reconcile("", nil, at(500))                  // long gets 500s

	if got := rs.totalFor("short"); got != 0 {
		t.Errorf("short total = %d, want 0", got)
	}
	if got := rs.totalFor("long"); got != 500 {
		t.Errorf("long total = %d, want 500", got)
	}
}

func TestNewCallIDFinalizesOldSession(t *testing.T) {
	rs := &recordingStore{}
	tr := newTestTracker(rs)

	tr.Reconcile("call-1", roster("u1"), at(0))
	// Call id changes at t=400 while u1 qualified in the old call.
	tr.Reconcile("call-2", roster("u1"), at(400))

	if got := rs.totalFor("u1"); got != 400 {
		t.Errorf("old-session total = %d, want 400", got)
	}

	snap := tr.Snapshot()
	if snap.CallID != "call-2" {
		t.Errorf("callID = %q, want call-2", snap.CallID)
	}
	// Accumulators reset: old session's 400s must not leak into the new gate.
	if snap.Accumulated["u1"] != 0 {
		t.Errorf("accumulated carried across sessions: %d", snap.Accumulated["u1"])
	}
	if snap.Qualified["u1"] {
		t.Error("qualification carried across sessions")
	}
}

func TestCheckpointBuffersAndReopens(t *testing.T) {
	rs := &recordingStore{}
	tr := newTestTracker(rs)

	tr.Reconcile("call-1", roster("u1"), at(0))
	// Checkpoint at 200s: below threshold, buffered only.
	if err := tr.Checkpoint(at(200)); err != nil {
		t.Fatalf("Checkpoint: %v", err)
	}
	if len(rs.spans) != 0 {
		t.Fatalf("checkpoint committed sub-threshold segment")
	}

	snap := tr.Snapshot()
	if !snap.Active["u1"].Equal(at(200)) {
		t.Errorf("tracking not reopened at checkpoint time: %v", snap.Active["u1"])
	}
	if snap.Accumulated["u1"] != 200 {
		t.Errorf("accumulated = %d, want 200", snap.Accumulated["u1"])
	}

	// Second checkpoint at 400s crosses the gate: both fragments commit.
	if err := tr.Checkpoint(at(400)); err != nil {
		t.Fatalf("Checkpoint: %v", err)
	}
	if got := rs.totalFor("u1"); got != 400 {
		t.Errorf("total after qualifying checkpoint = %d, want 400", got)
	}

	// u1 still present: leaving later commits the tail directly.
	tr.Reconcile("call-1", roster(), at(450))
	if got := rs.totalFor("u1"); got != 450 {
		t.Errorf("total = %d, want 450", got)
	}
}

func TestQualificationIsSticky(t *testing.T) {
	rs := &recordingStore{}
	tr := newTestTracker(rs)

	tr.Reconcile("call-1", roster("u1"), at(0))
	tr.Checkpoint(at(300))
	snap := tr.Snapshot()
	if !snap.Qualified["u1"] {
		t.Fatal("u1 should be qualified at exactly the threshold")
	}

	// Short rejoin fragments stay committed because qualification is sticky.
	tr.Reconcile("call-1", roster(), at(310))
	tr.Reconcile("call-1", roster("u1"), at(320))
	tr.Reconcile("call-1", roster(), at(330))
	if got := rs.totalFor("u1"); got != 320 {
		t.Errorf("total = %d, want 320", got)
	}
}

func TestZeroLengthSegmentsIgnored(t *testing.T) {
	rs := &recordingStore{}
	tr := newTestTracker(rs)

	tr.Reconcile("call-1", roster("u1"), at(0))
	tr.Reconcile("call-1", roster(), at(0)) // join and leave in the same poll
	snap := tr.Snapshot()
	if snap.Accumulated["u1"] != 0 {
		t.Errorf("accumulated = %d, want 0", snap.Accumulated["u1"])
	}
}

func TestReconcileNoSessionNoop(t *testing.T) {
	rs := &recordingStore{}
	tr := newTestTracker(rs)

	if err := tr.Reconcile("", nil, at(0)); err != nil {
		t.Fatalf("Reconcile with no call: %v", err)
	}
	if len(rs.spans) != 0 {
		t.Error("unexpected commits")
	}
}

func TestCommitFailureSurfacesAndRecovers(t *testing.T) {
	rs := &recordingStore{failing: true}
	tr := newTestTracker(rs)

	tr.Reconcile("call-1", roster("u1"), at(0))
	// Leave at 400s: qualifies, but the store is down.
	err := tr.Reconcile("call-1", roster(), at(400))
	if err == nil {
		t.Fatal("expected error from failed commit")
	}
	if len(rs.spans) != 0 {
		t.Fatal("spans recorded while failing")
	}

	// Store recovers; the buffered segment commits on finalize.
	rs.failing = false
	tr.Reconcile("call-1", roster("u1"), at(500))
	if err := tr.Reconcile("", nil, at(600)); err != nil {
		t.Fatalf("finalize after recovery: %v", err)
	}
	if got := rs.totalFor("u1"); got != 500 {
		t.Errorf("total after recovery = %d, want 500 (400 buffered + 100 tail)", got)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	rs := &recordingStore{}
	tr := newTestTracker(rs)

	tr.Reconcile("call-1", roster("u1"), at(0))
	snap := tr.Snapshot()
	snap.Active["u2"] = at(10)
	snap.Accumulated["u1"] = 999

	fresh := tr.Snapshot()
	if _, ok := fresh.Active["u2"]; ok {
		t.Error("mutating a snapshot leaked into tracker state")
	}
	if fresh.Accumulated["u1"] != 0 {
		t.Error("mutating a snapshot leaked accumulated seconds")
	}
}

func TestDuplicateAndUnknownIDsTolerated(t *testing.T) {
	rs := &recordingStore{}
	tr := newTestTracker(rs)

	// Raw ids are opaque tracking keys; odd values are tracked as-is.
	tr.Reconcile("call-1", roster("u1", "", "channel:-100"), at(0))
	tr.Reconcile("", nil, at(400))

	if got := rs.totalFor("channel:-100"); got != 400 {
		t.Errorf("channel participant total = %d, want 400", got)
	}
}
