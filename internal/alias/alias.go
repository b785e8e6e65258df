// Package alias folds multiple raw identities into one canonical identity
// for ranking and display. Groups are configured by username; the resolver
// maps them onto user ids using the persisted user cache.
package alias

import (
	"strings"
	"sync"

	"github.com/bekzodr/studytrack/internal/config"
)

// Resolver maps raw user ids to canonical ids. Unmapped ids resolve to
// themselves, so the mapping is always total and idempotent.
type Resolver struct {
	groups []config.AliasGroup

	mu    sync.RWMutex
	canon map[string]string // raw id -> canonical id
	label map[string]string // canonical id -> "@primary"
}

// NewResolver builds a Resolver from configured groups and a lowercased
// username → user id map (from the user cache). Groups whose members have
// never been observed contribute nothing; malformed groups degrade to
// identity mapping rather than failing.
func NewResolver(groups []config.AliasGroup, usernameIDs map[string]string) *Resolver {
	r := &Resolver{groups: groups}
	r.Refresh(usernameIDs)
	return r
}

// Refresh rebuilds the id mapping from a fresh username → id map. Call this
// when the user cache has grown, so late-observed aliases start folding.
func (r *Resolver) Refresh(usernameIDs map[string]string) {
	canon := make(map[string]string)
	label := make(map[string]string)

	for _, g := range r.groups {
		if g.Primary == "" {
			continue
		}
		members := append([]string{g.Primary}, g.Members...)
		var ids []string
		seen := make(map[string]bool)
		for _, m := range members {
			id, ok := usernameIDs[strings.ToLower(strings.TrimSpace(m))]
			if !ok || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
		if len(ids) == 0 {
			continue
		}

		// Prefer the primary username's id when observed, else the first
		// observed member.
		canonID := ids[0]
		if id, ok := usernameIDs[strings.ToLower(g.Primary)]; ok {
			canonID = id
		}
		for _, id := range ids {
			canon[id] = canonID
		}
		label[canonID] = "@" + g.Primary
	}

	r.mu.Lock()
	r.canon = canon
	r.label = label
	r.mu.Unlock()
}

// CanonicalID returns the canonical id for a raw id (identity if unmapped).
func (r *Resolver) CanonicalID(raw string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.canon[raw]; ok {
		return c
	}
	return raw
}

// Label returns the configured display label for a canonical id, if any.
func (r *Resolver) Label(canonical string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.label[canonical]
	return l, ok
}

// Fold sums per-raw-id seconds into canonical-id totals.
func (r *Resolver) Fold(rows map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(rows))
	for raw, secs := range rows {
		out[r.CanonicalID(raw)] += secs
	}
	return out
}
