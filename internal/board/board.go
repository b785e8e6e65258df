// Package board aggregates the duration ledger into day/week/month
// leaderboards. Windows are anchored to the persisted anchor date; live
// (uncommitted) session time is blended in for current-moment boards and
// skipped entirely for historical replays.
package board

import (
	"fmt"
	"sort"
	"time"

	"github.com/bekzodr/studytrack/internal/alias"
	"github.com/bekzodr/studytrack/internal/compliment"
	"github.com/bekzodr/studytrack/internal/store"
	"github.com/bekzodr/studytrack/internal/tracker"
)

// Scope identifies one leaderboard window kind.
const (
	ScopeDay   = "day"
	ScopeWeek  = "week"
	ScopeMonth = "month"
)

// Entry is one ranked leaderboard row. UserID is the canonical id.
type Entry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Seconds     int64  `json:"seconds"`
	Minutes     int64  `json:"minutes"`
	Badge       string `json:"badge"`
	Compliment  string `json:"compliment,omitempty"`
}

// Board is one scope's ranked entries plus its window bounds. An empty
// Entries slice is an explicit "nobody qualified" result, not an omission.
type Board struct {
	Scope       string    `json:"scope"`
	Index       int       `json:"index"`
	Label       string    `json:"label"`
	PeriodStart time.Time `json:"periodStart"`
	PeriodEnd   time.Time `json:"periodEnd"`
	Entries     []Entry   `json:"entries"`
}

// Snapshot is a full leaderboard build: all three boards plus the day index
// and the quote of the day.
type Snapshot struct {
	PostedAt time.Time `json:"postedAt"`
	DayIndex int       `json:"dayIndex"`
	Boards   []Board   `json:"boards"`
	Quote    string    `json:"quote,omitempty"`
}

// LiveSource provides the tracker's uncommitted state for blending.
type LiveSource interface {
	Snapshot() tracker.Snapshot
}

// Aggregator builds leaderboard snapshots from the store, the alias
// resolver, and (optionally) the live tracker.
type Aggregator struct {
	store    *store.Store
	resolver *alias.Resolver
	live     LiveSource
	picker   *compliment.Picker
	quotes   []string

	threshold int64 // qualification gate, seconds
	limit     int   // max entries per board
}

// Opts holds parameters for creating an Aggregator. Live and Picker are
// optional; a nil Live disables blending, a nil Picker disables compliments.
type Opts struct {
	Store     *store.Store
	Resolver  *alias.Resolver
	Live      LiveSource
	Picker    *compliment.Picker
	Quotes    []string
	Threshold time.Duration
	Limit     int
}

// New creates an Aggregator.
func New(opts Opts) (*Aggregator, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("board: store is required")
	}
	if opts.Resolver == nil {
		return nil, fmt.Errorf("board: resolver is required")
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	return &Aggregator{
		store:     opts.Store,
		resolver:  opts.Resolver,
		live:      opts.Live,
		picker:    opts.Picker,
		quotes:    opts.Quotes,
		threshold: int64(opts.Threshold / time.Second),
		limit:     limit,
	}, nil
}

// Build produces the current-moment snapshot, blending the live session's
// uncommitted time into all three windows.
func (a *Aggregator) Build(now time.Time) (*Snapshot, error) {
	var live *tracker.Snapshot
	if a.live != nil {
		snap := a.live.Snapshot()
		live = &snap
	}
	return a.build(now, now, live)
}

// BuildFor produces a purely historical snapshot for the given reference
// date. No live blending occurs, so replaying a past date twice yields
// identical results.
func (a *Aggregator) BuildFor(ref time.Time) (*Snapshot, error) {
	return a.build(ref, ref, nil)
}

func (a *Aggregator) build(ref, now time.Time, live *tracker.Snapshot) (*Snapshot, error) {
	loc := a.store.Location()
	ref = ref.In(loc)

	anchor, err := a.store.Anchor(ref)
	if err != nil {
		return nil, err
	}

	dayW := DayWindow(anchor, ref)
	weekW := WeekWindow(anchor, ref)
	monthW := MonthWindow(anchor, ref)

	dayMap, err := a.foldedWindow(dayW)
	if err != nil {
		return nil, err
	}
	weekMap, err := a.foldedWindow(weekW)
	if err != nil {
		return nil, err
	}
	monthMap, err := a.foldedWindow(monthW)
	if err != nil {
		return nil, err
	}

	if live != nil {
		a.blend(live, now, dayMap, weekMap, monthMap)
	}

	dayEntries := a.rank(dayMap)
	weekEntries := a.rank(weekMap)
	monthEntries := a.rank(monthMap)

	if a.picker != nil {
		a.decorate(dayEntries, weekEntries, monthEntries, dayW, weekW, monthW)
	}

	snap := &Snapshot{
		PostedAt: now,
		DayIndex: dayW.Index,
		Quote:    QuoteOfDay(a.quotes, anchor, ref),
		Boards: []Board{
			{
				Scope:       ScopeDay,
				Index:       dayW.Index,
				Label:       dayLabel(ref),
				PeriodStart: dayW.Start,
				PeriodEnd:   endOfDay(dayW.End),
				Entries:     dayEntries,
			},
			{
				Scope:       ScopeWeek,
				Index:       weekW.Index,
				Label:       rangeLabel(weekW, "WEEK"),
				PeriodStart: weekW.Start,
				PeriodEnd:   endOfDay(weekW.End),
				Entries:     weekEntries,
			},
			{
				Scope:       ScopeMonth,
				Index:       monthW.Index,
				Label:       rangeLabel(monthW, "MONTH"),
				PeriodStart: monthW.Start,
				PeriodEnd:   endOfDay(monthW.End),
				Entries:     monthEntries,
			},
		},
	}
	return snap, nil
}

// foldedWindow sums the window's stored seconds and folds raw ids into
// canonical totals.
func (a *Aggregator) foldedWindow(w Window) (map[string]int64, error) {
	rows, err := a.store.PeriodSeconds(
		w.Start.Format(store.DateFormat),
		w.End.Format(store.DateFormat),
	)
	if err != nil {
		return nil, err
	}
	raw := make(map[string]int64, len(rows))
	for _, r := range rows {
		raw[r.UserID] += r.Seconds
	}
	return a.resolver.Fold(raw), nil
}

// blend adds each active participant's elapsed (uncommitted) time into the
// three window maps. Qualification uses the union of accumulator state
// across all raw ids folding to the same canonical id, so time earned under
// one alias counts toward the shared gate. Per-alias elapsed times are
// additive contributions to the canonical total.
func (a *Aggregator) blend(live *tracker.Snapshot, now time.Time, dayMap, weekMap, monthMap map[string]int64) {
	accumByCanon := make(map[string]int64)
	qualByCanon := make(map[string]bool)
	for raw, secs := range live.Accumulated {
		accumByCanon[a.resolver.CanonicalID(raw)] += secs
	}
	for raw, q := range live.Qualified {
		if q {
			qualByCanon[a.resolver.CanonicalID(raw)] = true
		}
	}

	// storedDay keeps the pre-blend day totals so a second alias in the same
	// pass can't shrink a value already raised by the first.
	storedDay := make(map[string]int64, len(dayMap))
	for k, v := range dayMap {
		storedDay[k] = v
	}

	for raw, joinedAt := range live.Active {
		elapsed := int64(now.Sub(joinedAt) / time.Second)
		if elapsed <= 0 {
			continue
		}
		cid := a.resolver.CanonicalID(raw)
		if !qualByCanon[cid] && accumByCanon[cid]+elapsed < a.threshold {
			// Still below the gate under every alias: contributes nothing.
			continue
		}
		if dayMap[cid] < storedDay[cid] {
			dayMap[cid] = storedDay[cid]
		}
		dayMap[cid] += elapsed
		weekMap[cid] += elapsed
		monthMap[cid] += elapsed
	}
}

// rank sorts canonical totals descending, drops non-positive totals, and
// truncates to the display limit.
func (a *Aggregator) rank(totals map[string]int64) []Entry {
	type kv struct {
		id   string
		secs int64
	}
	rows := make([]kv, 0, len(totals))
	for id, secs := range totals {
		if secs > 0 {
			rows = append(rows, kv{id, secs})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].secs != rows[j].secs {
			return rows[i].secs > rows[j].secs
		}
		return rows[i].id < rows[j].id // stable order for ties
	})
	if len(rows) > a.limit {
		rows = rows[:a.limit]
	}

	entries := make([]Entry, 0, len(rows))
	for i, r := range rows {
		mins := r.secs / 60
		entries = append(entries, Entry{
			Rank:        i + 1,
			UserID:      r.id,
			DisplayName: a.displayName(r.id),
			Seconds:     r.secs,
			Minutes:     mins,
			Badge:       BadgeForMinutes(mins),
		})
	}
	return entries
}

// displayName prefers the alias group label, then the cached name.
func (a *Aggregator) displayName(canonicalID string) string {
	if label, ok := a.resolver.Label(canonicalID); ok {
		return label
	}
	return a.store.DisplayName(canonicalID)
}

// decorate attaches per-period compliments: week and month first, then day
// avoiding that user's week and month picks.
func (a *Aggregator) decorate(day, week, month []Entry, dayW, weekW, monthW Window) {
	weekKey := periodKey("week", weekW.Start)
	monthKey := periodKey("month", monthW.Start)
	dayKey := periodKey("day", dayW.Start)

	weekPicks := make(map[string]string, len(week))
	for i := range week {
		c, err := a.picker.ForPeriod(weekKey, week[i].UserID, nil)
		if err != nil {
			continue // decoration only, never fails a board
		}
		week[i].Compliment = compliment.EmojiToEnd(c)
		weekPicks[week[i].UserID] = c
	}
	monthPicks := make(map[string]string, len(month))
	for i := range month {
		c, err := a.picker.ForPeriod(monthKey, month[i].UserID, nil)
		if err != nil {
			continue
		}
		month[i].Compliment = compliment.EmojiToEnd(c)
		monthPicks[month[i].UserID] = c
	}
	for i := range day {
		avoid := make(map[string]bool, 2)
		if c, ok := weekPicks[day[i].UserID]; ok {
			avoid[c] = true
		}
		if c, ok := monthPicks[day[i].UserID]; ok {
			avoid[c] = true
		}
		c, err := a.picker.ForPeriod(dayKey, day[i].UserID, avoid)
		if err != nil {
			continue
		}
		day[i].Compliment = compliment.EmojiToEnd(c)
	}
}

func periodKey(scope string, start time.Time) string {
	return scope + ":" + start.Format(store.DateFormat)
}

func endOfDay(dayStart time.Time) time.Time {
	return dayStart.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
}
