package board

import (
	"strings"
	"testing"
	"time"
)

func TestBadgeForMinutes(t *testing.T) {
	tests := []struct {
		minutes int64
		want    string
	}{
		{0, "😴"},
		{1, "✅"},
		{59, "✅"},
		{60, "💪"},
		{119, "💪"},
		{120, "🔥"},
		{180, "🚀"},
		{500, "🚀"},
	}
	for _, tt := range tests {
		if got := BadgeForMinutes(tt.minutes); got != tt.want {
			t.Errorf("BadgeForMinutes(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestRankMarker(t *testing.T) {
	tests := []struct {
		rank int
		want string
	}{
		{1, "🥇"},
		{2, "🥈"},
		{3, "🥉"},
		{4, "4️⃣"},
		{10, "🔟"},
		{11, "11"},
	}
	for _, tt := range tests {
		if got := RankMarker(tt.rank); got != tt.want {
			t.Errorf("RankMarker(%d) = %q, want %q", tt.rank, got, tt.want)
		}
	}
}

func TestRender_FullSnapshot(t *testing.T) {
	snap := &Snapshot{
		DayIndex: 5,
		Quote:    "Little by little, a little becomes a lot.",
		Boards: []Board{
			{
				Scope: ScopeDay,
				Label: "05.03.24 (TUESDAY)",
				Entries: []Entry{
					{Rank: 1, DisplayName: "@bek", Minutes: 125, Badge: "🔥", Compliment: "great work 🌟"},
					{Rank: 2, DisplayName: "someone", Minutes: 45, Badge: "✅"},
				},
			},
			{Scope: ScopeWeek, Label: "01.03.24 - 07.03.24 (WEEK 1)", Entries: []Entry{}},
		},
	}

	out := Render(snap)

	for _, want := range []string{
		"LEADERBOARD — DAY 5",
		"> **📅 Today — 05.03.24 (TUESDAY)**",
		"🥇 **@bek** — 125m 🔥 − **great work 🌟**",
		"🥈 **someone** — 45m ✅\n",
		"**nobody did lessons 😴**",
		"WORD OF THE DAY 🌟",
		"||***Little by little, a little becomes a lot.***||",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered message missing %q:\n%s", want, out)
		}
	}
}

func TestRender_DayIndexBeforeAnchor(t *testing.T) {
	// Replaying a date before the anchor yields a negative day index; the
	// flare rotation must wrap instead of indexing out of range.
	anchor := date(2024, 3, 1)

	for _, days := range []int{-1, -17, -30, -100} {
		snap := &Snapshot{DayIndex: DayIndex(anchor, anchor.AddDate(0, 0, days))}
		out := Render(snap)
		if !strings.Contains(out, "LEADERBOARD") {
			t.Errorf("Render with DayIndex %d produced %q", snap.DayIndex, out)
		}
		found := false
		for _, flare := range dayFlares {
			if strings.Contains(out, flare) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Render with DayIndex %d carries no flare:\n%s", snap.DayIndex, out)
		}
	}
}

func TestRender_NoQuote(t *testing.T) {
	out := Render(&Snapshot{DayIndex: 1})
	if strings.Contains(out, "WORD OF THE DAY") {
		t.Errorf("quote section rendered without a quote:\n%s", out)
	}
}

func TestQuoteOfDay_RotatesByAnchor(t *testing.T) {
	quotes := []string{"a", "b", "c"}
	anchor := date(2024, 3, 1)

	tests := []struct {
		ref  time.Time
		want string
	}{
		{date(2024, 3, 1), "a"},
		{date(2024, 3, 2), "b"},
		{date(2024, 3, 3), "c"},
		{date(2024, 3, 4), "a"},
	}
	for _, tt := range tests {
		if got := QuoteOfDay(quotes, anchor, tt.ref); got != tt.want {
			t.Errorf("QuoteOfDay(%v) = %q, want %q", tt.ref, got, tt.want)
		}
	}

	if got := QuoteOfDay(nil, anchor, anchor); got != "" {
		t.Errorf("QuoteOfDay with no quotes = %q, want empty", got)
	}
}
