package board

import (
	"math"
	"time"
)

// Window is one aggregation period: an inclusive day range plus its index
// counted from the anchor (day 1, week 1, month 1).
type Window struct {
	Index int
	Start time.Time // midnight of first day
	End   time.Time // midnight of last day (inclusive)
}

// DayIndex returns the 1-based day number of ref counted from the anchor.
func DayIndex(anchor, ref time.Time) int {
	return daysBetween(anchor, ref) + 1
}

// DayWindow is the single calendar day containing ref.
func DayWindow(anchor, ref time.Time) Window {
	d := midnight(ref)
	return Window{Index: DayIndex(anchor, ref), Start: d, End: d}
}

// WeekWindow is the 7-day block containing ref, anchored. Blocks are fixed
// length and never align to ISO weeks; week 1 starts on the anchor date.
func WeekWindow(anchor, ref time.Time) Window {
	return blockWindow(anchor, ref, 7)
}

// MonthWindow is the 30-day block containing ref, anchored. This is a fixed
// 30-day block, not a calendar month.
func MonthWindow(anchor, ref time.Time) Window {
	return blockWindow(anchor, ref, 30)
}

func blockWindow(anchor, ref time.Time, days int) Window {
	a := midnight(anchor)
	between := daysBetween(anchor, ref)
	// Floor division: pre-anchor days belong to the block ending before the
	// anchor, so the window always contains the reference day.
	if between < 0 {
		between -= days - 1
	}
	idx := between / days
	start := a.AddDate(0, 0, idx*days)
	end := start.AddDate(0, 0, days-1)
	return Window{Index: idx + 1, Start: start, End: end}
}

// daysBetween counts whole calendar days from a's day to b's day, ignoring
// time of day. Midnight-to-midnight distances are 23/24/25h multiples under
// DST, so the quotient is rounded rather than truncated.
func daysBetween(a, b time.Time) int {
	am := midnight(a)
	bm := midnight(b)
	return int(math.Round(bm.Sub(am).Hours() / 24))
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
