package board

import (
	"fmt"
	"strings"
	"time"
)

const dateFmt = "02.01.06"

// Rotating title flares, indexed by day number.
var dayFlares = []string{
	"💥", "❤️‍🔥", "👑", "🔥", "⚡", "🌟", "🏁", "🎯", "💫",
	"🧠", "🦁", "🪽", "🧵", "🛡️", "🌙", "🚀", "✨", "💎",
}

var scopeTitles = map[string]string{
	ScopeDay:   "📅 Today",
	ScopeWeek:  "📆 This Week",
	ScopeMonth: "🗓️ This Month",
}

func dayLabel(ref time.Time) string {
	return fmt.Sprintf("%s (%s)", ref.Format(dateFmt), strings.ToUpper(ref.Weekday().String()))
}

func rangeLabel(w Window, kind string) string {
	return fmt.Sprintf("%s - %s (%s %d)", w.Start.Format(dateFmt), w.End.Format(dateFmt), kind, w.Index)
}

// Render produces the chat message for a snapshot, in Discord markdown.
func Render(snap *Snapshot) string {
	var b strings.Builder

	fi := (snap.DayIndex - 1) % len(dayFlares)
	if fi < 0 {
		fi += len(dayFlares)
	}
	fmt.Fprintf(&b, "📊 **LEADERBOARD — DAY %d** %s\n", snap.DayIndex, dayFlares[fi])

	for _, board := range snap.Boards {
		b.WriteString("\n")
		renderBoard(&b, board)
	}

	if snap.Quote != "" {
		fmt.Fprintf(&b, "\n**WORD OF THE DAY 🌟**\n> ||***%s***||\n", snap.Quote)
	}
	return b.String()
}

func renderBoard(b *strings.Builder, board Board) {
	title := scopeTitles[board.Scope]
	if title == "" {
		title = board.Scope
	}
	fmt.Fprintf(b, "> **%s — %s**\n", title, board.Label)

	if len(board.Entries) == 0 {
		b.WriteString("**nobody did lessons 😴**\n")
		return
	}
	for _, e := range board.Entries {
		fmt.Fprintf(b, "%s **%s** — %dm %s", RankMarker(e.Rank), e.DisplayName, e.Minutes, e.Badge)
		if e.Compliment != "" {
			fmt.Fprintf(b, " − **%s**", e.Compliment)
		}
		b.WriteString("\n")
	}
}
