package board

import "fmt"

// Badge tier thresholds, in minutes.
const (
	badgeRocket = 180
	badgeFire   = 120
	badgeMuscle = 60
)

// BadgeForMinutes maps a logged total to its effort badge. Anything under a
// full minute gets the sleeper.
func BadgeForMinutes(minutes int64) string {
	switch {
	case minutes >= badgeRocket:
		return "🚀"
	case minutes >= badgeFire:
		return "🔥"
	case minutes >= badgeMuscle:
		return "💪"
	case minutes >= 1:
		return "✅"
	default:
		return "😴"
	}
}

var keycaps = map[int]string{
	4: "4️⃣", 5: "5️⃣", 6: "6️⃣", 7: "7️⃣", 8: "8️⃣", 9: "9️⃣", 10: "🔟",
}

// RankMarker renders a 1-based rank: medals for the podium, keycaps through
// ten, a plain number past that.
func RankMarker(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	if k, ok := keycaps[rank]; ok {
		return k
	}
	return fmt.Sprintf("%d", rank)
}
