package alias

import (
	"testing"

	"github.com/bekzodr/studytrack/internal/config"
)

func testGroups() []config.AliasGroup {
	return []config.AliasGroup{
		{Primary: "realferuzbek", Members: []string{"study_tracker_bot_1", "studywithferuzbek"}},
	}
}

func TestCanonicalID_FoldsAliases(t *testing.T) {
	r := NewResolver(testGroups(), map[string]string{
		"realferuzbek":        "100",
		"study_tracker_bot_1": "200",
		"studywithferuzbek":   "300",
	})

	for _, raw := range []string{"100", "200", "300"} {
		if got := r.CanonicalID(raw); got != "100" {
			t.Errorf("CanonicalID(%s) = %s, want 100", raw, got)
		}
	}
	if got := r.CanonicalID("999"); got != "999" {
		t.Errorf("CanonicalID(unmapped) = %s, want identity", got)
	}
}

func TestCanonicalID_Idempotent(t *testing.T) {
	r := NewResolver(testGroups(), map[string]string{
		"realferuzbek":        "100",
		"study_tracker_bot_1": "200",
	})
	one := r.CanonicalID("200")
	if got := r.CanonicalID(one); got != one {
		t.Errorf("CanonicalID(CanonicalID(x)) = %s, want %s", got, one)
	}
}

func TestCanonicalID_PrimaryUnobserved(t *testing.T) {
	// Primary never seen: first observed member becomes canonical.
	r := NewResolver(testGroups(), map[string]string{
		"study_tracker_bot_1": "200",
		"studywithferuzbek":   "300",
	})
	if got := r.CanonicalID("300"); got != "200" {
		t.Errorf("CanonicalID(300) = %s, want 200", got)
	}
	if l, ok := r.Label("200"); !ok || l != "@realferuzbek" {
		t.Errorf("Label(200) = (%q, %v)", l, ok)
	}
}

func TestLabel(t *testing.T) {
	r := NewResolver(testGroups(), map[string]string{"realferuzbek": "100"})
	if l, ok := r.Label("100"); !ok || l != "@realferuzbek" {
		t.Errorf("Label(100) = (%q, %v)", l, ok)
	}
	if _, ok := r.Label("999"); ok {
		t.Error("Label(unmapped) should be absent")
	}
}

func TestMalformedGroupDegradesToIdentity(t *testing.T) {
	groups := []config.AliasGroup{
		{Primary: "", Members: []string{"a", "b"}},
	}
	r := NewResolver(groups, map[string]string{"a": "1", "b": "2"})
	if got := r.CanonicalID("2"); got != "2" {
		t.Errorf("CanonicalID(2) = %s, want identity for malformed group", got)
	}
}

func TestFold_OrderIndependent(t *testing.T) {
	r := NewResolver(testGroups(), map[string]string{
		"realferuzbek":        "100",
		"study_tracker_bot_1": "200",
	})

	folded := r.Fold(map[string]int64{"100": 120, "200": 300, "999": 60})
	if folded["100"] != 420 {
		t.Errorf("folded canonical = %d, want 420", folded["100"])
	}
	if folded["999"] != 60 {
		t.Errorf("folded unmapped = %d, want 60", folded["999"])
	}
	if _, ok := folded["200"]; ok {
		t.Error("raw alias id leaked into folded totals")
	}
}

func TestRefresh_PicksUpNewAliases(t *testing.T) {
	r := NewResolver(testGroups(), map[string]string{"realferuzbek": "100"})
	if got := r.CanonicalID("200"); got != "200" {
		t.Fatalf("precondition: 200 unmapped, got %s", got)
	}

	r.Refresh(map[string]string{
		"realferuzbek":        "100",
		"study_tracker_bot_1": "200",
	})
	if got := r.CanonicalID("200"); got != "100" {
		t.Errorf("after Refresh CanonicalID(200) = %s, want 100", got)
	}
}
