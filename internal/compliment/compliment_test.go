package compliment

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

// memStore is an in-memory compliment store for picker tests.
type memStore struct {
	saved map[string]string // "period|user" -> compliment
}

func newMemStore() *memStore {
	return &memStore{saved: make(map[string]string)}
}

func (m *memStore) Compliment(period, userID string) (string, bool, error) {
	c, ok := m.saved[period+"|"+userID]
	return c, ok, nil
}

func (m *memStore) SaveCompliment(period, userID, compliment string) error {
	m.saved[period+"|"+userID] = compliment
	return nil
}

func (m *memStore) UsedCompliments(prefix, userID string) (map[string]bool, error) {
	used := make(map[string]bool)
	for k, v := range m.saved {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			if k[len(k)-len(userID):] == userID {
				used[v] = true
			}
		}
	}
	return used, nil
}

func TestForPeriod_StableOnceChosen(t *testing.T) {
	ms := newMemStore()
	p := NewPicker(ms, []string{"A", "B", "C"}, rand.New(rand.NewSource(1)))

	first, err := p.ForPeriod("week:2024-01-01", "u1", nil)
	if err != nil {
		t.Fatalf("ForPeriod: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := p.ForPeriod("week:2024-01-01", "u1", nil)
		if err != nil {
			t.Fatalf("ForPeriod repeat: %v", err)
		}
		if again != first {
			t.Fatalf("choice changed: %q then %q", first, again)
		}
	}
}

func TestForPeriod_NoRepeatWithinScope(t *testing.T) {
	ms := newMemStore()
	p := NewPicker(ms, []string{"A", "B", "C"}, rand.New(rand.NewSource(7)))

	got := make(map[string]bool)
	for _, week := range []string{"week:2024-01-01", "week:2024-01-08", "week:2024-01-15"} {
		c, err := p.ForPeriod(week, "u1", nil)
		if err != nil {
			t.Fatalf("ForPeriod(%s): %v", week, err)
		}
		if got[c] {
			t.Fatalf("compliment %q repeated within week scope", c)
		}
		got[c] = true
	}
}

func TestForPeriod_ExhaustedPoolAllowsRepeats(t *testing.T) {
	ms := newMemStore()
	p := NewPicker(ms, []string{"only"}, rand.New(rand.NewSource(3)))

	c1, _ := p.ForPeriod("week:2024-01-01", "u1", nil)
	c2, err := p.ForPeriod("week:2024-01-08", "u1", nil)
	if err != nil {
		t.Fatalf("ForPeriod: %v", err)
	}
	if c1 != "only" || c2 != "only" {
		t.Errorf("got %q, %q", c1, c2)
	}
}

func TestForPeriod_AvoidSet(t *testing.T) {
	ms := newMemStore()
	p := NewPicker(ms, []string{"A", "B"}, rand.New(rand.NewSource(11)))

	c, err := p.ForPeriod("day:2024-01-01", "u1", map[string]bool{"A": true})
	if err != nil {
		t.Fatalf("ForPeriod: %v", err)
	}
	if c != "B" {
		t.Errorf("choice = %q, want B (A avoided)", c)
	}
}

func TestLoadPool_MergesFileAndBuiltin(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "compliments.txt")
	content := "[section header]\nCustom One 🎓\n\nIron Discipline 🦾\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	pool, err := LoadPool(path)
	if err != nil {
		t.Fatalf("LoadPool: %v", err)
	}

	seen := make(map[string]int)
	for _, c := range pool {
		seen[c]++
	}
	if seen["Custom One 🎓"] != 1 {
		t.Error("custom entry missing")
	}
	if seen["Iron Discipline 🦾"] != 1 {
		t.Error("duplicate not removed")
	}
	if seen["[section header]"] != 0 {
		t.Error("section header not skipped")
	}
}

func TestLoadPool_MissingFileUsesBuiltin(t *testing.T) {
	pool, err := LoadPool(filepath.Join(t.TempDir(), "nope.txt"))
	if err != nil {
		t.Fatalf("LoadPool: %v", err)
	}
	if len(pool) == 0 {
		t.Fatal("empty pool")
	}
}

func TestEmojiToEnd(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"🧠 Focus Machine", "Focus Machine🧠"},
		{"Focus Machine 🧠", "Focus Machine 🧠"},
		{"  🦾 Iron Discipline ", "Iron Discipline🦾"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := EmojiToEnd(tt.in); got != tt.want {
			t.Errorf("EmojiToEnd(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
