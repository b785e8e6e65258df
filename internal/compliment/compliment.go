// Package compliment picks a decorative compliment per user per period.
// A choice is made once, persisted, and returned unchanged on every later
// build of the same period, so reposting a board never reshuffles titles.
package compliment

import (
	"fmt"
	"math/rand"
	"os"
	"regexp"
	"strings"
)

// Store is the persistence slice the picker needs.
type Store interface {
	Compliment(period, userID string) (string, bool, error)
	SaveCompliment(period, userID, compliment string) error
	UsedCompliments(prefix, userID string) (map[string]bool, error)
}

// Picker chooses compliments from a pool, avoiding repeats for the same
// user within a scope (all weeks, all months).
type Picker struct {
	store Store
	pool  []string
	rng   *rand.Rand
}

// NewPicker creates a Picker over the given pool. An empty pool falls back
// to a small built-in set. The rng may be seeded for deterministic tests.
func NewPicker(store Store, pool []string, rng *rand.Rand) *Picker {
	if len(pool) == 0 {
		pool = builtinPool
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Picker{store: store, pool: pool, rng: rng}
}

// ForPeriod returns the compliment pinned to (periodKey, userID), choosing
// and persisting one if absent. The scope prefix of the period key (up to
// and including the colon) bounds the no-repeat set; avoid adds extra
// exclusions, e.g. the user's week and month picks when choosing a day pick.
func (p *Picker) ForPeriod(periodKey, userID string, avoid map[string]bool) (string, error) {
	prev, ok, err := p.store.Compliment(periodKey, userID)
	if err != nil {
		return "", err
	}
	if ok {
		return prev, nil
	}

	exclude := make(map[string]bool, len(avoid))
	for k := range avoid {
		exclude[k] = true
	}
	if i := strings.Index(periodKey, ":"); i >= 0 {
		used, err := p.store.UsedCompliments(periodKey[:i+1], userID)
		if err != nil {
			return "", err
		}
		for k := range used {
			exclude[k] = true
		}
	}

	choice := p.choose(exclude)
	if err := p.store.SaveCompliment(periodKey, userID, choice); err != nil {
		return "", err
	}
	return choice, nil
}

// choose picks a random pool entry outside the excluded set; when the pool
// is exhausted, repeats are allowed again.
func (p *Picker) choose(exclude map[string]bool) string {
	candidates := make([]string, 0, len(p.pool))
	for _, c := range p.pool {
		if !exclude[c] {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		candidates = p.pool
	}
	return candidates[p.rng.Intn(len(candidates))]
}

// LoadPool merges the optional compliments file with the built-in pool,
// dropping blanks, comment lines starting with "[", and duplicates.
func LoadPool(path string) ([]string, error) {
	var lines []string
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("compliment: read %s: %w", path, err)
			}
		} else {
			lines = strings.Split(string(data), "\n")
		}
	}

	seen := make(map[string]bool)
	var merged []string
	for _, s := range append(lines, builtinPool...) {
		s = strings.TrimSpace(s)
		if s == "" || strings.HasPrefix(s, "[") || seen[s] {
			continue
		}
		merged = append(merged, s)
		seen[s] = true
	}
	return merged, nil
}

var emojiLeadRe = regexp.MustCompile(`^\s*([\x{2600}-\x{27BF}\x{FE0F}\x{1F300}-\x{1FAFF}]+)\s*(.+)$`)

// EmojiToEnd moves a leading emoji run to the end of the phrase, so board
// lines keep their emoji column aligned on the right.
func EmojiToEnd(s string) string {
	s = strings.TrimSpace(s)
	if m := emojiLeadRe.FindStringSubmatch(s); m != nil {
		return m[2] + m[1]
	}
	return s
}
