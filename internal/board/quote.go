package board

import (
	"bufio"
	"os"
	"strings"
	"time"
)

// QuoteOfDay rotates through the quote list by the number of days since the
// anchor. An empty list yields no quote.
func QuoteOfDay(quotes []string, anchor, ref time.Time) string {
	if len(quotes) == 0 {
		return ""
	}
	idx := daysBetween(anchor, ref) % len(quotes)
	if idx < 0 {
		idx += len(quotes)
	}
	return quotes[idx]
}

// LoadQuotes reads one quote per line, skipping blanks and comment lines.
// A missing file is not an error; quotes are optional.
func LoadQuotes(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var quotes []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		quotes = append(quotes, line)
	}
	return quotes, sc.Err()
}
