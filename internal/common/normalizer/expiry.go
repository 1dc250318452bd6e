package normalizer

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnparsableDate reports an expiry text that matched none of the known
// date formats. Callers drop the record and keep the raw text for logging.
var ErrUnparsableDate = errors.New("unparsable expiry date")

// expiryLayouts are tried in order. Sites write dates as "24 Aug 2025" and
// occasionally "24/08/2025"; the rest cover minor variations seen in feeds.
var expiryLayouts = []string{
	"2 Jan 2006",
	"2 January 2006",
	"2 Jan 06",
	"2/1/2006",
	"2-1-2006",
	"2006-01-02",
}

// ParseExpiry parses a listing's expiry text into a calendar date. A leading
// "Expires" marker (any case, optional colon) is stripped before parsing.
// The returned time is midnight UTC of the parsed day.
func ParseExpiry(text string) (time.Time, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty text", ErrUnparsableDate)
	}
	s = stripExpiresMarker(s)
	for _, layout := range expiryLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparsableDate, text)
}

// Current reports whether date is today or later, comparing at day
// precision. A job expiring today is still open.
func Current(date, today time.Time) bool {
	return !dateOnly(date).Before(dateOnly(today))
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

const expiresMarker = "expires"

func stripExpiresMarker(s string) string {
	if len(s) < len(expiresMarker) || !strings.EqualFold(s[:len(expiresMarker)], expiresMarker) {
		return s
	}
	rest := s[len(expiresMarker):]
	rest = strings.TrimLeft(rest, ":")
	return strings.TrimSpace(rest)
}
