// Package pagination implements keyset paging over (created_at, id) ordered
// listings such as a room's question history.
package pagination

import (
	"encoding/base64"
	"errors"
	"strings"
	"time"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

var ErrInvalidCursor = errors.New("invalid cursor format")

// Cursor marks the last row of the previous page. The next page starts
// strictly after (Timestamp, LastID) in descending order.
type Cursor struct {
	LastID    string
	Timestamp time.Time
}

// EncodeCursor returns an opaque, URL-safe cursor for the row (lastID, timestamp).
func EncodeCursor(lastID string, timestamp time.Time) string {
	if lastID == "" {
		return ""
	}
	raw := timestamp.UTC().Format(time.RFC3339Nano) + "|" + lastID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a cursor produced by EncodeCursor. An empty cursor
// decodes to nil, meaning the first page.
func DecodeCursor(cursor string) (*Cursor, error) {
	if cursor == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(cursor, "="))
	if err != nil {
		return nil, ErrInvalidCursor
	}

	ts, id, ok := strings.Cut(string(decoded), "|")
	if !ok || id == "" {
		return nil, ErrInvalidCursor
	}

	timestamp, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	return &Cursor{LastID: id, Timestamp: timestamp}, nil
}

// ClampLimit applies DefaultLimit to non-positive values and caps at MaxLimit.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// Trim cuts items fetched with LIMIT limit+1 down to one page. It reports
// whether another page exists and, if so, the cursor that fetches it.
func Trim[T any](items []T, limit int, key func(T) (string, time.Time)) ([]T, string, bool) {
	if len(items) <= limit {
		return items, "", false
	}

	items = items[:limit]
	if limit == 0 {
		return items, "", true
	}
	id, ts := key(items[len(items)-1])
	return items, EncodeCursor(id, ts), true
}
