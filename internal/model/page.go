package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Default page window used when a client omits from/size.
const (
	DefaultFrom = 0
	DefaultSize = 10
)

// Page is an offset-style window over a sorted listing. From is an element
// index; it is rounded down to the start of the page that contains it.
type Page struct {
	From int
	Size int
}

// Valid reports whether the window can be applied.
func (p Page) Valid() bool {
	return p.From >= 0 && p.Size > 0
}

// Offset returns the index of the first row of the page containing From.
func (p Page) Offset() int {
	return (p.From / p.Size) * p.Size
}

// Limit returns the page size.
func (p Page) Limit() int {
	return p.Size
}

// Accepted timestamp layouts for client input. Zone-less values are UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// LocalTime is a timestamp in a request body.
type LocalTime struct {
	time.Time
}

// UnmarshalJSON accepts RFC 3339 and zone-less ISO timestamps.
func (t *LocalTime) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if s == "" {
		return nil
	}
	parsed, err := ParseTime(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// ParseTime parses a client timestamp and normalizes it to UTC.
func ParseTime(s string) (time.Time, error) {
	var err error
	for _, layout := range timeLayouts {
		var t time.Time
		if t, err = time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}
