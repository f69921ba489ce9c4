// Package dates parses the timestamp formats the service embeds in
// schedule and episode payloads. These are display helpers; stream
// resolution never depends on them.
package dates

import (
	"errors"
	"time"
)

// The two layouts observed in service payloads.
var layouts = []string{
	"2006-01-02T15:04:05.000Z",
	"2006-01-02 15:04:05Z",
}

// ErrUnknownFormat is returned when a timestamp matches none of the
// service's known layouts.
var ErrUnknownFormat = errors.New("unknown timestamp format")

// Parse converts a service timestamp string into a UTC time.
func Parse(s string) (time.Time, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrUnknownFormat
}

// ParseLocal converts a service timestamp into the local time zone.
func ParseLocal(s string) (time.Time, error) {
	t, err := Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	return t.Local(), nil
}
