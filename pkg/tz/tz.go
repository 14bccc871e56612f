// Package tz converts between naive wall-clock timestamps, UTC instants and
// ISO-8601 strings carrying the UTC offset of a named IANA zone.
//
// Offsets are always taken from the zone database for the instant in
// question, so daylight saving transitions are respected.
package tz

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// UTC is the zone name used when no region supplies one.
const UTC = "UTC"

// isoOffsetLayout renders a numeric offset even for UTC ("+00:00", never "Z").
const isoOffsetLayout = "2006-01-02T15:04:05-07:00"

// offsetLayouts are the accepted shapes of a timestamp with "Z" or ±HH:MM.
var offsetLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
}

// naiveLayouts are the accepted shapes of a timestamp without zone suffix.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// UnknownTimezoneError is returned for zone names the zone database does not know.
type UnknownTimezoneError struct {
	Zone string
	Err  error
}

func (e *UnknownTimezoneError) Error() string {
	return fmt.Sprintf("unknown timezone %q", e.Zone)
}

func (e *UnknownTimezoneError) Unwrap() error { return e.Err }

// ParseError is returned for timestamps in none of the accepted layouts.
type ParseError struct {
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid timestamp %q: expected YYYY-MM-DDTHH:MM[:SS] with optional offset", e.Value)
}

// WallClock is an instant as displayed on a clock in a particular zone.
type WallClock struct {
	Year   int
	Month  time.Month
	Day    int
	Hour   int
	Minute int
	Second int
	// Offset is the zone's UTC offset in seconds at that instant.
	Offset int
	Zone   string
}

var locations sync.Map // zone name -> *time.Location

// Load returns the location for an IANA zone name. The empty string is
// rejected rather than treated as UTC.
func Load(zone string) (*time.Location, error) {
	if zone == "" {
		return nil, &UnknownTimezoneError{Zone: zone}
	}
	if loc, ok := locations.Load(zone); ok {
		return loc.(*time.Location), nil
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, &UnknownTimezoneError{Zone: zone, Err: err}
	}
	locations.Store(zone, loc)
	return loc, nil
}

// LocalToUTC interprets a naive timestamp as wall-clock time in zone and
// returns the equivalent UTC instant, using the zone's offset on that date.
//
// Wall times that fall in a daylight saving gap or overlap follow time.Date:
// the result is correct in one of the two zones involved in the transition.
func LocalToUTC(naive, zone string) (time.Time, error) {
	loc, err := Load(zone)
	if err != nil {
		return time.Time{}, err
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, naive, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &ParseError{Value: naive}
}

// UTCToZoned decomposes t into the wall clock it displays as in zone.
func UTCToZoned(t time.Time, zone string) (WallClock, error) {
	loc, err := Load(zone)
	if err != nil {
		return WallClock{}, err
	}
	local := t.In(loc)
	name, offset := local.Zone()
	return WallClock{
		Year:   local.Year(),
		Month:  local.Month(),
		Day:    local.Day(),
		Hour:   local.Hour(),
		Minute: local.Minute(),
		Second: local.Second(),
		Offset: offset,
		Zone:   name,
	}, nil
}

// FormatISOWithOffset renders t as YYYY-MM-DDTHH:MM:SS±HH:MM in zone.
func FormatISOWithOffset(t time.Time, zone string) (string, error) {
	loc, err := Load(zone)
	if err != nil {
		return "", err
	}
	return t.In(loc).Format(isoOffsetLayout), nil
}

// FormatUnix is FormatISOWithOffset for epoch seconds.
func FormatUnix(sec int64, zone string) (string, error) {
	return FormatISOWithOffset(time.Unix(sec, 0), zone)
}

// ParseTimestamp prefers an explicit offset or "Z" suffix in s over zone
// inference. Only naive timestamps are interpreted in zone.
func ParseTimestamp(s, zone string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if HasOffset(s) {
		for _, layout := range offsetLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, &ParseError{Value: s}
	}
	return LocalToUTC(s, zone)
}

// HasOffset reports whether s ends in "Z" or a ±HH:MM offset.
func HasOffset(s string) bool {
	if strings.HasSuffix(s, "Z") {
		return true
	}
	// The time part starts after the date; a sign there can only be an offset.
	tpos := strings.IndexAny(s, "T ")
	if tpos < 0 {
		return false
	}
	return strings.ContainsAny(s[tpos:], "+-")
}
