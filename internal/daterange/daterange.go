// Package daterange resolves named calendar ranges such as "day" or
// "this-week" into absolute timestamps in a given time zone.
package daterange

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

var ErrInvalidDateRange = errors.New("invalid date range")

// Layout is the timestamp format sent to the API.
const Layout = "2006-01-02T15:04:05.000Z07:00"

type Unit string

const (
	Year        Unit = "year"
	Quarter     Unit = "quarter"
	Month       Unit = "month"
	Week        Unit = "week"
	Day         Unit = "day"
	Hour        Unit = "hour"
	Minute      Unit = "minute"
	Second      Unit = "second"
	Millisecond Unit = "millisecond"
)

var units = map[string]Unit{
	"year":        Year,
	"quarter":     Quarter,
	"month":       Month,
	"week":        Week,
	"day":         Day,
	"hour":        Hour,
	"minute":      Minute,
	"second":      Second,
	"millisecond": Millisecond,
}

var synonyms = map[string]Unit{
	"today":    Day,
	"this-day": Day,
}

// Range is an inclusive pair of instants covering one calendar unit.
type Range struct {
	From time.Time
	To   time.Time
}

func (r Range) FromParam() string {
	return r.From.Format(Layout)
}

func (r Range) ToParam() string {
	return r.To.Format(Layout)
}

func (r Range) String() string {
	return r.FromParam() + " - " + r.ToParam()
}

type rangeView struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

func (r Range) MarshalJSON() ([]byte, error) {
	return json.Marshal(rangeView{From: r.FromParam(), To: r.ToParam()})
}

func (r *Range) UnmarshalJSON(data []byte) error {
	var view rangeView
	if err := json.Unmarshal(data, &view); err != nil {
		return err
	}

	from, err := time.Parse(Layout, view.From)
	if err != nil {
		return fmt.Errorf("could not parse range start: %w", err)
	}
	to, err := time.Parse(Layout, view.To)
	if err != nil {
		return fmt.Errorf("could not parse range end: %w", err)
	}

	r.From, r.To = from, to
	return nil
}

func (r Range) MarshalYAML() (interface{}, error) {
	return rangeView{From: r.FromParam(), To: r.ToParam()}, nil
}

// ParseUnit normalizes a range keyword. "today", "this-day" and "day" are the
// same unit; a "this-" prefix and plural forms are accepted for every unit.
func ParseUnit(keyword string) (Unit, error) {
	k := strings.ToLower(strings.TrimSpace(keyword))
	if u, ok := synonyms[k]; ok {
		return u, nil
	}

	k = strings.TrimPrefix(k, "this-")
	if u, ok := units[k]; ok {
		return u, nil
	}
	if u, ok := units[strings.TrimSuffix(k, "s")]; ok {
		return u, nil
	}

	return "", fmt.Errorf("%w: unknown unit %q", ErrInvalidDateRange, keyword)
}

// Resolve returns the range of the unit named by keyword that contains now,
// evaluated in zone.
func Resolve(keyword string, zone string, now time.Time) (Range, error) {
	unit, err := ParseUnit(keyword)
	if err != nil {
		return Range{}, err
	}

	loc, err := time.LoadLocation(zone)
	if err != nil {
		return Range{}, fmt.Errorf("%w: unknown time zone %q: %v", ErrInvalidDateRange, zone, err)
	}

	return Of(unit, now.In(loc)), nil
}

// Of returns the range of unit containing t, in t's location. To is the last
// millisecond before the next unit starts.
func Of(unit Unit, t time.Time) Range {
	start := startOf(unit, t)
	return Range{
		From: start,
		To:   next(unit, start).Add(-time.Millisecond),
	}
}

func startOf(unit Unit, t time.Time) time.Time {
	y, m, d := t.Date()
	loc := t.Location()

	switch unit {
	case Year:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	case Quarter:
		return time.Date(y, ((m-1)/3)*3+1, 1, 0, 0, 0, 0, loc)
	case Month:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case Week:
		// weeks start on Monday
		offset := (int(t.Weekday()) + 6) % 7
		return time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
	case Hour:
		return time.Date(y, m, d, t.Hour(), 0, 0, 0, loc)
	case Minute:
		return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, loc)
	case Second:
		return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, loc)
	case Millisecond:
		return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond()/1e6*1e6, loc)
	default:
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
}

func next(unit Unit, start time.Time) time.Time {
	switch unit {
	case Year:
		return start.AddDate(1, 0, 0)
	case Quarter:
		return start.AddDate(0, 3, 0)
	case Month:
		return start.AddDate(0, 1, 0)
	case Week:
		return start.AddDate(0, 0, 7)
	case Hour:
		return start.Add(time.Hour)
	case Minute:
		return start.Add(time.Minute)
	case Second:
		return start.Add(time.Second)
	case Millisecond:
		return start.Add(time.Millisecond)
	default:
		return start.AddDate(0, 0, 1)
	}
}
