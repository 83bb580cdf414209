package recurrence

import (
	"errors"
	"time"

	"github.com/jmgilet-svg/LOCATION-sub000/internal/interval"
)

// MinutesPerDay bounds the time-of-day fields of a rule.
const MinutesPerDay = 24 * 60

// Rule describes a weekly recurring unavailability window for a resource:
// every week on Weekday, from StartMinute to EndMinute (minutes from
// midnight in the engine's reference location).
type Rule struct {
	ID          string
	ResourceID  string
	Weekday     time.Weekday
	StartMinute int
	EndMinute   int
	Reason      string
}

// Validate checks the time-of-day invariants of the rule.
func (r Rule) Validate() error {
	if r.StartMinute < 0 || r.EndMinute > MinutesPerDay || r.StartMinute >= r.EndMinute {
		return ErrInvalidTimeOfDay
	}
	if r.Weekday < time.Sunday || r.Weekday > time.Saturday {
		return ErrInvalidWeekday
	}
	return nil
}

// Span is one concrete occurrence of a rule, bound to a calendar date.
// Spans are derived values; they are recomputed per query and never stored.
type Span struct {
	RuleID     string
	ResourceID string
	Start      time.Time
	End        time.Time
	Reason     string
}

// Key returns the deterministic identity of the span, "ru:<rule>:<date>".
// Expansions over overlapping windows de-duplicate on this key.
func (s Span) Key() string {
	return "ru:" + s.RuleID + ":" + s.Start.Format("2006-01-02")
}

// Engine expands recurring rules into concrete spans.
type Engine struct {
	location *time.Location
}

// NewEngine constructs an Engine that materialises spans in the provided
// reference location. If loc is nil, UTC is used.
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{location: loc}
}

// Location returns the engine's reference location.
func (e *Engine) Location() *time.Location {
	if e == nil || e.location == nil {
		return time.UTC
	}
	return e.location
}

// ErrInvalidWindow indicates an expansion window whose start does not precede its end.
var ErrInvalidWindow = errors.New("recurrence: window start must be before end")

// ErrInvalidTimeOfDay indicates a rule whose minute range is out of order or out of bounds.
var ErrInvalidTimeOfDay = errors.New("recurrence: rule start minute must be before end minute within one day")

// ErrInvalidWeekday indicates a rule with a weekday outside Sunday..Saturday.
var ErrInvalidWeekday = errors.New("recurrence: invalid weekday")

// Expand materialises every occurrence of the rules that overlaps the
// half-open window [from, to).
//
// Semantics:
//   - Both bounds are required. When either is zero the rules contribute
//     nothing and the result is nil.
//   - Dates are walked from from's calendar date through to's calendar date
//     inclusive in the engine's location; the overlap filter discards
//     occurrences that merely touch the window boundary.
//   - The result is ordered date-major then by rule input order, and
//     de-duplicated by Span.Key, so repeated expansions over overlapping
//     windows are consistent.
func (e *Engine) Expand(rules []Rule, from, to time.Time) ([]Span, error) {
	if from.IsZero() || to.IsZero() {
		return nil, nil
	}
	if !from.Before(to) {
		return nil, ErrInvalidWindow
	}

	loc := e.Location()
	from = from.In(loc)
	to = to.In(loc)

	for _, rule := range rules {
		if err := rule.Validate(); err != nil {
			return nil, err
		}
	}

	seen := make(map[string]struct{})
	var spans []Span

	day := startOfDay(from)
	last := startOfDay(to)
	for !day.After(last) {
		for _, rule := range rules {
			if rule.Weekday != day.Weekday() {
				continue
			}
			start := day.Add(time.Duration(rule.StartMinute) * time.Minute)
			end := day.Add(time.Duration(rule.EndMinute) * time.Minute)
			if !interval.Overlaps(start, end, from, to) {
				continue
			}
			span := Span{
				RuleID:     rule.ID,
				ResourceID: rule.ResourceID,
				Start:      start,
				End:        end,
				Reason:     rule.Reason,
			}
			if _, dup := seen[span.Key()]; dup {
				continue
			}
			seen[span.Key()] = struct{}{}
			spans = append(spans, span)
		}
		day = day.AddDate(0, 0, 1)
	}

	return spans, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
