package recurrence

import (
	"errors"
	"testing"
	"time"

	"github.com/jmgilet-svg/LOCATION-sub000/internal/interval"
)

func TestEngine_Expand(t *testing.T) {
	t.Parallel()

	engine := NewEngine(time.UTC)

	maintenance := Rule{
		ID:          "rule-1",
		ResourceID:  "R1",
		Weekday:     time.Monday,
		StartMinute: 8 * 60,
		EndMinute:   9 * 60,
		Reason:      "Maintenance",
	}

	// 2025-03-10 is a Monday.
	monday := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	t.Run("expands a matching weekday once", func(t *testing.T) {
		t.Parallel()

		spans, err := engine.Expand([]Rule{maintenance}, monday, monday.AddDate(0, 0, 1))
		if err != nil {
			t.Fatalf("Expand returned error: %v", err)
		}
		if len(spans) != 1 {
			t.Fatalf("Expand returned %d spans, want 1", len(spans))
		}
		span := spans[0]
		if wantStart := monday.Add(8 * time.Hour); !span.Start.Equal(wantStart) {
			t.Fatalf("span start = %v, want %v", span.Start, wantStart)
		}
		if wantEnd := monday.Add(9 * time.Hour); !span.End.Equal(wantEnd) {
			t.Fatalf("span end = %v, want %v", span.End, wantEnd)
		}
		if span.Key() != "ru:rule-1:2025-03-10" {
			t.Fatalf("span key = %q", span.Key())
		}
	})

	t.Run("skips non-matching weekdays", func(t *testing.T) {
		t.Parallel()

		tuesday := monday.AddDate(0, 0, 1)
		spans, err := engine.Expand([]Rule{maintenance}, tuesday, tuesday.AddDate(0, 0, 1))
		if err != nil {
			t.Fatalf("Expand returned error: %v", err)
		}
		if len(spans) != 0 {
			t.Fatalf("Expand returned %d spans, want 0", len(spans))
		}
	})

	t.Run("expands one span per matching week", func(t *testing.T) {
		t.Parallel()

		spans, err := engine.Expand([]Rule{maintenance}, monday, monday.AddDate(0, 0, 15))
		if err != nil {
			t.Fatalf("Expand returned error: %v", err)
		}
		if len(spans) != 3 {
			t.Fatalf("Expand returned %d spans, want 3", len(spans))
		}
		for i := 1; i < len(spans); i++ {
			if got := spans[i].Start.Sub(spans[i-1].Start); got != 7*24*time.Hour {
				t.Fatalf("span gap = %v, want one week", got)
			}
		}
	})

	t.Run("every span overlaps the query window", func(t *testing.T) {
		t.Parallel()

		from := monday.Add(30 * time.Minute)
		to := monday.AddDate(0, 0, 20)
		spans, err := engine.Expand([]Rule{maintenance}, from, to)
		if err != nil {
			t.Fatalf("Expand returned error: %v", err)
		}
		if len(spans) == 0 {
			t.Fatal("expected spans in window")
		}
		for _, span := range spans {
			if !interval.Overlaps(span.Start, span.End, from, to) {
				t.Fatalf("span %s does not overlap window", span.Key())
			}
			if span.Start.Weekday() != time.Monday {
				t.Fatalf("span %s falls on %v", span.Key(), span.Start.Weekday())
			}
		}
	})

	t.Run("excludes spans touching the window boundary", func(t *testing.T) {
		t.Parallel()

		// Window ends exactly at the rule's start on the second Monday.
		to := monday.AddDate(0, 0, 7).Add(8 * time.Hour)
		spans, err := engine.Expand([]Rule{maintenance}, monday, to)
		if err != nil {
			t.Fatalf("Expand returned error: %v", err)
		}
		if len(spans) != 1 {
			t.Fatalf("Expand returned %d spans, want 1", len(spans))
		}
	})

	t.Run("overlapping windows are consistent", func(t *testing.T) {
		t.Parallel()

		first, err := engine.Expand([]Rule{maintenance}, monday, monday.AddDate(0, 0, 8))
		if err != nil {
			t.Fatalf("Expand returned error: %v", err)
		}
		second, err := engine.Expand([]Rule{maintenance}, monday.AddDate(0, 0, 5), monday.AddDate(0, 0, 12))
		if err != nil {
			t.Fatalf("Expand returned error: %v", err)
		}

		keys := make(map[string]struct{})
		for _, span := range append(first, second...) {
			keys[span.Key()] = struct{}{}
		}
		// Two expansions over 12 days share the second Monday; dedup by key
		// leaves exactly two distinct occurrences.
		if len(keys) != 2 {
			t.Fatalf("distinct keys = %d, want 2", len(keys))
		}
	})

	t.Run("duplicate rules deduplicate by key", func(t *testing.T) {
		t.Parallel()

		spans, err := engine.Expand([]Rule{maintenance, maintenance}, monday, monday.AddDate(0, 0, 1))
		if err != nil {
			t.Fatalf("Expand returned error: %v", err)
		}
		if len(spans) != 1 {
			t.Fatalf("Expand returned %d spans, want 1", len(spans))
		}
	})

	t.Run("missing bounds contribute nothing", func(t *testing.T) {
		t.Parallel()

		spans, err := engine.Expand([]Rule{maintenance}, time.Time{}, monday)
		if err != nil {
			t.Fatalf("Expand returned error: %v", err)
		}
		if spans != nil {
			t.Fatalf("Expand = %v, want nil", spans)
		}
	})

	t.Run("rejects inverted window", func(t *testing.T) {
		t.Parallel()

		if _, err := engine.Expand([]Rule{maintenance}, monday, monday); !errors.Is(err, ErrInvalidWindow) {
			t.Fatalf("Expand error = %v, want ErrInvalidWindow", err)
		}
	})

	t.Run("rejects inverted time of day", func(t *testing.T) {
		t.Parallel()

		bad := maintenance
		bad.StartMinute, bad.EndMinute = bad.EndMinute, bad.StartMinute
		if _, err := engine.Expand([]Rule{bad}, monday, monday.AddDate(0, 0, 1)); !errors.Is(err, ErrInvalidTimeOfDay) {
			t.Fatalf("Expand error = %v, want ErrInvalidTimeOfDay", err)
		}
	})
}

func TestEngine_ExpandRespectsLocation(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("CET", 60*60)
	engine := NewEngine(loc)

	rule := Rule{
		ID:          "rule-2",
		ResourceID:  "R1",
		Weekday:     time.Monday,
		StartMinute: 8 * 60,
		EndMinute:   9 * 60,
	}

	// Midnight UTC on Monday 2025-03-10 is already 01:00 Monday in CET.
	from := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	spans, err := engine.Expand([]Rule{rule}, from, from.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if len(spans) != 1 {
		t.Fatalf("Expand returned %d spans, want 1", len(spans))
	}
	want := time.Date(2025, time.March, 10, 8, 0, 0, 0, loc)
	if !spans[0].Start.Equal(want) {
		t.Fatalf("span start = %v, want %v", spans[0].Start, want)
	}
}
