package daterange

import (
	"errors"
	"testing"
	"time"
)

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func mustRange(t *testing.T, start, end string) DateRange {
	t.Helper()
	r, err := New(date(start), date(end))
	if err != nil {
		t.Fatalf("New(%s, %s) unexpected error: %v", start, end, err)
	}
	return r
}

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		start     time.Time
		end       time.Time
		wantError bool
	}{
		{"valid range", date("2024-07-01"), date("2024-07-04"), false},
		{"end equals start", date("2024-07-01"), date("2024-07-01"), true},
		{"end before start", date("2024-07-04"), date("2024-07-01"), true},
		{"missing start", time.Time{}, date("2024-07-04"), true},
		{"missing end", date("2024-07-01"), time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.start, tt.end)
			if tt.wantError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, ErrInvalidRange) {
					t.Errorf("expected ErrInvalidRange, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a    [2]string
		b    [2]string
		want bool
	}{
		{"identical", [2]string{"2024-06-01", "2024-06-05"}, [2]string{"2024-06-01", "2024-06-05"}, true},
		{"touching boundary", [2]string{"2024-06-01", "2024-06-05"}, [2]string{"2024-06-05", "2024-06-08"}, true},
		{"touching boundary reversed", [2]string{"2024-06-05", "2024-06-08"}, [2]string{"2024-06-01", "2024-06-05"}, true},
		{"partial overlap", [2]string{"2024-06-01", "2024-06-05"}, [2]string{"2024-06-03", "2024-06-10"}, true},
		{"enclosed", [2]string{"2024-06-01", "2024-06-30"}, [2]string{"2024-06-10", "2024-06-12"}, true},
		{"encloses", [2]string{"2024-06-10", "2024-06-12"}, [2]string{"2024-06-01", "2024-06-30"}, true},
		{"disjoint before", [2]string{"2024-06-01", "2024-06-04"}, [2]string{"2024-06-05", "2024-06-08"}, false},
		{"disjoint after", [2]string{"2024-06-09", "2024-06-12"}, [2]string{"2024-06-05", "2024-06-08"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mustRange(t, tt.a[0], tt.a[1])
			b := mustRange(t, tt.b[0], tt.b[1])
			if got := a.Overlaps(b); got != tt.want {
				t.Errorf("%s.Overlaps(%s) = %v, want %v", a, b, got, tt.want)
			}
			if got := b.Overlaps(a); got != tt.want {
				t.Errorf("overlap must be symmetric: %s.Overlaps(%s) = %v", b, a, got)
			}
		})
	}
}

func TestContains(t *testing.T) {
	outer := mustRange(t, "2024-06-01", "2024-06-30")

	if !outer.Contains(mustRange(t, "2024-06-10", "2024-06-12")) {
		t.Error("expected outer range to contain inner range")
	}
	if !outer.Contains(outer) {
		t.Error("expected a range to contain itself")
	}
	if outer.Contains(mustRange(t, "2024-05-31", "2024-06-02")) {
		t.Error("range starting before outer must not be contained")
	}
	if outer.Contains(mustRange(t, "2024-06-29", "2024-07-01")) {
		t.Error("range ending after outer must not be contained")
	}
}

func TestNights(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"three nights", date("2024-07-01"), date("2024-07-04"), 3},
		{"one night", date("2024-07-01"), date("2024-07-02"), 1},
		{"partial day rounds up", date("2024-07-01"), date("2024-07-02").Add(time.Hour), 2},
		{"few hours is one night", date("2024-07-01"), date("2024-07-01").Add(3 * time.Hour), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.start, tt.end)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := r.Nights(); got != tt.want {
				t.Errorf("Nights() = %d, want %d", got, tt.want)
			}
		})
	}
}
