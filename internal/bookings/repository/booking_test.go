package repository

import (
	"reflect"
	"suitespot/pkg/daterange"
	"suitespot/pkg/model"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func stay(start, end string) daterange.DateRange {
	return daterange.DateRange{Start: day(start), End: day(end)}
}

// matchesRange evaluates the date clauses of an overlap filter the way the
// server would for a stored booking.
func matchesRange(t *testing.T, filter bson.M, b *model.Booking) bool {
	t.Helper()
	clauses, ok := filter["$or"].([]bson.M)
	if !ok {
		t.Fatalf("filter has no $or clauses: %v", filter)
	}

	fields := map[string]time.Time{"start_date": b.StartDate, "end_date": b.EndDate}
	for _, clause := range clauses {
		matched := true
		for field, cond := range clause {
			value, ok := fields[field]
			if !ok {
				t.Fatalf("unexpected field %q in clause %v", field, clause)
			}
			for op, bound := range cond.(bson.M) {
				limit := bound.(time.Time)
				switch op {
				case "$gte":
					matched = matched && !value.Before(limit)
				case "$lte":
					matched = matched && !value.After(limit)
				default:
					t.Fatalf("unexpected operator %q", op)
				}
			}
		}
		if matched {
			return true
		}
	}
	return false
}

func TestOverlapFilter_AgreesWithDateRange(t *testing.T) {
	requested := stay("2024-06-05", "2024-06-08")

	tests := []struct {
		name   string
		stored daterange.DateRange
		want   bool
	}{
		{"checkout on requested start", stay("2024-06-01", "2024-06-05"), true},
		{"check-in on requested end", stay("2024-06-08", "2024-06-10"), true},
		{"starts inside", stay("2024-06-06", "2024-06-12"), true},
		{"ends inside", stay("2024-06-01", "2024-06-06"), true},
		{"encloses", stay("2024-06-01", "2024-06-30"), true},
		{"inside", stay("2024-06-06", "2024-06-07"), true},
		{"entirely before", stay("2024-06-01", "2024-06-04"), false},
		{"entirely after", stay("2024-06-09", "2024-06-12"), false},
	}

	filter := overlapFilter(requested)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &model.Booking{StartDate: tt.stored.Start, EndDate: tt.stored.End}
			if got := matchesRange(t, filter, b); got != tt.want {
				t.Errorf("filter match = %v, want %v", got, tt.want)
			}
			if got := tt.stored.Overlaps(requested); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestListingOverlapFilter(t *testing.T) {
	requested := stay("2024-06-05", "2024-06-08")

	filter := listingOverlapFilter("listing-1", requested, model.BookingCancelled)
	if filter["listing_id"] != "listing-1" {
		t.Errorf("listing_id = %v", filter["listing_id"])
	}
	want := bson.M{"$nin": []string{model.BookingCancelled}}
	if !reflect.DeepEqual(filter["status"], want) {
		t.Errorf("status = %v, want %v", filter["status"], want)
	}
	if clauses := filter["$or"].([]bson.M); len(clauses) != 3 {
		t.Errorf("expected three overlap clauses, got %d", len(clauses))
	}

	unfiltered := listingOverlapFilter("listing-1", requested)
	if _, ok := unfiltered["status"]; ok {
		t.Errorf("no status clause expected without exclusions, got %v", unfiltered["status"])
	}
}

func TestGuestOverlapFilter_IgnoresStatus(t *testing.T) {
	filter := guestOverlapFilter("guest-1", stay("2024-06-05", "2024-06-08"))
	if filter["guest_id"] != "guest-1" {
		t.Errorf("guest_id = %v", filter["guest_id"])
	}
	if _, ok := filter["status"]; ok {
		t.Errorf("guest overlap must consider every status, got %v", filter["status"])
	}
	if _, ok := filter["listing_id"]; ok {
		t.Errorf("guest overlap must span listings, got %v", filter["listing_id"])
	}
}
