package service

import (
	"context"
	"fmt"
	apperrors "suitespot/pkg/errors"
	"suitespot/pkg/model"
	"testing"
)

func admitAll(t *testing.T, f *fixture, reqs ...*model.AdmissionRequest) []*model.Admission {
	t.Helper()
	admissions := make([]*model.Admission, 0, len(reqs))
	for _, req := range reqs {
		a, err := f.svc.Admit(context.Background(), req)
		if err != nil {
			t.Fatalf("admit %+v: %v", req, err)
		}
		admissions = append(admissions, a)
	}
	return admissions
}

func TestListForOwner_AttachesBillsAndListings(t *testing.T) {
	f := newFixture(t)
	admitAll(t, f,
		admission(listingA, "guest-1", "2024-07-01", "2024-07-04"),
		admission(listingA, "guest-2", "2024-07-10", "2024-07-12"),
		admission(listingB, "guest-3", "2024-07-01", "2024-07-02"),
	)

	views, err := f.svc.ListForOwner(context.Background(), ownerA)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 bookings for owner, got %d", len(views))
	}
	for _, v := range views {
		if v.Booking.ListingID != listingA {
			t.Errorf("foreign booking in owner report: %+v", v.Booking)
		}
		if v.Listing == nil || v.Listing.OwnerID != ownerA {
			t.Errorf("listing not attached: %+v", v.Listing)
		}
		if v.Bill == nil || v.Bill.BookingID != v.Booking.ID {
			t.Fatalf("bill not attached to booking %s", v.Booking.ID)
		}
		if v.Bill.Amount != v.Booking.TotalPrice {
			t.Errorf("bill amount %v != booking total %v", v.Bill.Amount, v.Booking.TotalPrice)
		}
	}
}

func TestListForOwner_NoListings(t *testing.T) {
	f := newFixture(t)

	views, err := f.svc.ListForOwner(context.Background(), "owner-without-listings")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if views == nil || len(views) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", views)
	}
}

func TestListForGuest(t *testing.T) {
	f := newFixture(t)
	admitAll(t, f,
		admission(listingA, "guest-1", "2024-07-01", "2024-07-04"),
		admission(listingB, "guest-1", "2024-08-01", "2024-08-04"),
		admission(listingB, "guest-2", "2024-07-01", "2024-07-02"),
	)
	delete(f.listings.listings, listingB)

	views, err := f.svc.ListForGuest(context.Background(), "guest-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 bookings for guest, got %d", len(views))
	}
	for _, v := range views {
		if v.Booking.GuestID != "guest-1" {
			t.Errorf("foreign booking in guest report: %+v", v.Booking)
		}
		if v.Bill == nil {
			t.Errorf("bill missing for booking %s", v.Booking.ID)
		}
		switch v.Booking.ListingID {
		case listingA:
			if v.Listing == nil {
				t.Error("existing listing should be attached")
			}
		case listingB:
			if v.Listing != nil {
				t.Error("deleted listing should be left out")
			}
		}
	}
}

func TestListForListing_Authorization(t *testing.T) {
	tests := []struct {
		name     string
		actor    model.Actor
		wantCode string
	}{
		{"owner", model.Actor{UserID: ownerA, Role: model.RoleOwner}, ""},
		{"admin", model.Actor{UserID: "admin-1", Role: model.RoleAdmin}, ""},
		{"other owner", model.Actor{UserID: ownerB, Role: model.RoleOwner}, apperrors.CodeForbidden},
		{"guest", model.Actor{UserID: "guest-1", Role: model.RoleCustomer}, apperrors.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			admitAll(t, f, admission(listingA, "guest-1", "2024-07-01", "2024-07-04"))

			views, err := f.svc.ListForListing(context.Background(), listingA, tt.actor)
			if tt.wantCode != "" {
				if !apperrors.HasCode(err, tt.wantCode) {
					t.Fatalf("expected %s, got %v", tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(views) != 1 || views[0].Bill == nil || views[0].Listing == nil {
				t.Errorf("unexpected views: %+v", views)
			}
		})
	}
}

func TestListForListing_Unknown(t *testing.T) {
	f := newFixture(t)
	admin := model.Actor{UserID: "admin-1", Role: model.RoleAdmin}

	_, err := f.svc.ListForListing(context.Background(), "507f1f77bcf86cd799439099", admin)
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestListAll_Pagination(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 15; i++ {
		f.ledger.seed(&model.Booking{
			ListingID: listingA,
			GuestID:   fmt.Sprintf("guest-%d", i),
			StartDate: date("2024-07-01"),
			EndDate:   date("2024-07-02"),
			Status:    model.BookingPending,
		})
	}

	tests := []struct {
		name      string
		limit     int
		offset    int64
		wantCount int
	}{
		{"default limit", 0, 0, 10},
		{"explicit limit", 5, 0, 5},
		{"last page", 10, 10, 5},
		{"negative offset", 3, -4, 3},
		{"past the end", 10, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookings, total, err := f.svc.ListAll(context.Background(), tt.limit, tt.offset)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if total != 15 {
				t.Errorf("total = %d, want 15", total)
			}
			if len(bookings) != tt.wantCount {
				t.Errorf("page size = %d, want %d", len(bookings), tt.wantCount)
			}
		})
	}
}
