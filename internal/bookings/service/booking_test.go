package service

import (
	"context"
	"errors"
	bookingserrors "suitespot/internal/bookings/errors"
	apperrors "suitespot/pkg/errors"
	"suitespot/pkg/model"
	"testing"
)

func seedBooking(f *fixture, status string) *model.Booking {
	return f.ledger.seed(&model.Booking{
		ListingID:  listingA,
		GuestID:    "guest-1",
		StartDate:  date("2024-07-01"),
		EndDate:    date("2024-07-04"),
		TotalPrice: 3000,
		Status:     status,
	})
}

func TestGetByID(t *testing.T) {
	tests := []struct {
		name     string
		actor    model.Actor
		wantCode string
	}{
		{"guest", model.Actor{UserID: "guest-1", Role: model.RoleCustomer}, ""},
		{"listing owner", model.Actor{UserID: ownerA, Role: model.RoleOwner}, ""},
		{"admin", model.Actor{UserID: "admin-1", Role: model.RoleAdmin}, ""},
		{"other guest", model.Actor{UserID: "guest-2", Role: model.RoleCustomer}, apperrors.CodeForbidden},
		{"other owner", model.Actor{UserID: ownerB, Role: model.RoleOwner}, apperrors.CodeForbidden},
		{"customer claiming owner id", model.Actor{UserID: ownerA, Role: model.RoleCustomer}, apperrors.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			b := seedBooking(f, model.BookingPending)

			got, err := f.svc.GetByID(context.Background(), b.ID, tt.actor)
			if tt.wantCode != "" {
				if !apperrors.HasCode(err, tt.wantCode) {
					t.Fatalf("expected %s, got %v", tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ID != b.ID {
				t.Errorf("got booking %s, want %s", got.ID, b.ID)
			}
		})
	}
}

func TestGetByID_Missing(t *testing.T) {
	f := newFixture(t)
	admin := model.Actor{UserID: "admin-1", Role: model.RoleAdmin}

	if _, err := f.svc.GetByID(context.Background(), "507f1f77bcf86cd799439099", admin); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
	if _, err := f.svc.GetByID(context.Background(), "xyz", admin); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
	if _, err := f.svc.GetByID(context.Background(), "", admin); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	admin := model.Actor{UserID: "admin-1", Role: model.RoleAdmin}
	owner := model.Actor{UserID: ownerA, Role: model.RoleOwner}
	guest := model.Actor{UserID: "guest-1", Role: model.RoleCustomer}

	tests := []struct {
		name     string
		from     string
		to       string
		actor    model.Actor
		wantCode string
	}{
		{"admin confirms", model.BookingPending, model.BookingConfirmed, admin, ""},
		{"owner confirms", model.BookingPending, model.BookingConfirmed, owner, ""},
		{"owner cancels confirmed", model.BookingConfirmed, model.BookingCancelled, owner, ""},
		{"guest cancels", model.BookingPending, model.BookingCancelled, guest, ""},
		{"guest cannot confirm", model.BookingPending, model.BookingConfirmed, guest, apperrors.CodeForbidden},
		{"stranger cannot cancel", model.BookingPending, model.BookingCancelled,
			model.Actor{UserID: "guest-2", Role: model.RoleCustomer}, apperrors.CodeForbidden},
		{"other owner cannot confirm", model.BookingPending, model.BookingConfirmed,
			model.Actor{UserID: ownerB, Role: model.RoleOwner}, apperrors.CodeForbidden},
		{"cancelled is terminal", model.BookingCancelled, model.BookingConfirmed, admin, apperrors.CodeConflict},
		{"cancel twice", model.BookingCancelled, model.BookingCancelled, admin, apperrors.CodeConflict},
		{"confirm twice", model.BookingConfirmed, model.BookingConfirmed, admin, apperrors.CodeConflict},
		{"back to pending", model.BookingConfirmed, model.BookingPending, admin, apperrors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			b := seedBooking(f, tt.from)

			got, err := f.svc.UpdateStatus(context.Background(), b.ID, &model.BookingStatusUpdate{Status: tt.to}, tt.actor)
			if tt.wantCode != "" {
				if !apperrors.HasCode(err, tt.wantCode) {
					t.Fatalf("expected %s, got %v", tt.wantCode, err)
				}
				stored, _ := f.bookings.FindByID(context.Background(), b.ID)
				if stored.Status != tt.from {
					t.Errorf("status changed to %q on rejected update", stored.Status)
				}
				if len(f.publisher.events) != 0 {
					t.Errorf("rejected update published %+v", f.publisher.events)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Status != tt.to {
				t.Errorf("returned status = %q, want %q", got.Status, tt.to)
			}
			stored, _ := f.bookings.FindByID(context.Background(), b.ID)
			if stored.Status != tt.to {
				t.Errorf("stored status = %q, want %q", stored.Status, tt.to)
			}
			if len(f.publisher.events) != 1 || f.publisher.events[0].previousStatus != tt.from {
				t.Errorf("expected status_changed event from %s, got %+v", tt.from, f.publisher.events)
			}
		})
	}
}

func TestUpdateStatus_InvalidTransitionWrapsSentinel(t *testing.T) {
	f := newFixture(t)
	b := seedBooking(f, model.BookingCancelled)

	_, err := f.svc.UpdateStatus(context.Background(), b.ID,
		&model.BookingStatusUpdate{Status: model.BookingConfirmed},
		model.Actor{UserID: "admin-1", Role: model.RoleAdmin})
	if !errors.Is(err, bookingserrors.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

// staleRepo serves a status read before a concurrent change landed.
type staleRepo struct {
	*memBookingRepo
	status string
}

func (r *staleRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	b, err := r.memBookingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Status = r.status
	return b, nil
}

func TestUpdateStatus_ConcurrentChange(t *testing.T) {
	f := newFixture(t)
	b := seedBooking(f, model.BookingCancelled)
	f.svc.repo = &staleRepo{memBookingRepo: f.bookings, status: model.BookingPending}

	_, err := f.svc.UpdateStatus(context.Background(), b.ID,
		&model.BookingStatusUpdate{Status: model.BookingConfirmed},
		model.Actor{UserID: "admin-1", Role: model.RoleAdmin})
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
	if !errors.Is(err, bookingserrors.ErrStatusChanged) {
		t.Errorf("expected ErrStatusChanged, got %v", err)
	}

	stored, _ := f.bookings.FindByID(context.Background(), b.ID)
	if stored.Status != model.BookingCancelled {
		t.Errorf("cancelled booking was revived as %q", stored.Status)
	}
}

func TestCancelledBookingFreesDates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Admit(ctx, admission(listingA, "guest-1", "2024-07-01", "2024-07-04"))
	if err != nil {
		t.Fatalf("admit: %v", err)
	}
	if _, err := f.svc.Admit(ctx, admission(listingA, "guest-2", "2024-07-02", "2024-07-03")); !apperrors.HasCode(err, apperrors.CodeListingConflict) {
		t.Fatalf("expected listing conflict before cancel, got %v", err)
	}

	guest := model.Actor{UserID: "guest-1", Role: model.RoleCustomer}
	if _, err := f.svc.UpdateStatus(ctx, first.Booking.ID, &model.BookingStatusUpdate{Status: model.BookingCancelled}, guest); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if _, err := f.svc.Admit(ctx, admission(listingA, "guest-2", "2024-07-02", "2024-07-03")); err != nil {
		t.Fatalf("re-admission after cancel: %v", err)
	}
}
