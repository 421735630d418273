package service

import (
	"context"
	"errors"
	"fmt"
	bookingserrors "suitespot/internal/bookings/errors"
	"suitespot/internal/bookings/events"
	"suitespot/pkg/daterange"
	apperrors "suitespot/pkg/errors"
	"suitespot/pkg/model"

	"github.com/google/uuid"
)

// Admit checks the requested stay, serializes competing requests for the same
// listing and guest behind advisory locks, and commits the booking together
// with its bill. Nothing is stored unless both writes succeed.
func (s *bookingService) Admit(ctx context.Context, req *model.AdmissionRequest) (*model.Admission, error) {
	if err := s.validator.ValidateAdmission(req); err != nil {
		s.cfg.Log.Warn("Admission validation failed",
			"listing_id", req.ListingID,
			"guest_id", req.GuestID,
			"error", err,
		)
		return nil, validationError("Booking validation failed", err)
	}

	stay, err := daterange.New(req.StartDate, req.EndDate)
	if err != nil {
		s.cfg.Log.Warn("Admission rejected: invalid range",
			"listing_id", req.ListingID,
			"guest_id", req.GuestID,
			"error", err,
		)
		return nil, apperrors.InvalidRange(err)
	}

	listing, err := s.listings.Get(ctx, req.ListingID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrListingNotFound) {
			appErr := apperrors.NotFoundWithID("Listing", req.ListingID)
			appErr.Err = err
			return nil, appErr
		}
		s.cfg.Log.Error("Failed to look up listing", "listing_id", req.ListingID, "error", err)
		return nil, apperrors.Storage("Failed to look up listing", err)
	}

	admission, err := s.commitAdmission(ctx, req.GuestID, listing, stay)
	if err != nil {
		return nil, s.admissionError(req, stay, err)
	}

	s.cfg.Log.Info("Booking admitted",
		"booking_id", admission.Booking.ID,
		"bill_id", admission.Bill.ID,
		"listing_id", listing.ID,
		"guest_id", req.GuestID,
		"range", stay.String(),
		"total_price", admission.Booking.TotalPrice,
	)

	s.publish(ctx, events.TypeBookingAdmitted, admission.Booking.ID, func(ctx context.Context) error {
		return s.publisher.BookingAdmitted(ctx, admission)
	})
	return admission, nil
}

// commitAdmission holds the listing and guest locks only for the transaction.
// The transaction deadline falls inside the lifetime of the first lock, so no
// other request can reclaim it while the transaction may still commit.
func (s *bookingService) commitAdmission(ctx context.Context, guestID string, listing *model.Listing, stay daterange.DateRange) (*model.Admission, error) {
	owner := uuid.NewString()
	held, acquiredAt, err := s.acquireLocks(ctx, owner, listingLockID(listing.ID), guestLockID(guestID))
	if err != nil {
		return nil, err
	}
	defer s.releaseLocks(ctx, owner, held)

	txCtx, cancel := context.WithDeadline(ctx, acquiredAt.Add(s.transactionBudget()))
	defer cancel()

	var admission *model.Admission
	err = s.repo.ExecuteTransaction(txCtx, func(txCtx context.Context) error {
		result, err := s.admitLocked(txCtx, guestID, listing, stay)
		if err != nil {
			return err
		}
		admission = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return admission, nil
}

// admitLocked runs inside the transaction while both locks are held.
func (s *bookingService) admitLocked(ctx context.Context, guestID string, listing *model.Listing, stay daterange.DateRange) (*model.Admission, error) {
	existing, err := s.repo.FindGuestOverlapping(ctx, guestID, stay)
	if err != nil {
		return nil, apperrors.Storage("Failed to check guest bookings", err)
	}
	if existing != nil {
		return nil, apperrors.GuestConflict(
			fmt.Errorf("%w: booking %s", bookingserrors.ErrGuestConflict, existing.ID),
			existing.ID,
		)
	}

	existing, err = s.repo.FindOverlapping(ctx, listing.ID, stay, model.BookingCancelled)
	if err != nil {
		return nil, apperrors.Storage("Failed to check listing availability", err)
	}
	if existing != nil {
		return nil, apperrors.ListingConflict(
			fmt.Errorf("%w: booking %s", bookingserrors.ErrListingConflict, existing.ID),
			existing.ID,
		)
	}

	booking := &model.Booking{
		ListingID:  listing.ID,
		GuestID:    guestID,
		StartDate:  stay.Start,
		EndDate:    stay.End,
		TotalPrice: float64(stay.Nights()) * listing.Price,
		Status:     model.BookingPending,
		CreatedAt:  s.now(),
	}
	if err := s.validator.Validate(booking); err != nil {
		return nil, validationError("Booking validation failed", err)
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, apperrors.Storage("Failed to create booking", err)
	}

	bill, err := s.bills.Issue(ctx, booking)
	if err != nil {
		return nil, err
	}

	return &model.Admission{Booking: booking, Bill: bill}, nil
}

func (s *bookingService) admissionError(req *model.AdmissionRequest, stay daterange.DateRange, err error) error {
	var appErr *apperrors.AppError
	if apperrors.IsAppError(err) {
		appErr = apperrors.AsAppError(err)
	}

	switch {
	case appErr != nil && (appErr.Code == apperrors.CodeGuestConflict || appErr.Code == apperrors.CodeListingConflict):
		s.cfg.Log.Warn("Admission rejected",
			"code", appErr.Code,
			"listing_id", req.ListingID,
			"guest_id", req.GuestID,
			"range", stay.String(),
			"conflicting_booking_id", appErr.Details["conflicting_booking_id"],
		)
		return appErr

	case appErr != nil && (appErr.Code == apperrors.CodeUnavailable || appErr.Code == apperrors.CodeTimeout):
		return appErr

	case errors.Is(err, context.DeadlineExceeded):
		s.cfg.Log.Warn("Admission transaction ran out of time",
			"listing_id", req.ListingID,
			"guest_id", req.GuestID,
			"error", err,
		)
		timeout := apperrors.Timeout("Booking admission timed out")
		timeout.Err = err
		return timeout

	case appErr != nil:
		s.cfg.Log.Error("Admission failed",
			"code", appErr.Code,
			"listing_id", req.ListingID,
			"guest_id", req.GuestID,
			"error", err,
		)
		return appErr

	default:
		s.cfg.Log.Error("Admission transaction failed",
			"listing_id", req.ListingID,
			"guest_id", req.GuestID,
			"error", err,
		)
		return apperrors.Storage("Failed to admit booking", err)
	}
}
