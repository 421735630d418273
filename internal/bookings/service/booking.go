package service

import (
	"context"
	"errors"
	"fmt"
	billsservice "suitespot/internal/bills/service"
	bookingserrors "suitespot/internal/bookings/errors"
	"suitespot/internal/bookings/events"
	"suitespot/internal/bookings/listing"
	"suitespot/internal/bookings/repository"
	"suitespot/internal/bookings/validator"
	"suitespot/pkg/config"
	apperrors "suitespot/pkg/errors"
	"suitespot/pkg/model"
	"time"
)

type BookingService interface {
	// Admit books a listing for a guest and issues its bill atomically.
	Admit(ctx context.Context, req *model.AdmissionRequest) (*model.Admission, error)
	GetByID(ctx context.Context, id string, actor model.Actor) (*model.Booking, error)
	UpdateStatus(ctx context.Context, id string, update *model.BookingStatusUpdate, actor model.Actor) (*model.Booking, error)

	ListForGuest(ctx context.Context, guestID string) ([]*model.BookingView, error)
	ListForListing(ctx context.Context, listingID string, actor model.Actor) ([]*model.BookingView, error)
	ListForOwner(ctx context.Context, ownerID string) ([]*model.BookingView, error)
	ListAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.BookingLockRepository
	bills     billsservice.BillService
	listings  listing.Lookup
	publisher events.Publisher
	validator *validator.BookingValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.BookingLockRepository,
	bills billsservice.BillService,
	listings listing.Lookup,
	publisher events.Publisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	if publisher == nil {
		publisher = events.NewNoopPublisher()
	}
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		bills:     bills,
		listings:  listings,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// GetByID returns the booking to an admin, its guest, or the owner of the
// booked listing.
func (s *bookingService) GetByID(ctx context.Context, id string, actor model.Actor) (*model.Booking, error) {
	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor.IsAdmin() || booking.GuestID == actor.UserID {
		return booking, nil
	}
	if s.ownsListing(ctx, actor, booking.ListingID) {
		return booking, nil
	}

	s.cfg.Log.Warn("Booking access denied", "id", id, "user_id", actor.UserID)
	return nil, apperrors.Forbidden("You do not have permission to view this booking")
}

// transitions lists the statuses each status may move to. Cancelled is terminal.
var transitions = map[string][]string{
	model.BookingPending:   {model.BookingConfirmed, model.BookingCancelled},
	model.BookingConfirmed: {model.BookingCancelled},
}

func canTransition(from, to string) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s *bookingService) UpdateStatus(ctx context.Context, id string, update *model.BookingStatusUpdate, actor model.Actor) (*model.Booking, error) {
	if err := s.validator.ValidateStatusUpdate(update); err != nil {
		s.cfg.Log.Warn("Booking status update validation failed", "id", id, "status", update.Status, "error", err)
		return nil, validationError("Booking status update validation failed", err)
	}

	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeTransition(ctx, booking, update.Status, actor); err != nil {
		s.cfg.Log.Warn("Booking status change denied",
			"id", id,
			"user_id", actor.UserID,
			"role", actor.Role,
			"to", update.Status,
		)
		return nil, err
	}

	previous := booking.Status
	if !canTransition(previous, update.Status) {
		appErr := apperrors.Conflict(fmt.Sprintf("Cannot change booking status from %s to %s", previous, update.Status))
		appErr.Err = bookingserrors.ErrInvalidTransition
		return nil, appErr
	}

	if err := s.repo.UpdateStatus(ctx, id, previous, update.Status); err != nil {
		if errors.Is(err, bookingserrors.ErrStatusChanged) {
			appErr := apperrors.Conflict("Booking status was changed by another request, reload and retry")
			appErr.Err = err
			return nil, appErr
		}
		s.cfg.Log.Error("Failed to update booking status", "id", id, "error", err)
		return nil, apperrors.Storage("Failed to update booking status", err)
	}

	booking.Status = update.Status
	s.cfg.Log.Info("Booking status updated",
		"id", id,
		"from", previous,
		"to", booking.Status,
		"by", actor.UserID,
	)

	s.publish(ctx, events.TypeBookingStatusChanged, booking.ID, func(ctx context.Context) error {
		return s.publisher.BookingStatusChanged(ctx, booking, previous)
	})
	return booking, nil
}

// authorizeTransition lets admins do anything, guests cancel their own
// bookings, and listing owners confirm or cancel bookings of their listings.
func (s *bookingService) authorizeTransition(ctx context.Context, booking *model.Booking, to string, actor model.Actor) error {
	if actor.IsAdmin() {
		return nil
	}
	if booking.GuestID == actor.UserID && to == model.BookingCancelled {
		return nil
	}
	if s.ownsListing(ctx, actor, booking.ListingID) {
		return nil
	}
	return apperrors.Forbidden("You do not have permission to change this booking")
}

func (s *bookingService) ownsListing(ctx context.Context, actor model.Actor, listingID string) bool {
	if actor.Role != model.RoleOwner {
		return false
	}
	l, err := s.listings.Fetch(ctx, listingID)
	if err != nil {
		if !errors.Is(err, bookingserrors.ErrListingNotFound) {
			s.cfg.Log.Error("Failed to look up listing owner", "listing_id", listingID, "error", err)
		}
		return false
	}
	return l.OwnerID == actor.UserID
}

func (s *bookingService) load(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Error("Failed to get booking by ID", "id", id, "error", err)
		return nil, apperrors.Storage("Failed to retrieve booking", err)
	}
	return booking, nil
}

// publish runs fn detached from the request's cancellation. A failed publish
// is logged and never undoes the committed change.
func (s *bookingService) publish(ctx context.Context, eventType, bookingID string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.WriteTimeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		s.cfg.Log.Error("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", bookingID,
			"error", err,
		)
	}
}

func validationError(message string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
