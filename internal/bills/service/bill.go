package service

import (
	"context"
	"errors"
	billserrors "suitespot/internal/bills/errors"
	"suitespot/internal/bills/repository"
	"suitespot/pkg/config"
	apperrors "suitespot/pkg/errors"
	"suitespot/pkg/model"
	"time"
)

type BillService interface {
	// Issue derives and stores the bill of a freshly admitted booking. It must
	// run with the admission's transaction context.
	Issue(ctx context.Context, booking *model.Booking) (*model.Bill, error)
	GetByID(ctx context.Context, id string) (*model.Bill, error)
	GetForUser(ctx context.Context, id, userID string) (*model.Bill, error)
	ListForUser(ctx context.Context, userID string) ([]*model.Bill, error)
	// FindByBookings indexes bills by booking id.
	FindByBookings(ctx context.Context, bookingIDs []string) (map[string]*model.Bill, error)
}

type billService struct {
	repo repository.BillRepository
	cfg  *config.Config
	now  func() time.Time
}

func NewBillService(repo repository.BillRepository, cfg *config.Config) BillService {
	return &billService{
		repo: repo,
		cfg:  cfg,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Derive builds the bill owed for booking. The amount is the booking total and
// payment is due on the last day of the stay.
func Derive(booking *model.Booking, now time.Time) *model.Bill {
	return &model.Bill{
		BookingID: booking.ID,
		UserID:    booking.GuestID,
		Amount:    booking.TotalPrice,
		IssueDate: now.Truncate(time.Millisecond),
		DueDate:   booking.EndDate,
		Status:    model.BillPending,
	}
}

func (s *billService) Issue(ctx context.Context, booking *model.Booking) (*model.Bill, error) {
	if booking.ID == "" {
		return nil, apperrors.Internal("Cannot bill a booking that was not stored", nil)
	}

	existing, err := s.repo.FindByBooking(ctx, booking.ID)
	if err != nil {
		s.cfg.Log.Error("Failed to check existing bill", "booking_id", booking.ID, "error", err)
		return nil, apperrors.Storage("Failed to check existing bill", err)
	}
	if existing != nil {
		s.cfg.Log.Error("Bill already exists for new booking", "booking_id", booking.ID, "bill_id", existing.ID)
		return nil, apperrors.DuplicateBill(billserrors.ErrDuplicateBill, booking.ID)
	}

	bill := Derive(booking, s.now())
	if err := s.repo.Create(ctx, bill); err != nil {
		if errors.Is(err, billserrors.ErrDuplicateBill) {
			s.cfg.Log.Error("Concurrent bill insert for booking", "booking_id", booking.ID)
			return nil, apperrors.DuplicateBill(err, booking.ID)
		}
		s.cfg.Log.Error("Failed to create bill", "booking_id", booking.ID, "error", err)
		return nil, apperrors.Storage("Failed to create bill", err)
	}

	s.cfg.Log.Info("Bill issued",
		"id", bill.ID,
		"booking_id", bill.BookingID,
		"amount", bill.Amount,
		"due_date", bill.DueDate,
	)
	return bill, nil
}

func (s *billService) GetByID(ctx context.Context, id string) (*model.Bill, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Bill ID cannot be empty")
	}

	bill, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, billserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Bill", id)
		}
		if errors.Is(err, billserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid bill ID format")
		}
		s.cfg.Log.Error("Failed to retrieve bill", "id", id, "error", err)
		return nil, apperrors.Storage("Failed to retrieve bill", err)
	}
	return bill, nil
}

func (s *billService) GetForUser(ctx context.Context, id, userID string) (*model.Bill, error) {
	bill, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill.UserID != userID {
		s.cfg.Log.Warn("Bill access denied", "id", id, "user_id", userID)
		return nil, apperrors.Forbidden("You do not have permission to view this bill")
	}
	return bill, nil
}

func (s *billService) ListForUser(ctx context.Context, userID string) ([]*model.Bill, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}

	bills, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		s.cfg.Log.Error("Failed to list bills", "user_id", userID, "error", err)
		return nil, apperrors.Storage("Failed to retrieve bills", err)
	}
	return bills, nil
}

func (s *billService) FindByBookings(ctx context.Context, bookingIDs []string) (map[string]*model.Bill, error) {
	bills, err := s.repo.FindByBookings(ctx, bookingIDs)
	if err != nil {
		s.cfg.Log.Error("Failed to load bills for bookings", "count", len(bookingIDs), "error", err)
		return nil, apperrors.Storage("Failed to retrieve bills", err)
	}

	byBooking := make(map[string]*model.Bill, len(bills))
	for _, bill := range bills {
		byBooking[bill.BookingID] = bill
	}
	return byBooking, nil
}
