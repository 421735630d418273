package service

import (
	"context"
	"errors"
	bookingserrors "suitespot/internal/bookings/errors"
	"suitespot/pkg/config"
	apperrors "suitespot/pkg/errors"
	"suitespot/pkg/model"
	"sync"
)

func (s *bookingService) ListForGuest(ctx context.Context, guestID string) ([]*model.BookingView, error) {
	if guestID == "" {
		return nil, apperrors.InvalidInput("Guest ID cannot be empty")
	}

	bookings, err := s.repo.FindByGuest(ctx, guestID)
	if err != nil {
		s.cfg.Log.Error("Failed to get bookings by guest", "guest_id", guestID, "error", err)
		return nil, apperrors.Storage("Failed to retrieve bookings", err)
	}

	listings, err := s.lookupListings(ctx, bookings)
	if err != nil {
		return nil, err
	}
	return s.compose(ctx, bookings, listings)
}

// ListForListing is visible to the listing's owner and to admins.
func (s *bookingService) ListForListing(ctx context.Context, listingID string, actor model.Actor) ([]*model.BookingView, error) {
	if listingID == "" {
		return nil, apperrors.InvalidInput("Listing ID cannot be empty")
	}

	listing, err := s.listings.Fetch(ctx, listingID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrListingNotFound) {
			return nil, apperrors.NotFoundWithID("Listing", listingID)
		}
		s.cfg.Log.Error("Failed to look up listing", "listing_id", listingID, "error", err)
		return nil, apperrors.Storage("Failed to look up listing", err)
	}
	if !actor.IsAdmin() && listing.OwnerID != actor.UserID {
		s.cfg.Log.Warn("Listing bookings access denied", "listing_id", listingID, "user_id", actor.UserID)
		return nil, apperrors.Forbidden("You do not have permission to view bookings of this listing")
	}

	bookings, err := s.repo.FindByListing(ctx, listingID)
	if err != nil {
		s.cfg.Log.Error("Failed to get bookings by listing", "listing_id", listingID, "error", err)
		return nil, apperrors.Storage("Failed to retrieve bookings", err)
	}

	return s.compose(ctx, bookings, map[string]*model.Listing{listing.ID: listing})
}

// ListForOwner returns the bookings of every listing the owner has, with
// bills attached.
func (s *bookingService) ListForOwner(ctx context.Context, ownerID string) ([]*model.BookingView, error) {
	if ownerID == "" {
		return nil, apperrors.InvalidInput("Owner ID cannot be empty")
	}

	owned, err := s.listings.ListByOwner(ctx, ownerID)
	if err != nil {
		s.cfg.Log.Error("Failed to get listings by owner", "owner_id", ownerID, "error", err)
		return nil, apperrors.Storage("Failed to retrieve listings", err)
	}
	if len(owned) == 0 {
		return []*model.BookingView{}, nil
	}

	listings := make(map[string]*model.Listing, len(owned))
	ids := make([]string, 0, len(owned))
	for _, l := range owned {
		listings[l.ID] = l
		ids = append(ids, l.ID)
	}

	bookings, err := s.repo.FindByListings(ctx, ids)
	if err != nil {
		s.cfg.Log.Error("Failed to get bookings by listings", "owner_id", ownerID, "listings", len(ids), "error", err)
		return nil, apperrors.Storage("Failed to retrieve bookings", err)
	}

	return s.compose(ctx, bookings, listings)
}

func (s *bookingService) ListAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(ctx)
		if err != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", err)
			errCount = apperrors.Storage("Failed to count bookings", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		bookings, err = s.repo.FindAll(ctx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get all bookings",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Storage("Failed to retrieve bookings", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return bookings, count, nil
}

// lookupListings resolves the distinct listings referenced by bookings.
// Listings deleted since booking are left out.
func (s *bookingService) lookupListings(ctx context.Context, bookings []*model.Booking) (map[string]*model.Listing, error) {
	listings := make(map[string]*model.Listing)
	for _, b := range bookings {
		if _, seen := listings[b.ListingID]; seen {
			continue
		}
		l, err := s.listings.Fetch(ctx, b.ListingID)
		if err != nil {
			if errors.Is(err, bookingserrors.ErrListingNotFound) {
				listings[b.ListingID] = nil
				continue
			}
			s.cfg.Log.Error("Failed to look up listing", "listing_id", b.ListingID, "error", err)
			return nil, apperrors.Storage("Failed to look up listing", err)
		}
		listings[b.ListingID] = l
	}
	return listings, nil
}

func (s *bookingService) compose(ctx context.Context, bookings []*model.Booking, listings map[string]*model.Listing) ([]*model.BookingView, error) {
	views := make([]*model.BookingView, 0, len(bookings))
	if len(bookings) == 0 {
		return views, nil
	}

	ids := make([]string, 0, len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.ID)
	}
	bills, err := s.bills.FindByBookings(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, b := range bookings {
		views = append(views, &model.BookingView{
			Booking: b,
			Listing: listings[b.ListingID],
			Bill:    bills[b.ID],
		})
	}
	return views, nil
}
