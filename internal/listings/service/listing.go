package service

import (
	"context"
	"errors"
	"fmt"
	listingserrors "suitespot/internal/listings/errors"
	"suitespot/internal/listings/repository"
	"suitespot/internal/listings/validator"
	"suitespot/pkg/config"
	"suitespot/pkg/daterange"
	apperrors "suitespot/pkg/errors"
	"suitespot/pkg/model"
	"suitespot/pkg/sanitizer"
	"sync"
)

type ListingService interface {
	Create(ctx context.Context, listing *model.Listing) error
	GetByID(ctx context.Context, id string, actor model.Actor) (*model.Listing, error)
	GetApproved(ctx context.Context, limit int, offset int64) ([]*model.Listing, int64, error)
	GetAvailable(ctx context.Context, dr daterange.DateRange, limit int, offset int64) ([]*model.Listing, int64, error)
	GetByOwner(ctx context.Context, ownerID string) ([]*model.Listing, error)
	GetByStatus(ctx context.Context, status string, limit int, offset int64) ([]*model.Listing, int64, error)
	UpdateStatus(ctx context.Context, id string, update *model.ListingStatusUpdate, actor model.Actor) (*model.Listing, error)
	Delete(ctx context.Context, id string, actor model.Actor) error

	AddReview(ctx context.Context, listingID string, review *model.Review) error
	DeleteReview(ctx context.Context, listingID, reviewID string, actor model.Actor) error
}

type listingService struct {
	repo      repository.ListingRepository
	reviews   repository.ReviewRepository
	validator *validator.ListingValidator
	cfg       *config.Config
}

func NewListingService(
	repo repository.ListingRepository,
	reviews repository.ReviewRepository,
	validator *validator.ListingValidator,
	cfg *config.Config,
) ListingService {
	return &listingService{
		repo:      repo,
		reviews:   reviews,
		validator: validator,
		cfg:       cfg,
	}
}

// Create stores a new listing. Whatever status the caller sent, new listings
// wait for moderation.
func (s *listingService) Create(ctx context.Context, listing *model.Listing) error {
	s.sanitize(listing)
	listing.ID = ""
	listing.Status = model.ListingPending

	if err := s.validator.Validate(listing); err != nil {
		s.cfg.Log.Warn("Listing validation failed",
			"title", listing.Title,
			"owner_id", listing.OwnerID,
			"error", err,
		)
		return validationError("Listing validation failed", err)
	}

	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByOwner(txCtx, listing.OwnerID)
		if err != nil {
			return fmt.Errorf("failed to check for duplicates: %w", err)
		}

		for _, other := range existing {
			if isDuplicate(listing, other) {
				return apperrors.Conflict(fmt.Sprintf(
					"Listing with the same title and location already exists (id: %s)",
					other.ID,
				))
			}
		}

		if err := s.repo.Create(txCtx, listing); err != nil {
			return fmt.Errorf("failed to create listing: %w", err)
		}
		return nil
	})

	if err != nil {
		if apperrors.IsAppError(err) {
			s.cfg.Log.Warn("Listing rejected", "title", listing.Title, "owner_id", listing.OwnerID, "error", err)
			return err
		}
		s.cfg.Log.Error("Failed to create listing",
			"title", listing.Title,
			"owner_id", listing.OwnerID,
			"error", err,
		)
		return apperrors.Storage("Failed to create listing", err)
	}

	s.cfg.Log.Info("Listing created successfully",
		"id", listing.ID,
		"title", listing.Title,
		"owner_id", listing.OwnerID,
		"price", listing.Price,
	)
	return nil
}

// GetByID hides listings awaiting or failing moderation from everyone except
// their owner and admins.
func (s *listingService) GetByID(ctx context.Context, id string, actor model.Actor) (*model.Listing, error) {
	listing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if listing.Status != model.ListingApproved && !actor.IsAdmin() && listing.OwnerID != actor.UserID {
		return nil, apperrors.NotFoundWithID("Listing", id)
	}
	return listing, nil
}

func (s *listingService) GetApproved(ctx context.Context, limit int, offset int64) ([]*model.Listing, int64, error) {
	return s.GetByStatus(ctx, model.ListingApproved, limit, offset)
}

// GetAvailable pages approved listings that hold no confirmed booking
// overlapping dr.
func (s *listingService) GetAvailable(ctx context.Context, dr daterange.DateRange, limit int, offset int64) ([]*model.Listing, int64, error) {
	booked, err := s.repo.FindBookedListingIDs(ctx, dr)
	if err != nil {
		s.cfg.Log.Error("Failed to find booked listings", "range", dr.String(), "error", err)
		return nil, 0, apperrors.Storage("Failed to retrieve listings", err)
	}
	return s.pageByStatus(ctx, model.ListingApproved, limit, offset, booked)
}

func (s *listingService) GetByOwner(ctx context.Context, ownerID string) ([]*model.Listing, error) {
	if ownerID == "" {
		return nil, apperrors.InvalidInput("Owner ID cannot be empty")
	}

	listings, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		s.cfg.Log.Error("Failed to get listings by owner", "owner_id", ownerID, "error", err)
		return nil, apperrors.Storage("Failed to retrieve listings", err)
	}
	return listings, nil
}

func (s *listingService) GetByStatus(ctx context.Context, status string, limit int, offset int64) ([]*model.Listing, int64, error) {
	switch status {
	case model.ListingPending, model.ListingApproved, model.ListingRejected:
	default:
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("Unknown listing status: %s", status))
	}
	return s.pageByStatus(ctx, status, limit, offset, nil)
}

func (s *listingService) pageByStatus(ctx context.Context, status string, limit int, offset int64, excludeIDs []string) ([]*model.Listing, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var listings []*model.Listing
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountByStatus(ctx, status, excludeIDs...)
		if err != nil {
			s.cfg.Log.Error("Failed to count listings", "status", status, "error", err)
			errCount = apperrors.Storage("Failed to count listings", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		listings, err = s.repo.FindByStatus(ctx, status, limit, offset, excludeIDs...)
		if err != nil {
			s.cfg.Log.Error("Failed to get listings by status",
				"status", status,
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Storage("Failed to retrieve listings", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return listings, count, nil
}

func (s *listingService) UpdateStatus(ctx context.Context, id string, update *model.ListingStatusUpdate, actor model.Actor) (*model.Listing, error) {
	if !actor.IsAdmin() {
		s.cfg.Log.Warn("Listing moderation denied", "id", id, "user_id", actor.UserID, "role", actor.Role)
		return nil, apperrors.Forbidden("Only admins can moderate listings")
	}

	if err := s.validator.ValidateStatusUpdate(update); err != nil {
		s.cfg.Log.Warn("Listing status update validation failed", "id", id, "status", update.Status, "error", err)
		return nil, validationError("Listing status update validation failed", err)
	}

	listing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, id, update.Status); err != nil {
		if errors.Is(err, listingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Listing", id)
		}
		s.cfg.Log.Error("Failed to update listing status", "id", id, "status", update.Status, "error", err)
		return nil, apperrors.Storage("Failed to update listing status", err)
	}

	s.cfg.Log.Info("Listing status updated",
		"id", id,
		"from", listing.Status,
		"to", update.Status,
		"admin_id", actor.UserID,
	)

	listing.Status = update.Status
	return listing, nil
}

// Delete removes the listing's reviews and then the listing in one transaction.
func (s *listingService) Delete(ctx context.Context, id string, actor model.Actor) error {
	listing, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if !actor.IsAdmin() && listing.OwnerID != actor.UserID {
		s.cfg.Log.Warn("Listing delete denied", "id", id, "user_id", actor.UserID)
		return apperrors.Forbidden("You do not have permission to delete this listing")
	}

	var removedReviews int64
	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		n, err := s.reviews.DeleteByListing(txCtx, id)
		if err != nil {
			return err
		}
		removedReviews = n

		return s.repo.Delete(txCtx, id)
	})
	if err != nil {
		if errors.Is(err, listingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Listing", id)
		}
		s.cfg.Log.Error("Failed to delete listing", "id", id, "error", err)
		return apperrors.Storage("Failed to delete listing", err)
	}

	s.cfg.Log.Info("Listing deleted successfully",
		"id", id,
		"reviews_deleted", removedReviews,
		"deleted_by", actor.UserID,
	)
	return nil
}

func (s *listingService) AddReview(ctx context.Context, listingID string, review *model.Review) error {
	listing, err := s.load(ctx, listingID)
	if err != nil {
		return err
	}
	if listing.Status != model.ListingApproved {
		return apperrors.NotFoundWithID("Listing", listingID)
	}
	if listing.OwnerID == review.AuthorID {
		return apperrors.Forbidden("Owners cannot review their own listing")
	}

	review.ID = ""
	review.ListingID = listingID
	review.Comment = sanitizer.SanitizeDescription(review.Comment)

	if err := s.validator.ValidateReview(review); err != nil {
		s.cfg.Log.Warn("Review validation failed", "listing_id", listingID, "author_id", review.AuthorID, "error", err)
		return validationError("Review validation failed", err)
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		s.cfg.Log.Error("Failed to create review", "listing_id", listingID, "error", err)
		return apperrors.Storage("Failed to create review", err)
	}

	s.cfg.Log.Info("Review added", "id", review.ID, "listing_id", listingID, "rating", review.Rating)
	return nil
}

func (s *listingService) DeleteReview(ctx context.Context, listingID, reviewID string, actor model.Actor) error {
	review, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return s.reviewLookupError(reviewID, err)
	}
	if review.ListingID != listingID {
		return apperrors.NotFoundWithID("Review", reviewID)
	}
	if !actor.IsAdmin() && review.AuthorID != actor.UserID {
		s.cfg.Log.Warn("Review delete denied", "id", reviewID, "user_id", actor.UserID)
		return apperrors.Forbidden("You do not have permission to delete this review")
	}

	if err := s.reviews.Delete(ctx, reviewID); err != nil {
		return s.reviewLookupError(reviewID, err)
	}

	s.cfg.Log.Info("Review deleted", "id", reviewID, "listing_id", listingID, "deleted_by", actor.UserID)
	return nil
}

func (s *listingService) load(ctx context.Context, id string) (*model.Listing, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Listing ID cannot be empty")
	}

	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, listingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Listing", id)
		}
		if errors.Is(err, listingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid listing ID format")
		}
		s.cfg.Log.Error("Failed to get listing by ID", "id", id, "error", err)
		return nil, apperrors.Storage("Failed to retrieve listing", err)
	}
	return listing, nil
}

func (s *listingService) reviewLookupError(id string, err error) error {
	if errors.Is(err, listingserrors.ErrReviewNotFound) {
		return apperrors.NotFoundWithID("Review", id)
	}
	if errors.Is(err, listingserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid review ID format")
	}
	s.cfg.Log.Error("Failed to access review", "id", id, "error", err)
	return apperrors.Storage("Failed to access review", err)
}

func (s *listingService) sanitize(listing *model.Listing) {
	listing.Title = sanitizer.SanitizeText(listing.Title)
	listing.Description = sanitizer.SanitizeDescription(listing.Description)
	listing.Location = sanitizer.SanitizeText(listing.Location)
	listing.Country = sanitizer.SanitizeCountry(listing.Country)
}

func isDuplicate(a, b *model.Listing) bool {
	return sanitizer.ComparisonKey(a.Title) == sanitizer.ComparisonKey(b.Title) &&
		sanitizer.ComparisonKey(a.Location) == sanitizer.ComparisonKey(b.Location)
}

func validationError(message string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
