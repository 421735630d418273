// Package listing resolves the listings that bookings refer to. The bookings
// service never writes listings; it only needs a listing's price and owner.
package listing

import (
	"context"
	"errors"
	"fmt"
	bookingserrors "suitespot/internal/bookings/errors"
	listingserrors "suitespot/internal/listings/errors"
	listingsrepo "suitespot/internal/listings/repository"
	"suitespot/pkg/model"
)

// Lookup returns bookingserrors.ErrListingNotFound for unknown or malformed ids.
// Get always reads the current listing. Fetch may return a copy up to one
// cache TTL old and is only for reads that tolerate that.
type Lookup interface {
	Get(ctx context.Context, id string) (*model.Listing, error)
	Fetch(ctx context.Context, id string) (*model.Listing, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Listing, error)
}

type mongoLookup struct {
	repo listingsrepo.ListingRepository
}

// NewMongoLookup reads listings straight from the shared database.
func NewMongoLookup(repo listingsrepo.ListingRepository) Lookup {
	return &mongoLookup{repo: repo}
}

func (l *mongoLookup) Get(ctx context.Context, id string) (*model.Listing, error) {
	listing, err := l.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, listingserrors.ErrNotFound) || errors.Is(err, listingserrors.ErrInvalidID) {
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrListingNotFound, id)
		}
		return nil, err
	}
	return listing, nil
}

func (l *mongoLookup) Fetch(ctx context.Context, id string) (*model.Listing, error) {
	return l.Get(ctx, id)
}

func (l *mongoLookup) ListByOwner(ctx context.Context, ownerID string) ([]*model.Listing, error) {
	return l.repo.FindByOwner(ctx, ownerID)
}
