package listing

import (
	"context"
	"errors"
	bookingserrors "suitespot/internal/bookings/errors"
	"suitespot/pkg/model"
	"time"

	"github.com/karlseguin/ccache/v3"
)

// CachedLookup keeps found listings in memory for ttl. Misses and errors are
// never cached, so a listing created a moment ago resolves on the next call.
type CachedLookup struct {
	next  Lookup
	cache *ccache.Cache[*model.Listing]
	ttl   time.Duration
}

func NewCachedLookup(next Lookup, ttl time.Duration, maxSize int64) *CachedLookup {
	return &CachedLookup{
		next:  next,
		cache: ccache.New(ccache.Configure[*model.Listing]().MaxSize(maxSize)),
		ttl:   ttl,
	}
}

// Get reads through to the next lookup and refreshes the cache with the
// answer. A listing reported missing is evicted.
func (c *CachedLookup) Get(ctx context.Context, id string) (*model.Listing, error) {
	listing, err := c.next.Get(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrListingNotFound) {
			c.cache.Delete(id)
		}
		return nil, err
	}

	copied := *listing
	c.cache.Set(id, &copied, c.ttl)
	return listing, nil
}

func (c *CachedLookup) Fetch(ctx context.Context, id string) (*model.Listing, error) {
	item, err := c.cache.Fetch(id, c.ttl, func() (*model.Listing, error) {
		return c.next.Get(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	listing := *item.Value()
	return &listing, nil
}

// ListByOwner always reads through; owner reports must see new listings.
func (c *CachedLookup) ListByOwner(ctx context.Context, ownerID string) ([]*model.Listing, error) {
	listings, err := c.next.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for _, l := range listings {
		copied := *l
		c.cache.Set(l.ID, &copied, c.ttl)
	}
	return listings, nil
}

func (c *CachedLookup) Stop() {
	c.cache.Stop()
}
