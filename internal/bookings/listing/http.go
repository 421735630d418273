package listing

import (
	"context"
	"fmt"
	"net/http"
	bookingserrors "suitespot/internal/bookings/errors"
	"suitespot/pkg/client"
	"suitespot/pkg/model"
)

// ServiceUserID identifies the bookings service when it calls the listings API.
const ServiceUserID = "bookings-service"

type httpLookup struct {
	client *client.ListingClient
}

// NewHTTPLookup queries the listings service. Single listings are fetched with
// an admin identity so pending listings resolve too.
func NewHTTPLookup(c *client.ListingClient) Lookup {
	return &httpLookup{client: c}
}

func (l *httpLookup) Get(ctx context.Context, id string) (*model.Listing, error) {
	resp, err := l.client.As(ServiceUserID, model.RoleAdmin).GetByIDContext(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listings service unreachable: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return l.client.DecodeListing(resp)
	case http.StatusNotFound, http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrListingNotFound, id)
	default:
		return nil, fmt.Errorf("listings service returned %s", resp.ToString())
	}
}

func (l *httpLookup) Fetch(ctx context.Context, id string) (*model.Listing, error) {
	return l.Get(ctx, id)
}

func (l *httpLookup) ListByOwner(ctx context.Context, ownerID string) ([]*model.Listing, error) {
	resp, err := l.client.As(ownerID, model.RoleOwner).MineContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("listings service unreachable: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listings service returned %s", resp.ToString())
	}
	return l.client.DecodeListings(resp)
}
