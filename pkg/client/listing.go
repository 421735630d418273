package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"suitespot/pkg/model"
)

type ListingClient struct {
	httpClient *HttpClient
}

func NewListingClient(baseUrl string) *ListingClient {
	return &ListingClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *ListingClient) As(userID, role string) *ListingClient {
	return &ListingClient{httpClient: c.httpClient.As(userID, role)}
}

func (c *ListingClient) Create(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/listings", body)
}

func (c *ListingClient) GetApproved(limit int, offset int64) (*Response, error) {
	return c.httpClient.GET(fmt.Sprintf("/api/v1/listings?limit=%d&offset=%d", limit, offset))
}

// GetAvailable lists approved listings free of confirmed bookings between
// start and end (YYYY-MM-DD).
func (c *ListingClient) GetAvailable(start, end string, limit int, offset int64) (*Response, error) {
	query := url.Values{}
	query.Set("start_date", start)
	query.Set("end_date", end)
	query.Set("limit", fmt.Sprint(limit))
	query.Set("offset", fmt.Sprint(offset))
	return c.httpClient.GET("/api/v1/listings?" + query.Encode())
}

func (c *ListingClient) GetByID(id string) (*Response, error) {
	return c.GetByIDContext(context.Background(), id)
}

func (c *ListingClient) GetByIDContext(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.Do(ctx, http.MethodGet, "/api/v1/listings/id/"+url.PathEscape(id), nil, nil)
}

func (c *ListingClient) Mine() (*Response, error) {
	return c.MineContext(context.Background())
}

func (c *ListingClient) MineContext(ctx context.Context) (*Response, error) {
	return c.httpClient.Do(ctx, http.MethodGet, "/api/v1/listings/mine", nil, nil)
}

func (c *ListingClient) UpdateStatus(id, status string) (*Response, error) {
	path := "/api/v1/listings/id/" + url.PathEscape(id) + "/status"
	return c.httpClient.PATCH(path, map[string]string{"status": status})
}

func (c *ListingClient) Delete(id string) (*Response, error) {
	return c.httpClient.DELETE("/api/v1/listings/id/" + url.PathEscape(id))
}

func (c *ListingClient) AddReview(listingID string, body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/listings/id/"+url.PathEscape(listingID)+"/reviews", body)
}

func (c *ListingClient) DecodeListing(resp *Response) (*model.Listing, error) {
	var listing model.Listing
	if err := resp.DecodeData(&listing); err != nil {
		return nil, fmt.Errorf("could not decode listing:\n%s\n%w", resp.ToString(), err)
	}
	return &listing, nil
}

func (c *ListingClient) DecodeListings(resp *Response) ([]*model.Listing, error) {
	var listings []*model.Listing
	if err := resp.DecodeData(&listings); err != nil {
		return nil, fmt.Errorf("could not decode listings:\n%s\n%w", resp.ToString(), err)
	}
	return listings, nil
}
