//go:build integration

package testutil

import (
	"net/http"
	"suitespot/pkg/client"
	"suitespot/pkg/model"
	"testing"
)

const (
	AdminID = "integration-admin"
	OwnerID = "integration-owner"
)

type ListingBuilder struct {
	body map[string]any
}

func NewListingBuilder() *ListingBuilder {
	return &ListingBuilder{body: map[string]any{
		"title":       "Sea View Loft",
		"description": "Two rooms above the harbour",
		"location":    "Harbour Street 4",
		"country":     "Portugal",
		"price":       120.0,
		"capacity":    4,
	}}
}

func (b *ListingBuilder) WithTitle(title string) *ListingBuilder {
	b.body["title"] = title
	return b
}

func (b *ListingBuilder) WithPrice(price float64) *ListingBuilder {
	b.body["price"] = price
	return b
}

func (b *ListingBuilder) Build() map[string]any {
	return b.body
}

// CreateApprovedListing creates a listing as OwnerID and approves it as
// AdminID.
func CreateApprovedListing(t *testing.T, listings *client.ListingClient, body map[string]any) *model.Listing {
	t.Helper()

	resp, err := listings.As(OwnerID, model.RoleOwner).Create(body)
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}
	AssertStatusCode(t, resp, http.StatusCreated)

	created, err := listings.DecodeListing(resp)
	if err != nil {
		t.Fatal(err)
	}

	resp, err = listings.As(AdminID, model.RoleAdmin).UpdateStatus(created.ID, model.ListingApproved)
	if err != nil {
		t.Fatalf("approve listing: %v", err)
	}
	AssertStatusCode(t, resp, http.StatusOK)

	approved, err := listings.DecodeListing(resp)
	if err != nil {
		t.Fatal(err)
	}
	return approved
}

func Admission(listingID, start, end string) map[string]any {
	return map[string]any{
		"listing_id": listingID,
		"start_date": start,
		"end_date":   end,
	}
}

func AssertStatusCode(t *testing.T, resp *client.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %s", expected, resp.ToString())
	}
}

func AssertErrorCode(t *testing.T, resp *client.Response, expected string) {
	t.Helper()
	if code := client.GetErrorCode(resp); code != expected {
		t.Fatalf("expected error code %q, got %q (%s)", expected, code, resp.ToString())
	}
}
