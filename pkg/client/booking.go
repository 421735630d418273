package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"suitespot/pkg/model"
)

type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseUrl string) *BookingClient {
	return &BookingClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

// As returns a client acting on behalf of the given user.
func (c *BookingClient) As(userID, role string) *BookingClient {
	return &BookingClient{httpClient: c.httpClient.As(userID, role)}
}

func (c *BookingClient) Admit(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/bookings", body)
}

func (c *BookingClient) AdmitIdempotent(body any, key string) (*Response, error) {
	return c.httpClient.POSTWithHeaders("/api/v1/bookings", body, map[string]string{HeaderIdempotencyKey: key})
}

func (c *BookingClient) AdmitRaw(rawBody []byte) (*Response, error) {
	return c.httpClient.POSTRaw("/api/v1/bookings", rawBody)
}

func (c *BookingClient) GetAll(limit int, offset int64) (*Response, error) {
	path := fmt.Sprintf("/api/v1/bookings?limit=%d&offset=%d", limit, offset)
	return c.httpClient.GET(path)
}

func (c *BookingClient) GetByID(id string) (*Response, error) {
	return c.httpClient.GET("/api/v1/bookings/id/" + url.PathEscape(id))
}

func (c *BookingClient) UpdateStatus(id, status string) (*Response, error) {
	path := "/api/v1/bookings/id/" + url.PathEscape(id) + "/status"
	return c.httpClient.PATCH(path, map[string]string{"status": status})
}

func (c *BookingClient) Mine() (*Response, error) {
	return c.httpClient.GET("/api/v1/bookings/mine")
}

func (c *BookingClient) ForOwner() (*Response, error) {
	return c.httpClient.GET("/api/v1/bookings/owner")
}

func (c *BookingClient) ForListing(listingID string) (*Response, error) {
	return c.httpClient.GET("/api/v1/bookings/listing/" + url.PathEscape(listingID))
}

func (c *BookingClient) Bills() (*Response, error) {
	return c.httpClient.GET("/api/v1/bills")
}

func (c *BookingClient) Bill(id string) (*Response, error) {
	return c.httpClient.GET("/api/v1/bills/id/" + url.PathEscape(id))
}

func (c *BookingClient) DecodeAdmission(resp *Response) (*model.Admission, error) {
	var admission model.Admission
	if err := resp.DecodeData(&admission); err != nil {
		return nil, fmt.Errorf("could not decode admission:\n%s\n%w", resp.ToString(), err)
	}
	return &admission, nil
}

func (c *BookingClient) DecodeBooking(resp *Response) (*model.Booking, error) {
	var booking model.Booking
	if err := resp.DecodeData(&booking); err != nil {
		return nil, fmt.Errorf("could not decode booking:\n%s\n%w", resp.ToString(), err)
	}
	return &booking, nil
}

func (c *BookingClient) DecodeViews(resp *Response) ([]*model.BookingView, error) {
	var views []*model.BookingView
	if err := resp.DecodeData(&views); err != nil {
		return nil, fmt.Errorf("could not decode booking views:\n%s\n%w", resp.ToString(), err)
	}
	return views, nil
}

func (c *BookingClient) DecodeBookings(resp *Response) ([]*model.Booking, *Metadata, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
		Metadata
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, nil, fmt.Errorf("could not decode paginated resp:\n%s\n%w", resp.ToString(), err)
	}

	var bookings []*model.Booking
	if err := json.Unmarshal(wrapper.Data, &bookings); err != nil {
		return nil, nil, fmt.Errorf("could not decode booking list:\n%s\n%w", resp.ToString(), err)
	}

	metadata := wrapper.Metadata
	return bookings, &metadata, nil
}

func (c *BookingClient) DecodeBills(resp *Response) ([]*model.Bill, error) {
	var bills []*model.Bill
	if err := resp.DecodeData(&bills); err != nil {
		return nil, fmt.Errorf("could not decode bills:\n%s\n%w", resp.ToString(), err)
	}
	return bills, nil
}
