package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	apperrors "suitespot/pkg/errors"
	"suitespot/pkg/logger"
	"suitespot/pkg/middleware"
	"suitespot/pkg/model"
	"testing"

	"github.com/julienschmidt/httprouter"
)

type mockBillService struct {
	getByIDFunc     func(ctx context.Context, id string) (*model.Bill, error)
	getForUserFunc  func(ctx context.Context, id, userID string) (*model.Bill, error)
	listForUserFunc func(ctx context.Context, userID string) ([]*model.Bill, error)
}

func (m *mockBillService) Issue(ctx context.Context, booking *model.Booking) (*model.Bill, error) {
	return nil, apperrors.Internal("not used by handlers", nil)
}

func (m *mockBillService) GetByID(ctx context.Context, id string) (*model.Bill, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &model.Bill{ID: id}, nil
}

func (m *mockBillService) GetForUser(ctx context.Context, id, userID string) (*model.Bill, error) {
	if m.getForUserFunc != nil {
		return m.getForUserFunc(ctx, id, userID)
	}
	return &model.Bill{ID: id, UserID: userID}, nil
}

func (m *mockBillService) ListForUser(ctx context.Context, userID string) ([]*model.Bill, error) {
	if m.listForUserFunc != nil {
		return m.listForUserFunc(ctx, userID)
	}
	return []*model.Bill{}, nil
}

func (m *mockBillService) FindByBookings(ctx context.Context, bookingIDs []string) (map[string]*model.Bill, error) {
	return map[string]*model.Bill{}, nil
}

func newRouter(svc *mockBillService) http.Handler {
	router := httprouter.New()
	NewBillHandler(svc, logger.Discard()).RegisterRoutes(router)
	return middleware.Identity(logger.Discard())(router)
}

func get(h http.Handler, path string, userID, role string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if userID != "" {
		req.Header.Set(middleware.UserIDHeader, userID)
		req.Header.Set(middleware.UserRoleHeader, role)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestGetMine(t *testing.T) {
	var gotUser string
	svc := &mockBillService{
		listForUserFunc: func(ctx context.Context, userID string) ([]*model.Bill, error) {
			gotUser = userID
			return []*model.Bill{{ID: "bill2", UserID: userID}, {ID: "bill1", UserID: userID}}, nil
		},
	}
	h := newRouter(svc)

	w := get(h, "/api/v1/bills", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", w.Code)
	}

	w = get(h, "/api/v1/bills", "guest-1", model.RoleCustomer)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if gotUser != "guest-1" {
		t.Errorf("user = %q", gotUser)
	}

	var body struct {
		Data []model.Bill `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data) != 2 || body.Data[0].ID != "bill2" {
		t.Errorf("order not preserved: %+v", body.Data)
	}
}

func TestGetByID(t *testing.T) {
	tests := []struct {
		name        string
		userID      string
		role        string
		wantStatus  int
		wantOwnerOK bool
	}{
		{"owner of bill", "guest-1", model.RoleCustomer, http.StatusOK, true},
		{"someone else", "guest-2", model.RoleCustomer, http.StatusForbidden, true},
		{"admin bypasses ownership", "admin-1", model.RoleAdmin, http.StatusOK, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ownershipChecked bool
			svc := &mockBillService{
				getForUserFunc: func(ctx context.Context, id, userID string) (*model.Bill, error) {
					ownershipChecked = true
					if userID != "guest-1" {
						return nil, apperrors.Forbidden("You do not have permission to view this bill")
					}
					return &model.Bill{ID: id, UserID: userID}, nil
				},
			}

			w := get(newRouter(svc), "/api/v1/bills/id/bill1", tt.userID, tt.role)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if ownershipChecked != tt.wantOwnerOK {
				t.Errorf("ownership checked = %v, want %v", ownershipChecked, tt.wantOwnerOK)
			}
		})
	}
}

func TestGetByID_NotFound(t *testing.T) {
	svc := &mockBillService{
		getForUserFunc: func(ctx context.Context, id, userID string) (*model.Bill, error) {
			return nil, apperrors.NotFoundWithID("Bill", id)
		},
	}

	w := get(newRouter(svc), "/api/v1/bills/id/missing", "guest-1", model.RoleCustomer)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
