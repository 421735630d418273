package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	apperrors "suitespot/pkg/errors"
	"testing"
	"time"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"listing conflict", apperrors.ListingConflict(errors.New("x"), "b1"), http.StatusConflict, apperrors.CodeListingConflict},
		{"guest conflict", apperrors.GuestConflict(errors.New("x"), "b1"), http.StatusConflict, apperrors.CodeGuestConflict},
		{"invalid range", apperrors.InvalidRange(errors.New("x")), http.StatusBadRequest, apperrors.CodeInvalidRange},
		{"not found", apperrors.NotFoundWithID("listing", "l1"), http.StatusNotFound, apperrors.CodeNotFound},
		{"wrapped app error", fmt.Errorf("admit: %w", apperrors.Unavailable("booking lock")), http.StatusServiceUnavailable, apperrors.CodeUnavailable},
		{"code without status", &apperrors.AppError{Code: apperrors.CodeForbidden, Message: "no"}, http.StatusForbidden, apperrors.CodeForbidden},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, apperrors.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid JSON body: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestWriteError_HidesInternalCause(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, errors.New("mongo: connection refused at 10.0.0.3"))

	if strings.Contains(w.Body.String(), "10.0.0.3") {
		t.Errorf("internal details leaked: %s", w.Body.String())
	}
}

func TestWritePaginated(t *testing.T) {
	w := httptest.NewRecorder()
	if err := WritePaginated(w, []string{"a", "b"}, 12, 2, 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp PaginatedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if resp.TotalCount != 12 || resp.Limit != 2 || resp.Offset != 4 {
		t.Errorf("unexpected metadata: %+v", resp)
	}
}

func TestExtractLimitOffset(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int64
		wantErr    bool
	}{
		{"", 10, 0, false},
		{"limit=5&offset=20", 5, 20, false},
		{"limit=500", 100, 0, false},
		{"offset=-3", 10, 0, false},
		{"limit=abc", 0, 0, true},
		{"offset=1.5", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			limit, offset, err := ExtractLimitOffset(r)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Errorf("got (%d, %d), want (%d, %d)", limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("start_date", "2024-07-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("got %s", got)
	}

	got, err = ParseDate("start_date", "2024-07-01T14:00:00+02:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("got %s", got)
	}

	if _, err := ParseDate("start_date", "07/01/2024"); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
	if _, err := ParseDate("start_date", " "); !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("expected VALIDATION_ERROR for blank date, got %v", err)
	}
}

func TestDecodeJSON(t *testing.T) {
	var target struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"villa"}`))
	if err := DecodeJSON(r, &target); err != nil || target.Name != "villa" {
		t.Fatalf("decode failed: %v %+v", err, target)
	}

	bad := []string{``, `{"name":`, `{"name":"a","extra":1}`, `{"name":"a"}{"name":"b"}`}
	for _, body := range bad {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		if err := DecodeJSON(r, &target); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
			t.Errorf("body %q: expected INVALID_INPUT, got %v", body, err)
		}
	}
}
