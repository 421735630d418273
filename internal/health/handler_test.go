package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	kafkamw "suitespot/pkg/kafka/middleware"
	"suitespot/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

func ok(context.Context) error { return nil }

func failing(context.Context) error { return errors.New("connection refused") }

func serve(h *HealthHandler, path string) (*httptest.ResponseRecorder, Response) {
	router := httprouter.New()
	h.RegisterRoutes(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var resp Response
	_ = json.NewDecoder(w.Body).Decode(&resp)
	return w, resp
}

func TestHealth(t *testing.T) {
	w, resp := serve(NewHealthHandler(logger.Discard()).Require("mongo", failing), "/health")
	if w.Code != http.StatusOK || resp.Status != "ok" {
		t.Errorf("liveness must not depend on dependencies, got %d %+v", w.Code, resp)
	}
}

func TestReady(t *testing.T) {
	tests := []struct {
		name       string
		mongo      PingFunc
		redis      PingFunc
		wantStatus int
		wantRedis  string
	}{
		{"all healthy", ok, ok, http.StatusOK, "ok"},
		{"mongo down", failing, ok, http.StatusServiceUnavailable, "ok"},
		{"redis down is reported only", ok, failing, http.StatusOK, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(logger.Discard()).
				Require("mongo", tt.mongo).
				Observe("redis", tt.redis)

			w, resp := serve(h, "/ready")
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if resp.Dependencies["redis"] != tt.wantRedis {
				t.Errorf("redis = %q, want %q", resp.Dependencies["redis"], tt.wantRedis)
			}
		})
	}
}

func TestReady_IncludesPublishMetrics(t *testing.T) {
	metrics := kafkamw.NewPublishMetrics()
	h := NewHealthHandler(logger.Discard()).Require("mongo", ok).WithPublishMetrics(metrics)

	_, resp := serve(h, "/ready")
	if resp.Events == nil {
		t.Fatal("expected event metrics in readiness response")
	}
	if resp.Events.Published != 0 || resp.Events.Failed != 0 {
		t.Errorf("unexpected snapshot: %+v", resp.Events)
	}
}
