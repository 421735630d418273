package health

import (
	"context"
	"net/http"
	"time"

	kafkamw "suitespot/pkg/kafka/middleware"
	httputil "suitespot/pkg/http"
	"suitespot/pkg/logger"

	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

const readyTimeout = 2 * time.Second

type PingFunc func(ctx context.Context) error

type Response struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
	Events       *kafkamw.Snapshot `json:"events,omitempty"`
}

type dependency struct {
	name     string
	ping     PingFunc
	required bool
}

type HealthHandler struct {
	deps    []dependency
	metrics *kafkamw.PublishMetrics
	log     *logger.Logger
}

func NewHealthHandler(log *logger.Logger) *HealthHandler {
	return &HealthHandler{log: log}
}

// Require registers a dependency whose failure makes the service not ready.
func (h *HealthHandler) Require(name string, ping PingFunc) *HealthHandler {
	h.deps = append(h.deps, dependency{name: name, ping: ping, required: true})
	return h
}

// Observe registers a dependency that is reported but never fails readiness.
func (h *HealthHandler) Observe(name string, ping PingFunc) *HealthHandler {
	h.deps = append(h.deps, dependency{name: name, ping: ping})
	return h
}

func (h *HealthHandler) WithPublishMetrics(metrics *kafkamw.PublishMetrics) *HealthHandler {
	h.metrics = metrics
	return h
}

func MongoPing(client *mongo.Client) PingFunc {
	return func(ctx context.Context) error {
		return client.Ping(ctx, nil)
	}
}

func RedisPing(client *redis.Client) PingFunc {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, Response{Status: "ok"}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	resp := Response{Status: "ready", Dependencies: make(map[string]string, len(h.deps))}
	status := http.StatusOK
	for _, dep := range h.deps {
		if err := dep.ping(ctx); err != nil {
			h.log.Error("Dependency health check failed",
				"dependency", dep.name,
				"required", dep.required,
				"error", err,
				"path", r.URL.Path,
			)
			resp.Dependencies[dep.name] = "error"
			if dep.required {
				resp.Status = "unavailable"
				status = http.StatusServiceUnavailable
			}
			continue
		}
		resp.Dependencies[dep.name] = "ok"
	}

	if h.metrics != nil {
		snapshot := h.metrics.Snapshot()
		resp.Events = &snapshot
	}

	if err := httputil.WriteJSON(w, status, resp); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
	}
}
