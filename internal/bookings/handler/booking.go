package handler

import (
	"net/http"

	"suitespot/internal/bookings/service"
	httputil "suitespot/pkg/http"
	"suitespot/pkg/logger"
	"suitespot/pkg/middleware"
	"suitespot/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

// admissionRequest carries dates as strings so both calendar dates and
// RFC 3339 timestamps are accepted.
type admissionRequest struct {
	ListingID string `json:"listing_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Admit)
	router.GET("/api/v1/bookings", h.GetAll)
	router.GET("/api/v1/bookings/mine", h.GetMine)
	router.GET("/api/v1/bookings/owner", h.GetForOwner)
	router.GET("/api/v1/bookings/listing/:id", h.GetForListing)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.PATCH("/api/v1/bookings/id/:id/status", h.UpdateStatus)
}

func (h *BookingHandler) Admit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := middleware.RequireActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req admissionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	start, err := httputil.ParseDate("start_date", req.StartDate)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	end, err := httputil.ParseDate("end_date", req.EndDate)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	admission, err := h.service.Admit(r.Context(), &model.AdmissionRequest{
		ListingID: req.ListingID,
		GuestID:   actor.UserID,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteCreated(w, admission); err != nil {
		h.log.Error("failed to write created response", "handler", "Admit", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if _, err := middleware.RequireActor(r, model.RoleAdmin); err != nil {
		httputil.WriteError(w, err)
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	bookings, total, err := h.service.ListAll(r.Context(), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := middleware.RequireActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"), actor)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := middleware.RequireActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var update model.BookingStatusUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		httputil.WriteError(w, err)
		return
	}

	booking, err := h.service.UpdateStatus(r.Context(), ps.ByName("id"), &update, actor)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateStatus", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) GetMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := middleware.RequireActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	views, err := h.service.ListForGuest(r.Context(), actor.UserID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, views); err != nil {
		h.log.Error("failed to write success response", "handler", "GetMine", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) GetForOwner(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := middleware.RequireActor(r, model.RoleOwner, model.RoleAdmin)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	views, err := h.service.ListForOwner(r.Context(), actor.UserID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, views); err != nil {
		h.log.Error("failed to write success response", "handler", "GetForOwner", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) GetForListing(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := middleware.RequireActor(r, model.RoleOwner, model.RoleAdmin)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	views, err := h.service.ListForListing(r.Context(), ps.ByName("id"), actor)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, views); err != nil {
		h.log.Error("failed to write success response", "handler", "GetForListing", "operation", "WriteSuccess", "error", err)
	}
}
