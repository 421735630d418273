package handler

import (
	"net/http"

	"suitespot/internal/bills/service"
	httputil "suitespot/pkg/http"
	"suitespot/pkg/logger"
	"suitespot/pkg/middleware"
	"suitespot/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BillHandler struct {
	service service.BillService
	log     *logger.Logger
}

func NewBillHandler(service service.BillService, log *logger.Logger) *BillHandler {
	return &BillHandler{
		service: service,
		log:     log,
	}
}

func (h *BillHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/bills", h.GetMine)
	router.GET("/api/v1/bills/id/:id", h.GetByID)
}

// GetMine lists the caller's bills, newest first.
func (h *BillHandler) GetMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := middleware.RequireActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	bills, err := h.service.ListForUser(r.Context(), actor.UserID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, bills); err != nil {
		h.log.Error("failed to write success response", "handler", "GetMine", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BillHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := middleware.RequireActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var bill *model.Bill
	if actor.IsAdmin() {
		bill, err = h.service.GetByID(r.Context(), ps.ByName("id"))
	} else {
		bill, err = h.service.GetForUser(r.Context(), ps.ByName("id"), actor.UserID)
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, bill); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}
