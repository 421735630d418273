package handler

import (
	"net/http"

	"suitespot/internal/listings/service"
	"suitespot/pkg/daterange"
	apperrors "suitespot/pkg/errors"
	httputil "suitespot/pkg/http"
	"suitespot/pkg/logger"
	"suitespot/pkg/middleware"
	"suitespot/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ListingHandler struct {
	service service.ListingService
	log     *logger.Logger
}

func NewListingHandler(service service.ListingService, log *logger.Logger) *ListingHandler {
	return &ListingHandler{
		service: service,
		log:     log,
	}
}

type listingRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	Country     string  `json:"country"`
	Price       float64 `json:"price"`
	Capacity    int     `json:"capacity"`
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *ListingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/listings", h.Create)
	router.GET("/api/v1/listings", h.GetApproved)
	router.GET("/api/v1/listings/mine", h.GetMine)
	router.GET("/api/v1/listings/status/:status", h.GetByStatus)
	router.GET("/api/v1/listings/id/:id", h.GetByID)
	router.DELETE("/api/v1/listings/id/:id", h.Delete)
	router.PATCH("/api/v1/listings/id/:id/status", h.UpdateStatus)
	router.POST("/api/v1/listings/id/:id/reviews", h.AddReview)
	router.DELETE("/api/v1/listings/id/:id/reviews/:reviewId", h.DeleteReview)
}

func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := middleware.RequireActor(r, model.RoleOwner, model.RoleAdmin)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req listingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	listing := &model.Listing{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Country:     req.Country,
		Price:       req.Price,
		Capacity:    req.Capacity,
		OwnerID:     actor.UserID,
	}
	if err := h.service.Create(r.Context(), listing); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteCreated(w, listing); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ListingHandler) GetApproved(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	dr, filtered, err := stayFromQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var listings []*model.Listing
	var total int64
	if filtered {
		listings, total, err = h.service.GetAvailable(r.Context(), dr, limit, offset)
	} else {
		listings, total, err = h.service.GetApproved(r.Context(), limit, offset)
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WritePaginated(w, listings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetApproved", "operation", "WritePaginated", "error", err)
	}
}

// stayFromQuery reads the optional start_date/end_date pair. Supplying one
// without the other is rejected.
func stayFromQuery(r *http.Request) (daterange.DateRange, bool, error) {
	query := r.URL.Query()
	if !query.Has("start_date") && !query.Has("end_date") {
		return daterange.DateRange{}, false, nil
	}

	start, err := httputil.ParseDate("start_date", query.Get("start_date"))
	if err != nil {
		return daterange.DateRange{}, false, err
	}
	end, err := httputil.ParseDate("end_date", query.Get("end_date"))
	if err != nil {
		return daterange.DateRange{}, false, err
	}
	dr, err := daterange.New(start, end)
	if err != nil {
		return daterange.DateRange{}, false, apperrors.InvalidRange(err)
	}
	return dr, true, nil
}

func (h *ListingHandler) GetMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := middleware.RequireActor(r, model.RoleOwner, model.RoleAdmin)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	listings, err := h.service.GetByOwner(r.Context(), actor.UserID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, listings); err != nil {
		h.log.Error("failed to write success response", "handler", "GetMine", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ListingHandler) GetByStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if _, err := middleware.RequireActor(r, model.RoleAdmin); err != nil {
		httputil.WriteError(w, err)
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	listings, total, err := h.service.GetByStatus(r.Context(), ps.ByName("status"), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WritePaginated(w, listings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetByStatus", "operation", "WritePaginated", "error", err)
	}
}

// GetByID is public; anonymous callers only see approved listings.
func (h *ListingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, _ := middleware.ActorFromContext(r.Context())

	listing, err := h.service.GetByID(r.Context(), ps.ByName("id"), actor)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, listing); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ListingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := middleware.RequireActor(r, model.RoleAdmin)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var update model.ListingStatusUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		httputil.WriteError(w, err)
		return
	}

	listing, err := h.service.UpdateStatus(r.Context(), ps.ByName("id"), &update, actor)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, listing); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateStatus", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := middleware.RequireActor(r, model.RoleOwner, model.RoleAdmin)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), ps.ByName("id"), actor); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ListingHandler) AddReview(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := middleware.RequireActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req reviewRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	review := &model.Review{
		AuthorID: actor.UserID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	}
	if err := h.service.AddReview(r.Context(), ps.ByName("id"), review); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteCreated(w, review); err != nil {
		h.log.Error("failed to write created response", "handler", "AddReview", "operation", "WriteCreated", "error", err)
	}
}

func (h *ListingHandler) DeleteReview(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := middleware.RequireActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.DeleteReview(r.Context(), ps.ByName("id"), ps.ByName("reviewId"), actor); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}
