package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/guardops-backend/internal/domain/position"
	"github.com/cmlabs-hris/guardops-backend/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PositionHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type positionHandlerImpl struct {
	positionService position.PositionService
}

func NewPositionHandler(positionService position.PositionService) PositionHandler {
	return &positionHandlerImpl{positionService: positionService}
}

func (h *positionHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req position.CreatePositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.SiteID = chi.URLParam(r, "siteID")

	result, err := h.positionService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Position template created successfully", result)
}

func (h *positionHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.positionService.GetByID(r.Context(), chi.URLParam(r, "siteID"), chi.URLParam(r, "positionID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List returns active templates unless include_inactive=true.
func (h *positionHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	includeInactive := false
	if v := getBoolQueryParam(r, "include_inactive"); v != nil {
		includeInactive = *v
	}

	result, err := h.positionService.List(r.Context(), chi.URLParam(r, "siteID"), includeInactive)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *positionHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req position.UpdatePositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.SiteID = chi.URLParam(r, "siteID")
	req.ID = chi.URLParam(r, "positionID")

	result, err := h.positionService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Position template updated successfully", result)
}

func (h *positionHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.positionService.Delete(r.Context(), chi.URLParam(r, "siteID"), chi.URLParam(r, "positionID")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Position template deactivated successfully", nil)
}
