package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/guardops-backend/internal/domain/schedule"
	"github.com/cmlabs-hris/guardops-backend/internal/handler/http/response"
)

type ScheduleHandler interface {
	Generate(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
}

type scheduleHandlerImpl struct {
	scheduleService schedule.ScheduleService
}

func NewScheduleHandler(scheduleService schedule.ScheduleService) ScheduleHandler {
	return &scheduleHandlerImpl{
		scheduleService: scheduleService,
	}
}

// Generate implements ScheduleHandler.
func (h *scheduleHandlerImpl) Generate(w http.ResponseWriter, r *http.Request) {
	var req schedule.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.scheduleService.Generate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	message := result.Message
	if message == "" {
		message = fmt.Sprintf("%d schedule slots generated", result.CreatedCount)
	}
	response.Created(w, message, result)
}

func monthQuery(r *http.Request) schedule.MonthQuery {
	return schedule.MonthQuery{
		SiteID: r.URL.Query().Get("site_id"),
		Year:   getIntQueryParam(r, "year", 0),
		Month:  getIntQueryParam(r, "month", 0),
	}
}

// List implements ScheduleHandler.
func (h *scheduleHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.scheduleService.List(r.Context(), monthQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Export streams the month grid as an xlsx attachment.
func (h *scheduleHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	file, err := h.scheduleService.Export(r.Context(), monthQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Content); err != nil {
		slog.Error("failed to write schedule export", "filename", file.Filename, "error", err)
	}
}
