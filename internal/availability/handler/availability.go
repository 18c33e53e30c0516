package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"glowbridge/internal/availability/service"
	apperrors "glowbridge/pkg/errors"
	httputil "glowbridge/pkg/http"
	"glowbridge/pkg/logger"
	"glowbridge/pkg/model"
)

type AvailabilityHandler struct {
	service service.AvailabilityService
	log     *logger.Logger
}

func NewAvailabilityHandler(service service.AvailabilityService, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log,
	}
}

// weeklyTemplateRequest is the body for the bulk weekly endpoints.
type weeklyTemplateRequest struct {
	SalonStaffID string                     `json:"salon_staff_id"`
	Slots        []model.WeeklyTemplateSlot `json:"slots"`
}

func (h *AvailabilityHandler) writeErr(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AvailabilityHandler) writeBadRequest(w http.ResponseWriter, handlerName, msg string) {
	if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: msg,
	}); err != nil {
		h.log.Error("failed to write bad request response", "handler", handlerName, "operation", "WriteJSON", "error", err)
	}
}

func (h *AvailabilityHandler) writeSuccess(w http.ResponseWriter, handlerName string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handlerName, "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var slot model.WeeklySlot
	if err := json.NewDecoder(r.Body).Decode(&slot); err != nil {
		h.writeBadRequest(w, "Create", "Invalid request body")
		return
	}

	if err := h.service.Create(r.Context(), &slot); err != nil {
		h.writeErr(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, slot); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *AvailabilityHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == "" {
		h.writeBadRequest(w, "GetByID", "ID parameter is required")
		return
	}

	slot, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeErr(w, "GetByID", err)
		return
	}
	h.writeSuccess(w, "GetByID", slot)
}

func (h *AvailabilityHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, err := httputil.ExtractPagination(r)
	if err != nil {
		h.writeErr(w, "List", err)
		return
	}

	filter, err := extractSlotFilter(r)
	if err != nil {
		h.writeErr(w, "List", err)
		return
	}

	result, err := h.service.List(r.Context(), filter, page)
	if err != nil {
		h.writeErr(w, "List", err)
		return
	}
	h.writeSuccess(w, "List", result)
}

func (h *AvailabilityHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == "" {
		h.writeBadRequest(w, "Update", "ID parameter is required")
		return
	}

	var updates model.WeeklySlotUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeBadRequest(w, "Update", "Invalid request body")
		return
	}

	updated, err := h.service.Update(r.Context(), id, &updates)
	if err != nil {
		h.writeErr(w, "Update", err)
		return
	}
	h.writeSuccess(w, "Update", updated)
}

func (h *AvailabilityHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == "" {
		h.writeBadRequest(w, "Delete", "ID parameter is required")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeErr(w, "Delete", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *AvailabilityHandler) GetByStaff(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	staffID := ps.ByName("id")
	if staffID == "" {
		h.writeBadRequest(w, "GetByStaff", "Staff ID parameter is required")
		return
	}

	slots, err := h.service.GetByStaff(r.Context(), staffID)
	if err != nil {
		h.writeErr(w, "GetByStaff", err)
		return
	}
	h.writeSuccess(w, "GetByStaff", slots)
}

func (h *AvailabilityHandler) GetWeekly(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	staffID := ps.ByName("id")
	if staffID == "" {
		h.writeBadRequest(w, "GetWeekly", "Staff ID parameter is required")
		return
	}

	weekly, err := h.service.GetWeekly(r.Context(), staffID)
	if err != nil {
		h.writeErr(w, "GetWeekly", err)
		return
	}
	h.writeSuccess(w, "GetWeekly", weekly)
}

func (h *AvailabilityHandler) GetByDay(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	day, err := strconv.Atoi(ps.ByName("day"))
	if err != nil {
		h.writeErr(w, "GetByDay", apperrors.InvalidInput("day parameter must be a number between 0 and 6"))
		return
	}

	slots, err := h.service.GetByDay(r.Context(), day)
	if err != nil {
		h.writeErr(w, "GetByDay", err)
		return
	}
	h.writeSuccess(w, "GetByDay", slots)
}

func (h *AvailabilityHandler) GetDetails(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter, err := extractSlotFilter(r)
	if err != nil {
		h.writeErr(w, "GetDetails", err)
		return
	}

	rows, err := h.service.GetWithIdentity(r.Context(), filter)
	if err != nil {
		h.writeErr(w, "GetDetails", err)
		return
	}
	h.writeSuccess(w, "GetDetails", rows)
}

func (h *AvailabilityHandler) CreateWeekly(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req weeklyTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "CreateWeekly", "Invalid request body")
		return
	}

	slots, err := h.service.CreateWeeklyTemplate(r.Context(), req.SalonStaffID, req.Slots)
	if err != nil {
		h.writeErr(w, "CreateWeekly", err)
		return
	}

	if err := httputil.WriteCreated(w, slots); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateWeekly", "operation", "WriteCreated", "error", err)
	}
}

func (h *AvailabilityHandler) ReplaceWeekly(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req weeklyTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "ReplaceWeekly", "Invalid request body")
		return
	}

	slots, err := h.service.ReplaceWeeklyTemplate(r.Context(), req.SalonStaffID, req.Slots)
	if err != nil {
		h.writeErr(w, "ReplaceWeekly", err)
		return
	}
	h.writeSuccess(w, "ReplaceWeekly", slots)
}

func (h *AvailabilityHandler) ClearStaff(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	staffID := ps.ByName("id")
	if staffID == "" {
		h.writeBadRequest(w, "ClearStaff", "Staff ID parameter is required")
		return
	}

	deleted, err := h.service.ClearStaff(r.Context(), staffID)
	if err != nil {
		h.writeErr(w, "ClearStaff", err)
		return
	}
	h.writeSuccess(w, "ClearStaff", map[string]any{"deleted": deleted})
}

func (h *AvailabilityHandler) ClearDay(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	staffID := ps.ByName("id")
	if staffID == "" {
		h.writeBadRequest(w, "ClearDay", "Staff ID parameter is required")
		return
	}
	day, err := strconv.Atoi(ps.ByName("day"))
	if err != nil {
		h.writeErr(w, "ClearDay", apperrors.InvalidInput("day parameter must be a number between 0 and 6"))
		return
	}

	removed, err := h.service.ClearDay(r.Context(), staffID, day)
	if err != nil {
		h.writeErr(w, "ClearDay", err)
		return
	}
	if !removed {
		h.writeErr(w, "ClearDay", apperrors.NotFound("Availability for staff member on that day"))
		return
	}
	httputil.WriteNoContent(w)
}

func (h *AvailabilityHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	page, err := httputil.ExtractPagination(r)
	if err != nil {
		h.writeErr(w, "Search", err)
		return
	}

	criteria := model.SearchCriteria{
		StaffName: strings.TrimSpace(query.Get("staff_name")),
		SalonName: strings.TrimSpace(query.Get("salon_name")),
		TimeStart: strings.TrimSpace(query.Get("time_start")),
		TimeEnd:   strings.TrimSpace(query.Get("time_end")),
	}
	if s := query.Get("day_of_week"); s != "" {
		day, err := strconv.Atoi(s)
		if err != nil {
			h.writeErr(w, "Search", apperrors.InvalidInput("day_of_week parameter must be a number between 0 and 6"))
			return
		}
		criteria.DayOfWeek = &day
	}
	if s := query.Get("is_available"); s != "" {
		avail, err := strconv.ParseBool(s)
		if err != nil {
			h.writeErr(w, "Search", apperrors.InvalidInput("is_available parameter must be a boolean"))
			return
		}
		criteria.IsAvailable = &avail
	}

	result, err := h.service.Search(r.Context(), criteria, page)
	if err != nil {
		h.writeErr(w, "Search", err)
		return
	}
	h.writeSuccess(w, "Search", result)
}

// FindAvailable serves "who is free for this exact window" queries.
func (h *AvailabilityHandler) FindAvailable(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	day, err := strconv.Atoi(strings.TrimSpace(query.Get("day_of_week")))
	if err != nil {
		h.writeErr(w, "FindAvailable", apperrors.InvalidInput("day_of_week parameter must be a number between 0 and 6"))
		return
	}
	start := strings.TrimSpace(query.Get("start_time"))
	end := strings.TrimSpace(query.Get("end_time"))
	if start == "" || end == "" {
		h.writeBadRequest(w, "FindAvailable", "'start_time' and 'end_time' query parameters are required")
		return
	}

	free, err := h.service.FindFreeStaffExactWindow(r.Context(), day, start, end)
	if err != nil {
		h.writeErr(w, "FindAvailable", err)
		return
	}
	h.writeSuccess(w, "FindAvailable", free)
}

// FindAvailableAtTime serves "who can take a customer at 14:00 for an hour".
func (h *AvailabilityHandler) FindAvailableAtTime(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	page, err := httputil.ExtractPagination(r)
	if err != nil {
		h.writeErr(w, "FindAvailableAtTime", err)
		return
	}

	day, err := strconv.Atoi(strings.TrimSpace(query.Get("day_of_week")))
	if err != nil {
		h.writeErr(w, "FindAvailableAtTime", apperrors.InvalidInput("day_of_week parameter must be a number between 0 and 6"))
		return
	}
	timeSlot := strings.TrimSpace(query.Get("time_slot"))
	if timeSlot == "" {
		h.writeBadRequest(w, "FindAvailableAtTime", "'time_slot' query parameter is required")
		return
	}

	duration, err := httputil.ExtractQueryInt(r, "duration", 0)
	if err != nil {
		h.writeErr(w, "FindAvailableAtTime", err)
		return
	}

	result, err := h.service.FindFreeStaffAtTime(r.Context(), day, timeSlot, duration, page)
	if err != nil {
		h.writeErr(w, "FindAvailableAtTime", err)
		return
	}
	h.writeSuccess(w, "FindAvailableAtTime", result)
}

func (h *AvailabilityHandler) QuickSearch(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, err := httputil.ExtractPagination(r)
	if err != nil {
		h.writeErr(w, "QuickSearch", err)
		return
	}

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		h.writeBadRequest(w, "QuickSearch", "'q' query parameter is required")
		return
	}

	result, err := h.service.QuickSearch(r.Context(), q, page)
	if err != nil {
		h.writeErr(w, "QuickSearch", err)
		return
	}
	h.writeSuccess(w, "QuickSearch", result)
}

func (h *AvailabilityHandler) Schedule(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, err := httputil.ExtractPagination(r)
	if err != nil {
		h.writeErr(w, "Schedule", err)
		return
	}

	staffName := strings.TrimSpace(r.URL.Query().Get("staff_name"))
	if staffName == "" {
		h.writeBadRequest(w, "Schedule", "'staff_name' query parameter is required")
		return
	}

	result, err := h.service.ScheduleForStaffName(r.Context(), staffName, page)
	if err != nil {
		h.writeErr(w, "Schedule", err)
		return
	}
	h.writeSuccess(w, "Schedule", result)
}

func extractSlotFilter(r *http.Request) (model.SlotFilter, error) {
	query := r.URL.Query()

	filter := model.SlotFilter{
		SalonStaffID: strings.TrimSpace(query.Get("salon_staff_id")),
	}
	if s := query.Get("day_of_week"); s != "" {
		day, err := strconv.Atoi(s)
		if err != nil {
			return model.SlotFilter{}, apperrors.InvalidInput("day_of_week parameter must be a number between 0 and 6")
		}
		filter.DayOfWeek = &day
	}
	if s := query.Get("is_available"); s != "" {
		avail, err := strconv.ParseBool(s)
		if err != nil {
			return model.SlotFilter{}, apperrors.InvalidInput("is_available parameter must be a boolean")
		}
		filter.IsAvailable = &avail
	}
	return filter, nil
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/staff-availability", h.Create)
	router.GET("/api/v1/staff-availability", h.List)
	router.GET("/api/v1/staff-availability/details", h.GetDetails)
	router.GET("/api/v1/staff-availability/search", h.Search)
	router.GET("/api/v1/staff-availability/available", h.FindAvailable)
	router.GET("/api/v1/staff-availability/available-at-time", h.FindAvailableAtTime)
	router.GET("/api/v1/staff-availability/quick-search", h.QuickSearch)
	router.GET("/api/v1/staff-availability/schedule", h.Schedule)
	router.GET("/api/v1/staff-availability/id/:id", h.GetByID)
	router.PATCH("/api/v1/staff-availability/id/:id", h.Update)
	router.DELETE("/api/v1/staff-availability/id/:id", h.Delete)
	router.POST("/api/v1/staff-availability/weekly", h.CreateWeekly)
	router.PUT("/api/v1/staff-availability/weekly", h.ReplaceWeekly)
	router.GET("/api/v1/staff-availability/staff/:id", h.GetByStaff)
	router.GET("/api/v1/staff-availability/staff/:id/weekly", h.GetWeekly)
	router.DELETE("/api/v1/staff-availability/staff/:id", h.ClearStaff)
	router.DELETE("/api/v1/staff-availability/staff/:id/day/:day", h.ClearDay)
	router.GET("/api/v1/staff-availability/day/:day", h.GetByDay)
}
