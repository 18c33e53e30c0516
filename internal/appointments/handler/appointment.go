package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"glowbridge/internal/appointments/service"
	apperrors "glowbridge/pkg/errors"
	httputil "glowbridge/pkg/http"
	"glowbridge/pkg/logger"
	"glowbridge/pkg/model"
)

type AppointmentHandler struct {
	service service.AppointmentService
	log     *logger.Logger
}

func NewAppointmentHandler(service service.AppointmentService, log *logger.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		service: service,
		log:     log,
	}
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

func (h *AppointmentHandler) writeErr(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AppointmentHandler) writeBadRequest(w http.ResponseWriter, handlerName, msg string) {
	if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: msg,
	}); err != nil {
		h.log.Error("failed to write bad request response", "handler", handlerName, "operation", "WriteJSON", "error", err)
	}
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var appointment model.Appointment
	if err := json.NewDecoder(r.Body).Decode(&appointment); err != nil {
		h.writeBadRequest(w, "Create", "Invalid request body")
		return
	}

	if err := h.service.Create(r.Context(), &appointment); err != nil {
		h.writeErr(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, appointment); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *AppointmentHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == "" {
		h.writeBadRequest(w, "GetByID", "ID parameter is required")
		return
	}

	appointment, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeErr(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, appointment); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, err := httputil.ExtractPagination(r)
	if err != nil {
		h.writeErr(w, "List", err)
		return
	}

	filter, err := extractAppointmentFilter(r)
	if err != nil {
		h.writeErr(w, "List", err)
		return
	}

	result, err := h.service.List(r.Context(), filter, page)
	if err != nil {
		h.writeErr(w, "List", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == "" {
		h.writeBadRequest(w, "Update", "ID parameter is required")
		return
	}

	var updates model.AppointmentUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeBadRequest(w, "Update", "Invalid request body")
		return
	}

	updated, err := h.service.Update(r.Context(), id, &updates)
	if err != nil {
		h.writeErr(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, updated); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == "" {
		h.writeBadRequest(w, "UpdateStatus", "ID parameter is required")
		return
	}

	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "UpdateStatus", "Invalid request body")
		return
	}

	updated, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.writeErr(w, "UpdateStatus", err)
		return
	}

	if err := httputil.WriteSuccess(w, updated); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateStatus", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
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

func extractAppointmentFilter(r *http.Request) (model.AppointmentFilter, error) {
	query := r.URL.Query()

	filter := model.AppointmentFilter{
		UserID:       strings.TrimSpace(query.Get("user_id")),
		SalonStaffID: strings.TrimSpace(query.Get("salon_staff_id")),
		ServiceID:    strings.TrimSpace(query.Get("service_id")),
		PaymentType:  strings.TrimSpace(query.Get("payment_type")),
		Status:       strings.TrimSpace(query.Get("status")),
	}
	if s := query.Get("is_paid"); s != "" {
		paid, err := strconv.ParseBool(s)
		if err != nil {
			return model.AppointmentFilter{}, apperrors.InvalidInput("is_paid parameter must be a boolean")
		}
		filter.IsPaid = &paid
	}
	if s := query.Get("start_from"); s != "" {
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return model.AppointmentFilter{}, apperrors.InvalidInput("start_from parameter must be an RFC3339 timestamp")
		}
		filter.StartAtFrom = &ts
	}
	if s := query.Get("start_to"); s != "" {
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return model.AppointmentFilter{}, apperrors.InvalidInput("start_to parameter must be an RFC3339 timestamp")
		}
		filter.StartAtTo = &ts
	}
	return filter, nil
}

func (h *AppointmentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/appointments", h.Create)
	router.GET("/api/v1/appointments", h.List)
	router.GET("/api/v1/appointments/id/:id", h.GetByID)
	router.PATCH("/api/v1/appointments/id/:id", h.Update)
	router.PATCH("/api/v1/appointments/id/:id/status", h.UpdateStatus)
	router.DELETE("/api/v1/appointments/id/:id", h.Delete)
}
