package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"glowbridge/internal/otp/service"
	httputil "glowbridge/pkg/http"
	"glowbridge/pkg/logger"
)

type OTPHandler struct {
	service service.OTPService
	log     *logger.Logger
}

func NewOTPHandler(service service.OTPService, log *logger.Logger) *OTPHandler {
	return &OTPHandler{
		service: service,
		log:     log,
	}
}

type sendRequest struct {
	PhoneNumber string `json:"phone_number"`
	UserID      string `json:"user_id,omitempty"`
}

type verifyRequest struct {
	SessionID string `json:"session_id"`
	Code      string `json:"code"`
}

type resendRequest struct {
	SessionID string `json:"session_id"`
}

func (h *OTPHandler) writeErr(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "operation", "WriteError", "error", writeErr)
	}
}

func (h *OTPHandler) writeBadRequest(w http.ResponseWriter, handlerName, msg string) {
	if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: msg,
	}); err != nil {
		h.log.Error("failed to write bad request response", "handler", handlerName, "operation", "WriteJSON", "error", err)
	}
}

func (h *OTPHandler) Send(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "Send", "Invalid request body")
		return
	}

	sessionID, err := h.service.Send(r.Context(), req.PhoneNumber, req.UserID)
	if err != nil {
		h.writeErr(w, "Send", err)
		return
	}

	if err := httputil.WriteCreated(w, map[string]string{"session_id": sessionID}); err != nil {
		h.log.Error("failed to write created response", "handler", "Send", "operation", "WriteCreated", "error", err)
	}
}

func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "Verify", "Invalid request body")
		return
	}

	result, err := h.service.Verify(r.Context(), req.SessionID, req.Code)
	if err != nil {
		h.writeErr(w, "Verify", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Verify", "operation", "WriteSuccess", "error", err)
	}
}

func (h *OTPHandler) Resend(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req resendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "Resend", "Invalid request body")
		return
	}

	if err := h.service.Resend(r.Context(), req.SessionID); err != nil {
		h.writeErr(w, "Resend", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]string{"status": "sent"}); err != nil {
		h.log.Error("failed to write success response", "handler", "Resend", "operation", "WriteSuccess", "error", err)
	}
}

func (h *OTPHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/otp/send", h.Send)
	router.POST("/api/v1/otp/verify", h.Verify)
	router.POST("/api/v1/otp/resend", h.Resend)
}
