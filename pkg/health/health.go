package health

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"glowbridge/pkg/client"
	httputil "glowbridge/pkg/http"
	"glowbridge/pkg/logger"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
	Cache    string `json:"cache,omitempty"`
}

type Handler struct {
	clients *client.Client
	log     *logger.Logger
}

func NewHandler(clients *client.Client, log *logger.Logger) *Handler {
	return &Handler{
		clients: clients,
		log:     log,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

func (h *Handler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ready"}
	status := http.StatusOK

	if h.clients.Mongo != nil {
		if err := h.clients.Mongo.Ping(ctx, nil); err != nil {
			h.log.Error("Database health check failed",
				"error", err,
				"path", r.URL.Path,
			)
			resp.Status = "unavailable"
			resp.Database = "error"
			status = http.StatusServiceUnavailable
		} else {
			resp.Database = "ok"
		}
	}

	if h.clients.Redis != nil {
		if err := h.clients.Redis.Ping(ctx).Err(); err != nil {
			h.log.Error("Cache health check failed",
				"error", err,
				"path", r.URL.Path,
			)
			resp.Status = "unavailable"
			resp.Cache = "error"
			status = http.StatusServiceUnavailable
		} else {
			resp.Cache = "ok"
		}
	}

	if err := httputil.WriteJSON(w, status, resp); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
	}
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
