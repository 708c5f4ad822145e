package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/orbitx/notification-service/internal/apperror"
	"github.com/orbitx/notification-service/internal/model"
	"github.com/orbitx/notification-service/internal/service"
)

type Resp map[string]interface{}

type Handler struct {
	services *service.Service
}

func New(services *service.Service) *Handler {
	return &Handler{
		services: services,
	}
}

func (h *Handler) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/notifications", h.withAuth(h.notificationsGet))
	mux.HandleFunc("POST /api/v1/notifications", h.withAdmin(h.notificationsCreate))
	mux.HandleFunc("DELETE /api/v1/notifications", h.withAuth(h.notificationsDeleteAll))
	mux.HandleFunc("GET /api/v1/notifications/count", h.withAuth(h.notificationsCount))
	mux.HandleFunc("POST /api/v1/notifications/mark-all-read", h.withAuth(h.notificationsMarkAllRead))
	mux.HandleFunc("PATCH /api/v1/notifications/{id}", h.withAuth(h.notificationsUpdate))
	mux.HandleFunc("DELETE /api/v1/notifications/{id}", h.withAuth(h.notificationsDelete))
	mux.HandleFunc("GET /api/v1/notifications/ws", h.withAuth(h.notificationsConnect))

	return mux
}

func (h *Handler) withAuth(next func(user *model.User, w http.ResponseWriter, r *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := h.authMiddleware(r)
		if err != nil {
			h.RespondError(w, err.Error(), http.StatusUnauthorized)
			return
		}

		next(user, w, r)
	}
}

func (h *Handler) withAdmin(next func(admin *model.User, w http.ResponseWriter, r *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		admin, err := h.adminMiddleware(r)
		if err != nil {
			status := http.StatusUnauthorized
			if errors.Is(err, errNotAdmin) {
				status = http.StatusForbidden
			}
			h.RespondError(w, err.Error(), status)
			return
		}

		next(admin, w, r)
	}
}

func (h *Handler) Respond(w http.ResponseWriter, data any, statusCode int) {
	respJSON, _ := json.Marshal(Resp{"success": true, "data": data})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(respJSON)
}

func (h *Handler) RespondError(w http.ResponseWriter, errMsg string, statusCode int) {
	respJSON, _ := json.Marshal(Resp{"success": false, "error": errMsg})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(respJSON)
}

// RespondAppError maps service errors to HTTP status codes.
func (h *Handler) RespondAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		h.RespondError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, apperror.ErrNotFound):
		h.RespondError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, apperror.ErrForbidden):
		h.RespondError(w, err.Error(), http.StatusForbidden)
	default:
		h.RespondError(w, apperror.ErrUnknown.Error(), http.StatusInternalServerError)
	}
}
