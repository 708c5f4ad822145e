package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/orbitx/notification-service/internal/dto"
	"github.com/orbitx/notification-service/internal/model"
)

func (h *Handler) notificationsGet(user *model.User, w http.ResponseWriter, r *http.Request) {
	targetID, ok := h.resolveTargetUser(user, r.URL.Query().Get("userId"), w)
	if !ok {
		return
	}

	notificationType := r.URL.Query().Get("type")
	if notificationType != "" && !model.IsValidType(notificationType) {
		h.RespondError(w, "unknown notification type", http.StatusBadRequest)
		return
	}

	limit, ok := h.queryInt(w, r, "limit", 0)
	if !ok {
		return
	}
	offset, ok := h.queryInt(w, r, "skip", 0)
	if !ok {
		return
	}

	result, err := h.services.Notification.List(r.Context(), targetID, notificationType, limit, offset)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.Respond(w, result, http.StatusOK)
}

func (h *Handler) notificationsCreate(admin *model.User, w http.ResponseWriter, r *http.Request) {
	var input dto.CreateNotification
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.RespondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	notification, err := h.services.Notification.Create(r.Context(), input)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.Respond(w, notification, http.StatusCreated)
}

func (h *Handler) notificationsDeleteAll(user *model.User, w http.ResponseWriter, r *http.Request) {
	targetID, ok := h.resolveTargetUser(user, r.URL.Query().Get("userId"), w)
	if !ok {
		return
	}

	deleted, err := h.services.Notification.DeleteAll(r.Context(), targetID)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.Respond(w, Resp{"deleted_count": deleted}, http.StatusOK)
}

func (h *Handler) notificationsCount(user *model.User, w http.ResponseWriter, r *http.Request) {
	targetID, ok := h.resolveTargetUser(user, r.URL.Query().Get("userId"), w)
	if !ok {
		return
	}

	notificationType := r.URL.Query().Get("type")
	if notificationType != "" && !model.IsValidType(notificationType) {
		h.RespondError(w, "unknown notification type", http.StatusBadRequest)
		return
	}

	count, cached, err := h.services.Notification.CountUnread(r.Context(), targetID, notificationType)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.Respond(w, Resp{"count": count, "cached": cached}, http.StatusOK)
}

func (h *Handler) notificationsMarkAllRead(user *model.User, w http.ResponseWriter, r *http.Request) {
	var input dto.MarkAllRead
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.RespondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	targetID, ok := h.resolveTargetUser(user, input.UserID, w)
	if !ok {
		return
	}

	updated, err := h.services.Notification.MarkAllRead(r.Context(), targetID, input.Type)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.Respond(w, Resp{"updated_count": updated}, http.StatusOK)
}

func (h *Handler) notificationsUpdate(user *model.User, w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.RespondError(w, errInvalidNotificationID.Error(), http.StatusBadRequest)
		return
	}

	var input dto.UpdateNotification
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.RespondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// The only exposed transition is unread -> read.
	if input.IsRead == nil || !*input.IsRead {
		h.RespondError(w, "isRead must be true", http.StatusBadRequest)
		return
	}

	notification, err := h.services.Notification.MarkRead(r.Context(), id, user.ID)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.Respond(w, notification, http.StatusOK)
}

func (h *Handler) notificationsDelete(user *model.User, w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.RespondError(w, errInvalidNotificationID.Error(), http.StatusBadRequest)
		return
	}

	if err := h.services.Notification.Delete(r.Context(), id, user.ID); err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.Respond(w, Resp{}, http.StatusOK)
}

// resolveTargetUser returns the user the request operates on: the caller
// itself when the userId parameter is empty, otherwise the named user,
// which only the owner or an admin may address.
func (h *Handler) resolveTargetUser(user *model.User, userIDParam string, w http.ResponseWriter) (uuid.UUID, bool) {
	if userIDParam == "" {
		return user.ID, true
	}

	targetID, err := uuid.Parse(userIDParam)
	if err != nil {
		h.RespondError(w, errInvalidUserID.Error(), http.StatusBadRequest)
		return uuid.Nil, false
	}

	if targetID != user.ID && !user.IsAdmin() {
		h.RespondError(w, errAccessDenied.Error(), http.StatusForbidden)
		return uuid.Nil, false
	}

	return targetID, true
}

func (h *Handler) queryInt(w http.ResponseWriter, r *http.Request, name string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		h.RespondError(w, "'"+name+"' must be a non-negative number", http.StatusBadRequest)
		return 0, false
	}

	return value, true
}
