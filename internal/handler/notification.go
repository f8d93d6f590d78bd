package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/stackit/internal/apperror"
	"github.com/sakif/stackit/internal/auth"
	"github.com/sakif/stackit/internal/model"
	"github.com/sakif/stackit/internal/service"
)

// NotificationHandler serves the unread notification feed.
type NotificationHandler struct {
	notifications *service.NotificationService
}

func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

type notificationsResponse struct {
	Notifications []model.Notification `json:"notifications"`
}

// List handles GET /notifications: the caller's unread notifications,
// newest first.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	notifications, err := h.notifications.Unread(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, notificationsResponse{Notifications: notifications})
}

// MarkRead handles GET /notifications/mark_read/{id}. Marking another
// user's notification is reported as success=false rather than an error.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	marked, err := h.notifications.MarkRead(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": marked})
}
