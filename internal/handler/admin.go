package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/stackit/internal/apperror"
	"github.com/sakif/stackit/internal/auth"
	"github.com/sakif/stackit/internal/service"
)

// AdminHandler serves the moderation dashboard and approval actions.
type AdminHandler struct {
	admin *service.AdminService
}

func NewAdminHandler(admin *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// Dashboard handles GET /admin.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	dashboard, err := h.admin.GetDashboard(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dashboard)
}

// Approve handles GET /admin/approve/{type}/{id} where type is
// "question" or "answer".
func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	err := h.admin.Approve(r.Context(), userID, chi.URLParam(r, "type"), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
