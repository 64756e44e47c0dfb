package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Akshit358/Job-Tracker-CRM/internal/model"
	"github.com/Akshit358/Job-Tracker-CRM/internal/repository"
	"github.com/Akshit358/Job-Tracker-CRM/internal/service"
)

// AdminHandler exposes the admin surface: the dashboard, user lifecycle
// management, broadcast email, and the delivery log. The router guards
// everything here with RequireAuth plus RequireAdmin.
type AdminHandler struct {
	admin     *service.AdminService
	analytics *service.AnalyticsService
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(admin *service.AdminService, analytics *service.AnalyticsService) *AdminHandler {
	return &AdminHandler{admin: admin, analytics: analytics}
}

// HandleDashboard returns the system-wide overview.
//
// GET /api/admin/dashboard
func (h *AdminHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.analytics.Dashboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

// HandleListUsers returns users filtered by query parameters: role,
// verified, active, search, page, pageSize.
//
// GET /api/admin/users
func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.UserFilter{
		Role:   model.Role(strings.TrimSpace(q.Get("role"))),
		Search: strings.TrimSpace(q.Get("search")),
	}
	if v := q.Get("verified"); v != "" {
		verified := v == "true"
		filter.IsVerified = &verified
	}
	if v := q.Get("active"); v != "" {
		active := v == "true"
		filter.IsActive = &active
	}
	filter.Limit = parseIntParam(q.Get("pageSize"))
	if page := parseIntParam(q.Get("page")); page > 1 {
		if filter.Limit <= 0 {
			filter.Limit = repository.DefaultPageSize
		}
		filter.Offset = (page - 1) * filter.Limit
	}

	users, err := h.admin.ListUsers(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// HandleGetUser returns one user.
//
// GET /api/admin/users/{id}
func (h *AdminHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.admin.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleDeactivateUser disables an account. Targeting your own account is
// rejected.
//
// POST /api/admin/users/{id}/deactivate
func (h *AdminHandler) HandleDeactivateUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	user, err := h.admin.Deactivate(r.Context(), principal.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleActivateUser re-enables an account.
//
// POST /api/admin/users/{id}/activate
func (h *AdminHandler) HandleActivateUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.admin.Activate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleDeleteUser permanently removes an account and its data. Targeting
// your own account is rejected.
//
// DELETE /api/admin/users/{id}
func (h *AdminHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	if err := h.admin.Delete(r.Context(), principal.UserID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleBroadcast emails every active, verified user.
//
// POST /api/admin/broadcast
func (h *AdminHandler) HandleBroadcast(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}

	result, err := h.admin.Broadcast(r.Context(), input.Subject, input.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleEmailLogs returns recent delivery attempts, newest first.
//
// GET /api/admin/emails
func (h *AdminHandler) HandleEmailLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.admin.RecentEmailLogs(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}
