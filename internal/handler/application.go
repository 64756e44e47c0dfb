package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Akshit358/Job-Tracker-CRM/internal/apperror"
	"github.com/Akshit358/Job-Tracker-CRM/internal/auth"
	"github.com/Akshit358/Job-Tracker-CRM/internal/model"
	"github.com/Akshit358/Job-Tracker-CRM/internal/repository"
	"github.com/Akshit358/Job-Tracker-CRM/internal/service"
)

// ApplicationHandler exposes the job-application CRUD surface, the
// per-application activity trail, and the owner's statistics. Every route
// here sits behind RequireAuth, so a missing principal is a programming
// error rather than a client one.
type ApplicationHandler struct {
	apps *service.ApplicationService
}

// NewApplicationHandler creates an ApplicationHandler.
func NewApplicationHandler(apps *service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{apps: apps}
}

func requirePrincipal(w http.ResponseWriter, r *http.Request) (auth.Principal, bool) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "authentication required",
		})
	}
	return principal, ok
}

// HandleCreate records a new application.
//
// POST /api/applications
func (h *ApplicationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var input service.CreateInput
	if !decodeJSON(w, r, &input) {
		return
	}

	app, err := h.apps.Create(r.Context(), principal.UserID, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

// HandleList returns the caller's applications, filtered by query
// parameters: status (repeatable), company, jobTitle, dateFrom, dateTo,
// createdFrom, createdTo, page, pageSize.
//
// GET /api/applications
func (h *ApplicationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	filter, err := parseApplicationFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}

	apps, err := h.apps.List(r.Context(), principal.UserID, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

// HandleGet returns one application.
//
// GET /api/applications/{id}
func (h *ApplicationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	app, err := h.apps.Get(r.Context(), principal.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// HandleUpdate applies a partial update. Both verbs share these
// semantics: omitted fields keep their stored values, so a PUT with a
// subset of fields is not a full replace. Status and note changes show
// up on the activity trail.
//
// PUT   /api/applications/{id}
// PATCH /api/applications/{id}
func (h *ApplicationHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var input service.UpdateInput
	if !decodeJSON(w, r, &input) {
		return
	}

	app, err := h.apps.Update(r.Context(), principal.UserID, chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// HandleActivities returns an application's audit trail, newest first.
//
// GET /api/applications/{id}/activities
func (h *ApplicationHandler) HandleActivities(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	activities, err := h.apps.Activities(r.Context(), principal.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, activities)
}

// HandleStatistics returns the caller's dashboard numbers.
//
// GET /api/applications/statistics
func (h *ApplicationHandler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	stats, err := h.apps.Statistics(r.Context(), principal.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func parseApplicationFilter(r *http.Request) (repository.ApplicationFilter, error) {
	q := r.URL.Query()
	filter := repository.ApplicationFilter{
		Company:  strings.TrimSpace(q.Get("company")),
		JobTitle: strings.TrimSpace(q.Get("jobTitle")),
	}

	for _, raw := range q["status"] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			status := model.Status(part)
			if !status.Valid() {
				return filter, invalidQueryParam("status", raw)
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}

	var err error
	if filter.DateFrom, err = parseDateParam(q.Get("dateFrom")); err != nil {
		return filter, invalidQueryParam("dateFrom", q.Get("dateFrom"))
	}
	if filter.DateTo, err = parseDateParam(q.Get("dateTo")); err != nil {
		return filter, invalidQueryParam("dateTo", q.Get("dateTo"))
	}
	if filter.CreatedFrom, err = parseDateParam(q.Get("createdFrom")); err != nil {
		return filter, invalidQueryParam("createdFrom", q.Get("createdFrom"))
	}
	if filter.CreatedTo, err = parseDateParam(q.Get("createdTo")); err != nil {
		return filter, invalidQueryParam("createdTo", q.Get("createdTo"))
	}

	filter.Limit = parseIntParam(q.Get("pageSize"))
	if page := parseIntParam(q.Get("page")); page > 1 {
		// The store falls back to the default page size, so the offset
		// must be computed against the same number.
		if filter.Limit <= 0 {
			filter.Limit = repository.DefaultPageSize
		}
		filter.Offset = (page - 1) * filter.Limit
	}
	return filter, nil
}

func invalidQueryParam(name, value string) error {
	return apperror.ValidationFailed(name, fmt.Sprintf("invalid value %q for %s", value, name))
}

func parseDateParam(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	day := model.DateOf(t)
	return &day, nil
}

func parseIntParam(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
