package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/lgs-tracker/internal/db/repository"
	"github.com/gokatarajesh/lgs-tracker/internal/listing"
	"github.com/gokatarajesh/lgs-tracker/internal/records"
	"github.com/gokatarajesh/lgs-tracker/internal/scoring"
	httperrors "github.com/gokatarajesh/lgs-tracker/pkg/http/errors"
)

// UserHeader carries the caller's id, set by the upstream gateway.
const UserHeader = "X-User-ID"

// HTTPHandlers provides REST endpoints for the dashboard.
type HTTPHandlers struct {
	service  *Service
	pageSize listing.PageSize
	logger   zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for dashboard endpoints.
func NewHTTPHandlers(service *Service, pageSize listing.PageSize, logger zerolog.Logger) *HTTPHandlers {
	if pageSize < 0 {
		pageSize = listing.DefaultPageSize
	}
	return &HTTPHandlers{
		service:  service,
		pageSize: pageSize,
		logger:   logger.With().Str("component", "dashboard_http").Logger(),
	}
}

// Curriculum handles GET /v1/curriculum
func (h *HTTPHandlers) Curriculum(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"subjects": h.service.Curriculum()})
}

// Overview handles GET /v1/dashboard?scope=&course=
func (h *HTTPHandlers) Overview(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	scope, err := listing.ParseScope(r.URL.Query().Get("scope"))
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, err.Error(), "scope")
		return
	}

	ov, err := h.service.Overview(r.Context(), owner, scope, r.URL.Query().Get("course"))
	if err != nil {
		h.respondServiceError(w, err, "failed to build dashboard")
		return
	}
	h.respondJSON(w, http.StatusOK, ov)
}

// ListTests handles GET /v1/results
//
// Query: scope, course, topic, sort, dir, page_size and page describe the
// caller's current table; toggle=<key> and resize=<size> are actions applied on top.
func (h *HTTPHandlers) ListTests(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()

	scope, err := listing.ParseScope(q.Get("scope"))
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, err.Error(), "scope")
		return
	}
	size, err := listing.ParsePageSize(q.Get("page_size"), h.pageSize)
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, err.Error(), "page_size")
		return
	}
	view := listing.NewView(size)
	if key := q.Get("sort"); key != "" {
		dir, err := listing.ParseDirection(q.Get("dir"))
		if err != nil {
			httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, err.Error(), "dir")
			return
		}
		view.Sort = listing.SortState{Key: key, Direction: dir}
	}
	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "page must be a number", "page")
			return
		}
		view = view.Goto(page)
	}
	if raw := q.Get("resize"); raw != "" {
		resized, err := listing.ParsePageSize(raw, h.pageSize)
		if err != nil {
			httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, err.Error(), "resize")
			return
		}
		view = view.Resize(resized)
	}

	page, err := h.service.ListTests(r.Context(), owner, ListQuery{
		Scope:  scope,
		Course: q.Get("course"),
		Topic:  q.Get("topic"),
		View:   view,
		Toggle: q.Get("toggle"),
	})
	if err != nil {
		h.respondServiceError(w, err, "failed to list results")
		return
	}
	h.respondJSON(w, http.StatusOK, page)
}

// RecordTest handles POST /v1/results
func (h *HTTPHandlers) RecordTest(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	doc, ok := h.decodeDocument(w, r)
	if !ok {
		return
	}
	row, err := h.service.RecordTest(r.Context(), owner, doc)
	if err != nil {
		h.respondServiceError(w, err, "failed to store result")
		return
	}
	h.respondJSON(w, http.StatusCreated, row)
}

// UpdateTest handles PUT /v1/results/{id}
func (h *HTTPHandlers) UpdateTest(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	doc, ok := h.decodeDocument(w, r)
	if !ok {
		return
	}
	row, err := h.service.UpdateTest(r.Context(), owner, r.PathValue("id"), doc)
	if err != nil {
		h.respondServiceError(w, err, "failed to update result")
		return
	}
	h.respondJSON(w, http.StatusOK, row)
}

// DeleteTest handles DELETE /v1/results/{id}
func (h *HTTPHandlers) DeleteTest(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteTest(r.Context(), owner, r.PathValue("id")); err != nil {
		h.respondServiceError(w, err, "failed to delete result")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExamOverview handles GET /v1/exams?period=7|30|all&sort=date|totalNet|composite&dir=
func (h *HTTPHandlers) ExamOverview(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	var dir listing.Direction
	if raw := q.Get("dir"); raw != "" {
		parsed, err := listing.ParseDirection(raw)
		if err != nil {
			httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, err.Error(), "dir")
			return
		}
		dir = parsed
	}

	ov, err := h.service.ExamOverview(r.Context(), owner, ExamQuery{
		Period:    q.Get("period"),
		Sort:      q.Get("sort"),
		Direction: dir,
	})
	if err != nil {
		h.respondServiceError(w, err, "failed to load exams")
		return
	}
	h.respondJSON(w, http.StatusOK, ov)
}

// RecordExam handles POST /v1/exams
func (h *HTTPHandlers) RecordExam(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	doc, ok := h.decodeDocument(w, r)
	if !ok {
		return
	}
	view, err := h.service.RecordExam(r.Context(), owner, doc)
	if err != nil {
		h.respondServiceError(w, err, "failed to store exam")
		return
	}
	h.respondJSON(w, http.StatusCreated, view)
}

// DeleteExam handles DELETE /v1/exams/{id}
func (h *HTTPHandlers) DeleteExam(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteExam(r.Context(), owner, r.PathValue("id")); err != nil {
		h.respondServiceError(w, err, "failed to delete exam")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Mistakes handles GET /v1/mistakes?course=&topic=&status=
func (h *HTTPHandlers) Mistakes(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	query := MistakeQuery{Course: q.Get("course"), Topic: q.Get("topic")}
	if raw := q.Get("status"); raw != "" && raw != listing.AllCourses {
		status, err := records.ParseMistakeStatus(raw)
		if err != nil {
			h.respondServiceError(w, err, "")
			return
		}
		query.Status = status
	}

	entries, err := h.service.Mistakes(r.Context(), owner, query)
	if err != nil {
		h.respondServiceError(w, err, "failed to load mistakes")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"items": entries, "total": len(entries)})
}

// AddMistake handles POST /v1/mistakes
func (h *HTTPHandlers) AddMistake(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	doc, ok := h.decodeDocument(w, r)
	if !ok {
		return
	}
	entry, err := h.service.AddMistake(r.Context(), owner, doc)
	if err != nil {
		h.respondServiceError(w, err, "failed to store mistake")
		return
	}
	h.respondJSON(w, http.StatusCreated, entry)
}

type statusRequest struct {
	Status       string     `json:"status"`
	NextReviewAt *time.Time `json:"next_review_at"`
}

// UpdateMistake handles PATCH /v1/mistakes/{id}
func (h *HTTPHandlers) UpdateMistake(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	entry, err := h.service.UpdateMistakeStatus(r.Context(), owner, r.PathValue("id"), StatusChange{
		Status:       records.MistakeStatus(req.Status),
		NextReviewAt: req.NextReviewAt,
	})
	if err != nil {
		h.respondServiceError(w, err, "failed to update mistake")
		return
	}
	h.respondJSON(w, http.StatusOK, entry)
}

// SetGoals handles PUT /v1/goals
func (h *HTTPHandlers) SetGoals(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	var goals records.Goals
	if err := json.NewDecoder(r.Body).Decode(&goals); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if err := h.service.SetGoals(r.Context(), owner, goals); err != nil {
		h.respondServiceError(w, err, "failed to store goals")
		return
	}
	h.respondJSON(w, http.StatusOK, goals)
}

// Export handles GET /v1/export.xlsx
func (h *HTTPHandlers) Export(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	rep, err := h.service.Export(r.Context(), owner)
	if err != nil {
		h.respondServiceError(w, err, "failed to build report")
		return
	}

	var buf bytes.Buffer
	if err := h.service.WriteWorkbook(&buf, rep); err != nil {
		h.respondServiceError(w, err, "failed to render report")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="lgs-report.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *HTTPHandlers) owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	owner := r.Header.Get(UserHeader)
	if owner == "" {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "missing "+UserHeader+" header")
		return "", false
	}
	return owner, true
}

func (h *HTTPHandlers) decodeDocument(w http.ResponseWriter, r *http.Request) (records.Document, bool) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var doc records.Document
	if err := dec.Decode(&doc); err != nil || doc == nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return nil, false
	}
	return doc, true
}

func (h *HTTPHandlers) respondServiceError(w http.ResponseWriter, err error, message string) {
	var fieldErr *records.FieldError
	switch {
	case errors.As(err, &fieldErr):
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, err.Error(), fieldErr.Field)
	case errors.Is(err, scoring.ErrInvalidInput):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeValidationFailed, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, err.Error())
	default:
		h.logger.Error().Err(err).Msg(message)
		httperrors.RespondInternalError(w, message)
	}
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Warn().Err(err).Msg("failed to encode response")
	}
}
