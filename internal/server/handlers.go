package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/erabu/internal/category"
	"github.com/hyperjump/erabu/internal/curation"
	"github.com/hyperjump/erabu/internal/events"
	"github.com/hyperjump/erabu/internal/filter"
	"github.com/hyperjump/erabu/internal/models"
	"github.com/hyperjump/erabu/internal/page"
	"github.com/hyperjump/erabu/internal/storage"
)

const maxEntities = 20

// periodNames maps the query-string period values to day windows.
var periodNames = map[string]filter.Period{
	"":         filter.PeriodAll,
	"all":      filter.PeriodAll,
	"today":    filter.PeriodToday,
	"week":     filter.PeriodWeek,
	"month":    filter.PeriodMonth,
	"quarter":  filter.PeriodQuarter,
	"halfyear": filter.PeriodHalfYear,
	"year":     filter.PeriodYear,
}

// parseCriteria builds filter criteria from list query parameters.
// Unknown or malformed values fall back to the permissive default for
// that dimension rather than erroring the whole request.
func parseCriteria(r *http.Request) filter.Criteria {
	q := r.URL.Query()
	c := filter.DefaultCriteria()
	if v := q.Get("relevance"); v != "" {
		c.Relevance = filter.RelevanceBucket(v)
	}
	if v := q.Get("status"); v != "" {
		c.Status = filter.StatusBucket(v)
	}
	if p, ok := periodNames[q.Get("period")]; ok {
		c.Period = p
	}
	if v := q.Get("size"); v != "" {
		c.Size = filter.SizeBucket(v)
	}
	if v := q.Get("min_kb"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.MinKB = &f
		}
	}
	if v := q.Get("max_kb"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.MaxKB = &f
		}
	}
	if v := q.Get("types"); v != "" {
		c.Types = splitCSV(v)
	}
	c.Search = q.Get("q")
	if v := q.Get("exclude"); v != "" {
		c.Exclusions = splitCSV(v)
	}
	if v := q.Get("duplicates"); v != "" {
		c.Duplicates = filter.DuplicateMode(v)
	}
	return c
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.controller.SetCriteria(parseCriteria(r))
	if v := q.Get("sort"); v != "" {
		s.controller.SetSort(filter.Sort{
			Field: filter.SortField(v),
			Desc:  q.Get("desc") == "true",
		})
	}
	if v := q.Get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.controller.SetPageSize(n)
		}
	}
	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.controller.SetPage(n)
		}
	}

	p := s.controller.View()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"files":        p.Files,
		"page":         p.Number,
		"page_size":    p.Size,
		"total_items":  p.TotalItems,
		"total_pages":  p.TotalPages,
		"page_numbers": page.PageNumbers(p.Number, p.TotalPages),
		"counts":       s.controller.Counts(),
	})
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	f, ok := s.store.Get(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "file not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"file":     f,
		"status":   f.Status(),
		"entities": models.ExtractEntities(f.PreviewText(), maxEntities),
	})
}

type actionRequest struct {
	CategoryID   string `json:"category_id,omitempty"`
	AnalysisType string `json:"analysis_type,omitempty"`
}

func (s *Server) handleFileAction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	action := chi.URLParam(r, "action")

	var req actionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	var ok bool
	switch action {
	case events.ActionApprove:
		ok = s.controller.Approve(id)
	case events.ActionReject:
		ok = s.controller.Reject(id)
	case events.ActionArchive:
		ok = s.controller.Archive(id)
	case events.ActionRestore:
		ok = s.controller.Restore(id)
	case events.ActionAnalyze:
		typ := models.AnalysisType(req.AnalysisType)
		if typ == models.AnalysisNone {
			typ = models.AnalysisStandard
		}
		ok = s.controller.Analyze(id, typ)
	case events.ActionCategorize:
		if req.CategoryID == "" {
			s.respondError(w, http.StatusBadRequest, "category_id is required")
			return
		}
		ok = s.controller.Categorize(id, req.CategoryID)
	case events.ActionUncategorize:
		if req.CategoryID == "" {
			s.respondError(w, http.StatusBadRequest, "category_id is required")
			return
		}
		ok = s.controller.Uncategorize(id, req.CategoryID)
	default:
		s.respondError(w, http.StatusBadRequest, "unknown action: "+action)
		return
	}
	if !ok {
		s.respondError(w, http.StatusNotFound, "file not found")
		return
	}
	f, _ := s.store.Get(id)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "applied",
		"action": action,
		"file":   f,
	})
}

func (s *Server) handleGetSelection(w http.ResponseWriter, r *http.Request) {
	ids := s.controller.Selected()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"ids":   ids,
		"count": len(ids),
	})
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.store.Get(id); !ok {
		s.respondError(w, http.StatusNotFound, "file not found")
		return
	}
	s.controller.Select(id)
	s.respondJSON(w, http.StatusOK, map[string]int{"count": s.controller.SelectedCount()})
}

func (s *Server) handleDeselect(w http.ResponseWriter, r *http.Request) {
	s.controller.Deselect(chi.URLParam(r, "id"))
	s.respondJSON(w, http.StatusOK, map[string]int{"count": s.controller.SelectedCount()})
}

func (s *Server) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	s.controller.ClearSelection()
	s.respondJSON(w, http.StatusOK, map[string]int{"count": 0})
}

type bulkRequest struct {
	Action       string `json:"action"`
	CategoryID   string `json:"category_id,omitempty"`
	AnalysisType string `json:"analysis_type,omitempty"`
	Confirm      bool   `json:"confirm,omitempty"`
}

func (s *Server) handleBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var (
		n   int
		err error
	)
	switch req.Action {
	case events.ActionBulkApprove:
		n, err = s.controller.BulkApprove()
	case events.ActionBulkArchive:
		// Archiving hides files from the default view; require an
		// explicit confirmation flag.
		if !req.Confirm {
			s.respondError(w, http.StatusBadRequest, "bulk archive requires confirm: true")
			return
		}
		n, err = s.controller.BulkArchive()
	case events.ActionBulkRestore:
		n, err = s.controller.BulkRestore()
	case events.ActionBulkCategorize:
		if req.CategoryID == "" {
			s.respondError(w, http.StatusBadRequest, "category_id is required")
			return
		}
		n, err = s.controller.BulkCategorize(req.CategoryID)
	case events.ActionBulkAnalyze:
		typ := models.AnalysisType(req.AnalysisType)
		if typ == models.AnalysisNone {
			typ = models.AnalysisStandard
		}
		n, err = s.controller.BulkAnalyze(r.Context(), typ, nil)
	default:
		s.respondError(w, http.StatusBadRequest, "unknown bulk action: "+req.Action)
		return
	}
	if errors.Is(err, curation.ErrEmptySelection) {
		s.respondError(w, http.StatusBadRequest, "selection is empty")
		return
	}
	if err != nil {
		s.logger.Error("bulk action failed", zap.String("action", req.Action), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "applied",
		"action":  req.Action,
		"updated": n,
	})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.categories.Categories(r.Context())
	if err != nil {
		s.logger.Error("list categories failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if cats == nil {
		cats = []models.Category{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"categories": cats})
}

type categoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c, err := s.categories.Create(r.Context(), req.Name, req.Color, req.Icon)
	if errors.Is(err, category.ErrEmptyName) {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if err != nil {
		s.logger.Error("create category failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, c)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.categories.Delete(r.Context(), id)
	if errors.Is(err, category.ErrCategoryNotFound) {
		s.respondError(w, http.StatusNotFound, "category not found")
		return
	}
	if err != nil {
		s.logger.Error("delete category failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleRelated(w http.ResponseWriter, r *http.Request) {
	if s.index == nil {
		s.respondError(w, http.StatusNotImplemented, "search index not enabled")
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	hits, err := s.index.Search(query, limit)
	if err != nil {
		s.logger.Error("related search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	type relatedFile struct {
		File  models.File `json:"file"`
		Score float64     `json:"score"`
	}
	out := make([]relatedFile, 0, len(hits))
	for _, h := range hits {
		if f, ok := s.store.Get(h.ID); ok {
			out = append(out, relatedFile{File: f, Score: h.Score})
		}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"results": out})
}

func (s *Server) handleGetViewMode(w http.ResponseWriter, r *http.Request) {
	mode, err := s.storage.GetPreference(r.Context(), storage.ViewModeKey)
	if errors.Is(err, storage.ErrNotFound) {
		mode = storage.DefaultViewMode
	} else if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"view_mode": mode})
}

type viewModeRequest struct {
	ViewMode string `json:"view_mode"`
}

func (s *Server) handleSetViewMode(w http.ResponseWriter, r *http.Request) {
	var req viewModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ViewMode != "cards" && req.ViewMode != "list" {
		s.respondError(w, http.StatusBadRequest, "view_mode must be cards or list")
		return
	}
	if err := s.storage.SetPreference(r.Context(), storage.ViewModeKey, req.ViewMode); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"view_mode": req.ViewMode})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if s.rescan == nil {
		s.respondError(w, http.StatusNotImplemented, "scanning not enabled")
		return
	}
	n, err := s.rescan(r.Context())
	if err != nil {
		s.logger.Error("scan failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"status": "scanned", "files": n})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"files":     s.store.Len(),
		"selected":  s.controller.SelectedCount(),
		"criteria":  s.controller.Criteria(),
		"sort":      s.controller.Sort(),
		"view_mode": storage.DefaultViewMode,
	}
	if mode, err := s.storage.GetPreference(r.Context(), storage.ViewModeKey); err == nil {
		resp["view_mode"] = mode
	}
	if stored, err := s.storage.CountFiles(r.Context()); err == nil {
		resp["stored_files"] = stored
	}
	if s.index != nil {
		if n, err := s.index.DocCount(); err == nil {
			resp["indexed_files"] = n
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
