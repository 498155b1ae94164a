package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/erabu/internal/category"
	"github.com/hyperjump/erabu/internal/config"
	"github.com/hyperjump/erabu/internal/curation"
	"github.com/hyperjump/erabu/internal/events"
	"github.com/hyperjump/erabu/internal/filter"
	"github.com/hyperjump/erabu/internal/models"
	"github.com/hyperjump/erabu/internal/relevance"
	"github.com/hyperjump/erabu/internal/searchindex"
	"github.com/hyperjump/erabu/internal/storage"
	"github.com/hyperjump/erabu/internal/store"
)

func fptr(v float64) *float64 { return &v }

type testEnv struct {
	srv   *httptest.Server
	store *store.Store
	ctrl  *curation.Controller
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	bus := events.NewBus()
	st := store.New(bus)
	scorer := relevance.NewScorer(nil)
	engine := filter.NewEngine(scorer)
	ctrl := curation.NewController(st, bus, engine, scorer)

	stg, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = stg.Close() })

	idx, err := searchindex.New("")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = idx.Close() })

	cats := category.NewManager(stg, st, bus, nil)
	s := NewServer(ctrl, cats, st, stg, idx, &config.ServerConfig{}, zap.NewNop())
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)

	st.Set([]models.File{
		{ID: "a", Name: "alpha.md", Path: "/n/alpha.md", RelevanceScore: fptr(90), Preview: &models.Preview{Text: "Alice Johnson wrote about planning"}},
		{ID: "b", Name: "beta.pdf", Path: "/n/beta.pdf", RelevanceScore: fptr(40)},
		{ID: "c", Name: "gamma.md", Path: "/n/gamma.md", RelevanceScore: fptr(60)},
	})
	for _, f := range st.Files() {
		if err := idx.Put(&f); err != nil {
			t.Fatal(err)
		}
	}
	return &testEnv{srv: srv, store: st, ctrl: ctrl}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var decoded map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode %s %s: %v", method, path, err)
	}
	return resp, decoded
}

func TestListFiles(t *testing.T) {
	e := newTestEnv(t)

	resp, body := e.do(t, http.MethodGet, "/api/v1/files?relevance=high", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	files := body["files"].([]interface{})
	if len(files) != 1 {
		t.Errorf("high-relevance files = %d", len(files))
	}
	if body["total_pages"].(float64) != 1 {
		t.Errorf("total_pages = %v", body["total_pages"])
	}
	if _, ok := body["counts"]; !ok {
		t.Error("counts missing from list response")
	}
	if _, ok := body["page_numbers"]; !ok {
		t.Error("page_numbers missing from list response")
	}
}

func TestListFiles_searchAndSort(t *testing.T) {
	e := newTestEnv(t)

	_, body := e.do(t, http.MethodGet, "/api/v1/files?sort=relevance&desc=true", nil)
	files := body["files"].([]interface{})
	if len(files) != 3 {
		t.Fatalf("files = %d", len(files))
	}
	first := files[0].(map[string]interface{})
	if first["id"] != "a" {
		t.Errorf("first = %v, want highest relevance", first["id"])
	}
}

func TestGetFile(t *testing.T) {
	e := newTestEnv(t)

	resp, body := e.do(t, http.MethodGet, "/api/v1/files/a", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body["status"] != "pending" {
		t.Errorf("status = %v", body["status"])
	}
	entities := body["entities"].([]interface{})
	if len(entities) != 1 || entities[0] != "Alice Johnson" {
		t.Errorf("entities = %v", entities)
	}

	resp, _ = e.do(t, http.MethodGet, "/api/v1/files/ghost", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing file status = %d", resp.StatusCode)
	}
}

func TestFileActions(t *testing.T) {
	e := newTestEnv(t)

	resp, body := e.do(t, http.MethodPost, "/api/v1/files/a/actions/approve", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %v", resp.StatusCode, body)
	}
	f, _ := e.store.Get("a")
	if f.Status() != models.StatusApproved {
		t.Errorf("file status = %s", f.Status())
	}

	resp, _ = e.do(t, http.MethodPost, "/api/v1/files/a/actions/explode", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown action status = %d", resp.StatusCode)
	}
	resp, _ = e.do(t, http.MethodPost, "/api/v1/files/ghost/actions/approve", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("ghost action status = %d", resp.StatusCode)
	}

	resp, _ = e.do(t, http.MethodPost, "/api/v1/files/b/actions/categorize", map[string]string{"category_id": "cat-1"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("categorize status = %d", resp.StatusCode)
	}
	f, _ = e.store.Get("b")
	if len(f.Categories) != 1 {
		t.Errorf("categories = %v", f.Categories)
	}
}

func TestSelectionEndpoints(t *testing.T) {
	e := newTestEnv(t)

	resp, _ := e.do(t, http.MethodPut, "/api/v1/selection/a", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("select status = %d", resp.StatusCode)
	}
	e.do(t, http.MethodPut, "/api/v1/selection/b", nil)

	resp, _ = e.do(t, http.MethodPut, "/api/v1/selection/ghost", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("ghost select status = %d", resp.StatusCode)
	}

	_, body := e.do(t, http.MethodGet, "/api/v1/selection", nil)
	if body["count"].(float64) != 2 {
		t.Errorf("count = %v", body["count"])
	}

	e.do(t, http.MethodDelete, "/api/v1/selection/a", nil)
	_, body = e.do(t, http.MethodGet, "/api/v1/selection", nil)
	if body["count"].(float64) != 1 {
		t.Errorf("count = %v", body["count"])
	}

	e.do(t, http.MethodDelete, "/api/v1/selection", nil)
	_, body = e.do(t, http.MethodGet, "/api/v1/selection", nil)
	if body["count"].(float64) != 0 {
		t.Errorf("count = %v", body["count"])
	}
}

func TestBulkEndpoint(t *testing.T) {
	e := newTestEnv(t)

	resp, _ := e.do(t, http.MethodPost, "/api/v1/bulk", map[string]interface{}{"action": "bulk_approve"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty selection status = %d", resp.StatusCode)
	}

	e.do(t, http.MethodPut, "/api/v1/selection/a", nil)
	e.do(t, http.MethodPut, "/api/v1/selection/b", nil)

	resp, body := e.do(t, http.MethodPost, "/api/v1/bulk", map[string]interface{}{"action": "bulk_approve"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %v", resp.StatusCode, body)
	}
	if body["updated"].(float64) != 2 {
		t.Errorf("updated = %v", body["updated"])
	}

	// Destructive bulk actions demand confirmation.
	e.do(t, http.MethodPut, "/api/v1/selection/c", nil)
	resp, _ = e.do(t, http.MethodPost, "/api/v1/bulk", map[string]interface{}{"action": "bulk_archive"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unconfirmed archive status = %d", resp.StatusCode)
	}
	resp, _ = e.do(t, http.MethodPost, "/api/v1/bulk", map[string]interface{}{"action": "bulk_archive", "confirm": true})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("confirmed archive status = %d", resp.StatusCode)
	}
	f, _ := e.store.Get("c")
	if f.Status() != models.StatusArchived {
		t.Errorf("c status = %s", f.Status())
	}
}

func TestCategoryEndpoints(t *testing.T) {
	e := newTestEnv(t)

	resp, created := e.do(t, http.MethodPost, "/api/v1/categories", map[string]string{"name": "Insights", "color": "#fa0"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	id := created["id"].(string)

	_, body := e.do(t, http.MethodGet, "/api/v1/categories", nil)
	cats := body["categories"].([]interface{})
	if len(cats) != 1 {
		t.Errorf("categories = %v", cats)
	}

	resp, _ = e.do(t, http.MethodPost, "/api/v1/categories", map[string]string{"name": "  "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("blank name status = %d", resp.StatusCode)
	}

	resp, _ = e.do(t, http.MethodDelete, "/api/v1/categories/"+id, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("delete status = %d", resp.StatusCode)
	}
	resp, _ = e.do(t, http.MethodDelete, "/api/v1/categories/ghost", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("ghost delete status = %d", resp.StatusCode)
	}
}

func TestRelated(t *testing.T) {
	e := newTestEnv(t)

	resp, body := e.do(t, http.MethodGet, "/api/v1/related?q=planning", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	results := body["results"].([]interface{})
	if len(results) != 1 {
		t.Fatalf("results = %v", results)
	}
	hit := results[0].(map[string]interface{})
	if hit["file"].(map[string]interface{})["id"] != "a" {
		t.Errorf("hit = %v", hit)
	}

	resp, _ = e.do(t, http.MethodGet, "/api/v1/related", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing q status = %d", resp.StatusCode)
	}
}

func TestViewModePreference(t *testing.T) {
	e := newTestEnv(t)

	_, body := e.do(t, http.MethodGet, "/api/v1/preferences/view-mode", nil)
	if body["view_mode"] != "cards" {
		t.Errorf("default view mode = %v", body["view_mode"])
	}

	resp, _ := e.do(t, http.MethodPut, "/api/v1/preferences/view-mode", map[string]string{"view_mode": "list"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set status = %d", resp.StatusCode)
	}
	_, body = e.do(t, http.MethodGet, "/api/v1/preferences/view-mode", nil)
	if body["view_mode"] != "list" {
		t.Errorf("view mode = %v", body["view_mode"])
	}

	resp, _ = e.do(t, http.MethodPut, "/api/v1/preferences/view-mode", map[string]string{"view_mode": "table"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown mode status = %d", resp.StatusCode)
	}

	resp, _ = e.do(t, http.MethodPut, "/api/v1/preferences/view-mode", map[string]string{"view_mode": "spiral"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid mode status = %d", resp.StatusCode)
	}
}

func TestStatusAndHealth(t *testing.T) {
	e := newTestEnv(t)

	resp, body := e.do(t, http.MethodGet, "/api/v1/status", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body["files"].(float64) != 3 {
		t.Errorf("files = %v", body["files"])
	}
	if body["indexed_files"].(float64) != 3 {
		t.Errorf("indexed_files = %v", body["indexed_files"])
	}

	resp, body = e.do(t, http.MethodGet, "/health", nil)
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Errorf("health = %d %v", resp.StatusCode, body)
	}
}

func TestScan_notEnabled(t *testing.T) {
	e := newTestEnv(t)
	resp, _ := e.do(t, http.MethodPost, "/api/v1/scan", nil)
	if resp.StatusCode != http.StatusNotImplemented {
		t.Errorf("status = %d", resp.StatusCode)
	}
}
