// Package curation wires the store, filter engine, scorer, and paginator
// into the review workflow: one controller owns the active criteria,
// sort order, page position, and selection, and applies approval and
// archival actions to the canonical list.
package curation

import (
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/erabu/internal/events"
	"github.com/hyperjump/erabu/internal/filter"
	"github.com/hyperjump/erabu/internal/page"
	"github.com/hyperjump/erabu/internal/relevance"
	"github.com/hyperjump/erabu/internal/store"
)

// ErrEmptySelection is returned by bulk actions when nothing is selected.
var ErrEmptySelection = errors.New("selection is empty")

const defaultAnalyzeDelay = 100 * time.Millisecond

// Controller drives the curation workflow over the canonical file list.
type Controller struct {
	store  *store.Store
	bus    *events.Bus
	engine *filter.Engine
	scorer *relevance.Scorer
	logger *zap.Logger

	mu           sync.Mutex
	criteria     filter.Criteria
	sort         filter.Sort
	page         int
	pageSize     int
	selection    map[string]bool
	analyzeDelay time.Duration
	now          func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithAnalyzeDelay sets the pacing between files during bulk analysis.
func WithAnalyzeDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.analyzeDelay = d
		}
	}
}

// WithPageSize sets the initial page size.
func WithPageSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithClock overrides the timestamp source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// NewController creates a Controller and subscribes it to discovery and
// state events on the bus.
func NewController(st *store.Store, bus *events.Bus, engine *filter.Engine, scorer *relevance.Scorer, opts ...Option) *Controller {
	c := &Controller{
		store:        st,
		bus:          bus,
		engine:       engine,
		scorer:       scorer,
		logger:       zap.NewNop(),
		criteria:     filter.DefaultCriteria(),
		sort:         filter.DefaultSort(),
		page:         1,
		pageSize:     page.DefaultPageSize,
		selection:    make(map[string]bool),
		analyzeDelay: defaultAnalyzeDelay,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if bus != nil {
		bus.Subscribe(events.KindFilesDiscovered, func(e events.Event) {
			c.onDiscovered(e.(events.FilesDiscovered))
		})
		bus.Subscribe(events.KindStateChanged, func(e events.Event) {
			sc := e.(events.StateChanged)
			if sc.Path == store.FilesPath {
				c.pruneSelection()
			}
		})
	}
	return c
}

func (c *Controller) onDiscovered(e events.FilesDiscovered) {
	c.logger.Info("files discovered", zap.Int("count", len(e.Files)))
	c.store.Set(e.Files)
}

// pruneSelection drops selected ids that no longer exist in the store.
// Selection otherwise persists across re-renders and refreshes.
func (c *Controller) pruneSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id := range c.selection {
		if _, ok := c.store.Get(id); !ok {
			delete(c.selection, id)
		}
	}
}

// Criteria returns the active filter criteria.
func (c *Controller) Criteria() filter.Criteria {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.criteria
}

// SetCriteria replaces the active criteria. The page resets to 1 because
// the old position is meaningless against a different result set.
func (c *Controller) SetCriteria(crit filter.Criteria) {
	c.mu.Lock()
	changed := !c.criteria.Equal(crit)
	c.criteria = crit
	c.page = 1
	c.mu.Unlock()
	if changed && c.bus != nil {
		c.bus.Publish(events.FilterChanged{Criteria: crit})
	}
}

// ResetCriteria restores the default criteria.
func (c *Controller) ResetCriteria() {
	c.SetCriteria(filter.DefaultCriteria())
}

// Sort returns the active sort order.
func (c *Controller) Sort() filter.Sort {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sort
}

// SetSort replaces the sort order and resets to page 1.
func (c *Controller) SetSort(s filter.Sort) {
	c.mu.Lock()
	changed := c.sort != s
	c.sort = s
	c.page = 1
	c.mu.Unlock()
	if changed && c.bus != nil {
		c.bus.Publish(events.SortChanged{Field: string(s.Field), Desc: s.Desc})
	}
}

// SetPage moves to the given page. Out-of-range values are clamped at
// render time, so this only stores the request.
func (c *Controller) SetPage(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n < 1 {
		n = 1
	}
	c.page = n
}

// SetPageSize changes the page size and resets to page 1.
func (c *Controller) SetPageSize(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n > 0 {
		c.pageSize = n
		c.page = 1
	}
}

// View runs a full filter, sort, and pagination cycle over the canonical
// list and publishes a FilesFiltered event. The returned page reflects
// the clamped position, which View stores back so subsequent calls stay
// on the page the caller actually saw.
func (c *Controller) View() page.Page {
	files := c.store.Files()

	c.mu.Lock()
	crit := c.criteria
	srt := c.sort
	number := c.page
	size := c.pageSize
	c.mu.Unlock()

	filtered := c.engine.Apply(files, crit)
	c.engine.Sort(filtered, srt)
	p := page.Paginate(filtered, number, size)

	c.mu.Lock()
	c.page = p.Number
	c.mu.Unlock()

	if c.bus != nil {
		c.bus.Publish(events.FilesFiltered{OriginalCount: len(files), Filtered: filtered})
	}
	return p
}

// Counts computes filter badge counters over the full unfiltered set.
func (c *Controller) Counts() filter.Counts {
	return c.engine.Counts(c.store.Files())
}

// Select marks a file as selected. Unknown ids are ignored.
func (c *Controller) Select(id string) {
	if _, ok := c.store.Get(id); !ok {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection[id] = true
}

// Deselect removes a file from the selection.
func (c *Controller) Deselect(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.selection, id)
}

// ToggleSelect flips one file's selection state and reports the new state.
func (c *Controller) ToggleSelect(id string) bool {
	if _, ok := c.store.Get(id); !ok {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selection[id] {
		delete(c.selection, id)
		return false
	}
	c.selection[id] = true
	return true
}

// ClearSelection empties the selection.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection = make(map[string]bool)
}

// Selected returns the selected ids in stable order.
func (c *Controller) Selected() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.selection))
	for id := range c.selection {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SelectedCount returns how many files are selected.
func (c *Controller) SelectedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.selection)
}
