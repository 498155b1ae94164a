// Package events provides the typed publish/subscribe bus that coordinates
// discovery, filtering, and curation actions.
package events

import (
	"sync"

	"github.com/hyperjump/erabu/internal/models"
)

// Kind identifies an event type on the bus.
type Kind int

const (
	KindFilesDiscovered Kind = iota
	KindStateChanged
	KindFilesFiltered
	KindFilterChanged
	KindSortChanged
	KindFilesUpdated
	KindCategoriesChanged
)

// Event is implemented by every payload published on the bus.
type Event interface {
	Kind() Kind
}

// FilesDiscovered carries the full discovered file list.
type FilesDiscovered struct {
	Files []models.File
}

// StateChanged signals a mutation of a named state path. The filtering core
// reacts to path "files".
type StateChanged struct {
	Path string
	Old  int
	New  int
}

// FilesFiltered carries the result of a filter cycle.
type FilesFiltered struct {
	OriginalCount int
	Filtered      []models.File
}

// FilterChanged signals that the active filter criteria were replaced.
// Criteria is opaque here to keep the bus free of a filter dependency.
type FilterChanged struct {
	Criteria any
}

// SortChanged signals a new sort order.
type SortChanged struct {
	Field string
	Desc  bool
}

// FilesUpdated signals a curation action applied to one or more files.
type FilesUpdated struct {
	Action string
	IDs    []string
	Count  int
}

// CategoriesChanged signals category CRUD or assignment changes.
type CategoriesChanged struct {
	Action     string
	CategoryID string
}

func (FilesDiscovered) Kind() Kind   { return KindFilesDiscovered }
func (StateChanged) Kind() Kind      { return KindStateChanged }
func (FilesFiltered) Kind() Kind     { return KindFilesFiltered }
func (FilterChanged) Kind() Kind     { return KindFilterChanged }
func (SortChanged) Kind() Kind       { return KindSortChanged }
func (FilesUpdated) Kind() Kind      { return KindFilesUpdated }
func (CategoriesChanged) Kind() Kind { return KindCategoriesChanged }

// Action tags carried by FilesUpdated.
const (
	ActionApprove        = "approve"
	ActionReject         = "reject"
	ActionArchive        = "archive"
	ActionRestore        = "restore"
	ActionAnalyze        = "analyze"
	ActionCategorize     = "categorize"
	ActionUncategorize   = "uncategorize"
	ActionBulkApprove    = "bulk_approve"
	ActionBulkArchive    = "bulk_archive"
	ActionBulkRestore    = "bulk_restore"
	ActionBulkCategorize = "bulk_categorize"
	ActionBulkAnalyze    = "bulk_analyze"
)

// Action tags carried by CategoriesChanged.
const (
	ActionCreate   = "create"
	ActionDelete   = "delete"
	ActionAssign   = "assign"
	ActionUnassign = "unassign"
)

// Handler receives published events.
type Handler func(Event)

// Bus is a topic-based bus with synchronous dispatch: Publish invokes every
// subscriber before returning, so a filter cycle fully resolves before the
// caller proceeds.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[Kind]map[int]Handler
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[Kind]map[int]Handler)}
}

// Subscribe registers h for events of kind k and returns an unsubscribe func.
func (b *Bus) Subscribe(k Kind, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handlers[k] == nil {
		b.handlers[k] = make(map[int]Handler)
	}
	id := b.nextID
	b.nextID++
	b.handlers[k][id] = h
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[k], id)
	}
}

// Publish delivers e to all subscribers of its kind, synchronously, in
// registration order.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	subs := b.handlers[e.Kind()]
	// Copy handlers out so subscribers may unsubscribe during dispatch.
	ordered := make([]Handler, 0, len(subs))
	for i := 0; i < b.nextID; i++ {
		if h, ok := subs[i]; ok {
			ordered = append(ordered, h)
		}
	}
	b.mu.RUnlock()

	for _, h := range ordered {
		h(e)
	}
}
