// Package category manages the user's category set and file assignments.
package category

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/erabu/internal/events"
	"github.com/hyperjump/erabu/internal/models"
	"github.com/hyperjump/erabu/internal/storage"
	"github.com/hyperjump/erabu/internal/store"
)

// ErrEmptyName is returned when creating a category without a name.
var ErrEmptyName = errors.New("category name is empty")

// ErrCategoryNotFound is returned for operations on unknown category ids.
var ErrCategoryNotFound = errors.New("category not found")

// Manager owns categories. Definitions live in storage; assignments live
// on the file records in the store. Every mutation publishes a
// CategoriesChanged event.
type Manager struct {
	storage storage.Storage
	store   *store.Store
	bus     *events.Bus
	logger  *zap.Logger
	now     func() time.Time
}

// NewManager creates a Manager. bus and logger may be nil in tests.
func NewManager(st storage.Storage, files *store.Store, bus *events.Bus, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{storage: st, store: files, bus: bus, logger: logger, now: time.Now}
}

// Categories lists all category definitions.
func (m *Manager) Categories(ctx context.Context) ([]models.Category, error) {
	return m.storage.Categories(ctx)
}

// Create stores a new category and returns it with a generated id.
func (m *Manager) Create(ctx context.Context, name, color, icon string) (models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Category{}, ErrEmptyName
	}
	c := models.Category{
		ID:        uuid.NewString(),
		Name:      name,
		Color:     color,
		Icon:      icon,
		CreatedAt: m.now(),
	}
	if err := m.storage.SaveCategory(ctx, &c); err != nil {
		return models.Category{}, fmt.Errorf("save category: %w", err)
	}
	m.logger.Info("category created", zap.String("id", c.ID), zap.String("name", c.Name))
	m.publish(events.ActionCreate, c.ID)
	return c, nil
}

// Delete removes a category definition and strips it from every file
// that carries it.
func (m *Manager) Delete(ctx context.Context, id string) error {
	cats, err := m.storage.Categories(ctx)
	if err != nil {
		return err
	}
	found := false
	for _, c := range cats {
		if c.ID == id {
			found = true
			break
		}
	}
	if !found {
		return ErrCategoryNotFound
	}
	if err := m.storage.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	var carriers []string
	for _, f := range m.store.Files() {
		for _, cid := range f.Categories {
			if cid == id {
				carriers = append(carriers, f.ID)
				break
			}
		}
	}
	if len(carriers) > 0 {
		m.store.UpdateMany(carriers, func(f *models.File) {
			f.RemoveCategory(id)
		})
	}
	m.logger.Info("category deleted", zap.String("id", id), zap.Int("stripped_from", len(carriers)))
	m.publish(events.ActionDelete, id)
	return nil
}

// AssignToFile adds the category to one file. Assigning an already
// present category is a no-op and reports false.
func (m *Manager) AssignToFile(fileID, categoryID string) bool {
	changed := false
	ok := m.store.Update(fileID, func(f *models.File) {
		changed = f.AddCategory(categoryID)
	})
	if ok && changed {
		m.publish(events.ActionAssign, categoryID)
	}
	return ok && changed
}

// RemoveFromFile strips the category from one file.
func (m *Manager) RemoveFromFile(fileID, categoryID string) bool {
	changed := false
	ok := m.store.Update(fileID, func(f *models.File) {
		changed = f.RemoveCategory(categoryID)
	})
	if ok && changed {
		m.publish(events.ActionUnassign, categoryID)
	}
	return ok && changed
}

// AssignToFiles adds the category to every given file in one store
// write and returns how many records actually changed.
func (m *Manager) AssignToFiles(fileIDs []string, categoryID string) int {
	updated := 0
	m.store.UpdateMany(fileIDs, func(f *models.File) {
		if f.AddCategory(categoryID) {
			updated++
		}
	})
	if updated > 0 {
		m.publish(events.ActionAssign, categoryID)
	}
	return updated
}

func (m *Manager) publish(action, categoryID string) {
	if m.bus != nil {
		m.bus.Publish(events.CategoriesChanged{Action: action, CategoryID: categoryID})
	}
}
