// Package storage defines persistence for file records, categories, and
// user preferences.
package storage

import (
	"context"

	"github.com/hyperjump/erabu/internal/models"
)

// ViewModeKey is the preference key for the list rendering mode.
const ViewModeKey = "erabu.view_mode"

// DefaultViewMode is used until the user picks one.
const DefaultViewMode = "cards"

// Storage defines file record, category, and preference persistence.
type Storage interface {
	// File records
	SaveFiles(ctx context.Context, files []models.File) error
	LoadFiles(ctx context.Context) ([]models.File, error)
	DeleteFile(ctx context.Context, id string) error
	CountFiles(ctx context.Context) (int64, error)

	// Categories
	Categories(ctx context.Context) ([]models.Category, error)
	SaveCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, id string) error

	// Preferences
	GetPreference(ctx context.Context, key string) (string, error)
	SetPreference(ctx context.Context, key, value string) error

	Close() error
}
