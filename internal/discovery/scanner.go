// Package discovery walks configured roots, builds file records with
// extracted previews, and publishes them on the event bus. A filesystem
// watcher triggers debounced rescans while the app runs.
package discovery

import (
	"context"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/erabu/internal/events"
	"github.com/hyperjump/erabu/internal/extract"
	"github.com/hyperjump/erabu/internal/fileid"
	"github.com/hyperjump/erabu/internal/models"
)

// Scanner discovers candidate files under a set of roots.
type Scanner struct {
	roots        []string
	extensions   []string
	recursive    bool
	previewChars int
	extractor    *extract.Extractor
	bus          *events.Bus
	logger       *zap.Logger
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithLogger sets the logger for scan diagnostics.
func WithLogger(l *zap.Logger) ScannerOption {
	return func(s *Scanner) { s.logger = l }
}

// WithPreviewChars caps how much extracted text is kept per file.
func WithPreviewChars(n int) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.previewChars = n
		}
	}
}

const defaultPreviewChars = 2000

// NewScanner creates a Scanner over roots. extensions filter which files
// are picked up (empty means all); bus may be nil in tests.
func NewScanner(roots, extensions []string, recursive bool, bus *events.Bus, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		roots:        roots,
		extensions:   extensions,
		recursive:    recursive,
		previewChars: defaultPreviewChars,
		extractor:    extract.NewExtractor(),
		bus:          bus,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan walks every root, builds normalized file records, flags
// duplicates, and publishes a FilesDiscovered event. The returned slice
// is ordered by walk order, roots first to last.
func (s *Scanner) Scan(ctx context.Context) ([]models.File, error) {
	var files []models.File
	for _, root := range s.roots {
		root = filepath.Clean(root)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				s.logger.Debug("scan skipping entry", zap.String("path", path), zap.Error(err))
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && !s.recursive {
					return fs.SkipDir
				}
				if strings.HasPrefix(d.Name(), ".") && path != root {
					return fs.SkipDir
				}
				return nil
			}
			if !matchExtension(path, s.extensions) {
				return nil
			}
			f, err := s.buildRecord(root, path, d)
			if err != nil {
				s.logger.Warn("scan skipping file", zap.String("path", path), zap.Error(err))
				return nil
			}
			files = append(files, f)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	MarkDuplicates(files)
	s.logger.Info("scan complete", zap.Int("files", len(files)), zap.Int("roots", len(s.roots)))
	if s.bus != nil {
		s.bus.Publish(events.FilesDiscovered{Files: files})
	}
	return files, nil
}

func (s *Scanner) buildRecord(root, path string, d fs.DirEntry) (models.File, error) {
	info, err := d.Info()
	if err != nil {
		return models.File{}, err
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = d.Name()
	}

	f := models.File{
		ID:           fileid.FromPath(path),
		Name:         d.Name(),
		Path:         path,
		RelativePath: rel,
		Size:         info.Size(),
		LastModified: info.ModTime(),
	}
	if text, err := s.extractor.Preview(path, s.previewChars); err != nil {
		// An unreadable body is not fatal; the record still carries
		// name, size, and date for filtering.
		s.logger.Debug("preview extraction failed", zap.String("path", path), zap.Error(err))
	} else if text != "" {
		f.Preview = &models.Preview{Text: text}
	}
	f.Normalize()
	return f, nil
}

// MarkDuplicates flags files sharing a lowercase name and byte size.
// The first member of each group in walk order becomes the primary and
// stays visible under the hide-duplicates mode; the rest are marked as
// plain duplicates.
func MarkDuplicates(files []models.File) {
	groups := make(map[string][]int)
	for i := range files {
		key := strings.ToLower(files[i].Name) + "\x00" + strconv.FormatInt(files[i].Size, 10)
		groups[key] = append(groups[key], i)
	}
	for _, idxs := range groups {
		if len(idxs) < 2 {
			continue
		}
		for n, i := range idxs {
			if n == 0 {
				files[i].IsPrimaryDuplicate = true
				files[i].IsDuplicate = false
			} else {
				files[i].IsDuplicate = true
				files[i].IsPrimaryDuplicate = false
			}
		}
	}
}

func matchExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}
