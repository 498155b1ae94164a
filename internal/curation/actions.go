package curation

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/hyperjump/erabu/internal/events"
	"github.com/hyperjump/erabu/internal/models"
)

// Approve marks one file approved. Unknown ids are a no-op returning
// false, matching the other single-file actions.
func (c *Controller) Approve(id string) bool {
	return c.apply(id, events.ActionApprove, func(f *models.File) {
		f.Approve(c.now())
	})
}

// Reject marks one file rejected. The analysis record stays so the file
// is not re-analyzed after a change of heart.
func (c *Controller) Reject(id string) bool {
	return c.apply(id, events.ActionReject, func(f *models.File) {
		f.Reject(c.now())
	})
}

// Archive moves one file to the archive, keeping all metadata.
func (c *Controller) Archive(id string) bool {
	return c.apply(id, events.ActionArchive, func(f *models.File) {
		f.Archive(c.now())
	})
}

// Restore brings one file back from the archive as approved.
func (c *Controller) Restore(id string) bool {
	return c.apply(id, events.ActionRestore, func(f *models.File) {
		f.Restore(c.now())
	})
}

// Analyze records an analysis of the given type on one file and stores
// the computed relevance score.
func (c *Controller) Analyze(id string, typ models.AnalysisType) bool {
	return c.apply(id, events.ActionAnalyze, func(f *models.File) {
		c.analyzeFile(f, typ)
	})
}

func (c *Controller) analyzeFile(f *models.File, typ models.AnalysisType) {
	score := c.scorer.Score(f)
	persisted := float64(score)
	f.RelevanceScore = &persisted
	f.RecordAnalysis(typ, score, c.now())
}

func (c *Controller) apply(id, action string, patch func(*models.File)) bool {
	ok := c.store.Update(id, patch)
	if !ok {
		c.logger.Debug("action on unknown file", zap.String("action", action), zap.String("id", id))
		return false
	}
	if c.bus != nil {
		c.bus.Publish(events.FilesUpdated{Action: action, IDs: []string{id}, Count: 1})
	}
	return true
}

// BulkApprove approves every selected file in one store write, then
// clears the selection.
func (c *Controller) BulkApprove() (int, error) {
	return c.bulk(events.ActionBulkApprove, func(f *models.File) {
		f.Approve(c.now())
	})
}

// BulkArchive archives every selected file in one store write.
func (c *Controller) BulkArchive() (int, error) {
	return c.bulk(events.ActionBulkArchive, func(f *models.File) {
		f.Archive(c.now())
	})
}

// BulkRestore restores every selected file in one store write.
func (c *Controller) BulkRestore() (int, error) {
	return c.bulk(events.ActionBulkRestore, func(f *models.File) {
		f.Restore(c.now())
	})
}

// BulkCategorize assigns a category to every selected file in one store
// write.
func (c *Controller) BulkCategorize(categoryID string) (int, error) {
	return c.bulk(events.ActionBulkCategorize, func(f *models.File) {
		f.AddCategory(categoryID)
	})
}

func (c *Controller) bulk(action string, patch func(*models.File)) (int, error) {
	ids := c.Selected()
	if len(ids) == 0 {
		return 0, ErrEmptySelection
	}
	updated := c.store.UpdateMany(ids, patch)
	c.ClearSelection()
	c.logger.Info("bulk action applied", zap.String("action", action), zap.Int("count", updated))
	if c.bus != nil {
		c.bus.Publish(events.FilesUpdated{Action: action, IDs: ids, Count: updated})
	}
	return updated, nil
}

// BulkAnalyze analyzes every selected file sequentially, paced by the
// configured delay. Files already analyzed are skipped. progress, when
// non-nil, is called after each file with done and total counts. The
// whole run is a single store write; cancelling ctx abandons the write
// and leaves the records untouched.
func (c *Controller) BulkAnalyze(ctx context.Context, typ models.AnalysisType, progress func(done, total int)) (int, error) {
	ids := c.Selected()
	if len(ids) == 0 {
		return 0, ErrEmptySelection
	}

	// Work on copies first so a cancelled run commits nothing.
	pending := make([]models.File, 0, len(ids))
	for _, id := range ids {
		f, ok := c.store.Get(id)
		if !ok || f.Analyzed {
			continue
		}
		pending = append(pending, f)
	}

	limiter := rate.NewLimiter(rate.Every(c.analyzeDelay), 1)
	analyzed := make(map[string]models.File, len(pending))
	total := len(pending)
	for i := range pending {
		if err := limiter.Wait(ctx); err != nil {
			return 0, err
		}
		f := pending[i]
		c.analyzeFile(&f, typ)
		analyzed[f.ID] = f
		if progress != nil {
			progress(len(analyzed), total)
		}
	}

	updated := 0
	if len(analyzed) > 0 {
		keys := make([]string, 0, len(analyzed))
		for id := range analyzed {
			keys = append(keys, id)
		}
		// Merge only the analysis fields into the live record. The run
		// spans the pacing delays, so other actions may have landed on
		// these files in the meantime and must not be overwritten.
		updated = c.store.UpdateMany(keys, func(f *models.File) {
			a := analyzed[f.ID]
			f.RelevanceScore = a.RelevanceScore
			f.Analyzed = a.Analyzed
			f.AnalysisType = a.AnalysisType
			f.AnalysisHistory = a.AnalysisHistory
		})
	}
	c.ClearSelection()
	c.logger.Info("bulk analysis complete", zap.Int("analyzed", updated), zap.Int("selected", len(ids)))
	if c.bus != nil {
		c.bus.Publish(events.FilesUpdated{Action: events.ActionBulkAnalyze, IDs: ids, Count: updated})
	}
	return updated, nil
}

// Categorize assigns a category to one file. Already-present categories
// are a no-op that still reports the file as found.
func (c *Controller) Categorize(id, categoryID string) bool {
	return c.apply(id, events.ActionCategorize, func(f *models.File) {
		f.AddCategory(categoryID)
	})
}

// Uncategorize removes a category from one file.
func (c *Controller) Uncategorize(id, categoryID string) bool {
	return c.apply(id, events.ActionUncategorize, func(f *models.File) {
		f.RemoveCategory(categoryID)
	})
}
