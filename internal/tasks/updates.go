package tasks

import (
	"fmt"

	"github.com/desertthunder/wpx/internal/models"
)

// ProgressUpdate represents a progress event during a migration run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ExtractBatch Phase = iota
	MigrateItem
	CategoryDone
	RunDone
)

func (p Phase) String() string {
	switch p {
	case ExtractBatch:
		return "extract_batch"
	case MigrateItem:
		return "migrate_item"
	case CategoryDone:
		return "category_done"
	case RunDone:
		return "run_done"
	default:
		return ""
	}
}

func extractBatchUpdate(step, total int, c models.Category, offset int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExtractBatch,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Extracting %s (offset %d)...", c, offset),
		Data:    c,
	}
}

func migrateItemUpdate(step, total int, c models.Category, legacyID int64, status models.Status) ProgressUpdate {
	mark := "✓"
	switch status {
	case models.StatusFailed:
		mark = "✗"
	case models.StatusSkipped:
		mark = "-"
	}
	return ProgressUpdate{
		Phase:   MigrateItem,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s #%d", step, total, mark, c, legacyID),
		Data:    status,
	}
}

func categoryDoneUpdate(step, total int, result CategoryResult) ProgressUpdate {
	return ProgressUpdate{
		Phase: CategoryDone,
		Step:  step,
		Total: total,
		Message: fmt.Sprintf("%s: %d migrated, %d failed, %d skipped",
			result.Category, result.Result.Success, result.Result.Failed, result.Result.Skipped),
		Data: result,
	}
}

func runDoneUpdate(total int, results []CategoryResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RunDone,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("Finished %d categories", len(results)),
		Data:    results,
	}
}
