package tasks

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/shared"
)

// LedgerStore is the durable ledger table. It has no update operation.
type LedgerStore interface {
	Insert(entry *models.LedgerEntry) error
	FindSuccess(migrationType models.MigrationType, wordpressID int64) (*models.LedgerEntry, error)
	DeleteSuccess(migrationType models.MigrationType, wordpressID int64) (int64, error)
}

// Resolver reports whether a target entity still exists.
type Resolver interface {
	Exists(entityType string, id int64) (bool, error)
}

// SelfHealRecorder observes removed stale ledger entries.
type SelfHealRecorder interface {
	RecordSelfHeal(migrationType string)
}

// Ledger answers "was this legacy record migrated, and to what?" on top of the ledger table.
type Ledger struct {
	store    LedgerStore
	resolver Resolver
	logger   *log.Logger
	recorder SelfHealRecorder
}

// NewLedger creates a [Ledger]. recorder may be nil.
func NewLedger(store LedgerStore, resolver Resolver, logger *log.Logger, recorder SelfHealRecorder) *Ledger {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Ledger{
		store:    store,
		resolver: resolver,
		logger:   shared.WithLogger(logger, "component", "ledger"),
		recorder: recorder,
	}
}

// IsMigrated reports whether a success entry exists and its target still resolves.
//
// A success entry whose target is gone (or was never set) is deleted and the record reported as not migrated,
// so the next run recreates it.
func (l *Ledger) IsMigrated(migrationType models.MigrationType, wordpressID int64) (bool, error) {
	entry, err := l.store.FindSuccess(migrationType, wordpressID)
	if errors.Is(err, shared.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if entry.TargetID != nil {
		exists, err := l.resolver.Exists(models.EntityTypeFor(migrationType), *entry.TargetID)
		if err != nil {
			return false, err
		}
		if exists {
			return true, nil
		}
	}

	removed, err := l.store.DeleteSuccess(migrationType, wordpressID)
	if err != nil {
		return false, fmt.Errorf("failed to remove stale ledger entry: %w", err)
	}

	l.logger.Warn("removed stale ledger entry", "migration_type", migrationType, "wordpress_id", wordpressID, "entries", removed)
	if l.recorder != nil {
		l.recorder.RecordSelfHeal(string(migrationType))
	}
	return false, nil
}

// GetTargetID returns the target id of the latest success entry without checking that the target exists.
//
// A missing entry is not an error; ok is false.
func (l *Ledger) GetTargetID(migrationType models.MigrationType, wordpressID int64) (id int64, ok bool, err error) {
	entry, err := l.store.FindSuccess(migrationType, wordpressID)
	if errors.Is(err, shared.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if entry.TargetID == nil {
		return 0, false, nil
	}
	return *entry.TargetID, true, nil
}

// Record appends one ledger entry.
func (l *Ledger) Record(migrationType models.MigrationType, wordpressID int64, targetID *int64, status models.Status, message string) error {
	entry := &models.LedgerEntry{
		MigrationType: migrationType,
		WordPressID:   wordpressID,
		TargetID:      targetID,
		Status:        status,
		Message:       message,
	}
	if err := l.store.Insert(entry); err != nil {
		return fmt.Errorf("failed to record %s %d: %w", migrationType, wordpressID, err)
	}
	return nil
}
