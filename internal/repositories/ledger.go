package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/shared"
)

// LedgerRepository persists the migration ledger (wordpress_migrate_log).
//
// Entries are inserted and deleted, never updated.
type LedgerRepository struct {
	db *sql.DB
}

// NewLedgerRepository creates a new [LedgerRepository] with the given database connection
func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Insert appends an entry and sets its ID and Created.
func (r *LedgerRepository) Insert(entry *models.LedgerEntry) error {
	if !entry.Status.Valid() {
		return fmt.Errorf("%w: ledger status %q", shared.ErrInvalidInput, entry.Status)
	}
	if entry.MigrationType == "" {
		return fmt.Errorf("%w: ledger migration type is required", shared.ErrInvalidInput)
	}
	if entry.Created.IsZero() {
		entry.Created = time.Now().UTC()
	}

	query := `
		INSERT INTO wordpress_migrate_log (migration_type, wordpress_id, drupal_id, status, message, created)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		entry.MigrationType,
		entry.WordPressID,
		nullableID(entry.TargetID),
		entry.Status,
		entry.Message,
		entry.Created,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ledger entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read ledger entry id: %w", err)
	}
	entry.ID = id
	return nil
}

// FindSuccess returns the most recent success entry for a legacy item, or [shared.ErrNotFound].
func (r *LedgerRepository) FindSuccess(migrationType models.MigrationType, wordpressID int64) (*models.LedgerEntry, error) {
	query := `
		SELECT id, migration_type, wordpress_id, drupal_id, status, message, created
		FROM wordpress_migrate_log
		WHERE migration_type = ? AND wordpress_id = ? AND status = ?
		ORDER BY id DESC
		LIMIT 1
	`

	return r.scanOne(r.db.QueryRow(query, migrationType, wordpressID, models.StatusSuccess))
}

// DeleteSuccess removes every success entry for a legacy item and returns how many were removed.
func (r *LedgerRepository) DeleteSuccess(migrationType models.MigrationType, wordpressID int64) (int64, error) {
	query := `
		DELETE FROM wordpress_migrate_log
		WHERE migration_type = ? AND wordpress_id = ? AND status = ?
	`

	result, err := r.db.Exec(query, migrationType, wordpressID, models.StatusSuccess)
	if err != nil {
		return 0, fmt.Errorf("failed to delete ledger entries: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}

// List retrieves entries matching the given criteria, newest first.
//
// Supported criteria: "migration_type" (string or [models.MigrationType]), "status" (string or [models.Status]),
// "wordpress_id" (int64) and "limit" (int).
func (r *LedgerRepository) List(criteria map[string]any) ([]*models.LedgerEntry, error) {
	query := `
		SELECT id, migration_type, wordpress_id, drupal_id, status, message, created
		FROM wordpress_migrate_log
		WHERE 1 = 1
	`

	args := []any{}

	if t := criterionString(criteria["migration_type"]); t != "" {
		query += " AND migration_type = ?"
		args = append(args, t)
	}

	if s := criterionString(criteria["status"]); s != "" {
		query += " AND status = ?"
		args = append(args, s)
	}

	if id, ok := criteria["wordpress_id"].(int64); ok {
		query += " AND wordpress_id = ?"
		args = append(args, id)
	}

	query += " ORDER BY id DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	defer rows.Close()

	var entries []*models.LedgerEntry
	for rows.Next() {
		entry, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// Stats counts entries grouped by migration type and status.
func (r *LedgerRepository) Stats() ([]models.LedgerStat, error) {
	query := `
		SELECT migration_type, status, COUNT(*)
		FROM wordpress_migrate_log
		GROUP BY migration_type, status
		ORDER BY migration_type ASC, status ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger stats: %w", err)
	}
	defer rows.Close()

	var stats []models.LedgerStat
	for rows.Next() {
		var stat models.LedgerStat
		if err := rows.Scan(&stat.MigrationType, &stat.Status, &stat.Count); err != nil {
			return nil, fmt.Errorf("failed to scan ledger stat: %w", err)
		}
		stats = append(stats, stat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return stats, nil
}

// scanOne scans a single [sql.Row] into a [models.LedgerEntry]
func (r *LedgerRepository) scanOne(row *sql.Row) (*models.LedgerEntry, error) {
	var (
		entry    models.LedgerEntry
		targetID sql.NullInt64
	)

	err := row.Scan(&entry.ID, &entry.MigrationType, &entry.WordPressID, &targetID, &entry.Status, &entry.Message, &entry.Created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: ledger entry", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
	}

	entry.TargetID = idPtr(targetID)
	return &entry, nil
}

// scanRow scans a row from [sql.Rows] into a [models.LedgerEntry]
func (r *LedgerRepository) scanRow(rows *sql.Rows) (*models.LedgerEntry, error) {
	var (
		entry    models.LedgerEntry
		targetID sql.NullInt64
	)

	err := rows.Scan(&entry.ID, &entry.MigrationType, &entry.WordPressID, &targetID, &entry.Status, &entry.Message, &entry.Created)
	if err != nil {
		return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
	}

	entry.TargetID = idPtr(targetID)
	return &entry, nil
}

func criterionString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case models.MigrationType:
		return string(s)
	case models.Status:
		return string(s)
	default:
		return ""
	}
}
