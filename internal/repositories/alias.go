package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/shared"
)

// AliasRepository persists [models.PathAlias] rows.
type AliasRepository struct {
	db *sql.DB
}

// NewAliasRepository creates a new [AliasRepository] with the given database connection
func NewAliasRepository(db *sql.DB) *AliasRepository {
	return &AliasRepository{db: db}
}

// Replace deletes every alias of (path, langcode) and inserts alias in its place.
func (r *AliasRepository) Replace(path, alias, langcode string) (*models.PathAlias, error) {
	if path == "" || alias == "" {
		return nil, fmt.Errorf("%w: alias requires a path and an alias", shared.ErrInvalidInput)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM path_aliases WHERE path = ? AND langcode = ?`, path, langcode); err != nil {
		return nil, fmt.Errorf("failed to delete aliases: %w", err)
	}

	a := &models.PathAlias{
		UUID:     shared.GenerateID(),
		Path:     path,
		Alias:    alias,
		Langcode: langcode,
		Created:  time.Now().UTC(),
	}

	result, err := tx.Exec(`INSERT INTO path_aliases (uuid, path, alias, langcode, created) VALUES (?, ?, ?, ?, ?)`,
		a.UUID, a.Path, a.Alias, a.Langcode, a.Created)
	if err != nil {
		return nil, fmt.Errorf("failed to insert alias: %w", err)
	}

	if a.ID, err = result.LastInsertId(); err != nil {
		return nil, fmt.Errorf("failed to read alias id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit alias: %w", err)
	}
	return a, nil
}

// ListByPath returns every alias of a system path across languages.
func (r *AliasRepository) ListByPath(path string) ([]*models.PathAlias, error) {
	rows, err := r.db.Query(`
		SELECT id, uuid, path, alias, langcode, created FROM path_aliases
		WHERE path = ?
		ORDER BY langcode ASC, id ASC`, path)
	if err != nil {
		return nil, fmt.Errorf("failed to query aliases: %w", err)
	}
	defer rows.Close()

	var aliases []*models.PathAlias
	for rows.Next() {
		var a models.PathAlias
		if err := rows.Scan(&a.ID, &a.UUID, &a.Path, &a.Alias, &a.Langcode, &a.Created); err != nil {
			return nil, fmt.Errorf("failed to scan alias: %w", err)
		}
		aliases = append(aliases, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return aliases, nil
}

// DeleteByPath removes every alias of a system path.
func (r *AliasRepository) DeleteByPath(path string) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM path_aliases WHERE path = ?`, path)
	if err != nil {
		return 0, fmt.Errorf("failed to delete aliases: %w", err)
	}
	return result.RowsAffected()
}
