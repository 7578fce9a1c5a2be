package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/shared"
)

// Store aggregates the target entity repositories over one database handle.
type Store struct {
	db       *sql.DB
	Users    *UserRepository
	Content  *ContentRepository
	Taxonomy *TaxonomyRepository
	Media    *MediaRepository
	Aliases  *AliasRepository
	Schema   *SchemaRepository
	Ledger   *LedgerRepository
}

// NewStore wires every repository to db.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:       db,
		Users:    NewUserRepository(db),
		Content:  NewContentRepository(db),
		Taxonomy: NewTaxonomyRepository(db),
		Media:    NewMediaRepository(db),
		Aliases:  NewAliasRepository(db),
		Schema:   NewSchemaRepository(db),
		Ledger:   NewLedgerRepository(db),
	}
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Exists reports whether an entity of entityType with id is present.
func (s *Store) Exists(entityType string, id int64) (bool, error) {
	var table string
	switch entityType {
	case models.EntityUser:
		table = "users"
	case models.EntityContentItem:
		table = "content_items"
	case models.EntityTaxonomyTerm:
		table = "taxonomy_terms"
	case models.EntityMedia:
		table = "media"
	default:
		return false, fmt.Errorf("%w: unknown entity type %q", shared.ErrInvalidArgument, entityType)
	}

	var found int
	err := s.db.QueryRow(fmt.Sprintf("SELECT 1 FROM %s WHERE id = ?", table), id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: failed to check %s %d: %v", shared.ErrStore, entityType, id, err)
	}
	return true, nil
}

// Counts returns the number of rows per target entity type.
func (s *Store) Counts() (map[string]int, error) {
	tables := map[string]string{
		models.EntityUser:         "users",
		models.EntityContentItem:  "content_items",
		models.EntityTaxonomyTerm: "taxonomy_terms",
		models.EntityMedia:        "media",
	}

	counts := make(map[string]int, len(tables))
	for entityType, table := range tables {
		var n int
		if err := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[entityType] = n
	}
	return counts, nil
}

// nullableID converts an optional reference into a driver value.
func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

// idPtr converts a scanned nullable reference back into a pointer.
func idPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

// stamp fills zero timestamps with now.
func stamp(created, changed *time.Time) {
	now := time.Now().UTC()
	if created.IsZero() {
		*created = now
	}
	if changed.IsZero() {
		*changed = *created
	}
}

// checkAffected converts a zero-row result into ErrNotFound.
func checkAffected(result sql.Result, what string, id any) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s %v", shared.ErrNotFound, what, id)
	}
	return nil
}
