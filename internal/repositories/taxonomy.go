package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/shared"
)

const termColumns = `id, uuid, vid, name, description, description_format, parent_id, created, changed`

// TaxonomyRepository persists vocabularies and their [models.Term] rows.
type TaxonomyRepository struct {
	db *sql.DB
}

// NewTaxonomyRepository creates a new [TaxonomyRepository] with the given database connection
func NewTaxonomyRepository(db *sql.DB) *TaxonomyRepository {
	return &TaxonomyRepository{db: db}
}

// GetVocabulary retrieves a vocabulary by machine name.
func (r *TaxonomyRepository) GetVocabulary(vid string) (*models.Vocabulary, error) {
	var v models.Vocabulary
	err := r.db.QueryRow(`SELECT vid, uuid, name, description FROM vocabularies WHERE vid = ?`, vid).
		Scan(&v.VID, &v.UUID, &v.Name, &v.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: vocabulary %s", shared.ErrNotFound, vid)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan vocabulary: %w", err)
	}
	return &v, nil
}

// EnsureVocabulary returns the vocabulary v.VID, creating it from v when absent.
//
// The boolean reports whether it was created.
func (r *TaxonomyRepository) EnsureVocabulary(v models.Vocabulary) (*models.Vocabulary, bool, error) {
	if v.VID == "" {
		return nil, false, fmt.Errorf("%w: vocabulary id is required", shared.ErrInvalidInput)
	}

	existing, err := r.GetVocabulary(v.VID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, false, err
	}

	v.UUID = shared.GenerateID()
	_, err = r.db.Exec(`INSERT INTO vocabularies (vid, uuid, name, description) VALUES (?, ?, ?, ?)`,
		v.VID, v.UUID, v.Name, v.Description)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert vocabulary: %w", err)
	}
	return &v, true, nil
}

// ListVocabularies returns every vocabulary ordered by machine name.
func (r *TaxonomyRepository) ListVocabularies() ([]*models.Vocabulary, error) {
	rows, err := r.db.Query(`SELECT vid, uuid, name, description FROM vocabularies ORDER BY vid ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query vocabularies: %w", err)
	}
	defer rows.Close()

	var vocabularies []*models.Vocabulary
	for rows.Next() {
		var v models.Vocabulary
		if err := rows.Scan(&v.VID, &v.UUID, &v.Name, &v.Description); err != nil {
			return nil, fmt.Errorf("failed to scan vocabulary: %w", err)
		}
		vocabularies = append(vocabularies, &v)
	}
	return vocabularies, rows.Err()
}

// CreateTerm inserts a new term; its vocabulary must exist.
func (r *TaxonomyRepository) CreateTerm(term *models.Term) error {
	if term.VID == "" || term.Name == "" {
		return fmt.Errorf("%w: term requires a vocabulary and a name", shared.ErrInvalidInput)
	}
	if term.DescriptionFormat == "" {
		term.DescriptionFormat = models.FormatBasicHTML
	}

	term.UUID = shared.GenerateID()
	stamp(&term.Created, &term.Changed)

	query := `
		INSERT INTO taxonomy_terms (uuid, vid, name, description, description_format, parent_id, created, changed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		term.UUID,
		term.VID,
		term.Name,
		term.Description,
		term.DescriptionFormat,
		nullableID(term.ParentID),
		term.Created,
		term.Changed,
	)
	if err != nil {
		return fmt.Errorf("failed to insert term: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read term id: %w", err)
	}
	term.ID = id
	return nil
}

// GetTerm retrieves a term by ID
func (r *TaxonomyRepository) GetTerm(id int64) (*models.Term, error) {
	query := `SELECT ` + termColumns + ` FROM taxonomy_terms WHERE id = ?`
	return r.scanOne(r.db.QueryRow(query, id))
}

// DeleteTerm removes a term; children lose their parent and content references cascade.
func (r *TaxonomyRepository) DeleteTerm(id int64) error {
	result, err := r.db.Exec(`DELETE FROM taxonomy_terms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete term: %w", err)
	}
	return checkAffected(result, "term", id)
}

// ListTerms retrieves the terms of a vocabulary ordered by ID; an empty vid lists every term.
func (r *TaxonomyRepository) ListTerms(vid string) ([]*models.Term, error) {
	query := `SELECT ` + termColumns + ` FROM taxonomy_terms`

	args := []any{}
	if vid != "" {
		query += " WHERE vid = ?"
		args = append(args, vid)
	}
	query += " ORDER BY id ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query terms: %w", err)
	}
	defer rows.Close()

	var terms []*models.Term
	for rows.Next() {
		term, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return terms, nil
}

func (r *TaxonomyRepository) scanOne(row *sql.Row) (*models.Term, error) {
	var (
		term   models.Term
		parent sql.NullInt64
	)

	err := row.Scan(&term.ID, &term.UUID, &term.VID, &term.Name, &term.Description, &term.DescriptionFormat,
		&parent, &term.Created, &term.Changed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: term", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan term: %w", err)
	}

	term.ParentID = idPtr(parent)
	return &term, nil
}

func (r *TaxonomyRepository) scanRow(rows *sql.Rows) (*models.Term, error) {
	var (
		term   models.Term
		parent sql.NullInt64
	)

	err := rows.Scan(&term.ID, &term.UUID, &term.VID, &term.Name, &term.Description, &term.DescriptionFormat,
		&parent, &term.Created, &term.Changed)
	if err != nil {
		return nil, fmt.Errorf("failed to scan term: %w", err)
	}

	term.ParentID = idPtr(parent)
	return &term, nil
}
