package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/shared"
)

const contentColumns = `id, uuid, bundle, title, body, body_format, langcode, uid, status, created, changed`

// ContentRepository persists [models.ContentItem] rows and their term reference fields.
//
// Term references live in content_item_terms keyed by (item, field, delta); saving an item replaces its references.
type ContentRepository struct {
	db *sql.DB
}

// NewContentRepository creates a new [ContentRepository] with the given database connection
func NewContentRepository(db *sql.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// Create inserts a new item with its term references in one transaction.
func (r *ContentRepository) Create(item *models.ContentItem) error {
	if item.Bundle == "" {
		return fmt.Errorf("%w: content bundle is required", shared.ErrInvalidInput)
	}
	if item.Langcode == "" {
		item.Langcode = models.LangUndefined
	}

	item.UUID = shared.GenerateID()
	stamp(&item.Created, &item.Changed)

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO content_items (uuid, bundle, title, body, body_format, langcode, uid, status, created, changed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.Exec(query,
		item.UUID,
		item.Bundle,
		item.Title,
		item.Body,
		item.BodyFormat,
		item.Langcode,
		nullableID(item.AuthorID),
		item.Status,
		item.Created,
		item.Changed,
	)
	if err != nil {
		return fmt.Errorf("failed to insert content item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read content item id: %w", err)
	}

	if err := replaceTerms(tx, id, item); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit content item: %w", err)
	}

	item.ID = id
	return nil
}

// Get retrieves an item by ID with its term references.
func (r *ContentRepository) Get(id int64) (*models.ContentItem, error) {
	query := `SELECT ` + contentColumns + ` FROM content_items WHERE id = ?`

	item, err := r.scanOne(r.db.QueryRow(query, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadTerms(item); err != nil {
		return nil, err
	}
	return item, nil
}

// Update saves every column of item and replaces its term references.
func (r *ContentRepository) Update(item *models.ContentItem) error {
	if item.Changed.IsZero() {
		item.Changed = time.Now().UTC()
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE content_items
		SET title = ?, body = ?, body_format = ?, langcode = ?, uid = ?, status = ?, created = ?, changed = ?
		WHERE id = ?
	`

	result, err := tx.Exec(query,
		item.Title,
		item.Body,
		item.BodyFormat,
		item.Langcode,
		nullableID(item.AuthorID),
		item.Status,
		item.Created,
		item.Changed,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update content item: %w", err)
	}
	if err := checkAffected(result, "content item", item.ID); err != nil {
		return err
	}

	if err := replaceTerms(tx, item.ID, item); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit content item: %w", err)
	}
	return nil
}

// Delete removes an item; its term references cascade.
func (r *ContentRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM content_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete content item: %w", err)
	}
	return checkAffected(result, "content item", id)
}

// List retrieves items matching the given criteria ("bundle", "langcode") without term references.
func (r *ContentRepository) List(criteria map[string]any) ([]*models.ContentItem, error) {
	query := `SELECT ` + contentColumns + ` FROM content_items WHERE 1 = 1`

	args := []any{}

	if bundle, ok := criteria["bundle"].(string); ok && bundle != "" {
		query += " AND bundle = ?"
		args = append(args, bundle)
	}

	if langcode, ok := criteria["langcode"].(string); ok && langcode != "" {
		query += " AND langcode = ?"
		args = append(args, langcode)
	}

	query += " ORDER BY id ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query content items: %w", err)
	}
	defer rows.Close()

	var items []*models.ContentItem
	for rows.Next() {
		item, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}

// replaceTerms rewrites the category and tag references of an item.
func replaceTerms(tx *sql.Tx, itemID int64, item *models.ContentItem) error {
	if _, err := tx.Exec(`DELETE FROM content_item_terms WHERE item_id = ?`, itemID); err != nil {
		return fmt.Errorf("failed to clear term references: %w", err)
	}

	insert := `INSERT INTO content_item_terms (item_id, field_name, delta, term_id) VALUES (?, ?, ?, ?)`
	fields := []struct {
		name  string
		terms []int64
	}{
		{models.FieldCategories, item.Categories},
		{models.FieldTags, item.Tags},
	}

	for _, field := range fields {
		for delta, termID := range field.terms {
			if _, err := tx.Exec(insert, itemID, field.name, delta, termID); err != nil {
				return fmt.Errorf("failed to insert %s reference %d: %w", field.name, termID, err)
			}
		}
	}
	return nil
}

func (r *ContentRepository) loadTerms(item *models.ContentItem) error {
	rows, err := r.db.Query(`
		SELECT field_name, term_id FROM content_item_terms
		WHERE item_id = ?
		ORDER BY field_name ASC, delta ASC`, item.ID)
	if err != nil {
		return fmt.Errorf("failed to query term references: %w", err)
	}
	defer rows.Close()

	item.Categories, item.Tags = nil, nil
	for rows.Next() {
		var (
			field  string
			termID int64
		)
		if err := rows.Scan(&field, &termID); err != nil {
			return fmt.Errorf("failed to scan term reference: %w", err)
		}
		switch field {
		case models.FieldCategories:
			item.Categories = append(item.Categories, termID)
		case models.FieldTags:
			item.Tags = append(item.Tags, termID)
		}
	}
	return rows.Err()
}

func (r *ContentRepository) scanOne(row *sql.Row) (*models.ContentItem, error) {
	var (
		item models.ContentItem
		uid  sql.NullInt64
	)

	err := row.Scan(&item.ID, &item.UUID, &item.Bundle, &item.Title, &item.Body, &item.BodyFormat,
		&item.Langcode, &uid, &item.Status, &item.Created, &item.Changed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: content item", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan content item: %w", err)
	}

	item.AuthorID = idPtr(uid)
	return &item, nil
}

func (r *ContentRepository) scanRow(rows *sql.Rows) (*models.ContentItem, error) {
	var (
		item models.ContentItem
		uid  sql.NullInt64
	)

	err := rows.Scan(&item.ID, &item.UUID, &item.Bundle, &item.Title, &item.Body, &item.BodyFormat,
		&item.Langcode, &uid, &item.Status, &item.Created, &item.Changed)
	if err != nil {
		return nil, fmt.Errorf("failed to scan content item: %w", err)
	}

	item.AuthorID = idPtr(uid)
	return &item, nil
}
