package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/shared"
)

// MediaBundles are the media types registered by [SchemaRepository.EnsureContentTypes].
var MediaBundles = []string{"image", "video", "audio", "document", "file"}

// SchemaRepository stores which fields each (entity type, bundle) defines.
type SchemaRepository struct {
	db *sql.DB
}

// NewSchemaRepository creates a new [SchemaRepository] with the given database connection
func NewSchemaRepository(db *sql.DB) *SchemaRepository {
	return &SchemaRepository{db: db}
}

// AddField registers a field; registering an existing field is a no-op.
func (r *SchemaRepository) AddField(entityType, bundle, field string) error {
	if entityType == "" || bundle == "" || field == "" {
		return fmt.Errorf("%w: field definition requires entity type, bundle and name", shared.ErrInvalidInput)
	}

	_, err := r.db.Exec(`INSERT OR IGNORE INTO field_definitions (entity_type, bundle, field_name) VALUES (?, ?, ?)`,
		entityType, bundle, field)
	if err != nil {
		return fmt.Errorf("failed to add field %s.%s.%s: %w", entityType, bundle, field, err)
	}
	return nil
}

// RemoveField unregisters a field.
func (r *SchemaRepository) RemoveField(entityType, bundle, field string) error {
	_, err := r.db.Exec(`DELETE FROM field_definitions WHERE entity_type = ? AND bundle = ? AND field_name = ?`,
		entityType, bundle, field)
	if err != nil {
		return fmt.Errorf("failed to remove field: %w", err)
	}
	return nil
}

// FieldNames returns the set of fields defined for an entity type and bundle.
func (r *SchemaRepository) FieldNames(entityType, bundle string) (map[string]bool, error) {
	rows, err := r.db.Query(`SELECT field_name FROM field_definitions WHERE entity_type = ? AND bundle = ?`, entityType, bundle)
	if err != nil {
		return nil, fmt.Errorf("failed to query field definitions: %w", err)
	}
	defer rows.Close()

	fields := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan field definition: %w", err)
		}
		fields[name] = true
	}
	return fields, rows.Err()
}

// EnsureContentTypes registers the bundles and fields the migration writes into.
func (r *SchemaRepository) EnsureContentTypes() error {
	definitions := map[string]map[string][]string{
		models.EntityContentItem: {
			models.BundlePost: {models.FieldBody, models.FieldLangcode, models.FieldCategories, models.FieldTags},
			models.BundlePage: {models.FieldBody, models.FieldLangcode, models.FieldCategories, models.FieldTags},
		},
		models.EntityUser: {
			models.EntityUser: {models.FieldDisplayName, models.FieldFirstName, models.FieldLastName},
		},
		models.EntityMedia: {},
	}
	for _, bundle := range MediaBundles {
		definitions[models.EntityMedia][bundle] = []string{models.FieldMediaFile}
	}

	for entityType, bundles := range definitions {
		for bundle, fields := range bundles {
			for _, field := range fields {
				if err := r.AddField(entityType, bundle, field); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
