package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/shared"
)

// MediaRepository persists stored [models.File] rows and the [models.MediaAsset] entities pointing at them.
type MediaRepository struct {
	db *sql.DB
}

// NewMediaRepository creates a new [MediaRepository] with the given database connection
func NewMediaRepository(db *sql.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// SaveFile records a stored file. A row with the same URI is overwritten in place and keeps its ID,
// matching the overwrite semantics of the file storage.
func (r *MediaRepository) SaveFile(file *models.File) error {
	if file.URI == "" {
		return fmt.Errorf("%w: file uri is required", shared.ErrInvalidInput)
	}

	existing, err := r.GetFileByURI(file.URI)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	if existing != nil {
		file.ID = existing.ID
		file.UUID = existing.UUID
		file.Created = existing.Created
		file.Changed = time.Now().UTC()

		result, err := r.db.Exec(`UPDATE files SET filename = ?, filemime = ?, filesize = ?, changed = ? WHERE id = ?`,
			file.Filename, file.MimeType, file.Size, file.Changed, file.ID)
		if err != nil {
			return fmt.Errorf("failed to update file: %w", err)
		}
		return checkAffected(result, "file", file.ID)
	}

	file.UUID = shared.GenerateID()
	stamp(&file.Created, &file.Changed)

	query := `
		INSERT INTO files (uuid, uri, filename, filemime, filesize, created, changed)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query, file.UUID, file.URI, file.Filename, file.MimeType, file.Size, file.Created, file.Changed)
	if err != nil {
		return fmt.Errorf("failed to insert file: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read file id: %w", err)
	}
	file.ID = id
	return nil
}

// GetFile retrieves a file by ID
func (r *MediaRepository) GetFile(id int64) (*models.File, error) {
	return r.scanFile(r.db.QueryRow(`
		SELECT id, uuid, uri, filename, filemime, filesize, created, changed FROM files WHERE id = ?`, id))
}

// GetFileByURI retrieves a file by its storage URI
func (r *MediaRepository) GetFileByURI(uri string) (*models.File, error) {
	return r.scanFile(r.db.QueryRow(`
		SELECT id, uuid, uri, filename, filemime, filesize, created, changed FROM files WHERE uri = ?`, uri))
}

// CreateMedia inserts a media entity; its file must exist.
func (r *MediaRepository) CreateMedia(media *models.MediaAsset) error {
	if media.Bundle == "" || media.FileID == 0 {
		return fmt.Errorf("%w: media requires a bundle and a file", shared.ErrInvalidInput)
	}

	media.UUID = shared.GenerateID()
	stamp(&media.Created, &media.Changed)

	query := `
		INSERT INTO media (uuid, bundle, name, file_id, alt, description, created, changed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		media.UUID,
		media.Bundle,
		media.Name,
		media.FileID,
		media.Alt,
		media.Description,
		media.Created,
		media.Changed,
	)
	if err != nil {
		return fmt.Errorf("failed to insert media: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read media id: %w", err)
	}
	media.ID = id
	return nil
}

// GetMedia retrieves a media entity by ID
func (r *MediaRepository) GetMedia(id int64) (*models.MediaAsset, error) {
	var m models.MediaAsset
	err := r.db.QueryRow(`
		SELECT id, uuid, bundle, name, file_id, alt, description, created, changed FROM media WHERE id = ?`, id).
		Scan(&m.ID, &m.UUID, &m.Bundle, &m.Name, &m.FileID, &m.Alt, &m.Description, &m.Created, &m.Changed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: media %d", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan media: %w", err)
	}
	return &m, nil
}

// DeleteMedia removes a media entity; the stored file row is kept.
func (r *MediaRepository) DeleteMedia(id int64) error {
	result, err := r.db.Exec(`DELETE FROM media WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete media: %w", err)
	}
	return checkAffected(result, "media", id)
}

func (r *MediaRepository) scanFile(row *sql.Row) (*models.File, error) {
	var f models.File
	err := row.Scan(&f.ID, &f.UUID, &f.URI, &f.Filename, &f.MimeType, &f.Size, &f.Created, &f.Changed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: file", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan file: %w", err)
	}
	return &f, nil
}
