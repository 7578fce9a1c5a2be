package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/shared"
)

const userColumns = `id, uuid, name, mail, status, display_name, first_name, last_name, created, changed`

// UserRepository persists target [models.User] accounts.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new [UserRepository] with the given database connection
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user, assigning its ID and UUID.
func (r *UserRepository) Create(user *models.User) error {
	if user.Name == "" {
		return fmt.Errorf("%w: user name is required", shared.ErrInvalidInput)
	}

	user.UUID = shared.GenerateID()
	stamp(&user.Created, &user.Changed)

	query := `
		INSERT INTO users (uuid, name, mail, status, display_name, first_name, last_name, created, changed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		user.UUID,
		user.Name,
		user.Mail,
		user.Status,
		user.DisplayName,
		user.FirstName,
		user.LastName,
		user.Created,
		user.Changed,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read user id: %w", err)
	}
	user.ID = id
	return nil
}

// Get retrieves a user by ID
func (r *UserRepository) Get(id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return r.scanOne(r.db.QueryRow(query, id))
}

// FindByMail returns the oldest user with the given mail address, or [shared.ErrNotFound].
func (r *UserRepository) FindByMail(mail string) (*models.User, error) {
	if mail == "" {
		return nil, fmt.Errorf("%w: empty mail", shared.ErrNotFound)
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE mail = ? ORDER BY id ASC LIMIT 1`
	return r.scanOne(r.db.QueryRow(query, mail))
}

// Update modifies an existing user
func (r *UserRepository) Update(user *models.User) error {
	user.Changed = time.Now().UTC()

	query := `
		UPDATE users
		SET name = ?, mail = ?, status = ?, display_name = ?, first_name = ?, last_name = ?, changed = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		user.Name, user.Mail, user.Status, user.DisplayName, user.FirstName, user.LastName, user.Changed, user.ID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return checkAffected(result, "user", user.ID)
}

// Delete removes a user by ID; authored content keeps existing with no author.
func (r *UserRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return checkAffected(result, "user", id)
}

// List retrieves all users matching the given criteria ("mail")
func (r *UserRepository) List(criteria map[string]any) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE 1 = 1`

	args := []any{}

	if mail, ok := criteria["mail"].(string); ok && mail != "" {
		query += " AND mail = ?"
		args = append(args, mail)
	}

	query += " ORDER BY id ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return users, nil
}

func (r *UserRepository) scanOne(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.UUID, &u.Name, &u.Mail, &u.Status, &u.DisplayName, &u.FirstName, &u.LastName, &u.Created, &u.Changed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) scanRow(rows *sql.Rows) (*models.User, error) {
	var u models.User
	err := rows.Scan(&u.ID, &u.UUID, &u.Name, &u.Mail, &u.Status, &u.DisplayName, &u.FirstName, &u.LastName, &u.Created, &u.Changed)
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}
