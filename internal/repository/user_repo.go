package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/sigapbencana/rambu_api/internal/models"
)

// UserRepository handles database operations for console users.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, password_hash, name, role, satker_id, is_active, created_at, updated_at`

// GetByUsername returns a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID returns a user by id.
func (r *UserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns all users ordered by username.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.SelectContext(ctx, &users,
		`SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, password_hash, name, role, satker_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query,
		user.Username, user.PasswordHash, user.Name, user.Role, user.SatkerID, user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

// Update overwrites the mutable fields of a user. The password hash is only
// changed when non-empty.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET name = $1, role = $2, satker_id = $3, is_active = $4,
			password_hash = CASE WHEN $5 <> '' THEN $5 ELSE password_hash END,
			updated_at = NOW()
		WHERE id = $6`
	res, err := r.db.ExecContext(ctx, query,
		user.Name, user.Role, user.SatkerID, user.IsActive, user.PasswordHash, user.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes a user.
func (r *UserRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
