package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mzheleznov/rxpilot/internal/core/domain"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, name, password_hash, clinic_id, role, created_at, updated_at`

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+userColumns+`
FROM users
WHERE email = $1
`, email)
	return scanUser(row, fmt.Sprintf("email=%s", email))
}

func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+userColumns+`
FROM users
WHERE id = $1
`, id)
	return scanUser(row, fmt.Sprintf("id=%s", id))
}

func (r *UserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (`+userColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`,
		user.ID, user.Email, user.Name, user.PasswordHash, user.ClinicID,
		string(user.Role), user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func scanUser(row *sql.Row, ref string) (*domain.User, error) {
	var user domain.User
	var role string

	err := row.Scan(
		&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.ClinicID,
		&role, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get user", fmt.Errorf("%s", ref))
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.Role = domain.UserRole(role)
	return &user, nil
}
