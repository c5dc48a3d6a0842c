package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gourmet-gateway/user-service/internal/core/domain"
)

const (
	uniqueViolation = "23505"

	usernameConstraint = "users_username_key"
	emailConstraint    = "users_email_key"

	userColumns = `id::text, username, email, password_hash, role, latitude, longitude, created_at, updated_at`
)

// UserRepository stores identities in PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username)
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *UserRepository) exists(ctx context.Context, query, arg string) (bool, error) {
	var ok bool
	if err := r.pool.QueryRow(ctx, query, arg).Scan(&ok); err != nil {
		return false, fmt.Errorf("postgres: exists: %w", err)
	}
	return ok, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	const selectSQL = `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, selectSQL, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("postgres: find user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) Save(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user.ID == "" {
		return r.insert(ctx, user)
	}
	return r.update(ctx, user)
}

func (r *UserRepository) insert(ctx context.Context, user *domain.User) (*domain.User, error) {
	const insertSQL = `
		INSERT INTO users (id, username, email, password_hash, role, latitude, longitude, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + userColumns

	saved, err := scanUser(r.pool.QueryRow(ctx, insertSQL,
		uuid.NewString(),
		user.Username,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		user.Latitude,
		user.Longitude,
		user.CreatedAt,
		user.UpdatedAt,
	))
	if err != nil {
		if taken := uniqueViolationError(err); taken != nil {
			return nil, taken
		}
		return nil, fmt.Errorf("postgres: insert user: %w", err)
	}
	return saved, nil
}

func (r *UserRepository) update(ctx context.Context, user *domain.User) (*domain.User, error) {
	if _, err := uuid.Parse(user.ID); err != nil {
		return nil, domain.ErrUserNotFound
	}

	const updateSQL = `
		UPDATE users
		SET email = $2, password_hash = $3, role = $4, latitude = $5, longitude = $6, updated_at = $7
		WHERE id = $1
		RETURNING ` + userColumns

	saved, err := scanUser(r.pool.QueryRow(ctx, updateSQL,
		user.ID,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		user.Latitude,
		user.Longitude,
		user.UpdatedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		if taken := uniqueViolationError(err); taken != nil {
			return nil, taken
		}
		return nil, fmt.Errorf("postgres: update user: %w", err)
	}
	return saved, nil
}

func (r *UserRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// uniqueViolationError returns the domain error for a 23505 violation,
// or nil when err is something else.
func uniqueViolationError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}
	if pgErr.ConstraintName == emailConstraint {
		return domain.ErrEmailTaken
	}
	return domain.ErrUsernameTaken
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user domain.User
		role string
	)
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&role,
		&user.Latitude,
		&user.Longitude,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Role = domain.Role(role)
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()
	return &user, nil
}
