package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"infra-catalog/internal/domain"
	"infra-catalog/internal/repository"
)

var createUsersSchema = []string{`
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT,
	name TEXT NOT NULL DEFAULT '',
	is_guest INTEGER NOT NULL DEFAULT 0,
	code TEXT,
	provider TEXT NOT NULL,
	phone TEXT,
	password_hash TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email) WHERE email IS NOT NULL;`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_phone ON users(phone) WHERE phone IS NOT NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_users_code ON users(code);`,
}

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	for _, stmt := range createUsersSchema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create users schema: %w", err)
		}
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.AuthUser, passwordHash string) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (id, email, name, is_guest, code, provider, phone, password_hash, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		nullString(user.Email.String()),
		user.Name,
		user.IsGuest,
		nullString(user.Code),
		string(user.Provider),
		nullString(user.Phone.String()),
		passwordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", repository.ErrDuplicate, err)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

const selectUserColumns = `
SELECT id, email, name, is_guest, code, provider, phone, created_at, updated_at
FROM users`

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.AuthUser, error) {
	row := r.db.QueryRowContext(ctx, selectUserColumns+` WHERE id = ?`, id)
	return scanUser(row)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.AuthUser, error) {
	row := r.db.QueryRowContext(ctx, selectUserColumns+` WHERE email = ?`, email)
	return scanUser(row)
}

func (r *UserRepository) FindByPhone(ctx context.Context, phone string) (*domain.AuthUser, error) {
	row := r.db.QueryRowContext(ctx, selectUserColumns+` WHERE phone = ?`, phone)
	return scanUser(row)
}

func (r *UserRepository) FindByCode(ctx context.Context, code string) (*domain.AuthUser, error) {
	row := r.db.QueryRowContext(ctx, selectUserColumns+` WHERE code = ?`, code)
	return scanUser(row)
}

func (r *UserRepository) GetPasswordHashByEmail(ctx context.Context, email string) (string, error) {
	var hash string
	err := r.db.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE email = ?`, email).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("get password hash: %w", err)
	}
	return hash, nil
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.AuthUser, error) {
	var (
		user  domain.AuthUser
		email sql.NullString
		code  sql.NullString
		phone sql.NullString
		prov  string
	)
	if err := row.Scan(
		&user.ID,
		&email,
		&user.Name,
		&user.IsGuest,
		&code,
		&prov,
		&phone,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	user.Provider = domain.Provider(prov)
	user.Code = code.String
	if email.Valid && email.String != "" {
		parsed, err := domain.ParseEmail(email.String)
		if err != nil {
			return nil, fmt.Errorf("stored email invalid: %w", err)
		}
		user.Email = parsed
	}
	if phone.Valid && phone.String != "" {
		parsed, err := domain.ParseOptionalPhone(phone.String)
		if err != nil {
			return nil, fmt.Errorf("stored phone invalid: %w", err)
		}
		user.Phone = parsed
	}
	return &user, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
