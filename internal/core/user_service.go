package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when an email/password pair does not
// match a stored user.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserInput holds the writable user fields. Password is plaintext and hashed
// here; it is never stored or logged as given.
type UserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// UserService provides console-user lookup, management and credential checks.
type UserService interface {
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, input UserInput) (*User, error)
	Update(ctx context.Context, id string, input UserInput) (*User, error)
	Delete(ctx context.Context, id string) error

	// Authenticate verifies an email/password pair against the stored bcrypt
	// hash. Returns ErrInvalidCredentials for unknown users and bad passwords
	// alike.
	Authenticate(ctx context.Context, email, password string) (*User, error)

	// ChangePassword verifies the current password, then stores a new hash.
	ChangePassword(ctx context.Context, id, current, next string) error
}

type userService struct {
	pool *pgxpool.Pool
}

// NewUserService constructs a UserService backed by PostgreSQL.
func NewUserService(pool *pgxpool.Pool) UserService {
	return &userService{pool: pool}
}

const userColumns = `id, name, email, password_hash, role, created_at`

func scanUser(row pgx.Row) (*User, error) {
	u := &User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *userService) List(ctx context.Context) ([]User, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *userService) GetByID(ctx context.Context, id string) (*User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}

func (s *userService) Create(ctx context.Context, input UserInput) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	role := input.Role
	if role == "" {
		role = "user"
	}

	u, err := scanUser(s.pool.QueryRow(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING `+userColumns,
		uuid.NewString(), input.Name, input.Email, string(hash), role,
	))
	if err != nil {
		return nil, fmt.Errorf("create user %q: %w", input.Email, err)
	}
	return u, nil
}

func (s *userService) Update(ctx context.Context, id string, input UserInput) (*User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `
		UPDATE users SET
			name  = COALESCE(NULLIF($2, ''), name),
			email = COALESCE(NULLIF($3, ''), email),
			role  = COALESCE(NULLIF($4, ''), role)
		WHERE id = $1
		RETURNING `+userColumns,
		id, input.Name, input.Email, input.Role,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update user %s: %w", id, err)
	}
	return u, nil
}

func (s *userService) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = $1", email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user %q: %w", email, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *userService) ChangePassword(ctx context.Context, id, current, next string) error {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if _, err := s.pool.Exec(ctx,
		"UPDATE users SET password_hash = $2 WHERE id = $1", id, string(hash),
	); err != nil {
		return fmt.Errorf("change password for %s: %w", id, err)
	}
	return nil
}
