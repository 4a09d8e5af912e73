package user

import (
	"context"
	"database/sql"
	"errors"

	"boutique-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, p CreateUserParams) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uint) (*User, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const userColumns = `id, name, email, password, role, COALESCE(phone, ''), address, created_at`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.Phone, &u.Address, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) Create(ctx context.Context, p CreateUserParams) (*User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
	)

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password, role, phone)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		RETURNING `+userColumns,
		p.Name, p.Email, p.Password, p.Role, p.Phone,
	)

	u, err := scanUser(row)
	if err != nil {
		log.Error("db: failed to insert user", zap.String("email", p.Email), zap.Error(err))
		return nil, err
	}
	return u, nil
}

// FindByEmail returns nil, nil when no user has this email.
func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to find user by email",
			zap.String("layer", "repository"),
			zap.Error(err),
		)
		return nil, err
	}
	return u, nil
}

func (r *repository) FindByID(ctx context.Context, id uint) (*User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}
