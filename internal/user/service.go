package user

import (
	"context"
	"strings"

	"boutique-be/internal/apperr"
	"boutique-be/internal/auth"
	"boutique-be/internal/db"
	"boutique-be/internal/logger"
	"boutique-be/internal/utils"

	"go.uber.org/zap"
)

const minPasswordLength = 6

type Service interface {
	Register(ctx context.Context, input RegisterInput) (string, *User, error)
	Login(ctx context.Context, email, password string) (string, *User, error)
	GetByID(ctx context.Context, id uint) (*User, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, input RegisterInput) (string, *User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Register"),
	)

	email := utils.NormalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)
	if name == "" || email == "" || len(input.Password) < minPasswordLength {
		return "", nil, ErrInvalidRegister
	}

	hashed, err := HashPassword(input.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return "", nil, apperr.Wrap(apperr.ErrInternal, err)
	}

	u, err := s.repo.Create(ctx, CreateUserParams{
		Name:     name,
		Email:    email,
		Password: hashed,
		Role:     auth.RoleCustomer,
		Phone:    strings.TrimSpace(input.Phone),
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return "", nil, ErrEmailExists
		}
		return "", nil, apperr.Wrap(apperr.ErrInternal, err)
	}

	token, err := GenerateJWT(u.ID, string(u.Role), u.Email)
	if err != nil {
		log.Error("failed to generate jwt", zap.Uint("user_id", u.ID), zap.Error(err))
		return "", nil, apperr.Wrap(apperr.ErrInternal, err)
	}

	log.Info("user registered", zap.Uint("user_id", u.ID))
	return token, u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, *User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Login"),
	)

	u, err := s.repo.FindByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		return "", nil, apperr.Wrap(apperr.ErrInternal, err)
	}
	if u == nil || !CheckPasswordHash(password, u.Password) {
		log.Warn("login rejected")
		return "", nil, ErrInvalidCredentials
	}

	token, err := GenerateJWT(u.ID, string(u.Role), u.Email)
	if err != nil {
		log.Error("failed to generate jwt", zap.Uint("user_id", u.ID), zap.Error(err))
		return "", nil, apperr.Wrap(apperr.ErrInternal, err)
	}
	return token, u, nil
}

func (s *service) GetByID(ctx context.Context, id uint) (*User, error) {
	return s.repo.FindByID(ctx, id)
}
