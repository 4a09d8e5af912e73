package user

import (
	"context"
	"errors"
	"testing"

	"boutique-be/internal/apperr"
	"boutique-be/internal/auth"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, p CreateUserParams) (*User, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id uint) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func TestService_Register(t *testing.T) {
	t.Setenv("JWT_SECRET", "testsecret")
	ctx := context.Background()
	input := RegisterInput{Name: " Amira ", Email: " Amira@Example.com ", Password: "password123"}

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		created := &User{ID: 1, Name: "Amira", Email: "amira@example.com", Role: auth.RoleCustomer}
		mockRepo.On("Create", ctx, mock.MatchedBy(func(p CreateUserParams) bool {
			return p.Email == "amira@example.com" && p.Name == "Amira" &&
				p.Role == auth.RoleCustomer && CheckPasswordHash("password123", p.Password)
		})).Return(created, nil)

		token, u, err := svc.Register(ctx, input)
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, created, u)
		mockRepo.AssertExpectations(t)
	})

	t.Run("EmailExists", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		mockRepo.On("Create", ctx, mock.Anything).Return(nil, &pq.Error{Code: "23505"})

		_, _, err := svc.Register(ctx, input)
		assert.ErrorIs(t, err, ErrEmailExists)
	})

	t.Run("ShortPassword", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		_, _, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@b.c", Password: "123"})
		assert.ErrorIs(t, err, ErrInvalidRegister)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("RepoError", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		mockRepo.On("Create", ctx, mock.Anything).Return(nil, errors.New("db error"))

		_, _, err := svc.Register(ctx, input)
		assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	})
}

func TestService_Login(t *testing.T) {
	t.Setenv("JWT_SECRET", "testsecret")
	ctx := context.Background()
	email := "test@example.com"
	hashed, err := HashPassword("password123")
	require.NoError(t, err)

	stored := &User{ID: 1, Email: email, Password: hashed, Role: auth.RoleCustomer}

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)
		mockRepo.On("FindByEmail", ctx, email).Return(stored, nil)

		token, u, err := svc.Login(ctx, "TEST@example.com", "password123")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, stored, u)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)
		mockRepo.On("FindByEmail", ctx, email).Return(stored, nil)

		_, _, err := svc.Login(ctx, email, "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)
		mockRepo.On("FindByEmail", ctx, email).Return(nil, nil)

		_, _, err := svc.Login(ctx, email, "password123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
