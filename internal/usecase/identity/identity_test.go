package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/trimbook/internal/auth"
	domain "github.com/BruksfildServices01/trimbook/internal/domain/identity"
	"github.com/BruksfildServices01/trimbook/internal/domain/shop"
	"github.com/BruksfildServices01/trimbook/internal/httperr"
)

type usersMock struct{ mock.Mock }

func (m *usersMock) Create(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *usersMock) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *usersMock) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type shopsMock struct{ mock.Mock }

func (m *shopsMock) ResolveByOwner(ctx context.Context, ownerID string) (*shop.Shop, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shop.Shop), args.Error(1)
}

func newTestService(users *usersMock, shops *shopsMock, checkDomain func(string) bool) (*Service, *auth.JWT) {
	tokens := auth.NewJWT("test-secret", time.Hour)
	return NewService(users, tokens, shops, checkDomain, zap.NewNop()), tokens
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user and issues token", func(t *testing.T) {
		users := new(usersMock)
		users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.Email == "sam@example.com" && u.Name == "Sam" && u.PasswordHash != "secret1"
		})).Return(nil).Once()

		svc, tokens := newTestService(users, new(shopsMock), nil)
		res, err := svc.Register(ctx, RegisterInput{Name: " Sam ", Email: " Sam@Example.com ", Password: "secret1"})
		require.NoError(t, err)

		userID, err := tokens.Verify(res.Token)
		require.NoError(t, err)
		assert.Equal(t, res.User.ID, userID)
		assert.NoError(t, auth.CheckPassword(res.User.PasswordHash, "secret1"))
		users.AssertExpectations(t)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		users := new(usersMock)
		users.On("Create", mock.Anything, mock.Anything).
			Return(httperr.Conflict("email_already_registered", "E-mail already registered.")).Once()

		svc, _ := newTestService(users, new(shopsMock), nil)
		_, err := svc.Register(ctx, RegisterInput{Name: "Sam", Email: "sam@example.com", Password: "secret1"})
		assert.Equal(t, httperr.KindConflict, httperr.KindOf(err))
	})

	tests := []struct {
		name  string
		in    RegisterInput
		check func(string) bool
		code  string
	}{
		{name: "missing name", in: RegisterInput{Email: "a@b.c", Password: "secret1"}, code: "invalid_request"},
		{name: "missing email", in: RegisterInput{Name: "A", Password: "secret1"}, code: "invalid_request"},
		{name: "short password", in: RegisterInput{Name: "A", Email: "a@b.c", Password: "123"}, code: "weak_password"},
		{name: "bad domain", in: RegisterInput{Name: "A", Email: "a@nowhere.invalid", Password: "secret1"}, check: func(string) bool { return false }, code: "invalid_email_domain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(usersMock)
			svc, _ := newTestService(users, new(shopsMock), tt.check)

			_, err := svc.Register(ctx, tt.in)
			assert.True(t, httperr.IsBusiness(err, tt.code), "got %v", err)
			users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	hash, err := auth.HashPassword("secret1")
	require.NoError(t, err)
	user := &domain.User{ID: "u1", Name: "Sam", Email: "sam@example.com", PasswordHash: hash}

	t.Run("without shop requires onboarding", func(t *testing.T) {
		users, shops := new(usersMock), new(shopsMock)
		users.On("GetByEmail", mock.Anything, "sam@example.com").Return(user, nil).Once()
		shops.On("ResolveByOwner", mock.Anything, "u1").Return(nil, nil).Once()

		svc, tokens := newTestService(users, shops, nil)
		res, err := svc.Login(ctx, LoginInput{Email: "SAM@example.com", Password: "secret1"})
		require.NoError(t, err)
		assert.True(t, res.RequiresShop)
		assert.Nil(t, res.Shop)

		userID, err := tokens.Verify(res.Token)
		require.NoError(t, err)
		assert.Equal(t, "u1", userID)
	})

	t.Run("with shop returns it", func(t *testing.T) {
		users, shops := new(usersMock), new(shopsMock)
		users.On("GetByEmail", mock.Anything, "sam@example.com").Return(user, nil).Once()
		shops.On("ResolveByOwner", mock.Anything, "u1").Return(&shop.Shop{Slug: "joes-cuts", OwnerID: "u1"}, nil).Once()

		svc, _ := newTestService(users, shops, nil)
		res, err := svc.Login(ctx, LoginInput{Email: "sam@example.com", Password: "secret1"})
		require.NoError(t, err)
		assert.False(t, res.RequiresShop)
		assert.Equal(t, "joes-cuts", res.Shop.Slug)
	})

	t.Run("unknown user", func(t *testing.T) {
		users := new(usersMock)
		users.On("GetByEmail", mock.Anything, "nobody@example.com").
			Return(nil, httperr.NotFoundErr("user_not_found", "User not found.")).Once()

		svc, _ := newTestService(users, new(shopsMock), nil)
		_, err := svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "secret1"})
		assert.True(t, httperr.IsBusiness(err, "invalid_credentials"))
	})

	t.Run("wrong password", func(t *testing.T) {
		users := new(usersMock)
		users.On("GetByEmail", mock.Anything, "sam@example.com").Return(user, nil).Once()

		svc, _ := newTestService(users, new(shopsMock), nil)
		_, err := svc.Login(ctx, LoginInput{Email: "sam@example.com", Password: "wrong-password"})
		assert.Equal(t, httperr.KindUnauthorized, httperr.KindOf(err))
	})

	t.Run("me", func(t *testing.T) {
		users, shops := new(usersMock), new(shopsMock)
		users.On("GetByID", mock.Anything, "u1").Return(user, nil).Once()
		shops.On("ResolveByOwner", mock.Anything, "u1").Return(nil, nil).Once()

		svc, _ := newTestService(users, shops, nil)
		profile, err := svc.Me(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "sam@example.com", profile.User.Email)
		assert.True(t, profile.RequiresShop)
	})

	t.Run("store unavailable passes through", func(t *testing.T) {
		users := new(usersMock)
		users.On("GetByEmail", mock.Anything, "sam@example.com").
			Return(nil, httperr.Unavailable("storage_unavailable", errors.New("timeout"))).Once()

		svc, _ := newTestService(users, new(shopsMock), nil)
		_, err := svc.Login(ctx, LoginInput{Email: "sam@example.com", Password: "secret1"})
		assert.Equal(t, httperr.KindUnavailable, httperr.KindOf(err))
	})
}
