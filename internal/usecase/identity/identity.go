package identity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/trimbook/internal/auth"
	domain "github.com/BruksfildServices01/trimbook/internal/domain/identity"
	"github.com/BruksfildServices01/trimbook/internal/domain/shop"
	"github.com/BruksfildServices01/trimbook/internal/httperr"
)

const minPasswordLen = 6

var errInvalidCredentials = httperr.UnauthorizedErr("invalid_credentials", "Invalid e-mail or password.")

// ShopLookup finds the shop a user owns, nil when there is none.
type ShopLookup interface {
	ResolveByOwner(ctx context.Context, ownerID string) (*shop.Shop, error)
}

// ======================================================
// INPUT / OUTPUT
// ======================================================

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	Token string
	User  *domain.User
}

// Profile is a user with the shop they own, if any.
type Profile struct {
	User         *domain.User
	Shop         *shop.Shop
	RequiresShop bool
}

type LoginResult struct {
	Token string
	Profile
}

// ======================================================
// SERVICE
// ======================================================

type Service struct {
	users       domain.Repository
	tokens      auth.TokenService
	shops       ShopLookup
	checkDomain func(email string) bool
	log         *zap.Logger
}

// NewService wires register/login. checkDomain may be nil to skip the
// e-mail DNS check.
func NewService(
	users domain.Repository,
	tokens auth.TokenService,
	shops ShopLookup,
	checkDomain func(email string) bool,
	log *zap.Logger,
) *Service {
	return &Service{
		users:       users,
		tokens:      tokens,
		shops:       shops,
		checkDomain: checkDomain,
		log:         log,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, httperr.InvalidInput("invalid_request", "Name, e-mail and password are required.")
	}
	if len(in.Password) < minPasswordLen {
		return nil, httperr.InvalidInput("weak_password", "Password must have at least 6 characters.")
	}
	if s.checkDomain != nil && !s.checkDomain(email) {
		return nil, httperr.InvalidInput("invalid_email_domain", "The e-mail domain does not look valid.")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, httperr.InternalErr("password_hash_failed", err)
	}

	u := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	token, err := s.tokens.IssueToken(u.ID)
	if err != nil {
		return nil, httperr.InternalErr("token_issue_failed", err)
	}

	s.log.Info("user registered", zap.String("user_id", u.ID))
	return &AuthResult{Token: token, User: u}, nil
}

// Login checks the credentials and reports whether the user still has
// to create a shop.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, httperr.InvalidInput("invalid_request", "E-mail and password are required.")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if httperr.KindOf(err) == httperr.KindNotFound {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if err := auth.CheckPassword(u.PasswordHash, in.Password); err != nil {
		return nil, errInvalidCredentials
	}

	profile, err := s.profile(ctx, u)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.IssueToken(u.ID)
	if err != nil {
		return nil, httperr.InternalErr("token_issue_failed", err)
	}

	return &LoginResult{Token: token, Profile: *profile}, nil
}

// Me returns the profile of an authenticated user.
func (s *Service) Me(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, u)
}

func (s *Service) profile(ctx context.Context, u *domain.User) (*Profile, error) {
	sh, err := s.shops.ResolveByOwner(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &Profile{User: u, Shop: sh, RequiresShop: sh == nil}, nil
}
