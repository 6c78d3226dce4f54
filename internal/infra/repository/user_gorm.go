package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/trimbook/internal/domain/identity"
	"github.com/BruksfildServices01/trimbook/internal/httperr"
	"github.com/BruksfildServices01/trimbook/internal/models"
)

var errUserNotFound = httperr.NotFoundErr("user_not_found", "User not found.")

type UserGormRepository struct {
	db *gorm.DB
}

func NewUserGormRepository(db *gorm.DB) *UserGormRepository {
	return &UserGormRepository{db: db}
}

func (r *UserGormRepository) Create(ctx context.Context, u *identity.User) error {
	row := models.User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return httperr.Conflict("email_already_registered", "E-mail already registered.")
		}
		return classify("user.Create", err)
	}
	u.CreatedAt = row.CreatedAt
	return nil
}

func (r *UserGormRepository) GetByEmail(ctx context.Context, email string) (*identity.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UserGormRepository) GetByID(ctx context.Context, id string) (*identity.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserGormRepository) first(ctx context.Context, query string, arg any) (*identity.User, error) {
	var row models.User
	if err := r.db.WithContext(ctx).Where(query, arg).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errUserNotFound
		}
		return nil, classify("user.Get", err)
	}
	return &identity.User{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
	}, nil
}

var _ identity.Repository = (*UserGormRepository)(nil)
