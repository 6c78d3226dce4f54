package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/trimbook/internal/domain/shop"
	"github.com/BruksfildServices01/trimbook/internal/models"
)

type ShopGormRepository struct {
	db *gorm.DB
}

func NewShopGormRepository(db *gorm.DB) *ShopGormRepository {
	return &ShopGormRepository{db: db}
}

// --------------------------------------------------
// Mapping
// --------------------------------------------------

func shopToRow(s *shop.Shop) models.Barbershop {
	return models.Barbershop{
		ID:        s.ID,
		Name:      s.Name,
		OwnerID:   s.OwnerID,
		Slug:      s.Slug,
		Status:    string(s.Status),
		Barbers:   datatypes.NewJSONType(s.Barbers),
		Version:   s.Version,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func rowToShop(row *models.Barbershop) *shop.Shop {
	barbers := row.Barbers.Data()
	if barbers == nil {
		barbers = []shop.Barber{}
	}
	return &shop.Shop{
		ID:        row.ID,
		Name:      row.Name,
		OwnerID:   row.OwnerID,
		Slug:      row.Slug,
		Status:    shop.Status(row.Status),
		Barbers:   barbers,
		Version:   row.Version,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

// --------------------------------------------------
// Create
// --------------------------------------------------

// Create checks owner and slug inside the same transaction as the insert.
// Unique indexes on both columns close the remaining race.
func (r *ShopGormRepository) Create(ctx context.Context, s *shop.Shop) error {
	row := shopToRow(s)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Barbershop{}).
			Where("owner_id = ?", s.OwnerID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errOwnerHasShop
		}

		if err := tx.Model(&models.Barbershop{}).
			Where("slug = ?", s.Slug).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errSlugTaken
		}

		return tx.Create(&row).Error
	})

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		if owned, lookupErr := r.GetByOwner(ctx, s.OwnerID); lookupErr == nil && owned != nil {
			return errOwnerHasShop
		}
		return errSlugTaken
	}
	return classify("shop.Create", err)
}

// --------------------------------------------------
// Reads
// --------------------------------------------------

func (r *ShopGormRepository) GetBySlug(ctx context.Context, slug string) (*shop.Shop, error) {
	var row models.Barbershop
	if err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errShopNotFound
		}
		return nil, classify("shop.GetBySlug", err)
	}
	return rowToShop(&row), nil
}

func (r *ShopGormRepository) GetByOwner(ctx context.Context, ownerID string) (*shop.Shop, error) {
	var row models.Barbershop
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, classify("shop.GetByOwner", err)
	}
	return rowToShop(&row), nil
}

// --------------------------------------------------
// Save (compare-and-swap on version)
// --------------------------------------------------

func (r *ShopGormRepository) Save(ctx context.Context, s *shop.Shop) error {
	now := time.Now().UTC()

	res := r.db.WithContext(ctx).
		Model(&models.Barbershop{}).
		Where("id = ? AND version = ?", s.ID, s.Version).
		Updates(map[string]any{
			"name":       s.Name,
			"status":     string(s.Status),
			"barbers":    datatypes.NewJSONType(s.Barbers),
			"version":    s.Version + 1,
			"updated_at": now,
		})
	if res.Error != nil {
		return classify("shop.Save", res.Error)
	}
	if res.RowsAffected == 0 {
		return shop.ErrStaleVersion
	}

	s.Version++
	s.UpdatedAt = now
	return nil
}

// Compile-time check
var _ shop.Repository = (*ShopGormRepository)(nil)
