package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/BruksfildServices01/trimbook/internal/domain/shop"
	"github.com/BruksfildServices01/trimbook/internal/httperr"
)

const barbershopsCollection = "barbershops"

// ShopMongoRepository stores each aggregate as a single document.
type ShopMongoRepository struct {
	coll *mongo.Collection
}

// NewShopMongoRepository ensures the unique slug and owner indexes exist.
func NewShopMongoRepository(ctx context.Context, db *mongo.Database) (*ShopMongoRepository, error) {
	coll := db.Collection(barbershopsCollection)

	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "ownerId", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return nil, classifyMongo("shop.EnsureIndexes", err)
	}
	return &ShopMongoRepository{coll: coll}, nil
}

func classifyMongo(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return classify(op, err)
	}
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return httperr.Unavailable("storage_unavailable", err)
	}
	return classify(op, err)
}

func (r *ShopMongoRepository) Create(ctx context.Context, s *shop.Shop) error {
	owned, err := r.GetByOwner(ctx, s.OwnerID)
	if err != nil {
		return err
	}
	if owned != nil {
		return errOwnerHasShop
	}

	if _, err := r.coll.InsertOne(ctx, s); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if owned, lookupErr := r.GetByOwner(ctx, s.OwnerID); lookupErr == nil && owned != nil {
				return errOwnerHasShop
			}
			return errSlugTaken
		}
		return classifyMongo("shop.Create", err)
	}
	return nil
}

func (r *ShopMongoRepository) findOne(ctx context.Context, op string, filter bson.M) (*shop.Shop, error) {
	var s shop.Shop
	if err := r.coll.FindOne(ctx, filter).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}
		return nil, classifyMongo(op, err)
	}
	if s.Barbers == nil {
		s.Barbers = []shop.Barber{}
	}
	return &s, nil
}

func (r *ShopMongoRepository) GetBySlug(ctx context.Context, slug string) (*shop.Shop, error) {
	s, err := r.findOne(ctx, "shop.GetBySlug", bson.M{"slug": slug})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errShopNotFound
	}
	return s, err
}

func (r *ShopMongoRepository) GetByOwner(ctx context.Context, ownerID string) (*shop.Shop, error) {
	s, err := r.findOne(ctx, "shop.GetByOwner", bson.M{"ownerId": ownerID})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	return s, err
}

func (r *ShopMongoRepository) Save(ctx context.Context, s *shop.Shop) error {
	now := time.Now().UTC()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": s.ID, "version": s.Version},
		bson.M{
			"$set": bson.M{
				"name":      s.Name,
				"status":    s.Status,
				"barbers":   s.Barbers,
				"updatedAt": now,
			},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return classifyMongo("shop.Save", err)
	}
	if res.MatchedCount == 0 {
		return shop.ErrStaleVersion
	}

	s.Version++
	s.UpdatedAt = now
	return nil
}

var _ shop.Repository = (*ShopMongoRepository)(nil)
