package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/BruksfildServices01/trimbook/internal/domain/shop"
)

// Runs only when TEST_MONGODB_URI points at a disposable server.
func TestShopMongoRepository(t *testing.T) {
	uri := os.Getenv("TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("TEST_MONGODB_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	runShopRepositoryContract(t, func(t *testing.T) shop.Repository {
		db := client.Database("trimbook_test_" + uuid.NewString()[:8])
		t.Cleanup(func() { _ = db.Drop(context.Background()) })

		repo, err := NewShopMongoRepository(context.Background(), db)
		require.NoError(t, err)
		return repo
	})
}
