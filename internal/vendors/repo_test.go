package vendors

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/ovenly-backend/pkg/db/dbtest"
)

func TestOwnerLookups(t *testing.T) {
	conn := dbtest.Open(t)
	fx := dbtest.NewFixtures(t, conn)
	owner := uuid.New()
	bakery := fx.Bakery(owner)
	restaurant := fx.Restaurant(owner)
	repo := NewRepository(conn)
	ctx := context.Background()

	got, err := repo.BakeryOwner(ctx, bakery.ID)
	require.NoError(t, err)
	assert.Equal(t, owner, got)

	got, err = repo.RestaurantOwner(ctx, restaurant.ID)
	require.NoError(t, err)
	assert.Equal(t, owner, got)

	got, err = repo.BakeryOwner(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, got)
}

func TestOwnedIDs(t *testing.T) {
	conn := dbtest.Open(t)
	fx := dbtest.NewFixtures(t, conn)
	owner := uuid.New()
	b1 := fx.Bakery(owner)
	b2 := fx.Bakery(owner)
	fx.Bakery(uuid.New())

	repo := NewRepository(conn)
	ids, err := repo.OwnedBakeryIDs(context.Background(), owner)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{b1.ID, b2.ID}, ids)

	ids, err = repo.OwnedRestaurantIDs(context.Background(), owner)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
