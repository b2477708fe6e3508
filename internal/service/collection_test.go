package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestCollectionAddRemove(t *testing.T) {
	for _, c := range []service.Collection{service.Favorites, service.ShoppingCart} {
		t.Run(string(c), func(t *testing.T) {
			db := testhelpers.SetupSQLite(t)
			svc := service.NewCollectionService(db)
			ctx := context.Background()

			user := testhelpers.CreateUser(t, db, "collector")
			flour := testhelpers.CreateIngredient(t, db, "flour", "g")
			recipe := testhelpers.CreateRecipe(t, db, user, "Bread", map[*models.Ingredient]int{flour: 100})

			short, err := svc.Add(ctx, c, user.ID, recipe.ID)
			require.NoError(t, err)
			assert.Equal(t, recipe.ID, short.ID)
			assert.Equal(t, "Bread", short.Name)
			assert.Equal(t, 10, short.CookingTime)

			_, err = svc.Add(ctx, c, user.ID, recipe.ID)
			assert.ErrorIs(t, err, service.ErrAlreadyExists)

			require.NoError(t, svc.Remove(ctx, c, user.ID, recipe.ID))

			err = svc.Remove(ctx, c, user.ID, recipe.ID)
			assert.ErrorIs(t, err, service.ErrNotInCollection)

			_, err = svc.Add(ctx, c, user.ID, 9999)
			assert.ErrorIs(t, err, service.ErrNotFound)

			err = svc.Remove(ctx, c, user.ID, 9999)
			assert.ErrorIs(t, err, service.ErrNotFound)
		})
	}
}

func TestCollectionsAreIndependent(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := service.NewCollectionService(db)
	ctx := context.Background()

	alice := testhelpers.CreateUser(t, db, "alice")
	bob := testhelpers.CreateUser(t, db, "bob")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")
	recipe := testhelpers.CreateRecipe(t, db, alice, "Bread", map[*models.Ingredient]int{flour: 100})

	_, err := svc.Add(ctx, service.ShoppingCart, alice.ID, recipe.ID)
	require.NoError(t, err)

	// bob's cart and alice's favorites are untouched
	assert.ErrorIs(t, svc.Remove(ctx, service.ShoppingCart, bob.ID, recipe.ID), service.ErrNotInCollection)
	assert.ErrorIs(t, svc.Remove(ctx, service.Favorites, alice.ID, recipe.ID), service.ErrNotInCollection)

	_, err = svc.Add(ctx, service.ShoppingCart, bob.ID, recipe.ID)
	require.NoError(t, err)
}
