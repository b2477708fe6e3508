package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestSubscribe(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := service.NewSubscriptionService(db)
	ctx := context.Background()

	follower := testhelpers.CreateUser(t, db, "follower")
	author := testhelpers.CreateUser(t, db, "chef")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")
	for _, name := range []string{"Bread", "Buns", "Pizza"} {
		testhelpers.CreateRecipe(t, db, author, name, map[*models.Ingredient]int{flour: 100})
	}

	sub, err := svc.Subscribe(ctx, follower.ID, author.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, author.ID, sub.ID)
	assert.True(t, sub.IsSubscribed)
	assert.Equal(t, int64(3), sub.RecipesCount)
	assert.Len(t, sub.Recipes, 2)

	_, err = svc.Subscribe(ctx, follower.ID, author.ID, 0)
	assert.ErrorIs(t, err, service.ErrAlreadyExists)

	_, err = svc.Subscribe(ctx, follower.ID, follower.ID, 0)
	assert.ErrorIs(t, err, service.ErrSelfSubscription)

	_, err = svc.Subscribe(ctx, follower.ID, uuid.New(), 0)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestListSubscriptions(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := service.NewSubscriptionService(db)
	ctx := context.Background()

	follower := testhelpers.CreateUser(t, db, "follower")
	chef := testhelpers.CreateUser(t, db, "chef")
	baker := testhelpers.CreateUser(t, db, "baker")
	testhelpers.CreateUser(t, db, "stranger")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")
	testhelpers.CreateRecipe(t, db, chef, "Soup", map[*models.Ingredient]int{flour: 1})

	_, err := svc.Subscribe(ctx, follower.ID, chef.ID, 0)
	require.NoError(t, err)
	_, err = svc.Subscribe(ctx, follower.ID, baker.ID, 0)
	require.NoError(t, err)

	subs, count, err := svc.ListSubscriptions(ctx, follower.ID, 1, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	require.Len(t, subs, 2)

	byName := map[string]int64{}
	for _, s := range subs {
		byName[s.Username] = s.RecipesCount
		assert.NotNil(t, s.Recipes)
	}
	assert.Equal(t, map[string]int64{"chef": 1, "baker": 0}, byName)
}

func TestUnsubscribe(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := service.NewSubscriptionService(db)
	ctx := context.Background()

	follower := testhelpers.CreateUser(t, db, "follower")
	author := testhelpers.CreateUser(t, db, "chef")

	assert.ErrorIs(t, svc.Unsubscribe(ctx, follower.ID, author.ID), service.ErrNotInCollection)

	_, err := svc.Subscribe(ctx, follower.ID, author.ID, 0)
	require.NoError(t, err)
	require.NoError(t, svc.Unsubscribe(ctx, follower.ID, author.ID))

	subs, count, err := svc.ListSubscriptions(ctx, follower.ID, 1, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, subs)
}
