package services

import (
	"context"
	"testing"

	"matumizi/internal/core"

	"github.com/stretchr/testify/require"
)

func TestAddCategoryDuplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.catalog.AddCategory(ctx, "Food")
	require.ErrorIs(t, err, core.ErrDuplicateName)

	cats, err := env.catalog.ListCategories(ctx)
	require.NoError(t, err)
	count := 0
	for _, c := range cats {
		if c.Name == "Food" {
			count++
		}
	}
	require.Equal(t, 1, count)
}

func TestAddCategorySanitizes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cat, err := env.catalog.AddCategory(ctx, "  Rent!  ")
	require.NoError(t, err)
	require.Equal(t, "Rent", cat.Name)
	require.Positive(t, cat.ID)

	_, err = env.catalog.AddCategory(ctx, "$$$")
	require.ErrorIs(t, err, core.ErrValidation)
}

func TestCategoryCacheIsInvalidatedByWrites(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	before, err := env.catalog.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, before, 5)

	_, err = env.catalog.AddCategory(ctx, "Health")
	require.NoError(t, err)

	after, err := env.catalog.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, after, 6)
	require.Equal(t, "Health", after[5].Name)

	// callers cannot corrupt the cached slice
	after[0].Name = "mutated"
	again, err := env.catalog.ListCategories(ctx)
	require.NoError(t, err)
	require.Equal(t, "Food", again[0].Name)
}

func TestSubcategories(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	lunch, err := env.catalog.AddSubcategory(ctx, foodID, "Lunch")
	require.NoError(t, err)
	require.Equal(t, foodID, lunch.CategoryID)

	_, err = env.catalog.AddSubcategory(ctx, foodID, "Lunch")
	require.ErrorIs(t, err, core.ErrDuplicateName)

	// same name under another category is allowed
	_, err = env.catalog.AddSubcategory(ctx, transportID, "Lunch")
	require.NoError(t, err)

	_, err = env.catalog.AddSubcategory(ctx, 999, "Fuel")
	require.ErrorIs(t, err, core.ErrInvalidReference)

	_, err = env.catalog.AddSubcategory(ctx, 0, "Fuel")
	require.ErrorIs(t, err, core.ErrValidation)

	food := foodID
	subs, err := env.catalog.ListSubcategories(ctx, &food)
	require.NoError(t, err)
	require.Len(t, subs, 1)

	all, err := env.catalog.ListSubcategories(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Less(t, all[0].ID, all[1].ID)
}
