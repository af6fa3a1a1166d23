package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/workbench/pkg/types"
)

func TestRecipesForCraftType(t *testing.T) {
	ctx := context.Background()
	b := setupBackend(t)
	seedScenario(t, b)

	_, err := b.CraftTypes().Create(ctx, &types.CraftType{ID: 2, Name: "Cooking"})
	require.NoError(t, err)
	_, err = b.Recipes().Create(ctx, &types.Recipe{ID: 11, CraftTypeID: 1, Name: "Steel Bar"})
	require.NoError(t, err)
	_, err = b.Recipes().Create(ctx, &types.Recipe{ID: 20, CraftTypeID: 2, Name: "Stew"})
	require.NoError(t, err)

	tests := []struct {
		name        string
		craftTypeID int64
		want        []int64
	}{
		{name: "smithing", craftTypeID: 1, want: []int64{10, 11}},
		{name: "cooking", craftTypeID: 2, want: []int64{20}},
		{name: "unknown", craftTypeID: 3, want: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipes, err := types.Collect(b.RecipesForCraftType(ctx, tt.craftTypeID))
			require.NoError(t, err)
			got := make([]int64, len(recipes))
			for i, r := range recipes {
				got[i] = r.ID
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIngredientForAmount(t *testing.T) {
	ctx := context.Background()
	b := setupBackend(t)
	seedScenario(t, b)

	item, err := b.IngredientForAmount(ctx, 1000)
	require.NoError(t, err)
	assert.Equal(t, &types.Item{ID: 100, Name: "Iron Ore"}, item)

	_, err = b.IngredientForAmount(ctx, 999)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestCraftTypeForRecipe(t *testing.T) {
	ctx := context.Background()
	b := setupBackend(t)
	seedScenario(t, b)

	ct, err := b.CraftTypeForRecipe(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "Smithing", ct.Name)

	_, err = b.CraftTypeForRecipe(ctx, 11)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestRecipeForAmount(t *testing.T) {
	ctx := context.Background()
	b := setupBackend(t)
	seedScenario(t, b)

	recipe, err := b.RecipeForAmount(ctx, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(10), recipe.ID)

	loose, err := b.ItemsWithAmount().Create(ctx, &types.ItemWithAmount{IngredientID: 100, Amount: 1})
	require.NoError(t, err)
	_, err = b.RecipeForAmount(ctx, loose.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestResolveRecipe(t *testing.T) {
	ctx := context.Background()
	b := setupBackend(t)
	seedScenario(t, b)

	_, err := b.Items().Create(ctx, &types.Item{ID: 101, Name: "Coal"})
	require.NoError(t, err)
	_, err = b.ItemsWithAmount().Create(ctx, &types.ItemWithAmount{ID: 1001, IngredientID: 101, Amount: 1, RecipeID: ref(10)})
	require.NoError(t, err)
	_, err = b.ItemsWithAmount().Create(ctx, &types.ItemWithAmount{ID: 1002, IngredientID: 101, Amount: 9})
	require.NoError(t, err)

	detail, err := b.ResolveRecipe(ctx, 10)
	require.NoError(t, err)

	assert.Equal(t, types.Recipe{ID: 10, CraftTypeID: 1, Name: "Iron Bar"}, detail.Recipe)
	assert.Equal(t, types.CraftType{ID: 1, Name: "Smithing"}, detail.CraftType)
	require.Len(t, detail.Ingredients, 2)

	assert.Equal(t, int64(1000), detail.Ingredients[0].ID)
	assert.Equal(t, int64(3), detail.Ingredients[0].Amount)
	assert.Equal(t, types.Item{ID: 100, Name: "Iron Ore"}, detail.Ingredients[0].Item)

	assert.Equal(t, int64(1001), detail.Ingredients[1].ID)
	assert.Equal(t, types.Item{ID: 101, Name: "Coal"}, detail.Ingredients[1].Item)
}

func TestResolveRecipeEdgeCases(t *testing.T) {
	ctx := context.Background()
	b := setupBackend(t)
	seedScenario(t, b)

	_, err := b.ResolveRecipe(ctx, 77)
	assert.ErrorIs(t, err, types.ErrNotFound)

	require.NoError(t, b.Items().Delete(ctx, 100))
	detail, err := b.ResolveRecipe(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, detail.Ingredients, "ingredient rows went with their item")
	assert.NotNil(t, detail.Ingredients)
}
