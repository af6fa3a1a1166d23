package types

import (
	"context"
	"iter"
)

// Resolver traverses the relationships between entities so callers do not
// write join logic themselves. Sequences follow the same rules as
// Table.List: lazy, restartable, ascending Id.
type Resolver interface {
	// RecipesForCraftType returns the recipes belonging to a craft type.
	RecipesForCraftType(ctx context.Context, craftTypeID int64) iter.Seq2[*Recipe, error]

	// ItemsWithAmountForRecipe returns the ingredient rows whose RecipeId
	// equals recipeID. Rows stay visible here after the recipe is deleted.
	ItemsWithAmountForRecipe(ctx context.Context, recipeID int64) iter.Seq2[*ItemWithAmount, error]

	// IngredientForAmount returns the Item consumed by an ingredient row.
	IngredientForAmount(ctx context.Context, itemWithAmountID int64) (*Item, error)

	// AmountsForItem returns the ingredient rows that consume itemID. These
	// are the rows a Delete of the item would remove.
	AmountsForItem(ctx context.Context, itemID int64) iter.Seq2[*ItemWithAmount, error]

	// CraftTypeForRecipe returns the craft type a recipe belongs to.
	CraftTypeForRecipe(ctx context.Context, recipeID int64) (*CraftType, error)

	// RecipeForAmount returns the recipe an ingredient row is attached to.
	// Returns ErrNotFound when the row is unattached or its recipe is gone.
	RecipeForAmount(ctx context.Context, itemWithAmountID int64) (*Recipe, error)

	// ResolveRecipe loads a recipe together with its craft type and its
	// ingredients.
	ResolveRecipe(ctx context.Context, recipeID int64) (*RecipeDetail, error)
}
