package sqlite

import (
	"context"
	"fmt"
	"iter"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mesh-intelligence/workbench/pkg/types"
)

// RecipesForCraftType returns the recipes whose CraftTypeId is craftTypeID.
func (b *Backend) RecipesForCraftType(ctx context.Context, craftTypeID int64) iter.Seq2[*types.Recipe, error] {
	return b.recipes.List(ctx, types.Filter{"CraftTypeId": craftTypeID})
}

// ItemsWithAmountForRecipe returns the ingredient rows whose RecipeId is
// recipeID, whether or not the recipe still exists. Unattached rows never
// match.
func (b *Backend) ItemsWithAmountForRecipe(ctx context.Context, recipeID int64) iter.Seq2[*types.ItemWithAmount, error] {
	return b.itemsWithAmount.List(ctx, types.Filter{"RecipeId": recipeID})
}

// AmountsForItem returns the ingredient rows consuming itemID.
func (b *Backend) AmountsForItem(ctx context.Context, itemID int64) iter.Seq2[*types.ItemWithAmount, error] {
	return b.itemsWithAmount.List(ctx, types.Filter{"IngredientId": itemID})
}

// IngredientForAmount returns the Item an ingredient row consumes.
func (b *Backend) IngredientForAmount(ctx context.Context, itemWithAmountID int64) (_ *types.Item, err error) {
	ctx, span := startResolverSpan(ctx, "IngredientForAmount", itemWithAmountID)
	defer func() { endSpan(span, err) }()

	amount, err := b.itemsWithAmount.Get(ctx, itemWithAmountID)
	if err != nil {
		return nil, err
	}
	return b.items.Get(ctx, amount.IngredientID)
}

// CraftTypeForRecipe returns the craft type a recipe belongs to.
func (b *Backend) CraftTypeForRecipe(ctx context.Context, recipeID int64) (_ *types.CraftType, err error) {
	ctx, span := startResolverSpan(ctx, "CraftTypeForRecipe", recipeID)
	defer func() { endSpan(span, err) }()

	recipe, err := b.recipes.Get(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	return b.craftTypes.Get(ctx, recipe.CraftTypeID)
}

// RecipeForAmount returns the recipe an ingredient row is attached to.
func (b *Backend) RecipeForAmount(ctx context.Context, itemWithAmountID int64) (_ *types.Recipe, err error) {
	ctx, span := startResolverSpan(ctx, "RecipeForAmount", itemWithAmountID)
	defer func() { endSpan(span, err) }()

	amount, err := b.itemsWithAmount.Get(ctx, itemWithAmountID)
	if err != nil {
		return nil, err
	}
	if !amount.HasRecipe() {
		return nil, fmt.Errorf("%s %d has no recipe: %w", types.TableItemWithAmount, itemWithAmountID, types.ErrNotFound)
	}
	return b.recipes.Get(ctx, *amount.RecipeID)
}

// ingredientRow is one row of the ingredient join in ResolveRecipe.
type ingredientRow struct {
	ID           int64  `db:"Id"`
	IngredientID int64  `db:"IngredientId"`
	Amount       int64  `db:"Amount"`
	RecipeID     *int64 `db:"RecipeId"`
	ItemName     string `db:"ItemName"`
}

// ResolveRecipe loads a recipe, its craft type and its ingredients from one
// consistent view of the database.
func (b *Backend) ResolveRecipe(ctx context.Context, recipeID int64) (_ *types.RecipeDetail, err error) {
	ctx, span := startResolverSpan(ctx, "ResolveRecipe", recipeID)
	defer func() { endSpan(span, err) }()

	db, err := b.handle()
	if err != nil {
		return nil, err
	}

	var detail types.RecipeDetail
	err = withReadTx(ctx, db, func(tx *sqlx.Tx) error {
		recipe, err := b.recipes.get(ctx, tx, recipeID)
		if err != nil {
			return err
		}
		craftType, err := b.craftTypes.get(ctx, tx, recipe.CraftTypeID)
		if err != nil {
			return err
		}

		sb := sqlbuilder.SQLite.NewSelectBuilder()
		sb.Select(
			"a.Id AS Id",
			"a.IngredientId AS IngredientId",
			"a.Amount AS Amount",
			"a.RecipeId AS RecipeId",
			"i.Name AS ItemName",
		)
		sb.From(sb.As(types.TableItemWithAmount, "a"))
		sb.Join(sb.As(types.TableItems, "i"), "i.Id = a.IngredientId")
		sb.Where(sb.Equal("a.RecipeId", recipeID))
		sb.OrderBy("a.Id").Asc()

		query, args := sb.Build()
		var rows []ingredientRow
		if err := sqlx.SelectContext(ctx, tx, &rows, query, args...); err != nil {
			return err
		}

		detail.Recipe = *recipe
		detail.CraftType = *craftType
		detail.Ingredients = make([]types.Ingredient, len(rows))
		for i, r := range rows {
			detail.Ingredients[i] = types.Ingredient{
				ItemWithAmount: types.ItemWithAmount{
					ID:           r.ID,
					IngredientID: r.IngredientID,
					Amount:       r.Amount,
					RecipeID:     r.RecipeID,
				},
				Item: types.Item{ID: r.IngredientID, Name: r.ItemName},
			}
		}
		return nil
	})
	if err != nil {
		return nil, classify("resolve recipe", err)
	}
	return &detail, nil
}

func startResolverSpan(ctx context.Context, op string, id int64) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Resolver."+op, trace.WithAttributes(attribute.Int64("workbench.id", id)))
}
