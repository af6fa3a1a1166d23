package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/workbench/internal/sqlite"
	"github.com/mesh-intelligence/workbench/pkg/types"
)

// idCommand builds a command that takes one Id argument and prints what
// resolve returns for it.
func idCommand(opts *options, use, short string, resolve func(ctx context.Context, store *sqlite.Backend, id int64) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withStore(cmd, opts, func(ctx context.Context, store *sqlite.Backend) error {
				v, err := resolve(ctx, store, id)
				if err != nil {
					return err
				}
				return printJSON(cmd, v)
			})
		},
	}
}

func newRecipesCmd(opts *options) *cobra.Command {
	return idCommand(opts, "recipes <craftTypeId>", "List the recipes of a craft type",
		func(ctx context.Context, store *sqlite.Backend, id int64) (any, error) {
			return types.Collect(store.RecipesForCraftType(ctx, id))
		})
}

func newIngredientsCmd(opts *options) *cobra.Command {
	return idCommand(opts, "ingredients <recipeId>", "List the ingredient rows of a recipe",
		func(ctx context.Context, store *sqlite.Backend, id int64) (any, error) {
			return types.Collect(store.ItemsWithAmountForRecipe(ctx, id))
		})
}

func newAmountsCmd(opts *options) *cobra.Command {
	return idCommand(opts, "amounts <itemId>", "List the ingredient rows consuming an item",
		func(ctx context.Context, store *sqlite.Backend, id int64) (any, error) {
			return types.Collect(store.AmountsForItem(ctx, id))
		})
}

func newIngredientCmd(opts *options) *cobra.Command {
	return idCommand(opts, "ingredient <itemWithAmountId>", "Show the item an ingredient row consumes",
		func(ctx context.Context, store *sqlite.Backend, id int64) (any, error) {
			return store.IngredientForAmount(ctx, id)
		})
}

func newShowCmd(opts *options) *cobra.Command {
	return idCommand(opts, "show <recipeId>", "Show a recipe with its craft type and ingredients",
		func(ctx context.Context, store *sqlite.Backend, id int64) (any, error) {
			return store.ResolveRecipe(ctx, id)
		})
}
