package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mesh-intelligence/workbench/pkg/types"
)

// setupBackend returns an attached Backend on a fresh database in a
// temporary directory. It is detached when the test ends.
func setupBackend(t *testing.T) *Backend {
	t.Helper()
	b := NewBackend(WithLogger(zaptest.NewLogger(t)))
	config := types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}
	require.NoError(t, b.Attach(config))
	t.Cleanup(func() { b.Detach() })
	return b
}

// seedScenario stores the smithing fixture: CraftType 1, Recipe 10,
// Item 100 and ItemWithAmount 1000 (3 x Item 100 for Recipe 10).
func seedScenario(t *testing.T, b *Backend) {
	t.Helper()
	ctx := context.Background()

	_, err := b.CraftTypes().Create(ctx, &types.CraftType{ID: 1, Name: "Smithing"})
	require.NoError(t, err)
	_, err = b.Recipes().Create(ctx, &types.Recipe{ID: 10, CraftTypeID: 1, Name: "Iron Bar"})
	require.NoError(t, err)
	_, err = b.Items().Create(ctx, &types.Item{ID: 100, Name: "Iron Ore"})
	require.NoError(t, err)
	_, err = b.ItemsWithAmount().Create(ctx, &types.ItemWithAmount{ID: 1000, IngredientID: 100, Amount: 3, RecipeID: ref(10)})
	require.NoError(t, err)
}

func ref(id int64) *int64 { return &id }

// amountIDs returns the Id of every row in recs.
func amountIDs(recs []*types.ItemWithAmount) []int64 {
	out := make([]int64, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}
