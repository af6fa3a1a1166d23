package sqlite

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/workbench/pkg/types"
)

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := setupBackend(t)
	seedScenario(t, src)

	_, err := src.Recipes().Create(ctx, &types.Recipe{ID: 11, CraftTypeID: 1, Name: "Nails"})
	require.NoError(t, err)
	_, err = src.ItemsWithAmount().Create(ctx, &types.ItemWithAmount{ID: 1001, IngredientID: 100, Amount: 1, RecipeID: ref(11)})
	require.NoError(t, err)
	_, err = src.ItemsWithAmount().Create(ctx, &types.ItemWithAmount{ID: 1002, IngredientID: 100, Amount: 6})
	require.NoError(t, err)
	require.NoError(t, src.Recipes().Delete(ctx, 11))

	dir := t.TempDir()
	manifest, err := src.Export(ctx, dir)
	require.NoError(t, err)

	_, err = uuid.Parse(manifest.SnapshotID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), manifest.SchemaVersion)
	assert.Equal(t, map[string]int{
		types.TableCraftTypes:     1,
		types.TableItems:          1,
		types.TableRecipes:        1,
		types.TableItemWithAmount: 3,
	}, manifest.Counts)

	for _, name := range types.StandardTableNames {
		_, err := os.Stat(jsonlPath(dir, name))
		assert.NoError(t, err, "%s.jsonl should exist", name)
	}

	dst := setupBackend(t)
	report, err := dst.Import(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, manifest.SnapshotID, report.SnapshotID)
	assert.Equal(t, manifest.Counts, report.Loaded)
	for _, n := range report.Skipped {
		assert.Zero(t, n)
	}

	want, err := types.Collect(src.ItemsWithAmount().List(ctx, nil))
	require.NoError(t, err)
	got, err := types.Collect(dst.ItemsWithAmount().List(ctx, nil))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	dangling, err := dst.ItemsWithAmount().Get(ctx, 1001)
	require.NoError(t, err)
	require.NotNil(t, dangling.RecipeID)
	assert.Equal(t, int64(11), *dangling.RecipeID, "dangling reference restored as exported")

	loose, err := dst.ItemsWithAmount().Get(ctx, 1002)
	require.NoError(t, err)
	assert.Nil(t, loose.RecipeID)

	fresh, err := dst.Recipes().Create(ctx, &types.Recipe{CraftTypeID: 1, Name: "Rivets"})
	require.NoError(t, err)
	assert.Greater(t, fresh.ID, int64(11), "restored dangling id must stay unassigned")
	rows, err := types.Collect(dst.ItemsWithAmountForRecipe(ctx, fresh.ID))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestExportFormat(t *testing.T) {
	ctx := context.Background()
	b := setupBackend(t)
	seedScenario(t, b)

	dir := t.TempDir()
	_, err := b.Export(ctx, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(jsonlPath(dir, types.TableItemWithAmount))
	require.NoError(t, err)
	assert.JSONEq(t, `{"Id":1000,"IngredientId":100,"Amount":3,"RecipeId":10}`, string(data))

	data, err = os.ReadFile(filepath.Join(dir, manifestFile))
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Contains(t, m, "snapshot_id")
	assert.Contains(t, m, "created_at")
	assert.Contains(t, m, "counts")
}

func TestImportSkipsBadRecords(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	write := func(table, content string) {
		require.NoError(t, os.WriteFile(jsonlPath(dir, table), []byte(content), 0o644))
	}
	write(types.TableCraftTypes, `{"Id":1,"Name":"Smithing","Icon":"anvil"}
`)
	write(types.TableItems, `{"Id":100,"Name":"Iron Ore"}

not json
{"Id":101,"Name":"Coal"}
["array"]
{"Name":"No id"}
`)
	write(types.TableRecipes, `{"Id":10,"CraftTypeId":1,"Name":"Iron Bar"}
{"Id":11,"CraftTypeId":9,"Name":"Orphan"}
`)
	write(types.TableItemWithAmount, `{"Id":1000,"IngredientId":100,"Amount":3,"RecipeId":10}
{"Id":1001,"IngredientId":999,"Amount":1,"RecipeId":10}
{"Id":1000,"IngredientId":101,"Amount":2,"RecipeId":null}
`)

	b := setupBackend(t)
	report, err := b.Import(ctx, dir)
	require.NoError(t, err)

	assert.Empty(t, report.SnapshotID, "no manifest")
	assert.Equal(t, map[string]int{
		types.TableCraftTypes:     1,
		types.TableItems:          2,
		types.TableRecipes:        1,
		types.TableItemWithAmount: 1,
	}, report.Loaded)
	assert.Equal(t, map[string]int{
		types.TableCraftTypes:     0,
		types.TableItems:          3,
		types.TableRecipes:        1,
		types.TableItemWithAmount: 2,
	}, report.Skipped)

	got, err := b.ItemsWithAmount().Get(ctx, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.IngredientID, "first record with an Id wins")
}

func TestImportMissingFiles(t *testing.T) {
	ctx := context.Background()
	b := setupBackend(t)

	report, err := b.Import(ctx, t.TempDir())
	require.NoError(t, err)
	for _, name := range types.StandardTableNames {
		assert.Zero(t, report.Loaded[name])
	}
}

func TestImportTwiceSkipsExistingIDs(t *testing.T) {
	ctx := context.Background()
	src := setupBackend(t)
	seedScenario(t, src)
	dir := t.TempDir()
	_, err := src.Export(ctx, dir)
	require.NoError(t, err)

	b := setupBackend(t)
	_, err = b.Import(ctx, dir)
	require.NoError(t, err)

	report, err := b.Import(ctx, dir)
	require.NoError(t, err)
	for _, name := range types.StandardTableNames {
		assert.Zero(t, report.Loaded[name], name)
		assert.Equal(t, 1, report.Skipped[name], name)
	}
}

func TestImportUnreadableManifest(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifestFile), []byte("{broken"), 0o644))

	b := setupBackend(t)
	report, err := b.Import(ctx, dir)
	require.NoError(t, err)
	assert.Empty(t, report.SnapshotID)
}

func TestSnapshotDetached(t *testing.T) {
	ctx := context.Background()
	b := NewBackend()

	_, err := b.Export(ctx, t.TempDir())
	assert.ErrorIs(t, err, types.ErrStoreDetached)

	_, err = b.Import(ctx, t.TempDir())
	assert.ErrorIs(t, err, types.ErrStoreDetached)
}
