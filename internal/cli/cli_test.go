package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/workbench/internal/paths"
	"github.com/mesh-intelligence/workbench/pkg/types"
)

// testEnv holds the directories a CLI test runs against.
type testEnv struct {
	configDir string
	dataDir   string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	t.Setenv(paths.EnvDataDir, "")
	t.Setenv(paths.EnvConfigDir, "")
	t.Setenv("WORKBENCH_LOG_LEVEL", "")
	root := t.TempDir()
	return testEnv{
		configDir: filepath.Join(root, "config"),
		dataDir:   filepath.Join(root, "data"),
	}
}

// run executes the CLI with the environment's directories and returns
// standard output and the command error.
func (e testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return e.runWithInput(t, "", args...)
}

func (e testEnv) runWithInput(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// mustRun executes the CLI and fails the test on error.
func (e testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	require.NoError(t, err, "workbench %s", strings.Join(args, " "))
	return out
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func seedCLI(t *testing.T, env testEnv) {
	t.Helper()
	env.mustRun(t, "create", "CraftTypes", `{"Id":1,"Name":"Smithing"}`)
	env.mustRun(t, "create", "Recipes", `{"Id":10,"CraftTypeId":1,"Name":"Iron Bar"}`)
	env.mustRun(t, "create", "Items", `{"Id":100,"Name":"Iron Ore"}`)
	env.mustRun(t, "create", "ItemWithAmount", `{"Id":1000,"IngredientId":100,"Amount":3,"RecipeId":10}`)
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun(t, "version")
	assert.Contains(t, out, "workbench v")
	assert.Contains(t, out, modulePath)
}

func TestInit(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "init")
	assert.Contains(t, out, "Workbench initialized (schema version 1)")

	_, err := os.Stat(filepath.Join(env.dataDir, "workbench.db"))
	assert.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(env.configDir, configFileExt))
	require.NoError(t, err)
	assert.Contains(t, string(data), "backend: sqlite")
	assert.Contains(t, string(data), "data_dir: "+env.dataDir)

	env.mustRun(t, "init")
}

func TestCRUDCommands(t *testing.T) {
	env := newTestEnv(t)

	created := decode[types.Item](t, env.mustRun(t, "create", "Items", `{"Name":"Iron Ore"}`))
	assert.Positive(t, created.ID)

	got := decode[types.Item](t, env.mustRun(t, "get", "items", "1"))
	assert.Equal(t, created, got)

	updated := decode[types.Item](t, env.mustRun(t, "update", "Items", "1", `{"Name":"Copper Ore"}`))
	assert.Equal(t, "Copper Ore", updated.Name)

	fromStdin := decode[types.Item](t, func() string {
		out, err := env.runWithInput(t, `{"Name":"Coal"}`, "create", "Items", "-")
		require.NoError(t, err)
		return out
	}())
	assert.Equal(t, "Coal", fromStdin.Name)

	list := decode[[]types.Item](t, env.mustRun(t, "list", "Items"))
	assert.Len(t, list, 2)

	out := env.mustRun(t, "delete", "Items", "1")
	assert.Contains(t, out, "deleted Items 1")

	_, err := env.run(t, "get", "Items", "1")
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestListFilters(t *testing.T) {
	env := newTestEnv(t)
	seedCLI(t, env)
	env.mustRun(t, "create", "ItemWithAmount", `{"Id":1001,"IngredientId":100,"Amount":5}`)

	unattached := decode[[]types.ItemWithAmount](t, env.mustRun(t, "list", "ItemWithAmount", "RecipeId=null"))
	require.Len(t, unattached, 1)
	assert.Equal(t, int64(1001), unattached[0].ID)

	attached := decode[[]types.ItemWithAmount](t, env.mustRun(t, "list", "ItemWithAmount", "RecipeId=10"))
	require.Len(t, attached, 1)
	assert.Equal(t, int64(1000), attached[0].ID)

	paged := decode[[]types.ItemWithAmount](t, env.mustRun(t, "list", "ItemWithAmount", "limit=1", "offset=1"))
	require.Len(t, paged, 1)
	assert.Equal(t, int64(1001), paged[0].ID)

	empty := env.mustRun(t, "list", "Recipes", "Name=Nothing")
	assert.Equal(t, "[]\n", empty)

	_, err := env.run(t, "list", "Items", "Colour=red")
	assert.ErrorIs(t, err, types.ErrInvalidFilter)

	_, err = env.run(t, "list", "Items", "=x")
	assert.ErrorIs(t, err, types.ErrInvalidFilter)
}

func TestResolverCommands(t *testing.T) {
	env := newTestEnv(t)
	seedCLI(t, env)

	recipes := decode[[]types.Recipe](t, env.mustRun(t, "recipes", "1"))
	require.Len(t, recipes, 1)
	assert.Equal(t, "Iron Bar", recipes[0].Name)

	rows := decode[[]types.ItemWithAmount](t, env.mustRun(t, "ingredients", "10"))
	require.Len(t, rows, 1)
	assert.Equal(t, int64(3), rows[0].Amount)

	amounts := decode[[]types.ItemWithAmount](t, env.mustRun(t, "amounts", "100"))
	assert.Len(t, amounts, 1)

	item := decode[types.Item](t, env.mustRun(t, "ingredient", "1000"))
	assert.Equal(t, "Iron Ore", item.Name)

	detail := decode[types.RecipeDetail](t, env.mustRun(t, "show", "10"))
	assert.Equal(t, "Smithing", detail.CraftType.Name)
	require.Len(t, detail.Ingredients, 1)
	assert.Equal(t, "Iron Ore", detail.Ingredients[0].Item.Name)
}

func TestDeleteRules(t *testing.T) {
	env := newTestEnv(t)
	seedCLI(t, env)

	_, err := env.run(t, "delete", "CraftTypes", "1")
	assert.ErrorIs(t, err, types.ErrConstraintViolation)
	assert.Equal(t, exitUserError, exitCode(err))

	env.mustRun(t, "delete", "Recipes", "10")
	rows := decode[[]types.ItemWithAmount](t, env.mustRun(t, "ingredients", "10"))
	assert.Len(t, rows, 1, "recipe delete leaves rows in place")

	env.mustRun(t, "delete", "Items", "100")
	rows = decode[[]types.ItemWithAmount](t, env.mustRun(t, "list", "ItemWithAmount"))
	assert.Empty(t, rows, "item delete cascades")
}

func TestUserErrors(t *testing.T) {
	env := newTestEnv(t)
	seedCLI(t, env)

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "unknown table", args: []string{"get", "Widgets", "1"}, wantErr: types.ErrTableNotFound},
		{name: "bad id", args: []string{"get", "Items", "abc"}, wantErr: types.ErrInvalidID},
		{name: "negative id", args: []string{"delete", "Items", "-3"}, wantErr: types.ErrInvalidID},
		{name: "bad json", args: []string{"create", "Items", "{"}, wantErr: types.ErrInvalidData},
		{name: "unknown field", args: []string{"create", "Items", `{"Title":"x"}`}, wantErr: types.ErrInvalidData},
		{name: "missing ingredient", args: []string{"create", "ItemWithAmount", `{"IngredientId":9,"Amount":1}`}, wantErr: types.ErrConstraintViolation},
		{name: "duplicate id", args: []string{"create", "Items", `{"Id":100,"Name":"Again"}`}, wantErr: types.ErrConstraintViolation},
		{name: "update missing", args: []string{"update", "Items", "5", `{"Name":"x"}`}, wantErr: types.ErrNotFound},
		{name: "missing ingredient row", args: []string{"ingredient", "77"}, wantErr: types.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.run(t, tt.args...)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, exitUserError, exitCode(err))
		})
	}
}

func TestArgumentErrorsAreUserErrors(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "get", "Items")
	require.Error(t, err)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestSystemErrors(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(env.dataDir), 0o755))
	require.NoError(t, os.WriteFile(env.dataDir, []byte("not a directory"), 0o644))

	_, err := env.run(t, "list", "Items")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrStorageUnavailable)
	assert.Equal(t, exitSysError, exitCode(err))
}

func TestInvalidLogLevel(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "--log-level", "loud", "list", "Items")
	require.Error(t, err)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestExportImportCommands(t *testing.T) {
	env := newTestEnv(t)
	seedCLI(t, env)
	snap := filepath.Join(t.TempDir(), "snap")

	manifest := decode[map[string]any](t, env.mustRun(t, "export", snap))
	assert.NotEmpty(t, manifest["snapshot_id"])

	other := newTestEnv(t)
	report := decode[map[string]any](t, other.mustRun(t, "import", snap))
	assert.Equal(t, manifest["snapshot_id"], report["snapshot_id"])

	detail := decode[types.RecipeDetail](t, other.mustRun(t, "show", "10"))
	require.Len(t, detail.Ingredients, 1)
	assert.Equal(t, int64(3), detail.Ingredients[0].Amount)
}

func TestConfigFromEnvironment(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv("WORKBENCH_SQLITE_JOURNAL_MODE", "sideways")

	_, err := env.run(t, "list", "Items")
	assert.ErrorIs(t, err, types.ErrJournalModeUnknown)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitSuccess, exitCode(nil))
	assert.Equal(t, exitUserError, exitCode(types.ErrNotFound))
	assert.Equal(t, exitSysError, exitCode(sysError(types.ErrStorageUnavailable)))
}
