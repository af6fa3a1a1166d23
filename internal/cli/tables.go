package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/workbench/pkg/types"
)

// validTableNamesStr is a comma-separated list of valid table names for error output.
var validTableNamesStr = strings.Join(types.StandardTableNames, ", ")

// tableOps adapts one typed table to untyped command arguments.
type tableOps struct {
	get    func(ctx context.Context, id int64) (any, error)
	create func(ctx context.Context, data []byte) (any, error)
	update func(ctx context.Context, id int64, data []byte) (any, error)
	remove func(ctx context.Context, id int64) error
	list   func(ctx context.Context, filter types.Filter) (any, error)
}

func opsFor[T types.Entity](t types.Table[T]) tableOps {
	return tableOps{
		get: func(ctx context.Context, id int64) (any, error) {
			return t.Get(ctx, id)
		},
		create: func(ctx context.Context, data []byte) (any, error) {
			rec, err := decodeRecord[T](data)
			if err != nil {
				return nil, err
			}
			return t.Create(ctx, rec)
		},
		update: func(ctx context.Context, id int64, data []byte) (any, error) {
			rec, err := decodeRecord[T](data)
			if err != nil {
				return nil, err
			}
			return t.Update(ctx, id, rec)
		},
		remove: t.Delete,
		list: func(ctx context.Context, filter types.Filter) (any, error) {
			return types.Collect(t.List(ctx, filter))
		},
	}
}

// lookupTable returns the operations of the named table. Names match
// case-insensitively.
func lookupTable(store types.Store, name string) (tableOps, error) {
	switch {
	case strings.EqualFold(name, types.TableCraftTypes):
		return opsFor(store.CraftTypes()), nil
	case strings.EqualFold(name, types.TableItems):
		return opsFor(store.Items()), nil
	case strings.EqualFold(name, types.TableRecipes):
		return opsFor(store.Recipes()), nil
	case strings.EqualFold(name, types.TableItemWithAmount):
		return opsFor(store.ItemsWithAmount()), nil
	}
	return tableOps{}, fmt.Errorf("%w: %q (valid: %s)", types.ErrTableNotFound, name, validTableNamesStr)
}

// decodeRecord unmarshals a JSON record. Unknown fields are rejected so that
// a misspelled column does not silently store a zero value.
func decodeRecord[T types.Entity](data []byte) (*T, error) {
	var rec T
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrInvalidData, err)
	}
	return &rec, nil
}

// readPayload returns the JSON argument, or standard input when it is "-".
func readPayload(arg string, stdin io.Reader) ([]byte, error) {
	if arg != "-" {
		return []byte(arg), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return data, nil
}

// parseID parses a non-negative record id.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("%w: %q", types.ErrInvalidID, s)
	}
	return id, nil
}

// parseFilter turns Column=value arguments into a filter. The value "null"
// matches NULL; every other value is passed as text and converted to the
// column type by the store.
func parseFilter(args []string) (types.Filter, error) {
	filter := types.Filter{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q (expected Column=value)", types.ErrInvalidFilter, arg)
		}
		if value == "null" {
			filter[key] = nil
			continue
		}
		filter[key] = value
	}
	return filter, nil
}
