package sqlite

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/huandu/go-sqlbuilder"

	"github.com/mesh-intelligence/workbench/pkg/types"
)

// buildSelect turns a filter into a SELECT over def ordered by Id.
// Unknown columns and values of the wrong type return ErrInvalidFilter.
// A limit of 0 is the same as no limit.
func buildSelect(def tableDef, filter types.Filter) (string, []any, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(def.columns...).From(def.name)

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var limit, offset int64
	for _, key := range keys {
		v := filter[key]
		switch key {
		case types.FilterLimit:
			n, ok := toInt64(v)
			if !ok || n < 0 {
				return "", nil, fmt.Errorf("%w: limit must be a non-negative integer", types.ErrInvalidFilter)
			}
			limit = n
			continue
		case types.FilterOffset:
			n, ok := toInt64(v)
			if !ok || n < 0 {
				return "", nil, fmt.Errorf("%w: offset must be a non-negative integer", types.ErrInvalidFilter)
			}
			offset = n
			continue
		}

		if !def.hasColumn(key) {
			return "", nil, fmt.Errorf("%w: unknown column %q for %s", types.ErrInvalidFilter, key, def.name)
		}
		if _, ok := refValue(v); v == nil || (!ok && isRef(v)) {
			sb.Where(sb.IsNull(key))
			continue
		}
		val, err := filterValue(key, v)
		if err != nil {
			return "", nil, err
		}
		sb.Where(sb.Equal(key, val))
	}

	sb.OrderBy(primaryKey).Asc()

	if limit > 0 || offset > 0 {
		if limit == 0 {
			// SQLite needs a LIMIT before OFFSET; -1 means no limit.
			limit = -1
		}
		sb.SQL(fmt.Sprintf("LIMIT %d OFFSET %d", limit, offset))
	}

	query, args := sb.Build()
	return query, args, nil
}

// filterValue converts v to the type stored in col.
func filterValue(col string, v any) (any, error) {
	if textColumns[col] {
		switch x := v.(type) {
		case string:
			return x, nil
		case int, int64:
			return fmt.Sprint(x), nil
		}
		return nil, fmt.Errorf("%w: %s expects a string, got %T", types.ErrInvalidFilter, col, v)
	}
	n, ok := toInt64(v)
	if !ok {
		return nil, fmt.Errorf("%w: %s expects an integer, got %T", types.ErrInvalidFilter, col, v)
	}
	return n, nil
}

// toInt64 accepts the integer shapes a caller or a JSON decoder produces.
func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case *int64:
		if x == nil {
			return 0, false
		}
		return *x, true
	case float64:
		// int64(x) is undefined outside the int64 range.
		if x != math.Trunc(x) || math.Abs(x) >= 1<<63 {
			return 0, false
		}
		return int64(x), true
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		return n, err == nil
	}
	return 0, false
}

// isRef reports whether v is a nullable reference.
func isRef(v any) bool {
	_, ok := v.(*int64)
	return ok
}
