package sqlite

import "github.com/mesh-intelligence/workbench/pkg/types"

// entity binds a record type to its table definition. values returns the
// record's data columns in tableDef.dataColumns order.
type entity[T types.Entity] struct {
	def    tableDef
	id     func(*T) int64
	setID  func(*T, int64)
	values func(*T) []any
}

var craftTypeEntity = entity[types.CraftType]{
	def:    craftTypesDef,
	id:     func(c *types.CraftType) int64 { return c.ID },
	setID:  func(c *types.CraftType, id int64) { c.ID = id },
	values: func(c *types.CraftType) []any { return []any{c.Name} },
}

var itemEntity = entity[types.Item]{
	def:    itemsDef,
	id:     func(i *types.Item) int64 { return i.ID },
	setID:  func(i *types.Item, id int64) { i.ID = id },
	values: func(i *types.Item) []any { return []any{i.Name} },
}

var recipeEntity = entity[types.Recipe]{
	def:    recipesDef,
	id:     func(r *types.Recipe) int64 { return r.ID },
	setID:  func(r *types.Recipe, id int64) { r.ID = id },
	values: func(r *types.Recipe) []any { return []any{r.CraftTypeID, r.Name} },
}

var itemWithAmountEntity = entity[types.ItemWithAmount]{
	def:   itemWithAmountDef,
	id:    func(a *types.ItemWithAmount) int64 { return a.ID },
	setID: func(a *types.ItemWithAmount, id int64) { a.ID = id },
	values: func(a *types.ItemWithAmount) []any {
		return []any{a.IngredientID, a.Amount, nullableRef(a.RecipeID)}
	},
}

// columnValues maps each data column of rec to its value.
func (e entity[T]) columnValues(rec *T) map[string]any {
	vals := e.values(rec)
	out := make(map[string]any, len(vals))
	for i, col := range e.def.dataColumns() {
		out[col] = vals[i]
	}
	return out
}

// refValue extracts a foreign key value. It reports false for a nil
// reference.
func refValue(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case *int64:
		if x == nil {
			return 0, false
		}
		return *x, true
	}
	return 0, false
}

// nullableRef converts an optional reference into a query argument: nil
// for no reference, the id otherwise.
func nullableRef(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}
