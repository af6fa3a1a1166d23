// Package sqlite implements the SQLite backend for the Workbench storage system.
package sqlite

import "github.com/mesh-intelligence/workbench/pkg/types"

// refAction is a referential action taken when a referenced row is deleted.
type refAction string

const (
	actionNoAction refAction = "NO ACTION"
	actionCascade  refAction = "CASCADE"
)

// primaryKey is the primary key column shared by every table. It is declared
// AUTOINCREMENT, so the id of a deleted row is never assigned again.
const primaryKey = "Id"

// foreignKey declares a reference from column to refTable.Id.
type foreignKey struct {
	column   string
	refTable string
	onDelete refAction
	onUpdate refAction
	nullable bool

	// writeChecked references are verified by the store on create and
	// update only. SQLite does not know about them, so deleting the
	// referenced row leaves the reference dangling.
	writeChecked bool
}

// tableDef is the declarative description of one table: its columns in
// storage order (primary key first) and its constraint list.
type tableDef struct {
	name        string
	columns     []string
	foreignKeys []foreignKey
}

// dataColumns returns the columns after the primary key.
func (d tableDef) dataColumns() []string {
	return d.columns[1:]
}

// hasColumn reports whether col is one of the table's columns.
func (d tableDef) hasColumn(col string) bool {
	for _, c := range d.columns {
		if c == col {
			return true
		}
	}
	return false
}

var craftTypesDef = tableDef{
	name:    types.TableCraftTypes,
	columns: []string{primaryKey, "Name"},
}

var itemsDef = tableDef{
	name:    types.TableItems,
	columns: []string{primaryKey, "Name"},
}

var recipesDef = tableDef{
	name:    types.TableRecipes,
	columns: []string{primaryKey, "CraftTypeId", "Name"},
	foreignKeys: []foreignKey{
		{column: "CraftTypeId", refTable: types.TableCraftTypes, onDelete: actionNoAction, onUpdate: actionNoAction},
	},
}

var itemWithAmountDef = tableDef{
	name:    types.TableItemWithAmount,
	columns: []string{primaryKey, "IngredientId", "Amount", "RecipeId"},
	foreignKeys: []foreignKey{
		{column: "IngredientId", refTable: types.TableItems, onDelete: actionCascade, onUpdate: actionNoAction},
		{column: "RecipeId", refTable: types.TableRecipes, onDelete: actionNoAction, onUpdate: actionNoAction, nullable: true, writeChecked: true},
	},
}

// schema lists every table in dependency order.
var schema = []tableDef{
	craftTypesDef,
	itemsDef,
	recipesDef,
	itemWithAmountDef,
}

// inboundRef is a foreign key seen from the table it points at.
type inboundRef struct {
	from tableDef
	fk   foreignKey
}

// referencing returns the foreign keys, across the whole schema, that point
// at table.
func referencing(table string) []inboundRef {
	var out []inboundRef
	for _, def := range schema {
		for _, fk := range def.foreignKeys {
			if fk.refTable == table {
				out = append(out, inboundRef{from: def, fk: fk})
			}
		}
	}
	return out
}

// textColumns lists the columns holding text; every other column is an
// integer.
var textColumns = map[string]bool{
	"Name": true,
}
