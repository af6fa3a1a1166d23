package types

// Standard table names. They double as the SQLite table names and the JSONL
// snapshot file stems.
const (
	TableCraftTypes     = "CraftTypes"
	TableItems          = "Items"
	TableRecipes        = "Recipes"
	TableItemWithAmount = "ItemWithAmount"
)

// StandardTableNames lists all table names in dependency order: every table
// appears after the tables it references.
var StandardTableNames = []string{
	TableCraftTypes,
	TableItems,
	TableRecipes,
	TableItemWithAmount,
}
