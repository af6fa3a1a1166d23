package types

// Recipe belongs to exactly one CraftType. Its ingredient list is owned by
// the ItemWithAmount rows whose RecipeID points back at it.
type Recipe struct {
	ID          int64  `json:"Id" db:"Id"`
	CraftTypeID int64  `json:"CraftTypeId" db:"CraftTypeId"`
	Name        string `json:"Name" db:"Name"`
}

// RecipeDetail is a Recipe with its relationships resolved: the owning
// CraftType and every ingredient row paired with its Item.
type RecipeDetail struct {
	Recipe      Recipe       `json:"Recipe"`
	CraftType   CraftType    `json:"CraftType"`
	Ingredients []Ingredient `json:"Ingredients"`
}

// Ingredient pairs an ItemWithAmount row with the Item it consumes.
type Ingredient struct {
	ItemWithAmount
	Item Item `json:"Item"`
}
