package types

// CraftType is a named category of crafting, such as "Smithing".
// Recipes reference it through Recipe.CraftTypeID.
type CraftType struct {
	ID   int64  `json:"Id" db:"Id"`
	Name string `json:"Name" db:"Name"`
}
