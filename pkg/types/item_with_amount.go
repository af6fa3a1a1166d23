package types

// ItemWithAmount is the join entity between Item and Recipe: a quantity of
// an ingredient, optionally attached to a recipe.
//
// RecipeID is nil for a row that belongs to no recipe. A non-nil RecipeID
// is checked when the row is written, but deleting the Recipe leaves it in
// place, pointing at a row that no longer exists.
//
// Amount is stored as given; zero and negative values are not rejected.
type ItemWithAmount struct {
	ID           int64  `json:"Id" db:"Id"`
	IngredientID int64  `json:"IngredientId" db:"IngredientId"`
	Amount       int64  `json:"Amount" db:"Amount"`
	RecipeID     *int64 `json:"RecipeId" db:"RecipeId"`
}

// HasRecipe reports whether the row is attached to a recipe.
func (a *ItemWithAmount) HasRecipe() bool {
	return a.RecipeID != nil
}

// AttachTo sets the owning recipe. The caller must persist via Table.Update.
func (a *ItemWithAmount) AttachTo(recipeID int64) {
	a.RecipeID = &recipeID
}

// Unattach clears the owning recipe. The caller must persist via Table.Update.
func (a *ItemWithAmount) Unattach() {
	a.RecipeID = nil
}
