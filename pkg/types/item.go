package types

// Item is a craftable or consumable thing. ItemWithAmount rows reference it
// as an ingredient; deleting an Item deletes those rows.
type Item struct {
	ID   int64  `json:"Id" db:"Id"`
	Name string `json:"Name" db:"Name"`
}
