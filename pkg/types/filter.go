package types

import "iter"

// Filter selects records by column equality. Keys are column names as they
// appear in the serialized record (e.g. "RecipeId"); a nil value matches
// NULL. The reserved keys FilterLimit and FilterOffset page the result.
type Filter map[string]any

// Reserved filter keys. FilterLimit caps the number of records returned;
// a limit of 0, like an absent one, returns every record. FilterOffset
// skips that many records first.
const (
	FilterLimit  = "limit"
	FilterOffset = "offset"
)

// Collect drains a sequence into a slice, stopping at the first error.
// An empty sequence yields an empty, non-nil slice.
func Collect[T any](seq iter.Seq2[*T, error]) ([]*T, error) {
	out := []*T{}
	for rec, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
