package filter

import (
	"strings"

	"github.com/MikeSquared-Agency/voxarchive/internal/dialogue"
)

// SortKey orders results by one field.
type SortKey struct {
	Field Field
	Desc  bool
}

// Asc is shorthand for an ascending key.
func Asc(f Field) SortKey { return SortKey{Field: f} }

// Compare orders a and b by keys, returning -1, 0 or 1.
func Compare(a, b dialogue.Record, keys []SortKey) int {
	for _, k := range keys {
		c := strings.Compare(Value(a, k.Field), Value(b, k.Field))
		if c == 0 {
			continue
		}
		if k.Desc {
			return -c
		}
		return c
	}
	return 0
}
