package retrieval

import (
	"github.com/MikeSquared-Agency/voxarchive/internal/catalog"
	"github.com/MikeSquared-Agency/voxarchive/internal/filter"
)

// resolveSubtypes ORs the fragments of every selection. Selections missing from
// the dictionary match the subtype tag literally.
func resolveSubtypes(c *catalog.Catalog, sel []string) filter.Predicate {
	frags := make([]filter.Predicate, 0, len(sel))
	for _, s := range sel {
		rule, ok := c.Subtype(s)
		if !ok {
			frags = append(frags, filter.Equals{Field: filter.FieldSubtype, Value: s})
			continue
		}
		frags = append(frags, rule.Fragment(c.Files()))
	}
	return filter.AnyOf(frags...)
}
