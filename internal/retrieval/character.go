package retrieval

import (
	"github.com/MikeSquared-Agency/voxarchive/internal/catalog"
	"github.com/MikeSquared-Agency/voxarchive/internal/filter"
)

// characterResolver narrows standard-mode results to a character. Exported lines
// are organised by quest, so the character is resolved to quest buckets rather
// than to a voice type.
type characterResolver struct {
	catalog *catalog.Catalog
}

// resolve returns the fragment for name and whether the quest table knew it.
// Unknown characters are matched by name in the topic or response text.
func (c characterResolver) resolve(name string) (filter.Predicate, bool) {
	quests, ok := c.catalog.CharacterQuests(name)
	if !ok {
		return textContains(name), false
	}
	return filter.In{Field: filter.FieldQuestName, Values: quests, Fold: true}, true
}
