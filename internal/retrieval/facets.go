package retrieval

import (
	"strings"

	"github.com/MikeSquared-Agency/voxarchive/internal/filter"
)

// Facet identifies one user-facing filter dimension.
type Facet int

const (
	FacetSearch Facet = iota
	FacetSubtype
	FacetCity
	FacetEmotion
	FacetQuestGroup
	FacetCharacter
	FacetContext
)

// facetOrder is the order fragments are appended to the composite filter.
var facetOrder = []Facet{
	FacetSearch,
	FacetSubtype,
	FacetCity,
	FacetEmotion,
	FacetQuestGroup,
	FacetCharacter,
	FacetContext,
}

func (f Facet) String() string {
	switch f {
	case FacetSearch:
		return "search"
	case FacetSubtype:
		return "subtype"
	case FacetCity:
		return "city"
	case FacetEmotion:
		return "emotion"
	case FacetQuestGroup:
		return "questGroup"
	case FacetCharacter:
		return "character"
	case FacetContext:
		return "context"
	}
	return "unknown"
}

// facet returns the trimmed value of f, empty when absent.
func (r Request) facet(f Facet) string {
	var v string
	switch f {
	case FacetSearch:
		v = r.Search
	case FacetSubtype:
		v = r.Subtype
	case FacetCity:
		v = r.City
	case FacetEmotion:
		v = r.Emotion
	case FacetQuestGroup:
		v = r.QuestGroup
	case FacetCharacter:
		v = r.Character
	case FacetContext:
		v = r.Context
	}
	return strings.TrimSpace(v)
}

// textContains matches v anywhere in the topic or the response.
func textContains(v string) filter.Predicate {
	return filter.Or{
		filter.Contains{Field: filter.FieldTopicText, Value: v},
		filter.Contains{Field: filter.FieldResponseText, Value: v},
	}
}

func resolveSearch(v string) filter.Predicate {
	return textContains(v)
}

// resolveCity has no city table: a city is matched by being mentioned.
func resolveCity(v string) filter.Predicate {
	return textContains(v)
}

func resolveEmotion(v string) filter.Predicate {
	return filter.HasPrefix{Field: filter.FieldEmotion, Value: v, Fold: true}
}

// resolveQuestTable narrows to the quests a table maps v to. Names missing from
// the table add no constraint.
func resolveQuestTable(lookup func(string) ([]string, bool), v string) filter.Predicate {
	quests, ok := lookup(v)
	if !ok {
		return nil
	}
	return filter.In{Field: filter.FieldQuestName, Values: quests, Fold: true}
}

// Facets names the facets present in the request, in facetOrder.
func (r Request) Facets() []string {
	out := []string{}
	for _, f := range facetOrder {
		if r.facet(f) != "" {
			out = append(out, f.String())
		}
	}
	return out
}
