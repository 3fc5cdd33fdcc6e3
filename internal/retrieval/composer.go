package retrieval

import (
	"context"

	"github.com/MikeSquared-Agency/voxarchive/internal/dialogue"
	"github.com/MikeSquared-Agency/voxarchive/internal/filter"
	"github.com/MikeSquared-Agency/voxarchive/internal/store"
)

// sectionHeader marks rows like "=== Whiterun ===" that the exporter emits between
// groups of lines.
const sectionHeader = "==="

// Query is a composed retrieval: the full filter plus its ordering.
type Query struct {
	Mode    dialogue.Mode
	Where   filter.Predicate
	OrderBy []filter.SortKey
	Scene   sceneResolution
}

func (e *Engine) modeOf(sel []string) dialogue.Mode {
	for _, s := range sel {
		if e.catalog.IsSceneMarker(s) {
			return dialogue.ModeScene
		}
	}
	return dialogue.ModeStandard
}

// baseFilter scopes a mode to its half of the corpus and drops lines that carry no
// spoken text.
func (e *Engine) baseFilter(mode dialogue.Mode) filter.And {
	prefix := e.catalog.Files().StandardPrefix
	if mode == dialogue.ModeScene {
		prefix = e.catalog.Files().ScenePrefix
	}
	return filter.And{
		filter.HasPrefix{Field: filter.FieldFileName, Value: prefix},
		filter.Not{P: filter.Equals{Field: filter.FieldResponseText, Value: ""}},
		filter.Not{P: filter.And{
			filter.HasPrefix{Field: filter.FieldResponseText, Value: sectionHeader},
			filter.HasSuffix{Field: filter.FieldResponseText, Value: sectionHeader},
		}},
	}
}

func sortOrder(mode dialogue.Mode) []filter.SortKey {
	if mode == dialogue.ModeScene {
		return []filter.SortKey{filter.Asc(filter.FieldFileName), filter.Asc(filter.FieldTopicInfo)}
	}
	return []filter.SortKey{filter.Asc(filter.FieldTopicInfo), filter.Asc(filter.FieldFileName)}
}

// compose resolves every facet of req, in facetOrder, into one filter. The only
// store access is the scene file lookup, which must finish before the main query
// can be issued.
func (e *Engine) compose(ctx context.Context, r store.Reader, req Request) (Query, error) {
	sel := selections(req.Subtype)
	mode := e.modeOf(sel)
	q := Query{Mode: mode, OrderBy: sortOrder(mode)}

	where := e.baseFilter(mode)
	for _, f := range facetOrder {
		v := req.facet(f)
		if v == "" {
			continue
		}

		var frag filter.Predicate
		switch f {
		case FacetSearch:
			frag = resolveSearch(v)
		case FacetSubtype:
			frag = resolveSubtypes(e.catalog, sel)
		case FacetCity:
			frag = resolveCity(v)
		case FacetEmotion:
			frag = resolveEmotion(v)
		case FacetQuestGroup:
			frag = resolveQuestTable(e.catalog.QuestGroup, v)
		case FacetCharacter:
			if mode == dialogue.ModeScene {
				res, err := e.scenes.resolve(ctx, r, v)
				if err != nil {
					return Query{}, err
				}
				q.Scene = res
				frag = res.Where
			} else {
				frag, _ = e.characters.resolve(v)
			}
		case FacetContext:
			frag = resolveQuestTable(e.catalog.Context, v)
		}
		if frag != nil {
			where = append(where, frag)
		}
	}

	q.Where = where
	return q, nil
}
