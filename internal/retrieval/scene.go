package retrieval

import (
	"context"
	"fmt"

	"github.com/MikeSquared-Agency/voxarchive/internal/catalog"
	"github.com/MikeSquared-Agency/voxarchive/internal/filter"
	"github.com/MikeSquared-Agency/voxarchive/internal/store"
)

// ScenePath records how a scene-mode character facet was resolved.
type ScenePath string

const (
	SceneNone             ScenePath = ""
	SceneFiles            ScenePath = "files"
	SceneFallbackUnmapped ScenePath = "fallback_unmapped"
	SceneFallbackNoScenes ScenePath = "fallback_no_scenes"
)

type sceneResolution struct {
	Where filter.Predicate
	Path  ScenePath
	Files []string
}

// sceneResolver turns a character into the set of scene files the character speaks
// in. Constraining on whole files rather than on voice type keeps every other
// speaker's side of each conversation in the result.
type sceneResolver struct {
	catalog *catalog.Catalog
}

func (s sceneResolver) resolve(ctx context.Context, r store.Reader, character string) (sceneResolution, error) {
	if character == "" {
		return sceneResolution{Path: SceneNone}, nil
	}

	voice, ok := s.catalog.Voice(character)
	if !ok {
		return sceneResolution{Where: textContains(character), Path: SceneFallbackUnmapped}, nil
	}

	files, err := r.FindDistinct(ctx, filter.And{
		filter.HasPrefix{Field: filter.FieldFileName, Value: s.catalog.Files().ScenePrefix},
		filter.Equals{Field: filter.FieldVoiceType, Value: voice},
	}, filter.FieldFileName)
	if err != nil {
		return sceneResolution{}, fmt.Errorf("resolve scene files for %q: %w", character, err)
	}
	if len(files) == 0 {
		return sceneResolution{Where: textContains(character), Path: SceneFallbackNoScenes}, nil
	}

	return sceneResolution{
		Where: filter.In{Field: filter.FieldFileName, Values: files},
		Path:  SceneFiles,
		Files: files,
	}, nil
}
