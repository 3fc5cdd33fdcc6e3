package catalog

import "github.com/MikeSquared-Agency/voxarchive/internal/filter"

// Rule is the expansion of one subtype selection. The set of rules is closed:
// every variant turns itself into a predicate fragment, so adding a variant
// without a fragment does not compile.
type Rule interface {
	Fragment(files Files) filter.Predicate
}

// SubtypeSet matches records whose subtype is one of Subtypes.
type SubtypeSet struct {
	Subtypes []string
}

// Compound matches records from one of Quests whose topic text is one of Topics.
type Compound struct {
	Quests []string
	Topics []string
}

// TopicContains matches records whose topic text contains any of Phrases.
type TopicContains struct {
	Phrases []string
}

// SceneFiles selects scene-file records and switches retrieval into scene mode.
type SceneFiles struct{}

func (r SubtypeSet) Fragment(Files) filter.Predicate {
	return filter.In{Field: filter.FieldSubtype, Values: r.Subtypes}
}

func (r Compound) Fragment(Files) filter.Predicate {
	return filter.And{
		filter.In{Field: filter.FieldQuestName, Values: r.Quests, Fold: true},
		filter.In{Field: filter.FieldTopicText, Values: r.Topics, Fold: true},
	}
}

func (r TopicContains) Fragment(Files) filter.Predicate {
	matches := make(filter.Or, 0, len(r.Phrases))
	for _, p := range r.Phrases {
		matches = append(matches, filter.Contains{Field: filter.FieldTopicText, Value: p})
	}
	return matches
}

func (SceneFiles) Fragment(files Files) filter.Predicate {
	return filter.HasPrefix{Field: filter.FieldFileName, Value: files.ScenePrefix}
}
