// Package catalog holds the static lookup tables that map user-facing facet values
// (characters, quest groups, narrative contexts, subtype selections) onto raw corpus
// tags. A Catalog is built once at startup and never mutated; every accessor returns
// copies so callers cannot change it either.
package catalog

import (
	"sort"
	"strings"
)

// Files describes the file-name convention that splits the corpus in two.
type Files struct {
	StandardPrefix string `json:"standardPrefix"`
	ScenePrefix    string `json:"scenePrefix"`
}

type entry struct {
	name   string
	values []string
}

// table is a case-insensitive name -> values lookup.
type table map[string]entry

func (t table) lookup(name string) ([]string, bool) {
	e, ok := t[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	out := make([]string, len(e.values))
	copy(out, e.values)
	return out, true
}

func (t table) names() []string {
	out := make([]string, 0, len(t))
	for _, e := range t {
		out = append(out, e.name)
	}
	sort.Strings(out)
	return out
}

type ruleEntry struct {
	name string
	rule Rule
}

// Catalog is the immutable set of lookup tables used by the retrieval engine.
type Catalog struct {
	files           Files
	sceneMarker     string
	voices          map[string]entry // single value per name
	characterQuests table
	questGroups     table
	contexts        table
	subtypes        map[string]ruleEntry
}

// Files returns the file-name prefixes of the two corpus halves.
func (c *Catalog) Files() Files { return c.files }

// SceneMarker returns the subtype selection that switches retrieval into scene mode.
func (c *Catalog) SceneMarker() string { return c.sceneMarker }

// IsSceneMarker reports whether selection is the scene-mode marker.
func (c *Catalog) IsSceneMarker(selection string) bool {
	return strings.EqualFold(strings.TrimSpace(selection), c.sceneMarker)
}

// Voice returns the voice type a character speaks with in scene files.
func (c *Catalog) Voice(character string) (string, bool) {
	e, ok := c.voices[strings.ToLower(strings.TrimSpace(character))]
	if !ok {
		return "", false
	}
	return e.values[0], true
}

// CharacterQuests returns the quest buckets holding a character's standard lines.
func (c *Catalog) CharacterQuests(character string) ([]string, bool) {
	return c.characterQuests.lookup(character)
}

// QuestGroup returns the quests implementing a named quest group.
func (c *Catalog) QuestGroup(name string) ([]string, bool) {
	return c.questGroups.lookup(name)
}

// Context returns the quests implementing a named narrative context.
func (c *Catalog) Context(name string) ([]string, bool) {
	return c.contexts.lookup(name)
}

// Subtype returns the rule a subtype selection expands to.
func (c *Catalog) Subtype(selection string) (Rule, bool) {
	e, ok := c.subtypes[strings.ToLower(strings.TrimSpace(selection))]
	if !ok {
		return nil, false
	}
	return e.rule, true
}

// Characters lists every character known to either character table.
func (c *Catalog) Characters() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range c.voices {
		if !seen[strings.ToLower(e.name)] {
			seen[strings.ToLower(e.name)] = true
			out = append(out, e.name)
		}
	}
	for _, e := range c.characterQuests {
		if !seen[strings.ToLower(e.name)] {
			seen[strings.ToLower(e.name)] = true
			out = append(out, e.name)
		}
	}
	sort.Strings(out)
	return out
}

func (c *Catalog) QuestGroups() []string { return c.questGroups.names() }

func (c *Catalog) Contexts() []string { return c.contexts.names() }

// Subtypes lists the configured subtype selections.
func (c *Catalog) Subtypes() []string {
	out := make([]string, 0, len(c.subtypes))
	for _, e := range c.subtypes {
		out = append(out, e.name)
	}
	sort.Strings(out)
	return out
}

// Summary counts the entries of each table.
type Summary struct {
	Files           Files `json:"files"`
	Voices          int   `json:"voices"`
	CharacterQuests int   `json:"characterQuests"`
	QuestGroups     int   `json:"questGroups"`
	Contexts        int   `json:"contexts"`
	Subtypes        int   `json:"subtypes"`
}

func (c *Catalog) Summary() Summary {
	return Summary{
		Files:           c.files,
		Voices:          len(c.voices),
		CharacterQuests: len(c.characterQuests),
		QuestGroups:     len(c.questGroups),
		Contexts:        len(c.contexts),
		Subtypes:        len(c.subtypes),
	}
}
