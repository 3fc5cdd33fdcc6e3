package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

type fileSpec struct {
	Files struct {
		StandardPrefix string `yaml:"standardPrefix"`
		ScenePrefix    string `yaml:"scenePrefix"`
	} `yaml:"files"`
	Voices          map[string]string      `yaml:"voices"`
	CharacterQuests map[string][]string    `yaml:"characterQuests"`
	QuestGroups     map[string][]string    `yaml:"questGroups"`
	Contexts        map[string][]string    `yaml:"contexts"`
	Subtypes        map[string]subtypeSpec `yaml:"subtypes"`
}

// subtypeSpec is the YAML form of a Rule. Exactly one shape must be filled in.
type subtypeSpec struct {
	Subtypes      []string `yaml:"subtypes"`
	Quests        []string `yaml:"quests"`
	Topics        []string `yaml:"topics"`
	TopicContains []string `yaml:"topicContains"`
	Scene         bool     `yaml:"scene"`
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from path, or the built-in default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse builds a catalog from its YAML form.
func Parse(data []byte) (*Catalog, error) {
	var spec fileSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{
		files: Files{
			StandardPrefix: strings.TrimSpace(spec.Files.StandardPrefix),
			ScenePrefix:    strings.TrimSpace(spec.Files.ScenePrefix),
		},
		voices:   make(map[string]entry, len(spec.Voices)),
		subtypes: make(map[string]ruleEntry, len(spec.Subtypes)),
	}
	if c.files.StandardPrefix == "" || c.files.ScenePrefix == "" {
		return nil, fmt.Errorf("files: both standardPrefix and scenePrefix are required")
	}
	if strings.HasPrefix(c.files.StandardPrefix, c.files.ScenePrefix) ||
		strings.HasPrefix(c.files.ScenePrefix, c.files.StandardPrefix) {
		return nil, fmt.Errorf("files: prefixes %q and %q overlap", c.files.StandardPrefix, c.files.ScenePrefix)
	}

	for name, voice := range spec.Voices {
		key, err := tableKey("voices", name, c.voices)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(voice) == "" {
			return nil, fmt.Errorf("voices: %q has no voice type", name)
		}
		c.voices[key] = entry{name: strings.TrimSpace(name), values: []string{strings.TrimSpace(voice)}}
	}

	var err error
	if c.characterQuests, err = buildTable("characterQuests", spec.CharacterQuests); err != nil {
		return nil, err
	}
	if c.questGroups, err = buildTable("questGroups", spec.QuestGroups); err != nil {
		return nil, err
	}
	if c.contexts, err = buildTable("contexts", spec.Contexts); err != nil {
		return nil, err
	}

	for name, s := range spec.Subtypes {
		key, err := tableKey("subtypes", name, c.subtypes)
		if err != nil {
			return nil, err
		}
		rule, err := s.rule()
		if err != nil {
			return nil, fmt.Errorf("subtypes: %q: %w", name, err)
		}
		if _, ok := rule.(SceneFiles); ok {
			if c.sceneMarker != "" {
				return nil, fmt.Errorf("subtypes: both %q and %q are scene markers", c.sceneMarker, name)
			}
			c.sceneMarker = strings.TrimSpace(name)
		}
		c.subtypes[key] = ruleEntry{name: strings.TrimSpace(name), rule: rule}
	}
	if c.sceneMarker == "" {
		return nil, fmt.Errorf("subtypes: no scene marker configured")
	}

	return c, nil
}

func (s subtypeSpec) rule() (Rule, error) {
	var shapes []Rule
	if len(s.Subtypes) > 0 {
		shapes = append(shapes, SubtypeSet{Subtypes: clean(s.Subtypes)})
	}
	if len(s.Quests) > 0 || len(s.Topics) > 0 {
		if len(s.Quests) == 0 || len(s.Topics) == 0 {
			return nil, fmt.Errorf("compound rule needs both quests and topics")
		}
		shapes = append(shapes, Compound{Quests: clean(s.Quests), Topics: clean(s.Topics)})
	}
	if len(s.TopicContains) > 0 {
		shapes = append(shapes, TopicContains{Phrases: clean(s.TopicContains)})
	}
	if s.Scene {
		shapes = append(shapes, SceneFiles{})
	}
	if len(shapes) != 1 {
		return nil, fmt.Errorf("expected exactly one rule shape, got %d", len(shapes))
	}
	return shapes[0], nil
}

func buildTable(section string, raw map[string][]string) (table, error) {
	t := make(table, len(raw))
	for name, values := range raw {
		key, err := tableKey(section, name, t)
		if err != nil {
			return nil, err
		}
		values = clean(values)
		if len(values) == 0 {
			return nil, fmt.Errorf("%s: %q has no values", section, name)
		}
		t[key] = entry{name: strings.TrimSpace(name), values: values}
	}
	return t, nil
}

func tableKey[V any](section, name string, existing map[string]V) (string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return "", fmt.Errorf("%s: empty name", section)
	}
	if _, dup := existing[key]; dup {
		return "", fmt.Errorf("%s: %q is defined twice", section, name)
	}
	return key, nil
}

func clean(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
