package catalog

import (
	"reflect"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/voxarchive/internal/filter"
)

func TestDefault_Loads(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	if c.Files().StandardPrefix != "dialogueExport" {
		t.Errorf("expected standard prefix dialogueExport, got %q", c.Files().StandardPrefix)
	}
	if c.Files().ScenePrefix != "scene" {
		t.Errorf("expected scene prefix scene, got %q", c.Files().ScenePrefix)
	}
	if c.SceneMarker() != "Scenes" {
		t.Errorf("expected scene marker Scenes, got %q", c.SceneMarker())
	}
}

func TestDefault_CombatRule(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	rule, ok := c.Subtype("combat")
	if !ok {
		t.Fatal("expected Combat rule")
	}
	set, ok := rule.(SubtypeSet)
	if !ok {
		t.Fatalf("expected SubtypeSet, got %T", rule)
	}
	want := []string{"Attack", "Hit", "NormalToCombat", "CombatToNormal", "BleedOut", "Taunt"}
	if !reflect.DeepEqual(set.Subtypes, want) {
		t.Errorf("Combat subtypes = %v, want %v", set.Subtypes, want)
	}
}

func TestLookups_CaseInsensitive(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}

	if v, ok := c.Voice("  serana "); !ok || v != "DLC1SeranaVoice" {
		t.Errorf("Voice(serana) = %q, %v", v, ok)
	}
	if _, ok := c.Voice("Nazeem"); ok {
		t.Error("expected unknown character to miss")
	}
	if q, ok := c.QuestGroup("the companions"); !ok || len(q) != 6 {
		t.Errorf("QuestGroup(the companions) = %v, %v", q, ok)
	}
	if _, ok := c.Context("Heists"); ok {
		t.Error("expected unknown context to miss")
	}
	if !c.IsSceneMarker("scenes") {
		t.Error("expected scenes to be the scene marker")
	}
}

func TestLookups_ReturnCopies(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}

	first, _ := c.CharacterQuests("Lydia")
	first[0] = "modified"

	second, _ := c.CharacterQuests("Lydia")
	want := []string{"HousecarlWhiterun", "DialogueFollower"}
	if !reflect.DeepEqual(second, want) {
		t.Errorf("CharacterQuests should return copies, got %v", second)
	}
}

func TestCharacters_UnionOfTables(t *testing.T) {
	c, err := Parse([]byte(`
files: {standardPrefix: dialogueExport, scenePrefix: scene}
voices: {Serana: DLC1SeranaVoice, Isran: DLC1MaleUniqueIsran}
characterQuests: {serana: [DLC1VQ02], Lydia: [HousecarlWhiterun]}
subtypes: {Scenes: {scene: true}}
`))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	got := c.Characters()
	if len(got) != 3 {
		t.Errorf("expected 3 characters, got %v", got)
	}
}

func TestRuleFragments(t *testing.T) {
	files := Files{StandardPrefix: "dialogueExport", ScenePrefix: "scene"}

	tests := []struct {
		name string
		rule Rule
		want filter.Predicate
	}{
		{
			name: "subtype set",
			rule: SubtypeSet{Subtypes: []string{"Idle"}},
			want: filter.In{Field: filter.FieldSubtype, Values: []string{"Idle"}},
		},
		{
			name: "compound",
			rule: Compound{Quests: []string{"A"}, Topics: []string{"B"}},
			want: filter.And{
				filter.In{Field: filter.FieldQuestName, Values: []string{"A"}, Fold: true},
				filter.In{Field: filter.FieldTopicText, Values: []string{"B"}, Fold: true},
			},
		},
		{
			name: "topic contains",
			rule: TopicContains{Phrases: []string{"x", "y"}},
			want: filter.Or{
				filter.Contains{Field: filter.FieldTopicText, Value: "x"},
				filter.Contains{Field: filter.FieldTopicText, Value: "y"},
			},
		},
		{
			name: "scene files",
			rule: SceneFiles{},
			want: filter.HasPrefix{Field: filter.FieldFileName, Value: "scene"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rule.Fragment(files)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Fragment() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing prefixes",
			yaml:    `subtypes: {Scenes: {scene: true}}`,
			wantErr: "are required",
		},
		{
			name:    "overlapping prefixes",
			yaml:    "files: {standardPrefix: scene, scenePrefix: sceneX}\nsubtypes: {Scenes: {scene: true}}",
			wantErr: "overlap",
		},
		{
			name:    "no scene marker",
			yaml:    "files: {standardPrefix: a, scenePrefix: b}\nsubtypes: {Idle: {subtypes: [Idle]}}",
			wantErr: "no scene marker",
		},
		{
			name:    "two rule shapes",
			yaml:    "files: {standardPrefix: a, scenePrefix: b}\nsubtypes: {Scenes: {scene: true, subtypes: [Idle]}}",
			wantErr: "exactly one rule shape",
		},
		{
			name:    "half compound",
			yaml:    "files: {standardPrefix: a, scenePrefix: b}\nsubtypes: {Scenes: {scene: true}, T: {quests: [Q]}}",
			wantErr: "both quests and topics",
		},
		{
			name:    "duplicate by case",
			yaml:    "files: {standardPrefix: a, scenePrefix: b}\nquestGroups: {X: [A], x: [B]}\nsubtypes: {Scenes: {scene: true}}",
			wantErr: "defined twice",
		},
		{
			name:    "empty group",
			yaml:    "files: {standardPrefix: a, scenePrefix: b}\ncontexts: {X: []}\nsubtypes: {Scenes: {scene: true}}",
			wantErr: "has no values",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(t.TempDir() + "/nope.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}
