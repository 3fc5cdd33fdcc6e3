package store

import (
	"reflect"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/voxarchive/internal/filter"
)

func TestWhere(t *testing.T) {
	tests := []struct {
		name     string
		p        filter.Predicate
		wantSQL  string
		wantArgs []any
	}{
		{"nil", nil, "TRUE", nil},
		{"empty and", filter.And{}, "TRUE", nil},
		{"empty or", filter.Or{}, "FALSE", nil},
		{
			"contains",
			filter.Contains{Field: filter.FieldTopicText, Value: "another way"},
			"topic_text ILIKE '%' || $1::text || '%'",
			[]any{"another way"},
		},
		{
			"contains escapes wildcards",
			filter.Contains{Field: filter.FieldResponseText, Value: `100%_\`},
			"response_text ILIKE '%' || $1::text || '%'",
			[]any{`100\%\_\\`},
		},
		{
			"equals",
			filter.Equals{Field: filter.FieldVoiceType, Value: "DLC1SeranaVoice"},
			"voice_type = $1::text",
			[]any{"DLC1SeranaVoice"},
		},
		{
			"equals fold",
			filter.Equals{Field: filter.FieldSubtype, Value: "Hit", Fold: true},
			"lower(subtype) = lower($1::text)",
			[]any{"Hit"},
		},
		{
			"in fold lowers values",
			filter.In{Field: filter.FieldQuestName, Values: []string{"C00", "DB01"}, Fold: true},
			"lower(quest_name) = ANY($1::text[])",
			[]any{[]string{"c00", "db01"}},
		},
		{
			"in exact",
			filter.In{Field: filter.FieldSubtype, Values: []string{"Attack"}},
			"subtype = ANY($1::text[])",
			[]any{[]string{"Attack"}},
		},
		{"empty in", filter.In{Field: filter.FieldSubtype}, "FALSE", nil},
		{
			"prefix fold",
			filter.HasPrefix{Field: filter.FieldEmotion, Value: "Happy", Fold: true},
			"emotion ILIKE $1::text || '%'",
			[]any{"Happy"},
		},
		{
			"prefix exact",
			filter.HasPrefix{Field: filter.FieldFileName, Value: "scene"},
			"file_name LIKE $1::text || '%'",
			[]any{"scene"},
		},
		{
			"not suffix",
			filter.Not{P: filter.HasSuffix{Field: filter.FieldResponseText, Value: "==="}},
			"NOT (response_text LIKE '%' || $1::text)",
			[]any{"==="},
		},
		{
			"nested numbering",
			filter.And{
				filter.HasPrefix{Field: filter.FieldFileName, Value: "scene"},
				filter.Or{
					filter.Contains{Field: filter.FieldTopicText, Value: "Whiterun"},
					filter.Contains{Field: filter.FieldResponseText, Value: "Whiterun"},
				},
			},
			"(file_name LIKE $1::text || '%' AND (topic_text ILIKE '%' || $2::text || '%' OR response_text ILIKE '%' || $3::text || '%'))",
			[]any{"scene", "Whiterun", "Whiterun"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b sqlBuilder
			got, err := b.where(tt.p)
			if err != nil {
				t.Fatalf("where() error: %v", err)
			}
			if got != tt.wantSQL {
				t.Errorf("where() = %q, want %q", got, tt.wantSQL)
			}
			if !reflect.DeepEqual(b.args, tt.wantArgs) {
				t.Errorf("args = %#v, want %#v", b.args, tt.wantArgs)
			}
		})
	}
}

func TestWhere_UnknownField(t *testing.T) {
	var b sqlBuilder
	_, err := b.where(filter.Equals{Field: "password", Value: "x"})
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestFindQuery(t *testing.T) {
	query, args, err := findQuery(
		filter.HasPrefix{Field: filter.FieldFileName, Value: "scene"},
		FindOptions{
			Skip:    20,
			Take:    10,
			OrderBy: []filter.SortKey{filter.Asc(filter.FieldFileName), filter.Asc(filter.FieldTopicInfo)},
		},
	)
	if err != nil {
		t.Fatalf("findQuery error: %v", err)
	}
	if !strings.HasSuffix(query, `WHERE file_name LIKE $1::text || '%' ORDER BY file_name COLLATE "C" ASC, topic_info COLLATE "C" ASC, id ASC OFFSET $2 LIMIT $3`) {
		t.Errorf("unexpected query: %s", query)
	}
	if !reflect.DeepEqual(args, []any{"scene", 20, 10}) {
		t.Errorf("unexpected args: %#v", args)
	}
}

func TestFindQuery_NoPaging(t *testing.T) {
	query, args, err := findQuery(nil, FindOptions{})
	if err != nil {
		t.Fatalf("findQuery error: %v", err)
	}
	if strings.Contains(query, "OFFSET") || strings.Contains(query, "LIMIT") {
		t.Errorf("expected no paging clauses, got %s", query)
	}
	if len(args) != 0 {
		t.Errorf("expected no args, got %#v", args)
	}
}

func TestDistinctQuery(t *testing.T) {
	query, _, err := distinctQuery(filter.Equals{Field: filter.FieldVoiceType, Value: "v"}, filter.FieldFileName)
	if err != nil {
		t.Fatalf("distinctQuery error: %v", err)
	}
	want := "SELECT DISTINCT file_name FROM dialogue_lines WHERE voice_type = $1::text ORDER BY file_name COLLATE \"C\""
	if query != want {
		t.Errorf("distinctQuery = %q, want %q", query, want)
	}

	if _, _, err := distinctQuery(nil, "nope"); err == nil {
		t.Error("expected error for unknown field")
	}
}
