// Package filter is the predicate language the retrieval engine speaks to record stores.
//
// A Predicate is one of a closed set of variants (And, Or, Not, Contains, Equals, In,
// HasPrefix, HasSuffix). Stores translate predicates into their own query language;
// Match evaluates them directly against a record.
package filter

import (
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/voxarchive/internal/dialogue"
)

// Field names a filterable record attribute. Values double as column names.
type Field string

const (
	FieldVoiceType     Field = "voice_type"
	FieldQuestName     Field = "quest_name"
	FieldBranch        Field = "branch"
	FieldTopicText     Field = "topic_text"
	FieldResponseText  Field = "response_text"
	FieldEmotion       Field = "emotion"
	FieldSubtype       Field = "subtype"
	FieldTopicInfo     Field = "topic_info"
	FieldAudioFileName Field = "audio_file_name"
	FieldFileName      Field = "file_name"
)

// Fields lists every known field in column order.
var Fields = []Field{
	FieldVoiceType, FieldQuestName, FieldBranch, FieldTopicText, FieldResponseText,
	FieldEmotion, FieldSubtype, FieldTopicInfo, FieldAudioFileName, FieldFileName,
}

// Valid reports whether f is a known field.
func (f Field) Valid() bool {
	for _, known := range Fields {
		if f == known {
			return true
		}
	}
	return false
}

// Value returns the attribute of r named by f.
func Value(r dialogue.Record, f Field) string {
	switch f {
	case FieldVoiceType:
		return r.VoiceType
	case FieldQuestName:
		return r.QuestName
	case FieldBranch:
		return r.Branch
	case FieldTopicText:
		return r.TopicText
	case FieldResponseText:
		return r.ResponseText
	case FieldEmotion:
		return r.Emotion
	case FieldSubtype:
		return r.Subtype
	case FieldTopicInfo:
		return r.TopicInfo
	case FieldAudioFileName:
		return r.AudioFileName
	case FieldFileName:
		return r.FileName
	}
	return ""
}

// Predicate is a boolean condition over a record.
type Predicate interface {
	isPredicate()
}

// And matches when every member matches. An empty And matches everything.
type And []Predicate

// Or matches when any member matches. An empty Or matches nothing.
type Or []Predicate

// Not inverts P.
type Not struct {
	P Predicate
}

// Contains is a case-insensitive substring match.
type Contains struct {
	Field Field
	Value string
}

// Equals is an equality match, case-insensitive when Fold is set.
type Equals struct {
	Field Field
	Value string
	Fold  bool
}

// In is set membership. An empty set matches nothing.
type In struct {
	Field  Field
	Values []string
	Fold   bool
}

// HasPrefix matches values starting with Value, case-insensitive when Fold is set.
type HasPrefix struct {
	Field Field
	Value string
	Fold  bool
}

// HasSuffix matches values ending with Value (case-sensitive).
type HasSuffix struct {
	Field Field
	Value string
}

func (And) isPredicate()       {}
func (Or) isPredicate()        {}
func (Not) isPredicate()       {}
func (Contains) isPredicate()  {}
func (Equals) isPredicate()    {}
func (In) isPredicate()        {}
func (HasPrefix) isPredicate() {}
func (HasSuffix) isPredicate() {}

// AllOf joins the non-nil predicates with And. It returns nil when nothing is left
// and the predicate itself when only one is left.
func AllOf(ps ...Predicate) Predicate {
	kept := compact(ps)
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return And(kept)
}

// AnyOf joins the non-nil predicates with Or, with the same collapsing as AllOf.
func AnyOf(ps ...Predicate) Predicate {
	kept := compact(ps)
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return Or(kept)
}

func compact(ps []Predicate) []Predicate {
	kept := make([]Predicate, 0, len(ps))
	for _, p := range ps {
		if p != nil {
			kept = append(kept, p)
		}
	}
	return kept
}

// Match evaluates p against r. A nil predicate matches everything.
func Match(p Predicate, r dialogue.Record) bool {
	switch p := p.(type) {
	case nil:
		return true
	case And:
		for _, sub := range p {
			if !Match(sub, r) {
				return false
			}
		}
		return true
	case Or:
		for _, sub := range p {
			if Match(sub, r) {
				return true
			}
		}
		return false
	case Not:
		return !Match(p.P, r)
	case Contains:
		return strings.Contains(strings.ToLower(Value(r, p.Field)), strings.ToLower(p.Value))
	case Equals:
		v := Value(r, p.Field)
		if p.Fold {
			return strings.EqualFold(v, p.Value)
		}
		return v == p.Value
	case In:
		v := Value(r, p.Field)
		for _, want := range p.Values {
			if v == want || (p.Fold && strings.EqualFold(v, want)) {
				return true
			}
		}
		return false
	case HasPrefix:
		v := Value(r, p.Field)
		if p.Fold {
			return strings.HasPrefix(strings.ToLower(v), strings.ToLower(p.Value))
		}
		return strings.HasPrefix(v, p.Value)
	case HasSuffix:
		return strings.HasSuffix(Value(r, p.Field), p.Value)
	}
	panic(fmt.Sprintf("filter: unhandled predicate %T", p))
}
