package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MikeSquared-Agency/voxarchive/internal/filter"
)

const linesTable = "dialogue_lines"

const recordColumns = "id, voice_type, quest_name, branch, topic_text, response_text, emotion, subtype, topic_info, audio_file_name, file_name"

// sqlBuilder compiles predicates into a parameterized WHERE clause.
type sqlBuilder struct {
	args []any
}

// text binds a string parameter. The cast keeps Postgres from guessing the type of
// parameters used with ||.
func (b *sqlBuilder) text(v string) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args)) + "::text"
}

func (b *sqlBuilder) textArray(v []string) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args)) + "::text[]"
}

func (b *sqlBuilder) integer(v int) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func column(f filter.Field) (string, error) {
	if !f.Valid() {
		return "", fmt.Errorf("unknown field %q", f)
	}
	return string(f), nil
}

func (b *sqlBuilder) where(p filter.Predicate) (string, error) {
	switch p := p.(type) {
	case nil:
		return "TRUE", nil
	case filter.And:
		return b.join(p, " AND ", "TRUE")
	case filter.Or:
		return b.join(p, " OR ", "FALSE")
	case filter.Not:
		inner, err := b.where(p.P)
		if err != nil {
			return "", err
		}
		return "NOT (" + inner + ")", nil
	case filter.Contains:
		col, err := column(p.Field)
		if err != nil {
			return "", err
		}
		return col + " ILIKE '%' || " + b.text(escapeLike(p.Value)) + " || '%'", nil
	case filter.Equals:
		col, err := column(p.Field)
		if err != nil {
			return "", err
		}
		if p.Fold {
			return "lower(" + col + ") = lower(" + b.text(p.Value) + ")", nil
		}
		return col + " = " + b.text(p.Value), nil
	case filter.In:
		col, err := column(p.Field)
		if err != nil {
			return "", err
		}
		if len(p.Values) == 0 {
			return "FALSE", nil
		}
		if p.Fold {
			lowered := make([]string, len(p.Values))
			for i, v := range p.Values {
				lowered[i] = strings.ToLower(v)
			}
			return "lower(" + col + ") = ANY(" + b.textArray(lowered) + ")", nil
		}
		return col + " = ANY(" + b.textArray(p.Values) + ")", nil
	case filter.HasPrefix:
		col, err := column(p.Field)
		if err != nil {
			return "", err
		}
		op := " LIKE "
		if p.Fold {
			op = " ILIKE "
		}
		return col + op + b.text(escapeLike(p.Value)) + " || '%'", nil
	case filter.HasSuffix:
		col, err := column(p.Field)
		if err != nil {
			return "", err
		}
		return col + " LIKE '%' || " + b.text(escapeLike(p.Value)), nil
	}
	return "", fmt.Errorf("unsupported predicate %T", p)
}

func (b *sqlBuilder) join(ps []filter.Predicate, sep, empty string) (string, error) {
	if len(ps) == 0 {
		return empty, nil
	}
	parts := make([]string, 0, len(ps))
	for _, sub := range ps {
		s, err := b.where(sub)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

// byteOrder makes Postgres compare text by bytes, the order the memory store and
// filter.Compare use, whatever the database collation is.
const byteOrder = ` COLLATE "C"`

// orderBy renders keys with id as the final tie-break so paging is deterministic.
func orderBy(keys []filter.SortKey) (string, error) {
	parts := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		col, err := column(k.Field)
		if err != nil {
			return "", err
		}
		dir := " ASC"
		if k.Desc {
			dir = " DESC"
		}
		parts = append(parts, col+byteOrder+dir)
	}
	parts = append(parts, "id ASC")
	return " ORDER BY " + strings.Join(parts, ", "), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralises LIKE wildcards in user input (backslash is the default escape).
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
