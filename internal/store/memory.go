package store

import (
	"context"
	"sort"
	"strings"

	"github.com/MikeSquared-Agency/voxarchive/internal/dialogue"
	"github.com/MikeSquared-Agency/voxarchive/internal/filter"
)

// Memory is an in-process Snapshotter over a fixed set of records. The records are
// copied on construction and never change, so every snapshot is trivially consistent.
type Memory struct {
	records []dialogue.Record
}

func NewMemory(records []dialogue.Record) *Memory {
	cp := make([]dialogue.Record, len(records))
	copy(cp, records)
	return &Memory{records: cp}
}

func (m *Memory) ReadSnapshot(ctx context.Context, fn func(Reader) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(memReader{records: m.records})
}

type memReader struct {
	records []dialogue.Record
}

func (r memReader) matching(p filter.Predicate) []dialogue.Record {
	var out []dialogue.Record
	for _, rec := range r.records {
		if filter.Match(p, rec) {
			out = append(out, rec)
		}
	}
	return out
}

func (r memReader) Find(ctx context.Context, p filter.Predicate, opts FindOptions) ([]dialogue.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matched := r.matching(p)
	sort.SliceStable(matched, func(i, j int) bool {
		if c := filter.Compare(matched[i], matched[j], opts.OrderBy); c != 0 {
			return c < 0
		}
		return strings.Compare(matched[i].ID.String(), matched[j].ID.String()) < 0
	})

	if opts.Skip > 0 {
		if opts.Skip >= len(matched) {
			return []dialogue.Record{}, nil
		}
		matched = matched[opts.Skip:]
	}
	if opts.Take > 0 && opts.Take < len(matched) {
		matched = matched[:opts.Take]
	}
	if matched == nil {
		matched = []dialogue.Record{}
	}
	return matched, nil
}

func (r memReader) Count(ctx context.Context, p filter.Predicate) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return len(r.matching(p)), nil
}

func (r memReader) FindDistinct(ctx context.Context, p filter.Predicate, field filter.Field) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	values := []string{}
	for _, rec := range r.matching(p) {
		v := filter.Value(rec, field)
		if !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}
	sort.Strings(values)
	return values, nil
}
