//go:build integration

package store

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/voxarchive/internal/dialogue"
	"github.com/MikeSquared-Agency/voxarchive/internal/filter"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})
	return s
}

// seed inserts records under a per-test file prefix and removes them afterwards.
func seed(t *testing.T, s *Store, prefix string, records []dialogue.Record) {
	t.Helper()
	ctx := context.Background()
	for _, r := range records {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		_, err := s.pool.Exec(ctx, `
			INSERT INTO dialogue_lines (id, voice_type, quest_name, branch, topic_text, response_text, emotion, subtype, topic_info, audio_file_name, file_name)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			r.ID, r.VoiceType, r.QuestName, r.Branch, r.TopicText, r.ResponseText,
			r.Emotion, r.Subtype, r.TopicInfo, r.AudioFileName, prefix+r.FileName,
		)
		if err != nil {
			t.Fatalf("seed insert failed: %v", err)
		}
	}
	t.Cleanup(func() {
		s.pool.Exec(ctx, "DELETE FROM dialogue_lines WHERE file_name LIKE $1::text || '%'", prefix)
	})
}

func TestIntegration_SnapshotQueries(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	prefix := "sceneIT" + uuid.New().String()[:8]

	seed(t, s, prefix, []dialogue.Record{
		{VoiceType: "DLC1SeranaVoice", TopicText: "Is there another way?", ResponseText: "Maybe.", TopicInfo: "0002", FileName: "A"},
		{VoiceType: "MaleUniqueIsran", TopicText: "", ResponseText: "Another way? No.", TopicInfo: "0001", FileName: "A"},
		{VoiceType: "DLC1SeranaVoice", TopicText: "", ResponseText: "Let's go.", TopicInfo: "0001", FileName: "B"},
	})

	scoped := filter.HasPrefix{Field: filter.FieldFileName, Value: prefix}
	err := s.ReadSnapshot(ctx, func(r Reader) error {
		search := filter.And{scoped, filter.Or{
			filter.Contains{Field: filter.FieldTopicText, Value: "ANOTHER WAY"},
			filter.Contains{Field: filter.FieldResponseText, Value: "ANOTHER WAY"},
		}}
		n, err := r.Count(ctx, search)
		if err != nil {
			t.Fatalf("Count failed: %v", err)
		}
		if n != 2 {
			t.Errorf("expected 2 matches, got %d", n)
		}

		recs, err := r.Find(ctx, scoped, FindOptions{
			Take:    10,
			OrderBy: []filter.SortKey{filter.Asc(filter.FieldFileName), filter.Asc(filter.FieldTopicInfo)},
		})
		if err != nil {
			t.Fatalf("Find failed: %v", err)
		}
		if len(recs) != 3 {
			t.Fatalf("expected 3 records, got %d", len(recs))
		}
		if recs[0].ResponseText != "Another way? No." || recs[2].ResponseText != "Let's go." {
			t.Errorf("unexpected order: %+v", recs)
		}

		files, err := r.FindDistinct(ctx, filter.And{scoped,
			filter.Equals{Field: filter.FieldVoiceType, Value: "DLC1SeranaVoice"},
		}, filter.FieldFileName)
		if err != nil {
			t.Fatalf("FindDistinct failed: %v", err)
		}
		if len(files) != 2 {
			t.Errorf("expected 2 files, got %v", files)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ReadSnapshot failed: %v", err)
	}
}

func TestIntegration_OrderMatchesMemoryStore(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	prefix := "sceneIT" + uuid.New().String()[:8]

	recs := []dialogue.Record{
		{ResponseText: "lower b", TopicInfo: "0001", FileName: "b"},
		{ResponseText: "upper B", TopicInfo: "0001", FileName: "B"},
		{ResponseText: "underscore", TopicInfo: "0001", FileName: "_a"},
		{ResponseText: "lower a", TopicInfo: "0001", FileName: "a"},
		{ResponseText: "dash", TopicInfo: "0001", FileName: "-z"},
		{ResponseText: "upper A topic", TopicInfo: "B001", FileName: "A"},
		{ResponseText: "upper A", TopicInfo: "a001", FileName: "A"},
	}
	for i := range recs {
		recs[i].ID = uuid.New()
	}
	seed(t, s, prefix, recs)

	mem := make([]dialogue.Record, len(recs))
	copy(mem, recs)
	for i := range mem {
		mem[i].FileName = prefix + mem[i].FileName
	}

	scoped := filter.HasPrefix{Field: filter.FieldFileName, Value: prefix}
	opts := FindOptions{OrderBy: []filter.SortKey{filter.Asc(filter.FieldFileName), filter.Asc(filter.FieldTopicInfo)}}

	order := func(sn Snapshotter) []string {
		var out []string
		err := sn.ReadSnapshot(ctx, func(r Reader) error {
			found, err := r.Find(ctx, scoped, opts)
			for _, rec := range found {
				out = append(out, rec.ResponseText)
			}
			return err
		})
		if err != nil {
			t.Fatalf("Find failed: %v", err)
		}
		return out
	}

	got, want := order(s), order(NewMemory(mem))
	if len(got) != len(want) {
		t.Fatalf("postgres returned %d records, memory %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order differs at %d:\npostgres %q\nmemory   %q", i, got, want)
		}
	}
}

func TestIntegration_LikeWildcardsAreLiteral(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	prefix := "sceneIT" + uuid.New().String()[:8]

	seed(t, s, prefix, []dialogue.Record{
		{ResponseText: "100% sure", TopicInfo: "1", FileName: "A"},
		{ResponseText: "1000 sure", TopicInfo: "2", FileName: "A"},
	})

	err := s.ReadSnapshot(ctx, func(r Reader) error {
		n, err := r.Count(ctx, filter.And{
			filter.HasPrefix{Field: filter.FieldFileName, Value: prefix},
			filter.Contains{Field: filter.FieldResponseText, Value: "100%"},
		})
		if err != nil {
			t.Fatalf("Count failed: %v", err)
		}
		if n != 1 {
			t.Errorf("expected %% to match literally once, got %d", n)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ReadSnapshot failed: %v", err)
	}
}
