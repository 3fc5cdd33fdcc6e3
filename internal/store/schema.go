package store

import (
	"context"
	"fmt"
)

// schema is applied statement by statement; every statement is idempotent.
var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS pg_trgm`,
	`CREATE TABLE IF NOT EXISTS dialogue_lines (
		id              uuid PRIMARY KEY,
		voice_type      text NOT NULL DEFAULT '',
		quest_name      text NOT NULL DEFAULT '',
		branch          text NOT NULL DEFAULT '',
		topic_text      text NOT NULL DEFAULT '',
		response_text   text NOT NULL CHECK (response_text <> ''),
		emotion         text NOT NULL DEFAULT '',
		subtype         text NOT NULL DEFAULT '',
		topic_info      text NOT NULL DEFAULT '',
		audio_file_name text NOT NULL DEFAULT '',
		file_name       text NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS dialogue_lines_scene_order_idx ON dialogue_lines (file_name, topic_info, id)`,
	`CREATE INDEX IF NOT EXISTS dialogue_lines_standard_order_idx ON dialogue_lines (topic_info, file_name, id)`,
	`CREATE INDEX IF NOT EXISTS dialogue_lines_voice_idx ON dialogue_lines (voice_type, file_name)`,
	`CREATE INDEX IF NOT EXISTS dialogue_lines_quest_idx ON dialogue_lines (lower(quest_name))`,
	`CREATE INDEX IF NOT EXISTS dialogue_lines_topic_trgm_idx ON dialogue_lines USING gin (topic_text gin_trgm_ops)`,
	`CREATE INDEX IF NOT EXISTS dialogue_lines_response_trgm_idx ON dialogue_lines USING gin (response_text gin_trgm_ops)`,
}

// Migrate creates the dialogue_lines table and its indexes if they are missing.
func (s *Store) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
