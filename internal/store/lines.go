package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/MikeSquared-Agency/voxarchive/internal/dialogue"
	"github.com/MikeSquared-Agency/voxarchive/internal/filter"
	"github.com/MikeSquared-Agency/voxarchive/internal/tracer"
)

// ReadSnapshot runs fn inside a read-only repeatable-read transaction, so a page
// and its total count come from the same snapshot.
func (s *Store) ReadSnapshot(ctx context.Context, fn func(Reader) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return fmt.Errorf("begin read snapshot: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgReader{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit read snapshot: %w", err)
	}
	return nil
}

type pgReader struct {
	tx pgx.Tx
}

func (r *pgReader) Find(ctx context.Context, p filter.Predicate, opts FindOptions) ([]dialogue.Record, error) {
	ctx, span := tracer.Start(ctx, "store.Find")
	defer span.End()

	query, args, err := findQuery(p, opts)
	if err != nil {
		return nil, fmt.Errorf("build find query: %w", err)
	}
	span.SetAttributes(attribute.Int("store.skip", opts.Skip), attribute.Int("store.take", opts.Take))

	rows, err := r.tx.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("find dialogue lines: %w", err)
	}
	defer rows.Close()

	records := []dialogue.Record{}
	for rows.Next() {
		var rec dialogue.Record
		if err := rows.Scan(
			&rec.ID, &rec.VoiceType, &rec.QuestName, &rec.Branch, &rec.TopicText, &rec.ResponseText,
			&rec.Emotion, &rec.Subtype, &rec.TopicInfo, &rec.AudioFileName, &rec.FileName,
		); err != nil {
			return nil, fmt.Errorf("scan dialogue line: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return records, nil
}

func (r *pgReader) Count(ctx context.Context, p filter.Predicate) (int, error) {
	ctx, span := tracer.Start(ctx, "store.Count")
	defer span.End()

	query, args, err := countQuery(p)
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var n int
	if err := r.tx.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("count dialogue lines: %w", err)
	}
	return n, nil
}

func (r *pgReader) FindDistinct(ctx context.Context, p filter.Predicate, field filter.Field) ([]string, error) {
	ctx, span := tracer.Start(ctx, "store.FindDistinct",
		trace.WithAttributes(attribute.String("store.field", string(field))))
	defer span.End()

	query, args, err := distinctQuery(p, field)
	if err != nil {
		return nil, fmt.Errorf("build distinct query: %w", err)
	}

	rows, err := r.tx.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("find distinct %s: %w", field, err)
	}
	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect distinct %s: %w", field, err)
	}
	return values, nil
}

func findQuery(p filter.Predicate, opts FindOptions) (string, []any, error) {
	var b sqlBuilder
	where, err := b.where(p)
	if err != nil {
		return "", nil, err
	}
	order, err := orderBy(opts.OrderBy)
	if err != nil {
		return "", nil, err
	}
	query := "SELECT " + recordColumns + " FROM " + linesTable + " WHERE " + where + order
	if opts.Skip > 0 {
		query += " OFFSET " + b.integer(opts.Skip)
	}
	if opts.Take > 0 {
		query += " LIMIT " + b.integer(opts.Take)
	}
	return query, b.args, nil
}

func countQuery(p filter.Predicate) (string, []any, error) {
	var b sqlBuilder
	where, err := b.where(p)
	if err != nil {
		return "", nil, err
	}
	return "SELECT count(*) FROM " + linesTable + " WHERE " + where, b.args, nil
}

func distinctQuery(p filter.Predicate, field filter.Field) (string, []any, error) {
	col, err := column(field)
	if err != nil {
		return "", nil, err
	}
	var b sqlBuilder
	where, err := b.where(p)
	if err != nil {
		return "", nil, err
	}
	return "SELECT DISTINCT " + col + " FROM " + linesTable + " WHERE " + where + " ORDER BY " + col + byteOrder, b.args, nil
}
