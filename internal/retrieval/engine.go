// Package retrieval turns user-facing facets into queries over the dialogue corpus.
package retrieval

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/MikeSquared-Agency/voxarchive/internal/apperr"
	"github.com/MikeSquared-Agency/voxarchive/internal/catalog"
	"github.com/MikeSquared-Agency/voxarchive/internal/dialogue"
	"github.com/MikeSquared-Agency/voxarchive/internal/filter"
	"github.com/MikeSquared-Agency/voxarchive/internal/metrics"
	"github.com/MikeSquared-Agency/voxarchive/internal/store"
	"github.com/MikeSquared-Agency/voxarchive/internal/tracer"
)

// Engine answers retrieval requests. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	catalog    *catalog.Catalog
	store      store.Snapshotter
	logger     *slog.Logger
	characters characterResolver
	scenes     sceneResolver
}

func New(c *catalog.Catalog, s store.Snapshotter, logger *slog.Logger) *Engine {
	return &Engine{
		catalog:    c,
		store:      s,
		logger:     logger,
		characters: characterResolver{catalog: c},
		scenes:     sceneResolver{catalog: c},
	}
}

// Normalize trims facet values and resolves page and limit defaults for the
// request's mode.
func (e *Engine) Normalize(req Request) Request {
	out := Request{
		Search:     req.facet(FacetSearch),
		Subtype:    strings.Join(selections(req.Subtype), ","),
		City:       req.facet(FacetCity),
		Emotion:    req.facet(FacetEmotion),
		QuestGroup: req.facet(FacetQuestGroup),
		Context:    req.facet(FacetContext),
		Character:  req.facet(FacetCharacter),
	}
	out.Page, out.Limit = paging(req, e.modeOf(selections(req.Subtype)))
	return out
}

// Retrieve returns one page of lines matching req. The page and its total are read
// from a single store snapshot. Store failures surface as a retrieval failure
// with the cause logged here.
func (e *Engine) Retrieve(ctx context.Context, req Request) (*Page, error) {
	ctx, span := tracer.Start(ctx, "retrieval.Retrieve")
	defer span.End()
	start := time.Now()

	req = e.Normalize(req)
	var (
		q     Query
		total int
		recs  []dialogue.Record
	)
	err := e.store.ReadSnapshot(ctx, func(r store.Reader) error {
		var err error
		if q, err = e.compose(ctx, r, req); err != nil {
			return err
		}
		if total, err = r.Count(ctx, q.Where); err != nil {
			return err
		}
		recs, err = r.Find(ctx, q.Where, store.FindOptions{
			Skip:    (req.Page - 1) * req.Limit,
			Take:    req.Limit,
			OrderBy: q.OrderBy,
		})
		return err
	})

	mode := e.modeOf(selections(req.Subtype))
	metrics.RetrievalDuration.WithLabelValues(mode.String()).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		metrics.RetrievalsTotal.WithLabelValues(mode.String(), "error").Inc()
		e.logger.Error("dialogue retrieval failed", "error", err, "request", req.Key())
		return nil, apperr.Wrap(err, apperr.CodeRetrievalFailed, "dialogue retrieval failed")
	}
	metrics.RetrievalsTotal.WithLabelValues(mode.String(), "ok").Inc()
	if q.Scene.Path != SceneNone {
		metrics.SceneResolutionsTotal.WithLabelValues(string(q.Scene.Path)).Inc()
		if q.Scene.Path == SceneFiles {
			metrics.SceneFileSetSize.Observe(float64(len(q.Scene.Files)))
		}
	}

	page := assemble(recs, total, req.Page, req.Limit)
	page.Mode = q.Mode
	page.Scene = q.Scene.Path

	span.SetAttributes(
		attribute.String("retrieval.mode", q.Mode.String()),
		attribute.Int("retrieval.total", total),
	)
	e.logger.Debug("dialogue retrieval",
		"mode", q.Mode.String(),
		"scene_path", string(q.Scene.Path),
		"scene_files", len(q.Scene.Files),
		"total", total,
		"page", req.Page,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return page, nil
}

// Scene returns every line of one scene file in topic order. Names outside the
// scene half of the corpus yield no lines.
func (e *Engine) Scene(ctx context.Context, fileName string) ([]dialogue.Record, error) {
	ctx, span := tracer.Start(ctx, "retrieval.Scene")
	defer span.End()

	recs := []dialogue.Record{}
	if !strings.HasPrefix(fileName, e.catalog.Files().ScenePrefix) {
		return recs, nil
	}

	where := append(e.baseFilter(dialogue.ModeScene),
		filter.Equals{Field: filter.FieldFileName, Value: fileName})
	err := e.store.ReadSnapshot(ctx, func(r store.Reader) error {
		var err error
		recs, err = r.Find(ctx, where, store.FindOptions{OrderBy: sortOrder(dialogue.ModeScene)})
		return err
	})
	if err != nil {
		span.RecordError(err)
		e.logger.Error("scene retrieval failed", "error", err, "file_name", fileName)
		return nil, apperr.Wrap(err, apperr.CodeRetrievalFailed, "dialogue retrieval failed")
	}
	return recs, nil
}

// FacetOptions lists values a client can offer for each facet.
type FacetOptions struct {
	Characters  []string `json:"characters"`
	QuestGroups []string `json:"questGroups"`
	Contexts    []string `json:"contexts"`
	Subtypes    []string `json:"subtypes"`
	Emotions    []string `json:"emotions"`
}

// FacetOptions combines the catalog names with the emotion prefixes present in the
// corpus. Emotion tags carry an intensity ("Happy 50"); only the leading word is
// offered, once per spelling regardless of case, since the emotion facet is a
// case-insensitive prefix match.
func (e *Engine) FacetOptions(ctx context.Context) (*FacetOptions, error) {
	ctx, span := tracer.Start(ctx, "retrieval.FacetOptions")
	defer span.End()

	var raw []string
	err := e.store.ReadSnapshot(ctx, func(r store.Reader) error {
		var err error
		raw, err = r.FindDistinct(ctx,
			filter.Not{P: filter.Equals{Field: filter.FieldEmotion, Value: ""}},
			filter.FieldEmotion)
		return err
	})
	if err != nil {
		span.RecordError(err)
		e.logger.Error("facet options failed", "error", err)
		return nil, apperr.Wrap(err, apperr.CodeRetrievalFailed, "dialogue retrieval failed")
	}

	return &FacetOptions{
		Characters:  e.catalog.Characters(),
		QuestGroups: e.catalog.QuestGroups(),
		Contexts:    e.catalog.Contexts(),
		Subtypes:    e.catalog.Subtypes(),
		Emotions:    emotionPrefixes(raw),
	}, nil
}

func emotionPrefixes(raw []string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, v := range raw {
		fields := strings.Fields(v)
		if len(fields) == 0 {
			continue
		}
		key := strings.ToLower(fields[0])
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, fields[0])
	}
	sort.Strings(out)
	return out
}
