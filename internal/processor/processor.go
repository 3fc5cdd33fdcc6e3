// Package processor reacts to corpus events and reports retrievals on the bus.
package processor

import (
	"context"
	"log/slog"
	"time"

	"github.com/MikeSquared-Agency/voxarchive/internal/hermes"
)

const purgeTimeout = 30 * time.Second

// Purger drops every cached retrieval page.
type Purger interface {
	Purge(ctx context.Context) (int, error)
}

// Publisher sends a JSON event on a subject.
type Publisher interface {
	Publish(subject string, data any) error
}

// Processor handles voxarchive's NATS traffic. Either dependency may be nil when
// the corresponding backend is not configured.
type Processor struct {
	cache  Purger
	bus    Publisher
	logger *slog.Logger
}

func New(cache Purger, bus Publisher, logger *slog.Logger) *Processor {
	return &Processor{cache: cache, bus: bus, logger: logger}
}

// HandleCorpusImported is the NATS handler for voxarchive.corpus.imported. Pages
// cached before the import may describe lines that no longer exist, so all of
// them are dropped.
func (p *Processor) HandleCorpusImported(subject string, data []byte) {
	evt, err := hermes.ParseCorpusImported(data)
	if err != nil {
		p.logger.Warn("failed to parse corpus import event", "error", err)
	}
	p.logger.Info("corpus imported",
		"subject", subject,
		"event_id", evt.EventID,
		"source", evt.Source,
		"records", evt.Records,
	)

	if p.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()

	removed, err := p.cache.Purge(ctx)
	if err != nil {
		p.logger.Error("failed to purge page cache", "error", err, "removed", removed)
		return
	}
	p.logger.Info("page cache purged", "removed", removed)
}

// ReportRetrieval publishes ev on voxarchive.retrieval.executed. Publish failures
// are logged and otherwise ignored.
func (p *Processor) ReportRetrieval(ev hermes.RetrievalExecuted) {
	if p.bus == nil {
		return
	}
	if err := p.bus.Publish(hermes.SubjectRetrievalExecuted, ev); err != nil {
		p.logger.Warn("failed to publish retrieval event", "error", err, "event_id", ev.EventID)
	}
}
