package hermes

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// SubjectCorpusImported is published by the exporter after it reloads the
	// dialogue_lines table.
	SubjectCorpusImported = "voxarchive.corpus.imported"

	// SubjectRetrievalExecuted is published each time a retrieval reaches the store.
	SubjectRetrievalExecuted = "voxarchive.retrieval.executed"
)

type CorpusImported struct {
	EventID    string    `json:"event_id"`
	Source     string    `json:"source"`
	Files      []string  `json:"files,omitempty"`
	Records    int       `json:"records"`
	ImportedAt time.Time `json:"imported_at"`
}

// ParseCorpusImported decodes an import notification. An empty payload is a valid
// notification carrying no details.
func ParseCorpusImported(data []byte) (CorpusImported, error) {
	var ev CorpusImported
	if len(data) == 0 {
		return ev, nil
	}
	if err := json.Unmarshal(data, &ev); err != nil {
		return ev, fmt.Errorf("decode %s: %w", SubjectCorpusImported, err)
	}
	return ev, nil
}

type RetrievalExecuted struct {
	EventID    string    `json:"event_id"`
	Mode       string    `json:"mode"`
	Facets     []string  `json:"facets"`
	ScenePath  string    `json:"scene_path,omitempty"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	DurationMS int64     `json:"duration_ms"`
	At         time.Time `json:"at"`
}

// NewRetrievalExecuted stamps the event with a fresh id and the current time.
func NewRetrievalExecuted(mode string, facets []string, scenePath string, total, page int, took time.Duration) RetrievalExecuted {
	if facets == nil {
		facets = []string{}
	}
	return RetrievalExecuted{
		EventID:    uuid.NewString(),
		Mode:       mode,
		Facets:     facets,
		ScenePath:  scenePath,
		Total:      total,
		Page:       page,
		DurationMS: took.Milliseconds(),
		At:         time.Now().UTC(),
	}
}
