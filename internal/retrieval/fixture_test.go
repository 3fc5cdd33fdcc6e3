package retrieval

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/voxarchive/internal/catalog"
	"github.com/MikeSquared-Agency/voxarchive/internal/dialogue"
	"github.com/MikeSquared-Agency/voxarchive/internal/filter"
	"github.com/MikeSquared-Agency/voxarchive/internal/store"
)

const (
	exportSkyrim = "dialogueExport_Skyrim"
	exportDLC1   = "dialogueExport_Dawnguard"
	sceneCastle  = "sceneDLC1VQ02Castle"
	sceneReunion = "sceneDLC1VQ03Reunion"
	sceneGossip  = "sceneRiverwoodGossip"
	sceneMarket  = "sceneWhiterunMarket"
)

// corpus returns a small corpus covering every facet. Each record's ResponseText
// is unique so tests can refer to lines by it.
func corpus() []dialogue.Record {
	recs := []dialogue.Record{
		// standard export
		{VoiceType: "DLC1SeranaVoice", QuestName: "DLC1VQ02", TopicText: "Is there another way?", ResponseText: "Not that I know of.", Emotion: "Neutral 0", Subtype: "Custom", TopicInfo: "0001", FileName: exportDLC1},
		{VoiceType: "FemaleEvenToned", QuestName: "HousecarlWhiterun", TopicText: "What's your name?", ResponseText: "I am Lydia, your housecarl.", Emotion: "Happy 50", Subtype: "Custom", TopicInfo: "0002", FileName: exportSkyrim},
		{VoiceType: "MaleNord", QuestName: "C00", ResponseText: "Die!", Emotion: "Anger 80", Subtype: "Attack", TopicInfo: "0003", FileName: exportSkyrim},
		{VoiceType: "MaleNord", QuestName: "c01", ResponseText: "You'll pay for that.", Emotion: "anger 20", Subtype: "Hit", TopicInfo: "0004", FileName: exportSkyrim},
		{VoiceType: "FemaleEvenToned", QuestName: "DialogueFollower", TopicText: "What's on your mind?", ResponseText: "Whiterun has been quiet lately.", Subtype: "Custom", TopicInfo: "0005", FileName: exportSkyrim},
		{VoiceType: "MaleNord", QuestName: "DialogueGeneric", TopicText: "Who are you?", ResponseText: "Just a traveler.", Subtype: "Custom", TopicInfo: "0006", FileName: exportSkyrim},
		{VoiceType: "MaleNord", QuestName: "DialogueGeneric", ResponseText: "Hello there.", Subtype: "Hello", TopicInfo: "0007", FileName: exportSkyrim},
		{VoiceType: "FemaleSultry", QuestName: "DialogueGeneric", ResponseText: "There's ANOTHER WAY through WHITERUN.", Subtype: "Idle", TopicInfo: "0008", FileName: exportSkyrim},
		{VoiceType: "MaleNord", QuestName: "DB05", ResponseText: "He laughs all night.", Subtype: "Custom", TopicInfo: "0009", FileName: exportSkyrim},
		{VoiceType: "MaleNord", QuestName: "MQ101", TopicText: "Something on your mind?", ResponseText: "Nope.", Subtype: "Custom", TopicInfo: "0010", FileName: exportSkyrim},
		{VoiceType: "MaleNord", QuestName: "DialogueGeneric", ResponseText: "Do you get to the Cloud District very often? - Nazeem", Subtype: "Custom", TopicInfo: "0011", FileName: exportSkyrim},
		{VoiceType: "MaleNord", ResponseText: "=== Whiterun ===", TopicInfo: "0000", FileName: exportSkyrim},

		// scenes
		{VoiceType: "DLC1SeranaVoice", QuestName: "DLC1VQ02", ResponseText: "We should go.", TopicInfo: "0002", FileName: sceneCastle},
		{VoiceType: "DLC1MaleUniqueIsran", QuestName: "DLC1VQ02", ResponseText: "Not so fast, vampire.", TopicInfo: "0001", FileName: sceneCastle},
		{VoiceType: "DLC1SeranaVoice", QuestName: "DLC1VQ03", ResponseText: "Father...", TopicInfo: "0001", FileName: sceneReunion},
		{VoiceType: "DLC1MaleUniqueHarkon", QuestName: "DLC1VQ03", ResponseText: "My daughter returns.", TopicInfo: "0002", FileName: sceneReunion},
		{VoiceType: "MaleNord", ResponseText: "Have you seen Delphine?", TopicInfo: "0001", FileName: sceneGossip},
		{VoiceType: "MaleNord", ResponseText: "=== Riverwood ===", TopicInfo: "0000", FileName: sceneGossip},
		{VoiceType: "FemaleNord", ResponseText: "Nazeem thinks he's better than us.", TopicInfo: "0001", FileName: sceneMarket},
	}
	for i := range recs {
		recs[i].ID = uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", i+1))
	}
	return recs
}

const (
	standardLines = 11
	sceneLines    = 6
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Default()
	if err != nil {
		t.Fatalf("load default catalog: %v", err)
	}
	return c
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return New(testCatalog(t), store.NewMemory(corpus()), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func retrieve(t *testing.T, e *Engine, req Request) *Page {
	t.Helper()
	page, err := e.Retrieve(context.Background(), req)
	if err != nil {
		t.Fatalf("Retrieve(%+v) error: %v", req, err)
	}
	return page
}

func responses(recs []dialogue.Record) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ResponseText)
	}
	return out
}

var errStoreDown = errors.New("connection refused")

// failingStore hands out a Reader whose every call fails.
type failingStore struct{}

func (failingStore) ReadSnapshot(_ context.Context, fn func(store.Reader) error) error {
	return fn(failingReader{})
}

type failingReader struct{}

func (failingReader) Find(context.Context, filter.Predicate, store.FindOptions) ([]dialogue.Record, error) {
	return nil, errStoreDown
}

func (failingReader) Count(context.Context, filter.Predicate) (int, error) {
	return 0, errStoreDown
}

func (failingReader) FindDistinct(context.Context, filter.Predicate, filter.Field) ([]string, error) {
	return nil, errStoreDown
}
