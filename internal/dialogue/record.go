package dialogue

import "github.com/google/uuid"

// Record is a single spoken line of the corpus. Records are immutable once ingested.
type Record struct {
	ID            uuid.UUID `json:"id"`
	VoiceType     string    `json:"voiceType"`
	QuestName     string    `json:"questName"`
	Branch        string    `json:"branch,omitempty"`
	TopicText     string    `json:"topicText"`
	ResponseText  string    `json:"responseText"`
	Emotion       string    `json:"emotion,omitempty"`
	Subtype       string    `json:"subtype,omitempty"`
	TopicInfo     string    `json:"topicInfo"`
	AudioFileName string    `json:"audioFileName,omitempty"`
	FileName      string    `json:"fileName"`
}

// Mode selects which half of the corpus a retrieval runs against. The two halves
// are told apart by the FileName prefix.
type Mode int

const (
	ModeStandard Mode = iota
	ModeScene
)

func (m Mode) String() string {
	if m == ModeScene {
		return "scene"
	}
	return "standard"
}
