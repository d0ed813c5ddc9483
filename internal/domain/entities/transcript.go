package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Segment represents one transcribed audio window. Index is the window's
// position in the session, Start/End are offsets in seconds from the
// start of the recording. A failed window keeps its slot with empty Text
// so the timeline stays continuous.
type Segment struct {
	Index int     `json:"index"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript is the ordered sequence of segments produced by a recording
// session. It is owned and mutated by the transcription pipeline while
// the session is live; once finalized, callers receive copies only.
type Transcript struct {
	ID          uuid.UUID `json:"id"`
	SessionID   uuid.UUID `json:"session_id"`
	Segments    []Segment `json:"segments"`
	Language    string    `json:"language,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	FinalizedAt time.Time `json:"finalized_at,omitempty"`
	Final       bool      `json:"final"`
}

// NewTranscript creates an empty transcript for a session.
func NewTranscript(sessionID uuid.UUID) *Transcript {
	return &Transcript{
		ID:        uuid.New(),
		SessionID: sessionID,
		Segments:  make([]Segment, 0),
		StartedAt: time.Now(),
	}
}

// Append adds a segment. Segments must arrive in index order; the
// pipeline reorders completions before calling this.
func (t *Transcript) Append(seg Segment) {
	t.Segments = append(t.Segments, seg)
}

// Finalize marks the transcript immutable.
func (t *Transcript) Finalize() {
	t.Final = true
	t.FinalizedAt = time.Now()
}

// Text joins all segment texts into a single string. Empty placeholder
// segments contribute nothing.
func (t *Transcript) Text() string {
	parts := make([]string, 0, len(t.Segments))
	for _, seg := range t.Segments {
		if s := strings.TrimSpace(seg.Text); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Duration returns the covered time span in seconds.
func (t *Transcript) Duration() float64 {
	if len(t.Segments) == 0 {
		return 0
	}
	return t.Segments[len(t.Segments)-1].End
}

// Clone returns a deep copy. The pipeline hands clones to the feedback
// engine so a live session can never race an analysis.
func (t *Transcript) Clone() *Transcript {
	cp := *t
	cp.Segments = make([]Segment, len(t.Segments))
	copy(cp.Segments, t.Segments)
	return &cp
}
