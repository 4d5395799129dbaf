package interfaces

import (
	"context"
	"time"

	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/types"
)

// NoteGenerator turns a consultation transcript into a structured note.
// Failures are *types.GenerationError values.
type NoteGenerator interface {
	Generate(ctx context.Context, transcript string) (*types.SOAPNote, error)
}

// Segment is one recognition result from a speech engine
type Segment struct {
	Text  string
	Final bool
	// Err ends the stream with a recognizer failure
	Err error
}

// SpeechRecognizer is a continuous dictation engine. Start returns a channel
// of results that is closed when recognition ends, either because ctx was
// cancelled or because the engine stopped on its own.
type SpeechRecognizer interface {
	Start(ctx context.Context) (<-chan Segment, error)
}

// GenerationEvent is the metadata recorded for one generation. It never
// carries transcript or note content.
type GenerationEvent struct {
	ID            string
	RequestID     string
	Mode          string
	TranscriptLen int
	Outcome       string
	Duration      time.Duration
	CreatedAt     time.Time
}

// GenerationRecorder persists generation metadata
type GenerationRecorder interface {
	Record(ctx context.Context, event *GenerationEvent) error
}

// RateLimiter limits requests per client key
type RateLimiter interface {
	Allow(key string) (bool, error)
	Reset(key string) error
	GetLimits(key string) (remaining int, limit int, err error)
}
