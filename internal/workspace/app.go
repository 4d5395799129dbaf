// Package workspace is the per-session controller behind the UI: it owns the
// transcript capture session, the note panel state and the single in-flight
// generation for one user.
package workspace

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/internal/capture"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/internal/generation"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/internal/render"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/interfaces"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/monitoring"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/types"
)

// ErrNoNote is returned by actions that need a generated note
var ErrNoNote = errors.New("no SOAP note generated yet")

// App is one workspace
type App struct {
	session   *capture.Session
	generator *generation.Guard

	mu       sync.Mutex
	panel    render.State
	view     render.View
	notice   string
	lastSeen time.Time
	now      func() time.Time
}

// Option configures an App
type Option func(*appOptions)

type appOptions struct {
	metrics *monitoring.MetricsCollector
}

// WithMetrics counts dictated segments on m
func WithMetrics(m *monitoring.MetricsCollector) Option {
	return func(o *appOptions) { o.metrics = m }
}

// New creates a workspace seeded with the example consultation and its note.
// recognizer may be nil when dictation is unavailable.
func New(generator interfaces.NoteGenerator, recognizer interfaces.SpeechRecognizer, opts ...Option) *App {
	var o appOptions
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{
		generator: generation.NewGuard(generator),
		panel:     render.Ready(types.ExampleNote()),
		view:      render.ViewFormatted,
		now:       time.Now,
	}
	a.lastSeen = a.now()

	sessionOpts := []capture.Option{
		capture.WithResetHook(a.onRecordingStart),
		capture.WithErrorHook(a.onRecognizerError),
	}
	if o.metrics != nil {
		sessionOpts = append(sessionOpts, capture.WithSegmentHook(o.metrics.RecordSpeechSegment))
	}
	a.session = capture.NewSession(recognizer, sessionOpts...)
	a.session.SetText(types.ExampleTranscript)

	return a
}

// Submit generates a note from the current transcript. A blank transcript is
// rejected without calling the generator. The returned error is also shown in
// the panel, except for a busy rejection which leaves the running call alone.
func (a *App) Submit(ctx context.Context) error {
	transcript := a.session.Text()

	if strings.TrimSpace(transcript) == "" {
		a.mu.Lock()
		a.panel = render.Failed(types.MsgEmptyTranscript)
		a.mu.Unlock()
		return types.NewInputError()
	}

	if a.generator.InFlight() {
		return types.NewBusyError()
	}

	a.mu.Lock()
	a.panel = render.Loading()
	a.notice = ""
	a.mu.Unlock()

	note, err := a.generator.Generate(ctx, transcript)

	if errors.Is(err, types.ErrBusy) {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.panel = render.Failed(types.UserMessage(err))
		return err
	}
	a.panel = render.Ready(note)
	return nil
}

// ToggleRecording starts or stops dictation. Starting clears the transcript,
// the note and any error.
func (a *App) ToggleRecording(ctx context.Context) (capture.State, error) {
	a.mu.Lock()
	a.notice = ""
	a.mu.Unlock()

	state, err := a.session.Toggle(ctx)
	if errors.Is(err, types.NewCapabilityError()) {
		a.mu.Lock()
		a.notice = types.UserMessage(err)
		a.mu.Unlock()
	}
	return state, err
}

// Clear empties the transcript and the panel and stops any recording
func (a *App) Clear() {
	a.session.Stop()
	a.session.SetText("")

	a.mu.Lock()
	defer a.mu.Unlock()
	a.panel = render.Empty()
	a.notice = ""
}

// UseExample loads the example consultation and its note
func (a *App) UseExample() {
	a.session.Stop()
	a.session.SetText(types.ExampleTranscript)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.panel = render.Ready(types.ExampleNote())
	a.notice = ""
}

// SetTranscript replaces the transcript with user edits. Edits are ignored
// while dictation owns the buffer.
func (a *App) SetTranscript(text string) {
	if a.session.State() == capture.StateRecording {
		return
	}
	a.session.SetText(text)
}

// SetView switches between the formatted and raw JSON note views
func (a *App) SetView(v render.View) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.view = v
}

// Note returns the displayed note, or ErrNoNote
func (a *App) Note() (*types.SOAPNote, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.panel.Kind != render.KindNote {
		return nil, ErrNoNote
	}
	return a.panel.Note, nil
}

// CopyText returns exactly the raw JSON view of the displayed note
func (a *App) CopyText() (string, error) {
	note, err := a.Note()
	if err != nil {
		return "", err
	}
	return render.RawJSON(note)
}

// Snapshot captures everything needed to render the page
func (a *App) Snapshot() render.PageData {
	text := a.session.Text()
	recording := a.session.State() == capture.StateRecording

	a.mu.Lock()
	defer a.mu.Unlock()
	return render.PageData{
		Transcript:      text,
		Recording:       recording,
		SpeechSupported: a.session.Supported(),
		Panel:           a.panel,
		View:            a.view,
		Notice:          a.notice,
	}
}

// Close stops dictation and waits for the recognizer to drain
func (a *App) Close() {
	a.session.Stop()
	a.session.Wait()
}

func (a *App) touch() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastSeen = a.now()
}

func (a *App) idleSince() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastSeen
}

func (a *App) onRecordingStart() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.panel = render.Empty()
}

func (a *App) onRecognizerError(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.panel = render.Failed(types.UserMessage(err))
}
