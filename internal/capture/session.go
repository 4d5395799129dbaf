// Package capture holds the editable transcript buffer and the dictation
// state machine that feeds it from a speech recognizer.
package capture

import (
	"context"
	"strings"
	"sync"

	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/interfaces"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/types"
)

// State is the dictation state
type State int

const (
	StateIdle State = iota
	StateRecording
)

func (s State) String() string {
	if s == StateRecording {
		return "recording"
	}
	return "idle"
}

// Session is one transcript buffer with its dictation state. It is safe for
// concurrent use; recognizer results arrive on their own goroutine.
type Session struct {
	recognizer interfaces.SpeechRecognizer
	onReset    func()
	onError    func(error)
	onSegment  func()

	mu      sync.Mutex
	text    string
	state   State
	lastErr error
	epoch   uint64
	cancel  context.CancelFunc
	done    chan struct{}
}

// Option configures a Session
type Option func(*Session)

// WithResetHook is called when a new recording starts, after the buffer is
// cleared; the owner clears its displayed note and error there
func WithResetHook(fn func()) Option {
	return func(s *Session) { s.onReset = fn }
}

// WithErrorHook is called with a capability error when the recognizer fails
func WithErrorHook(fn func(error)) Option {
	return func(s *Session) { s.onError = fn }
}

// WithSegmentHook is called after each appended segment
func WithSegmentHook(fn func()) Option {
	return func(s *Session) { s.onSegment = fn }
}

// NewSession creates an idle session. A nil recognizer means dictation is
// unsupported in this environment.
func NewSession(recognizer interfaces.SpeechRecognizer, opts ...Option) *Session {
	s := &Session{recognizer: recognizer}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Supported reports whether dictation is available
func (s *Session) Supported() bool {
	return s.recognizer != nil
}

// Text returns the current transcript
func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// SetText replaces the transcript
func (s *Session) SetText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = text
}

// AppendSegment appends a finalized segment, separated from the existing
// text by exactly one space. Blank segments are ignored.
func (s *Session) AppendSegment(segment string) {
	s.mu.Lock()
	appended := s.appendLocked(segment)
	s.mu.Unlock()

	if appended && s.onSegment != nil {
		s.onSegment()
	}
}

func (s *Session) appendLocked(segment string) bool {
	segment = strings.TrimLeft(segment, " \t\r\n")
	if strings.TrimSpace(segment) == "" {
		return false
	}
	s.text = JoinSegment(s.text, segment)
	return true
}

// JoinSegment joins prev and segment the way dictation appends text
func JoinSegment(prev, segment string) string {
	prev = strings.TrimRight(prev, " \t\r\n")
	segment = strings.TrimLeft(segment, " \t\r\n")
	if strings.TrimSpace(prev) == "" {
		return segment
	}
	return prev + " " + segment
}

// State returns the dictation state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the last recognizer error, cleared when a recording starts
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Toggle starts dictation from idle or stops it while recording, and returns
// the new state. Starting clears the buffer and runs the reset hook; stopping
// leaves the buffer untouched. The recording lives until stopped, until the
// recognizer ends, or until ctx is cancelled.
func (s *Session) Toggle(ctx context.Context) (State, error) {
	s.mu.Lock()
	if s.state == StateRecording {
		s.stopLocked()
		s.mu.Unlock()
		return StateIdle, nil
	}

	if s.recognizer == nil {
		s.mu.Unlock()
		return StateIdle, types.NewCapabilityError()
	}

	s.text = ""
	s.lastErr = nil
	s.epoch++
	epoch := s.epoch

	recCtx, cancel := context.WithCancel(ctx)
	segments, err := s.recognizer.Start(recCtx)
	if err != nil {
		cancel()
		speechErr := types.NewSpeechError(err)
		s.lastErr = speechErr
		s.mu.Unlock()

		s.runReset()
		s.runError(speechErr)
		return StateIdle, speechErr
	}

	done := make(chan struct{})
	s.state = StateRecording
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	s.runReset()
	go s.consume(epoch, segments, done)

	return StateRecording, nil
}

// Stop ends a recording if one is running
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateRecording {
		s.stopLocked()
	}
}

// Wait blocks until the recognizer of the latest recording has finished
// delivering results
func (s *Session) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

// stopLocked returns to idle. Results still in flight from the stopped
// recording are dropped by the epoch check.
func (s *Session) stopLocked() {
	s.state = StateIdle
	s.epoch++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) consume(epoch uint64, segments <-chan interfaces.Segment, done chan struct{}) {
	defer close(done)

	for seg := range segments {
		if seg.Err != nil {
			s.fail(epoch, seg.Err)
			continue
		}
		if !seg.Final {
			continue
		}

		s.mu.Lock()
		appended := s.epoch == epoch && s.appendLocked(seg.Text)
		s.mu.Unlock()

		if appended && s.onSegment != nil {
			s.onSegment()
		}
	}

	s.mu.Lock()
	if s.epoch == epoch && s.state == StateRecording {
		s.stopLocked()
	}
	s.mu.Unlock()
}

func (s *Session) fail(epoch uint64, cause error) {
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return
	}
	speechErr := types.NewSpeechError(cause)
	s.lastErr = speechErr
	s.stopLocked()
	s.mu.Unlock()

	s.runError(speechErr)
}

func (s *Session) runReset() {
	if s.onReset != nil {
		s.onReset()
	}
}

func (s *Session) runError(err error) {
	if s.onError != nil {
		s.onError(err)
	}
}
