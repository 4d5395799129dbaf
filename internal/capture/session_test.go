package capture

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/interfaces"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeRecognizer forwards whatever the test sends on feed until ctx ends
type fakeRecognizer struct {
	feed     chan interfaces.Segment
	startErr error
}

func newFakeRecognizer() *fakeRecognizer {
	return &fakeRecognizer{feed: make(chan interfaces.Segment)}
}

func (f *fakeRecognizer) Start(ctx context.Context) (<-chan interfaces.Segment, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	out := make(chan interfaces.Segment)
	go func() {
		defer close(out)
		for {
			select {
			case seg, ok := <-f.feed:
				if !ok {
					return
				}
				select {
				case out <- seg:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func waitSignal(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for signal")
	}
}

func TestJoinSegment(t *testing.T) {
	tests := []struct {
		prev, segment, want string
	}{
		{"foo", "bar", "foo bar"},
		{"", "bar", "bar"},
		{"   ", " bar", "bar"},
		{"foo  ", "  bar", "foo bar"},
		{"foo\n", "bar baz", "foo bar baz"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, JoinSegment(tt.prev, tt.segment), "%q + %q", tt.prev, tt.segment)
	}
}

func TestSession_AppendSegment(t *testing.T) {
	s := NewSession(nil)
	s.SetText("foo")
	s.AppendSegment("bar")
	s.AppendSegment("   ")
	s.AppendSegment("")
	s.AppendSegment(" baz")

	assert.Equal(t, "foo bar baz", s.Text())
	assert.Equal(t, 2, strings.Count(s.Text(), " "))
}

func TestSession_UnsupportedCapability(t *testing.T) {
	s := NewSession(nil)
	s.SetText("typed text")

	state, err := s.Toggle(context.Background())

	assert.False(t, s.Supported())
	assert.Equal(t, StateIdle, state)
	assert.ErrorIs(t, err, types.ErrCapability)
	assert.Equal(t, "typed text", s.Text())
	assert.Equal(t, StateIdle, s.State())
}

func TestSession_RecordingLifecycle(t *testing.T) {
	rec := newFakeRecognizer()
	appended := make(chan struct{}, 10)
	resets := 0
	s := NewSession(rec,
		WithResetHook(func() { resets++ }),
		WithSegmentHook(func() { appended <- struct{}{} }),
	)
	s.SetText("old transcript")

	state, err := s.Toggle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateRecording, state)
	assert.Equal(t, "", s.Text())
	assert.Equal(t, 1, resets)

	rec.feed <- interfaces.Segment{Text: "patient has", Final: true}
	waitSignal(t, appended)
	rec.feed <- interfaces.Segment{Text: "fever", Final: false}
	rec.feed <- interfaces.Segment{Text: "a fever", Final: true}
	waitSignal(t, appended)

	assert.Equal(t, "patient has a fever", s.Text())

	s.SetText(s.Text() + " (edited)")

	state, err = s.Toggle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateIdle, state)
	s.Wait()

	assert.Equal(t, "patient has a fever (edited)", s.Text())
	assert.Equal(t, 1, resets)
	assert.NoError(t, s.Err())
}

func TestSession_RecognizerErrorReturnsToIdle(t *testing.T) {
	rec := newFakeRecognizer()
	var hookErr error
	s := NewSession(rec, WithErrorHook(func(err error) { hookErr = err }))

	_, err := s.Toggle(context.Background())
	require.NoError(t, err)

	rec.feed <- interfaces.Segment{Err: errors.New("network")}
	s.Wait()

	assert.Equal(t, StateIdle, s.State())
	require.Error(t, s.Err())
	assert.Equal(t, "Speech recognition error: network", types.UserMessage(s.Err()))
	assert.Equal(t, s.Err(), hookErr)
}

func TestSession_EndOfStreamReturnsToIdle(t *testing.T) {
	rec := newFakeRecognizer()
	s := NewSession(rec)

	_, err := s.Toggle(context.Background())
	require.NoError(t, err)

	close(rec.feed)
	s.Wait()

	assert.Equal(t, StateIdle, s.State())
	assert.NoError(t, s.Err())
}

func TestSession_StartFailure(t *testing.T) {
	rec := &fakeRecognizer{startErr: errors.New("not-allowed")}
	s := NewSession(rec)

	state, err := s.Toggle(context.Background())

	assert.Equal(t, StateIdle, state)
	assert.ErrorIs(t, err, types.ErrCapability)
	assert.Equal(t, StateIdle, s.State())
}

func TestSession_ContextCancelEndsRecording(t *testing.T) {
	rec := newFakeRecognizer()
	s := NewSession(rec)

	ctx, cancel := context.WithCancel(context.Background())
	_, err := s.Toggle(ctx)
	require.NoError(t, err)

	cancel()
	s.Wait()
	assert.Equal(t, StateIdle, s.State())
}

func TestSession_StopWhenIdleIsNoop(t *testing.T) {
	s := NewSession(newFakeRecognizer())
	s.SetText("keep")
	s.Stop()
	s.Wait()
	assert.Equal(t, "keep", s.Text())
	assert.Equal(t, StateIdle, s.State())
}

func TestLineRecognizer(t *testing.T) {
	count := 0
	s := NewSession(NewLineRecognizer(strings.NewReader("first part\n\n  second part  \n")),
		WithSegmentHook(func() { count++ }))

	_, err := s.Toggle(context.Background())
	require.NoError(t, err)
	s.Wait()

	assert.Equal(t, "first part second part", s.Text())
	assert.Equal(t, 2, count)
	assert.Equal(t, StateIdle, s.State())
}

func TestLineRecognizer_ReadError(t *testing.T) {
	s := NewSession(NewLineRecognizer(iotest.ErrReader(errors.New("pipe closed"))))

	_, err := s.Toggle(context.Background())
	require.NoError(t, err)
	s.Wait()

	assert.Equal(t, StateIdle, s.State())
	assert.Contains(t, types.UserMessage(s.Err()), "pipe closed")
}
