package generation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

type blockingGenerator struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingGenerator) Generate(ctx context.Context, transcript string) (*types.SOAPNote, error) {
	close(b.started)
	<-b.release
	return types.ExampleNote(), nil
}

func TestGuard_RejectsConcurrentCall(t *testing.T) {
	inner := &blockingGenerator{started: make(chan struct{}), release: make(chan struct{})}
	guard := NewGuard(inner)

	type result struct {
		note *types.SOAPNote
		err  error
	}
	done := make(chan result, 1)
	go func() {
		note, err := guard.Generate(context.Background(), "first")
		done <- result{note, err}
	}()

	<-inner.started
	assert.True(t, guard.InFlight())

	_, err := guard.Generate(context.Background(), "second")
	assert.ErrorIs(t, err, types.ErrBusy)
	assert.Equal(t, types.MsgBusy, types.UserMessage(err))

	close(inner.release)
	first := <-done
	require.NoError(t, first.err)
	assert.NotNil(t, first.note)
	assert.False(t, guard.InFlight())
}

func TestGuard_ReleasesAfterFailure(t *testing.T) {
	client := new(MockNoteGenerator)
	guard := NewGuard(client)

	client.On("Generate", context.Background(), "a").Return(nil, types.NewNetworkError(nil)).Once()
	client.On("Generate", context.Background(), "b").Return(types.ExampleNote(), nil).Once()

	_, err := guard.Generate(context.Background(), "a")
	assert.ErrorIs(t, err, types.ErrNetwork)

	note, err := guard.Generate(context.Background(), "b")
	require.NoError(t, err)
	assert.NotNil(t, note)
	client.AssertExpectations(t)
}
