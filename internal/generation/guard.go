package generation

import (
	"context"
	"sync/atomic"

	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/interfaces"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/types"
)

// Guard allows at most one generation at a time through the wrapped
// generator. A call made while another is running fails immediately with a
// busy error; it is neither queued nor does it cancel the running call.
type Guard struct {
	next     interfaces.NoteGenerator
	inFlight atomic.Bool
}

// NewGuard wraps next with a single-flight guard
func NewGuard(next interfaces.NoteGenerator) *Guard {
	return &Guard{next: next}
}

// Generate delegates to the wrapped generator unless a call is in flight
func (g *Guard) Generate(ctx context.Context, transcript string) (*types.SOAPNote, error) {
	if !g.inFlight.CompareAndSwap(false, true) {
		return nil, types.NewBusyError()
	}
	defer g.inFlight.Store(false)

	return g.next.Generate(ctx, transcript)
}

// InFlight reports whether a generation is running
func (g *Guard) InFlight() bool {
	return g.inFlight.Load()
}
