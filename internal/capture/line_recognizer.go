package capture

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/interfaces"
)

// LineRecognizer treats each non-blank line of a reader as one finalized
// dictation segment. It lets an external speech-to-text process feed a
// session through a pipe.
type LineRecognizer struct {
	r io.Reader
}

// NewLineRecognizer creates a recognizer over r
func NewLineRecognizer(r io.Reader) *LineRecognizer {
	return &LineRecognizer{r: r}
}

// Start begins reading. The channel closes at end of input or when ctx is
// cancelled; a read error is delivered as a final error segment.
func (l *LineRecognizer) Start(ctx context.Context) (<-chan interfaces.Segment, error) {
	out := make(chan interfaces.Segment)

	go func() {
		defer close(out)

		scanner := bufio.NewScanner(l.r)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			select {
			case out <- interfaces.Segment{Text: line, Final: true}:
			case <-ctx.Done():
				return
			}
		}

		if err := scanner.Err(); err != nil {
			select {
			case out <- interfaces.Segment{Err: err}:
			case <-ctx.Done():
			}
		}
	}()

	return out, nil
}
