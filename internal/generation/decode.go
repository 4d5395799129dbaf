package generation

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/schema"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/types"
)

// maxErrorBody bounds how much of an upstream error body is kept for logs
const maxErrorBody = 4 << 10

// DecodeNote parses model output into a note. The text is trimmed, checked
// against the note schema, then decoded. Every failure is a parse error.
func DecodeNote(text string) (*types.SOAPNote, error) {
	raw := []byte(strings.TrimSpace(text))
	if len(raw) == 0 {
		return nil, types.NewParseError(fmt.Errorf("empty model response"))
	}

	validator, err := schema.NoteValidator()
	if err != nil {
		return nil, types.NewParseError(err)
	}
	if err := validator.Validate(raw); err != nil {
		return nil, types.NewParseError(err)
	}

	var note types.SOAPNote
	if err := json.Unmarshal(raw, &note); err != nil {
		return nil, types.NewParseError(fmt.Errorf("decode note: %w", err))
	}

	return note.Normalize(), nil
}

// readErrorBody returns a bounded excerpt of an error response body
func readErrorBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return strings.TrimSpace(string(b))
}
