// Package render turns a generation state into the note panel, either as a
// formatted SOAP view or as raw JSON, and exports notes to PDF.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/types"
)

// Kind selects which of the mutually exclusive panel states is shown
type Kind int

const (
	KindEmpty Kind = iota
	KindLoading
	KindError
	KindNote
)

func (k Kind) String() string {
	switch k {
	case KindLoading:
		return "loading"
	case KindError:
		return "error"
	case KindNote:
		return "note"
	default:
		return "empty"
	}
}

// State is what the note panel displays
type State struct {
	Kind    Kind
	Note    *types.SOAPNote
	Message string
}

// Empty is the state before any note exists
func Empty() State { return State{Kind: KindEmpty} }

// Loading is shown while a generation is in flight
func Loading() State { return State{Kind: KindLoading} }

// Failed shows a user-facing error message
func Failed(message string) State { return State{Kind: KindError, Message: message} }

// Ready shows a note; a nil note is the empty state
func Ready(note *types.SOAPNote) State {
	if note == nil {
		return Empty()
	}
	return State{Kind: KindNote, Note: note}
}

// View is the note presentation
type View string

const (
	ViewFormatted View = "formatted"
	ViewJSON      View = "json"
)

// ParseView validates a view name
func ParseView(s string) (View, bool) {
	switch View(s) {
	case ViewFormatted, ViewJSON:
		return View(s), true
	}
	return "", false
}

// Other returns the view the toggle switches to
func (v View) Other() View {
	if v == ViewJSON {
		return ViewFormatted
	}
	return ViewJSON
}

// RawJSON serializes a note with two-space indentation and without HTML
// escaping. The raw view and the copy action both use exactly this text.
func RawJSON(note *types.SOAPNote) (string, error) {
	if note == nil {
		return "", fmt.Errorf("no note to serialize")
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(note.Normalized()); err != nil {
		return "", fmt.Errorf("encode note: %w", err)
	}

	return string(unescapeLineSeparators(bytes.TrimRight(buf.Bytes(), "\n"))), nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes that
// encoding/json always emits back into the raw characters. Escape pairs are
// walked whole so an escaped backslash followed by "u2028" is left alone.
func unescapeLineSeparators(b []byte) []byte {
	if !bytes.Contains(b, []byte(`\u202`)) {
		return b
	}

	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' || i+1 >= len(b) {
			out = append(out, b[i])
			continue
		}
		switch rest := b[i+1:]; {
		case bytes.HasPrefix(rest, []byte("u2028")):
			out = append(out, "\u2028"...)
			i += 5
		case bytes.HasPrefix(rest, []byte("u2029")):
			out = append(out, "\u2029"...)
			i += 5
		default:
			out = append(out, b[i], b[i+1])
			i++
		}
	}
	return out
}
