package render

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.924 generate

// PageData is everything the workspace page shows
type PageData struct {
	Transcript      string
	Recording       bool
	SpeechSupported bool
	Panel           State
	View            View
	// Notice is a transient message next to the input, such as a dictation error
	Notice string
}

// Loading reports whether a generation is in flight
func (d PageData) Loading() bool {
	return d.Panel.Kind == KindLoading
}

// Busy reports whether the transcript is locked by generation or dictation
func (d PageData) Busy() bool {
	return d.Loading() || d.Recording
}

func (d PageData) generateDisabled() bool {
	return d.Busy() || d.Transcript == ""
}

func (d PageData) clearDisabled() bool {
	return d.Loading() || (d.Transcript == "" && !d.Recording)
}

func (d PageData) generateLabel() string {
	if d.Loading() {
		return "Generating…"
	}
	return "Generate SOAP Note"
}

func (d PageData) recordLabel() string {
	if d.Recording {
		return "Stop"
	}
	return "Record"
}

func toneClass(t Tone) string {
	switch t {
	case ToneWarning:
		return "tone-warning"
	case ToneDanger:
		return "tone-danger"
	default:
		return "tone-neutral"
	}
}
