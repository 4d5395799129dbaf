package render

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/types"
)

func html(t *testing.T, render func(ctx context.Context, buf *bytes.Buffer) error) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, render(context.Background(), &buf))
	return buf.String()
}

func TestRawJSON(t *testing.T) {
	note := &types.SOAPNote{
		Subjective: types.Subjective{ChiefComplaint: "<pain> & fever"},
	}

	raw, err := RawJSON(note)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(raw, "{\n  \"subjective\": {\n    \"chiefComplaint\""))
	assert.Contains(t, raw, `"<pain> & fever"`)
	assert.Contains(t, raw, `"labResults": []`)
	assert.NotContains(t, raw, "null")
	assert.False(t, strings.HasSuffix(raw, "\n"))
}

func TestRawJSON_KeepsLineSeparatorsRaw(t *testing.T) {
	note := &types.SOAPNote{
		Subjective: types.Subjective{
			ChiefComplaint:          "cough\u2028worse at night\u2029",
			HistoryOfPresentIllness: `path C:\u2028`,
		},
	}

	raw, err := RawJSON(note)
	require.NoError(t, err)

	assert.Contains(t, raw, "\"cough\u2028worse at night\u2029\"")
	assert.NotContains(t, raw, `\u2028worse`)
	assert.Contains(t, raw, `"path C:\\u2028"`)
}

func TestRawJSON_DoesNotModifyNote(t *testing.T) {
	note := &types.SOAPNote{}

	_, err := RawJSON(note)
	require.NoError(t, err)

	assert.Nil(t, note.Subjective.Allergies)
	assert.Nil(t, note.Plan.Medications)
}

func TestRawJSON_DosageValidation(t *testing.T) {
	note := &types.SOAPNote{Plan: types.Plan{Medications: []types.PlannedMedication{
		{Name: "Ibuprofen", Dosage: "400 mg", Duration: "5 days", DosageValidation: types.StringPtr("")},
		{Name: "Amoxicillin", Dosage: "500 mg", Duration: "10 days"},
	}}}

	raw, err := RawJSON(note)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(raw, `"dosageValidation": ""`))
}

func TestRawJSON_NilNote(t *testing.T) {
	_, err := RawJSON(nil)
	assert.Error(t, err)
}

func TestReady_NilIsEmpty(t *testing.T) {
	assert.Equal(t, KindEmpty, Ready(nil).Kind)
	assert.Equal(t, KindNote, Ready(types.ExampleNote()).Kind)
}

func TestParseView(t *testing.T) {
	v, ok := ParseView("json")
	assert.True(t, ok)
	assert.Equal(t, ViewJSON, v)
	assert.Equal(t, ViewFormatted, v.Other())

	_, ok = ParseView("yaml")
	assert.False(t, ok)
}

func TestFormat_Placeholders(t *testing.T) {
	sections := Format(&types.SOAPNote{})
	require.Len(t, sections, 4)

	for _, sec := range sections {
		for _, row := range sec.Rows {
			assert.Equal(t, Placeholder, row.Value, "%s / %s", sec.Title, row.Label)
		}
	}

	// only the medications block exists in the plan when nothing was flagged
	plan := sections[3]
	require.Len(t, plan.Blocks, 1)
	assert.Equal(t, "Medications", plan.Blocks[0].Title)
}

func TestFormat_Joins(t *testing.T) {
	note := &types.SOAPNote{
		Subjective: types.Subjective{Allergies: []string{"Penicillin", "Latex"}},
		Objective:  types.Objective{LabResults: []string{"WBC 11", "CRP 20"}},
		Plan:       types.Plan{PatientEducation: []string{"Rest", "Fluids"}},
	}
	sections := Format(note)

	assert.Equal(t, Row{"Allergies", "Penicillin, Latex"}, sections[0].Rows[4])
	assert.Equal(t, Row{"Labs", "WBC 11; CRP 20"}, sections[1].Rows[2])
	assert.Equal(t, Row{"Patient education", "Rest; Fluids"}, sections[3].Rows[3])
}

func TestFormat_WarningBlocks(t *testing.T) {
	note := types.ExampleNote()
	note.Plan.MedicationInteractions = []types.MedicationInteraction{
		{MedicationsInvolved: []string{"Lisinopril", "Ibuprofen"}, Warning: "reduced antihypertensive effect"},
	}
	note.Plan.ContraindicationWarnings = []string{"Avoid NSAIDs in CKD"}

	plan := Format(note)[3]
	require.Len(t, plan.Blocks, 3)

	assert.Equal(t, ToneWarning, plan.Blocks[1].Tone)
	assert.Equal(t, []string{"Lisinopril + Ibuprofen: reduced antihypertensive effect"}, plan.Blocks[1].Items)
	assert.Equal(t, ToneDanger, plan.Blocks[2].Tone)
	assert.Equal(t, []string{"Avoid NSAIDs in CKD"}, plan.Blocks[2].Items)
}

func TestFormat_ICDAndMedication(t *testing.T) {
	sections := Format(types.ExampleNote())

	assert.Equal(t, []string{"J06.9 — Acute upper respiratory infection, unspecified"}, sections[2].Blocks[0].Items)
	assert.Equal(t,
		"Acetaminophen — 650 mg PO q4-6h PRN for fever and body aches for As needed (Standard adult dosage for PRN use.)",
		sections[3].Blocks[0].Items[0])
}

func TestMedicationLine_NoValidation(t *testing.T) {
	line := MedicationLine(types.PlannedMedication{Name: "Amoxicillin", Dosage: "500 mg TID", Duration: "10 days"})
	assert.Equal(t, "Amoxicillin — 500 mg TID for 10 days", line)
}

func TestPanel_States(t *testing.T) {
	tests := []struct {
		name  string
		state State
		view  View
		want  []string
	}{
		{"empty", Empty(), ViewFormatted, []string{"No SOAP note generated yet."}},
		{"loading", Loading(), ViewFormatted, []string{"Generating SOAP note…", `aria-busy="true"`}},
		{"error", Failed("Failed to parse the response from the AI model."), ViewFormatted,
			[]string{`role="alert"`, "Failed to parse the response from the AI model."}},
		{"formatted", Ready(types.ExampleNote()), ViewFormatted,
			[]string{"S: Subjective", "P: Plan", "View JSON", "/view/json", "Export PDF", `id="copy-note"`}},
		{"json", Ready(types.ExampleNote()), ViewJSON,
			[]string{`<pre class="raw-json">`, "View Formatted", "/view/formatted", "&#34;chiefComplaint&#34;"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := html(t, func(ctx context.Context, buf *bytes.Buffer) error {
				return Panel(tt.state, tt.view).Render(ctx, buf)
			})
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestPanel_EscapesNoteText(t *testing.T) {
	note := types.ExampleNote()
	note.Subjective.ChiefComplaint = "<script>alert(1)</script>"

	out := html(t, func(ctx context.Context, buf *bytes.Buffer) error {
		return Panel(Ready(note), ViewFormatted).Render(ctx, buf)
	})
	assert.NotContains(t, out, "<script>alert(1)</script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestFormattedNote_BlockTones(t *testing.T) {
	sections := []Section{{
		Title: "P: Plan",
		Blocks: []Block{
			{Title: "Interactions", Items: []string{"Warfarin + Aspirin"}, Tone: ToneWarning},
			{Title: "Contraindications", Items: []string{"Penicillin allergy"}, Tone: ToneDanger},
			{Title: "Referrals"},
		},
	}}

	out := html(t, func(ctx context.Context, buf *bytes.Buffer) error {
		return FormattedNote(sections).Render(ctx, buf)
	})

	assert.Contains(t, out, `<div class="block tone-warning"><div class="block-title">Interactions</div><ul><li>Warfarin + Aspirin</li></ul></div>`)
	assert.Contains(t, out, `<div class="block tone-danger">`)
	assert.Contains(t, out, `<div class="block tone-neutral"><div class="block-title">Referrals</div><ul></ul></div>`)
}

func TestNoteCard_RawJSONMatchesCopyText(t *testing.T) {
	note := types.ExampleNote()

	out := html(t, func(ctx context.Context, buf *bytes.Buffer) error {
		return Panel(Ready(note), ViewJSON).Render(ctx, buf)
	})

	raw, err := RawJSON(note)
	require.NoError(t, err)
	assert.Contains(t, out, `<pre class="raw-json">`+templ.EscapeString(raw)+`</pre>`)
}

func TestTranscriptInput_Controls(t *testing.T) {
	t.Run("empty transcript disables generate and clear", func(t *testing.T) {
		out := html(t, func(ctx context.Context, buf *bytes.Buffer) error {
			return TranscriptInput(PageData{Panel: Empty()}).Render(ctx, buf)
		})
		assert.Contains(t, out, `value="generate" class="primary" aria-label="Generate SOAP note" disabled>`)
		assert.Contains(t, out, `value="clear" disabled>`)
		assert.Contains(t, out, `value="example">`)
		assert.NotContains(t, out, `action="/record"`)
	})

	t.Run("loading", func(t *testing.T) {
		out := html(t, func(ctx context.Context, buf *bytes.Buffer) error {
			return TranscriptInput(PageData{Transcript: "x", Panel: Loading()}).Render(ctx, buf)
		})
		assert.Contains(t, out, "Generating…")
		assert.Contains(t, out, `value="example" disabled>`)
		assert.Contains(t, out, `value="clear" disabled>`)
	})

	t.Run("recording keeps clear enabled", func(t *testing.T) {
		out := html(t, func(ctx context.Context, buf *bytes.Buffer) error {
			return TranscriptInput(PageData{Recording: true, SpeechSupported: true, Panel: Empty()}).Render(ctx, buf)
		})
		assert.Contains(t, out, `value="clear">`)
		assert.Contains(t, out, `aria-pressed="true">Stop`)
	})

	t.Run("notice", func(t *testing.T) {
		out := html(t, func(ctx context.Context, buf *bytes.Buffer) error {
			return TranscriptInput(PageData{Notice: "Speech recognition error: no-speech"}).Render(ctx, buf)
		})
		assert.Contains(t, out, "Speech recognition error: no-speech")
	})
}

func TestPage(t *testing.T) {
	out := html(t, func(ctx context.Context, buf *bytes.Buffer) error {
		return Page(PageData{Transcript: types.ExampleTranscript, Panel: Ready(types.ExampleNote())}).Render(ctx, buf)
	})
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "Clinical Documentation Assistant")
	assert.Contains(t, out, "Powered by Google Gemini. For demonstration purposes only.")
	assert.Contains(t, out, `/assets/app.js`)
}

func TestErrorBoundary(t *testing.T) {
	out := html(t, func(ctx context.Context, buf *bytes.Buffer) error {
		return ErrorBoundary("nil map <write>").Render(ctx, buf)
	})
	assert.Contains(t, out, "Application Error")
	assert.Contains(t, out, "nil map &lt;write&gt;")
}

func TestExportPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportPDF(types.ExampleNote(), &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))

	assert.Error(t, ExportPDF(nil, &buf))
}
