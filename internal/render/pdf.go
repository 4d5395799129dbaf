package render

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/types"
)

// ExportFilename is the download name of an exported note
const ExportFilename = "soap-note.pdf"

// ExportPDF writes the formatted view of note as a PDF document
func ExportPDF(note *types.SOAPNote, w io.Writer) error {
	if note == nil {
		return fmt.Errorf("no note to export")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("SOAP Note", true)
	pdf.SetCreator("Clinical Documentation Assistant", true)
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 18)
	pdf.AddPage()

	// core fonts are cp1252; the translator maps the dash and degree signs
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(30, 41, 59)
	pdf.CellFormat(0, 10, tr("SOAP Note"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(100, 116, 139)
	pdf.CellFormat(0, 6, tr("Structured output generated from the transcript"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	for _, sec := range Format(note) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(3, 105, 161)
		pdf.CellFormat(0, 8, tr(sec.Title), "B", 1, "L", false, 0, "")
		pdf.Ln(1)

		for _, row := range sec.Rows {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.SetTextColor(71, 85, 105)
			pdf.CellFormat(40, 6, tr(row.Label), "", 0, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 10)
			pdf.SetTextColor(51, 65, 85)
			pdf.MultiCell(0, 6, tr(row.Value), "", "L", false)
		}

		for _, block := range sec.Blocks {
			pdf.Ln(1)
			pdf.SetFont("Helvetica", "B", 10)
			setToneColor(pdf, block.Tone)
			pdf.CellFormat(0, 6, tr(block.Title), "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 10)
			for _, item := range block.Items {
				pdf.MultiCell(0, 6, tr("- "+item), "", "L", false)
			}
		}
		pdf.Ln(4)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	return pdf.Output(w)
}

func setToneColor(pdf *fpdf.Fpdf, t Tone) {
	switch t {
	case ToneWarning:
		pdf.SetTextColor(146, 64, 14)
	case ToneDanger:
		pdf.SetTextColor(159, 18, 57)
	default:
		pdf.SetTextColor(71, 85, 105)
	}
}
