package render

import (
	"strings"

	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/types"
)

// Placeholder stands in for missing text and empty lists
const Placeholder = "—"

// Tone styles a block of list items
type Tone int

const (
	ToneNeutral Tone = iota
	ToneWarning
	ToneDanger
)

// Row is one label and value line of a section
type Row struct {
	Label string
	Value string
}

// Block is a titled list inside a section
type Block struct {
	Title string
	Items []string
	Tone  Tone
}

// Section is one SOAP card
type Section struct {
	Title  string
	Rows   []Row
	Blocks []Block
}

// Format lays out a note as the four SOAP sections. The HTML view and the PDF
// export both render from this layout.
func Format(note *types.SOAPNote) []Section {
	s, o, a, p := note.Subjective, note.Objective, note.Assessment, note.Plan

	icd := make([]string, 0, len(a.ICD10Codes))
	for _, c := range a.ICD10Codes {
		icd = append(icd, c.Code+" "+Placeholder+" "+c.Description)
	}

	meds := make([]string, 0, len(p.Medications))
	for _, m := range p.Medications {
		meds = append(meds, MedicationLine(m))
	}

	plan := Section{
		Title: "P: Plan",
		Rows: []Row{
			{"Treatment", textOr(p.TreatmentPlan)},
			{"Follow-up", textOr(p.FollowUp)},
			{"Referrals", joinOr(p.ReferralSuggestions, ", ")},
			{"Patient education", joinOr(p.PatientEducation, "; ")},
		},
		Blocks: []Block{{Title: "Medications", Items: meds}},
	}

	if len(p.MedicationInteractions) > 0 {
		warnings := make([]string, 0, len(p.MedicationInteractions))
		for _, mi := range p.MedicationInteractions {
			line := mi.Warning
			if len(mi.MedicationsInvolved) > 0 {
				line = strings.Join(mi.MedicationsInvolved, " + ") + ": " + mi.Warning
			}
			warnings = append(warnings, line)
		}
		plan.Blocks = append(plan.Blocks, Block{Title: "Medication interactions / warnings", Items: warnings, Tone: ToneWarning})
	}

	if len(p.ContraindicationWarnings) > 0 {
		plan.Blocks = append(plan.Blocks, Block{Title: "Contraindication warnings", Items: p.ContraindicationWarnings, Tone: ToneDanger})
	}

	return []Section{
		{
			Title: "S: Subjective",
			Rows: []Row{
				{"Chief complaint", textOr(s.ChiefComplaint)},
				{"History", textOr(s.HistoryOfPresentIllness)},
				{"Past medical", joinOr(s.PastMedicalHistory, ", ")},
				{"Medications", joinOr(s.Medications, ", ")},
				{"Allergies", joinOr(s.Allergies, ", ")},
			},
		},
		{
			Title: "O: Objective",
			Rows: []Row{
				{"Vitals", textOr(o.VitalSigns)},
				{"Exam", textOr(o.PhysicalExamination)},
				{"Labs", joinOr(o.LabResults, "; ")},
			},
		},
		{
			Title: "A: Assessment",
			Rows: []Row{
				{"Primary diagnosis", textOr(a.PrimaryDiagnosis)},
				{"Differential", joinOr(a.DifferentialDiagnoses, ", ")},
			},
			Blocks: []Block{{Title: "ICD-10", Items: icd}},
		},
		plan,
	}
}

// MedicationLine renders a planned medication as name, placeholder dash,
// "dosage for duration", then the dosage check when the model supplied one
func MedicationLine(m types.PlannedMedication) string {
	line := m.Name + " " + Placeholder + " " + m.Dosage + " for " + m.Duration
	if v := m.Validation(); v != "" {
		line += " (" + v + ")"
	}
	return line
}

func textOr(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}

func joinOr(items []string, sep string) string {
	if joined := strings.Join(items, sep); joined != "" {
		return joined
	}
	return Placeholder
}
