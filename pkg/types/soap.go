package types

// SOAPNote is the structured clinical note returned by the generation pipeline.
// JSON keys are part of the wire contract with the model provider and the proxy.
type SOAPNote struct {
	Subjective Subjective `json:"subjective"`
	Objective  Objective  `json:"objective"`
	Assessment Assessment `json:"assessment"`
	Plan       Plan       `json:"plan"`
}

// Subjective holds what the patient reports
type Subjective struct {
	ChiefComplaint          string   `json:"chiefComplaint"`
	HistoryOfPresentIllness string   `json:"historyOfPresentIllness"`
	PastMedicalHistory      []string `json:"pastMedicalHistory"`
	Medications             []string `json:"medications"`
	Allergies               []string `json:"allergies"`
}

// Objective holds measured and observed findings
type Objective struct {
	VitalSigns          string   `json:"vitalSigns"`
	PhysicalExamination string   `json:"physicalExamination"`
	LabResults          []string `json:"labResults"`
}

// Assessment holds the diagnostic conclusions
type Assessment struct {
	PrimaryDiagnosis      string      `json:"primaryDiagnosis"`
	DifferentialDiagnoses []string    `json:"differentialDiagnoses"`
	ICD10Codes            []ICD10Code `json:"icd10Codes"`
}

// ICD10Code pairs a diagnosis code with its description
type ICD10Code struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Plan holds treatment, prescriptions and follow-up
type Plan struct {
	TreatmentPlan            string                  `json:"treatmentPlan"`
	Medications              []PlannedMedication     `json:"medications"`
	MedicationInteractions   []MedicationInteraction `json:"medicationInteractions"`
	ContraindicationWarnings []string                `json:"contraindicationWarnings"`
	ReferralSuggestions      []string                `json:"referralSuggestions"`
	FollowUp                 string                  `json:"followUp"`
	PatientEducation         []string                `json:"patientEducation"`
}

// PlannedMedication is a medication proposed in the plan.
// DosageValidation is optional: nil is omitted from JSON while a
// supplied empty string is kept.
type PlannedMedication struct {
	Name             string  `json:"name"`
	Dosage           string  `json:"dosage"`
	Duration         string  `json:"duration"`
	DosageValidation *string `json:"dosageValidation,omitempty"`
}

// Validation returns the dosage validation text, or "" when absent
func (m PlannedMedication) Validation() string {
	if m.DosageValidation == nil {
		return ""
	}
	return *m.DosageValidation
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}

// MedicationInteraction is a warning about two or more medications
type MedicationInteraction struct {
	MedicationsInvolved []string `json:"medicationsInvolved"`
	Warning             string   `json:"warning"`
}

// Normalize replaces nil lists with empty ones so the note always
// serializes every list as [] rather than null. Order is preserved.
func (n *SOAPNote) Normalize() *SOAPNote {
	if n == nil {
		return nil
	}

	n.Subjective.PastMedicalHistory = nonNil(n.Subjective.PastMedicalHistory)
	n.Subjective.Medications = nonNil(n.Subjective.Medications)
	n.Subjective.Allergies = nonNil(n.Subjective.Allergies)
	n.Objective.LabResults = nonNil(n.Objective.LabResults)
	n.Assessment.DifferentialDiagnoses = nonNil(n.Assessment.DifferentialDiagnoses)
	if n.Assessment.ICD10Codes == nil {
		n.Assessment.ICD10Codes = []ICD10Code{}
	}
	if n.Plan.Medications == nil {
		n.Plan.Medications = []PlannedMedication{}
	}
	if n.Plan.MedicationInteractions == nil {
		n.Plan.MedicationInteractions = []MedicationInteraction{}
	}
	for i := range n.Plan.MedicationInteractions {
		n.Plan.MedicationInteractions[i].MedicationsInvolved = nonNil(n.Plan.MedicationInteractions[i].MedicationsInvolved)
	}
	n.Plan.ContraindicationWarnings = nonNil(n.Plan.ContraindicationWarnings)
	n.Plan.ReferralSuggestions = nonNil(n.Plan.ReferralSuggestions)
	n.Plan.PatientEducation = nonNil(n.Plan.PatientEducation)

	return n
}

// Normalized returns a normalized copy and leaves n untouched, so it is
// safe on a note other goroutines may be reading.
func (n *SOAPNote) Normalized() *SOAPNote {
	if n == nil {
		return nil
	}

	c := *n
	if n.Plan.MedicationInteractions != nil {
		c.Plan.MedicationInteractions = append([]MedicationInteraction{}, n.Plan.MedicationInteractions...)
	}
	return c.Normalize()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
