package types

// ExampleTranscript is the consultation shown when the workspace first opens
const ExampleTranscript = "Patient is a 35-year-old male, presenting with a fever of 102°F for the past 3 days, " +
	"accompanied by a dry cough and body aches. He reports no known allergies. Vitals are BP 120/80, HR 88, " +
	"RR 20, SpO2 98%. On examination, his throat appears red and inflamed. He is currently taking lisinopril " +
	"for hypertension and no other medications. My assessment is a likely acute viral URI, but I need to rule " +
	"out strep. The plan is supportive care, recommending acetaminophen as needed for fever and aches. He " +
	"should follow up in 2-3 days if his symptoms worsen."

// ExampleNote returns a fresh copy of the note paired with ExampleTranscript
func ExampleNote() *SOAPNote {
	return &SOAPNote{
		Subjective: Subjective{
			ChiefComplaint:          "Fever and dry cough for 3 days.",
			HistoryOfPresentIllness: "Patient is a 35-year-old male who presents with a fever of 102°F for the past three days, accompanied by a dry cough and generalized body aches.",
			PastMedicalHistory:      []string{"Hypertension (HTN)"},
			Medications:             []string{"Lisinopril"},
			Allergies:               []string{"No known allergies"},
		},
		Objective: Objective{
			VitalSigns:          "BP 120/80 mmHg, HR 88 bpm, RR 20 breaths/min, SpO2 98% on room air, Temp 102°F.",
			PhysicalExamination: "Throat is red and inflamed. Lungs are clear to auscultation bilaterally.",
			LabResults:          []string{},
		},
		Assessment: Assessment{
			PrimaryDiagnosis:      "Acute Viral Upper Respiratory Infection (URI)",
			DifferentialDiagnoses: []string{"Streptococcal Pharyngitis", "Influenza"},
			ICD10Codes: []ICD10Code{
				{Code: "J06.9", Description: "Acute upper respiratory infection, unspecified"},
			},
		},
		Plan: Plan{
			TreatmentPlan: "Supportive care including rest and hydration.",
			Medications: []PlannedMedication{
				{
					Name:             "Acetaminophen",
					Dosage:           "650 mg PO q4-6h PRN for fever and body aches",
					Duration:         "As needed",
					DosageValidation: StringPtr("Standard adult dosage for PRN use."),
				},
			},
			MedicationInteractions:   []MedicationInteraction{},
			ContraindicationWarnings: []string{},
			ReferralSuggestions:      []string{},
			FollowUp:                 "Follow up in 2-3 days if symptoms worsen or do not improve. Seek immediate care for difficulty breathing.",
			PatientEducation: []string{
				"Encouraged hydration and rest.",
				"Advised on monitoring temperature.",
				"Explained signs/symptoms that warrant immediate medical attention.",
			},
		},
	}
}
