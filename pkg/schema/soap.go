package schema

// SOAPNote returns the response schema for a generated note. It must stay in
// step with types.SOAPNote.
func SOAPNote() *Schema {
	stringList := func() *Schema { return ArrayOf(String()) }

	subjective := Object(
		Field{Name: "chiefComplaint", Schema: String()},
		Field{Name: "historyOfPresentIllness", Schema: String()},
		Field{Name: "pastMedicalHistory", Schema: stringList()},
		Field{Name: "medications", Schema: stringList()},
		Field{Name: "allergies", Schema: stringList()},
	)

	objective := Object(
		Field{Name: "vitalSigns", Schema: String()},
		Field{Name: "physicalExamination", Schema: String()},
		Field{Name: "labResults", Schema: stringList()},
	)

	assessment := Object(
		Field{Name: "primaryDiagnosis", Schema: String()},
		Field{Name: "differentialDiagnoses", Schema: stringList()},
		Field{Name: "icd10Codes", Schema: ArrayOf(Object(
			Field{Name: "code", Schema: String()},
			Field{Name: "description", Schema: String()},
		))},
	)

	plan := Object(
		Field{Name: "treatmentPlan", Schema: String()},
		Field{Name: "medications", Schema: ArrayOf(Object(
			Field{Name: "name", Schema: String()},
			Field{Name: "dosage", Schema: String()},
			Field{Name: "duration", Schema: String()},
			Field{
				Name:     "dosageValidation",
				Schema:   String().Described("Validate if the dosage is appropriate, standard, too high, or too low."),
				Optional: true,
			},
		))},
		Field{Name: "medicationInteractions", Schema: ArrayOf(Object(
			Field{Name: "medicationsInvolved", Schema: stringList()},
			Field{Name: "warning", Schema: String()},
		))},
		Field{Name: "contraindicationWarnings", Schema: stringList()},
		Field{Name: "referralSuggestions", Schema: stringList()},
		Field{Name: "followUp", Schema: String()},
		Field{Name: "patientEducation", Schema: stringList()},
	)

	return Object(
		Field{Name: "subjective", Schema: subjective},
		Field{Name: "objective", Schema: objective},
		Field{Name: "assessment", Schema: assessment},
		Field{Name: "plan", Schema: plan},
	)
}
