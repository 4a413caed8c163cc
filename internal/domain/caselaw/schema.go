package caselaw

// BuildCaseJSONSchema returns the JSON-Schema (draft 2020-12 subset) for a
// Case document as a generic map. The same schema is handed to the oracle
// as a structured-output constraint and used locally for strict validation.
func BuildCaseJSONSchema() map[string]any {
	goodsServices := map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"class": map[string]any{"type": "integer", "minimum": 1, "maximum": 45},
				"terms": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			},
			"required": []string{"class", "terms"},
		},
	}

	degree := enumProp(similarityDegreeValues())
	conceptual := enumProp(conceptualSimilarityValues())

	props := map[string]any{
		"case_reference":    nullableString(),
		"decision_date":     nullableDate(),
		"decision_maker":    nullableString(),
		"jurisdiction":      nullableEnum([]string{string(JurisdictionUKIPO), string(JurisdictionEUIPO)}),
		"application_number": map[string]any{"type": "string", "minLength": 1},
		"applicant_name":    map[string]any{"type": "string", "minLength": 1},
		"opponent_name":     map[string]any{"type": "string", "minLength": 1},
		"applicant_marks": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"mark":           map[string]any{"type": "string", "minLength": 1},
					"mark_type":      enumProp(markTypeValues()),
					"goods_services": goodsServices,
				},
				"required": []string{"mark", "mark_type", "goods_services"},
			},
		},
		"opponent_marks": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"mark":                map[string]any{"type": "string", "minLength": 1},
					"mark_type":           nullableEnum(markTypeValues()),
					"registration_number": nullableString(),
					"filing_date":         nullableDate(),
					"registration_date":   nullableDate(),
					"priority_date":       nullableDate(),
					"goods_services":      nullable(goodsServices),
				},
				"required": []string{"mark", "mark_type", "registration_number", "filing_date", "registration_date", "priority_date", "goods_services"},
			},
		},
		"grounds_for_opposition": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"proof_of_use_requested": map[string]any{"type": "boolean"},
		"proof_of_use_outcome": nullableEnum([]string{
			string(UseProven), string(UseNotProven), string(UseNotApplicable),
		}),
		"goods_services_comparison": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"applicant_term": map[string]any{"type": "string", "minLength": 1},
					"opponent_term":  map[string]any{"type": "string", "minLength": 1},
					"similarity":     degree,
				},
				"required": []string{"applicant_term", "opponent_term", "similarity"},
			},
		},
		"mark_comparison": map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"visual_similarity":     degree,
				"aural_similarity":      degree,
				"conceptual_similarity": conceptual,
				"dominant_component":    nullableString(),
			},
			"required": []string{"visual_similarity", "aural_similarity", "conceptual_similarity"},
		},
		"distinctive_character": enumProp([]string{
			string(DistinctiveVeryHigh), string(DistinctiveHigh), string(DistinctiveMedium), string(DistinctiveLow),
		}),
		"average_consumer_attention": enumProp([]string{
			string(AttentionHigh), string(AttentionMedium), string(AttentionLow),
		}),
		"likelihood_of_confusion": map[string]any{"type": "boolean"},
		"confusion_type": nullableEnum([]string{
			string(ConfusionDirect), string(ConfusionIndirect), string(ConfusionBoth),
		}),
		"opposition_outcome": nullableEnum([]string{
			string(OutcomeSuccessful), string(OutcomePartiallySuccessful), string(OutcomeUnsuccessful),
		}),
		"other_grounds": nullable(map[string]any{
			"type":  "array",
			"items": enumProp([]string{string(GroundReputation), string(GroundPassingOff)}),
		}),
		"decision_rationale": nullable(map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"key_factors": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"precedents_cited": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":                 "object",
						"additionalProperties": false,
						"properties": map[string]any{
							"case_name":       map[string]any{"type": "string", "minLength": 1},
							"case_reference":  map[string]any{"type": "string", "minLength": 1},
							"summary":         nullableString(),
							"relevance_score": nullable(map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0}),
						},
						"required": []string{"case_name", "case_reference"},
					},
				},
			},
			"required": []string{"key_factors"},
		}),
		"global_assessment_notes": nullableString(),
	}

	required := []string{
		"case_reference", "decision_date", "decision_maker",
		"application_number", "applicant_name", "opponent_name",
		"applicant_marks", "opponent_marks", "grounds_for_opposition",
		"proof_of_use_requested", "goods_services_comparison",
		"mark_comparison", "distinctive_character",
		"average_consumer_attention", "likelihood_of_confusion",
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}

func similarityDegreeValues() []string {
	degrees := SimilarityDegrees()
	out := make([]string, len(degrees))
	for i, d := range degrees {
		out[i] = string(d)
	}
	return out
}

func conceptualSimilarityValues() []string {
	return append(similarityDegreeValues(), string(ConceptNeutral))
}

func markTypeValues() []string {
	types := MarkTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

func enumProp(values []string) map[string]any {
	enum := make([]any, len(values))
	for i, v := range values {
		enum[i] = v
	}
	return map[string]any{"type": "string", "enum": enum}
}

func nullable(prop map[string]any) map[string]any {
	return map[string]any{"anyOf": []any{prop, map[string]any{"type": "null"}}}
}

func nullableString() map[string]any {
	return nullable(map[string]any{"type": "string"})
}

// nullableDate matches DD/MM/YYYY, the date format hearing officers use.
func nullableDate() map[string]any {
	return nullable(map[string]any{"type": "string", "pattern": `^\d{2}/\d{2}/\d{4}$`})
}

func nullableEnum(values []string) map[string]any {
	return nullable(enumProp(values))
}
