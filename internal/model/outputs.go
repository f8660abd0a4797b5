package model

// Boundary outputs returned by the generator and checker components. Field
// names match the JSON emitted across the tool boundary.

// TripletGeneratorOutput is the result of triplet extraction from one text
type TripletGeneratorOutput struct {
	Triplets [][]string `json:"triplets"`
}

// FactCheckerOutput is the result of comparing answer triplets against
// reference triplets
type FactCheckerOutput struct {
	FactCheckPredictionBinary VerdictMap `json:"fact_check_prediction_binary"`
}

// HallucinationDataGeneratorOutput is a paired faithful/unfaithful answer plus
// a description of the injected falsehood, used for evaluation-data synthesis
type HallucinationDataGeneratorOutput struct {
	GeneratedHlcntnAnswer    string `json:"generated_hlcntn_answer"`
	GeneratedNonHlcntnAnswer string `json:"generated_non_hlcntn_answer"`
	HlcntnPart               string `json:"hlcntn_part"`
}

// AnswerGeneratorOutput is a model-generated answer grounded in reference
// documents
type AnswerGeneratorOutput struct {
	GeneratedAnswer string `json:"generated_answer"`
}

// DirectTextMatchOutput is the result of the non-LLM fact-check backend, which
// matches triplets by normalized text equality. It carries both triplet sets
// so the judgment is reproducible from the output alone.
type DirectTextMatchOutput struct {
	InputTriplets             [][]string `json:"input_triplets"`
	ReferenceTriplets         [][]string `json:"reference_triplets"`
	FactCheckPredictionBinary VerdictMap `json:"fact_check_prediction_binary"`
}
