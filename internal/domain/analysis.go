package domain

// ScriptTypeUndetermined marks a result whose writing system could not be identified.
const ScriptTypeUndetermined = "undetermined"

// AnalysisResult is the structured reading of an inscription returned by the
// vision model. It is never stored as its own row; it is folded into a
// Translation's scalar columns and its analysis_data payload.
type AnalysisResult struct {
	ScriptType   string `json:"scriptType"`
	OriginalText string `json:"originalText"`
	Translation  string `json:"translation"`
	Period       string `json:"period"`
	Region       string `json:"region"`
	Confidence   int    `json:"confidence"`
	Notes        string `json:"notes"`
}

// Undetermined reports whether the script type carries no usable name.
func (r *AnalysisResult) Undetermined() bool {
	return r.ScriptType == "" || r.ScriptType == ScriptTypeUndetermined
}

// ToAnalysisData converts the result into the analysis_data payload.
func (r *AnalysisResult) ToAnalysisData() AnalysisData {
	return AnalysisData{
		"scriptType":   r.ScriptType,
		"originalText": r.OriginalText,
		"translation":  r.Translation,
		"period":       r.Period,
		"region":       r.Region,
		"confidence":   r.Confidence,
		"notes":        r.Notes,
	}
}

// ClampConfidence bounds a model-reported confidence to [0,100].
func ClampConfidence(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
