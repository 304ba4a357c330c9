package gemini

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/timmy/epigraph/internal/domain"
)

var errNoJSONObject = errors.New("no JSON object found in response")

// rawAnalysis mirrors the JSON object the analysis prompt asks for.
type rawAnalysis struct {
	ScriptType   textValue       `json:"scriptType"`
	OriginalText textValue       `json:"originalText"`
	Translation  textValue       `json:"translation"`
	Period       textValue       `json:"period"`
	Region       textValue       `json:"region"`
	Confidence   confidenceValue `json:"confidence"`
	Notes        textValue       `json:"notes"`
}

// confidenceValue accepts a JSON number or a numeric string ("82", "82%").
// Anything else decodes to zero instead of failing the whole object.
type confidenceValue int

func (c *confidenceValue) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	s = strings.TrimSpace(strings.Trim(s, `"`))
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		*c = 0
		return nil
	}
	*c = confidenceValue(math.Round(math.Max(0, math.Min(f, 100))))
	return nil
}

// textValue accepts a JSON string, or a scalar kept as its literal text
// ("period": 3200). Arrays and objects are kept as compact JSON.
type textValue string

func (t *textValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = textValue(s)
		return nil
	}
	literal := strings.TrimSpace(string(b))
	if literal == "null" {
		*t = ""
		return nil
	}
	*t = textValue(literal)
	return nil
}

// parseAnalysis turns free model text into an AnalysisResult. It always returns a
// usable result; the error is non-nil only when the fallback object was used.
//
// Stages: strict parse of the whole text, first balanced {...} substring, the
// greedy first-'{'-to-last-'}' span, then the fallback.
func parseAnalysis(text string) (*domain.AnalysisResult, error) {
	trimmed := strings.TrimSpace(text)

	candidates := []string{trimmed}
	if balanced, ok := firstBalancedObject(trimmed); ok {
		candidates = append(candidates, balanced)
	}
	if greedy, ok := greedyObject(trimmed); ok {
		candidates = append(candidates, greedy)
	}

	var lastErr error = errNoJSONObject
	for i, candidate := range candidates {
		if (i > 0 && candidate == candidates[i-1]) || !strings.HasPrefix(candidate, "{") {
			continue
		}
		var raw rawAnalysis
		if err := json.Unmarshal([]byte(candidate), &raw); err != nil {
			if i > 0 {
				lastErr = err
			}
			continue
		}
		return raw.normalize(text), nil
	}

	// The fallback keeps the answer byte for byte.
	return fallbackResult(text), &domain.ResponseFormatError{Raw: text, Err: lastErr}
}

func (r *rawAnalysis) normalize(rawText string) *domain.AnalysisResult {
	result := &domain.AnalysisResult{
		ScriptType:   strings.TrimSpace(string(r.ScriptType)),
		OriginalText: strings.TrimSpace(string(r.OriginalText)),
		Translation:  strings.TrimSpace(string(r.Translation)),
		Period:       strings.TrimSpace(string(r.Period)),
		Region:       strings.TrimSpace(string(r.Region)),
		Confidence:   domain.ClampConfidence(int(r.Confidence)),
		Notes:        strings.TrimSpace(string(r.Notes)),
	}
	if result.ScriptType == "" {
		result.ScriptType = domain.ScriptTypeUndetermined
	}
	// translated_text must never be empty on a stored row
	if result.Translation == "" {
		result.Translation = rawText
	}
	return result
}

func fallbackResult(rawText string) *domain.AnalysisResult {
	return &domain.AnalysisResult{
		ScriptType:  domain.ScriptTypeUndetermined,
		Translation: rawText,
		Confidence:  0,
		Notes:       rawText,
	}
}

// firstBalancedObject returns the first top-level {...} substring, skipping
// braces that appear inside JSON string literals.
func firstBalancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// greedyObject returns the span from the first '{' to the last '}'.
func greedyObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
