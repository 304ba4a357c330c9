package gemini

import (
	"errors"
	"testing"

	"github.com/timmy/epigraph/internal/domain"
)

func TestParseAnalysis_EmbeddedJSON(t *testing.T) {
	raw := `Here is info: {"scriptType":"Sumerian Cuneiform","originalText":"","translation":"Grain tally","period":"3200 BCE","region":"Mesopotamia","confidence":82,"notes":""}`

	result, err := parseAnalysis(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	want := domain.AnalysisResult{
		ScriptType:  "Sumerian Cuneiform",
		Translation: "Grain tally",
		Period:      "3200 BCE",
		Region:      "Mesopotamia",
		Confidence:  82,
	}
	if *result != want {
		t.Errorf("got %+v, want %+v", *result, want)
	}
}

func TestParseAnalysis_NoJSONFallsBack(t *testing.T) {
	raw := "I cannot determine the script."

	result, err := parseAnalysis(raw)

	var formatErr *domain.ResponseFormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("expected ResponseFormatError, got %v", err)
	}
	want := domain.AnalysisResult{
		ScriptType:  domain.ScriptTypeUndetermined,
		Translation: raw,
		Confidence:  0,
		Notes:       raw,
	}
	if *result != want {
		t.Errorf("got %+v, want %+v", *result, want)
	}
}

func TestParseAnalysis_FallbackKeepsUntrimmedText(t *testing.T) {
	raw := "  padded raw  \n"

	result, err := parseAnalysis(raw)
	if err == nil {
		t.Fatal("expected the fallback to be used")
	}
	if result.Translation != raw || result.Notes != raw {
		t.Errorf("fallback should carry the full raw text, got translation=%q notes=%q", result.Translation, result.Notes)
	}
}

func TestParseAnalysis_Stages(t *testing.T) {
	tests := []struct {
		name           string
		raw            string
		wantScript     string
		wantConfidence int
		wantFallback   bool
	}{
		{
			name:           "strict object",
			raw:            `{"scriptType":"Linear B","translation":"wheat","confidence":40}`,
			wantScript:     "Linear B",
			wantConfidence: 40,
		},
		{
			name:           "markdown fenced",
			raw:            "```json\n{\"scriptType\":\"Phoenician\",\"translation\":\"king\",\"confidence\":\"75\"}\n```",
			wantScript:     "Phoenician",
			wantConfidence: 75,
		},
		{
			name:           "balanced object followed by prose with braces",
			raw:            `Result {"scriptType":"Greek","translation":"to the gods","confidence":60} and {maybe} more`,
			wantScript:     "Greek",
			wantConfidence: 60,
		},
		{
			name:           "braces inside strings",
			raw:            `{"scriptType":"Maya","translation":"a {glyph} block","notes":"uses \"}\"","confidence":55}`,
			wantScript:     "Maya",
			wantConfidence: 55,
		},
		{
			name:           "confidence above range is clamped",
			raw:            `{"scriptType":"Oracle Bone","translation":"rain","confidence":140}`,
			wantScript:     "Oracle Bone",
			wantConfidence: 100,
		},
		{
			name:           "negative confidence is clamped",
			raw:            `{"scriptType":"Runic","translation":"stone","confidence":-5}`,
			wantScript:     "Runic",
			wantConfidence: 0,
		},
		{
			name:           "non numeric confidence becomes zero",
			raw:            `{"scriptType":"Ogham","translation":"name","confidence":"high"}`,
			wantScript:     "Ogham",
			wantConfidence: 0,
		},
		{
			name:           "missing script type",
			raw:            `{"translation":"something","confidence":10}`,
			wantScript:     domain.ScriptTypeUndetermined,
			wantConfidence: 10,
		},
		{
			name:         "unterminated object",
			raw:          `Sure: {"scriptType":"Hittite", "translation":`,
			wantScript:   domain.ScriptTypeUndetermined,
			wantFallback: true,
		},
		{
			name:         "bare JSON null",
			raw:          `null`,
			wantScript:   domain.ScriptTypeUndetermined,
			wantFallback: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseAnalysis(tt.raw)
			if tt.wantFallback != (err != nil) {
				t.Fatalf("fallback = %v, want %v (err: %v)", err != nil, tt.wantFallback, err)
			}
			if result == nil {
				t.Fatal("expected a result")
			}
			if result.ScriptType != tt.wantScript {
				t.Errorf("script type = %q, want %q", result.ScriptType, tt.wantScript)
			}
			if result.Confidence != tt.wantConfidence {
				t.Errorf("confidence = %d, want %d", result.Confidence, tt.wantConfidence)
			}
			if result.Translation == "" {
				t.Error("translation must never be empty")
			}
		})
	}
}

func TestParseAnalysis_NumericFieldsKeptAsText(t *testing.T) {
	result, err := parseAnalysis(`{"scriptType":"Akkadian","translation":"tablet","period":-1800,"confidence":70}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Period != "-1800" {
		t.Errorf("period = %q, want %q", result.Period, "-1800")
	}
}

func TestFirstBalancedObject(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: `abc {"a":{"b":1}} tail}`, want: `{"a":{"b":1}}`, ok: true},
		{in: `no braces`, ok: false},
		{in: `{"open": "never`, ok: false},
		{in: `{"s":"\\"} x"}`, want: `{"s":"\\"}`, ok: true},
	}
	for _, tt := range tests {
		got, ok := firstBalancedObject(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("firstBalancedObject(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
