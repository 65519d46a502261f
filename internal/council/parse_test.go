package council

import (
	"testing"
)

const validSynthesisJSON = `{
	"executive_summary": "Do the thing.",
	"deliverables": [{"name": "MVP", "description": "First cut", "phase": "Phase 1"}],
	"success_criteria": [{"metric": "adoption", "target": "100 users", "rationale": "signal"}],
	"phases": [{"name": "Phase 1", "duration": "2 weeks", "objectives": ["ship"], "decision_point": "users exist"}],
	"risks": [{"risk": "nobody cares", "severity": "high", "mitigation": "talk to users"}],
	"moats": [{"type": "Expertise", "description": "deep domain", "durability": "years"}],
	"strategic_priorities": ["focus"],
	"resource_considerations": "two people",
	"go_no_go_criteria": ["quorum of users"],
	"disagreements": [{"topic": "timing", "summary": "now vs later", "chairman_verdict": "now"}],
	"confidence": "high",
	"confidence_note": "advisors agreed"
}`

func TestParseSynthesis_DirectJSON(t *testing.T) {
	syn, parsed := ParseSynthesis(validSynthesisJSON)
	if !parsed {
		t.Fatal("expected clean JSON to parse")
	}
	if syn.ExecutiveSummary != "Do the thing." {
		t.Errorf("executive_summary = %q", syn.ExecutiveSummary)
	}
	if len(syn.Deliverables) != 1 || syn.Deliverables[0].Name != "MVP" {
		t.Errorf("deliverables = %+v", syn.Deliverables)
	}
	if len(syn.Phases) != 1 || len(syn.Phases[0].Objectives) != 1 {
		t.Errorf("phases = %+v", syn.Phases)
	}
	if syn.Confidence != "high" {
		t.Errorf("confidence = %q", syn.Confidence)
	}
}

func TestParseSynthesis_FencedWithLanguageTag(t *testing.T) {
	raw := "Here is my synthesis:\n```json\n" + validSynthesisJSON + "\n```\nHope that helps!"
	syn, parsed := ParseSynthesis(raw)
	if !parsed {
		t.Fatal("expected fenced JSON to parse")
	}
	if syn.ExecutiveSummary != "Do the thing." {
		t.Errorf("executive_summary = %q", syn.ExecutiveSummary)
	}
}

func TestParseSynthesis_FencedWithoutLanguageTag(t *testing.T) {
	raw := "```\n" + validSynthesisJSON + "\n```"
	syn, parsed := ParseSynthesis(raw)
	if !parsed {
		t.Fatal("expected fenced JSON (no tag) to parse")
	}
	if syn.Confidence != "high" {
		t.Errorf("confidence = %q", syn.Confidence)
	}
}

func TestParseSynthesis_PreambleAndTrailingObject(t *testing.T) {
	raw := "After careful deliberation, the council concludes:\n\n" + validSynthesisJSON
	syn, parsed := ParseSynthesis(raw)
	if !parsed {
		t.Fatal("expected brace-span extraction to parse")
	}
	if len(syn.Risks) != 1 || syn.Risks[0].Severity != "high" {
		t.Errorf("risks = %+v", syn.Risks)
	}
}

func TestParseSynthesis_PureProseFallsBack(t *testing.T) {
	raw := "I think the plan is good. Ship it."
	syn, parsed := ParseSynthesis(raw)
	if parsed {
		t.Fatal("prose must not parse")
	}
	if syn.ExecutiveSummary != raw {
		t.Errorf("fallback narrative should be the raw reply, got %q", syn.ExecutiveSummary)
	}
	if syn.Confidence != "unknown" {
		t.Errorf("fallback confidence = %q", syn.Confidence)
	}
	if syn.Deliverables == nil || len(syn.Deliverables) != 0 {
		t.Errorf("fallback lists must be empty, got %+v", syn.Deliverables)
	}
	if syn.ConfidenceNote == "" {
		t.Error("fallback should note the parse failure")
	}
}

func TestParseSynthesis_TruncatedJSONFallsBack(t *testing.T) {
	raw := `{"executive_summary": "cut off mid-`
	syn, parsed := ParseSynthesis(raw)
	if parsed {
		t.Fatal("truncated JSON must not parse")
	}
	if syn.ExecutiveSummary != raw {
		t.Errorf("fallback narrative = %q", syn.ExecutiveSummary)
	}
}

func TestParseSynthesis_ShapeMismatchesCoerced(t *testing.T) {
	raw := `{
		"executive_summary": 42,
		"deliverables": "not a list",
		"risks": [{"risk": "real", "severity": "low", "mitigation": "none"}, "junk entry"],
		"strategic_priorities": ["keep", 7, "these"],
		"resource_considerations": {"team": 2},
		"confidence": ["high"]
	}`
	syn, parsed := ParseSynthesis(raw)
	if !parsed {
		t.Fatal("object extracted, coercion must not fail the parse")
	}
	if syn.ExecutiveSummary != "42" {
		t.Errorf("non-string narrative should be stringified, got %q", syn.ExecutiveSummary)
	}
	if len(syn.Deliverables) != 0 {
		t.Errorf("non-list deliverables should coerce to empty, got %+v", syn.Deliverables)
	}
	if len(syn.Risks) != 1 || syn.Risks[0].Risk != "real" {
		t.Errorf("ill-shaped risk entries should be dropped, got %+v", syn.Risks)
	}
	if len(syn.StrategicPriorities) != 2 {
		t.Errorf("non-string priorities should be dropped, got %+v", syn.StrategicPriorities)
	}
	if syn.ResourceConsiderations != `{"team":2}` {
		t.Errorf("object-valued string field should be stringified, got %q", syn.ResourceConsiderations)
	}
	if syn.Confidence != `["high"]` {
		t.Errorf("list-valued confidence should be stringified, got %q", syn.Confidence)
	}
	if syn.ConfidenceNote != "" {
		t.Errorf("missing note should default to empty, got %q", syn.ConfidenceNote)
	}
}

func TestParseSynthesis_MissingFieldsGetDefaults(t *testing.T) {
	syn, parsed := ParseSynthesis(`{"executive_summary": "only this"}`)
	if !parsed {
		t.Fatal("expected parse")
	}
	if syn.Confidence != "unknown" {
		t.Errorf("missing confidence should default to unknown, got %q", syn.Confidence)
	}
	if syn.Moats == nil || syn.Disagreements == nil {
		t.Error("missing lists must be empty, not nil")
	}
}

func TestExtractObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"clean object", `{"a": 1}`, true},
		{"object with whitespace", "  \n {\"a\": 1} \n ", true},
		{"fenced json", "```json\n{\"a\": 1}\n```", true},
		{"fenced no tag", "```\n{\"a\": 1}\n```", true},
		{"nested braces via span", `prose {"a": {"b": 2}} trailing`, true},
		{"top-level array", `[1, 2, 3]`, false},
		{"no json", "just words", false},
		{"empty", "", false},
		{"lone open brace", "{", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractObject(tt.input)
			if (got != nil) != tt.want {
				t.Errorf("ExtractObject(%q) = %v, want present=%v", tt.input, got, tt.want)
			}
		})
	}
}
