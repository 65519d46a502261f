package report

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"Should we build the thing?", 40, "should_we_build_the_thing"},
		{"  Lots   of--punctuation!!  ", 40, "lots_of_punctuation"},
		{"ALLCAPS", 40, "allcaps"},
		{"", 40, "council"},
		{"???!!!", 40, "council"},
		{"a very long question that keeps going and going forever", 20, "a_very_long_question"},
		{"truncation lands on a separator x", 11, "truncation"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("Slugify(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}

func TestParse_NotAnObject(t *testing.T) {
	for _, bad := range []string{`[1, 2]`, `"just a string"`, `not json at all`, ``} {
		if _, err := Parse([]byte(bad)); err == nil {
			t.Errorf("Parse(%q) should fail", bad)
		}
	}
}

func TestParse_NullDocument(t *testing.T) {
	if _, err := Parse([]byte(`null`)); err == nil {
		t.Error("Parse(null) should fail")
	}
}

func TestSanitize_RepairsDamagedFields(t *testing.T) {
	doc := Sanitize(map[string]any{
		"question":     42,
		"deliverables": "not a list",
		"risks":        map[string]any{"oops": true},
		"confidence":   nil,
	})

	want := map[string]any{
		"question":   "42",
		"confidence": "unknown",
	}
	got := map[string]any{
		"question":   doc["question"],
		"confidence": doc["confidence"],
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("scalar repair mismatch (-want +got):\n%s", diff)
	}

	for _, key := range []string{"deliverables", "risks", "phases", "errors"} {
		l, ok := doc[key].([]any)
		if !ok || len(l) != 0 {
			t.Errorf("%s should sanitize to an empty list, got %v", key, doc[key])
		}
	}
}

func TestSanitize_Defaults(t *testing.T) {
	doc := Sanitize(map[string]any{})

	want := map[string]any{
		"question":          "Unknown question",
		"executive_summary": "No answer provided.",
		"confidence":        "unknown",
		"chairman":          "Unknown",
	}
	got := map[string]any{
		"question":          doc["question"],
		"executive_summary": doc["executive_summary"],
		"confidence":        doc["confidence"],
		"chairman":          doc["chairman"],
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestSanitize_DoesNotMutateInput(t *testing.T) {
	raw := map[string]any{"question": 7}
	Sanitize(raw)
	if raw["question"] != 7 {
		t.Errorf("input map was mutated: question = %v", raw["question"])
	}
}

func fullDocument() map[string]any {
	return map[string]any{
		"question":          "Should we expand into Mars real estate?",
		"run_id":            "run-1234",
		"chairman":          "The Chairman",
		"council":           []any{"Alpha", "Beta"},
		"executive_summary": "Proceed cautiously.",
		"deliverables": []any{
			map[string]any{"name": "Land survey", "description": "Map the territory", "phase": "Phase 1"},
		},
		"success_criteria": []any{
			map[string]any{"metric": "plots sold", "target": "10", "rationale": "demand signal"},
		},
		"phases": []any{
			map[string]any{
				"name": "Phase 1: Scouting", "duration": "2 weeks",
				"objectives":     []any{"find land", "price it"},
				"decision_point": "land exists",
			},
		},
		"risks": []any{
			map[string]any{"risk": "no atmosphere", "severity": "high", "mitigation": "domes"},
		},
		"moats": []any{
			map[string]any{"type": "First Mover", "description": "nobody else is there", "durability": "decades"},
		},
		"strategic_priorities":    []any{"survive", "profit"},
		"resource_considerations": "one rocket, two optimists",
		"go_no_go_criteria":       []any{"rocket works"},
		"disagreements": []any{
			map[string]any{"topic": "timing", "summary": "now vs never", "chairman_verdict": "now"},
		},
		"confidence":      "medium",
		"confidence_note": "sparse data",
		"individual_answers": []any{
			map[string]any{"model": "Alpha", "answer": "Yes, obviously."},
		},
		"peer_reviews": []any{
			map[string]any{"reviewer": "Beta", "review": "Model A is reckless."},
		},
		"errors": []any{
			map[string]any{"model": "Gamma", "error": "HTTP 503 after 3 attempts"},
		},
	}
}

func TestRenderMarkdown_FullDocument(t *testing.T) {
	md := RenderMarkdown(Sanitize(fullDocument()))

	wantFragments := []string{
		"# Council Deliberation Report",
		"**Initiative:** Should we expand into Mars real estate?",
		"Chairman: The Chairman",
		"Council: Alpha, Beta",
		"Run run-1234",
		"## Executive Summary",
		"Proceed cautiously.",
		"- **Land survey** (Phase 1) — Map the territory",
		"- **plots sold**: 10 (demand signal)",
		"### Phase 1: Scouting (2 weeks)",
		"- find land",
		"**Decision point:** land exists",
		"- **[HIGH]** no atmosphere — mitigation: domes",
		"- **First Mover** — nobody else is there (durability: decades)",
		"1. survive",
		"2. profit",
		"one rocket, two optimists",
		"- rocket works",
		"### timing",
		"**Chairman's verdict:** now",
		"**medium** — sparse data",
		"## Appendix A: Individual Answers",
		"### Alpha",
		"Yes, obviously.",
		"## Appendix B: Peer Reviews",
		"Model A is reckless.",
		"## Errors",
		"- Gamma: HTTP 503 after 3 attempts",
	}
	for _, frag := range wantFragments {
		if !strings.Contains(md, frag) {
			t.Errorf("rendered report missing %q", frag)
		}
	}
}

func TestRenderMarkdown_EmptySectionsOmitted(t *testing.T) {
	md := RenderMarkdown(Sanitize(map[string]any{
		"question":          "q",
		"executive_summary": "short answer",
		"confidence":        "unknown",
	}))

	for _, absent := range []string{
		"## Deliverables", "## Risks", "## Moats", "## Phases",
		"## Disagreements", "## Errors", "## Appendix",
	} {
		if strings.Contains(md, absent) {
			t.Errorf("empty section %q should be omitted", absent)
		}
	}
	for _, present := range []string{"## Executive Summary", "## Confidence", "**unknown**"} {
		if !strings.Contains(md, present) {
			t.Errorf("section %q must always render", present)
		}
	}
}

func TestRenderMarkdown_SkipsNamelessEntries(t *testing.T) {
	md := RenderMarkdown(Sanitize(map[string]any{
		"deliverables": []any{
			map[string]any{"description": "no name here"},
			"not even an object",
			map[string]any{"name": "Real one"},
		},
	}))

	if strings.Contains(md, "no name here") {
		t.Error("deliverable without a name should be skipped")
	}
	if !strings.Contains(md, "- **Real one**") {
		t.Error("valid deliverable should survive its broken siblings")
	}
}

func TestRenderMarkdown_FastRunNote(t *testing.T) {
	md := RenderMarkdown(Sanitize(map[string]any{
		"question":       "q",
		"stage2_skipped": true,
	}))
	if !strings.Contains(md, "peer review skipped") {
		t.Error("fast runs should be flagged in the metadata line")
	}
}

func TestRenderTerminal(t *testing.T) {
	md := RenderMarkdown(Sanitize(fullDocument()))
	out, err := RenderTerminal(md, 80)
	if err != nil {
		t.Fatalf("RenderTerminal: %v", err)
	}
	if !strings.Contains(out, "Council Deliberation Report") {
		t.Error("styled output should retain the title text")
	}
}
