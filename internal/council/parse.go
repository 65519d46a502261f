package council

import (
	"encoding/json"
	"regexp"
	"strings"
)

// fencePattern matches a markdown code fence with or without a language tag.
var fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// ExtractObject coerces a free-text model reply into a JSON object using
// layered strategies, first success wins:
//  1. the whole trimmed reply parses as a JSON object;
//  2. the interior of a fenced code block parses as a JSON object;
//  3. the outermost brace span (first '{' to last '}') parses as one.
//
// Returns nil when every strategy fails.
func ExtractObject(raw string) map[string]interface{} {
	if obj := tryParseObject(strings.TrimSpace(raw)); obj != nil {
		return obj
	}

	if m := fencePattern.FindStringSubmatch(raw); m != nil {
		if obj := tryParseObject(strings.TrimSpace(m[1])); obj != nil {
			return obj
		}
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		if obj := tryParseObject(raw[start : end+1]); obj != nil {
			return obj
		}
	}

	return nil
}

func tryParseObject(s string) map[string]interface{} {
	if s == "" {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	return obj
}

// ParseSynthesis turns the chairman's raw reply into a Synthesis. The
// second return reports whether any JSON object was extracted; when false
// the result is the raw-text fallback. A shape mismatch on an individual
// field never fails the parse: the field is coerced to its default.
func ParseSynthesis(raw string) (Synthesis, bool) {
	obj := ExtractObject(raw)
	if obj == nil {
		return DegradedSynthesis(raw, "Chairman response could not be parsed as JSON."), false
	}

	return Synthesis{
		ExecutiveSummary:       coerceString(obj["executive_summary"], ""),
		Deliverables:           coerceList[Deliverable](obj["deliverables"]),
		SuccessCriteria:        coerceList[SuccessCriterion](obj["success_criteria"]),
		Phases:                 coerceList[PlanPhase](obj["phases"]),
		Risks:                  coerceList[Risk](obj["risks"]),
		Moats:                  coerceList[Moat](obj["moats"]),
		StrategicPriorities:    coerceList[string](obj["strategic_priorities"]),
		ResourceConsiderations: coerceString(obj["resource_considerations"], ""),
		GoNoGoCriteria:         coerceList[string](obj["go_no_go_criteria"]),
		Disagreements:          coerceList[Disagreement](obj["disagreements"]),
		Confidence:             coerceString(obj["confidence"], "unknown"),
		ConfidenceNote:         coerceString(obj["confidence_note"], ""),
	}, true
}

// coerceString accepts a string as-is, stringifies any other non-nil value,
// and falls back to the default for nil.
func coerceString(v interface{}, def string) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return def
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return def
		}
		return string(b)
	}
}

// coerceList decodes a JSON array element-by-element into []T, dropping
// elements that do not fit. Any non-array value yields an empty list.
func coerceList[T any](v interface{}) []T {
	out := []T{}
	items, ok := v.([]interface{})
	if !ok {
		return out
	}
	for _, item := range items {
		b, err := json.Marshal(item)
		if err != nil {
			continue
		}
		var t T
		if err := json.Unmarshal(b, &t); err != nil {
			continue
		}
		out = append(out, t)
	}
	return out
}
