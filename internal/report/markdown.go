// Package report renders a deliberation artifact as markdown. The artifact
// is read back from disk as loose JSON, so every field is re-validated here
// rather than trusted: files get hand-edited, and older runs may predate
// fields added later.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify reduces free text to a filesystem-safe token of at most maxLen
// runes. Empty or fully non-alphanumeric input yields "council".
func Slugify(text string, maxLen int) string {
	s := slugPattern.ReplaceAllString(strings.ToLower(text), "_")
	s = strings.Trim(s, "_")
	if maxLen > 0 && len(s) > maxLen {
		s = strings.Trim(s[:maxLen], "_")
	}
	if s == "" {
		return "council"
	}
	return s
}

// Parse decodes a run artifact and sanitizes it. Only a reply that is not a
// JSON object at the top level is an error; any field-level damage is
// repaired with defaults instead.
func Parse(data []byte) (map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("report is not a JSON object: %w", err)
	}
	if raw == nil {
		return nil, errors.New("report is empty")
	}
	return Sanitize(raw), nil
}

// stringDefaults maps every scalar field to the value used when it is
// missing or damaged.
var stringDefaults = map[string]string{
	"question":                "Unknown question",
	"executive_summary":       "No answer provided.",
	"resource_considerations": "",
	"confidence":              "unknown",
	"confidence_note":         "",
	"chairman":                "Unknown",
	"run_id":                  "",
	"run_started_at":          "",
}

var listFields = []string{
	"deliverables", "success_criteria", "phases", "risks", "moats",
	"strategic_priorities", "go_no_go_criteria", "disagreements",
	"individual_answers", "peer_reviews", "council", "errors",
}

// Sanitize returns a copy of raw where every field the renderer reads is
// guaranteed to hold its expected shape. Scalars get defaults, lists
// collapse to empty when they are not lists. The input map is not modified.
func Sanitize(raw map[string]any) map[string]any {
	doc := make(map[string]any, len(raw))
	for k, v := range raw {
		doc[k] = v
	}

	for key, def := range stringDefaults {
		v, ok := doc[key]
		if !ok || v == nil {
			doc[key] = def
			continue
		}
		if s, isStr := v.(string); isStr {
			if s == "" && def != "" {
				doc[key] = def
			}
			continue
		}
		doc[key] = stringify(v)
	}

	for _, key := range listFields {
		if _, ok := doc[key].([]any); !ok {
			doc[key] = []any{}
		}
	}

	return doc
}

// stringify renders a non-string scalar the way it appeared in the JSON.
func stringify(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func getString(doc map[string]any, key string) string {
	s, _ := doc[key].(string)
	return s
}

func getList(doc map[string]any, key string) []any {
	l, _ := doc[key].([]any)
	return l
}

// itemStr pulls a string field out of a list element, tolerating elements
// that are not objects and fields that are not strings.
func itemStr(item any, key string) string {
	m, ok := item.(map[string]any)
	if !ok {
		return ""
	}
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return stringify(v)
	}
}

// stringItems flattens a list of scalars to strings, dropping empties.
func stringItems(doc map[string]any, key string) []string {
	var out []string
	for _, v := range getList(doc, key) {
		s, ok := v.(string)
		if !ok {
			s = stringify(v)
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// RenderMarkdown produces the full report document. Sections with no
// content are omitted rather than rendered empty; the executive summary and
// confidence verdict always appear.
func RenderMarkdown(doc map[string]any) string {
	var b strings.Builder

	b.WriteString("# Council Deliberation Report\n\n")
	fmt.Fprintf(&b, "**Initiative:** %s\n\n", getString(doc, "question"))

	var meta []string
	if c := getString(doc, "chairman"); c != "" {
		meta = append(meta, "Chairman: "+c)
	}
	if members := stringItems(doc, "council"); len(members) > 0 {
		meta = append(meta, "Council: "+strings.Join(members, ", "))
	}
	if skipped, _ := doc["stage2_skipped"].(bool); skipped {
		meta = append(meta, "peer review skipped")
	}
	if id := getString(doc, "run_id"); id != "" {
		meta = append(meta, "Run "+id)
	}
	if len(meta) > 0 {
		fmt.Fprintf(&b, "_%s_\n\n", strings.Join(meta, " · "))
	}

	b.WriteString("## Executive Summary\n\n")
	b.WriteString(getString(doc, "executive_summary"))
	b.WriteString("\n")

	if items := getList(doc, "deliverables"); len(items) > 0 {
		b.WriteString("\n## Deliverables\n\n")
		for _, item := range items {
			name := itemStr(item, "name")
			if name == "" {
				continue
			}
			fmt.Fprintf(&b, "- **%s**", name)
			if phase := itemStr(item, "phase"); phase != "" {
				fmt.Fprintf(&b, " (%s)", phase)
			}
			if desc := itemStr(item, "description"); desc != "" {
				fmt.Fprintf(&b, " — %s", desc)
			}
			b.WriteString("\n")
		}
	}

	if items := getList(doc, "success_criteria"); len(items) > 0 {
		b.WriteString("\n## Success Criteria\n\n")
		for _, item := range items {
			metric := itemStr(item, "metric")
			if metric == "" {
				continue
			}
			fmt.Fprintf(&b, "- **%s**: %s", metric, itemStr(item, "target"))
			if r := itemStr(item, "rationale"); r != "" {
				fmt.Fprintf(&b, " (%s)", r)
			}
			b.WriteString("\n")
		}
	}

	if items := getList(doc, "phases"); len(items) > 0 {
		b.WriteString("\n## Phases\n")
		for _, item := range items {
			name := itemStr(item, "name")
			if name == "" {
				continue
			}
			fmt.Fprintf(&b, "\n### %s", name)
			if d := itemStr(item, "duration"); d != "" {
				fmt.Fprintf(&b, " (%s)", d)
			}
			b.WriteString("\n\n")
			if m, ok := item.(map[string]any); ok {
				if objectives, ok := m["objectives"].([]any); ok {
					for _, o := range objectives {
						if s, ok := o.(string); ok && s != "" {
							fmt.Fprintf(&b, "- %s\n", s)
						}
					}
				}
			}
			if dp := itemStr(item, "decision_point"); dp != "" {
				fmt.Fprintf(&b, "\n**Decision point:** %s\n", dp)
			}
		}
	}

	if items := getList(doc, "risks"); len(items) > 0 {
		b.WriteString("\n## Risks\n\n")
		for _, item := range items {
			risk := itemStr(item, "risk")
			if risk == "" {
				continue
			}
			severity := itemStr(item, "severity")
			if severity == "" {
				severity = "unrated"
			}
			fmt.Fprintf(&b, "- **[%s]** %s", strings.ToUpper(severity), risk)
			if m := itemStr(item, "mitigation"); m != "" {
				fmt.Fprintf(&b, " — mitigation: %s", m)
			}
			b.WriteString("\n")
		}
	}

	if items := getList(doc, "moats"); len(items) > 0 {
		b.WriteString("\n## Moats\n\n")
		for _, item := range items {
			moat := itemStr(item, "type")
			if moat == "" {
				continue
			}
			fmt.Fprintf(&b, "- **%s** — %s", moat, itemStr(item, "description"))
			if d := itemStr(item, "durability"); d != "" {
				fmt.Fprintf(&b, " (durability: %s)", d)
			}
			b.WriteString("\n")
		}
	}

	if priorities := stringItems(doc, "strategic_priorities"); len(priorities) > 0 {
		b.WriteString("\n## Strategic Priorities\n\n")
		for i, p := range priorities {
			fmt.Fprintf(&b, "%d. %s\n", i+1, p)
		}
	}

	if rc := getString(doc, "resource_considerations"); rc != "" {
		b.WriteString("\n## Resource Considerations\n\n")
		b.WriteString(rc)
		b.WriteString("\n")
	}

	if criteria := stringItems(doc, "go_no_go_criteria"); len(criteria) > 0 {
		b.WriteString("\n## Go / No-Go Criteria\n\n")
		for _, c := range criteria {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}

	if items := getList(doc, "disagreements"); len(items) > 0 {
		b.WriteString("\n## Disagreements\n")
		for _, item := range items {
			topic := itemStr(item, "topic")
			if topic == "" {
				topic = "Unnamed disagreement"
			}
			fmt.Fprintf(&b, "\n### %s\n\n", topic)
			if s := itemStr(item, "summary"); s != "" {
				b.WriteString(s)
				b.WriteString("\n")
			}
			if v := itemStr(item, "chairman_verdict"); v != "" {
				fmt.Fprintf(&b, "\n**Chairman's verdict:** %s\n", v)
			}
		}
	}

	b.WriteString("\n## Confidence\n\n")
	fmt.Fprintf(&b, "**%s**", getString(doc, "confidence"))
	if note := getString(doc, "confidence_note"); note != "" {
		fmt.Fprintf(&b, " — %s", note)
	}
	b.WriteString("\n")

	if items := getList(doc, "individual_answers"); len(items) > 0 {
		b.WriteString("\n## Appendix A: Individual Answers\n")
		for _, item := range items {
			model := itemStr(item, "model")
			if model == "" {
				model = "Unknown"
			}
			fmt.Fprintf(&b, "\n### %s\n\n%s\n", model, itemStr(item, "answer"))
		}
	}

	if items := getList(doc, "peer_reviews"); len(items) > 0 {
		b.WriteString("\n## Appendix B: Peer Reviews\n")
		for _, item := range items {
			reviewer := itemStr(item, "reviewer")
			if reviewer == "" {
				reviewer = "Unknown"
			}
			fmt.Fprintf(&b, "\n### %s\n\n%s\n", reviewer, itemStr(item, "review"))
		}
	}

	if items := getList(doc, "errors"); len(items) > 0 {
		b.WriteString("\n## Errors\n\n")
		for _, item := range items {
			model := itemStr(item, "model")
			if model == "" {
				model = "unknown"
			}
			fmt.Fprintf(&b, "- %s: %s\n", model, itemStr(item, "error"))
		}
	}

	return b.String()
}

// RenderTerminal styles the markdown for an ANSI terminal. width <= 0 falls
// back to 100 columns.
func RenderTerminal(markdown string, width int) (string, error) {
	if width <= 0 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("building terminal renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}
	return out, nil
}
