package council

import (
	"fmt"
	"strings"
)

const opinionSystemPrompt = "You are a strategic planning advisor on a council that refines visions into actionable strategic plans. " +
	"Focus on: deliverables, milestones, success criteria, risks, resource needs, timeline phases, " +
	"go/no-go decision points, and moats (defensible strategic advantages). " +
	"Do NOT recommend specific technologies, tools, vendors, or implementation details " +
	"- a separate product manager handles those decisions. " +
	"Stay at the strategic level: what needs to be built, why, in what order, " +
	"how to measure success, what could go wrong, and what makes this defensible. " +
	"Be direct, thorough, and honest. Do not hedge unnecessarily. " +
	"Aim for 200-400 words."

const reviewSystemPrompt = "You are evaluating strategic plans from other AI models for the same initiative. " +
	"The models are anonymized as Model A, B, C. Do not play favorites. " +
	"Evaluate strategic thinking quality: Are deliverables clear and measurable? " +
	"Are risks identified with viable mitigations? Are phases sequenced logically? " +
	"Are success criteria specific enough to be actionable? " +
	"Are moats clearly identified and defensible? " +
	"Ignore any specific technology or tool recommendations - those are out of scope."

const chairmanSystemPrompt = "You are a strategic planning synthesis expert. " +
	"Your job is to distill multiple strategic perspectives into one cohesive strategic plan. " +
	"Output only valid JSON, no markdown code blocks."

// chairmanFormatInstruction is the output contract for the synthesis call.
// The layered parser tolerates replies that violate it.
const chairmanFormatInstruction = `Your job: Synthesize all perspectives into a unified strategic plan. Do NOT recommend specific technologies, tools, or vendors. Produce a response in the following JSON format (and ONLY JSON, no markdown wrapper):

{
  "executive_summary": "A 300-600 word strategic synthesis. What is the initiative, why it matters, and the recommended strategic approach. Draw on the best insights from all advisors. Be definitive.",
  "deliverables": [
    {
      "name": "Short name for the deliverable",
      "description": "What this deliverable is and why it matters",
      "phase": "Which phase this belongs to (e.g. Phase 1, Phase 2)"
    }
  ],
  "success_criteria": [
    {
      "metric": "What to measure",
      "target": "Specific target or threshold",
      "rationale": "Why this metric matters"
    }
  ],
  "phases": [
    {
      "name": "Phase name (e.g. Phase 1: Foundation)",
      "duration": "Estimated duration (e.g. 2-4 weeks)",
      "objectives": ["Key objective 1", "Key objective 2"],
      "decision_point": "What must be true to proceed to the next phase"
    }
  ],
  "risks": [
    {
      "risk": "Description of the risk",
      "severity": "high|medium|low",
      "mitigation": "How to mitigate this risk"
    }
  ],
  "moats": [
    {
      "type": "Category of strategic advantage (e.g. Network Effect, Data Advantage, Switching Cost, Brand, Expertise)",
      "description": "What this moat is and how it works",
      "durability": "How long-lasting and defensible this advantage is"
    }
  ],
  "strategic_priorities": ["Priority 1 all advisors agreed on", "Priority 2..."],
  "resource_considerations": "High-level resource needs: team size, skill areas, budget range, timeline constraints. No specific tool or vendor names.",
  "go_no_go_criteria": ["Criterion that must be met to proceed", "Another criterion..."],
  "disagreements": [
    {
      "topic": "Short label for what advisors disagreed on",
      "summary": "What the strategic disagreement was and why it matters",
      "chairman_verdict": "Your take on which strategic approach is stronger and why"
    }
  ],
  "confidence": "high|medium|low",
  "confidence_note": "Brief note on confidence level"
}`

// buildReviewPrompt assembles the user prompt for one reviewer.
func buildReviewPrompt(question, anonymizedBundle string, peerCount int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Strategic initiative: %s\n\n", question)
	fmt.Fprintf(&b, "Here are %d strategic plans from other advisors:\n\n%s\n\n", peerCount, anonymizedBundle)
	b.WriteString("Please:\n" +
		"1. Rank these plans from strongest to weakest " +
		"based on strategic clarity, risk coverage, and actionability\n" +
		"2. Note any significant strategic disagreements - different priorities, " +
		"conflicting phase sequences, or incompatible success criteria\n" +
		"3. Identify strategic gaps: missing risks, vague deliverables, " +
		"unrealistic timelines, weak or absent moats, or absent decision gates\n" +
		"Ignore any specific technology or tool recommendations. " +
		"Be specific and critical. 150-300 words.")
	return b.String()
}

// buildChairmanPrompt assembles the synthesis prompt. Real identities are
// used here: anonymity only applies to the peer-review stage. When no
// reviews exist the peer-review section is omitted entirely.
func buildChairmanPrompt(question string, answers []Answer, reviews []Review) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are the Chairman of a Strategic Planning Council. ")
	fmt.Fprintf(&b, "Your council was asked to create a strategic plan for:\n\n")
	fmt.Fprintf(&b, "**INITIATIVE:** %s\n\n---\n\n", question)

	b.WriteString("**INDIVIDUAL STRATEGIC PLANS:**\n\n")
	sections := make([]string, len(answers))
	for i, a := range answers {
		sections[i] = fmt.Sprintf("**%s:**\n%s", a.Councilor.Label, a.Text)
	}
	b.WriteString(strings.Join(sections, "\n\n"))
	b.WriteString("\n\n---\n\n")

	if len(reviews) > 0 {
		b.WriteString("**PEER REVIEWS:**\n\n")
		sections = make([]string, len(reviews))
		for i, r := range reviews {
			sections[i] = fmt.Sprintf("**%s's review of others:**\n%s", r.Councilor.Label, r.Text)
		}
		b.WriteString(strings.Join(sections, "\n\n"))
		b.WriteString("\n\n---\n\n")
	}

	b.WriteString(chairmanFormatInstruction)
	return b.String()
}
