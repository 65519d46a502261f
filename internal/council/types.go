// Package council implements the three-stage deliberation pipeline:
// concurrent opinion gathering with a quorum gate, anonymized cross-review,
// and chairman synthesis with layered JSON extraction.
package council

import "time"

// Councilor identifies one answer-generating model on the roster. The
// chairman is a Councilor without a role tag. Immutable for a run.
type Councilor struct {
	ID    string `json:"id"`
	Model string `json:"model"`
	Label string `json:"label"`
	Role  string `json:"role,omitempty"`
}

// Answer is a councilor's response to the original question, created in
// Stage 1 and never mutated afterwards.
type Answer struct {
	Councilor Councilor
	Text      string
}

// Review is a councilor's critique of the anonymized peer answers, created
// in Stage 2. It references only the reviewing councilor; the reviewed
// answers stay anonymous by construction.
type Review struct {
	Councilor Councilor
	Text      string
}

// RunError records one non-fatal failure (a councilor or reviewer that
// exhausted its retry budget).
type RunError struct {
	Source string `json:"model"`
	Reason string `json:"error"`
}

// Deliverable is one concrete output of the synthesized plan.
type Deliverable struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Phase       string `json:"phase"`
}

// SuccessCriterion is one measurable target of the synthesized plan.
type SuccessCriterion struct {
	Metric    string `json:"metric"`
	Target    string `json:"target"`
	Rationale string `json:"rationale"`
}

// PlanPhase is one sequenced phase with its go/no-go decision point.
type PlanPhase struct {
	Name          string   `json:"name"`
	Duration      string   `json:"duration"`
	Objectives    []string `json:"objectives"`
	DecisionPoint string   `json:"decision_point"`
}

// Risk is one identified risk with severity and mitigation.
type Risk struct {
	Risk       string `json:"risk"`
	Severity   string `json:"severity"`
	Mitigation string `json:"mitigation"`
}

// Moat is one defensible strategic advantage.
type Moat struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Durability  string `json:"durability"`
}

// Disagreement records a point the advisors split on, with the chairman's
// verdict.
type Disagreement struct {
	Topic           string `json:"topic"`
	Summary         string `json:"summary"`
	ChairmanVerdict string `json:"chairman_verdict"`
}

// Synthesis is the chairman's structured verdict. Every field is guaranteed
// to hold its declared shape after coercion; a degraded synthesis carries
// the raw reply (or a failure explanation) in ExecutiveSummary with all
// lists empty.
type Synthesis struct {
	ExecutiveSummary       string             `json:"executive_summary"`
	Deliverables           []Deliverable      `json:"deliverables"`
	SuccessCriteria        []SuccessCriterion `json:"success_criteria"`
	Phases                 []PlanPhase        `json:"phases"`
	Risks                  []Risk             `json:"risks"`
	Moats                  []Moat             `json:"moats"`
	StrategicPriorities    []string           `json:"strategic_priorities"`
	ResourceConsiderations string             `json:"resource_considerations"`
	GoNoGoCriteria         []string           `json:"go_no_go_criteria"`
	Disagreements          []Disagreement     `json:"disagreements"`
	Confidence             string             `json:"confidence"`
	ConfidenceNote         string             `json:"confidence_note"`
}

// DegradedSynthesis builds the fixed-shape fallback record used when the
// chairman call fails or its reply cannot be parsed.
func DegradedSynthesis(narrative, note string) Synthesis {
	return Synthesis{
		ExecutiveSummary:    narrative,
		Deliverables:        []Deliverable{},
		SuccessCriteria:     []SuccessCriterion{},
		Phases:              []PlanPhase{},
		Risks:               []Risk{},
		Moats:               []Moat{},
		StrategicPriorities: []string{},
		GoNoGoCriteria:      []string{},
		Disagreements:       []Disagreement{},
		Confidence:          "unknown",
		ConfidenceNote:      note,
	}
}

// AnswerEntry is the externally visible form of one answer.
type AnswerEntry struct {
	Model  string `json:"model"`
	Answer string `json:"answer"`
}

// ReviewEntry is the externally visible form of one review.
type ReviewEntry struct {
	Reviewer string `json:"reviewer"`
	Review   string `json:"review"`
}

// RunReport is the final artifact of a deliberation run. Synthesis fields
// are flattened to the top level of the JSON output. Immutable once
// returned.
type RunReport struct {
	RunID    string `json:"run_id"`
	Question string `json:"question"`
	Synthesis
	IndividualAnswers  []AnswerEntry `json:"individual_answers"`
	PeerReviews        []ReviewEntry `json:"peer_reviews"`
	Chairman           string        `json:"chairman"`
	Council            []string      `json:"council"`
	Stage2Skipped      bool          `json:"stage2_skipped"`
	RunStartedAt       time.Time     `json:"run_started_at"`
	RunDurationSeconds float64       `json:"run_duration_seconds"`
	Errors             []RunError    `json:"errors"`
}
