package council

import (
	"context"
	"math"
	"math/rand"
	"time"

	"council/internal/logging"

	"github.com/google/uuid"
)

// Runner sequences the three deliberation stages and assembles the final
// RunReport. Stages never overlap: Stage 2 starts only after every Stage 1
// outcome is known, and Stage 3 only after Stage 2 (or its skip) resolves.
type Runner struct {
	caller    Caller
	roster    []Councilor
	chairman  Councilor
	minQuorum int
	rng       *rand.Rand
}

// NewRunner creates a runner. The shuffle source is seeded from the clock;
// tests replace it via WithRand.
func NewRunner(caller Caller, roster []Councilor, chairman Councilor, minQuorum int) *Runner {
	return &Runner{
		caller:    caller,
		roster:    roster,
		chairman:  chairman,
		minQuorum: minQuorum,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithRand replaces the anonymization shuffle source. Intended for tests
// that need reproducible permutations.
func (r *Runner) WithRand(rng *rand.Rand) *Runner {
	r.rng = rng
	return r
}

// Run executes the full pipeline for one question. In fast mode Stage 2 is
// skipped entirely and the synthesis prompt omits the peer-review section.
// Only a quorum failure returns an error; every other failure mode degrades
// into a still-valid RunReport.
func (r *Runner) Run(ctx context.Context, question string, fast bool) (*RunReport, error) {
	startedAt := time.Now().UTC()
	t0 := time.Now()
	runID := uuid.NewString()

	logging.Run("run %s: convening council of %d (fast=%v)", runID, len(r.roster), fast)

	allErrors := []RunError{}

	// Stage 1
	answers, stage1Errors, err := GatherOpinions(ctx, r.caller, question, r.roster, r.minQuorum)
	allErrors = append(allErrors, stage1Errors...)
	if err != nil {
		logging.RunError("run %s aborted: %v", runID, err)
		return nil, err
	}

	// Stage 2 (skipped in fast mode)
	var reviews []Review
	if fast {
		logging.Run("run %s: stage 2 skipped (fast mode)", runID)
	} else {
		var stage2Errors []RunError
		reviews, stage2Errors = GatherReviews(ctx, r.caller, question, answers, r.rng)
		allErrors = append(allErrors, stage2Errors...)
	}

	// Stage 3
	synthesis := Synthesize(ctx, r.caller, r.chairman, question, answers, reviews)

	duration := math.Round(time.Since(t0).Seconds()*10) / 10

	individual := make([]AnswerEntry, len(answers))
	for i, a := range answers {
		individual[i] = AnswerEntry{Model: a.Councilor.Label, Answer: a.Text}
	}
	peerReviews := make([]ReviewEntry, len(reviews))
	for i, rv := range reviews {
		peerReviews[i] = ReviewEntry{Reviewer: rv.Councilor.Label, Review: rv.Text}
	}
	labels := make([]string, len(r.roster))
	for i, c := range r.roster {
		labels[i] = c.Label
	}

	logging.Run("run %s complete in %.1fs (%d answers, %d reviews, %d errors)",
		runID, duration, len(answers), len(reviews), len(allErrors))

	return &RunReport{
		RunID:              runID,
		Question:           question,
		Synthesis:          synthesis,
		IndividualAnswers:  individual,
		PeerReviews:        peerReviews,
		Chairman:           r.chairman.Label,
		Council:            labels,
		Stage2Skipped:      fast,
		RunStartedAt:       startedAt,
		RunDurationSeconds: duration,
		Errors:             allErrors,
	}, nil
}
