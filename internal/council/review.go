package council

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"council/internal/logging"
	"council/internal/transport"
)

// AnonymizeAnswers builds the anonymized bundle one reviewer sees: every
// surviving answer except the reviewer's own (matched by councilor ID),
// shuffled and relabeled "Model A", "Model B", ... in the permuted order.
// The opaque labels carry nothing about identity, role, or original order.
func AnonymizeAnswers(answers []Answer, excludeID string, rng *rand.Rand) string {
	others := make([]Answer, 0, len(answers))
	for _, a := range answers {
		if a.Councilor.ID != excludeID {
			others = append(others, a)
		}
	}

	// Shuffle so models can't pattern-match on ordering
	rng.Shuffle(len(others), func(i, j int) {
		others[i], others[j] = others[j], others[i]
	})

	sections := make([]string, len(others))
	for i, other := range others {
		sections[i] = fmt.Sprintf("**Model %c:**\n%s", rune('A'+i), other.Text)
	}
	return strings.Join(sections, "\n\n---\n\n")
}

// GatherReviews asks each surviving councilor to critique the others'
// anonymized answers, all concurrently. There is no quorum here: any
// subset of successful reviews (including none) is forwarded, and this
// stage never aborts the run.
//
// The bundles are built sequentially before the fan-out: the shared rng is
// not safe for concurrent use, and each reviewer must get an independent
// permutation.
func GatherReviews(ctx context.Context, caller Caller, question string, answers []Answer, rng *rand.Rand) ([]Review, []RunError) {
	logging.Stage2("cross-reviewing among %d councilors", len(answers))

	prompts := make([]string, len(answers))
	for i, a := range answers {
		bundle := AnonymizeAnswers(answers, a.Councilor.ID, rng)
		prompts[i] = buildReviewPrompt(question, bundle, len(answers)-1)
	}

	outcomes := make([]transport.Outcome, len(answers))
	var wg sync.WaitGroup
	for i, a := range answers {
		wg.Add(1)
		go func(i int, c Councilor) {
			defer wg.Done()
			outcomes[i] = caller.Call(ctx, c.Model, []transport.Message{
				{Role: "system", Content: reviewSystemPrompt},
				{Role: "user", Content: prompts[i]},
			}, c.Label)
		}(i, a.Councilor)
	}
	wg.Wait()

	reviews := make([]Review, 0, len(answers))
	failures := make([]RunError, 0)
	for i, out := range outcomes {
		if out.OK {
			reviews = append(reviews, Review{Councilor: answers[i].Councilor, Text: out.Text})
			logging.Stage2("%s reviewed (%d chars)", answers[i].Councilor.Label, len(out.Text))
		} else {
			failures = append(failures, RunError{Source: answers[i].Councilor.Label, Reason: out.Reason})
			logging.Stage2Warn("%s review failed: %s", answers[i].Councilor.Label, out.Reason)
		}
	}

	return reviews, failures
}
