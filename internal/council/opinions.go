package council

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"council/internal/logging"
	"council/internal/transport"
)

// Caller abstracts the transport layer for the pipeline stages.
type Caller interface {
	Call(ctx context.Context, model string, messages []transport.Message, label string) transport.Outcome
}

// ErrQuorum is wrapped by the fatal Stage 1 error when too few councilors
// answer. It is the only error that aborts a run.
var ErrQuorum = errors.New("quorum not met")

// GatherOpinions asks every councilor the question concurrently and waits
// for all outcomes. Successes and failures are partitioned; the run
// continues with whatever subset succeeded unless it falls below minQuorum,
// in which case a fatal quorum error summarizing the collected failure
// reasons is returned.
func GatherOpinions(ctx context.Context, caller Caller, question string, roster []Councilor, minQuorum int) ([]Answer, []RunError, error) {
	logging.Stage1("gathering first opinions from %d councilors", len(roster))

	outcomes := make([]transport.Outcome, len(roster))
	var wg sync.WaitGroup
	for i, c := range roster {
		wg.Add(1)
		go func(i int, c Councilor) {
			defer wg.Done()
			outcomes[i] = caller.Call(ctx, c.Model, []transport.Message{
				{Role: "system", Content: opinionSystemPrompt},
				{Role: "user", Content: question},
			}, c.Label)
		}(i, c)
	}
	wg.Wait()

	answers := make([]Answer, 0, len(roster))
	failures := make([]RunError, 0)
	for i, out := range outcomes {
		if out.OK {
			answers = append(answers, Answer{Councilor: roster[i], Text: out.Text})
			logging.Stage1("%s answered (%d chars, %d attempts)", roster[i].Label, len(out.Text), out.Attempts)
		} else {
			failures = append(failures, RunError{Source: roster[i].Label, Reason: out.Reason})
			logging.Stage1Error("%s failed: %s", roster[i].Label, out.Reason)
		}
	}

	if len(answers) < minQuorum {
		reasons := make([]string, 0, len(failures))
		for _, f := range failures {
			reasons = append(reasons, f.Reason)
		}
		return nil, failures, fmt.Errorf("%w: only %d councilor(s) succeeded, minimum %d required (errors: %s)",
			ErrQuorum, len(answers), minQuorum, strings.Join(reasons, "; "))
	}

	return answers, failures, nil
}
