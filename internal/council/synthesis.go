package council

import (
	"context"

	"council/internal/logging"
	"council/internal/transport"
)

// Synthesize issues the single chairman call and coerces the reply into a
// Synthesis. Neither a transport failure nor an unparseable reply aborts
// the run; both degrade to a fixed-shape fallback so the caller always gets
// a valid record.
func Synthesize(ctx context.Context, caller Caller, chairman Councilor, question string, answers []Answer, reviews []Review) Synthesis {
	logging.Stage3("%s synthesizing %d answers, %d reviews", chairman.Label, len(answers), len(reviews))

	prompt := buildChairmanPrompt(question, answers, reviews)
	out := caller.Call(ctx, chairman.Model, []transport.Message{
		{Role: "system", Content: chairmanSystemPrompt},
		{Role: "user", Content: prompt},
	}, chairman.Label)

	if !out.OK {
		logging.Stage3Error("chairman call failed: %s", out.Reason)
		return DegradedSynthesis("Chairman failed to respond: "+out.Reason, "Chairman call failed.")
	}

	logging.Stage3("chairman raw response length: %d chars", len(out.Text))

	synthesis, parsed := ParseSynthesis(out.Text)
	if !parsed {
		logging.Stage3Warn("chairman reply was not valid JSON, using raw text fallback")
	}
	return synthesis
}
