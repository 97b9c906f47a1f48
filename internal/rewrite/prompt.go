package rewrite

import "fmt"

// Tone is the narration style embedded verbatim in the prompt.
// Unrecognized labels are passed through as-is so new tones can be offered
// without a code change.
type Tone string

// Commonly offered tones.
const (
	ToneNeutral     Tone = "Neutral"
	ToneSuspenseful Tone = "Suspenseful"
	ToneInspiring   Tone = "Inspiring"
)

// OrDefault returns the tone, or ToneNeutral when unset.
func (t Tone) OrDefault() Tone {
	if t == "" {
		return ToneNeutral
	}
	return t
}

// promptTemplate instructs the model to rewrite one chunk without inventing
// content. The tone label is interpolated verbatim.
const promptTemplate = `Rewrite the following text to improve clarity, structure, and flow while preserving all facts, numbers, and the original meaning. Be concise and do not add new information.

Tone: %s

Original:
%s

Rewritten:`

// buildPrompt derives the per-chunk prompt from (tone, chunk).
func buildPrompt(tone Tone, chunk string) string {
	return fmt.Sprintf(promptTemplate, tone.OrDefault(), chunk)
}
