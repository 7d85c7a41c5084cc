package questiongen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You write multiple choice assessment questions for people exploring a career path.

Rules:
- Return ONLY a JSON array. No prose before or after it, no markdown, no code fences.
- Each element must be an object: {"question": string, "options": {"A": string, "B": string, "C": string, "D": string}, "correctAnswer": "A" | "B" | "C" | "D"}.
- Every question has exactly four options and exactly one correct answer.
- Questions must be self-contained, practical, and relevant to the stated career path and difficulty.
- Do not repeat a question, and do not reuse the same wording with small changes.
- Distractors should be plausible mistakes a learner might make, not jokes.`

// tierGuidance describes what each tier should test.
var tierGuidance = map[Tier]string{
	TierBeginner:     "fundamentals and vocabulary a newcomer should know in their first months",
	TierIntermediate: "applied, scenario-based knowledge from day-to-day work",
	TierAdvanced:     "trade-offs, design decisions, and edge cases an experienced practitioner handles",
}

// buildUserMessage renders the per-attempt prompt. Every attempt gets the
// full prompt; nothing from an earlier attempt is carried over.
func buildUserMessage(input GenerateInput, extra string, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Career path: %s\n", strings.TrimSpace(input.Topic))
	fmt.Fprintf(&b, "Difficulty: %s (%s)\n", input.Tier, tierGuidance[input.Tier])
	fmt.Fprintf(&b, "Number of questions: %d\n", input.Count)
	if input.Nonce != "" {
		fmt.Fprintf(&b, "Variation seed: %s\n", input.Nonce)
	}

	if extra = truncate(strings.TrimSpace(extra), cfg.MaxContextChars); extra != "" {
		b.WriteString("\nRecent material on this topic (use it to keep questions current; do not quote it verbatim):\n")
		b.WriteString(extra)
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nRespond with a JSON array of exactly %d objects.", input.Count)
	return b.String()
}

// truncate cuts s to at most max bytes on a rune boundary. max <= 0 means
// no limit.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
