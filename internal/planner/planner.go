// Package planner derives an ordered list of cooking steps from a free-text
// recipe description. Pure functions, no state.
package planner

import (
	"strings"

	"github.com/hammamikhairi/hearth/internal/domain"
)

// Fallback steps used when the recipe text contains no usable sentences.
const (
	fallbackPrepInstruction = "Prepare ingredients"
	fallbackCookInstruction = "Cook according to recipe"
	fallbackPrepMinutes     = 5
)

// Plan splits instructions on sentence-ending punctuation and spreads the
// estimated total time evenly across the resulting steps. Every step gets
// at least one minute, even when estimatedMinutes is zero or negative.
func Plan(instructions string, estimatedMinutes int) []domain.CookingStep {
	fragments := strings.FieldsFunc(instructions, func(r rune) bool {
		return r == '.' || r == '!'
	})

	var texts []string
	for _, f := range fragments {
		f = strings.TrimSpace(f)
		if f != "" {
			texts = append(texts, f)
		}
	}

	if len(texts) == 0 {
		return fallbackSteps(estimatedMinutes)
	}

	per := estimatedMinutes / len(texts)
	if per < 1 {
		per = 1
	}

	steps := make([]domain.CookingStep, len(texts))
	for i, text := range texts {
		steps[i] = domain.CookingStep{
			Index:           i + 1,
			Instruction:     text,
			DurationMinutes: per,
		}
	}
	return steps
}

// fallbackSteps is the fixed two-step plan for recipes without any
// parseable instructions.
func fallbackSteps(estimatedMinutes int) []domain.CookingStep {
	cook := estimatedMinutes - fallbackPrepMinutes
	if cook < 1 {
		cook = 1
	}
	return []domain.CookingStep{
		{Index: 1, Instruction: fallbackPrepInstruction, DurationMinutes: fallbackPrepMinutes},
		{Index: 2, Instruction: fallbackCookInstruction, DurationMinutes: cook},
	}
}
