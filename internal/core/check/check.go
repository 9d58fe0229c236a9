// Package check evaluates success-pool results against a required number of
// successes.
package check

// Result represents the outcome of a success-count check.
type Result struct {
	Successes int
	Required  int
	Success   bool
	Margin    int
	// Tie reports an exact match, which Persist treats as the floor.
	Tie bool
}

// Check compares successes (including flat bonuses) against required.
// A required count of zero or less means any roll succeeds.
func Check(successes, required int) Result {
	if required < 0 {
		required = 0
	}
	return Result{
		Successes: successes,
		Required:  required,
		Success:   successes >= required,
		Margin:    successes - required,
		Tie:       successes == required,
	}
}

// Persisted resolves a Persist reroll: the better of the two results, and a
// failure is lifted to a tie.
func Persisted(first, second Result) Result {
	best := first
	if second.Successes > best.Successes {
		best = second
	}
	if !best.Success {
		return Result{
			Successes: best.Required,
			Required:  best.Required,
			Success:   true,
			Margin:    0,
			Tie:       true,
		}
	}
	return best
}
