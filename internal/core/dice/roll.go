package dice

import "math/rand"

// Source yields die faces. *rand.Rand satisfies it.
type Source interface {
	// Intn returns a value in [0, n).
	Intn(n int) int
}

// RollDice rolls request.Dice from a source seeded with request.Seed. The
// same seed and the same specs, in the same order, always produce the same
// Result. Rolls appear in spec order.
//
// ErrMissingDice is returned for an empty request and ErrInvalidDiceSpec for
// any spec without positive sides and count.
func RollDice(request Request) (Result, error) {
	return RollWithSource(rand.New(rand.NewSource(request.Seed)), request.Dice)
}

// RollWithSource rolls specs using src. Specs are validated before any die
// is drawn, so a rejected request consumes nothing from src.
func RollWithSource(src Source, specs []Spec) (Result, error) {
	if len(specs) == 0 {
		return Result{}, ErrMissingDice
	}
	for _, spec := range specs {
		if spec.Sides <= 0 || spec.Count <= 0 {
			return Result{}, ErrInvalidDiceSpec
		}
	}

	var result Result
	result.Rolls = make([]Roll, 0, len(specs))
	for _, spec := range specs {
		roll := Roll{Sides: spec.Sides, Results: make([]int, spec.Count)}
		for i := range roll.Results {
			roll.Results[i] = src.Intn(spec.Sides) + 1
			roll.Total += roll.Results[i]
		}
		result.Rolls = append(result.Rolls, roll)
		result.Total += roll.Total
	}
	return result, nil
}
