package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	poolPattern      = regexp.MustCompile(`(?i)(\d+)\s*d\s*(\d+)`)
	thresholdPattern = regexp.MustCompile(`(?i)cs\s*>=\s*(\d+)`)
)

// Expression is a parsed dice-pool expression. HasPool and HasThreshold
// report which pieces appeared in the source text.
type Expression struct {
	Count        int
	Sides        int
	Threshold    int
	HasPool      bool
	HasThreshold bool
}

// ParseExpression extracts the first "<N>d<S>" pool and "cs>=<T>" clause from
// formula. Surrounding text is ignored. ErrInvalidExpression is returned when
// neither piece is present; the zero fields of the returned Expression are
// still usable as "absent".
func ParseExpression(formula string) (Expression, error) {
	var expr Expression
	if m := poolPattern.FindStringSubmatch(formula); m != nil {
		count, errCount := strconv.Atoi(m[1])
		sides, errSides := strconv.Atoi(m[2])
		if errCount == nil && errSides == nil {
			expr.Count = count
			expr.Sides = sides
			expr.HasPool = true
		}
	}
	if m := thresholdPattern.FindStringSubmatch(formula); m != nil {
		if threshold, err := strconv.Atoi(m[1]); err == nil {
			expr.Threshold = threshold
			expr.HasThreshold = true
		}
	}
	if !expr.HasPool && !expr.HasThreshold {
		return expr, ErrInvalidExpression
	}
	return expr, nil
}

// String renders the canonical parenthesised form "(NdScs>=T)".
func (e Expression) String() string {
	return fmt.Sprintf("(%dd%dcs>=%d)", e.Count, e.Sides, e.Threshold)
}

// Spec returns the dice spec rolled for this expression.
func (e Expression) Spec() Spec {
	return Spec{Sides: e.Sides, Count: e.Count}
}

// PoolResult is the outcome of rolling an expression as a success pool.
type PoolResult struct {
	Expression Expression
	Results    []int
	Successes  int
}

// String returns an audit line such as "(3d6cs>=4) [2 5 6] = 2".
func (r PoolResult) String() string {
	parts := make([]string, len(r.Results))
	for i, v := range r.Results {
		parts[i] = strconv.Itoa(v)
	}
	return fmt.Sprintf("%s [%s] = %d", r.Expression, strings.Join(parts, " "), r.Successes)
}

// RollPool rolls e with the given seed and counts successes. A pool with no
// dice rolls nothing and scores zero.
func RollPool(e Expression, seed int64) (PoolResult, error) {
	if e.Count == 0 {
		return PoolResult{Expression: e}, nil
	}
	rolled, err := RollDice(Request{Dice: []Spec{e.Spec()}, Seed: seed})
	if err != nil {
		return PoolResult{}, err
	}
	results := rolled.Rolls[0].Results
	return PoolResult{
		Expression: e,
		Results:    results,
		Successes:  CountSuccesses(results, e.Threshold),
	}, nil
}

// CountSuccesses counts the results greater than or equal to threshold.
func CountSuccesses(results []int, threshold int) int {
	successes := 0
	for _, v := range results {
		if v >= threshold {
			successes++
		}
	}
	return successes
}
