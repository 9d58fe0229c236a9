package formula

import (
	"strings"

	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/core/dice"
)

// Resolve folds req into a final formula.
//
// A nil Context or a blank BaseFormula returns the base formula unchanged
// with Resolved false. Otherwise required lines are applied before optional
// ones, each group in input order, and lines filtered to another stat are
// skipped.
func Resolve(req Request) Result {
	if req.Context == nil || strings.TrimSpace(req.BaseFormula) == "" {
		return Result{Formula: req.BaseFormula}
	}

	expr, _ := dice.ParseExpression(req.BaseFormula)
	baseThreshold := DefaultThreshold
	if expr.HasThreshold {
		baseThreshold = expr.Threshold
	}

	var diceCount, sides float64
	if expr.HasPool {
		diceCount = float64(expr.Count)
		sides = float64(expr.Sides)
	} else {
		diceCount = statValue(req)
		sides = DefaultSides
	}

	var advantageDelta, modifier float64
	var extras []Term
	for _, line := range ordered(req.Lines) {
		if !relevant(line, req.StatKey) {
			continue
		}
		value := lineValue(line, req)
		switch strings.ToLower(line.Target) {
		case TargetStat:
			diceCount = line.Operand.Apply(diceCount, value)
		case TargetSides:
			sides = max(line.Operand.Apply(sides, value), minSides)
		case TargetAdvantage:
			advantageDelta = line.Operand.Apply(advantageDelta, value)
		case TargetModifier:
			modifier = line.Operand.Apply(modifier, value)
		default:
			// Named targets only extend the formula; *, / and = have no term
			// to scale or overwrite and are ignored.
			if line.Operand == OperandAdd || line.Operand == OperandSubtract {
				extras = append(extras, Term{Operand: line.Operand, Target: line.Target, Value: value})
			}
		}
	}

	// Fudge is added to the raw total; the clamp applies after.
	advantage := int(roundHalfUp(advantageDelta)) + req.Advantage
	result := Result{Resolved: true}
	if req.UseFudge && advantage < MaxAdvantage {
		advantage++
		result.UsedFudge = true
		result.UsedGambitForFudge = req.UseGambitForFudge
	}
	advantage = clampAdvantage(advantage)

	result.DiceCount = max(int(roundHalfUp(diceCount)), 0)
	result.Sides = int(roundHalfUp(sides))
	result.Advantage = advantage
	result.Threshold = max(baseThreshold-advantage, 0)
	result.Modifier = modifier
	result.Extras = extras
	result.Formula = render(result)
	return result
}

// Pool returns the expression the result rolls.
func (r Result) Pool() dice.Expression {
	return dice.Expression{
		Count:        r.DiceCount,
		Sides:        r.Sides,
		Threshold:    r.Threshold,
		HasPool:      true,
		HasThreshold: true,
	}
}

func render(r Result) string {
	var b strings.Builder
	b.WriteString(r.Pool().String())
	if r.Modifier != 0 {
		b.WriteString(" + (")
		b.WriteString(formatNumber(r.Modifier))
		b.WriteString(")")
	}
	for _, t := range r.Extras {
		b.WriteString(t.String())
	}
	return b.String()
}

// ordered returns required lines followed by optional lines, keeping the
// input order within each group.
func ordered(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if !l.Optional {
			out = append(out, l)
		}
	}
	for _, l := range lines {
		if l.Optional {
			out = append(out, l)
		}
	}
	return out
}

func relevant(line Line, statKey string) bool {
	return line.Stat == "" || strings.EqualFold(line.Stat, statKey)
}

func lineValue(line Line, req Request) float64 {
	if line.Value != nil {
		return *line.Value
	}
	switch strings.ToLower(line.Target) {
	case TargetAdvantage:
		return float64(req.Advantage)
	case TargetStat:
		return statValue(req)
	}
	if v, ok := req.Context.Field(line.Target); ok {
		return v
	}
	return 0
}

func statValue(req Request) float64 {
	if s, ok := req.Context.Stat(req.StatKey); ok {
		return float64(s.EffectiveValue())
	}
	if s, ok := req.Context.Stat(req.StatLabel); ok {
		return float64(s.EffectiveValue())
	}
	return 0
}

func clampAdvantage(a int) int {
	return min(max(a, 0), MaxAdvantage)
}
