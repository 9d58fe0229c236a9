package formula

import (
	"fmt"
	"math"
)

// Operand is the arithmetic applied by a modifier line.
type Operand uint8

const (
	OperandAdd Operand = iota + 1
	OperandSubtract
	OperandMultiply
	OperandDivide
	OperandSet
)

// ParseOperand parses one of "+", "-", "*", "/", "=".
func ParseOperand(symbol string) (Operand, error) {
	switch symbol {
	case "+":
		return OperandAdd, nil
	case "-":
		return OperandSubtract, nil
	case "*":
		return OperandMultiply, nil
	case "/":
		return OperandDivide, nil
	case "=":
		return OperandSet, nil
	default:
		return 0, fmt.Errorf("unknown operand %q", symbol)
	}
}

// String returns the operand symbol.
func (o Operand) String() string {
	switch o {
	case OperandAdd:
		return "+"
	case OperandSubtract:
		return "-"
	case OperandMultiply:
		return "*"
	case OperandDivide:
		return "/"
	case OperandSet:
		return "="
	default:
		return "?"
	}
}

// Valid reports whether o is a known operand.
func (o Operand) Valid() bool {
	return o >= OperandAdd && o <= OperandSet
}

// Apply folds value into acc. Multiplication is rounded and floored at zero,
// division treats a zero divisor as one and is rounded.
func (o Operand) Apply(acc, value float64) float64 {
	switch o {
	case OperandAdd:
		return acc + value
	case OperandSubtract:
		return acc - value
	case OperandMultiply:
		return math.Max(0, roundHalfUp(acc*value))
	case OperandDivide:
		if value == 0 {
			value = 1
		}
		return roundHalfUp(acc / value)
	case OperandSet:
		return value
	default:
		return acc
	}
}

// roundHalfUp rounds to the nearest integer with halves going up.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
