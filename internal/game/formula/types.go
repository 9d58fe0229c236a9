package formula

import (
	"strconv"
	"strings"
)

// Reserved line targets. Any other target names a context field and becomes
// an extra term in the formula.
const (
	TargetStat      = "stat"
	TargetSides     = "sides"
	TargetAdvantage = "advantage"
	TargetModifier  = "modifier"
)

// Burn tracks a stat may select instead of its plain value.
const (
	TrackValue    = ""
	TrackTemp     = "temp"
	TrackPerm     = "perm"
	TrackOriginal = "original"
)

// MaxAdvantage caps every Advantage computation.
const MaxAdvantage = 3

// Default pool pieces used when the base formula omits them.
const (
	DefaultSides     = 6
	DefaultThreshold = 5
	minSides         = 2
)

// Stat is a named character attribute.
type Stat struct {
	Key      string
	Label    string
	Value    int
	Track    string
	Temp     int
	Perm     int
	Original int
}

// EffectiveValue returns the number on the stat's selected track.
func (s Stat) EffectiveValue() int {
	switch strings.ToLower(s.Track) {
	case TrackTemp:
		return s.Temp
	case TrackPerm:
		return s.Perm
	case TrackOriginal:
		return s.Original
	default:
		return s.Value
	}
}

// Line is one modifier contribution from an item or ability.
type Line struct {
	Source   string
	Operand  Operand
	Target   string
	Value    *float64
	Stat     string
	Optional bool
}

// Literal returns a pointer to v for Line.Value.
func Literal(v float64) *float64 {
	return &v
}

// Request is one resolution input.
type Request struct {
	BaseFormula       string
	StatKey           string
	StatLabel         string
	Advantage         int
	Lines             []Line
	UseFudge          bool
	UseGambitForFudge bool
	// Context is nil when no actor backs the roll.
	Context *Context
}

// Term is an extra arithmetic term appended after the dice pool.
type Term struct {
	Operand Operand
	Target  string
	Value   float64
}

// String renders the term as " +(v)" or " -(v)".
func (t Term) String() string {
	return " " + t.Operand.String() + "(" + formatNumber(t.Value) + ")"
}

// Result is the resolved formula and the numbers it was built from.
type Result struct {
	Formula            string
	UsedFudge          bool
	UsedGambitForFudge bool
	// Resolved is false for the pass-through degraded result.
	Resolved  bool
	DiceCount int
	Sides     int
	Threshold int
	Advantage int
	Modifier  float64
	Extras    []Term
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
