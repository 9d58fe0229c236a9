package luck

import "strings"

// MoveKey identifies a Luck Move.
type MoveKey uint8

const (
	MoveUnknown MoveKey = iota
	MoveFeint
	MoveFudge
	MoveFlashback
	MoveMulligan
	MovePersist
	MoveGambit
)

var moveKeys = map[string]MoveKey{
	"feint":     MoveFeint,
	"fudge":     MoveFudge,
	"flashback": MoveFlashback,
	"mulligan":  MoveMulligan,
	"persist":   MovePersist,
	"gambit":    MoveGambit,
}

// ParseMoveKey resolves a move key such as "fudge", case-insensitively.
func ParseMoveKey(s string) (MoveKey, bool) {
	key, ok := moveKeys[strings.ToLower(strings.TrimSpace(s))]
	return key, ok
}

// String returns the catalog key.
func (k MoveKey) String() string {
	if m, ok := Lookup(k); ok {
		return m.Key
	}
	return "unknown"
}

// CostType names the pool a move draws from.
type CostType uint8

const (
	CostTemp CostType = iota + 1
	CostPerm
	CostGambit
)

func (c CostType) String() string {
	switch c {
	case CostTemp:
		return "temp"
	case CostPerm:
		return "perm"
	case CostGambit:
		return "gambit"
	default:
		return "unknown"
	}
}

// Timing is the window in which a move can be used.
type Timing uint8

const (
	TimingPreRoll Timing = iota + 1
	TimingPostRoll
	TimingAnytime
)

func (t Timing) String() string {
	switch t {
	case TimingPreRoll:
		return "pre-roll"
	case TimingPostRoll:
		return "post-roll"
	case TimingAnytime:
		return "anytime"
	default:
		return "unknown"
	}
}

// EffectKind is the kind of effect a move has.
type EffectKind uint8

const (
	EffectAdvantage EffectKind = iota + 1
	EffectNarrative
	EffectReroll
	EffectSpecial
)

func (e EffectKind) String() string {
	switch e {
	case EffectAdvantage:
		return "advantage"
	case EffectNarrative:
		return "narrative"
	case EffectReroll:
		return "reroll"
	case EffectSpecial:
		return "special"
	default:
		return "unknown"
	}
}

// Move is one catalog entry.
type Move struct {
	ID       MoveKey
	Key      string
	Name     string
	CostType CostType
	BaseCost int
	Timing   Timing
	Effect   EffectKind
}

// catalog is indexed by MoveKey-1.
var catalog = [...]Move{
	{ID: MoveFeint, Key: "feint", Name: "Feint", CostType: CostTemp, BaseCost: 1, Timing: TimingPreRoll, Effect: EffectNarrative},
	{ID: MoveFudge, Key: "fudge", Name: "Fudge", CostType: CostTemp, BaseCost: 2, Timing: TimingPreRoll, Effect: EffectAdvantage},
	{ID: MoveFlashback, Key: "flashback", Name: "Flashback", CostType: CostTemp, BaseCost: 3, Timing: TimingPostRoll, Effect: EffectNarrative},
	{ID: MoveMulligan, Key: "mulligan", Name: "Mulligan", CostType: CostTemp, BaseCost: 4, Timing: TimingPostRoll, Effect: EffectAdvantage},
	{ID: MovePersist, Key: "persist", Name: "Persist", CostType: CostPerm, BaseCost: 2, Timing: TimingPostRoll, Effect: EffectReroll},
	{ID: MoveGambit, Key: "gambit", Name: "Gambit", CostType: CostGambit, BaseCost: 0, Timing: TimingAnytime, Effect: EffectSpecial},
}

// Lookup returns the catalog entry for key.
func Lookup(key MoveKey) (Move, bool) {
	if key == MoveUnknown || int(key) > len(catalog) {
		return Move{}, false
	}
	return catalog[key-1], true
}

// LookupKey returns the catalog entry for a string key.
func LookupKey(key string) (Move, bool) {
	id, ok := ParseMoveKey(key)
	if !ok {
		return Move{}, false
	}
	return Lookup(id)
}

// Moves returns a copy of the catalog in catalog order.
func Moves() []Move {
	out := make([]Move, len(catalog))
	copy(out, catalog[:])
	return out
}

// MovesFor lists the moves usable in a timing window. Anytime moves are
// listed in both the pre-roll and post-roll windows.
func MovesFor(timing Timing) []Move {
	var out []Move
	for _, m := range catalog {
		if m.Timing == timing || (m.Timing == TimingAnytime && timing != TimingAnytime) {
			out = append(out, m)
		}
	}
	return out
}
