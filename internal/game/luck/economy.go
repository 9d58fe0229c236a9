package luck

import (
	"fmt"

	apperrors "github.com/Iwalker-dev/bizarre-adventures-d6/internal/platform/errors"
	i18ncatalog "github.com/Iwalker-dev/bizarre-adventures-d6/internal/platform/i18n/catalog"
)

// MaxAdvantage is the Advantage cap.
const MaxAdvantage = 3

// Pool is a character's luck.
type Pool struct {
	Temp int
	Perm int
}

func (p Pool) field(c CostType) int {
	switch c {
	case CostTemp:
		return p.Temp
	case CostPerm:
		return p.Perm
	default:
		return 0
	}
}

func (p Pool) minus(c CostType, cost int) Pool {
	switch c {
	case CostTemp:
		p.Temp -= cost
	case CostPerm:
		p.Perm -= cost
	}
	return p
}

// Check is an affordability answer.
type Check struct {
	CanUse  bool
	Needed  int
	Current int
	Reason  string
	Code    apperrors.Code
	err     error
}

// Err returns the error behind a failed check, or nil.
func (c Check) Err() error {
	return c.err
}

func failed(err *apperrors.Error, needed, current int) Check {
	return Check{
		Needed:  needed,
		Current: current,
		Reason:  err.UserMessage(i18ncatalog.BaseLocale),
		Code:    err.Code,
		err:     err,
	}
}

// CanUse reports whether pool can pay for moveKey. Gambit waives the cost
// of every other move.
func CanUse(pool Pool, moveKey string, hasGambit bool) Check {
	return canAfford(pool, moveKey, hasGambit, 1)
}

func canAfford(pool Pool, moveKey string, hasGambit bool, feintCount int) Check {
	m, ok := LookupKey(moveKey)
	if !ok {
		return failed(ErrInvalidMove, 0, 0)
	}
	cost := effectiveCost(m, hasGambit, feintCount)
	if m.CostType == CostGambit {
		return Check{CanUse: true, Needed: cost}
	}
	current := pool.field(m.CostType)
	if current < cost {
		return failed(insufficient(m, cost, current), cost, current)
	}
	return Check{CanUse: true, Needed: cost, Current: current}
}

func effectiveCost(m Move, hasGambit bool, feintCount int) int {
	if hasGambit && m.ID != MoveGambit {
		return 0
	}
	if m.ID == MoveFeint {
		return m.BaseCost * max(feintCount, 1)
	}
	return m.BaseCost
}

// SpendResult is the outcome of Spend. Pool is the pool the caller must
// persist; on failure it equals the input.
type SpendResult struct {
	Success bool
	Err     error
	Pool    Pool
	Cost    int
	Waived  bool
}

// Spend validates and applies a move against pool. Feint costs its base cost
// times feintCount (at least one). A spend the pool cannot cover is rejected
// and the pool is returned unchanged.
func Spend(pool Pool, moveKey string, hasGambit bool, feintCount int) SpendResult {
	check := canAfford(pool, moveKey, hasGambit, feintCount)
	if !check.CanUse {
		return SpendResult{Err: check.err, Pool: pool}
	}
	m, _ := LookupKey(moveKey)
	if hasGambit && m.ID != MoveGambit {
		return SpendResult{Success: true, Pool: pool, Waived: true}
	}
	return SpendResult{
		Success: true,
		Pool:    pool.minus(m.CostType, check.Needed),
		Cost:    check.Needed,
	}
}

// CanUseFudge checks the Advantage cap before the temp cost.
func CanUseFudge(pool Pool, currentAdvantage int, hasGambit bool) Check {
	if currentAdvantage >= MaxAdvantage {
		m, _ := Lookup(MoveFudge)
		return failed(ErrAdvantageCap, effectiveCost(m, hasGambit, 1), pool.Temp)
	}
	return CanUse(pool, "fudge", hasGambit)
}

// Effect is the result of applying a move.
type Effect struct {
	Move      MoveKey
	Advantage int
	Message   string
}

// ApplyEffect applies moveKey to currentAdvantage with narration in the base
// locale.
func ApplyEffect(moveKey string, currentAdvantage int) Effect {
	return ApplyEffectIn(i18ncatalog.BaseLocale, moveKey, currentAdvantage)
}

// ApplyEffectIn applies moveKey with narration in locale. Advantage moves
// raise Advantage by one up to the cap; other moves leave it unchanged.
func ApplyEffectIn(locale, moveKey string, currentAdvantage int) Effect {
	adv := clampAdvantage(currentAdvantage)
	m, ok := LookupKey(moveKey)
	if !ok {
		return Effect{Advantage: adv, Message: ErrInvalidMove.UserMessage(locale)}
	}
	p := i18ncatalog.Default().Printer(locale)
	name := MoveName(locale, m.ID)
	switch m.Effect {
	case EffectAdvantage:
		if adv >= MaxAdvantage {
			return Effect{Move: m.ID, Advantage: adv, Message: p.Sprintf("luck.effect.advantage_capped", name, MaxAdvantage)}
		}
		adv++
		return Effect{Move: m.ID, Advantage: adv, Message: p.Sprintf("luck.effect.advantage", name, adv)}
	default:
		return Effect{Move: m.ID, Advantage: adv, Message: p.Sprintf("luck.effect." + m.Key)}
	}
}

// MoveName returns the localized move name.
func MoveName(locale string, key MoveKey) string {
	m, ok := Lookup(key)
	if !ok {
		return key.String()
	}
	return i18ncatalog.Default().Printer(locale).Sprintf("luck.move." + m.Key)
}

// FeintingNotice renders the provisional notice posted while actor feints.
func FeintingNotice(locale, actor string, count int) string {
	return i18ncatalog.Default().Printer(locale).Sprintf("luck.notice.feinting", actor, max(count, 1))
}

func clampAdvantage(a int) int {
	return min(max(a, 0), MaxAdvantage)
}

// String renders the pool for logs.
func (p Pool) String() string {
	return fmt.Sprintf("temp=%d perm=%d", p.Temp, p.Perm)
}
