package scenario

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/core/dice"
	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/game/formula"
	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/game/luck"
	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/game/roll"
	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/game/sheet"
	"golang.org/x/sync/errgroup"
)

func (r *Runner) runStep(ctx context.Context, state *scenarioState, step Step) error {
	switch step.Kind {
	case "character":
		return r.runCharacterStep(ctx, state, step.Args)
	case "resolve":
		return r.runResolveStep(state, step.Args)
	case "spend":
		return r.runSpendStep(ctx, state, step.Args)
	case "commit":
		return r.runCommitStep(ctx, state, step.Args)
	case "contest":
		return r.runContestStep(ctx, step.Args)
	case "session":
		return r.runSessionStep(ctx, state, step.Args)
	default:
		return fmt.Errorf("unknown step kind %q", step.Kind)
	}
}

func (r *Runner) runCharacterStep(ctx context.Context, state *scenarioState, args map[string]any) error {
	id := readString(args, "id")
	if id == "" {
		return errors.New("character id is required")
	}
	c := &character{id: id}
	var pool luck.Pool
	if path := readString(args, "sheet"); path != "" {
		if !filepath.IsAbs(path) && state.dir != "" {
			path = filepath.Join(state.dir, path)
		}
		loaded, err := sheet.LoadFile(path)
		if err != nil {
			return err
		}
		c.name = loaded.Name
		c.linked = loaded.Linked
		c.stats = loaded.FormulaStats()
		c.fields = loaded.Fields
		c.sheet = loaded
		pool = loaded.Pool()
	}
	if name := readString(args, "name"); name != "" {
		c.name = name
	}
	if linked := readString(args, "linked"); linked != "" {
		c.linked = linked
	}
	stats, err := readStats(args["stats"])
	if err != nil {
		return err
	}
	c.stats = append(c.stats, stats...)
	if fields, ok := args["fields"].(map[string]any); ok {
		c.fields = fields
	}
	if temp, ok := readInt(args, "temp"); ok {
		pool.Temp = temp
	}
	if perm, ok := readInt(args, "perm"); ok {
		pool.Perm = perm
	}
	if pool.Temp < 0 || pool.Perm < 0 {
		return fmt.Errorf("character %s: %w", id, sheet.ErrInvalidPool)
	}
	if c.name == "" {
		c.name = id
	}
	state.characters[id] = c
	r.logf("character %s seeded with %s", id, pool)
	return r.store.PutPool(ctx, id, pool)
}

// request builds the formula request shared by resolve and session steps.
// Without a character the request resolves in degraded mode.
func (r *Runner) request(state *scenarioState, args map[string]any) (formula.Request, *character, error) {
	lines, err := readLines(args)
	if err != nil {
		return formula.Request{}, nil, err
	}
	advantage, _ := readInt(args, "advantage")
	req := formula.Request{
		BaseFormula:       readString(args, "formula"),
		StatKey:           readString(args, "stat"),
		StatLabel:         readString(args, "stat_label"),
		Advantage:         advantage,
		UseFudge:          readBool(args, "fudge", false),
		UseGambitForFudge: readBool(args, "gambit_fudge", false),
	}
	id := readString(args, "character")
	if id == "" {
		req.Lines = lines
		return req, nil, nil
	}
	c, err := state.character(id)
	if err != nil {
		return formula.Request{}, nil, err
	}
	if c.sheet != nil {
		req.Lines = c.sheet.Lines(readStrings(args, "items"))
	}
	req.Lines = append(req.Lines, lines...)
	req.Context = c.context()
	return req, c, nil
}

func (r *Runner) runResolveStep(state *scenarioState, args map[string]any) error {
	req, _, err := r.request(state, args)
	if err != nil {
		return err
	}
	result := formula.Resolve(req)
	r.logf("resolved %q to %s", req.BaseFormula, result.Formula)
	if err := r.expectString(args, "expect", "formula", result.Formula); err != nil {
		return err
	}
	if err := r.expectInt(args, "expect_dice", "dice", result.DiceCount); err != nil {
		return err
	}
	if err := r.expectInt(args, "expect_threshold", "threshold", result.Threshold); err != nil {
		return err
	}
	if err := r.expectInt(args, "expect_advantage", "advantage", result.Advantage); err != nil {
		return err
	}
	if want, ok := args["expect_fudge"].(bool); ok && want != result.UsedFudge {
		return r.assertions.Failf("used fudge = %t, want %t", result.UsedFudge, want)
	}
	return nil
}

// owner resolves the pool owner for a character, following its link when
// linked is set.
func (r *Runner) owner(state *scenarioState, args map[string]any) (string, error) {
	id := readString(args, "character")
	c, err := state.character(id)
	if err != nil {
		return "", err
	}
	if readBool(args, "linked", false) && c.linked != "" {
		return c.linked, nil
	}
	return c.id, nil
}

func (r *Runner) runSpendStep(ctx context.Context, state *scenarioState, args map[string]any) error {
	owner, err := r.owner(state, args)
	if err != nil {
		return err
	}
	count, _ := readInt(args, "count")
	intent := luck.Intent{
		Move:   readString(args, "move"),
		Gambit: readBool(args, "gambit", false),
		Count:  count,
	}
	result, err := r.ledger.Spend(ctx, owner, intent)
	if err == nil {
		r.logf("%s spent %s for %d, pool %s", owner, intent.Move, result.Cost, result.Pool)
	}
	if err := r.expectOutcome(args, "spend "+intent.Move, err); err != nil {
		return err
	}
	if err := r.expectInt(args, "expect_cost", "cost", result.Cost); err != nil {
		return err
	}
	return r.expectPool(ctx, owner, args)
}

func (r *Runner) runCommitStep(ctx context.Context, state *scenarioState, args map[string]any) error {
	owner, err := r.owner(state, args)
	if err != nil {
		return err
	}
	intents, err := readIntents(args["moves"])
	if err != nil {
		return err
	}
	_, err = r.ledger.Commit(ctx, owner, intents)
	if err := r.expectOutcome(args, "commit", err); err != nil {
		return err
	}
	var commitErr *luck.CommitError
	if errors.As(err, &commitErr) {
		if err := r.expectInt(args, "expect_index", "rejected index", commitErr.Index+1); err != nil {
			return err
		}
	}
	return r.expectPool(ctx, owner, args)
}

// runContestStep has every party claim the same post-roll move at once.
func (r *Runner) runContestStep(ctx context.Context, args map[string]any) error {
	key := readString(args, "move")
	move, ok := luck.ParseMoveKey(key)
	if !ok {
		return fmt.Errorf("contest: %w: %s", luck.ErrInvalidMove, key)
	}
	rollID := readString(args, "roll")
	if rollID == "" {
		rollID = "contest"
	}
	parties := readStrings(args, "parties")
	if len(parties) == 0 {
		return errors.New("contest parties are required")
	}

	var winners atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	for _, party := range parties {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			err := r.locks.Claim(rollID, move, party)
			if err == nil {
				winners.Add(1)
				return nil
			}
			if errors.Is(err, luck.ErrMoveLocked) {
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	holder, _ := r.locks.Holder(rollID, move)
	r.logf("contest %s/%s won by %s", rollID, key, holder)

	want, ok := readInt(args, "expect_winners")
	if !ok {
		want = 1
	}
	if got := int(winners.Load()); got != want {
		if err := r.assertions.Failf("contest winners = %d, want %d", got, want); err != nil {
			return err
		}
	}
	if readBool(args, "release", true) {
		r.locks.ReleaseRoll(rollID)
	}
	return nil
}

// runSessionStep drives one roll session from Begin to Finish. Dice are
// rolled from seed unless successes is given.
func (r *Runner) runSessionStep(ctx context.Context, state *scenarioState, args map[string]any) error {
	req, c, err := r.request(state, args)
	if err != nil {
		return err
	}
	if c == nil {
		return errors.New("session character is required")
	}
	// Confirm decides fudge itself.
	req.UseFudge = false
	req.UseGambitForFudge = false

	session, err := roll.New(roll.Config{
		ID:            readString(args, "roll"),
		Actor:         c.id,
		ActorName:     c.name,
		LinkedActor:   c.linked,
		UseLinkedPool: readBool(args, "linked", false),
		Locale:        r.locale,
		Request:       req,
		Ledger:        r.ledger,
		Locks:         r.locks,
	})
	if err != nil {
		return err
	}
	if err := session.Begin(); err != nil {
		return err
	}
	if feint, ok := readInt(args, "feint"); ok && feint > 0 {
		if err := session.SetFeint(feint); err != nil {
			return err
		}
	}
	if err := session.SetFudge(readBool(args, "fudge", false)); err != nil {
		return err
	}
	if err := session.SetGambit(readBool(args, "gambit", false)); err != nil {
		return err
	}

	if readBool(args, "abandon", false) {
		if err := session.Abandon(); err != nil {
			return err
		}
		return r.expectPool(ctx, session.Owner(), args)
	}

	result, err := session.Confirm(ctx)
	if err := r.expectOutcome(args, "confirm", err); err != nil {
		return err
	}
	if err != nil {
		_ = session.Abandon()
		return r.expectPool(ctx, session.Owner(), args)
	}
	if err := r.expectString(args, "expect_formula", "formula", result.Formula); err != nil {
		return err
	}
	if want, ok := args["expect_fudge"].(bool); ok && want != result.UsedFudge {
		if err := r.assertions.Failf("used fudge = %t, want %t", result.UsedFudge, want); err != nil {
			return err
		}
	}

	seed, ok := readInt(args, "seed")
	if !ok {
		seed = 1
	}
	if err := r.recordRoll(session, result, int64(seed), args); err != nil {
		return err
	}

	for _, key := range readStrings(args, "post") {
		move, ok := luck.ParseMoveKey(key)
		if !ok {
			return fmt.Errorf("post move: %w: %s", luck.ErrInvalidMove, key)
		}
		out, err := session.UsePostRoll(ctx, move)
		if err != nil {
			if err := r.assertions.Failf("post-roll %s: %v", key, err); err != nil {
				return err
			}
			continue
		}
		r.logf("%s: %s", c.name, out.Effect.Message)
		if out.Reroll {
			if err := r.expectString(args, "expect_reroll", "reroll formula", out.Formula); err != nil {
				return err
			}
			seed++
			if err := r.recordRoll(session, session.Result(), int64(seed), args); err != nil {
				return err
			}
		}
	}

	if err := session.Finish(); err != nil {
		return err
	}
	return r.expectPool(ctx, session.Owner(), args)
}

func (r *Runner) recordRoll(session *roll.Session, result formula.Result, seed int64, args map[string]any) error {
	successes, fixed := readInt(args, "successes")
	if !fixed {
		rolled, err := dice.RollPool(result.Pool(), seed)
		if err != nil {
			return err
		}
		r.logf("rolled %s", rolled)
		successes = rolled.Successes
	}
	return session.RecordRoll(successes)
}
