package roll

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/game/formula"
	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/game/luck"
	apperrors "github.com/Iwalker-dev/bizarre-adventures-d6/internal/platform/errors"
	i18ncatalog "github.com/Iwalker-dev/bizarre-adventures-d6/internal/platform/i18n/catalog"
	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/platform/id"
)

// State is a session state.
type State uint8

const (
	StateIdle State = iota
	StatePreRollChoice
	StateResolved
	StatePostRollChoice
	StateFinal
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreRollChoice:
		return "pre-roll choice"
	case StateResolved:
		return "resolved"
	case StatePostRollChoice:
		return "post-roll choice"
	case StateFinal:
		return "final"
	default:
		return "unknown"
	}
}

var (
	// ErrInvalidTransition indicates an operation not allowed in the
	// session's current state.
	ErrInvalidTransition = apperrors.New(apperrors.CodeRollInvalidTransition, "invalid roll transition")
	// ErrPartialCommit wraps a rejected pre-roll commit; nothing was charged.
	ErrPartialCommit = apperrors.New(apperrors.CodeRollPartialCommit, "pre-roll luck moves rejected")
	// ErrMissingLedger indicates a session configured without a ledger.
	ErrMissingLedger = errors.New("roll session requires a ledger")
	// ErrMissingActor indicates a session configured without an actor.
	ErrMissingActor = errors.New("roll session requires an actor")
)

// Notice is a provisional message shown to the table while a choice is
// pending.
type Notice struct {
	RollID string
	Actor  string
	Text   string
}

// Notifier posts and retracts provisional notices for a roll.
type Notifier interface {
	Post(Notice)
	Retract(rollID string)
}

// Config configures a Session.
type Config struct {
	// ID identifies the roll. Parties of one contest share it. Generated
	// when empty.
	ID            string
	Actor         string
	ActorName     string
	LinkedActor   string
	UseLinkedPool bool
	Locale        string
	Request       formula.Request
	Ledger        *luck.Ledger
	// Locks marks post-roll moves as contested when set.
	Locks    *luck.Locks
	Notifier Notifier
}

// Option is one move's availability.
type Option struct {
	Move      luck.Move
	Name      string
	Available bool
	Selected  bool
	Reason    string
	Cost      int
}

// PostRollResult reports a post-roll move.
type PostRollResult struct {
	Move   luck.MoveKey
	Effect luck.Effect
	Pool   luck.Pool
	// Reroll is set for Mulligan; Formula is then the formula to roll again.
	Reroll  bool
	Formula string
}

// Session is a single roll's luck interaction.
type Session struct {
	mu sync.Mutex

	id       string
	actor    string
	name     string
	owner    string
	locale   string
	request  formula.Request
	ledger   *luck.Ledger
	locks    *luck.Locks
	notifier Notifier

	state     State
	abandoned bool

	feint  int
	fudge  bool
	gambit bool

	noticePosted  bool
	gambitPending bool
	confirmed     formula.Result
	successes     int
	used          map[luck.MoveKey]bool
	claimed       []luck.MoveKey
}

// New creates an idle session.
func New(cfg Config) (*Session, error) {
	if cfg.Ledger == nil {
		return nil, ErrMissingLedger
	}
	if cfg.Actor == "" {
		return nil, ErrMissingActor
	}
	rollID := cfg.ID
	if rollID == "" {
		generated, err := id.NewID()
		if err != nil {
			return nil, fmt.Errorf("roll id: %w", err)
		}
		rollID = generated
	}
	owner := cfg.Actor
	if cfg.UseLinkedPool && cfg.LinkedActor != "" {
		owner = cfg.LinkedActor
	}
	name := cfg.ActorName
	if name == "" {
		name = cfg.Actor
	}
	locale := cfg.Locale
	if locale == "" {
		locale = i18ncatalog.BaseLocale
	}
	return &Session{
		id:       rollID,
		actor:    cfg.Actor,
		name:     name,
		owner:    owner,
		locale:   locale,
		request:  cfg.Request,
		ledger:   cfg.Ledger,
		locks:    cfg.Locks,
		notifier: cfg.Notifier,
		used:     make(map[luck.MoveKey]bool),
	}, nil
}

// ID returns the roll id.
func (s *Session) ID() string { return s.id }

// Owner returns the actor whose pool pays for moves.
func (s *Session) Owner() string { return s.owner }

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Abandoned reports whether the session ended through Abandon.
func (s *Session) Abandoned() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.abandoned
}

// Result returns the confirmed formula result.
func (s *Session) Result() formula.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.confirmed
}

// Successes returns the last recorded success count.
func (s *Session) Successes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.successes
}

func (s *Session) expect(states ...State) error {
	for _, st := range states {
		if s.state == st {
			return nil
		}
	}
	return apperrors.Wrap(apperrors.CodeRollInvalidTransition,
		fmt.Sprintf("roll %s is %s", s.id, s.state), ErrInvalidTransition)
}

// Begin opens the pre-roll choice.
func (s *Session) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.expect(StateIdle); err != nil {
		return err
	}
	s.state = StatePreRollChoice
	return nil
}

// SetFeint sets the feint count. A positive count posts a provisional
// notice; zero retracts it.
func (s *Session) SetFeint(count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.expect(StatePreRollChoice); err != nil {
		return err
	}
	count = max(count, 0)
	s.feint = count
	if s.notifier == nil {
		return nil
	}
	if count > 0 {
		s.notifier.Post(Notice{RollID: s.id, Actor: s.actor, Text: luck.FeintingNotice(s.locale, s.name, count)})
		s.noticePosted = true
	} else if s.noticePosted {
		s.notifier.Retract(s.id)
		s.noticePosted = false
	}
	return nil
}

// SetFudge selects Fudge.
func (s *Session) SetFudge(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.expect(StatePreRollChoice); err != nil {
		return err
	}
	s.fudge = on
	return nil
}

// SetGambit selects Gambit. It waives Fudge when Fudge is selected,
// otherwise Feint, otherwise the first post-roll move.
func (s *Session) SetGambit(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.expect(StatePreRollChoice); err != nil {
		return err
	}
	s.gambit = on
	return nil
}

// gambitTargets reports whether Gambit waives Fudge or Feint.
func (s *Session) gambitTargets(fudge bool) (onFudge, onFeint bool) {
	onFudge = s.gambit && fudge
	onFeint = s.gambit && !onFudge && s.feint > 0
	return onFudge, onFeint
}

// advantageBeforeFudge is the Advantage the resolver reaches without Fudge.
func (s *Session) advantageBeforeFudge() int {
	req := s.request
	req.UseFudge = false
	res := formula.Resolve(req)
	if !res.Resolved {
		return min(max(req.Advantage, 0), luck.MaxAdvantage)
	}
	return res.Advantage
}

// Options lists the pre-roll moves with their availability against the
// owner's current pool.
func (s *Session) Options(ctx context.Context) ([]Option, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.expect(StatePreRollChoice); err != nil {
		return nil, err
	}
	pool, err := s.ledger.Pool(ctx, s.owner)
	if err != nil {
		return nil, err
	}

	onFudge, onFeint := s.gambitTargets(s.fudge)
	var out []Option
	for _, m := range luck.MovesFor(luck.TimingPreRoll) {
		opt := Option{Move: m, Name: luck.MoveName(s.locale, m.ID)}
		var check luck.Check
		switch m.ID {
		case luck.MoveFeint:
			opt.Selected = s.feint > 0
			res := luck.Spend(pool, m.Key, onFeint, s.feint)
			check = luck.Check{CanUse: res.Success, Needed: m.BaseCost * max(s.feint, 1)}
			if onFeint {
				check.Needed = 0
			}
			if !res.Success {
				check.Reason = userMessage(res.Err, s.locale)
			}
		case luck.MoveFudge:
			opt.Selected = s.fudge
			check = luck.CanUseFudge(pool, s.advantageBeforeFudge(), onFudge)
			if !check.CanUse {
				check.Reason = userMessage(check.Err(), s.locale)
			}
		default:
			opt.Selected = s.gambit
			check = luck.CanUse(pool, m.Key, false)
		}
		opt.Available = check.CanUse
		opt.Reason = check.Reason
		opt.Cost = check.Needed
		out = append(out, opt)
	}
	return out, nil
}

// Confirm commits the selected pre-roll moves and resolves the formula. A
// rejected commit leaves the session in PreRollChoice with nothing charged.
// Fudge is only spent and folded in while it passes CanUseFudge.
func (s *Session) Confirm(ctx context.Context) (formula.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.expect(StatePreRollChoice); err != nil {
		return formula.Result{}, err
	}
	pool, err := s.ledger.Pool(ctx, s.owner)
	if err != nil {
		return formula.Result{}, err
	}

	useFudge := s.fudge && luck.CanUseFudge(pool, s.advantageBeforeFudge(), s.gambit).CanUse
	onFudge, onFeint := s.gambitTargets(useFudge)
	var intents []luck.Intent
	if s.feint > 0 {
		intents = append(intents, luck.Intent{Move: "feint", Count: s.feint, Gambit: onFeint})
	}
	if useFudge {
		intents = append(intents, luck.Intent{Move: "fudge", Gambit: onFudge})
	}
	gambitSpent := onFudge || onFeint
	if gambitSpent {
		intents = append(intents, luck.Intent{Move: "gambit"})
	}
	if len(intents) > 0 {
		if _, err := s.ledger.Commit(ctx, s.owner, intents); err != nil {
			var commitErr *luck.CommitError
			if errors.As(err, &commitErr) {
				return formula.Result{}, apperrors.Wrap(apperrors.CodeRollPartialCommit, err.Error(), err)
			}
			return formula.Result{}, err
		}
	}

	req := s.request
	req.UseFudge = useFudge
	req.UseGambitForFudge = onFudge
	s.confirmed = formula.Resolve(req)
	s.gambitPending = s.gambit && !gambitSpent
	s.state = StateResolved
	return s.confirmed, nil
}

// RecordRoll stores the rolled successes and opens the post-roll choice.
func (s *Session) RecordRoll(successes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.expect(StateResolved); err != nil {
		return err
	}
	s.successes = successes
	s.state = StatePostRollChoice
	return nil
}

// PostRollOptions lists the post-roll moves. A contested move held by
// another party is disabled with the holder named.
func (s *Session) PostRollOptions(ctx context.Context) ([]Option, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.expect(StatePostRollChoice); err != nil {
		return nil, err
	}
	pool, err := s.ledger.Pool(ctx, s.owner)
	if err != nil {
		return nil, err
	}

	var out []Option
	for _, m := range luck.MovesFor(luck.TimingPostRoll) {
		if m.Timing != luck.TimingPostRoll {
			continue
		}
		opt := Option{Move: m, Name: luck.MoveName(s.locale, m.ID), Selected: s.used[m.ID]}
		check := luck.CanUse(pool, m.Key, s.gambitPending)
		opt.Available = check.CanUse
		opt.Cost = check.Needed
		if !check.CanUse {
			opt.Reason = userMessage(check.Err(), s.locale)
		}
		if holder, locked := s.holder(m.ID); locked && holder != s.actor {
			opt.Available = false
			opt.Reason = userMessage(apperrors.WithMetadata(apperrors.CodeLuckMoveLocked, "claimed", map[string]string{"Holder": holder}), s.locale)
		}
		if s.used[m.ID] {
			opt.Available = false
		}
		out = append(out, opt)
	}
	return out, nil
}

func (s *Session) holder(move luck.MoveKey) (string, bool) {
	if s.locks == nil {
		return "", false
	}
	return s.locks.Holder(s.id, move)
}

// UsePostRoll claims, pays for and applies a post-roll move. Mulligan
// returns the formula to roll again with one more Advantage and moves the
// session back to Resolved.
func (s *Session) UsePostRoll(ctx context.Context, move luck.MoveKey) (PostRollResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.expect(StatePostRollChoice); err != nil {
		return PostRollResult{}, err
	}
	m, ok := luck.Lookup(move)
	if !ok {
		return PostRollResult{}, luck.ErrInvalidMove
	}
	if m.Timing != luck.TimingPostRoll {
		return PostRollResult{}, apperrors.Wrap(apperrors.CodeLuckWrongTiming,
			fmt.Sprintf("%s is not a post-roll move", m.Key), luck.ErrWrongTiming)
	}
	if s.used[move] {
		return PostRollResult{}, apperrors.Wrap(apperrors.CodeRollInvalidTransition,
			fmt.Sprintf("%s already used on roll %s", m.Key, s.id), ErrInvalidTransition)
	}

	claimedNow := false
	if s.locks != nil {
		if _, held := s.locks.Holder(s.id, move); !held {
			claimedNow = true
		}
		if err := s.locks.Claim(s.id, move, s.actor); err != nil {
			return PostRollResult{}, err
		}
	}

	waived := s.gambitPending
	res, err := s.ledger.Spend(ctx, s.owner, luck.Intent{Move: m.Key, Gambit: waived})
	if err != nil {
		if claimedNow {
			s.locks.Release(s.id, move, s.actor)
		}
		return PostRollResult{}, err
	}
	if claimedNow {
		s.claimed = append(s.claimed, move)
	}
	if waived {
		s.gambitPending = false
	}
	s.used[move] = true

	out := PostRollResult{
		Move:   move,
		Effect: luck.ApplyEffectIn(s.locale, m.Key, s.confirmed.Advantage),
		Pool:   res.Pool,
	}
	if m.ID == luck.MoveMulligan {
		req := s.request
		req.Advantage++
		req.UseFudge = s.confirmed.UsedFudge
		req.UseGambitForFudge = s.confirmed.UsedGambitForFudge
		s.confirmed = formula.Resolve(req)
		s.request.Advantage = req.Advantage
		out.Reroll = true
		out.Formula = s.confirmed.Formula
		s.state = StateResolved
	}
	return out, nil
}

// Finish ends the roll and frees locks claimed by this session.
func (s *Session) Finish() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.expect(StateResolved, StatePostRollChoice); err != nil {
		return err
	}
	s.releaseLocks()
	s.state = StateFinal
	return nil
}

// Abandon ends the roll from any non-final state. Provisional notices are
// retracted before confirmation; the pool is never touched.
func (s *Session) Abandon() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateFinal {
		return apperrors.Wrap(apperrors.CodeRollInvalidTransition,
			fmt.Sprintf("roll %s is already final", s.id), ErrInvalidTransition)
	}
	if s.state <= StatePreRollChoice && s.noticePosted && s.notifier != nil {
		s.notifier.Retract(s.id)
		s.noticePosted = false
	}
	s.releaseLocks()
	s.abandoned = true
	s.state = StateFinal
	return nil
}

func (s *Session) releaseLocks() {
	if s.locks == nil {
		return
	}
	for _, move := range s.claimed {
		s.locks.Release(s.id, move, s.actor)
	}
	s.claimed = nil
}

func userMessage(err error, locale string) string {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return appErr.UserMessage(locale)
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
