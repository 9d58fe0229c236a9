// Package roll resolves and rolls a character sheet's stat from the command
// line, spending luck from a pool store.
package roll

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/core/check"
	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/core/dice"
	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/game/formula"
	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/game/luck"
	gameroll "github.com/Iwalker-dev/bizarre-adventures-d6/internal/game/roll"
	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/game/sheet"
	platformcmd "github.com/Iwalker-dev/bizarre-adventures-d6/internal/platform/cmd"
	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/platform/random"
	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/storage"
)

// Config holds roll command configuration.
type Config struct {
	Sheets    string `env:"ROLL_SHEETS"   envDefault:"."`
	Character string `env:"ROLL_CHARACTER"`
	Stat      string `env:"ROLL_STAT"`
	Formula   string `env:"ROLL_FORMULA"  envDefault:"cs>=5"`
	Advantage int    `env:"ROLL_ADVANTAGE"`
	Required  int    `env:"ROLL_REQUIRED" envDefault:"1"`
	Items     string `env:"ROLL_ITEMS"`
	Feint     int    `env:"ROLL_FEINT"`
	Fudge     bool   `env:"ROLL_FUDGE"`
	Gambit    bool   `env:"ROLL_GAMBIT"`
	Linked    bool   `env:"ROLL_LINKED"`
	Post      string `env:"ROLL_POST"`
	Seed      string `env:"ROLL_SEED"`
	Locale    string `env:"LOCALE"        envDefault:"en-US"`
	Store     string `env:"STORE"         envDefault:"memory"`
	DBPath    string `env:"DB_PATH"`
	Verbose   bool   `env:"ROLL_VERBOSE"`
}

func bindFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.Sheets, "sheets", cfg.Sheets, "directory of character sheet yaml files")
	fs.StringVar(&cfg.Character, "character", cfg.Character, "character id to roll for")
	fs.StringVar(&cfg.Stat, "stat", cfg.Stat, "stat key or label")
	fs.StringVar(&cfg.Formula, "formula", cfg.Formula, "base formula, e.g. 3d6cs>=5")
	fs.IntVar(&cfg.Advantage, "advantage", cfg.Advantage, "advantage 0-3")
	fs.IntVar(&cfg.Required, "required", cfg.Required, "successes required")
	fs.StringVar(&cfg.Items, "items", cfg.Items, "comma-separated items whose optional lines apply")
	fs.IntVar(&cfg.Feint, "feint", cfg.Feint, "feint count")
	fs.BoolVar(&cfg.Fudge, "fudge", cfg.Fudge, "spend fudge for one advantage")
	fs.BoolVar(&cfg.Gambit, "gambit", cfg.Gambit, "spend gambit to waive one cost")
	fs.BoolVar(&cfg.Linked, "linked", cfg.Linked, "spend from the linked character's pool")
	fs.StringVar(&cfg.Post, "post", cfg.Post, "comma-separated post-roll moves")
	fs.StringVar(&cfg.Seed, "seed", cfg.Seed, "dice seed (random when empty)")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "locale for luck messages")
	fs.StringVar(&cfg.Store, "store", cfg.Store, "pool store: memory, sqlite or bbolt")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "pool store path for sqlite or bbolt")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable verbose logging")
}

// ParseConfig parses env and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfigFromArgs(&cfg, fs, args, bindFlags); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseSeed(value string) (*int64, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	seed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return &seed, nil
}

// writerNotifier prints provisional notices.
type writerNotifier struct {
	out io.Writer
}

func (n writerNotifier) Post(notice gameroll.Notice) {
	fmt.Fprintf(n.out, "notice: %s\n", notice.Text)
}

func (n writerNotifier) Retract(rollID string) {
	fmt.Fprintf(n.out, "notice retracted: %s\n", rollID)
}

// Run resolves, rolls and settles one roll.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	logger := log.New(errOut, "", 0)
	logf := func(format string, args ...any) {
		if cfg.Verbose {
			logger.Printf(format, args...)
		}
	}

	if strings.TrimSpace(cfg.Character) == "" {
		return errors.New("character is required")
	}
	explicitSeed, err := parseSeed(cfg.Seed)
	if err != nil {
		return err
	}
	seed, err := random.ResolveSeed(explicitSeed)
	if err != nil {
		return err
	}

	sheets, err := sheet.LoadDir(cfg.Sheets)
	if err != nil {
		return fmt.Errorf("load sheets: %w", err)
	}
	var actor *sheet.Sheet
	for _, s := range sheets {
		if s.ID == cfg.Character {
			actor = s
		}
	}
	if actor == nil {
		return fmt.Errorf("character %q not found in %s", cfg.Character, cfg.Sheets)
	}

	store, err := storage.Open(storage.Backend(cfg.Store), cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()
	if err := seedPools(ctx, store, sheets, logf); err != nil {
		return err
	}

	session, err := gameroll.New(gameroll.Config{
		Actor:         actor.ID,
		ActorName:     actor.Name,
		LinkedActor:   actor.Linked,
		UseLinkedPool: cfg.Linked,
		Locale:        cfg.Locale,
		Request: formula.Request{
			BaseFormula: cfg.Formula,
			StatKey:     cfg.Stat,
			StatLabel:   cfg.Stat,
			Advantage:   cfg.Advantage,
			Lines:       actor.Lines(splitList(cfg.Items)),
			Context:     actor.Context(),
		},
		Ledger:   luck.NewLedger(store, luck.WithLogger(logger)),
		Locks:    luck.NewLocks(),
		Notifier: writerNotifier{out: out},
	})
	if err != nil {
		return err
	}
	if err := session.Begin(); err != nil {
		return err
	}
	if cfg.Feint > 0 {
		if err := session.SetFeint(cfg.Feint); err != nil {
			return err
		}
	}
	if err := session.SetFudge(cfg.Fudge); err != nil {
		return err
	}
	if err := session.SetGambit(cfg.Gambit); err != nil {
		return err
	}

	result, err := session.Confirm(ctx)
	if err != nil {
		_ = session.Abandon()
		return err
	}
	logf("roll %s seed %d", session.ID(), seed)

	rolled, err := dice.RollPool(result.Pool(), seed)
	if err != nil {
		return err
	}
	outcome := check.Check(rolled.Successes+int(result.Modifier), cfg.Required)
	fmt.Fprintf(out, "%s rolls %s\n", actor.Name, rolled)
	if err := session.RecordRoll(outcome.Successes); err != nil {
		return err
	}

	for _, key := range splitList(cfg.Post) {
		move, ok := luck.ParseMoveKey(key)
		if !ok {
			return fmt.Errorf("%w: %s", luck.ErrInvalidMove, key)
		}
		used, err := session.UsePostRoll(ctx, move)
		if err != nil {
			return err
		}
		if used.Effect.Message != "" {
			fmt.Fprintln(out, used.Effect.Message)
		}
		switch {
		case used.Reroll:
			seed++
			rolled, err = dice.RollPool(session.Result().Pool(), seed)
			if err != nil {
				return err
			}
			outcome = check.Check(rolled.Successes+int(session.Result().Modifier), cfg.Required)
			fmt.Fprintf(out, "%s rerolls %s\n", actor.Name, rolled)
			if err := session.RecordRoll(outcome.Successes); err != nil {
				return err
			}
		case move == luck.MovePersist:
			seed++
			current := session.Result()
			again, err := dice.RollPool(current.Pool(), seed)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s persists %s\n", actor.Name, again)
			outcome = check.Persisted(outcome, check.Check(again.Successes+int(current.Modifier), cfg.Required))
		}
	}
	if err := session.Finish(); err != nil {
		return err
	}

	verdict := "failure"
	switch {
	case outcome.Tie:
		verdict = "tie"
	case outcome.Success:
		verdict = "success"
	}
	fmt.Fprintf(out, "%s: %d/%d successes\n", verdict, outcome.Successes, outcome.Required)

	pool, err := store.GetPool(ctx, session.Owner())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "luck %s: %s\n", session.Owner(), pool)
	return nil
}

// seedPools stores each sheet's pool unless the store already has one.
func seedPools(ctx context.Context, store storage.PoolStore, sheets []*sheet.Sheet, logf func(string, ...any)) error {
	for _, s := range sheets {
		_, err := store.GetPool(ctx, s.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, luck.ErrPoolNotFound) {
			return fmt.Errorf("read pool %s: %w", s.ID, err)
		}
		if err := store.PutPool(ctx, s.ID, s.Pool()); err != nil {
			return fmt.Errorf("seed pool %s: %w", s.ID, err)
		}
		logf("seeded %s with %s", s.ID, s.Pool())
	}
	return nil
}
