package scenario

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/game/formula"
	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/game/luck"
	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/game/sheet"
	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/platform/timeouts"
)

// PoolStore is the pool storage a runner seeds and spends from.
type PoolStore interface {
	luck.PoolStore
	PutPool(ctx context.Context, owner string, pool luck.Pool) error
}

// Config controls scenario execution.
type Config struct {
	Timeout    time.Duration
	Assertions AssertionMode
	Verbose    bool
	Logger     *log.Logger
	// Locale renders luck messages.
	Locale string
	// Store overrides the in-memory pool store.
	Store PoolStore
}

// DefaultConfig returns default runner configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:    timeouts.ScenarioStep,
		Assertions: AssertionStrict,
		Verbose:    false,
	}
}

// Runner executes Lua scenarios against the luck economy.
type Runner struct {
	store      PoolStore
	ledger     *luck.Ledger
	locks      *luck.Locks
	assertions Assertions
	logger     *log.Logger
	verbose    bool
	timeout    time.Duration
	locale     string
}

// NewRunner prepares a scenario runner. Without a configured store pools
// live in memory for the runner's lifetime.
func NewRunner(cfg Config) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = timeouts.ScenarioStep
	}

	var store PoolStore = luck.NewMemoryStore()
	if cfg.Store != nil {
		store = cfg.Store
	}

	return &Runner{
		store:      store,
		ledger:     luck.NewLedger(store, luck.WithLogger(logger)),
		locks:      luck.NewLocks(),
		assertions: Assertions{Mode: cfg.Assertions, Logger: logger},
		logger:     logger,
		verbose:    cfg.Verbose,
		timeout:    timeout,
		locale:     cfg.Locale,
	}
}

// RunFile loads and executes a scenario file.
func RunFile(ctx context.Context, cfg Config, path string) error {
	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		return err
	}
	return NewRunner(cfg).RunScenario(ctx, scenario)
}

// RunScenario executes the scenario steps in order.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) error {
	if scenario == nil {
		return errors.New("scenario is required")
	}
	r.logf("scenario start: %s (%d steps)", scenario.Name, len(scenario.Steps))
	state := &scenarioState{
		dir:        scenario.Dir,
		characters: map[string]*character{},
	}

	for index, step := range scenario.Steps {
		stepNumber := index + 1
		r.logf("step %d/%d start: %s", stepNumber, len(scenario.Steps), step.Kind)
		stepStart := time.Now()
		stepCtx, cancel := context.WithTimeout(ctx, r.timeout)
		err := r.runStep(stepCtx, state, step)
		cancel()
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", stepNumber, step.Kind, err)
		}
		r.logf("step %d/%d done: %s (%s)", stepNumber, len(scenario.Steps), step.Kind, time.Since(stepStart))
	}
	r.logf("scenario done: %s", scenario.Name)
	return nil
}

func (r *Runner) logf(format string, args ...any) {
	if !r.verbose || r.logger == nil {
		return
	}
	r.logger.Printf(format, args...)
}

type scenarioState struct {
	dir        string
	characters map[string]*character
}

type character struct {
	id     string
	name   string
	linked string
	stats  []formula.Stat
	fields map[string]any
	sheet  *sheet.Sheet
}

func (c *character) context() *formula.Context {
	return formula.NewContext(c.stats, c.fields)
}

func (s *scenarioState) character(id string) (*character, error) {
	c, ok := s.characters[id]
	if !ok {
		return nil, fmt.Errorf("unknown character %q", id)
	}
	return c, nil
}
