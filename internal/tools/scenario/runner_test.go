package scenario

import (
	"bytes"
	"context"
	"io"
	"log"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/game/luck"
)

func quietConfig() Config {
	cfg := DefaultConfig()
	cfg.Logger = log.New(io.Discard, "", 0)
	return cfg
}

func runSource(t *testing.T, cfg Config, source string) error {
	t.Helper()
	scenario, err := LoadScenarioFromString(source)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return NewRunner(cfg).RunScenario(context.Background(), scenario)
}

func TestNewRunnerDefaults(t *testing.T) {
	runner := NewRunner(Config{})
	if runner.timeout != 10*time.Second {
		t.Fatalf("timeout = %v, want 10s", runner.timeout)
	}
	if runner.logger == nil {
		t.Fatal("expected default logger")
	}
	if runner.store == nil || runner.ledger == nil || runner.locks == nil {
		t.Fatal("expected in-memory store, ledger and locks")
	}
}

func TestRunScenarioLuckBasics(t *testing.T) {
	err := runSource(t, quietConfig(), `
local scene = Scenario.new("luck basics")
scene:character({id = "jotaro", temp = 5, perm = 1, stats = {power = 3}})
scene:resolve({character = "jotaro", formula = "1d6cs>=5", advantage = 3, fudge = true, expect = "(1d6cs>=2)", expect_fudge = false})
scene:resolve({character = "jotaro", formula = "2d6cs>=5", lines = {Lines.add("advantage", 1), Lines.add("modifier", 2)}, expect = "(2d6cs>=4) + (2)"})
scene:resolve({formula = "3d6cs>=4", lines = {Lines.add("advantage", 2)}, expect = "3d6cs>=4"})
scene:spend({character = "jotaro", move = "fudge", expect_cost = 2, expect_temp = 3})
scene:spend({character = "jotaro", move = "mulligan", expect_error = "LUCK_INSUFFICIENT", expect_temp = 3})
scene:commit({character = "jotaro", moves = {"feint", "flashback"}, expect_error = "LUCK_INSUFFICIENT", expect_index = 2, expect_temp = 3})
scene:commit({character = "jotaro", moves = {{move = "feint", count = 2}}, expect_temp = 1, expect_perm = 1})
scene:spend({character = "jotaro", move = "persist", gambit = true, expect_cost = 0, expect_perm = 1})
return scene
`)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestRunScenarioStrictAssertionFails(t *testing.T) {
	err := runSource(t, quietConfig(), `
local scene = Scenario.new("wrong expectation")
scene:character({id = "jotaro", temp = 2})
scene:spend({character = "jotaro", move = "feint", expect_temp = 0})
return scene
`)
	if err == nil {
		t.Fatal("expected assertion failure")
	}
	if !strings.Contains(err.Error(), "step 2 (spend)") {
		t.Fatalf("error = %v, want step 2 context", err)
	}
}

func TestRunScenarioLogOnlyAssertions(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Assertions = AssertionLogOnly
	cfg.Logger = log.New(&buf, "", 0)

	err := runSource(t, cfg, `
local scene = Scenario.new("logged expectation")
scene:character({id = "jotaro", temp = 2})
scene:spend({character = "jotaro", move = "feint", expect_temp = 0})
return scene
`)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(buf.String(), "assertion failed: jotaro temp luck = 1, want 0") {
		t.Fatalf("log = %q", buf.String())
	}
}

func TestRunScenarioUnknownCharacter(t *testing.T) {
	err := runSource(t, quietConfig(), `
local scene = Scenario.new("missing")
scene:spend({character = "dio", move = "feint"})
return scene
`)
	if err == nil || !strings.Contains(err.Error(), `unknown character "dio"`) {
		t.Fatalf("error = %v, want unknown character", err)
	}
}

func TestRunScenarioContest(t *testing.T) {
	err := runSource(t, quietConfig(), `
local scene = Scenario.new("contest")
scene:contest({roll = "r1", move = "flashback", parties = {"jotaro", "joseph", "avdol", "kakyoin"}})
scene:contest({roll = "r1", move = "flashback", parties = {"polnareff"}, expect_winners = 1})
return scene
`)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestRunScenarioContestKeepsLock(t *testing.T) {
	err := runSource(t, quietConfig(), `
local scene = Scenario.new("held")
scene:contest({roll = "r1", move = "mulligan", parties = {"jotaro"}, release = false})
scene:contest({roll = "r1", move = "mulligan", parties = {"joseph"}, expect_winners = 0})
return scene
`)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestRunScenarioSessions(t *testing.T) {
	err := runSource(t, quietConfig(), `
local scene = Scenario.new("sessions")
scene:character({id = "joseph", temp = 6, stats = {power = 2}})
scene:session({character = "joseph", formula = "2d6cs>=5", successes = 0, post = {"mulligan"}, expect_formula = "(2d6cs>=5)", expect_reroll = "(2d6cs>=4)", expect_temp = 2})
scene:session({character = "joseph", formula = "2d6cs>=5", feint = 1, abandon = true, expect_temp = 2})
scene:session({character = "joseph", formula = "2d6cs>=5", feint = 3, expect_error = "ROLL_PARTIAL_COMMIT", expect_temp = 2})
scene:session({character = "joseph", formula = "2d6cs>=5", feint = 2, gambit = true, seed = 7, expect_temp = 2})
return scene
`)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestRunScenarioUsesConfiguredStore(t *testing.T) {
	store := luck.NewMemoryStore()
	cfg := quietConfig()
	cfg.Store = store
	err := runSource(t, cfg, `
local scene = Scenario.new("store")
scene:character({id = "jotaro", temp = 3})
scene:spend({character = "jotaro", move = "fudge"})
return scene
`)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	pool, err := store.GetPool(context.Background(), "jotaro")
	if err != nil {
		t.Fatalf("get pool: %v", err)
	}
	if pool != (luck.Pool{Temp: 1}) {
		t.Fatalf("pool = %v, want temp 1", pool)
	}
}

func TestRunFile(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Verbose = true
	cfg.Logger = log.New(&buf, "", 0)
	if err := RunFile(context.Background(), cfg, filepath.Join("testdata", "stand_rush.lua")); err != nil {
		t.Fatalf("run file: %v", err)
	}
	if !strings.Contains(buf.String(), "scenario done: stand rush") {
		t.Fatalf("log = %q", buf.String())
	}
}

func TestParseAssertionMode(t *testing.T) {
	tcs := []struct {
		in      string
		want    AssertionMode
		wantErr bool
	}{
		{in: "", want: AssertionStrict},
		{in: "strict", want: AssertionStrict},
		{in: "LOG", want: AssertionLogOnly},
		{in: "loud", wantErr: true},
	}
	for _, tc := range tcs {
		got, err := ParseAssertionMode(tc.in)
		if (err != nil) != tc.wantErr {
			t.Fatalf("ParseAssertionMode(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
		if got != tc.want {
			t.Fatalf("ParseAssertionMode(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
