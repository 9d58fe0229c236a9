package scenario

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("scenario", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if !cfg.Assertions {
		t.Fatal("expected assertions to default to true")
	}
	if cfg.Timeout != 10*time.Second {
		t.Fatalf("timeout = %v, want 10s", cfg.Timeout)
	}
	if cfg.Store != "memory" {
		t.Fatalf("store = %q, want memory", cfg.Store)
	}
}

func TestParseConfigFlagsAndArgs(t *testing.T) {
	t.Setenv("BIZARRE_SCENARIO_VERBOSE", "true")
	fs := flag.NewFlagSet("scenario", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, []string{"-assert=false", "-store", "sqlite", "a.lua", "b.lua"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Assertions {
		t.Fatal("expected assertions disabled")
	}
	if !cfg.Verbose {
		t.Fatal("expected verbose from env")
	}
	if cfg.Store != "sqlite" {
		t.Fatalf("store = %q, want sqlite", cfg.Store)
	}
	if strings.Join(cfg.Files, ",") != "a.lua,b.lua" {
		t.Fatalf("files = %v, want [a.lua b.lua]", cfg.Files)
	}
}

func TestRunRequiresScenario(t *testing.T) {
	if err := Run(context.Background(), Config{}, nil, nil); err == nil {
		t.Fatal("expected missing scenario error")
	}
}

func writeScenario(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	return path
}

func TestRunDirectory(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "b_spend.lua", `
local scene = Scenario.new("spend")
scene:character({id = "jotaro", temp = 3})
scene:spend({character = "jotaro", move = "fudge", expect_temp = 1})
return scene
`)
	writeScenario(t, dir, "a_resolve.lua", `
local scene = Scenario.new("resolve")
scene:character({id = "jotaro", stats = {power = 3}})
scene:resolve({character = "jotaro", formula = "1d6cs>=5", lines = {Lines.add("advantage", 1)}, expect = "(1d6cs>=4)"})
return scene
`)

	var out bytes.Buffer
	cfg := Config{Scenario: dir, Assertions: true, Timeout: time.Second, Store: "bbolt", DBPath: filepath.Join(dir, "luck.bolt")}
	if err := Run(context.Background(), cfg, &out, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := "ok  resolve (2 steps)\nok  spend (2 steps)\n"
	if out.String() != want {
		t.Fatalf("output = %q, want %q", out.String(), want)
	}
}

func TestRunReportsFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "fail.lua", `
local scene = Scenario.new("broken")
scene:character({id = "jotaro", temp = 1})
scene:spend({character = "jotaro", move = "fudge"})
return scene
`)
	err := Run(context.Background(), Config{Scenario: path, Assertions: true, Timeout: time.Second}, nil, nil)
	if err == nil || !strings.Contains(err.Error(), "broken") {
		t.Fatalf("error = %v, want scenario failure", err)
	}
}
