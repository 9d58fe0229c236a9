package cmd

import (
	"context"
	"errors"
	"flag"
	"testing"
)

type testConfig struct {
	Sheet string `env:"CMD_TEST_SHEET" envDefault:"sheet.yaml"`
	Stat  string `env:"CMD_TEST_STAT" envDefault:"power"`
}

func bindTestFlags(fs *flag.FlagSet, cfg *testConfig) {
	fs.StringVar(&cfg.Sheet, "sheet", cfg.Sheet, "sheet")
	fs.StringVar(&cfg.Stat, "stat", cfg.Stat, "stat")
}

func TestParseConfigReadsEnvAndFlags(t *testing.T) {
	t.Setenv("BIZARRE_CMD_TEST_SHEET", "env.yaml")
	t.Setenv("BIZARRE_CMD_TEST_STAT", "spirit")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg := testConfig{}
	if err := ParseConfig(&cfg); err != nil {
		t.Fatalf("load config defaults: %v", err)
	}
	bindTestFlags(fs, &cfg)

	if err := ParseArgs(fs, []string{"-sheet", "flag.yaml"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if cfg.Sheet != "flag.yaml" {
		t.Fatalf("sheet = %q, want flag.yaml", cfg.Sheet)
	}
	if cfg.Stat != "spirit" {
		t.Fatalf("stat = %q, want spirit", cfg.Stat)
	}
}

func TestParseConfigFromArgsBindsFlagsAfterEnv(t *testing.T) {
	t.Setenv("BIZARRE_CMD_TEST_STAT", "luck")

	cfg := testConfig{}
	fs := flag.NewFlagSet("configargs", flag.ContinueOnError)
	if err := ParseConfigFromArgs(&cfg, fs, []string{"-sheet", "other.yaml"}, bindTestFlags); err != nil {
		t.Fatalf("parse config and args: %v", err)
	}
	if cfg.Sheet != "other.yaml" {
		t.Fatalf("sheet = %q, want other.yaml", cfg.Sheet)
	}
	if cfg.Stat != "luck" {
		t.Fatalf("stat = %q, want luck", cfg.Stat)
	}
}

func TestParseConfigRejectsNilTarget(t *testing.T) {
	if err := ParseConfig[testConfig](nil); err == nil {
		t.Fatal("expected nil target error")
	}
}

func TestParseArgsRejectsNilParser(t *testing.T) {
	if err := ParseArgs(nil, []string{}); err == nil {
		t.Fatal("expected parse args to reject nil parser")
	}
}

func TestRunWithTelemetryRejectsMissingInputs(t *testing.T) {
	if err := RunWithTelemetry(context.Background(), "", func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected missing service error")
	}
	if err := RunWithTelemetry(context.Background(), ServiceRoll, nil); err == nil {
		t.Fatal("expected missing run function error")
	}
}

func TestRunWithTelemetryReturnsRunError(t *testing.T) {
	t.Setenv("BIZARRE_OTEL_ENDPOINT", "")
	want := errors.New("boom")

	err := RunWithTelemetry(context.Background(), ServiceScenario, func(context.Context) error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("run error = %v, want %v", err, want)
	}
}
