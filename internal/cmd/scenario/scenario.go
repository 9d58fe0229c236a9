// Package scenario runs Lua scenario files from the command line.
package scenario

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	platformcmd "github.com/Iwalker-dev/bizarre-adventures-d6/internal/platform/cmd"
	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/storage"
	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/tools/scenario"
)

// Config holds scenario command configuration.
type Config struct {
	Scenario   string        `env:"SCENARIO_FILE"`
	Assertions bool          `env:"SCENARIO_ASSERT"   envDefault:"true"`
	Verbose    bool          `env:"SCENARIO_VERBOSE"`
	Timeout    time.Duration `env:"SCENARIO_TIMEOUT"  envDefault:"10s"`
	Locale     string        `env:"LOCALE"            envDefault:"en-US"`
	Store      string        `env:"STORE"             envDefault:"memory"`
	DBPath     string        `env:"DB_PATH"`

	// Files are extra scenario paths given as arguments.
	Files []string
}

func bindFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "path to a scenario lua file or directory")
	fs.BoolVar(&cfg.Assertions, "assert", cfg.Assertions, "enable assertions (disable to log expectations)")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable verbose logging")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "timeout per step")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "locale for luck messages")
	fs.StringVar(&cfg.Store, "store", cfg.Store, "pool store: memory, sqlite or bbolt")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "pool store path for sqlite or bbolt")
}

// ParseConfig parses env and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfigFromArgs(&cfg, fs, args, bindFlags); err != nil {
		return Config{}, err
	}
	cfg.Files = fs.Args()
	return cfg, nil
}

// Run executes every configured scenario in order and stops at the first
// failure.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	paths, err := scenarioPaths(cfg)
	if err != nil {
		return err
	}

	mode := scenario.AssertionStrict
	if !cfg.Assertions {
		mode = scenario.AssertionLogOnly
	}

	store, err := storage.Open(storage.Backend(cfg.Store), cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	logger := log.New(errOut, "", 0)
	runner := scenario.NewRunner(scenario.Config{
		Timeout:    cfg.Timeout,
		Assertions: mode,
		Verbose:    cfg.Verbose,
		Logger:     logger,
		Locale:     cfg.Locale,
		Store:      store,
	})
	for _, path := range paths {
		loaded, err := scenario.LoadScenarioFromFile(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := runner.RunScenario(ctx, loaded); err != nil {
			return fmt.Errorf("%s: %w", loaded.Name, err)
		}
		fmt.Fprintf(out, "ok  %s (%d steps)\n", loaded.Name, len(loaded.Steps))
	}
	return nil
}

// scenarioPaths expands directories to their .lua files in name order.
func scenarioPaths(cfg Config) ([]string, error) {
	var inputs []string
	if strings.TrimSpace(cfg.Scenario) != "" {
		inputs = append(inputs, cfg.Scenario)
	}
	inputs = append(inputs, cfg.Files...)
	if len(inputs) == 0 {
		return nil, errors.New("scenario path is required")
	}

	var paths []string
	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, fmt.Errorf("scenario path: %w", err)
		}
		if !info.IsDir() {
			paths = append(paths, input)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(input, "*.lua"))
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		paths = append(paths, matches...)
	}
	if len(paths) == 0 {
		return nil, errors.New("no scenario files found")
	}
	return paths, nil
}
