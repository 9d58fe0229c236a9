package scenario

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/game/formula"
	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/game/luck"
	apperrors "github.com/Iwalker-dev/bizarre-adventures-d6/internal/platform/errors"
)

func readString(args map[string]any, key string) string {
	value, ok := args[key]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(value))
}

func readInt(args map[string]any, key string) (int, bool) {
	value, ok := args[key]
	if !ok {
		return 0, false
	}
	switch v := value.(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func readFloat(args map[string]any, key string) (float64, bool) {
	value, ok := args[key]
	if !ok {
		return 0, false
	}
	switch v := value.(type) {
	case int:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

func readBool(args map[string]any, key string, fallback bool) bool {
	value, ok := args[key]
	if !ok {
		return fallback
	}
	if b, ok := value.(bool); ok {
		return b
	}
	return fallback
}

// readStrings accepts a single string or a list of strings.
func readStrings(args map[string]any, key string) []string {
	switch v := args[key].(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return []string{strings.TrimSpace(v)}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	default:
		return nil
	}
}

func readLines(args map[string]any) ([]formula.Line, error) {
	raw, ok := args["lines"]
	if !ok {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("lines must be a list")
	}
	lines := make([]formula.Line, 0, len(list))
	for i, item := range list {
		data, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("line %d must be a table", i+1)
		}
		operand, err := formula.ParseOperand(readString(data, "operand"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		line := formula.Line{
			Source:   readString(data, "source"),
			Operand:  operand,
			Target:   readString(data, "target"),
			Stat:     readString(data, "stat"),
			Optional: readBool(data, "optional", false),
		}
		if value, ok := readFloat(data, "value"); ok {
			line.Value = formula.Literal(value)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// readStats accepts {power = 3} or a list of stat tables.
func readStats(raw any) ([]formula.Stat, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		stats := make([]formula.Stat, 0, len(keys))
		for _, key := range keys {
			value, ok := readInt(v, key)
			if !ok {
				return nil, fmt.Errorf("stat %q must be a number", key)
			}
			stats = append(stats, formula.Stat{Key: key, Value: value})
		}
		return stats, nil
	case []any:
		stats := make([]formula.Stat, 0, len(v))
		for i, item := range v {
			data, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("stat %d must be a table", i+1)
			}
			stat := formula.Stat{
				Key:   readString(data, "key"),
				Label: readString(data, "label"),
				Track: readString(data, "track"),
			}
			if stat.Key == "" {
				return nil, fmt.Errorf("stat %d key is required", i+1)
			}
			stat.Value, _ = readInt(data, "value")
			stat.Temp, _ = readInt(data, "temp")
			stat.Perm, _ = readInt(data, "perm")
			stat.Original, _ = readInt(data, "original")
			stats = append(stats, stat)
		}
		return stats, nil
	default:
		return nil, fmt.Errorf("stats must be a table")
	}
}

// readIntents accepts move keys or {move=, gambit=, count=} tables.
func readIntents(raw any) ([]luck.Intent, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("moves must be a list")
	}
	intents := make([]luck.Intent, 0, len(list))
	for i, item := range list {
		switch v := item.(type) {
		case string:
			intents = append(intents, luck.Intent{Move: v})
		case map[string]any:
			count, _ := readInt(v, "count")
			intents = append(intents, luck.Intent{
				Move:   readString(v, "move"),
				Gambit: readBool(v, "gambit", false),
				Count:  count,
			})
		default:
			return nil, fmt.Errorf("move %d must be a string or table", i+1)
		}
	}
	return intents, nil
}

// expectOutcome compares an operation error with expect_ok and
// expect_error.
func (r *Runner) expectOutcome(args map[string]any, label string, err error) error {
	expectOK := readBool(args, "expect_ok", true)
	if code := readString(args, "expect_error"); code != "" {
		expectOK = false
		if err != nil && string(apperrors.CodeOf(err)) != code {
			return r.assertions.Failf("%s error code = %s, want %s", label, apperrors.CodeOf(err), code)
		}
	}
	if expectOK && err != nil {
		return r.assertions.Failf("%s: unexpected error: %v", label, err)
	}
	if !expectOK && err == nil {
		return r.assertions.Failf("%s: expected failure", label)
	}
	return nil
}

// expectPool compares the stored pool with expect_temp and expect_perm.
func (r *Runner) expectPool(ctx context.Context, owner string, args map[string]any) error {
	wantTemp, hasTemp := readInt(args, "expect_temp")
	wantPerm, hasPerm := readInt(args, "expect_perm")
	if !hasTemp && !hasPerm {
		return nil
	}
	pool, err := r.ledger.Pool(ctx, owner)
	if err != nil {
		return fmt.Errorf("read pool %s: %w", owner, err)
	}
	if hasTemp && pool.Temp != wantTemp {
		if err := r.assertions.Failf("%s temp luck = %d, want %d", owner, pool.Temp, wantTemp); err != nil {
			return err
		}
	}
	if hasPerm && pool.Perm != wantPerm {
		if err := r.assertions.Failf("%s perm luck = %d, want %d", owner, pool.Perm, wantPerm); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) expectString(args map[string]any, key, label, got string) error {
	want, ok := args[key]
	if !ok {
		return nil
	}
	if s := fmt.Sprint(want); s != got {
		return r.assertions.Failf("%s = %q, want %q", label, got, s)
	}
	return nil
}

func (r *Runner) expectInt(args map[string]any, key, label string, got int) error {
	want, ok := readInt(args, key)
	if !ok {
		return nil
	}
	if got != want {
		return r.assertions.Failf("%s = %d, want %d", label, got, want)
	}
	return nil
}
