// Package sheet loads YAML character sheets: stats with Burn tracks, luck
// pools and items carrying modifier lines.
package sheet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/game/formula"
	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/game/luck"
	apperrors "github.com/Iwalker-dev/bizarre-adventures-d6/internal/platform/errors"
	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingID indicates a sheet without an id.
	ErrMissingID = apperrors.New(apperrors.CodeSheetMissingID, "sheet id is required")
	// ErrDuplicateStat indicates two stats sharing a key.
	ErrDuplicateStat = apperrors.New(apperrors.CodeSheetDuplicateStat, "duplicate stat key")
	// ErrInvalidLine indicates a malformed modifier line.
	ErrInvalidLine = apperrors.New(apperrors.CodeSheetInvalidLine, "invalid modifier line")
	// ErrInvalidPool indicates negative luck.
	ErrInvalidPool = apperrors.New(apperrors.CodeSheetInvalidPool, "luck cannot be negative")
)

// Sheet is one character.
type Sheet struct {
	ID     string         `yaml:"id"`
	Name   string         `yaml:"name"`
	Linked string         `yaml:"linked,omitempty"`
	Luck   Luck           `yaml:"luck"`
	Stats  []Stat         `yaml:"stats"`
	Fields map[string]any `yaml:"fields,omitempty"`
	Items  []Item         `yaml:"items,omitempty"`
}

// Luck is the stored luck pool.
type Luck struct {
	Temp int `yaml:"temp"`
	Perm int `yaml:"perm"`
}

// Stat is a stat with its optional Burn track.
type Stat struct {
	Key      string `yaml:"key"`
	Label    string `yaml:"label,omitempty"`
	Value    int    `yaml:"value"`
	Track    string `yaml:"track,omitempty"`
	Temp     int    `yaml:"temp,omitempty"`
	Perm     int    `yaml:"perm,omitempty"`
	Original int    `yaml:"original,omitempty"`
}

// Item is an equipped item or ability.
type Item struct {
	Name  string `yaml:"name"`
	Lines []Line `yaml:"lines"`
}

// Line is a modifier line as written in YAML.
type Line struct {
	Operand  string   `yaml:"operand"`
	Target   string   `yaml:"target"`
	Value    *float64 `yaml:"value,omitempty"`
	Stat     string   `yaml:"stat,omitempty"`
	Optional bool     `yaml:"optional,omitempty"`
}

// Load decodes and validates one sheet. Unknown keys are rejected.
func Load(r io.Reader) (*Sheet, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s Sheet
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrMissingID
		}
		return nil, fmt.Errorf("decode sheet: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFile loads the sheet at path.
func LoadFile(path string) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sheet: %w", err)
	}
	defer f.Close()
	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// LoadDir loads every *.yaml and *.yml sheet in dir, in file name order.
func LoadDir(dir string) ([]*Sheet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read sheet dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	out := make([]*Sheet, 0, len(names))
	seen := make(map[string]string, len(names))
	for _, name := range names {
		s, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[s.ID]; ok {
			return nil, fmt.Errorf("sheet id %q in both %s and %s", s.ID, prev, name)
		}
		seen[s.ID] = name
		out = append(out, s)
	}
	return out, nil
}

// Validate checks the sheet id, stat keys, luck and modifier lines.
func (s *Sheet) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return ErrMissingID
	}
	if s.Luck.Temp < 0 || s.Luck.Perm < 0 {
		return ErrInvalidPool
	}
	keys := make(map[string]bool, len(s.Stats))
	for _, st := range s.Stats {
		key := strings.ToLower(strings.TrimSpace(st.Key))
		if key == "" {
			return apperrors.WithMetadata(apperrors.CodeSheetDuplicateStat, "stat key is required", map[string]string{"Stat": st.Label})
		}
		if keys[key] {
			return apperrors.WithMetadata(apperrors.CodeSheetDuplicateStat,
				fmt.Sprintf("duplicate stat key %q", st.Key), map[string]string{"Stat": st.Key})
		}
		keys[key] = true
	}
	for _, item := range s.Items {
		for i, l := range item.Lines {
			if _, err := formula.ParseOperand(l.Operand); err != nil || strings.TrimSpace(l.Target) == "" {
				return apperrors.WithMetadata(apperrors.CodeSheetInvalidLine,
					fmt.Sprintf("item %q line %d: operand %q target %q", item.Name, i, l.Operand, l.Target),
					map[string]string{"Item": item.Name})
			}
		}
	}
	return nil
}

// FormulaStats converts the sheet stats for resolution.
func (s *Sheet) FormulaStats() []formula.Stat {
	out := make([]formula.Stat, len(s.Stats))
	for i, st := range s.Stats {
		out[i] = formula.Stat{
			Key:      st.Key,
			Label:    st.Label,
			Value:    st.Value,
			Track:    st.Track,
			Temp:     st.Temp,
			Perm:     st.Perm,
			Original: st.Original,
		}
	}
	return out
}

// Context builds the resolution context for the sheet.
func (s *Sheet) Context() *formula.Context {
	return formula.NewContext(s.FormulaStats(), s.Fields)
}

// Stat finds a stat by key or label.
func (s *Sheet) Stat(keyOrLabel string) (Stat, bool) {
	for _, st := range s.Stats {
		if strings.EqualFold(st.Key, keyOrLabel) || strings.EqualFold(st.Label, keyOrLabel) {
			return st, true
		}
	}
	return Stat{}, false
}

// Lines returns every required line and the optional lines of the selected
// items, in item order. Validate must have passed.
func (s *Sheet) Lines(selected []string) []formula.Line {
	chosen := make(map[string]bool, len(selected))
	for _, name := range selected {
		chosen[strings.ToLower(strings.TrimSpace(name))] = true
	}
	var out []formula.Line
	for _, item := range s.Items {
		for _, l := range item.Lines {
			if l.Optional && !chosen[strings.ToLower(item.Name)] {
				continue
			}
			op, _ := formula.ParseOperand(l.Operand)
			out = append(out, formula.Line{
				Source:   item.Name,
				Operand:  op,
				Target:   l.Target,
				Value:    l.Value,
				Stat:     l.Stat,
				Optional: l.Optional,
			})
		}
	}
	return out
}

// Pool returns the sheet's luck as a pool.
func (s *Sheet) Pool() luck.Pool {
	return luck.Pool{Temp: s.Luck.Temp, Perm: s.Luck.Perm}
}
