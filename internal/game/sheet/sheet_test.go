package sheet

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/game/formula"
	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/game/luck"
)

func TestLoadFile(t *testing.T) {
	s, err := LoadFile(filepath.Join("testdata", "jotaro.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.ID != "jotaro" || s.Linked != "star-platinum" {
		t.Fatalf("sheet = %+v", s)
	}
	if s.Pool() != (luck.Pool{Temp: 4, Perm: 2}) {
		t.Fatalf("pool = %+v", s.Pool())
	}
	spirit, ok := s.Stat("Spirit")
	if !ok || spirit.Track != "temp" || spirit.Original != 3 {
		t.Fatalf("spirit = %+v, %v", spirit, ok)
	}
	ctx := s.Context()
	if v, ok := ctx.Field("precision"); !ok || v != 5 {
		t.Fatalf("precision = %v, %v, want 5", v, ok)
	}
	if st, ok := ctx.Stat("spirit"); !ok || st.EffectiveValue() != 1 {
		t.Fatalf("spirit context stat = %+v", st)
	}
}

func TestLines(t *testing.T) {
	s, err := LoadFile(filepath.Join("testdata", "jotaro.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	required := s.Lines(nil)
	if len(required) != 1 || required[0].Source != "Stand Rush" || required[0].Operand != formula.OperandAdd {
		t.Fatalf("required lines = %+v", required)
	}

	all := s.Lines([]string{"stand rush", "Focus"})
	if len(all) != 3 {
		t.Fatalf("lines = %d, want 3", len(all))
	}
	res := formula.Resolve(formula.Request{
		BaseFormula: "@power",
		StatKey:     "power",
		Lines:       all,
		Context:     s.Context(),
	})
	if res.Formula != "(4d6cs>=4) +(5)" {
		t.Fatalf("formula = %q, want (4d6cs>=4) +(5)", res.Formula)
	}
}

func TestLoadDir(t *testing.T) {
	sheets, err := LoadDir("testdata")
	if err != nil {
		t.Fatalf("load dir: %v", err)
	}
	if len(sheets) != 2 || sheets[0].ID != "jotaro" || sheets[1].ID != "star-platinum" {
		t.Fatalf("sheets = %d", len(sheets))
	}
}

func TestLoadRejects(t *testing.T) {
	tcs := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{"empty document", "", ErrMissingID},
		{"missing id", "name: nobody\n", ErrMissingID},
		{"negative luck", "id: a\nluck: {temp: -1}\n", ErrInvalidPool},
		{"duplicate stat", "id: a\nstats:\n  - {key: power, value: 1}\n  - {key: POWER, value: 2}\n", ErrDuplicateStat},
		{"bad operand", "id: a\nitems:\n  - name: x\n    lines:\n      - {operand: \"%\", target: stat}\n", ErrInvalidLine},
		{"missing target", "id: a\nitems:\n  - name: x\n    lines:\n      - {operand: \"+\"}\n", ErrInvalidLine},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tc.doc))
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	if _, err := Load(strings.NewReader("id: a\nhp: 3\n")); err == nil {
		t.Fatal("expected unknown field error")
	}
}
