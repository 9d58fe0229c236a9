package dice

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
)

func TestRollDice_Basic(t *testing.T) {
	tests := []struct {
		name    string
		request Request
		wantErr error
	}{
		{"single d6", Request{Dice: []Spec{{Sides: 6, Count: 1}}, Seed: 42}, nil},
		{"3d6 + 1d8", Request{Dice: []Spec{{Sides: 6, Count: 3}, {Sides: 8, Count: 1}}, Seed: 42}, nil},
		{"no dice", Request{Seed: 42}, ErrMissingDice},
		{"invalid sides", Request{Dice: []Spec{{Sides: 0, Count: 1}}, Seed: 42}, ErrInvalidDiceSpec},
		{"invalid count", Request{Dice: []Spec{{Sides: 6, Count: 0}}, Seed: 42}, ErrInvalidDiceSpec},
		{"invalid later spec", Request{Dice: []Spec{{Sides: 6, Count: 1}, {Sides: -1, Count: 1}}, Seed: 42}, ErrInvalidDiceSpec},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := RollDice(tt.request)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("RollDice() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if len(result.Rolls) != len(tt.request.Dice) {
				t.Fatalf("RollDice() got %d rolls, want %d", len(result.Rolls), len(tt.request.Dice))
			}

			total := 0
			for i, roll := range result.Rolls {
				if len(roll.Results) != tt.request.Dice[i].Count {
					t.Fatalf("Roll[%d] got %d results, want %d", i, len(roll.Results), tt.request.Dice[i].Count)
				}
				sum := 0
				for j, r := range roll.Results {
					if r < 1 || r > roll.Sides {
						t.Fatalf("Roll[%d].Results[%d] = %d, out of range [1, %d]", i, j, r, roll.Sides)
					}
					sum += r
				}
				if roll.Total != sum {
					t.Fatalf("Roll[%d].Total = %d, want %d", i, roll.Total, sum)
				}
				total += roll.Total
			}
			if result.Total != total {
				t.Fatalf("Result.Total = %d, want %d", result.Total, total)
			}
		})
	}
}

func TestRollDice_Determinism(t *testing.T) {
	request := Request{
		Dice: []Spec{{Sides: 6, Count: 5}, {Sides: 6, Count: 2}},
		Seed: 12345,
	}

	first, err := RollDice(request)
	if err != nil {
		t.Fatalf("RollDice() error = %v", err)
	}
	second, err := RollDice(request)
	if err != nil {
		t.Fatalf("RollDice() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ: %+v vs %+v", first, second)
	}
}

func TestRollWithSourceMatchesSeededRoll(t *testing.T) {
	specs := []Spec{{Sides: 6, Count: 2}}

	viaSource, err := RollWithSource(rand.New(rand.NewSource(42)), specs)
	if err != nil {
		t.Fatalf("RollWithSource() error = %v", err)
	}
	viaSeed, err := RollDice(Request{Dice: specs, Seed: 42})
	if err != nil {
		t.Fatalf("RollDice() error = %v", err)
	}
	if !reflect.DeepEqual(viaSource, viaSeed) {
		t.Fatalf("source roll = %+v, seeded roll = %+v", viaSource, viaSeed)
	}
}

// faces replays die faces in order.
type faces struct {
	values []int
	drawn  int
}

func (f *faces) Intn(n int) int {
	v := f.values[f.drawn%len(f.values)]
	f.drawn++
	return (v - 1) % n
}

func TestRollWithSourceUsesFaces(t *testing.T) {
	src := &faces{values: []int{6, 1, 4}}
	got, err := RollWithSource(src, []Spec{{Sides: 6, Count: 2}, {Sides: 4, Count: 1}})
	if err != nil {
		t.Fatalf("RollWithSource() error = %v", err)
	}
	want := Result{
		Rolls: []Roll{
			{Sides: 6, Results: []int{6, 1}, Total: 7},
			{Sides: 4, Results: []int{4}, Total: 4},
		},
		Total: 11,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("RollWithSource() = %+v, want %+v", got, want)
	}
}

func TestRollWithSourceRejectsBeforeDrawing(t *testing.T) {
	src := &faces{values: []int{3}}
	if _, err := RollWithSource(src, []Spec{{Sides: 6, Count: 1}, {Sides: 0, Count: 1}}); !errors.Is(err, ErrInvalidDiceSpec) {
		t.Fatalf("err = %v, want ErrInvalidDiceSpec", err)
	}
	if src.drawn != 0 {
		t.Fatalf("drawn = %d, want 0", src.drawn)
	}
}
