package dice

import (
	"errors"
	"math/rand"
	"testing"
)

func TestParseExpression(t *testing.T) {
	tcs := []struct {
		formula string
		want    Expression
		wantErr error
	}{
		{"1d6cs>=5", Expression{Count: 1, Sides: 6, Threshold: 5, HasPool: true, HasThreshold: true}, nil},
		{"(3d8cs>=4) + (2)", Expression{Count: 3, Sides: 8, Threshold: 4, HasPool: true, HasThreshold: true}, nil},
		{"2D6", Expression{Count: 2, Sides: 6, HasPool: true}, nil},
		{"cs >= 3", Expression{Threshold: 3, HasThreshold: true}, nil},
		{"@power", Expression{}, ErrInvalidExpression},
		{"", Expression{}, ErrInvalidExpression},
	}
	for _, tc := range tcs {
		t.Run(tc.formula, func(t *testing.T) {
			got, err := ParseExpression(tc.formula)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("error = %v, want %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Fatalf("expression = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestExpressionString(t *testing.T) {
	expr := Expression{Count: 4, Sides: 6, Threshold: 3}
	if got := expr.String(); got != "(4d6cs>=3)" {
		t.Fatalf("string = %q, want (4d6cs>=3)", got)
	}
}

func TestRollPoolCountsSuccesses(t *testing.T) {
	expr := Expression{Count: 6, Sides: 6, Threshold: 4}
	const seed = 99

	got, err := RollPool(expr, seed)
	if err != nil {
		t.Fatalf("roll pool: %v", err)
	}

	rng := rand.New(rand.NewSource(seed))
	want := 0
	for i := 0; i < expr.Count; i++ {
		if rng.Intn(expr.Sides)+1 >= expr.Threshold {
			want++
		}
	}
	if got.Successes != want {
		t.Fatalf("successes = %d, want %d", got.Successes, want)
	}
	if len(got.Results) != expr.Count {
		t.Fatalf("results = %d, want %d", len(got.Results), expr.Count)
	}
}

func TestRollPoolZeroThresholdAlwaysSucceeds(t *testing.T) {
	got, err := RollPool(Expression{Count: 3, Sides: 6, Threshold: 0}, 1)
	if err != nil {
		t.Fatalf("roll pool: %v", err)
	}
	if got.Successes != 3 {
		t.Fatalf("successes = %d, want 3", got.Successes)
	}
}

func TestRollPoolEmpty(t *testing.T) {
	got, err := RollPool(Expression{Count: 0, Sides: 6, Threshold: 5}, 1)
	if err != nil {
		t.Fatalf("roll pool: %v", err)
	}
	if got.Successes != 0 || len(got.Results) != 0 {
		t.Fatalf("empty pool = %+v, want zero successes", got)
	}
}

func TestCountSuccesses(t *testing.T) {
	if got := CountSuccesses([]int{1, 4, 5, 6}, 5); got != 2 {
		t.Fatalf("successes = %d, want 2", got)
	}
}
