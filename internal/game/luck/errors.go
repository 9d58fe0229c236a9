package luck

import (
	"fmt"
	"strconv"

	apperrors "github.com/Iwalker-dev/bizarre-adventures-d6/internal/platform/errors"
)

var (
	// ErrInvalidMove indicates a move key outside the catalog.
	ErrInvalidMove = apperrors.New(apperrors.CodeLuckInvalidMove, "invalid luck move")
	// ErrInsufficientLuck indicates the pool cannot cover a move's cost.
	ErrInsufficientLuck = apperrors.New(apperrors.CodeLuckInsufficient, "insufficient luck")
	// ErrAdvantageCap indicates an advantage move at the Advantage cap.
	ErrAdvantageCap = apperrors.New(apperrors.CodeLuckAdvantageCap, "would break advantage cap")
	// ErrWrongTiming indicates a move used outside its timing window.
	ErrWrongTiming = apperrors.New(apperrors.CodeLuckWrongTiming, "luck move used outside its timing window")
	// ErrPoolConflict indicates the pool kept changing during a spend.
	ErrPoolConflict = apperrors.New(apperrors.CodeLuckPoolConflict, "luck pool changed concurrently")
	// ErrPoolNotFound indicates no pool is stored for an owner.
	ErrPoolNotFound = apperrors.New(apperrors.CodeLuckPoolNotFound, "luck pool not found")
	// ErrMoveLocked indicates another party holds a contested move.
	ErrMoveLocked = apperrors.New(apperrors.CodeLuckMoveLocked, "luck move claimed by another party")
)

func insufficient(m Move, needed, current int) *apperrors.Error {
	return apperrors.WithMetadata(apperrors.CodeLuckInsufficient,
		fmt.Sprintf("%s needs %d %s luck, have %d", m.Key, needed, m.CostType, current),
		map[string]string{
			"Move":    m.Name,
			"Pool":    m.CostType.String(),
			"Needed":  strconv.Itoa(needed),
			"Current": strconv.Itoa(current),
		})
}

func lockedBy(holder string) *apperrors.Error {
	return apperrors.WithMetadata(apperrors.CodeLuckMoveLocked,
		"luck move claimed by "+holder,
		map[string]string{"Holder": holder})
}

// CommitError reports the intent that rejected a batch commit.
type CommitError struct {
	Index int
	Move  string
	Err   error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit luck move %d (%s): %v", e.Index, e.Move, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}
