// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Dice errors
	CodeDiceMissing           Code = "DICE_MISSING"
	CodeDiceInvalidSpec       Code = "DICE_INVALID_SPEC"
	CodeDiceInvalidExpression Code = "DICE_INVALID_EXPRESSION"

	// Luck economy errors
	CodeLuckInvalidMove  Code = "LUCK_INVALID_MOVE"
	CodeLuckInsufficient Code = "LUCK_INSUFFICIENT"
	CodeLuckAdvantageCap Code = "LUCK_ADVANTAGE_CAP"
	CodeLuckWrongTiming  Code = "LUCK_WRONG_TIMING"
	CodeLuckPoolConflict Code = "LUCK_POOL_CONFLICT"
	CodeLuckPoolNotFound Code = "LUCK_POOL_NOT_FOUND"
	CodeLuckMoveLocked   Code = "LUCK_MOVE_LOCKED"

	// Roll flow errors
	CodeRollInvalidTransition Code = "ROLL_INVALID_TRANSITION"
	CodeRollPartialCommit     Code = "ROLL_PARTIAL_COMMIT"

	// Sheet errors
	CodeSheetMissingID     Code = "SHEET_MISSING_ID"
	CodeSheetDuplicateStat Code = "SHEET_DUPLICATE_STAT"
	CodeSheetInvalidLine   Code = "SHEET_INVALID_LINE"
	CodeSheetInvalidPool   Code = "SHEET_INVALID_POOL"

	// Seed errors
	CodeSeedOutOfRange Code = "SEED_OUT_OF_RANGE"
)

// GRPCCode maps domain codes to gRPC status codes for hosts that expose the
// engine over gRPC.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeDiceMissing,
		CodeDiceInvalidSpec,
		CodeDiceInvalidExpression,
		CodeLuckInvalidMove,
		CodeSheetMissingID,
		CodeSheetDuplicateStat,
		CodeSheetInvalidLine,
		CodeSheetInvalidPool,
		CodeSeedOutOfRange:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeLuckInsufficient,
		CodeLuckAdvantageCap,
		CodeLuckWrongTiming,
		CodeRollInvalidTransition,
		CodeRollPartialCommit:
		return codes.FailedPrecondition

	// Aborted - concurrency conflicts the caller may retry
	case CodeLuckPoolConflict,
		CodeLuckMoveLocked:
		return codes.Aborted

	case CodeLuckPoolNotFound:
		return codes.NotFound

	default:
		return codes.Internal
	}
}
