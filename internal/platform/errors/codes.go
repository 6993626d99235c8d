// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Draw lifecycle errors
	CodeDrawInvalidStatusTransition Code = "DRAW_INVALID_STATUS_TRANSITION"
	CodeDrawEventNotAllowed         Code = "DRAW_EVENT_NOT_ALLOWED"
	CodeDrawNotOpen                 Code = "DRAW_NOT_OPEN"
	CodeNoOpenDraws                 Code = "NO_OPEN_DRAWS"
	CodeDrawLevelMismatch           Code = "DRAW_LEVEL_MISMATCH"
	CodeDrawInvalidWinningNumbers   Code = "DRAW_INVALID_WINNING_NUMBERS"
	CodeDrawInvalidID               Code = "DRAW_INVALID_ID"

	// Wager request errors
	CodeWagerInvalidUserID           Code = "WAGER_INVALID_USER_ID"
	CodeWagerEmptyDrawSelection      Code = "WAGER_EMPTY_DRAW_SELECTION"
	CodeWagerDuplicateDraw           Code = "WAGER_DUPLICATE_DRAW"
	CodeWagerParticipationNotAllowed Code = "WAGER_PARTICIPATION_NOT_ALLOWED"
	CodeWagerNoBoards                Code = "WAGER_NO_BOARDS"
	CodeWagerInvalidID               Code = "WAGER_INVALID_ID"
	CodeWagerInvalidStake            Code = "WAGER_INVALID_STAKE"

	// Board validation errors
	CodeWagerInvalidGameType         Code = "WAGER_INVALID_GAME_TYPE"
	CodeWagerUnknownClass            Code = "WAGER_UNKNOWN_CLASS"
	CodeWagerMissingSelection        Code = "WAGER_MISSING_SELECTION"
	CodeWagerSelectionCountMismatch  Code = "WAGER_SELECTION_COUNT_MISMATCH"
	CodeWagerUnexpectedSelection     Code = "WAGER_UNEXPECTED_SELECTION"
	CodeWagerDuplicateSelection      Code = "WAGER_DUPLICATE_SELECTION"
	CodeWagerSelectionOutOfRange     Code = "WAGER_SELECTION_OUT_OF_RANGE"
	CodeWagerDuplicateSelectionValue Code = "WAGER_DUPLICATE_SELECTION_VALUE"

	// Catalog errors
	CodeGameInvalidID Code = "GAME_INVALID_ID"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"

	// Random/seed errors
	CodeSeedInvalid Code = "SEED_INVALID"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeDrawLevelMismatch,
		CodeDrawInvalidWinningNumbers,
		CodeDrawInvalidID,
		CodeWagerInvalidUserID,
		CodeWagerEmptyDrawSelection,
		CodeWagerDuplicateDraw,
		CodeWagerParticipationNotAllowed,
		CodeWagerNoBoards,
		CodeWagerInvalidID,
		CodeWagerInvalidStake,
		CodeWagerInvalidGameType,
		CodeWagerUnknownClass,
		CodeWagerMissingSelection,
		CodeWagerSelectionCountMismatch,
		CodeWagerUnexpectedSelection,
		CodeWagerDuplicateSelection,
		CodeWagerSelectionOutOfRange,
		CodeWagerDuplicateSelectionValue,
		CodeGameInvalidID,
		CodeSeedInvalid:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeDrawInvalidStatusTransition,
		CodeDrawEventNotAllowed,
		CodeDrawNotOpen,
		CodeNoOpenDraws:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeNotFound:
		return codes.NotFound

	default:
		return codes.Internal
	}
}

// IsValidation reports whether the code describes rejected caller input.
// Validation failures are never worth retrying.
func (c Code) IsValidation() bool {
	return c.GRPCCode() == codes.InvalidArgument
}

// IsPrecondition reports whether the code describes a state that may change,
// so the caller may retry later.
func (c Code) IsPrecondition() bool {
	return c.GRPCCode() == codes.FailedPrecondition
}
