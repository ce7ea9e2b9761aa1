package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")
	ErrUsernameTaken  = errors.New("username is already taken")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session already exists")
	ErrVersionConflict = errors.New("session was modified concurrently")

	// Tile errors
	ErrInsufficientTiles = errors.New("not enough tiles in bag")

	// Dictionary errors
	ErrDictionaryNotLoaded = errors.New("dictionary not loaded")
)

// Rule violation categories. Every RuleError matches ErrRuleViolation;
// the move evaluator's errors also match ErrInvalidMove.
var (
	ErrRuleViolation = errors.New("rule violation")
	ErrInvalidMove   = errors.New("invalid move")
)

// Rule violation codes
const (
	CodeEmptyMove       = "EmptyMove"
	CodeOutOfBounds     = "OutOfBounds"
	CodeCellOccupied    = "CellOccupied"
	CodeDuplicateCell   = "DuplicateCell"
	CodeRackShortage    = "RackShortage"
	CodeNotAWord        = "NotAWord"
	CodeWrongTurn       = "WrongTurn"
	CodeNotActive       = "NotActive"
	CodeSessionFull     = "SessionFull"
	CodeAlreadyMember   = "AlreadyMember"
	CodeSessionFinished = "SessionFinished"
)

// RuleError is a locally recoverable violation of the game rules.
// It never implies a state change.
type RuleError struct {
	Code        string
	Message     string
	invalidMove bool
}

func (e *RuleError) Error() string {
	return e.Message
}

// Is lets errors.Is match both the specific rule and its category
func (e *RuleError) Is(target error) bool {
	switch target {
	case ErrRuleViolation:
		return true
	case ErrInvalidMove:
		return e.invalidMove
	}
	return false
}

func newMoveError(code, message string) *RuleError {
	return &RuleError{Code: code, Message: message, invalidMove: true}
}

func newRuleError(code, message string) *RuleError {
	return &RuleError{Code: code, Message: message}
}

// Move evaluation failures
var (
	ErrEmptyMove     = newMoveError(CodeEmptyMove, "move has no placements")
	ErrOutOfBounds   = newMoveError(CodeOutOfBounds, "placement is outside the board")
	ErrCellOccupied  = newMoveError(CodeCellOccupied, "cell is already occupied")
	ErrDuplicateCell = newMoveError(CodeDuplicateCell, "two placements target the same cell")
	ErrRackShortage  = newMoveError(CodeRackShortage, "letter is not available in rack")
	ErrNotAWord      = newMoveError(CodeNotAWord, "letters do not form a valid word")
)

// Session rule failures
var (
	ErrWrongTurn       = newRuleError(CodeWrongTurn, "not this player's turn")
	ErrNotActive       = newRuleError(CodeNotActive, "session is not active")
	ErrSessionFull     = newRuleError(CodeSessionFull, "session is full")
	ErrAlreadyMember   = newRuleError(CodeAlreadyMember, "player is already a member of this session")
	ErrSessionFinished = newRuleError(CodeSessionFinished, "session has finished")
)

// RuleCode returns the rule code of err, or "" if err is not a rule violation
func RuleCode(err error) string {
	var re *RuleError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}
