package recparse

import (
	"errors"
	"fmt"

	"github.com/kbukum/recparse/internal/lineread"
	"github.com/kbukum/recparse/internal/split"
)

// Sentinel errors, one per observable error kind. Every error a Parser
// returns either is one of these (via errors.Is) or wraps one.
var (
	ErrSourceUnavailable     = errors.New("recparse: source unavailable")
	ErrReadPastEOF           = errors.New("recparse: read past end-of-input")
	ErrEmptyDelimiter        = errors.New("recparse: empty delimiter")
	ErrMismatchedQuote       = errors.New("recparse: mismatched quote")
	ErrUnterminatedQuote     = errors.New("recparse: unterminated quote")
	ErrUnterminatedEscape    = errors.New("recparse: unterminated escape")
	ErrMultilineLimitReached = errors.New("recparse: multiline limit reached")
	ErrInvalidConversion     = errors.New("recparse: invalid conversion")
	ErrValidationFailed      = errors.New("recparse: validation failed")
	ErrFailedCheck           = errors.New("recparse: failed check")
	ErrColumnCountMismatch   = errors.New("recparse: column count mismatch")
	ErrHeaderIgnored         = errors.New("recparse: header handling is disabled")
	ErrDuplicateHeader       = errors.New("recparse: duplicate header field")
	ErrUnknownField          = errors.New("recparse: unknown field")
	ErrRepeatedField         = errors.New("recparse: field repeated in use_fields call")
	ErrEmptyMapping          = errors.New("recparse: empty mapping")
	ErrMappingOutOfRange     = errors.New("recparse: mapping index out of range")
	ErrInvalidResplit        = errors.New("recparse: invalid resplit")
	ErrConfiguration         = errors.New("recparse: configuration error")
)

// ParseError decorates an underlying error with the record position it was
// observed at. It is the structured form returned when a Parser's error
// mode is ErrorModeThrow; ErrorModeMessage instead prefixes the error with
// "line N: " and does not produce a ParseError.
type ParseError struct {
	StartLine int   // physical line the record started on
	Line      int   // physical line reported for the error; the Parser sets it to StartLine
	Column    int   // 1-based field position, 0 when not applicable
	Err       error // underlying sentinel error
}

func (e *ParseError) Error() string {
	if e.Column > 0 {
		return fmt.Sprintf("parse error on line %d, column %d: %v", e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("parse error on line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// translateErr maps a lower-layer sentinel (from internal/split or
// internal/lineread) to its recparse-level counterpart, so callers only
// ever need to errors.Is against this package's sentinels regardless of
// which layer actually detected the condition.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, split.ErrEmptyDelimiter):
		return fmt.Errorf("%w", ErrEmptyDelimiter)
	case errors.Is(err, split.ErrMismatchedQuote):
		return fmt.Errorf("%w", ErrMismatchedQuote)
	case errors.Is(err, split.ErrUnterminatedEscape), errors.Is(err, lineread.ErrUnterminatedEscape):
		return fmt.Errorf("%w", ErrUnterminatedEscape)
	case errors.Is(err, lineread.ErrUnterminatedQuote):
		return fmt.Errorf("%w", ErrUnterminatedQuote)
	case errors.Is(err, lineread.ErrMultilineLimitReached):
		return fmt.Errorf("%w", ErrMultilineLimitReached)
	case errors.Is(err, split.ErrConflictingBytes):
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	case errors.Is(err, split.ErrNotSuspended), errors.Is(err, split.ErrInvalidResplit):
		return fmt.Errorf("%w", ErrInvalidResplit)
	default:
		return err
	}
}
