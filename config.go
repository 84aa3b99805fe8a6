package recparse

import (
	"fmt"

	"github.com/kbukum/recparse/internal/split"
)

// ErrorMode selects how a Parser surfaces per-record errors. Go's explicit
// error-return convention makes the boolean-flag and thrown-structured-error
// modes converge on the same shape — a returned error — so the practical
// difference between the three is how much that error is decorated:
// ErrorModeBool returns the error undecorated, ErrorModeMessage decorates it with
// file position, and ErrorModeThrow guarantees the result is (or wraps) a
// *ParseError suitable for errors.As.
type ErrorMode int

const (
	ErrorModeBool ErrorMode = iota
	ErrorModeMessage
	ErrorModeThrow
)

// Config is the construction-time configuration for a Parser: quoting,
// escaping, trimming, multiline continuation, header handling, empty-line
// policy, and error-reporting mode. It is validated once, at NewParser,
// mirroring how nnnkkk7-go-simdcsv's NewReaderWithOptions converts
// ReaderOptions once up front rather than re-checking per call.
type Config struct {
	// Delim is the field delimiter: a single byte or a literal multi-byte
	// sequence. Must be non-empty.
	Delim []byte

	HasQuote bool
	Quote    byte

	HasEscape bool
	Escape    byte

	TrimLeft  []byte
	TrimRight []byte

	Multiline      bool
	MultilineLimit int // 0 = unlimited

	IgnoreHeader bool
	IgnoreEmpty  bool

	ErrorMode ErrorMode
}

func (c Config) validate() error {
	if c.Multiline && !c.HasQuote && !c.HasEscape {
		return fmt.Errorf("%w: multiline support requires quote or escape", ErrConfiguration)
	}
	if c.ErrorMode < ErrorModeBool || c.ErrorMode > ErrorModeThrow {
		return fmt.Errorf("%w: unknown error mode", ErrConfiguration)
	}
	return nil
}

func (c Config) toSplitConfig() split.Config {
	return split.Config{
		Delim:     c.Delim,
		HasQuote:  c.HasQuote,
		Quote:     c.Quote,
		HasEscape: c.HasEscape,
		Escape:    c.Escape,
		TrimLeft:  c.TrimLeft,
		TrimRight: c.TrimRight,
	}
}
