// Package lineread implements the line-reader half of the parsing core: it
// assembles one logical record's raw bytes — possibly spanning several
// physical lines when a quoted or escaped field is still open — from either
// a file handle or an in-memory byte slice.
//
// A physical line is read, its trailing terminator stripped and
// normalized, and handed to a caller-owned *split.Splitter. When the
// splitter reports an unterminated quote, or the buffer ends on a live
// escape byte, the reader appends the original terminator back (so the
// field's content stays byte-for-byte faithful to the input) followed by
// another physical line, and resumes.
//
// With a positive MultilineLimit, at most that many continuation lines are
// appended to one record (the count is checked before each append with a
// strict greater-than); the next one abandons the record with
// ErrMultilineLimitReached. A limit of 0 means no limit.
package lineread

import (
	"bufio"
	"errors"
	"io"
	"os"

	"github.com/kbukum/recparse/internal/split"
)

var (
	// ErrUnterminatedEscape is returned when input ends while the last
	// physical line of a record ends on a live escape byte.
	ErrUnterminatedEscape = errors.New("lineread: unterminated escape at end of input")

	// ErrUnterminatedQuote is returned when input ends while a quoted
	// field is still open.
	ErrUnterminatedQuote = errors.New("lineread: unterminated quote at end of input")

	// ErrMultilineLimitReached is returned when a record's continuation
	// count exceeds the configured limit.
	ErrMultilineLimitReached = errors.New("lineread: multiline continuation limit reached")
)

// Source supplies physical lines one at a time. The two constructors,
// FromFile and FromBytes, are the only intended implementations.
type Source interface {
	// readPhysicalLine appends the next physical line — including its
	// trailing '\n', if any — to dst[:0] and returns the result. eof is
	// true when the source has no further bytes to offer after this
	// call; a final, newline-less partial line is still returned with
	// eof false and discovered exhausted on the following call.
	readPhysicalLine(dst []byte) (line []byte, eof bool, err error)
}

type fileSource struct {
	r *bufio.Reader
}

// FromFile wraps an *os.File as a Source, reading through a buffered
// reader one byte at a time so physical lines of unbounded length grow the
// destination slice geometrically rather than requiring a fixed cap.
func FromFile(f *os.File) Source {
	return &fileSource{r: bufio.NewReader(f)}
}

func (s *fileSource) readPhysicalLine(dst []byte) ([]byte, bool, error) {
	dst = dst[:0]
	for {
		b, err := s.r.ReadByte()
		if err != nil {
			if err == io.EOF {
				return dst, len(dst) == 0, nil
			}
			return dst, false, err
		}
		dst = append(dst, b)
		if b == '\n' {
			return dst, false, nil
		}
	}
}

type bytesSource struct {
	buf []byte
	pos int
}

// FromBytes wraps an in-memory slice as a Source. The slice is read, never
// copied or mutated by the source itself.
func FromBytes(b []byte) Source {
	return &bytesSource{buf: b}
}

func (s *bytesSource) readPhysicalLine(dst []byte) ([]byte, bool, error) {
	if s.pos >= len(s.buf) {
		return dst[:0], true, nil
	}
	start := s.pos
	for s.pos < len(s.buf) && s.buf[s.pos] != '\n' {
		s.pos++
	}
	if s.pos < len(s.buf) {
		s.pos++ // include the '\n'
	}
	dst = append(dst[:0], s.buf[start:s.pos]...)
	return dst, false, nil
}

// Config controls the reader's empty-line and multiline-continuation
// policy. HasEscape/Escape mirror the splitter's own escape configuration
// and are consulted only for the escaped-continuation test; the
// quoted-continuation test is delegated entirely to the caller-supplied
// *split.Splitter.
type Config struct {
	IgnoreEmpty bool

	Multiline      bool
	MultilineLimit int // 0 = unlimited

	HasEscape bool
	Escape    byte
}

// Reader assembles logical records from a Source.
type Reader struct {
	src Source
	cfg Config

	buf    []byte
	line   []byte
	crlf   bool
	lineNo int
	offset int64

	startLine int
}

// New returns a Reader pulling physical lines from src under cfg.
func New(src Source, cfg Config) *Reader {
	return &Reader{src: src, cfg: cfg}
}

// StartLine is the physical line number (1-based) the most recently completed
// record started on.
func (r *Reader) StartLine() int { return r.startLine }

// Offset is the number of source bytes consumed so far, i.e. the byte offset
// just past the most recently read physical line.
func (r *Reader) Offset() int64 { return r.offset }

// CRLF reports whether the most recently completed record's terminator(s)
// were "\r\n" rather than "\n".
func (r *Reader) CRLF() bool { return r.crlf }

// Bytes returns the buffer holding the most recently assembled logical
// record, as rewritten in place by the splitter: the Ranges of the Data that
// Advance returned index into it, and it no longer holds the raw input bytes.
// The slice is owned by the Reader and is only valid until the next call to
// Advance; callers that need to retain it must copy.
func (r *Reader) Bytes() []byte { return r.buf }

// Advance fills the reader's internal buffer with the next logical record
// and drives sp (a fresh or freshly Reset splitter) against it, resuming sp
// across physical-line continuations as needed. It returns the resulting
// split data and eof=true when no further record exists. The returned Data
// and the bytes its Ranges index into are valid only until the next call to
// Advance.
func (r *Reader) Advance(sp *split.Splitter) (data *split.Data, eof bool, err error) {
	for {
		line, atEOF, rerr := r.src.readPhysicalLine(r.line)
		r.line = line
		if rerr != nil {
			return nil, false, rerr
		}
		if len(line) == 0 && atEOF {
			return nil, true, nil
		}
		r.lineNo++
		r.offset += int64(len(line))
		stripped := r.stripTerminator(line)
		// r.buf accumulates the logical record in its own backing array,
		// independent of r.line: r.line is reused as read scratch space
		// for every physical line, including continuations, and would
		// otherwise clobber content r.buf still depends on.
		r.buf = append(r.buf[:0], stripped...)
		if r.cfg.IgnoreEmpty && len(r.buf) == 0 && !atEOF {
			continue
		}
		r.startLine = r.lineNo
		return r.assemble(sp, atEOF)
	}
}

// stripTerminator removes a trailing "\n" and, if present, the "\r" before
// it, latching r.crlf so a later continuation can re-insert the same
// terminator verbatim.
func (r *Reader) stripTerminator(line []byte) []byte {
	n := len(line)
	if n == 0 || line[n-1] != '\n' {
		r.crlf = false
		return line
	}
	n--
	if n > 0 && line[n-1] == '\r' {
		n--
		r.crlf = true
	} else {
		r.crlf = false
	}
	return line[:n]
}

// assemble drives the splitter over r.buf, extending it with further
// physical lines while a continuation condition holds.
func (r *Reader) assemble(sp *split.Splitter, atEOF bool) (*split.Data, bool, error) {
	continuations := 0
	started := false

	for {
		if r.cfg.Multiline && r.cfg.HasEscape && split.TrailingEscapeIsLive(r.buf, r.cfg.Escape) {
			if atEOF {
				return nil, false, ErrUnterminatedEscape
			}
			var err error
			if atEOF, err = r.extend(&continuations); err != nil {
				return nil, false, err
			}
			continue
		}

		var data *split.Data
		var err error
		if started {
			data, err = sp.Resume(r.buf)
		} else {
			data, err = sp.Split(r.buf)
			started = true
		}
		if err != nil {
			return nil, false, err
		}
		if !data.Unterminated {
			return data, false, nil
		}
		if !r.cfg.Multiline || atEOF {
			return nil, false, ErrUnterminatedQuote
		}

		// Still unterminated: extend the buffer and loop around, which
		// re-checks the escape condition on the new tail before trying
		// another quoted resume, per the alternation the reader
		// specifies for combined escape+quote configurations.
		var err2 error
		if atEOF, err2 = r.extend(&continuations); err2 != nil {
			return nil, false, err2
		}
	}
}

// extend appends the record's original terminator, then one further
// physical line, to r.buf. It enforces the multiline safety limit. When the
// source has no further line, r.buf is left unchanged and atEOF is true.
func (r *Reader) extend(continuations *int) (atEOF bool, err error) {
	*continuations++
	if r.cfg.Multiline && r.cfg.MultilineLimit > 0 && *continuations > r.cfg.MultilineLimit {
		return false, ErrMultilineLimitReached
	}

	line, eof, rerr := r.src.readPhysicalLine(r.line)
	r.line = line
	if rerr != nil {
		return false, rerr
	}
	if len(line) == 0 && eof {
		return true, nil
	}

	if r.crlf {
		r.buf = append(r.buf, '\r', '\n')
	} else {
		r.buf = append(r.buf, '\n')
	}
	r.lineNo++
	r.offset += int64(len(line))
	stripped := r.stripTerminator(line)
	r.buf = append(r.buf, stripped...)
	return eof, nil
}
