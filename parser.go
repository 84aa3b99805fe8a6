package recparse

import (
	"fmt"
	"os"

	"github.com/kbukum/recparse/internal/lineread"
	"github.com/kbukum/recparse/internal/split"
)

// recordSlot holds one logical record's materialized buffer and split data,
// decoupled from the line reader's own internal buffer (which is reused for
// every physical line, including the next record's).
type recordSlot struct {
	buf       []byte
	data      *split.Data
	splitErr  error
	eof       bool
	startLine int
}

// Parser is the facade (§4.4): it owns one line reader and two Converter
// instances (current and next, for look-ahead), and exposes record
// retrieval, header-driven column selection, iteration, and composite retry.
//
// A Parser is not safe for concurrent use (§5): all mutation happens on the
// calling goroutine.
type Parser struct {
	reader *lineread.Reader
	cfg    Config
	reg    *Registry

	curConv  *Converter
	nextConv *Converter

	cur  recordSlot
	next recordSlot

	headerRaw    []byte
	headerRanges []split.Range
	header       *Header

	lastErr error
}

// NewParser constructs a Parser reading records from src according to specs
// (the declared parse list) and cfg.
func NewParser(src lineread.Source, specs []FieldSpec, cfg Config) (*Parser, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	splitCfg := cfg.toSplitConfig()
	reg := newRegistry()

	curConv, err := newConverter(specs, reg, splitCfg)
	if err != nil {
		return nil, err
	}
	nextConv, err := newConverter(specs, reg, splitCfg)
	if err != nil {
		return nil, err
	}

	readerCfg := lineread.Config{
		IgnoreEmpty:    cfg.IgnoreEmpty,
		Multiline:      cfg.Multiline,
		MultilineLimit: cfg.MultilineLimit,
		HasEscape:      cfg.HasEscape,
		Escape:         cfg.Escape,
	}

	p := &Parser{
		reader:   lineread.New(src, readerCfg),
		cfg:      cfg,
		reg:      reg,
		curConv:  curConv,
		nextConv: nextConv,
	}

	if err := p.consumeHeaderRow(splitCfg); err != nil {
		return nil, err
	}

	p.fill(&p.next, p.nextConv)
	return p, nil
}

// NewParserFromFile opens path and constructs a Parser over it, mirroring
// nnnkkk7-go-simdcsv's NewReader/NewReaderWithOptions pairing of a minimal
// and an options-driven constructor.
func NewParserFromFile(path string, specs []FieldSpec, cfg Config) (*Parser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return NewParser(lineread.FromFile(f), specs, cfg)
}

// consumeHeaderRow handles construction-time header policy: when
// IgnoreHeader is set, the first record is read and discarded; otherwise its
// split bytes and field ranges are retained for lazy materialization on first
// use.
func (p *Parser) consumeHeaderRow(splitCfg split.Config) error {
	sp, err := split.New(splitCfg)
	if err != nil {
		return translateErr(err)
	}
	data, eof, err := p.reader.Advance(sp)
	if err != nil {
		return translateErr(err)
	}
	if eof {
		return nil
	}
	if !p.cfg.IgnoreHeader {
		p.headerRaw = append([]byte(nil), p.reader.Bytes()...)
		p.headerRanges = data.Ranges
	}
	return nil
}

// fill reads and splits the next physical record into slot using conv's own
// splitter, leaving slot.eof set when the source is exhausted.
func (p *Parser) fill(slot *recordSlot, conv *Converter) {
	*slot = recordSlot{}
	data, eof, err := p.reader.Advance(conv.sp)
	if err != nil {
		slot.splitErr = translateErr(err)
		slot.startLine = p.reader.StartLine()
		return
	}
	if eof {
		slot.eof = true
		return
	}
	slot.buf = append(slot.buf[:0], p.reader.Bytes()...)
	slot.data = data
	slot.startLine = p.reader.StartLine()
}

// advance promotes the pre-staged "next" record to "current" and pre-stages
// a new "next" from the converter that just became free (§4.4 "Advance
// protocol" / "Swap semantics on advance").
func (p *Parser) advance() (bool, error) {
	if p.next.splitErr != nil {
		err := p.next.splitErr
		line := p.next.startLine
		p.cur = recordSlot{}
		p.next = recordSlot{}
		return false, p.wrapErr(err, line)
	}
	if p.next.eof {
		p.cur = recordSlot{}
		return false, nil
	}
	p.cur, p.next = p.next, recordSlot{}
	p.curConv, p.nextConv = p.nextConv, p.curConv
	p.fill(&p.next, p.nextConv)
	return true, nil
}

// Next advances to the next record, returning false at end-of-input or on a
// structural error (see Err).
func (p *Parser) Next() bool {
	ok, err := p.advance()
	p.lastErr = err
	return ok
}

// Err returns the error, if any, that caused the most recent Next to return
// false.
func (p *Parser) Err() error { return p.lastErr }

// Record converts the current record into the declared parse list.
func (p *Parser) Record() ([]any, error) {
	if p.cur.data == nil {
		return nil, p.wrapErr(fmt.Errorf("%w", ErrReadPastEOF), p.cur.startLine)
	}
	val, err := p.curConv.convert(p.cur.buf, p.cur.data.Ranges)
	if err != nil {
		return nil, p.wrapErr(err, p.cur.startLine)
	}
	return val, nil
}

func (p *Parser) wrapErr(err error, line int) error {
	if err == nil {
		return nil
	}
	switch p.cfg.ErrorMode {
	case ErrorModeThrow:
		var pe *ParseError
		if ok := asParseError(err, &pe); ok {
			return pe
		}
		return &ParseError{StartLine: line, Line: line, Err: err}
	case ErrorModeMessage:
		return fmt.Errorf("line %d: %w", line, err)
	default:
		return err
	}
}

func asParseError(err error, target **ParseError) bool {
	pe, ok := err.(*ParseError)
	if !ok {
		return false
	}
	*target = pe
	return true
}

// ensureHeader lazily materializes the header from the retained header
// record's bytes and field ranges on first use (§4.4 "Header handling").
func (p *Parser) ensureHeader() error {
	if p.cfg.IgnoreHeader {
		return fmt.Errorf("%w", ErrHeaderIgnored)
	}
	if p.header != nil {
		return nil
	}
	if p.headerRaw == nil {
		return fmt.Errorf("%w: no header record available", ErrSourceUnavailable)
	}
	names := make([]string, len(p.headerRanges))
	for i, r := range p.headerRanges {
		names[i] = string(p.headerRaw[r.Begin:r.End])
	}
	h, err := newHeader(names)
	if err != nil {
		return err
	}
	p.header = h
	return nil
}

// FieldExists reports whether name appears in the (lazily materialized)
// header.
func (p *Parser) FieldExists(name string) (bool, error) {
	if err := p.ensureHeader(); err != nil {
		return false, err
	}
	return p.header.Exists(name), nil
}

// UseFields installs a column mapping derived from the header, reordering
// the parse list relative to the input columns (§4.4 "use_fields").
func (p *Parser) UseFields(names ...string) error {
	if err := p.ensureHeader(); err != nil {
		return err
	}
	positions, err := p.header.resolve(names)
	if err != nil {
		return err
	}
	if err := p.curConv.installMapping(positions, p.header.columnCount()); err != nil {
		return err
	}
	if err := p.nextConv.installMapping(positions, p.header.columnCount()); err != nil {
		return err
	}
	return nil
}

// Iterator returns a single-pass, pull-style view over the parser's
// remaining records, in the idiom of bufio.Scanner / database/sql.Rows.
func (p *Parser) Iterator() *Iterator { return &Iterator{p: p} }

// Iterator is the forward, single-pass view §4.4 describes.
type Iterator struct {
	p   *Parser
	rec []any
	err error
}

// Next advances the iterator, returning false at end-of-input or error.
func (it *Iterator) Next() bool {
	if !it.p.Next() {
		it.err = it.p.Err()
		return false
	}
	rec, err := it.p.Record()
	it.rec, it.err = rec, err
	return err == nil
}

// Record returns the tuple produced by the most recent successful Next.
func (it *Iterator) Record() ([]any, error) { return it.rec, it.err }

// Err returns the error, if any, that stopped iteration.
func (it *Iterator) Err() error { return it.err }
