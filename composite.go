package recparse

import "fmt"

// Composite is the composite-retry handle (§4.4, §9): it carries either the
// parsed tuple from the first successful attempt, or the most recent
// attempt's error, over the parser's *already-split* current record. OrElse/OrObject
// retry with a different parse list without re-splitting or advancing;
// OnError fires once if the whole chain never succeeded.
type Composite struct {
	p     *Parser
	value []any
	ok    bool
	err   error
}

// TryNext attempts to convert the parser's current record using specs.
func (p *Parser) TryNext(specs ...FieldSpec) *Composite {
	if p.cur.data == nil {
		return &Composite{p: p, err: fmt.Errorf("%w: no current record", ErrReadPastEOF)}
	}
	conv := &Converter{
		specs:               specs,
		reg:                 p.reg,
		mapping:             p.curConv.mapping,
		originalColumnCount: p.curConv.originalColumnCount,
	}
	val, err := conv.convert(p.cur.buf, p.cur.data.Ranges)
	if err != nil {
		return &Composite{p: p, err: err}
	}
	return &Composite{p: p, value: val, ok: true}
}

// OrElse retries the same record with specs if the chain has not yet
// succeeded; it is a no-op once a prior attempt has.
func (c *Composite) OrElse(specs ...FieldSpec) *Composite {
	if c.ok || c.p == nil {
		return c
	}
	conv := &Converter{
		specs:               specs,
		reg:                 c.p.reg,
		mapping:             c.p.curConv.mapping,
		originalColumnCount: c.p.curConv.originalColumnCount,
	}
	val, err := conv.convert(c.p.cur.buf, c.p.cur.data.Ranges)
	if err != nil {
		c.err = err
		return c
	}
	return &Composite{p: c.p, value: val, ok: true}
}

// OrObject is OrElse specialized to a single Aggregate destination.
func (c *Composite) OrObject(spec FieldSpec) *Composite {
	return c.OrElse(spec)
}

// OnSuccess invokes f with the winning tuple if some attempt in the chain
// succeeded, whichever alternative it was.
func (c *Composite) OnSuccess(f func([]any)) *Composite {
	if c.ok {
		f(c.value)
	}
	return c
}

// OnError invokes f with the chain's final error if it never succeeded.
func (c *Composite) OnError(f func(error)) *Composite {
	if !c.ok && c.err != nil {
		f(c.err)
	}
	return c
}

// Value returns the winning tuple, or the chain's final error.
func (c *Composite) Value() ([]any, error) {
	if !c.ok {
		return nil, c.err
	}
	return c.value, nil
}
