package recparse

import (
	"fmt"

	"github.com/kbukum/recparse/internal/split"
)

// Converter holds one declared parse list together with its own splitter
// state (§5 "the two converters each own an independent splitter state") and
// any installed column mapping. It turns a split record into a tuple of
// typed results.
type Converter struct {
	specs []FieldSpec
	reg   *Registry
	sp    *split.Splitter

	mapping             []int
	originalColumnCount int
}

func newConverter(specs []FieldSpec, reg *Registry, splitCfg split.Config) (*Converter, error) {
	sp, err := split.New(splitCfg)
	if err != nil {
		return nil, translateErr(err)
	}
	return &Converter{specs: specs, reg: reg, sp: sp}, nil
}

func (c *Converter) totalWidth() int {
	w := 0
	for _, s := range c.specs {
		w += s.width()
	}
	return w
}

// installMapping stores positions as the mapping from parse-list position
// to input column, rejecting an empty mapping or one whose maximum index is
// out of range for totalColumns (§4.3 "Column-mapping installation").
func (c *Converter) installMapping(positions []int, totalColumns int) error {
	if len(positions) == 0 {
		return fmt.Errorf("%w: empty mapping", ErrEmptyMapping)
	}
	max := positions[0]
	for _, p := range positions[1:] {
		if p > max {
			max = p
		}
	}
	if max >= totalColumns {
		return fmt.Errorf("%w: index %d out of range for %d columns", ErrMappingOutOfRange, max, totalColumns)
	}
	c.mapping = positions
	c.originalColumnCount = totalColumns
	return nil
}

// convert runs the arity check and per-position extraction of §4.3 against
// buf/ranges, which must already be fully split (no Unterminated data).
//
// Short-circuit: every position is extracted regardless of earlier
// failures, but if any position failed the returned tuple is discarded
// (nil) and the first error encountered is returned.
func (c *Converter) convert(buf []byte, ranges []split.Range) ([]any, error) {
	k := len(ranges)
	topN := len(c.specs)

	if len(c.mapping) == 0 {
		if n := c.totalWidth(); k != n {
			return nil, fmt.Errorf("%w: got %d columns, want %d", ErrColumnCountMismatch, k, n)
		}
	} else {
		if len(c.mapping) != topN {
			return nil, fmt.Errorf("%w: mapping length %d does not match parse list length %d", ErrColumnCountMismatch, len(c.mapping), topN)
		}
		if k != c.originalColumnCount {
			return nil, fmt.Errorf("%w: got %d columns, want %d", ErrColumnCountMismatch, k, c.originalColumnCount)
		}
	}

	results := make([]any, 0, topN)
	var firstErr error
	cursor := 0

	for i, spec := range c.specs {
		w := spec.width()

		var sub []split.Range
		if len(c.mapping) > 0 {
			start := c.mapping[i]
			if start+w > k {
				if firstErr == nil {
					firstErr = fmt.Errorf("%w: column %d out of range", ErrColumnCountMismatch, i+1)
				}
				continue
			}
			sub = ranges[start : start+w]
		} else {
			if cursor+w > k {
				if firstErr == nil {
					firstErr = fmt.Errorf("%w: column %d out of range", ErrColumnCountMismatch, i+1)
				}
				cursor += w
				continue
			}
			sub = ranges[cursor : cursor+w]
			cursor += w
		}

		val, err := spec.extract(buf, sub, c.reg)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("column %d: %w", i+1, err)
			}
			continue
		}
		if _, skip := spec.(placeholderSpec); skip {
			continue
		}
		results = append(results, val)
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}
