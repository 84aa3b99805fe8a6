package recparse

import (
	"fmt"
	"reflect"

	"github.com/kbukum/recparse/internal/split"
)

// FieldSpec is one position in a declared parse list (§9 "take the parse
// list as a data-driven description"): placeholder, scalar, string slice,
// optional-of-X, variant-of-X..., validator-wrapped-X, or aggregate. Every
// constructor in this file returns a FieldSpec; the interface's methods are
// unexported so the set of kinds is closed to this package.
type FieldSpec interface {
	// width reports how many consecutive input columns this position
	// consumes. It is 1 for every kind except Aggregate, which consumes
	// the sum of its declared fields' widths.
	width() int

	// extract converts the width() ranges in ranges (already resolved
	// against any column mapping) into this position's value.
	extract(buf []byte, ranges []split.Range, reg *Registry) (any, error)
}

func rawOf(buf []byte, r split.Range) []byte { return buf[r.Begin:r.End] }

type placeholderSpec struct{}

// Placeholder discards its column; it never fails and contributes nothing
// to the returned tuple.
func Placeholder() FieldSpec { return placeholderSpec{} }

func (placeholderSpec) width() int { return 1 }

func (placeholderSpec) extract(buf []byte, ranges []split.Range, reg *Registry) (any, error) {
	return nil, nil
}

type scalarSpec struct{ typ reflect.Type }

// Scalar declares a single typed position backed by the extractor registry
// (§6). T must have an extractor registered, either a built-in or one
// installed via RegisterExtractor.
func Scalar[T any]() FieldSpec {
	return scalarSpec{typ: reflect.TypeOf((*T)(nil)).Elem()}
}

func (scalarSpec) width() int { return 1 }

func (s scalarSpec) extract(buf []byte, ranges []split.Range, reg *Registry) (any, error) {
	raw := rawOf(buf, ranges[0])
	v, ok := reg.extract(s.typ, raw)
	if !ok {
		return nil, fmt.Errorf("%w: cannot parse %q as %s", ErrInvalidConversion, raw, s.typ)
	}
	return v, nil
}

type stringsSpec struct{}

// Strings borrows the field's raw bytes verbatim (zero-copy, valid until
// the next advance) and always succeeds.
func Strings() FieldSpec { return stringsSpec{} }

func (stringsSpec) width() int { return 1 }

func (stringsSpec) extract(buf []byte, ranges []split.Range, reg *Registry) (any, error) {
	return rawOf(buf, ranges[0]), nil
}

// Absent is the value an Optional position reports when its inner
// extraction fails.
type Absent struct{}

type optionalSpec struct{ inner FieldSpec }

// Optional attempts inner; on failure the position is Absent rather than
// propagating an error.
func Optional(inner FieldSpec) FieldSpec { return optionalSpec{inner} }

func (o optionalSpec) width() int { return o.inner.width() }

func (o optionalSpec) extract(buf []byte, ranges []split.Range, reg *Registry) (any, error) {
	v, err := o.inner.extract(buf, ranges, reg)
	if err != nil {
		return Absent{}, nil
	}
	return v, nil
}

type variantSpec struct{ alts []FieldSpec }

// Variant attempts each alternative in declared order; the first success
// wins. Reordering alternatives is a user-visible semantic change.
func Variant(alts ...FieldSpec) FieldSpec { return variantSpec{alts} }

func (v variantSpec) width() int {
	if len(v.alts) == 0 {
		return 1
	}
	return v.alts[0].width()
}

func (v variantSpec) extract(buf []byte, ranges []split.Range, reg *Registry) (any, error) {
	for _, alt := range v.alts {
		val, err := alt.extract(buf, ranges, reg)
		if err == nil {
			return val, nil
		}
	}
	return nil, fmt.Errorf("%w: no variant alternative matched", ErrInvalidConversion)
}

type validatedSpec struct {
	inner      FieldSpec
	validators []Validator
}

// Validated extracts inner, then runs each validator against the result in
// order; the first rejection's message (or "validation error" if it
// supplies none) becomes the position's error.
func Validated(inner FieldSpec, validators ...Validator) FieldSpec {
	return validatedSpec{inner: inner, validators: validators}
}

func (v validatedSpec) width() int { return v.inner.width() }

func (v validatedSpec) extract(buf []byte, ranges []split.Range, reg *Registry) (any, error) {
	val, err := v.inner.extract(buf, ranges, reg)
	if err != nil {
		return nil, err
	}
	for _, validator := range v.validators {
		if !validator.IsValid(val) {
			msg := validator.Message()
			if msg == "" {
				msg = "validation error"
			}
			return nil, fmt.Errorf("%w: %s", ErrValidationFailed, msg)
		}
	}
	return val, nil
}

type aggregateSpec struct {
	destType reflect.Type
	fields   []FieldSpec
}

// Aggregate constructs a *T by walking T's exported fields in declared
// order, assigning the i-th sub-position's value to the i-th field. Its
// column mapping (when one is installed) applies only to the aggregate's
// own starting column; its fields then consume consecutive raw columns from
// there — spec.md's column mapping describes a one-position-per-column
// correspondence and does not define mapped-aggregate interaction, so this
// is a documented extension (see DESIGN.md).
func Aggregate[T any](fields ...FieldSpec) FieldSpec {
	return aggregateSpec{destType: reflect.TypeOf((*T)(nil)).Elem(), fields: fields}
}

func (a aggregateSpec) width() int {
	w := 0
	for _, f := range a.fields {
		w += f.width()
	}
	return w
}

func (a aggregateSpec) extract(buf []byte, ranges []split.Range, reg *Registry) (any, error) {
	dest := reflect.New(a.destType).Elem()
	var exported []int
	for j := 0; j < dest.NumField(); j++ {
		if a.destType.Field(j).IsExported() {
			exported = append(exported, j)
		}
	}
	pos := 0
	for i, f := range a.fields {
		w := f.width()
		if pos+w > len(ranges) {
			return nil, fmt.Errorf("%w: aggregate field %d out of range", ErrColumnCountMismatch, i+1)
		}
		val, err := f.extract(buf, ranges[pos:pos+w], reg)
		if err != nil {
			return nil, fmt.Errorf("aggregate field %d: %w", i+1, err)
		}
		pos += w
		if val == nil {
			continue // placeholder: leave the destination field at its zero value
		}
		if i >= len(exported) {
			continue
		}
		field := dest.Field(exported[i])
		rv := reflect.ValueOf(val)
		if field.CanSet() && rv.Type().AssignableTo(field.Type()) {
			field.Set(rv)
		}
	}
	return dest.Addr().Interface(), nil
}
