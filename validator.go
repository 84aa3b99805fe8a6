package recparse

import (
	"cmp"
	"fmt"
	"reflect"
)

// Validator is the predicate protocol a Validated position runs against its
// already-extracted value (§6 "Validator protocol").
type Validator interface {
	IsValid(value any) bool
	Message() string
}

type allExcept struct{ excluded []any }

// AllExcept accepts any value other than one of excluded.
func AllExcept(excluded ...any) Validator { return allExcept{excluded} }

func (v allExcept) IsValid(value any) bool {
	for _, e := range v.excluded {
		if e == value {
			return false
		}
	}
	return true
}

func (v allExcept) Message() string { return "validation error" }

type noneExcept struct{ allowed []any }

// NoneExcept accepts only a value equal to one of allowed.
func NoneExcept(allowed ...any) Validator { return noneExcept{allowed} }

func (v noneExcept) IsValid(value any) bool {
	for _, a := range v.allowed {
		if a == value {
			return true
		}
	}
	return false
}

func (v noneExcept) Message() string { return "validation error" }

type boundValidator[T cmp.Ordered] struct {
	bound T
	cmp   func(v, bound T) bool
	verb  string
}

func (v boundValidator[T]) IsValid(value any) bool {
	t, ok := value.(T)
	if !ok {
		return false
	}
	return v.cmp(t, v.bound)
}

func (v boundValidator[T]) Message() string {
	return fmt.Sprintf("value must be %s %v", v.verb, v.bound)
}

// LessThan accepts values strictly less than bound.
func LessThan[T cmp.Ordered](bound T) Validator {
	return boundValidator[T]{bound: bound, cmp: func(v, b T) bool { return v < b }, verb: "less than"}
}

// LessOrEqual accepts values less than or equal to bound.
func LessOrEqual[T cmp.Ordered](bound T) Validator {
	return boundValidator[T]{bound: bound, cmp: func(v, b T) bool { return v <= b }, verb: "less than or equal to"}
}

// GreaterThan accepts values strictly greater than bound.
func GreaterThan[T cmp.Ordered](bound T) Validator {
	return boundValidator[T]{bound: bound, cmp: func(v, b T) bool { return v > b }, verb: "greater than"}
}

// GreaterOrEqual accepts values greater than or equal to bound.
func GreaterOrEqual[T cmp.Ordered](bound T) Validator {
	return boundValidator[T]{bound: bound, cmp: func(v, b T) bool { return v >= b }, verb: "greater than or equal to"}
}

type rangeValidator[T cmp.Ordered] struct {
	lo, hi T
	invert bool
}

// InRange accepts values v with lo <= v <= hi.
func InRange[T cmp.Ordered](lo, hi T) Validator { return rangeValidator[T]{lo: lo, hi: hi} }

// OutOfRange accepts values v with v < lo or v > hi.
func OutOfRange[T cmp.Ordered](lo, hi T) Validator { return rangeValidator[T]{lo: lo, hi: hi, invert: true} }

func (v rangeValidator[T]) IsValid(value any) bool {
	t, ok := value.(T)
	if !ok {
		return false
	}
	inRange := t >= v.lo && t <= v.hi
	if v.invert {
		return !inRange
	}
	return inRange
}

func (v rangeValidator[T]) Message() string {
	if v.invert {
		return fmt.Sprintf("value must be outside [%v, %v]", v.lo, v.hi)
	}
	return fmt.Sprintf("value must be in [%v, %v]", v.lo, v.hi)
}

type nonEmpty struct{}

// NonEmpty accepts non-empty strings, byte slices, and other containers.
func NonEmpty() Validator { return nonEmpty{} }

func (nonEmpty) IsValid(value any) bool {
	switch v := value.(type) {
	case string:
		return len(v) > 0
	case []byte:
		return len(v) > 0
	default:
		rv := reflect.ValueOf(value)
		switch rv.Kind() {
		case reflect.Slice, reflect.Map, reflect.Array, reflect.String:
			return rv.Len() > 0
		default:
			return true
		}
	}
}

func (nonEmpty) Message() string { return "value must not be empty" }
