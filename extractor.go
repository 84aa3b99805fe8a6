package recparse

import (
	"reflect"
	"strconv"
)

// Registry holds the typed extractor for each target type a Scalar position
// may request: "from a byte range, produce a T or signal failure" (§6). The
// built-in specializations cover the signed/unsigned integer family, both
// floating-point widths, bool, Byte, string, and []byte; RegisterExtractor
// is the user extension point for any other type.
type Registry struct {
	byType map[reflect.Type]func(raw []byte) (any, bool)
}

// Byte is the single-byte field type (§6 "single byte"). It is a distinct
// named type rather than a bare byte, since byte is an alias of uint8: the
// two can't carry separate extractors in the same reflect.Type-keyed
// Registry, and uint8 keeps the numeric unsigned-integer extractor.
type Byte byte

func newRegistry() *Registry {
	r := &Registry{byType: make(map[reflect.Type]func(raw []byte) (any, bool))}
	registerBuiltins(r)
	return r
}

// RegisterExtractor installs fn as the extractor for T, overriding any
// built-in or previously registered extractor for that type.
func RegisterExtractor[T any](r *Registry, fn func(raw []byte) (T, bool)) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	r.byType[t] = func(raw []byte) (any, bool) {
		v, ok := fn(raw)
		return v, ok
	}
}

func (r *Registry) extract(t reflect.Type, raw []byte) (any, bool) {
	fn, ok := r.byType[t]
	if !ok {
		return nil, false
	}
	return fn(raw)
}

func registerBuiltins(r *Registry) {
	RegisterExtractor(r, func(raw []byte) (int, bool) {
		n, err := strconv.ParseInt(string(raw), 10, strconv.IntSize)
		return int(n), err == nil
	})
	RegisterExtractor(r, func(raw []byte) (int8, bool) {
		n, err := strconv.ParseInt(string(raw), 10, 8)
		return int8(n), err == nil
	})
	RegisterExtractor(r, func(raw []byte) (int16, bool) {
		n, err := strconv.ParseInt(string(raw), 10, 16)
		return int16(n), err == nil
	})
	RegisterExtractor(r, func(raw []byte) (int32, bool) {
		n, err := strconv.ParseInt(string(raw), 10, 32)
		return int32(n), err == nil
	})
	RegisterExtractor(r, func(raw []byte) (int64, bool) {
		n, err := strconv.ParseInt(string(raw), 10, 64)
		return n, err == nil
	})
	RegisterExtractor(r, func(raw []byte) (uint, bool) {
		n, err := strconv.ParseUint(string(raw), 10, strconv.IntSize)
		return uint(n), err == nil
	})
	RegisterExtractor(r, func(raw []byte) (uint8, bool) {
		n, err := strconv.ParseUint(string(raw), 10, 8)
		return uint8(n), err == nil
	})
	RegisterExtractor(r, func(raw []byte) (uint16, bool) {
		n, err := strconv.ParseUint(string(raw), 10, 16)
		return uint16(n), err == nil
	})
	RegisterExtractor(r, func(raw []byte) (uint32, bool) {
		n, err := strconv.ParseUint(string(raw), 10, 32)
		return uint32(n), err == nil
	})
	RegisterExtractor(r, func(raw []byte) (uint64, bool) {
		n, err := strconv.ParseUint(string(raw), 10, 64)
		return n, err == nil
	})
	RegisterExtractor(r, func(raw []byte) (float32, bool) {
		f, err := strconv.ParseFloat(string(raw), 32)
		return float32(f), err == nil
	})
	RegisterExtractor(r, func(raw []byte) (float64, bool) {
		f, err := strconv.ParseFloat(string(raw), 64)
		return f, err == nil
	})
	RegisterExtractor(r, func(raw []byte) (bool, bool) {
		// No case folding, no alternate spellings: matches spec.md's
		// non-goal of Unicode-aware trimming or case folding.
		switch string(raw) {
		case "0", "false":
			return false, true
		case "1", "true":
			return true, true
		default:
			return false, false
		}
	})
	RegisterExtractor(r, func(raw []byte) (Byte, bool) {
		if len(raw) != 1 {
			return 0, false
		}
		return Byte(raw[0]), true
	})
	RegisterExtractor(r, func(raw []byte) (string, bool) {
		return string(raw), true // owned copy
	})
	RegisterExtractor(r, func(raw []byte) ([]byte, bool) {
		return raw, true // borrowed: valid only until the next advance
	})
}
