// Package recparse implements a record-oriented delimited-text parser for
// CSV-family dialects. It reads from a file or an in-memory byte slice and
// produces, record by record, typed tuples (or caller-defined aggregates)
// built from a declared, positional parse list, with validation, optional
// fields, variant fallback, and header-driven column remapping.
//
// The parser is layered: internal/lineread assembles one logical record,
// possibly spanning several physical lines under quoted or escaped
// continuation; internal/split slices that record's buffer into field
// ranges in place; this package converts those ranges into the caller's
// declared types and drives the two layers below it through a
// double-buffered Parser facade that pre-stages the next record while the
// caller still holds the current one.
//
// recparse is synchronous and single-threaded: no operation blocks on
// anything but the underlying file handle, and a Parser must not be shared
// across goroutines without external synchronization.
package recparse
