package lineread

import (
	"testing"

	"github.com/kbukum/recparse/internal/split"
	"github.com/stretchr/testify/require"
)

func fields(buf []byte, d *split.Data) []string {
	out := make([]string, len(d.Ranges))
	for i, rg := range d.Ranges {
		out[i] = string(buf[rg.Begin:rg.End])
	}
	return out
}

func TestAdvance_SingleLineRecords(t *testing.T) {
	src := FromBytes([]byte("a,b,c\nd,e,f\n"))
	r := New(src, Config{})
	sp, err := split.New(split.Config{Delim: []byte(",")})
	require.NoError(t, err)

	data, eof, err := r.Advance(sp)
	require.NoError(t, err)
	require.False(t, eof)
	require.Equal(t, []string{"a", "b", "c"}, fields(r.buf, data))
	require.Equal(t, 1, r.StartLine())

	data, eof, err = r.Advance(sp)
	require.NoError(t, err)
	require.False(t, eof)
	require.Equal(t, []string{"d", "e", "f"}, fields(r.buf, data))
	require.Equal(t, 2, r.StartLine())

	_, eof, err = r.Advance(sp)
	require.NoError(t, err)
	require.True(t, eof)
}

func TestAdvance_NoTrailingNewline(t *testing.T) {
	src := FromBytes([]byte("a,b"))
	r := New(src, Config{})
	sp, err := split.New(split.Config{Delim: []byte(",")})
	require.NoError(t, err)

	data, eof, err := r.Advance(sp)
	require.NoError(t, err)
	require.False(t, eof)
	require.Equal(t, []string{"a", "b"}, fields(r.buf, data))
}

func TestAdvance_CRLFNormalization(t *testing.T) {
	src := FromBytes([]byte("a,b\r\nc,d\r\n"))
	r := New(src, Config{})
	sp, err := split.New(split.Config{Delim: []byte(",")})
	require.NoError(t, err)

	data, _, err := r.Advance(sp)
	require.NoError(t, err)
	require.True(t, r.CRLF())
	require.Equal(t, []string{"a", "b"}, fields(r.buf, data))

	data, _, err = r.Advance(sp)
	require.NoError(t, err)
	require.Equal(t, []string{"c", "d"}, fields(r.buf, data))
}

func TestAdvance_IgnoreEmptyLines(t *testing.T) {
	src := FromBytes([]byte("a,b\n\n\nc,d\n"))
	r := New(src, Config{IgnoreEmpty: true})
	sp, err := split.New(split.Config{Delim: []byte(",")})
	require.NoError(t, err)

	data, _, err := r.Advance(sp)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, fields(r.buf, data))

	data, _, err = r.Advance(sp)
	require.NoError(t, err)
	require.Equal(t, []string{"c", "d"}, fields(r.buf, data))
}

func TestAdvance_AcceptsEmptyRecordWhenNotIgnored(t *testing.T) {
	src := FromBytes([]byte("\na,b\n"))
	r := New(src, Config{})
	sp, err := split.New(split.Config{Delim: []byte(",")})
	require.NoError(t, err)

	data, _, err := r.Advance(sp)
	require.NoError(t, err)
	require.Equal(t, []string{""}, fields(r.buf, data))
}

func TestAdvance_QuotedMultilineContinuation(t *testing.T) {
	src := FromBytes([]byte("\"line1\nline2\",x\n"))
	r := New(src, Config{Multiline: true})
	sp, err := split.New(split.Config{Delim: []byte(","), HasQuote: true, Quote: '"'})
	require.NoError(t, err)

	data, eof, err := r.Advance(sp)
	require.NoError(t, err)
	require.False(t, eof)
	require.Equal(t, []string{"line1\nline2", "x"}, fields(r.buf, data))
	require.Equal(t, 1, r.StartLine())
}

func TestAdvance_QuotedMultilinePreservesCRLFTerminator(t *testing.T) {
	src := FromBytes([]byte("\"line1\r\nline2\",x\r\n"))
	r := New(src, Config{Multiline: true})
	sp, err := split.New(split.Config{Delim: []byte(","), HasQuote: true, Quote: '"'})
	require.NoError(t, err)

	data, _, err := r.Advance(sp)
	require.NoError(t, err)
	require.Equal(t, []string{"line1\r\nline2", "x"}, fields(r.buf, data))
}

func TestAdvance_QuotedMultilineDisabledIsError(t *testing.T) {
	src := FromBytes([]byte("\"line1\nline2\",x\n"))
	r := New(src, Config{Multiline: false})
	sp, err := split.New(split.Config{Delim: []byte(","), HasQuote: true, Quote: '"'})
	require.NoError(t, err)

	_, _, err = r.Advance(sp)
	require.ErrorIs(t, err, ErrUnterminatedQuote)
}

func TestAdvance_UnterminatedQuoteAtEOF(t *testing.T) {
	src := FromBytes([]byte(`"unclosed`))
	r := New(src, Config{Multiline: true})
	sp, err := split.New(split.Config{Delim: []byte(","), HasQuote: true, Quote: '"'})
	require.NoError(t, err)

	_, _, err = r.Advance(sp)
	require.ErrorIs(t, err, ErrUnterminatedQuote)
}

func TestAdvance_EscapedContinuation(t *testing.T) {
	src := FromBytes([]byte("a\\\nb,c\n"))
	r := New(src, Config{Multiline: true, HasEscape: true, Escape: '\\'})
	sp, err := split.New(split.Config{Delim: []byte(","), HasEscape: true, Escape: '\\'})
	require.NoError(t, err)

	data, _, err := r.Advance(sp)
	require.NoError(t, err)
	require.Equal(t, []string{"a\nb", "c"}, fields(r.buf, data))
}

func TestAdvance_UnterminatedEscapeAtEOF(t *testing.T) {
	src := FromBytes([]byte(`a\`))
	r := New(src, Config{Multiline: true, HasEscape: true, Escape: '\\'})
	sp, err := split.New(split.Config{Delim: []byte(","), HasEscape: true, Escape: '\\'})
	require.NoError(t, err)

	_, _, err = r.Advance(sp)
	require.ErrorIs(t, err, ErrUnterminatedEscape)
}

func TestAdvance_MultilineLimitReached(t *testing.T) {
	src := FromBytes([]byte("\"a\nb\nc\nd\",x\n"))
	r := New(src, Config{Multiline: true, MultilineLimit: 1})
	sp, err := split.New(split.Config{Delim: []byte(","), HasQuote: true, Quote: '"'})
	require.NoError(t, err)

	_, _, err = r.Advance(sp)
	require.ErrorIs(t, err, ErrMultilineLimitReached)
}

func TestAdvance_MultilineLimitExactlyAllowed(t *testing.T) {
	src := FromBytes([]byte("\"a\nb\",x\n"))
	r := New(src, Config{Multiline: true, MultilineLimit: 1})
	sp, err := split.New(split.Config{Delim: []byte(","), HasQuote: true, Quote: '"'})
	require.NoError(t, err)

	data, _, err := r.Advance(sp)
	require.NoError(t, err)
	require.Equal(t, []string{"a\nb", "x"}, fields(r.buf, data))
}

func TestAdvance_PhysicalLineCounterAcrossContinuations(t *testing.T) {
	src := FromBytes([]byte("\"a\nb\nc\",x\nd,e\n"))
	r := New(src, Config{Multiline: true})
	sp, err := split.New(split.Config{Delim: []byte(","), HasQuote: true, Quote: '"'})
	require.NoError(t, err)

	_, _, err = r.Advance(sp)
	require.NoError(t, err)
	require.Equal(t, 1, r.StartLine())

	data, _, err := r.Advance(sp)
	require.NoError(t, err)
	require.Equal(t, []string{"d", "e"}, fields(r.buf, data))
	require.Equal(t, 4, r.StartLine())
}
