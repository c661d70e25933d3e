// Package sourcectx is the source-context collaborator named in the
// name resolver's contract: it converts between a byte offset into
// the minified source (the coordinate system the parser adapter and
// scope collector use) and a (line, UTF-16 column) position (the
// coordinate system source maps use). Lines are 1-indexed to match
// source map convention; columns are 0-indexed UTF-16 code units.
//
// Built once per source and immutable after New returns, so a single
// SourceContext is safe to share for read the same way ScopeIndex is.
package sourcectx

import (
	"unicode/utf16"
	"unicode/utf8"

	jsscopeserrors "github.com/standardbeagle/jsscopes/internal/errors"
)

// SourceContext answers offset<->position conversions for one source
// string. Line numbers are 1-indexed; columns are UTF-16 code units.
type SourceContext struct {
	source     string
	lineStarts []int // byte offset of the start of each line; lineStarts[0] == 0
}

// New scans source once to record line-start byte offsets. Fails only
// if a line's byte length cannot be represented (practically
// unreachable for any source that fits in memory, but kept as a typed
// failure per the engine's error contract rather than a panic).
func New(source string) (*SourceContext, error) {
	sc := &SourceContext{source: source, lineStarts: []int{0}}
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			sc.lineStarts = append(sc.lineStarts, i+1)
		}
	}
	if len(sc.lineStarts) > len(source)+1 {
		return nil, jsscopeserrors.NewSourceContextError(len(sc.lineStarts), nil)
	}
	return sc, nil
}

// lineIndexForOffset returns the 0-indexed line containing byteOffset
// via binary search over lineStarts.
func (sc *SourceContext) lineIndexForOffset(byteOffset int) int {
	lo, hi := 0, len(sc.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if sc.lineStarts[mid] <= byteOffset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// OffsetToPosition converts a byte offset into the source to a
// (1-indexed line, UTF-16 column) pair. Returns ok=false if
// byteOffset is out of range.
func (sc *SourceContext) OffsetToPosition(byteOffset int) (line, utf16Col int, ok bool) {
	if byteOffset < 0 || byteOffset > len(sc.source) {
		return 0, 0, false
	}
	lineIdx := sc.lineIndexForOffset(byteOffset)
	lineStart := sc.lineStarts[lineIdx]

	col := 0
	for i := lineStart; i < byteOffset; {
		r, size := utf8.DecodeRuneInString(sc.source[i:])
		if size == 0 {
			break
		}
		col += utf16.RuneLen(r)
		if col < 0 {
			col = 1
		}
		i += size
	}
	return lineIdx + 1, col, true
}

// PositionToOffset converts a (1-indexed line, UTF-16 column) pair
// back to a byte offset. Returns ok=false if line is out of range or
// column exceeds the line's length.
func (sc *SourceContext) PositionToOffset(line, utf16Col int) (byteOffset int, ok bool) {
	lineIdx := line - 1
	if lineIdx < 0 || lineIdx >= len(sc.lineStarts) {
		return 0, false
	}
	lineStart := sc.lineStarts[lineIdx]
	lineEnd := len(sc.source)
	if lineIdx+1 < len(sc.lineStarts) {
		lineEnd = sc.lineStarts[lineIdx+1]
	}

	col := 0
	i := lineStart
	for i < lineEnd {
		if col == utf16Col {
			return i, true
		}
		r, size := utf8.DecodeRuneInString(sc.source[i:])
		if size == 0 {
			break
		}
		col += utf16.RuneLen(r)
		i += size
	}
	if col == utf16Col {
		return i, true
	}
	return 0, false
}

// Line returns the raw text of the given 1-indexed line, without its
// trailing newline, or ok=false if line is out of range.
func (sc *SourceContext) Line(line int) (text string, ok bool) {
	lineIdx := line - 1
	if lineIdx < 0 || lineIdx >= len(sc.lineStarts) {
		return "", false
	}
	start := sc.lineStarts[lineIdx]
	end := len(sc.source)
	if lineIdx+1 < len(sc.lineStarts) {
		end = sc.lineStarts[lineIdx+1] - 1 // exclude the newline
		if end < start {
			end = start
		}
	}
	text = sc.source[start:end]
	if len(text) > 0 && text[len(text)-1] == '\r' {
		text = text[:len(text)-1]
	}
	return text, true
}
