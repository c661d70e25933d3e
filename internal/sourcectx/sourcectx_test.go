package sourcectx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOffsetToPosition_SingleLine(t *testing.T) {
	sc, err := New("function t(){}")
	require.NoError(t, err)

	line, col, ok := sc.OffsetToPosition(9)
	require.True(t, ok)
	require.Equal(t, 1, line)
	require.Equal(t, 9, col)
}

func TestOffsetToPosition_MultiLine(t *testing.T) {
	sc, err := New("line one\nline two\nline three")
	require.NoError(t, err)

	// byte 9 is 'l' starting "line two"
	line, col, ok := sc.OffsetToPosition(9)
	require.True(t, ok)
	require.Equal(t, 2, line)
	require.Equal(t, 0, col)

	// byte 18 is 'l' starting "line three"
	line, col, ok = sc.OffsetToPosition(18)
	require.True(t, ok)
	require.Equal(t, 3, line)
	require.Equal(t, 0, col)
}

func TestOffsetToPosition_OutOfRangeFails(t *testing.T) {
	sc, err := New("abc")
	require.NoError(t, err)

	_, _, ok := sc.OffsetToPosition(-1)
	require.False(t, ok)
	_, _, ok = sc.OffsetToPosition(100)
	require.False(t, ok)
}

func TestOffsetToPosition_CountsUTF16CodeUnitsNotBytes(t *testing.T) {
	// "é" is 2 bytes in UTF-8 but 1 UTF-16 code unit; "😀" is 4 bytes
	// in UTF-8 but a surrogate pair (2 UTF-16 code units).
	sc, err := New("é😀x")
	require.NoError(t, err)

	// byte offset 2 is the start of the emoji (after the 2-byte é).
	_, col, ok := sc.OffsetToPosition(2)
	require.True(t, ok)
	require.Equal(t, 1, col)

	// byte offset 6 is 'x' (after é (2 bytes) + emoji (4 bytes)).
	_, col, ok = sc.OffsetToPosition(6)
	require.True(t, ok)
	require.Equal(t, 3, col) // 1 (é) + 2 (surrogate pair)
}

func TestPositionToOffset_RoundTripsWithOffsetToPosition(t *testing.T) {
	sc, err := New("line one\nline two")
	require.NoError(t, err)

	for _, offset := range []int{0, 3, 8, 9, 14} {
		line, col, ok := sc.OffsetToPosition(offset)
		require.True(t, ok)
		back, ok := sc.PositionToOffset(line, col)
		require.True(t, ok)
		require.Equal(t, offset, back)
	}
}

func TestPositionToOffset_OutOfRangeLineFails(t *testing.T) {
	sc, err := New("abc")
	require.NoError(t, err)

	_, ok := sc.PositionToOffset(0, 0)
	require.False(t, ok)
	_, ok = sc.PositionToOffset(5, 0)
	require.False(t, ok)
}

func TestLine_ReturnsTextWithoutTrailingNewlineOrCR(t *testing.T) {
	sc, err := New("first\r\nsecond\nthird")
	require.NoError(t, err)

	text, ok := sc.Line(1)
	require.True(t, ok)
	require.Equal(t, "first", text)

	text, ok = sc.Line(2)
	require.True(t, ok)
	require.Equal(t, "second", text)

	text, ok = sc.Line(3)
	require.True(t, ok)
	require.Equal(t, "third", text)
}

func TestLine_OutOfRangeFails(t *testing.T) {
	sc, err := New("only line")
	require.NoError(t, err)

	_, ok := sc.Line(0)
	require.False(t, ok)
	_, ok = sc.Line(2)
	require.False(t, ok)
}
