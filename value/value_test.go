package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyDropPreservesObservableState(t *testing.T) {
	v := Int(42)
	c := Copy(v)
	require.Equal(t, 2, RefCount(v))

	Drop(c)
	assert.Equal(t, 1, RefCount(v))
	assert.Equal(t, int64(42), v.Int())
}

func TestDropFreesArrayAtZero(t *testing.T) {
	s := New(nil)
	arr := Arr(s)
	Drop(arr)
	assert.Equal(t, 0, RefCount(arr))
	assert.Nil(t, arr.Array())
}

func TestFloatEqualEpsilon(t *testing.T) {
	assert.True(t, FloatEqual(1.0, 1.0+Epsilon/2))
	assert.False(t, FloatEqual(1.0, 2.0))
}

func TestStructEqualCrossKind(t *testing.T) {
	assert.True(t, StructEqual(Int(3), Float(3.0)))
	assert.True(t, StructEqual(Float(3.0), Int(3)))
	assert.False(t, StructEqual(Int(3), Str("3")))
	assert.True(t, StructEqual(Nil(), Nil()))
}

func TestInspect(t *testing.T) {
	assert.Equal(t, "WIN", Bool(true).Inspect())
	assert.Equal(t, "FAIL", Bool(false).Inspect())
	assert.Equal(t, "NOOB", Nil().Inspect())
	assert.Equal(t, "5", Int(5).Inspect())
}

// TestFormatFloatTruncatedDropsDigitsRatherThanRounding covers spec.md
// §4.3's "%f truncated to 2 decimal places": 1.999 must render "1.99", not
// the "2.00" a rounding FormatFloat call would produce.
func TestFormatFloatTruncatedDropsDigitsRatherThanRounding(t *testing.T) {
	assert.Equal(t, "1.99", FormatFloatTruncated(1.999))
	assert.Equal(t, "-1.99", FormatFloatTruncated(-1.999))
	assert.Equal(t, "3.50", FormatFloatTruncated(3.5))
}
