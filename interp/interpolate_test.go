package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dr8co/lolcode/ast"
	"github.com/dr8co/lolcode/value"
)

func TestInterpolateFixedEscapes(t *testing.T) {
	s, err := Interpolate(`a:)b:3c:>d:oe:"f::g`, value.New(nil))
	require.NoError(t, err)
	assert.Equal(t, "a\nb\rc\td\ae\"f:g", s)
}

func TestInterpolateHexEscape(t *testing.T) {
	s, err := Interpolate(`:(48)(:(65)(`, value.New(nil))
	require.NoError(t, err)
	assert.Equal(t, "H(e(", s)
}

func TestInterpolateHexRejectsNegative(t *testing.T) {
	_, err := Interpolate(`:(-1)`, value.New(nil))
	assert.ErrorIs(t, err, ErrNegativeCodePoint)
}

func TestInterpolateHexUnterminated(t *testing.T) {
	_, err := Interpolate(`:(41`, value.New(nil))
	assert.ErrorIs(t, err, ErrUnterminatedHex)
}

func TestInterpolateNamedEscape(t *testing.T) {
	s, err := Interpolate(`:[BULLET]`, value.New(nil))
	require.NoError(t, err)
	assert.Equal(t, "•", s)
}

func TestInterpolateNamedEscapeUnknown(t *testing.T) {
	_, err := Interpolate(`:[NOT A NAME]`, value.New(nil))
	assert.ErrorIs(t, err, ErrUnknownName)
}

func TestInterpolateVariable(t *testing.T) {
	scope := value.New(nil)
	require.NoError(t, value.CreateValue(scope, scope, &ast.Identifier{Name: "NAME"}, localOnlyInterpreter{}))
	require.NoError(t, value.UpdateValue(scope, scope, &ast.Identifier{Name: "NAME"}, value.Str("WORLD"), localOnlyInterpreter{}))

	s, err := Interpolate(`HELLO :{NAME}!`, scope)
	require.NoError(t, err)
	assert.Equal(t, "HELLO WORLD!", s)
}

func TestInterpolateImplicitVariable(t *testing.T) {
	scope := value.New(nil)
	scope.SetImpVar(value.Int(7))

	s, err := Interpolate(`IT IS :{IT}`, scope)
	require.NoError(t, err)
	assert.Equal(t, "IT IS 7", s)
}

func TestInterpolateNeverRescansSubstitution(t *testing.T) {
	// X's own value interpolates to a lone ':' (a trailing colon with
	// nothing after it is literal). Substituting it directly in front of
	// the template's following ')' must NOT be re-scanned as the ":)"
	// newline escape — the scanner only ever advances through raw once.
	scope := value.New(nil)
	require.NoError(t, value.CreateValue(scope, scope, &ast.Identifier{Name: "X"}, localOnlyInterpreter{}))
	require.NoError(t, value.UpdateValue(scope, scope, &ast.Identifier{Name: "X"}, value.Str(`:`), localOnlyInterpreter{}))

	s, err := Interpolate(`:{X})`, scope)
	require.NoError(t, err)
	assert.Equal(t, ":)", s)
}

func TestInterpolateVariableUnterminated(t *testing.T) {
	_, err := Interpolate(`:{X`, value.New(nil))
	assert.ErrorIs(t, err, ErrUnterminatedVar)
}

func TestInterpolateUnknownVariable(t *testing.T) {
	_, err := Interpolate(`:{MISSING}`, value.New(nil))
	assert.ErrorIs(t, err, ErrUnknownVariable)
}
