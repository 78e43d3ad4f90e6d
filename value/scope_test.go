package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dr8co/lolcode/ast"
)

// nopInterpreter is used by tests that only exercise direct identifiers and
// so never need to evaluate an indirect NameExpr.
type nopInterpreter struct{}

func (nopInterpreter) EvalExpr(*Scope, ast.Expression) (Value, error) { return Nil(), nil }
func (nopInterpreter) ToString(Value) (string, error)                 { return "", nil }

func direct(name string) *ast.Identifier { return &ast.Identifier{Name: name} }

func TestCreateGetUpdateValue(t *testing.T) {
	s := New(nil)
	in := nopInterpreter{}

	require.NoError(t, CreateValue(s, s, direct("X"), in))
	v, err := GetValue(s, s, direct("X"), in)
	require.NoError(t, err)
	assert.True(t, v.IsNil())

	require.NoError(t, UpdateValue(s, s, direct("X"), Int(5), in))
	v, err = GetValue(s, s, direct("X"), in)
	require.NoError(t, err)
	assert.Equal(t, int64(5), v.Int())
}

func TestRedeclarationFails(t *testing.T) {
	s := New(nil)
	in := nopInterpreter{}
	require.NoError(t, CreateValue(s, s, direct("X"), in))
	err := CreateValue(s, s, direct("X"), in)
	assert.ErrorIs(t, err, ErrRedefinition)
}

func TestGetValueWalksAncestors(t *testing.T) {
	root := New(nil)
	in := nopInterpreter{}
	require.NoError(t, CreateValue(root, root, direct("X"), in))
	require.NoError(t, UpdateValue(root, root, direct("X"), Int(7), in))

	child := New(root)
	v, err := GetValue(child, child, direct("X"), in)
	require.NoError(t, err)
	assert.Equal(t, int64(7), v.Int())

	_, err = GetValueLocal(child, child, direct("X"), in)
	assert.ErrorIs(t, err, ErrVariableNotFound)
}

func TestDeleteValuePreservesOrder(t *testing.T) {
	s := New(nil)
	in := nopInterpreter{}
	require.NoError(t, CreateValue(s, s, direct("A"), in))
	require.NoError(t, CreateValue(s, s, direct("B"), in))
	require.NoError(t, CreateValue(s, s, direct("C"), in))

	require.NoError(t, DeleteValue(s, s, direct("B"), in))
	assert.Equal(t, []string{"A", "C"}, s.names)

	_, err := GetValue(s, s, direct("B"), in)
	assert.ErrorIs(t, err, ErrVariableNotFound)
}

func TestGetScopeIAndME(t *testing.T) {
	root := New(nil)
	callFrame := NewWithCaller(root, root)

	got, err := GetScope(callFrame, callFrame, direct("I"), nopInterpreter{})
	require.NoError(t, err)
	assert.Same(t, callFrame, got)

	got, err = GetScope(callFrame, callFrame, direct("ME"), nopInterpreter{})
	require.NoError(t, err)
	assert.Same(t, root, got)
}

func TestGetScopeMEWalksToOutermostCaller(t *testing.T) {
	outer := New(nil)
	mid := NewWithCaller(New(nil), outer)
	inner := NewWithCaller(New(nil), mid)

	got, err := GetScope(inner, inner, direct("ME"), nopInterpreter{})
	require.NoError(t, err)
	assert.Same(t, outer, got)
}

func TestSlotDescentRequiresArray(t *testing.T) {
	root := New(nil)
	in := nopInterpreter{}
	require.NoError(t, CreateValue(root, root, direct("X"), in))
	require.NoError(t, UpdateValue(root, root, direct("X"), Int(1), in))

	nested := &ast.Identifier{Name: "X", Slot: direct("Y")}
	_, err := GetValue(root, root, nested, in)
	assert.ErrorIs(t, err, ErrNotArray)
}

func TestSlotDescentIntoArray(t *testing.T) {
	root := New(nil)
	in := nopInterpreter{}
	inner := New(root)
	require.NoError(t, CreateValue(root, root, direct("BOX"), in))
	require.NoError(t, UpdateValue(root, root, direct("BOX"), Arr(inner), in))
	require.NoError(t, CreateValue(root, inner, direct("Y"), in))
	require.NoError(t, UpdateValue(root, inner, direct("Y"), Int(9), in))

	nested := &ast.Identifier{Name: "BOX", Slot: direct("Y")}
	v, err := GetValue(root, root, nested, in)
	require.NoError(t, err)
	assert.Equal(t, int64(9), v.Int())
}

func TestImpVarDefaultsToNilAndUpdates(t *testing.T) {
	s := New(nil)
	assert.True(t, s.ImpVar().IsNil())
	s.SetImpVar(Int(3))
	assert.Equal(t, int64(3), s.ImpVar().Int())
}
