package eval

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dr8co/lolcode/ast"
	"github.com/dr8co/lolcode/value"
)

func ident(name string) *ast.Identifier { return &ast.Identifier{Name: name} }

func constInt(n int64) *ast.Constant   { return &ast.Constant{Kind: ast.KindInteger, Int: n} }
func constStr(s string) *ast.Constant  { return &ast.Constant{Kind: ast.KindString, Str: s} }
func block(stmts ...ast.Statement) *ast.BlockStatement {
	return &ast.BlockStatement{Statements: stmts}
}

func newEvaluator(stdout *bytes.Buffer) *Evaluator {
	return New(stdout, strings.NewReader(""))
}

// scenario 1: declare X as Integer; X = 2+3; print X -> "5\n"
func TestScenarioArithmeticAndPrint(t *testing.T) {
	var out bytes.Buffer
	e := newEvaluator(&out)
	root := value.New(nil)

	prog := &ast.Program{Statements: []ast.Statement{
		&ast.DeclarationStmt{Target: ident("X"), Type: ast.KindInteger},
		&ast.AssignmentStmt{Target: ident("X"), Value: &ast.OpExpr{
			Kind: ast.OpAdd,
			Args: []ast.Expression{constInt(2), constInt(3)},
		}},
		&ast.PrintStmt{Args: []ast.Expression{&ast.IdentifierExpr{Ident: ident("X")}}},
	}}

	sig, err := e.RunProgram(root, prog)
	require.NoError(t, err)
	assert.Equal(t, Default, sig.Kind)
	assert.Equal(t, "5\n", out.String())
}

// scenario 2: S holds a raw :{N} reference, which is interpolated against
// N's value only when S is printed.
func TestScenarioInterpolatedPrint(t *testing.T) {
	var out bytes.Buffer
	e := newEvaluator(&out)
	root := value.New(nil)

	prog := &ast.Program{Statements: []ast.Statement{
		&ast.DeclarationStmt{Target: ident("N"), Init: constStr("World")},
		&ast.DeclarationStmt{Target: ident("S"), Init: constStr("Hello, :{N}!")},
		&ast.PrintStmt{Args: []ast.Expression{&ast.IdentifierExpr{Ident: ident("S")}}},
	}}

	_, err := e.RunProgram(root, prog)
	require.NoError(t, err)
	assert.Equal(t, "Hello, World!\n", out.String())
}

// scenario 3: loop from 0 while I<3, update I+=1, printing I each time.
func TestScenarioLoop(t *testing.T) {
	var out bytes.Buffer
	e := newEvaluator(&out)
	root := value.New(nil)

	// LOLCODE has no native "<"; "I < 3" counting up from 0 is expressed
	// as TIL (SAEM I AN 3) — loop until I equals 3.
	loopVar := ident("I")
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.LoopStmt{
			Var:          loopVar,
			Guard:        &ast.OpExpr{Kind: ast.OpEq, Args: []ast.Expression{&ast.IdentifierExpr{Ident: ident("I")}, constInt(3)}},
			GuardIsUntil: true,
			Update:       &ast.OpExpr{Kind: ast.OpAdd, Args: []ast.Expression{&ast.IdentifierExpr{Ident: ident("I")}, constInt(1)}},
			UpdateIsAddSub: true,
			UpdateDelta:    1,
			Body:           block(&ast.PrintStmt{Args: []ast.Expression{&ast.IdentifierExpr{Ident: ident("I")}}}),
		},
	}}

	sig, err := e.RunProgram(root, prog)
	require.NoError(t, err)
	assert.Equal(t, Default, sig.Kind)
	assert.Equal(t, "0\n1\n2\n", out.String())
}

// scenario 4: function F(A,B) returns A*B; print F(6,7) -> "42\n"
func TestScenarioFunctionCall(t *testing.T) {
	var out bytes.Buffer
	e := newEvaluator(&out)
	root := value.New(nil)

	def := &ast.FuncDefStmt{
		Name: "F",
		Args: []*ast.Identifier{ident("A"), ident("B")},
		Body: block(&ast.ReturnStmt{Value: &ast.OpExpr{
			Kind: ast.OpMult,
			Args: []ast.Expression{&ast.IdentifierExpr{Ident: ident("A")}, &ast.IdentifierExpr{Ident: ident("B")}},
		}}),
	}

	prog := &ast.Program{Statements: []ast.Statement{
		def,
		&ast.PrintStmt{Args: []ast.Expression{&ast.FuncCallExpr{
			Target: ident("F"),
			Args:   []ast.Expression{constInt(6), constInt(7)},
		}}},
	}}

	_, err := e.RunProgram(root, prog)
	require.NoError(t, err)
	assert.Equal(t, "42\n", out.String())
}

// scenario 5: switch on IT=2 falls through guards 2,3,default with no breaks.
func TestScenarioSwitchFallThrough(t *testing.T) {
	var out bytes.Buffer
	e := newEvaluator(&out)
	root := value.New(nil)

	sw := &ast.SwitchStmt{
		Guards: []ast.Expression{constInt(1), constInt(2), constInt(3)},
		Blocks: []*ast.BlockStatement{
			block(&ast.PrintStmt{Args: []ast.Expression{constStr("a")}}),
			block(&ast.PrintStmt{Args: []ast.Expression{constStr("b")}}),
			block(&ast.PrintStmt{Args: []ast.Expression{constStr("c")}}),
		},
		Default: block(&ast.PrintStmt{Args: []ast.Expression{constStr("d")}}),
	}

	prog := &ast.Program{Statements: []ast.Statement{
		&ast.ExprStmt{Expression: constInt(2)},
		sw,
	}}

	_, err := e.RunProgram(root, prog)
	require.NoError(t, err)
	assert.Equal(t, "b\nc\nd\n", out.String())
}

// scenario 6: division by zero aborts with a diagnostic and no stdout.
func TestScenarioDivisionByZero(t *testing.T) {
	var out bytes.Buffer
	e := newEvaluator(&out)
	root := value.New(nil)

	prog := &ast.Program{Statements: []ast.Statement{
		&ast.PrintStmt{Args: []ast.Expression{&ast.OpExpr{
			Kind: ast.OpDiv,
			Args: []ast.Expression{constInt(10), constInt(0)},
		}}},
	}}

	_, err := e.RunProgram(root, prog)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDivisionByZero)
	assert.Equal(t, "", out.String())
}

// scenario 7: VISIBLE of a Boolean (e.g. DIAF(file)'s return) prints "WIN\n"
// rather than erroring — spec.md §9 rejects Boolean->String only for the
// explicit cast operator, not for Print.
func TestScenarioPrintBoolean(t *testing.T) {
	var out bytes.Buffer
	e := newEvaluator(&out)
	root := value.New(nil)

	prog := &ast.Program{Statements: []ast.Statement{
		&ast.PrintStmt{Args: []ast.Expression{&ast.Constant{Kind: ast.KindBoolean, Bool: true}}},
	}}

	sig, err := e.RunProgram(root, prog)
	require.NoError(t, err)
	assert.Equal(t, Default, sig.Kind)
	assert.Equal(t, "WIN\n", out.String())
}

func TestBreakInNestedBlockTerminatesInnermostLoop(t *testing.T) {
	var out bytes.Buffer
	e := newEvaluator(&out)
	root := value.New(nil)

	loopVar := ident("I")
	breakIfTruthy := &ast.IfThenElseStmt{Yes: block(&ast.BreakStmt{})}
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.LoopStmt{
			Var:    loopVar,
			Body:   block(&ast.ExprStmt{Expression: constInt(1)}, breakIfTruthy),
			Update: &ast.OpExpr{Kind: ast.OpAdd, Args: []ast.Expression{&ast.IdentifierExpr{Ident: ident("I")}, constInt(1)}},
		},
		&ast.PrintStmt{Args: []ast.Expression{constStr("after")}},
	}}

	sig, err := e.RunProgram(root, prog)
	require.NoError(t, err)
	assert.Equal(t, Default, sig.Kind)
	assert.Equal(t, "after\n", out.String())
}

func TestShortCircuitAndDoesNotEvaluateRHS(t *testing.T) {
	var out bytes.Buffer
	e := newEvaluator(&out)
	root := value.New(nil)

	// A divide-by-zero on the RHS would error if evaluated; AND must
	// short-circuit on a false LHS before reaching it.
	expr := &ast.OpExpr{
		Kind: ast.OpAnd,
		Args: []ast.Expression{
			&ast.Constant{Kind: ast.KindBoolean, Bool: false},
			&ast.OpExpr{Kind: ast.OpDiv, Args: []ast.Expression{constInt(1), constInt(0)}},
		},
	}
	v, err := e.EvalExpr(root, expr)
	require.NoError(t, err)
	assert.False(t, v.Bool())
}

func TestGetScopeIIsCurrentFrame(t *testing.T) {
	e := New(&bytes.Buffer{}, strings.NewReader(""))
	root := value.New(nil)
	got, err := value.GetScope(root, root, ident("I"), e)
	require.NoError(t, err)
	assert.Same(t, root, got)
}

