package parser

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dr8co/lolcode/ast"
	"github.com/dr8co/lolcode/eval"
	"github.com/dr8co/lolcode/lexer"
	"github.com/dr8co/lolcode/value"
)

// parse runs the lexer+parser over src and fails the test if any parse
// errors were recorded.
func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := New(lexer.New(src))
	prog := p.ParseProgram()
	require.Empty(t, p.Errors(), "parse errors: %v", p.Errors())
	return prog
}

// run lexes, parses, and evaluates src, returning the final implicit
// variable (IT) of the root scope.
func run(t *testing.T, src string) value.Value {
	t.Helper()
	prog := parse(t, src)
	out := &bytes.Buffer{}
	e := eval.New(out, strings.NewReader(""))
	root := value.New(nil)
	_, err := e.RunProgram(root, prog)
	require.NoError(t, err)
	return root.ImpVar()
}

func TestParsesHaiKthxbaiEnvelope(t *testing.T) {
	prog := parse(t, "HAI 1.2\nVISIBLE \"hi\"\nKTHXBAI\n")
	require.Len(t, prog.Statements, 1)
	_, ok := prog.Statements[0].(*ast.PrintStmt)
	assert.True(t, ok)
}

func TestParsesBareStatementsWithoutEnvelope(t *testing.T) {
	prog := parse(t, `VISIBLE "hi"`)
	require.Len(t, prog.Statements, 1)
}

func TestDeclarationWithInit(t *testing.T) {
	prog := parse(t, "I HAS A X ITZ 5\n")
	decl := prog.Statements[0].(*ast.DeclarationStmt)
	assert.Equal(t, "X", decl.Target.Name)
	require.NotNil(t, decl.Init)
	assert.Equal(t, ast.KindNil, decl.Type)
	assert.Nil(t, decl.Parent)
}

func TestDeclarationWithType(t *testing.T) {
	prog := parse(t, "I HAS A X TEH NUMBR\n")
	decl := prog.Statements[0].(*ast.DeclarationStmt)
	assert.Equal(t, ast.KindInteger, decl.Type)
	assert.Nil(t, decl.Init)
}

func TestDeclarationWithBukkitViaItzA(t *testing.T) {
	prog := parse(t, "I HAS A X ITZ A BUKKIT\n")
	decl := prog.Statements[0].(*ast.DeclarationStmt)
	assert.Equal(t, ast.KindArray, decl.Type)
	assert.Nil(t, decl.Init)
}

func TestDeclarationWithParent(t *testing.T) {
	prog := parse(t, "I HAS A X LIEK PARENT\n")
	decl := prog.Statements[0].(*ast.DeclarationStmt)
	require.NotNil(t, decl.Parent)
	assert.Equal(t, "PARENT", decl.Parent.Name)
}

func TestAssignmentOfNoobParsesAsDeallocation(t *testing.T) {
	prog := parse(t, "X R NOOB\n")
	_, ok := prog.Statements[0].(*ast.DeallocationStmt)
	assert.True(t, ok, "expected a DeallocationStmt, got %T", prog.Statements[0])
}

func TestAssignmentOfOtherValueParsesAsAssignment(t *testing.T) {
	prog := parse(t, "X R 5\n")
	_, ok := prog.Statements[0].(*ast.AssignmentStmt)
	assert.True(t, ok, "expected an AssignmentStmt, got %T", prog.Statements[0])
}

func TestDottedIdentifierBuildsSlotChain(t *testing.T) {
	prog := parse(t, "X R BOX.FIELD\n")
	asg := prog.Statements[0].(*ast.AssignmentStmt)
	ie := asg.Value.(*ast.IdentifierExpr)
	assert.Equal(t, "BOX", ie.Ident.Name)
	require.NotNil(t, ie.Ident.Slot)
	assert.Equal(t, "FIELD", ie.Ident.Slot.Name)
}

func TestSumOfExpression(t *testing.T) {
	got := run(t, "HAI\nI HAS A X ITZ 0\nX R SUM OF 2 AN 3\nVISIBLE X\nX\nKTHXBAI\n")
	assert.Equal(t, int64(5), got.Int())
}

func TestBothSaemIsEquality(t *testing.T) {
	prog := parse(t, "X R BOTH SAEM 1 AN 1\n")
	asg := prog.Statements[0].(*ast.AssignmentStmt)
	op := asg.Value.(*ast.OpExpr)
	assert.Equal(t, ast.OpEq, op.Kind)
}

func TestBothOfIsAnd(t *testing.T) {
	prog := parse(t, "X R BOTH OF WIN AN FAIL\n")
	asg := prog.Statements[0].(*ast.AssignmentStmt)
	op := asg.Value.(*ast.OpExpr)
	assert.Equal(t, ast.OpAnd, op.Kind)
}

func TestDiffrintIsInequality(t *testing.T) {
	prog := parse(t, "X R DIFFRINT 1 AN 2\n")
	asg := prog.Statements[0].(*ast.AssignmentStmt)
	op := asg.Value.(*ast.OpExpr)
	assert.Equal(t, ast.OpNeq, op.Kind)
}

func TestSmooshIsVariadicConcat(t *testing.T) {
	prog := parse(t, `X R SMOOSH "a" AN "b" AN "c" MKAY` + "\n")
	asg := prog.Statements[0].(*ast.AssignmentStmt)
	op := asg.Value.(*ast.OpExpr)
	assert.Equal(t, ast.OpConcat, op.Kind)
	assert.Len(t, op.Args, 3)
}

func TestIfThenElse(t *testing.T) {
	src := "HAI\n" +
		"I HAS A X ITZ WIN\n" +
		"X\n" +
		"O RLY?\n" +
		"YA RLY\n" +
		"VISIBLE \"yes\"\n" +
		"NO WAI\n" +
		"VISIBLE \"no\"\n" +
		"OIC\n" +
		"KTHXBAI\n"
	prog := parse(t, src)
	require.Len(t, prog.Statements, 3)
	ite := prog.Statements[2].(*ast.IfThenElseStmt)
	require.Len(t, ite.Yes.Statements, 1)
	require.NotNil(t, ite.No)
}

func TestLoopWithUppinAndTil(t *testing.T) {
	src := "HAI\n" +
		"I HAS A IDX ITZ 0\n" +
		"IM IN YR LOOP UPPIN YR IDX TIL BOTH SAEM IDX AN 3\n" +
		"VISIBLE IDX\n" +
		"IM OUTTA YR LOOP\n" +
		"KTHXBAI\n"
	prog := parse(t, src)
	loop := prog.Statements[1].(*ast.LoopStmt)
	assert.Equal(t, "LOOP", loop.Label)
	require.NotNil(t, loop.Var)
	assert.True(t, loop.UpdateIsAddSub)
	assert.Equal(t, int64(1), loop.UpdateDelta)
	assert.True(t, loop.GuardIsUntil)
}

func TestFuncDefAndCall(t *testing.T) {
	src := "HAI\n" +
		"HOW IZ I ADDER YR X AN YR Y\n" +
		"FOUND YR SUM OF X AN Y\n" +
		"IF U SAY SO\n" +
		"I IZ ADDER YR 2 AN YR 3 MKAY\n" +
		"KTHXBAI\n"
	got := run(t, src)
	assert.Equal(t, int64(5), got.Int())
}

func TestFuncCallWithNoArgs(t *testing.T) {
	prog := parse(t, "I IZ GREET MKAY\n")
	call := prog.Statements[0].(*ast.ExprStmt).Expression.(*ast.FuncCallExpr)
	assert.Equal(t, "GREET", call.Target.Name)
	assert.Empty(t, call.Args)
}

func TestSwitchStatement(t *testing.T) {
	src := "HAI\n" +
		"I HAS A X ITZ 2\n" +
		"X\n" +
		"WTF?\n" +
		"OMG 1\n" +
		"VISIBLE \"one\"\n" +
		"OMG 2\n" +
		"VISIBLE \"two\"\n" +
		"OMGWTF\n" +
		"VISIBLE \"other\"\n" +
		"OIC\n" +
		"KTHXBAI\n"
	prog := parse(t, src)
	sw := prog.Statements[2].(*ast.SwitchStmt)
	require.Len(t, sw.Guards, 2)
	require.NotNil(t, sw.Default)
}

func TestAltArrayDefWithParent(t *testing.T) {
	src := "HAI\n" +
		"O HAI IM POINT IM LIEK ORIGIN\n" +
		"I HAS A X ITZ 0\n" +
		"KTHX\n" +
		"KTHXBAI\n"
	prog := parse(t, src)
	ad := prog.Statements[0].(*ast.AltArrayDefStmt)
	assert.Equal(t, "POINT", ad.Name)
	require.NotNil(t, ad.Parent)
	require.Len(t, ad.Body.Statements, 1)
}

func TestImportStatement(t *testing.T) {
	prog := parse(t, "CAN HAS STDIO?\n")
	imp := prog.Statements[0].(*ast.ImportStmt)
	assert.Equal(t, "STDIO", imp.Library)
}

func TestCastStatementAndExpr(t *testing.T) {
	prog := parse(t, "X IS NOW A NUMBR\n")
	cs := prog.Statements[0].(*ast.CastStmt)
	assert.Equal(t, ast.KindInteger, cs.Type)

	prog = parse(t, "X R MAEK Y A YARN\n")
	asg := prog.Statements[0].(*ast.AssignmentStmt)
	ce := asg.Value.(*ast.CastExpr)
	assert.Equal(t, ast.KindString, ce.Target)
}

func TestSystemCommandExpression(t *testing.T) {
	prog := parse(t, `I CAN HAS SHELL "echo hi"?` + "\n")
	sc := prog.Statements[0].(*ast.ExprStmt).Expression.(*ast.SystemCommandExpr)
	require.NotNil(t, sc.Command)
}

func TestPrintWithBangSuppressesNewline(t *testing.T) {
	prog := parse(t, `VISIBLE "no newline"!` + "\n")
	ps := prog.Statements[0].(*ast.PrintStmt)
	assert.True(t, ps.NoNewline)
}

func TestCommaSeparatesStatementsOnOneLine(t *testing.T) {
	prog := parse(t, `VISIBLE "a", VISIBLE "b"` + "\n")
	require.Len(t, prog.Statements, 2)
}
