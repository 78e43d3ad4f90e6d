package eval

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/dr8co/lolcode/ast"
	"github.com/dr8co/lolcode/interp"
	"github.com/dr8co/lolcode/value"
)

// HostFunc is the signature a Binding Bridge routine must implement
// (spec.md §4.6): read its arguments out of scope by name, do host work,
// and report its outcome as a Signal.
type HostFunc func(scope *value.Scope) (Signal, error)

// Importer installs a named library's bindings into scope (spec.md §4.6
// "Import"). Supplied by package binding at wiring time; eval never imports
// binding, to keep the dependency arrow one-directional.
type Importer func(library string, scope *value.Scope) error

// Evaluator is the tree-walking interpreter. Stdout and Stdin have no
// defaults, so the zero value is not usable until both are set (New sets
// them); set Importer before running any program with a CAN HAS statement.
type Evaluator struct {
	Stdout   io.Writer
	Stdin    *bufio.Reader
	Importer Importer

	// lastScope records the Scope most recently passed to EvalExpr, so
	// ToString (which the value.Interpreter interface declares without a
	// Scope parameter) can still interpolate :{VAR} references in an
	// indirect identifier's stringified name.
	lastScope *value.Scope
}

// New returns an Evaluator with no importer configured; callers set the
// Importer field before evaluating a program that imports libraries.
func New(stdout io.Writer, stdin io.Reader) *Evaluator {
	return &Evaluator{Stdout: stdout, Stdin: bufio.NewReader(stdin)}
}

// EvalExpr implements value.Interpreter, letting package value resolve
// indirect identifiers without importing eval.
func (e *Evaluator) EvalExpr(s *value.Scope, expr ast.Expression) (value.Value, error) {
	e.lastScope = s
	return e.evalExpr(s, expr)
}

// ToString implements value.Interpreter's other half: an explicit cast to
// String using the scope last seen by EvalExpr.
func (e *Evaluator) ToString(v value.Value) (string, error) {
	scope := e.lastScope
	if scope == nil {
		scope = value.New(nil)
	}
	s, err := interp.ExplicitCast(v, ast.KindString, scope)
	if err != nil {
		return "", err
	}
	defer value.Drop(s)
	return s.RawStr(), nil
}

// RunProgram interprets prog's statements in root, left to right, returning
// the final Signal and the first error encountered (spec.md §2 "main
// entry").
func (e *Evaluator) RunProgram(root *value.Scope, prog *ast.Program) (Signal, error) {
	return e.evalStatements(root, prog.Statements)
}

func (e *Evaluator) evalExpr(s *value.Scope, expr ast.Expression) (value.Value, error) {
	switch node := expr.(type) {
	case *ast.ImpVarExpr:
		return s.ImpVar(), nil
	case *ast.Constant:
		return e.evalConstant(node)
	case *ast.IdentifierExpr:
		return value.GetValue(s, s, node.Ident, e)
	case *ast.CastExpr:
		v, err := e.evalExpr(s, node.Value)
		if err != nil {
			return value.Value{}, err
		}
		defer value.Drop(v)
		return interp.ExplicitCast(v, node.Target, s)
	case *ast.OpExpr:
		return e.evalOp(s, node)
	case *ast.FuncCallExpr:
		return e.evalFuncCall(s, node)
	case *ast.SystemCommandExpr:
		return e.evalSystemCommand(s, node)
	default:
		return value.Value{}, fmt.Errorf("%w: %T", ErrUnknownExpression, expr)
	}
}

func (e *Evaluator) evalConstant(c *ast.Constant) (value.Value, error) {
	switch c.Kind {
	case ast.KindNil:
		return value.Nil(), nil
	case ast.KindBoolean:
		return value.Bool(c.Bool), nil
	case ast.KindInteger:
		return value.Int(c.Int), nil
	case ast.KindFloat:
		return value.Float(c.Float), nil
	case ast.KindString:
		return value.Str(c.Str), nil
	default:
		return value.Value{}, fmt.Errorf("%w: constant kind %s", ErrUnknownExpression, c.Kind)
	}
}

func (e *Evaluator) evalSystemCommand(s *value.Scope, node *ast.SystemCommandExpr) (value.Value, error) {
	cmdVal, err := e.evalExpr(s, node.Command)
	if err != nil {
		return value.Value{}, err
	}
	defer value.Drop(cmdVal)
	cmdStr, err := interp.ImplicitCast(cmdVal, ast.KindString, s)
	if err != nil {
		return value.Value{}, err
	}
	defer value.Drop(cmdStr)

	out, err := exec.Command("sh", "-c", cmdStr.RawStr()).Output()
	if err != nil {
		return value.Value{}, fmt.Errorf("system command failed: %w", err)
	}
	return value.Str(strings.TrimRight(string(out), "\n")), nil
}
