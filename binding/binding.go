// Package binding implements the Binding Bridge (spec.md §4.6): it
// synthesizes function-definition nodes whose body is a single binding
// statement wrapping a host Go callable, and installs the STDIO, SOCKS,
// STRING, and STDLIB libraries as Arrays in the scope named by a CAN HAS
// import statement.
//
// This mirrors the teacher's object.Builtins table + GetBuiltinByName
// lookup (_examples/dr8co-kong/object/builtins.go), generalized from one
// flat global table into per-library Array namespaces.
package binding

import (
	"fmt"
	"strings"

	"github.com/dr8co/lolcode/ast"
	"github.com/dr8co/lolcode/eval"
	"github.com/dr8co/lolcode/interp"
	"github.com/dr8co/lolcode/value"
)

// directOnly is a value.Interpreter stub used only to satisfy CreateValue/
// UpdateValue/GetValueLocal's signature when resolving identifiers built by
// this package, which are always direct (no NameExpr). Its methods are
// provably unreachable, same idiom as interp.localOnlyInterpreter.
type directOnly struct{}

func (directOnly) EvalExpr(*value.Scope, ast.Expression) (value.Value, error) {
	return value.Value{}, fmt.Errorf("binding: identifiers built by this package are never indirect")
}

func (directOnly) ToString(value.Value) (string, error) {
	return "", fmt.Errorf("binding: identifiers built by this package are never indirect")
}

// routine pairs a library function's name and parameter list with the host
// callable that implements it.
type routine struct {
	name string
	args []string
	fn   eval.HostFunc
}

// define synthesizes an ast.FuncDefStmt whose body is a single BindingStmt
// wrapping r.fn, and installs it as a Function value named r.name in scope
// (spec.md §4.6, steps 1-3).
func define(scope *value.Scope, r routine) error {
	args := make([]*ast.Identifier, len(r.args))
	for i, name := range r.args {
		args[i] = &ast.Identifier{Name: name}
	}
	def := &ast.FuncDefStmt{
		Name: r.name,
		Args: args,
		Body: &ast.BlockStatement{Statements: []ast.Statement{
			&ast.BindingStmt{Name: r.name, Host: r.fn},
		}},
	}

	id := &ast.Identifier{Name: r.name}
	if err := value.CreateValue(scope, scope, id, directOnly{}); err != nil {
		return err
	}
	return value.UpdateValue(scope, scope, id, value.Func(def), directOnly{})
}

// installLibrary creates a fresh Array scoped under parent, defines every
// routine inside it, and installs the Array under name in parent (spec.md
// §4.6 point 4: "Libraries themselves are Arrays... installed into the
// top-level scope").
func installLibrary(parent *value.Scope, name string, routines []routine) error {
	lib := value.New(parent)
	for _, r := range routines {
		if err := define(lib, r); err != nil {
			return err
		}
	}

	id := &ast.Identifier{Name: name}
	if err := value.CreateValue(parent, parent, id, directOnly{}); err != nil {
		return err
	}
	return value.UpdateValue(parent, parent, id, value.Arr(lib), directOnly{})
}

// GetArg is the get_arg(scope, name) helper spec.md §4.6 describes: a local
// (non-ancestor) lookup of a bound parameter inside a binding routine's
// frame.
func GetArg(scope *value.Scope, name string) (value.Value, error) {
	return value.GetValueLocal(scope, scope, &ast.Identifier{Name: name}, directOnly{})
}

// Sanitize doubles every ':' in s, spec.md §4.6's rule for byte strings a
// host routine produces and hands back as a program String value, so a
// later cast's interpolation pass is a no-op over host-controlled bytes.
func Sanitize(s string) string {
	return strings.ReplaceAll(s, ":", "::")
}

// argString fetches name from scope and implicit-casts it to String.
func argString(scope *value.Scope, name string) (string, error) {
	v, err := GetArg(scope, name)
	if err != nil {
		return "", err
	}
	defer value.Drop(v)
	s, err := interp.ImplicitCast(v, ast.KindString, scope)
	if err != nil {
		return "", err
	}
	defer value.Drop(s)
	return s.RawStr(), nil
}

// argInt fetches name from scope and implicit-casts it to Integer.
func argInt(scope *value.Scope, name string) (int64, error) {
	v, err := GetArg(scope, name)
	if err != nil {
		return 0, err
	}
	defer value.Drop(v)
	n, err := interp.ImplicitCast(v, ast.KindInteger, scope)
	if err != nil {
		return 0, err
	}
	defer value.Drop(n)
	return n.Int(), nil
}

// argBlob fetches name from scope and returns its Blob payload, or nil if
// the argument isn't a live Blob (covers both a failed-open handle and a
// caller passing something else by mistake).
func argBlob(scope *value.Scope, name string) (any, error) {
	v, err := GetArg(scope, name)
	if err != nil {
		return nil, err
	}
	defer value.Drop(v)
	if v.Kind() != value.KBlob {
		return nil, nil
	}
	return v.Blob(), nil
}

// Load is the eval.Importer this package provides: it dispatches on the
// normative library spelling (spec.md §4.7's "Library CLI strings") and
// installs that library's Array into scope.
func Load(library string, scope *value.Scope) error {
	switch library {
	case "STDIO":
		return installLibrary(scope, "STDIO", stdioRoutines)
	case "SOCKS":
		return installLibrary(scope, "SOCKS", socksRoutines)
	case "STRING":
		return installLibrary(scope, "STRING", stringRoutines)
	case "STDLIB":
		return installLibrary(scope, "STDLIB", stdlibRoutines)
	default:
		return fmt.Errorf("%w: %s", eval.ErrUnknownLibrary, library)
	}
}
