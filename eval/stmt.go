package eval

import (
	"fmt"
	"strings"

	"github.com/dr8co/lolcode/ast"
	"github.com/dr8co/lolcode/interp"
	"github.com/dr8co/lolcode/value"
)

// evalStatements runs stmts in order in s, stopping as soon as one yields a
// non-Default Signal (spec.md §5 "Ordering": each statement fully completes,
// including signal propagation, before the next begins).
func (e *Evaluator) evalStatements(s *value.Scope, stmts []ast.Statement) (Signal, error) {
	sig := DefaultSignal()
	for _, stmt := range stmts {
		var err error
		sig, err = e.execStatement(s, stmt)
		if err != nil {
			return Signal{}, fmt.Errorf("line %d: %w", stmt.Line(), err)
		}
		if sig.Kind != Default {
			return sig, nil
		}
	}
	return sig, nil
}

// evalBlockNewScope runs block in a fresh child of parent, releasing it on
// exit (spec.md §3 "Lifecycle": "Nested block execution creates a child
// Scope, executes, and releases it on exit").
func (e *Evaluator) evalBlockNewScope(parent *value.Scope, block *ast.BlockStatement) (Signal, error) {
	child := value.New(parent)
	sig, err := e.evalStatements(child, block.Statements)
	child.Destroy()
	return sig, err
}

func (e *Evaluator) execStatement(s *value.Scope, stmt ast.Statement) (Signal, error) {
	switch node := stmt.(type) {
	case *ast.DeclarationStmt:
		return e.execDeclaration(s, node)
	case *ast.AssignmentStmt:
		return e.execAssignment(s, node)
	case *ast.CastStmt:
		return e.execCast(s, node)
	case *ast.PrintStmt:
		return e.execPrint(s, node)
	case *ast.InputStmt:
		return e.execInput(s, node)
	case *ast.IfThenElseStmt:
		return e.execIfThenElse(s, node)
	case *ast.SwitchStmt:
		return e.execSwitch(s, node)
	case *ast.BreakStmt:
		return BreakSignal(), nil
	case *ast.ReturnStmt:
		return e.execReturn(s, node)
	case *ast.LoopStmt:
		return e.execLoop(s, node)
	case *ast.DeallocationStmt:
		if err := value.UpdateValue(s, s, node.Target, value.Nil(), e); err != nil {
			return Signal{}, err
		}
		return DefaultSignal(), nil
	case *ast.FuncDefStmt:
		return e.execFuncDef(s, node)
	case *ast.ExprStmt:
		return e.execExprStmt(s, node)
	case *ast.AltArrayDefStmt:
		return e.execAltArrayDef(s, node)
	case *ast.BindingStmt:
		return e.execBinding(s, node)
	case *ast.ImportStmt:
		return e.execImport(s, node)
	case *ast.BlockStatement:
		return e.evalBlockNewScope(s, node)
	default:
		return Signal{}, fmt.Errorf("%w: %T", ErrUnknownStatement, stmt)
	}
}

func (e *Evaluator) execDeclaration(s *value.Scope, node *ast.DeclarationStmt) (Signal, error) {
	if err := value.CreateValue(s, s, node.Target, e); err != nil {
		return Signal{}, err
	}

	var initVal value.Value
	switch {
	case node.Init != nil:
		v, err := e.evalExpr(s, node.Init)
		if err != nil {
			return Signal{}, err
		}
		initVal = v
	case node.Type != "":
		v, err := zeroValue(node.Type, s)
		if err != nil {
			return Signal{}, err
		}
		initVal = v
	case node.Parent != nil:
		parentScope, err := value.GetScope(s, s, node.Parent, e)
		if err != nil {
			return Signal{}, err
		}
		initVal = value.Arr(value.New(parentScope))
	default:
		initVal = value.Nil()
	}

	if err := value.UpdateValue(s, s, node.Target, initVal, e); err != nil {
		value.Drop(initVal)
		return Signal{}, err
	}
	return DefaultSignal(), nil
}

// zeroValue is spec.md §4.5's declared-type zero value: a fresh Array is
// parented to the declaration scope itself.
func zeroValue(kind ast.ValueKind, declScope *value.Scope) (value.Value, error) {
	switch kind {
	case ast.KindNil:
		return value.Nil(), nil
	case ast.KindBoolean:
		return value.Bool(false), nil
	case ast.KindInteger:
		return value.Int(0), nil
	case ast.KindFloat:
		return value.Float(0), nil
	case ast.KindString:
		return value.Str(""), nil
	case ast.KindArray:
		return value.Arr(value.New(declScope)), nil
	default:
		return value.Value{}, fmt.Errorf("%w: declared type %s", ErrUnknownStatement, kind)
	}
}

func (e *Evaluator) execAssignment(s *value.Scope, node *ast.AssignmentStmt) (Signal, error) {
	v, err := e.evalExpr(s, node.Value)
	if err != nil {
		return Signal{}, err
	}
	if err := value.UpdateValue(s, s, node.Target, v, e); err != nil {
		value.Drop(v)
		return Signal{}, err
	}
	return DefaultSignal(), nil
}

func (e *Evaluator) execCast(s *value.Scope, node *ast.CastStmt) (Signal, error) {
	if node.Type == ast.KindArray {
		return Signal{}, ErrArrayCastRejected
	}
	v, err := value.GetValue(s, s, node.Target, e)
	if err != nil {
		return Signal{}, err
	}
	casted, err := interp.ExplicitCast(v, node.Type, s)
	value.Drop(v)
	if err != nil {
		return Signal{}, err
	}
	if err := value.UpdateValue(s, s, node.Target, casted, e); err != nil {
		value.Drop(casted)
		return Signal{}, err
	}
	return DefaultSignal(), nil
}

func (e *Evaluator) execPrint(s *value.Scope, node *ast.PrintStmt) (Signal, error) {
	var out strings.Builder
	for _, argExpr := range node.Args {
		v, err := e.evalExpr(s, argExpr)
		if err != nil {
			return Signal{}, err
		}
		str, err := printString(v, s)
		value.Drop(v)
		if err != nil {
			return Signal{}, err
		}
		out.WriteString(str)
	}
	if !node.NoNewline {
		out.WriteByte('\n')
	}
	fmt.Fprint(e.Stdout, out.String())
	return DefaultSignal(), nil
}

// printString renders v for VISIBLE. spec.md §9 rejects Boolean->String only
// for the explicit cast operator (MAEK/IS NOW A); VISIBLE still must render
// a TROOF as WIN/FAIL (spec.md §8 scenario 7), so Boolean is special-cased
// here rather than routed through interp.ImplicitCast's rejecting cast.
func printString(v value.Value, s *value.Scope) (string, error) {
	if v.Kind() == value.KBoolean {
		return v.Inspect(), nil
	}
	str, err := interp.ImplicitCast(v, ast.KindString, s)
	if err != nil {
		return "", err
	}
	defer value.Drop(str)
	return str.RawStr(), nil
}

// execInput implements GIMMEH: read bytes until the first '\n', '\r', or
// EOF; the terminator itself is discarded, not stored (spec.md §4.5, Open
// Question decision in DESIGN.md).
func (e *Evaluator) execInput(s *value.Scope, node *ast.InputStmt) (Signal, error) {
	var sb strings.Builder
	for {
		b, err := e.Stdin.ReadByte()
		if err != nil {
			break
		}
		if b == '\n' || b == '\r' {
			break
		}
		sb.WriteByte(b)
	}
	if err := value.UpdateValue(s, s, node.Target, value.Str(sb.String()), e); err != nil {
		return Signal{}, err
	}
	return DefaultSignal(), nil
}

func (e *Evaluator) execIfThenElse(s *value.Scope, node *ast.IfThenElseStmt) (Signal, error) {
	cond, err := boolOfImpVar(s)
	if err != nil {
		return Signal{}, err
	}
	if cond {
		return e.evalBlockNewScope(s, node.Yes)
	}

	for i, guard := range node.Guards {
		gv, err := e.evalExpr(s, guard)
		if err != nil {
			return Signal{}, err
		}
		gb, err := asBool(gv, s)
		value.Drop(gv)
		if err != nil {
			return Signal{}, err
		}
		if gb {
			return e.evalBlockNewScope(s, node.Blocks[i])
		}
	}

	if node.No != nil {
		return e.evalBlockNewScope(s, node.No)
	}
	return DefaultSignal(), nil
}

// execSwitch implements spec.md §4.5 "Switch": fall-through continues past
// the matched guard's block, through later guard blocks, and into Default
// if reached, stopping only at the first Break (spec.md §8 scenario 5).
func (e *Evaluator) execSwitch(s *value.Scope, node *ast.SwitchStmt) (Signal, error) {
	impv := s.ImpVar()
	defer value.Drop(impv)

	matchIdx := -1
	for i, guard := range node.Guards {
		gv, err := e.evalExpr(s, guard)
		if err != nil {
			return Signal{}, err
		}
		eq := value.StructEqual(impv, gv)
		value.Drop(gv)
		if eq {
			matchIdx = i
			break
		}
	}

	if matchIdx < 0 {
		if node.Default != nil {
			return e.evalBlockNewScope(s, node.Default)
		}
		return DefaultSignal(), nil
	}

	for i := matchIdx; i < len(node.Blocks); i++ {
		sig, err := e.evalBlockNewScope(s, node.Blocks[i])
		if err != nil {
			return Signal{}, err
		}
		if sig.Kind == Break {
			return DefaultSignal(), nil
		}
		if sig.Kind == Return {
			return sig, nil
		}
	}
	if node.Default != nil {
		return e.evalBlockNewScope(s, node.Default)
	}
	return DefaultSignal(), nil
}

func (e *Evaluator) execReturn(s *value.Scope, node *ast.ReturnStmt) (Signal, error) {
	v, err := e.evalExpr(s, node.Value)
	if err != nil {
		return Signal{}, err
	}
	return ReturnSignal(v), nil
}

// execLoop implements spec.md §4.5 "Loop", including the ADD/SUB update
// shortcut that mutates the loop variable in place without ever evaluating
// Update's subtree (DESIGN.md Open Question decision).
func (e *Evaluator) execLoop(s *value.Scope, node *ast.LoopStmt) (Signal, error) {
	child := value.New(s)
	defer child.Destroy()

	if node.Var != nil {
		if err := value.CreateValue(child, child, node.Var, e); err != nil {
			return Signal{}, err
		}
		if err := value.UpdateValue(child, child, node.Var, value.Int(0), e); err != nil {
			return Signal{}, err
		}
	}

	for {
		if node.Guard != nil {
			gv, err := e.evalExpr(child, node.Guard)
			if err != nil {
				return Signal{}, err
			}
			cond, err := asBool(gv, child)
			value.Drop(gv)
			if err != nil {
				return Signal{}, err
			}
			if node.GuardIsUntil {
				cond = !cond
			}
			if !cond {
				break
			}
		}

		sig, err := e.evalBlockNewScope(child, node.Body)
		if err != nil {
			return Signal{}, err
		}
		if sig.Kind == Break {
			break
		}
		if sig.Kind == Return {
			return sig, nil
		}

		if node.Update != nil {
			if node.UpdateIsAddSub {
				cur, err := value.GetValue(child, child, node.Var, e)
				if err != nil {
					return Signal{}, err
				}
				next := value.Int(cur.Int() + node.UpdateDelta)
				value.Drop(cur)
				if err := value.UpdateValue(child, child, node.Var, next, e); err != nil {
					return Signal{}, err
				}
			} else {
				uv, err := e.evalExpr(child, node.Update)
				if err != nil {
					return Signal{}, err
				}
				if err := value.UpdateValue(child, child, node.Var, uv, e); err != nil {
					return Signal{}, err
				}
			}
		}
	}

	return DefaultSignal(), nil
}

func (e *Evaluator) execFuncDef(s *value.Scope, node *ast.FuncDefStmt) (Signal, error) {
	targetScope := s
	if node.Scope != nil {
		ts, err := value.GetScope(s, s, node.Scope, e)
		if err != nil {
			return Signal{}, err
		}
		targetScope = ts
	}

	nameID := &ast.Identifier{Token: node.Token, Name: node.Name}
	if err := value.CreateValue(targetScope, targetScope, nameID, e); err != nil {
		return Signal{}, err
	}
	if err := value.UpdateValue(targetScope, targetScope, nameID, value.Func(node), e); err != nil {
		return Signal{}, err
	}
	return DefaultSignal(), nil
}

func (e *Evaluator) execExprStmt(s *value.Scope, node *ast.ExprStmt) (Signal, error) {
	v, err := e.evalExpr(s, node.Expression)
	if err != nil {
		return Signal{}, err
	}
	s.SetImpVar(v)
	return DefaultSignal(), nil
}

// execAltArrayDef implements spec.md §4.5 "Alt-array definition": the body
// runs inside the new Array's own inner scope, not the declaring scope.
func (e *Evaluator) execAltArrayDef(s *value.Scope, node *ast.AltArrayDefStmt) (Signal, error) {
	parentScope := s
	if node.Parent != nil {
		pv, err := e.evalExpr(s, node.Parent)
		if err != nil {
			return Signal{}, err
		}
		defer value.Drop(pv)
		if pv.Kind() != value.KArray {
			return Signal{}, value.ErrNotArray
		}
		parentScope = pv.Array()
	}

	inner := value.New(parentScope)
	sig, err := e.evalStatements(inner, node.Body.Statements)
	if err != nil {
		return Signal{}, err
	}
	if sig.Kind != Default {
		return sig, nil
	}

	nameID := &ast.Identifier{Token: node.Token, Name: node.Name}
	if err := value.CreateValue(s, s, nameID, e); err != nil {
		return Signal{}, err
	}
	if err := value.UpdateValue(s, s, nameID, value.Arr(inner), e); err != nil {
		return Signal{}, err
	}
	return DefaultSignal(), nil
}

func (e *Evaluator) execBinding(s *value.Scope, node *ast.BindingStmt) (Signal, error) {
	host, ok := node.Host.(HostFunc)
	if !ok {
		return Signal{}, ErrBindingHostInvalid
	}
	return host(s)
}

func (e *Evaluator) execImport(s *value.Scope, node *ast.ImportStmt) (Signal, error) {
	if e.Importer == nil {
		return Signal{}, ErrNoImporter
	}
	if err := e.Importer(node.Library, s); err != nil {
		return Signal{}, err
	}
	return DefaultSignal(), nil
}
