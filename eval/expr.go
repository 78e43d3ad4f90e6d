package eval

import (
	"fmt"
	"math"
	"strings"

	"github.com/dr8co/lolcode/ast"
	"github.com/dr8co/lolcode/interp"
	"github.com/dr8co/lolcode/value"
)

func (e *Evaluator) evalOp(s *value.Scope, node *ast.OpExpr) (value.Value, error) {
	switch node.Kind {
	case ast.OpAdd, ast.OpSub, ast.OpMult, ast.OpDiv, ast.OpMod, ast.OpMax, ast.OpMin:
		return e.evalArithmetic(s, node)
	case ast.OpAnd, ast.OpOr, ast.OpXor:
		return e.evalBooleanFold(s, node.Kind, node.Args)
	case ast.OpNot:
		return e.evalNot(s, node)
	case ast.OpEq, ast.OpNeq:
		return e.evalEquality(s, node)
	case ast.OpConcat:
		return e.evalConcat(s, node.Args)
	default:
		return value.Value{}, fmt.Errorf("%w: %s", ErrUnknownOperator, node.Kind)
	}
}

func (e *Evaluator) evalArithmetic(s *value.Scope, node *ast.OpExpr) (value.Value, error) {
	if len(node.Args) != 2 {
		return value.Value{}, fmt.Errorf("%w: %s takes two operands", ErrArityMismatch, node.Kind)
	}

	lhs, err := e.evalExpr(s, node.Args[0])
	if err != nil {
		return value.Value{}, err
	}
	a, err := promoteArith(lhs, s)
	value.Drop(lhs)
	if err != nil {
		return value.Value{}, err
	}

	rhs, err := e.evalExpr(s, node.Args[1])
	if err != nil {
		value.Drop(a)
		return value.Value{}, err
	}
	b, err := promoteArith(rhs, s)
	value.Drop(rhs)
	if err != nil {
		value.Drop(a)
		return value.Value{}, err
	}

	result, err := arithBinary(node.Kind, a, b)
	value.Drop(a)
	value.Drop(b)
	return result, err
}

// promoteArith implements spec.md §4.4's argument promotion: Nil/Boolean
// become Integer, String is interpolated and then parsed as Float (if it
// contains '.') or Integer, Integer/Float pass through unchanged.
func promoteArith(v value.Value, scope *value.Scope) (value.Value, error) {
	switch v.Kind() {
	case value.KNil:
		return value.Int(0), nil
	case value.KBoolean:
		if v.Bool() {
			return value.Int(1), nil
		}
		return value.Int(0), nil
	case value.KInteger:
		return value.Int(v.Int()), nil
	case value.KFloat:
		return value.Float(v.Float32()), nil
	case value.KString:
		s, err := interp.Interpolate(v.RawStr(), scope)
		if err != nil {
			return value.Value{}, err
		}
		if strings.Contains(s, ".") {
			f, err := interp.ParseDecimalFloat(s)
			if err != nil {
				return value.Value{}, err
			}
			return value.Float(f), nil
		}
		n, err := interp.ParseDecimalInt(s)
		if err != nil {
			return value.Value{}, err
		}
		return value.Int(n), nil
	default:
		return value.Value{}, fmt.Errorf("%w: cannot use a %s as an arithmetic operand", ErrUnknownOperator, v.Kind())
	}
}

// arithBinary dispatches on the promoted operand kinds' 2x2 table: both
// Integer stays Integer, anything else promotes to Float (spec.md §4.4).
func arithBinary(kind ast.OpKind, a, b value.Value) (value.Value, error) {
	if a.Kind() == value.KInteger && b.Kind() == value.KInteger {
		return arithInt(kind, a.Int(), b.Int())
	}
	return arithFloat(kind, toFloat32(a), toFloat32(b))
}

func toFloat32(v value.Value) float32 {
	if v.Kind() == value.KFloat {
		return v.Float32()
	}
	return float32(v.Int())
}

func arithInt(kind ast.OpKind, a, b int64) (value.Value, error) {
	switch kind {
	case ast.OpAdd:
		return value.Int(a + b), nil
	case ast.OpSub:
		return value.Int(a - b), nil
	case ast.OpMult:
		return value.Int(a * b), nil
	case ast.OpDiv:
		if b == 0 {
			return value.Value{}, ErrDivisionByZero
		}
		return value.Int(a / b), nil
	case ast.OpMod:
		if b == 0 {
			return value.Value{}, ErrDivisionByZero
		}
		return value.Int(a % b), nil
	case ast.OpMax:
		if a > b {
			return value.Int(a), nil
		}
		return value.Int(b), nil
	case ast.OpMin:
		if a < b {
			return value.Int(a), nil
		}
		return value.Int(b), nil
	default:
		return value.Value{}, fmt.Errorf("%w: %s", ErrUnknownOperator, kind)
	}
}

func arithFloat(kind ast.OpKind, a, b float32) (value.Value, error) {
	switch kind {
	case ast.OpAdd:
		return value.Float(a + b), nil
	case ast.OpSub:
		return value.Float(a - b), nil
	case ast.OpMult:
		return value.Float(a * b), nil
	case ast.OpDiv:
		if value.FloatIsZero(b) {
			return value.Value{}, ErrDivisionByZero
		}
		return value.Float(a / b), nil
	case ast.OpMod:
		if value.FloatIsZero(b) {
			return value.Value{}, ErrDivisionByZero
		}
		return value.Float(float32(math.Mod(float64(a), float64(b)))), nil
	case ast.OpMax:
		if a > b {
			return value.Float(a), nil
		}
		return value.Float(b), nil
	case ast.OpMin:
		if a < b {
			return value.Float(a), nil
		}
		return value.Float(b), nil
	default:
		return value.Value{}, fmt.Errorf("%w: %s", ErrUnknownOperator, kind)
	}
}

// asBool implements the "not already Boolean/Integer" rule shared by
// AND/OR/XOR folds, NOT, and guard evaluation: Boolean and Integer read
// directly, everything else goes through an implicit Boolean cast.
func asBool(v value.Value, scope *value.Scope) (bool, error) {
	switch v.Kind() {
	case value.KBoolean:
		return v.Bool(), nil
	case value.KInteger:
		return v.Int() != 0, nil
	default:
		b, err := interp.ImplicitCast(v, ast.KindBoolean, scope)
		if err != nil {
			return false, err
		}
		defer value.Drop(b)
		return b.Bool(), nil
	}
}

func boolOfImpVar(s *value.Scope) (bool, error) {
	v := s.ImpVar()
	defer value.Drop(v)
	return asBool(v, s)
}

func (e *Evaluator) evalBooleanFold(s *value.Scope, kind ast.OpKind, args []ast.Expression) (value.Value, error) {
	if len(args) == 0 {
		return value.Value{}, fmt.Errorf("%w: %s requires at least one operand", ErrArityMismatch, kind)
	}

	first, err := e.evalExpr(s, args[0])
	if err != nil {
		return value.Value{}, err
	}
	acc, err := asBool(first, s)
	value.Drop(first)
	if err != nil {
		return value.Value{}, err
	}

	for _, argExpr := range args[1:] {
		if kind == ast.OpAnd && !acc {
			break
		}
		if kind == ast.OpOr && acc {
			break
		}

		v, err := e.evalExpr(s, argExpr)
		if err != nil {
			return value.Value{}, err
		}
		b, err := asBool(v, s)
		value.Drop(v)
		if err != nil {
			return value.Value{}, err
		}

		switch kind {
		case ast.OpAnd:
			acc = acc && b
		case ast.OpOr:
			acc = acc || b
		case ast.OpXor:
			acc = acc != b
		}
	}

	return value.Bool(acc), nil
}

func (e *Evaluator) evalNot(s *value.Scope, node *ast.OpExpr) (value.Value, error) {
	if len(node.Args) != 1 {
		return value.Value{}, fmt.Errorf("%w: NOT takes one operand", ErrArityMismatch)
	}
	v, err := e.evalExpr(s, node.Args[0])
	if err != nil {
		return value.Value{}, err
	}
	b, err := asBool(v, s)
	value.Drop(v)
	if err != nil {
		return value.Value{}, err
	}
	return value.Bool(!b), nil
}

func (e *Evaluator) evalEquality(s *value.Scope, node *ast.OpExpr) (value.Value, error) {
	if len(node.Args) != 2 {
		return value.Value{}, fmt.Errorf("%w: %s takes two operands", ErrArityMismatch, node.Kind)
	}
	a, err := e.evalExpr(s, node.Args[0])
	if err != nil {
		return value.Value{}, err
	}
	b, err := e.evalExpr(s, node.Args[1])
	if err != nil {
		value.Drop(a)
		return value.Value{}, err
	}
	eq := value.StructEqual(a, b)
	value.Drop(a)
	value.Drop(b)
	if node.Kind == ast.OpNeq {
		eq = !eq
	}
	return value.Bool(eq), nil
}

func (e *Evaluator) evalConcat(s *value.Scope, args []ast.Expression) (value.Value, error) {
	var out strings.Builder
	for _, argExpr := range args {
		v, err := e.evalExpr(s, argExpr)
		if err != nil {
			return value.Value{}, err
		}
		str, err := interp.ImplicitCast(v, ast.KindString, s)
		value.Drop(v)
		if err != nil {
			return value.Value{}, err
		}
		out.WriteString(str.RawStr())
		value.Drop(str)
	}
	return value.Str(out.String()), nil
}

// evalFuncCall implements spec.md §4.4 "Function call": resolve the target's
// owning scope and function value, check arity, build the callee's frame
// with create_with_caller(src, target-scope), bind arguments by name, run
// the body, and interpret its Return Signal.
func (e *Evaluator) evalFuncCall(s *value.Scope, node *ast.FuncCallExpr) (value.Value, error) {
	targetScope, name, err := value.ResolveTerminal(s, s, node.Target, e)
	if err != nil {
		return value.Value{}, err
	}

	fnVal, err := value.GetValue(s, s, node.Target, e)
	if err != nil {
		return value.Value{}, err
	}
	defer value.Drop(fnVal)
	if fnVal.Kind() != value.KFunction {
		return value.Value{}, fmt.Errorf("%w: %s", ErrNotCallable, name)
	}

	def := fnVal.FuncDef()
	if len(def.Args) != len(node.Args) {
		return value.Value{}, fmt.Errorf("%w: %s expects %d argument(s), got %d",
			ErrArityMismatch, def.Name, len(def.Args), len(node.Args))
	}

	frame := value.NewWithCaller(s, targetScope)
	defer frame.Destroy()

	for i, param := range def.Args {
		argVal, err := e.evalExpr(s, node.Args[i])
		if err != nil {
			return value.Value{}, err
		}
		if err := value.CreateValue(frame, frame, param, e); err != nil {
			value.Drop(argVal)
			return value.Value{}, err
		}
		if err := value.UpdateValue(frame, frame, param, argVal, e); err != nil {
			return value.Value{}, err
		}
	}

	sig, err := e.evalStatements(frame, def.Body.Statements)
	if err != nil {
		return value.Value{}, err
	}

	switch sig.Kind {
	case Return:
		return sig.Value, nil
	case Break:
		return value.Nil(), nil
	default:
		result := frame.ImpVar()
		frame.SetImpVar(value.Nil())
		return result, nil
	}
}
