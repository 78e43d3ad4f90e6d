package value

import (
	"errors"

	"github.com/dr8co/lolcode/ast"
)

// Sentinel errors for the name-resolution search described in spec.md §4.2.
var (
	ErrVariableNotFound     = errors.New("variable not found")
	ErrVariableNotStorable  = errors.New("variable not storable")
	ErrRedefinition         = errors.New("redefinition of local variable")
	ErrNotArray             = errors.New("value is not a BUKKIT")
	ErrUnknownScopeWord     = errors.New("unknown scope reference")
)

// Interpreter is the narrow callback surface Scope needs to resolve
// indirect identifiers: evaluating the identifier's sub-expression and
// explicit-casting the result to a string. It is implemented by package
// eval's Evaluator; declaring it here (rather than importing eval) avoids
// an eval<->value import cycle, since eval necessarily imports value for
// the Value and Scope types themselves.
type Interpreter interface {
	EvalExpr(s *Scope, e ast.Expression) (Value, error)
	ToString(v Value) (string, error)
}

// Scope is a nested identifier->Value environment with a lexical parent and
// a dynamic caller chain, plus a per-scope implicit variable (spec.md §3).
type Scope struct {
	parent *Scope
	caller *Scope
	impvar Value

	names  []string
	values []Value
}

// New creates an empty scope whose caller is inherited from parent (nil if
// parent is nil or itself has no caller).
func New(parent *Scope) *Scope {
	var caller *Scope
	if parent != nil {
		caller = parent.caller
	}
	return &Scope{parent: parent, caller: caller, impvar: Nil()}
}

// NewWithCaller creates an empty scope with an explicit caller override,
// used when constructing a function-call frame (spec.md §4.2 "Caller chain").
func NewWithCaller(parent, caller *Scope) *Scope {
	return &Scope{parent: parent, caller: caller, impvar: Nil()}
}

// Parent returns s's lexical parent, or nil for a root scope.
func (s *Scope) Parent() *Scope { return s.parent }

// Caller returns s's dynamic caller, or nil if none was ever set.
func (s *Scope) Caller() *Scope { return s.caller }

// ImpVar returns a shared handle to the implicit variable.
func (s *Scope) ImpVar() Value { return Copy(s.impvar) }

// SetImpVar replaces the implicit variable, dropping the previous one. It
// never stores Nil improperly: callers that want to clear IT pass Nil()
// explicitly (spec.md Invariant 4: the implicit variable is never null —
// meaning never an invalid handle, not that it can't hold the Nil value).
func (s *Scope) SetImpVar(v Value) {
	Drop(s.impvar)
	s.impvar = v
}

// Destroy drops s's implicit variable and every value s directly owns, for
// releasing a block/loop/function-call scope on exit (spec.md §3
// "Lifecycle": "executes, and releases it on exit"). It does not touch s's
// parent or caller.
func (s *Scope) Destroy() {
	Drop(s.impvar)
	for _, v := range s.values {
		Drop(v)
	}
	s.names = nil
	s.values = nil
}

// localIndex returns the index of name among s's own bindings, or -1.
func (s *Scope) localIndex(name string) int {
	for i, n := range s.names {
		if n == name {
			return i
		}
	}
	return -1
}

// ResolveName resolves id to a name string: direct identifiers copy their
// literal name; indirect identifiers evaluate NameExpr under src and
// explicit-cast the result to String (spec.md §4.2 "resolve_name").
func ResolveName(id *ast.Identifier, src *Scope, in Interpreter) (string, error) {
	if !id.Indirect {
		return id.Name, nil
	}
	v, err := in.EvalExpr(src, id.NameExpr)
	if err != nil {
		return "", err
	}
	defer Drop(v)
	return in.ToString(v)
}

// ResolveTerminal follows target's slot chain: at each step it resolves the
// current identifier's name under src, looks the name up (walking parents)
// in dest, requires an Array result, and descends into that Array's Scope
// for the next slot. It returns the scope that should contain the terminal
// binding and the terminal binding's resolved name (spec.md §4.2).
func ResolveTerminal(src, dest *Scope, target *ast.Identifier, in Interpreter) (*Scope, string, error) {
	cur := target
	curDest := dest
	for {
		name, err := ResolveName(cur, src, in)
		if err != nil {
			return nil, "", err
		}
		if cur.Slot == nil {
			return curDest, name, nil
		}
		v, err := lookupChain(curDest, name)
		if err != nil {
			return nil, "", err
		}
		if v.Kind() != KArray {
			return nil, "", ErrNotArray
		}
		curDest = v.Array()
		cur = cur.Slot
	}
}

// lookupChain walks s and its ancestors for the first binding named name.
func lookupChain(s *Scope, name string) (Value, error) {
	for cur := s; cur != nil; cur = cur.parent {
		if i := cur.localIndex(name); i >= 0 {
			return cur.values[i], nil
		}
	}
	return Value{}, ErrVariableNotFound
}

// CreateValue appends a new (name, Nil) binding in target's resolved
// terminal scope. It fails if that scope already has a same-named local
// binding (spec.md Invariant 4).
func CreateValue(src, dest *Scope, target *ast.Identifier, in Interpreter) error {
	parent, name, err := ResolveTerminal(src, dest, target, in)
	if err != nil {
		return err
	}
	if parent.localIndex(name) >= 0 {
		return ErrRedefinition
	}
	parent.names = append(parent.names, name)
	parent.values = append(parent.values, Nil())
	return nil
}

// UpdateValue resolves target's terminal scope, then walks it and its
// ancestors for the first matching name, replacing that binding's value
// (dropping the old one). It fails with ErrVariableNotStorable if no
// ancestor has the binding.
func UpdateValue(src, dest *Scope, target *ast.Identifier, val Value, in Interpreter) error {
	parent, name, err := ResolveTerminal(src, dest, target, in)
	if err != nil {
		return err
	}
	for cur := parent; cur != nil; cur = cur.parent {
		if i := cur.localIndex(name); i >= 0 {
			Drop(cur.values[i])
			cur.values[i] = val
			return nil
		}
	}
	return ErrVariableNotStorable
}

// GetValue resolves target's terminal scope, walks it and its ancestors for
// the first matching name, and returns a shared copy of its value.
func GetValue(src, dest *Scope, target *ast.Identifier, in Interpreter) (Value, error) {
	parent, name, err := ResolveTerminal(src, dest, target, in)
	if err != nil {
		return Value{}, err
	}
	v, err := lookupChain(parent, name)
	if err != nil {
		return Value{}, err
	}
	return Copy(v), nil
}

// GetValueLocal is GetValue restricted to the terminal scope's own bindings
// (no ancestor walk).
func GetValueLocal(src, dest *Scope, target *ast.Identifier, in Interpreter) (Value, error) {
	parent, name, err := ResolveTerminal(src, dest, target, in)
	if err != nil {
		return Value{}, err
	}
	if i := parent.localIndex(name); i >= 0 {
		return Copy(parent.values[i]), nil
	}
	return Value{}, ErrVariableNotFound
}

// outermostCaller walks s's caller chain to its end (spec.md Invariant 5:
// "ME resolves by walking the caller chain upward to the outermost caller").
func outermostCaller(s *Scope) *Scope {
	cur := s
	for cur.caller != nil {
		cur = cur.caller
	}
	return cur
}

// isBareWord reports whether target is a direct, slot-less identifier equal
// to word — used to special-case I/ME before any lookup is attempted.
func isBareWord(target *ast.Identifier, word string) bool {
	return !target.Indirect && target.Slot == nil && target.Name == word
}

// GetScope resolves target to a Scope: "I" yields src itself, "ME" walks
// the caller chain to its outermost link, anything else is looked up as a
// value (walking ancestors) and must be an Array (spec.md §4.2 "get_scope").
func GetScope(src, dest *Scope, target *ast.Identifier, in Interpreter) (*Scope, error) {
	if isBareWord(target, "I") {
		return src, nil
	}
	if isBareWord(target, "ME") {
		return outermostCaller(src), nil
	}
	v, err := GetValue(src, dest, target, in)
	if err != nil {
		return nil, err
	}
	defer Drop(v)
	if v.Kind() != KArray {
		return nil, ErrNotArray
	}
	return v.Array(), nil
}

// GetScopeLocal is GetScope, but non-ME/I lookups are restricted to the
// terminal scope's own bindings (spec.md §4.2 "get_scope_local").
func GetScopeLocal(src, dest *Scope, target *ast.Identifier, in Interpreter) (*Scope, error) {
	if isBareWord(target, "I") {
		return src, nil
	}
	if isBareWord(target, "ME") {
		return outermostCaller(src), nil
	}
	v, err := GetValueLocal(src, dest, target, in)
	if err != nil {
		return nil, err
	}
	defer Drop(v)
	if v.Kind() != KArray {
		return nil, ErrNotArray
	}
	return v.Array(), nil
}

// DeleteValue removes target's binding from the first ancestor scope that
// has it, preserving the relative order of the remaining bindings.
func DeleteValue(src, dest *Scope, target *ast.Identifier, in Interpreter) error {
	parent, name, err := ResolveTerminal(src, dest, target, in)
	if err != nil {
		return err
	}
	for cur := parent; cur != nil; cur = cur.parent {
		if i := cur.localIndex(name); i >= 0 {
			Drop(cur.values[i])
			cur.names = append(cur.names[:i], cur.names[i+1:]...)
			cur.values = append(cur.values[:i], cur.values[i+1:]...)
			return nil
		}
	}
	return ErrVariableNotFound
}
