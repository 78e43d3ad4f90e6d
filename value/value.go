// Package value defines the dynamic value system and the nested scope model
// of the LOLCODE evaluation core (spec.md §3, §4.1, §4.2).
//
// Value and Scope are mutually recursive in the source this was ported from
// (an Array value owns a Scope; a Scope's bindings hold Values, some of
// which are Arrays) and are kept in one package for the same reason the
// teacher keeps its Environment next to its Object variants in package
// object: splitting them across packages would require an import cycle or
// an indirection layer with no payoff.
package value

import (
	"fmt"
	"math"
	"strconv"

	"github.com/dr8co/lolcode/ast"
)

// Kind tags which variant a Value holds.
type Kind uint8

//nolint:revive
const (
	KNil Kind = iota
	KBoolean
	KInteger
	KFloat
	KString
	KFunction
	KArray
	KBlob
)

// String returns a human-readable name for the kind, used in diagnostics.
func (k Kind) String() string {
	switch k {
	case KNil:
		return "NOOB"
	case KBoolean:
		return "TROOF"
	case KInteger:
		return "NUMBR"
	case KFloat:
		return "NUMBAR"
	case KString:
		return "YARN"
	case KFunction:
		return "FUNCTION"
	case KArray:
		return "BUKKIT"
	case KBlob:
		return "BLOB"
	default:
		return "UNKNOWN"
	}
}

// Epsilon is the proximity tolerance used for Float comparisons throughout
// the core (coercion, equality, division-by-zero) — spec.md §4.3/§4.4.
const Epsilon = 1e-6

// cell is the shared, ref-counted backing store for a Value. Copy shares the
// cell and bumps refs; Drop decrements and frees the inner payload at zero.
type cell struct {
	kind  Kind
	refs  int
	b     bool
	i     int64
	f     float32
	s     string
	fn    *ast.FuncDefStmt // weak, non-owning: the parse tree owns this
	arr   *Scope           // owned: freed (dropped) when refs reaches 0
	blob  any              // host-owned; the core never frees this
}

// Value is a tagged, reference-counted handle into a cell. The zero Value is
// not valid; always obtain one from Nil, Bool, Int, Float, Str, Func, Arr or
// BlobVal.
type Value struct {
	c *cell
}

// Nil returns a fresh Nil value (ref count 1).
func Nil() Value { return Value{c: &cell{kind: KNil, refs: 1}} }

// Bool returns a fresh Boolean value.
func Bool(b bool) Value { return Value{c: &cell{kind: KBoolean, refs: 1, b: b}} }

// Int returns a fresh Integer value.
func Int(i int64) Value { return Value{c: &cell{kind: KInteger, refs: 1, i: i}} }

// Float returns a fresh Float value.
func Float(f float32) Value { return Value{c: &cell{kind: KFloat, refs: 1, f: f}} }

// Str returns a fresh String value over s.
func Str(s string) Value { return Value{c: &cell{kind: KString, refs: 1, s: s}} }

// Func returns a Function value weakly referencing def. def must outlive
// every Value built from it (the parse tree's lifetime guarantees this).
func Func(def *ast.FuncDefStmt) Value { return Value{c: &cell{kind: KFunction, refs: 1, fn: def}} }

// Arr returns an Array value that owns inner.
func Arr(inner *Scope) Value { return Value{c: &cell{kind: KArray, refs: 1, arr: inner}} }

// BlobVal returns a Blob value wrapping a host-owned pointer. b may be nil
// (used by DIAF-style "did this fail" checks).
func BlobVal(b any) Value { return Value{c: &cell{kind: KBlob, refs: 1, blob: b}} }

// Copy returns a handle sharing v's cell with its ref count incremented.
func Copy(v Value) Value {
	v.c.refs++
	return v
}

// Drop decrements v's ref count, releasing the inner string/scope payload
// once it reaches zero. Function values never free the referenced
// definition node; Blob values never free the host pointer.
func Drop(v Value) {
	v.c.refs--
	if v.c.refs > 0 {
		return
	}
	v.c.s = ""
	v.c.arr = nil
	v.c.blob = nil
	v.c.fn = nil
}

// RefCount reports v's current reference count, for testing invariant 2 of
// spec.md §8 ("every Value referenced from a Scope has a positive ref count").
func RefCount(v Value) int { return v.c.refs }

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.c.kind }

// IsNil reports whether v is the Nil variant.
func (v Value) IsNil() bool { return v.c.kind == KNil }

// Bool is the contract-level accessor for the Boolean variant: the caller
// must have already checked or coerced Kind() == KBoolean.
func (v Value) Bool() bool { return v.c.b }

// Int is the contract-level accessor for the Integer variant.
func (v Value) Int() int64 { return v.c.i }

// Float32 is the contract-level accessor for the Float variant.
func (v Value) Float32() float32 { return v.c.f }

// RawStr is the contract-level accessor for the String variant. It returns
// the raw, un-interpolated bytes; interpolation is performed on demand by
// package interp.
func (v Value) RawStr() string { return v.c.s }

// FuncDef is the contract-level accessor for the Function variant.
func (v Value) FuncDef() *ast.FuncDefStmt { return v.c.fn }

// Array is the contract-level accessor for the Array variant.
func (v Value) Array() *Scope { return v.c.arr }

// Blob is the contract-level accessor for the Blob variant.
func (v Value) Blob() any { return v.c.blob }

// Inspect renders v for REPL/debug output; it never interpolates strings
// (Inspect is a diagnostic view, not a program-visible cast).
func (v Value) Inspect() string {
	switch v.c.kind {
	case KNil:
		return "NOOB"
	case KBoolean:
		if v.c.b {
			return "WIN"
		}
		return "FAIL"
	case KInteger:
		return strconv.FormatInt(v.c.i, 10)
	case KFloat:
		return FormatFloatTruncated(v.c.f)
	case KString:
		return v.c.s
	case KFunction:
		return "<function>"
	case KArray:
		return "<bukkit>"
	case KBlob:
		return fmt.Sprintf("<blob %p>", v.c.blob)
	default:
		return "<unknown>"
	}
}

// FormatFloatTruncated renders f to exactly two decimal places by truncating
// (not rounding) the third digit onward, matching spec.md §4.3's "%f
// truncated to 2 decimal places" cast rule — as opposed to strconv's
// round-half-to-even behavior at a fixed precision.
func FormatFloatTruncated(f float32) string {
	sign := ""
	mag := float64(f)
	if mag < 0 {
		sign = "-"
		mag = -mag
	}
	truncated := math.Trunc(mag*100) / 100
	return sign + strconv.FormatFloat(truncated, 'f', 2, 64)
}

// FloatEqual reports whether a and b are within Epsilon of each other,
// spec.md's proximity rule for Float comparisons.
func FloatEqual(a, b float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < Epsilon
}

// FloatIsZero reports whether f is close enough to zero to divide by zero.
func FloatIsZero(f float32) bool {
	return FloatEqual(f, 0)
}

// StructEqual implements the structural-equality rule shared by the Eq/Neq
// operator and Switch guard matching (spec.md §4.4, §4.5): same Kind
// required, except Integer/Float cross-compare via FloatEqual; Nil matches
// Nil; Arrays/Functions/Blobs never compare equal (no identity notion is
// specified).
func StructEqual(a, b Value) bool {
	if a.Kind() == KInteger && b.Kind() == KFloat {
		return FloatEqual(float32(a.Int()), b.Float32())
	}
	if a.Kind() == KFloat && b.Kind() == KInteger {
		return FloatEqual(a.Float32(), float32(b.Int()))
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case KNil:
		return true
	case KBoolean:
		return a.Bool() == b.Bool()
	case KInteger:
		return a.Int() == b.Int()
	case KFloat:
		return FloatEqual(a.Float32(), b.Float32())
	case KString:
		return a.RawStr() == b.RawStr()
	default:
		return false
	}
}
