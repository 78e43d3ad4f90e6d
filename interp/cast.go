// Package interp implements explicit/implicit value coercion and the
// `:`-escape string interpolation mini-language of spec.md §4.3.
package interp

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dr8co/lolcode/ast"
	"github.com/dr8co/lolcode/value"
)

// Sentinel cast errors, surfaced with file:line by the caller (package eval).
var (
	ErrCastRejected        = errors.New("cannot cast TROOF to YARN")
	ErrCastUnsupported     = errors.New("value cannot be cast to that type")
	ErrCannotImplicitlyCastNil = errors.New("cannot implicitly cast NOOB")
	ErrBadInteger          = errors.New("expected an integer")
	ErrBadFloat            = errors.New("expected a decimal number")
)

// ExplicitCast converts v to target per the table in spec.md §4.3. Casting
// anything to Nil always succeeds and discards the source (MAEK x A NOOB is
// used as an explicit reset, not an error path).
func ExplicitCast(v value.Value, target ast.ValueKind, scope *value.Scope) (value.Value, error) {
	if target == ast.KindNil {
		return value.Nil(), nil
	}

	switch v.Kind() {
	case value.KFunction, value.KArray, value.KBlob:
		return value.Value{}, ErrCastUnsupported
	}

	switch target {
	case ast.KindBoolean:
		return castToBoolean(v, scope)
	case ast.KindInteger:
		return castToInteger(v, scope)
	case ast.KindFloat:
		return castToFloat(v, scope)
	case ast.KindString:
		return castToString(v, scope)
	default:
		return value.Value{}, fmt.Errorf("unknown cast target %q", target)
	}
}

// ImplicitCast is ExplicitCast, except a Nil source casting to anything
// other than String fails (spec.md §4.3 "Implicit cast").
func ImplicitCast(v value.Value, target ast.ValueKind, scope *value.Scope) (value.Value, error) {
	if v.Kind() == value.KNil && target != ast.KindString {
		return value.Value{}, ErrCannotImplicitlyCastNil
	}
	return ExplicitCast(v, target, scope)
}

func castToBoolean(v value.Value, scope *value.Scope) (value.Value, error) {
	switch v.Kind() {
	case value.KNil:
		return value.Bool(false), nil
	case value.KBoolean:
		return value.Bool(v.Bool()), nil
	case value.KInteger:
		return value.Bool(v.Int() != 0), nil
	case value.KFloat:
		return value.Bool(!value.FloatIsZero(v.Float32())), nil
	case value.KString:
		s, err := Interpolate(v.RawStr(), scope)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(len(s) > 0 && s[0] != 0), nil
	default:
		return value.Value{}, ErrCastUnsupported
	}
}

func castToInteger(v value.Value, scope *value.Scope) (value.Value, error) {
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
		return value.Int(int64(v.Float32())), nil
	case value.KString:
		s, err := Interpolate(v.RawStr(), scope)
		if err != nil {
			return value.Value{}, err
		}
		if strings.Contains(s, ".") {
			return value.Value{}, ErrBadInteger
		}
		n, err := ParseDecimalInt(s)
		if err != nil {
			return value.Value{}, ErrBadInteger
		}
		return value.Int(n), nil
	default:
		return value.Value{}, ErrCastUnsupported
	}
}

func castToFloat(v value.Value, scope *value.Scope) (value.Value, error) {
	switch v.Kind() {
	case value.KNil:
		return value.Float(0), nil
	case value.KBoolean:
		if v.Bool() {
			return value.Float(1), nil
		}
		return value.Float(0), nil
	case value.KInteger:
		return value.Float(float32(v.Int())), nil
	case value.KFloat:
		return value.Float(v.Float32()), nil
	case value.KString:
		s, err := Interpolate(v.RawStr(), scope)
		if err != nil {
			return value.Value{}, err
		}
		f, err := ParseDecimalFloat(s)
		if err != nil {
			return value.Value{}, ErrBadFloat
		}
		return value.Float(f), nil
	default:
		return value.Value{}, ErrCastUnsupported
	}
}

func castToString(v value.Value, scope *value.Scope) (value.Value, error) {
	switch v.Kind() {
	case value.KNil:
		return value.Str(""), nil
	case value.KBoolean:
		return value.Value{}, ErrCastRejected
	case value.KInteger:
		return value.Str(strconv.FormatInt(v.Int(), 10)), nil
	case value.KFloat:
		return value.Str(value.FormatFloatTruncated(v.Float32())), nil
	case value.KString:
		s, err := Interpolate(v.RawStr(), scope)
		if err != nil {
			return value.Value{}, err
		}
		return value.Str(s), nil
	default:
		return value.Value{}, ErrCastUnsupported
	}
}

// ParseDecimalInt accepts an optional leading '-' followed by digits only
// (no '.'), matching spec.md §4.3's decimal-parsing rule.
func ParseDecimalInt(s string) (int64, error) {
	if s == "" {
		return 0, ErrBadInteger
	}
	i := 0
	if s[0] == '-' {
		i++
	}
	if i == len(s) {
		return 0, ErrBadInteger
	}
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, ErrBadInteger
		}
	}
	return strconv.ParseInt(s, 10, 64)
}

// ParseDecimalFloat accepts an optional leading '-', digits, and at most one '.'.
func ParseDecimalFloat(s string) (float32, error) {
	if s == "" {
		return 0, ErrBadFloat
	}
	i := 0
	if s[0] == '-' {
		i++
	}
	dots := 0
	if i == len(s) {
		return 0, ErrBadFloat
	}
	for ; i < len(s); i++ {
		switch {
		case s[i] == '.':
			dots++
			if dots > 1 {
				return 0, ErrBadFloat
			}
		case s[i] < '0' || s[i] > '9':
			return 0, ErrBadFloat
		}
	}
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, ErrBadFloat
	}
	return float32(f), nil
}
