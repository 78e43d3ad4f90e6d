// Package eval implements the tree-walking expression and statement
// evaluator over the ast node kinds (spec.md §4.4, §4.5).
package eval

import "github.com/dr8co/lolcode/value"

// Kind enumerates the tri-state Return Signal of spec.md §3: a statement
// either falls through (Default), breaks the nearest loop/switch (Break),
// or unwinds a function call with a value (Return).
type Kind uint8

//nolint:revive
const (
	Default Kind = iota
	Break
	Return
)

// Signal is never stored in a Scope; it is only ever an executor's result.
type Signal struct {
	Kind  Kind
	Value value.Value // valid when Kind == Return
}

// DefaultSignal is the zero Signal, returned by statements with no control
// flow effect.
func DefaultSignal() Signal { return Signal{Kind: Default} }

// BreakSignal yields Break.
func BreakSignal() Signal { return Signal{Kind: Break} }

// ReturnSignal yields Return(v).
func ReturnSignal(v value.Value) Signal { return Signal{Kind: Return, Value: v} }
