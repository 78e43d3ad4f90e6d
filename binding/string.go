package binding

import (
	"github.com/dr8co/lolcode/eval"
	"github.com/dr8co/lolcode/value"
)

var stringRoutines = []routine{
	{"LEN", []string{"string"}, stringLen},
	{"AT", []string{"string", "position"}, stringAt},
}

// stringLen implements LEN(string)→Integer.
func stringLen(scope *value.Scope) (eval.Signal, error) {
	s, err := argString(scope, "string")
	if err != nil {
		return eval.Signal{}, err
	}
	return eval.ReturnSignal(value.Int(int64(len(s)))), nil
}

// stringAt implements AT(string, position)→String (single character). An
// out-of-range position yields an empty String rather than an error,
// matching DIAF-style host-error signaling elsewhere in this package.
func stringAt(scope *value.Scope) (eval.Signal, error) {
	s, err := argString(scope, "string")
	if err != nil {
		return eval.Signal{}, err
	}
	pos, err := argInt(scope, "position")
	if err != nil {
		return eval.Signal{}, err
	}
	if pos < 0 || pos >= int64(len(s)) {
		return eval.ReturnSignal(value.Str("")), nil
	}
	return eval.ReturnSignal(value.Str(Sanitize(string(s[pos])))), nil
}
