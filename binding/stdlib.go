package binding

import (
	"math/rand"

	"github.com/dr8co/lolcode/eval"
	"github.com/dr8co/lolcode/value"
)

var stdlibRoutines = []routine{
	{"MIX", []string{"seed"}, stdlibMix},
	{"BLOW", []string{"max"}, stdlibBlow},
}

// rng is process-global like the teacher's corpus-wide use of math/rand
// (_examples/cue-lang-cue/cue/export.go): LOLCODE programs are
// single-threaded, so one shared source is enough.
var rng = rand.New(rand.NewSource(1))

// stdlibMix implements MIX(seed): reseeds the shared generator.
func stdlibMix(scope *value.Scope) (eval.Signal, error) {
	seed, err := argInt(scope, "seed")
	if err != nil {
		return eval.Signal{}, err
	}
	rng = rand.New(rand.NewSource(seed))
	return eval.DefaultSignal(), nil
}

// stdlibBlow implements BLOW(max)→Integer in [0, max). max<=0 yields 0.
func stdlibBlow(scope *value.Scope) (eval.Signal, error) {
	maxV, err := argInt(scope, "max")
	if err != nil {
		return eval.Signal{}, err
	}
	if maxV <= 0 {
		return eval.ReturnSignal(value.Int(0)), nil
	}
	return eval.ReturnSignal(value.Int(rng.Int63n(maxV))), nil
}
