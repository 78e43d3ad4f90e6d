package eval

import "errors"

// Sentinel errors for the taxonomy of spec.md §7. evalStatements wraps them
// with the failing statement's line number; main prefixes the file name.
var (
	ErrUnknownExpression  = errors.New("unknown expression node")
	ErrUnknownStatement   = errors.New("unknown statement node")
	ErrUnknownOperator    = errors.New("unknown operator")
	ErrDivisionByZero     = errors.New("division by zero")
	ErrArityMismatch      = errors.New("wrong number of arguments")
	ErrNotCallable        = errors.New("value is not a function")
	ErrArrayCastRejected  = errors.New("cannot declare or cast to BUKKIT directly")
	ErrNoDefaultGuard     = errors.New("no matching guard and no default block")
	ErrUnknownLibrary     = errors.New("unknown library")
	ErrNoImporter         = errors.New("no library loader configured")
	ErrBindingHostInvalid = errors.New("binding statement has no host callable")
)
