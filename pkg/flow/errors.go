package flow

import "errors"

// Sentinel errors for the failure taxonomy of the estimation core. All three
// are caller errors and fatal for the computation that raised them; there is
// no retry or partial-result mode. Numerical ill-conditioning inside the
// solver is deliberately absent here: a near-singular structure tensor is a
// defined degenerate case that yields zero flow, not an error.
var (
	// ErrShapeMismatch indicates inputs whose dimensions disagree.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrInvalidParameter indicates an out-of-range configuration value,
	// such as an even window size or a scale factor outside (0, 1).
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrMissingInput indicates a required frame or file that is absent.
	ErrMissingInput = errors.New("missing input")
)
