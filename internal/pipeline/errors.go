package pipeline

import "github.com/rotisserie/eris"

var (
	// ErrValidation marks missing or malformed caller input.
	ErrValidation = eris.New("pipeline: validation failed")

	// ErrPrecondition marks a stage invoked before its dependency artifact
	// exists, such as deploying an SME that has no website yet. The caller
	// must run the missing prior stage first.
	ErrPrecondition = eris.New("pipeline: precondition failed")
)
