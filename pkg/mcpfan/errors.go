package mcpfan

import "github.com/cockroachdb/errors"

var (
	// ErrMissingMain reports that launch arguments could not be synthesized
	// because no main-script path was configured. This is a deployment error
	// and is never retried.
	ErrMissingMain = errors.New("main script path is required when no argument string is set")

	// ErrNotInitialized reports that GetTools was called before Init.
	ErrNotInitialized = errors.New("client not initialized: call Init first")
)
