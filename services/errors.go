package services

import "errors"

// ErrGenerationExhausted is the one hard failure the generation
// pipeline surfaces: every strategy and attempt failed and the caller
// disallowed the fallback meal. Everything else in the pipeline is
// recoverable and handled internally.
var ErrGenerationExhausted = errors.New("meal generation exhausted all strategies")
