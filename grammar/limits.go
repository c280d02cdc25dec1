package grammar

import "fmt"

// defaultIterationLimit bounds every fixed-point loop in the package. The
// symbol and item universes are finite, so a well-formed grammar converges
// long before the bound; hitting it means the input is malformed in a way
// that keeps producing work.
const defaultIterationLimit = 100000

// IterationLimitError reports a fixed-point loop that failed to converge
// within its configured bound.
type IterationLimitError struct {
	Stage string
	Limit int
}

func (e *IterationLimitError) Error() string {
	return fmt.Sprintf("%v did not converge within %v iterations", e.Stage, e.Limit)
}

// iterationGuard counts loop passes and fails once the bound is exceeded.
type iterationGuard struct {
	stage string
	limit int
	n     int
}

func newIterationGuard(stage string, limit int) *iterationGuard {
	if limit <= 0 {
		limit = defaultIterationLimit
	}
	return &iterationGuard{
		stage: stage,
		limit: limit,
	}
}

func (ig *iterationGuard) tick() error {
	ig.n++
	if ig.n > ig.limit {
		return &IterationLimitError{
			Stage: ig.stage,
			Limit: ig.limit,
		}
	}
	return nil
}
