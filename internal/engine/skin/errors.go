package skin

import (
	"fmt"

	"go.uber.org/multierr"
)

// InfluenceError lists the vertices whose influences break the weight-sum or
// bone-index invariants. Err combines one error per problem.
type InfluenceError struct {
	Vertices []int
	Err      error
}

func (e *InfluenceError) Error() string {
	return fmt.Sprintf("skin: %d vertices with invalid influences: %v", len(e.Vertices), e.Err)
}

func (e *InfluenceError) Unwrap() error { return e.Err }

// Problems returns the individual per-vertex errors.
func (e *InfluenceError) Problems() []error {
	return multierr.Errors(e.Err)
}
