package kmeans

import "errors"

var (
	// ErrInvalidInput is returned for empty or malformed pixel data and for
	// cluster counts the sample set cannot support.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternalInvariant is returned when the refinement loop reaches a state
	// it cannot recover from, such as a failed empty-cluster reseed.
	ErrInternalInvariant = errors.New("internal invariant violation")
)
