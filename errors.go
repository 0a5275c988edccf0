package bnn

import "github.com/pkg/errors"

// Errors reported by this package. They are thrown with panic -- the GoMLX
// convention for errors during graph building -- each wrapped with context
// about the failed call. Callers can convert them back to normal errors with
// exceptions.TryCatch and match them with errors.Is.
var (
	// ErrInvalidDimension is thrown when a layer is given a non-positive
	// feature dimension, or an input without a feature axis.
	ErrInvalidDimension = errors.New("invalid dimension")

	// ErrConfiguration is thrown when a network is configured inconsistently,
	// e.g. MLP with fewer than the minimum number of feature sizes.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrDimensionMismatch is thrown when the input's trailing dimension
	// disagrees with the configured feature sizes.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrBatchSize is thrown when batch normalization is taken on a batch too
	// small to normalize -- it needs more than one example during training.
	ErrBatchSize = errors.New("invalid batch size")
)

// panicf throws the sentinel error wrapped with a formatted message.
func panicf(sentinel error, format string, args ...any) {
	panic(errors.Wrapf(sentinel, format, args...))
}
