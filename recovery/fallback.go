package recovery

import (
	"context"
	"errors"

	"github.com/jonwraymond/apiward/apierror"
)

// ErrNilFallback is returned when a fallback strategy is constructed
// without a function.
var ErrNilFallback = errors.New("recovery: nil fallback function")

// FallbackFunc produces a substitute result for a failed operation.
type FallbackFunc func(ctx context.Context, err error, rctx *Context) (any, error)

// FallbackStrategy substitutes a fallback result for the configured error
// kinds. It never re-invokes the original operation.
type FallbackStrategy struct {
	fn    FallbackFunc
	kinds kindSet
}

// NewFallbackStrategy creates a fallback strategy recovering the given
// kinds. At least one kind must be supplied; a fallback that catches
// everything hides failures the caller needs to see.
func NewFallbackStrategy(fn FallbackFunc, kinds ...apierror.Kind) *FallbackStrategy {
	return &FallbackStrategy{
		fn:    fn,
		kinds: newKindSet(kinds),
	}
}

// CanRecover reports whether the error's kind is in the configured set.
func (s *FallbackStrategy) CanRecover(err error) bool {
	if s.fn == nil {
		return false
	}
	return s.kinds.contains(err)
}

// Recover calls the fallback function and returns its result.
func (s *FallbackStrategy) Recover(ctx context.Context, err error, rctx *Context) (any, error) {
	if s.fn == nil {
		return nil, ErrNilFallback
	}
	return s.fn(ctx, err, rctx)
}

// Ensure FallbackStrategy implements Strategy
var _ Strategy = (*FallbackStrategy)(nil)
