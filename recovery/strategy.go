package recovery

import (
	"context"
	"errors"

	"github.com/jonwraymond/apiward/apierror"
)

// Sentinel errors for recovery operations.
var (
	// ErrNilOperation is returned when Execute is given a nil operation.
	ErrNilOperation = errors.New("recovery: nil operation")
)

// Operation is a unit of remote work. It produces a result or fails with a
// transport-shaped error that apierror.Translate can classify.
type Operation func(ctx context.Context) (any, error)

// Context carries the state of one recovery attempt. A fresh Context is
// created per attempt.
type Context struct {
	// Operation is the guarded operation a strategy may re-invoke.
	Operation Operation

	// RetryCount is the number of retries already performed for this
	// operation. The retry strategy compares it against its maximum.
	RetryCount int

	// Cause is the classified error that triggered recovery.
	Cause error
}

// Strategy decides whether and how to recover from a classified error.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - CanRecover must be side-effect free.
// - Recover performs at most one invocation of rctx.Operation.
type Strategy interface {
	// CanRecover reports whether this strategy applies to the error.
	CanRecover(err error) bool

	// Recover attempts recovery and returns the recovered result, or an
	// error when recovery itself failed.
	Recover(ctx context.Context, err error, rctx *Context) (any, error)
}

// kindSet is the membership test backing every strategy's recoverable-kind
// configuration.
type kindSet map[apierror.Kind]struct{}

func newKindSet(kinds []apierror.Kind) kindSet {
	s := make(kindSet, len(kinds))
	for _, k := range kinds {
		s[k] = struct{}{}
	}
	return s
}

func (s kindSet) contains(err error) bool {
	_, ok := s[apierror.KindOf(err)]
	return ok
}
