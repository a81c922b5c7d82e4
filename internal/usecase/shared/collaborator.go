package shared

import (
	"context"
	"errors"
	"time"

	"cart-engine/internal/pkg/errs"
)

// CallWithTimeout runs fn with a deadline. The result is abandoned when the
// deadline passes even if fn ignores its context, so a hung collaborator
// cannot stall the engine.
func CallWithTimeout[T any](ctx context.Context, timeout time.Duration, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if timeout <= 0 {
		return fn(ctx)
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(callCtx)
		done <- result{v: v, err: err}
	}()

	select {
	case r := <-done:
		if r.err == nil {
			return r.v, nil
		}
		if errors.Is(r.err, context.DeadlineExceeded) && ctx.Err() == nil {
			return zero, errs.Mark(errs.Wrapf(r.err, "%s", name), errs.ErrCollaboratorTimeout)
		}
		return zero, errs.Wrapf(r.err, "%s", name)
	case <-callCtx.Done():
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		return zero, errs.Mark(errs.Wrapf(callCtx.Err(), "%s did not respond within %s", name, timeout), errs.ErrCollaboratorTimeout)
	}
}
