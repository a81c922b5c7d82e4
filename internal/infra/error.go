package infra

import (
	"errors"
	"log/slog"

	"cart-engine/internal/pkg/errs"
	"cart-engine/internal/usecase/shared"
)

type RepositoryErrorKind string

type RepositoryError struct {
	Kind RepositoryErrorKind
	msg  string
	err  error // wrapped low-level error
}

func (e RepositoryError) Error() string {
	if e.err != nil {
		return string(e.Kind) + ": " + e.msg + ": " + e.err.Error()
	}
	return string(e.Kind) + ": " + e.msg
}

func (e RepositoryError) Unwrap() error {
	return e.err
}

// Is lets callers match repository failures against the usecase sentinels
// without knowing about RepositoryError.
func (e RepositoryError) Is(target error) bool {
	switch e.Kind {
	case KindNotFound:
		return target == errs.ErrCartNotFound
	case KindVersionConflict:
		return target == shared.ErrVersionConflict
	case KindActiveCartExists:
		return target == shared.ErrActiveCartExists
	case KindCouponExhausted:
		return target == errs.ErrCheckoutPrecondition
	default:
		return false
	}
}

func WrapRepoErr(slogger *slog.Logger, kind RepositoryErrorKind, msg string, err error) error {
	logArgs := []any{
		slog.String("kind", string(kind)),
	}
	if err != nil {
		logArgs = append(logArgs, slog.String("error", err.Error()))
	}

	switch kind {
	case KindNotFound, KindVersionConflict, KindActiveCartExists, KindCouponExhausted:
		slogger.Debug("Repository error: "+msg, logArgs...)
	default:
		slogger.Error("Repository error: "+msg, logArgs...)
	}

	if err != nil {
		err = errs.Wrap(err, msg)
	}

	return RepositoryError{Kind: kind, msg: msg, err: err}
}

func IsKind(err error, kind RepositoryErrorKind) bool {
	var e RepositoryError
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Infrastructure-specific error kinds
const (
	KindNotFound           RepositoryErrorKind = "NOT_FOUND"
	KindDBFailure          RepositoryErrorKind = "DB_FAILURE"
	KindDuplicateKey       RepositoryErrorKind = "DUPLICATE_KEY"
	KindForeignKeyViolated RepositoryErrorKind = "FOREIGN_KEY_VIOLATED"
	KindVersionConflict    RepositoryErrorKind = "VERSION_CONFLICT"
	KindActiveCartExists   RepositoryErrorKind = "ACTIVE_CART_EXISTS"
	KindCouponExhausted    RepositoryErrorKind = "COUPON_EXHAUSTED"
	KindCacheFailure       RepositoryErrorKind = "CACHE_FAILURE"
)
