package errs

import (
	"fmt"
	"strings"

	cr "github.com/cockroachdb/errors"
)

func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return cr.Wrap(err, msg)
}

func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return cr.Wrapf(err, format, args...)
}

func New(msg string) error {
	return cr.New(msg)
}

// Mark tags err with markErr. The result matches markErr through both
// cockroachdb's Is and the standard library's errors.Is, and still matches
// everything err matched.
func Mark(err error, markErr error) error {
	if err == nil {
		return markErr
	}
	return &markedError{cause: cr.Mark(err, markErr), mark: markErr}
}

type markedError struct {
	cause error
	mark  error
}

func (e *markedError) Error() string        { return e.cause.Error() }
func (e *markedError) Unwrap() error        { return e.cause }
func (e *markedError) Is(target error) bool { return target == e.mark }

func Is(err, reference error) bool {
	return cr.Is(err, reference)
}

// WithReason attaches a user-facing reason to a taxonomy error. The result
// still matches the original sentinel with errors.Is.
func WithReason(err error, reason string) error {
	if err == nil {
		return nil
	}
	return cr.WithDetail(err, reason)
}

func WithReasonf(err error, format string, args ...any) error {
	return WithReason(err, fmt.Sprintf(format, args...))
}

// Reasons returns every reason attached with WithReason, outermost first.
func Reasons(err error) []string {
	if err == nil {
		return nil
	}
	return cr.GetAllDetails(err)
}

func ExtractStackLines(err error, maxLines int) []string {
	if err == nil {
		return nil
	}
	s := fmt.Sprintf("%+v", err)
	lines := strings.Split(s, "\n")
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return lines
}
