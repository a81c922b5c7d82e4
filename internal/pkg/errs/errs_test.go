//go:build unit

package errs_test

import (
	"errors"
	"testing"

	"cart-engine/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMark(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	t.Run("success: marked errors match the mark and the cause", func(t *testing.T) {
		err := errs.Mark(errs.Wrap(cause, "catalog"), errs.ErrCollaboratorFailure)

		assert.True(t, errors.Is(err, errs.ErrCollaboratorFailure))
		assert.True(t, errs.Is(err, errs.ErrCollaboratorFailure))
		assert.True(t, errors.Is(err, cause))
		assert.False(t, errors.Is(err, errs.ErrCollaboratorTimeout))
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("success: marks survive further wrapping", func(t *testing.T) {
		err := errs.Wrapf(errs.Mark(cause, errs.ErrCollaboratorTimeout), "op %s", "apply_coupon")
		require.ErrorIs(t, err, errs.ErrCollaboratorTimeout)
	})

	t.Run("success: nil error yields the mark itself", func(t *testing.T) {
		assert.Equal(t, errs.ErrInvalidQuantity, errs.Mark(nil, errs.ErrInvalidQuantity))
	})
}

func TestReasons(t *testing.T) {
	t.Run("success: reasons are collected and the sentinel still matches", func(t *testing.T) {
		err := errs.WithReason(errs.WithReasonf(errs.ErrCheckoutPrecondition, "cart has %d unavailable items", 2), "address missing")

		require.ErrorIs(t, err, errs.ErrCheckoutPrecondition)
		assert.ElementsMatch(t, []string{"cart has 2 unavailable items", "address missing"}, errs.Reasons(err))
	})

	t.Run("success: nil stays nil", func(t *testing.T) {
		assert.NoError(t, errs.WithReason(nil, "ignored"))
		assert.Nil(t, errs.Reasons(nil))
		assert.NoError(t, errs.Wrap(nil, "ignored"))
	})
}

func TestExtractStackLines(t *testing.T) {
	lines := errs.ExtractStackLines(errs.New("boom"), 3)
	require.NotEmpty(t, lines)
	assert.LessOrEqual(t, len(lines), 3)
	assert.Contains(t, lines[0], "boom")
}
