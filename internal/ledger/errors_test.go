package ledger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Run("Nil stays nil", func(t *testing.T) {
		assert.NoError(t, classify(nil))
	})

	t.Run("User rejection maps to ErrDeclined", func(t *testing.T) {
		err := classify(errors.New("user rejected transaction"))
		assert.ErrorIs(t, err, ErrDeclined)
	})

	t.Run("Insufficient funds maps to ErrInsufficientFunds", func(t *testing.T) {
		err := classify(errors.New("insufficient funds for gas * price + value"))
		assert.ErrorIs(t, err, ErrInsufficientFunds)
	})

	t.Run("Duplicate revert reason maps to ErrDuplicateCertificate", func(t *testing.T) {
		err := classify(errors.New("execution reverted: certificate already issued"))
		assert.ErrorIs(t, err, ErrDuplicateCertificate)
	})

	t.Run("Approval revert maps to ErrNotApproved", func(t *testing.T) {
		err := classify(errors.New("execution reverted: caller is not an approved issuer"))
		assert.ErrorIs(t, err, ErrNotApproved)
	})

	t.Run("Other revert maps to ErrReverted", func(t *testing.T) {
		err := classify(errors.New("execution reverted"))
		assert.ErrorIs(t, err, ErrReverted)
	})

	t.Run("Unrecognized errors pass through", func(t *testing.T) {
		raw := errors.New("connection refused")
		err := classify(raw)
		assert.Equal(t, raw, err)
		assert.NotErrorIs(t, err, ErrReverted)
	})

	t.Run("Original error stays in the chain", func(t *testing.T) {
		raw := errors.New("execution reverted: certificate already issued")
		err := classify(raw)
		assert.Contains(t, err.Error(), "certificate already issued")
	})
}
