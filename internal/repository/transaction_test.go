package repository

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/monibag/monibag/internal/models"
)

func TestInsert_RejectsNonPositiveAmounts(t *testing.T) {
	// an insert that slipped past the guard would panic on the nil handle
	repo := NewTransactionRepository(nil)

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-10)} {
		transaction := &models.Transaction{
			WalletID:  "wallet-a",
			Type:      models.TransactionTypeDeposit,
			Amount:    amount,
			Reference: "DEP_4E1B0A92C3F7",
		}

		id, err := repo.Insert(transaction, nil)

		require.ErrorIs(t, err, ErrNonPositiveAmount)
		require.Empty(t, id)
		require.Empty(t, transaction.ID)
	}
}

func TestClampHistoryLimit(t *testing.T) {
	// in-range values pass through untouched
	require.Equal(t, 5, clampHistoryLimit(5))
	require.Equal(t, defaultHistoryLimit, clampHistoryLimit(defaultHistoryLimit))

	// requests outside the window fall back to the cap
	require.Equal(t, defaultHistoryLimit, clampHistoryLimit(0))
	require.Equal(t, defaultHistoryLimit, clampHistoryLimit(-3))
	require.Equal(t, defaultHistoryLimit, clampHistoryLimit(defaultHistoryLimit+1))
	require.Equal(t, defaultHistoryLimit, clampHistoryLimit(200))
}
