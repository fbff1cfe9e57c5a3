package seeders

import (
	"context"
	"database/sql"
	"log"

	"github.com/cradoe/gopass"
)

// seedDemoAccounts seeds two demo users with funded wallets and a small
// settled history between them. Seeded balances equal the signed sum of
// the seeded transactions, so reconciliation on a fresh database is clean.
// Every statement is a no-op when the rows already exist; balances of
// existing wallets are left alone.
func (seeder *Seeder) seedDemoAccounts() {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	tx, err := seeder.DB.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		log.Fatalf("Failed to start transaction: %v", err)
	}

	hashedPassword, err := gopass.Hash("Demo-Pass-1")
	if err != nil {
		log.Fatalf("Failed to hash demo password: %v", err)
	}

	accounts := []struct {
		FirstName    string
		LastName     string
		Email        string
		WalletNumber string
		Balance      string
	}{
		{
			FirstName:    "Amina",
			LastName:     "Balogun",
			Email:        "amina@monibag.example",
			WalletNumber: "1000000000001",
			Balance:      "97500.00",
		},
		{
			FirstName:    "Chuks",
			LastName:     "Okafor",
			Email:        "chuks@monibag.example",
			WalletNumber: "1000000000002",
			Balance:      "52500.00",
		},
	}

	walletIDs := make(map[string]string, len(accounts))

	for _, account := range accounts {
		var userID string
		err := tx.QueryRowContext(ctx, `
			INSERT INTO users (first_name, last_name, email, hashed_password)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (email) DO NOTHING
			RETURNING id;`,
			account.FirstName, account.LastName, account.Email, hashedPassword,
		).Scan(&userID)

		// Check if the insert failed due to conflict (no ID returned)
		if err == sql.ErrNoRows {
			err = tx.QueryRowContext(ctx, `SELECT id FROM users WHERE email = $1`, account.Email).Scan(&userID)
		}

		if err != nil {
			tx.Rollback()
			log.Fatalf("Failed to insert or retrieve demo user '%s': %v", account.Email, err)
		}

		var walletID string
		err = tx.QueryRowContext(ctx, `
			INSERT INTO wallets (user_id, wallet_number, balance)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id) DO NOTHING
			RETURNING id;`,
			userID, account.WalletNumber, account.Balance,
		).Scan(&walletID)

		if err == sql.ErrNoRows {
			err = tx.QueryRowContext(ctx, `SELECT id FROM wallets WHERE user_id = $1`, userID).Scan(&walletID)
		}

		if err != nil {
			tx.Rollback()
			log.Fatalf("Failed to insert or retrieve demo wallet '%s': %v", account.WalletNumber, err)
		}

		walletIDs[account.WalletNumber] = walletID
	}

	// the two deposits fund the wallets, the transfer pair moves 2500
	// from the first wallet to the second
	transactions := []struct {
		WalletNumber string
		Type         string
		Amount       string
		Reference    string
	}{
		{WalletNumber: "1000000000001", Type: "deposit", Amount: "100000.00", Reference: "DEP_SEED00000001"},
		{WalletNumber: "1000000000002", Type: "deposit", Amount: "50000.00", Reference: "DEP_SEED00000002"},
		{WalletNumber: "1000000000001", Type: "transfer_out", Amount: "2500.00", Reference: "TRF_SEED00000001_OUT"},
		{WalletNumber: "1000000000002", Type: "transfer_in", Amount: "2500.00", Reference: "TRF_SEED00000001_IN"},
	}

	for _, transaction := range transactions {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO transactions (wallet_id, type, amount, reference, status)
			VALUES ($1, $2, $3, $4, 'success')
			ON CONFLICT (reference) DO NOTHING;`,
			walletIDs[transaction.WalletNumber], transaction.Type, transaction.Amount, transaction.Reference,
		)
		if err != nil {
			tx.Rollback()
			log.Fatalf("Failed to insert demo transaction '%s': %v", transaction.Reference, err)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Fatalf("Failed to commit demo seed data: %v", err)
	}

	log.Println("Demo accounts seeded successfully")
}
