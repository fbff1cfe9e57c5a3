package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

const (
	WalletActiveStatus = "active"
	WalletOnHoldStatus = "on-hold"

	// WalletNumberLength is the fixed length of the external wallet number.
	// Wallet numbers are random digits, never derived from user data, and
	// never reused once issued.
	WalletNumberLength = 13
)

type Wallet struct {
	ID           string          `db:"id"`
	UserID       string          `db:"user_id"`
	WalletNumber string          `db:"wallet_number"`
	Balance      decimal.Decimal `db:"balance"`
	Currency     string          `db:"currency"`
	Status       string          `db:"status"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    sql.NullTime    `db:"updated_at"`
}
