package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionTypeDeposit     = "deposit"
	TransactionTypeTransferOut = "transfer_out"
	TransactionTypeTransferIn  = "transfer_in"
)

// A transaction starts out pending and ends up in exactly one of the two
// terminal statuses. Terminal rows are immutable.
const (
	TransactionPendingStatus = "pending"
	TransactionSuccessStatus = "success"
	TransactionFailedStatus  = "failed"
)

type Transaction struct {
	ID        string          `db:"id"`
	WalletID  string          `db:"wallet_id"`
	Type      string          `db:"type"`
	Amount    decimal.Decimal `db:"amount"`
	Reference string          `db:"reference"`
	Status    string          `db:"status"`
	Metadata  Metadata        `db:"metadata"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt sql.NullTime    `db:"updated_at"`
}

// Metadata is stored in a jsonb column. Transfer legs use it to carry the
// counterparty wallet number; deposits carry provider details.
type Metadata map[string]string

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}

	return json.Marshal(m)
}

func (m *Metadata) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}

	var data []byte

	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for metadata", value)
	}

	return json.Unmarshal(data, m)
}
