package ledger

import (
	"strings"

	"github.com/google/uuid"
)

const (
	transferReferencePrefix = "TRF_"
	depositReferencePrefix  = "DEP_"

	// A transfer is two rows sharing one reference, distinguished by leg.
	TransferOutSuffix = "_OUT"
	TransferInSuffix  = "_IN"
)

// NewTransferReference generates the shared reference for the two legs of
// a transfer, e.g. TRF_9F81A2C04B7D. References are globally unique across
// all transaction types.
func NewTransferReference() string {
	return transferReferencePrefix + referenceToken()
}

// NewDepositReference generates a deposit reference, e.g. DEP_4E1B0A92C3F7.
func NewDepositReference() string {
	return depositReferencePrefix + referenceToken()
}

func referenceToken() string {
	token := strings.ReplaceAll(uuid.New().String(), "-", "")

	return strings.ToUpper(token[:12])
}
