package custody

import (
	"context"
	"errors"

	"pairbook/domain/book"
)

// AssetID identifies a fungible asset held by the custodian. Identifiers are
// opaque and compared byte-wise.
type AssetID string

// ErrTransferFailed is the root of every debit/credit rejection. Callers
// treat it as a fatal abort of the enclosing operation.
var ErrTransferFailed = errors.New("custody transfer failed")

// Custodian is the collateral ledger the order book debits on place and
// credits on cancel. A participant must have authorized the operator to move
// at least the debited amount beforehand.
type Custodian interface {
	Debit(ctx context.Context, asset AssetID, from book.ParticipantID, amount uint64) error
	Credit(ctx context.Context, asset AssetID, to book.ParticipantID, amount uint64) error
}
