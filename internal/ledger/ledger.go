package ledger

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrAccountNotFound occurs when a referenced account has no ledger entry.
	ErrAccountNotFound = errors.New("ledger account not found")

	// ErrDuplicateAccount occurs when creating a ledger account that already exists.
	ErrDuplicateAccount = errors.New("ledger account already exists")

	// ErrInvalidAmount occurs when a transfer amount is zero or negative.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientFunds occurs when the sender lacks balance to cover a transfer.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrSelfTransfer occurs when sender and receiver are the same account and
	// the ledger was not configured to permit it.
	ErrSelfTransfer = errors.New("cannot transfer to the same account")
)

const (
	// KindPeerTransfer marks a customer-to-customer payment.
	KindPeerTransfer = "p2p"
	// KindMerchantCollection marks a payment collected by a merchant account.
	KindMerchantCollection = "merchant_collection"
)

// TransactionRecord is one immutable entry of the append-only transfer log.
// The log is the source of truth: folding it from an account's creation
// reproduces the stored balance exactly.
type TransactionRecord struct {
	ID         int64
	SenderID   string
	ReceiverID string
	Amount     int64
	Kind       string
	CreatedAt  time.Time
}

// Ledger is the contract implemented by ledger backends. A Transfer mutates
// both balances and appends the log record as one atomic unit; no
// interleaving operation may observe the intermediate state.
type Ledger interface {
	CreateAccount(ctx context.Context, id string, initial int64) error
	Balance(ctx context.Context, id string) (int64, error)
	Transfer(ctx context.Context, fromID, toID string, amount int64, kind string) (TransactionRecord, error)
	// History returns every record touching the account, most recent first.
	History(ctx context.Context, accountID string) ([]TransactionRecord, error)
	// Replay returns the same records in chronological order for balance
	// reconstruction.
	Replay(ctx context.Context, accountID string) ([]TransactionRecord, error)
}

type policy struct {
	allowSelfTransfer bool
}

// Option adjusts ledger policy at construction time.
type Option func(*policy)

// AllowSelfTransfer permits transfers where sender and receiver match. By
// default such transfers fail with ErrSelfTransfer.
func AllowSelfTransfer() Option {
	return func(p *policy) { p.allowSelfTransfer = true }
}

func buildPolicy(opts []Option) policy {
	var p policy
	for _, opt := range opts {
		opt(&p)
	}
	return p
}
