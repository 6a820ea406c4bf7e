package ledger

import (
	"context"
	"sync"
	"time"
)

// memoryLedger keeps balances and the transaction log under one mutex, which
// is the transactional boundary: a transfer either updates both balances and
// appends exactly one record, or changes nothing.
type memoryLedger struct {
	mu       sync.Mutex
	policy   policy
	balances map[string]int64
	log      []TransactionRecord
	nextSeq  int64
	lastAt   time.Time
}

// NewInMemory creates a concurrency-safe in-memory ledger.
func NewInMemory(opts ...Option) Ledger {
	return newMemoryLedger(buildPolicy(opts))
}

func newMemoryLedger(p policy) *memoryLedger {
	return &memoryLedger{
		policy:   p,
		balances: make(map[string]int64),
		nextSeq:  1,
	}
}

func (l *memoryLedger) CreateAccount(_ context.Context, id string, initial int64) error {
	if initial < 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.balances[id]; exists {
		return ErrDuplicateAccount
	}
	l.balances[id] = initial
	return nil
}

func (l *memoryLedger) Balance(_ context.Context, id string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	balance, exists := l.balances[id]
	if !exists {
		return 0, ErrAccountNotFound
	}
	return balance, nil
}

func (l *memoryLedger) Transfer(_ context.Context, fromID, toID string, amount int64, kind string) (TransactionRecord, error) {
	if amount <= 0 {
		return TransactionRecord{}, ErrInvalidAmount
	}
	if fromID == toID && !l.policy.allowSelfTransfer {
		return TransactionRecord{}, ErrSelfTransfer
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fromBalance, ok := l.balances[fromID]
	if !ok {
		return TransactionRecord{}, ErrAccountNotFound
	}
	if _, ok := l.balances[toID]; !ok {
		return TransactionRecord{}, ErrAccountNotFound
	}
	if fromBalance < amount {
		return TransactionRecord{}, ErrInsufficientFunds
	}

	l.balances[fromID] -= amount
	l.balances[toID] += amount

	rec := TransactionRecord{
		ID:         l.nextSeq,
		SenderID:   fromID,
		ReceiverID: toID,
		Amount:     amount,
		Kind:       kind,
		CreatedAt:  l.clock(),
	}
	l.nextSeq++
	l.log = append(l.log, rec)
	return rec, nil
}

func (l *memoryLedger) History(_ context.Context, accountID string) ([]TransactionRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var records []TransactionRecord
	for i := len(l.log) - 1; i >= 0; i-- {
		rec := l.log[i]
		if rec.SenderID == accountID || rec.ReceiverID == accountID {
			records = append(records, rec)
		}
	}
	return records, nil
}

func (l *memoryLedger) Replay(_ context.Context, accountID string) ([]TransactionRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var records []TransactionRecord
	for _, rec := range l.log {
		if rec.SenderID == accountID || rec.ReceiverID == accountID {
			records = append(records, rec)
		}
	}
	return records, nil
}

// clock returns a timestamp clamped to be non-decreasing across log entries.
// Callers must hold l.mu.
func (l *memoryLedger) clock() time.Time {
	now := time.Now().UTC()
	if now.Before(l.lastAt) {
		now = l.lastAt
	}
	l.lastAt = now
	return now
}

// revertLast undoes the most recent transfer. Used by the persistent wrapper
// when the snapshot save fails; the wrapper serializes mutations, so the
// record to revert is always the tail of the log.
func (l *memoryLedger) revertLast(rec TransactionRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[rec.SenderID] += rec.Amount
	l.balances[rec.ReceiverID] -= rec.Amount
	if n := len(l.log); n > 0 && l.log[n-1].ID == rec.ID {
		l.log = l.log[:n-1]
		l.nextSeq = rec.ID
	}
}

func (l *memoryLedger) removeAccount(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.balances, id)
}
