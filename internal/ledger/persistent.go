package ledger

import (
	"context"
	"sync"

	"github.com/instacash-tt/instacash/internal/storage"
)

// persistentLedger runs the in-memory ledger behind a whole-state snapshot
// store. Every mutation saves the combined state through the keeper; a failed
// save reverts the mutation, so balance changes and durability succeed or
// fail together. One mutex covers mutate-plus-save, the single global lock
// the deployment model calls for.
type persistentLedger struct {
	mu     sync.Mutex
	mem    *memoryLedger
	keeper *storage.Keeper
}

// NewPersistent seeds an in-memory ledger from previously loaded state and
// attaches it to the keeper for snapshot persistence.
func NewPersistent(keeper *storage.Keeper, state storage.State, opts ...Option) Ledger {
	mem := newMemoryLedger(buildPolicy(opts))
	for id, balance := range state.Balances {
		mem.balances[id] = balance
	}
	for _, rec := range state.Transactions {
		mem.log = append(mem.log, TransactionRecord{
			ID:         rec.ID,
			SenderID:   rec.SenderID,
			ReceiverID: rec.ReceiverID,
			Amount:     rec.Amount,
			Kind:       rec.Kind,
			CreatedAt:  rec.CreatedAt,
		})
	}
	if state.NextSequence > mem.nextSeq {
		mem.nextSeq = state.NextSequence
	}
	if n := len(mem.log); n > 0 {
		mem.lastAt = mem.log[n-1].CreatedAt
	}

	l := &persistentLedger{mem: mem, keeper: keeper}
	keeper.Attach(l)
	return l
}

func (l *persistentLedger) CreateAccount(ctx context.Context, id string, initial int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.mem.CreateAccount(ctx, id, initial); err != nil {
		return err
	}
	if err := l.keeper.Persist(ctx); err != nil {
		l.mem.removeAccount(id)
		return err
	}
	return nil
}

func (l *persistentLedger) Balance(ctx context.Context, id string) (int64, error) {
	return l.mem.Balance(ctx, id)
}

func (l *persistentLedger) Transfer(ctx context.Context, fromID, toID string, amount int64, kind string) (TransactionRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, err := l.mem.Transfer(ctx, fromID, toID, amount, kind)
	if err != nil {
		return TransactionRecord{}, err
	}
	if err := l.keeper.Persist(ctx); err != nil {
		l.mem.revertLast(rec)
		return TransactionRecord{}, err
	}
	return rec, nil
}

func (l *persistentLedger) History(ctx context.Context, accountID string) ([]TransactionRecord, error) {
	return l.mem.History(ctx, accountID)
}

func (l *persistentLedger) Replay(ctx context.Context, accountID string) ([]TransactionRecord, error) {
	return l.mem.Replay(ctx, accountID)
}

// Contribute writes the ledger section of the shared state snapshot.
func (l *persistentLedger) Contribute(state *storage.State) {
	l.mem.mu.Lock()
	defer l.mem.mu.Unlock()
	for id, balance := range l.mem.balances {
		state.Balances[id] = balance
	}
	for _, rec := range l.mem.log {
		state.Transactions = append(state.Transactions, storage.TransactionRecord{
			ID:         rec.ID,
			SenderID:   rec.SenderID,
			ReceiverID: rec.ReceiverID,
			Amount:     rec.Amount,
			Kind:       rec.Kind,
			CreatedAt:  rec.CreatedAt,
		})
	}
	state.NextSequence = l.mem.nextSeq
}
