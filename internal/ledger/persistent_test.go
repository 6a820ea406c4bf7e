package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/instacash-tt/instacash/internal/storage"
)

// stubStore records saved states and can be told to start failing.
type stubStore struct {
	saved []storage.State
	fail  bool
}

func (s *stubStore) Load(context.Context) (storage.State, error) {
	return storage.State{Balances: make(map[string]int64)}, nil
}

func (s *stubStore) Save(_ context.Context, state storage.State) error {
	if s.fail {
		return fmt.Errorf("%w: disk full", storage.ErrWrite)
	}
	s.saved = append(s.saved, state)
	return nil
}

func newPersistentLedger(store storage.Store, state storage.State) Ledger {
	keeper := storage.NewKeeper(store)
	return NewPersistent(keeper, state)
}

func TestPersistentTransferSavesState(t *testing.T) {
	store := &stubStore{}
	l := newPersistentLedger(store, storage.State{})
	ctx := context.Background()

	if err := l.CreateAccount(ctx, "acct:a", 1_000); err != nil {
		t.Fatalf("create a: %v", err)
	}
	if err := l.CreateAccount(ctx, "acct:b", 0); err != nil {
		t.Fatalf("create b: %v", err)
	}
	if _, err := l.Transfer(ctx, "acct:a", "acct:b", 300, KindPeerTransfer); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	if len(store.saved) != 3 {
		t.Fatalf("expected a save per mutation, got %d", len(store.saved))
	}
	last := store.saved[len(store.saved)-1]
	if last.Balances["acct:a"] != 700 || last.Balances["acct:b"] != 300 {
		t.Fatalf("unexpected persisted balances: %+v", last.Balances)
	}
	if len(last.Transactions) != 1 || last.Transactions[0].Amount != 300 {
		t.Fatalf("unexpected persisted log: %+v", last.Transactions)
	}
}

func TestPersistentTransferRevertsOnSaveFailure(t *testing.T) {
	store := &stubStore{}
	l := newPersistentLedger(store, storage.State{})
	ctx := context.Background()

	l.CreateAccount(ctx, "acct:a", 1_000)
	l.CreateAccount(ctx, "acct:b", 0)

	store.fail = true
	if _, err := l.Transfer(ctx, "acct:a", "acct:b", 300, KindPeerTransfer); !errors.Is(err, storage.ErrWrite) {
		t.Fatalf("expected storage write error, got %v", err)
	}

	a, _ := l.Balance(ctx, "acct:a")
	b, _ := l.Balance(ctx, "acct:b")
	if a != 1_000 || b != 0 {
		t.Fatalf("failed save left mutated balances: %d/%d", a, b)
	}
	if history, _ := l.History(ctx, "acct:a"); len(history) != 0 {
		t.Fatalf("failed save left log record: %+v", history)
	}

	// The ledger keeps working once the store recovers, reusing the sequence.
	store.fail = false
	rec, err := l.Transfer(ctx, "acct:a", "acct:b", 300, KindPeerTransfer)
	if err != nil {
		t.Fatalf("transfer after recovery: %v", err)
	}
	if rec.ID != 1 {
		t.Fatalf("expected sequence reuse after revert, got %d", rec.ID)
	}
}

func TestPersistentCreateAccountRevertsOnSaveFailure(t *testing.T) {
	store := &stubStore{fail: true}
	l := newPersistentLedger(store, storage.State{})
	ctx := context.Background()

	if err := l.CreateAccount(ctx, "acct:a", 500); !errors.Is(err, storage.ErrWrite) {
		t.Fatalf("expected storage write error, got %v", err)
	}
	if _, err := l.Balance(ctx, "acct:a"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("account survived failed save: %v", err)
	}
}

func TestPersistentResumesFromLoadedState(t *testing.T) {
	state := storage.State{
		Balances: map[string]int64{"acct:a": 700, "acct:b": 300},
		Transactions: []storage.TransactionRecord{{
			ID:         1,
			SenderID:   "acct:a",
			ReceiverID: "acct:b",
			Amount:     300,
			Kind:       KindPeerTransfer,
			CreatedAt:  time.Now().UTC(),
		}},
		NextSequence: 2,
	}

	l := newPersistentLedger(&stubStore{}, state)
	ctx := context.Background()

	a, err := l.Balance(ctx, "acct:a")
	if err != nil || a != 700 {
		t.Fatalf("expected restored balance 700, got %d (%v)", a, err)
	}

	rec, err := l.Transfer(ctx, "acct:a", "acct:b", 100, KindPeerTransfer)
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if rec.ID != 2 {
		t.Fatalf("expected sequence to continue at 2, got %d", rec.ID)
	}
}
