package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func newFundedLedger(t *testing.T, opts ...Option) Ledger {
	t.Helper()
	l := NewInMemory(opts...)
	ctx := context.Background()
	if err := l.CreateAccount(ctx, "acct:a", 1_000); err != nil {
		t.Fatalf("create account a: %v", err)
	}
	if err := l.CreateAccount(ctx, "acct:b", 0); err != nil {
		t.Fatalf("create account b: %v", err)
	}
	return l
}

func TestTransferMovesFundsAndLogsRecord(t *testing.T) {
	l := newFundedLedger(t)
	ctx := context.Background()

	rec, err := l.Transfer(ctx, "acct:a", "acct:b", 300, KindPeerTransfer)
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if rec.SenderID != "acct:a" || rec.ReceiverID != "acct:b" || rec.Amount != 300 {
		t.Fatalf("unexpected record: %+v", rec)
	}

	a, _ := l.Balance(ctx, "acct:a")
	b, _ := l.Balance(ctx, "acct:b")
	if a != 700 || b != 300 {
		t.Fatalf("expected 700/300, got %d/%d", a, b)
	}

	history, err := l.History(ctx, "acct:a")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].ID != rec.ID {
		t.Fatalf("expected single record in history, got %+v", history)
	}
}

func TestTransferConservesTotal(t *testing.T) {
	l := newFundedLedger(t)
	ctx := context.Background()

	for _, amount := range []int64{100, 250, 7, 43} {
		if _, err := l.Transfer(ctx, "acct:a", "acct:b", amount, KindPeerTransfer); err != nil {
			t.Fatalf("transfer %d: %v", amount, err)
		}
	}

	a, _ := l.Balance(ctx, "acct:a")
	b, _ := l.Balance(ctx, "acct:b")
	if a+b != 1_000 {
		t.Fatalf("total not conserved: %d + %d", a, b)
	}
}

func TestTransferInsufficientFundsChangesNothing(t *testing.T) {
	l := newFundedLedger(t)
	ctx := context.Background()

	if _, err := l.Transfer(ctx, "acct:a", "acct:b", 5_000, KindPeerTransfer); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	a, _ := l.Balance(ctx, "acct:a")
	b, _ := l.Balance(ctx, "acct:b")
	if a != 1_000 || b != 0 {
		t.Fatalf("balances mutated by failed transfer: %d/%d", a, b)
	}
	if history, _ := l.History(ctx, "acct:a"); len(history) != 0 {
		t.Fatalf("failed transfer was logged: %+v", history)
	}
}

func TestTransferValidation(t *testing.T) {
	l := newFundedLedger(t)
	ctx := context.Background()

	if _, err := l.Transfer(ctx, "acct:a", "acct:b", 0, KindPeerTransfer); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount for zero, got %v", err)
	}
	if _, err := l.Transfer(ctx, "acct:a", "acct:b", -5, KindPeerTransfer); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount for negative, got %v", err)
	}
	if _, err := l.Transfer(ctx, "acct:a", "acct:ghost", 10, KindPeerTransfer); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected account not found, got %v", err)
	}
	if _, err := l.Transfer(ctx, "acct:a", "acct:a", 10, KindPeerTransfer); !errors.Is(err, ErrSelfTransfer) {
		t.Fatalf("expected self transfer rejection, got %v", err)
	}
}

func TestSelfTransferPolicy(t *testing.T) {
	l := newFundedLedger(t, AllowSelfTransfer())
	ctx := context.Background()

	if _, err := l.Transfer(ctx, "acct:a", "acct:a", 10, KindPeerTransfer); err != nil {
		t.Fatalf("self transfer should be permitted by policy: %v", err)
	}
	a, _ := l.Balance(ctx, "acct:a")
	if a != 1_000 {
		t.Fatalf("self transfer changed balance: %d", a)
	}
}

func TestDuplicateAccountRejected(t *testing.T) {
	l := newFundedLedger(t)

	if err := l.CreateAccount(context.Background(), "acct:a", 0); !errors.Is(err, ErrDuplicateAccount) {
		t.Fatalf("expected duplicate account, got %v", err)
	}
}

func TestConcurrentTransfersNeverOverdraw(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	l.CreateAccount(ctx, "acct:a", 700)
	l.CreateAccount(ctx, "acct:b", 0)

	// Two simultaneous 400s from a balance of 700: exactly one can win.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = l.Transfer(ctx, "acct:a", "acct:b", 400, KindPeerTransfer)
		}(i)
	}
	wg.Wait()

	var failures int
	for _, err := range errs {
		if err != nil {
			if !errors.Is(err, ErrInsufficientFunds) {
				t.Fatalf("unexpected error: %v", err)
			}
			failures++
		}
	}
	if failures != 1 {
		t.Fatalf("expected exactly one failure, got %d", failures)
	}

	a, _ := l.Balance(ctx, "acct:a")
	b, _ := l.Balance(ctx, "acct:b")
	if a != 300 || b != 400 {
		t.Fatalf("expected 300/400, got %d/%d", a, b)
	}
}

func TestHistoryOrderAndIdempotentRead(t *testing.T) {
	l := newFundedLedger(t)
	ctx := context.Background()

	first, _ := l.Transfer(ctx, "acct:a", "acct:b", 100, KindPeerTransfer)
	second, _ := l.Transfer(ctx, "acct:a", "acct:b", 200, KindPeerTransfer)

	history, err := l.History(ctx, "acct:a")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 || history[0].ID != second.ID || history[1].ID != first.ID {
		t.Fatalf("expected most-recent-first order, got %+v", history)
	}
	if history[0].CreatedAt.Before(history[1].CreatedAt) {
		t.Fatalf("timestamps not monotonic: %+v", history)
	}

	again, err := l.History(ctx, "acct:a")
	if err != nil {
		t.Fatalf("history again: %v", err)
	}
	if len(again) != len(history) || again[0].ID != history[0].ID || again[1].ID != history[1].ID {
		t.Fatalf("history not idempotent: %+v vs %+v", history, again)
	}
}

func TestReplayReconstructsBalance(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	const initial = int64(1_000)
	l.CreateAccount(ctx, "acct:a", initial)
	l.CreateAccount(ctx, "acct:b", initial)

	l.Transfer(ctx, "acct:a", "acct:b", 300, KindPeerTransfer)
	l.Transfer(ctx, "acct:b", "acct:a", 120, KindPeerTransfer)
	l.Transfer(ctx, "acct:a", "acct:b", 5, KindMerchantCollection)

	records, err := l.Replay(ctx, "acct:a")
	if err != nil {
		t.Fatalf("replay: %v", err)
	}

	folded := initial
	var lastID int64
	for _, rec := range records {
		if rec.ID <= lastID {
			t.Fatalf("replay not chronological: %+v", records)
		}
		lastID = rec.ID
		switch "acct:a" {
		case rec.SenderID:
			folded -= rec.Amount
		case rec.ReceiverID:
			folded += rec.Amount
		}
	}

	current, _ := l.Balance(ctx, "acct:a")
	if folded != current {
		t.Fatalf("replay fold %d does not match balance %d", folded, current)
	}
}
