package storage

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrUnavailable indicates the backing store could not be read. A missing
	// store is not unavailable; Load treats it as a fresh, empty state.
	ErrUnavailable = errors.New("storage unavailable")

	// ErrWrite indicates the backing store rejected a state save. Callers must
	// not report success to the user once this is returned.
	ErrWrite = errors.New("storage write failed")
)

// AccountRecord is the persisted form of a registered account.
type AccountRecord struct {
	ID           string    `json:"id"`
	Identity     string    `json:"identity"`
	DisplayName  string    `json:"display_name"`
	Kind         string    `json:"kind"`
	PasswordHash []byte    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// TransactionRecord is the persisted form of a completed transfer.
type TransactionRecord struct {
	ID         int64     `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Amount     int64     `json:"amount"`
	Kind       string    `json:"kind"`
	CreatedAt  time.Time `json:"created_at"`
}

// State is the whole persisted world: every account, every balance and the
// full transaction log. Persistence granularity is deliberately whole-state
// per mutation, which caps this backend at low-volume single-instance
// deployments.
type State struct {
	Accounts     []AccountRecord     `json:"accounts"`
	Balances     map[string]int64    `json:"balances"`
	Transactions []TransactionRecord `json:"transactions"`
	NextSequence int64               `json:"next_sequence"`
}

// Store is the contract required of a persistence backend.
type Store interface {
	// Load reads the full state. A missing backing store yields an empty
	// state, not an error.
	Load(ctx context.Context) (State, error)
	// Save writes the full state, replacing whatever was stored before.
	Save(ctx context.Context, state State) error
}

// Source contributes one component's section of the persisted state.
type Source interface {
	Contribute(state *State)
}

// Keeper serializes whole-state saves on behalf of the components sharing a
// Store. Each mutating component attaches itself as a Source and calls
// Persist after mutating; the keeper assembles the combined state under its
// own lock so concurrent saves never interleave.
type Keeper struct {
	mu      sync.Mutex
	store   Store
	sources []Source
}

// NewKeeper wraps a store for shared use.
func NewKeeper(store Store) *Keeper {
	return &Keeper{store: store}
}

// Attach registers a state source. Not safe to call once Persist is in use;
// wiring happens at startup.
func (k *Keeper) Attach(src Source) {
	k.sources = append(k.sources, src)
}

// Persist gathers the current state from every source and saves it.
func (k *Keeper) Persist(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	state := State{Balances: make(map[string]int64)}
	for _, src := range k.sources {
		src.Contribute(&state)
	}
	return k.store.Save(ctx, state)
}
