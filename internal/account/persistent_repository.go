package account

import (
	"context"
	"sort"

	"github.com/instacash-tt/instacash/internal/storage"
)

// persistentRepository keeps accounts in memory and writes the shared
// whole-state snapshot through the keeper on every mutation. A failed save
// rolls the mutation back so the caller never sees success without
// durability.
type persistentRepository struct {
	mem    *memoryRepository
	keeper *storage.Keeper
}

// NewPersistentRepository seeds an in-memory repository from previously loaded
// state and attaches it to the keeper for snapshot persistence.
func NewPersistentRepository(keeper *storage.Keeper, records []storage.AccountRecord) Repository {
	mem := &memoryRepository{accounts: make(map[string]Account, len(records))}
	for _, rec := range records {
		mem.accounts[rec.ID] = Account{
			ID:           rec.ID,
			Identity:     rec.Identity,
			DisplayName:  rec.DisplayName,
			Kind:         Kind(rec.Kind),
			PasswordHash: rec.PasswordHash,
			CreatedAt:    rec.CreatedAt,
		}
	}

	repo := &persistentRepository{mem: mem, keeper: keeper}
	keeper.Attach(repo)
	return repo
}

func (r *persistentRepository) Create(ctx context.Context, acct Account) error {
	if err := r.mem.Create(ctx, acct); err != nil {
		return err
	}
	if err := r.keeper.Persist(ctx); err != nil {
		_ = r.mem.Delete(ctx, acct.ID)
		return err
	}
	return nil
}

// Delete removes the account and saves the shrunken state. The in-memory
// removal stands even when the save fails; deletion is itself the rollback
// path and must not resurrect the record.
func (r *persistentRepository) Delete(ctx context.Context, id string) error {
	if err := r.mem.Delete(ctx, id); err != nil {
		return err
	}
	return r.keeper.Persist(ctx)
}

func (r *persistentRepository) FindByID(ctx context.Context, id string) (Account, error) {
	return r.mem.FindByID(ctx, id)
}

func (r *persistentRepository) FindByIdentity(ctx context.Context, identity string) (Account, error) {
	return r.mem.FindByIdentity(ctx, identity)
}

// Contribute writes the account section of the shared state snapshot.
func (r *persistentRepository) Contribute(state *storage.State) {
	accounts := r.mem.all()
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	for _, acct := range accounts {
		state.Accounts = append(state.Accounts, storage.AccountRecord{
			ID:           acct.ID,
			Identity:     acct.Identity,
			DisplayName:  acct.DisplayName,
			Kind:         string(acct.Kind),
			PasswordHash: acct.PasswordHash,
			CreatedAt:    acct.CreatedAt,
		})
	}
}
