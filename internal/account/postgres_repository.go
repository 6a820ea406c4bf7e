package account

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed account repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new account.
func (r *PostgresRepository) Create(ctx context.Context, acct Account) error {
	_, err := r.db.Exec(ctx, `INSERT INTO accounts (id, identity, display_name, kind, password_hash, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		acct.ID, acct.Identity, acct.DisplayName, string(acct.Kind), acct.PasswordHash, acct.CreatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// FindByID fetches an account by its derived identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Account, error) {
	return r.scanOne(r.db.QueryRow(ctx, `SELECT id, identity, display_name, kind, password_hash, created_at
        FROM accounts WHERE id = $1`, id))
}

// FindByIdentity fetches an account by its normalized contact identity.
func (r *PostgresRepository) FindByIdentity(ctx context.Context, identity string) (Account, error) {
	return r.scanOne(r.db.QueryRow(ctx, `SELECT id, identity, display_name, kind, password_hash, created_at
        FROM accounts WHERE identity = $1`, NormalizeIdentity(identity)))
}

// Delete removes an account row.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	return err
}

func (r *PostgresRepository) scanOne(row pgx.Row) (Account, error) {
	var (
		acct      Account
		kind      string
		createdAt time.Time
	)
	if err := row.Scan(&acct.ID, &acct.Identity, &acct.DisplayName, &kind, &acct.PasswordHash, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	acct.Kind = Kind(kind)
	acct.CreatedAt = createdAt.UTC()
	return acct, nil
}
