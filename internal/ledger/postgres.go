package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLedger persists balances and the transaction log in PostgreSQL.
// Each transfer runs in one SQL transaction; both account rows are locked in
// sorted-id order so two transfers touching the same pair cannot deadlock.
type PostgresLedger struct {
	db     *pgxpool.Pool
	policy policy
}

// NewPostgresLedger constructs a Postgres-backed ledger implementation.
func NewPostgresLedger(db *pgxpool.Pool, opts ...Option) *PostgresLedger {
	return &PostgresLedger{db: db, policy: buildPolicy(opts)}
}

// CreateAccount inserts a ledger row with the initial balance.
func (l *PostgresLedger) CreateAccount(ctx context.Context, id string, initial int64) error {
	if initial < 0 {
		return ErrInvalidAmount
	}
	_, err := l.db.Exec(ctx, `INSERT INTO ledger_accounts (id, balance) VALUES ($1, $2)`, id, initial)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateAccount
		}
		return err
	}
	return nil
}

// Balance returns the stored balance for the account.
func (l *PostgresLedger) Balance(ctx context.Context, id string) (int64, error) {
	var balance int64
	err := l.db.QueryRow(ctx, `SELECT balance FROM ledger_accounts WHERE id = $1`, id).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrAccountNotFound
	}
	return balance, err
}

// Transfer moves amount between the two accounts and appends the log record
// inside a single transaction.
func (l *PostgresLedger) Transfer(ctx context.Context, fromID, toID string, amount int64, kind string) (TransactionRecord, error) {
	if amount <= 0 {
		return TransactionRecord{}, ErrInvalidAmount
	}
	if fromID == toID && !l.policy.allowSelfTransfer {
		return TransactionRecord{}, ErrSelfTransfer
	}

	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return TransactionRecord{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	// Lock both rows in a fixed global order.
	first, second := fromID, toID
	if second < first {
		first, second = second, first
	}
	if _, err := lockBalance(ctx, tx, first); err != nil {
		return TransactionRecord{}, err
	}
	if first != second {
		if _, err := lockBalance(ctx, tx, second); err != nil {
			return TransactionRecord{}, err
		}
	}

	fromBalance, err := lockBalance(ctx, tx, fromID)
	if err != nil {
		return TransactionRecord{}, err
	}
	if fromBalance < amount {
		return TransactionRecord{}, ErrInsufficientFunds
	}

	if _, err := tx.Exec(ctx, `UPDATE ledger_accounts SET balance = balance - $1 WHERE id = $2`, amount, fromID); err != nil {
		return TransactionRecord{}, err
	}
	if _, err := tx.Exec(ctx, `UPDATE ledger_accounts SET balance = balance + $1 WHERE id = $2`, amount, toID); err != nil {
		return TransactionRecord{}, err
	}

	rec := TransactionRecord{SenderID: fromID, ReceiverID: toID, Amount: amount, Kind: kind}
	var createdAt time.Time
	err = tx.QueryRow(ctx, `INSERT INTO ledger_transactions (sender_id, receiver_id, amount, kind)
        VALUES ($1, $2, $3, $4) RETURNING id, created_at`, fromID, toID, amount, kind).Scan(&rec.ID, &createdAt)
	if err != nil {
		return TransactionRecord{}, err
	}
	rec.CreatedAt = createdAt.UTC()

	if err := tx.Commit(ctx); err != nil {
		return TransactionRecord{}, err
	}
	return rec, nil
}

// History returns the account's records most recent first.
func (l *PostgresLedger) History(ctx context.Context, accountID string) ([]TransactionRecord, error) {
	return l.query(ctx, accountID, "DESC")
}

// Replay returns the account's records in chronological order.
func (l *PostgresLedger) Replay(ctx context.Context, accountID string) ([]TransactionRecord, error) {
	return l.query(ctx, accountID, "ASC")
}

func (l *PostgresLedger) query(ctx context.Context, accountID, direction string) ([]TransactionRecord, error) {
	query := `SELECT id, sender_id, receiver_id, amount, kind, created_at
        FROM ledger_transactions
        WHERE sender_id = $1 OR receiver_id = $1
        ORDER BY id ` + direction
	rows, err := l.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []TransactionRecord
	for rows.Next() {
		var rec TransactionRecord
		var createdAt time.Time
		if err := rows.Scan(&rec.ID, &rec.SenderID, &rec.ReceiverID, &rec.Amount, &rec.Kind, &createdAt); err != nil {
			return nil, err
		}
		rec.CreatedAt = createdAt.UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}

func lockBalance(ctx context.Context, tx pgx.Tx, id string) (int64, error) {
	var balance int64
	err := tx.QueryRow(ctx, `SELECT balance FROM ledger_accounts WHERE id = $1 FOR UPDATE`, id).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrAccountNotFound
	}
	return balance, err
}
