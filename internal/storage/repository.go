package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"duit/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists users and their ledger entries. All mutation
// is a single statement per call; SQLite serializes conflicting writes,
// so concurrent registrations of the same username resolve to exactly
// one winner and one uniqueness violation.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// Single writer connection; also keeps :memory: databases coherent
	// across the pool.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping verifies the underlying connection, used by the readiness probe.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateUser inserts a new user row. A storage-level uniqueness violation
// surfaces as core.ErrDuplicateUsername; there is deliberately no
// existence pre-check, which would race with concurrent registrations.
func (r *SQLiteRepository) CreateUser(ctx context.Context, username, passwordHash string) (core.User, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES (?, ?)`,
		username, passwordHash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, core.ErrDuplicateUsername
		}
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("user insert id: %w", err)
	}

	slog.InfoContext(ctx, "User created", "user_id", id, "username", username)

	return r.GetUserByID(ctx, id)
}

// GetUserByID fetches a user row by primary key.
func (r *SQLiteRepository) GetUserByID(ctx context.Context, id int64) (core.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByUsername fetches a user row by its unique username.
func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func scanUser(row *sql.Row) (core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

// CreateTransaction appends one ledger entry. The nominal amount is
// persisted as its canonical decimal string, never as a binary float.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, nominal, occurred_at, direction, description)
		 VALUES (?, ?, ?, ?, ?)`,
		t.UserID, t.Nominal.StringFixed(2), t.OccurredAt.UTC(), string(t.Direction), t.Description,
	)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction insert id: %w", err)
	}

	t.ID = id
	t.OccurredAt = t.OccurredAt.UTC()

	slog.InfoContext(ctx, "Transaction saved",
		"transaction_id", t.ID,
		"user_id", t.UserID,
		"direction", string(t.Direction),
		"nominal", t.Nominal.StringFixed(2))

	return t, nil
}

// GetTransaction returns a single entry by id.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	var (
		t           core.Transaction
		nominal     string
		direction   string
		description sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, nominal, occurred_at, direction, description
		 FROM transactions
		 WHERE id = ?`,
		id,
	).Scan(&t.ID, &t.UserID, &nominal, &t.OccurredAt, &direction, &description)
	if err == sql.ErrNoRows {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}

	d, err := decimal.NewFromString(nominal)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("decode nominal %q: %w", nominal, err)
	}
	t.Nominal = d
	t.Direction = core.Direction(direction)
	t.Description = description.String
	return t, nil
}

// ListTransactions returns every entry owned by userID, newest first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, nominal, occurred_at, direction, description
		 FROM transactions
		 WHERE user_id = ?
		 ORDER BY occurred_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// ListTransactionsInRange returns userID's entries with occurred_at in the
// half-open interval [start, end), newest first.
func (r *SQLiteRepository) ListTransactionsInRange(ctx context.Context, userID int64, start, end time.Time) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, nominal, occurred_at, direction, description
		 FROM transactions
		 WHERE user_id = ? AND occurred_at >= ? AND occurred_at < ?
		 ORDER BY occurred_at DESC, id DESC`,
		userID, start.UTC(), end.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions in range: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var entries []core.Transaction
	for rows.Next() {
		var (
			t           core.Transaction
			nominal     string
			direction   string
			description sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.UserID, &nominal, &t.OccurredAt, &direction, &description); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}

		d, err := decimal.NewFromString(nominal)
		if err != nil {
			return nil, fmt.Errorf("decode nominal %q: %w", nominal, err)
		}
		t.Nominal = d
		t.Direction = core.Direction(direction)
		t.Description = description.String

		entries = append(entries, t)
	}
	return entries, rows.Err()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
