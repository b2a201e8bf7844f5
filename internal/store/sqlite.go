package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ OrderJournal = (*SQLiteJournal)(nil)

const ordersSchema = `
CREATE TABLE IF NOT EXISTS orders (
	correlation_id TEXT NOT NULL,
	account_no     TEXT NOT NULL,
	code           TEXT NOT NULL,
	side           TEXT NOT NULL,
	qty            INTEGER NOT NULL,
	price          INTEGER NOT NULL,
	price_mode     TEXT NOT NULL,
	order_no       TEXT NOT NULL,
	status         TEXT NOT NULL,
	filled_qty     INTEGER NOT NULL,
	avg_price      INTEGER NOT NULL,
	submitted_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_orders_account ON orders(account_no, submitted_at);
`

// SQLiteJournal implements OrderJournal backed by a SQLite database.
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLiteJournal opens (or creates) the journal database at dbPath and
// ensures the schema exists.
func NewSQLiteJournal(dbPath string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening journal db: %w", err)
	}
	if _, err := db.Exec(ordersSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating journal schema: %w", err)
	}
	return &SQLiteJournal{db: db}, nil
}

// Close closes the underlying database connection.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

// SaveOrder appends one order submission to the journal.
func (j *SQLiteJournal) SaveOrder(ctx context.Context, rec OrderRecord) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO orders (
			correlation_id, account_no, code, side, qty, price, price_mode,
			order_no, status, filled_qty, avg_price, submitted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.CorrelationID, rec.AccountNo, rec.Code, rec.Side, rec.Qty,
		rec.Price, rec.PriceMode, rec.OrderNo, rec.Status, rec.FilledQty,
		rec.AvgPrice, rec.SubmittedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("inserting order %s: %w", rec.CorrelationID, err)
	}
	return nil
}

// ListOrders returns journaled orders for an account, newest first.
func (j *SQLiteJournal) ListOrders(ctx context.Context, accountNo string) ([]OrderRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT correlation_id, account_no, code, side, qty, price, price_mode,
		       order_no, status, filled_qty, avg_price, submitted_at
		FROM orders
		WHERE account_no = ?
		ORDER BY submitted_at DESC`, accountNo)
	if err != nil {
		return nil, fmt.Errorf("querying orders for %s: %w", accountNo, err)
	}
	defer rows.Close()

	var records []OrderRecord
	for rows.Next() {
		var rec OrderRecord
		var submittedMs int64
		if err := rows.Scan(
			&rec.CorrelationID, &rec.AccountNo, &rec.Code, &rec.Side, &rec.Qty,
			&rec.Price, &rec.PriceMode, &rec.OrderNo, &rec.Status,
			&rec.FilledQty, &rec.AvgPrice, &submittedMs,
		); err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		rec.SubmittedAt = time.UnixMilli(submittedMs).UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}
