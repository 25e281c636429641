// Package sqlite keeps the purchase ledger in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/istore/storefront/common"
	"github.com/istore/storefront/domain"
)

//go:embed schema.sql
var schemaSQL string

const currentSchemaVersion = 1

// Ledger is an append-only domain.TicketStore.
type Ledger struct {
	db *sql.DB
}

var _ domain.TicketStore = (*Ledger)(nil)

// Open creates or opens the ledger at path.
//
// The database runs in WAL mode with a single connection, since SQLite
// allows only one writer at a time.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect ledger: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		db.Close()
		return nil, fmt.Errorf("set user_version: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Append writes the ticket and its lines in one transaction.
func (l *Ledger) Append(ctx context.Context, t *domain.Ticket) (*domain.Ticket, error) {
	stored := t.Clone()
	if stored.ID == "" {
		stored.ID = common.NewID()
	}
	stored.PurchasedAt = stored.PurchasedAt.UTC()

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.NewStorageFailure("append ticket", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tickets (id, code, purchased_at, amount, purchaser, seq)
		VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM tickets))
	`,
		stored.ID,
		stored.Code,
		stored.PurchasedAt.Format(time.RFC3339Nano),
		stored.Amount.String(),
		stored.Purchaser,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.NewFailedPrecondition(common.ReasonDuplicateCode, common.ErrMsgDuplicateTicketCode)
		}
		return nil, common.NewStorageFailure("append ticket", err)
	}

	for i, line := range stored.Lines {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO ticket_lines (ticket_id, position, product_id, title, quantity, unit_price)
			VALUES (?, ?, ?, ?, ?, ?)
		`, stored.ID, i, line.ProductID, line.Title, line.Quantity, line.UnitPrice.String())
		if err != nil {
			return nil, common.NewStorageFailure("append ticket line", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, common.NewStorageFailure("append ticket", err)
	}
	return stored, nil
}

// GetByCode returns the ticket with the given purchase code.
func (l *Ledger) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, code, purchased_at, amount, purchaser FROM tickets WHERE code = ?
	`, code)
	if err != nil {
		return nil, common.NewStorageFailure("find ticket", err)
	}
	tickets, err := l.scanTickets(ctx, rows)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, common.NewNotFound(common.ReasonTicketNotFound, common.ErrMsgTicketNotFound)
	}
	return tickets[0], nil
}

// ListByPurchaser returns a purchaser's tickets in the order they were written.
func (l *Ledger) ListByPurchaser(ctx context.Context, purchaser string) ([]*domain.Ticket, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, code, purchased_at, amount, purchaser FROM tickets
		WHERE purchaser = ? ORDER BY seq
	`, purchaser)
	if err != nil {
		return nil, common.NewStorageFailure("list tickets", err)
	}
	return l.scanTickets(ctx, rows)
}

// scanTickets reads ticket headers, closes rows, then loads each ticket's lines.
func (l *Ledger) scanTickets(ctx context.Context, rows *sql.Rows) ([]*domain.Ticket, error) {
	tickets := []*domain.Ticket{}
	for rows.Next() {
		var (
			t           domain.Ticket
			purchasedAt string
			amount      string
		)
		if err := rows.Scan(&t.ID, &t.Code, &purchasedAt, &amount, &t.Purchaser); err != nil {
			rows.Close()
			return nil, common.NewStorageFailure("scan ticket", err)
		}
		at, err := time.Parse(time.RFC3339Nano, purchasedAt)
		if err != nil {
			rows.Close()
			return nil, common.NewStorageFailure("decode purchased_at", err)
		}
		t.PurchasedAt = at
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			rows.Close()
			return nil, common.NewStorageFailure("decode amount", err)
		}
		tickets = append(tickets, &t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, common.NewStorageFailure("read tickets", err)
	}
	rows.Close()

	for _, t := range tickets {
		lines, err := l.lines(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		t.Lines = lines
	}
	return tickets, nil
}

func (l *Ledger) lines(ctx context.Context, ticketID string) ([]domain.TicketLine, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT product_id, title, quantity, unit_price FROM ticket_lines
		WHERE ticket_id = ? ORDER BY position
	`, ticketID)
	if err != nil {
		return nil, common.NewStorageFailure("find ticket lines", err)
	}
	defer rows.Close()

	lines := []domain.TicketLine{}
	for rows.Next() {
		var line domain.TicketLine
		var price string
		if err := rows.Scan(&line.ProductID, &line.Title, &line.Quantity, &price); err != nil {
			return nil, common.NewStorageFailure("scan ticket line", err)
		}
		if line.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, common.NewStorageFailure("decode unit_price", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewStorageFailure("read ticket lines", err)
	}
	return lines, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
