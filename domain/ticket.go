package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchaser identifies who settles a cart. Authentication happens upstream.
type Purchaser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// TicketLine is a fulfilled line with its settlement-time price.
type TicketLine struct {
	ProductID string          `json:"product_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Subtotal returns UnitPrice × Quantity.
func (l TicketLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Ticket is the immutable purchase record produced by one settlement.
type Ticket struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	PurchasedAt time.Time       `json:"purchased_at"`
	Amount      decimal.Decimal `json:"amount"`
	Purchaser   string          `json:"purchaser"`
	Lines       []TicketLine    `json:"lines"`
}

// Clone returns a deep copy of the ticket.
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	out := *t
	out.Lines = make([]TicketLine, len(t.Lines))
	copy(out.Lines, t.Lines)
	return &out
}

// Purchase is handed to the notifier once a settlement completes.
type Purchase struct {
	Purchaser Purchaser    `json:"purchaser"`
	Ticket    Ticket       `json:"ticket"`
	Items     []TicketLine `json:"items"`
}
