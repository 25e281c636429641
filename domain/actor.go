package domain

import "context"

// Roles recognised by catalog permission checks.
const (
	RoleAdmin   = "admin"
	RolePremium = "premium"
	RoleUser    = "user"
)

// Actor is the caller performing a catalog change. ID is the owner key
// stored on products the actor creates.
type Actor struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// IsAdmin reports whether the actor has full catalog rights.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// ProductRemoval tells a product owner their listing was taken down.
type ProductRemoval struct {
	Product Product `json:"product"`
	Owner   string  `json:"owner"`
	By      string  `json:"by"`
}

// RemovalNotifier receives product removals. Like Notifier it must not block.
type RemovalNotifier interface {
	NotifyProductRemoved(ctx context.Context, removal ProductRemoval)
}
