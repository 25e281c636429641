// Package notify delivers purchase confirmations and product removal notices
// off the request path: a Dispatcher queues them, a Publisher puts them on
// Kafka and a Mailer turns them into email.
package notify

import (
	"context"

	"github.com/istore/storefront/domain"
)

// Notification kinds, used as event types and metric labels.
const (
	KindPurchaseConfirmed = "PurchaseConfirmed"
	KindProductRemoved    = "ProductRemoved"
)

// Sink delivers notifications somewhere. Unlike domain.Notifier it may block
// and report failures; the Dispatcher shields callers from both.
type Sink interface {
	PurchaseConfirmed(ctx context.Context, purchase domain.Purchase) error
	ProductRemoved(ctx context.Context, removal domain.ProductRemoval) error
}
