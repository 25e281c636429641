package common

import (
	"strings"

	"github.com/google/uuid"
)

// TicketCodePrefix starts every purchase code.
const TicketCodePrefix = "T-"

const ticketCodeLength = 20

// NewID returns a random identifier for carts, products and tickets.
func NewID() string {
	return uuid.NewString()
}

// NewTicketCode returns an opaque, human-readable purchase code built from
// the first 20 hex digits of a random UUID, e.g. "T-3F2A9C0B1D4E4F60A7B8".
// Those digits hold the fixed version nibble and variant bits, leaving 74
// random bits.
func NewTicketCode() string {
	id := uuid.New()
	hex := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))
	return TicketCodePrefix + hex[:ticketCodeLength]
}

// ComputeRoot derives a deterministic UUID v5 from a domain and business key.
//
// Used to give a purchaser a stable cart identifier so repeated
// CreateCart calls for the same user land on the same cart.
func ComputeRoot(domain, businessKey string) uuid.UUID {
	seed := "storefront" + domain + businessKey
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed))
}

// CartRoot computes the deterministic cart identifier for a purchaser.
func CartRoot(purchaserID string) string {
	return ComputeRoot("cart", purchaserID).String()
}
