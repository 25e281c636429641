package domain

import "time"

// LineItem is one (product, quantity) pair within a cart.
type LineItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Cart is an ordered list of line items, at most one per product.
type Cart struct {
	ID        string     `json:"id"`
	Items     []LineItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewCart returns an empty cart.
func NewCart(id string, now time.Time) *Cart {
	return &Cart{ID: id, Items: []LineItem{}, CreatedAt: now, UpdatedAt: now}
}

// Clone returns a deep copy of the cart.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	out := *c
	out.Items = make([]LineItem, len(c.Items))
	copy(out.Items, c.Items)
	return &out
}

// IndexOf returns the position of the line for productID, or -1.
func (c *Cart) IndexOf(productID string) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// Quantity returns the quantity on the line for productID, or 0.
func (c *Cart) Quantity(productID string) int {
	if i := c.IndexOf(productID); i >= 0 {
		return c.Items[i].Quantity
	}
	return 0
}

// TotalUnits sums quantities across all lines.
func (c *Cart) TotalUnits() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}
