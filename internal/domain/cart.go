package domain

import "time"

// CartEntry is one product in a cart. Quantity is always >= 1; an entry that
// would reach zero is removed instead of being kept.
type CartEntry struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

// Cart is a session-scoped set of entries, keyed by product ID with insertion
// order preserved. It is created empty at session start and mutated only by
// Add and Clear.
type Cart struct {
	SessionID string      `json:"session_id"`
	Entries   []CartEntry `json:"entries"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewCart creates an empty cart for the given session.
func NewCart(sessionID string) *Cart {
	now := time.Now().UTC()
	return &Cart{
		SessionID: sessionID,
		Entries:   []CartEntry{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Add inserts an entry with quantity 1 for a new product, or increments the
// existing entry by 1. Each call contributes exactly one unit to the total.
func (c *Cart) Add(productID, variantID string) {
	for i := range c.Entries {
		if c.Entries[i].ProductID == productID {
			c.Entries[i].Quantity++
			c.UpdatedAt = time.Now().UTC()
			return
		}
	}
	c.Entries = append(c.Entries, CartEntry{
		ProductID: productID,
		VariantID: variantID,
		Quantity:  1,
	})
	c.UpdatedAt = time.Now().UTC()
}

// Clear removes all entries in one step.
func (c *Cart) Clear() {
	c.Entries = []CartEntry{}
	c.UpdatedAt = time.Now().UTC()
}

// TotalItemCount is the sum of entry quantities, i.e. the number of Add calls
// since the last Clear. Used for the checkout button label.
func (c *Cart) TotalItemCount() int {
	var total int
	for _, e := range c.Entries {
		total += e.Quantity
	}
	return total
}

// IsEmpty reports whether the cart has no entries.
func (c *Cart) IsEmpty() bool {
	return len(c.Entries) == 0
}
