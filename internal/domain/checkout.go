package domain

// CheckoutLine is one (variant, quantity) pair submitted to the commerce
// backend. Built from the cart at submission time and never mutated after.
type CheckoutLine struct {
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

// CheckoutRequest is the ordered sequence of lines derived from a cart.
type CheckoutRequest struct {
	Lines []CheckoutLine `json:"lines"`
}

// NewCheckoutRequest flattens the cart into lines, one per entry, preserving
// entry order and quantities exactly.
func NewCheckoutRequest(cart *Cart) CheckoutRequest {
	lines := make([]CheckoutLine, len(cart.Entries))
	for i, e := range cart.Entries {
		lines[i] = CheckoutLine{VariantID: e.VariantID, Quantity: e.Quantity}
	}
	return CheckoutRequest{Lines: lines}
}

// CheckoutResult carries the hosted checkout redirect URL. It is consumed once
// by the shell to open the in-app browser, then discarded. The caller clears
// the cart only after the hand-off succeeds.
type CheckoutResult struct {
	RedirectURL string `json:"checkoutUrl"`
}
