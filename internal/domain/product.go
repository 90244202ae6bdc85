package domain

// Product is a sellable item normalized from the commerce backend. Products
// are immutable once fetched; the catalog is refreshed wholesale, never
// patched per-field.
type Product struct {
	ID               string `json:"id"`
	VariantID        string `json:"variantId"`
	Name             string `json:"name"`
	Price            Money  `json:"price"`
	CurrencyCode     string `json:"currencyCode"`
	Image            string `json:"image"`
	Description      string `json:"description"`
	Handle           string `json:"handle"`
	AvailableForSale bool   `json:"availableForSale"`
}
