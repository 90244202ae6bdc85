package shopify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCheckoutURL(t *testing.T) {
	const store = "exclusivos-baez.myshopify.com"

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "rewrites custom storefront host",
			raw:  "https://custom-shop.example/cart/abc123?key=xyz",
			want: "https://exclusivos-baez.myshopify.com/cart/abc123?key=xyz",
		},
		{
			name: "canonical host passes through",
			raw:  "https://exclusivos-baez.myshopify.com/cart/c/Z2NwLXVz?key=abc",
			want: "https://exclusivos-baez.myshopify.com/cart/c/Z2NwLXVz?key=abc",
		},
		{
			name: "canonical host is never mutated",
			raw:  "http://exclusivos-baez.myshopify.com/cart/abc",
			want: "http://exclusivos-baez.myshopify.com/cart/abc",
		},
		{
			name: "forces https and drops port",
			raw:  "http://shop.example:8080/checkout/session",
			want: "https://exclusivos-baez.myshopify.com/checkout/session",
		},
		{
			name: "unparseable url salvages path",
			raw:  "https://bad host/cart/xyz",
			want: "https://exclusivos-baez.myshopify.com/cart/xyz",
		},
		{
			name: "hopeless input falls back to store root",
			raw:  "nonsense",
			want: "https://exclusivos-baez.myshopify.com/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCheckoutURL(tt.raw, store))
		})
	}
}
