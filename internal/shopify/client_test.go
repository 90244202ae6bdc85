package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exclusivos-baez/storefront-api/internal/domain"
	apperrors "github.com/exclusivos-baez/storefront-api/pkg/errors"
	"github.com/exclusivos-baez/storefront-api/pkg/httpclient"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	doer := httpclient.New(httpclient.Config{MaxRetries: 0})
	return NewClient(Config{
		AccessToken: "test-token",
		BaseURL:     srv.URL,
	}, doer, doer, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_FetchProducts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/2024-01/graphql.json", r.URL.Path)
		assert.Equal(t, "test-token", r.Header.Get("X-Shopify-Storefront-Access-Token"))

		_, _ = w.Write([]byte(`{
			"data": {
				"products": {
					"edges": [
						{
							"node": {
								"id": "gid://shopify/Product/1",
								"title": "Jersey Retro",
								"description": "Edicion limitada",
								"handle": "jersey-retro",
								"priceRange": {"minVariantPrice": {"amount": "89.99", "currencyCode": "USD"}},
								"images": {"edges": [{"node": {"url": "https://cdn.example/jersey.jpg"}}]},
								"variants": {"edges": [{"node": {"id": "gid://shopify/ProductVariant/11", "availableForSale": true}}]}
							}
						},
						{
							"node": {
								"id": "gid://shopify/Product/2",
								"title": "Gorra",
								"description": "",
								"handle": "gorra",
								"priceRange": {"minVariantPrice": {"amount": "25", "currencyCode": "USD"}},
								"images": {"edges": []},
								"variants": {"edges": []}
							}
						}
					]
				}
			}
		}`))
	})

	products, err := client.FetchProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "gid://shopify/Product/1", products[0].ID)
	assert.Equal(t, "gid://shopify/ProductVariant/11", products[0].VariantID)
	assert.Equal(t, domain.Money(8999), products[0].Price)
	assert.True(t, products[0].AvailableForSale)

	// Missing image and variant degrade instead of failing the fetch.
	assert.Equal(t, "", products[1].VariantID)
	assert.Equal(t, "", products[1].Image)
	assert.False(t, products[1].AvailableForSale)
	assert.Equal(t, domain.Money(2500), products[1].Price)
}

func TestClient_FetchProducts_GraphQLError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"errors": [{"message": "access denied"}]}`))
	})

	_, err := client.FetchProducts(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUpstream))
}

func TestClient_FetchProducts_UpstreamStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.FetchProducts(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUpstream))
}

func TestClient_CreateCart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Variables struct {
				Input struct {
					Lines []struct {
						MerchandiseID string `json:"merchandiseId"`
						Quantity      int    `json:"quantity"`
					} `json:"lines"`
				} `json:"input"`
			} `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Variables.Input.Lines, 2)
		assert.Equal(t, "var-1", req.Variables.Input.Lines[0].MerchandiseID)
		assert.Equal(t, 2, req.Variables.Input.Lines[0].Quantity)

		_, _ = w.Write([]byte(`{
			"data": {
				"cartCreate": {
					"cart": {"id": "gid://shopify/Cart/abc", "checkoutUrl": "https://shop.example/cart/c/abc?key=xyz"},
					"userErrors": []
				}
			}
		}`))
	})

	url, err := client.CreateCart(context.Background(), []domain.CheckoutLine{
		{VariantID: "var-1", Quantity: 2},
		{VariantID: "var-2", Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example/cart/c/abc?key=xyz", url)
}

func TestClient_CreateCart_UserErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"data": {
				"cartCreate": {
					"cart": null,
					"userErrors": [{"field": ["lines"], "message": "merchandise not found"}]
				}
			}
		}`))
	})

	_, err := client.CreateCart(context.Background(), []domain.CheckoutLine{{VariantID: "bad", Quantity: 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "merchandise not found")
}

func TestClient_CreateCart_MissingPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data": {}}`))
	})

	_, err := client.CreateCart(context.Background(), []domain.CheckoutLine{{VariantID: "var-1", Quantity: 1}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUpstream))
}
