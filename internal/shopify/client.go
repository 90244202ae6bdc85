// Package shopify is the adapter for the external commerce backend. It owns
// the Storefront GraphQL wire format and normalizes responses into domain
// types; nothing outside this package sees GraphQL.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/exclusivos-baez/storefront-api/internal/domain"
	apperrors "github.com/exclusivos-baez/storefront-api/pkg/errors"
)

// DefaultStoreDomain is the canonical commerce-platform domain for the shop.
// Checkout URLs are rewritten onto this host regardless of which storefront
// alias produced them.
const DefaultStoreDomain = "exclusivos-baez.myshopify.com"

// DefaultAPIVersion pins the Storefront API version the queries were written for.
const DefaultAPIVersion = "2024-01"

// Config holds the adapter's connection settings.
type Config struct {
	StoreDomain string
	AccessToken string
	APIVersion  string

	// BaseURL overrides the https://<StoreDomain> endpoint. Used by tests.
	BaseURL string
}

// Doer executes an HTTP request. Satisfied by httpclient.Client and
// httpclient.CircuitBreakerClient.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client talks to the Shopify Storefront GraphQL API.
//
// Catalog fetches go through fetchDoer, which may retry: the query is
// idempotent. Cart creation goes through submitDoer, which must NOT retry;
// a duplicate submission would create a second checkout.
type Client struct {
	cfg        Config
	fetchDoer  Doer
	submitDoer Doer
	logger     *slog.Logger
}

// NewClient creates a Storefront API client.
func NewClient(cfg Config, fetchDoer, submitDoer Doer, logger *slog.Logger) *Client {
	if cfg.StoreDomain == "" {
		cfg.StoreDomain = DefaultStoreDomain
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	return &Client{
		cfg:        cfg,
		fetchDoer:  fetchDoer,
		submitDoer: submitDoer,
		logger:     logger,
	}
}

// StoreDomain returns the canonical store domain this client is bound to.
func (c *Client) StoreDomain() string {
	return c.cfg.StoreDomain
}

func (c *Client) endpoint() string {
	base := c.cfg.BaseURL
	if base == "" {
		base = "https://" + c.cfg.StoreDomain
	}
	return fmt.Sprintf("%s/api/%s/graphql.json", base, c.cfg.APIVersion)
}

const productsQuery = `
{
  products(first: 20) {
    edges {
      node {
        id
        title
        description
        handle
        priceRange {
          minVariantPrice {
            amount
            currencyCode
          }
        }
        images(first: 1) {
          edges {
            node {
              url
            }
          }
        }
        variants(first: 1) {
          edges {
            node {
              id
              availableForSale
            }
          }
        }
      }
    }
  }
}`

const cartCreateMutation = `
mutation cartCreate($input: CartInput) {
  cartCreate(input: $input) {
    cart {
      id
      checkoutUrl
    }
    userErrors {
      field
      message
    }
  }
}`

type gqlRequest struct {
	Query     string `json:"query"`
	Variables any    `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

// FetchProducts returns the first page of sellable products in upstream order.
// It is idempotent and safe to retry. A failed fetch yields no products at
// all; the caller never renders a partial list.
func (c *Client) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	body, err := c.post(ctx, c.fetchDoer, gqlRequest{Query: productsQuery})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data struct {
			Products struct {
				Edges []struct {
					Node struct {
						ID          string `json:"id"`
						Title       string `json:"title"`
						Description string `json:"description"`
						Handle      string `json:"handle"`
						PriceRange  struct {
							MinVariantPrice struct {
								Amount       string `json:"amount"`
								CurrencyCode string `json:"currencyCode"`
							} `json:"minVariantPrice"`
						} `json:"priceRange"`
						Images struct {
							Edges []struct {
								Node struct {
									URL string `json:"url"`
								} `json:"node"`
							} `json:"edges"`
						} `json:"images"`
						Variants struct {
							Edges []struct {
								Node struct {
									ID               string `json:"id"`
									AvailableForSale bool   `json:"availableForSale"`
								} `json:"node"`
							} `json:"edges"`
						} `json:"variants"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"products"`
		} `json:"data"`
		Errors []gqlError `json:"errors"`
	}

	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperrors.Upstream("invalid response from commerce backend", err)
	}
	if len(resp.Errors) > 0 {
		return nil, apperrors.Upstream(resp.Errors[0].Message, nil)
	}

	products := make([]domain.Product, 0, len(resp.Data.Products.Edges))
	for _, edge := range resp.Data.Products.Edges {
		node := edge.Node

		price, err := domain.ParseMoney(node.PriceRange.MinVariantPrice.Amount)
		if err != nil {
			return nil, apperrors.Upstream(
				fmt.Sprintf("unparseable price for product %s", node.ID), err)
		}

		// Image and variant degrade rather than failing the fetch.
		var image string
		if len(node.Images.Edges) > 0 {
			image = node.Images.Edges[0].Node.URL
		}
		var variantID string
		var available bool
		if len(node.Variants.Edges) > 0 {
			variantID = node.Variants.Edges[0].Node.ID
			available = node.Variants.Edges[0].Node.AvailableForSale
		}

		products = append(products, domain.Product{
			ID:               node.ID,
			VariantID:        variantID,
			Name:             node.Title,
			Price:            price,
			CurrencyCode:     node.PriceRange.MinVariantPrice.CurrencyCode,
			Image:            image,
			Description:      node.Description,
			Handle:           node.Handle,
			AvailableForSale: available,
		})
	}

	c.logger.DebugContext(ctx, "fetched products from storefront",
		slog.Int("count", len(products)),
	)

	return products, nil
}

// CreateCart submits the checkout lines as a single cartCreate mutation and
// returns the raw checkout URL. The call either creates one checkout for all
// lines or fails as a whole; it is never retried here.
func (c *Client) CreateCart(ctx context.Context, lines []domain.CheckoutLine) (string, error) {
	type cartLine struct {
		MerchandiseID string `json:"merchandiseId"`
		Quantity      int    `json:"quantity"`
	}

	input := make([]cartLine, len(lines))
	for i, l := range lines {
		input[i] = cartLine{MerchandiseID: l.VariantID, Quantity: l.Quantity}
	}

	variables := map[string]any{
		"input": map[string]any{"lines": input},
	}

	body, err := c.post(ctx, c.submitDoer, gqlRequest{Query: cartCreateMutation, Variables: variables})
	if err != nil {
		return "", err
	}

	var resp struct {
		Data struct {
			CartCreate *struct {
				Cart *struct {
					ID          string `json:"id"`
					CheckoutURL string `json:"checkoutUrl"`
				} `json:"cart"`
				UserErrors []struct {
					Field   []string `json:"field"`
					Message string   `json:"message"`
				} `json:"userErrors"`
			} `json:"cartCreate"`
		} `json:"data"`
		Errors []gqlError `json:"errors"`
	}

	if err := json.Unmarshal(body, &resp); err != nil {
		return "", apperrors.Upstream("invalid response from commerce backend", err)
	}
	if len(resp.Errors) > 0 {
		return "", apperrors.Upstream(resp.Errors[0].Message, nil)
	}
	if resp.Data.CartCreate == nil {
		return "", apperrors.Upstream("missing cartCreate result from commerce backend", nil)
	}
	if len(resp.Data.CartCreate.UserErrors) > 0 {
		return "", apperrors.Upstream(resp.Data.CartCreate.UserErrors[0].Message, nil)
	}
	if resp.Data.CartCreate.Cart == nil || resp.Data.CartCreate.Cart.CheckoutURL == "" {
		return "", apperrors.Upstream("missing checkout URL from commerce backend", nil)
	}

	return resp.Data.CartCreate.Cart.CheckoutURL, nil
}

// post sends a GraphQL request and returns the response body. Non-2xx
// statuses are surfaced as upstream failures carrying the response text.
func (c *Client) post(ctx context.Context, doer Doer, payload gqlRequest) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("create graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Storefront-Access-Token", c.cfg.AccessToken)

	resp, err := doer.Do(ctx, req)
	if err != nil {
		return nil, apperrors.Upstream("commerce backend unreachable", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperrors.Upstream("read commerce backend response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.ErrorContext(ctx, "storefront api error",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)),
		)
		return nil, apperrors.Upstream(
			fmt.Sprintf("commerce backend returned status %d", resp.StatusCode), nil)
	}

	return body, nil
}
