package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const shopifyAPIVersion = "2023-07"

// Shopify lists products through the admin REST API. Listings map to
// the first variant's sku and inventory_quantity.
type Shopify struct {
	shopURL     string
	accessToken string
	http        *http.Client
}

func NewShopify(creds map[string]string, httpClient *http.Client) Adapter {
	shopURL := creds["shop_url"]
	if !strings.HasPrefix(shopURL, "http") {
		shopURL = "https://" + shopURL
	}
	return &Shopify{
		shopURL:     strings.TrimSuffix(shopURL, "/"),
		accessToken: creds["access_token"],
		http:        httpClient,
	}
}

func (s *Shopify) ListProducts(ctx context.Context) ([]Listing, error) {
	url := fmt.Sprintf("%s/admin/api/%s/products.json?limit=250", s.shopURL, shopifyAPIVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Shopify-Access-Token", s.accessToken)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("shopify list products: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("shopify list products: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Products []struct {
			Variants []struct {
				SKU               string `json:"sku"`
				InventoryQuantity int    `json:"inventory_quantity"`
			} `json:"variants"`
		} `json:"products"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode shopify products: %w", err)
	}

	var out []Listing
	for _, p := range payload.Products {
		if len(p.Variants) == 0 || p.Variants[0].SKU == "" {
			continue
		}
		out = append(out, Listing{SKU: p.Variants[0].SKU, Quantity: p.Variants[0].InventoryQuantity})
	}
	return out, nil
}
