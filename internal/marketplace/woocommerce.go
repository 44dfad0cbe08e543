package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const wooAPIVersion = "wc/v3"

// WooCommerce lists products through the WordPress REST API with
// consumer key/secret basic auth.
type WooCommerce struct {
	url            string
	consumerKey    string
	consumerSecret string
	http           *http.Client
}

func NewWooCommerce(creds map[string]string, httpClient *http.Client) Adapter {
	return &WooCommerce{
		url:            strings.TrimSuffix(creds["url"], "/"),
		consumerKey:    creds["consumer_key"],
		consumerSecret: creds["consumer_secret"],
		http:           httpClient,
	}
}

func (w *WooCommerce) ListProducts(ctx context.Context) ([]Listing, error) {
	url := fmt.Sprintf("%s/wp-json/%s/products?per_page=100", w.url, wooAPIVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(w.consumerKey, w.consumerSecret)

	resp, err := w.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("woocommerce list products: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("woocommerce list products: unexpected status %d", resp.StatusCode)
	}

	var payload []struct {
		SKU           string `json:"sku"`
		StockQuantity int    `json:"stock_quantity"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode woocommerce products: %w", err)
	}

	var out []Listing
	for _, p := range payload {
		if p.SKU == "" {
			continue
		}
		out = append(out, Listing{SKU: p.SKU, Quantity: p.StockQuantity})
	}
	return out, nil
}
