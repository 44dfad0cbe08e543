// Package marketplace wraps the external commerce platforms a store can
// live on. The task layer only needs one capability from them: list the
// store's product listings with SKU and stock quantity.
package marketplace

import (
	"commerceq/internal/domain"
	"context"
	"net/http"
	"time"
)

// Listing is a product as the marketplace reports it.
type Listing struct {
	SKU      string
	Quantity int
}

type Adapter interface {
	ListProducts(ctx context.Context) ([]Listing, error)
}

// Factory builds an adapter from a store's credentials.
type Factory func(creds map[string]string, httpClient *http.Client) Adapter

// Registry selects the adapter variant by platform name. Stores on a
// platform with no registered factory get no adapter (a no-op for the
// sync jobs, not an error).
type Registry struct {
	factories map[string]Factory
	http      *http.Client
}

func NewRegistry() *Registry {
	r := &Registry{
		factories: make(map[string]Factory),
		http:      &http.Client{Timeout: 30 * time.Second},
	}
	r.Register("shopify", NewShopify)
	r.Register("woocommerce", NewWooCommerce)
	return r
}

func (r *Registry) Register(platform string, f Factory) {
	r.factories[platform] = f
}

// ForStore returns the adapter for the store's platform, or nil when
// the platform is unsupported.
func (r *Registry) ForStore(store domain.Store) Adapter {
	f, ok := r.factories[store.Platform]
	if !ok {
		return nil
	}
	return f(store.Settings.Credentials(), r.http)
}
