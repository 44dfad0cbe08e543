package marketplace

import (
	"commerceq/internal/domain"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRegistry_UnsupportedPlatformIsNil(t *testing.T) {
	r := NewRegistry()
	if a := r.ForStore(domain.Store{Platform: "etsy"}); a != nil {
		t.Fatalf("got %T, want nil for unregistered platform", a)
	}
}

func TestRegistry_BuildsAdapterFromStoreCredentials(t *testing.T) {
	r := NewRegistry()
	store := domain.Store{
		Platform: "shopify",
		Settings: domain.Settings{
			"credentials": map[string]any{
				"shop_url":     "demo.myshopify.com",
				"access_token": "shpat_xyz",
			},
		},
	}
	a := r.ForStore(store)
	if a == nil {
		t.Fatal("shopify store got no adapter")
	}
	s, ok := a.(*Shopify)
	if !ok {
		t.Fatalf("got %T", a)
	}
	if s.shopURL != "https://demo.myshopify.com" {
		t.Fatalf("shopURL = %q", s.shopURL)
	}
}

func TestShopify_ListProducts(t *testing.T) {
	var gotToken, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Shopify-Access-Token")
		gotPath = r.URL.Path
		w.Write([]byte(`{"products":[
			{"variants":[{"sku":"ABC","inventory_quantity":7}]},
			{"variants":[{"sku":"","inventory_quantity":3}]},
			{"variants":[]}
		]}`))
	}))
	defer srv.Close()

	a := NewShopify(map[string]string{"shop_url": srv.URL, "access_token": "tok"}, srv.Client())
	listings, err := a.ListProducts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if gotToken != "tok" {
		t.Fatalf("token header = %q", gotToken)
	}
	if gotPath != "/admin/api/"+shopifyAPIVersion+"/products.json" {
		t.Fatalf("path = %q", gotPath)
	}
	if len(listings) != 1 || listings[0].SKU != "ABC" || listings[0].Quantity != 7 {
		t.Fatalf("listings = %v", listings)
	}
}

func TestShopify_NonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	a := NewShopify(map[string]string{"shop_url": srv.URL}, srv.Client())
	if _, err := a.ListProducts(context.Background()); err == nil {
		t.Fatal("want error on 429")
	}
}

func TestWooCommerce_ListProducts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, _ := r.BasicAuth()
		if user != "ck" || pass != "cs" {
			t.Errorf("basic auth = %q/%q", user, pass)
		}
		if r.URL.Path != "/wp-json/wc/v3/products" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`[
			{"sku":"XYZ","stock_quantity":12},
			{"sku":"","stock_quantity":4}
		]`))
	}))
	defer srv.Close()

	a := NewWooCommerce(map[string]string{
		"url": srv.URL, "consumer_key": "ck", "consumer_secret": "cs",
	}, srv.Client())
	listings, err := a.ListProducts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(listings) != 1 || listings[0].SKU != "XYZ" || listings[0].Quantity != 12 {
		t.Fatalf("listings = %v", listings)
	}
}
