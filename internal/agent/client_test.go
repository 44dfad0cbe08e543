package agent

import (
	"commerceq/internal/config"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return New(config.Agent{BaseURL: srv.URL, Enabled: true, Timeout: 5 * time.Second}), &hits
}

func TestInvoke_PostsParametersAndDecodesResult(t *testing.T) {
	var gotPath string
	var gotParams map[string]any
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotParams)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "optimized_price": 19.99})
	})

	res, err := c.Invoke(context.Background(), "pricing_optimize", map[string]any{"product_id": "p1"})
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/function/pricing_optimize" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotParams["product_id"] != "p1" {
		t.Fatalf("params = %v", gotParams)
	}
	if res["optimized_price"] != 19.99 {
		t.Fatalf("res = %v", res)
	}
}

func TestInvoke_NonOKStatusIsError(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "function not found", http.StatusNotFound)
	})

	_, err := c.Invoke(context.Background(), "no_such_function", nil)
	if err == nil {
		t.Fatal("want error on 404")
	}
}

func TestInvoke_DisabledMakesNoRequests(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	disabled := New(config.Agent{BaseURL: srv.URL, Enabled: false, Timeout: time.Second})
	if _, err := disabled.Invoke(context.Background(), "pricing_optimize", nil); !errors.Is(err, ErrDisabled) {
		t.Fatalf("err = %v, want ErrDisabled", err)
	}
	if _, err := disabled.Functions(context.Background()); !errors.Is(err, ErrDisabled) {
		t.Fatalf("err = %v, want ErrDisabled", err)
	}
	if hits.Load() != 0 {
		t.Fatalf("disabled client performed %d requests", hits.Load())
	}
}

func TestInvoke_TimeoutSurfacesAsError(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()

	c := New(config.Agent{BaseURL: slow.URL, Enabled: true, Timeout: 50 * time.Millisecond})
	start := time.Now()
	_, err := c.Invoke(context.Background(), "pricing_optimize", nil)
	if err == nil {
		t.Fatal("want timeout error")
	}
	if time.Since(start) > time.Second {
		t.Fatalf("timeout did not cut the call short: %v", time.Since(start))
	}
}

func TestFunctions_DecodesDescriptorList(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/functions" || r.Method != http.MethodGet {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"name": "pricing_optimize", "description": "optimize a product price"},
			{"name": "marketing_generate_campaign"},
		})
	})

	out, err := c.Functions(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0]["name"] != "pricing_optimize" {
		t.Fatalf("out = %v", out)
	}
}
