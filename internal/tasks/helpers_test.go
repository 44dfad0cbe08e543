package tasks

import (
	"commerceq/internal/domain"
	"commerceq/internal/mailer"
	"commerceq/internal/marketplace"
	"context"
	"errors"
	"fmt"
	"time"
)

type fakeRepo struct {
	stores    []domain.Store
	storesErr error

	products    map[string][]domain.Product // store id -> products
	productsErr map[string]error
	featured    map[string][]domain.Product

	customers    map[string][]domain.Customer
	customersErr map[string]error

	orders    map[string][]domain.Order
	templates map[string]*domain.EmailTemplate

	orderStatuses map[string]string

	quantityWrites int
	priceWrites    int
	descWrites     int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		products:      map[string][]domain.Product{},
		productsErr:   map[string]error{},
		featured:      map[string][]domain.Product{},
		customers:     map[string][]domain.Customer{},
		customersErr:  map[string]error{},
		orders:        map[string][]domain.Order{},
		templates:     map[string]*domain.EmailTemplate{},
		orderStatuses: map[string]string{},
	}
}

func (f *fakeRepo) ActiveStores(context.Context) ([]domain.Store, error) {
	return f.stores, f.storesErr
}

func (f *fakeRepo) StoreByID(_ context.Context, id string) (*domain.Store, error) {
	for _, s := range f.stores {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeRepo) ProductsByStore(_ context.Context, storeID string) ([]domain.Product, error) {
	if err := f.productsErr[storeID]; err != nil {
		return nil, err
	}
	return f.products[storeID], nil
}

func (f *fakeRepo) FeaturedProducts(_ context.Context, storeID string, limit int) ([]domain.Product, error) {
	out := f.featured[storeID]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepo) findProduct(id string) *domain.Product {
	for storeID := range f.products {
		for i := range f.products[storeID] {
			if f.products[storeID][i].ID == id {
				return &f.products[storeID][i]
			}
		}
	}
	return nil
}

func (f *fakeRepo) UpdateProductQuantity(_ context.Context, productID string, quantity int) error {
	p := f.findProduct(productID)
	if p == nil {
		return errors.New("not found")
	}
	p.Quantity = quantity
	f.quantityWrites++
	return nil
}

func (f *fakeRepo) ApplyOptimizedPrice(_ context.Context, productID string, price float64) error {
	p := f.findProduct(productID)
	if p == nil {
		return errors.New("not found")
	}
	p.CompareAtPrice = p.Price
	p.Price = price
	f.priceWrites++
	return nil
}

func (f *fakeRepo) UpdateProductDescription(_ context.Context, productID, description string) error {
	p := f.findProduct(productID)
	if p == nil {
		return errors.New("not found")
	}
	p.Description = description
	f.descWrites++
	return nil
}

func (f *fakeRepo) MarketingCustomers(_ context.Context, storeID string) ([]domain.Customer, error) {
	if err := f.customersErr[storeID]; err != nil {
		return nil, err
	}
	return f.customers[storeID], nil
}

func (f *fakeRepo) CustomersByIDs(_ context.Context, storeID string, ids []string) ([]domain.Customer, error) {
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []domain.Customer
	for _, c := range f.customers[storeID] {
		if want[c.ID] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRepo) RecentFeedbackOrders(_ context.Context, storeID string, since time.Time) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range f.orders[storeID] {
		if o.Feedback() != "" && !o.CreatedAt.Before(since) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateOrderStatus(_ context.Context, orderID, status string) error {
	for storeID := range f.orders {
		for i := range f.orders[storeID] {
			if f.orders[storeID][i].ID == orderID {
				f.orders[storeID][i].Status = status
				f.orderStatuses[orderID] = status
				return nil
			}
		}
	}
	return errors.New("not found")
}

func (f *fakeRepo) EmailTemplateByID(_ context.Context, id string) (*domain.EmailTemplate, error) {
	if t, ok := f.templates[id]; ok {
		return t, nil
	}
	return nil, errors.New("not found")
}

type invocation struct {
	fn     string
	params map[string]any
}

type fakeInvoker struct {
	calls   []invocation
	respond func(fn string, params map[string]any) (map[string]any, error)
}

func (f *fakeInvoker) Invoke(_ context.Context, fn string, params map[string]any) (map[string]any, error) {
	f.calls = append(f.calls, invocation{fn: fn, params: params})
	if f.respond == nil {
		return map[string]any{"success": true}, nil
	}
	return f.respond(fn, params)
}

type fakeAdapter struct {
	listings []marketplace.Listing
	err      error
}

func (f fakeAdapter) ListProducts(context.Context) ([]marketplace.Listing, error) {
	return f.listings, f.err
}

type fakeMarkets struct {
	byStore map[string]marketplace.Adapter
}

func (f fakeMarkets) ForStore(store domain.Store) marketplace.Adapter {
	return f.byStore[store.ID]
}

type fakeSender struct {
	sent    []mailer.Message
	failFor map[string]bool
}

func (f *fakeSender) Send(_ context.Context, msg mailer.Message) error {
	if f.failFor[msg.To] {
		return fmt.Errorf("smtp rejected %s", msg.To)
	}
	f.sent = append(f.sent, msg)
	return nil
}

type enqueued struct {
	name string
	args map[string]any
}

type fakeEnqueuer struct {
	enqueued []enqueued
	err      error
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, name string, args map[string]any) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.enqueued = append(f.enqueued, enqueued{name: name, args: args})
	return fmt.Sprintf("task-%d", len(f.enqueued)), nil
}

func testDeps(repo *fakeRepo, inv *fakeInvoker) Deps {
	return Deps{
		Repo:                 repo,
		Agent:                inv,
		Markets:              fakeMarkets{},
		Mailer:               &fakeSender{},
		Enqueue:              (&fakeEnqueuer{}).Enqueue,
		Now:                  func() time.Time { return time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC) }, // a monday
		PriceChangeThreshold: 0.05,
	}
}

func task(name string, args map[string]any) domain.Task {
	return domain.Task{ID: "t-1", Name: name, Args: args}
}

func resultList(t map[string]any) []map[string]any {
	raw, _ := t["results"].([]map[string]any)
	return raw
}
