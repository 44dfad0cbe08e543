package storage

import (
	"commerceq/internal/domain"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

// Store is the pgx-backed commerce repository. The pool is shared; each
// query runs on a pool-managed connection that is released on return.
type Store struct{ db *pgxpool.Pool }

func New(db *pgxpool.Pool) *Store { return &Store{db} }

func (s *Store) ActiveStores(ctx context.Context) ([]domain.Store, error) {
	const q = `
        select id, owner_id, name, coalesce(description,''), coalesce(url,''), platform, is_active, coalesce(settings,'{}'::jsonb)
          from stores
         where is_active = true
         order by created_at asc`
	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query active stores: %w", err)
	}
	defer rows.Close()

	var out []domain.Store
	for rows.Next() {
		var st domain.Store
		if err := rows.Scan(&st.ID, &st.OwnerID, &st.Name, &st.Description, &st.URL, &st.Platform, &st.Active, &st.Settings); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *Store) StoreByID(ctx context.Context, id string) (*domain.Store, error) {
	const q = `
        select id, owner_id, name, coalesce(description,''), coalesce(url,''), platform, is_active, coalesce(settings,'{}'::jsonb)
          from stores
         where id = $1`
	var st domain.Store
	err := s.db.QueryRow(ctx, q, id).Scan(&st.ID, &st.OwnerID, &st.Name, &st.Description, &st.URL, &st.Platform, &st.Active, &st.Settings)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query store %s: %w", id, err)
	}
	return &st, nil
}

func (s *Store) ProductsByStore(ctx context.Context, storeID string) ([]domain.Product, error) {
	const q = `
        select id, store_id, name, coalesce(description,''), coalesce(sku,''), price,
               coalesce(compare_at_price,0), quantity, is_active,
               coalesce(tags,'{}'), coalesce(images,'{}')
          from products
         where store_id = $1
         order by created_at asc`
	return s.queryProducts(ctx, q, storeID)
}

// FeaturedProducts returns up to limit products tagged "featured".
func (s *Store) FeaturedProducts(ctx context.Context, storeID string, limit int) ([]domain.Product, error) {
	const q = `
        select id, store_id, name, coalesce(description,''), coalesce(sku,''), price,
               coalesce(compare_at_price,0), quantity, is_active,
               coalesce(tags,'{}'), coalesce(images,'{}')
          from products
         where store_id = $1 and tags @> array['featured']
         order by created_at asc
         limit $2`
	return s.queryProducts(ctx, q, storeID, limit)
}

func (s *Store) queryProducts(ctx context.Context, q string, args ...any) ([]domain.Product, error) {
	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.StoreID, &p.Name, &p.Description, &p.SKU, &p.Price,
			&p.CompareAtPrice, &p.Quantity, &p.Active, &p.Tags, &p.Images); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) UpdateProductQuantity(ctx context.Context, productID string, quantity int) error {
	tag, err := s.db.Exec(ctx,
		`update products set quantity = $2, updated_at = now() where id = $1`, productID, quantity)
	if err != nil {
		return fmt.Errorf("update quantity for product %s: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyOptimizedPrice overwrites the price, moving the prior price into
// compare_at_price first.
func (s *Store) ApplyOptimizedPrice(ctx context.Context, productID string, price float64) error {
	tag, err := s.db.Exec(ctx, `
        update products
           set compare_at_price = price,
               price = $2,
               updated_at = now()
         where id = $1`, productID, price)
	if err != nil {
		return fmt.Errorf("update price for product %s: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UpdateProductDescription(ctx context.Context, productID, description string) error {
	tag, err := s.db.Exec(ctx,
		`update products set description = $2, updated_at = now() where id = $1`, productID, description)
	if err != nil {
		return fmt.Errorf("update description for product %s: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarketingCustomers returns the store's active customers who opted
// into marketing email.
func (s *Store) MarketingCustomers(ctx context.Context, storeID string) ([]domain.Customer, error) {
	const q = `
        select id, store_id, email, coalesce(first_name,''), coalesce(last_name,''), is_active, accepts_marketing
          from customers
         where store_id = $1 and is_active = true and accepts_marketing = true
         order by created_at asc`
	return s.queryCustomers(ctx, q, storeID)
}

func (s *Store) CustomersByIDs(ctx context.Context, storeID string, ids []string) ([]domain.Customer, error) {
	const q = `
        select id, store_id, email, coalesce(first_name,''), coalesce(last_name,''), is_active, accepts_marketing
          from customers
         where store_id = $1 and id = any($2)`
	return s.queryCustomers(ctx, q, storeID, ids)
}

func (s *Store) queryCustomers(ctx context.Context, q string, args ...any) ([]domain.Customer, error) {
	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	var out []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.StoreID, &c.Email, &c.FirstName, &c.LastName, &c.Active, &c.AcceptsMarketing); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// RecentFeedbackOrders returns orders created since the given time that
// carry customer feedback in their metadata.
func (s *Store) RecentFeedbackOrders(ctx context.Context, storeID string, since time.Time) ([]domain.Order, error) {
	const q = `
        select id, store_id, coalesce(customer_id::text,''), status, coalesce(metadata,'{}'::jsonb), created_at
          from orders
         where store_id = $1
           and metadata ? 'customer_feedback'
           and created_at >= $2
         order by created_at desc`
	rows, err := s.db.Query(ctx, q, storeID, since)
	if err != nil {
		return nil, fmt.Errorf("query feedback orders: %w", err)
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.StoreID, &o.CustomerID, &o.Status, &o.Metadata, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Store) OrderByID(ctx context.Context, id string) (*domain.Order, error) {
	const q = `
        select id, store_id, coalesce(customer_id::text,''), status, coalesce(metadata,'{}'::jsonb), created_at
          from orders
         where id = $1`
	var o domain.Order
	err := s.db.QueryRow(ctx, q, id).Scan(&o.ID, &o.StoreID, &o.CustomerID, &o.Status, &o.Metadata, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order %s: %w", id, err)
	}
	return &o, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	tag, err := s.db.Exec(ctx,
		`update orders set status = $2, updated_at = now() where id = $1`, orderID, status)
	if err != nil {
		return fmt.Errorf("update status for order %s: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) EmailTemplateByID(ctx context.Context, id string) (*domain.EmailTemplate, error) {
	const q = `select id, store_id, name, subject, body from email_templates where id = $1`
	var t domain.EmailTemplate
	err := s.db.QueryRow(ctx, q, id).Scan(&t.ID, &t.StoreID, &t.Name, &t.Subject, &t.Body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query email template %s: %w", id, err)
	}
	return &t, nil
}
