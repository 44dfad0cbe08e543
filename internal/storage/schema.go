package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is the DDL for the commerce tables the task layer reads and
// writes. Applied by `commerceq migrate`.
const Schema = `
create extension if not exists "pgcrypto";

create table if not exists stores (
    id          uuid primary key default gen_random_uuid(),
    owner_id    uuid not null,
    name        text not null,
    description text,
    url         text,
    platform    text not null,
    is_active   boolean not null default true,
    settings    jsonb,
    created_at  timestamptz not null default now(),
    updated_at  timestamptz not null default now()
);

create table if not exists products (
    id               uuid primary key default gen_random_uuid(),
    store_id         uuid not null references stores(id) on delete cascade,
    name             text not null,
    description      text,
    sku              text,
    price            double precision not null,
    compare_at_price double precision,
    quantity         integer not null default 0,
    is_active        boolean not null default true,
    tags             text[],
    images           text[],
    created_at       timestamptz not null default now(),
    updated_at       timestamptz not null default now()
);

create table if not exists customers (
    id                uuid primary key default gen_random_uuid(),
    store_id          uuid not null references stores(id) on delete cascade,
    email             text not null,
    first_name        text,
    last_name         text,
    is_active         boolean not null default true,
    accepts_marketing boolean not null default false,
    created_at        timestamptz not null default now(),
    updated_at        timestamptz not null default now()
);

create table if not exists orders (
    id          uuid primary key default gen_random_uuid(),
    store_id    uuid not null references stores(id) on delete cascade,
    customer_id uuid references customers(id),
    status      text not null default 'pending',
    metadata    jsonb,
    created_at  timestamptz not null default now(),
    updated_at  timestamptz not null default now()
);

create table if not exists email_templates (
    id         uuid primary key default gen_random_uuid(),
    store_id   uuid not null references stores(id) on delete cascade,
    name       text not null,
    subject    text not null,
    body       text not null,
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);

create index if not exists idx_products_store on products(store_id);
create index if not exists idx_customers_store on customers(store_id);
create index if not exists idx_orders_store_created on orders(store_id, created_at);
`

func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
