package tasks

import (
	"commerceq/internal/domain"
	"commerceq/internal/marketplace"
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

// syncInventory reconciles local product quantities with the store's
// marketplace listing, matching by SKU. One store's failure never stops
// the others.
func (d Deps) syncInventory(ctx context.Context, t domain.Task) (map[string]any, error) {
	stores, err := d.Repo.ActiveStores(ctx)
	if err != nil {
		return failuref("load active stores: %v", err), nil
	}

	results := make([]map[string]any, 0, len(stores))
	for _, store := range stores {
		results = append(results, d.syncStoreInventory(ctx, store))
	}

	return map[string]any{
		"success":      true,
		"stores_count": len(stores),
		"results":      results,
	}, nil
}

func (d Deps) syncStoreInventory(ctx context.Context, store domain.Store) map[string]any {
	products, err := d.Repo.ProductsByStore(ctx, store.ID)
	if err != nil {
		log.Ctx(ctx).Err(err).Str("store_id", store.ID).Msg("inventory sync: load products")
		return storeFailure(store, err)
	}

	// unsupported platform yields an empty listing, a no-op
	var listings []marketplace.Listing
	if adapter := d.Markets.ForStore(store); adapter != nil {
		listings, err = adapter.ListProducts(ctx)
		if err != nil {
			log.Ctx(ctx).Err(err).Str("store_id", store.ID).Msg("inventory sync: marketplace listing")
			return storeFailure(store, err)
		}
	}

	bySKU := make(map[string]int, len(listings))
	for _, l := range listings {
		bySKU[l.SKU] = l.Quantity
	}

	updated := 0
	for _, p := range products {
		if p.SKU == "" {
			continue
		}
		qty, ok := bySKU[p.SKU]
		if !ok || qty == p.Quantity {
			continue
		}
		if err := d.Repo.UpdateProductQuantity(ctx, p.ID, qty); err != nil {
			log.Ctx(ctx).Err(err).Str("product_id", p.ID).Msg("inventory sync: update quantity")
			continue
		}
		updated++
	}

	return map[string]any{
		"store_id":       store.ID,
		"store_name":     store.Name,
		"products_count": len(products),
		"updated_count":  updated,
		"success":        true,
	}
}

func (d Deps) predictDemand(ctx context.Context, t domain.Task) (map[string]any, error) {
	productID, storeID := t.StringArg("product_id"), t.StringArg("store_id")
	if productID == "" || storeID == "" {
		return failure(errors.New("product_id and store_id are required")), nil
	}

	res, err := d.Agent.Invoke(ctx, "inventory_predict_demand", map[string]any{
		"product_id": productID,
		"store_id":   storeID,
		"days_ahead": t.IntArg("days_ahead", 30),
	})
	if err != nil {
		return failure(err), nil
	}
	return res, nil
}

func (d Deps) recommendRestock(ctx context.Context, t domain.Task) (map[string]any, error) {
	storeID := t.StringArg("store_id")
	if storeID == "" {
		return failure(errors.New("store_id is required")), nil
	}

	res, err := d.Agent.Invoke(ctx, "inventory_recommend_restock", map[string]any{
		"store_id":  storeID,
		"threshold": t.IntArg("threshold", 5),
	})
	if err != nil {
		return failure(err), nil
	}
	return res, nil
}

func (d Deps) optimizeInventory(ctx context.Context, t domain.Task) (map[string]any, error) {
	storeID := t.StringArg("store_id")
	if storeID == "" {
		return failure(errors.New("store_id is required")), nil
	}

	res, err := d.Agent.Invoke(ctx, "inventory_optimize", map[string]any{"store_id": storeID})
	if err != nil {
		return failure(err), nil
	}
	return res, nil
}
