package tasks

import (
	"commerceq/internal/domain"
	"context"
	"errors"
	"math"

	"github.com/rs/zerolog/log"
)

// updateDynamicPricing re-prices the catalog of every active store with
// dynamic pricing enabled. A price is applied only when the optimized
// value moves more than the store's change threshold, which also makes
// a redelivered run a no-op.
func (d Deps) updateDynamicPricing(ctx context.Context, t domain.Task) (map[string]any, error) {
	active, err := d.Repo.ActiveStores(ctx)
	if err != nil {
		return failuref("load active stores: %v", err), nil
	}

	var stores []domain.Store
	for _, s := range active {
		if s.Settings.Bool("dynamic_pricing_enabled") {
			stores = append(stores, s)
		}
	}

	results := make([]map[string]any, 0, len(stores))
	for _, store := range stores {
		results = append(results, d.repriceStore(ctx, store))
	}

	return map[string]any{
		"success":      true,
		"stores_count": len(stores),
		"results":      results,
	}, nil
}

func (d Deps) repriceStore(ctx context.Context, store domain.Store) map[string]any {
	products, err := d.Repo.ProductsByStore(ctx, store.ID)
	if err != nil {
		log.Ctx(ctx).Err(err).Str("store_id", store.ID).Msg("dynamic pricing: load products")
		return storeFailure(store, err)
	}

	threshold := store.Settings.Float("price_change_threshold", d.PriceChangeThreshold)

	updated := 0
	for _, p := range products {
		if p.Price <= 0 {
			continue
		}

		res, err := d.Agent.Invoke(ctx, "pricing_optimize", map[string]any{
			"product_id": p.ID,
			"store_id":   store.ID,
		})
		if err != nil {
			log.Ctx(ctx).Err(err).Str("product_id", p.ID).Msg("dynamic pricing: optimize price")
			continue
		}

		optimized, ok := res["optimized_price"].(float64)
		if !boolVal(res["success"]) || !ok {
			continue
		}

		ratio := math.Abs(optimized-p.Price) / p.Price
		if ratio <= threshold {
			continue
		}
		if err := d.Repo.ApplyOptimizedPrice(ctx, p.ID, optimized); err != nil {
			log.Ctx(ctx).Err(err).Str("product_id", p.ID).Msg("dynamic pricing: apply price")
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

func (d Deps) analyzeCompetition(ctx context.Context, t domain.Task) (map[string]any, error) {
	productID, storeID := t.StringArg("product_id"), t.StringArg("store_id")
	if productID == "" || storeID == "" {
		return failure(errors.New("product_id and store_id are required")), nil
	}

	res, err := d.Agent.Invoke(ctx, "pricing_analyze_competition", map[string]any{
		"product_id": productID,
		"store_id":   storeID,
	})
	if err != nil {
		return failure(err), nil
	}
	return res, nil
}

func (d Deps) recommendPromotions(ctx context.Context, t domain.Task) (map[string]any, error) {
	storeID := t.StringArg("store_id")
	if storeID == "" {
		return failure(errors.New("store_id is required")), nil
	}
	target := t.StringArg("target")
	if target == "" {
		target = "revenue"
	}

	res, err := d.Agent.Invoke(ctx, "pricing_recommend_promotions", map[string]any{
		"store_id": storeID,
		"target":   target,
	})
	if err != nil {
		return failure(err), nil
	}
	return res, nil
}

func (d Deps) forecastImpact(ctx context.Context, t domain.Task) (map[string]any, error) {
	productID, storeID := t.StringArg("product_id"), t.StringArg("store_id")
	newPrice := t.FloatArg("new_price", 0)
	if productID == "" || storeID == "" || newPrice <= 0 {
		return failure(errors.New("product_id, store_id and new_price are required")), nil
	}

	res, err := d.Agent.Invoke(ctx, "pricing_forecast_impact", map[string]any{
		"product_id": productID,
		"store_id":   storeID,
		"new_price":  newPrice,
	})
	if err != nil {
		return failure(err), nil
	}
	return res, nil
}
