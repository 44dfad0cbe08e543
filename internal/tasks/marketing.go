package tasks

import (
	"commerceq/internal/domain"
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
)

// sendWeeklyNewsletter fans out over the active stores with newsletter
// enabled. Stores whose configured send-day is not today are skipped
// silently; stores with no opted-in customers report a successful
// no-op. The actual send is enqueued as an email task.
func (d Deps) sendWeeklyNewsletter(ctx context.Context, t domain.Task) (map[string]any, error) {
	active, err := d.Repo.ActiveStores(ctx)
	if err != nil {
		return failuref("load active stores: %v", err), nil
	}

	var stores []domain.Store
	for _, s := range active {
		if s.Settings.Bool("newsletter_enabled") {
			stores = append(stores, s)
		}
	}

	today := strings.ToLower(d.Now().Weekday().String())

	results := make([]map[string]any, 0, len(stores))
	for _, store := range stores {
		if store.Settings.String("newsletter_day", "monday") != today {
			continue
		}
		results = append(results, d.newsletterForStore(ctx, store))
	}

	return map[string]any{
		"success":      true,
		"stores_count": len(stores),
		"results":      results,
	}, nil
}

func (d Deps) newsletterForStore(ctx context.Context, store domain.Store) map[string]any {
	customers, err := d.Repo.MarketingCustomers(ctx, store.ID)
	if err != nil {
		log.Ctx(ctx).Err(err).Str("store_id", store.ID).Msg("newsletter: load customers")
		return storeFailure(store, err)
	}

	if len(customers) == 0 {
		return map[string]any{
			"store_id":   store.ID,
			"store_name": store.Name,
			"success":    true,
			"message":    "no customers accept marketing",
		}
	}

	ids := make([]string, len(customers))
	for i, c := range customers {
		ids[i] = c.ID
	}

	taskID, err := d.Enqueue(ctx, TaskSendEmail, map[string]any{
		"template_id":  store.Settings.String("newsletter_template_id", ""),
		"store_id":     store.ID,
		"customer_ids": ids,
		"context": map[string]any{
			"newsletter_content": d.newsletterContent(ctx, store),
			"current_date":       d.Now().Format("02/01/2006"),
		},
	})
	if err != nil {
		log.Ctx(ctx).Err(err).Str("store_id", store.ID).Msg("newsletter: enqueue send")
		return storeFailure(store, err)
	}

	return map[string]any{
		"store_id":        store.ID,
		"store_name":      store.Name,
		"customers_count": len(customers),
		"success":         true,
		"email_task_id":   taskID,
	}
}

// newsletterContent asks the marketing agent for campaign copy and
// falls back to a canned payload when it fails.
func (d Deps) newsletterContent(ctx context.Context, store domain.Store) map[string]any {
	ctaURL := store.URL
	if ctaURL == "" {
		ctaURL = "#"
	}
	content := map[string]any{
		"title":   "Weekly newsletter from " + store.Name,
		"intro":   "Discover what's new at " + store.Name,
		"content": "Thank you for subscribing to our newsletter!",
		"cta":     "Visit our store",
		"cta_url": ctaURL,
	}

	res, err := d.Agent.Invoke(ctx, "marketing_generate_campaign", map[string]any{
		"store_id":  store.ID,
		"objective": "engagement",
	})
	if err != nil {
		log.Ctx(ctx).Err(err).Str("store_id", store.ID).Msg("newsletter: generate campaign, using fallback")
		return content
	}
	for _, key := range []string{"title", "intro", "content", "cta"} {
		if v, ok := res[key].(string); ok && v != "" {
			content[key] = v
		}
	}
	return content
}

// generateProductDescriptions rewrites every product description of a
// store with agent-generated copy.
func (d Deps) generateProductDescriptions(ctx context.Context, t domain.Task) (map[string]any, error) {
	storeID := t.StringArg("store_id")
	if storeID == "" {
		return failure(errors.New("store_id is required")), nil
	}
	tone := t.StringArg("tone")
	if tone == "" {
		tone = "professional"
	}

	store, err := d.Repo.StoreByID(ctx, storeID)
	if err != nil {
		return failuref("store not found: %v", err), nil
	}

	products, err := d.Repo.ProductsByStore(ctx, store.ID)
	if err != nil {
		return failuref("load products: %v", err), nil
	}

	results := make([]map[string]any, 0, len(products))
	updated := 0
	for _, p := range products {
		entry := map[string]any{"product_id": p.ID, "product_name": p.Name}

		res, err := d.Agent.Invoke(ctx, "marketing_generate_description", map[string]any{
			"product_id": p.ID,
			"store_id":   store.ID,
			"tone":       tone,
		})
		description, _ := res["description"].(string)
		switch {
		case err != nil:
			entry["success"] = false
			entry["error"] = err.Error()
		case !boolVal(res["success"]) || description == "":
			entry["success"] = false
			entry["error"] = "description generation failed"
		default:
			if err := d.Repo.UpdateProductDescription(ctx, p.ID, description); err != nil {
				entry["success"] = false
				entry["error"] = err.Error()
			} else {
				entry["success"] = true
				updated++
			}
		}
		results = append(results, entry)
	}

	return map[string]any{
		"success":        true,
		"products_count": len(products),
		"updated_count":  updated,
		"results":        results,
	}, nil
}

// generateSocialPosts builds posts for featured products and tops up
// with generic store posts when there are not enough of them.
func (d Deps) generateSocialPosts(ctx context.Context, t domain.Task) (map[string]any, error) {
	storeID := t.StringArg("store_id")
	if storeID == "" {
		return failure(errors.New("store_id is required")), nil
	}
	platform := t.StringArg("platform")
	if platform == "" {
		platform = "instagram"
	}
	count := t.IntArg("count", 5)

	store, err := d.Repo.StoreByID(ctx, storeID)
	if err != nil {
		return failuref("store not found: %v", err), nil
	}

	featured, err := d.Repo.FeaturedProducts(ctx, store.ID, count)
	if err != nil {
		return failuref("load featured products: %v", err), nil
	}

	var posts []map[string]any
	for _, p := range featured {
		res, err := d.Agent.Invoke(ctx, "marketing_generate_social_post", map[string]any{
			"product_id": p.ID,
			"store_id":   store.ID,
			"platform":   platform,
			"objective":  "sales",
		})
		if err != nil {
			log.Ctx(ctx).Err(err).Str("product_id", p.ID).Msg("social posts: generate product post")
			continue
		}
		content, _ := res["content"].(string)
		if !boolVal(res["success"]) || content == "" {
			continue
		}
		post := map[string]any{
			"product_id":   p.ID,
			"product_name": p.Name,
			"platform":     platform,
			"content":      content,
			"hashtags":     res["hashtags"],
		}
		if len(p.Images) > 0 {
			post["image_url"] = p.Images[0]
		}
		posts = append(posts, post)
	}

	for i, n := 0, count-len(posts); i < n; i++ {
		res, err := d.Agent.Invoke(ctx, "marketing_generate_social_post", map[string]any{
			"store_id":  store.ID,
			"platform":  platform,
			"objective": "engagement",
		})
		if err != nil {
			log.Ctx(ctx).Err(err).Str("store_id", store.ID).Msg("social posts: generate generic post")
			break
		}
		content, _ := res["content"].(string)
		if !boolVal(res["success"]) || content == "" {
			continue
		}
		posts = append(posts, map[string]any{
			"platform": platform,
			"content":  content,
			"hashtags": res["hashtags"],
		})
	}

	return map[string]any{
		"success":     true,
		"posts_count": len(posts),
		"posts":       posts,
	}, nil
}
