package tasks

import (
	"commerceq/internal/domain"
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

func (d Deps) answerQuery(ctx context.Context, t domain.Task) (map[string]any, error) {
	query, storeID := t.StringArg("query"), t.StringArg("store_id")
	if query == "" || storeID == "" {
		return failure(errors.New("query and store_id are required")), nil
	}

	params := map[string]any{
		"query":    query,
		"store_id": storeID,
	}
	if customerID := t.StringArg("customer_id"); customerID != "" {
		params["customer_id"] = customerID
	}
	if extra := t.MapArg("context"); extra != nil {
		params["context"] = extra
	}

	res, err := d.Agent.Invoke(ctx, "customer_service_answer", params)
	if err != nil {
		return failure(err), nil
	}
	return res, nil
}

// handleComplaint forwards the complaint to the agent and, when the
// agent explicitly asks for it, writes the new order status back.
func (d Deps) handleComplaint(ctx context.Context, t domain.Task) (map[string]any, error) {
	complaint, customerID, storeID := t.StringArg("complaint"), t.StringArg("customer_id"), t.StringArg("store_id")
	if complaint == "" || customerID == "" || storeID == "" {
		return failure(errors.New("complaint, customer_id and store_id are required")), nil
	}
	orderID := t.StringArg("order_id")

	params := map[string]any{
		"complaint":   complaint,
		"customer_id": customerID,
		"store_id":    storeID,
	}
	if orderID != "" {
		params["order_id"] = orderID
	}

	res, err := d.Agent.Invoke(ctx, "customer_service_handle_complaint", params)
	if err != nil {
		return failure(err), nil
	}

	if boolVal(res["success"]) && orderID != "" {
		if actions, ok := res["actions"].(map[string]any); ok {
			if status, ok := actions["update_order_status"].(string); ok && status != "" {
				if err := d.Repo.UpdateOrderStatus(ctx, orderID, status); err != nil {
					// the complaint is handled either way; a vanished
					// order just skips the write-back
					log.Ctx(ctx).Err(err).Str("order_id", orderID).Msg("complaint: update order status")
				}
			}
		}
	}

	return res, nil
}

func (d Deps) generateResponse(ctx context.Context, t domain.Task) (map[string]any, error) {
	message, customerID, storeID := t.StringArg("message"), t.StringArg("customer_id"), t.StringArg("store_id")
	if message == "" || customerID == "" || storeID == "" {
		return failure(errors.New("message, customer_id and store_id are required")), nil
	}
	tone := t.StringArg("tone")
	if tone == "" {
		tone = "professional"
	}

	res, err := d.Agent.Invoke(ctx, "customer_service_generate_response", map[string]any{
		"message":     message,
		"customer_id": customerID,
		"store_id":    storeID,
		"tone":        tone,
	})
	if err != nil {
		return failure(err), nil
	}
	return res, nil
}

func (d Deps) analyzeSentiment(ctx context.Context, t domain.Task) (map[string]any, error) {
	text := t.StringArg("text")
	if text == "" {
		return failure(errors.New("text is required")), nil
	}

	res, err := d.Agent.Invoke(ctx, "customer_service_analyze_sentiment", map[string]any{"text": text})
	if err != nil {
		return failure(err), nil
	}
	return res, nil
}

// processCustomerFeedback aggregates sentiment over the feedback left
// on each store's orders in the trailing 30 days.
func (d Deps) processCustomerFeedback(ctx context.Context, t domain.Task) (map[string]any, error) {
	stores, err := d.Repo.ActiveStores(ctx)
	if err != nil {
		return failuref("load active stores: %v", err), nil
	}

	results := make([]map[string]any, 0, len(stores))
	for _, store := range stores {
		results = append(results, d.feedbackForStore(ctx, store))
	}

	return map[string]any{
		"success":      true,
		"stores_count": len(stores),
		"results":      results,
	}, nil
}

func (d Deps) feedbackForStore(ctx context.Context, store domain.Store) map[string]any {
	since := d.Now().AddDate(0, 0, -30)
	orders, err := d.Repo.RecentFeedbackOrders(ctx, store.ID, since)
	if err != nil {
		log.Ctx(ctx).Err(err).Str("store_id", store.ID).Msg("feedback: load orders")
		return storeFailure(store, err)
	}

	if len(orders) == 0 {
		return map[string]any{
			"store_id":   store.ID,
			"store_name": store.Name,
			"success":    true,
			"message":    "no recent feedback found",
		}
	}

	var total float64
	var analyzed, positive, negative, neutral int
	for _, o := range orders {
		res, err := d.Agent.Invoke(ctx, "customer_service_analyze_sentiment", map[string]any{
			"text": o.Feedback(),
		})
		if err != nil || !boolVal(res["success"]) {
			continue
		}
		analyzed++
		score, _ := res["sentiment_score"].(float64)
		total += score
		switch res["sentiment"] {
		case "positive":
			positive++
		case "negative":
			negative++
		case "neutral":
			neutral++
		}
	}

	if analyzed == 0 {
		return storeFailure(store, errors.New("sentiment analysis failed"))
	}

	return map[string]any{
		"store_id":            store.ID,
		"store_name":          store.Name,
		"feedback_count":      len(orders),
		"avg_sentiment_score": total / float64(analyzed),
		"positive_count":      positive,
		"negative_count":      negative,
		"neutral_count":       neutral,
		"success":             true,
	}
}
