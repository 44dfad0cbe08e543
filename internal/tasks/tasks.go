// Package tasks holds every task handler the workers can execute:
// periodic batch fan-out jobs over the active stores and thin
// single-item wrappers around the agent capability.
package tasks

import (
	"commerceq/internal/domain"
	"commerceq/internal/mailer"
	"commerceq/internal/marketplace"
	"commerceq/internal/routing"
	"context"
	"fmt"
	"time"
)

const (
	TaskSyncInventory     = "inventory.sync_inventory"
	TaskPredictDemand     = "inventory.predict_demand"
	TaskRecommendRestock  = "inventory.recommend_restock"
	TaskOptimizeInventory = "inventory.optimize_inventory"

	TaskUpdateDynamicPricing = "pricing.update_dynamic_pricing"
	TaskAnalyzeCompetition   = "pricing.analyze_competition"
	TaskRecommendPromotions  = "pricing.recommend_promotions"
	TaskForecastImpact       = "pricing.forecast_impact"

	TaskSendWeeklyNewsletter        = "marketing.send_weekly_newsletter"
	TaskGenerateProductDescriptions = "marketing.generate_product_descriptions"
	TaskGenerateSocialPosts         = "marketing.generate_social_posts"

	TaskAnswerQuery             = "customer_service.answer_query"
	TaskHandleComplaint         = "customer_service.handle_complaint"
	TaskGenerateResponse        = "customer_service.generate_response"
	TaskAnalyzeSentiment        = "customer_service.analyze_sentiment"
	TaskProcessCustomerFeedback = "customer_service.process_customer_feedback"

	TaskSendEmail      = "email.send_email"
	TaskSendNewsletter = "email.send_newsletter"
)

func Names() []string {
	return []string{
		TaskSyncInventory, TaskPredictDemand, TaskRecommendRestock, TaskOptimizeInventory,
		TaskUpdateDynamicPricing, TaskAnalyzeCompetition, TaskRecommendPromotions, TaskForecastImpact,
		TaskSendWeeklyNewsletter, TaskGenerateProductDescriptions, TaskGenerateSocialPosts,
		TaskAnswerQuery, TaskHandleComplaint, TaskGenerateResponse, TaskAnalyzeSentiment, TaskProcessCustomerFeedback,
		TaskSendEmail, TaskSendNewsletter,
	}
}

// Registered reports whether name is a known task.
func Registered(name string) bool {
	for _, n := range Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Handler executes one task. The returned map is the task result stored
// for the caller; a non-nil error hands the task back to the queue's
// retry machinery. Agent failures are embedded in the result instead of
// returned, so the queue never retries them.
type Handler func(ctx context.Context, t domain.Task) (map[string]any, error)

// Repository is the slice of the commerce store the task layer needs.
type Repository interface {
	ActiveStores(ctx context.Context) ([]domain.Store, error)
	StoreByID(ctx context.Context, id string) (*domain.Store, error)
	ProductsByStore(ctx context.Context, storeID string) ([]domain.Product, error)
	FeaturedProducts(ctx context.Context, storeID string, limit int) ([]domain.Product, error)
	UpdateProductQuantity(ctx context.Context, productID string, quantity int) error
	ApplyOptimizedPrice(ctx context.Context, productID string, price float64) error
	UpdateProductDescription(ctx context.Context, productID, description string) error
	MarketingCustomers(ctx context.Context, storeID string) ([]domain.Customer, error)
	CustomersByIDs(ctx context.Context, storeID string, ids []string) ([]domain.Customer, error)
	RecentFeedbackOrders(ctx context.Context, storeID string, since time.Time) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string) error
	EmailTemplateByID(ctx context.Context, id string) (*domain.EmailTemplate, error)
}

type Invoker interface {
	Invoke(ctx context.Context, functionName string, parameters map[string]any) (map[string]any, error)
}

type Markets interface {
	ForStore(store domain.Store) marketplace.Adapter
}

type EnqueueFunc func(ctx context.Context, name string, args map[string]any) (string, error)

type Deps struct {
	Repo    Repository
	Agent   Invoker
	Markets Markets
	Mailer  mailer.Sender
	Enqueue EnqueueFunc

	// defaulted in NewRegistry
	Now                  func() time.Time
	PriceChangeThreshold float64
}

type Registry struct {
	handlers map[string]Handler
}

// NewRegistry binds every task name to its handler and verifies the
// routing table covers all of them.
func NewRegistry(d Deps) (*Registry, error) {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.PriceChangeThreshold == 0 {
		d.PriceChangeThreshold = 0.05
	}

	handlers := map[string]Handler{
		TaskSyncInventory:     d.syncInventory,
		TaskPredictDemand:     d.predictDemand,
		TaskRecommendRestock:  d.recommendRestock,
		TaskOptimizeInventory: d.optimizeInventory,

		TaskUpdateDynamicPricing: d.updateDynamicPricing,
		TaskAnalyzeCompetition:   d.analyzeCompetition,
		TaskRecommendPromotions:  d.recommendPromotions,
		TaskForecastImpact:       d.forecastImpact,

		TaskSendWeeklyNewsletter:        d.sendWeeklyNewsletter,
		TaskGenerateProductDescriptions: d.generateProductDescriptions,
		TaskGenerateSocialPosts:         d.generateSocialPosts,

		TaskAnswerQuery:             d.answerQuery,
		TaskHandleComplaint:         d.handleComplaint,
		TaskGenerateResponse:        d.generateResponse,
		TaskAnalyzeSentiment:        d.analyzeSentiment,
		TaskProcessCustomerFeedback: d.processCustomerFeedback,

		TaskSendEmail:      d.sendEmail,
		TaskSendNewsletter: d.sendNewsletter,
	}

	names := make([]string, 0, len(handlers))
	for name := range handlers {
		names = append(names, name)
	}
	if err := routing.Validate(names); err != nil {
		return nil, fmt.Errorf("task registry: %w", err)
	}

	return &Registry{handlers: handlers}, nil
}

func (r *Registry) Handler(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

func (r *Registry) Has(name string) bool {
	_, ok := r.handlers[name]
	return ok
}

// failure is the uniform failure envelope of every handler.
func failure(err error) map[string]any {
	return map[string]any{"success": false, "error": err.Error()}
}

func failuref(format string, args ...any) map[string]any {
	return failure(fmt.Errorf(format, args...))
}

// storeFailure records one store's failure inside a batch result
// without aborting its siblings.
func storeFailure(store domain.Store, err error) map[string]any {
	return map[string]any{
		"store_id":   store.ID,
		"store_name": store.Name,
		"success":    false,
		"error":      err.Error(),
	}
}

func boolVal(v any) bool {
	b, _ := v.(bool)
	return b
}
