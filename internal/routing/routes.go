// Package routing maps a task's domain prefix to an isolated queue so
// that one domain's backlog cannot starve another's.
package routing

import (
	"fmt"
	"strings"
)

const (
	QueueEmail           = "email"
	QueueInventory       = "inventory"
	QueuePricing         = "pricing"
	QueueMarketing       = "marketing"
	QueueCustomerService = "customer_service"
)

var routes = map[string]string{
	"email":            QueueEmail,
	"inventory":        QueueInventory,
	"pricing":          QueuePricing,
	"marketing":        QueueMarketing,
	"customer_service": QueueCustomerService,
}

// Queues lists every queue name in a stable order, for stream/group
// initialization and for the worker's default binding.
func Queues() []string {
	return []string{QueueEmail, QueueInventory, QueuePricing, QueueMarketing, QueueCustomerService}
}

// RouteFor resolves the queue for a task name of the form
// "<domain>.<operation>". Routing is pure and deterministic.
func RouteFor(taskName string) (string, error) {
	prefix, _, ok := strings.Cut(taskName, ".")
	if !ok {
		return "", fmt.Errorf("task name %q has no domain prefix", taskName)
	}
	q, ok := routes[prefix]
	if !ok {
		return "", fmt.Errorf("no queue mapped for task domain %q", prefix)
	}
	return q, nil
}

// Validate checks that every registered task name routes to a queue.
// An unroutable name is a configuration error caught at startup, not
// at dispatch time.
func Validate(taskNames []string) error {
	for _, name := range taskNames {
		if _, err := RouteFor(name); err != nil {
			return err
		}
	}
	return nil
}
