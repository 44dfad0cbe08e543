package domain

import (
	"strings"
	"time"
)

// Settings is the free-form per-store configuration blob (JSON column).
// Feature flags may be stored as booleans or as "true"/"false" strings
// depending on which integration wrote them, so Bool accepts both.
type Settings map[string]any

func (s Settings) Bool(key string) bool {
	switch v := s[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	default:
		return false
	}
}

func (s Settings) String(key, def string) string {
	if v, ok := s[key].(string); ok && v != "" {
		return v
	}
	return def
}

func (s Settings) Float(key string, def float64) float64 {
	switch v := s[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return def
	}
}

// Credentials returns the marketplace credentials map, with every value
// coerced to string.
func (s Settings) Credentials() map[string]string {
	raw, _ := s["credentials"].(map[string]any)
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if str, ok := v.(string); ok {
			out[k] = str
		}
	}
	return out
}

type Store struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	URL         string
	Platform    string
	Active      bool
	Settings    Settings
}

type Product struct {
	ID             string
	StoreID        string
	Name           string
	Description    string
	SKU            string
	Price          float64
	CompareAtPrice float64
	Quantity       int
	Active         bool
	Tags           []string
	Images         []string
}

type Customer struct {
	ID               string
	StoreID          string
	Email            string
	FirstName        string
	LastName         string
	Active           bool
	AcceptsMarketing bool
}

func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

type Order struct {
	ID         string
	StoreID    string
	CustomerID string
	Status     string
	Metadata   map[string]any
	CreatedAt  time.Time
}

// Feedback returns the customer feedback text attached to the order
// metadata, or "" when none was left.
func (o Order) Feedback() string {
	v, _ := o.Metadata["customer_feedback"].(string)
	return v
}

type EmailTemplate struct {
	ID      string
	StoreID string
	Name    string
	Subject string
	Body    string
}
