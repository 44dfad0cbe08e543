package domain

import "time"

type TaskStatus string

const (
	StatusPending TaskStatus = "pending"
	StatusStarted TaskStatus = "started"
	StatusRetry   TaskStatus = "retry"
	StatusSuccess TaskStatus = "success"
	StatusFailure TaskStatus = "failure"
)

// Task is a named, durable unit of work. Name is "<domain>.<operation>",
// the prefix decides the queue it is routed to.
type Task struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Queue       string         `json:"queue"`
	Args        map[string]any `json:"args"`
	Attempts    int            `json:"attempts"`
	MaxAttempts int            `json:"max_attempts"`
	Status      TaskStatus     `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	NextRunAt   time.Time      `json:"next_run_at,omitzero"`
	Result      map[string]any `json:"result,omitempty"`
}

// StringArg returns the named argument as a string, or "" when absent
// or not a string.
func (t Task) StringArg(key string) string {
	v, _ := t.Args[key].(string)
	return v
}

// FloatArg returns the named argument as a float64. JSON numbers always
// arrive as float64 after unmarshalling.
func (t Task) FloatArg(key string, def float64) float64 {
	switch v := t.Args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return def
	}
}

func (t Task) IntArg(key string, def int) int {
	switch v := t.Args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

// StringSliceArg returns the named argument as a string slice, accepting
// both []string (in-process enqueue) and []any (decoded JSON).
func (t Task) StringSliceArg(key string) []string {
	switch v := t.Args[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func (t Task) MapArg(key string) map[string]any {
	v, _ := t.Args[key].(map[string]any)
	return v
}
