package domain

import "testing"

func TestTaskArgAccessors(t *testing.T) {
	task := Task{Args: map[string]any{
		"store_id":   "s1",
		"days_ahead": float64(30), // numbers decode as float64
		"count":      5,
		"threshold":  0.25,
		"ids_json":   []any{"a", "b", 3},
		"ids_native": []string{"x", "y"},
		"context":    map[string]any{"k": "v"},
	}}

	if got := task.StringArg("store_id"); got != "s1" {
		t.Errorf("StringArg = %q", got)
	}
	if got := task.StringArg("missing"); got != "" {
		t.Errorf("missing StringArg = %q", got)
	}
	if got := task.IntArg("days_ahead", 7); got != 30 {
		t.Errorf("IntArg float = %d", got)
	}
	if got := task.IntArg("count", 7); got != 5 {
		t.Errorf("IntArg int = %d", got)
	}
	if got := task.IntArg("missing", 7); got != 7 {
		t.Errorf("IntArg default = %d", got)
	}
	if got := task.FloatArg("threshold", 0); got != 0.25 {
		t.Errorf("FloatArg = %v", got)
	}
	if got := task.StringSliceArg("ids_json"); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("StringSliceArg json = %v", got)
	}
	if got := task.StringSliceArg("ids_native"); len(got) != 2 || got[1] != "y" {
		t.Errorf("StringSliceArg native = %v", got)
	}
	if got := task.MapArg("context"); got["k"] != "v" {
		t.Errorf("MapArg = %v", got)
	}
	if got := task.MapArg("store_id"); got != nil {
		t.Errorf("MapArg on non-map = %v", got)
	}
}

func TestSettingsBool(t *testing.T) {
	s := Settings{
		"native":  true,
		"stringy": "True",
		"off":     "false",
		"junk":    42,
	}
	if !s.Bool("native") || !s.Bool("stringy") {
		t.Error("true values not recognized")
	}
	if s.Bool("off") || s.Bool("junk") || s.Bool("missing") {
		t.Error("false values not recognized")
	}
}

func TestSettingsCredentials(t *testing.T) {
	s := Settings{"credentials": map[string]any{
		"shop_url":     "demo.myshopify.com",
		"access_token": "tok",
		"retries":      3, // non-strings are dropped
	}}
	creds := s.Credentials()
	if creds["shop_url"] != "demo.myshopify.com" || creds["access_token"] != "tok" {
		t.Fatalf("creds = %v", creds)
	}
	if _, ok := creds["retries"]; ok {
		t.Fatal("non-string credential kept")
	}
}

func TestCustomerFullName(t *testing.T) {
	if got := (Customer{FirstName: "Ada", LastName: "Lovelace"}).FullName(); got != "Ada Lovelace" {
		t.Errorf("FullName = %q", got)
	}
	if got := (Customer{FirstName: "Ada"}).FullName(); got != "Ada" {
		t.Errorf("FullName without last = %q", got)
	}
}

func TestOrderFeedback(t *testing.T) {
	o := Order{Metadata: map[string]any{"customer_feedback": "great"}}
	if o.Feedback() != "great" {
		t.Errorf("Feedback = %q", o.Feedback())
	}
	if (Order{}).Feedback() != "" {
		t.Error("missing metadata must read as empty feedback")
	}
}
