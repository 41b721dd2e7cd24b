package transport

import (
	"encoding/json"
	"testing"
)

func TestOptionalBoolAbsentField(t *testing.T) {
	var payload struct {
		IsBooked OptionalBool `json:"isBooked"`
	}
	if err := json.Unmarshal([]byte(`{}`), &payload); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if payload.IsBooked.Set {
		t.Fatal("absent field must not be marked set")
	}
}

func TestOptionalBoolExplicitFalse(t *testing.T) {
	var payload struct {
		IsBooked OptionalBool `json:"isBooked"`
	}
	if err := json.Unmarshal([]byte(`{"isBooked": false}`), &payload); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !payload.IsBooked.Set {
		t.Fatal("explicit false must be marked set")
	}
	if payload.IsBooked.Value == nil || *payload.IsBooked.Value {
		t.Fatal("expected value false")
	}
}

func TestOptionalBoolExplicitTrue(t *testing.T) {
	var payload struct {
		IsBooked OptionalBool `json:"isBooked"`
	}
	if err := json.Unmarshal([]byte(`{"isBooked": true}`), &payload); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !payload.IsBooked.Set || payload.IsBooked.Value == nil || !*payload.IsBooked.Value {
		t.Fatal("expected explicit true")
	}
}

func TestOptionalBoolNull(t *testing.T) {
	var payload struct {
		IsBooked OptionalBool `json:"isBooked"`
	}
	if err := json.Unmarshal([]byte(`{"isBooked": null}`), &payload); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !payload.IsBooked.Set {
		t.Fatal("null must be marked set")
	}
	if payload.IsBooked.Value != nil {
		t.Fatal("null must clear the value")
	}
}

func TestOptionalBoolRejectsNonBool(t *testing.T) {
	var payload struct {
		IsBooked OptionalBool `json:"isBooked"`
	}
	if err := json.Unmarshal([]byte(`{"isBooked": "yes"}`), &payload); err == nil {
		t.Fatal("expected error for non-boolean value")
	}
}
