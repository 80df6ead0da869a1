// Copyright 2025 Certen Protocol
//
// Schema Compatibility Tests

package schema

import "testing"

func mustCompatible(t *testing.T, old, new map[string]any) {
	t.Helper()
	result, err := CheckCompatible(old, new)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Compatible {
		t.Fatalf("expected compatible, got incompatible at %q: %s", result.Keyword, result.Reason)
	}
}

func mustIncompatible(t *testing.T, old, new map[string]any) Result {
	t.Helper()
	result, err := CheckCompatible(old, new)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Compatible {
		t.Fatalf("expected incompatible, got compatible")
	}
	return result
}

func TestCheckCompatible_MaximumIncreaseAllowed(t *testing.T) {
	mustCompatible(t,
		map[string]any{"maximum": float64(1)},
		map[string]any{"maximum": float64(2)},
	)
}

func TestCheckCompatible_MaximumDecreaseRejected(t *testing.T) {
	r := mustIncompatible(t,
		map[string]any{"maximum": float64(2)},
		map[string]any{"maximum": float64(1)},
	)
	if r.Keyword != "maximum" {
		t.Errorf("expected rejection at maximum, got %q", r.Keyword)
	}
}

func TestCheckCompatible_MaximumRemovalAllowed(t *testing.T) {
	mustCompatible(t,
		map[string]any{"maximum": float64(1)},
		map[string]any{},
	)
}

func TestCheckCompatible_AdditionalPropertiesReplacementRejected(t *testing.T) {
	mustIncompatible(t,
		map[string]any{"additionalProperties": false},
		map[string]any{"additionalProperties": true},
	)
}

func TestCheckCompatible_PropertyAdditionAllowed(t *testing.T) {
	mustCompatible(t,
		map[string]any{"properties": map[string]any{"foo": map[string]any{}}},
		map[string]any{"properties": map[string]any{"foo": map[string]any{}, "bar": map[string]any{}}},
	)
}

func TestCheckCompatible_PropertyRemovalRejected(t *testing.T) {
	mustIncompatible(t,
		map[string]any{"properties": map[string]any{"foo": map[string]any{}, "bar": map[string]any{}}},
		map[string]any{"properties": map[string]any{"foo": map[string]any{}}},
	)
}

func TestCheckCompatible_SiblingPropertyNamedAfterAKeywordAllowed(t *testing.T) {
	// "type" here is a property name, not the "type" keyword — properties
	// addition is governed purely by name, independent of what the name
	// happens to spell.
	mustCompatible(t,
		map[string]any{"properties": map[string]any{"foo": map[string]any{}}},
		map[string]any{"properties": map[string]any{"foo": map[string]any{}, "type": map[string]any{}}},
	)
}

func TestCheckCompatible_UnsupportedKeywordRejected(t *testing.T) {
	r := mustIncompatible(t,
		map[string]any{},
		map[string]any{"totallyMadeUpKeyword": true},
	)
	if r.Reason != "unsupported keyword" {
		t.Errorf("expected unsupported keyword rejection, got %q", r.Reason)
	}
}

func TestCheckCompatible_RequiredAdditionRejected(t *testing.T) {
	mustIncompatible(t,
		map[string]any{"required": []any{"a"}},
		map[string]any{"required": []any{"a", "b"}},
	)
}

func TestCheckCompatible_RequiredRemovalAllowed(t *testing.T) {
	mustCompatible(t,
		map[string]any{"required": []any{"a", "b"}},
		map[string]any{"required": []any{"a"}},
	)
}
