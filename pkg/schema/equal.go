// Copyright 2025 Certen Protocol

package schema

// deepEqual compares two decoded JSON values for structural equality.
// Numeric comparison normalizes through float64 since encoding/json
// decodes all JSON numbers that way. Objects are compared key by key, so
// key order is not significant; array order is (JSON arrays are
// ordered).
func deepEqual(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bvv, ok := bv[k]
			if !ok || !deepEqual(v, bvv) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !deepEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case float64:
		bf, ok := asFloat64(b)
		return ok && av == bf
	case nil:
		return b == nil
	default:
		return a == b
	}
}
