// Copyright 2025 Certen Protocol

package schema

import (
	"fmt"
	"sort"
)

// Result is the outcome of comparing two schema objects: either fully
// compatible, or the first incompatible keyword found. The walker stops
// at the first incompatibility — it does not collect every difference,
// matching the "short-circuit" behavior the executor needs to decide
// pass/fail quickly.
type Result struct {
	Compatible bool
	Keyword    string
	Reason     string
}

func ok() Result { return Result{Compatible: true} }

func reject(keyword, reason string) Result {
	return Result{Compatible: false, Keyword: keyword, Reason: reason}
}

// CheckCompatible reports whether newSchema is a backwards-compatible
// evolution of oldSchema: every document valid under oldSchema remains
// valid under newSchema. oldSchema/newSchema are JSON-schema objects as
// produced by encoding/json.Unmarshal into map[string]any.
func CheckCompatible(oldSchema, newSchema map[string]any) (Result, error) {
	return checkObject(oldSchema, newSchema, 8)
}

func checkObject(oldSchema, newSchema map[string]any, depthBudget int) (Result, error) {
	keywords := unionKeys(oldSchema, newSchema)

	for _, keyword := range keywords {
		rule, supported := KeywordRules[keyword]
		if !supported {
			return reject(keyword, "unsupported keyword"), nil
		}

		oldVal, hadOld := oldSchema[keyword]
		newVal, hasNew := newSchema[keyword]

		switch {
		case !hadOld && hasNew:
			if !rule.AllowAddition {
				return reject(keyword, "addition not permitted"), nil
			}
		case hadOld && !hasNew:
			if !rule.AllowRemoval {
				return reject(keyword, "removal not permitted"), nil
			}
		default:
			result, err := checkPresentInBoth(keyword, rule, oldVal, newVal, depthBudget)
			if err != nil {
				return Result{}, err
			}
			if !result.Compatible {
				return result, nil
			}
		}
	}

	return ok(), nil
}

func checkPresentInBoth(keyword string, rule *Rule, oldVal, newVal any, depthBudget int) (Result, error) {
	if !rule.Container {
		if deepEqual(oldVal, newVal) {
			return ok(), nil
		}
		if rule.AllowReplacement == nil {
			return reject(keyword, "replacement not permitted"), nil
		}
		allowed, err := rule.AllowReplacement(oldVal, newVal)
		if err != nil {
			return Result{}, fmt.Errorf("schema: evaluating replacement for %q: %w", keyword, err)
		}
		if !allowed {
			return reject(keyword, "replacement value not compatible"), nil
		}
		return ok(), nil
	}

	return checkContainer(keyword, rule, oldVal, newVal, depthBudget)
}

// checkContainer handles keywords whose value is a name-keyed map of
// child subschemas ("properties", "$defs") or an ordered list of child
// subschemas ("prefixItems"). A child present in both versions is
// recursively diffed against the full keyword table (a property's
// subschema is itself a schema); a child only in the new version is
// governed by rule.Inner.AllowAddition, and a child only in the old
// version by rule.Inner.AllowRemoval.
func checkContainer(keyword string, rule *Rule, oldVal, newVal any, depthBudget int) (Result, error) {
	oldChildren, oErr := asNamedChildren(oldVal)
	newChildren, nErr := asNamedChildren(newVal)
	if oErr != nil || nErr != nil {
		return Result{}, fmt.Errorf("schema: %q is not a subschema container", keyword)
	}

	if depthBudget <= 0 {
		if !deepEqual(oldVal, newVal) {
			return reject(keyword, "nesting depth limit reached; any change rejected"), nil
		}
		return ok(), nil
	}
	nextBudget := depthBudget - 1
	if rule.MaxDepth > 0 && rule.MaxDepth-1 < nextBudget {
		nextBudget = rule.MaxDepth - 1
	}

	names := unionKeys(oldChildren, newChildren)
	for _, name := range names {
		oldChild, hadOld := oldChildren[name]
		newChild, hasNew := newChildren[name]

		switch {
		case !hadOld && hasNew:
			if rule.Inner == nil || !rule.Inner.AllowAddition {
				return reject(keyword, fmt.Sprintf("addition of %q not permitted", name)), nil
			}
		case hadOld && !hasNew:
			if rule.Inner == nil || !rule.Inner.AllowRemoval {
				return reject(keyword, fmt.Sprintf("removal of %q not permitted", name)), nil
			}
		default:
			oldChildSchema, ok1 := oldChild.(map[string]any)
			newChildSchema, ok2 := newChild.(map[string]any)
			if !ok1 || !ok2 {
				if !deepEqual(oldChild, newChild) {
					return reject(keyword, fmt.Sprintf("%q changed incompatibly", name)), nil
				}
				continue
			}
			result, err := checkObject(oldChildSchema, newChildSchema, nextBudget)
			if err != nil {
				return Result{}, err
			}
			if !result.Compatible {
				return result, nil
			}
		}
	}

	return ok(), nil
}

// asNamedChildren normalizes both map-shaped containers ("properties")
// and list-shaped containers ("prefixItems") into a name-keyed map so
// the same diff logic handles both; list indices become string keys.
func asNamedChildren(v any) (map[string]any, error) {
	switch t := v.(type) {
	case map[string]any:
		return t, nil
	case []any:
		out := make(map[string]any, len(t))
		for i, item := range t {
			out[fmt.Sprintf("%d", i)] = item
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported container shape %T", v)
	}
}

func unionKeys(a, b map[string]any) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for k := range a {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	for k := range b {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
