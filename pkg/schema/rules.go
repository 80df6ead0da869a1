// Copyright 2025 Certen Protocol
//
// Package schema implements the keyword-level JSON-schema compatibility
// check that gates data-contract upgrades (§4.E): a proposed schema
// change is accepted only if every keyword-level difference between the
// old and new schema is explicitly allowed by that keyword's
// CompatibilityRule. Unknown keywords are always incompatible.
package schema

// ReplacementCallback decides whether replacing a keyword's value with
// a new one is compatible, given both values already present. It is
// nil when replacement is categorically disallowed.
type ReplacementCallback func(oldValue, newValue any) (bool, error)

// Rule governs one schema keyword.
type Rule struct {
	AllowAddition    bool
	AllowRemoval     bool
	AllowReplacement ReplacementCallback

	// Container marks a keyword whose value is a name-keyed map of
	// child subschemas (e.g. "properties") or an ordered list of child
	// subschemas (e.g. "prefixItems"). When true, Inner governs each
	// child entry's add/remove, and a child present in both old and new
	// is recursively diffed against the full Rules table.
	Container bool
	Inner     *Rule

	// MaxDepth bounds recursive descent into child subschemas (0 means no
	// per-keyword bound; CheckCompatible's overall budget of 8 levels
	// still applies); mirrors subschema_levels_depth in the distilled rule
	// set and exists to stop a pathological contract from exhausting
	// the validator with unbounded nesting.
	MaxDepth int
}

func alwaysFalse(_, _ any) (bool, error) { return false, nil }
func alwaysTrue(_, _ any) (bool, error)  { return true, nil }

func uint64Bigger(oldValue, newValue any) (bool, error) {
	o, ok1 := asUint64(oldValue)
	n, ok2 := asUint64(newValue)
	if !ok1 || !ok2 {
		return false, ErrUnexpectedValueType
	}
	return n > o, nil
}

func uint64Smaller(oldValue, newValue any) (bool, error) {
	o, ok1 := asUint64(oldValue)
	n, ok2 := asUint64(newValue)
	if !ok1 || !ok2 {
		return false, ErrUnexpectedValueType
	}
	return n < o, nil
}

func float64Bigger(oldValue, newValue any) (bool, error) {
	o, ok1 := asFloat64(oldValue)
	n, ok2 := asFloat64(newValue)
	if !ok1 || !ok2 {
		return false, ErrUnexpectedValueType
	}
	return n > o, nil
}

func float64Smaller(oldValue, newValue any) (bool, error) {
	o, ok1 := asFloat64(oldValue)
	n, ok2 := asFloat64(newValue)
	if !ok1 || !ok2 {
		return false, ErrUnexpectedValueType
	}
	return n < o, nil
}

func asUint64(v any) (uint64, bool) {
	f, ok := asFloat64(v)
	if !ok || f < 0 {
		return 0, false
	}
	return uint64(f), true
}

func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// propertyRule governs a single property within a "properties" map: new
// properties may be added, existing ones may never be removed or have
// their subschema replaced wholesale (they are instead recursively
// diffed against the full keyword table).
var propertyRule = &Rule{AllowAddition: true, AllowRemoval: false}

// itemsRule governs a single entry within "prefixItems": positional item
// schemas may be appended but never removed or reordered.
var itemsRule = &Rule{AllowAddition: true, AllowRemoval: false}

// KeywordRules is the full compatibility table: one entry per supported
// JSON-schema (plus Data-Contract-specific) keyword. A keyword absent
// from this table is unsupported and any change involving it is
// rejected outright by the walker.
var KeywordRules = map[string]*Rule{
	"$comment":    {AllowAddition: true, AllowRemoval: true, AllowReplacement: alwaysTrue},
	"$defs":       {AllowAddition: true, AllowRemoval: false, Container: true, Inner: propertyRule, MaxDepth: 4},
	"$id":         {AllowAddition: true, AllowRemoval: false, AllowReplacement: alwaysFalse},
	"$ref":        {AllowAddition: false, AllowRemoval: false, AllowReplacement: alwaysFalse},
	"description": {AllowAddition: true, AllowRemoval: true, AllowReplacement: alwaysTrue},
	"examples":    {AllowAddition: true, AllowRemoval: true, AllowReplacement: alwaysTrue},
	"position":    {AllowAddition: false, AllowRemoval: false, AllowReplacement: alwaysFalse},

	"type":          {AllowAddition: false, AllowRemoval: false, AllowReplacement: alwaysFalse},
	"format":        {AllowAddition: false, AllowRemoval: true, AllowReplacement: alwaysFalse},
	"const":         {AllowAddition: false, AllowRemoval: false, AllowReplacement: alwaysFalse},
	"enum":          {AllowAddition: false, AllowRemoval: false, AllowReplacement: alwaysFalse},
	"pattern":       {AllowAddition: false, AllowRemoval: true, AllowReplacement: alwaysFalse},
	"byteArray":     {AllowAddition: false, AllowRemoval: false, AllowReplacement: alwaysFalse},
	"contentMediaType": {AllowAddition: false, AllowRemoval: true, AllowReplacement: alwaysFalse},

	"maximum":          {AllowAddition: false, AllowRemoval: true, AllowReplacement: float64Bigger},
	"minimum":          {AllowAddition: false, AllowRemoval: true, AllowReplacement: float64Smaller},
	"exclusiveMaximum":  {AllowAddition: false, AllowRemoval: true, AllowReplacement: float64Bigger},
	"exclusiveMinimum":  {AllowAddition: false, AllowRemoval: true, AllowReplacement: float64Smaller},
	"multipleOf":       {AllowAddition: false, AllowRemoval: true, AllowReplacement: alwaysFalse},

	"maxLength": {AllowAddition: false, AllowRemoval: true, AllowReplacement: uint64Bigger},
	"minLength": {AllowAddition: false, AllowRemoval: true, AllowReplacement: uint64Smaller},
	"maxItems":  {AllowAddition: false, AllowRemoval: true, AllowReplacement: uint64Bigger},
	"minItems":  {AllowAddition: false, AllowRemoval: true, AllowReplacement: uint64Smaller},
	"uniqueItems": {AllowAddition: false, AllowRemoval: true, AllowReplacement: alwaysFalse},

	"properties": {
		AllowAddition: true, AllowRemoval: false,
		Container: true, Inner: propertyRule, MaxDepth: 2,
	},
	"additionalProperties": {AllowAddition: false, AllowRemoval: false, AllowReplacement: alwaysFalse},
	"required": {
		AllowAddition: false, AllowRemoval: true,
		Container: true, Inner: &Rule{AllowAddition: false, AllowRemoval: true},
	},
	"dependentRequired": {AllowAddition: true, AllowRemoval: false, AllowReplacement: alwaysFalse},

	"items":       {AllowAddition: false, AllowRemoval: false, AllowReplacement: alwaysFalse},
	"prefixItems": {AllowAddition: true, AllowRemoval: false, Container: true, Inner: itemsRule, MaxDepth: 2},

	// Data-Contract-specific keywords.
	"canBeDeleted":                              {AllowAddition: false, AllowRemoval: false, AllowReplacement: alwaysFalse},
	"documentsKeepHistory":                      {AllowAddition: false, AllowRemoval: false, AllowReplacement: alwaysFalse},
	"documentsMutable":                          {AllowAddition: false, AllowRemoval: false, AllowReplacement: alwaysFalse},
	"creationRestrictionMode":                   {AllowAddition: false, AllowRemoval: false, AllowReplacement: alwaysFalse},
	"tradeMode":                                 {AllowAddition: false, AllowRemoval: false, AllowReplacement: alwaysFalse},
	"transferable":                               {AllowAddition: false, AllowRemoval: false, AllowReplacement: alwaysFalse},
	"signatureSecurityLevelRequirement":         {AllowAddition: true, AllowRemoval: false, AllowReplacement: uint64Smaller},
	"requiresIdentityEncryptionBoundedKey":      {AllowAddition: true, AllowRemoval: false, AllowReplacement: alwaysFalse},
	"requiresIdentityDecryptionBoundedKey":      {AllowAddition: true, AllowRemoval: false, AllowReplacement: alwaysFalse},
}
