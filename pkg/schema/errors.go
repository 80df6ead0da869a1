// Copyright 2025 Certen Protocol

package schema

import "errors"

var (
	// ErrUnexpectedValueType is returned when a keyword's value is not
	// the shape its replacement callback expects (e.g. "maximum" holding
	// a string).
	ErrUnexpectedValueType = errors.New("schema: unexpected value type for keyword")

	// ErrUnsupportedKeyword is returned when a schema uses a keyword
	// with no entry in KeywordRules; such a keyword can never be safely
	// reasoned about, so any schema containing it is rejected.
	ErrUnsupportedKeyword = errors.New("schema: unsupported keyword")
)
