// Copyright 2025 Certen Protocol

package statetransition

import (
	"encoding/json"

	"github.com/dashpay/platform-sub004/pkg/consensuserror"
)

// Decode parses a transition from its wire encoding. The store persists
// domain values as JSON (getJSON/putJSON in context.go), and transitions
// use the same convention rather than introducing a second serialization
// format into the same replicated pipeline.
func Decode(raw []byte) (*Transition, error) {
	var t Transition
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, consensuserror.New(consensuserror.CategoryProtocol, consensuserror.CodeDecodeFailed, "malformed transition: "+err.Error())
	}
	return &t, nil
}

// Encode renders a transition to its wire encoding; callers that build a
// Transition and need PayloadBytes for signing should encode only the
// payload, not the whole envelope — Encode is for transport, not for
// producing the signed digest.
func Encode(t *Transition) ([]byte, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, consensuserror.CorruptedExecutionError("failed to encode transition: " + err.Error())
	}
	return data, nil
}
