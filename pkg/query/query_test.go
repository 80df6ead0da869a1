// Copyright 2025 Certen Protocol

package query

import (
	"encoding/json"
	"testing"

	"github.com/dashpay/platform-sub004/pkg/store"
)

func TestHandle_UnknownPathErrors(t *testing.T) {
	st := store.NewStore()
	if _, err := Handle(st, Request{Path: "/not-a-real-path"}); err == nil {
		t.Fatalf("expected an error for an unregistered path")
	}
}

func TestHandle_IdentityNotFound(t *testing.T) {
	st := store.NewStore()
	params, err := json.Marshal(identityParams{})
	if err != nil {
		t.Fatalf("marshal params: %v", err)
	}

	if _, err := Handle(st, Request{Path: "/identity", Data: params}); err == nil {
		t.Fatalf("expected an error looking up an identity in an empty store")
	}
}

func TestEncode_RoundTripsValueAndMetadata(t *testing.T) {
	resp := Response{
		Key:      []byte("some-key"),
		Value:    json.RawMessage(`{"foo":"bar"}`),
		Metadata: Metadata{Height: 10, ChainID: "certen-test"},
	}

	encoded, err := Encode(resp)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var decoded struct {
		Value    json.RawMessage
		Proofs   []*store.Proof
		Metadata Metadata
	}
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Metadata.Height != 10 || decoded.Metadata.ChainID != "certen-test" {
		t.Errorf("metadata did not round-trip: %+v", decoded.Metadata)
	}
	if string(decoded.Value) != `{"foo":"bar"}` {
		t.Errorf("value did not round-trip: %s", decoded.Value)
	}
}
