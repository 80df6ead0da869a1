// Copyright 2025 Certen Protocol

package sigverify

import (
	"crypto/sha256"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

func TestVerify_ValidSignatureSucceeds(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	message := []byte("identity-nonce-7:transfer:100")
	digest := sha256.Sum256(message)
	sig := ecdsa.Sign(priv, digest[:])

	err = Verify(priv.PubKey().SerializeCompressed(), message, sig.Serialize())
	if err != nil {
		t.Errorf("expected valid signature to verify, got %v", err)
	}
}

func TestVerify_TamperedMessageFails(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	digest := sha256.Sum256([]byte("original message"))
	sig := ecdsa.Sign(priv, digest[:])

	err = Verify(priv.PubKey().SerializeCompressed(), []byte("tampered message"), sig.Serialize())
	if err != ErrSignatureMismatch {
		t.Errorf("expected ErrSignatureMismatch, got %v", err)
	}
}

func TestVerify_InvalidPublicKeyBytes(t *testing.T) {
	err := Verify([]byte{0x01, 0x02}, []byte("msg"), []byte{0x03})
	if err != ErrInvalidPublicKey {
		t.Errorf("expected ErrInvalidPublicKey, got %v", err)
	}
}
