// Copyright 2025 Certen Protocol
//
// Package sigverify checks a state transition's signature against the
// public key an identity claims authorizes it, using the same secp256k1
// curve implementation the teacher pulls in transitively through its
// consensus stack.
package sigverify

import (
	"crypto/sha256"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

var (
	// ErrInvalidPublicKey is returned when the key bytes an identity
	// recorded cannot be parsed as a compressed or uncompressed
	// secp256k1 point.
	ErrInvalidPublicKey = errors.New("sigverify: invalid public key encoding")

	// ErrInvalidSignatureEncoding is returned when the signature bytes
	// are not a well-formed DER-encoded ECDSA signature.
	ErrInvalidSignatureEncoding = errors.New("sigverify: invalid signature encoding")

	// ErrSignatureMismatch is returned when the signature parses fine
	// but does not verify against the given message and key.
	ErrSignatureMismatch = errors.New("sigverify: signature does not match")
)

// Verify checks that signature is a valid DER-encoded ECDSA signature
// over sha256(message) by the holder of pubKeyBytes.
func Verify(pubKeyBytes, message, signature []byte) error {
	pubKey, err := secp256k1.ParsePubKey(pubKeyBytes)
	if err != nil {
		return ErrInvalidPublicKey
	}

	sig, err := ecdsa.ParseDERSignature(signature)
	if err != nil {
		return ErrInvalidSignatureEncoding
	}

	digest := sha256.Sum256(message)
	if !sig.Verify(digest[:], pubKey) {
		return ErrSignatureMismatch
	}
	return nil
}
