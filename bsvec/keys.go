// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package bsvec wraps secp256k1 keys and ECDSA signatures for the rest of
// this module, the same way the teacher's btcec package wraps the curve
// library it depends on.
package bsvec

import (
	"errors"

	secp "github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/bsvd/bsvd/base58"
	"github.com/bsvd/bsvd/chaincfg"
)

// PrivateKey is a secp256k1 private key; 1 <= d < n.
type PrivateKey = secp.PrivateKey

// PublicKey is a secp256k1 public key point.
type PublicKey = secp.PublicKey

// PrivKeyBytesLen is the length in bytes of a serialized private key.
const PrivKeyBytesLen = 32

// PubKeyBytesLenCompressed is the length in bytes of a compressed public key.
const PubKeyBytesLenCompressed = 33

// PubKeyBytesLenUncompressed is the length in bytes of an uncompressed
// public key.
const PubKeyBytesLenUncompressed = 65

// ErrInvalidPrivateKey is returned when a byte string does not decode to a
// scalar in [1, n).
var ErrInvalidPrivateKey = errors.New("invalid private key")

// ErrInvalidPublicKey is returned when a byte string does not decode to a
// valid point on the curve.
var ErrInvalidPublicKey = errors.New("invalid public key")

// NewPrivateKey generates a new random private key.
func NewPrivateKey() (*PrivateKey, error) {
	return secp.GeneratePrivateKey()
}

// PrivKeyFromBytes converts a 32-byte big-endian scalar into a PrivateKey.
// It does not validate that the scalar is non-zero and less than the group
// order; callers that need that guarantee should use ParsePrivateKey.
func PrivKeyFromBytes(b []byte) *PrivateKey {
	return secp.PrivKeyFromBytes(b)
}

// ParsePrivateKey validates and parses a 32-byte big-endian scalar.
func ParsePrivateKey(b []byte) (*PrivateKey, error) {
	if len(b) != PrivKeyBytesLen {
		return nil, ErrInvalidPrivateKey
	}
	priv := secp.PrivKeyFromBytes(b)
	// A private key of zero reduces mod n to zero; PrivKeyFromBytes does
	// not reject that, so check explicitly.
	allZero := true
	for _, v := range b {
		if v != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return nil, ErrInvalidPrivateKey
	}
	return priv, nil
}

// IsCompressedPubKey reports whether the serialized public key is in
// compressed format.
func IsCompressedPubKey(pubKey []byte) bool {
	return len(pubKey) == PubKeyBytesLenCompressed &&
		(pubKey[0] == 0x02 || pubKey[0] == 0x03)
}

// ParsePubKey parses a compressed, uncompressed, or hybrid serialized
// public key into a PublicKey, verifying it lies on the curve.
func ParsePubKey(pubKeyStr []byte) (*PublicKey, error) {
	pub, err := secp.ParsePubKey(pubKeyStr)
	if err != nil {
		return nil, ErrInvalidPublicKey
	}
	return pub, nil
}

// WIF encodes a private key using the Wallet Import Format: a one byte
// network identifier, the 32-byte private scalar, an optional 0x01
// compressed-pubkey marker, and a base58check checksum.
func WIF(priv *PrivateKey, compressed bool, params *chaincfg.Params) string {
	payload := priv.Serialize()
	if compressed {
		payload = append(payload, 0x01)
	}
	return base58.CheckEncode(payload, params.PrivateKeyID)
}

// DecodeWIF decodes a Wallet Import Format string, returning the private
// key and whether it indicates the corresponding public key should be
// serialized in compressed form.
func DecodeWIF(wif string, params *chaincfg.Params) (*PrivateKey, bool, error) {
	payload, version, err := base58.CheckDecode(wif)
	if err != nil {
		return nil, false, err
	}
	if version != params.PrivateKeyID {
		return nil, false, ErrInvalidPrivateKey
	}

	var compressed bool
	switch len(payload) {
	case PrivKeyBytesLen:
		compressed = false
	case PrivKeyBytesLen + 1:
		if payload[PrivKeyBytesLen] != 0x01 {
			return nil, false, ErrInvalidPrivateKey
		}
		compressed = true
		payload = payload[:PrivKeyBytesLen]
	default:
		return nil, false, ErrInvalidPrivateKey
	}

	priv, err := ParsePrivateKey(payload)
	if err != nil {
		return nil, false, err
	}
	return priv, compressed, nil
}
