// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bsvec

import (
	"errors"
	"math/big"

	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// Signature is a secp256k1 ECDSA signature.
type Signature = secpecdsa.Signature

// curveOrder (N) and halfOrder (N/2) for secp256k1, used for the low-S
// canonicality check. A signature is canonical ("low-S") iff S <= N/2.
var (
	curveOrder, _ = new(big.Int).SetString(
		"FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141", 16)
	halfOrder = new(big.Int).Rsh(curveOrder, 1)
)

// ErrInvalidDERSignature is returned when a byte string is not a
// strictly-encoded DER signature.
var ErrInvalidDERSignature = errors.New("invalid DER signature")

// ErrNonLowS is returned when a signature's S value exceeds the curve's
// half order.
var ErrNonLowS = errors.New("signature S value is not normalized to low-S")

// Sign produces a deterministic (RFC 6979) ECDSA signature over hash, which
// should already be the 32-byte digest of the message being signed. The
// underlying deterministic signer always returns the canonical low-S
// signature.
func Sign(priv *PrivateKey, hash []byte) *Signature {
	return secpecdsa.Sign(priv, hash)
}

// Verify reports whether sig is a valid signature of hash under pub.
func Verify(pub *PublicKey, hash []byte, sig *Signature) bool {
	return sig.Verify(hash, pub)
}

// SignCompact produces a 65-byte recoverable signature over hash:
// a one-byte header encoding the recovery ID and whether the signing
// key's public key should be treated as compressed, followed by the
// raw 32-byte R and S values.
func SignCompact(priv *PrivateKey, hash []byte, isCompressedKey bool) []byte {
	return secpecdsa.SignCompact(priv, hash, isCompressedKey)
}

// RecoverCompact recovers the public key that produced a SignCompact
// signature over hash, along with whether that key was marked
// compressed.
func RecoverCompact(sig, hash []byte) (pub *PublicKey, wasCompressed bool, err error) {
	return secpecdsa.RecoverCompact(sig, hash)
}

// ParseDERSignature parses and strictly validates a DER-encoded signature,
// rejecting any encoding that is not the unique minimal DER form.
func ParseDERSignature(b []byte) (*Signature, error) {
	if err := CheckSignatureEncoding(b); err != nil {
		return nil, err
	}
	sig, err := secpecdsa.ParseDERSignature(b)
	if err != nil {
		return nil, ErrInvalidDERSignature
	}
	return sig, nil
}

// IsLowS reports whether sig's S value satisfies the low-S rule (S <= N/2).
func IsLowS(sig *Signature) bool {
	_, s, err := parseRS(sig.Serialize())
	if err != nil {
		return false
	}
	return s.Cmp(halfOrder) <= 0
}

// parseRS extracts the raw (r, s) integers from a DER-encoded ECDSA
// signature without requiring strict-encoding validation; used internally
// by IsLowS once a Signature is already known to be well formed.
func parseRS(der []byte) (r, s *big.Int, err error) {
	// DER signature grammar:
	//   0x30 <total-len> 0x02 <rlen> <r bytes> 0x02 <slen> <s bytes>
	if len(der) < 8 || der[0] != 0x30 {
		return nil, nil, ErrInvalidDERSignature
	}
	totalLen := int(der[1])
	if len(der) != totalLen+2 {
		return nil, nil, ErrInvalidDERSignature
	}
	if der[2] != 0x02 {
		return nil, nil, ErrInvalidDERSignature
	}
	rLen := int(der[3])
	if 4+rLen+2 > len(der) {
		return nil, nil, ErrInvalidDERSignature
	}
	rBytes := der[4 : 4+rLen]
	off := 4 + rLen
	if der[off] != 0x02 {
		return nil, nil, ErrInvalidDERSignature
	}
	sLen := int(der[off+1])
	sBytes := der[off+2 : off+2+sLen]

	r = new(big.Int).SetBytes(rBytes)
	s = new(big.Int).SetBytes(sBytes)
	return r, s, nil
}

// CheckSignatureEncoding validates that sig follows the strict DER grammar
// required when ScriptVerifyDERSignatures is set: a single SEQUENCE of two
// positive INTEGERs, each minimally encoded, with no trailing bytes.
//
// Grounded on the teacher's txscript engine.go checkSignatureEncoding.
func CheckSignatureEncoding(sig []byte) error {
	const (
		sequenceOffset = 0
		sequenceIDTag  = 0x30
		rTypeOffset    = 2
		rLengthOffset  = 3
		rOffset        = 4
		intTypeID      = 0x02
	)

	if len(sig) < 9 {
		return ErrInvalidDERSignature
	}
	if len(sig) > 72 {
		return ErrInvalidDERSignature
	}
	if sig[sequenceOffset] != sequenceIDTag {
		return ErrInvalidDERSignature
	}
	if int(sig[1]) != len(sig)-2 {
		return ErrInvalidDERSignature
	}
	if sig[rTypeOffset] != intTypeID {
		return ErrInvalidDERSignature
	}
	rLen := int(sig[rLengthOffset])
	if rLen == 0 || rOffset+rLen+2 > len(sig) {
		return ErrInvalidDERSignature
	}
	if sig[rOffset]&0x80 != 0 {
		return ErrInvalidDERSignature
	}
	if rLen > 1 && sig[rOffset] == 0 && sig[rOffset+1]&0x80 == 0 {
		return ErrInvalidDERSignature
	}

	sTypeOffset := rOffset + rLen
	sLengthOffset := sTypeOffset + 1
	sOffset := sLengthOffset + 1
	if sig[sTypeOffset] != intTypeID {
		return ErrInvalidDERSignature
	}
	sLen := int(sig[sLengthOffset])
	if sLen == 0 || sOffset+sLen != len(sig) {
		return ErrInvalidDERSignature
	}
	if sig[sOffset]&0x80 != 0 {
		return ErrInvalidDERSignature
	}
	if sLen > 1 && sig[sOffset] == 0 && sig[sOffset+1]&0x80 == 0 {
		return ErrInvalidDERSignature
	}

	return nil
}
