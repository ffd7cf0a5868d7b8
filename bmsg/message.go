// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package bmsg implements signing and verification of arbitrary
// messages in the conventional Bitcoin "signed message" format: a
// fixed text prefix and length-prefixed message are double-SHA256'd and
// signed with a 65-byte recoverable ECDSA signature, letting a verifier
// recover the signer's public key from the signature alone.
package bmsg

import (
	"bytes"
	"encoding/base64"
	"errors"

	"github.com/bsvd/bsvd/address"
	"github.com/bsvd/bsvd/bsvec"
	"github.com/bsvd/bsvd/chaincfg"
	"github.com/bsvd/bsvd/chainhash"
	"github.com/bsvd/bsvd/wire"
)

// magicPrefix precedes every message before hashing, so a signature
// produced here can never be replayed as a signature over raw
// transaction or block data.
const magicPrefix = "Bitcoin Signed Message:\n"

var (
	// ErrInvalidSignatureLength is returned when a base64-decoded
	// signature is not exactly 65 bytes.
	ErrInvalidSignatureLength = errors.New("bmsg: signature must decode to exactly 65 bytes")
)

// magicHash computes hash256(varstr(magicPrefix) || varstr(msg)), the
// digest that gets signed.
func magicHash(msg []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := wire.WriteVarInt(&buf, uint64(len(magicPrefix))); err != nil {
		return nil, err
	}
	buf.WriteString(magicPrefix)
	if err := wire.WriteVarInt(&buf, uint64(len(msg))); err != nil {
		return nil, err
	}
	buf.Write(msg)
	return chainhash.DoubleHashB(buf.Bytes()), nil
}

// Sign signs msg with key and returns the base64 encoding of the
// resulting 65-byte recoverable signature. compressed should match
// whatever form of key's public key the intended verifier expects to
// recover (almost always true for any key minted by this module).
func Sign(key *bsvec.PrivateKey, msg []byte, compressed bool) (string, error) {
	hash, err := magicHash(msg)
	if err != nil {
		return "", err
	}
	sig := bsvec.SignCompact(key, hash, compressed)
	return base64.StdEncoding.EncodeToString(sig), nil
}

// Verify reports whether sig is a valid signature of msg recovering to
// an address matching addr.
func Verify(addr *address.Address, msg []byte, sig string, params *chaincfg.Params) (bool, error) {
	raw, err := base64.StdEncoding.DecodeString(sig)
	if err != nil {
		return false, err
	}
	if len(raw) != 65 {
		return false, ErrInvalidSignatureLength
	}

	hash, err := magicHash(msg)
	if err != nil {
		return false, err
	}

	pub, wasCompressed, err := bsvec.RecoverCompact(raw, hash)
	if err != nil {
		return false, err
	}

	var pubBytes []byte
	if wasCompressed {
		pubBytes = pub.SerializeCompressed()
	} else {
		pubBytes = pub.SerializeUncompressed()
	}

	recoveredAddr, err := address.NewAddressPubKeyHashFromPubKey(pubBytes, params)
	if err != nil {
		return false, err
	}
	return *recoveredAddr.Hash160() == *addr.Hash160(), nil
}
