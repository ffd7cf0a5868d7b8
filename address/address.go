// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package address implements the base58check address codec: a one byte
// version selecting (network, address type), a 20 byte hash160, and a
// 4 byte double-SHA256 checksum.
package address

import (
	"errors"

	"github.com/bsvd/bsvd/base58"
	"github.com/bsvd/bsvd/chaincfg"
	"github.com/bsvd/bsvd/chainhash"
)

// AddrType distinguishes the two hash160-keyed address templates.
type AddrType int

const (
	// P2PKH identifies an address that pays to a public key hash.
	P2PKH AddrType = iota
	// P2SH identifies an address that pays to a script hash.
	P2SH
)

// ErrInvalidAddressLength is returned when a decoded address payload is
// not exactly 20 bytes (the hash160 length).
var ErrInvalidAddressLength = errors.New("decoded address is of unknown size")

// ErrUnknownVersionByte is returned when an address's version byte does
// not match any known (network, type) pair for the given parameters.
var ErrUnknownVersionByte = errors.New("unknown address version byte")

// Address is a decoded base58check address: a version byte (which
// determines network and address type), and the 20 byte hash160 payload.
type Address struct {
	version  byte
	hash     [20]byte
	addrType AddrType
	params   *chaincfg.Params
}

// Hash160 returns the 20 byte hash the address commits to.
func (a *Address) Hash160() *[20]byte {
	return &a.hash
}

// AddrType reports whether the address is P2PKH or P2SH.
func (a *Address) AddrType() AddrType {
	return a.addrType
}

// EncodeAddress returns the base58check string form of the address.
func (a *Address) EncodeAddress() string {
	return base58.CheckEncode(a.hash[:], a.version)
}

// String implements fmt.Stringer.
func (a *Address) String() string {
	return a.EncodeAddress()
}

// NewAddressPubKeyHash builds a P2PKH address from an already-hashed
// public key. The caller controls which encoded form of the public key
// (compressed or uncompressed) was hashed; different encoded forms yield
// different addresses, which is a deliberate property of the scheme.
func NewAddressPubKeyHash(hash160 []byte, params *chaincfg.Params) (*Address, error) {
	return newAddress(hash160, params.PubKeyHashAddrID, P2PKH, params)
}

// NewAddressScriptHash builds a P2SH address from an already-hashed
// redeem script.
func NewAddressScriptHash(hash160 []byte, params *chaincfg.Params) (*Address, error) {
	return newAddress(hash160, params.ScriptHashAddrID, P2SH, params)
}

// NewAddressPubKeyHashFromPubKey hashes the exact bytes of the supplied
// serialized public key (compressed or uncompressed) and builds the
// corresponding P2PKH address.
func NewAddressPubKeyHashFromPubKey(pubKeyBytes []byte, params *chaincfg.Params) (*Address, error) {
	return NewAddressPubKeyHash(chainhash.Hash160(pubKeyBytes), params)
}

// NewAddressScriptHashFromScript hashes the exact serialized bytes of a
// redeem script and builds the corresponding P2SH address.
func NewAddressScriptHashFromScript(script []byte, params *chaincfg.Params) (*Address, error) {
	return NewAddressScriptHash(chainhash.Hash160(script), params)
}

func newAddress(hash160 []byte, version byte, t AddrType, params *chaincfg.Params) (*Address, error) {
	if len(hash160) != 20 {
		return nil, ErrInvalidAddressLength
	}
	a := &Address{version: version, addrType: t, params: params}
	copy(a.hash[:], hash160)
	return a, nil
}

// DecodeAddress decodes a base58check address string under the given
// network parameters.
func DecodeAddress(addr string, params *chaincfg.Params) (*Address, error) {
	payload, version, err := base58.CheckDecode(addr)
	if err != nil {
		return nil, err
	}
	if len(payload) != 20 {
		return nil, ErrInvalidAddressLength
	}

	var t AddrType
	switch version {
	case params.PubKeyHashAddrID:
		t = P2PKH
	case params.ScriptHashAddrID:
		t = P2SH
	default:
		return nil, ErrUnknownVersionByte
	}

	a := &Address{version: version, addrType: t, params: params}
	copy(a.hash[:], payload)
	return a, nil
}
