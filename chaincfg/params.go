// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg defines the network-selected parameters (address
// version bytes, HD extended key magics, and default fee/dust settings)
// that the rest of the module takes as an explicit argument rather than
// hard-coding a single network.
package chaincfg

// Params holds the network-specific magic values a wallet needs: the
// base58check version bytes for addresses and WIF private keys, the BIP32
// extended key magics, and the builder's default economic parameters.
type Params struct {
	// Name is a human readable identifier for the network.
	Name string

	// PubKeyHashAddrID is the version byte used for P2PKH addresses.
	PubKeyHashAddrID byte

	// ScriptHashAddrID is the version byte used for P2SH addresses.
	ScriptHashAddrID byte

	// PrivateKeyID is the version byte used for WIF-encoded private keys.
	PrivateKeyID byte

	// HDPrivateKeyID is the 4 byte version prepended to BIP32 extended
	// private keys before base58check encoding.
	HDPrivateKeyID [4]byte

	// HDPublicKeyID is the 4 byte version prepended to BIP32 extended
	// public keys before base58check encoding.
	HDPublicKeyID [4]byte

	// DefaultFeePerKb is the transaction builder's default fee rate in
	// satoshis per 1000 bytes.
	DefaultFeePerKb int64

	// DefaultDustThreshold is the transaction builder's default minimum
	// economic output value, in satoshis.
	DefaultDustThreshold int64
}

// MainNetParams defines the network parameters for the main network.
var MainNetParams = Params{
	Name:                 "mainnet",
	PubKeyHashAddrID:     0x00,
	ScriptHashAddrID:     0x05,
	PrivateKeyID:         0x80,
	HDPrivateKeyID:       [4]byte{0x04, 0x88, 0xAD, 0xE4}, // xprv
	HDPublicKeyID:        [4]byte{0x04, 0x88, 0xB2, 0x1E}, // xpub
	DefaultFeePerKb:      1000,
	DefaultDustThreshold: 546,
}

// TestNetParams defines the network parameters for the test network.
var TestNetParams = Params{
	Name:                 "testnet",
	PubKeyHashAddrID:     0x6F,
	ScriptHashAddrID:     0xC4,
	PrivateKeyID:         0xEF,
	HDPrivateKeyID:       [4]byte{0x04, 0x35, 0x83, 0x94}, // tprv
	HDPublicKeyID:        [4]byte{0x04, 0x35, 0x87, 0xCF}, // tpub
	DefaultFeePerKb:      1000,
	DefaultDustThreshold: 546,
}
