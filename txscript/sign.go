// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"errors"

	"github.com/bsvd/bsvd/bsvec"
	"github.com/bsvd/bsvd/chainhash"
)

// ErrNoKeyForAddress is returned by a KeyDB that has no private key on
// file for the requested hash.
var ErrNoKeyForAddress = errors.New("no key for address")

// ErrNoScriptForAddress is returned by a ScriptDB that has no redeem
// script on file for the requested hash.
var ErrNoScriptForAddress = errors.New("no script for address")

// KeyDB is the minimal lookup a signer needs to go from a public-key
// hash encountered in a locking script to the private key that
// satisfies it. A wallet backs this with whatever key storage it uses;
// a caller holding a single key in memory can satisfy it with a plain
// closure.
type KeyDB interface {
	GetKey(pubKeyHash []byte) (*bsvec.PrivateKey, []byte, error)
}

// KeyDBFunc is a KeyDB backed by a plain function, mirroring the
// teacher's own closure-adapter idiom for small lookup interfaces.
type KeyDBFunc func(pubKeyHash []byte) (*bsvec.PrivateKey, []byte, error)

func (f KeyDBFunc) GetKey(pubKeyHash []byte) (*bsvec.PrivateKey, []byte, error) {
	return f(pubKeyHash)
}

// ScriptDB is the minimal lookup a signer needs to go from a script hash
// encountered in a P2SH locking script to the redeem script it commits
// to.
type ScriptDB interface {
	GetScript(scriptHash []byte) ([]byte, error)
}

// ScriptDBFunc is a ScriptDB backed by a plain function.
type ScriptDBFunc func(scriptHash []byte) ([]byte, error)

func (f ScriptDBFunc) GetScript(scriptHash []byte) ([]byte, error) {
	return f(scriptHash)
}

// BuildUnlockBuilder inspects a locking script and, using keyDB and
// scriptDB to resolve the key/redeem-script material it needs, returns
// the UnlockBuilder capable of satisfying it. It handles the four
// standard templates directly; P2SH is resolved recursively against the
// redeem script returned by scriptDB.
func BuildUnlockBuilder(pkScript []byte, keyDB KeyDB, scriptDB ScriptDB) (UnlockBuilder, error) {
	pops, err := parseScript(pkScript)
	if err != nil {
		return nil, err
	}

	switch typeOfScript(pops) {
	case PubKeyHashTy:
		pubKeyHash := pops[2].data
		priv, pubKey, err := keyDB.GetKey(pubKeyHash)
		if err != nil {
			return nil, err
		}
		return &P2PKHUnlockBuilder{PrivKey: priv, PubKey: pubKey}, nil

	case PubKeyTy:
		pubKey := pops[0].data
		priv, _, err := keyDB.GetKey(pubKeyHash160(pubKey))
		if err != nil {
			return nil, err
		}
		return &P2PKUnlockBuilder{PrivKey: priv}, nil

	case ScriptHashTy:
		scriptHash := pops[1].data
		redeem, err := scriptDB.GetScript(scriptHash)
		if err != nil {
			return nil, err
		}
		inner, err := BuildUnlockBuilder(redeem, keyDB, scriptDB)
		if err != nil {
			return nil, err
		}
		return &P2SHUnlockBuilder{Inner: inner, RedeemScript: redeem}, nil

	case MultiSigTy:
		numPubKeys := asSmallInt(pops[0].opcode.value)
		var keys []*bsvec.PrivateKey
		for _, pop := range pops[1 : 1+numPubKeys] {
			priv, _, err := keyDB.GetKey(pubKeyHash160(pop.data))
			if err == nil {
				keys = append(keys, priv)
			}
		}
		return &P2MSUnlockBuilder{PrivKeys: keys}, nil

	default:
		return nil, ErrNotAStandardTemplate
	}
}

// pubKeyHash160 computes the HASH160 of a serialized public key.
func pubKeyHash160(pubKey []byte) []byte {
	return chainhash.Hash160(pubKey)
}
