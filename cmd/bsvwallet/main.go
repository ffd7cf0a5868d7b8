// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command bsvwallet is a minimal demonstration client built on top of
// this module's wallet and transaction-construction packages: it can
// mint a fresh key and address, or take a WIF private key plus a
// caller-described UTXO and build, sign, and print a raw P2PKH spend.
// It holds no consensus logic of its own and talks to no network; a
// real wallet would fetch UTXOs and broadcast the result itself.
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/bsvd/bsvd/address"
	"github.com/bsvd/bsvd/bsvec"
	"github.com/bsvd/bsvd/chainhash"
	"github.com/bsvd/bsvd/txbuilder"
	"github.com/bsvd/bsvd/txscript"
	"github.com/bsvd/bsvd/wire"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cfg.GenKey {
		return genKey()
	}
	return buildAndSign(cfg)
}

// genKey prints a freshly generated WIF private key and its
// corresponding P2PKH address on the active network.
func genKey() error {
	priv, err := bsvec.NewPrivateKey()
	if err != nil {
		return err
	}
	pubKey := priv.PubKey().SerializeCompressed()

	addr, err := address.NewAddressPubKeyHashFromPubKey(pubKey, activeNetParams)
	if err != nil {
		return err
	}

	fmt.Printf("network:     %s\n", activeNetParams.Name)
	fmt.Printf("private key: %s\n", bsvec.WIF(priv, true, activeNetParams))
	fmt.Printf("address:     %s\n", addr.EncodeAddress())
	return nil
}

// buildAndSign builds a single-input P2PKH spend from the UTXO and
// destination described by cfg, signs it, and prints the raw
// transaction hex.
func buildAndSign(cfg *config) error {
	priv, compressed, err := bsvec.DecodeWIF(cfg.PrivKey, activeNetParams)
	if err != nil {
		return fmt.Errorf("bsvwallet: invalid --privkey: %w", err)
	}
	pubKey := priv.PubKey().SerializeCompressed()
	if !compressed {
		pubKey = priv.PubKey().SerializeUncompressed()
	}

	txid, err := chainhash.NewHashFromStr(cfg.UTXOTxID)
	if err != nil {
		return fmt.Errorf("bsvwallet: invalid --utxo-txid: %w", err)
	}
	pkScript, err := hex.DecodeString(cfg.UTXOScript)
	if err != nil {
		return fmt.Errorf("bsvwallet: invalid --utxo-script: %w", err)
	}

	toAddr, err := address.DecodeAddress(cfg.ToAddress, activeNetParams)
	if err != nil {
		return fmt.Errorf("bsvwallet: invalid --to address: %w", err)
	}

	changeAddrStr := cfg.ChangeAddress
	if changeAddrStr == "" {
		spendAddr, err := address.NewAddressPubKeyHashFromPubKey(pubKey, activeNetParams)
		if err != nil {
			return err
		}
		changeAddrStr = spendAddr.EncodeAddress()
	}
	changeAddr, err := address.DecodeAddress(changeAddrStr, activeNetParams)
	if err != nil {
		return fmt.Errorf("bsvwallet: invalid --change address: %w", err)
	}

	utxo := txbuilder.UTXO{
		Outpoint: *wire.NewOutPoint(txid, cfg.UTXOVout),
		Value:    cfg.UTXOValue,
		PkScript: pkScript,
	}
	unlock := &txscript.P2PKHUnlockBuilder{PrivKey: priv, PubKey: pubKey}

	b := txbuilder.New(activeNetParams).
		SpendFromOutput(utxo, txbuilder.DefaultSequence, unlock).
		SpendToAddress(toAddr, cfg.Amount).
		SendChangeToAddress(changeAddr).
		WithFeePerKb(cfg.FeePerKb)

	tx, err := b.Build()
	if err != nil {
		return fmt.Errorf("bsvwallet: building transaction: %w", err)
	}
	if err := b.SignAll(txscript.SigHashAll | txscript.SigHashForkID); err != nil {
		return fmt.Errorf("bsvwallet: signing transaction: %w", err)
	}

	raw, err := tx.Bytes()
	if err != nil {
		return err
	}
	fmt.Println(hex.EncodeToString(raw))
	return nil
}
