// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"os"

	flags "github.com/jessevdk/go-flags"

	"github.com/bsvd/bsvd/chaincfg"
)

// config defines the command line options for bsvwallet.
//
// See loadConfig for details on the configuration load process.
type config struct {
	TestNet bool `long:"testnet" description:"Use the test network instead of the main network"`

	GenKey bool `long:"genkey" description:"Generate a new random private key and its address, then exit"`

	PrivKey string `long:"privkey" description:"WIF-encoded private key to spend from"`

	UTXOTxID   string `long:"utxo-txid" description:"Transaction ID of the output being spent"`
	UTXOVout   uint32 `long:"utxo-vout" description:"Output index of the output being spent"`
	UTXOValue  int64  `long:"utxo-value" description:"Value in satoshis of the output being spent"`
	UTXOScript string `long:"utxo-script" description:"Hex-encoded locking script of the output being spent"`

	ToAddress string `long:"to" description:"Address to pay"`
	Amount    int64  `long:"amount" description:"Amount in satoshis to pay to --to"`

	ChangeAddress string `long:"change" description:"Address to send leftover value to; defaults to the spending address"`
	FeePerKb      int64  `long:"feeperkb" description:"Target fee rate in satoshis per 1000 bytes"`
}

// activeNetParams tracks the chain parameters selected by --testnet.
var activeNetParams = &chaincfg.MainNetParams

// loadConfig parses the command line into a config, resolving which
// network's parameters are active.
func loadConfig() (*config, error) {
	cfg := config{
		FeePerKb: chaincfg.MainNetParams.DefaultFeePerKb,
	}

	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if e, ok := err.(*flags.Error); !ok || e.Type != flags.ErrHelp {
			parser.WriteHelp(os.Stderr)
		}
		return nil, err
	}

	if cfg.TestNet {
		activeNetParams = &chaincfg.TestNetParams
		if cfg.FeePerKb == chaincfg.MainNetParams.DefaultFeePerKb {
			cfg.FeePerKb = chaincfg.TestNetParams.DefaultFeePerKb
		}
	}

	if cfg.GenKey {
		return &cfg, nil
	}

	if cfg.PrivKey == "" {
		return nil, errors.New("bsvwallet: --privkey is required unless --genkey is given")
	}
	if cfg.UTXOTxID == "" || cfg.UTXOScript == "" {
		return nil, errors.New("bsvwallet: --utxo-txid and --utxo-script are required")
	}
	if cfg.ToAddress == "" || cfg.Amount <= 0 {
		return nil, errors.New("bsvwallet: --to and a positive --amount are required")
	}

	return &cfg, nil
}
