// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txbuilder assembles a transaction from a set of spent UTXOs and
// requested outputs, resolves a change output against a target fee rate,
// and drives the per-input signing that the txscript unlock builders
// perform. It is the only package in the module that mutates a
// transaction in place as it is built; once built, signing an input
// never alters the transaction's size, so the fee computed against the
// final output set stays valid.
package txbuilder

import (
	"errors"
	"fmt"

	"github.com/bsvd/bsvd/address"
	"github.com/bsvd/bsvd/chaincfg"
	"github.com/bsvd/bsvd/txscript"
	"github.com/bsvd/bsvd/wire"
)

// MaxSatoshi is the maximum possible value of any amount: 21 million
// bitcoin expressed in satoshis.
const MaxSatoshi = 21_000_000 * 1e8

const (
	// DefaultSequence is the final sequence number; it leaves both
	// relative and absolute lock time inactive for its input.
	DefaultSequence = wire.MaxTxInSequenceNum

	// LockTimeEnableSequence is the conventional sequence number that
	// keeps a transaction's nLockTime active while still disabling
	// replace-by-fee-style re-spending of the input that carries it.
	LockTimeEnableSequence uint32 = 0xFFFFFFFE

	// maxFeeIterations bounds the fee/change resolution loop. The loop
	// only ever has two interesting states (change output present or
	// absent), so two passes always suffice; the extra headroom is
	// cheap insurance, not an expected case.
	maxFeeIterations = 4
)

var (
	// ErrInsufficientFunds is returned when the sum of spent UTXOs
	// cannot cover the requested outputs plus fee.
	ErrInsufficientFunds = errors.New("txbuilder: insufficient funds to cover outputs and fee")

	// ErrMissingUTXOValue is returned when building a transaction with
	// no inputs, or an input whose UTXO carries no locking script.
	ErrMissingUTXOValue = errors.New("txbuilder: missing or incomplete UTXO information")

	// ErrChangeAddressNotSet is returned when inputs exceed outputs plus
	// fee by more than the dust threshold but no change destination was
	// configured with SendChangeTo.
	ErrChangeAddressNotSet = errors.New("txbuilder: leftover value exceeds the dust threshold but no change destination is set")

	// ErrMissingUnlockBuilder is returned by SignInput when the target
	// input was never given an unlock builder.
	ErrMissingUnlockBuilder = errors.New("txbuilder: input has no unlock builder to sign with")

	// ErrExcessiveValue is returned when a requested output value is
	// negative or exceeds MaxSatoshi.
	ErrExcessiveValue = errors.New("txbuilder: output value is negative or exceeds the maximum possible supply")

	// ErrMutationAfterSigning is returned by a structural mutation
	// (SpendFromOutput, SpendTo, SendChangeTo) once any input has
	// already been signed, since such a mutation would leave a stale
	// signature committing to an output/input set the transaction no
	// longer has.
	ErrMutationAfterSigning = errors.New("txbuilder: cannot change inputs or outputs after signing; call Build again to re-sign")
)

// UTXO describes a previous output this builder will spend: the outpoint
// identifying it, the value it carries, and the locking script that must
// be satisfied to spend it. The builder is I/O-free: callers must supply
// these fields themselves rather than have the builder look them up.
type UTXO struct {
	Outpoint wire.OutPoint
	Value    int64
	PkScript []byte
}

type inputRecord struct {
	utxo   UTXO
	unlock txscript.UnlockBuilder
}

// Builder accumulates inputs and outputs for a transaction, resolving a
// change output against a target fee rate before signing. Every mutating
// method returns the builder itself so calls chain; once any method
// records an error the builder remembers it and later mutating calls
// become no-ops, with Build/SignInput surfacing the first error seen.
type Builder struct {
	params *chaincfg.Params
	tx     *wire.MsgTx

	inputs       []inputRecord
	signed       []bool
	fixedOutputs int

	changeBuilder txscript.LockBuilder

	feePerKb      int64
	dustThreshold int64

	err error
}

// New returns an empty builder seeded with params' default fee rate and
// dust threshold.
func New(params *chaincfg.Params) *Builder {
	return &Builder{
		params:        params,
		tx:            wire.NewMsgTx(1),
		feePerKb:      params.DefaultFeePerKb,
		dustThreshold: params.DefaultDustThreshold,
	}
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Err returns the first error recorded by a mutating method, if any.
func (b *Builder) Err() error {
	return b.err
}

// anySigned reports whether any input currently carries a signature
// produced by SignInput/SignAll since the last Build.
func (b *Builder) anySigned() bool {
	for _, s := range b.signed {
		if s {
			return true
		}
	}
	return false
}

// clearSignatures drops every installed unlocking script and resets the
// signed tracker, used when a re-Build recomputes the output set that
// existing signatures had committed to.
func (b *Builder) clearSignatures() {
	for i := range b.tx.TxIn {
		b.tx.TxIn[i].SignatureScript = nil
	}
	for i := range b.signed {
		b.signed[i] = false
	}
}

// SpendFromOutput appends an input spending utxo, recording sequence as
// the input's sequence number and unlock as the builder that will later
// produce its unlocking script. unlock may be nil for a read-only
// fee/size estimate that is never signed. Fails with
// ErrMutationAfterSigning once any input has been signed; call Build
// again to re-sign instead.
func (b *Builder) SpendFromOutput(utxo UTXO, sequence uint32, unlock txscript.UnlockBuilder) *Builder {
	if b.err != nil {
		return b
	}
	if b.anySigned() {
		return b.fail(ErrMutationAfterSigning)
	}
	if utxo.PkScript == nil {
		return b.fail(ErrMissingUTXOValue)
	}

	in := wire.NewTxIn(&utxo.Outpoint, nil)
	in.Sequence = sequence
	b.tx.AddTxIn(in)
	b.inputs = append(b.inputs, inputRecord{utxo: utxo, unlock: unlock})
	b.signed = append(b.signed, false)
	return b
}

// SpendTo appends an output paying value satoshis to the script produced
// by lockBuilder. Fails with ErrMutationAfterSigning once any input has
// been signed.
func (b *Builder) SpendTo(lockBuilder txscript.LockBuilder, value int64) *Builder {
	if b.err != nil {
		return b
	}
	if b.anySigned() {
		return b.fail(ErrMutationAfterSigning)
	}
	if value < 0 || value > MaxSatoshi {
		return b.fail(ErrExcessiveValue)
	}

	script, err := lockBuilder.LockScript()
	if err != nil {
		return b.fail(err)
	}

	b.tx.AddTxOut(wire.NewTxOut(value, script))
	b.fixedOutputs++
	return b
}

// SpendToAddress is a SpendTo convenience for a decoded address; it
// builds the matching P2PKH or P2SH locking script for addr's type.
func (b *Builder) SpendToAddress(addr *address.Address, value int64) *Builder {
	return b.SpendTo(lockBuilderForAddress(addr), value)
}

// SendChangeTo designates lockBuilder as the destination for any value
// left over once outputs and fee are accounted for. Build adds, resizes,
// or omits this output as needed to converge on the target fee rate;
// calling SendChangeTo again replaces the previous destination. Fails
// with ErrMutationAfterSigning once any input has been signed.
func (b *Builder) SendChangeTo(lockBuilder txscript.LockBuilder) *Builder {
	if b.err != nil {
		return b
	}
	if b.anySigned() {
		return b.fail(ErrMutationAfterSigning)
	}
	b.changeBuilder = lockBuilder
	return b
}

// SendChangeToAddress is a SendChangeTo convenience for a decoded address.
func (b *Builder) SendChangeToAddress(addr *address.Address) *Builder {
	return b.SendChangeTo(lockBuilderForAddress(addr))
}

func lockBuilderForAddress(addr *address.Address) txscript.LockBuilder {
	hash := addr.Hash160()
	if addr.AddrType() == address.P2SH {
		return &txscript.P2SHLockBuilder{ScriptHash: hash[:]}
	}
	return &txscript.P2PKHLockBuilder{PubKeyHash: hash[:]}
}

// WithFeePerKb overrides the target fee density in satoshis per 1000
// serialized bytes.
func (b *Builder) WithFeePerKb(rate int64) *Builder {
	if b.err != nil {
		return b
	}
	b.feePerKb = rate
	return b
}

// WithDustThreshold overrides the minimum economic change value.
func (b *Builder) WithDustThreshold(threshold int64) *Builder {
	if b.err != nil {
		return b
	}
	b.dustThreshold = threshold
	return b
}

// WithLockTime sets the transaction's nLockTime.
func (b *Builder) WithLockTime(lockTime uint32) *Builder {
	if b.err != nil {
		return b
	}
	b.tx.LockTime = lockTime
	return b
}

// Build resolves the change output, if any, against the target fee rate
// and returns the finalized, not-yet-signed transaction. It may be
// called more than once; each call first drops any change output left
// over from a previous call and recomputes it from the current input and
// output set. If any input was already signed, those signatures are
// cleared first, since they committed to an output set Build is about to
// replace; callers must re-sign after a repeat Build call.
func (b *Builder) Build() (*wire.MsgTx, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.inputs) == 0 {
		return nil, ErrMissingUTXOValue
	}

	if b.anySigned() {
		log.Debugf("txbuilder: re-building after signing, clearing %d stale signature(s)", len(b.inputs))
		b.clearSignatures()
	}

	b.tx.TxOut = b.tx.TxOut[:b.fixedOutputs]

	var sumIn, sumOut int64
	for _, in := range b.inputs {
		sumIn += in.utxo.Value
	}
	for _, out := range b.tx.TxOut {
		sumOut += out.Value
	}

	var changeScript []byte
	if b.changeBuilder != nil {
		script, err := b.changeBuilder.LockScript()
		if err != nil {
			return nil, err
		}
		changeScript = script
	}

	includeChange := changeScript != nil
	var fee, change int64
	for iter := 0; iter < maxFeeIterations; iter++ {
		size := b.estimatedSize(includeChange, changeScript)
		fee = feeForSize(size, b.feePerKb)
		if sumIn-sumOut < fee {
			return nil, ErrInsufficientFunds
		}
		change = sumIn - sumOut - fee

		if !includeChange {
			if change > b.dustThreshold {
				return nil, ErrChangeAddressNotSet
			}
			break
		}
		if change < b.dustThreshold {
			includeChange = false
			continue
		}
		break
	}

	if includeChange {
		b.tx.AddTxOut(wire.NewTxOut(change, changeScript))
	}

	log.Debugf("txbuilder: built tx with %d inputs, %d outputs, fee %d sat",
		len(b.tx.TxIn), len(b.tx.TxOut), fee)
	return b.tx, nil
}

// estimatedSize computes the serialized size of the transaction as it
// would be if every input carried its unlock builder's worst-case
// unlocking script and, if includeChange is set, a change output with
// changeScript were appended.
func (b *Builder) estimatedSize(includeChange bool, changeScript []byte) int {
	size := 4 + 4 // version + lock time
	size += wire.VarIntSerializeSize(uint64(len(b.inputs)))
	for _, in := range b.inputs {
		placeholderLen := 0
		if in.unlock != nil {
			placeholderLen = in.unlock.EstimateSize()
		}
		size += 32 + 4 + 4 // outpoint hash + outpoint index + sequence
		size += wire.VarIntSerializeSize(uint64(placeholderLen)) + placeholderLen
	}

	outCount := len(b.tx.TxOut)
	if includeChange {
		outCount++
	}
	size += wire.VarIntSerializeSize(uint64(outCount))
	for _, out := range b.tx.TxOut {
		size += out.SerializeSize()
	}
	if includeChange {
		size += 8 + wire.VarIntSerializeSize(uint64(len(changeScript))) + len(changeScript)
	}
	return size
}

// feeForSize rounds size*ratePerKb/1000 up to the next whole satoshi.
func feeForSize(size int, ratePerKb int64) int64 {
	return (int64(size)*ratePerKb + 999) / 1000
}

// SignInput computes the signature hash for the idx'th input against its
// UTXO's locking script and installs the unlocking script its unlock
// builder produces. Build must be called first so the output set (and
// therefore the preimage SignInput signs over) is final. Signing is
// idempotent: resigning an input overwrites its previous unlocking
// script.
func (b *Builder) SignInput(idx int, hashType txscript.SigHashType) error {
	if idx < 0 || idx >= len(b.inputs) {
		return fmt.Errorf("txbuilder: input index %d out of range", idx)
	}
	in := b.inputs[idx]
	if in.unlock == nil {
		return ErrMissingUnlockBuilder
	}

	unlockScript, err := in.unlock.BuildUnlock(txscript.UnlockContext{
		Tx:          b.tx,
		InputIdx:    idx,
		InputAmount: in.utxo.Value,
		SubScript:   in.utxo.PkScript,
		HashType:    hashType,
	})
	if err != nil {
		return err
	}

	b.tx.TxIn[idx].SignatureScript = unlockScript
	b.signed[idx] = true
	log.Debugf("txbuilder: signed input %d", idx)
	return nil
}

// SignAll signs every input with hashType in order, stopping at the
// first error.
func (b *Builder) SignAll(hashType txscript.SigHashType) error {
	for i := range b.inputs {
		if err := b.SignInput(i, hashType); err != nil {
			return err
		}
	}
	return nil
}
