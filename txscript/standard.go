// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"errors"

	"github.com/bsvd/bsvd/bsvec"
	"github.com/bsvd/bsvd/wire"
)

// ErrNotAStandardTemplate is returned by GetScriptClass's parameter
// extractors when a script does not match any recognized template. It is
// a classification outcome, not a validation failure, so it is kept
// separate from the ScriptError family the interpreter raises.
var ErrNotAStandardTemplate = errors.New("not a standard script template")

// ScriptClass identifies which of the standard locking script templates,
// if any, a script matches.
type ScriptClass int

const (
	NonStandardTy ScriptClass = iota
	PubKeyHashTy
	ScriptHashTy
	PubKeyTy
	MultiSigTy
	NullDataTy
)

func (c ScriptClass) String() string {
	switch c {
	case PubKeyHashTy:
		return "pubkeyhash"
	case ScriptHashTy:
		return "scripthash"
	case PubKeyTy:
		return "pubkey"
	case MultiSigTy:
		return "multisig"
	case NullDataTy:
		return "nulldata"
	default:
		return "nonstandard"
	}
}

// GetScriptClass returns the class of the passed locking script.
func GetScriptClass(script []byte) ScriptClass {
	pops, err := parseScript(script)
	if err != nil {
		return NonStandardTy
	}
	return typeOfScript(pops)
}

func typeOfScript(pops []parsedOpcode) ScriptClass {
	switch {
	case isPubKeyHash(pops):
		return PubKeyHashTy
	case isScriptHashPops(pops):
		return ScriptHashTy
	case isPubKey(pops):
		return PubKeyTy
	case isMultiSig(pops):
		return MultiSigTy
	case isNullData(pops):
		return NullDataTy
	default:
		return NonStandardTy
	}
}

func isPubKeyHash(pops []parsedOpcode) bool {
	return len(pops) == 5 &&
		pops[0].opcode.value == OP_DUP &&
		pops[1].opcode.value == OP_HASH160 &&
		pops[2].opcode.value == OP_DATA_20 &&
		len(pops[2].data) == 20 &&
		pops[3].opcode.value == OP_EQUALVERIFY &&
		pops[4].opcode.value == OP_CHECKSIG
}

func isScriptHashPops(pops []parsedOpcode) bool {
	return isScriptHash(pops)
}

func isPubKey(pops []parsedOpcode) bool {
	return len(pops) == 2 &&
		pops[1].opcode.value == OP_CHECKSIG &&
		(len(pops[0].data) == 33 || len(pops[0].data) == 65) &&
		pops[0].opcode.value <= OP_PUSHDATA4
}

func isMultiSig(pops []parsedOpcode) bool {
	if len(pops) < 4 {
		return false
	}
	if !isSmallInt(pops[0].opcode.value) {
		return false
	}
	numPubKeys := asSmallInt(pops[0].opcode.value)
	if len(pops) != numPubKeys+3 {
		return false
	}
	for _, pop := range pops[1 : len(pops)-2] {
		if len(pop.data) != 33 && len(pop.data) != 65 {
			return false
		}
	}
	if !isSmallInt(pops[len(pops)-2].opcode.value) {
		return false
	}
	if asSmallInt(pops[len(pops)-2].opcode.value) != numPubKeys {
		return false
	}
	return pops[len(pops)-1].opcode.value == OP_CHECKMULTISIG
}

// isNullData recognizes the OP_FALSE OP_RETURN template: an OP_FALSE
// prefix (guaranteeing unspendability without ever executing past it),
// followed by OP_RETURN and zero or more data pushes.
func isNullData(pops []parsedOpcode) bool {
	if len(pops) < 2 {
		return false
	}
	if pops[0].opcode.value != OP_FALSE || pops[1].opcode.value != OP_RETURN {
		return false
	}
	return isPushOnly(pops[2:])
}

func isSmallInt(op byte) bool {
	return op == OP_0 || (op >= OP_1 && op <= OP_16)
}

// LockBuilder produces the locking (scriptPubKey) half of a standard
// template.
type LockBuilder interface {
	LockScript() ([]byte, error)
}

// UnlockContext carries everything an UnlockBuilder needs to compute a
// signature hash and produce the unlocking (scriptSig) half of a
// standard template: the transaction being signed, which input is being
// satisfied, the value of the output it spends (required for
// FORKID/BIP143 preimages), the subscript being signed (the locking
// script, or the redeem script for P2SH), and the SIGHASH type to use.
type UnlockContext struct {
	Tx          *wire.MsgTx
	InputIdx    int
	InputAmount int64
	SubScript   []byte
	HashType    SigHashType
}

// UnlockBuilder produces the unlocking (scriptSig) half of a standard
// template and estimates its encoded size for fee calculation.
type UnlockBuilder interface {
	BuildUnlock(ctx UnlockContext) ([]byte, error)
	EstimateSize() int
}

// P2PKHLockBuilder builds a pay-to-pubkey-hash locking script.
type P2PKHLockBuilder struct {
	PubKeyHash []byte
}

func (b *P2PKHLockBuilder) LockScript() ([]byte, error) {
	if len(b.PubKeyHash) != 20 {
		return nil, scriptError(ErrBadOpcode, "pubkey hash must be 20 bytes, got %d", len(b.PubKeyHash))
	}
	return NewScriptBuilder().
		AddOp(OP_DUP).
		AddOp(OP_HASH160).
		AddData(b.PubKeyHash).
		AddOp(OP_EQUALVERIFY).
		AddOp(OP_CHECKSIG).
		Script()
}

// P2PKHUnlockBuilder builds the <sig> <pubkey> unlocking script for a
// pay-to-pubkey-hash output.
type P2PKHUnlockBuilder struct {
	PrivKey *bsvec.PrivateKey
	PubKey  []byte
}

func (b *P2PKHUnlockBuilder) BuildUnlock(ctx UnlockContext) ([]byte, error) {
	sigBytes, err := signSubscript(b.PrivKey, ctx)
	if err != nil {
		return nil, err
	}
	return NewScriptBuilder().AddData(sigBytes).AddData(b.PubKey).Script()
}

// EstimateSize returns the conventional worst-case size of a P2PKH
// unlocking script: 1 (push len) + 72 (max DER sig) + 1 (hashtype) + 1
// (push len) + 33 (compressed pubkey).
func (b *P2PKHUnlockBuilder) EstimateSize() int { return 108 }

// P2PKLockBuilder builds a bare pay-to-pubkey locking script.
type P2PKLockBuilder struct {
	PubKey []byte
}

func (b *P2PKLockBuilder) LockScript() ([]byte, error) {
	return NewScriptBuilder().AddData(b.PubKey).AddOp(OP_CHECKSIG).Script()
}

// P2PKUnlockBuilder builds the <sig> unlocking script for a bare
// pay-to-pubkey output.
type P2PKUnlockBuilder struct {
	PrivKey *bsvec.PrivateKey
}

func (b *P2PKUnlockBuilder) BuildUnlock(ctx UnlockContext) ([]byte, error) {
	sigBytes, err := signSubscript(b.PrivKey, ctx)
	if err != nil {
		return nil, err
	}
	return NewScriptBuilder().AddData(sigBytes).Script()
}

func (b *P2PKUnlockBuilder) EstimateSize() int { return 73 }

// P2SHLockBuilder builds a pay-to-script-hash locking script.
type P2SHLockBuilder struct {
	ScriptHash []byte
}

func (b *P2SHLockBuilder) LockScript() ([]byte, error) {
	if len(b.ScriptHash) != 20 {
		return nil, scriptError(ErrBadOpcode, "script hash must be 20 bytes, got %d", len(b.ScriptHash))
	}
	return NewScriptBuilder().
		AddOp(OP_HASH160).
		AddData(b.ScriptHash).
		AddOp(OP_EQUAL).
		Script()
}

// P2SHUnlockBuilder wraps another UnlockBuilder (typically a
// P2MSUnlockBuilder) and appends the serialized redeem script as the
// final pushed item, per the P2SH template's `<args...> <redeemScript>`
// unlocking form.
type P2SHUnlockBuilder struct {
	Inner        UnlockBuilder
	RedeemScript []byte
}

func (b *P2SHUnlockBuilder) BuildUnlock(ctx UnlockContext) ([]byte, error) {
	innerCtx := ctx
	innerCtx.SubScript = b.RedeemScript
	args, err := b.Inner.BuildUnlock(innerCtx)
	if err != nil {
		return nil, err
	}
	return NewScriptBuilder().AddOps(args).AddData(b.RedeemScript).Script()
}

func (b *P2SHUnlockBuilder) EstimateSize() int {
	return b.Inner.EstimateSize() + 3 + len(b.RedeemScript)
}

// P2MSLockBuilder builds a bare multisig ("M-of-N") locking script.
type P2MSLockBuilder struct {
	M       int
	PubKeys [][]byte
}

func (b *P2MSLockBuilder) LockScript() ([]byte, error) {
	if b.M <= 0 || b.M > len(b.PubKeys) || len(b.PubKeys) > MaxPubKeysPerMultiSig {
		return nil, scriptError(ErrTooManyPubKeys, "invalid m-of-n: m=%d n=%d", b.M, len(b.PubKeys))
	}
	builder := NewScriptBuilder().AddInt64(int64(b.M))
	for _, pk := range b.PubKeys {
		builder.AddData(pk)
	}
	builder.AddInt64(int64(len(b.PubKeys))).AddOp(OP_CHECKMULTISIG)
	return builder.Script()
}

// P2MSUnlockBuilder builds the `OP_0 <sig1>..<sigM>` unlocking script
// for a bare multisig output; the leading OP_0 compensates for
// CHECKMULTISIG's historical off-by-one extra stack pop.
type P2MSUnlockBuilder struct {
	PrivKeys []*bsvec.PrivateKey
}

func (b *P2MSUnlockBuilder) BuildUnlock(ctx UnlockContext) ([]byte, error) {
	builder := NewScriptBuilder().AddOp(OP_0)
	for _, key := range b.PrivKeys {
		sigBytes, err := signSubscript(key, ctx)
		if err != nil {
			return nil, err
		}
		builder.AddData(sigBytes)
	}
	return builder.Script()
}

func (b *P2MSUnlockBuilder) EstimateSize() int {
	return 1 + len(b.PrivKeys)*74
}

// DataLockBuilder builds an unspendable OP_FALSE OP_RETURN data-carrier
// script: the OP_FALSE prefix makes the script provably unspendable from
// the first opcode, letting nodes prune it from the UTXO set without
// interpreting what follows, while the data itself may be split across
// any number of pushes.
type DataLockBuilder struct {
	Data [][]byte
}

func (b *DataLockBuilder) LockScript() ([]byte, error) {
	builder := NewScriptBuilder().AddOp(OP_FALSE).AddOp(OP_RETURN)
	for _, push := range b.Data {
		builder.AddData(push)
	}
	return builder.Script()
}

// signSubscript computes the signature hash for ctx.SubScript against
// ctx.Tx/ctx.InputIdx and signs it with key, returning the DER signature
// with the SIGHASH type byte appended, ready to push onto the unlocking
// script.
func signSubscript(key *bsvec.PrivateKey, ctx UnlockContext) ([]byte, error) {
	script := removeOpcodeRaw(ctx.SubScript, OP_CODESEPARATOR)
	hash, err := CalcSignatureHash(script, ctx.HashType, ctx.Tx, ctx.InputIdx, ctx.InputAmount)
	if err != nil {
		return nil, err
	}
	sig := bsvec.Sign(key, hash)
	return append(sig.Serialize(), byte(ctx.HashType)), nil
}
