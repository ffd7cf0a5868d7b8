// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"github.com/bsvd/bsvd/bsvec"
	"github.com/bsvd/bsvd/wire"
)

// ScriptFlags is a bitmask of the optional rules the interpreter enforces
// in addition to baseline execution. All of them describe a way a
// script that would otherwise succeed should instead be rejected;
// turning a flag off never makes a previously-failing script succeed.
type ScriptFlags uint32

const (
	// ScriptBip16 defines whether the bip16 threshold has passed and
	// thus pay-to-script-hash transactions will be fully validated.
	ScriptBip16 ScriptFlags = 1 << iota

	// ScriptVerifyDERSignatures defines that signatures are required
	// to compy with the DER format.
	ScriptVerifyDERSignatures

	// ScriptVerifyLowS defines that signatures are required to comply
	// with the DER format and it's S value must be <= order / 2.
	ScriptVerifyLowS

	// ScriptStrictMultiSig defines whether to verify the stack item used
	// by CHECKMULTISIG is zero length.
	ScriptStrictMultiSig

	// ScriptDiscourageUpgradableNops defines whether to verify that
	// NOP1 through NOP10 are reserved for future soft-fork upgrades.
	ScriptDiscourageUpgradableNops

	// ScriptVerifyCleanStack defines that the stack must contain only
	// one stack element when evaluation finishes and that the element
	// must be true if interpreted as a boolean.
	ScriptVerifyCleanStack

	// ScriptVerifyNullFail defines that signatures must be empty if an
	// associated CHECKSIG or CHECKMULTISIG is failed.
	ScriptVerifyNullFail

	// ScriptVerifyNullDummy defines that signatures must be empty if an
	// associated CHECKMULTISIG dummy argument is supplied.
	ScriptVerifyNullDummy

	// ScriptVerifySigPushOnly defines that the signature script must
	// only contain pushed data.
	ScriptVerifySigPushOnly

	// ScriptVerifyMinimalData defines that a minimal number of bytes
	// must be used to push data on the stack.
	ScriptVerifyMinimalData

	// ScriptEnableSighashForkID defines that signature hashes should
	// use the hashing algorithm defined by BIP143 plus a SIGHASH_FORKID
	// component, as used by Bitcoin Cash/BSV since their fork.
	ScriptEnableSighashForkID
)

const (
	// MaxStackSize is the maximum combined height of the data stack and
	// alt stack allowed during execution.
	MaxStackSize = 1000

	// MaxOpsPerScript is the maximum number of non-push operations
	// allowed to be executed.
	MaxOpsPerScript = 201

	// MaxPubKeysPerMultiSig is the maximum number of public keys allowed
	// in an OP_CHECKMULTISIG.
	MaxPubKeysPerMultiSig = 20

	// payToScriptHashPubKeyOpcode-related nesting, lock/unlock counts,
	// etc. all live in standard.go.
	lockTimeThreshold = 500000000
)

// halfBlocksRemaining and other consensus-time concepts are out of scope;
// this engine validates one input's scriptSig against the matching
// previous output's scriptPubKey and nothing more.

// Engine is the virtual machine that executes bitcoin scripts.
type Engine struct {
	scripts         [][]parsedOpcode
	scriptIdx       int
	scriptOff       int
	lastCodeSep     int
	dstack          stack
	astack          stack
	tx              *wire.MsgTx
	txIdx           int
	condStack       []int
	numOps          int
	flags           ScriptFlags
	sigCache        SigCache
	inputAmount     int64
	bip16           bool
	savedFirstStack [][]byte
}

const (
	// opcondFalse, opcondTrue and opcondSkip mirror the classic
	// btcsuite condStack encoding: >0 means currently executing, <0
	// means skipping a branch that was never taken, 0 means this IF has
	// already seen its executed branch and is now skipping ELSE.
	opCondFalse = 0
	opCondTrue  = 1
	opCondSkip  = 2
)

// SigCache is the minimal signature-verification cache interface the
// engine consults before doing expensive ECDSA work; a caller that does
// not want caching can pass nil.
type SigCache interface {
	Exists(sigHash [32]byte, sig, pubKey []byte) bool
	Add(sigHash [32]byte, sig, pubKey []byte)
}

// hasFlag returns whether the script engine instance has the passed flag
// set.
func (vm *Engine) hasFlag(flag ScriptFlags) bool {
	return vm.flags&flag == flag
}

// isBranchExecuting returns whether or not the current conditional branch
// is actively executing.
func (vm *Engine) isBranchExecuting() bool {
	if len(vm.condStack) == 0 {
		return true
	}
	return vm.condStack[len(vm.condStack)-1] == opCondTrue
}

// executeOpcode peforms execution on the passed opcode.
func (vm *Engine) executeOpcode(pop *parsedOpcode) error {
	log.Tracef("executing input %d script %d offset %d: %s", vm.txIdx,
		vm.scriptIdx, vm.scriptOff, pop.opcode.name)

	// Disabled opcodes are fail on program counter.
	if pop.isDisabled() {
		return scriptError(ErrDisabledOpcode, "attempt to execute disabled opcode %s", pop.opcode.name)
	}

	// Always-illegal opcodes are fail on program counter.
	if pop.alwaysIllegal() {
		return scriptError(ErrBadOpcode, "attempt to execute reserved opcode %s", pop.opcode.name)
	}

	// Note that this includes OP_RESERVED which counts as a push-type
	// opcode.
	if pop.opcode.value > OP_16 {
		vm.numOps++
		if vm.numOps > MaxOpsPerScript {
			return scriptError(ErrTooManyOperations, "exceeded max operation limit of %d", MaxOpsPerScript)
		}
	} else if len(pop.data) > MaxScriptElementSize {
		return scriptError(ErrPushSize, "element size %d exceeds max allowed size %d", len(pop.data), MaxScriptElementSize)
	}

	// Nothing left to do when this is not a conditional opcode and it is
	// not in an executing branch.
	if !vm.isBranchExecuting() && !pop.isConditional() {
		return nil
	}

	// Ensure all executed data push opcodes use the minimal encoding
	// when the minimal data verification flag is set.
	if vm.dstack.maxStackDepth == MaxStackSize && vm.hasFlag(ScriptVerifyMinimalData) &&
		vm.isBranchExecuting() && pop.opcode.value <= OP_PUSHDATA4 {
		if err := pop.checkMinimalDataPush(); err != nil {
			return err
		}
	}

	return pop.opcode.opfunc(pop.opcode, pop.data, vm)
}

// checkMinimalDataPush verifies a push-type opcode used the shortest
// possible encoding for the data it pushes, per BIP62 rule 3/4.
func (pop *parsedOpcode) checkMinimalDataPush() error {
	data := pop.data
	opcode := pop.opcode.value

	if opcode == OP_0 && len(data) != 0 {
		return scriptError(ErrMinimalData, "zero not minimally encoded")
	} else if opcode > OP_0 && opcode <= OP_PUSHDATA4 {
		if dataLen := len(data); dataLen == 0 && opcode != OP_0 {
			return nil
		}
		if !canonicalPush(*pop) {
			return scriptError(ErrMinimalData, "%s is not minimally encoded", pop.opcode.name)
		}
	}
	return nil
}

// curScript returns the currently executing sub-script.
func (vm *Engine) curScript() []parsedOpcode {
	return vm.scripts[vm.scriptIdx]
}

// subScript returns the script since the last OP_CODESEPARATOR, used as
// the "scriptCode" committed to by CHECKSIG/CHECKMULTISIG.
func (vm *Engine) subScript() []parsedOpcode {
	return vm.curScript()[vm.lastCodeSep:]
}

// checkHashTypeEncoding enforces SIGHASH_FORKID policy on a signature's
// hash-type byte: when ScriptEnableSighashForkID is set, every signature
// must carry the FORKID bit, matching the post-fork consensus rule that a
// legacy (non-FORKID) signature is no longer valid once the fork height is
// active. The flag being unset imposes no FORKID requirement either way,
// since pre-fork signatures must still verify under pre-fork rules.
func (vm *Engine) checkHashTypeEncoding(hashType SigHashType) error {
	if vm.hasFlag(ScriptEnableSighashForkID) && !hashType.hasForkID() {
		return scriptError(ErrIllegalForkID,
			"signature hash type %v is missing the required SIGHASH_FORKID bit", hashType)
	}
	return nil
}

// checkPubKeyEncoding enforces strict pubkey encoding (compressed or
// uncompressed, never hybrid) on CHECKSIG/CHECKMULTISIG operands.
func (vm *Engine) checkPubKeyEncoding(pubKey []byte) error {
	if len(pubKey) == 33 && (pubKey[0] == 0x02 || pubKey[0] == 0x03) {
		return nil
	}
	if len(pubKey) == 65 && pubKey[0] == 0x04 {
		return nil
	}
	return scriptError(ErrInvalidPubKey, "unsupported public key encoding, length %d", len(pubKey))
}

// checkSignatureEncoding verifies that sig is a valid, canonically
// encoded DER signature, optionally demanding a low S value, per the
// flags active on the engine.
func (vm *Engine) checkSignatureEncoding(sig []byte) error {
	if len(sig) == 0 {
		return nil
	}
	if vm.hasFlag(ScriptVerifyDERSignatures) || vm.hasFlag(ScriptVerifyLowS) {
		if err := bsvec.CheckSignatureEncoding(sig); err != nil {
			return scriptError(ErrInvalidSignature, "%v", err)
		}
	}
	if vm.hasFlag(ScriptVerifyLowS) {
		parsedSig, err := bsvec.ParseDERSignature(sig)
		if err == nil {
			if !bsvec.IsLowS(parsedSig) {
				return scriptError(ErrInvalidSignature, "signature not in low S form")
			}
		}
	}
	return nil
}

// Execute runs the script engine to completion and returns whether the
// script is valid. Even if an error is returned, partial stack state
// should not be relied on; errors make the whole evaluation invalid.
func (vm *Engine) Execute() error {
	done := false
	for !done {
		finished, err := vm.Step()
		if err != nil {
			return err
		}
		done = finished
	}

	if vm.dstack.Depth()+vm.astack.Depth() > MaxStackSize {
		return scriptError(ErrStackOverflow, "combined stack size exceeds max allowed")
	}

	if len(vm.condStack) != 0 {
		return scriptError(ErrUnbalancedConditional, "end of script reached in conditional execution")
	}

	if vm.dstack.Depth() < 1 {
		return scriptError(ErrEvalFalse, "stack empty at end of script execution")
	}

	ok, err := vm.dstack.PeekBool(0)
	if err != nil {
		return err
	}
	if !ok {
		return scriptError(ErrEvalFalse, "false stack entry at end of script execution")
	}

	if vm.hasFlag(ScriptVerifyCleanStack) {
		if vm.dstack.Depth() != 1 {
			return scriptError(ErrCleanStack, "stack contains %d unexpected items", vm.dstack.Depth()-1)
		}
	}

	return nil
}

// Step executes the next instruction and returns whether or not the
// script is complete. The P2SH re-execution (if any) happens inside this
// loop when the final sigScript-only script reaches its end.
func (vm *Engine) Step() (done bool, err error) {
	if len(vm.curScript()) == 0 {
		return vm.advanceScript()
	}

	opcode := &vm.curScript()[vm.scriptOff]
	vm.scriptOff++

	if err := vm.executeOpcode(opcode); err != nil {
		return true, err
	}

	if vm.dstack.Depth()+vm.astack.Depth() > MaxStackSize {
		return true, scriptError(ErrStackOverflow, "combined stack size exceeds max allowed")
	}

	if vm.scriptOff < len(vm.curScript()) {
		return false, nil
	}

	if len(vm.condStack) != 0 {
		return true, scriptError(ErrUnbalancedConditional, "end of script reached in conditional execution")
	}

	return vm.advanceScript()
}

// advanceScript moves execution on to the next script in vm.scripts
// (applying the BIP16 P2SH bookkeeping when the script just finished was
// the first or second of a P2SH evaluation), skipping over any
// zero-length scripts, and reports whether the whole engine is done.
func (vm *Engine) advanceScript() (done bool, err error) {
	vm.scriptOff = 0
	if vm.scriptIdx == 0 && vm.bip16 {
		vm.scriptIdx++
		vm.savedFirstStack = vm.dstack.stk
	} else if vm.scriptIdx == 1 && vm.bip16 {
		// Put the sigScript-originated stack back in place and append
		// the redeem script, parsed from the top stack item, as a
		// third script to run: the BIP16 P2SH second evaluation pass.
		if len(vm.savedFirstStack) == 0 {
			return true, scriptError(ErrEvalFalse, "signature script did not push anything for p2sh evaluation")
		}

		redeemScript := vm.savedFirstStack[len(vm.savedFirstStack)-1]
		pops, err := parseScript(redeemScript)
		if err != nil {
			return true, err
		}
		vm.scripts = append(vm.scripts, pops)

		vm.dstack.stk = vm.savedFirstStack[:len(vm.savedFirstStack)-1]
		vm.scriptIdx++
		vm.lastCodeSep = 0
	} else {
		vm.scriptIdx++
	}

	if vm.scriptIdx >= len(vm.scripts) {
		return true, nil
	}

	if len(vm.curScript()) == 0 {
		return vm.advanceScript()
	}

	return false, nil
}

// NewEngine returns a new script engine for the provided public key
// script, transaction, and input index. The flags modify the behavior of
// the script engine according to the description provided by each
// ScriptFlags constant. inputAmount is the value in satoshis of the
// output being spent, required for BIP143/FORKID sighash computation.
func NewEngine(scriptPubKey []byte, tx *wire.MsgTx, txIdx int, flags ScriptFlags, inputAmount int64) (*Engine, error) {
	if txIdx < 0 || txIdx >= len(tx.TxIn) {
		return nil, scriptError(ErrInvalidStackOperation, "transaction input index %d is negative or out of bounds (max %d)", txIdx, len(tx.TxIn)-1)
	}
	scriptSig := tx.TxIn[txIdx].SignatureScript

	if flags&ScriptVerifySigPushOnly == ScriptVerifySigPushOnly && !IsPushOnlyScript(scriptSig) {
		return nil, scriptError(ErrNotPushOnly, "signature script is not push only")
	}

	vm := Engine{flags: flags, tx: tx, txIdx: txIdx, inputAmount: inputAmount}

	scriptSigParsed, err := parseScript(scriptSig)
	if err != nil {
		return nil, err
	}
	scriptPubKeyParsed, err := parseScript(scriptPubKey)
	if err != nil {
		return nil, err
	}

	bip16 := flags&ScriptBip16 == ScriptBip16 && isScriptHash(scriptPubKeyParsed)
	if bip16 {
		if !isPushOnly(scriptSigParsed) {
			return nil, scriptError(ErrNotPushOnly, "pay to script hash is not push only")
		}
		vm.bip16 = true
	}

	vm.scripts = [][]parsedOpcode{scriptSigParsed, scriptPubKeyParsed}

	vm.dstack.maxStackDepth = MaxStackSize
	vm.astack.maxStackDepth = MaxStackSize

	return &vm, nil
}

// isScriptHash reports whether the parsed script is the canonical
// OP_HASH160 <20 bytes> OP_EQUAL pay-to-script-hash template.
func isScriptHash(pops []parsedOpcode) bool {
	return len(pops) == 3 &&
		pops[0].opcode.value == OP_HASH160 &&
		pops[1].opcode.value == OP_DATA_20 &&
		len(pops[1].data) == 20 &&
		pops[2].opcode.value == OP_EQUAL
}

// OP_DATA_20 is the direct-push opcode for a 20-byte item; defined here
// rather than opcode.go's const block since it is only referenced by
// template-matching helpers like isScriptHash, not the dispatch table.
const OP_DATA_20 = 0x14
