// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"crypto/sha1"
	"crypto/sha256"

	"github.com/bsvd/bsvd/bsvec"
	"github.com/bsvd/bsvd/chainhash"
	"golang.org/x/crypto/ripemd160"
)

// opcodeDisabled is a common handler for disabled opcodes; it should
// never actually execute, since executeOpcode rejects disabled opcodes
// before dispatch, but every table slot needs a function pointer.
func opcodeDisabled(op *opcode, data []byte, vm *Engine) error {
	return scriptError(ErrDisabledOpcode, "attempt to execute disabled opcode %s", op.name)
}

func opcodeFalse(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.PushByteArray(nil)
}

func opcodePushData(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.PushByteArray(data)
}

func opcode1Negate(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.PushInt(scriptNum(-1))
}

func opcodeReserved(op *opcode, data []byte, vm *Engine) error {
	return scriptError(ErrBadOpcode, "attempt to execute reserved opcode %s", op.name)
}

func opcodeN(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.PushInt(scriptNum(asSmallInt(op.value)))
}

func opcodeNop(op *opcode, data []byte, vm *Engine) error {
	if op.value == OP_NOP1 || (op.value >= OP_NOP4 && op.value <= OP_NOP10) {
		if vm.hasFlag(ScriptDiscourageUpgradableNops) {
			return scriptError(ErrDiscourageUpgradableNOPs, "OP_NOP%d reserved for soft-fork upgrades", op.value-OP_NOP1+1)
		}
	}
	return nil
}

func opcodeIf(op *opcode, data []byte, vm *Engine) error {
	condVal := opCondFalse
	if vm.isBranchExecuting() {
		ok, err := vm.dstack.PopBool()
		if err != nil {
			return err
		}
		if ok {
			condVal = opCondTrue
		}
		if op.value == OP_NOTIF {
			if condVal == opCondTrue {
				condVal = opCondFalse
			} else {
				condVal = opCondTrue
			}
		}
	} else {
		condVal = opCondSkip
	}
	vm.condStack = append(vm.condStack, condVal)
	return nil
}

func opcodeElse(op *opcode, data []byte, vm *Engine) error {
	if len(vm.condStack) == 0 {
		return scriptError(ErrUnbalancedConditional, "encountered opcode %s with no matching OP_IF", op.name)
	}
	idx := len(vm.condStack) - 1
	switch vm.condStack[idx] {
	case opCondTrue:
		vm.condStack[idx] = opCondFalse
	case opCondFalse:
		vm.condStack[idx] = opCondTrue
	case opCondSkip:
		// remains skipped
	}
	return nil
}

func opcodeEndif(op *opcode, data []byte, vm *Engine) error {
	if len(vm.condStack) == 0 {
		return scriptError(ErrUnbalancedConditional, "encountered opcode %s with no matching OP_IF", op.name)
	}
	vm.condStack = vm.condStack[:len(vm.condStack)-1]
	return nil
}

func opcodeVerify(op *opcode, data []byte, vm *Engine) error {
	verified, err := vm.dstack.PopBool()
	if err != nil {
		return err
	}
	if !verified {
		return scriptError(ErrVerify, "%s failed", op.name)
	}
	return nil
}

func opcodeReturn(op *opcode, data []byte, vm *Engine) error {
	return scriptError(ErrEarlyReturn, "script called OP_RETURN")
}

func opcodeToAltStack(op *opcode, data []byte, vm *Engine) error {
	so, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	return vm.astack.PushByteArray(so)
}

func opcodeFromAltStack(op *opcode, data []byte, vm *Engine) error {
	so, err := vm.astack.PopByteArray()
	if err != nil {
		return err
	}
	return vm.dstack.PushByteArray(so)
}

func opcode2Drop(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.DropN(2)
}

func opcode2Dup(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.DupN(2)
}

func opcode3Dup(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.DupN(3)
}

func opcode2Over(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.OverN(2)
}

func opcode2Rot(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.RotN(2)
}

func opcode2Swap(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.SwapN(2)
}

func opcodeIfDup(op *opcode, data []byte, vm *Engine) error {
	so, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}
	if asBool(so) {
		return vm.dstack.PushByteArray(so)
	}
	return nil
}

func opcodeDepth(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.PushInt(scriptNum(vm.dstack.Depth()))
}

func opcodeDrop(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.DropN(1)
}

func opcodeDup(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.DupN(1)
}

func opcodeNip(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.NipN(1)
}

func opcodeOver(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.OverN(1)
}

func opcodePick(op *opcode, data []byte, vm *Engine) error {
	val, err := vm.dstack.PopInt(vm.hasFlag(ScriptVerifyMinimalData), defaultScriptNumLen)
	if err != nil {
		return err
	}
	return vm.dstack.PickN(int(val.Int32()))
}

func opcodeRoll(op *opcode, data []byte, vm *Engine) error {
	val, err := vm.dstack.PopInt(vm.hasFlag(ScriptVerifyMinimalData), defaultScriptNumLen)
	if err != nil {
		return err
	}
	return vm.dstack.RollN(int(val.Int32()))
}

func opcodeRot(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.RotN(1)
}

func opcodeSwap(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.SwapN(1)
}

func opcodeTuck(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.Tuck()
}

func opcodeSize(op *opcode, data []byte, vm *Engine) error {
	so, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}
	return vm.dstack.PushInt(scriptNum(len(so)))
}

func opcodeEqual(op *opcode, data []byte, vm *Engine) error {
	a, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	b, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	return vm.dstack.PushBool(bytes.Equal(a, b))
}

func opcodeEqualVerify(op *opcode, data []byte, vm *Engine) error {
	if err := opcodeEqual(op, data, vm); err != nil {
		return err
	}
	ok, err := vm.dstack.PopBool()
	if err != nil {
		return err
	}
	if !ok {
		return scriptError(ErrEqualVerify, "%s failed", op.name)
	}
	return nil
}

func arithOperand(vm *Engine) (scriptNum, error) {
	return vm.dstack.PopInt(vm.hasFlag(ScriptVerifyMinimalData), defaultScriptNumLen)
}

func opcode1Add(op *opcode, data []byte, vm *Engine) error {
	n, err := arithOperand(vm)
	if err != nil {
		return err
	}
	return vm.dstack.PushInt(n + 1)
}

func opcode1Sub(op *opcode, data []byte, vm *Engine) error {
	n, err := arithOperand(vm)
	if err != nil {
		return err
	}
	return vm.dstack.PushInt(n - 1)
}

func opcodeNegate(op *opcode, data []byte, vm *Engine) error {
	n, err := arithOperand(vm)
	if err != nil {
		return err
	}
	return vm.dstack.PushInt(-n)
}

func opcodeAbs(op *opcode, data []byte, vm *Engine) error {
	n, err := arithOperand(vm)
	if err != nil {
		return err
	}
	if n < 0 {
		n = -n
	}
	return vm.dstack.PushInt(n)
}

func opcodeNot(op *opcode, data []byte, vm *Engine) error {
	n, err := arithOperand(vm)
	if err != nil {
		return err
	}
	var result scriptNum
	if n == 0 {
		result = 1
	}
	return vm.dstack.PushInt(result)
}

func opcode0NotEqual(op *opcode, data []byte, vm *Engine) error {
	n, err := arithOperand(vm)
	if err != nil {
		return err
	}
	var result scriptNum
	if n != 0 {
		result = 1
	}
	return vm.dstack.PushInt(result)
}

func two(vm *Engine) (scriptNum, scriptNum, error) {
	b, err := arithOperand(vm)
	if err != nil {
		return 0, 0, err
	}
	a, err := arithOperand(vm)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func opcodeAdd(op *opcode, data []byte, vm *Engine) error {
	a, b, err := two(vm)
	if err != nil {
		return err
	}
	return vm.dstack.PushInt(a + b)
}

func opcodeSub(op *opcode, data []byte, vm *Engine) error {
	a, b, err := two(vm)
	if err != nil {
		return err
	}
	return vm.dstack.PushInt(a - b)
}

func opcodeBoolAnd(op *opcode, data []byte, vm *Engine) error {
	a, b, err := two(vm)
	if err != nil {
		return err
	}
	var result scriptNum
	if a != 0 && b != 0 {
		result = 1
	}
	return vm.dstack.PushInt(result)
}

func opcodeBoolOr(op *opcode, data []byte, vm *Engine) error {
	a, b, err := two(vm)
	if err != nil {
		return err
	}
	var result scriptNum
	if a != 0 || b != 0 {
		result = 1
	}
	return vm.dstack.PushInt(result)
}

func opcodeNumEqual(op *opcode, data []byte, vm *Engine) error {
	a, b, err := two(vm)
	if err != nil {
		return err
	}
	var result scriptNum
	if a == b {
		result = 1
	}
	return vm.dstack.PushInt(result)
}

func opcodeNumEqualVerify(op *opcode, data []byte, vm *Engine) error {
	if err := opcodeNumEqual(op, data, vm); err != nil {
		return err
	}
	ok, err := vm.dstack.PopBool()
	if err != nil {
		return err
	}
	if !ok {
		return scriptError(ErrNumEqualVerify, "%s failed", op.name)
	}
	return nil
}

func opcodeNumNotEqual(op *opcode, data []byte, vm *Engine) error {
	a, b, err := two(vm)
	if err != nil {
		return err
	}
	var result scriptNum
	if a != b {
		result = 1
	}
	return vm.dstack.PushInt(result)
}

func opcodeLessThan(op *opcode, data []byte, vm *Engine) error {
	a, b, err := two(vm)
	if err != nil {
		return err
	}
	var result scriptNum
	if a < b {
		result = 1
	}
	return vm.dstack.PushInt(result)
}

func opcodeGreaterThan(op *opcode, data []byte, vm *Engine) error {
	a, b, err := two(vm)
	if err != nil {
		return err
	}
	var result scriptNum
	if a > b {
		result = 1
	}
	return vm.dstack.PushInt(result)
}

func opcodeLessThanOrEqual(op *opcode, data []byte, vm *Engine) error {
	a, b, err := two(vm)
	if err != nil {
		return err
	}
	var result scriptNum
	if a <= b {
		result = 1
	}
	return vm.dstack.PushInt(result)
}

func opcodeGreaterThanOrEqual(op *opcode, data []byte, vm *Engine) error {
	a, b, err := two(vm)
	if err != nil {
		return err
	}
	var result scriptNum
	if a >= b {
		result = 1
	}
	return vm.dstack.PushInt(result)
}

func opcodeMin(op *opcode, data []byte, vm *Engine) error {
	a, b, err := two(vm)
	if err != nil {
		return err
	}
	if a < b {
		return vm.dstack.PushInt(a)
	}
	return vm.dstack.PushInt(b)
}

func opcodeMax(op *opcode, data []byte, vm *Engine) error {
	a, b, err := two(vm)
	if err != nil {
		return err
	}
	if a > b {
		return vm.dstack.PushInt(a)
	}
	return vm.dstack.PushInt(b)
}

func opcodeWithin(op *opcode, data []byte, vm *Engine) error {
	maxVal, err := arithOperand(vm)
	if err != nil {
		return err
	}
	minVal, err := arithOperand(vm)
	if err != nil {
		return err
	}
	x, err := arithOperand(vm)
	if err != nil {
		return err
	}
	var result scriptNum
	if x >= minVal && x < maxVal {
		result = 1
	}
	return vm.dstack.PushInt(result)
}

func hashFuncOpcode(op *opcode, data []byte, vm *Engine) error {
	so, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	var hash []byte
	switch op.value {
	case OP_RIPEMD160:
		h := ripemd160.New()
		h.Write(so)
		hash = h.Sum(nil)
	case OP_SHA1:
		h := sha1.Sum(so)
		hash = h[:]
	case OP_SHA256:
		h := sha256.Sum256(so)
		hash = h[:]
	case OP_HASH160:
		hash = chainhash.Hash160(so)
	case OP_HASH256:
		hash = chainhash.DoubleHashB(so)
	}

	return vm.dstack.PushByteArray(hash)
}

func opcodeCodeSeparator(op *opcode, data []byte, vm *Engine) error {
	vm.lastCodeSep = vm.scriptOff
	return nil
}

func opcodeCheckSig(op *opcode, data []byte, vm *Engine) error {
	pkBytes, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	fullSigBytes, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	if len(fullSigBytes) == 0 {
		return vm.dstack.PushBool(false)
	}

	hashType := SigHashType(fullSigBytes[len(fullSigBytes)-1])
	sigBytes := fullSigBytes[:len(fullSigBytes)-1]

	if err := vm.checkHashTypeEncoding(hashType); err != nil {
		return err
	}
	if err := vm.checkSignatureEncoding(sigBytes); err != nil {
		return err
	}
	if err := vm.checkPubKeyEncoding(pkBytes); err != nil {
		return err
	}

	subScript := vm.subScript()
	script, err := unparseScript(subScript)
	if err != nil {
		return err
	}
	script = removeOpcodeRaw(script, OP_CODESEPARATOR)

	hash, err := CalcSignatureHash(script, hashType, vm.tx, vm.txIdx, vm.inputAmount)
	if err != nil {
		return err
	}

	valid := verifySignature(hash, sigBytes, pkBytes)

	if !valid && vm.hasFlag(ScriptVerifyNullFail) && len(sigBytes) > 0 {
		return scriptError(ErrNullFail, "signature not empty on failed checksig")
	}

	return vm.dstack.PushBool(valid)
}

// verifySignature parses sigBytes/pkBytes and reports whether sigBytes
// is a valid signature over hash by the key encoded in pkBytes. Parse
// failures are treated as a verification failure rather than a script
// error, matching OP_CHECKSIG's historical behavior of pushing false for
// a garbage signature instead of aborting the script.
func verifySignature(hash, sigBytes, pkBytes []byte) bool {
	sig, err := bsvec.ParseDERSignature(sigBytes)
	if err != nil {
		return false
	}
	pubKey, err := bsvec.ParsePubKey(pkBytes)
	if err != nil {
		return false
	}
	return sig.Verify(hash, pubKey)
}

func opcodeCheckSigVerify(op *opcode, data []byte, vm *Engine) error {
	if err := opcodeCheckSig(op, data, vm); err != nil {
		return err
	}
	ok, err := vm.dstack.PopBool()
	if err != nil {
		return err
	}
	if !ok {
		return scriptError(ErrCheckSigVerify, "%s failed", op.name)
	}
	return nil
}

func opcodeCheckMultiSig(op *opcode, data []byte, vm *Engine) error {
	numKeys, err := vm.dstack.PopInt(vm.hasFlag(ScriptVerifyMinimalData), defaultScriptNumLen)
	if err != nil {
		return err
	}
	numPubKeys := int(numKeys.Int32())
	if numPubKeys < 0 || numPubKeys > MaxPubKeysPerMultiSig {
		return scriptError(ErrTooManyPubKeys, "number of pubkeys %d is invalid", numPubKeys)
	}
	vm.numOps += numPubKeys
	if vm.numOps > MaxOpsPerScript {
		return scriptError(ErrTooManyOperations, "exceeded max operation limit of %d", MaxOpsPerScript)
	}

	pubKeys := make([][]byte, 0, numPubKeys)
	for i := 0; i < numPubKeys; i++ {
		pk, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		pubKeys = append(pubKeys, pk)
	}

	numSigs, err := vm.dstack.PopInt(vm.hasFlag(ScriptVerifyMinimalData), defaultScriptNumLen)
	if err != nil {
		return err
	}
	numSignatures := int(numSigs.Int32())
	if numSignatures < 0 || numSignatures > numPubKeys {
		return scriptError(ErrInvalidSignature, "number of signatures %d is invalid for %d pubkeys", numSignatures, numPubKeys)
	}

	signatures := make([][]byte, 0, numSignatures)
	for i := 0; i < numSignatures; i++ {
		sig, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		signatures = append(signatures, sig)
	}

	// The historical off-by-one: an extra item is always popped and,
	// since the original Satoshi implementation never checked it, must
	// be the empty byte array when ScriptVerifyNullDummy is enforced.
	dummy, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	if vm.hasFlag(ScriptVerifyNullDummy) && len(dummy) != 0 {
		return scriptError(ErrNullDummy, "multisig dummy argument is not zero length")
	}

	subScript := vm.subScript()
	rawScript, err := unparseScript(subScript)
	if err != nil {
		return err
	}
	rawScript = removeOpcodeRaw(rawScript, OP_CODESEPARATOR)

	success := true
	pkIdx := 0
	sigIdx := 0
	sigsRemaining := len(signatures)
	keysRemaining := len(pubKeys)
	for sigsRemaining > 0 {
		sigBytes := signatures[sigIdx]

		matched := false
		if len(sigBytes) > 0 {
			hashType := SigHashType(sigBytes[len(sigBytes)-1])
			rawSig := sigBytes[:len(sigBytes)-1]

			if err := vm.checkHashTypeEncoding(hashType); err != nil {
				return err
			}
			if err := vm.checkSignatureEncoding(rawSig); err != nil {
				return err
			}

			hash, err := CalcSignatureHash(rawScript, hashType, vm.tx, vm.txIdx, vm.inputAmount)
			if err != nil {
				return err
			}

			matched = verifySignature(hash, rawSig, pubKeys[pkIdx])
		}

		if matched {
			sigIdx++
			sigsRemaining--
		}
		pkIdx++
		keysRemaining--

		if sigsRemaining > keysRemaining {
			success = false
			break
		}
	}

	if !success {
		if vm.hasFlag(ScriptVerifyNullFail) {
			for _, sig := range signatures {
				if len(sig) != 0 {
					return scriptError(ErrNullFail, "not all signatures empty on failed checkmultisig")
				}
			}
		}
		return vm.dstack.PushBool(false)
	}

	return vm.dstack.PushBool(true)
}

func opcodeCheckMultiSigVerify(op *opcode, data []byte, vm *Engine) error {
	if err := opcodeCheckMultiSig(op, data, vm); err != nil {
		return err
	}
	ok, err := vm.dstack.PopBool()
	if err != nil {
		return err
	}
	if !ok {
		return scriptError(ErrCheckSigVerify, "%s failed", op.name)
	}
	return nil
}
