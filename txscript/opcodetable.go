// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

// opcodeArray is the dense, 256-entry dispatch table indexed by opcode
// byte value. Every byte value has an entry; values with no defined
// meaning map to opcodeInvalid so the tokenizer and interpreter can
// treat "valid opcode, always fails" uniformly instead of needing a
// missing-key check at every lookup site.
var opcodeArray [256]opcode

func init() {
	for i := 0; i < 256; i++ {
		opcodeArray[i] = opcode{value: byte(i), name: opcodeName(byte(i)), length: 1, opfunc: opcodeInvalid}
	}

	set := func(value byte, length int, fn func(*opcode, []byte, *Engine) error) {
		opcodeArray[value] = opcode{value: value, name: opcodeName(value), length: length, opfunc: fn}
	}

	set(OP_0, 1, opcodeFalse)
	for i := 1; i <= 75; i++ {
		set(byte(i), i+1, opcodePushData)
	}
	set(OP_PUSHDATA1, -1, opcodePushData)
	set(OP_PUSHDATA2, -2, opcodePushData)
	set(OP_PUSHDATA4, -4, opcodePushData)
	set(OP_1NEGATE, 1, opcode1Negate)
	set(OP_RESERVED, 1, opcodeReserved)
	for i := byte(OP_1); i <= OP_16; i++ {
		set(i, 1, opcodeN)
	}

	set(OP_NOP, 1, opcodeNop)
	set(OP_VER, 1, opcodeReserved)
	set(OP_IF, 1, opcodeIf)
	set(OP_NOTIF, 1, opcodeIf)
	set(OP_VERIF, 1, opcodeInvalid)
	set(OP_VERNOTIF, 1, opcodeInvalid)
	set(OP_ELSE, 1, opcodeElse)
	set(OP_ENDIF, 1, opcodeEndif)
	set(OP_VERIFY, 1, opcodeVerify)
	set(OP_RETURN, 1, opcodeReturn)

	set(OP_TOALTSTACK, 1, opcodeToAltStack)
	set(OP_FROMALTSTACK, 1, opcodeFromAltStack)
	set(OP_2DROP, 1, opcode2Drop)
	set(OP_2DUP, 1, opcode2Dup)
	set(OP_3DUP, 1, opcode3Dup)
	set(OP_2OVER, 1, opcode2Over)
	set(OP_2ROT, 1, opcode2Rot)
	set(OP_2SWAP, 1, opcode2Swap)
	set(OP_IFDUP, 1, opcodeIfDup)
	set(OP_DEPTH, 1, opcodeDepth)
	set(OP_DROP, 1, opcodeDrop)
	set(OP_DUP, 1, opcodeDup)
	set(OP_NIP, 1, opcodeNip)
	set(OP_OVER, 1, opcodeOver)
	set(OP_PICK, 1, opcodePick)
	set(OP_ROLL, 1, opcodeRoll)
	set(OP_ROT, 1, opcodeRot)
	set(OP_SWAP, 1, opcodeSwap)
	set(OP_TUCK, 1, opcodeTuck)

	for _, op := range []byte{OP_CAT, OP_SUBSTR, OP_LEFT, OP_RIGHT, OP_INVERT,
		OP_AND, OP_OR, OP_XOR, OP_2MUL, OP_2DIV, OP_MUL, OP_DIV, OP_MOD,
		OP_LSHIFT, OP_RSHIFT} {
		set(op, 1, opcodeDisabled)
	}
	set(OP_SIZE, 1, opcodeSize)

	set(OP_EQUAL, 1, opcodeEqual)
	set(OP_EQUALVERIFY, 1, opcodeEqualVerify)
	set(OP_RESERVED1, 1, opcodeReserved)
	set(OP_RESERVED2, 1, opcodeReserved)

	set(OP_1ADD, 1, opcode1Add)
	set(OP_1SUB, 1, opcode1Sub)
	set(OP_NEGATE, 1, opcodeNegate)
	set(OP_ABS, 1, opcodeAbs)
	set(OP_NOT, 1, opcodeNot)
	set(OP_0NOTEQUAL, 1, opcode0NotEqual)
	set(OP_ADD, 1, opcodeAdd)
	set(OP_SUB, 1, opcodeSub)
	set(OP_BOOLAND, 1, opcodeBoolAnd)
	set(OP_BOOLOR, 1, opcodeBoolOr)
	set(OP_NUMEQUAL, 1, opcodeNumEqual)
	set(OP_NUMEQUALVERIFY, 1, opcodeNumEqualVerify)
	set(OP_NUMNOTEQUAL, 1, opcodeNumNotEqual)
	set(OP_LESSTHAN, 1, opcodeLessThan)
	set(OP_GREATERTHAN, 1, opcodeGreaterThan)
	set(OP_LESSTHANOREQUAL, 1, opcodeLessThanOrEqual)
	set(OP_GREATERTHANOREQUAL, 1, opcodeGreaterThanOrEqual)
	set(OP_MIN, 1, opcodeMin)
	set(OP_MAX, 1, opcodeMax)
	set(OP_WITHIN, 1, opcodeWithin)

	set(OP_RIPEMD160, 1, hashFuncOpcode)
	set(OP_SHA1, 1, hashFuncOpcode)
	set(OP_SHA256, 1, hashFuncOpcode)
	set(OP_HASH160, 1, hashFuncOpcode)
	set(OP_HASH256, 1, hashFuncOpcode)
	set(OP_CODESEPARATOR, 1, opcodeCodeSeparator)
	set(OP_CHECKSIG, 1, opcodeCheckSig)
	set(OP_CHECKSIGVERIFY, 1, opcodeCheckSigVerify)
	set(OP_CHECKMULTISIG, 1, opcodeCheckMultiSig)
	set(OP_CHECKMULTISIGVERIFY, 1, opcodeCheckMultiSigVerify)

	set(OP_NOP1, 1, opcodeNop)
	set(OP_NOP2, 1, opcodeNop)
	set(OP_NOP3, 1, opcodeNop)
	for i := byte(OP_NOP4); i <= OP_NOP10; i++ {
		set(i, 1, opcodeNop)
	}
}

// opcodeInvalid always fails; every byte value the table above does not
// explicitly assign a handler to (0xba-0xfe, and the literal
// OP_INVALIDOPCODE slot 0xff) lands here.
func opcodeInvalid(op *opcode, data []byte, vm *Engine) error {
	return scriptError(ErrBadOpcode, "attempt to execute invalid opcode %s", op.name)
}
