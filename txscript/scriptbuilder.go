// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import "fmt"

// defaultScriptAlloc is the default size used for the backing array of a
// script being built by the ScriptBuilder. The array will be grown as
// needed, but this figure is set to provide space for vast majority of
// scripts without needing to grow the backing array.
const defaultScriptAlloc = 500

// ScriptBuilder provides a facility for building custom scripts. It
// allows you to push opcodes, ints, and data while respecting canonical
// encoding. In general it does not ensure the script it creates is
// valid. However, the Script method does ensure no single pushed data
// exceeds MaxScriptElementSize.
type ScriptBuilder struct {
	script []byte
	err    error
}

// AddOp pushes the passed opcode to the end of the script.
func (b *ScriptBuilder) AddOp(opcode byte) *ScriptBuilder {
	if b.err != nil {
		return b
	}
	b.script = append(b.script, opcode)
	return b
}

// AddOps pushes the passed opcodes to the end of the script.
func (b *ScriptBuilder) AddOps(opcodes []byte) *ScriptBuilder {
	if b.err != nil {
		return b
	}
	b.script = append(b.script, opcodes...)
	return b
}

// AddData pushes the passed data to the end of the script, using the
// canonical (shortest) encoding for the data's length.
func (b *ScriptBuilder) AddData(data []byte) *ScriptBuilder {
	if b.err != nil {
		return b
	}

	if len(data) > MaxScriptElementSize {
		b.err = fmt.Errorf("adding a data element of length %d exceeds the max allowed length of %d", len(data), MaxScriptElementSize)
		return b
	}

	b.addCanonicalData(data)
	return b
}

func (b *ScriptBuilder) addCanonicalData(data []byte) {
	dataLen := len(data)
	switch {
	case dataLen == 0 || (dataLen == 1 && data[0] == 0):
		b.script = append(b.script, OP_0)
	case dataLen == 1 && data[0] <= 16:
		b.script = append(b.script, OP_1-1+data[0])
	case dataLen == 1 && data[0] == 0x81:
		b.script = append(b.script, OP_1NEGATE)
	case dataLen < OP_PUSHDATA1:
		b.script = append(b.script, byte(dataLen))
		b.script = append(b.script, data...)
	case dataLen <= 0xff:
		b.script = append(b.script, OP_PUSHDATA1, byte(dataLen))
		b.script = append(b.script, data...)
	case dataLen <= 0xffff:
		buf := make([]byte, 2)
		buf[0] = byte(dataLen)
		buf[1] = byte(dataLen >> 8)
		b.script = append(b.script, OP_PUSHDATA2)
		b.script = append(b.script, buf...)
		b.script = append(b.script, data...)
	default:
		buf := make([]byte, 4)
		buf[0] = byte(dataLen)
		buf[1] = byte(dataLen >> 8)
		buf[2] = byte(dataLen >> 16)
		buf[3] = byte(dataLen >> 24)
		b.script = append(b.script, OP_PUSHDATA4)
		b.script = append(b.script, buf...)
		b.script = append(b.script, data...)
	}
}

// AddInt64 pushes the passed integer to the end of the script using the
// shortest encoding possible, preferring the small-int opcodes
// (OP_0/OP_1NEGATE/OP_1..OP_16) where the value allows.
func (b *ScriptBuilder) AddInt64(val int64) *ScriptBuilder {
	if b.err != nil {
		return b
	}

	if val == 0 {
		b.script = append(b.script, OP_0)
		return b
	}
	if val == -1 || (val >= 1 && val <= 16) {
		b.script = append(b.script, byte((OP_1-1)+val))
		return b
	}

	b.addCanonicalData(scriptNum(val).Bytes())
	return b
}

// Reset resets the script so it has no content.
func (b *ScriptBuilder) Reset() *ScriptBuilder {
	b.script = b.script[0:0]
	b.err = nil
	return b
}

// Script returns the currently built script. When any errors occurred
// while building the script, the script will be returned up to the
// point of the first error along with the error.
func (b *ScriptBuilder) Script() ([]byte, error) {
	return b.script, b.err
}

// NewScriptBuilder returns a new instance of a script builder. See
// ScriptBuilder for details.
func NewScriptBuilder() *ScriptBuilder {
	return &ScriptBuilder{script: make([]byte, 0, defaultScriptAlloc)}
}
