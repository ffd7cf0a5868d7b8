// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

// MaxScriptElementSize is the maximum allowed length of a single item
// pushed onto the stack.
const MaxScriptElementSize = 520

// parsedOpcode is a single decoded chunk: either a bare opcode or a
// pushdata opcode together with the bytes it pushes. The chunk's original
// encoded form is implicitly recoverable from (opcode, data) — canonical
// push encoding is enforced on construction by the ScriptBuilder, and the
// tokenizer below preserves whatever encoding a parsed script actually
// used, since signatures commit to the exact bytes.
type parsedOpcode struct {
	opcode *opcode
	data   []byte
}

// isDisabled returns whether or not the opcode is disabled and thus is
// always bad to see in the instruction stream.
func (pop *parsedOpcode) isDisabled() bool {
	return isDisabled(pop.opcode.value)
}

// alwaysIllegal returns whether or not the opcode is always illegal when
// present in a script.
func (pop *parsedOpcode) alwaysIllegal() bool {
	switch pop.opcode.value {
	case OP_VERIF, OP_VERNOTIF:
		return true
	}
	return false
}

// isConditional returns whether or not the opcode is a conditional branch
// instruction, affecting the control stack.
func (pop *parsedOpcode) isConditional() bool {
	switch pop.opcode.value {
	case OP_IF, OP_NOTIF, OP_ELSE, OP_ENDIF:
		return true
	}
	return false
}

// bytes returns any data associated with the opcode encoded as it would
// be in a script; used only for reconstructing sub-scripts, never to
// re-derive the original byte-for-byte script (see parseScript's doc
// comment on that requirement).
func (pop *parsedOpcode) bytes() ([]byte, error) {
	var retbytes []byte
	if pop.opcode.length > 0 {
		retbytes = make([]byte, 1, pop.opcode.length)
	} else {
		retbytes = make([]byte, 1, 1+len(pop.data)+
			-pop.opcode.length)
	}

	retbytes[0] = pop.opcode.value
	if pop.opcode.length == 1 {
		if len(pop.data) != 0 {
			return nil, scriptError(ErrBadOpcode, "internal consistency error: parsed opcode %s has data when none is expected", pop.opcode.name)
		}
		return retbytes, nil
	}
	nbytes := pop.opcode.length
	if pop.opcode.length < 0 {
		l := len(pop.data)
		switch pop.opcode.length {
		case -1:
			retbytes = append(retbytes, byte(l))
			nbytes = int(l) + 1
		case -2:
			retbytes = append(retbytes, byte(l&0xff), byte(l>>8)&0xff)
			nbytes = int(l) + 2
		case -4:
			retbytes = append(retbytes, byte(l&0xff), byte((l>>8)&0xff),
				byte((l>>16)&0xff), byte((l>>24)&0xff))
			nbytes = int(l) + 4
		}
	}

	retbytes = append(retbytes, pop.data...)

	if len(retbytes) != nbytes {
		return nil, scriptError(ErrBadOpcode, "internal consistency error - parsed opcode %s has data length %d when %d was expected", pop.opcode.name, len(retbytes), nbytes)
	}

	return retbytes, nil
}

// parseScript preprocesses the script in bytes into a list of parsed
// opcodes while potentially setting population data in particular
// opcodes. A byte beyond the end of the script during a pushdata-length
// read is a parse failure (TruncatedScript).
func parseScript(script []byte) ([]parsedOpcode, error) {
	return parseScriptTemplate(script, &opcodeArray)
}

func parseScriptTemplate(script []byte, opcodes *[256]opcode) ([]parsedOpcode, error) {
	retScript := make([]parsedOpcode, 0, len(script))
	for i := 0; i < len(script); {
		instr := script[i]
		op := &opcodes[instr]
		pop := parsedOpcode{opcode: op}

		switch {
		case op.length == 1:
			i++
		case op.length > 1:
			if len(script[i:]) < op.length {
				return nil, scriptError(ErrBadOpcode, "opcode %s requires %d bytes, but script only has %d remaining", op.name, op.length, len(script[i:]))
			}
			pop.data = script[i+1 : i+op.length]
			i += op.length
		case op.length < 0:
			var l uint32
			off := i + 1
			switch op.length {
			case -1:
				if len(script[off:]) < 1 {
					return nil, scriptError(ErrBadOpcode, "opcode %s requires 1 byte length, but script only has %d remaining", op.name, len(script[off:]))
				}
				l = uint32(script[off])
				off++
			case -2:
				if len(script[off:]) < 2 {
					return nil, scriptError(ErrBadOpcode, "opcode %s requires 2 byte length, but script only has %d remaining", op.name, len(script[off:]))
				}
				l = uint32(script[off]) | uint32(script[off+1])<<8
				off += 2
			case -4:
				if len(script[off:]) < 4 {
					return nil, scriptError(ErrBadOpcode, "opcode %s requires 4 byte length, but script only has %d remaining", op.name, len(script[off:]))
				}
				l = uint32(script[off]) | uint32(script[off+1])<<8 |
					uint32(script[off+2])<<16 | uint32(script[off+3])<<24
				off += 4
			}
			if uint32(len(script[off:])) < l {
				return nil, scriptError(ErrBadOpcode, "opcode %s pushes %d bytes, but script only has %d remaining", op.name, l, len(script[off:]))
			}
			pop.data = script[off : off+int(l)]
			i = off + int(l)
		}

		retScript = append(retScript, pop)
	}

	return retScript, nil
}

// unparseScript reverses parseScript, reserializing a list of parsed
// opcodes back into their exact original byte encoding.
func unparseScript(pops []parsedOpcode) ([]byte, error) {
	script := make([]byte, 0, len(pops))
	for _, pop := range pops {
		b, err := pop.bytes()
		if err != nil {
			return nil, err
		}
		script = append(script, b...)
	}
	return script, nil
}

// removeOpcode will remove any opcode matching “opcode” from the opcode
// stream in pkscript.
func removeOpcode(pkscript []parsedOpcode, opcode byte) []parsedOpcode {
	retScript := make([]parsedOpcode, 0, len(pkscript))
	for _, pop := range pkscript {
		if pop.opcode.value != opcode {
			retScript = append(retScript, pop)
		}
	}
	return retScript
}

// removeOpcodeRaw removes every occurrence of a single-byte opcode from a
// raw, not-yet-parsed script; used to build the legacy SIGHASH subscript
// (OP_CODESEPARATOR-stripped locking script) without needing a full
// round trip through parseScript/unparseScript.
func removeOpcodeRaw(script []byte, op byte) []byte {
	pops, err := parseScript(script)
	if err != nil {
		// A script that fails to parse has no well-defined subscript;
		// returning it unmodified lets the caller's own validation
		// surface the real parse error.
		return script
	}
	stripped := removeOpcode(pops, op)
	out, err := unparseScript(stripped)
	if err != nil {
		return script
	}
	return out
}

// IsPushOnlyScript returns whether or not the passed script only pushes
// data.
//
// False will be returned when the script does not parse.
func IsPushOnlyScript(script []byte) bool {
	pops, err := parseScript(script)
	if err != nil {
		return false
	}
	return isPushOnly(pops)
}

func isPushOnly(pops []parsedOpcode) bool {
	for _, pop := range pops {
		if pop.opcode.value > OP_16 {
			return false
		}
	}
	return true
}

// canonicalPush returns true if the passed opcode is considered a
// canonical push of the given data: the encoding that uses the fewest
// possible bytes.
func canonicalPush(pop parsedOpcode) bool {
	opcode := pop.opcode.value
	data := pop.data
	dataLen := len(data)

	if opcode > OP_16 {
		return true
	}

	if opcode < OP_PUSHDATA1 && opcode > OP_0 && (dataLen == 1 && data[0] <= 16) {
		return false
	}
	if opcode == OP_PUSHDATA1 && dataLen < OP_PUSHDATA1 {
		return false
	}
	if opcode == OP_PUSHDATA2 && dataLen <= 0xff {
		return false
	}
	if opcode == OP_PUSHDATA4 && dataLen <= 0xffff {
		return false
	}
	return true
}
