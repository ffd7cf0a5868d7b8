// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

// defaultScriptNumLen is the maximum number of bytes of an operand to
// OP_ADD/OP_SUB and the other arithmetic opcodes, per the pre-Genesis
// 4-byte rule: a script may temporarily hold a 5-byte scriptnum (the
// overflow result of one arithmetic operation) but any further arithmetic
// on it fails.
const defaultScriptNumLen = 4

// scriptNum represents a numeric value used in script execution using
// little-endian, sign-magnitude, minimally-encoded byte strings. The sign
// bit lives in the most significant bit of the most significant byte.
type scriptNum int64

// checkMinimalDataEncoding returns whether the given byte array adheres to
// the minimal encoding requirements.
func checkMinimalDataEncoding(v []byte) error {
	if len(v) == 0 {
		return nil
	}

	// The last byte of a minimally-encoded value cannot be zero, except
	// when it is used to signal a negative number with the high bit of
	// the second-to-last byte already set.
	if v[len(v)-1]&0x7f == 0 {
		if len(v) == 1 || v[len(v)-2]&0x80 == 0 {
			return scriptError(ErrMinimalData, "non-minimally encoded script number")
		}
	}

	return nil
}

// makeScriptNum interprets the passed serialized bytes as an encoded
// integer and returns the result as a scriptNum.
//
// If requireMinimal is true, then additional checks are performed to
// ensure the number is minimally encoded. scriptNumBytes reports the
// numbers of bytes of the serialized value that are allowed; a value that
// decodes to something outside the allowed range still parses, but any
// subsequent arithmetic on the result must fail, matching the pre-Genesis
// 4-byte-with-one-5-byte-overflow-tolerance rule.
func makeScriptNum(v []byte, requireMinimal bool, scriptNumBytes int) (scriptNum, error) {
	if len(v) > scriptNumBytes {
		return 0, scriptError(ErrNumberTooBig, "numeric value encoded as %d bytes exceeds the %d byte limit", len(v), scriptNumBytes)
	}

	if requireMinimal {
		if err := checkMinimalDataEncoding(v); err != nil {
			return 0, err
		}
	}

	if len(v) == 0 {
		return 0, nil
	}

	var result int64
	for i, b := range v {
		result |= int64(b) << uint8(8*i)
	}

	// The most significant byte's high bit is a sign flag; if set, mask
	// it off and negate the result.
	if v[len(v)-1]&0x80 != 0 {
		result &^= int64(0x80) << uint8(8*(len(v)-1))
		return scriptNum(-result), nil
	}

	return scriptNum(result), nil
}

// Bytes returns the number serialized as a little-endian, sign-magnitude,
// minimally-encoded byte slice.
func (n scriptNum) Bytes() []byte {
	if n == 0 {
		return nil
	}

	isNegative := n < 0
	abs := int64(n)
	if isNegative {
		abs = -abs
	}

	var result []byte
	for abs > 0 {
		result = append(result, byte(abs&0xff))
		abs >>= 8
	}

	// If the most significant byte already has the sign bit set, a
	// further byte must be appended to avoid confusion with the sign
	// flag.
	if result[len(result)-1]&0x80 != 0 {
		extraByte := byte(0x00)
		if isNegative {
			extraByte = 0x80
		}
		result = append(result, extraByte)
	} else if isNegative {
		result[len(result)-1] |= 0x80
	}

	return result
}

func (n scriptNum) Int32() int32 {
	const (
		min = int32(-2147483648)
		max = int32(2147483647)
	)
	if n < scriptNum(min) {
		return min
	}
	if n > scriptNum(max) {
		return max
	}
	return int32(n)
}
