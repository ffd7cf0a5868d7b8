// Copyright (c) 2013-2014 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package base58 implements the Bitcoin base58 alphabet encoding and the
// base58check variant that appends a double-SHA256 checksum.
package base58

import "math/big"

const alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

var (
	bigRadix   = big.NewInt(58)
	bigZero    = big.NewInt(0)
	decodeMap  [256]byte
	decodeInit = func() bool {
		for i := range decodeMap {
			decodeMap[i] = 0xFF
		}
		for i, c := range alphabet {
			decodeMap[c] = byte(i)
		}
		return true
	}()
)

// Encode encodes a byte slice into a base58-encoded string.
func Encode(b []byte) string {
	x := new(big.Int)
	x.SetBytes(b)

	answer := make([]byte, 0, len(b)*136/100+1)
	mod := new(big.Int)
	for x.Cmp(bigZero) > 0 {
		x.DivMod(x, bigRadix, mod)
		answer = append(answer, alphabet[mod.Int64()])
	}

	// Reverse to big-endian order.
	for i, j := 0, len(answer)-1; i < j; i, j = i+1, j-1 {
		answer[i], answer[j] = answer[j], answer[i]
	}

	// Leading zero bytes become leading '1's.
	for _, v := range b {
		if v != 0 {
			break
		}
		answer = append([]byte{alphabet[0]}, answer...)
	}

	return string(answer)
}

// Decode decodes a base58-encoded string into a byte slice. Invalid
// characters are treated as having value 0; callers that need strict
// validation should use CheckDecode, which validates via the checksum.
func Decode(s string) []byte {
	answer := big.NewInt(0)
	j := big.NewInt(1)

	scratch := new(big.Int)
	for i := len(s) - 1; i >= 0; i-- {
		tmp := decodeMap[s[i]]
		if tmp == 0xFF {
			return []byte{}
		}
		scratch.SetInt64(int64(tmp))
		scratch.Mul(j, scratch)
		answer.Add(answer, scratch)
		j.Mul(j, bigRadix)
	}

	tmpval := answer.Bytes()

	var numZeros int
	for numZeros = 0; numZeros < len(s); numZeros++ {
		if s[numZeros] != alphabet[0] {
			break
		}
	}
	flen := numZeros + len(tmpval)
	val := make([]byte, flen)
	copy(val[numZeros:], tmpval)
	return val
}
