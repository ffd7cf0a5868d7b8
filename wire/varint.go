// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wire implements the classic Bitcoin transaction wire format:
// varint-length-prefixed scripts, little-endian fixed-width integers, and
// the MsgTx/TxIn/TxOut/OutPoint types that make up a transaction.
package wire

import (
	"encoding/binary"
	"errors"
	"io"
)

// ErrTruncatedScript is returned when a pushdata or varint read runs past
// the end of the available bytes.
var ErrTruncatedScript = errors.New("truncated script")

// binarySerializer wraps the handful of fixed-width little-endian
// read/write helpers used throughout the codec, avoiding an allocation per
// call the way encoding/binary's Read/Write(reflect-based) would.
type binarySerializer struct {
	buf [8]byte
}

func (b *binarySerializer) Uint8(r io.Reader) (uint8, error) {
	if _, err := io.ReadFull(r, b.buf[:1]); err != nil {
		return 0, err
	}
	return b.buf[0], nil
}

func (b *binarySerializer) Uint32(r io.Reader) (uint32, error) {
	if _, err := io.ReadFull(r, b.buf[:4]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b.buf[:4]), nil
}

func (b *binarySerializer) Uint64(r io.Reader) (uint64, error) {
	if _, err := io.ReadFull(r, b.buf[:8]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b.buf[:8]), nil
}

func (b *binarySerializer) PutUint8(w io.Writer, v uint8) error {
	b.buf[0] = v
	_, err := w.Write(b.buf[:1])
	return err
}

func (b *binarySerializer) PutUint32(w io.Writer, v uint32) error {
	binary.LittleEndian.PutUint32(b.buf[:4], v)
	_, err := w.Write(b.buf[:4])
	return err
}

func (b *binarySerializer) PutUint64(w io.Writer, v uint64) error {
	binary.LittleEndian.PutUint64(b.buf[:8], v)
	_, err := w.Write(b.buf[:8])
	return err
}

// ReadVarInt reads a variable-length-encoded integer as described in
// WriteVarInt's documentation.
func ReadVarInt(r io.Reader) (uint64, error) {
	var ser binarySerializer
	discriminant, err := ser.Uint8(r)
	if err != nil {
		return 0, err
	}

	switch discriminant {
	case 0xff:
		return ser.Uint64(r)
	case 0xfe:
		v, err := ser.Uint32(r)
		return uint64(v), err
	case 0xfd:
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint16(buf[:])), nil
	default:
		return uint64(discriminant), nil
	}
}

// WriteVarInt encodes val into w using the canonical Bitcoin variable
// length integer format: values below 0xFD are written as a single byte;
// values up to 0xFFFF are prefixed with 0xFD and written as a little
// endian uint16; values up to 0xFFFFFFFF are prefixed with 0xFE and
// written as a little endian uint32; larger values are prefixed with 0xFF
// and written as a little endian uint64.
func WriteVarInt(w io.Writer, val uint64) error {
	var ser binarySerializer
	switch {
	case val < 0xfd:
		return ser.PutUint8(w, uint8(val))
	case val <= 0xffff:
		if err := ser.PutUint8(w, 0xfd); err != nil {
			return err
		}
		var buf [2]byte
		binary.LittleEndian.PutUint16(buf[:], uint16(val))
		_, err := w.Write(buf[:])
		return err
	case val <= 0xffffffff:
		if err := ser.PutUint8(w, 0xfe); err != nil {
			return err
		}
		return ser.PutUint32(w, uint32(val))
	default:
		if err := ser.PutUint8(w, 0xff); err != nil {
			return err
		}
		return ser.PutUint64(w, val)
	}
}

// VarIntSerializeSize returns the number of bytes WriteVarInt would write
// to encode val.
func VarIntSerializeSize(val uint64) int {
	switch {
	case val < 0xfd:
		return 1
	case val <= 0xffff:
		return 3
	case val <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// ReadVarBytes reads a varint length prefix followed by that many bytes,
// bounded by maxAllowed to keep a malicious length field from triggering
// an unbounded allocation.
func ReadVarBytes(r io.Reader, maxAllowed uint64) ([]byte, error) {
	n, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if n > maxAllowed {
		return nil, ErrTruncatedScript
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteVarBytes writes a varint length prefix followed by b.
func WriteVarBytes(w io.Writer, b []byte) error {
	if err := WriteVarInt(w, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}
