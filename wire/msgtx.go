// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"io"

	"github.com/bsvd/bsvd/chainhash"
)

const (
	// MaxTxInSequenceNum is the maximum value a sequence number may hold.
	MaxTxInSequenceNum uint32 = 0xffffffff

	// LockTimeThreshold marks the high end of the set of values that can
	// be interpreted as a block-height lock time; values above it are
	// interpreted as a Unix timestamp instead.
	LockTimeThreshold uint32 = 500000000

	// defaultTxInOutAlloc and defaultScriptAlloc bound the allocations
	// decodeFrom performs up front, mirroring the teacher's pattern of
	// capping preallocation instead of trusting an attacker-controlled
	// count field directly.
	defaultTxInOutAlloc = 15
	maxScriptSize       = 10000
)

// OutPoint identifies a transaction output by the 32 byte hash of its
// containing transaction and its index within that transaction's output
// list.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// NewOutPoint returns a new OutPoint for the given hash/index pair.
func NewOutPoint(hash *chainhash.Hash, index uint32) *OutPoint {
	return &OutPoint{Hash: *hash, Index: index}
}

// TxIn defines a transaction input: the outpoint it spends, the
// unlocking (signature) script that satisfies that output's locking
// script, and a sequence number.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Sequence         uint32
}

// NewTxIn returns a new transaction input with the given outpoint and
// unlocking script, and the default (final) sequence number.
func NewTxIn(prevOut *OutPoint, signatureScript []byte) *TxIn {
	return &TxIn{
		PreviousOutPoint: *prevOut,
		SignatureScript:  signatureScript,
		Sequence:         MaxTxInSequenceNum,
	}
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction input.
func (t *TxIn) SerializeSize() int {
	return 32 + 4 + VarIntSerializeSize(uint64(len(t.SignatureScript))) +
		len(t.SignatureScript) + 4
}

// TxOut defines a transaction output: the number of satoshis it carries
// and the locking script that must be satisfied to spend it.
type TxOut struct {
	Value    int64
	PkScript []byte
}

// NewTxOut returns a new transaction output with the given value and
// locking script.
func NewTxOut(value int64, pkScript []byte) *TxOut {
	return &TxOut{Value: value, PkScript: pkScript}
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction output.
func (t *TxOut) SerializeSize() int {
	return 8 + VarIntSerializeSize(uint64(len(t.PkScript))) + len(t.PkScript)
}

// WriteTxOut serializes a single transaction output to w; exported for
// use by signature-hash algorithms that hash individual outputs outside
// the context of a full MsgTx.Serialize call.
func WriteTxOut(w io.Writer, to *TxOut) error {
	var ser binarySerializer
	if err := ser.PutUint64(w, uint64(to.Value)); err != nil {
		return err
	}
	return WriteVarBytes(w, to.PkScript)
}

// MsgTx defines a transaction: inputs, outputs, a version, and a lock
// time, serialized in that declaration order with varint-prefixed scripts
// and varint-encoded input/output counts.
type MsgTx struct {
	Version  int32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32
}

// NewMsgTx returns a new transaction with the given version and no
// inputs or outputs.
func NewMsgTx(version int32) *MsgTx {
	return &MsgTx{
		Version: version,
		TxIn:    make([]*TxIn, 0, defaultTxInOutAlloc),
		TxOut:   make([]*TxOut, 0, defaultTxInOutAlloc),
	}
}

// AddTxIn appends an input to the transaction.
func (msg *MsgTx) AddTxIn(ti *TxIn) {
	msg.TxIn = append(msg.TxIn, ti)
}

// AddTxOut appends an output to the transaction.
func (msg *MsgTx) AddTxOut(to *TxOut) {
	msg.TxOut = append(msg.TxOut, to)
}

// Copy returns a deep copy of the transaction, so that the signature-hash
// machinery can build a "modified copy" of the transaction (per-input
// unlocking scripts cleared, outputs masked) without disturbing the
// caller's original value.
func (msg *MsgTx) Copy() *MsgTx {
	newTx := &MsgTx{
		Version:  msg.Version,
		TxIn:     make([]*TxIn, 0, len(msg.TxIn)),
		TxOut:    make([]*TxOut, 0, len(msg.TxOut)),
		LockTime: msg.LockTime,
	}

	for _, oldTxIn := range msg.TxIn {
		newTxIn := &TxIn{
			PreviousOutPoint: oldTxIn.PreviousOutPoint,
			Sequence:         oldTxIn.Sequence,
		}
		if oldTxIn.SignatureScript != nil {
			newTxIn.SignatureScript = make([]byte, len(oldTxIn.SignatureScript))
			copy(newTxIn.SignatureScript, oldTxIn.SignatureScript)
		}
		newTx.TxIn = append(newTx.TxIn, newTxIn)
	}

	for _, oldTxOut := range msg.TxOut {
		newTxOut := &TxOut{Value: oldTxOut.Value}
		if oldTxOut.PkScript != nil {
			newTxOut.PkScript = make([]byte, len(oldTxOut.PkScript))
			copy(newTxOut.PkScript, oldTxOut.PkScript)
		}
		newTx.TxOut = append(newTx.TxOut, newTxOut)
	}

	return newTx
}

// TxHash computes the double-SHA256 identifier of the transaction's
// serialized form. It is rendered byte-reversed by chainhash.Hash.String.
func (msg *MsgTx) TxHash() chainhash.Hash {
	b, _ := msg.Bytes()
	return chainhash.DoubleHashH(b)
}

// SerializeSize returns the number of bytes it would take to serialize
// the entire transaction.
func (msg *MsgTx) SerializeSize() int {
	n := 4 + 4 // version + lock time
	n += VarIntSerializeSize(uint64(len(msg.TxIn)))
	for _, ti := range msg.TxIn {
		n += ti.SerializeSize()
	}
	n += VarIntSerializeSize(uint64(len(msg.TxOut)))
	for _, to := range msg.TxOut {
		n += to.SerializeSize()
	}
	return n
}

// Serialize encodes the transaction to w in the canonical Bitcoin wire
// format.
func (msg *MsgTx) Serialize(w io.Writer) error {
	var ser binarySerializer
	if err := ser.PutUint32(w, uint32(msg.Version)); err != nil {
		return err
	}

	if err := WriteVarInt(w, uint64(len(msg.TxIn))); err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		if _, err := w.Write(ti.PreviousOutPoint.Hash[:]); err != nil {
			return err
		}
		if err := ser.PutUint32(w, ti.PreviousOutPoint.Index); err != nil {
			return err
		}
		if err := WriteVarBytes(w, ti.SignatureScript); err != nil {
			return err
		}
		if err := ser.PutUint32(w, ti.Sequence); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, uint64(len(msg.TxOut))); err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		if err := ser.PutUint64(w, uint64(to.Value)); err != nil {
			return err
		}
		if err := WriteVarBytes(w, to.PkScript); err != nil {
			return err
		}
	}

	return ser.PutUint32(w, msg.LockTime)
}

// Bytes returns the serialized transaction.
func (msg *MsgTx) Bytes() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, msg.SerializeSize()))
	if err := msg.Serialize(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Deserialize decodes a transaction from r in the canonical Bitcoin wire
// format.
func (msg *MsgTx) Deserialize(r io.Reader) error {
	var ser binarySerializer
	version, err := ser.Uint32(r)
	if err != nil {
		return err
	}
	msg.Version = int32(version)

	txInCount, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	msg.TxIn = make([]*TxIn, 0, min64(txInCount, defaultTxInOutAlloc))
	for i := uint64(0); i < txInCount; i++ {
		ti := &TxIn{}
		if _, err := io.ReadFull(r, ti.PreviousOutPoint.Hash[:]); err != nil {
			return err
		}
		if ti.PreviousOutPoint.Index, err = ser.Uint32(r); err != nil {
			return err
		}
		if ti.SignatureScript, err = ReadVarBytes(r, maxScriptSize); err != nil {
			return err
		}
		if ti.Sequence, err = ser.Uint32(r); err != nil {
			return err
		}
		msg.TxIn = append(msg.TxIn, ti)
	}

	txOutCount, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	msg.TxOut = make([]*TxOut, 0, min64(txOutCount, defaultTxInOutAlloc))
	for i := uint64(0); i < txOutCount; i++ {
		to := &TxOut{}
		value, err := ser.Uint64(r)
		if err != nil {
			return err
		}
		to.Value = int64(value)
		if to.PkScript, err = ReadVarBytes(r, maxScriptSize); err != nil {
			return err
		}
		msg.TxOut = append(msg.TxOut, to)
	}

	if msg.LockTime, err = ser.Uint32(r); err != nil {
		return err
	}

	return nil
}

// NewMsgTxFromBytes decodes a whole transaction from its serialized form.
func NewMsgTxFromBytes(b []byte) (*MsgTx, error) {
	msg := &MsgTx{}
	if err := msg.Deserialize(bytes.NewReader(b)); err != nil {
		return nil, err
	}
	return msg, nil
}

func min64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
