// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"encoding/binary"

	"github.com/bsvd/bsvd/chainhash"
	"github.com/bsvd/bsvd/wire"
)

// SigHashType represents the hash type bits at the end of a signature,
// selecting which parts of the transaction the signature commits to.
type SigHashType uint32

const (
	SigHashOld          SigHashType = 0x0
	SigHashAll          SigHashType = 0x1
	SigHashNone         SigHashType = 0x2
	SigHashSingle       SigHashType = 0x3
	SigHashForkID       SigHashType = 0x40
	SigHashAnyOneCanPay SigHashType = 0x80

	sigHashMask = 0x1f
)

// hasForkID reports whether the FORKID bit is set, selecting the
// BIP143-style preimage rather than the legacy one.
func (h SigHashType) hasForkID() bool {
	return h&SigHashForkID == SigHashForkID
}

func (h SigHashType) baseType() SigHashType {
	return h & sigHashMask
}

func (h SigHashType) isAnyOneCanPay() bool {
	return h&SigHashAnyOneCanPay == SigHashAnyOneCanPay
}

// CalcSignatureHash computes the double-SHA256 signature hash for the
// specified input of the transaction, using the given subscript (the
// locking script of the output being spent, with any executed
// OP_CODESEPARATORs stripped) and hash type. When hashType carries the
// FORKID bit, inputAmount must be the satoshi value of the output being
// spent and the BIP143-style preimage is used instead of the legacy one.
func CalcSignatureHash(subScript []byte, hashType SigHashType, tx *wire.MsgTx, idx int, inputAmount int64) ([]byte, error) {
	if idx >= len(tx.TxIn) {
		return nil, scriptError(ErrInvalidStackOperation, "index %d out of range for %d inputs", idx, len(tx.TxIn))
	}

	if hashType.hasForkID() {
		return calcForkIDSignatureHash(subScript, hashType, tx, idx, inputAmount), nil
	}
	return calcLegacySignatureHash(subScript, hashType, tx, idx)
}

// calcLegacySignatureHash implements the original Satoshi SignatureHash
// algorithm: a full re-serialization of a modified copy of the
// transaction, double-SHA256'd.
func calcLegacySignatureHash(subScript []byte, hashType SigHashType, tx *wire.MsgTx, idx int) ([]byte, error) {
	// The SIGHASH_SINGLE out of bounds case: historically Bitcoin
	// returns the constant hash 0x01 followed by 31 zero bytes rather
	// than erroring, and every compatible implementation must reproduce
	// this quirk exactly since old signatures depend on it.
	if hashType.baseType() == SigHashSingle && idx >= len(tx.TxOut) {
		var hash chainhash.Hash
		hash[0] = 0x01
		return hash[:], nil
	}

	txCopy := tx.Copy()
	subscript := removeOpcodeRaw(subScript, OP_CODESEPARATOR)

	for i := range txCopy.TxIn {
		if i == idx {
			txCopy.TxIn[i].SignatureScript = subscript
			continue
		}
		txCopy.TxIn[i].SignatureScript = nil
	}

	switch hashType.baseType() {
	case SigHashNone:
		txCopy.TxOut = txCopy.TxOut[0:0]
		for i := range txCopy.TxIn {
			if i != idx {
				txCopy.TxIn[i].Sequence = 0
			}
		}

	case SigHashSingle:
		txCopy.TxOut = txCopy.TxOut[:idx+1]
		for i := 0; i < idx; i++ {
			txCopy.TxOut[i].Value = -1
			txCopy.TxOut[i].PkScript = nil
		}
		for i := range txCopy.TxIn {
			if i != idx {
				txCopy.TxIn[i].Sequence = 0
			}
		}

	default:
		// SigHashOld and SigHashAll both commit to every input and
		// output unmodified beyond the sigScript blanking above.
	}

	if hashType.isAnyOneCanPay() {
		txCopy.TxIn = txCopy.TxIn[idx : idx+1]
	}

	var buf bytes.Buffer
	if err := txCopy.Serialize(&buf); err != nil {
		return nil, scriptError(ErrUnknown, "failed to serialize transaction copy for signature hash: %v", err)
	}

	var hashTypeBytes [4]byte
	binary.LittleEndian.PutUint32(hashTypeBytes[:], uint32(hashType))
	buf.Write(hashTypeBytes[:])

	return chainhash.DoubleHashB(buf.Bytes()), nil
}

// calcForkIDSignatureHash implements the BIP143-style preimage used by
// chains that set the SIGHASH_FORKID bit: sequences/previous outputs and
// outputs are hashed once per transaction rather than re-serialized per
// input, making signature hashing O(n) instead of O(n^2) for
// multi-input transactions.
func calcForkIDSignatureHash(subScript []byte, hashType SigHashType, tx *wire.MsgTx, idx int, inputAmount int64) []byte {
	sigHashes := newTxSigHashes(tx)

	var buf bytes.Buffer

	var version [4]byte
	binary.LittleEndian.PutUint32(version[:], uint32(tx.Version))
	buf.Write(version[:])

	var zeroHash chainhash.Hash
	if !hashType.isAnyOneCanPay() {
		buf.Write(sigHashes.hashPrevOuts[:])
	} else {
		buf.Write(zeroHash[:])
	}

	if !hashType.isAnyOneCanPay() && hashType.baseType() != SigHashSingle && hashType.baseType() != SigHashNone {
		buf.Write(sigHashes.hashSequence[:])
	} else {
		buf.Write(zeroHash[:])
	}

	txIn := tx.TxIn[idx]
	buf.Write(txIn.PreviousOutPoint.Hash[:])
	var idxBytes [4]byte
	binary.LittleEndian.PutUint32(idxBytes[:], txIn.PreviousOutPoint.Index)
	buf.Write(idxBytes[:])

	wire.WriteVarBytes(&buf, subScript)

	var amountBytes [8]byte
	binary.LittleEndian.PutUint64(amountBytes[:], uint64(inputAmount))
	buf.Write(amountBytes[:])

	var seqBytes [4]byte
	binary.LittleEndian.PutUint32(seqBytes[:], txIn.Sequence)
	buf.Write(seqBytes[:])

	if hashType.baseType() != SigHashSingle && hashType.baseType() != SigHashNone {
		buf.Write(sigHashes.hashOutputs[:])
	} else if hashType.baseType() == SigHashSingle && idx < len(tx.TxOut) {
		var single bytes.Buffer
		wire.WriteTxOut(&single, tx.TxOut[idx])
		buf.Write(chainhash.DoubleHashB(single.Bytes()))
	} else {
		buf.Write(zeroHash[:])
	}

	var lockTime [4]byte
	binary.LittleEndian.PutUint32(lockTime[:], tx.LockTime)
	buf.Write(lockTime[:])

	var hashTypeBytes [4]byte
	binary.LittleEndian.PutUint32(hashTypeBytes[:], uint32(hashType))
	buf.Write(hashTypeBytes[:])

	return chainhash.DoubleHashB(buf.Bytes())
}

// txSigHashes caches the three transaction-wide hashes the FORKID
// preimage commits to, each computed once per transaction rather than
// once per input.
type txSigHashes struct {
	hashPrevOuts chainhash.Hash
	hashSequence chainhash.Hash
	hashOutputs  chainhash.Hash
}

func newTxSigHashes(tx *wire.MsgTx) *txSigHashes {
	var prevOuts, sequences, outputs bytes.Buffer

	for _, in := range tx.TxIn {
		prevOuts.Write(in.PreviousOutPoint.Hash[:])
		var idxBytes [4]byte
		binary.LittleEndian.PutUint32(idxBytes[:], in.PreviousOutPoint.Index)
		prevOuts.Write(idxBytes[:])

		var seqBytes [4]byte
		binary.LittleEndian.PutUint32(seqBytes[:], in.Sequence)
		sequences.Write(seqBytes[:])
	}

	for _, out := range tx.TxOut {
		wire.WriteTxOut(&outputs, out)
	}

	return &txSigHashes{
		hashPrevOuts: chainhash.DoubleHashH(prevOuts.Bytes()),
		hashSequence: chainhash.DoubleHashH(sequences.Bytes()),
		hashOutputs:  chainhash.DoubleHashH(outputs.Bytes()),
	}
}
