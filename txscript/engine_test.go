// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"testing"

	"github.com/bsvd/bsvd/bsvec"
	"github.com/bsvd/bsvd/chainhash"
	"github.com/bsvd/bsvd/wire"
	"github.com/stretchr/testify/require"
)

const stdFlags = ScriptBip16 | ScriptVerifyDERSignatures | ScriptVerifyLowS |
	ScriptStrictMultiSig | ScriptVerifyMinimalData | ScriptVerifyNullFail |
	ScriptVerifyNullDummy | ScriptVerifyCleanStack | ScriptEnableSighashForkID

func spendingTx(prevOutScript []byte, value int64) (*wire.MsgTx, int) {
	hash, _ := chainhash.NewHashFromStr("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(hash, 0), nil))
	tx.AddTxOut(wire.NewTxOut(value-1000, []byte{OP_TRUE}))
	return tx, 0
}

func TestEngineP2PKHSpendRoundTrip(t *testing.T) {
	priv, err := bsvec.NewPrivateKey()
	require.NoError(t, err)
	pubKey := priv.PubKey().SerializeCompressed()
	pubKeyHash := chainhash.Hash160(pubKey)

	lockScript, err := (&P2PKHLockBuilder{PubKeyHash: pubKeyHash}).LockScript()
	require.NoError(t, err)

	const inputAmount = int64(100000000)
	tx, idx := spendingTx(lockScript, inputAmount)

	unlockScript, err := (&P2PKHUnlockBuilder{PrivKey: priv, PubKey: pubKey}).BuildUnlock(UnlockContext{
		Tx:          tx,
		InputIdx:    idx,
		InputAmount: inputAmount,
		SubScript:   lockScript,
		HashType:    SigHashAll | SigHashForkID,
	})
	require.NoError(t, err)
	tx.TxIn[idx].SignatureScript = unlockScript

	vm, err := NewEngine(lockScript, tx, idx, stdFlags, inputAmount)
	require.NoError(t, err)
	require.NoError(t, vm.Execute())
}

func TestEngineP2PKHWrongKeyFails(t *testing.T) {
	priv, err := bsvec.NewPrivateKey()
	require.NoError(t, err)
	other, err := bsvec.NewPrivateKey()
	require.NoError(t, err)

	pubKey := priv.PubKey().SerializeCompressed()
	pubKeyHash := chainhash.Hash160(pubKey)
	lockScript, err := (&P2PKHLockBuilder{PubKeyHash: pubKeyHash}).LockScript()
	require.NoError(t, err)

	const inputAmount = int64(100000000)
	tx, idx := spendingTx(lockScript, inputAmount)

	unlockScript, err := (&P2PKHUnlockBuilder{PrivKey: other, PubKey: pubKey}).BuildUnlock(UnlockContext{
		Tx:          tx,
		InputIdx:    idx,
		InputAmount: inputAmount,
		SubScript:   lockScript,
		HashType:    SigHashAll | SigHashForkID,
	})
	require.NoError(t, err)
	tx.TxIn[idx].SignatureScript = unlockScript

	vm, err := NewEngine(lockScript, tx, idx, stdFlags, inputAmount)
	require.NoError(t, err)
	err = vm.Execute()
	require.Error(t, err)
}

func buildMultiSigRedeemScript(t *testing.T, pubKeys [][]byte, m int) []byte {
	script, err := (&P2MSLockBuilder{M: m, PubKeys: pubKeys}).LockScript()
	require.NoError(t, err)
	return script
}

func TestEngineP2SH2of3MultisigSpendRoundTrip(t *testing.T) {
	var privKeys []*bsvec.PrivateKey
	var pubKeys [][]byte
	for i := 0; i < 3; i++ {
		priv, err := bsvec.NewPrivateKey()
		require.NoError(t, err)
		privKeys = append(privKeys, priv)
		pubKeys = append(pubKeys, priv.PubKey().SerializeCompressed())
	}

	redeemScript := buildMultiSigRedeemScript(t, pubKeys, 2)
	scriptHash := chainhash.Hash160(redeemScript)
	lockScript, err := (&P2SHLockBuilder{ScriptHash: scriptHash}).LockScript()
	require.NoError(t, err)

	const inputAmount = int64(100000000)
	tx, idx := spendingTx(lockScript, inputAmount)

	unlock := &P2SHUnlockBuilder{
		Inner:        &P2MSUnlockBuilder{PrivKeys: []*bsvec.PrivateKey{privKeys[0], privKeys[2]}},
		RedeemScript: redeemScript,
	}
	unlockScript, err := unlock.BuildUnlock(UnlockContext{
		Tx:          tx,
		InputIdx:    idx,
		InputAmount: inputAmount,
		HashType:    SigHashAll | SigHashForkID,
	})
	require.NoError(t, err)
	tx.TxIn[idx].SignatureScript = unlockScript

	vm, err := NewEngine(lockScript, tx, idx, stdFlags, inputAmount)
	require.NoError(t, err)
	require.NoError(t, vm.Execute())
}

func TestEngineP2SHMultisigOneGenuineOneUnrelatedSignatureFails(t *testing.T) {
	var privKeys []*bsvec.PrivateKey
	var pubKeys [][]byte
	for i := 0; i < 3; i++ {
		priv, err := bsvec.NewPrivateKey()
		require.NoError(t, err)
		privKeys = append(privKeys, priv)
		pubKeys = append(pubKeys, priv.PubKey().SerializeCompressed())
	}
	// The redeem script requires two of these three keys; supply one
	// genuine signature plus one from a key that isn't part of the
	// redeem script at all, keeping the signature *count* correct
	// (CHECKMULTISIG always consumes exactly M signature slots) while
	// making the combination invalid.
	unrelatedKey, err := bsvec.NewPrivateKey()
	require.NoError(t, err)

	redeemScript := buildMultiSigRedeemScript(t, pubKeys, 2)
	scriptHash := chainhash.Hash160(redeemScript)
	lockScript, err := (&P2SHLockBuilder{ScriptHash: scriptHash}).LockScript()
	require.NoError(t, err)

	const inputAmount = int64(100000000)
	tx, idx := spendingTx(lockScript, inputAmount)

	unlock := &P2SHUnlockBuilder{
		Inner:        &P2MSUnlockBuilder{PrivKeys: []*bsvec.PrivateKey{privKeys[0], unrelatedKey}},
		RedeemScript: redeemScript,
	}
	unlockScript, err := unlock.BuildUnlock(UnlockContext{
		Tx:          tx,
		InputIdx:    idx,
		InputAmount: inputAmount,
		HashType:    SigHashAll | SigHashForkID,
	})
	require.NoError(t, err)
	tx.TxIn[idx].SignatureScript = unlockScript

	vm, err := NewEngine(lockScript, tx, idx, stdFlags, inputAmount)
	require.NoError(t, err)
	err = vm.Execute()
	require.Error(t, err)
	require.True(t, IsErrorCode(err, ErrEvalFalse))
}

func TestEngineCleanStackViolation(t *testing.T) {
	tx, idx := spendingTx(nil, 100000000)
	lockScript := []byte{OP_1, OP_1}
	tx.TxIn[idx].SignatureScript = []byte{OP_1}

	vm, err := NewEngine(lockScript, tx, idx, ScriptVerifyCleanStack, 0)
	require.NoError(t, err)
	err = vm.Execute()
	require.Error(t, err)
	require.True(t, IsErrorCode(err, ErrCleanStack))
}

func TestEngineOpReturnFails(t *testing.T) {
	tx, idx := spendingTx(nil, 100000000)
	lockScript := []byte{OP_RETURN}
	tx.TxIn[idx].SignatureScript = nil

	vm, err := NewEngine(lockScript, tx, idx, 0, 0)
	require.NoError(t, err)
	err = vm.Execute()
	require.Error(t, err)
	require.True(t, IsErrorCode(err, ErrEarlyReturn))
}

func TestEngineDisabledOpcodeFails(t *testing.T) {
	tx, idx := spendingTx(nil, 100000000)
	lockScript := []byte{OP_CAT}
	tx.TxIn[idx].SignatureScript = nil

	vm, err := NewEngine(lockScript, tx, idx, 0, 0)
	require.NoError(t, err)
	err = vm.Execute()
	require.Error(t, err)
	require.True(t, IsErrorCode(err, ErrDisabledOpcode))
}
