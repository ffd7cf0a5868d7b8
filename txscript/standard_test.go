// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"testing"

	"github.com/bsvd/bsvd/bsvec"
	"github.com/stretchr/testify/require"
)

func TestGetScriptClassP2PKH(t *testing.T) {
	script, err := (&P2PKHLockBuilder{PubKeyHash: make([]byte, 20)}).LockScript()
	require.NoError(t, err)
	require.Equal(t, PubKeyHashTy, GetScriptClass(script))
}

func TestGetScriptClassP2SH(t *testing.T) {
	script, err := (&P2SHLockBuilder{ScriptHash: make([]byte, 20)}).LockScript()
	require.NoError(t, err)
	require.Equal(t, ScriptHashTy, GetScriptClass(script))
}

func TestGetScriptClassP2PK(t *testing.T) {
	priv, err := bsvec.NewPrivateKey()
	require.NoError(t, err)
	pubKey := priv.PubKey().SerializeCompressed()

	script, err := (&P2PKLockBuilder{PubKey: pubKey}).LockScript()
	require.NoError(t, err)
	require.Equal(t, PubKeyTy, GetScriptClass(script))
}

func TestGetScriptClassMultiSig(t *testing.T) {
	var pubKeys [][]byte
	for i := 0; i < 3; i++ {
		priv, err := bsvec.NewPrivateKey()
		require.NoError(t, err)
		pubKeys = append(pubKeys, priv.PubKey().SerializeCompressed())
	}

	script, err := (&P2MSLockBuilder{M: 2, PubKeys: pubKeys}).LockScript()
	require.NoError(t, err)
	require.Equal(t, MultiSigTy, GetScriptClass(script))
}

func TestGetScriptClassNullData(t *testing.T) {
	script, err := (&DataLockBuilder{Data: [][]byte{[]byte("hello")}}).LockScript()
	require.NoError(t, err)
	require.Equal(t, NullDataTy, GetScriptClass(script))
}

func TestGetScriptClassNullDataMultiplePushes(t *testing.T) {
	script, err := (&DataLockBuilder{Data: [][]byte{[]byte("prefix"), []byte("payload")}}).LockScript()
	require.NoError(t, err)
	require.Equal(t, NullDataTy, GetScriptClass(script))
}

func TestGetScriptClassNullDataEmpty(t *testing.T) {
	script, err := (&DataLockBuilder{}).LockScript()
	require.NoError(t, err)
	require.Equal(t, NullDataTy, GetScriptClass(script))
}

func TestGetScriptClassNonStandard(t *testing.T) {
	script, err := NewScriptBuilder().AddOp(OP_NOP).AddOp(OP_DROP).Script()
	require.NoError(t, err)
	require.Equal(t, NonStandardTy, GetScriptClass(script))
}
