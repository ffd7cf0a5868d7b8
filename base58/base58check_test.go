package base58

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		version byte
		payload string
	}{
		{0x00, ""},
		{0x00, "00"},
		{0x05, "0102030405060708090a0b0c0d0e0f1011121314"},
		{0x6F, "ff"},
		{0xC4, "0000000000000000000000000000000000000000"},
	}

	for _, tc := range tests {
		payload, err := hex.DecodeString(tc.payload)
		require.NoError(t, err)

		encoded := CheckEncode(payload, tc.version)
		decoded, version, err := CheckDecode(encoded)
		require.NoError(t, err)
		require.Equal(t, tc.version, version)
		require.Equal(t, payload, decoded)
	}
}

// TestKnownVector exercises the textbook Base58Check example: a version 0
// payload whose hash160 is 010966776006953D5567439E5E39F86A0D273BE.
func TestKnownVector(t *testing.T) {
	payload, err := hex.DecodeString("010966776006953D5567439E5E39F86A0D273BE")
	require.NoError(t, err)

	got := CheckEncode(payload, 0x00)
	require.Equal(t, "16UwLL9Risc3QfPqBUvKofHmBQ7wMtjvM", got)

	decoded, version, err := CheckDecode(got)
	require.NoError(t, err)
	require.Equal(t, byte(0x00), version)
	require.Equal(t, payload, decoded)
}

func TestCheckDecodeChecksumError(t *testing.T) {
	encoded := CheckEncode([]byte("hello"), 0)
	// Flip the last character to corrupt the checksum.
	b := []byte(encoded)
	if b[len(b)-1] == 'z' {
		b[len(b)-1] = 'y'
	} else {
		b[len(b)-1] = 'z'
	}
	_, _, err := CheckDecode(string(b))
	require.ErrorIs(t, err, ErrChecksum)
}

func TestCheckDecodeInvalidFormat(t *testing.T) {
	_, _, err := CheckDecode("")
	require.ErrorIs(t, err, ErrInvalidFormat)
}
