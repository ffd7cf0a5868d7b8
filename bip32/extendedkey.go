// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package bip32 implements hierarchical deterministic key derivation:
// master key generation from a seed, normal and hardened child
// derivation, and base58check (de)serialization of the 78-byte extended
// key payload.
package bip32

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"strconv"
	"strings"

	secp "github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/bsvd/bsvd/base58"
	"github.com/bsvd/bsvd/chaincfg"
	"github.com/bsvd/bsvd/chainhash"
)

// HardenedKeyStart is the index of the first hardened child key; any
// child index at or above this value is derived from the parent's
// private key rather than its public key.
const HardenedKeyStart = 0x80000000

const (
	serializedKeyLen   = 78
	pubKeyLen          = 33
	privKeyDataLen     = 33 // 0x00 prefix byte + 32 byte scalar
	maxDerivationTries = 1024
)

var (
	// ErrInvalidSeedLength is returned by NewMaster when the seed is
	// shorter than 128 bits or longer than 512 bits, per BIP32.
	ErrInvalidSeedLength = errors.New("bip32: seed length must be between 16 and 64 bytes")

	// ErrHardenedFromPublic is returned when Child is asked to derive a
	// hardened child index from a public-only extended key.
	ErrHardenedFromPublic = errors.New("bip32: cannot derive a hardened child from a public extended key")

	// ErrDerivationFailed is returned when child derivation exhausts its
	// retry budget without finding a valid child; this is an
	// astronomically unlikely event (roughly 1 in 2^127 per attempt).
	ErrDerivationFailed = errors.New("bip32: child derivation failed after exhausting retries")

	// ErrInvalidExtendedKeyLength is returned when a decoded extended
	// key string does not carry exactly the 78-byte BIP32 payload.
	ErrInvalidExtendedKeyLength = errors.New("bip32: decoded extended key has the wrong length")

	// ErrUnknownHDVersion is returned when a decoded extended key's
	// 4-byte version does not match either of params' HD key IDs.
	ErrUnknownHDVersion = errors.New("bip32: unrecognized extended key version bytes")

	// ErrInvalidPath is returned by DeriveChildPath when the path string
	// is not a well formed "m/0'/1/2'" style derivation path.
	ErrInvalidPath = errors.New("bip32: malformed derivation path")
)

// ExtendedKey is a BIP32 extended key: either private (capable of
// deriving both hardened and normal children, and of producing
// signatures) or public (capable of deriving only normal children).
type ExtendedKey struct {
	params    *chaincfg.Params
	key       []byte // 33 bytes: 0x00||privScalar, or a compressed pubkey
	chainCode []byte // 32 bytes
	parentFP  []byte // 4 bytes
	depth     uint8
	childNum  uint32
	isPrivate bool
}

// IsPrivate reports whether the key can derive hardened children and
// sign, as opposed to a Neuter'd public-only key.
func (k *ExtendedKey) IsPrivate() bool { return k.isPrivate }

// Depth returns the number of derivation steps between this key and the
// master key (0 for the master itself).
func (k *ExtendedKey) Depth() uint8 { return k.depth }

// ChildNum returns the index this key was derived with, or 0 for the
// master key.
func (k *ExtendedKey) ChildNum() uint32 { return k.childNum }

// pubKeyBytes returns the 33-byte compressed public key for this
// extended key, computing it from the private scalar if necessary.
func (k *ExtendedKey) pubKeyBytes() ([]byte, error) {
	if !k.isPrivate {
		return k.key, nil
	}
	priv := secp.PrivKeyFromBytes(k.key[1:])
	return priv.PubKey().SerializeCompressed(), nil
}

// PrivateKeyBytes returns the 32-byte private scalar. It fails on a
// public-only extended key.
func (k *ExtendedKey) PrivateKeyBytes() ([]byte, error) {
	if !k.isPrivate {
		return nil, ErrHardenedFromPublic
	}
	return k.key[1:], nil
}

// NewMaster derives the master extended private key from a seed using
// HMAC-SHA512("Bitcoin seed", seed): the left 32 bytes become the master
// private key, the right 32 bytes the master chain code.
func NewMaster(seed []byte, params *chaincfg.Params) (*ExtendedKey, error) {
	if len(seed) < 16 || len(seed) > 64 {
		return nil, ErrInvalidSeedLength
	}

	mac := hmac.New(sha512.New, []byte("Bitcoin seed"))
	mac.Write(seed)
	lr := mac.Sum(nil)
	il, ir := lr[:32], lr[32:]

	var scalar secp.ModNScalar
	if overflow := scalar.SetByteSlice(il); overflow || scalar.IsZero() {
		return nil, ErrDerivationFailed
	}

	key := make([]byte, privKeyDataLen)
	copy(key[1:], il)

	return &ExtendedKey{
		params:    params,
		key:       key,
		chainCode: append([]byte(nil), ir...),
		parentFP:  make([]byte, 4),
		depth:     0,
		childNum:  0,
		isPrivate: true,
	}, nil
}

// Child derives the i'th child of k. Indices at or above HardenedKeyStart
// request hardened derivation, which requires k to be private.
func (k *ExtendedKey) Child(i uint32) (*ExtendedKey, error) {
	isHardened := i >= HardenedKeyStart
	if isHardened && !k.isPrivate {
		return nil, ErrHardenedFromPublic
	}

	parentPubKey, err := k.pubKeyBytes()
	if err != nil {
		return nil, err
	}

	for attempt := uint32(0); attempt < maxDerivationTries; attempt++ {
		childIndex := i + attempt

		data := make([]byte, 0, 37)
		if isHardened {
			data = append(data, 0x00)
			data = append(data, k.key[1:]...)
		} else {
			data = append(data, parentPubKey...)
		}
		var idxBuf [4]byte
		binary.BigEndian.PutUint32(idxBuf[:], childIndex)
		data = append(data, idxBuf[:]...)

		mac := hmac.New(sha512.New, k.chainCode)
		mac.Write(data)
		lr := mac.Sum(nil)
		il, ir := lr[:32], lr[32:]

		var ilNum secp.ModNScalar
		if overflow := ilNum.SetByteSlice(il); overflow || ilNum.IsZero() {
			log.Debugf("invalid child key at index %d, retrying at %d", childIndex, childIndex+1)
			continue
		}

		var childKeyBytes []byte
		if k.isPrivate {
			var keyNum secp.ModNScalar
			keyNum.SetByteSlice(k.key[1:])
			ilNum.Add(&keyNum)
			if ilNum.IsZero() {
				log.Debugf("invalid child key at index %d, retrying at %d", childIndex, childIndex+1)
				continue
			}
			scalarBytes := ilNum.Bytes()
			childKeyBytes = make([]byte, privKeyDataLen)
			copy(childKeyBytes[1:], scalarBytes[:])
		} else {
			parentPoint, err := secp.ParsePubKey(parentPubKey)
			if err != nil {
				return nil, err
			}
			var ilPoint, parentJacobian, childPoint secp.JacobianPoint
			secp.ScalarBaseMultNonConst(&ilNum, &ilPoint)
			parentPoint.AsJacobian(&parentJacobian)
			secp.AddNonConst(&ilPoint, &parentJacobian, &childPoint)
			if (childPoint.X.IsZero() && childPoint.Y.IsZero()) || childPoint.Z.IsZero() {
				log.Debugf("invalid child key at index %d, retrying at %d", childIndex, childIndex+1)
				continue
			}
			childPoint.ToAffine()
			childPubKey := secp.NewPublicKey(&childPoint.X, &childPoint.Y)
			childKeyBytes = childPubKey.SerializeCompressed()
		}

		fingerprint := chainhash.Hash160(parentPubKey)[:4]
		return &ExtendedKey{
			params:    k.params,
			key:       childKeyBytes,
			chainCode: append([]byte(nil), ir...),
			parentFP:  append([]byte(nil), fingerprint...),
			depth:     k.depth + 1,
			childNum:  childIndex,
			isPrivate: k.isPrivate,
		}, nil
	}

	return nil, ErrDerivationFailed
}

// Neuter returns the public extended key corresponding to k, dropping
// the private scalar. Called on an already-public key, it returns k
// unchanged.
func (k *ExtendedKey) Neuter() *ExtendedKey {
	if !k.isPrivate {
		return k
	}
	pub, _ := k.pubKeyBytes()
	return &ExtendedKey{
		params:    k.params,
		key:       pub,
		chainCode: append([]byte(nil), k.chainCode...),
		parentFP:  append([]byte(nil), k.parentFP...),
		depth:     k.depth,
		childNum:  k.childNum,
		isPrivate: false,
	}
}

// String returns the base58check-encoded 78-byte serialized form of k,
// using params' HDPrivateKeyID or HDPublicKeyID as the version prefix.
func (k *ExtendedKey) String() (string, error) {
	version := k.params.HDPublicKeyID
	if k.isPrivate {
		version = k.params.HDPrivateKeyID
	}

	payload := make([]byte, 0, serializedKeyLen)
	payload = append(payload, version[:]...)
	payload = append(payload, k.depth)
	payload = append(payload, k.parentFP...)

	var idxBuf [4]byte
	binary.BigEndian.PutUint32(idxBuf[:], k.childNum)
	payload = append(payload, idxBuf[:]...)
	payload = append(payload, k.chainCode...)
	payload = append(payload, k.key...)

	return checkEncode(payload), nil
}

// NewKeyFromString decodes a base58check extended key string, validating
// its length and checksum and matching its version against params'
// HDPrivateKeyID/HDPublicKeyID.
func NewKeyFromString(s string, params *chaincfg.Params) (*ExtendedKey, error) {
	payload, err := checkDecode(s)
	if err != nil {
		return nil, err
	}
	if len(payload) != serializedKeyLen {
		return nil, ErrInvalidExtendedKeyLength
	}

	var version [4]byte
	copy(version[:], payload[:4])

	var isPrivate bool
	switch version {
	case params.HDPrivateKeyID:
		isPrivate = true
	case params.HDPublicKeyID:
		isPrivate = false
	default:
		return nil, ErrUnknownHDVersion
	}

	depth := payload[4]
	parentFP := append([]byte(nil), payload[5:9]...)
	childNum := binary.BigEndian.Uint32(payload[9:13])
	chainCode := append([]byte(nil), payload[13:45]...)
	key := append([]byte(nil), payload[45:78]...)

	if isPrivate && key[0] != 0x00 {
		return nil, ErrInvalidExtendedKeyLength
	}

	return &ExtendedKey{
		params:    params,
		key:       key,
		chainCode: chainCode,
		parentFP:  parentFP,
		depth:     depth,
		childNum:  childNum,
		isPrivate: isPrivate,
	}, nil
}

// DeriveChildPath derives the extended key reached by following the
// conventional "m/0'/1/2'" path notation from key: "m" or "M" denotes
// the starting key itself, each subsequent "/"-separated segment is a
// decimal child index optionally suffixed with "'" or "h" to request
// hardened derivation.
func DeriveChildPath(key *ExtendedKey, path string) (*ExtendedKey, error) {
	segments := strings.Split(path, "/")
	if len(segments) == 0 || (segments[0] != "m" && segments[0] != "M") {
		return nil, ErrInvalidPath
	}

	current := key
	for _, seg := range segments[1:] {
		if seg == "" {
			return nil, ErrInvalidPath
		}
		hardened := false
		numPart := seg
		if last := seg[len(seg)-1]; last == '\'' || last == 'h' || last == 'H' {
			hardened = true
			numPart = seg[:len(seg)-1]
		}
		idx, err := strconv.ParseUint(numPart, 10, 32)
		if err != nil || idx >= HardenedKeyStart {
			return nil, ErrInvalidPath
		}
		if hardened {
			idx += HardenedKeyStart
		}

		child, err := current.Child(uint32(idx))
		if err != nil {
			return nil, err
		}
		current = child
	}
	return current, nil
}

// checkEncode base58check-encodes payload using a double-SHA256
// checksum, generalized from base58.CheckEncode to a multi-byte version
// prefix already embedded in payload rather than a single version byte.
func checkEncode(payload []byte) string {
	cksum := chainhash.DoubleHashB(payload)
	full := make([]byte, 0, len(payload)+4)
	full = append(full, payload...)
	full = append(full, cksum[:4]...)
	return base58.Encode(full)
}

// checkDecode reverses checkEncode, verifying the checksum.
func checkDecode(s string) ([]byte, error) {
	decoded := base58.Decode(s)
	if len(decoded) < 5 {
		return nil, base58.ErrInvalidFormat
	}
	payload := decoded[:len(decoded)-4]
	cksum := decoded[len(decoded)-4:]
	expected := chainhash.DoubleHashB(payload)
	for i := 0; i < 4; i++ {
		if cksum[i] != expected[i] {
			return nil, base58.ErrChecksum
		}
	}
	return payload, nil
}
