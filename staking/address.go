// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

import (
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v3"
	"golang.org/x/crypto/ed25519"

	"github.com/dijets-labs/stakechain/ids"
)

var (
	errNilPublicKey          = errors.New("staking: nil public key")
	errWrongValidatorKeyLen  = errors.New("staking: validator key must be 32 bytes")
	errWrongStakingAddrLen   = errors.New("staking: address must be 20 bytes")
	addressPrefix            = "staking"
)

// Address is the 20-byte account identifier spec.md §3 derives from a
// depositor's secp256k1 public key: the low 20 bytes of the Keccak256 hash
// of the uncompressed key, mirroring how an ethereum-family address is
// derived - adopted because the underlying UTXO oracle (§1) already speaks
// secp256k1. It reuses ids.ShortID's 20-byte shape and base58-check codec.
type Address = ids.ShortID

// AddressFromPublicKey derives a staking Address from an uncompressed
// secp256k1 public key.
func AddressFromPublicKey(pub *secp256k1.PublicKey) (Address, error) {
	if pub == nil {
		return Address{}, errNilPublicKey
	}
	uncompressed := pub.SerializeUncompressed()
	digest := ids.Keccak256(uncompressed[1:]) // drop the 0x04 prefix byte
	var addr Address
	copy(addr[:], digest[len(digest)-ids.ShortIDLen:])
	return addr, nil
}

// ParseAddress decodes a base58-check encoded staking address.
func ParseAddress(s string) (Address, error) {
	return ids.ShortFromPrefixedString(s, addressPrefix)
}

// AddressString renders [addr] the way genesis files and CLI output expect.
func AddressString(addr Address) string {
	return addr.PrefixedString(addressPrefix)
}

// ValidatorKeyLen is the length, in bytes, of an ed25519 consensus key.
const ValidatorKeyLen = ed25519.PublicKeySize

// ValidatorKey is the 32-byte ed25519 public key a StakedAccount binds to
// when it joins the validator set, per spec.md §3's ValidatorBinding.
type ValidatorKey [ValidatorKeyLen]byte

// ValidatorKeyFromBytes validates and wraps a raw ed25519 public key.
func ValidatorKeyFromBytes(b []byte) (ValidatorKey, error) {
	var k ValidatorKey
	if len(b) != ValidatorKeyLen {
		return k, errWrongValidatorKeyLen
	}
	copy(k[:], b)
	return k, nil
}

// Bytes returns the raw ed25519 public-key bytes.
func (k ValidatorKey) Bytes() []byte {
	b := make([]byte, ValidatorKeyLen)
	copy(b, k[:])
	return b
}

// IsZero reports whether [k] is the unset validator key.
func (k ValidatorKey) IsZero() bool {
	return k == ValidatorKey{}
}

// String renders the validator key as plain base58 (the ids.ID encoding, no
// checksum and no prefix).
func (k ValidatorKey) String() string {
	id := ids.ID{}
	copy(id[:], k[:])
	return id.String()
}

// VerifySignature checks a detached ed25519 signature over [msg].
func (k ValidatorKey) VerifySignature(msg, sig []byte) bool {
	return ed25519.Verify(ed25519.PublicKey(k[:]), msg, sig)
}
