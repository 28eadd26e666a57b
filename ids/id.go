// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ids

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/sha3"
)

// IDLen is the length, in bytes, of an ID: a transaction id, an app-hash, or
// any other 32-byte content-addressed identifier in the staking state
// machine.
const IDLen = 32

var (
	errWrongIDLength = errors.New("input has wrong length for ID")

	empty = ID{}
)

// ID is a 32-byte identifier, usually the Keccak-256 digest of some encoded
// content. It is the unit the app-state root, transaction ids, and evidence
// keys are expressed in.
type ID [IDLen]byte

// NewID creates an ID from the given bytes
func NewID(b [IDLen]byte) ID { return ID(b) }

// Empty returns the all-zero ID
func Empty() ID { return empty }

// FromString parses the plain base58 encoding produced by [ID.String].
func FromString(s string) (ID, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return ID{}, err
	}
	return ToID(b)
}

// ToID attempts to convert a byte slice into an ID
func ToID(b []byte) (ID, error) {
	if len(b) != IDLen {
		return ID{}, errWrongIDLength
	}
	var id ID
	copy(id[:], b)
	return id, nil
}

// Keccak256 hashes [data] into an ID.
func Keccak256(data ...[]byte) ID {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	var id ID
	copy(id[:], h.Sum(nil))
	return id
}

// IsZero returns true iff the ID is the all-zero ID (i.e. never assigned)
func (id ID) IsZero() bool { return id == empty }

// Bytes returns the bytes of this ID
func (id ID) Bytes() []byte { return id[:] }

// Key returns the raw 32-byte array backing this ID, the form used as a map
// key throughout this module (evidence dedup sets, account tables, etc.)
func (id ID) Key() [IDLen]byte { return id }

// Prefix derives a new, dependent ID from this one and an index - used to
// derive the ID of a UTXO from the ID of the transaction that created it.
func (id ID) Prefix(prefixes ...uint64) ID {
	packer := make([]byte, 0, IDLen+8*len(prefixes))
	for _, p := range prefixes {
		var buf [8]byte
		for i := 0; i < 8; i++ {
			buf[i] = byte(p >> (8 * i))
		}
		packer = append(packer, buf[:]...)
	}
	packer = append(packer, id[:]...)
	return Keccak256(packer)
}

// Equals reports whether [id] and [other] are the same ID.
func (id ID) Equals(other ID) bool { return id == other }

// Compare returns -1, 0 or 1 if [id] sorts before, equal to, or after [other]
func (id ID) Compare(other ID) int { return bytes.Compare(id[:], other[:]) }

func (id ID) String() string {
	return base58.Encode(id[:])
}

// MarshalJSON implements the json.Marshaler interface
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (id *ID) UnmarshalJSON(b []byte) error {
	str := string(b)
	if str == "null" {
		return nil
	}
	if len(str) < 2 || str[0] != '"' || str[len(str)-1] != '"' {
		return fmt.Errorf("ID must be a JSON string, got %q", str)
	}
	parsed, err := FromString(str[1 : len(str)-1])
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// SortIDs sorts the given slice of IDs in place, ascending.
func SortIDs(ids []ID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].Compare(ids[j]) < 0 })
}

// IsSortedAndUniqueIDs returns true iff [ids] is sorted ascending with no
// duplicates - the property every state-root and event-list input must have
// to keep the app-state root deterministic under map iteration.
func IsSortedAndUniqueIDs(ids []ID) bool {
	for i := 1; i < len(ids); i++ {
		if ids[i-1].Compare(ids[i]) >= 0 {
			return false
		}
	}
	return true
}
