// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ids

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/btcsuite/btcutil/base58"
)

// ShortIDLen is the length, in bytes, of a ShortID: a staking address.
const ShortIDLen = 20

var (
	errWrongShortIDLength = errors.New("input has wrong length for ShortID")
	errMissingPrefix      = errors.New("input string is missing the expected prefix")

	emptyShort = ShortID{}
)

// ShortID is a 20-byte identifier, used for staking addresses derived from a
// secp256k1 public key.
type ShortID [ShortIDLen]byte

// NewShortID creates a ShortID from the given bytes
func NewShortID(b [ShortIDLen]byte) ShortID { return ShortID(b) }

// ShortEmpty returns the all-zero ShortID
func ShortEmpty() ShortID { return emptyShort }

// ToShortID attempts to convert a byte slice into a ShortID
func ToShortID(b []byte) (ShortID, error) {
	if len(b) != ShortIDLen {
		return ShortID{}, errWrongShortIDLength
	}
	var id ShortID
	copy(id[:], b)
	return id, nil
}

// IsZero returns true iff this is the never-assigned address
func (id ShortID) IsZero() bool { return id == emptyShort }

// Bytes returns the bytes of this ShortID
func (id ShortID) Bytes() []byte { return id[:] }

// Equals reports whether [id] and [other] are the same ShortID
func (id ShortID) Equals(other ShortID) bool { return id == other }

// Less reports whether [id] sorts before [other] - staking addresses are
// ordered lexicographically, which backs the validator schedule's
// `(bonded DESC, address ASC)` tie-break.
func (id ShortID) Less(other ShortID) bool {
	for i := range id {
		if id[i] != other[i] {
			return id[i] < other[i]
		}
	}
	return false
}

func (id ShortID) String() string {
	return base58.CheckEncode(id[:], 0)
}

// PrefixedString returns this ShortID encoded with a human-readable prefix,
// e.g. "staking" for a staking address.
func (id ShortID) PrefixedString(prefix string) string {
	return prefix + id.String()
}

// ShortFromPrefixedString parses the output of [ShortID.PrefixedString],
// failing if the string doesn't carry the expected prefix.
func ShortFromPrefixedString(str, prefix string) (ShortID, error) {
	if len(prefix) > len(str) || !strings.HasPrefix(str, prefix) {
		return ShortID{}, errMissingPrefix
	}
	version, decoded, err := base58.CheckDecode(str[len(prefix):])
	if err != nil {
		return ShortID{}, err
	}
	if version != 0 {
		return ShortID{}, fmt.Errorf("unsupported address version %d", version)
	}
	return ToShortID(decoded)
}

// MarshalJSON implements the json.Marshaler interface
func (id ShortID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (id *ShortID) UnmarshalJSON(b []byte) error {
	str := string(b)
	if str == "null" {
		return nil
	}
	if len(str) < 2 || str[0] != '"' || str[len(str)-1] != '"' {
		return fmt.Errorf("ShortID must be a JSON string, got %q", str)
	}
	_, decoded, err := base58.CheckDecode(str[1 : len(str)-1])
	if err != nil {
		return err
	}
	parsed, err := ToShortID(decoded)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// SortShortIDs sorts the given slice of ShortIDs in place, ascending.
func SortShortIDs(ids []ShortID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
}

// IsUniqueShortIDs returns true iff no ShortID in [ids] appears more than
// once, regardless of order.
func IsUniqueShortIDs(ids []ShortID) bool {
	seen := make(map[ShortID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return false
		}
		seen[id] = struct{}{}
	}
	return true
}
