// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ids

import "testing"

func TestIDStringRoundTrip(t *testing.T) {
	id := Keccak256([]byte("genesis"))
	str := id.String()
	parsed, err := FromString(str)
	if err != nil {
		t.Fatal(err)
	}
	if !parsed.Equals(id) {
		t.Fatal("round trip did not produce the identical ID")
	}
}

func TestIDPrefixDeterministic(t *testing.T) {
	txID := Keccak256([]byte("tx"))
	a := txID.Prefix(0)
	b := txID.Prefix(0)
	c := txID.Prefix(1)
	if !a.Equals(b) {
		t.Fatal("Prefix must be deterministic")
	}
	if a.Equals(c) {
		t.Fatal("Prefix must depend on the index")
	}
}

func TestSortIDs(t *testing.T) {
	a := Keccak256([]byte("a"))
	b := Keccak256([]byte("b"))
	var first, second ID
	if a.Compare(b) < 0 {
		first, second = a, b
	} else {
		first, second = b, a
	}
	ids := []ID{second, first}
	SortIDs(ids)
	if !ids[0].Equals(first) || !ids[1].Equals(second) {
		t.Fatal("expected ascending sort")
	}
	if !IsSortedAndUniqueIDs(ids) {
		t.Fatal("expected sorted and unique")
	}
}

func TestEvidenceSetIdempotence(t *testing.T) {
	s := NewEvidenceSet()
	id := Keccak256([]byte("evidence"))
	if !s.Add(id) {
		t.Fatal("first add should report new")
	}
	if s.Add(id) {
		t.Fatal("second add should report already present")
	}
	if !s.Contains(id) {
		t.Fatal("expected membership")
	}
	s.Remove(id)
	if s.Contains(id) {
		t.Fatal("expected removal")
	}
}
