// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ids

const minEvidenceSetSize = 16

// EvidenceSet tracks a set of 32-byte keys that have already been acted upon,
// so a caller can cheaply test and enforce idempotence. It is the same
// "unique key -> membership" shape as avalanchego's UniqueBag, simplified to
// plain membership since punishment-pipeline idempotence has no need for the
// per-set vote-counting bitset avalanchego's consensus engine used it for.
//
// The staking package keys this by Keccak256(validatorKey || height || index)
// to drop byzantine-evidence triples that have already produced a slash.
type EvidenceSet map[[IDLen]byte]struct{}

// NewEvidenceSet creates an empty evidence set.
func NewEvidenceSet() EvidenceSet {
	return make(EvidenceSet, minEvidenceSetSize)
}

// Contains reports whether [id] has already been recorded.
func (s EvidenceSet) Contains(id ID) bool {
	_, ok := s[id.Key()]
	return ok
}

// Add records [id] as seen. Returns true iff this was the first time [id] was
// added (i.e. the caller should act on it).
func (s EvidenceSet) Add(id ID) bool {
	key := id.Key()
	if _, ok := s[key]; ok {
		return false
	}
	s[key] = struct{}{}
	return true
}

// Remove drops [id] from the set, e.g. once the punishment it guarded has
// both been enqueued and executed and the evidence no longer needs guarding.
func (s EvidenceSet) Remove(id ID) {
	delete(s, id.Key())
}

// Len returns the number of entries currently tracked.
func (s EvidenceSet) Len() int { return len(s) }
