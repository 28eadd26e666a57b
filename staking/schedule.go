// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

import "sort"

// ValidatorUpdate is a single entry in the diff EndBlock hands to the
// consensus engine: the validator's consensus key and its new voting power
// (zero meaning "remove").
type ValidatorUpdate struct {
	Key   ValidatorKey `json:"key"`
	Power uint64       `json:"power"`
}

// candidate is the subset of Account state the schedule needs to rank
// validators, computed fresh from the store on every EndBlock.
type candidate struct {
	addr   Address
	key    ValidatorKey
	bonded Coin
	power  uint64
}

type byBondedThenAddress []candidate

func (c byBondedThenAddress) Len() int      { return len(c) }
func (c byBondedThenAddress) Swap(i, j int) { c[i], c[j] = c[j], c[i] }
func (c byBondedThenAddress) Less(i, j int) bool {
	if c[i].bonded != c[j].bonded {
		return c[i].bonded > c[j].bonded // bonded DESC
	}
	return c[i].addr.Less(c[j].addr) // address ASC
}

// Schedule maintains the chain's active validator set: the ordered
// selection by (bonded DESC, address ASC) capped at MaxValidators, and the
// previous active set needed to diff against on the next recomputation.
// Adapted from the teacher's platformvm validator-set bookkeeping,
// generalized from delegation-weighted subnets to this chain's single
// flat validator set.
type Schedule struct {
	MaxValidators int              `json:"maxValidators"`
	PowerDenom    uint64           `json:"powerDenom"`
	Active        map[Address]ValidatorKey `json:"active"`
	Power         map[Address]uint64       `json:"power"`
}

// NewSchedule returns an empty schedule.
func NewSchedule(maxValidators int, powerDenom uint64) *Schedule {
	if powerDenom == 0 {
		powerDenom = 1
	}
	return &Schedule{
		MaxValidators: maxValidators,
		PowerDenom:    powerDenom,
		Active:        make(map[Address]ValidatorKey),
		Power:         make(map[Address]uint64),
	}
}

// Recompute ranks [accounts] eligible for validator duty, selects the top
// MaxValidators by (bonded DESC, address ASC), and returns the consensus
// validator-set diff against the previously active set. Accounts below
// [minimalStake], jailed as of [now], or with no validator binding are
// never candidates.
func (s *Schedule) Recompute(accounts []*Account, minimalStake Coin, now uint64) []ValidatorUpdate {
	candidates := make([]candidate, 0, len(accounts))
	for _, acc := range accounts {
		if acc.Validator == nil || !acc.Validator.Active {
			continue
		}
		if acc.IsJailed(now) {
			continue
		}
		if acc.Bonded < minimalStake {
			continue
		}
		power := uint64(acc.Bonded) / s.PowerDenom
		if power == 0 {
			continue
		}
		candidates = append(candidates, candidate{addr: acc.Address, key: acc.Validator.ConsensusKey, bonded: acc.Bonded, power: power})
	}
	sort.Sort(byBondedThenAddress(candidates))
	if len(candidates) > s.MaxValidators {
		candidates = candidates[:s.MaxValidators]
	}

	nextActive := make(map[Address]ValidatorKey, len(candidates))
	nextPower := make(map[Address]uint64, len(candidates))
	for _, c := range candidates {
		nextActive[c.addr] = c.key
		nextPower[c.addr] = c.power
	}

	type diffEntry struct {
		addr   Address
		update ValidatorUpdate
	}
	var diff []diffEntry

	for addr, key := range s.Active {
		if _, stillActive := nextActive[addr]; !stillActive {
			diff = append(diff, diffEntry{addr: addr, update: ValidatorUpdate{Key: key, Power: 0}})
		}
	}
	for addr, key := range nextActive {
		power := nextPower[addr]
		if oldPower, wasActive := s.Power[addr]; !wasActive || oldPower != power {
			diff = append(diff, diffEntry{addr: addr, update: ValidatorUpdate{Key: key, Power: power}})
		}
	}

	sort.Slice(diff, func(i, j int) bool { return diff[i].addr.Less(diff[j].addr) })

	updates := make([]ValidatorUpdate, len(diff))
	for i, d := range diff {
		updates[i] = d.update
	}

	s.Active = nextActive
	s.Power = nextPower
	return updates
}

// IsActive reports whether [addr] currently holds a validator slot.
func (s *Schedule) IsActive(addr Address) bool {
	_, ok := s.Active[addr]
	return ok
}

// LookupAddress returns the address currently bound to consensus key [key]
// within the active set, if any.
func (s *Schedule) LookupAddress(key ValidatorKey) (Address, bool) {
	for addr, k := range s.Active {
		if k == key {
			return addr, true
		}
	}
	return Address{}, false
}

// TotalPower sums the voting power of every currently active validator.
func (s *Schedule) TotalPower() uint64 {
	var total uint64
	for _, p := range s.Power {
		total += p
	}
	return total
}
