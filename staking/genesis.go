// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

import (
	"sort"
)

// GenesisAccountType distinguishes a spendable, externally-owned genesis
// allocation from a treasury/long-term-incentive allocation that never
// becomes a withdrawable account. Recovered from the original
// implementation's AccountType enum (chain-core/src/init/config.rs) -
// spec.md's distilled genesis document doesn't mention it, but a
// non-withdrawable treasury allocation is a genuinely useful feature of the
// genesis model and doesn't contradict anything in spec.md's Non-goals.
type GenesisAccountType uint8

const (
	// GenesisExternallyOwned allocates directly to a spendable staking
	// account, bonded from genesis.
	GenesisExternallyOwned GenesisAccountType = iota
	// GenesisContract routes the allocation straight into the reward
	// pool's period bonus instead of creating an account - used for
	// treasury and long-term-incentive wallets that aren't meant to ever
	// sign a staking transaction.
	GenesisContract
)

// GenesisAllocation is one entry of the genesis document's distribution
// map: spec.md §6's `distribution: Map<Address, (Coin, AccountType)>`.
type GenesisAllocation struct {
	Address Address
	Amount  Coin
	Type    GenesisAccountType
}

// GenesisCouncilNode binds a genesis allocation's address to a consensus
// key, installing it as an initial validator - spec.md §6's `council_nodes`
// list.
type GenesisCouncilNode struct {
	Address      Address
	ConsensusKey ValidatorKey
}

// GenesisDoc is the fully-parsed app-state genesis document the consensus
// engine's InitChain hands the driver. Parsing the on-disk/wire genesis
// file format is out of scope per spec.md §1; this module only validates
// and consumes the already-parsed struct.
type GenesisDoc struct {
	ChainID      string
	Time         uint64
	Distribution []GenesisAllocation
	Params       Params
	RewardConfig RewardConfig
	CouncilNodes []GenesisCouncilNode
}

// ValidateGenesis checks spec.md §6's InitChain preconditions: the full
// distribution (including treasury/contract allocations) sums to exactly
// MaxCoin, no address is listed twice, every council node names a
// distribution entry whose bonded stake covers the network's required
// stake, and every consensus key is well-formed and used by at most one
// council node.
func ValidateGenesis(doc *GenesisDoc) error {
	seenAddr := make(map[Address]GenesisAllocation, len(doc.Distribution))
	var total Coin
	var err error
	for _, alloc := range doc.Distribution {
		if _, dup := seenAddr[alloc.Address]; dup {
			return ErrGenesisDuplicateAddress
		}
		seenAddr[alloc.Address] = alloc
		total, err = AddCoin(total, alloc.Amount)
		if err != nil {
			return err
		}
	}
	if uint64(total) != MaxCoin {
		return ErrGenesisSupply
	}

	seenKeys := make(map[ValidatorKey]Address, len(doc.CouncilNodes))
	for _, node := range doc.CouncilNodes {
		if node.ConsensusKey.IsZero() {
			return ErrGenesisValidatorStake
		}
		if owner, dup := seenKeys[node.ConsensusKey]; dup && owner != node.Address {
			return ErrDuplicateValidatorKey
		}
		seenKeys[node.ConsensusKey] = node.Address

		alloc, ok := seenAddr[node.Address]
		if !ok || alloc.Type != GenesisExternallyOwned {
			return ErrGenesisValidatorStake
		}
		if alloc.Amount < doc.Params.MinimalStake {
			return ErrGenesisValidatorStake
		}
	}
	return nil
}

// GenesisState is the fully-constructed initial state InitChain installs:
// the populated store, the reward pool (carrying any treasury allocations
// as its opening period bonus), and the validator schedule after its first
// recomputation.
type GenesisState struct {
	Pool     *RewardPool
	Schedule *Schedule
	Updates  []ValidatorUpdate
}

// BuildGenesisState validates [doc] and installs its distribution and
// council nodes into [store], returning the reward pool and validator
// schedule the driver should hold going forward. Accounts are written
// directly to the consensus buffer so the very first Commit flushes them
// as part of the genesis app-hash.
func BuildGenesisState(store *Store, doc *GenesisDoc) (*GenesisState, error) {
	if err := ValidateGenesis(doc); err != nil {
		return nil, err
	}

	pool := NewRewardPool(doc.Time)
	councilByAddr := make(map[Address]ValidatorKey, len(doc.CouncilNodes))
	for _, node := range doc.CouncilNodes {
		councilByAddr[node.Address] = node.ConsensusKey
	}

	// Deterministic application order: address-sorted, independent of the
	// genesis document's own listing order.
	allocs := make([]GenesisAllocation, len(doc.Distribution))
	copy(allocs, doc.Distribution)
	sort.Slice(allocs, func(i, j int) bool { return allocs[i].Address.Less(allocs[j].Address) })

	for _, alloc := range allocs {
		if alloc.Type == GenesisContract {
			bonus, err := AddCoin(pool.PeriodBonus, alloc.Amount)
			if err != nil {
				return nil, err
			}
			pool.PeriodBonus = bonus
			continue
		}

		acc := NewAccount(alloc.Address)
		acc.Bonded = alloc.Amount
		if key, isCouncil := councilByAddr[alloc.Address]; isCouncil {
			acc.Validator = &ValidatorBinding{
				ConsensusKey: key,
				Liveness:     NewLivenessWindow(doc.Params.LivenessWindowSize),
				Active:       true,
			}
		}
		store.Set(BufferConsensus, acc)
	}

	schedule := NewSchedule(doc.Params.MaxValidators, doc.Params.PowerDenom)
	updates := schedule.Recompute(store.AccountsSorted(BufferConsensus), doc.Params.MinimalStake, doc.Time)

	return &GenesisState{Pool: pool, Schedule: schedule, Updates: updates}, nil
}
