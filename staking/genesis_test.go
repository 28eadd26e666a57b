// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func baseParams() Params {
	return Params{
		MinimalStake:         100,
		MaxValidators:        4,
		PowerDenom:           1,
		LivenessWindowSize:   10,
		MissedBlockThreshold: 5,
		UnbondingPeriod:      10,
		RewardPeriod:         100,
		ExpansionCapBP:       0,
		JailDuration:         10,
		ByzantineSlashBP:     5_000,
		LivenessSlashBP:      500,
	}
}

func validGenesisDoc() *GenesisDoc {
	return &GenesisDoc{
		ChainID: "test-chain",
		Time:    0,
		Params:  baseParams(),
		Distribution: []GenesisAllocation{
			{Address: addrN(1), Amount: 1_000, Type: GenesisExternallyOwned},
			{Address: addrN(2), Amount: Coin(MaxCoin) - 1_000, Type: GenesisContract},
		},
		CouncilNodes: []GenesisCouncilNode{
			{Address: addrN(1), ConsensusKey: keyN(1)},
		},
	}
}

func TestValidateGenesisAccepts(t *testing.T) {
	if err := ValidateGenesis(validGenesisDoc()); err != nil {
		t.Fatalf("expected a well-formed genesis doc to validate, got %v", err)
	}
}

func TestValidateGenesisRejectsSupplyMismatch(t *testing.T) {
	doc := validGenesisDoc()
	doc.Distribution[0].Amount = 1
	if err := ValidateGenesis(doc); err == nil {
		t.Fatal("expected a distribution not summing to MaxCoin to be rejected")
	}
}

func TestValidateGenesisRejectsDuplicateAddress(t *testing.T) {
	doc := validGenesisDoc()
	doc.Distribution = append(doc.Distribution, GenesisAllocation{Address: addrN(1), Amount: 0, Type: GenesisExternallyOwned})
	if err := ValidateGenesis(doc); err == nil {
		t.Fatal("expected a duplicate address to be rejected")
	}
}

func TestValidateGenesisRejectsUnderstakedCouncilNode(t *testing.T) {
	doc := validGenesisDoc()
	doc.Params.MinimalStake = 10_000
	if err := ValidateGenesis(doc); err == nil {
		t.Fatal("expected a council node below minimal stake to be rejected")
	}
}

func TestValidateGenesisRejectsCouncilNodeOnContractAllocation(t *testing.T) {
	doc := validGenesisDoc()
	doc.CouncilNodes = []GenesisCouncilNode{{Address: addrN(2), ConsensusKey: keyN(1)}}
	if err := ValidateGenesis(doc); err == nil {
		t.Fatal("expected a council node naming a contract-type allocation to be rejected")
	}
}

func TestBuildGenesisStateRoutesContractAllocationToPool(t *testing.T) {
	require := require.New(t)
	store := NewMemStore(nil)
	doc := validGenesisDoc()
	state, err := BuildGenesisState(store, doc)
	require.NoError(err)
	require.Equal(doc.Distribution[1].Amount, state.Pool.PeriodBonus, "expected the contract allocation to become the opening period bonus")

	accounts := store.AccountsSorted(BufferConsensus)
	require.Len(accounts, 1, "expected only the externally-owned allocation to become an account")
	require.Equal(addrN(1), accounts[0].Address)
	require.EqualValues(1_000, accounts[0].Bonded, "expected the externally-owned allocation's account to carry its bonded amount")
	require.NotNil(accounts[0].Validator)
	require.Equal(keyN(1), accounts[0].Validator.ConsensusKey, "expected the council node's consensus key to be bound")
	require.Len(state.Updates, 1, "expected one validator-update entry from the initial schedule recompute")
}

func TestBuildGenesisStateRejectsInvalidDoc(t *testing.T) {
	store := NewMemStore(nil)
	doc := validGenesisDoc()
	doc.Distribution[0].Amount = 1
	if _, err := BuildGenesisState(store, doc); err == nil {
		t.Fatal("expected BuildGenesisState to surface ValidateGenesis's rejection")
	}
}
