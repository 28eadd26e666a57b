// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

// BlockEvents carries everything a single block's execution produced, in
// the fixed emission order spec.md §5 specifies: jailing, then slashing,
// then reward distribution, then the list of transactions that applied
// cleanly. Adapted from the original implementation's BeginBlock/EndBlock
// response structs (chain-abci/src/app/mod.rs).
type BlockEvents struct {
	JailedValidators   []JailEvent
	Slashes            []SlashEvent
	RewardsDistributed []RewardPayout
	MintedSupply       Coin
	ValidTransactions  []string
	ValidatorUpdates   []ValidatorUpdate
}

// JailEvent records a validator being deselected and jailed.
type JailEvent struct {
	Address   Address
	Kind      PunishmentKind
	JailUntil uint64
}

// SlashEvent records the coin amount actually deducted from an account by a
// punishment's execution.
type SlashEvent struct {
	Address Address
	Kind    PunishmentKind
	Amount  Coin
}
