// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package genesis is the top-level convenience layer between an on-disk
// genesis file and the staking package's InitChain: it owns the wire
// (JSON) representation of a genesis document and the conversion of it
// into a staking.GenesisDoc. Parsing the wire format is the only thing
// this package does - validation and state construction belong to
// staking.ValidateGenesis/BuildGenesisState, not here.
package genesis

import (
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/dijets-labs/stakechain/staking"
	stakingjson "github.com/dijets-labs/stakechain/utils/json"
)

// NetworkID distinguishes the canned genesis presets Config exposes via
// GetConfig, mirroring the teacher's per-network genesis selection.
type NetworkID uint32

const (
	// LocalNetworkID is the fast-parameter preset (no council nodes) used for
	// local development and integration tests.
	LocalNetworkID NetworkID = 1
)

// Allocation is the wire form of a staking.GenesisAllocation: a
// base58-check staking address, a base-unit coin amount, and an account
// type tag ("eoa" or "contract").
type Allocation struct {
	Address string             `json:"address"`
	Amount  stakingjson.Uint64 `json:"amount"`
	Type    string             `json:"type"`
}

// CouncilNode is the wire form of a staking.GenesisCouncilNode.
type CouncilNode struct {
	Address      string `json:"address"`
	ConsensusKey string `json:"consensusKey"`
}

// NetworkParams is the wire form of staking.Params.
type NetworkParams struct {
	MinimalStake         stakingjson.Uint64 `json:"minimalStake"`
	MaxValidators        stakingjson.Uint32 `json:"maxValidators"`
	PowerDenom           stakingjson.Uint64 `json:"powerDenom"`
	LivenessWindowSize   stakingjson.Uint32 `json:"livenessWindowSize"`
	MissedBlockThreshold stakingjson.Uint32 `json:"missedBlockThreshold"`
	UnbondingPeriod      stakingjson.Uint64 `json:"unbondingPeriod"`
	RewardPeriod         stakingjson.Uint64 `json:"rewardPeriod"`
	ExpansionCapBP       stakingjson.Uint64 `json:"expansionCapBp"`
	JailDuration         stakingjson.Uint64 `json:"jailDuration"`
	ByzantineSlashBP     stakingjson.Uint64 `json:"byzantineSlashBp"`
	LivenessSlashBP      stakingjson.Uint64 `json:"livenessSlashBp"`
}

// RewardConfig is the wire form of staking.RewardConfig.
type RewardConfig struct {
	Period         stakingjson.Uint64 `json:"period"`
	ExpansionCapBP stakingjson.Uint64 `json:"expansionCapBp"`
}

// Config is the full on-disk genesis document: everything InitChain needs,
// in a form a human can write and a JSON decoder can parse.
type Config struct {
	ChainID      string             `json:"chainId"`
	Time         stakingjson.Uint64 `json:"time"`
	Distribution []Allocation       `json:"distribution"`
	Params       NetworkParams      `json:"params"`
	Reward       RewardConfig       `json:"reward"`
	CouncilNodes []CouncilNode      `json:"councilNodes"`
}

// Parse decodes a JSON genesis document from [raw].
func Parse(raw []byte) (*Config, error) {
	cfg := &Config{}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("genesis: parse: %w", err)
	}
	return cfg, nil
}

// ToGenesisDoc converts the wire Config into the staking.GenesisDoc
// InitChain consumes, parsing every base58-check address and consensus key.
// It does not validate cross-field invariants (supply sum, duplicate
// addresses, council stake minimums) - that's staking.ValidateGenesis's job,
// run as part of BuildGenesisState.
func (c *Config) ToGenesisDoc() (*staking.GenesisDoc, error) {
	doc := &staking.GenesisDoc{
		ChainID: c.ChainID,
		Time:    uint64(c.Time),
		Params: staking.Params{
			MinimalStake:         staking.Coin(c.Params.MinimalStake),
			MaxValidators:        int(c.Params.MaxValidators),
			PowerDenom:           uint64(c.Params.PowerDenom),
			LivenessWindowSize:   uint32(c.Params.LivenessWindowSize),
			MissedBlockThreshold: uint32(c.Params.MissedBlockThreshold),
			UnbondingPeriod:      uint64(c.Params.UnbondingPeriod),
			RewardPeriod:         uint64(c.Params.RewardPeriod),
			ExpansionCapBP:       uint64(c.Params.ExpansionCapBP),
			JailDuration:         uint64(c.Params.JailDuration),
			ByzantineSlashBP:     uint64(c.Params.ByzantineSlashBP),
			LivenessSlashBP:      uint64(c.Params.LivenessSlashBP),
		},
		RewardConfig: staking.RewardConfig{
			Period:         uint64(c.Reward.Period),
			ExpansionCapBP: uint64(c.Reward.ExpansionCapBP),
		},
	}

	for _, a := range c.Distribution {
		addr, err := staking.ParseAddress(a.Address)
		if err != nil {
			return nil, fmt.Errorf("genesis: allocation %s: %w", a.Address, err)
		}
		kind, err := parseAccountType(a.Type)
		if err != nil {
			return nil, fmt.Errorf("genesis: allocation %s: %w", a.Address, err)
		}
		doc.Distribution = append(doc.Distribution, staking.GenesisAllocation{
			Address: addr,
			Amount:  staking.Coin(a.Amount),
			Type:    kind,
		})
	}

	for _, n := range c.CouncilNodes {
		addr, err := staking.ParseAddress(n.Address)
		if err != nil {
			return nil, fmt.Errorf("genesis: council node %s: %w", n.Address, err)
		}
		key, err := parseValidatorKey(n.ConsensusKey)
		if err != nil {
			return nil, fmt.Errorf("genesis: council node %s: %w", n.Address, err)
		}
		doc.CouncilNodes = append(doc.CouncilNodes, staking.GenesisCouncilNode{
			Address:      addr,
			ConsensusKey: key,
		})
	}

	return doc, nil
}

func parseAccountType(s string) (staking.GenesisAccountType, error) {
	switch s {
	case "", "eoa", "externally_owned":
		return staking.GenesisExternallyOwned, nil
	case "contract", "treasury":
		return staking.GenesisContract, nil
	default:
		return 0, fmt.Errorf("unknown genesis account type %q", s)
	}
}

func parseValidatorKey(s string) (staking.ValidatorKey, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return staking.ValidatorKey{}, err
	}
	return staking.ValidatorKeyFromBytes(raw)
}

// Build parses [raw] and converts it straight into a staking.GenesisDoc,
// the form staking.Driver.InitChain takes.
func Build(raw []byte) (*staking.GenesisDoc, error) {
	cfg, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return cfg.ToGenesisDoc()
}

// GetConfig returns the canned genesis preset for [networkID]. Only
// LocalNetworkID is defined today; a production deployment supplies its own
// genesis file through Parse/Build instead.
func GetConfig(networkID NetworkID) (*Config, error) {
	switch networkID {
	case LocalNetworkID:
		return localConfig(), nil
	default:
		return nil, fmt.Errorf("genesis: no canned config for network %d", networkID)
	}
}

// localConfig is a fast-parameter genesis with no council nodes, suitable for
// local development: a 60 second unbonding period and a 300 second reward
// period instead of the multi-day values a production network would use.
// Its entire supply is allocated to a single treasury (contract-type, hence
// never itself a spendable account) so tests can fund specific addresses by
// editing the returned Config before calling ToGenesisDoc.
func localConfig() *Config {
	treasury := staking.AddressString(staking.Address{})
	return &Config{
		ChainID: "stakechain-local",
		Time:    0,
		Distribution: []Allocation{
			{Address: treasury, Amount: stakingjson.Uint64(staking.MaxCoin), Type: "contract"},
		},
		Params: NetworkParams{
			MinimalStake:         stakingjson.Uint64(1_000 * staking.CoinDecimals),
			MaxValidators:        4,
			PowerDenom:           1_000,
			LivenessWindowSize:   100,
			MissedBlockThreshold: 50,
			UnbondingPeriod:      60,
			RewardPeriod:         300,
			ExpansionCapBP:       50,
			JailDuration:         300,
			ByzantineSlashBP:     5_000,
			LivenessSlashBP:      500,
		},
		Reward: RewardConfig{Period: 300, ExpansionCapBP: 50},
	}
}
