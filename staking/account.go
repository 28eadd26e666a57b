// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

import (
	"github.com/dijets-labs/stakechain/vms/components/verify"
)

// MaxUsedValidatorKeys bounds the per-account history of consensus keys the
// account has bound to, oldest evicted first.
const MaxUsedValidatorKeys = 10

// ValidatorBinding is the validator-facing half of a StakedAccount: the
// consensus key it has registered, the keys it has rotated through, and its
// liveness and selection bookkeeping.
type ValidatorBinding struct {
	ConsensusKey  ValidatorKey    `serialize:"true" json:"consensusKey"`
	UsedKeys      []ValidatorKey  `serialize:"true" json:"usedKeys"`
	Liveness      *LivenessWindow `serialize:"true" json:"liveness"`
	InactiveSince uint64          `serialize:"true" json:"inactiveSince"`
	Active        bool            `serialize:"true" json:"active"`
}

// Clone deep-copies the binding.
func (b *ValidatorBinding) Clone() *ValidatorBinding {
	if b == nil {
		return nil
	}
	used := make([]ValidatorKey, len(b.UsedKeys))
	copy(used, b.UsedKeys)
	return &ValidatorBinding{
		ConsensusKey:  b.ConsensusKey,
		UsedKeys:      used,
		Liveness:      b.Liveness.Clone(),
		InactiveSince: b.InactiveSince,
		Active:        b.Active,
	}
}

// HasUsed reports whether [key] appears in the binding's used-key history,
// including its current key.
func (b *ValidatorBinding) HasUsed(key ValidatorKey) bool {
	if b.ConsensusKey == key {
		return true
	}
	for _, used := range b.UsedKeys {
		if used == key {
			return true
		}
	}
	return false
}

// Rotate retires the current consensus key into the used-key history and
// installs [newKey], evicting the oldest used key once the cap is reached.
// A rotation onto a brand-new key resets the liveness window, per spec.md
// §4.3; a rejoin on the *same* key preserves it.
func (b *ValidatorBinding) Rotate(newKey ValidatorKey, windowSize uint32) {
	if newKey == b.ConsensusKey {
		return
	}
	if !b.ConsensusKey.IsZero() {
		b.UsedKeys = append(b.UsedKeys, b.ConsensusKey)
		if len(b.UsedKeys) > MaxUsedValidatorKeys {
			b.UsedKeys = b.UsedKeys[len(b.UsedKeys)-MaxUsedValidatorKeys:]
		}
	}
	b.ConsensusKey = newKey
	b.Liveness = NewLivenessWindow(windowSize)
}

// PunishmentRecord is a deferred, not-yet-executed slash, as enqueued by the
// punishment pipeline against a StakedAccount. An account holds at most one
// record. Within one block the punishment queue keeps only the largest-ratio
// event per account; a punishment jailed in a later block replaces the
// existing record outright, whatever its ratio or execution state.
type PunishmentRecord struct {
	Kind           PunishmentKind `serialize:"true" json:"kind"`
	SlashRatioBP   uint64         `serialize:"true" json:"slashRatioBP"` // basis points, 0-10000
	JailUntil      uint64         `serialize:"true" json:"jailUntil"`    // == slash_at, per spec.md §4.5
	EvidenceHeight uint64         `serialize:"true" json:"evidenceHeight"`
	// Executed marks that the deferred balance deduction has already run.
	// Jailing (Validator.Active == false) persists regardless - only an
	// explicit Unjail transaction clears the record.
	Executed bool `serialize:"true" json:"executed"`
}

// PunishmentKind distinguishes why an account is being punished.
type PunishmentKind uint8

const (
	// PunishmentNonLive marks a slash triggered by the liveness window
	// crossing the missed-block threshold.
	PunishmentNonLive PunishmentKind = iota
	// PunishmentByzantine marks a slash triggered by reported byzantine
	// evidence (double-signing, light-client attack, etc.).
	PunishmentByzantine
)

// Account is the full per-depositor staking record spec.md §3 describes:
// balances, nonce, optional validator binding, and any punishment queued
// against it.
type Account struct {
	Address    Address           `serialize:"true" json:"address"`
	Nonce      uint64            `serialize:"true" json:"nonce"`
	Bonded     Coin              `serialize:"true" json:"bonded"`
	Unbonded   Coin              `serialize:"true" json:"unbonded"`
	UnbondedAt uint64            `serialize:"true" json:"unbondedAt"`
	Validator  *ValidatorBinding `serialize:"true" json:"validator,omitempty"`
	Punishment *PunishmentRecord `serialize:"true" json:"punishment,omitempty"`
}

// NewAccount returns a freshly-initialized, unbonded account.
func NewAccount(addr Address) *Account {
	return &Account{Address: addr}
}

// Clone deep-copies the account, so buffered store writes never alias a
// committed account's pointers.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	clone := *a
	clone.Validator = a.Validator.Clone()
	if a.Punishment != nil {
		p := *a.Punishment
		clone.Punishment = &p
	}
	return &clone
}

// IsValidator reports whether the account has ever bound a consensus key.
func (a *Account) IsValidator() bool {
	return a.Validator != nil
}

// IsJailed reports whether the account is currently jailed: per spec.md §3,
// the *presence* of a punishment record gates rejection of staking
// transactions, not whether its jail term has merely elapsed - only an
// explicit, successful Unjail transaction clears it. [now] is accepted for
// symmetry with the other precondition checks but unused here; unjailing is
// never automatic.
func (a *Account) IsJailed(_ uint64) bool {
	return a.Validator != nil && !a.Validator.Active && a.Punishment != nil
}

func (a *Account) jailUntil() uint64 {
	if a.Punishment == nil {
		return 0
	}
	return a.Punishment.JailUntil
}

// Verify implements verify.Verifiable: structural invariants that must hold
// regardless of dispatcher state, independent of any particular
// transaction's semantic checks.
func (a *Account) Verify() error {
	if a.Bonded > Coin(MaxCoin) || a.Unbonded > Coin(MaxCoin) {
		return ErrInvalidAccountState
	}
	if a.Validator != nil && len(a.Validator.UsedKeys) > MaxUsedValidatorKeys {
		return ErrInvalidAccountState
	}
	return nil
}

var _ verify.Verifiable = (*Account)(nil)
