// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

import (
	"fmt"

	"github.com/dijets-labs/stakechain/ids"
)

// SlashBasisPointsDenom is the denominator basis-point ratios are expressed
// against (10000 == 100%).
const SlashBasisPointsDenom = 10_000

// Punishment is a queued, not-yet-executed slash against one account. At
// most one is ever outstanding per address - a later event only replaces an
// earlier one when its base ratio is larger, so a validator can't be
// slashed twice for the same window of misbehavior.
type Punishment struct {
	Address        Address
	Kind           PunishmentKind
	BaseRatioBP    uint64
	JailDuration   uint64
	EvidenceHeight uint64
}

// Queue accumulates the punishments found during a block's BeginBlock (missed
// liveness and byzantine evidence) and, still within that BeginBlock, hands
// them out for jailing, amplifying each base ratio by how much of the
// total voting power was punished this block before applying it - spec.md
// §4.4's deferred-execution punishment pipeline, adapted from the original
// implementation's jailing/slashing accumulator
// (chain-abci/src/staking/mod.rs) and the teacher's evidence-handling shape.
type Queue struct {
	pending  map[Address]*Punishment
	evidence ids.EvidenceSet
}

// NewQueue returns an empty punishment queue.
func NewQueue() *Queue {
	return &Queue{pending: make(map[Address]*Punishment), evidence: ids.NewEvidenceSet()}
}

// EvidenceKey builds the idempotence key for a byzantine-evidence report:
// (validator key, height, index). Reporting the same triple twice in the
// same or a later block must not double-punish.
func EvidenceKey(key ValidatorKey, height uint64, index uint32) ids.ID {
	return ids.Keccak256(key.Bytes(), uint64Bytes(height), uint32Bytes(index))
}

func uint64Bytes(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return b
}

func uint32Bytes(v uint32) []byte {
	b := make([]byte, 4)
	for i := 0; i < 4; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return b
}

// SeenEvidence reports whether the (key, height, index) triple has already
// been enqueued, without marking it seen.
func (q *Queue) SeenEvidence(key ValidatorKey, height uint64, index uint32) bool {
	return q.evidence.Contains(EvidenceKey(key, height, index))
}

// Enqueue stages a punishment against [addr]. If evidenceHeight/index has
// already been recorded for byzantine kinds, the call is a no-op (returns
// false). Otherwise it replaces any existing pending punishment for the
// address only if the new base ratio is larger.
func (q *Queue) Enqueue(addr Address, kind PunishmentKind, key ValidatorKey, height uint64, index uint32, baseRatioBP, jailDuration uint64) bool {
	if kind == PunishmentByzantine {
		evKey := EvidenceKey(key, height, index)
		if !q.evidence.Add(evKey) {
			return false
		}
	}
	existing, ok := q.pending[addr]
	if ok && existing.BaseRatioBP >= baseRatioBP {
		return false
	}
	q.pending[addr] = &Punishment{
		Address:        addr,
		Kind:           kind,
		BaseRatioBP:    baseRatioBP,
		JailDuration:   jailDuration,
		EvidenceHeight: height,
	}
	return true
}

// Len reports the number of punishments currently queued.
func (q *Queue) Len() int { return len(q.pending) }

// PendingAddresses returns every address currently staged, in no
// particular order, without draining the queue - used to compute the
// punished-power fraction Amplify needs before Drain is called.
func (q *Queue) PendingAddresses() []Address {
	addrs := make([]Address, 0, len(q.pending))
	for addr := range q.pending {
		addrs = append(addrs, addr)
	}
	return addrs
}

// Amplify scales every queued punishment's ratio by the square of the
// fraction of total voting power being punished this block, capped at 100%:
// amplification = min(1, (punishedPower/totalPower)^2). A single validator
// misbehaving barely moves the ratio; a large fraction of the validator set
// misbehaving at once pushes every one of them toward a full slash.
func (q *Queue) Amplify(punishedPower, totalPower uint64) {
	if totalPower == 0 || len(q.pending) == 0 {
		return
	}
	// amplificationBP = min(10000, (punishedPower^2 * 10000) / totalPower^2)
	num := punishedPower * punishedPower
	den := totalPower * totalPower
	var ampBP uint64 = SlashBasisPointsDenom
	if den != 0 && num < den {
		ampBP = (num * SlashBasisPointsDenom) / den
	}
	for _, p := range q.pending {
		p.BaseRatioBP = (p.BaseRatioBP * ampBP) / SlashBasisPointsDenom
	}
}

// Drain returns every queued punishment in deterministic (address
// ascending) order and empties the queue. The evidence set is retained
// across Drain calls: it exists to prevent the *same* byzantine report from
// ever being double-counted, not just within one block.
func (q *Queue) Drain() []*Punishment {
	out := make([]*Punishment, 0, len(q.pending))
	for _, p := range q.pending {
		out = append(out, p)
	}
	sortPunishments(out)
	q.pending = make(map[Address]*Punishment)
	return out
}

func sortPunishments(p []*Punishment) {
	for i := 1; i < len(p); i++ {
		for j := i; j > 0 && p[j].Address.Less(p[j-1].Address); j-- {
			p[j], p[j-1] = p[j-1], p[j]
		}
	}
}

// Jail immediately removes [acc] from validator-schedule eligibility and
// installs a not-yet-executed PunishmentRecord carrying the slash ratio to
// apply once the deferred wait period elapses - spec.md §4.5's "the account
// is jailed immediately ... but the balance deduction is deferred". The
// jail persists (Validator.Active stays false) until an explicit Unjail
// transaction clears the record; ExecuteDueSlash only ever deducts the
// balance, it never lifts the jail.
func (p *Punishment) Jail(acc *Account, now uint64) {
	if acc.Validator != nil {
		acc.Validator.Active = false
		acc.Validator.InactiveSince = now
	}
	acc.Punishment = &PunishmentRecord{
		Kind:           p.Kind,
		SlashRatioBP:   p.BaseRatioBP,
		JailUntil:      now + p.JailDuration,
		EvidenceHeight: p.EvidenceHeight,
	}
}

// ExecuteDueSlash deducts [acc]'s pending punishment's slash ratio from
// bonded stake and, separately, the same ratio from unbonded stake (each
// bucket is slashed by its own share), the moment its wait period has
// elapsed (now >= JailUntil). It is a no-op - returning a zero amount and a
// nil error - when there is nothing pending or the record has already been
// executed or hasn't matured yet, so callers can invoke it unconditionally
// once per account per begin-block. The record itself (and hence the jail)
// is left in place; only Unjail ever clears it.
func ExecuteDueSlash(acc *Account, now uint64) (Coin, error) {
	p := acc.Punishment
	if p == nil || p.Executed || now < p.JailUntil {
		return 0, nil
	}

	bondedSlash := acc.Bonded.MulRatio(p.SlashRatioBP, SlashBasisPointsDenom)
	unbondedSlash := acc.Unbonded.MulRatio(p.SlashRatioBP, SlashBasisPointsDenom)

	newBonded, err := SubCoin(acc.Bonded, bondedSlash)
	if err != nil {
		return 0, fmt.Errorf("staking: slash bonded: %w", err)
	}
	newUnbonded, err := SubCoin(acc.Unbonded, unbondedSlash)
	if err != nil {
		return 0, fmt.Errorf("staking: slash unbonded: %w", err)
	}
	acc.Bonded = newBonded
	acc.Unbonded = newUnbonded

	total, err := AddCoin(bondedSlash, unbondedSlash)
	if err != nil {
		return 0, err
	}
	p.Executed = true
	return total, nil
}
