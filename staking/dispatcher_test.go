// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

import (
	"context"
	"errors"
	"testing"

	"github.com/dijets-labs/stakechain/vms/components/utxo"
)

// fakeOracle is a test Oracle stub: it reports a fixed fee (or rejects
// outright) regardless of the inputs/outputs presented.
type fakeOracle struct {
	fee    uint64
	reject bool
}

func (o *fakeOracle) Validate(_ context.Context, _ []*utxo.TransferableInput, _ []*utxo.TransferableOutput) (uint64, error) {
	if o.reject {
		return 0, utxo.ErrRejected
	}
	return o.fee, nil
}

func newTestDispatcher(oracle utxo.Oracle) (*Dispatcher, *Store) {
	store := NewMemStore(nil)
	return NewDispatcher(store, oracle, baseParams(), nil, nil), store
}

func TestDispatcherDepositCreditsBondedAndFee(t *testing.T) {
	d, store := newTestDispatcher(&fakeOracle{fee: 10})
	tx := &DepositTx{
		To:    addrN(1),
		Nonce: 0,
		Ins:   []*utxo.TransferableInput{{In: &utxo.TestInput{Val: 1_000}}},
		Outs:  nil,
	}
	fee, err := d.Apply(context.Background(), BufferConsensus, tx, Signature{}, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fee != 10 {
		t.Fatalf("expected a fee of 10, got %d", fee)
	}
	acc := store.Get(BufferConsensus, addrN(1))
	if acc.Bonded != 990 {
		t.Fatalf("expected 990 bonded (1000 in - 10 fee), got %d", acc.Bonded)
	}
}

func TestDispatcherDepositRejectedByOracleLeavesStateUntouched(t *testing.T) {
	d, store := newTestDispatcher(&fakeOracle{reject: true})
	tx := &DepositTx{To: addrN(1), Nonce: 0, Ins: []*utxo.TransferableInput{{In: &utxo.TestInput{Val: 1_000}}}}
	_, err := d.Apply(context.Background(), BufferConsensus, tx, Signature{}, 100)
	if !errors.Is(err, ErrFeeCalculation) {
		t.Fatalf("expected ErrFeeCalculation, got %v", err)
	}
	if acc := store.Get(BufferConsensus, addrN(1)); acc.Bonded != 0 {
		t.Fatal("a rejected deposit must not mutate the account")
	}
}

func TestDispatcherNonceMismatchRejectsUnbond(t *testing.T) {
	d, store := newTestDispatcher(&fakeOracle{})
	acc := NewAccount(addrN(1))
	acc.Bonded = 1_000
	acc.Nonce = 5
	store.Set(BufferConsensus, acc)

	tx := &UnbondTx{From: addrN(1), Nonce: 0, Amount: 100}
	_, err := d.Apply(context.Background(), BufferConsensus, tx, Signature{}, 100)
	if !errors.Is(err, ErrNonceMismatch) {
		t.Fatalf("expected ErrNonceMismatch, got %v", err)
	}
}

func TestDispatcherUnbondAdvancesNonceAndStartsUnbondingClock(t *testing.T) {
	d, store := newTestDispatcher(&fakeOracle{})
	acc := NewAccount(addrN(1))
	acc.Bonded = 1_000
	store.Set(BufferConsensus, acc)

	tx := &UnbondTx{From: addrN(1), Nonce: 0, Amount: 400}
	if _, err := d.Apply(context.Background(), BufferConsensus, tx, Signature{}, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := store.Get(BufferConsensus, addrN(1))
	if got.Bonded != 600 || got.Unbonded != 400 {
		t.Fatalf("unexpected balances after unbond: bonded=%d unbonded=%d", got.Bonded, got.Unbonded)
	}
	if got.Nonce != 1 {
		t.Fatal("expected the nonce to advance exactly once")
	}
	if got.UnbondedAt != 100+d.params.UnbondingPeriod {
		t.Fatal("expected UnbondedAt to be set to now + the unbonding period")
	}
}

func TestDispatcherWithdrawRequiresMaturedUnbond(t *testing.T) {
	d, store := newTestDispatcher(&fakeOracle{fee: 0})
	acc := NewAccount(addrN(1))
	acc.Unbonded = 100
	acc.UnbondedAt = 100 + d.params.UnbondingPeriod
	store.Set(BufferConsensus, acc)

	tx := &WithdrawTx{From: addrN(1), Nonce: 0, Outs: []*utxo.TransferableOutput{{Out: &utxo.TestOutput{Val: 100}}}}
	_, err := d.Apply(context.Background(), BufferConsensus, tx, Signature{}, 100+d.params.UnbondingPeriod-1)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance before maturity, got %v", err)
	}

	_, err = d.Apply(context.Background(), BufferConsensus, tx, Signature{}, 100+d.params.UnbondingPeriod)
	if err != nil {
		t.Fatalf("unexpected error once matured: %v", err)
	}
	got := store.Get(BufferConsensus, addrN(1))
	if got.Unbonded != 0 || got.UnbondedAt != 0 {
		t.Fatal("expected withdrawal to zero the unbonded balance and clear the clock")
	}
}

func TestDispatcherNodeJoinRejectsDuplicateKeyAcrossAccounts(t *testing.T) {
	d, store := newTestDispatcher(&fakeOracle{})
	owner := NewAccount(addrN(1))
	owner.Bonded = d.params.MinimalStake
	owner.Validator = &ValidatorBinding{ConsensusKey: keyN(9), Liveness: NewLivenessWindow(10), Active: true}
	store.Set(BufferConsensus, owner)

	other := NewAccount(addrN(2))
	other.Bonded = d.params.MinimalStake
	store.Set(BufferConsensus, other)

	tx := &NodeJoinTx{From: addrN(2), Nonce: 0, ConsensusKey: keyN(9)}
	_, err := d.Apply(context.Background(), BufferConsensus, tx, Signature{}, 100)
	if !errors.Is(err, ErrDuplicateValidatorKey) {
		t.Fatalf("expected ErrDuplicateValidatorKey, got %v", err)
	}
}

func TestDispatcherNodeJoinRejectsBelowMinimumStake(t *testing.T) {
	d, store := newTestDispatcher(&fakeOracle{})
	acc := NewAccount(addrN(1))
	acc.Bonded = d.params.MinimalStake - 1
	store.Set(BufferConsensus, acc)

	tx := &NodeJoinTx{From: addrN(1), Nonce: 0, ConsensusKey: keyN(1)}
	_, err := d.Apply(context.Background(), BufferConsensus, tx, Signature{}, 100)
	if !errors.Is(err, ErrBelowMinimumStake) {
		t.Fatalf("expected ErrBelowMinimumStake, got %v", err)
	}
}

func TestDispatcherNodeJoinRejectsUsedKeyReuse(t *testing.T) {
	d, store := newTestDispatcher(&fakeOracle{})
	acc := NewAccount(addrN(1))
	acc.Bonded = d.params.MinimalStake
	acc.Validator = &ValidatorBinding{ConsensusKey: keyN(0), Liveness: NewLivenessWindow(10), Active: true}
	store.Set(BufferConsensus, acc)

	// rotate a few times, then attempt to rotate back onto a key that is
	// still present in the used-key history - rejected as ErrUsedValidatorKeyFull.
	for i := byte(1); i <= 3; i++ {
		tx := &NodeJoinTx{From: addrN(1), Nonce: uint64(i - 1), ConsensusKey: keyN(i)}
		if _, err := d.Apply(context.Background(), BufferConsensus, tx, Signature{}, 100); err != nil {
			t.Fatalf("unexpected error rotating to key %d: %v", i, err)
		}
	}

	reuse := &NodeJoinTx{From: addrN(1), Nonce: 3, ConsensusKey: keyN(1)}
	_, err := d.Apply(context.Background(), BufferConsensus, reuse, Signature{}, 100)
	if !errors.Is(err, ErrUsedValidatorKeyFull) {
		t.Fatalf("expected ErrUsedValidatorKeyFull, got %v", err)
	}
}

func TestDispatcherUnjailRejectsBeforeMaturity(t *testing.T) {
	d, store := newTestDispatcher(&fakeOracle{})
	acc := NewAccount(addrN(1))
	acc.Validator = &ValidatorBinding{ConsensusKey: keyN(1), Liveness: NewLivenessWindow(10), Active: false}
	acc.Punishment = &PunishmentRecord{JailUntil: 1_000}
	store.Set(BufferConsensus, acc)

	tx := &UnjailTx{From: addrN(1), Nonce: 0}
	_, err := d.Apply(context.Background(), BufferConsensus, tx, Signature{}, 500)
	if !errors.Is(err, ErrJailTimeNotExpired) {
		t.Fatalf("expected ErrJailTimeNotExpired, got %v", err)
	}
}

func TestDispatcherUnjailClearsJailAfterMaturity(t *testing.T) {
	d, store := newTestDispatcher(&fakeOracle{})
	acc := NewAccount(addrN(1))
	acc.Validator = &ValidatorBinding{ConsensusKey: keyN(1), Liveness: NewLivenessWindow(10), Active: false}
	acc.Punishment = &PunishmentRecord{JailUntil: 1_000}
	store.Set(BufferConsensus, acc)

	tx := &UnjailTx{From: addrN(1), Nonce: 0}
	if _, err := d.Apply(context.Background(), BufferConsensus, tx, Signature{}, 1_000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := store.Get(BufferConsensus, addrN(1))
	if got.Punishment != nil || !got.Validator.Active {
		t.Fatal("expected Unjail to clear the punishment record and reactivate the validator")
	}
}
