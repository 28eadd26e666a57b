// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

import "testing"

func addrN(n byte) Address {
	var a Address
	a[len(a)-1] = n
	return a
}

func keyN(n byte) ValidatorKey {
	var k ValidatorKey
	k[len(k)-1] = n
	return k
}

func validatorAccount(n byte, bonded Coin) *Account {
	acc := NewAccount(addrN(n))
	acc.Bonded = bonded
	acc.Validator = &ValidatorBinding{ConsensusKey: keyN(n), Active: true, Liveness: NewLivenessWindow(10)}
	return acc
}

func TestScheduleRecomputeOrdersByBondedThenAddress(t *testing.T) {
	s := NewSchedule(2, 1)
	accounts := []*Account{
		validatorAccount(1, 100),
		validatorAccount(2, 300),
		validatorAccount(3, 300),
	}
	updates := s.Recompute(accounts, 1, 1000)
	if len(updates) != 2 {
		t.Fatalf("expected the top 2 validators selected, got %d updates", len(updates))
	}
	// accounts 2 and 3 tie on bonded stake; address ASC breaks the tie, and
	// account 1 (lowest bonded) is excluded by the MaxValidators cap.
	if !s.IsActive(addrN(2)) || !s.IsActive(addrN(3)) {
		t.Fatal("expected the two highest-bonded validators to be active")
	}
	if s.IsActive(addrN(1)) {
		t.Fatal("expected the lowest-bonded validator to be capped out")
	}
}

func TestScheduleRecomputeDiffsAgainstPrevious(t *testing.T) {
	s := NewSchedule(5, 1)
	s.Recompute([]*Account{validatorAccount(1, 100), validatorAccount(2, 200)}, 1, 1000)

	// account 1 drops below minimal stake and should be removed with power 0;
	// account 3 joins.
	acc1 := validatorAccount(1, 0)
	acc1.Bonded = 0
	updates := s.Recompute([]*Account{acc1, validatorAccount(2, 200), validatorAccount(3, 400)}, 1, 2000)

	sawRemoval, sawAddition := false, false
	for _, u := range updates {
		if u.Key == keyN(1) && u.Power == 0 {
			sawRemoval = true
		}
		if u.Key == keyN(3) && u.Power > 0 {
			sawAddition = true
		}
	}
	if !sawRemoval {
		t.Fatal("expected a zero-power update removing validator 1")
	}
	if !sawAddition {
		t.Fatal("expected a power update adding validator 3")
	}
	// validator 2's power is unchanged, so it should not reappear in the diff.
	for _, u := range updates {
		if u.Key == keyN(2) {
			t.Fatal("unchanged validator should not appear in the diff")
		}
	}
}

func TestScheduleExcludesJailedAndBelowMinimum(t *testing.T) {
	s := NewSchedule(5, 1)
	jailed := validatorAccount(1, 500)
	jailed.Validator.Active = false
	jailed.Punishment = &PunishmentRecord{JailUntil: 9999}

	below := validatorAccount(2, 1)

	updates := s.Recompute([]*Account{jailed, below}, 100, 10)
	if len(updates) != 0 {
		t.Fatalf("expected no candidates eligible, got %d", len(updates))
	}
}
