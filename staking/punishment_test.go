// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

import "testing"

func TestQueueEvidenceIdempotence(t *testing.T) {
	q := NewQueue()
	key := keyN(1)
	if !q.Enqueue(addrN(1), PunishmentByzantine, key, 10, 0, 5_000, 100) {
		t.Fatal("first report of evidence should enqueue")
	}
	if q.Enqueue(addrN(1), PunishmentByzantine, key, 10, 0, 9_000, 100) {
		t.Fatal("repeating the same (key, height, index) must not double-enqueue")
	}
	if q.Len() != 1 {
		t.Fatalf("expected exactly one queued punishment, got %d", q.Len())
	}
}

func TestQueueEnqueueOnlyReplacesLarger(t *testing.T) {
	q := NewQueue()
	q.Enqueue(addrN(1), PunishmentNonLive, ValidatorKey{}, 1, 0, 1_000, 100)
	replaced := q.Enqueue(addrN(1), PunishmentNonLive, ValidatorKey{}, 2, 0, 500, 100)
	if replaced {
		t.Fatal("a smaller ratio must not replace a pending, larger one")
	}
	replaced = q.Enqueue(addrN(1), PunishmentNonLive, ValidatorKey{}, 3, 0, 2_000, 100)
	if !replaced {
		t.Fatal("a larger ratio should replace the pending one")
	}
}

func TestQueueAmplifyScalesBySquaredFraction(t *testing.T) {
	q := NewQueue()
	q.Enqueue(addrN(1), PunishmentByzantine, keyN(1), 1, 0, 10_000, 100)
	// punished power is 10% of total: amplification = (0.1)^2 = 1%.
	q.Amplify(10, 100)
	drained := q.Drain()
	if len(drained) != 1 {
		t.Fatalf("expected one drained punishment, got %d", len(drained))
	}
	if drained[0].BaseRatioBP != 100 {
		t.Fatalf("expected amplified ratio of 100bp, got %d", drained[0].BaseRatioBP)
	}
}

func TestQueueAmplifyCapsAtFullRatio(t *testing.T) {
	q := NewQueue()
	q.Enqueue(addrN(1), PunishmentByzantine, keyN(1), 1, 0, 5_000, 100)
	q.Amplify(100, 100)
	drained := q.Drain()
	if drained[0].BaseRatioBP != 5_000 {
		t.Fatalf("equal punished/total power should leave the ratio unscaled, got %d", drained[0].BaseRatioBP)
	}
}

func TestQueueDrainIsSortedAndEmpties(t *testing.T) {
	q := NewQueue()
	q.Enqueue(addrN(2), PunishmentNonLive, ValidatorKey{}, 1, 0, 100, 10)
	q.Enqueue(addrN(1), PunishmentNonLive, ValidatorKey{}, 1, 0, 100, 10)
	drained := q.Drain()
	if len(drained) != 2 || !drained[0].Address.Less(drained[1].Address) {
		t.Fatal("expected drained punishments ordered by address ascending")
	}
	if q.Len() != 0 {
		t.Fatal("expected the queue to be empty after Drain")
	}
}

func TestPunishmentJailDoesNotDeductBalance(t *testing.T) {
	acc := validatorAccount(1, 1_000)
	p := &Punishment{Kind: PunishmentByzantine, BaseRatioBP: 5_000, JailDuration: 100}
	p.Jail(acc, 50)

	if acc.Validator.Active {
		t.Fatal("expected Jail to immediately deactivate the validator")
	}
	if acc.Bonded != 1_000 {
		t.Fatal("Jail must never itself deduct balance")
	}
	if !acc.IsJailed(50) {
		t.Fatal("expected IsJailed to report true immediately after Jail")
	}
	if acc.Punishment.JailUntil != 150 {
		t.Fatalf("expected JailUntil = now + duration = 150, got %d", acc.Punishment.JailUntil)
	}
}

func TestExecuteDueSlashDeductsOnceAtMaturity(t *testing.T) {
	acc := validatorAccount(1, 1_000)
	acc.Unbonded = 500
	p := &Punishment{Kind: PunishmentByzantine, BaseRatioBP: 5_000, JailDuration: 100}
	p.Jail(acc, 0)

	amount, err := ExecuteDueSlash(acc, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if amount != 0 {
		t.Fatal("expected ExecuteDueSlash to be a no-op before the jail term matures")
	}

	amount, err = ExecuteDueSlash(acc, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if amount != 750 {
		t.Fatalf("expected 750 (50%% of 1000 bonded + 50%% of 500 unbonded), got %d", amount)
	}
	if acc.Bonded != 500 || acc.Unbonded != 250 {
		t.Fatalf("unexpected post-slash balances: bonded=%d unbonded=%d", acc.Bonded, acc.Unbonded)
	}
	if !acc.IsJailed(100) {
		t.Fatal("executing the slash must not itself lift the jail")
	}

	amount, err = ExecuteDueSlash(acc, 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if amount != 0 {
		t.Fatal("expected ExecuteDueSlash to be idempotent once Executed")
	}
}
