// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

import "testing"

func TestRewardPoolCreditProposerAccumulatesFees(t *testing.T) {
	pool := NewRewardPool(0)
	pool.CreditProposer(addrN(1), 100)
	pool.CreditProposer(addrN(1), 50)
	pool.CreditProposer(addrN(2), 0)

	if pool.PeriodBonus != 150 {
		t.Fatalf("expected 150 accumulated fee, got %d", pool.PeriodBonus)
	}
	if pool.Credits[addrN(1)] != 2 {
		t.Fatalf("expected 2 credited blocks for proposer 1, got %d", pool.Credits[addrN(1)])
	}
}

func TestRewardPoolMaybeDistributeWaitsForPeriod(t *testing.T) {
	pool := NewRewardPool(0)
	pool.CreditProposer(addrN(1), 100)
	cfg := RewardConfig{Period: 300, ExpansionCapBP: 0}

	_, _, ok := pool.MaybeDistribute(100, cfg, 0, 0)
	if ok {
		t.Fatal("expected MaybeDistribute to be a no-op before the period elapses")
	}
}

func TestRewardPoolMaybeDistributeProportional(t *testing.T) {
	pool := NewRewardPool(0)
	pool.CreditProposer(addrN(1), 0)
	pool.CreditProposer(addrN(1), 0)
	pool.CreditProposer(addrN(1), 0)
	pool.CreditProposer(addrN(2), 0)
	pool.PeriodBonus = 400

	cfg := RewardConfig{Period: 100, ExpansionCapBP: 0}
	payouts, minted, ok := pool.MaybeDistribute(100, cfg, 1_000_000, 0)
	if !ok {
		t.Fatal("expected distribution to run once the period has elapsed")
	}
	if minted != 0 {
		t.Fatalf("expected no monetary expansion with a zero cap, got %d", minted)
	}

	byAddr := make(map[Address]Coin, len(payouts))
	for _, p := range payouts {
		byAddr[p.Address] = p.Amount
	}
	if byAddr[addrN(1)] != 300 {
		t.Fatalf("expected proposer 1 (3/4 credits) to receive 300, got %d", byAddr[addrN(1)])
	}
	if byAddr[addrN(2)] != 100 {
		t.Fatalf("expected proposer 2 (1/4 credits) to receive 100, got %d", byAddr[addrN(2)])
	}
	if pool.PeriodBonus != 0 {
		t.Fatalf("expected the full bonus to distribute with no remainder, got %d", pool.PeriodBonus)
	}
	if len(pool.Credits) != 0 {
		t.Fatal("expected Credits to reset after distribution")
	}
}

func TestRewardPoolMaybeDistributeCarriesRemainderForward(t *testing.T) {
	pool := NewRewardPool(0)
	pool.CreditProposer(addrN(1), 0)
	pool.CreditProposer(addrN(2), 0)
	pool.CreditProposer(addrN(3), 0)
	pool.PeriodBonus = 10 // 10 / 3 proposers leaves a remainder

	cfg := RewardConfig{Period: 50, ExpansionCapBP: 0}
	_, _, ok := pool.MaybeDistribute(50, cfg, 0, 0)
	if !ok {
		t.Fatal("expected distribution to run")
	}
	if pool.PeriodBonus == 0 {
		t.Fatal("expected the integer-division remainder to carry forward, not burn")
	}
}

func TestRewardPoolMonetaryExpansionCapsAtRemainingSupply(t *testing.T) {
	pool := NewRewardPool(0)
	pool.CreditProposer(addrN(1), 0)
	cfg := RewardConfig{Period: 10, ExpansionCapBP: 10_000} // 100% of the remaining supply

	nearCap := Coin(MaxCoin - 1_000)
	_, minted, ok := pool.MaybeDistribute(10, cfg, nearCap, 0)
	if !ok {
		t.Fatal("expected distribution to run")
	}
	if minted != 1_000 {
		t.Fatalf("expected monetary expansion to mint exactly the remaining 1000, got %d", minted)
	}
}

func TestRewardPoolMonetaryExpansionZeroWhenSupplyExhausted(t *testing.T) {
	pool := NewRewardPool(0)
	cfg := RewardConfig{Period: 10, ExpansionCapBP: 10_000}
	_, minted, ok := pool.MaybeDistribute(10, cfg, Coin(MaxCoin), 0)
	if !ok {
		t.Fatal("expected distribution to run")
	}
	if minted != 0 {
		t.Fatalf("expected no further expansion once supply is exhausted, got %d", minted)
	}
}
