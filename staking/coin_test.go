// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

import "testing"

func TestAddCoinOverflow(t *testing.T) {
	_, err := AddCoin(Coin(MaxCoin), 1)
	if err == nil {
		t.Fatal("expected AddCoin past MaxCoin to fail")
	}
}

func TestAddCoinOK(t *testing.T) {
	sum, err := AddCoin(Coin(1_000), Coin(2_000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum != 3_000 {
		t.Fatalf("expected 3000, got %d", sum)
	}
}

func TestSubCoinNegative(t *testing.T) {
	_, err := SubCoin(Coin(5), Coin(10))
	if err == nil {
		t.Fatal("expected SubCoin underflow to fail")
	}
}

func TestSumCoinsShortCircuits(t *testing.T) {
	_, err := SumCoins(Coin(MaxCoin), Coin(MaxCoin))
	if err == nil {
		t.Fatal("expected SumCoins to propagate the overflow")
	}
}

func TestCoinBytesRoundTrip(t *testing.T) {
	c := Coin(123_456_789)
	b := c.Bytes()
	got, err := CoinFromBytes(b[:])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != c {
		t.Fatalf("round trip mismatch: want %d, got %d", c, got)
	}
}

func TestCoinMulRatio(t *testing.T) {
	c := Coin(10_000)
	if got := c.MulRatio(2_500, 10_000); got != 2_500 {
		t.Fatalf("expected 2500, got %d", got)
	}
	if got := c.MulRatio(1, 0); got != 0 {
		t.Fatalf("expected zero denominator to floor to zero, got %d", got)
	}
}

func TestParseCoinRejectsOutOfBound(t *testing.T) {
	if _, err := ParseCoin("99999999999999999999999999"); err == nil {
		t.Fatal("expected ParseCoin to reject an unparseable magnitude")
	}
}
