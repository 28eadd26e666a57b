// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package units names the base-unit multiples used throughout genesis
// configuration and tests, following the same naming the teacher used for
// its own denomination (KiloDjtx, MegaDjtx, ...).
package units

// Coin amounts are expressed in integer base units (8 decimals, per
// spec.md's Coin definition); these constants just name common multiples.
const (
	Unit        uint64 = 1
	KiloCoin    uint64 = 1_000 * Unit
	MegaCoin    uint64 = 1_000 * KiloCoin
	GigaCoin    uint64 = 1_000 * MegaCoin
	CoinDecimals uint64 = 100_000_000 // 8 decimals, matches Coin.one()
)
