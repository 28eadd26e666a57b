// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"strconv"

	safemath "github.com/dijets-labs/stakechain/utils/math"
)

// CoinDecimals is the number of base-unit decimals a Coin carries.
const CoinDecimals = 100_000_000

// MaxCoin is the fixed total supply, in base units. Every Coin value is
// bounded by it; addition that would exceed it, or subtraction that would go
// negative, is a CoinError.
const MaxCoin uint64 = 100_000_000_000 * CoinDecimals

// Coin is a non-negative integer amount, never exceeding MaxCoin. All
// arithmetic on it is checked - adapted from the teacher's implicit
// djtx-denominated amounts, generalized into the dedicated fixed-supply type
// spec.md's Coin calls for (itself adapted from the original chain's
// cardano-derived chain-core/src/init/coin.rs).
type Coin uint64

// CoinError is returned by Coin arithmetic and parsing.
type CoinError struct {
	msg string
}

func (e *CoinError) Error() string { return e.msg }

var (
	// ErrCoinOutOfBound is returned when a value exceeds MaxCoin.
	ErrCoinOutOfBound = &CoinError{"coin value is out of bound"}
	// ErrCoinNegative is returned when a subtraction would go negative.
	ErrCoinNegative = &CoinError{"coin arithmetic would go negative"}
	// ErrCoinParse is returned when a string does not parse as a coin amount.
	ErrCoinParse = &CoinError{"cannot parse coin amount"}
)

// ZeroCoin is the additive identity.
const ZeroCoin Coin = 0

// NewCoin constructs a Coin, bounds-checking against MaxCoin.
func NewCoin(v uint64) (Coin, error) {
	if v > MaxCoin {
		return 0, fmt.Errorf("%w: %d > %d", ErrCoinOutOfBound, v, MaxCoin)
	}
	return Coin(v), nil
}

// AddCoin returns a+b, checked against overflow and MaxCoin.
func AddCoin(a, b Coin) (Coin, error) {
	sum, err := safemath.Add64(uint64(a), uint64(b))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCoinOutOfBound, err)
	}
	return NewCoin(sum)
}

// SubCoin returns a-b, erroring if b > a.
func SubCoin(a, b Coin) (Coin, error) {
	diff, err := safemath.Sub64(uint64(a), uint64(b))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCoinNegative, err)
	}
	return Coin(diff), nil
}

// SumCoins folds AddCoin across [coins], short-circuiting on the first
// error - the Go analogue of the original chain-core's sum_coins.
func SumCoins(coins ...Coin) (Coin, error) {
	total := ZeroCoin
	var err error
	for _, c := range coins {
		total, err = AddCoin(total, c)
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}

func (c Coin) String() string {
	return fmt.Sprintf("%d.%08d", uint64(c)/CoinDecimals, uint64(c)%CoinDecimals)
}

// ParseCoin parses the base-unit integer representation produced by wire
// decoding or config files.
func ParseCoin(s string) (Coin, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCoinParse, err)
	}
	return NewCoin(v)
}

// Bytes encodes the coin as a little-endian 8-byte unsigned integer, per
// spec.md §3.
func (c Coin) Bytes() [8]byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(c))
	return b
}

// CoinFromBytes decodes the little-endian 8-byte encoding produced by Bytes.
func CoinFromBytes(b []byte) (Coin, error) {
	if len(b) != 8 {
		return 0, errors.New("coin: wrong byte length")
	}
	return NewCoin(binary.LittleEndian.Uint64(b))
}

// MulRatio scales the coin by a slash ratio (numerator/denominator, both
// basis-point style integers), flooring - used for slash and reward-share
// computation throughout the punishment and reward pipelines. The
// intermediate product routinely exceeds uint64 range (MaxCoin times a
// basis-point numerator, or a large proposer credit count), so it is
// computed in big.Int, the same widening the reward pool's monetary
// expansion curve already uses.
func (c Coin) MulRatio(numerator, denominator uint64) Coin {
	if denominator == 0 {
		return 0
	}
	product := new(big.Int).SetUint64(uint64(c))
	product.Mul(product, new(big.Int).SetUint64(numerator))
	product.Div(product, new(big.Int).SetUint64(denominator))
	if !product.IsUint64() {
		return Coin(MaxCoin)
	}
	v := product.Uint64()
	if v > MaxCoin {
		return Coin(MaxCoin)
	}
	return Coin(v)
}
