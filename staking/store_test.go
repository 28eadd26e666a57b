// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreBuffersAreIsolated(t *testing.T) {
	require := require.New(t)
	s := NewMemStore(nil)
	mempoolAcc := s.Get(BufferMempool, addrN(1))
	mempoolAcc.Bonded = 500
	s.Set(BufferMempool, mempoolAcc)

	require.Zero(s.Get(BufferConsensus, addrN(1)).Bonded, "a mempool write must not be visible through the consensus buffer")
	require.EqualValues(500, s.Get(BufferMempool, addrN(1)).Bonded, "expected the mempool write to be visible through the mempool buffer")
}

func TestStoreDiscardMempoolClearsOnly(t *testing.T) {
	require := require.New(t)
	s := NewMemStore(nil)
	acc := s.Get(BufferConsensus, addrN(1))
	acc.Bonded = 100
	s.Set(BufferConsensus, acc)
	require.NoError(s.FlushConsensus())

	mempoolAcc := s.Get(BufferMempool, addrN(2))
	mempoolAcc.Bonded = 50
	s.Set(BufferMempool, mempoolAcc)

	s.DiscardMempool()

	require.Zero(s.Get(BufferMempool, addrN(2)).Bonded, "expected DiscardMempool to clear the mempool buffer")
	require.EqualValues(100, s.Get(BufferConsensus, addrN(1)).Bonded, "expected the committed write to survive DiscardMempool")
}

func TestStoreGetReturnsIndependentClones(t *testing.T) {
	require := require.New(t)
	s := NewMemStore(nil)
	acc := s.Get(BufferConsensus, addrN(1))
	acc.Bonded = 1
	s.Set(BufferConsensus, acc)

	first := s.Get(BufferConsensus, addrN(1))
	first.Bonded = 999
	second := s.Get(BufferConsensus, addrN(1))
	require.NotEqualValues(999, second.Bonded, "mutating a Get result must not affect the store's staged state")
}

func TestStoreRootIsOrderIndependent(t *testing.T) {
	require := require.New(t)
	pool := NewRewardPool(0)
	params := baseParams()

	s1 := NewMemStore(nil)
	s1.Set(BufferConsensus, &Account{Address: addrN(1), Bonded: 10})
	s1.Set(BufferConsensus, &Account{Address: addrN(2), Bonded: 20})
	require.NoError(s1.FlushConsensus())

	s2 := NewMemStore(nil)
	s2.Set(BufferConsensus, &Account{Address: addrN(2), Bonded: 20})
	s2.Set(BufferConsensus, &Account{Address: addrN(1), Bonded: 10})
	require.NoError(s2.FlushConsensus())

	require.Equal(s1.Root(pool, params), s2.Root(pool, params), "expected the app-state root to be independent of write order")
}

func TestStoreRootChangesWithState(t *testing.T) {
	require := require.New(t)
	pool := NewRewardPool(0)
	params := baseParams()

	s := NewMemStore(nil)
	s.Set(BufferConsensus, &Account{Address: addrN(1), Bonded: 10})
	require.NoError(s.FlushConsensus())
	before := s.Root(pool, params)

	s.Set(BufferConsensus, &Account{Address: addrN(1), Bonded: 20})
	require.NoError(s.FlushConsensus())
	after := s.Root(pool, params)

	require.NotEqual(before, after, "expected the root to change when committed state changes")
}

func TestStoreLookupValidatorKey(t *testing.T) {
	require := require.New(t)
	s := NewMemStore(nil)
	s.Set(BufferConsensus, validatorAccount(1, 100))
	require.NoError(s.FlushConsensus())

	addr, found := s.LookupValidatorKey(BufferConsensus, keyN(1))
	require.True(found, "expected to find the account bound to the given consensus key")
	require.Equal(addrN(1), addr)

	_, found = s.LookupValidatorKey(BufferConsensus, keyN(99))
	require.False(found, "expected no match for an unbound consensus key")
}
