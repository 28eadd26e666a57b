// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/hashicorp/go-hclog"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/dijets-labs/stakechain/ids"
)

const accountCacheSize = 2048

var committedKeyPrefix = []byte("acct/")

// BufferType selects which of the store's two staged-write overlays a Get
// or Set operates against, per spec.md §5's mempool-vs-consensus isolation:
// speculative CheckTx writes must never leak into the view DeliverTx sees,
// and both must be invisible until their respective flush/commit point.
type BufferType int

const (
	// BufferMempool holds writes staged while validating transactions for
	// inclusion in the mempool (CheckTx). Discarded wholesale at Commit.
	BufferMempool BufferType = iota
	// BufferConsensus holds writes staged while executing a block
	// (DeliverTx). Folded into the committed set at Commit.
	BufferConsensus
)

// Store is the staking package's content-addressed account store,
// generalized from the teacher's versiondb-style staged commit/abort
// pattern (vms/platformvm's use of a database.Database wrapped in
// memdb-backed batches) into the two independent write buffers the ABCI
// mempool/consensus split requires.
type Store struct {
	mu  sync.RWMutex
	log hclog.Logger

	db    *leveldb.DB // nil for a pure in-memory store (tests, genesis tools)
	cache *lru.Cache

	committed map[ids.ShortID]*Account
	mempool   map[ids.ShortID]*Account
	consensus map[ids.ShortID]*Account

	cachedRoot    *ids.ID
	cachedRootBuf []ids.ShortID // addresses contributing to cachedRoot, for invalidation sanity only
}

// NewMemStore returns a Store with no on-disk backing - every committed
// account lives only in the process's memory, suitable for tests and the
// genesis-construction tooling.
func NewMemStore(log hclog.Logger) *Store {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	cache, _ := lru.New(accountCacheSize)
	return &Store{
		log:       log,
		cache:     cache,
		committed: make(map[ids.ShortID]*Account),
		mempool:   make(map[ids.ShortID]*Account),
		consensus: make(map[ids.ShortID]*Account),
	}
}

// NewDiskStore opens (creating if absent) a goleveldb database at [path] as
// the Store's backing store, read through an LRU front cache.
func NewDiskStore(path string, log hclog.Logger) (*Store, error) {
	s := NewMemStore(log)
	db, err := leveldb.OpenFile(path, &opt.Options{})
	if err != nil {
		return nil, err
	}
	s.db = db
	return s, nil
}

// Close releases the backing database, if any.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies the backing database is reachable, for a health.Checker
// storage-reachability probe. A pure in-memory store (no backing database)
// is always reachable.
func (s *Store) Ping() error {
	if s.db == nil {
		return nil
	}
	_, err := s.db.Has(committedKeyPrefix, nil)
	return err
}

func accountKey(addr ids.ShortID) []byte {
	return append(append([]byte{}, committedKeyPrefix...), addr[:]...)
}

// getCommitted resolves an address through the cache, falling back to the
// in-memory committed map, falling back to the backing database.
func (s *Store) getCommitted(addr ids.ShortID) *Account {
	if v, ok := s.cache.Get(addr); ok {
		return v.(*Account).Clone()
	}
	if acc, ok := s.committed[addr]; ok {
		s.cache.Add(addr, acc)
		return acc.Clone()
	}
	if s.db != nil {
		raw, err := s.db.Get(accountKey(addr), nil)
		if err == nil {
			acc, decErr := DecodeAccount(raw)
			if decErr == nil {
				s.cache.Add(addr, acc)
				return acc.Clone()
			}
			s.log.Error("corrupt account record", "address", AddressString(addr), "error", decErr)
		}
	}
	return nil
}

// Get returns the account at [addr] as seen through buffer [buf] overlaid
// on the committed set, or a freshly-initialized zero account if none
// exists yet.
func (s *Store) Get(buf BufferType, addr ids.ShortID) *Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	overlay := s.mempool
	if buf == BufferConsensus {
		overlay = s.consensus
	}
	if acc, ok := overlay[addr]; ok {
		return acc.Clone()
	}
	if acc := s.getCommitted(addr); acc != nil {
		return acc
	}
	return NewAccount(addr)
}

// Set stages [acc] into buffer [buf].
func (s *Store) Set(buf BufferType, acc *Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := acc.Clone()
	if buf == BufferConsensus {
		s.consensus[acc.Address] = clone
	} else {
		s.mempool[acc.Address] = clone
	}
}

// FlushConsensus folds every account staged in the consensus buffer into
// the committed set (and, when present, the backing database), then clears
// the buffer. This is the Commit half of the ABCI lifecycle.
func (s *Store) FlushConsensus() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cachedRoot = nil
	if len(s.consensus) == 0 {
		return nil
	}

	var batch *leveldb.Batch
	if s.db != nil {
		batch = new(leveldb.Batch)
	}
	for addr, acc := range s.consensus {
		s.committed[addr] = acc
		s.cache.Add(addr, acc)
		if batch != nil {
			batch.Put(accountKey(addr), EncodeAccount(acc))
		}
	}
	if batch != nil {
		if err := s.db.Write(batch, nil); err != nil {
			return err
		}
	}
	s.consensus = make(map[ids.ShortID]*Account)
	s.cachedRoot = nil
	return nil
}

// DiscardMempool drops every speculative write staged while validating
// transactions for mempool admission - called once per Commit, per
// spec.md §6.
func (s *Store) DiscardMempool() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mempool = make(map[ids.ShortID]*Account)
}

// AccountsSorted returns every account known to the store, with [buf]'s
// staged writes overlaid on the committed set, sorted ascending by address -
// the canonical iteration order the validator schedule, root hash, and
// reward pool all depend on.
func (s *Store) AccountsSorted(buf BufferType) []*Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	overlay := s.mempool
	if buf == BufferConsensus {
		overlay = s.consensus
	}

	seen := make(map[ids.ShortID]struct{}, len(s.committed)+len(overlay))
	for addr := range s.committed {
		seen[addr] = struct{}{}
	}
	for addr := range overlay {
		seen[addr] = struct{}{}
	}

	addrs := make([]ids.ShortID, 0, len(seen))
	for addr := range seen {
		addrs = append(addrs, addr)
	}
	ids.SortShortIDs(addrs)

	out := make([]*Account, 0, len(addrs))
	for _, addr := range addrs {
		if acc, ok := overlay[addr]; ok {
			out = append(out, acc)
			continue
		}
		if acc := s.getCommitted(addr); acc != nil {
			out = append(out, acc)
		}
	}
	return out
}

// LookupValidatorKey scans the committed set (overlaid by [buf]) for the
// account currently bound to consensus key [key].
func (s *Store) LookupValidatorKey(buf BufferType, key ValidatorKey) (ids.ShortID, bool) {
	for _, acc := range s.AccountsSorted(buf) {
		if acc.Validator != nil && acc.Validator.ConsensusKey == key {
			return acc.Address, true
		}
	}
	return ids.ShortID{}, false
}

// Root computes the deterministic app-state root over the committed set:
// H(H(accounts) ‖ H(pool) ‖ H(params)), per spec.md §3's root-hash
// definition. It is cached until the next FlushConsensus.
func (s *Store) Root(pool *RewardPool, params Params) ids.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cachedRoot != nil {
		return *s.cachedRoot
	}

	addrs := make([]ids.ShortID, 0, len(s.committed))
	for addr := range s.committed {
		addrs = append(addrs, addr)
	}
	ids.SortShortIDs(addrs)

	accountsBuf := make([]byte, 0, 64*len(addrs))
	for _, addr := range addrs {
		acc := s.committed[addr]
		accountsBuf = append(accountsBuf, EncodeAccount(acc)...)
	}
	accountsHash := ids.Keccak256(accountsBuf)
	poolHash := ids.Keccak256(encodeRewardPool(pool))
	paramsHash := ids.Keccak256(encodeParams(params))

	root := ids.Keccak256(accountsHash[:], poolHash[:], paramsHash[:])
	s.cachedRoot = &root
	return root
}

func encodeRewardPool(pool *RewardPool) []byte {
	buf := make([]byte, 0, 16)
	var b8 [8]byte
	putU64(&b8, uint64(pool.PeriodBonus))
	buf = append(buf, b8[:]...)
	putU64(&b8, pool.LastPayout)
	buf = append(buf, b8[:]...)

	addrs := make([]ids.ShortID, 0, len(pool.Credits))
	for a := range pool.Credits {
		addrs = append(addrs, a)
	}
	ids.SortShortIDs(addrs)
	for _, a := range addrs {
		buf = append(buf, a[:]...)
		putU64(&b8, pool.Credits[a])
		buf = append(buf, b8[:]...)
	}
	return buf
}

func putU64(b *[8]byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

// Params are the network parameters contributing to the app-state root,
// per spec.md §2's network-parameter block.
type Params struct {
	MinimalStake         Coin
	MaxValidators        int
	PowerDenom           uint64
	LivenessWindowSize   uint32
	MissedBlockThreshold uint32
	UnbondingPeriod      uint64
	RewardPeriod         uint64
	ExpansionCapBP       uint64
	JailDuration         uint64
	// ByzantineSlashBP and LivenessSlashBP are the base slash ratios (basis
	// points) the punishment pipeline enqueues for each fault kind, before
	// Queue.Amplify scales them by the punished fraction of voting power.
	ByzantineSlashBP uint64
	LivenessSlashBP  uint64
}

func encodeParams(p Params) []byte {
	buf := make([]byte, 0, 64)
	var b8 [8]byte
	putU64(&b8, uint64(p.MinimalStake))
	buf = append(buf, b8[:]...)
	putU64(&b8, uint64(p.MaxValidators))
	buf = append(buf, b8[:]...)
	putU64(&b8, p.PowerDenom)
	buf = append(buf, b8[:]...)
	putU64(&b8, uint64(p.LivenessWindowSize))
	buf = append(buf, b8[:]...)
	putU64(&b8, uint64(p.MissedBlockThreshold))
	buf = append(buf, b8[:]...)
	putU64(&b8, p.UnbondingPeriod)
	buf = append(buf, b8[:]...)
	putU64(&b8, p.RewardPeriod)
	buf = append(buf, b8[:]...)
	putU64(&b8, p.ExpansionCapBP)
	buf = append(buf, b8[:]...)
	putU64(&b8, p.JailDuration)
	buf = append(buf, b8[:]...)
	putU64(&b8, p.ByzantineSlashBP)
	buf = append(buf, b8[:]...)
	putU64(&b8, p.LivenessSlashBP)
	buf = append(buf, b8[:]...)
	return buf
}
