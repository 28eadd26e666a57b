// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/dijets-labs/stakechain/api/admin"
	"github.com/dijets-labs/stakechain/health"
	"github.com/dijets-labs/stakechain/ids"
	"github.com/dijets-labs/stakechain/vms/components/utxo"
)

// driverState is the block-lifecycle state machine spec.md §4.7 names:
// Idle -> Begun -> Delivering* -> Ended -> Committed -> Idle. Any call
// arriving out of this order is a malformed-consensus-message condition,
// which spec.md §7 classifies as fatal.
type driverState int

const (
	stateIdle driverState = iota
	stateBegun
	stateEnded
)

// BlockHeader is the typed BeginBlock header input spec.md §6 names.
type BlockHeader struct {
	Height          uint64
	Time            uint64
	ProposerAddress Address
}

// VoteInfo is one entry of BeginBlock's last_commit_info.votes.
type VoteInfo struct {
	ValidatorKey ValidatorKey
	Signed       bool
}

// Evidence is one reported byzantine-fault entry.
type Evidence struct {
	ValidatorKey ValidatorKey
	Height       uint64
	Index        uint32
}

// BeginBlockRequest bundles the header, last-commit votes, and byzantine
// evidence spec.md §6's RequestBeginBlock carries.
type BeginBlockRequest struct {
	Header    BlockHeader
	Votes     []VoteInfo
	Evidence  []Evidence
}

// InfoResponse mirrors spec.md §6's ResponseInfo, extended with the
// readiness state go-sundheit backs (the registered storage check passes).
type InfoResponse struct {
	LastBlockHeight uint64
	LastAppHash     ids.ID
	AppVersion      string
	Healthy         bool
	HealthError     string
}

// DeliverTxResponse mirrors spec.md §6's ResponseDeliverTx. Code 0 means
// accepted.
type DeliverTxResponse struct {
	Code uint32
	Log  string
	TxID ids.ID
}

// EndBlockResponse mirrors spec.md §6's ResponseEndBlock.
type EndBlockResponse struct {
	ValidatorUpdates []ValidatorUpdate
}

const appVersion = "stakechain/1"

// Driver is the per-block lifecycle orchestrator spec.md §4.7 specifies: it
// owns the staking store, reward pool, validator schedule, and punishment
// queue, and is the only thing a consensus-engine adapter needs to drive a
// chain forward. Structurally adapted from the teacher's handler/engine
// split (snow/engine/common), collapsed into a single synchronous object
// since spec.md §5 mandates the consensus path is strictly single-threaded.
type Driver struct {
	mu  sync.Mutex
	log hclog.Logger
	met *Metrics

	store      *Store
	oracle     utxo.Oracle
	dispatcher *Dispatcher
	profiler   admin.Performance
	health     *health.Checker

	pool        *RewardPool
	schedule    *Schedule
	punishments *Queue
	aliases     ids.Aliaser

	params       Params
	rewardConfig RewardConfig
	chainID      string

	initialized  bool
	genesisHash  ids.ID
	lastHeight   uint64
	lastAppHash  ids.ID
	mintedSupply Coin

	state       driverState
	blockHeight uint64
	blockTime   uint64
	proposer    Address
	events      BlockEvents
}

// NewDriver constructs a Driver over [store], delegating UTXO validation to
// [oracle]. Call InitChain before any other lifecycle method.
func NewDriver(store *Store, oracle utxo.Oracle, log hclog.Logger, met *Metrics) *Driver {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	if met == nil {
		met = NewMetrics()
	}
	checker := health.New()
	if err := checker.RegisterStorageCheck("store", store.Ping); err != nil {
		log.Error("failed to register storage health check", "error", err)
	}
	return &Driver{
		log:    log.Named("driver"),
		met:    met,
		store:  store,
		oracle: oracle,
		state:  stateIdle,
		health: checker,
	}
}

// Info returns the last committed height/app-hash plus the store's current
// readiness, callable at any time - the consensus-engine Info surface's
// readiness state go-sundheit backs, per spec.md §6/§9.
func (d *Driver) Info() InfoResponse {
	d.mu.Lock()
	defer d.mu.Unlock()
	resp := InfoResponse{LastBlockHeight: d.lastHeight, LastAppHash: d.lastAppHash, AppVersion: appVersion}
	if err := d.health.Ready(); err != nil {
		resp.HealthError = err.Error()
	} else {
		resp.Healthy = true
	}
	return resp
}

// Ready reports whether the driver's backing store currently passes its
// registered health checks.
func (d *Driver) Ready() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.health.Ready()
}

// ChainID returns the chain ID installed by InitChain, empty before then.
func (d *Driver) ChainID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.chainID
}

// StartProfiling begins a CPU profile of the driver's own process, for an
// operator diagnosing a slow block-processing loop. It is independent of
// the block lifecycle and safe to call concurrently with it. The profile
// file is labeled with the chain ID and the height the profile started
// at, so profiles pulled from several validators don't collide.
func (d *Driver) StartProfiling() error {
	d.mu.Lock()
	label := fmt.Sprintf("%s-%d", d.chainID, d.lastHeight)
	d.mu.Unlock()
	return d.profiler.StartCPUProfiler(label)
}

// StopProfiling ends a profile started by StartProfiling.
func (d *Driver) StopProfiling() error {
	return d.profiler.StopCPUProfiler()
}

// InitChain validates and installs [doc] as the genesis state, per spec.md
// §4.7. It is idempotent: re-invocation with a byte-identical genesis
// document returns the same app-hash without re-applying it; re-invocation
// with a *different* genesis after the chain has already initialized is a
// fatal condition (spec.md §7's chain-ID-mismatch-class failure).
func (d *Driver) InitChain(doc *GenesisDoc) ids.ID {
	d.mu.Lock()
	defer d.mu.Unlock()

	docHash := hashGenesisDoc(doc)
	if d.initialized {
		if docHash == d.genesisHash {
			return d.lastAppHash
		}
		panic("staking: driver: InitChain invoked with a different genesis after the chain already initialized")
	}
	if len(doc.ChainID) < 2 {
		panic("staking: driver: malformed chain ID in genesis document")
	}

	state, err := BuildGenesisState(d.store, doc)
	if err != nil {
		panic(fmt.Sprintf("staking: driver: invalid genesis distribution: %v", err))
	}
	if err := d.store.FlushConsensus(); err != nil {
		panic(fmt.Sprintf("staking: driver: genesis flush failed: %v", err))
	}

	d.chainID = doc.ChainID
	d.params = doc.Params
	d.rewardConfig = doc.RewardConfig
	d.pool = state.Pool
	d.schedule = state.Schedule
	d.punishments = NewQueue()
	d.dispatcher = NewDispatcher(d.store, d.oracle, d.params, d.log, d.met)
	d.aliases.Initialize()
	for _, node := range doc.CouncilNodes {
		var keyID ids.ID
		copy(keyID[:], node.ConsensusKey[:])
		if err := d.aliases.Alias(keyID, AddressString(node.Address)); err != nil {
			d.log.Warn("duplicate council node alias", "address", AddressString(node.Address), "error", err)
		}
	}

	root := d.store.Root(d.pool, d.params)
	d.lastAppHash = root
	d.lastHeight = 0
	d.initialized = true
	d.genesisHash = docHash
	d.state = stateIdle
	d.met.BlocksProcessed.Add(0)
	return root
}

// CheckTx validates [raw] (with signature [sig]) against the mempool
// buffer only - it never touches the consensus buffer or stages a write
// that survives past Commit, per spec.md §4.7/§9.
func (d *Driver) CheckTx(ctx context.Context, raw []byte, sig Signature) (code uint32, log string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	tx, err := DecodeTx(raw)
	if err != nil {
		return 1, err.Error()
	}
	if _, err := d.dispatcher.Apply(ctx, BufferMempool, tx, sig, d.blockTime); err != nil {
		return 1, err.Error()
	}
	return 0, ""
}

// BeginBlock runs spec.md §4.3-§4.6's begin-block pipeline: liveness
// bookkeeping, byzantine/non-live enqueue and amplification, deferred-slash
// execution, proposer credit, and period-end reward distribution. Events
// are always emitted in the fixed order spec.md §5 mandates: jailing, then
// slashing, then reward distribution.
func (d *Driver) BeginBlock(req BeginBlockRequest) BlockEvents {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		panic("staking: driver: BeginBlock called before InitChain")
	}
	if d.state != stateIdle {
		panic("staking: driver: BeginBlock called out of order")
	}
	if req.Header.Height != d.lastHeight+1 {
		panic(fmt.Sprintf("staking: driver: non-contiguous block height: want %d, got %d", d.lastHeight+1, req.Header.Height))
	}
	if err := d.health.Ready(); err != nil {
		panic(fmt.Sprintf("staking: driver: storage unreachable, refusing to begin block: %v", err))
	}

	d.blockHeight = req.Header.Height
	d.blockTime = req.Header.Time
	d.proposer = req.Header.ProposerAddress
	d.events = BlockEvents{}

	d.updateLiveness(req.Votes)
	d.enqueueEvidence(req.Evidence)
	d.amplifyAndJail()
	d.executeDueSlashes()
	d.pool.CreditProposer(d.proposer, 0)
	d.maybeDistributeRewards()

	d.state = stateBegun
	d.met.BlocksProcessed.Inc()
	return d.events
}

func (d *Driver) updateLiveness(votes []VoteInfo) {
	for _, v := range votes {
		addr, ok := d.store.LookupValidatorKey(BufferConsensus, v.ValidatorKey)
		if !ok {
			continue
		}
		acc := d.store.Get(BufferConsensus, addr)
		if acc.Validator == nil || acc.Validator.Liveness == nil {
			continue
		}
		acc.Validator.Liveness.Record(v.Signed)
		if acc.Validator.Active && acc.Validator.Liveness.IsNonLive(d.params.MissedBlockThreshold) {
			d.punishments.Enqueue(addr, PunishmentNonLive, v.ValidatorKey, d.blockHeight, 0, d.params.LivenessSlashBP, d.params.JailDuration)
		}
		d.store.Set(BufferConsensus, acc)
	}
}

func (d *Driver) enqueueEvidence(evidence []Evidence) {
	for _, ev := range evidence {
		addr, ok := d.store.LookupValidatorKey(BufferConsensus, ev.ValidatorKey)
		if !ok {
			continue
		}
		d.punishments.Enqueue(addr, PunishmentByzantine, ev.ValidatorKey, ev.Height, ev.Index, d.params.ByzantineSlashBP, d.params.JailDuration)
	}
}

// amplifyAndJail scales every punishment enqueued this block by the
// squared fraction of total voting power being punished (spec.md §4.5),
// then immediately jails each affected account - deferring the balance
// deduction to executeDueSlashes.
func (d *Driver) amplifyAndJail() {
	if d.punishments.Len() == 0 {
		return
	}

	var punishedPower, totalPower uint64
	pendingAddrs := make(map[Address]struct{})
	for _, addr := range d.punishments.PendingAddresses() {
		pendingAddrs[addr] = struct{}{}
	}
	for _, acc := range d.store.AccountsSorted(BufferConsensus) {
		if acc.Validator == nil || !acc.Validator.Active {
			continue
		}
		power := uint64(acc.Bonded) / 1_000
		totalPower += power
		if _, punished := pendingAddrs[acc.Address]; punished {
			punishedPower += power
		}
	}
	d.punishments.Amplify(punishedPower, totalPower)

	punishments := d.punishments.Drain()
	jailed := make([]Address, 0, len(punishments))
	for _, p := range punishments {
		acc := d.store.Get(BufferConsensus, p.Address)
		p.Jail(acc, d.blockTime)
		d.store.Set(BufferConsensus, acc)
		jailed = append(jailed, p.Address)
		d.met.SlashesEnqueued.Inc()
		d.log.Warn("validator jailed", "validator", d.displayName(p.Address), "kind", p.Kind, "ratioBP", p.BaseRatioBP)
	}
	sort.Slice(jailed, func(i, j int) bool { return jailed[i].Less(jailed[j]) })
	if len(jailed) > 0 {
		d.events.JailedValidators = append(d.events.JailedValidators, addressesToJailEvents(jailed, d.store, BufferConsensus)...)
	}
}

// displayName renders [addr] using its genesis council-node alias, if one
// was registered for its bound consensus key, falling back to the
// base58-check address string.
func (d *Driver) displayName(addr Address) string {
	acc := d.store.Get(BufferConsensus, addr)
	if acc.Validator != nil {
		var keyID ids.ID
		copy(keyID[:], acc.Validator.ConsensusKey[:])
		if alias, err := d.aliases.PrimaryAlias(keyID); err == nil {
			return alias
		}
	}
	return AddressString(addr)
}

func addressesToJailEvents(addrs []Address, store *Store, buf BufferType) []JailEvent {
	out := make([]JailEvent, 0, len(addrs))
	for _, addr := range addrs {
		acc := store.Get(buf, addr)
		if acc.Punishment == nil {
			continue
		}
		out = append(out, JailEvent{Address: addr, Kind: acc.Punishment.Kind, JailUntil: acc.Punishment.JailUntil})
	}
	return out
}

// executeDueSlashes scans every account for a matured, not-yet-executed
// punishment record and deducts it, crediting the reward pool - spec.md
// §4.5's deferred-execution half of the pipeline.
func (d *Driver) executeDueSlashes() {
	for _, acc := range d.store.AccountsSorted(BufferConsensus) {
		if acc.Punishment == nil || acc.Punishment.Executed {
			continue
		}
		kind := acc.Punishment.Kind
		amount, err := ExecuteDueSlash(acc, d.blockTime)
		if err != nil {
			panic(fmt.Sprintf("staking: driver: slash execution failed for %s: %v", AddressString(acc.Address), err))
		}
		if !acc.Punishment.Executed {
			continue // not yet matured
		}
		bonus, err := AddCoin(d.pool.PeriodBonus, amount)
		if err != nil {
			panic(fmt.Sprintf("staking: driver: reward pool overflow crediting slash: %v", err))
		}
		d.pool.PeriodBonus = bonus
		d.store.Set(BufferConsensus, acc)
		d.events.Slashes = append(d.events.Slashes, SlashEvent{Address: acc.Address, Kind: kind, Amount: amount})
		d.met.SlashesExecuted.Inc()
		d.log.Warn("slash executed", "validator", d.displayName(acc.Address), "amount", amount.String())
	}
}

func (d *Driver) maybeDistributeRewards() {
	var bondedTotal Coin
	for _, acc := range d.store.AccountsSorted(BufferConsensus) {
		bonded, err := AddCoin(bondedTotal, acc.Bonded)
		if err == nil {
			bondedTotal = bonded
		}
	}
	payouts, minted, distributed := d.pool.MaybeDistribute(d.blockTime, d.rewardConfig, bondedTotal, d.mintedSupply)
	if !distributed {
		return
	}
	for _, payout := range payouts {
		acc := d.store.Get(BufferConsensus, payout.Address)
		bonded, err := AddCoin(acc.Bonded, payout.Amount)
		if err != nil {
			panic(fmt.Sprintf("staking: driver: reward credit overflow: %v", err))
		}
		acc.Bonded = bonded
		d.store.Set(BufferConsensus, acc)
	}
	if minted > 0 {
		total, err := AddCoin(d.mintedSupply, minted)
		if err != nil {
			panic(fmt.Sprintf("staking: driver: minted-supply overflow: %v", err))
		}
		d.mintedSupply = total
	}
	d.events.RewardsDistributed = payouts
	d.events.MintedSupply = minted
	d.met.RewardsDistributed.Inc()
}

// DeliverTx validates and applies a single transaction against the
// consensus buffer, per spec.md §4.7. A rejected transaction leaves state
// untouched; an accepted one's fee is credited to the reward pool and its
// ID appended to the block's accepted-transaction list in arrival order.
func (d *Driver) DeliverTx(ctx context.Context, raw []byte, sig Signature) DeliverTxResponse {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != stateBegun {
		panic("staking: driver: DeliverTx called out of order")
	}

	tx, err := DecodeTx(raw)
	if err != nil {
		d.met.TxRejected.Inc()
		return DeliverTxResponse{Code: 1, Log: err.Error()}
	}
	txID := TxID(tx)

	fee, err := d.dispatcher.Apply(ctx, BufferConsensus, tx, sig, d.blockTime)
	if err != nil {
		d.met.TxRejected.Inc()
		return DeliverTxResponse{Code: 1, Log: err.Error(), TxID: txID}
	}

	if fee > 0 {
		bonus, addErr := AddCoin(d.pool.PeriodBonus, fee)
		if addErr != nil {
			panic(fmt.Sprintf("staking: driver: reward pool overflow crediting fee: %v", addErr))
		}
		d.pool.PeriodBonus = bonus
	}
	d.events.ValidTransactions = append(d.events.ValidTransactions, txID.String())
	d.met.TxAccepted.Inc()
	return DeliverTxResponse{Code: 0, TxID: txID}
}

// EndBlock recomputes the validator schedule diff and returns it. It never
// otherwise mutates state, per spec.md §4.7.
func (d *Driver) EndBlock() EndBlockResponse {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != stateBegun {
		panic("staking: driver: EndBlock called out of order")
	}

	updates := d.schedule.Recompute(d.store.AccountsSorted(BufferConsensus), d.params.MinimalStake, d.blockTime)
	d.events.ValidatorUpdates = updates
	d.state = stateEnded
	return EndBlockResponse{ValidatorUpdates: updates}
}

// Commit flushes the consensus buffer, recomputes and returns the new
// app-hash, advances the committed height, and discards the mempool
// buffer - spec.md §4.7/§5.
func (d *Driver) Commit() ids.ID {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != stateEnded {
		panic("staking: driver: Commit called out of order")
	}

	if err := d.store.FlushConsensus(); err != nil {
		panic(fmt.Sprintf("staking: driver: commit flush failed: %v", err))
	}
	d.store.DiscardMempool()

	root := d.store.Root(d.pool, d.params)
	d.lastAppHash = root
	d.lastHeight = d.blockHeight
	d.state = stateIdle
	return root
}

// LastEvents returns the events accumulated by the most recent
// BeginBlock/DeliverTx/EndBlock sequence, for callers that want the full
// block summary after Commit.
func (d *Driver) LastEvents() BlockEvents {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.events
}

// hashGenesisDoc derives a deterministic digest of [doc] used to detect
// whether a repeated InitChain call is byte-identical to the first.
func hashGenesisDoc(doc *GenesisDoc) ids.ID {
	allocs := make([]GenesisAllocation, len(doc.Distribution))
	copy(allocs, doc.Distribution)
	sort.Slice(allocs, func(i, j int) bool { return allocs[i].Address.Less(allocs[j].Address) })

	buf := make([]byte, 0, 256)
	buf = append(buf, []byte(doc.ChainID)...)
	buf = append(buf, encodeParams(doc.Params)...)
	buf = append(buf, uint64Bytes(doc.Time)...)
	buf = append(buf, uint64Bytes(doc.RewardConfig.Period)...)
	buf = append(buf, uint64Bytes(doc.RewardConfig.ExpansionCapBP)...)
	for _, a := range allocs {
		buf = append(buf, a.Address[:]...)
		c := a.Amount.Bytes()
		buf = append(buf, c[:]...)
		buf = append(buf, byte(a.Type))
	}
	nodes := make([]GenesisCouncilNode, len(doc.CouncilNodes))
	copy(nodes, doc.CouncilNodes)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Address.Less(nodes[j].Address) })
	for _, n := range nodes {
		buf = append(buf, n.Address[:]...)
		buf = append(buf, n.ConsensusKey[:]...)
	}
	return ids.Keccak256(buf)
}
