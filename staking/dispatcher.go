// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

import (
	"context"
	"fmt"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v3"
	"github.com/hashicorp/go-hclog"

	"github.com/dijets-labs/stakechain/ids"
	"github.com/dijets-labs/stakechain/vms/components/utxo"
)

// Signature is the detached secp256k1 signature a transport layer attaches
// to a staking transaction that carries no UTXO inputs of its own
// (Unbond/Withdraw/NodeJoin/Unjail) - the only authentication DepositTx
// needs comes from the UTXO oracle itself, since its inputs are what prove
// spending authority. Per spec.md §9's design note, private-key handling
// lives entirely in the wallet/signer collaborator this module never sees;
// the dispatcher only ever verifies an already-attached signature against
// the claimed signer address.
type Signature struct {
	PubKey []byte
	Sig    []byte
}

// verifyTxSignature checks that [sig] was produced by the private key
// behind [tx]'s claimed signer address, over the transaction's canonical
// encoding.
func verifyTxSignature(tx Tx, sig Signature) error {
	pub, err := secp256k1.ParsePubKey(sig.PubKey)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	addr, err := AddressFromPublicKey(pub)
	if err != nil || addr != tx.SignerAddress() {
		return ErrInvalidSignature
	}
	parsed, err := secp256k1.ParseDERSignature(sig.Sig)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	digest := ids.Keccak256(tx.Marshal())
	if !parsed.Verify(digest[:], pub) {
		return ErrInvalidSignature
	}
	return nil
}

// Dispatcher routes a parsed Tx to its tx_*.go handler, reading and staging
// account state through a Store buffer and delegating UTXO-side validity to
// an Oracle. It is the single place spec.md §4.2's five-transaction
// precondition/effect table is wired together.
type Dispatcher struct {
	log    hclog.Logger
	store  *Store
	oracle utxo.Oracle
	params Params
}

// NewDispatcher returns a Dispatcher reading/writing through [store] and
// delegating UTXO validation to [oracle], timing every round trip into
// [met]'s OracleLatencyMillis histogram.
func NewDispatcher(store *Store, oracle utxo.Oracle, params Params, log hclog.Logger, met *Metrics) *Dispatcher {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	if met != nil {
		oracle = &timingOracle{inner: oracle, met: met}
	}
	return &Dispatcher{log: log.Named("dispatcher"), store: store, oracle: oracle, params: params}
}

// timingOracle wraps an Oracle, observing each Validate call's wall-clock
// duration into a Metrics histogram bucketed with utils/timer's
// millisecond table, per spec.md §5's oracle-round-trip note.
type timingOracle struct {
	inner utxo.Oracle
	met   *Metrics
}

func (t *timingOracle) Validate(ctx context.Context, ins []*utxo.TransferableInput, outs []*utxo.TransferableOutput) (uint64, error) {
	start := time.Now()
	fee, err := t.inner.Validate(ctx, ins, outs)
	t.met.OracleLatencyMillis.Observe(float64(time.Since(start).Milliseconds()))
	return fee, err
}

// Apply validates [tx] (authenticated by [sig], ignored for DepositTx) as of
// block time [now] against buffer [buf], and on success stages the
// resulting mutation and returns the fee owed to the reward pool. A
// validation failure returns a non-nil error and leaves the buffer
// untouched - nonces never advance on a rejected transaction.
func (d *Dispatcher) Apply(ctx context.Context, buf BufferType, tx Tx, sig Signature, now uint64) (Coin, error) {
	addr := tx.SignerAddress()
	acc := d.store.Get(buf, addr)

	switch t := tx.(type) {
	case *DepositTx:
		amount, fee, err := t.Verify(ctx, acc, now, d.oracle)
		if err != nil {
			return 0, err
		}
		bonded, err := AddCoin(acc.Bonded, amount)
		if err != nil {
			return 0, err
		}
		acc.Bonded = bonded
		d.store.Set(buf, acc)
		return fee, nil

	case *UnbondTx:
		if err := verifyTxSignature(tx, sig); err != nil {
			return 0, err
		}
		bonded, unbonded, err := t.Verify(acc, now)
		if err != nil {
			return 0, err
		}
		acc.Bonded = bonded
		acc.Unbonded = unbonded
		acc.UnbondedAt = now + d.params.UnbondingPeriod
		acc.Nonce++
		d.store.Set(buf, acc)
		return 0, nil

	case *WithdrawTx:
		if err := verifyTxSignature(tx, sig); err != nil {
			return 0, err
		}
		amount, fee, err := t.Verify(ctx, acc, now, d.params.UnbondingPeriod, d.oracle)
		if err != nil {
			return 0, err
		}
		unbonded, err := SubCoin(acc.Unbonded, amount)
		if err != nil {
			return 0, err
		}
		acc.Unbonded = unbonded
		acc.UnbondedAt = 0
		acc.Nonce++
		d.store.Set(buf, acc)
		return fee, nil

	case *NodeJoinTx:
		if err := verifyTxSignature(tx, sig); err != nil {
			return 0, err
		}
		if acc.IsJailed(now) {
			return 0, ErrIsJailed
		}
		lookup := func(key ValidatorKey) (Address, bool) { return d.store.LookupValidatorKey(buf, key) }
		if err := t.Verify(acc, d.params.MinimalStake, d.params.LivenessWindowSize, lookup); err != nil {
			return 0, err
		}
		t.Apply(acc, d.params.LivenessWindowSize)
		acc.Nonce++
		d.store.Set(buf, acc)
		return 0, nil

	case *UnjailTx:
		if err := verifyTxSignature(tx, sig); err != nil {
			return 0, err
		}
		if err := t.Verify(acc, now); err != nil {
			return 0, err
		}
		t.Apply(acc)
		acc.Nonce++
		d.store.Set(buf, acc)
		return 0, nil

	default:
		return 0, fmt.Errorf("staking: dispatcher: unhandled tx type %T", t)
	}
}
