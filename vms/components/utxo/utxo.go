// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package utxo models the UTXO side of a staking transaction: the inputs a
// Deposit spends and the outputs a Withdraw produces. Confidentiality and
// signature verification of these UTXOs is delegated to an external
// enclave/oracle collaborator (out of scope per spec.md §1); this package
// only carries the shapes the staking dispatcher hands to that oracle and
// gets a verdict back for.
//
// Adapted from the teacher's vms/components/djtx package (utxo_id.go);
// generalized from a single fixed "DJTX" asset to the spec's UTXO oracle
// boundary, and renamed away from the teacher's asset-specific naming.
package utxo

import (
	"errors"
	"sort"

	"github.com/dijets-labs/stakechain/ids"
	"github.com/dijets-labs/stakechain/vms/components/verify"
)

var (
	errNilUTXOID = errors.New("nil utxo ID is not valid")
	errNilTxID   = errors.New("nil tx ID is not valid")
)

// UTXOID identifies a single UTXO: the transaction that created it and the
// index of the output within that transaction.
type UTXOID struct {
	TxID        ids.ID `serialize:"true" json:"txID"`
	OutputIndex uint32 `serialize:"true" json:"outputIndex"`

	id    ids.ID
	idSet bool
}

// InputSource returns the source of the UTXO that this input spends.
func (u *UTXOID) InputSource() (ids.ID, uint32) { return u.TxID, u.OutputIndex }

// InputID returns the unique ID of the UTXO that this input spends.
func (u *UTXOID) InputID() ids.ID {
	if !u.idSet {
		u.id = u.TxID.Prefix(uint64(u.OutputIndex))
		u.idSet = true
	}
	return u.id
}

// Verify implements verify.Verifiable.
func (u *UTXOID) Verify() error {
	switch {
	case u == nil:
		return errNilUTXOID
	case u.TxID.IsZero():
		return errNilTxID
	default:
		return nil
	}
}

// Output is a spendable amount of value that a transaction produces.
type Output interface {
	verify.Verifiable
	Amount() uint64
}

// Input is the claim a transaction makes on a previously-produced Output.
type Input interface {
	verify.Verifiable
	Amount() uint64
}

// TransferableOutput wraps a raw Output; it carries no UTXOID of its own.
type TransferableOutput struct {
	Out Output `serialize:"true" json:"output"`
}

// Verify implements verify.Verifiable.
func (out *TransferableOutput) Verify() error {
	if out == nil || out.Out == nil {
		return errNilUTXOID
	}
	return out.Out.Verify()
}

// Amount returns the value of the wrapped Output.
func (out *TransferableOutput) Amount() uint64 { return out.Out.Amount() }

// TransferableInput pairs a UTXOID with the claim being made against it.
type TransferableInput struct {
	UTXOID `serialize:"true"`
	In     Input `serialize:"true" json:"input"`
}

// Verify implements verify.Verifiable.
func (in *TransferableInput) Verify() error {
	if in == nil || in.In == nil {
		return errNilUTXOID
	}
	if err := in.UTXOID.Verify(); err != nil {
		return err
	}
	return in.In.Verify()
}

// Amount returns the value being claimed from this input.
func (in *TransferableInput) Amount() uint64 { return in.In.Amount() }

type innerSortTransferableInputs []*TransferableInput

func (ins innerSortTransferableInputs) Less(i, j int) bool {
	iID, iIndex := ins[i].InputSource()
	jID, jIndex := ins[j].InputSource()
	switch iID.Compare(jID) {
	case -1:
		return true
	case 0:
		return iIndex < jIndex
	default:
		return false
	}
}
func (ins innerSortTransferableInputs) Len() int      { return len(ins) }
func (ins innerSortTransferableInputs) Swap(i, j int) { ins[j], ins[i] = ins[i], ins[j] }

// SortTransferableInputs sorts [ins] by (txID, outputIndex) ascending - the
// canonical order the app-state root and wire codec require.
func SortTransferableInputs(ins []*TransferableInput) {
	sort.Sort(innerSortTransferableInputs(ins))
}

// IsSortedAndUniqueTransferableInputs reports whether [ins] is already in
// canonical order with no duplicate UTXOIDs.
func IsSortedAndUniqueTransferableInputs(ins []*TransferableInput) bool {
	for i := 1; i < len(ins); i++ {
		if !innerSortTransferableInputs(ins).Less(i-1, i) {
			return false
		}
	}
	return true
}
