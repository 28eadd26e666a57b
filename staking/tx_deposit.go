// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dijets-labs/stakechain/vms/components/utxo"
)

// DepositTx bonds stake into [To], backed by UTXO inputs the oracle
// validates - the only one of the five transactions that can create a
// brand-new account. Modeled on the teacher's add_delegator_tx.go: a
// UTXO-spending transaction whose semantic verification is delegated to an
// external validity oracle rather than performed inline.
type DepositTx struct {
	To    Address
	Nonce uint64
	Ins   []*utxo.TransferableInput
	Outs  []*utxo.TransferableOutput // change outputs, if any
}

var _ Tx = (*DepositTx)(nil)

func (tx *DepositTx) Type() TxType          { return TxDeposit }
func (tx *DepositTx) SignerAddress() Address { return tx.To }
func (tx *DepositTx) TxNonce() uint64        { return tx.Nonce }

// Marshal renders the canonical wire encoding used for hashing and as the
// message an oracle validates inputs/outputs against.
func (tx *DepositTx) Marshal() []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(byte(TxDeposit))
	buf.Write(tx.To[:])
	putUint64(buf, tx.Nonce)
	buf.Write(encodeUTXOInputs(tx.Ins))
	buf.Write(encodeUTXOOutputs(tx.Outs))
	return buf.Bytes()
}

// UnmarshalDepositTx parses the bytes Marshal produces. It recovers only the
// address and nonce; inputs/outputs are left empty, and nothing between
// decoding and dispatch in this module fills them in.
func UnmarshalDepositTx(b []byte) (*DepositTx, error) {
	r := &reader{b: b, off: 1}
	addr, err := r.addr()
	if err != nil {
		return nil, err
	}
	nonce, err := r.uint64()
	if err != nil {
		return nil, err
	}
	return &DepositTx{To: addr, Nonce: nonce}, nil
}

// Verify applies the DepositTx's semantic checks against [acc] (which may
// be a freshly-zeroed account on an address's first deposit), calling the
// configured Oracle to validate the spent UTXOs and derive the fee. On
// success it returns the bonded amount to credit and the fee owed to the
// reward pool.
func (tx *DepositTx) Verify(ctx context.Context, acc *Account, now uint64, oracle utxo.Oracle) (amount, fee Coin, err error) {
	if tx.Nonce != acc.Nonce {
		return 0, 0, ErrNonceMismatch
	}
	if acc.IsJailed(now) {
		return 0, 0, ErrIsJailed
	}
	feeRaw, err := oracle.Validate(ctx, tx.Ins, tx.Outs)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrFeeCalculation, err)
	}

	var inTotal, outTotal uint64
	for _, in := range tx.Ins {
		inTotal += in.Amount()
	}
	for _, out := range tx.Outs {
		outTotal += out.Amount()
	}
	if inTotal < outTotal+feeRaw {
		return 0, 0, ErrFeeCalculation
	}
	deposited := inTotal - outTotal - feeRaw
	amount, err = NewCoin(deposited)
	if err != nil {
		return 0, 0, err
	}
	fee, err = NewCoin(feeRaw)
	if err != nil {
		return 0, 0, err
	}
	return amount, fee, nil
}
