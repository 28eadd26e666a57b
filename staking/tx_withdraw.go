// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dijets-labs/stakechain/vms/components/utxo"
)

// WithdrawTx releases matured unbonded stake back out to UTXO outputs,
// mirroring DepositTx's oracle-validated shape in reverse.
type WithdrawTx struct {
	From  Address
	Nonce uint64
	Outs  []*utxo.TransferableOutput
}

var _ Tx = (*WithdrawTx)(nil)

func (tx *WithdrawTx) Type() TxType           { return TxWithdraw }
func (tx *WithdrawTx) SignerAddress() Address { return tx.From }
func (tx *WithdrawTx) TxNonce() uint64        { return tx.Nonce }

func (tx *WithdrawTx) Marshal() []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(byte(TxWithdraw))
	buf.Write(tx.From[:])
	putUint64(buf, tx.Nonce)
	buf.Write(encodeUTXOOutputs(tx.Outs))
	return buf.Bytes()
}

// UnmarshalWithdrawTx parses the bytes Marshal produces. As with Deposit,
// output reconstruction belongs to the mempool layer; this only recovers
// address and nonce.
func UnmarshalWithdrawTx(b []byte) (*WithdrawTx, error) {
	r := &reader{b: b, off: 1}
	addr, err := r.addr()
	if err != nil {
		return nil, err
	}
	nonce, err := r.uint64()
	if err != nil {
		return nil, err
	}
	return &WithdrawTx{From: addr, Nonce: nonce}, nil
}

// Verify applies WithdrawTx's semantic checks, calling the oracle to derive
// the fee owed on the produced outputs and confirming [acc] has enough
// matured unbonded stake to cover it. It returns the unbonded amount to
// debit (which must equal outputs+fee per spec.md §4.2) and the fee owed to
// the reward pool.
func (tx *WithdrawTx) Verify(ctx context.Context, acc *Account, now uint64, unbondingPeriod uint64, oracle utxo.Oracle) (amount, fee Coin, err error) {
	if tx.Nonce != acc.Nonce {
		return 0, 0, ErrNonceMismatch
	}
	if acc.IsJailed(now) {
		return 0, 0, ErrIsJailed
	}
	if acc.UnbondedAt == 0 || now < acc.UnbondedAt {
		return 0, 0, ErrInsufficientBalance
	}
	feeRaw, err := oracle.Validate(ctx, nil, tx.Outs)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrFeeCalculation, err)
	}
	var outTotal uint64
	for _, out := range tx.Outs {
		outTotal += out.Amount()
	}
	requested := outTotal + feeRaw
	if requested != uint64(acc.Unbonded) {
		return 0, 0, ErrInsufficientBalance
	}
	amount, err = NewCoin(requested)
	if err != nil {
		return 0, 0, err
	}
	fee, err = NewCoin(feeRaw)
	if err != nil {
		return 0, 0, err
	}
	return amount, fee, nil
}
