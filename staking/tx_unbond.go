// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

import "bytes"

// UnbondTx moves [Amount] of bonded stake into the unbonding pool, starting
// the unbonding clock. It never touches UTXOs - the account-signature path,
// not the oracle path.
type UnbondTx struct {
	From   Address
	Nonce  uint64
	Amount Coin
}

var _ Tx = (*UnbondTx)(nil)

func (tx *UnbondTx) Type() TxType           { return TxUnbond }
func (tx *UnbondTx) SignerAddress() Address { return tx.From }
func (tx *UnbondTx) TxNonce() uint64        { return tx.Nonce }

func (tx *UnbondTx) Marshal() []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(byte(TxUnbond))
	buf.Write(tx.From[:])
	putUint64(buf, tx.Nonce)
	putUint64(buf, uint64(tx.Amount))
	return buf.Bytes()
}

// UnmarshalUnbondTx parses the bytes Marshal produces, plus any signature
// bytes appended by the transport layer.
func UnmarshalUnbondTx(b []byte) (*UnbondTx, error) {
	r := &reader{b: b, off: 1}
	addr, err := r.addr()
	if err != nil {
		return nil, err
	}
	nonce, err := r.uint64()
	if err != nil {
		return nil, err
	}
	amountRaw, err := r.uint64()
	if err != nil {
		return nil, err
	}
	amount, err := NewCoin(amountRaw)
	if err != nil {
		return nil, err
	}
	return &UnbondTx{From: addr, Nonce: nonce, Amount: amount}, nil
}

// Verify applies UnbondTx's semantic checks against [acc], returning the
// new bonded/unbonded balances on success.
func (tx *UnbondTx) Verify(acc *Account, now uint64) (bonded, unbonded Coin, err error) {
	if tx.Nonce != acc.Nonce {
		return 0, 0, ErrNonceMismatch
	}
	if acc.IsJailed(now) {
		return 0, 0, ErrIsJailed
	}
	if tx.Amount > acc.Bonded {
		return 0, 0, ErrInsufficientBalance
	}
	newBonded, err := SubCoin(acc.Bonded, tx.Amount)
	if err != nil {
		return 0, 0, err
	}
	newUnbonded, err := AddCoin(acc.Unbonded, tx.Amount)
	if err != nil {
		return 0, 0, err
	}
	return newBonded, newUnbonded, nil
}
