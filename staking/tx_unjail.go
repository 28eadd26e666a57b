// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

import "bytes"

// UnjailTx lifts a jail term once it has expired, allowing the account back
// into validator-schedule selection.
type UnjailTx struct {
	From  Address
	Nonce uint64
}

var _ Tx = (*UnjailTx)(nil)

func (tx *UnjailTx) Type() TxType           { return TxUnjail }
func (tx *UnjailTx) SignerAddress() Address { return tx.From }
func (tx *UnjailTx) TxNonce() uint64        { return tx.Nonce }

func (tx *UnjailTx) Marshal() []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(byte(TxUnjail))
	buf.Write(tx.From[:])
	putUint64(buf, tx.Nonce)
	return buf.Bytes()
}

// UnmarshalUnjailTx parses the bytes Marshal produces.
func UnmarshalUnjailTx(b []byte) (*UnjailTx, error) {
	r := &reader{b: b, off: 1}
	addr, err := r.addr()
	if err != nil {
		return nil, err
	}
	nonce, err := r.uint64()
	if err != nil {
		return nil, err
	}
	return &UnjailTx{From: addr, Nonce: nonce}, nil
}

// Verify applies UnjailTx's semantic checks against [acc] as of block time
// [now].
func (tx *UnjailTx) Verify(acc *Account, now uint64) error {
	if tx.Nonce != acc.Nonce {
		return ErrNonceMismatch
	}
	if acc.Validator == nil {
		return ErrNotValidator
	}
	if acc.Punishment == nil || acc.Validator.Active {
		return ErrNotValidator
	}
	if now < acc.Punishment.JailUntil {
		return ErrJailTimeNotExpired
	}
	return nil
}

// Apply reactivates [acc]'s validator binding, clearing its punishment
// record.
func (tx *UnjailTx) Apply(acc *Account) {
	acc.Validator.Active = true
	acc.Punishment = nil
}
