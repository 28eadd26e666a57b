// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

import "bytes"

// NodeJoinTx binds a consensus key to an account, either registering it as
// a validator for the first time or rotating an existing binding onto a
// new key.
type NodeJoinTx struct {
	From         Address
	Nonce        uint64
	ConsensusKey ValidatorKey
}

var _ Tx = (*NodeJoinTx)(nil)

func (tx *NodeJoinTx) Type() TxType           { return TxNodeJoin }
func (tx *NodeJoinTx) SignerAddress() Address { return tx.From }
func (tx *NodeJoinTx) TxNonce() uint64        { return tx.Nonce }

func (tx *NodeJoinTx) Marshal() []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(byte(TxNodeJoin))
	buf.Write(tx.From[:])
	putUint64(buf, tx.Nonce)
	buf.Write(tx.ConsensusKey[:])
	return buf.Bytes()
}

// UnmarshalNodeJoinTx parses the bytes Marshal produces.
func UnmarshalNodeJoinTx(b []byte) (*NodeJoinTx, error) {
	r := &reader{b: b, off: 1}
	addr, err := r.addr()
	if err != nil {
		return nil, err
	}
	nonce, err := r.uint64()
	if err != nil {
		return nil, err
	}
	key, err := r.validatorKey()
	if err != nil {
		return nil, err
	}
	return &NodeJoinTx{From: addr, Nonce: nonce, ConsensusKey: key}, nil
}

// Verify applies NodeJoinTx's semantic checks. [lookupKeyOwner] resolves a
// consensus key to whichever address (if any) is already bound to it
// chain-wide, used to reject cross-account key reuse.
func (tx *NodeJoinTx) Verify(acc *Account, minimalStake Coin, livenessWindowSize uint32, lookupKeyOwner func(ValidatorKey) (Address, bool)) error {
	if tx.Nonce != acc.Nonce {
		return ErrNonceMismatch
	}
	if acc.Bonded < minimalStake {
		return ErrBelowMinimumStake
	}
	if owner, found := lookupKeyOwner(tx.ConsensusKey); found && owner != acc.Address {
		return ErrDuplicateValidatorKey
	}
	if acc.Validator != nil {
		if acc.Validator.ConsensusKey == tx.ConsensusKey {
			// re-activation on the same key: always allowed, window preserved.
			return nil
		}
		if acc.Validator.HasUsed(tx.ConsensusKey) {
			return ErrUsedValidatorKeyFull
		}
		if len(acc.Validator.UsedKeys) >= MaxUsedValidatorKeys {
			return ErrUsedValidatorKeyFull
		}
	}
	return nil
}

// Apply mutates [acc] in place to reflect the validated NodeJoinTx: binding
// a fresh ValidatorBinding on first join, or rotating the existing one.
func (tx *NodeJoinTx) Apply(acc *Account, livenessWindowSize uint32) {
	if acc.Validator == nil {
		acc.Validator = &ValidatorBinding{
			ConsensusKey: tx.ConsensusKey,
			Liveness:     NewLivenessWindow(livenessWindowSize),
			Active:       true,
		}
		return
	}
	acc.Validator.Active = true
	acc.Validator.Rotate(tx.ConsensusKey, livenessWindowSize)
}
