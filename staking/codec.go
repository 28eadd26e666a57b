// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dijets-labs/stakechain/ids"
	"github.com/dijets-labs/stakechain/vms/components/utxo"
)

// TxType discriminates the five staking transactions on the wire, per
// spec.md §5's closed transaction set.
type TxType byte

const (
	// TxDeposit bonds new stake backed by UTXO inputs the oracle validates.
	TxDeposit TxType = iota + 1
	// TxUnbond moves bonded stake into the unbonding pool.
	TxUnbond
	// TxWithdraw releases matured unbonded stake back to UTXO outputs.
	TxWithdraw
	// TxNodeJoin binds or rotates a validator consensus key.
	TxNodeJoin
	// TxUnjail lifts a jail term once it has expired.
	TxUnjail
)

func (t TxType) String() string {
	switch t {
	case TxDeposit:
		return "Deposit"
	case TxUnbond:
		return "Unbond"
	case TxWithdraw:
		return "Withdraw"
	case TxNodeJoin:
		return "NodeJoin"
	case TxUnjail:
		return "Unjail"
	default:
		return "Unknown"
	}
}

var (
	errShortBuffer  = errors.New("staking: codec: buffer too short")
	errUnknownTxTag = errors.New("staking: codec: unknown transaction tag")
)

// Tx is the common shape every staking transaction implements: enough to
// route it to a handler, bind it to an account and nonce, and hash it for
// an ID.
type Tx interface {
	Type() TxType
	SignerAddress() Address
	TxNonce() uint64
	Marshal() []byte
}

// TxID returns the canonical content-addressed ID of [tx].
func TxID(tx Tx) ids.ID {
	return ids.Keccak256(tx.Marshal())
}

// DecodeTx dispatches on the leading tag byte to the matching transaction's
// Unmarshal.
func DecodeTx(b []byte) (Tx, error) {
	if len(b) < 1 {
		return nil, errShortBuffer
	}
	switch TxType(b[0]) {
	case TxDeposit:
		return UnmarshalDepositTx(b)
	case TxUnbond:
		return UnmarshalUnbondTx(b)
	case TxWithdraw:
		return UnmarshalWithdrawTx(b)
	case TxNodeJoin:
		return UnmarshalNodeJoinTx(b)
	case TxUnjail:
		return UnmarshalUnjailTx(b)
	default:
		return nil, fmt.Errorf("%w: 0x%x", errUnknownTxTag, b[0])
	}
}

// --- shared little-endian/length-prefixed primitives -----------------------

func putUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func putUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func putBytes(buf *bytes.Buffer, b []byte) {
	putUint32(buf, uint32(len(b)))
	buf.Write(b)
}

type reader struct {
	b   []byte
	off int
}

func (r *reader) uint32() (uint32, error) {
	if len(r.b)-r.off < 4 {
		return 0, errShortBuffer
	}
	v := binary.LittleEndian.Uint32(r.b[r.off:])
	r.off += 4
	return v, nil
}

func (r *reader) uint64() (uint64, error) {
	if len(r.b)-r.off < 8 {
		return 0, errShortBuffer
	}
	v := binary.LittleEndian.Uint64(r.b[r.off:])
	r.off += 8
	return v, nil
}

func (r *reader) bytes() ([]byte, error) {
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	if uint32(len(r.b)-r.off) < n {
		return nil, errShortBuffer
	}
	out := r.b[r.off : r.off+int(n)]
	r.off += int(n)
	return out, nil
}

func (r *reader) addr() (Address, error) {
	raw, err := r.bytesN(ids.ShortIDLen)
	if err != nil {
		return Address{}, err
	}
	return ids.ToShortID(raw)
}

func (r *reader) validatorKey() (ValidatorKey, error) {
	raw, err := r.bytesN(ValidatorKeyLen)
	if err != nil {
		return ValidatorKey{}, err
	}
	return ValidatorKeyFromBytes(raw)
}

func (r *reader) bytesN(n int) ([]byte, error) {
	if len(r.b)-r.off < n {
		return nil, errShortBuffer
	}
	out := r.b[r.off : r.off+n]
	r.off += n
	return out, nil
}

// --- account encoding, used by the store to derive a deterministic root ----

// EncodeAccount renders [acc] into the canonical byte form hashed into the
// app-state root and (optionally) persisted to the backing store.
func EncodeAccount(acc *Account) []byte {
	buf := new(bytes.Buffer)
	buf.Write(acc.Address[:])
	putUint64(buf, acc.Nonce)
	putUint64(buf, uint64(acc.Bonded))
	putUint64(buf, uint64(acc.Unbonded))
	putUint64(buf, acc.UnbondedAt)

	if acc.Validator == nil {
		buf.WriteByte(0)
	} else {
		buf.WriteByte(1)
		v := acc.Validator
		buf.Write(v.ConsensusKey[:])
		putUint32(buf, uint32(len(v.UsedKeys)))
		for _, k := range v.UsedKeys {
			buf.Write(k[:])
		}
		putUint64(buf, v.InactiveSince)
		if v.Active {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
		if v.Liveness == nil {
			putUint32(buf, 0)
		} else {
			putUint32(buf, v.Liveness.Size)
			putUint32(buf, v.Liveness.Cursor)
			putUint32(buf, v.Liveness.Count)
			putUint32(buf, v.Liveness.Popcount)
			for _, bit := range v.Liveness.Bits {
				if bit {
					buf.WriteByte(1)
				} else {
					buf.WriteByte(0)
				}
			}
		}
	}

	if acc.Punishment == nil {
		buf.WriteByte(0)
	} else {
		buf.WriteByte(1)
		p := acc.Punishment
		buf.WriteByte(byte(p.Kind))
		putUint64(buf, p.SlashRatioBP)
		putUint64(buf, p.JailUntil)
		putUint64(buf, p.EvidenceHeight)
		if p.Executed {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	}
	return buf.Bytes()
}

// DecodeAccount parses the bytes EncodeAccount produces.
func DecodeAccount(b []byte) (*Account, error) {
	r := &reader{b: b}
	addrBytes, err := r.bytesN(ids.ShortIDLen)
	if err != nil {
		return nil, err
	}
	addr, err := ids.ToShortID(addrBytes)
	if err != nil {
		return nil, err
	}
	acc := &Account{Address: addr}
	if acc.Nonce, err = r.uint64(); err != nil {
		return nil, err
	}
	bonded, err := r.uint64()
	if err != nil {
		return nil, err
	}
	if acc.Bonded, err = NewCoin(bonded); err != nil {
		return nil, err
	}
	unbonded, err := r.uint64()
	if err != nil {
		return nil, err
	}
	if acc.Unbonded, err = NewCoin(unbonded); err != nil {
		return nil, err
	}
	if acc.UnbondedAt, err = r.uint64(); err != nil {
		return nil, err
	}

	hasValidator, err := r.bytesN(1)
	if err != nil {
		return nil, err
	}
	if hasValidator[0] == 1 {
		v := &ValidatorBinding{}
		if v.ConsensusKey, err = r.validatorKey(); err != nil {
			return nil, err
		}
		usedCount, err := r.uint32()
		if err != nil {
			return nil, err
		}
		v.UsedKeys = make([]ValidatorKey, usedCount)
		for i := range v.UsedKeys {
			if v.UsedKeys[i], err = r.validatorKey(); err != nil {
				return nil, err
			}
		}
		if v.InactiveSince, err = r.uint64(); err != nil {
			return nil, err
		}
		activeByte, err := r.bytesN(1)
		if err != nil {
			return nil, err
		}
		v.Active = activeByte[0] == 1
		size, err := r.uint32()
		if err != nil {
			return nil, err
		}
		if size > 0 {
			w := &LivenessWindow{Size: size}
			if w.Cursor, err = r.uint32(); err != nil {
				return nil, err
			}
			if w.Count, err = r.uint32(); err != nil {
				return nil, err
			}
			if w.Popcount, err = r.uint32(); err != nil {
				return nil, err
			}
			w.Bits = make([]bool, size)
			for i := range w.Bits {
				bitByte, err := r.bytesN(1)
				if err != nil {
					return nil, err
				}
				w.Bits[i] = bitByte[0] == 1
			}
			v.Liveness = w
		}
		acc.Validator = v
	}

	hasPunishment, err := r.bytesN(1)
	if err != nil {
		return nil, err
	}
	if hasPunishment[0] == 1 {
		kindByte, err := r.bytesN(1)
		if err != nil {
			return nil, err
		}
		p := &PunishmentRecord{Kind: PunishmentKind(kindByte[0])}
		if p.SlashRatioBP, err = r.uint64(); err != nil {
			return nil, err
		}
		if p.JailUntil, err = r.uint64(); err != nil {
			return nil, err
		}
		if p.EvidenceHeight, err = r.uint64(); err != nil {
			return nil, err
		}
		executedByte, err := r.bytesN(1)
		if err != nil {
			return nil, err
		}
		p.Executed = executedByte[0] == 1
		acc.Punishment = p
	}
	return acc, nil
}

// encodeUTXOInputs/Outputs render the UTXO side of Deposit/Withdraw
// transactions for signing and hashing, reusing the shared utxo package the
// oracle boundary is built on.
func encodeUTXOInputs(ins []*utxo.TransferableInput) []byte {
	buf := new(bytes.Buffer)
	putUint32(buf, uint32(len(ins)))
	for _, in := range ins {
		txID, idx := in.InputSource()
		buf.Write(txID[:])
		putUint32(buf, idx)
		putUint64(buf, in.Amount())
	}
	return buf.Bytes()
}

func encodeUTXOOutputs(outs []*utxo.TransferableOutput) []byte {
	buf := new(bytes.Buffer)
	putUint32(buf, uint32(len(outs)))
	for _, out := range outs {
		putUint64(buf, out.Amount())
	}
	return buf.Bytes()
}
