// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

import "testing"

func TestTxRoundTrips(t *testing.T) {
	cases := []Tx{
		&UnbondTx{From: addrN(1), Nonce: 3, Amount: 500},
		&WithdrawTx{From: addrN(2), Nonce: 4},
		&NodeJoinTx{From: addrN(3), Nonce: 5, ConsensusKey: keyN(7)},
		&UnjailTx{From: addrN(4), Nonce: 6},
		&DepositTx{To: addrN(5), Nonce: 7},
	}
	for _, want := range cases {
		got, err := DecodeTx(want.Marshal())
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", want.Type(), err)
		}
		if got.Type() != want.Type() {
			t.Fatalf("expected type %s, got %s", want.Type(), got.Type())
		}
		if got.SignerAddress() != want.SignerAddress() {
			t.Fatalf("%s: signer address mismatch", want.Type())
		}
		if got.TxNonce() != want.TxNonce() {
			t.Fatalf("%s: nonce mismatch", want.Type())
		}
	}
}

func TestDecodeTxRejectsUnknownTag(t *testing.T) {
	if _, err := DecodeTx([]byte{0xFF}); err == nil {
		t.Fatal("expected an unknown tag byte to fail")
	}
}

func TestDecodeTxRejectsEmptyBuffer(t *testing.T) {
	if _, err := DecodeTx(nil); err == nil {
		t.Fatal("expected an empty buffer to fail")
	}
}

func TestTxIDIsContentAddressed(t *testing.T) {
	a := &UnbondTx{From: addrN(1), Nonce: 1, Amount: 10}
	b := &UnbondTx{From: addrN(1), Nonce: 1, Amount: 10}
	c := &UnbondTx{From: addrN(1), Nonce: 2, Amount: 10}
	if TxID(a) != TxID(b) {
		t.Fatal("identical transactions must hash identically")
	}
	if TxID(a) == TxID(c) {
		t.Fatal("distinct transactions must hash differently")
	}
}

func TestAccountEncodeDecodeRoundTrip(t *testing.T) {
	acc := validatorAccount(1, 1_000)
	acc.Unbonded = 250
	acc.UnbondedAt = 42
	acc.Nonce = 7
	acc.Validator.Liveness.Record(true)
	acc.Validator.Liveness.Record(false)
	acc.Validator.UsedKeys = []ValidatorKey{keyN(9)}
	acc.Punishment = &PunishmentRecord{Kind: PunishmentByzantine, SlashRatioBP: 1000, JailUntil: 99, EvidenceHeight: 12, Executed: true}

	encoded := EncodeAccount(acc)
	decoded, err := DecodeAccount(encoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if decoded.Address != acc.Address || decoded.Nonce != acc.Nonce || decoded.Bonded != acc.Bonded ||
		decoded.Unbonded != acc.Unbonded || decoded.UnbondedAt != acc.UnbondedAt {
		t.Fatal("scalar account fields did not round trip")
	}
	if decoded.Validator == nil || decoded.Validator.ConsensusKey != acc.Validator.ConsensusKey {
		t.Fatal("validator binding did not round trip")
	}
	if decoded.Validator.Liveness.Popcount != acc.Validator.Liveness.Popcount {
		t.Fatal("liveness window did not round trip")
	}
	if len(decoded.Validator.UsedKeys) != 1 || decoded.Validator.UsedKeys[0] != keyN(9) {
		t.Fatal("used-key history did not round trip")
	}
	if decoded.Punishment == nil || decoded.Punishment.SlashRatioBP != 1000 || !decoded.Punishment.Executed {
		t.Fatal("punishment record did not round trip")
	}
}

func TestAccountEncodeDecodeRoundTripNoValidator(t *testing.T) {
	acc := NewAccount(addrN(9))
	acc.Bonded = 5
	encoded := EncodeAccount(acc)
	decoded, err := DecodeAccount(encoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded.Validator != nil || decoded.Punishment != nil {
		t.Fatal("expected nil validator/punishment to round trip as nil")
	}
}
