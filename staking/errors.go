// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

import "errors"

// The staking package's closed error taxonomy. Dispatcher and transaction
// handlers only ever return one of these (optionally wrapped with fmt.Errorf
// %w for added context) so callers - the driver's CheckTx/DeliverTx path in
// particular - can switch on errors.Is without parsing messages.
var (
	// ErrIsJailed is returned when a transaction requires an account that is
	// not jailed and the account still carries a punishment record (the jail
	// holds past its term until an Unjail clears it).
	ErrIsJailed = errors.New("staking: account is jailed")
	// ErrNonceMismatch is returned when a transaction's nonce does not equal
	// the account's current nonce.
	ErrNonceMismatch = errors.New("staking: nonce mismatch")
	// ErrInsufficientBalance is returned when an Unbond/Withdraw would
	// overdraw the account's bonded or unbonded balance.
	ErrInsufficientBalance = errors.New("staking: insufficient balance")
	// ErrBelowMinimumStake is returned when a NodeJoin is submitted by an
	// account whose bonded stake is below the network's minimal required stake.
	ErrBelowMinimumStake = errors.New("staking: below minimum stake")
	// ErrDuplicateValidatorKey is returned when a NodeJoin names a
	// consensus key already bound to a different account.
	ErrDuplicateValidatorKey = errors.New("staking: validator key already in use")
	// ErrUsedValidatorKeyFull is returned when a NodeJoin would rotate onto
	// a key the account has already used, or its used-key history is full
	// of keys distinct from the requested one and cannot simply evict.
	ErrUsedValidatorKeyFull = errors.New("staking: used validator key, or history full")
	// ErrJailTimeNotExpired is returned when Unjail is attempted before the
	// account's jail term has elapsed.
	ErrJailTimeNotExpired = errors.New("staking: jail time has not expired")
	// ErrInvalidSignature is returned when a transaction's signature does
	// not verify against its claimed address or validator key.
	ErrInvalidSignature = errors.New("staking: invalid signature")
	// ErrFeeCalculation is returned when the oracle rejects a transaction's
	// inputs/outputs, or when the oracle-reported fee does not reconcile with
	// the transaction's declared inputs and outputs.
	ErrFeeCalculation = errors.New("staking: fee calculation error")
	// ErrUnknownAccount names a reference to an address with no staking
	// account. No path in this package returns it: Store.Get yields a fresh
	// zero account for an address it has never seen.
	ErrUnknownAccount = errors.New("staking: unknown account")
	// ErrNotValidator is returned when a transaction that requires a
	// validator binding (e.g. Unjail) targets an account with none.
	ErrNotValidator = errors.New("staking: account is not a validator")
	// ErrInvalidAccountState is returned by Account.Verify when structural
	// invariants are violated - this indicates a bug upstream, not a bad
	// transaction, and should be treated as fatal if ever observed.
	ErrInvalidAccountState = errors.New("staking: invalid account state")

	// ErrGenesisSupply is returned by genesis validation when the sum of
	// distributed amounts does not exactly equal MaxCoin.
	ErrGenesisSupply = errors.New("staking: genesis distribution does not sum to max supply")
	// ErrGenesisDuplicateAddress is returned when genesis lists the same
	// address twice.
	ErrGenesisDuplicateAddress = errors.New("staking: duplicate genesis address")
	// ErrGenesisValidatorStake is returned when a genesis council node has a
	// zero consensus key, names an address with no externally-owned
	// distribution entry, or is allocated less than the minimal stake.
	ErrGenesisValidatorStake = errors.New("staking: genesis validator stake mismatch")
	// ErrChainIDMismatch is a fatal error: a transaction or block was built
	// for a different chain than the one this driver is running.
	ErrChainIDMismatch = errors.New("staking: chain ID mismatch")
	// ErrStoreCorrupt is a fatal error surfaced by the backing store on
	// decode failures of previously-committed data.
	ErrStoreCorrupt = errors.New("staking: store data is corrupt")
)
