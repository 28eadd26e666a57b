// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package verify defines the shared self-validation contract every
// transaction field that carries its own syntactic rules implements -
// adapted from the teacher's vms/components/verify package (referenced by
// add_delegator_tx.go as `verify.All(&tx.Validator, tx.RewardsOwner)` but not
// itself present in the retrieval set).
package verify

// Verifiable defines a type that can verify itself as being well-formed.
type Verifiable interface {
	Verify() error
}

// All verifies all the provided verifiables, short-circuiting on the first
// error. A nil entry is considered invalid, guarding against a caller
// forgetting to set an optional-but-required field.
func All(verifiables ...Verifiable) error {
	for _, v := range verifiables {
		if v == nil {
			return errNilVerifiable
		}
		if err := v.Verify(); err != nil {
			return err
		}
	}
	return nil
}
