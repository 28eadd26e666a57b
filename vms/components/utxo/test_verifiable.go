// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utxo

// TestVerifiable is a Verifiable stub for tests, adapted from the teacher's
// vms/components/djtx/test_verifiable.go.
type TestVerifiable struct{ Err error }

// Verify implements verify.Verifiable.
func (v *TestVerifiable) Verify() error { return v.Err }

// TestOutput is an Output stub for tests.
type TestOutput struct {
	TestVerifiable
	Val uint64
}

// Amount implements Output.
func (t *TestOutput) Amount() uint64 { return t.Val }

// TestInput is an Input stub for tests.
type TestInput struct {
	TestVerifiable
	Val uint64
}

// Amount implements Input.
func (t *TestInput) Amount() uint64 { return t.Val }
