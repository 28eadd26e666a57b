// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

// LivenessWindow is the fixed-size sliding bit-vector spec.md §3 attaches to
// each ValidatorBinding: one bit per recent block the validator was part of
// last_commit_info, set when it signed. It is only ever advanced by Record -
// a validator that drops out of the active set simply stops receiving
// Record calls, so the window (and its popcount) is preserved across the
// gap rather than decayed; a brand-new binding starts a fresh window.
//
// Before the window has seen Size records, "missed" counts only the records
// actually taken, not the as-yet-unwritten slots - otherwise a freshly
// bound validator would read as having missed every block it hasn't had a
// chance to sign yet. This resolves spec.md §4.3's window_size-vs-popcount
// formula against the exact trigger points in the original implementation's
// check_nonlive_fault and check_liveness_tracking test vectors.
type LivenessWindow struct {
	Size     uint32 `serialize:"true" json:"size"`
	Bits     []bool `serialize:"true" json:"bits"`
	Cursor   uint32 `serialize:"true" json:"cursor"`
	Count    uint32 `serialize:"true" json:"count"`
	Popcount uint32 `serialize:"true" json:"popcount"`
}

// NewLivenessWindow allocates a fresh, empty window of the given size.
func NewLivenessWindow(size uint32) *LivenessWindow {
	if size == 0 {
		size = 1
	}
	return &LivenessWindow{Size: size, Bits: make([]bool, size)}
}

// Clone returns a deep copy, used by the staking store's buffered-write
// model so mempool and consensus views never alias the same backing slice.
func (w *LivenessWindow) Clone() *LivenessWindow {
	if w == nil {
		return nil
	}
	bits := make([]bool, len(w.Bits))
	copy(bits, w.Bits)
	return &LivenessWindow{Size: w.Size, Bits: bits, Cursor: w.Cursor, Count: w.Count, Popcount: w.Popcount}
}

// Record advances the window by one block, recording whether the validator
// signed it.
func (w *LivenessWindow) Record(signed bool) {
	if w.Count < w.Size {
		w.Bits[w.Cursor] = signed
		if signed {
			w.Popcount++
		}
		w.Count++
	} else {
		old := w.Bits[w.Cursor]
		switch {
		case old && !signed:
			w.Popcount--
		case !old && signed:
			w.Popcount++
		}
		w.Bits[w.Cursor] = signed
	}
	w.Cursor = (w.Cursor + 1) % w.Size
}

// Missed returns the number of blocks, among those observed so far (capped
// at Size), that the validator did not sign.
func (w *LivenessWindow) Missed() uint32 {
	if w.Count < w.Size {
		return w.Count - w.Popcount
	}
	return w.Size - w.Popcount
}

// IsNonLive reports whether the validator has crossed the non-live
// liveness threshold: its missed-block count has reached [threshold].
func (w *LivenessWindow) IsNonLive(threshold uint32) bool {
	return w.Missed() >= threshold
}
