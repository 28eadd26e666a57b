// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package verify

import "errors"

var errNilVerifiable = errors.New("verify: nil verifiable")
