// (c) 2020-2024, Dijets Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package health backs the consensus-engine Info surface's readiness state
// with go-sundheit, the same health-check library the teacher's go.mod
// already carries for its own node-level health reporting.
package health

import (
	"errors"

	sundheit "github.com/AppsFlyer/go-sundheit"
	"github.com/AppsFlyer/go-sundheit/checks"
)

// Checker wraps a go-sundheit health instance with the storage-reachability
// probe the block driver's Info/BeginBlock surface gates on.
type Checker struct {
	health sundheit.Health
}

// New creates a Checker with no checks registered yet.
func New() *Checker {
	return &Checker{health: sundheit.New()}
}

// RegisterStorageCheck registers a check that calls [ping] to verify the
// backing store is reachable.
func (c *Checker) RegisterStorageCheck(name string, ping func() error) error {
	check := &checks.CustomCheck{
		CheckName: name,
		CheckFunc: func() (details interface{}, err error) {
			return nil, ping()
		},
	}
	return c.health.RegisterCheck(&sundheit.Config{
		Check:           check,
		ExecutionPeriod: 0,
	})
}

// Results returns the current pass/fail state of every registered check.
func (c *Checker) Results() (map[string]sundheit.Result, bool) {
	return c.health.Results()
}

// Ready reports whether every registered check is currently passing. An
// unregistered (empty) Checker is considered ready - it has nothing to fail.
func (c *Checker) Ready() error {
	results, healthy := c.Results()
	if healthy {
		return nil
	}
	for name, res := range results {
		if res.Error != nil {
			return errors.New(name + ": " + res.Error.Error())
		}
	}
	return errors.New("unhealthy")
}
