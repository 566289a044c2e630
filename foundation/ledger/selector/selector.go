// Package selector provides different miner selecting algorithms.
package selector

import (
	"fmt"
	"math/rand/v2"
	"sync/atomic"
)

// List of different select strategies.
const (
	StrategyRandom     = "random"
	StrategyRoundRobin = "roundrobin"
)

// Map of different select strategies with functions.
var strategies = map[string]func() Func{
	StrategyRandom:     randomSelect,
	StrategyRoundRobin: roundRobinSelect,
}

// Func defines a function that picks the miner for the next block from the
// configured list of miners. The list is never empty.
type Func func(miners []string) string

// Retrieve returns the specified select strategy function. Each call returns
// a fresh function so strategies that keep state don't share it.
func Retrieve(strategy string) (Func, error) {
	fn, exists := strategies[strategy]
	if !exists {
		return nil, fmt.Errorf("strategy %q does not exist", strategy)
	}
	return fn(), nil
}

// =============================================================================

// randomSelect picks a miner uniformly at random.
func randomSelect() Func {
	return func(miners []string) string {
		return miners[rand.IntN(len(miners))]
	}
}

// roundRobinSelect walks the list of miners in order.
func roundRobinSelect() Func {
	var next atomic.Uint64

	return func(miners []string) string {
		i := next.Add(1) - 1
		return miners[i%uint64(len(miners))]
	}
}
