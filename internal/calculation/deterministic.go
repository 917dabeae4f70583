package calculation

import (
	"math/rand/v2"
	"time"
)

// nowFunc returns the current time (override in tests for determinism).
var nowFunc = time.Now

// SetNowFunc overrides the time provider (use only in tests).
func SetNowFunc(f func() time.Time) { nowFunc = f }

// seedFunc returns a pseudo-random seed (override for deterministic Monte Carlo tests).
var seedFunc = func() int64 { return time.Now().UnixNano() }

// SetSeedFunc overrides the seed provider (use only in tests).
func SetSeedFunc(f func() int64) { seedFunc = f }

// resolveSeed returns seed, or a fresh non-zero seed from seedFunc when seed is 0.
func resolveSeed(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	if s := seedFunc(); s != 0 {
		return s
	}
	return 1
}

// DeriveSeed maps (base seed, stream index) to an independent 64-bit seed
// using the splitmix64 finalizer. Stream i of a run is always seeded the
// same way no matter which goroutine evaluates it.
func DeriveSeed(base int64, index int) uint64 {
	z := uint64(base) + (uint64(index)+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// NewStreamRand returns the random source for stream index of a run seeded with base.
func NewStreamRand(base int64, index int) *rand.Rand {
	return rand.New(rand.NewPCG(DeriveSeed(base, index), uint64(base)))
}
