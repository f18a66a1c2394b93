package randutil

import (
	crand "crypto/rand"
	rand "math/rand/v2"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// The helper centralises how we derive the two 64-bit seeds required by rand/v2
// so that all call sites get reproducible sequences.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Secure returns a *rand.Rand backed by a ChaCha8 stream keyed from crypto/rand.
// Production shuffles use this so deals cannot be predicted from earlier output.
func Secure() *rand.Rand {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		panic("randutil: failed to read random seed: " + err.Error())
	}
	return rand.New(rand.NewChaCha8(seed))
}

// Derive returns a child generator seeded from the parent. Tables spawned by a
// seeded simulation use this so each stays reproducible on its own.
func Derive(parent *rand.Rand) *rand.Rand {
	return rand.New(rand.NewPCG(parent.Uint64(), parent.Uint64()))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
