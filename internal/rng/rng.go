// Package rng is the PRNG external collaborator named in spec.md §6:
// the core language defines `rand()`/`rand(T)` in terms of a Source
// trait rather than owning an entropy source itself, so an embedder can
// swap in a deterministic or hardware-backed generator. We supply the
// trait plus one concrete seeded implementation so the VM is runnable
// standalone, the same split sentra's own VM blurs by calling
// math/rand's package-level, globally-seeded functions directly
// (internal/vm/vm.go: `rand.Float64()`, `rand.Seed(time.Now()...)`)
// wherever a script needs randomness. That global/mutable-seed style
// makes replay and per-VM-instance isolation impossible, which is the
// gap this package closes.
package rng

import "math/rand"

// Source is everything the VM needs from a random number generator
// (spec.md §6): a 64-bit integer stream and a float in [0, 1).
type Source interface {
	NextU64() uint64
	NextF64() float64
}

// Seeded is a Source backed by math/rand's own generator, seeded
// independently per instance instead of sentra's single process-global
// seed. No third-party PRNG crate appears anywhere in the retrieved
// example pack, so this stays on the standard library.
type Seeded struct {
	r *rand.Rand
}

func NewSeeded(seed int64) *Seeded {
	return &Seeded{r: rand.New(rand.NewSource(seed))}
}

func (s *Seeded) NextU64() uint64 { return s.r.Uint64() }
func (s *Seeded) NextF64() float64 { return s.r.Float64() }
