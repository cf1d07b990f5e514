package service

import "math/rand/v2"

// Random is the source of chance for services that roll outcomes
type Random interface {
	Float64() float64
	IntN(n int) int
}

// defaultRandom uses the goroutine-safe top-level math/rand/v2 generator
type defaultRandom struct{}

func (defaultRandom) Float64() float64 { return rand.Float64() }
func (defaultRandom) IntN(n int) int   { return rand.IntN(n) }
