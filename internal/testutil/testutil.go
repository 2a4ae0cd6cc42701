// Package testutil provides deterministic signal and tensor generators
// for tests.
package testutil

import (
	"math"
	"math/rand"

	"github.com/cwbudde/algo-gan/tensor"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// NoiseTensor returns a (batch, channels, length) tensor filled with
// seeded white noise in [-1, 1).
func NoiseTensor(seed int64, batch, channels, length int) *tensor.Tensor {
	x, err := tensor.New(batch, channels, length)
	if err != nil {
		panic(err)
	}

	rng := rand.New(rand.NewSource(seed))
	data := x.Data()
	for i := range data {
		data[i] = rng.Float64()*2 - 1
	}
	return x
}

// SineTensor returns a tensor whose channels hold sine waves at
// channel-dependent frequencies, useful as a structured test signal.
func SineTensor(freqHz, sampleRate float64, batch, channels, length int) *tensor.Tensor {
	x, err := tensor.New(batch, channels, length)
	if err != nil {
		panic(err)
	}

	for b := 0; b < batch; b++ {
		for c := 0; c < channels; c++ {
			copy(x.Channel(b, c), DeterministicSine(freqHz*float64(c+1), sampleRate, 1.0, length))
		}
	}
	return x
}

// ImpulseTensor returns a tensor that is zero everywhere except for a
// unit impulse at pos on every channel.
func ImpulseTensor(batch, channels, length, pos int) *tensor.Tensor {
	x, err := tensor.New(batch, channels, length)
	if err != nil {
		panic(err)
	}

	for b := 0; b < batch; b++ {
		for c := 0; c < channels; c++ {
			copy(x.Channel(b, c), Impulse(length, pos))
		}
	}
	return x
}
