// Package tensor provides the batch × channel × time signal tensor used
// throughout the discriminator stacks.
//
// Values are stored as one contiguous float64 slice in batch-major,
// channel-minor order, so each (batch, channel) pair exposes its time
// axis as a plain contiguous slice. This keeps the convolution inner
// loops operating on flat slices that vector routines can consume
// directly.
//
// # Usage
//
//	x, _ := tensor.New(2, 4, 1024)
//	ch := x.Channel(0, 2) // contiguous time slice, length 1024
//	ch[0] = 1
package tensor

import (
	"errors"

	"github.com/cwbudde/algo-gan/internal/core"
)

// ErrInvalidShape is returned when a requested dimension is not positive.
var ErrInvalidShape = errors.New("tensor: dimensions must be positive")

// Tensor is a 3-D signal array shaped (batch, channels, length).
type Tensor struct {
	data     []float64
	batch    int
	channels int
	length   int
}

// New allocates a zero-filled tensor with the given shape.
func New(batch, channels, length int) (*Tensor, error) {
	if batch <= 0 || channels <= 0 || length <= 0 {
		return nil, ErrInvalidShape
	}

	return &Tensor{
		data:     make([]float64, batch*channels*length),
		batch:    batch,
		channels: channels,
		length:   length,
	}, nil
}

// Batch returns the batch dimension.
func (t *Tensor) Batch() int { return t.batch }

// Channels returns the channel dimension.
func (t *Tensor) Channels() int { return t.channels }

// Length returns the time dimension.
func (t *Tensor) Length() int { return t.length }

// Shape returns all three dimensions.
func (t *Tensor) Shape() (batch, channels, length int) {
	return t.batch, t.channels, t.length
}

// Channel returns the contiguous time slice for one (batch, channel) pair.
// The slice aliases the tensor's storage; writes are visible to the tensor.
func (t *Tensor) Channel(b, c int) []float64 {
	off := (b*t.channels + c) * t.length
	return t.data[off : off+t.length]
}

// At returns the value at (b, c, i).
func (t *Tensor) At(b, c, i int) float64 {
	return t.data[(b*t.channels+c)*t.length+i]
}

// Set stores v at (b, c, i).
func (t *Tensor) Set(b, c, i int, v float64) {
	t.data[(b*t.channels+c)*t.length+i] = v
}

// Data returns the backing slice in batch-major, channel-minor order.
func (t *Tensor) Data() []float64 { return t.data }

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	out := &Tensor{
		data:     make([]float64, len(t.data)),
		batch:    t.batch,
		channels: t.channels,
		length:   t.length,
	}
	copy(out.data, t.data)
	return out
}

// Zero sets every value to 0.
func (t *Tensor) Zero() {
	core.Zero(t.data)
}

// Equal reports whether two tensors have identical shape and bit-identical
// values.
func (t *Tensor) Equal(o *Tensor) bool {
	if o == nil || t.batch != o.batch || t.channels != o.channels || t.length != o.length {
		return false
	}
	for i, v := range t.data {
		if v != o.data[i] {
			return false
		}
	}
	return true
}
