package nn

import "github.com/cwbudde/algo-gan/tensor"

// LeakyReLU applies max(x, slope*x) element-wise.
type LeakyReLU struct {
	Slope float64
}

// NewLeakyReLU returns a leaky rectifier with the given negative slope.
func NewLeakyReLU(slope float64) *LeakyReLU {
	return &LeakyReLU{Slope: slope}
}

// Forward applies the activation in place and returns x.
func (a *LeakyReLU) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	data := x.Data()
	for i, v := range data {
		if v < 0 {
			data[i] = v * a.Slope
		}
	}
	return x, nil
}

// Parameters returns nil; the activation has no learnable state.
func (a *LeakyReLU) Parameters() []Param { return nil }
