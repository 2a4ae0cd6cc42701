// Package nn provides the small set of neural building blocks the
// discriminator stacks are made of: a weight-normalized 1-D convolution
// supporting strides, dilation, and channel groups, and the leaky
// rectifier nonlinearity.
//
// A module is a parameterized tensor function: it evaluates forward on a
// (batch, channel, time) tensor and exposes its learnable parameters as
// named flat slices. There is no graph construction and no autodiff
// here; gradient computation and weight updates belong to an external
// training system that mutates the parameter slices between forward
// evaluations.
package nn

import "github.com/cwbudde/algo-gan/tensor"

// Param is a named, mutable view over one learnable parameter. Data
// aliases the module's storage, so an external optimizer can update
// values in place between forward evaluations.
type Param struct {
	Name string
	Data []float64
}

// Module is a parameterized tensor function supporting forward
// evaluation and parameter introspection.
type Module interface {
	Forward(x *tensor.Tensor) (*tensor.Tensor, error)
	Parameters() []Param
}

var (
	_ Module = (*Conv1D)(nil)
	_ Module = (*LeakyReLU)(nil)
)

// ParamCount returns the total number of scalar parameters in params.
func ParamCount(params []Param) int {
	n := 0
	for _, p := range params {
		n += len(p.Data)
	}
	return n
}

// Prefix returns params with prefix prepended to every name, for
// building hierarchical parameter listings.
func Prefix(prefix string, params []Param) []Param {
	out := make([]Param, len(params))
	for i, p := range params {
		out[i] = Param{Name: prefix + "." + p.Name, Data: p.Data}
	}
	return out
}
