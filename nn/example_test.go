package nn_test

import (
	"fmt"

	"github.com/cwbudde/algo-gan/nn"
	"github.com/cwbudde/algo-gan/tensor"
)

func ExampleConv1D() {
	c, _ := nn.NewConv1D(nn.Conv1DConfig{
		In: 4, Out: 80, Kernel: 3, Pad: 1, Groups: 4,
	}, nil)

	x, _ := tensor.New(2, 4, 1024)
	out, _ := c.Forward(x)

	b, ch, n := out.Shape()
	fmt.Printf("out=(%d,%d,%d) params=%d\n", b, ch, n, nn.ParamCount(c.Parameters()))

	// Output:
	// out=(2,80,1024) params=400
}
