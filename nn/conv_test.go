package nn

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/cwbudde/algo-gan/internal/core"
	"github.com/cwbudde/algo-gan/tensor"
)

// setWeights overwrites a layer's parameters so that the effective
// kernel equals rows exactly: weight_v is set to the row and weight_g to
// the row norm, so g * v/|v| reproduces the row bit-for-bit up to the
// normalization round trip.
func setWeights(t *testing.T, c *Conv1D, rows [][]float64, bias []float64) {
	t.Helper()

	ps := c.Parameters()
	gain, dir, b := ps[0].Data, ps[1].Data, ps[2].Data
	rowLen := len(dir) / len(gain)

	for oc, row := range rows {
		if len(row) != rowLen {
			t.Fatalf("row %d has %d values, want %d", oc, len(row), rowLen)
		}
		copy(dir[oc*rowLen:(oc+1)*rowLen], row)

		norm := 0.0
		for _, v := range row {
			norm += v * v
		}
		gain[oc] = math.Sqrt(norm)
		b[oc] = bias[oc]
	}
}

func input1(t *testing.T, values ...float64) *tensor.Tensor {
	t.Helper()
	x, err := tensor.New(1, 1, len(values))
	if err != nil {
		t.Fatalf("tensor.New: %v", err)
	}
	copy(x.Channel(0, 0), values)
	return x
}

func TestOutputLength(t *testing.T) {
	cases := []struct {
		inLen, kernel, stride, pad, dilation int
		want                                 int
	}{
		{1024, 3, 1, 1, 1, 1024},
		{1024, 7, 2, 3, 1, 512},
		{1024, 7, 2, 6, 2, 512},
		{1024, 7, 2, 9, 3, 512},
		{4096, 41, 4, 20, 1, 1024},
		{4096, 15, 1, 7, 1, 4096},
		{33, 5, 1, 2, 1, 33},
		{2, 7, 2, 0, 1, -1},
	}

	for _, c := range cases {
		got := OutputLength(c.inLen, c.kernel, c.stride, c.pad, c.dilation)
		if got != c.want {
			t.Fatalf("OutputLength(%d, k=%d, s=%d, p=%d, d=%d) = %d, want %d",
				c.inLen, c.kernel, c.stride, c.pad, c.dilation, got, c.want)
		}
	}
}

func TestConvKnownKernel(t *testing.T) {
	c, err := NewConv1D(Conv1DConfig{In: 1, Out: 1, Kernel: 3, Pad: 1}, nil)
	if err != nil {
		t.Fatalf("NewConv1D: %v", err)
	}
	setWeights(t, c, [][]float64{{1, 0, -1}}, []float64{0})

	out, err := c.Forward(input1(t, 1, 2, 3, 4))
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}

	want := []float64{-2, -2, -2, 3}
	got := out.Channel(0, 0)
	for i := range want {
		if !core.NearlyEqual(got[i], want[i], 1e-12) {
			t.Fatalf("out[%d] = %v, want %v (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestConvStride(t *testing.T) {
	c, err := NewConv1D(Conv1DConfig{In: 1, Out: 1, Kernel: 3, Stride: 2, Pad: 1}, nil)
	if err != nil {
		t.Fatalf("NewConv1D: %v", err)
	}
	setWeights(t, c, [][]float64{{1, 0, -1}}, []float64{0})

	out, err := c.Forward(input1(t, 1, 2, 3, 4))
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}

	if out.Length() != 2 {
		t.Fatalf("length = %d, want 2", out.Length())
	}

	want := []float64{-2, -2}
	got := out.Channel(0, 0)
	for i := range want {
		if !core.NearlyEqual(got[i], want[i], 1e-12) {
			t.Fatalf("out[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestConvDilation(t *testing.T) {
	c, err := NewConv1D(Conv1DConfig{In: 1, Out: 1, Kernel: 3, Pad: 2, Dilation: 2}, nil)
	if err != nil {
		t.Fatalf("NewConv1D: %v", err)
	}
	setWeights(t, c, [][]float64{{1, 0, -1}}, []float64{0})

	out, err := c.Forward(input1(t, 1, 2, 3, 4, 5))
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}

	if out.Length() != 5 {
		t.Fatalf("length = %d, want 5", out.Length())
	}

	want := []float64{-3, -4, -4, 2, 3}
	got := out.Channel(0, 0)
	for i := range want {
		if !core.NearlyEqual(got[i], want[i], 1e-12) {
			t.Fatalf("out[%d] = %v, want %v (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestConvBias(t *testing.T) {
	c, err := NewConv1D(Conv1DConfig{In: 1, Out: 1, Kernel: 1}, nil)
	if err != nil {
		t.Fatalf("NewConv1D: %v", err)
	}
	setWeights(t, c, [][]float64{{2}}, []float64{0.5})

	out, err := c.Forward(input1(t, 1, -1))
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}

	got := out.Channel(0, 0)
	if !core.NearlyEqual(got[0], 2.5, 1e-12) || !core.NearlyEqual(got[1], -1.5, 1e-12) {
		t.Fatalf("out = %v, want [2.5 -1.5]", got)
	}
}

func TestConvGroupIndependence(t *testing.T) {
	// 2 groups, 1 channel each: output channel 0 must only see input
	// channel 0, output channel 1 only input channel 1.
	c, err := NewConv1D(Conv1DConfig{In: 2, Out: 2, Kernel: 1, Groups: 2}, nil)
	if err != nil {
		t.Fatalf("NewConv1D: %v", err)
	}
	setWeights(t, c, [][]float64{{3}, {5}}, []float64{0, 0})

	x, _ := tensor.New(1, 2, 3)
	copy(x.Channel(0, 0), []float64{1, 2, 3})
	copy(x.Channel(0, 1), []float64{10, 20, 30})

	out, err := c.Forward(x)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}

	ch0 := out.Channel(0, 0)
	ch1 := out.Channel(0, 1)
	for i := 0; i < 3; i++ {
		if !core.NearlyEqual(ch0[i], 3*x.At(0, 0, i), 1e-12) {
			t.Fatalf("ch0[%d] = %v, want %v", i, ch0[i], 3*x.At(0, 0, i))
		}
		if !core.NearlyEqual(ch1[i], 5*x.At(0, 1, i), 1e-12) {
			t.Fatalf("ch1[%d] = %v, want %v", i, ch1[i], 5*x.At(0, 1, i))
		}
	}
}

func TestConvCrossChannelSum(t *testing.T) {
	// Ungrouped 2-in 1-out conv sums both input channels.
	c, err := NewConv1D(Conv1DConfig{In: 2, Out: 1, Kernel: 1}, nil)
	if err != nil {
		t.Fatalf("NewConv1D: %v", err)
	}
	setWeights(t, c, [][]float64{{1, 1}}, []float64{0})

	x, _ := tensor.New(1, 2, 2)
	copy(x.Channel(0, 0), []float64{1, 2})
	copy(x.Channel(0, 1), []float64{10, 20})

	out, err := c.Forward(x)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}

	got := out.Channel(0, 0)
	if !core.NearlyEqual(got[0], 11, 1e-12) || !core.NearlyEqual(got[1], 22, 1e-12) {
		t.Fatalf("out = %v, want [11 22]", got)
	}
}

func TestEffectiveWeightNorm(t *testing.T) {
	c, err := NewConv1D(Conv1DConfig{In: 4, Out: 8, Kernel: 5, Groups: 2}, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("NewConv1D: %v", err)
	}

	eff := c.EffectiveWeight()
	gain := c.Parameters()[0].Data
	rowLen := len(eff) / len(gain)

	for oc := range gain {
		norm := 0.0
		for _, v := range eff[oc*rowLen : (oc+1)*rowLen] {
			norm += v * v
		}
		norm = math.Sqrt(norm)
		if !core.NearlyEqual(norm, gain[oc], 1e-10) {
			t.Fatalf("row %d: |eff| = %v, want gain %v", oc, norm, gain[oc])
		}
	}
}

func TestWeightNormMagnitudeScalesOutput(t *testing.T) {
	c, err := NewConv1D(Conv1DConfig{In: 1, Out: 1, Kernel: 3, Pad: 1}, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("NewConv1D: %v", err)
	}
	c.Parameters()[2].Data[0] = 0 // clear bias

	x := input1(t, 0.5, -0.25, 1, 0.75)
	base, err := c.Forward(x)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}

	// Doubling the magnitude doubles the (bias-free) output while the
	// direction stays untouched.
	c.Parameters()[0].Data[0] *= 2

	scaled, err := c.Forward(x)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}

	for i, v := range base.Channel(0, 0) {
		if !core.NearlyEqual(scaled.At(0, 0, i), 2*v, 1e-10) {
			t.Fatalf("out[%d] = %v, want %v", i, scaled.At(0, 0, i), 2*v)
		}
	}
}

func TestWeightNormDirectionScaleInvariant(t *testing.T) {
	// Scaling weight_v leaves the effective weight unchanged: only the
	// direction of v matters.
	c, err := NewConv1D(Conv1DConfig{In: 1, Out: 1, Kernel: 3, Pad: 1}, rand.New(rand.NewSource(11)))
	if err != nil {
		t.Fatalf("NewConv1D: %v", err)
	}

	x := input1(t, 1, 2, 3, 4, 5)
	base, err := c.Forward(x)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}

	dir := c.Parameters()[1].Data
	for i := range dir {
		dir[i] *= 3
	}

	scaled, err := c.Forward(x)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}

	for i, v := range base.Channel(0, 0) {
		if !core.NearlyEqual(scaled.At(0, 0, i), v, 1e-10) {
			t.Fatalf("out[%d] = %v, want %v", i, scaled.At(0, 0, i), v)
		}
	}
}

func TestConvDeterministic(t *testing.T) {
	mk := func() *tensor.Tensor {
		c, err := NewConv1D(Conv1DConfig{In: 4, Out: 8, Kernel: 7, Stride: 2, Pad: 3, Groups: 4},
			rand.New(rand.NewSource(99)))
		if err != nil {
			t.Fatalf("NewConv1D: %v", err)
		}

		x, _ := tensor.New(2, 4, 64)
		rng := rand.New(rand.NewSource(5))
		data := x.Data()
		for i := range data {
			data[i] = rng.Float64()*2 - 1
		}

		out, err := c.Forward(x)
		if err != nil {
			t.Fatalf("Forward: %v", err)
		}
		return out
	}

	a := mk()
	b := mk()
	if !a.Equal(b) {
		t.Fatal("identical seed and input produced different outputs")
	}
}

func TestConvErrors(t *testing.T) {
	if _, err := NewConv1D(Conv1DConfig{In: 0, Out: 1, Kernel: 1}, nil); err != ErrInvalidConfig {
		t.Fatalf("zero in channels: err = %v, want ErrInvalidConfig", err)
	}

	if _, err := NewConv1D(Conv1DConfig{In: 3, Out: 80, Kernel: 3, Groups: 3}, nil); err == nil {
		t.Fatal("groups=3 with out=80 must fail")
	} else if err != ErrGroupMismatch {
		t.Fatalf("err = %v, want ErrGroupMismatch", err)
	}

	c, err := NewConv1D(Conv1DConfig{In: 2, Out: 2, Kernel: 3}, nil)
	if err != nil {
		t.Fatalf("NewConv1D: %v", err)
	}

	x, _ := tensor.New(1, 3, 8)
	if _, err := c.Forward(x); err != ErrChannelMismatch {
		t.Fatalf("channel mismatch: err = %v, want ErrChannelMismatch", err)
	}

	short, _ := tensor.New(1, 2, 2)
	if _, err := c.Forward(short); err != ErrInputTooShort {
		t.Fatalf("short input: err = %v, want ErrInputTooShort", err)
	}
}

func TestConvParamNames(t *testing.T) {
	c, err := NewConv1D(Conv1DConfig{In: 2, Out: 4, Kernel: 3, Groups: 2}, nil)
	if err != nil {
		t.Fatalf("NewConv1D: %v", err)
	}

	ps := c.Parameters()
	wantNames := []string{"weight_g", "weight_v", "bias"}
	wantLens := []int{4, 4 * 1 * 3, 4}

	if len(ps) != 3 {
		t.Fatalf("param count = %d, want 3", len(ps))
	}
	for i, p := range ps {
		if p.Name != wantNames[i] {
			t.Fatalf("param %d name = %q, want %q", i, p.Name, wantNames[i])
		}
		if len(p.Data) != wantLens[i] {
			t.Fatalf("param %q len = %d, want %d", p.Name, len(p.Data), wantLens[i])
		}
	}

	if got := ParamCount(ps); got != 4+12+4 {
		t.Fatalf("ParamCount = %d, want 20", got)
	}
}

func BenchmarkConvForward(b *testing.B) {
	shapes := []struct {
		in, out, kernel, stride, pad, groups, length int
	}{
		{4, 80, 3, 1, 1, 4, 1024},
		{80, 160, 7, 2, 3, 4, 1024},
		{16, 64, 41, 4, 20, 4, 4096},
	}

	for _, s := range shapes {
		c, err := NewConv1D(Conv1DConfig{
			In: s.in, Out: s.out, Kernel: s.kernel,
			Stride: s.stride, Pad: s.pad, Groups: s.groups,
		}, rand.New(rand.NewSource(1)))
		if err != nil {
			b.Fatalf("NewConv1D: %v", err)
		}

		x, _ := tensor.New(1, s.in, s.length)

		b.Run(fmt.Sprintf("in=%d_out=%d_k=%d_s=%d", s.in, s.out, s.kernel, s.stride), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := c.Forward(x); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
