package nn

import (
	"errors"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-gan/internal/core"
	"github.com/cwbudde/algo-gan/tensor"
)

// Errors returned by convolution construction and evaluation.
var (
	ErrInvalidConfig   = errors.New("nn: channel, kernel, stride, and dilation must be positive")
	ErrGroupMismatch   = errors.New("nn: groups must evenly divide input and output channels")
	ErrChannelMismatch = errors.New("nn: input channel count does not match layer")
	ErrInputTooShort   = errors.New("nn: input too short for kernel, dilation, and padding")
)

// Conv1DConfig describes a 1-D convolution layer. Zero values for
// Stride, Dilation, and Groups default to 1; Pad defaults to 0.
type Conv1DConfig struct {
	In       int // input channels
	Out      int // output channels
	Kernel   int // taps per kernel
	Stride   int
	Pad      int // zero padding on both ends of the time axis
	Dilation int // spacing between kernel taps
	Groups   int // independent channel groups
}

func (c Conv1DConfig) normalized() Conv1DConfig {
	if c.Stride == 0 {
		c.Stride = 1
	}
	if c.Dilation == 0 {
		c.Dilation = 1
	}
	if c.Groups == 0 {
		c.Groups = 1
	}
	return c
}

// OutputLength returns the time length produced by a convolution with
// the given geometry, following the standard floor rule. The result may
// be zero or negative when the input is too short.
func OutputLength(inLen, kernel, stride, pad, dilation int) int {
	return (inLen+2*pad-dilation*(kernel-1)-1)/stride + 1
}

// Conv1D is a weight-normalized 1-D convolution.
//
// The learnable weight is stored as a per-output-channel magnitude
// (weight_g) and an unnormalized direction tensor (weight_v); the
// effective kernel g * v/|v| is recomputed from them on every forward
// evaluation, so an optimizer may update either factor freely and a
// checkpoint loader can re-derive the identical decomposition.
//
// Direction and effective weights are laid out as
// [out][inPerGroup][kernel] in one contiguous slice.
type Conv1D struct {
	cfg Conv1DConfig

	gain []float64 // weight_g, len Out
	dir  []float64 // weight_v, len Out * In/Groups * Kernel
	bias []float64 // len Out
}

// NewConv1D constructs a convolution layer with weights drawn from the
// fan-in-scaled uniform distribution U(-1/sqrt(fanIn), 1/sqrt(fanIn)).
// The magnitude is initialized to the direction's per-channel norm, so
// the initial effective weight equals the raw draw. A nil rng falls
// back to a fixed-seed source.
func NewConv1D(cfg Conv1DConfig, rng *rand.Rand) (*Conv1D, error) {
	cfg = cfg.normalized()

	if cfg.In <= 0 || cfg.Out <= 0 || cfg.Kernel <= 0 ||
		cfg.Stride <= 0 || cfg.Dilation <= 0 || cfg.Groups <= 0 || cfg.Pad < 0 {
		return nil, ErrInvalidConfig
	}
	if cfg.In%cfg.Groups != 0 || cfg.Out%cfg.Groups != 0 {
		return nil, ErrGroupMismatch
	}

	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	inPerGroup := cfg.In / cfg.Groups
	rowLen := inPerGroup * cfg.Kernel

	c := &Conv1D{
		cfg:  cfg,
		gain: make([]float64, cfg.Out),
		dir:  make([]float64, cfg.Out*rowLen),
		bias: make([]float64, cfg.Out),
	}

	bound := 1 / math.Sqrt(float64(rowLen))
	for i := range c.dir {
		c.dir[i] = (rng.Float64()*2 - 1) * bound
	}
	for i := range c.bias {
		c.bias[i] = (rng.Float64()*2 - 1) * bound
	}

	for oc := 0; oc < cfg.Out; oc++ {
		row := c.dir[oc*rowLen : (oc+1)*rowLen]
		c.gain[oc] = math.Sqrt(vecmath.DotProduct(row, row))
	}

	return c, nil
}

// Config returns the layer geometry.
func (c *Conv1D) Config() Conv1DConfig { return c.cfg }

// Parameters returns the magnitude, direction, and bias as mutable
// views, using the conventional weight-norm names.
func (c *Conv1D) Parameters() []Param {
	return []Param{
		{Name: "weight_g", Data: c.gain},
		{Name: "weight_v", Data: c.dir},
		{Name: "bias", Data: c.bias},
	}
}

// EffectiveWeight recomputes and returns the effective kernel
// g * v/|v| as a fresh [out][inPerGroup][kernel] slice.
func (c *Conv1D) EffectiveWeight() []float64 {
	rowLen := (c.cfg.In / c.cfg.Groups) * c.cfg.Kernel
	eff := make([]float64, len(c.dir))

	for oc := 0; oc < c.cfg.Out; oc++ {
		row := c.dir[oc*rowLen : (oc+1)*rowLen]
		norm := math.Sqrt(vecmath.DotProduct(row, row))

		scale := 0.0
		if norm > 0 {
			scale = c.gain[oc] / norm
		}
		vecmath.ScaleBlock(eff[oc*rowLen:(oc+1)*rowLen], row, scale)
	}

	return eff
}

// Forward applies the convolution to x and returns a new output tensor.
// All scratch state is local to the call, so concurrent evaluations of
// the same layer are safe as long as the weights are not mutated.
func (c *Conv1D) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	if x.Channels() != c.cfg.In {
		return nil, ErrChannelMismatch
	}

	inLen := x.Length()
	outLen := OutputLength(inLen, c.cfg.Kernel, c.cfg.Stride, c.cfg.Pad, c.cfg.Dilation)
	if outLen < 1 {
		return nil, ErrInputTooShort
	}

	out, err := tensor.New(x.Batch(), c.cfg.Out, outLen)
	if err != nil {
		return nil, err
	}

	eff := c.EffectiveWeight()

	inPerGroup := c.cfg.In / c.cfg.Groups
	outPerGroup := c.cfg.Out / c.cfg.Groups
	rowLen := inPerGroup * c.cfg.Kernel
	padLen := inLen + 2*c.cfg.Pad

	var padBuf []float64

	for b := 0; b < x.Batch(); b++ {
		for g := 0; g < c.cfg.Groups; g++ {
			// Seed every output channel of the group with its bias.
			for ocg := 0; ocg < outPerGroup; ocg++ {
				dst := out.Channel(b, g*outPerGroup+ocg)
				for t := range dst {
					dst[t] = c.bias[g*outPerGroup+ocg]
				}
			}

			for icg := 0; icg < inPerGroup; icg++ {
				src := x.Channel(b, g*inPerGroup+icg)

				in := src
				if c.cfg.Pad > 0 {
					padBuf = core.EnsureLen(padBuf, padLen)
					core.Zero(padBuf[:c.cfg.Pad])
					core.CopyInto(padBuf[c.cfg.Pad:c.cfg.Pad+inLen], src)
					core.Zero(padBuf[c.cfg.Pad+inLen:])
					in = padBuf
				}

				for ocg := 0; ocg < outPerGroup; ocg++ {
					oc := g*outPerGroup + ocg
					w := eff[oc*rowLen+icg*c.cfg.Kernel : oc*rowLen+(icg+1)*c.cfg.Kernel]
					dst := out.Channel(b, oc)

					if c.cfg.Dilation == 1 {
						c.accumulate(dst, in, w)
					} else {
						c.accumulateDilated(dst, in, w)
					}
				}
			}
		}
	}

	return out, nil
}

// accumulate adds the correlation of in with w into dst for the
// dilation-1 case, where each kernel window is a contiguous slice.
func (c *Conv1D) accumulate(dst, in, w []float64) {
	k := c.cfg.Kernel
	s := c.cfg.Stride
	for t := range dst {
		base := t * s
		dst[t] += vecmath.DotProduct(w, in[base:base+k])
	}
}

// accumulateDilated is the scalar path for dilated kernels, whose taps
// are not contiguous in the input.
func (c *Conv1D) accumulateDilated(dst, in, w []float64) {
	k := c.cfg.Kernel
	s := c.cfg.Stride
	d := c.cfg.Dilation
	for t := range dst {
		base := t * s
		acc := 0.0
		for i := 0; i < k; i++ {
			acc += w[i] * in[base+i*d]
		}
		dst[t] += acc
	}
}
