package discriminator

import (
	"fmt"
	"math/rand"

	"github.com/cwbudde/algo-gan/nn"
	"github.com/cwbudde/algo-gan/tensor"
)

// leakySlope is the negative slope shared by every activated block.
const leakySlope = 0.2

// blockSpec declares one block of a discriminator stack. pad and
// reflect are the padding per dilation unit: blocks marked dilated
// scale both with the stack's dilation rate, which keeps output shapes
// independent of the rate ("same"-style padding d*(k-1)/2). A block
// with reflect > 0 realizes its padding by reflection and applies no
// zero padding in the convolution.
type blockSpec struct {
	out       int
	kernel    int
	stride    int
	pad       int
	reflect   int
	grouped   bool
	dilated   bool
	activated bool
}

// bandBlocks is the fixed PQMF-band stack: five stride-2 blocks give
// 32x temporal downsampling; all but the final projection stay grouped
// per band, so sub-bands mix only in the last layer.
var bandBlocks = [...]blockSpec{
	{out: 80, kernel: 3, stride: 1, reflect: 1, grouped: true, dilated: true, activated: true},
	{out: 160, kernel: 7, stride: 2, pad: 3, grouped: true, dilated: true, activated: true},
	{out: 320, kernel: 7, stride: 2, pad: 3, grouped: true, dilated: true, activated: true},
	{out: 480, kernel: 7, stride: 2, pad: 3, grouped: true, dilated: true, activated: true},
	{out: 640, kernel: 7, stride: 2, pad: 3, grouped: true, dilated: true, activated: true},
	{out: 960, kernel: 7, stride: 2, pad: 3, grouped: true, dilated: true, activated: true},
	{out: 960, kernel: 5, stride: 1, pad: 2, grouped: true, dilated: true, activated: true},
	{out: 1, kernel: 3, stride: 1, pad: 1},
}

// fullBandGroups is the fixed group count of the full-band stack's
// middle blocks, independent of the PQMF band count.
const fullBandGroups = 4

// fullBandBlocks is the fixed full-band waveform stack: four stride-4
// blocks give 256x temporal downsampling. First, penultimate, and final
// blocks stay ungrouped to preserve global channel mixing at the
// boundaries.
var fullBandBlocks = [...]blockSpec{
	{out: 16, kernel: 15, stride: 1, reflect: 7, activated: true},
	{out: 64, kernel: 41, stride: 4, pad: 20, grouped: true, activated: true},
	{out: 256, kernel: 41, stride: 4, pad: 20, grouped: true, activated: true},
	{out: 1024, kernel: 41, stride: 4, pad: 20, grouped: true, activated: true},
	{out: 1024, kernel: 41, stride: 4, pad: 20, grouped: true, activated: true},
	{out: 1024, kernel: 5, stride: 1, pad: 2, activated: true},
	{out: 1, kernel: 3, stride: 1, pad: 1},
}

// block is one constructed layer triple: optional reflect padding, a
// weight-normalized convolution, and an optional activation.
type block struct {
	reflect int
	conv    *nn.Conv1D
	act     *nn.LeakyReLU
}

func (bl *block) forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	var err error

	if bl.reflect > 0 {
		x, err = tensor.ReflectPad(x, bl.reflect)
		if err != nil {
			return nil, err
		}
	}

	x, err = bl.conv.Forward(x)
	if err != nil {
		return nil, err
	}

	if bl.act != nil {
		return bl.act.Forward(x)
	}
	return x, nil
}

// buildBlocks instantiates a spec table into layers, chaining channel
// counts and resolving grouped/dilated markers against the stack's
// group count and dilation rate.
func buildBlocks(specs []blockSpec, in, groups, dilation int, rng *rand.Rand) ([]block, error) {
	blocks := make([]block, len(specs))

	for i, s := range specs {
		d := 1
		if s.dilated {
			d = dilation
		}

		g := 1
		if s.grouped {
			g = groups
		}

		conv, err := nn.NewConv1D(nn.Conv1DConfig{
			In:       in,
			Out:      s.out,
			Kernel:   s.kernel,
			Stride:   s.stride,
			Pad:      s.pad * d,
			Dilation: d,
			Groups:   g,
		}, rng)
		if err != nil {
			return nil, fmt.Errorf("discriminator: block %d: %w", i+1, err)
		}

		blocks[i] = block{reflect: s.reflect * d, conv: conv}
		if s.activated {
			blocks[i].act = nn.NewLeakyReLU(leakySlope)
		}

		in = s.out
	}

	return blocks, nil
}

// BlockInfo describes one constructed block for introspection and
// reporting.
type BlockInfo struct {
	In        int
	Out       int
	Kernel    int
	Stride    int
	Pad       int
	Reflect   int
	Dilation  int
	Groups    int
	Activated bool
	Params    int
}

func blockInfos(blocks []block) []BlockInfo {
	infos := make([]BlockInfo, len(blocks))
	for i, bl := range blocks {
		cfg := bl.conv.Config()
		infos[i] = BlockInfo{
			In:        cfg.In,
			Out:       cfg.Out,
			Kernel:    cfg.Kernel,
			Stride:    cfg.Stride,
			Pad:       cfg.Pad,
			Reflect:   bl.reflect,
			Dilation:  cfg.Dilation,
			Groups:    cfg.Groups,
			Activated: bl.act != nil,
			Params:    nn.ParamCount(bl.conv.Parameters()),
		}
	}
	return infos
}

func blockParams(blocks []block) []nn.Param {
	var params []nn.Param
	for i, bl := range blocks {
		params = append(params, nn.Prefix(fmt.Sprintf("block%d", i+1), bl.conv.Parameters())...)
	}
	return params
}

// evaluate feeds x through blocks, accumulating every intermediate
// result. The returned sequence starts with the input itself.
func evaluate(blocks []block, x *tensor.Tensor) ([]*tensor.Tensor, error) {
	embeddings := make([]*tensor.Tensor, 0, len(blocks)+1)
	embeddings = append(embeddings, x)

	for i := range blocks {
		var err error
		x, err = blocks[i].forward(x)
		if err != nil {
			return nil, fmt.Errorf("discriminator: block %d: %w", i+1, err)
		}
		embeddings = append(embeddings, x)
	}

	return embeddings, nil
}
