package discriminator

import (
	"math/rand"

	"github.com/cwbudde/algo-gan/nn"
	"github.com/cwbudde/algo-gan/tensor"
)

// FullBand is the full-band waveform discriminator: a seven-block
// MelGAN-style stack over the raw single-channel signal. It supplies
// the broadband cues (cross-band leakage, phase) the per-band stacks
// cannot see.
type FullBand struct {
	blocks []block
}

// NewFullBand constructs a full-band discriminator.
func NewFullBand(opts ...Option) (*FullBand, error) {
	cfg := ApplyOptions(opts...)
	return newFullBand(rand.New(rand.NewSource(cfg.Seed)))
}

func newFullBand(rng *rand.Rand) (*FullBand, error) {
	blocks, err := buildBlocks(fullBandBlocks[:], 1, fullBandGroups, 1, rng)
	if err != nil {
		return nil, err
	}
	return &FullBand{blocks: blocks}, nil
}

// Evaluate feeds a (batch, 1, time) audio tensor through the stack and
// returns the eight-element embedding sequence: the input followed by
// each block's output, ending with the single-channel logit map at
// 1/256 of the input's temporal resolution.
func (d *FullBand) Evaluate(audio *tensor.Tensor) ([]*tensor.Tensor, error) {
	return evaluate(d.blocks, audio)
}

// Blocks returns a description of each constructed block.
func (d *FullBand) Blocks() []BlockInfo {
	return blockInfos(d.blocks)
}

// Parameters returns every learnable parameter with block-scoped names.
func (d *FullBand) Parameters() []nn.Param {
	return blockParams(d.blocks)
}
