package discriminator

import (
	"errors"
	"math/rand"

	"github.com/cwbudde/algo-gan/nn"
	"github.com/cwbudde/algo-gan/tensor"
)

// ErrInvalidDilation is returned when a band discriminator is requested
// with a dilation rate below 1.
var ErrInvalidDilation = errors.New("discriminator: dilation must be at least 1")

// Band is the PQMF-band discriminator: an eight-block grouped
// convolution stack over q sub-band channels. All blocks but the final
// ungrouped projection process each sub-band independently; the
// dilation rate widens every kernel's receptive field without changing
// any output shape.
type Band struct {
	dilation int
	q        int
	blocks   []block
}

// NewBand constructs a band discriminator with the given dilation rate.
func NewBand(dilation int, opts ...Option) (*Band, error) {
	cfg := ApplyOptions(opts...)
	return newBand(dilation, cfg.Bands, rand.New(rand.NewSource(cfg.Seed)))
}

func newBand(dilation, q int, rng *rand.Rand) (*Band, error) {
	if dilation < 1 {
		return nil, ErrInvalidDilation
	}

	blocks, err := buildBlocks(bandBlocks[:], q, q, dilation, rng)
	if err != nil {
		return nil, err
	}

	return &Band{dilation: dilation, q: q, blocks: blocks}, nil
}

// Dilation returns the stack's dilation rate.
func (d *Band) Dilation() int { return d.dilation }

// Bands returns the PQMF sub-band count q.
func (d *Band) Bands() int { return d.q }

// Evaluate feeds a (batch, q, time) band tensor through the stack and
// returns the nine-element embedding sequence: the input followed by
// each block's output, ending with the single-channel logit map at
// 1/32 of the input's temporal resolution.
func (d *Band) Evaluate(bands *tensor.Tensor) ([]*tensor.Tensor, error) {
	return evaluate(d.blocks, bands)
}

// Blocks returns a description of each constructed block.
func (d *Band) Blocks() []BlockInfo {
	return blockInfos(d.blocks)
}

// Parameters returns every learnable parameter with block-scoped names.
func (d *Band) Parameters() []nn.Param {
	return blockParams(d.blocks)
}
