// Package discriminator implements the multi-scale discriminator
// ensemble of a sub-band adversarial speech enhancement system: three
// grouped-convolution discriminators over PQMF sub-bands at dilation
// rates 1, 2, and 3, plus one MelGAN-style discriminator over the raw
// full-band waveform.
//
// Each discriminator returns its full embedding sequence — the input
// followed by every block's activation, ending in a single-channel
// real/fake logit map. The last element carries the adversarial signal;
// the whole sequence feeds feature-matching losses against a generator.
//
// # Usage
//
//	d, _ := discriminator.New(discriminator.WithBands(4))
//	embeddings, _ := d.Evaluate(bands, audio)
//	logits := embeddings[3][len(embeddings[3])-1] // full-band logit map
//
// All evaluation is a pure function of the input and the current
// weights; weights are only mutated externally between calls, so
// concurrent evaluations are safe.
package discriminator

import (
	"fmt"
	"math/rand"

	"github.com/cwbudde/algo-gan/nn"
	"github.com/cwbudde/algo-gan/tensor"
)

// bandDilations are the fixed dilation rates of the three band
// discriminators. They are architecture constants, not configuration.
var bandDilations = [...]int{1, 2, 3}

// MultiScale owns the four sub-discriminators and fans evaluation out
// to them: PQMF bands to the three band stacks, raw audio to the
// full-band stack.
type MultiScale struct {
	bands []*Band
	full  *FullBand
	q     int
}

// New constructs the ensemble. The band count q (default 4) must match
// both the channel count of the band tensors and the external PQMF
// analysis filter; construction fails when q does not divide the
// grouped channel widths of the band stack.
func New(opts ...Option) (*MultiScale, error) {
	cfg := ApplyOptions(opts...)
	rng := rand.New(rand.NewSource(cfg.Seed))

	m := &MultiScale{q: cfg.Bands}

	for _, dilation := range bandDilations {
		d, err := newBand(dilation, cfg.Bands, rng)
		if err != nil {
			return nil, fmt.Errorf("band discriminator (dilation %d): %w", dilation, err)
		}
		m.bands = append(m.bands, d)
	}

	full, err := newFullBand(rng)
	if err != nil {
		return nil, fmt.Errorf("full-band discriminator: %w", err)
	}
	m.full = full

	return m, nil
}

// Bands returns the configured PQMF sub-band count q.
func (m *MultiScale) Bands() int { return m.q }

// Evaluate runs all four discriminators and returns their embedding
// sequences in fixed order: band dilation 1, 2, 3, then full-band.
//
// bands must be shaped (batch, q, timeB) and audio (batch, 1, timeA);
// the external PQMF contract relates the two lengths, typically
// timeB = timeA / q.
func (m *MultiScale) Evaluate(bands, audio *tensor.Tensor) ([][]*tensor.Tensor, error) {
	embeddings := make([][]*tensor.Tensor, 0, len(m.bands)+1)

	for _, d := range m.bands {
		e, err := d.Evaluate(bands)
		if err != nil {
			return nil, fmt.Errorf("band discriminator (dilation %d): %w", d.Dilation(), err)
		}
		embeddings = append(embeddings, e)
	}

	e, err := m.full.Evaluate(audio)
	if err != nil {
		return nil, fmt.Errorf("full-band discriminator: %w", err)
	}
	embeddings = append(embeddings, e)

	return embeddings, nil
}

// Parameters returns every learnable parameter of all four
// discriminators with hierarchical names (band1.block3.weight_v, ...).
func (m *MultiScale) Parameters() []nn.Param {
	var params []nn.Param
	for i, d := range m.bands {
		params = append(params, nn.Prefix(fmt.Sprintf("band%d", i+1), d.Parameters())...)
	}
	params = append(params, nn.Prefix("fullband", m.full.Parameters())...)
	return params
}
