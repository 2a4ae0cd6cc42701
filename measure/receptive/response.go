package receptive

import (
	"errors"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-gan/nn"
)

// Errors returned by kernel response computation.
var (
	ErrFFTTooShort = errors.New("receptive: fft size must be at least the kernel length")
	ErrBadChannel  = errors.New("receptive: channel index out of range")
	ErrNotPowerOf2 = errors.New("receptive: fft size must be a power of two")
)

// Response returns the magnitude frequency response of one effective
// kernel of a weight-normalized convolution: the taps connecting input
// channel inChannel (index within the output channel's group) to output
// channel outChannel, zero-padded to fftSize. The result holds the
// fftSize/2+1 non-negative-frequency bins.
func Response(c *nn.Conv1D, outChannel, inChannel, fftSize int) ([]float64, error) {
	cfg := c.Config()

	inPerGroup := cfg.In / cfg.Groups
	if outChannel < 0 || outChannel >= cfg.Out || inChannel < 0 || inChannel >= inPerGroup {
		return nil, ErrBadChannel
	}
	if fftSize < cfg.Kernel {
		return nil, ErrFFTTooShort
	}
	if fftSize&(fftSize-1) != 0 {
		return nil, ErrNotPowerOf2
	}

	rowLen := inPerGroup * cfg.Kernel
	eff := c.EffectiveWeight()
	taps := eff[outChannel*rowLen+inChannel*cfg.Kernel : outChannel*rowLen+(inChannel+1)*cfg.Kernel]

	in := make([]complex128, fftSize)
	for i, w := range taps {
		in[i] = complex(w, 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, err
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return nil, err
	}

	bins := fftSize/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	for i := 0; i < bins; i++ {
		re[i] = real(out[i])
		im[i] = imag(out[i])
	}

	mag := make([]float64, bins)
	vecmath.Magnitude(mag, re, im)
	return mag, nil
}
