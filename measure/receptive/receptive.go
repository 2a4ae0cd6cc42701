// Package receptive measures discriminator stacks empirically: the
// effective receptive field of a stack via impulse probing, and the
// frequency selectivity of individual weight-normalized kernels.
//
// The impulse probe evaluates a stack on silence and on a centered unit
// impulse and compares the final logit maps. The influenced span of the
// difference is the stack's effective receptive footprint under its
// current weights, which the dilation rate widens without changing any
// output shape.
package receptive

import (
	"errors"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-gan/tensor"
)

// Errors returned by receptive field analysis.
var (
	ErrInvalidProbe = errors.New("receptive: probe channels and length must be positive")
	ErrNoOutput     = errors.New("receptive: evaluator returned no embeddings")
	ErrNoResponse   = errors.New("receptive: impulse produced no output difference")
)

// Evaluator is any discriminator branch producing an embedding
// sequence, the last element being the logit map.
type Evaluator interface {
	Evaluate(x *tensor.Tensor) ([]*tensor.Tensor, error)
}

// Metrics holds the result of an impulse probe.
type Metrics struct {
	InputLength  int // probe length in samples
	OutputLength int // logit map length
	Downsampling int // InputLength / OutputLength, rounded to nearest
	Center       int // logit index of peak influence
	Span         int // influenced logit samples
	InputSpan    int // Span projected back to input samples
}

// Analyzer probes an evaluator with a centered impulse.
type Analyzer struct {
	Channels int // probe channel count (q for band stacks, 1 for full-band)
	Length   int // probe length in samples

	// Threshold is the influence cutoff relative to the peak absolute
	// difference; zero selects 1e-9.
	Threshold float64
}

// NewAnalyzer creates an analyzer for the given probe shape.
func NewAnalyzer(channels, length int) *Analyzer {
	return &Analyzer{Channels: channels, Length: length}
}

// Analyze runs the impulse probe against d and returns the resulting
// metrics.
func (a *Analyzer) Analyze(d Evaluator) (Metrics, error) {
	if a.Channels <= 0 || a.Length <= 0 {
		return Metrics{}, ErrInvalidProbe
	}

	silence, err := tensor.New(1, a.Channels, a.Length)
	if err != nil {
		return Metrics{}, err
	}

	probe, err := tensor.New(1, a.Channels, a.Length)
	if err != nil {
		return Metrics{}, err
	}
	for c := 0; c < a.Channels; c++ {
		probe.Channel(0, c)[a.Length/2] = 1
	}

	base, err := a.finalMap(d, silence)
	if err != nil {
		return Metrics{}, err
	}

	excited, err := a.finalMap(d, probe)
	if err != nil {
		return Metrics{}, err
	}

	diff := make([]float64, len(base))
	for i := range diff {
		diff[i] = excited[i] - base[i]
	}

	peak := vecmath.MaxAbs(diff)
	if peak == 0 {
		return Metrics{}, ErrNoResponse
	}

	rel := a.Threshold
	if rel <= 0 {
		rel = 1e-9
	}
	cutoff := peak * rel

	first, last, center := -1, -1, 0
	for i, v := range diff {
		if v < 0 {
			v = -v
		}
		if v > cutoff {
			if first < 0 {
				first = i
			}
			last = i
		}
		if v == peak {
			center = i
		}
	}

	outLen := len(base)
	down := (a.Length + outLen/2) / outLen
	span := last - first + 1

	return Metrics{
		InputLength:  a.Length,
		OutputLength: outLen,
		Downsampling: down,
		Center:       center,
		Span:         span,
		InputSpan:    span * down,
	}, nil
}

// finalMap evaluates d on x and flattens the last embedding's single
// logit channel.
func (a *Analyzer) finalMap(d Evaluator, x *tensor.Tensor) ([]float64, error) {
	embeddings, err := d.Evaluate(x)
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, ErrNoOutput
	}

	final := embeddings[len(embeddings)-1]
	out := make([]float64, final.Length())
	copy(out, final.Channel(0, 0))
	return out, nil
}
