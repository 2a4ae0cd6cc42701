package tensor

import "errors"

// ErrPadTooLarge is returned when reflect padding reaches past the first
// or last sample of the time axis.
var ErrPadTooLarge = errors.New("tensor: reflect padding must be shorter than the time axis")

// ReflectPad returns a copy of x with pad samples of reflection padding
// on both ends of the time axis. The edge sample itself is not repeated:
// [a b c d] padded by 2 becomes [c b a b c d c b].
//
// pad must satisfy 0 <= pad < x.Length(); pad == 0 returns a plain copy.
func ReflectPad(x *Tensor, pad int) (*Tensor, error) {
	if pad < 0 || pad >= x.length {
		return nil, ErrPadTooLarge
	}

	out, err := New(x.batch, x.channels, x.length+2*pad)
	if err != nil {
		return nil, err
	}

	n := x.length
	for b := 0; b < x.batch; b++ {
		for c := 0; c < x.channels; c++ {
			src := x.Channel(b, c)
			dst := out.Channel(b, c)

			copy(dst[pad:pad+n], src)
			for i := 0; i < pad; i++ {
				dst[pad-1-i] = src[i+1]
				dst[pad+n+i] = src[n-2-i]
			}
		}
	}

	return out, nil
}
