package pim

import "fmt"

// BatchNorm normalizes in per channel into out:
//
//	out[n,c,i] = gamma[c] * ((in[n,c,i] - mean[c]) / sqrt(variance[c] + epsilon)) + beta[c]
//
// Layout, each given as (w, h, c, n): in and out (W, H, C, N); beta, gamma,
// mean and variance (1, 1, C, 1). Only the parameters' channel count is
// checked; they are read as C consecutive values. Every operation rounds
// to fp16, epsilon included.
func (rt *Runtime) BatchNorm(out, in, beta, gamma, mean, variance *Buffer, epsilon float64, opts ...ExecOption) error {
	rt.execOptions("BatchNorm", opts)
	if err := checkOperands("BatchNorm", out, in, beta, gamma, mean, variance); err != nil {
		return err
	}
	if err := checkSameSize("BatchNorm", out, in); err != nil {
		return err
	}
	channels := in.Shape.C
	for _, p := range []struct {
		name string
		bo   *Buffer
	}{{"beta", beta}, {"gamma", gamma}, {"mean", mean}, {"variance", variance}} {
		if p.bo.Shape.C != channels {
			return NewOperationError("BatchNorm",
				fmt.Sprintf("%s has %d channels, input has %d", p.name, p.bo.Shape.C, channels))
		}
		if p.bo.Elements() < int(channels) {
			return NewOperationError("BatchNorm",
				fmt.Sprintf("%s holds %d values, need %d", p.name, p.bo.Elements(), channels))
		}
	}

	eps := HalfFromFloat64(epsilon)
	x, o := in.Half(), out.Half()
	b, g, mu, v := beta.Half(), gamma.Half(), mean.Half(), variance.Half()
	s := in.Shape
	spatial := int(s.H) * int(s.W)
	for n := 0; n < int(s.N); n++ {
		for c := 0; c < int(s.C); c++ {
			base := s.Offset(n, c, 0, 0)
			bc, gc, mc := b.Get(c), g.Get(c), mu.Get(c)
			divisor := halfSqrt(halfAdd(v.Get(c), eps))
			for i := 0; i < spatial; i++ {
				norm := halfDiv(halfSub(x.Get(base+i), mc), divisor)
				o.Set(base+i, halfAdd(halfMul(gc, norm), bc))
			}
		}
	}
	return nil
}
