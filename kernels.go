package pim

import "fmt"

// checkOperands rejects nil buffers, buffers without memory and non-FP16
// operands. It runs before any output byte is written.
func checkOperands(op string, bos ...*Buffer) error {
	for i, bo := range bos {
		if bo == nil {
			return &Error{Status: OperationError, Op: op, Message: fmt.Sprintf("operand %d is nil", i), Err: ErrNilBuffer}
		}
		if bo.data == nil {
			return &Error{Status: OperationError, Op: op, Message: fmt.Sprintf("operand %d has no data", i), Err: ErrNullData}
		}
		if bo.Precision != FP16 {
			return &Error{Status: OperationError, Op: op, Message: fmt.Sprintf("operand %d is %s", i, bo.Precision), Err: ErrPrecision}
		}
	}
	return nil
}

// checkSameSize rejects operands whose byte sizes differ from the first.
func checkSameSize(op string, bos ...*Buffer) error {
	for _, bo := range bos[1:] {
		if bo.size != bos[0].size {
			return &Error{
				Status:  OperationError,
				Op:      op,
				Message: fmt.Sprintf("size mismatch: %d vs %d bytes", bos[0].size, bo.size),
				Err:     ErrSizeMismatch,
			}
		}
	}
	return nil
}

// elementwise applies fn to a and b element by element into out.
// Output and inputs may alias.
func elementwise(out, a, b HalfSlice, n int, fn func(x, y Half) Half) {
	for i := 0; i < n; i++ {
		out.Set(i, fn(a.Get(i), b.Get(i)))
	}
}

func (rt *Runtime) binary(op string, out, a, b *Buffer, fn func(x, y Half) Half, opts []ExecOption) error {
	rt.execOptions(op, opts)
	if err := checkOperands(op, out, a, b); err != nil {
		return err
	}
	if err := checkSameSize(op, out, a, b); err != nil {
		return err
	}
	elementwise(out.Half(), a.Half(), b.Half(), out.Elements(), fn)
	return nil
}

func (rt *Runtime) scalar(op string, out *Buffer, s Half, vec *Buffer, fn func(x, y Half) Half, opts []ExecOption) error {
	rt.execOptions(op, opts)
	if err := checkOperands(op, out, vec); err != nil {
		return err
	}
	if err := checkSameSize(op, out, vec); err != nil {
		return err
	}
	o, v := out.Half(), vec.Half()
	for i := 0; i < out.Elements(); i++ {
		o.Set(i, fn(v.Get(i), s))
	}
	return nil
}

// Add computes out[i] = a[i] + b[i]
func (rt *Runtime) Add(out, a, b *Buffer, opts ...ExecOption) error {
	return rt.binary("Add", out, a, b, halfAdd, opts)
}

// AddScalar computes out[i] = vec[i] + s
func (rt *Runtime) AddScalar(out *Buffer, s Half, vec *Buffer, opts ...ExecOption) error {
	return rt.scalar("AddScalar", out, s, vec, halfAdd, opts)
}

// Mul computes out[i] = a[i] * b[i]
func (rt *Runtime) Mul(out, a, b *Buffer, opts ...ExecOption) error {
	return rt.binary("Mul", out, a, b, halfMul, opts)
}

// MulScalar computes out[i] = vec[i] * s
func (rt *Runtime) MulScalar(out *Buffer, s Half, vec *Buffer, opts ...ExecOption) error {
	return rt.scalar("MulScalar", out, s, vec, halfMul, opts)
}

// Relu computes out[i] = in[i] when the sign bit of in[i] is clear and +0
// otherwise. Negative zero and negative NaN map to +0.
func (rt *Runtime) Relu(out, in *Buffer, opts ...ExecOption) error {
	rt.execOptions("Relu", opts)
	if err := checkOperands("Relu", out, in); err != nil {
		return err
	}
	if err := checkSameSize("Relu", out, in); err != nil {
		return err
	}
	o, x := out.Half(), in.Half()
	for i := 0; i < out.Elements(); i++ {
		v := x.Get(i)
		if v.Signbit() {
			v = halfZero
		}
		o.Set(i, v)
	}
	return nil
}

// Dummy is an empty kernel kept for API parity.
func (rt *Runtime) Dummy(opts ...ExecOption) error {
	rt.execOptions("Dummy", opts)
	return nil
}
