package pim

import (
	"errors"
	"fmt"
)

// Gemv operand layout, each given as (w, h, c, n):
//
//	vector: (K, 1, C, N)
//	matrix: (K, M, C, 1)  shared by every item of the batch
//	output: (M, 1, C, N)
func checkGemvShapes(op string, out, vec, mat *Buffer) error {
	o, v, m := out.Shape, vec.Shape, mat.Shape
	var msg string
	switch {
	case m.N != 1:
		msg = fmt.Sprintf("matrix batch must be 1, got %d", m.N)
	case o.N != v.N:
		msg = fmt.Sprintf("output batch %d != vector batch %d", o.N, v.N)
	case m.C != v.C || o.C != v.C:
		msg = fmt.Sprintf("channel mismatch: output %d, vector %d, matrix %d", o.C, v.C, m.C)
	case m.W != v.W:
		msg = fmt.Sprintf("inner dimension mismatch: matrix %d, vector %d", m.W, v.W)
	case o.W != m.H:
		msg = fmt.Sprintf("output width %d != matrix height %d", o.W, m.H)
	case o.H != v.H:
		msg = fmt.Sprintf("output height %d != vector height %d", o.H, v.H)
	case v.H != 1 || o.H != 1:
		msg = "vector and output height must be 1 (GEMM is not supported)"
	default:
		return nil
	}
	return NewOperationError(op, msg)
}

// gemv computes out[n,c,m] = sum_k mat[c,m,k] * vec[n,c,k] with an fp16
// accumulator that starts at +0 and rounds after every product and sum,
// k ascending.
func gemv(out, vec, mat *Buffer) {
	o, v, w := out.Half(), vec.Half(), mat.Half()
	os, vs, ms := out.Shape, vec.Shape, mat.Shape
	k := int(vs.W)
	for n := 0; n < int(os.N); n++ {
		for c := 0; c < int(os.C); c++ {
			vecRow := vs.Offset(n, c, 0, 0)
			for m := 0; m < int(os.W); m++ {
				matRow := ms.Offset(0, c, m, 0)
				acc := halfZero
				for i := 0; i < k; i++ {
					acc = halfAdd(acc, halfMul(w.Get(matRow+i), v.Get(vecRow+i)))
				}
				o.Set(os.Offset(n, c, 0, m), acc)
			}
		}
	}
}

// Gemv multiplies every vector of the batch by the shared matrix.
func (rt *Runtime) Gemv(out, vec, mat *Buffer, opts ...ExecOption) error {
	rt.execOptions("Gemv", opts)
	if err := checkOperands("Gemv", out, vec, mat); err != nil {
		return err
	}
	if err := checkGemvShapes("Gemv", out, vec, mat); err != nil {
		return err
	}
	gemv(out, vec, mat)
	return nil
}

// GemvAdd computes out = out + Gemv(vec, mat) through a scratch buffer
// shaped like out. The scratch buffer is released on every path.
func (rt *Runtime) GemvAdd(out, vec, mat *Buffer, opts ...ExecOption) (err error) {
	rt.execOptions("GemvAdd", opts)
	if out == nil {
		return &Error{Status: OperationError, Op: "GemvAdd", Message: "output is nil", Err: ErrNilBuffer}
	}

	tmp := newBuffer(out.MemType, out.Shape, out.ShapeReal, out.Precision)
	if err := tmp.attach(rt.alloc, nil); err != nil {
		return err
	}
	clear(tmp.data)
	defer func() {
		if ferr := tmp.release(); ferr != nil {
			err = errors.Join(err, NewAllocError("GemvAdd", "scratch release failed", ferr))
		}
	}()

	return rt.runStages("GemvAdd", []stage{
		{"gemv", func() error { return rt.Gemv(tmp, vec, mat) }},
		{"add", func() error { return rt.Add(out, out, tmp) }},
	})
}

// GemvAddBias computes out = Gemv(vec, mat) + bias and, when relu is set,
// applies Relu to the result. Stages run in place on out.
func (rt *Runtime) GemvAddBias(out, vec, mat, bias *Buffer, relu bool, opts ...ExecOption) error {
	rt.execOptions("GemvAddBias", opts)
	stages := []stage{
		{"gemv", func() error { return rt.Gemv(out, vec, mat) }},
		{"add", func() error { return rt.Add(out, out, bias) }},
	}
	if relu {
		stages = append(stages, stage{"relu", func() error { return rt.Relu(out, out) }})
	}
	return rt.runStages("GemvAddBias", stages)
}

type stage struct {
	name string
	run  func() error
}

// runStages executes stages in order under the configured StagePolicy.
// FailFast returns the first stage error. Accumulate keeps going and
// returns every stage error joined; out may then be partially updated.
func (rt *Runtime) runStages(op string, stages []stage) error {
	var errs []error
	for _, s := range stages {
		if err := s.run(); err != nil {
			err = wrapOperation(op, s.name, err)
			if rt.cfg.StagePolicy == FailFast {
				return err
			}
			rt.log.Debug("stage failed, continuing", "op", op, "stage", s.name, "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
