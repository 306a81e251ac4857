// Package pim emulates a Processing-in-Memory accelerator runtime on the host.
//
// It provides the buffer/memory model of a PIM runtime (buffer objects,
// descriptors, raw allocations), a memory copy engine with flat, whole-buffer
// and 3D strided rectangular copies, and the fixed kernel library of the
// hardware: elementwise Add/Mul, ReLU, GEMV, GEMV+Add, GEMV+bias(+ReLU) and
// batch normalization on half-precision tensors.
//
// Tensors use the (N, C, H, W) convention with W fastest-varying. Kernels
// round every operation to fp16 in the same order as the hardware reference,
// so code written for a real backend gets bit-compatible results here.
//
// Every call is synchronous. NonBlocking and Synchronize exist so code
// written against an asynchronous backend runs unmodified.
//
// Example usage:
//
//	rt := pim.New(pim.DefaultConfig())
//	in, _ := rt.CreateBo(256, 1, 1, 1, pim.FP16, pim.MemHost, nil)
//	w, _ := rt.CreateBo(256, 4096, 1, 1, pim.FP16, pim.MemPIM, nil)
//	out, _ := rt.CreateBo(4096, 1, 1, 1, pim.FP16, pim.MemHost, nil)
//	defer rt.DestroyBo(in)
//	defer rt.DestroyBo(w)
//	defer rt.DestroyBo(out)
//
//	if err := rt.Gemv(out, in, w); err != nil {
//	    return err
//	}
package pim
