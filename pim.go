package pim

import "sync"

// Global runtime state
var (
	defaultRuntime *Runtime
	initOnce       sync.Once
)

func init() {
	initOnce.Do(func() {
		defaultRuntime = New(DefaultConfig())
	})
}

// Default returns the process-wide runtime used by the package-level functions.
func Default() *Runtime {
	return defaultRuntime
}

// Initialize prepares the default runtime (no-op).
//
// Example:
//
//	pim.Initialize(pim.RuntimeHIP, pim.FP16)
//	defer pim.Deinitialize()
func Initialize(kind RuntimeType, p Precision) error {
	return defaultRuntime.Initialize(kind, p)
}

// Deinitialize tears down the default runtime (no-op).
func Deinitialize() error {
	return defaultRuntime.Deinitialize()
}

// SetDevice selects the active device (no-op).
func SetDevice(id int) error {
	return defaultRuntime.SetDevice(id)
}

// GetDevice returns the emulated device description.
func GetDevice() *Device {
	return defaultRuntime.GetDevice()
}

// GetDeviceCount returns the number of emulated devices.
func GetDeviceCount() int {
	return MaxDevices
}

// CreateBo creates a buffer on the default runtime.
//
// Example:
//
//	in, err := pim.CreateBo(256, 1, 1, 1, pim.FP16, pim.MemHost, nil)
//	if err != nil {
//	    return err
//	}
//	defer pim.DestroyBo(in)
func CreateBo(w, h, c, n int, p Precision, memType MemType, userPtr []byte) (*Buffer, error) {
	return defaultRuntime.CreateBo(w, h, c, n, p, memType, userPtr)
}

// CreateBoFromDesc creates a buffer shaped by desc on the default runtime.
func CreateBoFromDesc(desc *Descriptor, memType MemType, flag MemFlag, userPtr []byte) (*Buffer, error) {
	return defaultRuntime.CreateBoFromDesc(desc, memType, flag, userPtr)
}

// DestroyBo releases a buffer created on the default runtime.
func DestroyBo(bo *Buffer) error {
	return defaultRuntime.DestroyBo(bo)
}

// AllocBo reallocates a buffer's memory on the default runtime.
func AllocBo(bo *Buffer) error {
	return defaultRuntime.AllocBo(bo)
}

// FreeBo releases a buffer's owned memory on the default runtime.
func FreeBo(bo *Buffer) error {
	return defaultRuntime.FreeBo(bo)
}

// AllocMemory allocates raw memory on the default runtime.
func AllocMemory(size int, memType MemType) ([]byte, error) {
	return defaultRuntime.AllocMemory(size, memType)
}

// FreeMemory releases raw memory on the default runtime.
func FreeMemory(p []byte, memType MemType) error {
	return defaultRuntime.FreeMemory(p, memType)
}

// CreateDesc creates a descriptor.
func CreateDesc(n, c, h, w int, p Precision, op OpType) (*Descriptor, error) {
	return defaultRuntime.CreateDesc(n, c, h, w, p, op)
}

// DestroyDesc releases a descriptor.
func DestroyDesc(desc *Descriptor) error {
	return defaultRuntime.DestroyDesc(desc)
}

// CopyMemory copies size raw bytes.
func CopyMemory(dst, src []byte, size int, kind MemcpyKind) error {
	return defaultRuntime.CopyMemory(dst, src, size, kind)
}

// CopyBo copies a whole buffer.
func CopyBo(dst, src *Buffer, kind MemcpyKind) error {
	return defaultRuntime.CopyBo(dst, src, kind)
}

// CopyRect3D performs a rectangular strided copy.
func CopyRect3D(p *Copy3D) error {
	return defaultRuntime.CopyRect3D(p)
}

// Add computes out = a + b on the default runtime.
func Add(out, a, b *Buffer, opts ...ExecOption) error {
	return defaultRuntime.Add(out, a, b, opts...)
}

// AddScalar computes out = vec + s on the default runtime.
func AddScalar(out *Buffer, s Half, vec *Buffer, opts ...ExecOption) error {
	return defaultRuntime.AddScalar(out, s, vec, opts...)
}

// Mul computes out = a * b on the default runtime.
func Mul(out, a, b *Buffer, opts ...ExecOption) error {
	return defaultRuntime.Mul(out, a, b, opts...)
}

// MulScalar computes out = vec * s on the default runtime.
func MulScalar(out *Buffer, s Half, vec *Buffer, opts ...ExecOption) error {
	return defaultRuntime.MulScalar(out, s, vec, opts...)
}

// Relu computes out = relu(in) on the default runtime.
func Relu(out, in *Buffer, opts ...ExecOption) error {
	return defaultRuntime.Relu(out, in, opts...)
}

// Gemv computes out = mat · vec on the default runtime.
func Gemv(out, vec, mat *Buffer, opts ...ExecOption) error {
	return defaultRuntime.Gemv(out, vec, mat, opts...)
}

// GemvAdd computes out += mat · vec on the default runtime.
func GemvAdd(out, vec, mat *Buffer, opts ...ExecOption) error {
	return defaultRuntime.GemvAdd(out, vec, mat, opts...)
}

// GemvAddBias computes out = mat · vec + bias, optionally followed by Relu.
func GemvAddBias(out, vec, mat, bias *Buffer, relu bool, opts ...ExecOption) error {
	return defaultRuntime.GemvAddBias(out, vec, mat, bias, relu, opts...)
}

// BatchNorm normalizes in per channel on the default runtime.
func BatchNorm(out, in, beta, gamma, mean, variance *Buffer, epsilon float64, opts ...ExecOption) error {
	return defaultRuntime.BatchNorm(out, in, beta, gamma, mean, variance, epsilon, opts...)
}

// CreateStream returns a stream handle on the default runtime.
func CreateStream() *Stream {
	return defaultRuntime.CreateStream()
}

// Synchronize waits for stream (no-op).
func Synchronize(stream *Stream) error {
	return defaultRuntime.Synchronize(stream)
}
