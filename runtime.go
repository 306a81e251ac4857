package pim

import (
	"fmt"
	"log/slog"
	"sync/atomic"
)

// RuntimeType selects the host runtime a hardware backend would drive.
// The emulation accepts every type.
type RuntimeType int

const (
	RuntimeHIP RuntimeType = iota
	RuntimeOpenCL
	RuntimeHost
)

// String returns the runtime type name
func (r RuntimeType) String() string {
	switch r {
	case RuntimeHIP:
		return "HIP"
	case RuntimeOpenCL:
		return "OpenCL"
	case RuntimeHost:
		return "Host"
	default:
		return "Unknown"
	}
}

// Device describes the emulated PIM device and the host it runs on
type Device struct {
	ID       int          // Device identifier
	Name     string       // Human-readable device name
	Host     HostFeatures // Host capabilities used by the emulation
	MemLimit int64        // Live memory limit of the default pool, 0 if custom
}

// Capabilities declares what execution modes the runtime honours
type Capabilities struct {
	// Async reports whether non-blocking requests may return before the
	// work is done. The host emulation is synchronous-only.
	Async bool
	// Precisions lists element types the kernels accept
	Precisions []Precision
}

// Stream is an execution queue handle. Work submitted with OnStream
// completes before the submitting call returns, so a Stream never has
// pending work.
type Stream struct {
	id int64
}

// ID returns the stream identifier
func (s *Stream) ID() int64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Runtime is an emulated PIM runtime instance. Its methods are safe for
// concurrent use on distinct buffers.
type Runtime struct {
	cfg      Config
	alloc    Allocator
	log      *slog.Logger
	streamID atomic.Int64
	device   atomic.Int64
}

// New creates a runtime with cfg; zero fields take their defaults.
func New(cfg Config) *Runtime {
	cfg = cfg.withDefaults()
	return &Runtime{
		cfg:   cfg,
		alloc: cfg.Allocator,
		log:   cfg.Logger,
	}
}

// Config returns the runtime configuration
func (rt *Runtime) Config() Config {
	return rt.cfg
}

// Allocator returns the allocator backing the runtime
func (rt *Runtime) Allocator() Allocator {
	return rt.alloc
}

// Initialize prepares the runtime. There is nothing to set up on the host.
func (rt *Runtime) Initialize(kind RuntimeType, p Precision) error {
	rt.log.Debug("initialize", "runtime", kind.String(), "precision", p.String())
	return nil
}

// Deinitialize tears the runtime down. There is nothing to release.
func (rt *Runtime) Deinitialize() error {
	rt.log.Debug("deinitialize")
	return nil
}

// SetDevice selects the active device. Every id is accepted.
func (rt *Runtime) SetDevice(id int) error {
	rt.log.Debug("set device", "id", id)
	rt.device.Store(int64(id))
	return nil
}

// GetDevice returns the emulated device description
func (rt *Runtime) GetDevice() *Device {
	d := &Device{
		ID:   int(rt.device.Load()),
		Name: DeviceName,
		Host: hostFeatures,
	}
	if _, ok := rt.alloc.(*MemoryPool); ok {
		d.MemLimit = rt.cfg.MemoryLimit
	}
	return d
}

// Capabilities reports the execution modes of the runtime
func (rt *Runtime) Capabilities() Capabilities {
	return Capabilities{Async: false, Precisions: []Precision{FP16}}
}

// CreateStream returns a new stream handle
func (rt *Runtime) CreateStream() *Stream {
	return &Stream{id: rt.streamID.Add(1)}
}

// Synchronize waits for all work on stream. Work never outlives the
// call that submitted it, so this returns immediately.
func (rt *Runtime) Synchronize(stream *Stream) error {
	return nil
}

// ExecOption configures a single kernel call
type ExecOption func(*execConfig)

type execConfig struct {
	nonBlocking bool
	stream      *Stream
}

// NonBlocking requests asynchronous execution. The host emulation
// completes the call before returning regardless.
func NonBlocking() ExecOption {
	return func(c *execConfig) { c.nonBlocking = true }
}

// OnStream submits the call to stream
func OnStream(s *Stream) ExecOption {
	return func(c *execConfig) { c.stream = s }
}

func (rt *Runtime) execOptions(op string, opts []ExecOption) execConfig {
	var c execConfig
	for _, o := range opts {
		o(&c)
	}
	if c.nonBlocking {
		rt.log.Debug("non-blocking execution requested, running synchronously",
			"op", op, "stream", c.stream.ID())
	}
	return c
}

// CreateBo creates a buffer of shape (n, c, h, w) stored at precision p.
// A non-nil userPtr is borrowed and must hold at least the buffer size;
// otherwise memory is allocated now.
func (rt *Runtime) CreateBo(w, h, c, n int, p Precision, memType MemType, userPtr []byte) (*Buffer, error) {
	if err := checkExtents("CreateBo", n, c, h, w); err != nil {
		return nil, err
	}
	s := NewShape(n, c, h, w)
	return rt.createBo(s, s, p, memType, userPtr)
}

// CreateBoFromDesc creates a buffer shaped by desc for role flag.
func (rt *Runtime) CreateBoFromDesc(desc *Descriptor, memType MemType, flag MemFlag, userPtr []byte) (*Buffer, error) {
	if desc == nil {
		return nil, NewAllocError("CreateBoFromDesc", "nil descriptor", nil)
	}
	logical, allocated := desc.ShapeFor(flag)
	return rt.createBo(logical, allocated, desc.Precision, memType, userPtr)
}

func (rt *Runtime) createBo(shape, shapeReal Shape, p Precision, memType MemType, userPtr []byte) (*Buffer, error) {
	bo := newBuffer(memType, shape, shapeReal, p)
	if err := bo.attach(rt.alloc, userPtr); err != nil {
		rt.log.Debug("create buffer failed", "shape", shape.String(), "bytes", bo.size, "err", err)
		return nil, err
	}
	return bo, nil
}

// DestroyBo releases bo. Owned memory is freed; borrowed memory is left
// to the caller. Destroying a buffer twice panics.
func (rt *Runtime) DestroyBo(bo *Buffer) error {
	if bo.destroyed {
		panic("pim: buffer destroyed twice")
	}
	bo.destroyed = true
	err := bo.release()
	bo.data = nil
	if err != nil {
		return NewAllocError("DestroyBo", "release failed", err)
	}
	return nil
}

// AllocBo frees any memory bo owns and allocates fresh memory for its
// current shape and precision. The buffer is Owned afterwards. If Shape
// was changed since the last allocation, ShapeReal is reset to it.
func (rt *Runtime) AllocBo(bo *Buffer) error {
	if err := bo.release(); err != nil {
		return NewAllocError("AllocBo", "release failed", err)
	}
	bo.data = nil
	if !bo.ShapeReal.SameExtents(bo.Shape) {
		rt.log.Debug("buffer reshaped", "from", bo.ShapeReal.String(), "to", bo.Shape.String())
		bo.ShapeReal = bo.Shape
	}
	if err := bo.attach(rt.alloc, nil); err != nil {
		rt.log.Debug("allocation refused", "buffer", bo.String(), "err", err)
		return err
	}
	return nil
}

// FreeBo releases memory bo owns. The buffer keeps its shape and size;
// Data returns nil until AllocBo is called again.
func (rt *Runtime) FreeBo(bo *Buffer) error {
	if err := bo.release(); err != nil {
		return NewAllocError("FreeBo", "release failed", err)
	}
	return nil
}

// AllocMemory allocates size raw bytes
func (rt *Runtime) AllocMemory(size int, memType MemType) ([]byte, error) {
	p, err := rt.alloc.Alloc(size)
	if err != nil {
		rt.log.Debug("allocation refused", "bytes", size, "mem", memType.String(), "err", err)
		return nil, NewAllocError("AllocMemory", fmt.Sprintf("cannot allocate %d bytes", size), err)
	}
	return p, nil
}

// FreeMemory releases raw memory obtained from AllocMemory
func (rt *Runtime) FreeMemory(p []byte, memType MemType) error {
	if err := rt.alloc.Free(p); err != nil {
		return NewAllocError("FreeMemory", "release failed", err)
	}
	return nil
}

// CreateDesc creates a descriptor for an (n, c, h, w) operand of op
func (rt *Runtime) CreateDesc(n, c, h, w int, p Precision, op OpType) (*Descriptor, error) {
	if err := checkExtents("CreateDesc", n, c, h, w); err != nil {
		return nil, err
	}
	return newDescriptor(n, c, h, w, p, op), nil
}

// DestroyDesc releases a descriptor. Descriptors own no memory.
func (rt *Runtime) DestroyDesc(desc *Descriptor) error {
	return nil
}
