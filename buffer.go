package pim

import "fmt"

// Ownership records whether a buffer owns its memory.
type Ownership int

const (
	// Owned memory was allocated by the runtime and is released by it
	Owned Ownership = iota
	// Borrowed memory was supplied by the caller and is never released here
	Borrowed
)

// String returns the ownership name
func (o Ownership) String() string {
	if o == Borrowed {
		return "Borrowed"
	}
	return "Owned"
}

// Buffer binds a tensor's memory to its shape and precision metadata.
//
// Size always equals Shape.Elements() * ElementSize(Precision). Data is nil
// while the buffer holds no memory (after FreeBo or a refused allocation).
type Buffer struct {
	MemType   MemType
	Shape     Shape // logical shape
	ShapeReal Shape // allocated shape
	Precision Precision

	size      int
	data      []byte
	ownership Ownership
	alloc     Allocator
	destroyed bool
}

// Size returns the byte size of the buffer
func (b *Buffer) Size() int {
	return b.size
}

// Data returns the backing memory, or nil if none is held
func (b *Buffer) Data() []byte {
	return b.data
}

// Ownership reports whether the buffer owns its memory
func (b *Buffer) Ownership() Ownership {
	return b.ownership
}

// Elements returns the number of elements of the logical shape
func (b *Buffer) Elements() int {
	return b.Shape.Elements()
}

// Half returns a Half view of the backing memory
func (b *Buffer) Half() HalfSlice {
	return NewHalfSlice(b.data)
}

// String describes the buffer for logs
func (b *Buffer) String() string {
	return fmt.Sprintf("Buffer{%s %s %s %dB %s}", b.MemType, b.Shape, b.Precision, b.size, b.ownership)
}

func newBuffer(memType MemType, shape, shapeReal Shape, p Precision) *Buffer {
	return &Buffer{
		MemType:   memType,
		Shape:     shape,
		ShapeReal: shapeReal,
		Precision: p,
		size:      shape.Bytes(p),
	}
}

// attach binds memory to b: userPtr is borrowed, otherwise a fresh block is
// taken from alloc. On failure b is left without data and its size unchanged.
func (b *Buffer) attach(alloc Allocator, userPtr []byte) error {
	size := b.Shape.Bytes(b.Precision)
	if userPtr != nil {
		if len(userPtr) < size {
			return NewAllocError("CreateBo",
				fmt.Sprintf("user memory holds %d bytes, buffer needs %d", len(userPtr), size), nil)
		}
		b.data = userPtr[:size:size]
		b.ownership = Borrowed
		b.alloc = nil
		b.size = size
		return nil
	}
	data, err := alloc.Alloc(size)
	if err != nil {
		return NewAllocError("AllocBo", fmt.Sprintf("cannot allocate %d bytes", size), err)
	}
	b.data = data
	b.ownership = Owned
	b.alloc = alloc
	b.size = size
	return nil
}

// release frees Owned memory and drops the data reference. Borrowed memory
// is left to its owner and stays attached.
func (b *Buffer) release() error {
	if b.ownership == Borrowed || b.data == nil {
		return nil
	}
	err := b.alloc.Free(b.data)
	b.data = nil
	return err
}

// Bytes copies the buffer contents out. Useful for comparisons in tests.
func (b *Buffer) Bytes() []byte {
	if b.data == nil {
		return nil
	}
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}
