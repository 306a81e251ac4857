package pim

// OpType tags the operation a descriptor was created for
type OpType int

const (
	OpElementAdd OpType = iota
	OpElementMul
	OpRelu
	OpGemv
	OpBatchNorm
	OpCopy
	OpDummy
)

// String returns the op type name
func (o OpType) String() string {
	switch o {
	case OpElementAdd:
		return "ElementAdd"
	case OpElementMul:
		return "ElementMul"
	case OpRelu:
		return "Relu"
	case OpGemv:
		return "Gemv"
	case OpBatchNorm:
		return "BatchNorm"
	case OpCopy:
		return "Copy"
	case OpDummy:
		return "Dummy"
	default:
		return "Unknown"
	}
}

// MemFlag names the role a buffer plays in an operation. Hardware backends
// use it to pick a padded layout; the host emulation accepts it and keeps
// the descriptor's layout.
type MemFlag int

const (
	ElementOp MemFlag = iota
	GemvInput
	GemvWeight
	GemvOutput
	GemvWeightT
)

// Descriptor is a shape template from which role-consistent buffers for
// an operation's operands are created. It owns no memory.
type Descriptor struct {
	Shape     Shape // logical shape
	ShapeReal Shape // allocated (padded) shape
	Precision Precision
	OpType    OpType
}

// ShapeFor returns the logical and allocated shapes a buffer in role flag
// should have. Both are the descriptor's shapes regardless of role.
func (d *Descriptor) ShapeFor(flag MemFlag) (logical, allocated Shape) {
	return d.Shape, d.ShapeReal
}

func newDescriptor(n, c, h, w int, p Precision, op OpType) *Descriptor {
	s := NewShape(n, c, h, w)
	return &Descriptor{Shape: s, ShapeReal: s, Precision: p, OpType: op}
}
