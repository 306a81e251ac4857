package pim

import (
	"encoding/binary"
	"math"

	"github.com/x448/float16"
)

// Half is an IEEE 754 binary16 value, the working precision of every kernel.
//
// Arithmetic on Half rounds each result to binary16 with round-to-nearest-even,
// matching hardware that has no wider accumulator. Each operation is evaluated
// in float32 and rounded once more to binary16; for +, -, *, / and sqrt the
// float32 intermediate has enough precision (24 >= 2*11+2 bits) that this
// double rounding always equals the correctly rounded binary16 result.
type Half = float16.Float16

// HalfFromFloat32 rounds f to the nearest binary16 value, ties to even.
func HalfFromFloat32(f float32) Half { return float16.Fromfloat32(f) }

// HalfFromBits reinterprets raw binary16 bits
func HalfFromBits(b uint16) Half { return float16.Frombits(b) }

// HalfFromFloat64 converts f to the nearest binary16 value.
//
// A direct float64->float32->binary16 conversion can double-round, so the
// float32 step rounds to odd: an inexact intermediate is nudged to its odd
// neighbour, which keeps the final rounding correct.
func HalfFromFloat64(f float64) Half {
	f32 := float32(f)
	if float64(f32) != f && !math.IsNaN(f) && !math.IsInf(float64(f32), 0) {
		bits := math.Float32bits(f32)
		if bits&1 == 0 {
			if math.Abs(float64(f32)) > math.Abs(f) {
				bits--
			} else {
				bits++
			}
			f32 = math.Float32frombits(bits)
		}
	}
	return float16.Fromfloat32(f32)
}

func halfAdd(a, b Half) Half { return float16.Fromfloat32(a.Float32() + b.Float32()) }
func halfSub(a, b Half) Half { return float16.Fromfloat32(a.Float32() - b.Float32()) }
func halfMul(a, b Half) Half { return float16.Fromfloat32(a.Float32() * b.Float32()) }
func halfDiv(a, b Half) Half { return float16.Fromfloat32(a.Float32() / b.Float32()) }

func halfSqrt(a Half) Half {
	return float16.Fromfloat32(float32(math.Sqrt(float64(a.Float32()))))
}

// halfZero is positive zero.
var halfZero = float16.Frombits(0)

// HalfSlice wraps a byte slice as little-endian Half values
type HalfSlice struct {
	data []byte
}

// NewHalfSlice creates a Half view of a byte slice
func NewHalfSlice(data []byte) HalfSlice {
	return HalfSlice{data: data}
}

// Len returns the number of Half elements
func (s HalfSlice) Len() int {
	return len(s.data) / 2
}

// Get returns the Half at index i
func (s HalfSlice) Get(i int) Half {
	return float16.Frombits(binary.LittleEndian.Uint16(s.data[i*2:]))
}

// Set sets the Half at index i
func (s HalfSlice) Set(i int, val Half) {
	binary.LittleEndian.PutUint16(s.data[i*2:], val.Bits())
}

// GetFloat32 returns the value at index i as float32
func (s HalfSlice) GetFloat32(i int) float32 {
	return s.Get(i).Float32()
}

// SetFloat32 stores val at index i, rounded to nearest even
func (s HalfSlice) SetFloat32(i int, val float32) {
	s.Set(i, float16.Fromfloat32(val))
}

// Fill sets every element to val
func (s HalfSlice) Fill(val Half) {
	for i := 0; i < s.Len(); i++ {
		s.Set(i, val)
	}
}

// Float32s returns a copy of the view as float32 values
func (s HalfSlice) Float32s() []float32 {
	out := make([]float32, s.Len())
	for i := range out {
		out[i] = s.GetFloat32(i)
	}
	return out
}

// CopyFromFloat32 rounds each value of src into the view
func (s HalfSlice) CopyFromFloat32(src []float32) {
	n := s.Len()
	if len(src) < n {
		n = len(src)
	}
	for i := 0; i < n; i++ {
		s.SetFloat32(i, src[i])
	}
}
