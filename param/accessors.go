package param

import (
	"github.com/gocap3d/c3d/dtype"
	"github.com/gocap3d/c3d/errs"
)

// Scalar accessors. Int8Value and Uint8Value return zero for an empty
// payload. The wider accessors assume the payload holds at least one element
// of the matching width: they slice the payload directly and panic when it
// is shorter than that width.

func (p *Param) Int8Value() int8   { return int8(p.byteAt(0)) }
func (p *Param) Uint8Value() uint8 { return p.byteAt(0) }

func (p *Param) Int16Value(dt dtype.Dtypes) int16   { return dt.Int16(p.Bytes[:2]) }
func (p *Param) Uint16Value(dt dtype.Dtypes) uint16 { return dt.Uint16(p.Bytes[:2]) }
func (p *Param) Int32Value(dt dtype.Dtypes) int32   { return dt.Int32(p.Bytes[:4]) }
func (p *Param) Uint32Value(dt dtype.Dtypes) uint32 { return dt.Uint32(p.Bytes[:4]) }

// Float32Value returns the parameter as a 32-bit float, routing through
// FloatCodec's DEC conversion when the processor format requires it.
func (p *Param) Float32Value(dt dtype.Dtypes) float32 { return dt.Float32(p.Bytes[:4]) }

func (p *Param) BytesValue() []byte { return p.Bytes }

func (p *Param) StringValue(dt dtype.Dtypes) string { return dt.DecodeString(p.Bytes) }

func (p *Param) byteAt(i int) byte {
	if i >= len(p.Bytes) {
		return 0
	}

	return p.Bytes[i]
}

// AsIntegerValue tolerates files that store frame counts as a float whose
// value happens to be integral, a quirk deliberately preserved rather than
// "fixed": if the payload is >= 4 bytes, it is read as a float32; when that
// float equals its own truncation it is returned as-is, otherwise the raw
// bytes are reinterpreted as a uint32. For 2 bytes a uint16 is returned, for
// 1 byte a uint8. Used only for start/end frame fields.
func (p *Param) AsIntegerValue(dt dtype.Dtypes) uint32 {
	switch {
	case len(p.Bytes) >= 4:
		v := dt.Float32(p.Bytes[:4])
		if float32(int32(v)) == v {
			return uint32(int32(v))
		}

		return dt.Uint32(p.Bytes[:4])
	case len(p.Bytes) >= 2:
		return uint32(dt.Uint16(p.Bytes[:2]))
	case len(p.Bytes) >= 1:
		return uint32(p.Bytes[0])
	default:
		return 0
	}
}

// Int8Array returns the payload reinterpreted as signed 8-bit integers.
func (p *Param) Int8Array() ([]int8, error) {
	if err := p.requireDims(); err != nil {
		return nil, err
	}
	out := make([]int8, len(p.Bytes))
	for i, b := range p.Bytes {
		out[i] = int8(b)
	}

	return out, nil
}

// Uint8Array returns the payload reinterpreted as unsigned 8-bit integers.
func (p *Param) Uint8Array() ([]uint8, error) {
	if err := p.requireDims(); err != nil {
		return nil, err
	}

	return p.Bytes, nil
}

// Int16Array returns the payload reinterpreted as signed 16-bit integers.
func (p *Param) Int16Array(dt dtype.Dtypes) ([]int16, error) {
	if err := p.requireDims(); err != nil {
		return nil, err
	}
	n := len(p.Bytes) / 2
	out := make([]int16, n)
	for i := range out {
		out[i] = dt.Int16(p.Bytes[i*2 : i*2+2])
	}

	return out, nil
}

// Uint16Array returns the payload reinterpreted as unsigned 16-bit integers.
func (p *Param) Uint16Array(dt dtype.Dtypes) ([]uint16, error) {
	if err := p.requireDims(); err != nil {
		return nil, err
	}
	n := len(p.Bytes) / 2
	out := make([]uint16, n)
	for i := range out {
		out[i] = dt.Uint16(p.Bytes[i*2 : i*2+2])
	}

	return out, nil
}

// Int32Array returns the payload reinterpreted as signed 32-bit integers.
func (p *Param) Int32Array(dt dtype.Dtypes) ([]int32, error) {
	if err := p.requireDims(); err != nil {
		return nil, err
	}
	n := len(p.Bytes) / 4
	out := make([]int32, n)
	for i := range out {
		out[i] = dt.Int32(p.Bytes[i*4 : i*4+4])
	}

	return out, nil
}

// Uint32Array returns the payload reinterpreted as unsigned 32-bit integers.
func (p *Param) Uint32Array(dt dtype.Dtypes) ([]uint32, error) {
	if err := p.requireDims(); err != nil {
		return nil, err
	}
	n := len(p.Bytes) / 4
	out := make([]uint32, n)
	for i := range out {
		out[i] = dt.Uint32(p.Bytes[i*4 : i*4+4])
	}

	return out, nil
}

// Int64Array returns the payload reinterpreted as signed 64-bit integers.
func (p *Param) Int64Array(dt dtype.Dtypes) ([]int64, error) {
	if err := p.requireDims(); err != nil {
		return nil, err
	}
	n := len(p.Bytes) / 8
	out := make([]int64, n)
	for i := range out {
		out[i] = dt.Int64(p.Bytes[i*8 : i*8+8])
	}

	return out, nil
}

// Uint64Array returns the payload reinterpreted as unsigned 64-bit integers.
func (p *Param) Uint64Array(dt dtype.Dtypes) ([]uint64, error) {
	if err := p.requireDims(); err != nil {
		return nil, err
	}
	n := len(p.Bytes) / 8
	out := make([]uint64, n)
	for i := range out {
		out[i] = dt.Uint64(p.Bytes[i*8 : i*8+8])
	}

	return out, nil
}

// Float32Array returns the payload reinterpreted as 32-bit floats, applying
// the DEC bulk conversion when needed.
func (p *Param) Float32Array(dt dtype.Dtypes) ([]float32, error) {
	if err := p.requireDims(); err != nil {
		return nil, err
	}

	return dt.Float32Array(p.Bytes), nil
}

// Float64Array returns the payload reinterpreted as 64-bit floats. DEC has
// no 64-bit float support and returns ErrUnsupportedEncoding.
func (p *Param) Float64Array(dt dtype.Dtypes) ([]float64, error) {
	if err := p.requireDims(); err != nil {
		return nil, err
	}

	return dt.Float64Array(p.Bytes)
}

// FloatArray dispatches to Float32Array or Float64Array based on
// BytesPerElement.
func (p *Param) FloatArray(dt dtype.Dtypes) ([]float64, error) {
	switch p.BytesPerElement {
	case 4:
		f32, err := p.Float32Array(dt)
		if err != nil {
			return nil, err
		}
		out := make([]float64, len(f32))
		for i, v := range f32 {
			out[i] = float64(v)
		}

		return out, nil
	case 8:
		return p.Float64Array(dt)
	default:
		return nil, errs.ErrTypeMismatch
	}
}

// BytesArray splits the payload into one word per innermost dimension entry:
// Dimensions[0] is the word length, and every Dimensions[0]-byte chunk of
// Bytes becomes one element, regardless of how many further dimensions
// describe the array's shape. This applies uniformly for one or more
// dimensions — unlike some historical C3D readers, a single-dimension
// parameter is not special-cased to return the whole blob as one element.
func (p *Param) BytesArray() ([][]byte, error) {
	if err := p.requireDims(); err != nil {
		return nil, err
	}

	wordLen := int(p.Dimensions[0])
	if wordLen == 0 {
		return [][]byte{}, nil
	}

	n := len(p.Bytes) / wordLen
	out := make([][]byte, n)
	for i := range out {
		out[i] = p.Bytes[i*wordLen : (i+1)*wordLen]
	}

	return out, nil
}

// StringArray decodes each word of BytesArray via dt.DecodeString.
func (p *Param) StringArray(dt dtype.Dtypes) ([]string, error) {
	words, err := p.BytesArray()
	if err != nil {
		return nil, err
	}

	out := make([]string, len(words))
	for i, w := range words {
		out[i] = dt.DecodeString(w)
	}

	return out, nil
}
