// Package dtype selects the scalar decoders for one of the three
// processor formats historically used to write C3D files: Intel,
// DEC, and SGI/MIPS. Intel and DEC both store integers little-endian;
// MIPS stores them big-endian. Floats require processor-specific
// handling regardless of integer endianness, since DEC single
// precision is not IEEE-754 at the bit level (see the floatcodec
// package).
package dtype

import (
	"unicode/utf8"

	"github.com/gocap3d/c3d/endian"
	"github.com/gocap3d/c3d/errs"
	"github.com/gocap3d/c3d/floatcodec"
)

// Processor byte values found at offset 3 of the parameter section prologue.
const (
	ProcessorIntel = 84
	ProcessorDEC   = 85
	ProcessorMIPS  = 86
)

// Dtypes is a processor-typed set of scalar decoders, constructed once the
// processor byte has been read from the parameter section prologue.
type Dtypes struct {
	processor byte
	engine    endian.EndianEngine
}

// New constructs Dtypes for the given processor byte (84 = Intel, 85 = DEC,
// 86 = MIPS).
func New(processor byte) (Dtypes, error) {
	switch processor {
	case ProcessorIntel, ProcessorDEC:
		return Dtypes{processor: processor, engine: endian.GetLittleEndianEngine()}, nil
	case ProcessorMIPS:
		return Dtypes{processor: processor, engine: endian.GetBigEndianEngine()}, nil
	default:
		return Dtypes{}, errs.ErrUnsupportedProcessor
	}
}

// Processor returns the raw processor byte this Dtypes was built from.
func (d Dtypes) Processor() byte { return d.processor }

// IsIntel reports whether this is the Intel processor format.
func (d Dtypes) IsIntel() bool { return d.processor == ProcessorIntel }

// IsDEC reports whether this is the DEC processor format.
func (d Dtypes) IsDEC() bool { return d.processor == ProcessorDEC }

// IsMIPS reports whether this is the SGI/MIPS processor format.
func (d Dtypes) IsMIPS() bool { return d.processor == ProcessorMIPS }

// ProcessorName returns a human-readable processor name, for diagnostics.
func (d Dtypes) ProcessorName() string {
	switch d.processor {
	case ProcessorIntel:
		return "PROCESSOR_INTEL"
	case ProcessorDEC:
		return "PROCESSOR_DEC"
	case ProcessorMIPS:
		return "PROCESSOR_MIPS"
	default:
		return "PROCESSOR_UNKNOWN"
	}
}

// Engine returns the integer endianness for this processor format.
func (d Dtypes) Engine() endian.EndianEngine { return d.engine }

func (d Dtypes) Uint8(b []byte) uint8   { return b[0] }
func (d Dtypes) Int8(b []byte) int8     { return int8(b[0]) }
func (d Dtypes) Uint16(b []byte) uint16 { return d.engine.Uint16(b) }
func (d Dtypes) Int16(b []byte) int16   { return int16(d.engine.Uint16(b)) }
func (d Dtypes) Uint32(b []byte) uint32 { return d.engine.Uint32(b) }
func (d Dtypes) Int32(b []byte) int32   { return int32(d.engine.Uint32(b)) }
func (d Dtypes) Uint64(b []byte) uint64 { return d.engine.Uint64(b) }
func (d Dtypes) Int64(b []byte) int64   { return int64(d.engine.Uint64(b)) }

// Float32 decodes a single 32-bit float according to this processor format:
// IEEE reinterpretation for Intel/MIPS, DEC conversion for DEC.
func (d Dtypes) Float32(b []byte) float32 {
	if d.IsDEC() {
		return floatcodec.DECWordToIEEE(d.engine.Uint32(b))
	}

	return floatcodec.IEEE32(b, d.engine)
}

// Float32Array decodes a byte slice as consecutive 32-bit floats.
func (d Dtypes) Float32Array(b []byte) []float32 {
	if d.IsDEC() {
		return floatcodec.DECBytesToIEEE32(b)
	}

	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = floatcodec.IEEE32(b[i*4:i*4+4], d.engine)
	}

	return out
}

// Float64Array decodes a byte slice as consecutive 64-bit floats. DEC has no
// 64-bit float support and returns ErrUnsupportedEncoding.
func (d Dtypes) Float64Array(b []byte) ([]float64, error) {
	if d.IsDEC() {
		return nil, errs.ErrUnsupportedEncoding
	}

	out := make([]float64, len(b)/8)
	for i := range out {
		out[i] = floatcodec.IEEE64(b[i*8:i*8+8], d.engine)
	}

	return out, nil
}

// DecodeString decodes raw bytes to text: as UTF-8 when the bytes are valid
// UTF-8, otherwise as Latin-1. C3D files predate any enforced text encoding
// convention, so this maximizes the chance of recovering readable text
// instead of failing outright.
func (d Dtypes) DecodeString(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}

	// Latin-1 maps every byte value to a code point, so this decode never
	// fails and no lossy replacement-character step is needed after it.
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}

	return string(runes)
}
