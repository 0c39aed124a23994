package section

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/gocap3d/c3d/dtype"
	"github.com/gocap3d/c3d/endian"
	"github.com/gocap3d/c3d/errs"
)

// Header is the fixed 512-byte prologue of a C3D file.
//
// ScaleFactor and FrameRate are not usable until ProcessorConvert has run:
// Parse only knows how to locate their 4 raw bytes, not how to decode them,
// since that depends on the processor byte that lives in the parameter
// section rather than the header itself.
type Header struct {
	ParameterBlock uint8
	PointCount     uint16
	AnalogCount    uint16
	FirstFrame     uint16
	LastFrame      uint16
	MaxGap         uint16
	DataBlock      uint16
	AnalogPerFrame uint16

	ScaleFactor float32
	FrameRate   float32

	LongEventLabels bool
	EventCount      uint16

	eventBlock [164]byte

	EventTimings      []float32
	EventDisplayFlags []bool
	EventLabels       []string

	scaleFactorBits uint32
	frameRateBits   uint32
}

// Parse reads the 512-byte header from src using engine for integer fields.
// ScaleFactor/FrameRate are captured as raw bits only; call ProcessorConvert
// once the processor format is known to populate their float values.
func (h *Header) Parse(src io.ReadSeeker, engine endian.EndianEngine) error {
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return err
	}

	raw := make([]byte, HeaderSize)
	if _, err := io.ReadFull(src, raw); err != nil {
		return errs.ErrInvalidHeaderSize
	}

	if raw[1] != MagicByte {
		return errs.ErrInvalidMagic
	}

	h.ParameterBlock = raw[0]
	h.PointCount = engine.Uint16(raw[2:4])
	h.AnalogCount = engine.Uint16(raw[4:6])
	h.FirstFrame = engine.Uint16(raw[6:8])
	h.LastFrame = engine.Uint16(raw[8:10])
	h.MaxGap = engine.Uint16(raw[10:12])
	h.scaleFactorBits = engine.Uint32(raw[12:16])
	h.DataBlock = engine.Uint16(raw[16:18])
	h.AnalogPerFrame = engine.Uint16(raw[18:20])
	h.frameRateBits = engine.Uint32(raw[20:24])
	// raw[24:298] reserved

	h.LongEventLabels = engine.Uint16(raw[298:300]) == LongEventLabelsMarker
	h.EventCount = engine.Uint16(raw[300:302])
	// raw[302:304] reserved
	copy(h.eventBlock[:], raw[304:468])
	// raw[468:512] reserved

	return nil
}

// ProcessorConvert interprets ScaleFactor/FrameRate (and, for MIPS, the
// entire header) once the processor byte has been determined by the reader.
// For DEC it applies the DEC->IEEE conversion; for MIPS it re-reads the 512
// bytes big-endian before reinterpreting; for Intel it just reinterprets the
// raw bits as IEEE-754.
func (h *Header) ProcessorConvert(dt dtype.Dtypes, src io.ReadSeeker) error {
	if dt.IsMIPS() {
		if err := h.Parse(src, dt.Engine()); err != nil {
			return err
		}
	}

	switch {
	case dt.IsDEC():
		h.ScaleFactor = dt.Float32(bits4(h.scaleFactorBits))
		h.FrameRate = dt.Float32(bits4(h.frameRateBits))
	default: // Intel or MIPS: already IEEE-754, just reinterpret.
		h.ScaleFactor = math.Float32frombits(h.scaleFactorBits)
		h.FrameRate = math.Float32frombits(h.frameRateBits)
	}

	return h.ParseEvents(dt)
}

// bits4 returns the little-endian byte representation of a raw 32-bit word,
// so it can be run back through a Dtypes decoder that expects a byte slice.
func bits4(w uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], w)

	return b[:]
}

// Bytes serializes the header in Intel (little-endian) layout, with the
// magic byte at offset 1. ScaleFactor/FrameRate are written as their IEEE-754
// bit patterns: the writer always emits Intel IEEE, so no conversion runs
// here.
func (h *Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	e := endian.GetLittleEndianEngine()

	b[0] = h.ParameterBlock
	b[1] = MagicByte
	e.PutUint16(b[2:4], h.PointCount)
	e.PutUint16(b[4:6], h.AnalogCount)
	e.PutUint16(b[6:8], h.FirstFrame)
	e.PutUint16(b[8:10], h.LastFrame)
	e.PutUint16(b[10:12], h.MaxGap)
	e.PutUint32(b[12:16], math.Float32bits(h.ScaleFactor))
	e.PutUint16(b[16:18], h.DataBlock)
	e.PutUint16(b[18:20], h.AnalogPerFrame)
	e.PutUint32(b[20:24], math.Float32bits(h.FrameRate))

	if h.LongEventLabels {
		e.PutUint16(b[298:300], LongEventLabelsMarker)
	}
	e.PutUint16(b[300:302], h.EventCount)
	copy(b[304:468], h.eventBlock[:])

	return b
}
