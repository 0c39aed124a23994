package section

import (
	"bytes"
	"math"
	"testing"

	"github.com/gocap3d/c3d/dtype"
	"github.com/gocap3d/c3d/endian"
	"github.com/stretchr/testify/require"
)

func intelHeaderBytes(t *testing.T) []byte {
	t.Helper()

	b := make([]byte, HeaderSize)
	e := endian.GetLittleEndianEngine()

	b[0] = 2
	b[1] = MagicByte
	e.PutUint16(b[2:4], 24)   // PointCount
	e.PutUint16(b[4:6], 4)    // AnalogCount
	e.PutUint16(b[6:8], 1)    // FirstFrame
	e.PutUint16(b[8:10], 100) // LastFrame
	e.PutUint16(b[10:12], 10) // MaxGap
	e.PutUint32(b[12:16], math.Float32bits(0.1))
	e.PutUint16(b[16:18], 3) // DataBlock
	e.PutUint16(b[18:20], 4) // AnalogPerFrame
	e.PutUint32(b[20:24], math.Float32bits(60.0))

	return b
}

func TestHeaderParseIntel(t *testing.T) {
	raw := intelHeaderBytes(t)
	src := bytes.NewReader(raw)

	h := &Header{}
	require.NoError(t, h.Parse(src, endian.GetLittleEndianEngine()))

	require.Equal(t, uint16(24), h.PointCount)
	require.Equal(t, uint16(4), h.AnalogCount)
	require.Equal(t, uint16(1), h.FirstFrame)
	require.Equal(t, uint16(100), h.LastFrame)
	require.Equal(t, uint16(3), h.DataBlock)
	require.Equal(t, uint16(4), h.AnalogPerFrame)
}

func TestHeaderParseRejectsBadMagic(t *testing.T) {
	raw := intelHeaderBytes(t)
	raw[1] = 0

	h := &Header{}
	err := h.Parse(bytes.NewReader(raw), endian.GetLittleEndianEngine())
	require.Error(t, err)
}

func TestHeaderParseRejectsShortInput(t *testing.T) {
	h := &Header{}
	err := h.Parse(bytes.NewReader(make([]byte, 100)), endian.GetLittleEndianEngine())
	require.Error(t, err)
}

func TestHeaderProcessorConvertIntel(t *testing.T) {
	raw := intelHeaderBytes(t)
	src := bytes.NewReader(raw)

	h := &Header{}
	require.NoError(t, h.Parse(src, endian.GetLittleEndianEngine()))

	dt, err := dtype.New(dtype.ProcessorIntel)
	require.NoError(t, err)
	require.NoError(t, h.ProcessorConvert(dt, src))

	require.InDelta(t, float32(0.1), h.ScaleFactor, 1e-7)
	require.Equal(t, float32(60.0), h.FrameRate)
}

func TestHeaderBytesRoundTripsIntelFields(t *testing.T) {
	h := &Header{
		ParameterBlock: 2,
		PointCount:     24,
		AnalogCount:    4,
		FirstFrame:     1,
		LastFrame:      100,
		MaxGap:         10,
		ScaleFactor:    0.1,
		DataBlock:      3,
		AnalogPerFrame: 4,
		FrameRate:      60.0,
	}

	encoded := h.Bytes()
	require.Len(t, encoded, HeaderSize)

	h2 := &Header{}
	require.NoError(t, h2.Parse(bytes.NewReader(encoded), endian.GetLittleEndianEngine()))

	dt, _ := dtype.New(dtype.ProcessorIntel)
	require.NoError(t, h2.ProcessorConvert(dt, bytes.NewReader(encoded)))

	require.Equal(t, h.PointCount, h2.PointCount)
	require.Equal(t, h.AnalogCount, h2.AnalogCount)
	require.Equal(t, h.FirstFrame, h2.FirstFrame)
	require.Equal(t, h.LastFrame, h2.LastFrame)
	require.Equal(t, h.DataBlock, h2.DataBlock)
	require.Equal(t, h.AnalogPerFrame, h2.AnalogPerFrame)
	require.Equal(t, h.ScaleFactor, h2.ScaleFactor)
	require.Equal(t, h.FrameRate, h2.FrameRate)
}
