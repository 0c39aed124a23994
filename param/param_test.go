package param

import (
	"bytes"
	"math"
	"testing"

	"github.com/gocap3d/c3d/dtype"
	"github.com/stretchr/testify/require"
)

func intelDtypes(t *testing.T) dtype.Dtypes {
	t.Helper()
	dt, err := dtype.New(dtype.ProcessorIntel)
	require.NoError(t, err)

	return dt
}

func TestNumElementsAndTotalBytes(t *testing.T) {
	p := New("RATE")
	p.BytesPerElement = 4
	p.Dimensions = []uint8{2, 3}

	require.Equal(t, 6, p.NumElements())
	require.Equal(t, 24, p.TotalBytes())
}

func TestTotalBytesHandlesNegativeBytesPerElement(t *testing.T) {
	p := New("LABELS")
	p.BytesPerElement = -1
	p.Dimensions = []uint8{4, 2}

	require.Equal(t, 8, p.TotalBytes())
}

func TestReadThenWriteRoundTrips(t *testing.T) {
	dt := intelDtypes(t)

	original := New("RATE")
	original.Desc = "capture rate"
	original.BytesPerElement = 4
	original.Dimensions = []uint8{1}
	original.Bytes = make([]byte, 4)
	dt.Engine().PutUint32(original.Bytes, math.Float32bits(480))

	var buf bytes.Buffer
	require.NoError(t, original.Write(1, &buf))

	// Skip the on-wire header this parameter shares with the group-walk
	// caller (name_len, group_id, name, offset_to_next) to land Read
	// exactly where the walker would hand off.
	skip := 1 + 1 + len(original.Name) + 2
	body := buf.Bytes()[skip:]

	decoded := New("RATE")
	require.NoError(t, decoded.Read(bytes.NewReader(body), dt))

	require.Equal(t, original.Desc, decoded.Desc)
	require.Equal(t, original.BytesPerElement, decoded.BytesPerElement)
	require.Equal(t, original.Dimensions, decoded.Dimensions)
	require.Equal(t, original.Bytes, decoded.Bytes)
	require.Equal(t, float32(480), decoded.Float32Value(dt))
}

func TestAsIntegerValuePreservesIntegralFloat(t *testing.T) {
	dt := intelDtypes(t)

	p := New("ACTUAL_END_FIELD")
	p.BytesPerElement = 4
	p.Dimensions = []uint8{1}
	p.Bytes = make([]byte, 4)
	dt.Engine().PutUint32(p.Bytes, math.Float32bits(300))

	require.Equal(t, uint32(300), p.AsIntegerValue(dt))
}

func TestAsIntegerValueFallsBackToRawUint32(t *testing.T) {
	dt := intelDtypes(t)

	p := New("ACTUAL_END_FIELD")
	p.BytesPerElement = 2
	p.Dimensions = []uint8{2}
	p.Bytes = make([]byte, 4)
	dt.Engine().PutUint32(p.Bytes, 300) // not a float whose value is 300

	require.Equal(t, uint32(300), p.AsIntegerValue(dt))
}

func TestAsIntegerValueSmallWidths(t *testing.T) {
	dt := intelDtypes(t)

	p2 := New("USED")
	p2.Bytes = []byte{0x05, 0x00}
	require.Equal(t, uint32(5), p2.AsIntegerValue(dt))

	p1 := New("FLAG")
	p1.Bytes = []byte{0x07}
	require.Equal(t, uint32(7), p1.AsIntegerValue(dt))

	p0 := New("EMPTY")
	require.Equal(t, uint32(0), p0.AsIntegerValue(dt))
}

func TestBytesArraySplitsOnInnermostDimension(t *testing.T) {
	p := New("LABELS")
	p.Dimensions = []uint8{4, 2}
	p.Bytes = []byte("MK01MK02")

	words, err := p.BytesArray()
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("MK01"), []byte("MK02")}, words)
}

func TestBytesArrayRequiresDimensions(t *testing.T) {
	p := New("LABELS")
	_, err := p.BytesArray()
	require.Error(t, err)
}

func TestStringArrayDecodesEachWord(t *testing.T) {
	dt := intelDtypes(t)

	p := New("LABELS")
	p.Dimensions = []uint8{4, 2}
	p.Bytes = []byte("MK01MK02")

	words, err := p.StringArray(dt)
	require.NoError(t, err)
	require.Equal(t, []string{"MK01", "MK02"}, words)
}

func TestFloatArrayDispatchesOnBytesPerElement(t *testing.T) {
	dt := intelDtypes(t)

	p := New("SCALE")
	p.BytesPerElement = 4
	p.Dimensions = []uint8{2}
	p.Bytes = make([]byte, 8)
	dt.Engine().PutUint32(p.Bytes[0:4], math.Float32bits(1.0))
	dt.Engine().PutUint32(p.Bytes[4:8], math.Float32bits(2.5))

	vals, err := p.FloatArray(dt)
	require.NoError(t, err)
	require.Equal(t, []float64{1.0, 2.5}, vals)
}

func TestFloatArrayRejectsUnsupportedWidth(t *testing.T) {
	dt := intelDtypes(t)

	p := New("ODD")
	p.BytesPerElement = 2
	p.Dimensions = []uint8{1}
	p.Bytes = []byte{0, 0}

	_, err := p.FloatArray(dt)
	require.Error(t, err)
}
