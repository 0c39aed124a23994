package writer

import (
	"bytes"
	"io"
	"testing"

	"github.com/gocap3d/c3d/errs"
	"github.com/gocap3d/c3d/reader"
	"github.com/stretchr/testify/require"
)

// seekBuffer adapts a bytes.Buffer into an io.WriteSeeker, and then a
// bytes.Reader into an io.ReadSeeker, so Writer.Write and reader.Open can
// operate on the same in-memory payload without touching a real file.
type seekBuffer struct {
	buf []byte
	pos int64
}

func (s *seekBuffer) Write(p []byte) (int, error) {
	end := s.pos + int64(len(p))
	if end > int64(len(s.buf)) {
		grown := make([]byte, end)
		copy(grown, s.buf)
		s.buf = grown
	}
	copy(s.buf[s.pos:end], p)
	s.pos = end

	return len(p), nil
}

func (s *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = s.pos
	case io.SeekEnd:
		base = int64(len(s.buf))
	}
	s.pos = base + offset

	return s.pos, nil
}

func sampleFrame(ppf, analogUsed, analogPerFrame int) Frame {
	fr := Frame{Points: make([]Point, ppf)}
	for i := range fr.Points {
		fr.Points[i] = Point{
			X: float64(i) + 0.5, Y: float64(i) * 2, Z: -float64(i),
			Residual: 1, Cameras: i % 5,
		}
	}
	if analogUsed > 0 {
		fr.Analog = make([][]float64, analogUsed)
		for c := range fr.Analog {
			fr.Analog[c] = make([]float64, analogPerFrame)
			for s := range fr.Analog[c] {
				fr.Analog[c][s] = float64(c) + float64(s)*0.1
			}
		}
	}

	return fr
}

func TestWriteFailsWithNoFrames(t *testing.T) {
	w, err := New()
	require.NoError(t, err)

	dst := &seekBuffer{}
	err = w.Write(dst, nil)
	require.ErrorIs(t, err, errs.ErrNoFrames)
}

func TestWriteThenReadRoundTripsPointsFloat(t *testing.T) {
	w, err := New(WithPointRate(100))
	require.NoError(t, err)

	labels := []string{"MK1", "MK2"}
	w.AddFrames(
		sampleFrame(2, 0, 0),
		sampleFrame(2, 0, 0),
	)

	dst := &seekBuffer{}
	require.NoError(t, w.Write(dst, labels))

	src := bytes.NewReader(dst.buf)
	rd, err := reader.Open(src)
	require.NoError(t, err)

	require.Equal(t, uint32(2), rd.Manager.PointUsed())
	require.Equal(t, float32(100), rd.Manager.PointRate())

	frame, ok, err := rd.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, frame.Points, 2)
	require.InDelta(t, 0.5, frame.Points[0].X, 1e-4)
	require.InDelta(t, 1.5, frame.Points[1].X, 1e-4)

	frame2, ok, err := rd.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, frame2)

	_, ok, err = rd.Next()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestWriteThenReadRoundTripsCameraCountExactly(t *testing.T) {
	w, err := New()
	require.NoError(t, err)

	fr := Frame{Points: []Point{
		{X: 1, Y: 2, Z: 3, Residual: 0.5, Cameras: 0},
		{X: 1, Y: 2, Z: 3, Residual: 0.5, Cameras: 1},
		{X: 1, Y: 2, Z: 3, Residual: 0.5, Cameras: 2},
		{X: 1, Y: 2, Z: 3, Residual: 0.5, Cameras: 7},
	}}
	w.AddFrames(fr)

	dst := &seekBuffer{}
	require.NoError(t, w.Write(dst, []string{"A", "B", "C", "D"}))

	rd, err := reader.Open(bytes.NewReader(dst.buf))
	require.NoError(t, err)

	got, ok, err := rd.Next()
	require.NoError(t, err)
	require.True(t, ok)

	for i, want := range []int{0, 1, 2, 7} {
		require.Equalf(t, want, got.Points[i].Cameras, "point %d camera count", i)
	}
}

func TestWriteThenReadRoundTripsInvalidSample(t *testing.T) {
	w, err := New()
	require.NoError(t, err)

	w.AddFrames(Frame{Points: []Point{
		{X: 1, Y: 2, Z: 3, Residual: -1, Cameras: 0},
	}})

	dst := &seekBuffer{}
	require.NoError(t, w.Write(dst, []string{"A"}))

	rd, err := reader.Open(bytes.NewReader(dst.buf))
	require.NoError(t, err)

	got, ok, err := rd.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, -1.0, got.Points[0].Residual)
	require.Equal(t, -1, got.Points[0].Cameras)
}

func TestWriteThenReadRoundTripsAnalog(t *testing.T) {
	// analogPerFrame (10) must equal analog_rate/point_rate for
	// Manager.CheckMetadata's strict cross-check to pass; point rate stays
	// at its default 480, so analog rate is 10*480.
	w, err := New(WithAnalogRate(4800))
	require.NoError(t, err)

	w.AddFrames(sampleFrame(1, 3, 10))

	dst := &seekBuffer{}
	require.NoError(t, w.Write(dst, []string{"A"}))

	rd, err := reader.Open(bytes.NewReader(dst.buf))
	require.NoError(t, err)
	require.Equal(t, uint32(3), rd.Manager.AnalogUsed())

	got, ok, err := rd.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got.Analog, 3)
	require.Len(t, got.Analog[0], 10)
	for c := 0; c < 3; c++ {
		for s := 0; s < 10; s++ {
			require.InDelta(t, float64(c)+float64(s)*0.1, got.Analog[c][s], 1e-3)
		}
	}
}

func TestWriteThenReadRoundTripsIntScaledPoints(t *testing.T) {
	w, err := New(WithPointScale(0.1))
	require.NoError(t, err)

	w.AddFrames(Frame{Points: []Point{
		{X: 10, Y: -20, Z: 5, Residual: 0.1, Cameras: 3},
	}})

	dst := &seekBuffer{}
	require.NoError(t, w.Write(dst, []string{"A"}))

	rd, err := reader.Open(bytes.NewReader(dst.buf))
	require.NoError(t, err)

	got, ok, err := rd.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.InDelta(t, 10, got.Points[0].X, 1e-3)
	require.InDelta(t, -20, got.Points[0].Y, 1e-3)
	require.InDelta(t, 5, got.Points[0].Z, 1e-3)
	require.Equal(t, 3, got.Points[0].Cameras)
}
