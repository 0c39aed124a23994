// Package writer implements the C3D write path: a frame accumulator that
// synthesizes the POINT/ANALOG/TRIAL parameter groups, computes the
// parameter-block count, and emits the header, parameter section, and frame
// records in Intel little-endian IEEE-754, pad-aligned to 512-byte blocks.
package writer

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/gocap3d/c3d/dtype"
	"github.com/gocap3d/c3d/errs"
	"github.com/gocap3d/c3d/internal/options"
	"github.com/gocap3d/c3d/internal/pool"
	"github.com/gocap3d/c3d/manager"
	"github.com/gocap3d/c3d/section"
)

// Frame is one (points, analog) pair queued with AddFrames. Points holds one
// entry per marker (X, Y, Z, Residual; -1 residual marks an invalid sample).
// Analog is laid out [channel][subframe].
type Frame struct {
	Points []Point
	Analog [][]float64
}

// Point is a single marker sample queued for writing.
type Point struct {
	X, Y, Z  float64
	Residual float64
	Cameras  int
}

// Writer accumulates frames in memory and, on Write, synthesizes the
// default parameter groups and emits a complete Intel-format file. It is a
// pure accumulator: Write consumes the buffered frames once.
type Writer struct {
	pointRate   float32
	analogRate  float32
	pointScale  float32
	pointUnits  string
	genScale    float32
	analogScale []float32
	analogOff   []int16

	frames []Frame
}

// Option configures a Writer at construction time.
type Option = options.Option[*Writer]

// WithPointRate sets the point sample rate (default 480).
func WithPointRate(rate float32) Option {
	return options.NoError[*Writer](func(w *Writer) { w.pointRate = rate })
}

// WithAnalogRate sets the analog sample rate (default 0).
func WithAnalogRate(rate float32) Option {
	return options.NoError[*Writer](func(w *Writer) { w.analogRate = rate })
}

// WithPointScale sets POINT:SCALE (default -1, i.e. float-encoded points).
func WithPointScale(scale float32) Option {
	return options.NoError[*Writer](func(w *Writer) { w.pointScale = scale })
}

// WithPointUnits sets POINT:UNITS (default "mm  ").
func WithPointUnits(units string) Option {
	return options.NoError[*Writer](func(w *Writer) { w.pointUnits = units })
}

// WithGenScale sets ANALOG:GEN_SCALE (default 1).
func WithGenScale(scale float32) Option {
	return options.NoError[*Writer](func(w *Writer) { w.genScale = scale })
}

// New creates a Writer with the given options applied over the format's
// defaults.
func New(opts ...Option) (*Writer, error) {
	w := &Writer{
		pointRate:  480,
		analogRate: 0,
		pointScale: -1,
		pointUnits: "mm  ",
		genScale:   1,
	}

	if err := options.Apply(w, opts...); err != nil {
		return nil, err
	}

	return w, nil
}

// AddFrames appends frames to the writer's in-memory buffer.
func (w *Writer) AddFrames(frames ...Frame) {
	w.frames = append(w.frames, frames...)
}

// Write synthesizes the POINT/ANALOG/TRIAL groups from the buffered frames
// and labels, validates the result with Manager.CheckMetadata, and emits
// the header, parameter section, and frame records to dst. It returns
// errs.ErrNoFrames, writing nothing, if no frames have been queued.
func (w *Writer) Write(dst io.WriteSeeker, labels []string) error {
	if len(w.frames) == 0 {
		return errs.ErrNoFrames
	}

	dt, err := dtype.New(dtype.ProcessorIntel)
	if err != nil {
		return err
	}

	h := &section.Header{ParameterBlock: 2}
	m := manager.New(h, dt)

	ppf := len(w.frames[0].Points)
	analogUsed := len(w.frames[0].Analog)
	analogPerFrame := 0
	if analogUsed > 0 {
		analogPerFrame = len(w.frames[0].Analog[0])
	}

	if err := w.synthesizeGroups(m, ppf, analogUsed, labels); err != nil {
		return err
	}

	parameterBlocks := computeParameterBlocks(m)

	dataStart, ok := m.Param("POINT.DATA_START")
	if !ok {
		return errs.ErrParamNotFound
	}
	dataStart.Bytes = u16Bytes(uint16(2 + parameterBlocks)) //nolint:gosec

	h.DataBlock = uint16(2 + parameterBlocks) //nolint:gosec
	h.FrameRate = w.pointRate
	h.LastFrame = uint16(minInt(len(w.frames), 65535)) //nolint:gosec
	h.FirstFrame = 1
	h.PointCount = uint16(ppf) //nolint:gosec
	h.AnalogCount = uint16(analogUsed * analogPerFrame) //nolint:gosec
	h.AnalogPerFrame = uint16(analogPerFrame)           //nolint:gosec
	h.ScaleFactor = w.pointScale

	if err := m.CheckMetadata(); err != nil {
		return err
	}

	if err := writeMetadata(dst, h, m, parameterBlocks); err != nil {
		return err
	}

	return w.writeFrames(dst, ppf, analogUsed, analogPerFrame)
}

func (w *Writer) synthesizeGroups(m *manager.Manager, ppf, analogUsed int, labels []string) error {
	pointGroup, err := m.AddGroup(1, "POINT", "POINT group", false)
	if err != nil {
		return err
	}

	labelMaxSize := 0
	for _, l := range labels {
		if len(l) > labelMaxSize {
			labelMaxSize = len(l)
		}
	}

	pointGroup.AddParam("USED", "Number of 3d markers", 2, u16Bytes(uint16(ppf)), 1) //nolint:gosec
	pointGroup.AddParam("FRAMES", "frame count", 2, u16Bytes(uint16(minInt(len(w.frames), 65535))), 1)
	pointGroup.AddParam("DATA_START", "data block number", 2, u16Bytes(0), 1)
	pointGroup.AddParam("SCALE", "3d scale factor", 4, f32Bytes(w.pointScale), 1)
	pointGroup.AddParam("RATE", "3d data capture rate", 4, f32Bytes(w.pointRate), 1)
	pointGroup.AddParam("X_SCREEN", "X_SCREEN parameter", -1, []byte("+X"), 2)
	pointGroup.AddParam("Y_SCREEN", "Y_SCREEN parameter", -1, []byte("+Y"), 2)
	pointGroup.AddParam("UNITS", "3d data units", -1, []byte(w.pointUnits), uint8(len(w.pointUnits)))

	labelBytes := make([]byte, 0, labelMaxSize*ppf)
	for i := 0; i < ppf; i++ {
		name := ""
		if i < len(labels) {
			name = labels[i]
		}
		labelBytes = append(labelBytes, padRight(name, labelMaxSize)...)
	}
	pointGroup.AddParam("LABELS", "labels", -1, labelBytes, uint8(labelMaxSize), uint8(ppf)) //nolint:gosec

	descBytes := make([]byte, 16*ppf)
	for i := range descBytes {
		descBytes[i] = ' '
	}
	pointGroup.AddParam("DESCRIPTIONS", "descriptions", -1, descBytes, 16, uint8(ppf)) //nolint:gosec

	analogGroup, err := m.AddGroup(2, "ANALOG", "ANALOG group", false)
	if err != nil {
		return err
	}
	analogGroup.AddParam("USED", "analog channel count", 2, u16Bytes(uint16(analogUsed)), 1) //nolint:gosec
	analogGroup.AddParam("RATE", "analog samples per second", 4, f32Bytes(w.analogRate), 1)
	analogGroup.AddParam("GEN_SCALE", "analog general scale factor", 4, f32Bytes(w.genScale), 1)
	analogGroup.AddParam("SCALE", "analog channel scale factors", 4, nil, 0)
	analogGroup.AddParam("OFFSET", "analog channel offsets", 2, nil, 0)

	trialGroup, err := m.AddGroup(3, "TRIAL", "TRIAL group", false)
	if err != nil {
		return err
	}
	start := make([]byte, 4)
	binary.LittleEndian.PutUint32(start, 1)
	trialGroup.AddParam("ACTUAL_START_FIELD", "actual start frame", 2, start, 2)
	end := make([]byte, 4)
	binary.LittleEndian.PutUint32(end, uint32(len(w.frames))) //nolint:gosec
	trialGroup.AddParam("ACTUAL_END_FIELD", "actual end frame", 2, end, 2)

	return nil
}

func computeParameterBlocks(m *manager.Manager) int {
	size := 4
	for _, g := range m.Groups() {
		size += g.BinarySize()
	}

	return (size + section.BlockSize - 1) / section.BlockSize
}

func writeMetadata(dst io.WriteSeeker, h *section.Header, m *manager.Manager, parameterBlocks int) error {
	if _, err := dst.Write(h.Bytes()); err != nil {
		return err
	}
	if err := padBlock(dst); err != nil {
		return err
	}

	prologue := []byte{0, 0, byte(parameterBlocks), dtype.ProcessorIntel} //nolint:gosec
	if _, err := dst.Write(prologue); err != nil {
		return err
	}

	for _, id := range m.GroupIDs() {
		g, _ := m.GroupByID(id)
		if err := g.Write(int8(id), dst); err != nil { //nolint:gosec
			return err
		}
	}

	if err := padBlock(dst); err != nil {
		return err
	}

	for {
		pos, err := dst.Seek(0, io.SeekCurrent)
		if err != nil {
			return err
		}
		if pos == int64(section.BlockSize)*int64(h.DataBlock-1) {
			break
		}
		if _, err := dst.Write(make([]byte, section.BlockSize)); err != nil {
			return err
		}
	}

	return nil
}

func (w *Writer) writeFrames(dst io.WriteSeeker, ppf, analogUsed, analogPerFrame int) error {
	scale := w.pointScale
	if scale < 0 {
		scale = -scale
	}
	isFloat := w.pointScale < 0

	pointWordBytes := 2
	if isFloat {
		pointWordBytes = 4
	}
	pointRecordBytes := ppf * 4 * pointWordBytes

	pointBuf := pool.GetBlobBuffer()
	defer pool.PutBlobBuffer(pointBuf)
	analogBuf := pool.GetBlobBuffer()
	defer pool.PutBlobBuffer(analogBuf)

	for _, fr := range w.frames {
		pointBuf.Reset()
		pointBuf.ExtendOrGrow(pointRecordBytes)
		pointBytes := pointBuf.Bytes()
		for i, p := range fr.Points {
			off := i * 4 * pointWordBytes

			// The fourth word packs a camera-observation mask (bits 8..14)
			// and the residual byte (bits 0..7) into its low 16 bits, the
			// same bits the reader popcounts to recover the camera count.
			// The mask uses the low `Cameras` bits of that range so popcount
			// reproduces the original count exactly; an invalid sample is
			// marked by setting the word's sign bit(s) instead.
			var packed uint16
			invalid := p.Residual <= -1
			if !invalid {
				cameras := p.Cameras
				if cameras < 0 {
					cameras = 0
				} else if cameras > 7 {
					cameras = 7
				}
				cameraMask := uint16((1<<uint(cameras))-1) << 8 //nolint:gosec
				residual := uint8(int16(p.Residual / float64(scale))) //nolint:gosec
				packed = cameraMask | uint16(residual)
			}

			if isFloat {
				binary.LittleEndian.PutUint32(pointBytes[off:off+4], math.Float32bits(float32(p.X)))
				binary.LittleEndian.PutUint32(pointBytes[off+4:off+8], math.Float32bits(float32(p.Y)))
				binary.LittleEndian.PutUint32(pointBytes[off+8:off+12], math.Float32bits(float32(p.Z)))
				if invalid {
					binary.LittleEndian.PutUint32(pointBytes[off+12:off+16], math.Float32bits(-1))
				} else {
					binary.LittleEndian.PutUint32(pointBytes[off+12:off+16], uint32(packed))
				}
			} else {
				binary.LittleEndian.PutUint16(pointBytes[off:off+2], uint16(int16(math.Round(p.X/float64(scale)))))
				binary.LittleEndian.PutUint16(pointBytes[off+2:off+4], uint16(int16(math.Round(p.Y/float64(scale)))))
				binary.LittleEndian.PutUint16(pointBytes[off+4:off+6], uint16(int16(math.Round(p.Z/float64(scale)))))
				if invalid {
					binary.LittleEndian.PutUint16(pointBytes[off+6:off+8], uint16(int16(-1)))
				} else {
					binary.LittleEndian.PutUint16(pointBytes[off+6:off+8], packed)
				}
			}
		}
		if _, err := dst.Write(pointBytes); err != nil {
			return err
		}

		if analogUsed > 0 {
			wordBytes := 2
			if isFloat {
				wordBytes = 4
			}
			analogBuf.Reset()
			analogBuf.ExtendOrGrow(analogUsed * analogPerFrame * wordBytes)
			analogBytes := analogBuf.Bytes()
			k := 0
			for s := 0; s < analogPerFrame; s++ {
				for c := 0; c < analogUsed; c++ {
					v := fr.Analog[c][s]
					if isFloat {
						binary.LittleEndian.PutUint32(analogBytes[k:k+4], math.Float32bits(float32(v)))
						k += 4
					} else {
						binary.LittleEndian.PutUint16(analogBytes[k:k+2], uint16(int16(v)))
						k += 2
					}
				}
			}
			if _, err := dst.Write(analogBytes); err != nil {
				return err
			}
		}
	}

	return padBlock(dst)
}

func padBlock(dst io.WriteSeeker) error {
	pos, err := dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	extra := pos % int64(section.BlockSize)
	if extra == 0 {
		return nil
	}
	_, err = dst.Write(make([]byte, int64(section.BlockSize)-extra))

	return err
}

func u16Bytes(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)

	return b
}

func f32Bytes(v float32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))

	return b
}

func padRight(s string, n int) []byte {
	b := make([]byte, n)
	copy(b, s)
	for i := len(s); i < n; i++ {
		b[i] = ' '
	}

	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}

	return b
}
