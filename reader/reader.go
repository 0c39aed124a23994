// Package reader implements the C3D read path: header parse, processor
// detection, parameter-section walk, and the per-frame point/analog
// iterator.
package reader

import (
	"bytes"
	"fmt"
	"io"
	"math/bits"

	"github.com/gocap3d/c3d/dtype"
	"github.com/gocap3d/c3d/endian"
	"github.com/gocap3d/c3d/errs"
	"github.com/gocap3d/c3d/internal/pool"
	"github.com/gocap3d/c3d/manager"
	"github.com/gocap3d/c3d/param"
	"github.com/gocap3d/c3d/section"
	"github.com/gocap3d/c3d/warn"
)

// Reader owns a seekable byte source and the Manager built from it. Frames
// are iterated with Next; the underlying source is never closed by Reader.
type Reader struct {
	src     io.ReadSeeker
	Manager *manager.Manager

	frameNo        uint32
	lastFrame      uint32
	pointUsed      int
	analogUsed     int
	analogPerFrame int
	pointWordBytes int
	analogWordKind analogWordKind
	isFloat        bool
	scaleMag       float32
	offsets        []int16
	scales         []float32
	genScale       float32

	started bool
	done    bool
}

type analogWordKind int

const (
	analogFloat32 analogWordKind = iota
	analogUint16
	analogInt16
)

// Open reads the header, detects the processor format, walks the parameter
// section, and returns a Reader positioned to iterate frames with Next.
func Open(src io.ReadSeeker) (*Reader, error) {
	h := &section.Header{}
	if err := h.Parse(src, endian.GetLittleEndianEngine()); err != nil {
		return nil, err
	}

	if _, err := src.Seek(int64(h.ParameterBlock-1)*int64(section.BlockSize), io.SeekStart); err != nil {
		return nil, err
	}
	var prologue [4]byte
	if _, err := io.ReadFull(src, prologue[:]); err != nil {
		return nil, err
	}
	parameterBlocks := int(prologue[2])
	processor := prologue[3]

	dt, err := dtype.New(processor)
	if err != nil {
		return nil, err
	}

	if err := h.ProcessorConvert(dt, src); err != nil {
		return nil, err
	}

	if _, err := src.Seek(int64(h.ParameterBlock-1)*int64(section.BlockSize)+4, io.SeekStart); err != nil {
		return nil, err
	}

	m := manager.New(h, dt)
	if err := walkParameters(src, m, dt, parameterBlocks); err != nil {
		return nil, err
	}

	if err := m.CheckMetadata(); err != nil {
		return nil, err
	}

	return &Reader{src: src, Manager: m}, nil
}

// walkParameters reads the linked list of group/parameter records filling m.
func walkParameters(src io.ReadSeeker, m *manager.Manager, dt dtype.Dtypes, parameterBlocks int) error {
	start, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	end := start + int64(section.BlockSize)*int64(parameterBlocks) - 4

	for {
		pos, err := src.Seek(0, io.SeekCurrent)
		if err != nil {
			return err
		}
		if pos >= end {
			break
		}

		var head [2]byte
		if _, err := io.ReadFull(src, head[:]); err != nil {
			return err
		}
		nameLen := int8(head[0])
		id := int8(head[1])
		if id == 0 || nameLen == 0 {
			break
		}

		nameLenAbs := int(nameLen)
		if nameLenAbs < 0 {
			nameLenAbs = -nameLenAbs
		}
		nameBytes := make([]byte, nameLenAbs)
		if _, err := io.ReadFull(src, nameBytes); err != nil {
			return err
		}
		name := dt.DecodeString(nameBytes)

		var offBuf [2]byte
		if _, err := io.ReadFull(src, offBuf[:]); err != nil {
			return err
		}
		offset := int16(dt.Engine().Uint16(offBuf[:]))

		var payloadLen int64
		if offset == 0 {
			cur, err := src.Seek(0, io.SeekCurrent)
			if err != nil {
				return err
			}
			payloadLen = end - cur
		} else {
			payloadLen = int64(offset) - 2
		}

		payload := make([]byte, payloadLen)
		if _, err := io.ReadFull(src, payload); err != nil {
			return err
		}
		buf := bytes.NewReader(payload)

		switch {
		case id > 0:
			g := m.EnsureGroupPlaceholder(int(id))
			p := param.New(name)
			if err := p.Read(buf, dt); err != nil {
				return err
			}
			g.Add(p)
		default:
			groupID := int(-id)
			var descSize [1]byte
			if _, err := io.ReadFull(buf, descSize[:]); err != nil {
				return err
			}
			var desc string
			if descSize[0] > 0 {
				descBytes := make([]byte, descSize[0])
				if _, err := io.ReadFull(buf, descBytes); err != nil {
					return err
				}
				desc = dt.DecodeString(descBytes)
			}

			if g, ok := m.GroupByID(groupID); ok {
				if err := m.RenameGroupName(groupID, name); err != nil {
					return err
				}
				g.Desc = desc
			} else if _, err := m.AddGroup(groupID, name, desc, true); err != nil {
				return err
			}
		}
	}

	return nil
}

// Point is a single decoded marker sample.
type Point struct {
	X, Y, Z  float64
	Residual float64
	Cameras  int
}

// Frame is one decoded (point, analog) record.
type Frame struct {
	Index  uint32
	Points []Point
	// Analog is laid out [channel][subframe]: Analog[c][s].
	Analog [][]float64
}

// prepare computes the frame-decode plan the first time Next is called.
func (r *Reader) prepare() error {
	m := r.Manager

	pointScale := m.PointScale()
	r.scaleMag = pointScale
	if r.scaleMag < 0 {
		r.scaleMag = -r.scaleMag
	}
	r.isFloat = pointScale < 0
	if r.isFloat {
		r.pointWordBytes = 4
	} else {
		r.pointWordBytes = 2
	}

	r.analogWordKind = analogInt16
	if r.isFloat {
		r.analogWordKind = analogFloat32
	} else if p, ok := m.Param("ANALOG.FORMAT"); ok {
		if s := p.StringValue(m.Dtypes); upperTrim(s) == "UNSIGNED" {
			r.analogWordKind = analogUint16
		}
	}

	if p, ok := m.Param("ANALOG.BITS"); ok {
		wantBytes := r.analogWordBytes()
		if int(p.AsIntegerValue(m.Dtypes))/8 != wantBytes {
			return fmt.Errorf("%w: ANALOG:BITS does not match analog word width", errs.ErrUnsupportedEncoding)
		}
	}

	r.pointUsed = int(m.PointUsed())
	r.analogUsed = int(m.AnalogUsed())
	r.analogPerFrame = m.AnalogPerFrame()

	r.offsets = make([]int16, r.analogUsed)
	if p, ok := m.Param("ANALOG.OFFSET"); ok {
		vals, err := p.Int16Array(m.Dtypes)
		if err == nil {
			copy(r.offsets, vals)
		}
	}

	r.scales = make([]float32, r.analogUsed)
	for i := range r.scales {
		r.scales[i] = 1
	}
	if p, ok := m.Param("ANALOG.SCALE"); ok {
		vals, err := p.Float32Array(m.Dtypes)
		if err == nil {
			copy(r.scales, vals)
		}
	}

	r.genScale = 1
	if p, ok := m.Param("ANALOG.GEN_SCALE"); ok {
		r.genScale = p.Float32Value(m.Dtypes)
	}

	if _, err := r.src.Seek(int64(m.Header.DataBlock-1)*int64(section.BlockSize), io.SeekStart); err != nil {
		return err
	}

	r.frameNo = m.FirstFrame()
	r.lastFrame = m.LastFrame()
	r.started = true

	return nil
}

func upperTrim(s string) string {
	return string(bytes.ToUpper(bytes.TrimSpace([]byte(s))))
}

func (r *Reader) analogWordBytes() int {
	if r.analogWordKind == analogFloat32 {
		return 4
	}

	return 2
}

// Next decodes and returns the next frame, or (nil, false) once the frame
// range [first_frame, last_frame] is exhausted or a short read is hit. A
// short read is reported through warn.Sink, not returned as an error, per
// the format's recoverable frame-level error policy.
func (r *Reader) Next() (*Frame, bool, error) {
	if r.done {
		return nil, false, nil
	}
	if !r.started {
		if err := r.prepare(); err != nil {
			return nil, false, err
		}
	}
	if r.frameNo > r.lastFrame {
		r.done = true

		return nil, false, nil
	}

	nPoint := 4 * r.pointUsed
	nAnalog := r.analogUsed * r.analogPerFrame
	pointBytes := nPoint * r.pointWordBytes
	analogBytes := nAnalog * r.analogWordBytes()

	rawPoints := make([]byte, pointBytes)
	nRead, err := io.ReadFull(r.src, rawPoints)
	if err != nil || nRead < pointBytes {
		warn.Sink("c3d: reached end of file while reading point data at frame %d", r.frameNo)
		r.done = true

		return nil, false, nil
	}

	rawAnalog := make([]byte, analogBytes)
	nRead, err = io.ReadFull(r.src, rawAnalog)
	if err != nil || nRead < analogBytes {
		warn.Sink("c3d: reached end of file while reading analog data at frame %d", r.frameNo)
		r.done = true

		return nil, false, nil
	}

	dt := r.Manager.Dtypes
	points := make([]Point, r.pointUsed)

	if r.isFloat {
		cols := dt.Float32Array(rawPoints)
		for i := 0; i < r.pointUsed; i++ {
			x, y, z, w := cols[i*4], cols[i*4+1], cols[i*4+2], cols[i*4+3]
			bits32 := dt.Engine().Uint32(rawPoints[i*16+12 : i*16+16])
			p := Point{X: float64(x), Y: float64(y), Z: float64(z)}
			if bits32&0x80008000 != 0 {
				p.Residual, p.Cameras = -1, -1
			} else {
				c := bits32 & 0xffff
				p.Residual = float64(float32(c&0xff) * r.scaleMag)
				p.Cameras = bits.OnesCount32(c & 0x7f00)
			}
			_ = w
			points[i] = p
		}
	} else {
		for i := 0; i < r.pointUsed; i++ {
			off := i * 8
			x := dt.Int16(rawPoints[off : off+2])
			y := dt.Int16(rawPoints[off+2 : off+4])
			z := dt.Int16(rawPoints[off+4 : off+6])
			w := dt.Int16(rawPoints[off+6 : off+8])
			p := Point{
				X: float64(x) * float64(r.scaleMag),
				Y: float64(y) * float64(r.scaleMag),
				Z: float64(z) * float64(r.scaleMag),
			}
			if w <= -1 {
				p.Residual, p.Cameras = -1, -1
			} else {
				c := uint16(w)
				p.Residual = float64(float32(c&0xff) * r.scaleMag)
				p.Cameras = bits.OnesCount16(c & 0x7f00)
			}
			points[i] = p
		}
	}

	var analog [][]float64
	if nAnalog > 0 {
		analog = make([][]float64, r.analogUsed)
		for c := range analog {
			analog[c] = make([]float64, r.analogPerFrame)
		}

		raw, cleanup := pool.GetFloat64Slice(nAnalog)
		defer cleanup()
		decodeAnalogWords(dt, rawAnalog, r.analogWordKind, raw)
		for s := 0; s < r.analogPerFrame; s++ {
			for c := 0; c < r.analogUsed; c++ {
				v := raw[s*r.analogUsed+c]
				v = (v - float64(r.offsets[c])) * float64(r.scales[c]) * float64(r.genScale)
				analog[c][s] = v
			}
		}
	}

	f := &Frame{Index: r.frameNo, Points: points, Analog: analog}
	r.frameNo++
	if r.frameNo > r.lastFrame {
		r.checkTrailingBytes()
	}

	return f, true, nil
}

// decodeAnalogWords fills out (len(out) == n raw analog words) from raw
// according to kind. out is caller-owned, typically a pooled scratch buffer.
func decodeAnalogWords(dt dtype.Dtypes, raw []byte, kind analogWordKind, out []float64) {
	n := len(out)
	switch kind {
	case analogFloat32:
		vals := dt.Float32Array(raw)
		for i, v := range vals {
			out[i] = float64(v)
		}
	case analogUint16:
		for i := 0; i < n; i++ {
			out[i] = float64(dt.Uint16(raw[i*2 : i*2+2]))
		}
	default: // analogInt16
		for i := 0; i < n; i++ {
			out[i] = float64(dt.Int16(raw[i*2 : i*2+2]))
		}
	}
}

// checkTrailingBytes warns if more than one block remains unread after the
// frame loop completes.
func (r *Reader) checkTrailingBytes() {
	cur, err := r.src.Seek(0, io.SeekCurrent)
	if err != nil {
		return
	}
	end, err := r.src.Seek(0, io.SeekEnd)
	if err != nil {
		return
	}
	if _, err := r.src.Seek(cur, io.SeekStart); err != nil {
		return
	}
	if end-cur > int64(section.BlockSize) {
		warn.Sink("c3d: incomplete reading of data blocks, %d bytes remained after all data blocks were read", end-cur)
	}
}
