// Package param implements a single named C3D parameter: its dimensions,
// raw payload bytes, and the typed accessors used to interpret that payload
// once a processor format (dtype.Dtypes) is known.
package param

import (
	"encoding/binary"
	"io"
	"strings"

	"github.com/gocap3d/c3d/dtype"
	"github.com/gocap3d/c3d/errs"
)

// Param is a single parameter belonging to a Group.
//
// BytesPerElement follows the C3D convention: -1 means text or an empty/raw
// byte array, 1/2/4/8 is an integer or float element width. Dimensions are
// ordered innermost-first (Fortran order): the first entry is the fastest-
// varying axis.
type Param struct {
	Name            string
	Desc            string
	BytesPerElement int8
	Dimensions      []uint8
	Bytes           []byte
}

// New creates an empty parameter with the given (upper-cased) name.
func New(name string) *Param {
	return &Param{Name: strings.ToUpper(name), BytesPerElement: 1}
}

// NumElements returns the product of all dimensions (1 for a scalar).
func (p *Param) NumElements() int {
	n := 1
	for _, d := range p.Dimensions {
		n *= int(d)
	}

	return n
}

// TotalBytes returns the number of payload bytes this parameter occupies:
// |BytesPerElement| * NumElements().
func (p *Param) TotalBytes() int {
	bpe := int(p.BytesPerElement)
	if bpe < 0 {
		bpe = -bpe
	}

	return bpe * p.NumElements()
}

// BinarySize returns the number of bytes Write emits for this parameter,
// including its on-wire header (name_len, group_id, name, offset_to_next)
// and trailer (desc_len, desc).
func (p *Param) BinarySize() int {
	return 1 + 1 + len(p.Name) + 2 + 1 + 1 + len(p.Dimensions) + p.TotalBytes() + 1 + len(p.Desc)
}

// Read reads bytes_per_element, ndim, dimensions, the payload, and the
// description from r. The parameter's Name must already be set by the
// caller (the parameter-walk reads it before dispatching here, since it is
// shared on-wire with the group id).
func (p *Param) Read(r io.Reader, dt dtype.Dtypes) error {
	var hdr [2]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return err
	}
	p.BytesPerElement = int8(hdr[0])
	ndim := int(hdr[1])

	p.Dimensions = make([]uint8, ndim)
	if ndim > 0 {
		if _, err := io.ReadFull(r, p.Dimensions); err != nil {
			return err
		}
	}

	total := p.TotalBytes()
	p.Bytes = nil
	if total > 0 {
		p.Bytes = make([]byte, total)
		if _, err := io.ReadFull(r, p.Bytes); err != nil {
			return err
		}
	}

	var descSizeBuf [1]byte
	if _, err := io.ReadFull(r, descSizeBuf[:]); err != nil {
		return err
	}
	descSize := int(descSizeBuf[0])
	if descSize > 0 {
		descBytes := make([]byte, descSize)
		if _, err := io.ReadFull(r, descBytes); err != nil {
			return err
		}
		p.Desc = dt.DecodeString(descBytes)
	} else {
		p.Desc = ""
	}

	return nil
}

// Write encodes this parameter's on-wire representation under the given
// (positive) group id.
func (p *Param) Write(groupID int8, w io.Writer) error {
	name := []byte(p.Name)
	if _, err := w.Write([]byte{byte(int8(len(name))), byte(groupID)}); err != nil {
		return err
	}
	if _, err := w.Write(name); err != nil {
		return err
	}

	offset := int16(p.BinarySize() - 2 - len(name)) //nolint:gosec
	if err := binary.Write(w, binary.LittleEndian, offset); err != nil {
		return err
	}

	if _, err := w.Write([]byte{byte(p.BytesPerElement), byte(len(p.Dimensions))}); err != nil {
		return err
	}
	if len(p.Dimensions) > 0 {
		if _, err := w.Write(p.Dimensions); err != nil {
			return err
		}
	}
	if len(p.Bytes) > 0 {
		if _, err := w.Write(p.Bytes); err != nil {
			return err
		}
	}

	desc := []byte(p.Desc)
	if _, err := w.Write([]byte{byte(len(desc))}); err != nil {
		return err
	}
	if len(desc) > 0 {
		if _, err := w.Write(desc); err != nil {
			return err
		}
	}

	return nil
}

// requireDims returns errs.ErrTypeMismatch when the parameter has no
// dimensions; array accessors need at least one dimension to make sense of
// the raw bytes.
func (p *Param) requireDims() error {
	if len(p.Dimensions) == 0 {
		return errs.ErrTypeMismatch
	}

	return nil
}
