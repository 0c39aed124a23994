// Package floatcodec converts between the three 32-bit floating-point
// representations that coexist in C3D files: native IEEE-754 (Intel,
// little-endian; MIPS, big-endian) and DEC PDP-11 single precision.
//
// DEC and IEEE single precision share a sign-exponent-mantissa layout but
// disagree on word order and exponent bias. The conversion here follows
// the bit-twiddling method documented for C3D readers: swap the two
// 16-bit halves of the word, then decrement the 8-bit exponent field by
// two. It is exact for normal DEC values with exponent >= 2; denormals,
// zero, NaN, and infinity are not round-trip correct, since DEC has no
// representation for them and the decrement would underflow the
// exponent field. That limitation is inherent to the format, not a
// shortcut taken here.
package floatcodec

import (
	"encoding/binary"
	"math"

	"github.com/gocap3d/c3d/endian"
	"github.com/gocap3d/c3d/errs"
)

// IEEE32 reinterprets a 4-byte record as native IEEE-754 single precision,
// using engine to determine word order. Intel and MIPS floats are already
// in IEEE layout; only the endianness of the 4 bytes differs.
func IEEE32(b []byte, engine endian.EndianEngine) float32 {
	return math.Float32frombits(engine.Uint32(b))
}

// IEEE64 reinterprets an 8-byte record as native IEEE-754 double precision.
func IEEE64(b []byte, engine endian.EndianEngine) float64 {
	return math.Float64frombits(engine.Uint64(b))
}

// DECWordToIEEE converts a single 32-bit DEC float, already loaded as a
// little-endian word, to an IEEE-754 float32.
//
// Layout (DEC order): Mantissa(16:0) | Sign | Exponent(8:0) | Mantissa(23:17).
// The two 16-bit halves are swapped to produce a little-endian-ordered
// Sign|Exponent|Mantissa word, then the 8-bit exponent field is
// decremented by 2.
func DECWordToIEEE(w uint32) float32 {
	reshuffled := ((w & 0xFFFF0000) >> 16) | ((w & 0x0000FFFF) << 16)
	expBits := ((reshuffled & 0xFF000000) - 1) & 0xFF000000
	out := (reshuffled & 0x00FFFFFF) | expBits

	return math.Float32frombits(out)
}

// DECBytesToIEEE32 converts a byte slice of 4-byte DEC floats to IEEE-754
// float32 values, one per 4-byte word, using the same byte-level swap as
// DECWordToIEEE but operating directly on bytes instead of round-tripping
// through a uint32. Output byte k of each quadruple comes from input byte
// swap[k] = [2,3,0,1], with the top output byte additionally decremented
// by 1 when its low 7 bits are non-zero — this performs the exponent
// decrement in place without crossing byte boundaries.
//
// len(src) must be a multiple of 4.
func DECBytesToIEEE32(src []byte) []float32 {
	n := len(src) / 4
	out := make([]float32, n)
	swap := [4]int{2, 3, 0, 1}

	for i := range n {
		base := i * 4
		var quad [4]byte
		for k := range 4 {
			quad[k] = src[base+swap[k]]
		}
		if quad[3]&0x7f != 0 {
			quad[3]--
		}
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(quad[:]))
	}

	return out
}

// DECBytesToIEEE64 always fails: the format has no 64-bit DEC float support.
func DECBytesToIEEE64(src []byte) ([]float64, error) {
	return nil, errs.ErrUnsupportedEncoding
}
