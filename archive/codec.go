// Package archive provides optional compression for a fully-serialized C3D
// byte buffer, independent of the core (always-uncompressed) wire format.
// It operates purely on the finished output of writer.Write, or the input
// to reader.Open; it never transcodes header, parameter, or frame data.
package archive

import "github.com/gocap3d/c3d/errs"

// ErrUnsupportedAlgorithm is returned by NewCodec for an unknown Algorithm.
var ErrUnsupportedAlgorithm = errs.ErrUnsupportedAlgorithm

// Codec compresses and decompresses a complete serialized C3D file.
type Codec interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// Algorithm names a supported Codec implementation.
type Algorithm string

const (
	// None performs no compression; Compress and Decompress are identity.
	None Algorithm = "none"
	// Zstd selects the zstd codec: best compression ratio, moderate speed.
	Zstd Algorithm = "zstd"
	// LZ4 selects the lz4 codec: faster, lower compression ratio.
	LZ4 Algorithm = "lz4"
)

// NewCodec returns the Codec for the given algorithm.
func NewCodec(alg Algorithm) (Codec, error) {
	switch alg {
	case None, "":
		return noopCodec{}, nil
	case Zstd:
		return newZstdCodec()
	case LZ4:
		return lz4Codec{}, nil
	default:
		return nil, ErrUnsupportedAlgorithm
	}
}
