package archive

import (
	"errors"
	"sync"

	"github.com/gocap3d/c3d/internal/pool"
	"github.com/pierrec/lz4/v4"
)

var lz4CompressorPool = sync.Pool{
	New: func() any { return &lz4.Compressor{} },
}

// lz4Codec is a faster, lower-ratio alternative to zstdCodec for the same
// archive use case.
type lz4Codec struct{}

var _ Codec = lz4Codec{}

// Compress uses the blob-set pool for its scratch buffer: a whole serialized
// C3D file is typically far larger than the per-frame blob buffers writer
// pools, so it belongs in the MiB-scale tier.
func (lz4Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	scratch := pool.GetBlobSetBuffer()
	defer pool.PutBlobSetBuffer(scratch)
	scratch.ExtendOrGrow(lz4.CompressBlockBound(len(data)))

	c, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(c)

	n, err := c.CompressBlock(data, scratch.Bytes())
	if err != nil {
		return nil, err
	}

	out := make([]byte, n)
	copy(out, scratch.Bytes()[:n])

	return out, nil
}

// Decompress grows its scratch buffer geometrically since lz4 block format
// carries no decompressed-size header; the 128MiB ceiling guards against
// corrupted input driving unbounded allocation.
func (lz4Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	const maxSize = 128 * 1024 * 1024

	scratch := pool.GetBlobSetBuffer()
	defer pool.PutBlobSetBuffer(scratch)

	for bufSize := len(data) * 4; bufSize <= maxSize; bufSize *= 2 {
		scratch.Reset()
		scratch.ExtendOrGrow(bufSize)

		n, err := lz4.UncompressBlock(data, scratch.Bytes())
		if err != nil {
			if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) {
				continue
			}

			return nil, err
		}

		out := make([]byte, n)
		copy(out, scratch.Bytes()[:n])

		return out, nil
	}

	return nil, lz4.ErrInvalidSourceShortBuffer
}
