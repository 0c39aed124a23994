package archive

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdCodec wraps pooled zstd encoders/decoders. The klauspost/compress/zstd
// package is explicitly designed for reuse after a warmup, so pooling avoids
// repaying that cost on every call.
type zstdCodec struct {
	encoders *sync.Pool
	decoders *sync.Pool
}

var _ Codec = (*zstdCodec)(nil)

func newZstdCodec() (*zstdCodec, error) {
	return &zstdCodec{
		encoders: &sync.Pool{
			New: func() any {
				enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
				if err != nil {
					panic(fmt.Sprintf("archive: zstd encoder: %v", err))
				}

				return enc
			},
		},
		decoders: &sync.Pool{
			New: func() any {
				dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
				if err != nil {
					panic(fmt.Sprintf("archive: zstd decoder: %v", err))
				}

				return dec
			},
		},
	}, nil
}

func (c *zstdCodec) Compress(data []byte) ([]byte, error) {
	enc, _ := c.encoders.Get().(*zstd.Encoder)
	defer c.encoders.Put(enc)

	return enc.EncodeAll(data, nil), nil
}

func (c *zstdCodec) Decompress(data []byte) ([]byte, error) {
	dec, _ := c.decoders.Get().(*zstd.Decoder)
	defer c.decoders.Put(dec)

	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("archive: zstd decompress: %w", err)
	}

	return out, nil
}
