package archive

// noopCodec bypasses compression; useful as a baseline or when the caller
// wants a consistent Codec interface without paying the compression cost.
type noopCodec struct{}

var _ Codec = noopCodec{}

func (noopCodec) Compress(data []byte) ([]byte, error) {
	return data, nil
}

func (noopCodec) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
