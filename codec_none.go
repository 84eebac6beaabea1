package tiff

import "io"

// noneCodec passes chunk bytes through unchanged (compression code 1).
type noneCodec struct {
	limits Limits
}

func (c noneCodec) Decompress(r io.Reader, blockWidth, blockHeight int) ([]byte, error) {
	buf, err := boundedReadAll(r, c.limits.DecodingBufferSize)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func (noneCodec) Compress(w io.Writer, data []byte, blockWidth, blockHeight int) error {
	_, err := w.Write(data)
	return err
}
