package tiff

import (
	"compress/zlib"
	"io"
)

// deflateCodec implements Deflate (compression code 8) and old-style
// Deflate (code 0x80B2), both zlib-wrapped streams, matching the
// teacher's decoder.go dispatch of cDeflate/cDeflateOld to compress/zlib.
type deflateCodec struct {
	limits Limits
}

func (d deflateCodec) Decompress(r io.Reader, blockWidth, blockHeight int) ([]byte, error) {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, errCorrupt("deflate: " + err.Error())
	}
	defer zr.Close()

	want := uint64(blockWidth) * uint64(blockHeight)
	if d.limits.DecodingBufferSize != 0 {
		if err := d.limits.checkDecodingBufferSize(want); err != nil {
			return nil, err
		}
	}

	buf, err := boundedReadAll(zr, d.limits.DecodingBufferSize)
	if err != nil {
		if err == ErrLimitsExceeded {
			return nil, err
		}
		return nil, errCorrupt("deflate: " + err.Error())
	}
	return buf, nil
}

func (deflateCodec) Compress(w io.Writer, data []byte, blockWidth, blockHeight int) error {
	zw := zlib.NewWriter(w)
	if _, err := zw.Write(data); err != nil {
		return err
	}
	return zw.Close()
}
