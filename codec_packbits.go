package tiff

import (
	"bufio"
	"io"
)

type byteReader interface {
	io.Reader
	io.ByteReader
}

// packBitsCodec implements Apple PackBits (compression code 32773), TIFF
// spec §9.
type packBitsCodec struct {
	limits Limits
}

func (c packBitsCodec) Decompress(r io.Reader, blockWidth, blockHeight int) ([]byte, error) {
	var n int
	buf := make([]byte, 128)
	dst := make([]byte, 0, blockWidth*blockHeight)
	br, ok := r.(byteReader)
	if !ok {
		br = bufio.NewReader(r)
	}

	for {
		b, err := br.ReadByte()
		if err != nil {
			if err == io.EOF {
				return dst, nil
			}
			return nil, errCorrupt("packbits: " + err.Error())
		}
		code := int(int8(b))
		switch {
		case code >= 0:
			n, err = io.ReadFull(br, buf[:code+1])
			if err != nil {
				return nil, errCorrupt("packbits: literal run truncated")
			}
			dst = append(dst, buf[:n]...)
		case code == -128:
			// No-op.
		default:
			if b, err = br.ReadByte(); err != nil {
				return nil, errCorrupt("packbits: repeat run truncated")
			}
			for j := 0; j < 1-code; j++ {
				buf[j] = b
			}
			dst = append(dst, buf[:1-code]...)
		}
		if c.limits.DecodingBufferSize != 0 && uint64(len(dst)) > c.limits.DecodingBufferSize {
			return nil, ErrLimitsExceeded
		}
	}
}

// Compress writes data using the simplest valid PackBits encoding: literal
// runs of up to 128 bytes, with no repeat runs. This trades compression
// ratio for simplicity and is always decodable by any PackBits reader.
func (packBitsCodec) Compress(w io.Writer, data []byte, blockWidth, blockHeight int) error {
	const maxLiteral = 128
	for len(data) > 0 {
		n := len(data)
		if n > maxLiteral {
			n = maxLiteral
		}
		if _, err := w.Write([]byte{byte(n - 1)}); err != nil {
			return err
		}
		if _, err := w.Write(data[:n]); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}
