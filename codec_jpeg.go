package tiff

import (
	"bytes"
	"image"
	"image/jpeg"
	"io"
)

// jpegCodec implements ModernJPEG (compression code 7). Per-chunk JPEG
// data in this compression scheme typically omits the quantization and
// Huffman tables, storing them once in the JPEGTables tag instead; a
// standalone decodable JPEG stream is assembled by splicing the tables
// segment in before the chunk's own scan data, then handed to the
// standard library decoder (mirroring how other JPEG-adjacent readers in
// the corpus delegate entropy decode rather than reimplementing it).
type jpegCodec struct {
	jpegTables []byte
	limits     Limits
}

const (
	jpegSOI  = 0xD8
	jpegEOI  = 0xD9
	jpegMark = 0xFF
)

func (j jpegCodec) Decompress(r io.Reader, blockWidth, blockHeight int) ([]byte, error) {
	chunk, err := boundedReadAll(r, j.limits.DecodingBufferSize)
	if err != nil {
		return nil, err
	}

	stream := chunk
	if len(j.jpegTables) >= 2 {
		stream = spliceJPEGTables(j.jpegTables, chunk)
	}

	img, err := jpeg.Decode(bytes.NewReader(stream))
	if err != nil {
		return nil, errCorrupt("modernjpeg: " + err.Error())
	}

	return jpegImageToRaw(img, blockWidth, blockHeight)
}

// spliceJPEGTables inserts the body of the JPEGTables segment (everything
// between its SOI and EOI markers) directly after the chunk's own SOI
// marker, producing one continuous, independently decodable JPEG stream.
func spliceJPEGTables(tables, chunk []byte) []byte {
	body := tables
	if len(body) >= 4 && body[0] == jpegMark && body[1] == jpegSOI {
		body = body[2:]
	}
	if n := len(body); n >= 2 && body[n-2] == jpegMark && body[n-1] == jpegEOI {
		body = body[:n-2]
	}

	if len(chunk) < 2 || chunk[0] != jpegMark || chunk[1] != jpegSOI {
		out := make([]byte, 0, len(body)+len(chunk)+2)
		out = append(out, jpegMark, jpegSOI)
		out = append(out, body...)
		out = append(out, chunk...)
		return out
	}

	out := make([]byte, 0, len(chunk)+len(body))
	out = append(out, chunk[:2]...)
	out = append(out, body...)
	out = append(out, chunk[2:]...)
	return out
}

// jpegImageToRaw flattens the decoded JPEG's native image.Image
// representation into interleaved raw sample bytes, one byte per sample,
// in the channel order TIFF expects for the corresponding photometric
// interpretation (gray, YCbCr, or CMYK).
func jpegImageToRaw(img image.Image, blockWidth, blockHeight int) ([]byte, error) {
	switch pix := img.(type) {
	case *image.Gray:
		out := make([]byte, blockWidth*blockHeight)
		for y := 0; y < blockHeight; y++ {
			copy(out[y*blockWidth:(y+1)*blockWidth], pix.Pix[y*pix.Stride:y*pix.Stride+blockWidth])
		}
		return out, nil
	case *image.YCbCr:
		out := make([]byte, blockWidth*blockHeight*3)
		for y := 0; y < blockHeight; y++ {
			for x := 0; x < blockWidth; x++ {
				yi := pix.YOffset(x, y)
				ci := pix.COffset(x, y)
				o := (y*blockWidth + x) * 3
				out[o] = pix.Y[yi]
				out[o+1] = pix.Cb[ci]
				out[o+2] = pix.Cr[ci]
			}
		}
		return out, nil
	case *image.CMYK:
		out := make([]byte, blockWidth*blockHeight*4)
		for y := 0; y < blockHeight; y++ {
			copy(out[y*blockWidth*4:(y+1)*blockWidth*4], pix.Pix[y*pix.Stride:y*pix.Stride+blockWidth*4])
		}
		return out, nil
	default:
		return nil, errUnsupported(UnsupportedColorType, "unrecognized JPEG pixel format")
	}
}

func (jpegCodec) Compress(w io.Writer, data []byte, blockWidth, blockHeight int) error {
	return errUnsupportedCompression(uint16(CompressionModernJPEG))
}
