package tiff

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"

	"github.com/mdouchement/hdr/format"
)

// sgiLog24Codec implements SGILog24 (compression 34676): each pixel packed
// into 3 bytes as a 10-bit log-luminance field and a 14-bit index into the
// perceptually-uniform chrominance quantization table below. There is no
// library in the retrieved corpus for this exact 24-bit packing (the
// teacher's hdr/format package only covers the 32-bit LogLuv layout used
// by sgiLog32Codec), so the unpack is a direct port of the reference
// decoder's dequantization tables and math.
type sgiLog24Codec struct{}

func (sgiLog24Codec) Decompress(r io.Reader, blockWidth, blockHeight int) ([]byte, error) {
	npixels := blockWidth * blockHeight
	raw := make([]byte, npixels*3)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, errCorrupt("sgilog24: " + err.Error())
	}

	out := make([]byte, npixels*12)
	for i := 0; i < npixels; i++ {
		a, b, c := uint32(raw[i*3]), uint32(raw[i*3+1]), uint32(raw[i*3+2])
		packed := a<<16 | b<<8 | c
		l := (packed >> 14) & 0x3ff
		u, v := decodeQuantizedUV(packed & 0x3fff)

		by := dequantizeLuma24(l)
		uf, vf := dequantizeUV24(u, v)
		r32, g32, b32 := xyYToSRGB(uf, vf, by)

		putF32(out[i*12:], r32)
		putF32(out[i*12+4:], g32)
		putF32(out[i*12+8:], b32)
	}
	return out, nil
}

func (sgiLog24Codec) Compress(w io.Writer, data []byte, blockWidth, blockHeight int) error {
	return errUnsupportedCompression(uint16(CompressionSGILog24))
}

// sgiLog32Codec implements SGILog32 (compression 34677): a PackBits-style
// byte-plane run-length code across the pixel's raw bytes (teacher's
// unRLE), then per-pixel log-luminance/chrominance dequantization. Two
// layouts share this compression code: the 4-byte-per-pixel LogLuv layout
// (L:16, u:8, v:8) for SamplesPerPixel>1, and the 2-byte-per-pixel LogL
// layout (L:16 only) for SamplesPerPixel==1 ("SGILog16").
type sgiLog32Codec struct {
	mode sgiMode
}

func (s sgiLog32Codec) Decompress(r io.Reader, blockWidth, blockHeight int) ([]byte, error) {
	br, ok := r.(byteReader)
	if !ok {
		br = bufio.NewReader(r)
	}

	switch s.mode {
	case sgiModeLogL16:
		return decodeSGILog16(br, blockWidth, blockHeight)
	default:
		return decodeSGILog32(br, blockWidth, blockHeight)
	}
}

func (sgiLog32Codec) Compress(w io.Writer, data []byte, blockWidth, blockHeight int) error {
	return errUnsupportedCompression(uint16(CompressionSGILog32))
}

// decodeSGILog32 unpacks one row at a time: each of the 4 byte-planes
// (L-high, L-low, u, v) is PackBits-RLE'd independently across the row,
// matching the teacher's unRLE for mode mLogLuv (bytesPerPixel 4).
func decodeSGILog32(br byteReader, blockWidth, blockHeight int) ([]byte, error) {
	out := make([]byte, blockWidth*blockHeight*12)
	plane := make([]byte, blockWidth*4)

	for row := 0; row < blockHeight; row++ {
		if err := unRLERow(br, plane, blockWidth, 4); err != nil {
			return nil, errCorrupt("sgilog32: " + err.Error())
		}
		rowOut := out[row*blockWidth*12:]
		for x := 0; x < blockWidth; x++ {
			l := format.BytesToUint16(plane[x*4], plane[x*4+1])
			u, v := plane[x*4+2], plane[x*4+3]

			X, Y, Z := format.LogLuvToXYZ(byte(l>>8), byte(l), u, v)
			r32, g32, b32 := xyzToSRGB(X, Y, Z)

			putF32(rowOut[x*12:], r32)
			putF32(rowOut[x*12+4:], g32)
			putF32(rowOut[x*12+8:], b32)
		}
	}
	return out, nil
}

// decodeSGILog16 unpacks the log-luminance-only variant: 2 byte-planes
// (L-high, L-low) PackBits-RLE'd per row, matching the teacher's unRLE
// for mode mLogL (bytesPerPixel 2). Output is 1 float32 per pixel.
func decodeSGILog16(br byteReader, blockWidth, blockHeight int) ([]byte, error) {
	out := make([]byte, blockWidth*blockHeight*4)
	plane := make([]byte, blockWidth*2)

	for row := 0; row < blockHeight; row++ {
		if err := unRLERow(br, plane, blockWidth, 2); err != nil {
			return nil, errCorrupt("sgilog16: " + err.Error())
		}
		rowOut := out[row*blockWidth*4:]
		for x := 0; x < blockWidth; x++ {
			sle := format.BytesToUint16(plane[x*2], plane[x*2+1])
			y := format.SLeToY(sle)
			putF32(rowOut[x*4:], y)
		}
	}
	return out, nil
}

// unRLERow decodes one scanline of the byte-plane RLE scheme shared by the
// SGILog32/16 layouts: each of bytesPerPixel planes is encoded separately
// (all of plane 0 across the row, then all of plane 1, and so on) with
// LogLuv run codes (a header byte with the high bit set repeats the next
// byte header-126 times; any other header is a count of literal bytes
// that follow), then interleaved into dst in pixel order. Ported from the
// teacher's unRLE (compress.go).
func unRLERow(br byteReader, dst []byte, width, bytesPerPixel int) error {
	for channel := 0; channel < bytesPerPixel; channel++ {
		offset := channel
		remaining := width

		for remaining > 0 {
			b, err := br.ReadByte()
			if err != nil {
				return err
			}

			if b&128 != 0 {
				run := int(b) + (2 - 128)
				remaining -= run

				v, err := br.ReadByte()
				if err != nil {
					return err
				}
				for ; run > 0; run-- {
					dst[offset] = v
					offset += bytesPerPixel
				}
			} else {
				run := int(b)
				remaining -= run

				for ; run > 0; run-- {
					v, err := br.ReadByte()
					if err != nil {
						return err
					}
					dst[offset] = v
					offset += bytesPerPixel
				}
			}
		}
	}
	return nil
}

func putF32(dst []byte, v float32) {
	binary.NativeEndian.PutUint32(dst, math.Float32bits(v))
}

// dequantizeLuma24 inverts the 10-bit floating-point-like log-luminance
// encoding used by SGILog24: the high 4 bits are an exponent (biased by 24)
// and the low 6 bits a mantissa, with an all-zero code meaning black.
func dequantizeLuma24(l uint32) float32 {
	if l == 0 {
		return 0
	}
	le := float32(l & 0x3ff)
	exponent := float32(math.Floor(float64(le)/64.0)) - 24
	mantissa := le - (exponent+24)*64
	return (mantissa + 64) / 64 * float32(math.Pow(2, float64(exponent)))
}

// xyYToSRGB converts a CIE xyY triple (derived from dequantized u', v' and
// luminance Y) to linear sRGB via the XYZ intermediate, using the same D65
// primaries matrix as xyzToSRGB.
func xyYToSRGB(u, v, by float32) (r, g, b float32) {
	s := 1 / (6*u - 16*v + 12)
	x := 9 * u * s
	y := 4 * v * s

	bx := x / y * by
	bz := (1 - x - y) / y * by
	return xyzToSRGB(bx, by, bz)
}

// xyzToSRGB applies the CIE XYZ to linear sRGB (D65) primaries matrix.
func xyzToSRGB(x, y, z float32) (r, g, b float32) {
	r = 3.2404542*x + -1.5371385*y + -0.4985314*z
	g = -0.969266*x + 1.8760108*y + 0.0415560*z
	b = 0.0556434*x + -0.2040259*y + 1.0572252*z
	return
}

// uvRow holds one row of the SGILog24 perceptually-uniform chrominance
// quantization table: u values in this row start at ustart and are spaced
// uvQuantizationWidth apart, numUs of them.
type uvRow struct {
	ustart float32
	numUs  uint16
}

const (
	uvQuantizationWidth float32 = 0.003500
	uvVStart            float32 = 0.016940
	uvNVs                       = 163
)

// uvRows is the classical SGI LogLuv chrominance quantization table,
// transcribed from the reference decoder (itself transcribed from
// libtiff, 1997, Greg Ward Larson, SGI).
var uvRows = [uvNVs]uvRow{
	{0.247663, 4}, {0.243779, 6}, {0.241684, 7}, {0.237874, 9},
	{0.235906, 10}, {0.232153, 12}, {0.228352, 14}, {0.226259, 15},
	{0.222371, 17}, {0.220410, 18}, {0.214710, 21}, {0.212714, 22},
	{0.210721, 23}, {0.204976, 26}, {0.202986, 27}, {0.199245, 29},
	{0.195525, 31}, {0.193560, 32}, {0.189878, 34}, {0.186216, 36},
	{0.186216, 36}, {0.182592, 38}, {0.179003, 40}, {0.175466, 42},
	{0.172001, 44}, {0.172001, 44}, {0.168612, 46}, {0.168612, 46},
	{0.163575, 49}, {0.158642, 52}, {0.158642, 52}, {0.158642, 52},
	{0.153815, 55}, {0.153815, 55}, {0.149097, 58}, {0.149097, 58},
	{0.142746, 62}, {0.142746, 62}, {0.142746, 62}, {0.138270, 65},
	{0.138270, 65}, {0.138270, 65}, {0.132166, 69}, {0.132166, 69},
	{0.126204, 73}, {0.126204, 73}, {0.126204, 73}, {0.120381, 77},
	{0.120381, 77}, {0.120381, 77}, {0.120381, 77}, {0.112962, 82},
	{0.112962, 82}, {0.112962, 82}, {0.107450, 86}, {0.107450, 86},
	{0.107450, 86}, {0.107450, 86}, {0.100343, 91}, {0.100343, 91},
	{0.100343, 91}, {0.095126, 95}, {0.095126, 95}, {0.095126, 95},
	{0.095126, 95}, {0.088276, 100}, {0.088276, 100}, {0.088276, 100},
	{0.088276, 100}, {0.081523, 105}, {0.081523, 105}, {0.081523, 105},
	{0.081523, 105}, {0.074861, 110}, {0.074861, 110}, {0.074861, 110},
	{0.074861, 110}, {0.068290, 115}, {0.068290, 115}, {0.068290, 115},
	{0.068290, 115}, {0.063573, 119}, {0.063573, 119}, {0.063573, 119},
	{0.063573, 119}, {0.057219, 124}, {0.057219, 124}, {0.057219, 124},
	{0.057219, 124}, {0.050985, 129}, {0.050985, 129}, {0.050985, 129},
	{0.050985, 129}, {0.050985, 129}, {0.044859, 134}, {0.044859, 134},
	{0.044859, 134}, {0.044859, 134}, {0.040571, 138}, {0.040571, 138},
	{0.040571, 138}, {0.040571, 138}, {0.036339, 142}, {0.036339, 142},
	{0.036339, 142}, {0.036339, 142}, {0.032139, 146}, {0.032139, 146},
	{0.032139, 146}, {0.032139, 146}, {0.027947, 150}, {0.027947, 150},
	{0.027947, 150}, {0.023739, 154}, {0.023739, 154}, {0.023739, 154},
	{0.023739, 154}, {0.019504, 158}, {0.019504, 158}, {0.019504, 158},
	{0.016976, 161}, {0.016976, 161}, {0.016976, 161}, {0.016976, 161},
	{0.012639, 165}, {0.012639, 165}, {0.012639, 165}, {0.009991, 168},
	{0.009991, 168}, {0.009991, 168}, {0.009016, 170}, {0.009016, 170},
	{0.009016, 170}, {0.006217, 173}, {0.006217, 173}, {0.005097, 175},
	{0.005097, 175}, {0.005097, 175}, {0.003909, 177}, {0.003909, 177},
	{0.002340, 177}, {0.002389, 170}, {0.001068, 164}, {0.001653, 157},
	{0.000717, 150}, {0.001614, 143}, {0.000270, 136}, {0.000484, 129},
	{0.001103, 123}, {0.001242, 115}, {0.001188, 109}, {0.001011, 103},
	{0.000709, 97}, {0.000301, 89}, {0.002416, 82}, {0.003251, 76},
	{0.003246, 69}, {0.004141, 62}, {0.005963, 55}, {0.008839, 47},
	{0.010490, 40}, {0.016994, 31}, {0.023659, 21},
}

// uvCumulative[i] is the cumulative count of u-divisions in rows before i;
// uvNDivs is the total number of (u,v) cells across the whole table.
var uvCumulative, uvNDivs = buildUVCumulative()

func buildUVCumulative() ([uvNVs]uint16, uint16) {
	var cum [uvNVs]uint16
	var sum uint16
	for i, row := range uvRows {
		cum[i] = sum
		sum += row.numUs
	}
	return cum, sum
}

// decodeQuantizedUV maps a 14-bit packed UV index back to its (u, v)
// quantization-cell coordinates by locating the v row whose cumulative
// range contains it, then the offset within that row.
func decodeQuantizedUV(uv uint32) (u, v uint8) {
	if uv >= uint32(uvNDivs) {
		return 0, 0
	}

	lo, hi := 0, uvNVs-1
	vIndex := 0
	for lo <= hi {
		mid := (lo + hi) / 2
		if uint32(uvCumulative[mid]) <= uv {
			vIndex = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}

	uIndex := uint16(uv) - uvCumulative[vIndex]
	return uint8(uIndex), uint8(vIndex)
}

func dequantizeUV24(u, v uint8) (uf, vf float32) {
	vf = uvVStart + float32(v)*uvQuantizationWidth
	row := uvRows[v]
	uf = row.ustart + float32(u)*uvQuantizationWidth
	return
}
