package tiff

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// growingBuffer is an in-memory io.ReaderAt/io.WriterAt that grows to fit
// whatever offset it is asked to write at, for driving the encoder and
// decoder against the same backing store in tests.
type growingBuffer struct{ buf []byte }

func (g *growingBuffer) WriteAt(p []byte, off int64) (int, error) {
	end := int(off) + len(p)
	if end > len(g.buf) {
		grown := make([]byte, end)
		copy(grown, g.buf)
		g.buf = grown
	}
	copy(g.buf[off:], p)
	return len(p), nil
}

func (g *growingBuffer) ReadAt(p []byte, off int64) (int, error) {
	n := copy(p, g.buf[off:])
	if n < len(p) {
		return n, errFormat(TiffSignatureNotFound)
	}
	return n, nil
}

func TestEncodeDecodeRoundTrip1x1Gray8None(t *testing.T) {
	dst := &growingBuffer{}
	enc, pointerPos, err := NewEncoder(dst, binary.LittleEndian, false)
	require.NoError(t, err)

	dir := enc.NewDirectory(pointerPos)
	imgEnc, err := NewImageEncoder(dir, binary.LittleEndian, ImageSpec{
		Width:         1,
		Height:        1,
		BitsPerSample: []uint16{8},
		Photometric:   PhotometricBlackIsZero,
		Compression:   CompressionNone,
	})
	require.NoError(t, err)

	require.Equal(t, 1, imgEnc.NextStripRows())
	require.NoError(t, imgEnc.WriteStrip([]byte{0x2a}))
	require.Equal(t, 0, imgEnc.StripsRemaining())
	require.NoError(t, imgEnc.Finish())

	d, err := NewDecoder(dst)
	require.NoError(t, err)
	require.False(t, d.BigTiff())

	img, err := NewImageFromDecoder(d)
	require.NoError(t, err)
	require.Equal(t, uint32(1), img.Width)
	require.Equal(t, uint32(1), img.Height)
	require.Equal(t, PhotometricBlackIsZero, img.Photometric)
	require.Equal(t, ChunkStrip, img.ChunkType)
	require.False(t, d.MoreImages())

	out := make([]byte, 1)
	require.NoError(t, d.ReadChunk(img, 0, out, 1))
	require.Equal(t, byte(0x2a), out[0])
}

func TestEncodeDecodeRoundTripRGB8MultiStripPackBits(t *testing.T) {
	// 4200-byte rows give two rows per strip, so 5 rows span 3 strips.
	const width, height = 1400, 5
	dst := &growingBuffer{}
	enc, pointerPos, err := NewEncoder(dst, binary.BigEndian, false)
	require.NoError(t, err)

	dir := enc.NewDirectory(pointerPos)
	imgEnc, err := NewImageEncoder(dir, binary.BigEndian, ImageSpec{
		Width:         width,
		Height:        height,
		BitsPerSample: []uint16{8, 8, 8},
		Photometric:   PhotometricRGB,
		Compression:   CompressionPackBits,
		Predictor:     PredictorHorizontal,
	})
	require.NoError(t, err)

	pixels := make([]byte, width*height*3)
	for i := range pixels {
		pixels[i] = byte(i * 7)
	}

	rowsPerStripWritten := 0
	for imgEnc.StripsRemaining() > 0 {
		rows := imgEnc.NextStripRows()
		start := rowsPerStripWritten * width * 3
		end := start + rows*width*3
		require.NoError(t, imgEnc.WriteStrip(pixels[start:end]))
		rowsPerStripWritten += rows
	}
	require.Equal(t, height, rowsPerStripWritten)
	require.NoError(t, imgEnc.Finish())

	d, err := NewDecoder(dst)
	require.NoError(t, err)
	img, err := NewImageFromDecoder(d)
	require.NoError(t, err)
	require.Equal(t, PhotometricRGB, img.Photometric)
	require.Equal(t, 3, img.SamplesPerPixel())

	out := make([]byte, width*height*3)
	rowBytes := width * 3
	row := 0
	for i := 0; i < img.ChunkCount(); i++ {
		_, chunkHeight := img.ChunkDataDimensions(i)
		require.NoError(t, d.ReadChunk(img, i, out[row*rowBytes:], rowBytes))
		row += int(chunkHeight)
	}
	require.Equal(t, pixels, out)
}

func TestEncodeDecodeRoundTripAllCompressionMethods(t *testing.T) {
	const width, height = 9, 6
	pixels := make([]byte, width*height)
	for i := range pixels {
		pixels[i] = byte(i*31 + 7)
	}

	for _, method := range []CompressionMethod{CompressionNone, CompressionLZW, CompressionDeflate, CompressionPackBits} {
		dst := &growingBuffer{}
		enc, pointerPos, err := NewEncoder(dst, binary.LittleEndian, false)
		require.NoError(t, err)

		dir := enc.NewDirectory(pointerPos)
		imgEnc, err := NewImageEncoder(dir, binary.LittleEndian, ImageSpec{
			Width:         width,
			Height:        height,
			BitsPerSample: []uint16{8},
			Photometric:   PhotometricBlackIsZero,
			Compression:   method,
		})
		require.NoError(t, err)
		require.NoError(t, imgEnc.WriteStrip(pixels))
		require.NoError(t, imgEnc.Finish())

		d, err := NewDecoder(dst)
		require.NoError(t, err)
		img, err := NewImageFromDecoder(d)
		require.NoError(t, err)

		out := make([]byte, width*height)
		require.NoError(t, d.ReadChunk(img, 0, out, width))
		require.Equal(t, pixels, out, "compression method %v", method)
	}
}

func TestEncodeDecodeRoundTripBigTIFF(t *testing.T) {
	dst := &growingBuffer{}
	enc, pointerPos, err := NewEncoder(dst, binary.LittleEndian, true)
	require.NoError(t, err)

	dir := enc.NewDirectory(pointerPos)
	imgEnc, err := NewImageEncoder(dir, binary.LittleEndian, ImageSpec{
		Width:         2,
		Height:        1,
		BitsPerSample: []uint16{8},
		Photometric:   PhotometricBlackIsZero,
		Compression:   CompressionNone,
	})
	require.NoError(t, err)
	require.NoError(t, imgEnc.WriteStrip([]byte{0x01, 0x02}))
	require.NoError(t, imgEnc.Finish())

	d, err := NewDecoder(dst)
	require.NoError(t, err)
	require.True(t, d.BigTiff())

	img, err := NewImageFromDecoder(d)
	require.NoError(t, err)
	out := make([]byte, 2)
	require.NoError(t, d.ReadChunk(img, 0, out, 2))
	require.Equal(t, []byte{0x01, 0x02}, out)
}
