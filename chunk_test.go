package tiff

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestExpandChunkFloatingPointPredictorPaddedTile covers a right-edge
// tile where the physical tile width exceeds the logical data width: the
// on-disk byte-plane layout spans the full physical row, so reversing
// the predictor over just the data width would misalign the planes and
// corrupt every recovered float (see chunk.go's ExpandChunk).
func TestExpandChunkFloatingPointPredictorPaddedTile(t *testing.T) {
	const physWidth, dataWidth, height, samples, byteLen = 4, 3, 1, 1, 4
	const tileLength = 2 // > height, so the tile also pads rows, exercising GetPadding's non-exact-divide path

	floats := []float32{1.0, 2.0, 3.0, 99.5} // last column is tile padding
	disk := make([]byte, physWidth*samples*byteLen)
	for i, f := range floats {
		binary.BigEndian.PutUint32(disk[i*byteLen:], math.Float32bits(f))
	}
	require.NoError(t, FloatingPointPredictor(disk, physWidth, height, physWidth, samples, byteLen))

	img := &Image{
		Width:         dataWidth,
		Height:        height,
		BitsPerSample: []uint16{32},
		SampleFormat:  []SampleFormat{SampleFormatFloat},
		Photometric:   PhotometricBlackIsZero,
		Compression:   CompressionNone,
		Predictor:     PredictorFloatingPoint,
		PlanarConfig:  PlanarConfigChunky,
		ChunkType:     ChunkTile,
		TileAttrs: &TileAttributes{
			ImageWidth:      dataWidth,
			ImageHeight:     height,
			SamplesPerPixel: samples,
			TileWidth:       physWidth,
			TileLength:      tileLength,
		},
		ChunkOffsets: []uint64{0},
		ChunkBytes:   []uint64{uint64(len(disk))},
	}

	dataRowBytes := dataWidth * samples * byteLen
	out := make([]byte, dataRowBytes)
	err := ExpandChunk(img, bytes.NewReader(disk), uint64(len(disk)), out, dataRowBytes, 0, binary.BigEndian, DefaultLimits())
	require.NoError(t, err)

	for i := 0; i < dataWidth; i++ {
		got := math.Float32frombits(binary.BigEndian.Uint32(out[i*byteLen:]))
		require.Equal(t, floats[i], got, "column %d", i)
	}
}
