package tiff

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildStripImage(t *testing.T, stripOffsetsCount int) *growingBuffer {
	t.Helper()
	dst := &growingBuffer{}
	enc, pointerPos, err := NewEncoder(dst, binary.LittleEndian, false)
	require.NoError(t, err)

	dir := enc.NewDirectory(pointerPos)
	dir.WriteTag(TagImageWidth, Longs(10))
	dir.WriteTag(TagImageLength, Longs(100))
	dir.WriteTag(TagBitsPerSample, Shorts(8))
	dir.WriteTag(TagCompression, Shorts(uint16(CompressionNone)))
	dir.WriteTag(TagPhotometricInterp, Shorts(uint16(PhotometricBlackIsZero)))
	dir.WriteTag(TagSamplesPerPixel, Shorts(1))
	dir.WriteTag(TagRowsPerStrip, Longs(30))
	dir.WriteTag(TagStripOffsets, Longs(make([]uint32, stripOffsetsCount)...))
	dir.WriteTag(TagStripByteCounts, Longs(make([]uint32, stripOffsetsCount)...))
	require.NoError(t, dir.Finish())
	return dst
}

func TestImageStripCountMustMatchHeightOverRowsPerStrip(t *testing.T) {
	// height=100, RowsPerStrip=30 => ceil(100/30) == 4 strips expected.
	dst := buildStripImage(t, 4)
	d, err := NewDecoder(dst)
	require.NoError(t, err)
	img, err := NewImageFromDecoder(d)
	require.NoError(t, err)
	require.Equal(t, 4, img.ChunkCount())
}

func TestTileAttributesPaddingZeroOnExactMultiple(t *testing.T) {
	// ImageWidth/ImageHeight divide evenly into TileWidth/TileLength: no
	// tile should report any overhang.
	attrs := TileAttributes{ImageWidth: 512, ImageHeight: 256, SamplesPerPixel: 1, TileWidth: 256, TileLength: 128}
	for tile := 0; tile < attrs.TilesAcross()*attrs.TilesDown(); tile++ {
		padR, padD := attrs.GetPadding(tile)
		require.Equal(t, 0, padR, "tile %d", tile)
		require.Equal(t, 0, padD, "tile %d", tile)
	}
}

func TestTileAttributesPaddingOnTrailingEdge(t *testing.T) {
	attrs := TileAttributes{ImageWidth: 10, ImageHeight: 10, SamplesPerPixel: 1, TileWidth: 4, TileLength: 4}
	require.Equal(t, 3, attrs.TilesAcross())
	require.Equal(t, 3, attrs.TilesDown())

	// Last tile (bottom-right corner): both edges overhang by 2.
	lastTile := attrs.TilesAcross()*attrs.TilesDown() - 1
	padR, padD := attrs.GetPadding(lastTile)
	require.Equal(t, 2, padR)
	require.Equal(t, 2, padD)

	// First tile: no overhang.
	padR, padD = attrs.GetPadding(0)
	require.Equal(t, 0, padR)
	require.Equal(t, 0, padD)
}

func TestImageStripCountMismatchErrors(t *testing.T) {
	dst := buildStripImage(t, 3)
	d, err := NewDecoder(dst)
	require.NoError(t, err)
	_, err = NewImageFromDecoder(d)
	require.Error(t, err)
	fe, ok := err.(*FormatError)
	require.True(t, ok)
	require.Equal(t, InconsistentSizesEncountered, fe.Kind)
}
