package tiff

import "io"

// Decompressor turns one chunk's compressed bytes into its raw sample
// bytes. blockWidth/blockHeight are the chunk's pixel dimensions (the
// last strip may have fewer rows than RowsPerStrip; tiles, edge tiles
// included, are always passed at their full TileWidth x TileLength).
type Decompressor interface {
	Decompress(r io.Reader, blockWidth, blockHeight int) ([]byte, error)
}

// Compressor turns one chunk's raw sample bytes into its compressed
// on-disk form.
type Compressor interface {
	Compress(w io.Writer, data []byte, blockWidth, blockHeight int) error
}

// boundedReadAll reads r to completion, refusing to hand back more than
// limit bytes (limit == 0 means unlimited). This bounds the allocation a
// malicious or corrupt chunk can force a codec into regardless of what
// the chunk's declared dimensions promised, the same guard
// deflateCodec already applies against its zlib stream.
func boundedReadAll(r io.Reader, limit uint64) ([]byte, error) {
	if limit == 0 {
		return io.ReadAll(r)
	}
	buf, err := io.ReadAll(io.LimitReader(r, int64(limit)+1))
	if err != nil {
		return nil, err
	}
	if uint64(len(buf)) > limit {
		return nil, ErrLimitsExceeded
	}
	return buf, nil
}

// decompressorFor returns the Decompressor for a CompressionMethod, or an
// UnsupportedError if the method is unimplemented.
func decompressorFor(img *Image, method CompressionMethod, limits Limits) (Decompressor, error) {
	switch method {
	case CompressionNone:
		return noneCodec{limits: limits}, nil
	case CompressionPackBits:
		return packBitsCodec{limits: limits}, nil
	case CompressionLZW:
		return lzwCodec{limits: limits}, nil
	case CompressionDeflate, CompressionOldDeflate:
		return deflateCodec{limits: limits}, nil
	case CompressionModernJPEG:
		return jpegCodec{jpegTables: img.JPEGTables, limits: limits}, nil
	case CompressionFax4:
		return ccittFax4Codec{photometric: img.Photometric}, nil
	case CompressionSGILog24:
		return sgiLog24Codec{}, nil
	case CompressionSGILog32:
		return sgiLog32Codec{mode: sgiModeFor(img)}, nil
	case CompressionOldJPEG, CompressionHuffman, CompressionFax3:
		return nil, errUnsupportedCompression(uint16(method))
	default:
		return nil, errUnsupportedCompression(uint16(method))
	}
}

// compressorFor returns the Compressor for a CompressionMethod, used by
// the encoder.
func compressorFor(method CompressionMethod) (Compressor, error) {
	switch method {
	case CompressionNone:
		return noneCodec{}, nil
	case CompressionPackBits:
		return packBitsCodec{}, nil
	case CompressionLZW:
		return lzwCodec{}, nil
	case CompressionDeflate:
		return deflateCodec{}, nil
	default:
		return nil, errUnsupportedCompression(uint16(method))
	}
}

type sgiMode int

const (
	sgiModeLogLuv32 sgiMode = iota
	sgiModeLogL16
)

func sgiModeFor(img *Image) sgiMode {
	if img.Samples == 1 {
		return sgiModeLogL16
	}
	return sgiModeLogLuv32
}
