package tiff

import (
	"encoding/binary"
	"io"
)

// TiffEncoder writes a TIFF or BigTIFF header and then one or more
// directories into a seekable destination.
type TiffEncoder struct {
	w   *ByteOrderWriter
	enc tiffEncoding
}

// NewEncoder writes the file header: the two-byte byte-order marker,
// the magic number (42 for classic TIFF, or 43 followed by the
// constant offset-size/reserved fields for BigTIFF), and a zeroed
// first-IFD offset slot. It returns the encoder and the position of
// that slot, to be passed to the first NewDirectory call.
func NewEncoder(w io.WriterAt, order binary.ByteOrder, bigTIFF bool) (enc *TiffEncoder, firstIfdPointerPos int64, err error) {
	bw := NewByteOrderWriter(w, order)

	marker := beHeader
	if order == binary.LittleEndian {
		marker = leHeader
	}
	if err := bw.WriteBytes([]byte(marker)); err != nil {
		return nil, 0, err
	}

	tiffEnc := tiffEncoding{bigTIFF: bigTIFF}
	if bigTIFF {
		if err := bw.WriteU16(magicBig); err != nil {
			return nil, 0, err
		}
		if err := bw.WriteU16(8); err != nil { // offset byte size
			return nil, 0, err
		}
		if err := bw.WriteU16(0); err != nil { // reserved
			return nil, 0, err
		}
	} else {
		if err := bw.WriteU16(magicClassic); err != nil {
			return nil, 0, err
		}
	}

	pointerPos := bw.Pos()
	if err := tiffEnc.writeOffset(bw, 0); err != nil {
		return nil, 0, err
	}

	return &TiffEncoder{w: bw, enc: tiffEnc}, pointerPos, nil
}

// NewDirectory starts a bare DirectoryEncoder linked from pointerPos
// (the first-IFD slot position returned by NewEncoder). Finish does not
// report the position of a directory's own next-IFD slot.
func (e *TiffEncoder) NewDirectory(pointerPos int64) *DirectoryEncoder {
	return NewDirectoryEncoder(e.w, e.enc, pointerPos)
}

// ImageSpec describes the pixel layout an ImageEncoder writes; it plays
// the role Image plays on the decode side, but only the fields an
// encoder needs to choose and validate compression/predictor/strip
// geometry.
type ImageSpec struct {
	Width, Height uint32
	BitsPerSample []uint16
	SampleFormat  []SampleFormat
	Photometric   PhotometricInterpretation
	Compression   CompressionMethod
	Predictor     Predictor
	PlanarConfig  PlanarConfiguration
}

func (s ImageSpec) samplesPerPixel() int { return len(s.BitsPerSample) }

func (s ImageSpec) bitsPerSample() uint16 {
	if len(s.BitsPerSample) == 0 {
		return 8
	}
	return s.BitsPerSample[0]
}

func (s ImageSpec) sampleFormat() SampleFormat {
	if len(s.SampleFormat) == 0 {
		return SampleFormatUint
	}
	return s.SampleFormat[0]
}

// ImageEncoder orchestrates writing one strip-based image's standard
// tags and pixel data. Construction writes the fixed-size tags
// (dimensions, bit depth, compression, photometric interpretation,
// placeholder strip tables) immediately; WriteStrip then runs the
// configured predictor and compression codec over each strip in turn,
// recording its (offset, byte count) back into the placeholder tables.
type ImageEncoder struct {
	dir          *DirectoryEncoder
	spec         ImageSpec
	order        binary.ByteOrder
	compressor   Compressor
	rowsPerStrip int
	stripCount   int
	nextStrip    int
}

// defaultRowsPerStrip targets roughly 8000 bytes per strip, the
// convention TIFF readers expect and the one the format's own writers
// use (see the teacher's and the reference encoder's identical
// ceil(8000/row_bytes) rule).
func defaultRowsPerStrip(rowBytes int) int {
	if rowBytes <= 0 {
		return 1
	}
	n := (8000 + rowBytes - 1) / rowBytes
	if n < 1 {
		return 1
	}
	return n
}

// NewImageEncoder writes every tag describing spec's layout into dir
// (ImageWidth, ImageLength, BitsPerSample, Compression,
// PhotometricInterpretation, SamplesPerPixel, PlanarConfiguration,
// Predictor, SampleFormat, XResolution/YResolution/ResolutionUnit,
// RowsPerStrip, and zeroed StripOffsets/StripByteCounts placeholders),
// then returns an ImageEncoder ready to receive strips in row order. A
// zero Predictor or PlanarConfig in spec is written as PredictorNone or
// PlanarConfigChunky.
func NewImageEncoder(dir *DirectoryEncoder, order binary.ByteOrder, spec ImageSpec) (*ImageEncoder, error) {
	compressor, err := compressorFor(spec.Compression)
	if err != nil {
		return nil, err
	}
	if spec.Predictor == 0 {
		spec.Predictor = PredictorNone
	}
	if spec.PlanarConfig == 0 {
		spec.PlanarConfig = PlanarConfigChunky
	}
	if spec.Predictor == PredictorHorizontal && spec.sampleFormat() != SampleFormatUint && spec.sampleFormat() != SampleFormatInt {
		return nil, errUnsupported(HorizontalPredictorUnsupported, "horizontal predictor requires integer samples")
	}
	if spec.Predictor == PredictorFloatingPoint && spec.sampleFormat() != SampleFormatFloat {
		return nil, errUnsupported(FloatingPointPredictorUnsupported, "floating point predictor requires float samples")
	}

	samples := spec.samplesPerPixel()
	bits := spec.bitsPerSample()
	rowBytes := packedRowBytes(int(spec.Width), samples, bits)
	rowsPerStrip := defaultRowsPerStrip(rowBytes)
	stripCount := (int(spec.Height) + rowsPerStrip - 1) / rowsPerStrip

	dir.WriteTag(TagImageWidth, Longs(spec.Width))
	dir.WriteTag(TagImageLength, Longs(spec.Height))
	dir.WriteTag(TagBitsPerSample, Shorts(spec.BitsPerSample...))
	dir.WriteTag(TagCompression, Shorts(uint16(spec.Compression)))
	dir.WriteTag(TagPhotometricInterp, Shorts(uint16(spec.Photometric)))
	dir.WriteTag(TagSamplesPerPixel, Shorts(uint16(samples)))
	dir.WriteTag(TagPlanarConfig, Shorts(uint16(spec.PlanarConfig)))
	if spec.Predictor != PredictorNone {
		dir.WriteTag(TagPredictor, Shorts(uint16(spec.Predictor)))
	}
	if len(spec.SampleFormat) > 0 {
		dir.WriteTag(TagSampleFormat, Shorts(sampleFormatsToU16(spec.SampleFormat)...))
	}
	dir.WriteTag(TagRowsPerStrip, Longs(uint32(rowsPerStrip)))
	dir.WriteTag(TagStripOffsets, Longs(make([]uint32, stripCount)...))
	dir.WriteTag(TagStripByteCounts, Longs(make([]uint32, stripCount)...))
	dir.WriteTag(TagXResolution, OneRational(1, 1))
	dir.WriteTag(TagYResolution, OneRational(1, 1))
	dir.WriteTag(TagResolutionUnit, Shorts(uint16(ResolutionUnitInch)))

	return &ImageEncoder{
		dir:          dir,
		spec:         spec,
		order:        order,
		compressor:   compressor,
		rowsPerStrip: rowsPerStrip,
		stripCount:   stripCount,
	}, nil
}

func sampleFormatsToU16(v []SampleFormat) []uint16 {
	out := make([]uint16, len(v))
	for i, f := range v {
		out[i] = uint16(f)
	}
	return out
}

// StripsRemaining reports how many more strips WriteStrip expects.
func (e *ImageEncoder) StripsRemaining() int { return e.stripCount - e.nextStrip }

// NextStripRows reports the row count of the next strip to be written
// (the final strip may be shorter than rowsPerStrip when Height is not
// a multiple of it), or 0 once every strip has been written.
func (e *ImageEncoder) NextStripRows() int {
	if e.nextStrip >= e.stripCount {
		return 0
	}
	startRow := e.nextStrip * e.rowsPerStrip
	endRow := startRow + e.rowsPerStrip
	if endRow > int(e.spec.Height) {
		endRow = int(e.spec.Height)
	}
	return endRow - startRow
}

// WriteStrip applies the configured predictor to rows (a packed buffer
// of exactly NextStripRows() rows, each spec-Width pixels wide with no
// right-edge padding) and compresses the result with the image's
// Compression codec, writing it as a self-contained blob and recording
// its offset/length back into the StripOffsets/StripByteCounts
// placeholders.
func (e *ImageEncoder) WriteStrip(rows []byte) error {
	height := e.NextStripRows()
	if height == 0 {
		return &UsageError{Kind: InvalidChunkIndex, Index: uint32(e.nextStrip)}
	}

	samples := e.spec.samplesPerPixel()
	bits := e.spec.bitsPerSample()
	width := int(e.spec.Width)
	rowBytes := packedRowBytes(width, samples, bits)
	want := rowBytes * height
	if len(rows) != want {
		return &UsageError{Kind: InsufficientOutputBufferSize, Needed: want, Provided: len(rows)}
	}

	transformed := append([]byte(nil), rows...)
	switch e.spec.Predictor {
	case PredictorHorizontal:
		if err := HorizontalPredictor(transformed, width, height, width, samples, bits, e.order); err != nil {
			return err
		}
	case PredictorFloatingPoint:
		byteLen := int(bits / 8)
		if err := FloatingPointPredictor(transformed, width, height, width, samples, byteLen); err != nil {
			return err
		}
	}

	var buf writeBuffer
	if err := e.compressor.Compress(&buf, transformed, width, height); err != nil {
		return err
	}

	offset, err := e.dir.WriteData(buf.bytes)
	if err != nil {
		return err
	}

	idx := uint64(e.nextStrip)
	if err := e.dir.ModifyTag(TagStripOffsets, idx*4, Longs(uint32(offset))); err != nil {
		return err
	}
	if err := e.dir.ModifyTag(TagStripByteCounts, idx*4, Longs(uint32(len(buf.bytes)))); err != nil {
		return err
	}

	e.nextStrip++
	return nil
}

// Finish closes the underlying DirectoryEncoder once every strip has
// been written.
func (e *ImageEncoder) Finish() error {
	return e.dir.Finish()
}

// writeBuffer is a minimal io.Writer accumulating bytes in memory, used
// to capture a Compressor's output before it is written through
// DirectoryEncoder.WriteData (which needs the final length up front to
// record StripByteCounts).
type writeBuffer struct{ bytes []byte }

func (b *writeBuffer) Write(p []byte) (int, error) {
	b.bytes = append(b.bytes, p...)
	return len(p), nil
}
