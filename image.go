package tiff

// StripDecodeState holds the strip-layout parameter needed to map a chunk
// index to a row range.
type StripDecodeState struct {
	RowsPerStrip uint32
}

// TileAttributes holds the geometry needed to map a tile index to its
// pixel-buffer placement, including right/bottom edge padding for tiles
// that overhang the image bounds.
type TileAttributes struct {
	ImageWidth      int
	ImageHeight     int
	SamplesPerPixel int
	TileWidth       int
	TileLength      int
}

// TilesAcross is the number of tile columns covering the image width.
func (t TileAttributes) TilesAcross() int {
	return (t.ImageWidth + t.TileWidth - 1) / t.TileWidth
}

// TilesDown is the number of tile rows covering the image height.
func (t TileAttributes) TilesDown() int {
	return (t.ImageHeight + t.TileLength - 1) / t.TileLength
}

// paddingRight is the number of columns the last tile column overhangs
// the image by, or 0 when ImageWidth divides evenly into TileWidth.
func (t TileAttributes) paddingRight() int {
	if r := t.ImageWidth % t.TileWidth; r != 0 {
		return t.TileWidth - r
	}
	return 0
}

// paddingDown is the row analogue of paddingRight.
func (t TileAttributes) paddingDown() int {
	if r := t.ImageHeight % t.TileLength; r != 0 {
		return t.TileLength - r
	}
	return 0
}

// RowSamples is the number of samples in one tile row.
func (t TileAttributes) RowSamples() int { return t.TileWidth * t.SamplesPerPixel }

// TileSamples is the number of samples in a whole tile.
func (t TileAttributes) TileSamples() int { return t.TileLength * t.TileWidth * t.SamplesPerPixel }

func (t TileAttributes) tileStripSamples() int {
	return t.TileSamples()*t.TilesAcross() - t.paddingRight()*t.TileLength*t.SamplesPerPixel
}

// GetOffset returns the sample offset of tile within the assembled
// output buffer.
func (t TileAttributes) GetOffset(tile int) int {
	row := tile / t.TilesAcross()
	column := tile % t.TilesAcross()
	return row*t.tileStripSamples() + column*t.RowSamples()
}

// GetPadding returns (paddingRight, paddingDown) for tile: nonzero only
// for tiles along the image's trailing edges, where the tile overhangs
// the declared image dimensions.
func (t TileAttributes) GetPadding(tile int) (int, int) {
	row := tile / t.TilesAcross()
	column := tile % t.TilesAcross()

	paddingRight := 0
	if column == t.TilesAcross()-1 {
		paddingRight = t.paddingRight()
	}
	paddingDown := 0
	if row == t.TilesDown()-1 {
		paddingDown = t.paddingDown()
	}
	return paddingRight, paddingDown
}

// Image is the resolved, immutable description of one TIFF/BigTIFF image:
// every tag needed to know how to read and interpret its chunk data,
// already defaulted and validated.
type Image struct {
	Directory *Directory

	Width, Height   uint32
	BitsPerSample   []uint16
	Samples         uint16
	SampleFormat    []SampleFormat
	Photometric     PhotometricInterpretation
	Compression     CompressionMethod
	Predictor       Predictor
	PlanarConfig    PlanarConfiguration
	JPEGTables      []byte

	ChunkType     ChunkType
	StripDecoder  *StripDecodeState
	TileAttrs     *TileAttributes
	ChunkOffsets  []uint64
	ChunkBytes    []uint64
}

// NewImageFromDecoder resolves an Image descriptor from the Decoder's
// currently loaded directory.
func NewImageFromDecoder(d *Decoder) (*Image, error) {
	dir := d.Directory()

	width, err := d.GetTagU32(TagImageWidth)
	if err != nil {
		return nil, err
	}
	height, err := d.GetTagU32(TagImageLength)
	if err != nil {
		return nil, err
	}
	if width == 0 || height == 0 {
		return nil, errInvalidDimensions(uint64(width), uint64(height))
	}

	photoRaw, err := d.GetTagU32(TagPhotometricInterp)
	if err != nil {
		return nil, err
	}
	photometric := PhotometricInterpretation(photoRaw)
	if !validPhotometric(photometric) {
		return nil, errUnsupported(UnknownInterpretation, "")
	}

	compression := CompressionNone
	if dir.Contains(TagCompression) {
		c, err := d.GetTagU32(TagCompression)
		if err != nil {
			return nil, err
		}
		compression = CompressionMethod(c)
		if !validCompression(compression) {
			return nil, errUnsupported(UnknownCompressionMethod, "")
		}
	}

	var jpegTables []byte
	if compression == CompressionModernJPEG && dir.Contains(TagJPEGTables) {
		v, err := d.GetTag(TagJPEGTables)
		if err != nil {
			return nil, err
		}
		raw, err := intoBytes(v)
		if err != nil {
			return nil, err
		}
		if len(raw) < 2 {
			return nil, errFormatTag(InvalidTagValueType, TagJPEGTables)
		}
		jpegTables = raw
	}

	samples := uint16(1)
	if dir.Contains(TagSamplesPerPixel) {
		s, err := d.GetTagU32(TagSamplesPerPixel)
		if err != nil {
			return nil, err
		}
		if s == 0 {
			return nil, errFormat(SamplesPerPixelIsZero)
		}
		samples = uint16(s)
	}

	var sampleFormat []SampleFormat
	if dir.Contains(TagSampleFormat) {
		raw, err := d.GetTagU32Slice(TagSampleFormat)
		if err != nil {
			return nil, err
		}
		sampleFormat = make([]SampleFormat, len(raw))
		for i, v := range raw {
			sampleFormat[i] = SampleFormat(v)
		}
		for i := 1; i < len(sampleFormat); i++ {
			if sampleFormat[i] != sampleFormat[0] {
				return nil, errUnsupported(UnsupportedSampleFormat, "heterogeneous sample formats")
			}
		}
	} else {
		sampleFormat = []SampleFormat{SampleFormatUint}
	}

	var bitsPerSample []uint16
	switch samples {
	case 1, 3, 4:
		if dir.Contains(TagBitsPerSample) {
			raw, err := d.GetTagU32Slice(TagBitsPerSample)
			if err != nil {
				return nil, err
			}
			bitsPerSample = make([]uint16, len(raw))
			for i, v := range raw {
				bitsPerSample[i] = uint16(v)
			}
		} else {
			bitsPerSample = []uint16{1}
		}
	default:
		return nil, errUnsupportedSampleDepth(uint(samples))
	}
	if len(bitsPerSample) == 1 && samples > 1 {
		v := bitsPerSample[0]
		bitsPerSample = make([]uint16, samples)
		for i := range bitsPerSample {
			bitsPerSample[i] = v
		}
	}
	if len(bitsPerSample) != int(samples) {
		return nil, errFormat(InconsistentSizesEncountered)
	}
	for _, b := range bitsPerSample {
		if b == 0 || b != bitsPerSample[0] {
			return nil, &UnsupportedError{Kind: InconsistentBitsPerSample, Detail: "bits per sample must be uniform and nonzero"}
		}
	}

	predictor := PredictorNone
	if dir.Contains(TagPredictor) {
		p, err := d.GetTagU32(TagPredictor)
		if err != nil {
			return nil, err
		}
		predictor = Predictor(p)
		if predictor != PredictorNone && predictor != PredictorHorizontal && predictor != PredictorFloatingPoint {
			return nil, errUnknownPredictor(uint16(p))
		}
	}

	planar := PlanarConfigChunky
	if dir.Contains(TagPlanarConfig) {
		p, err := d.GetTagU32(TagPlanarConfig)
		if err != nil {
			return nil, err
		}
		planar = PlanarConfiguration(p)
		if planar != PlanarConfigChunky && planar != PlanarConfigPlanar {
			return nil, errUnknownPlanar(uint16(p))
		}
	}

	hasStripBytes := dir.Contains(TagStripByteCounts)
	hasStripOffsets := dir.Contains(TagStripOffsets)
	hasTileBytes := dir.Contains(TagTileByteCounts)
	hasTileOffsets := dir.Contains(TagTileOffsets)

	img := &Image{
		Directory:     dir,
		Width:         width,
		Height:        height,
		BitsPerSample: bitsPerSample,
		Samples:       samples,
		SampleFormat:  sampleFormat,
		Photometric:   photometric,
		Compression:   compression,
		Predictor:     predictor,
		PlanarConfig:  planar,
		JPEGTables:    jpegTables,
	}

	switch {
	case hasStripBytes && hasStripOffsets && !hasTileBytes && !hasTileOffsets:
		img.ChunkType = ChunkStrip

		offsets, err := d.GetTagU64Slice(TagStripOffsets)
		if err != nil {
			return nil, err
		}
		counts, err := d.GetTagU64Slice(TagStripByteCounts)
		if err != nil {
			return nil, err
		}
		rowsPerStrip := height
		if dir.Contains(TagRowsPerStrip) {
			rowsPerStrip, err = d.GetTagU32(TagRowsPerStrip)
			if err != nil {
				return nil, err
			}
		}
		img.StripDecoder = &StripDecodeState{RowsPerStrip: rowsPerStrip}

		if len(offsets) != len(counts) {
			return nil, errFormat(InconsistentSizesEncountered)
		}
		if rowsPerStrip == 0 {
			return nil, errFormat(InconsistentSizesEncountered)
		}
		stripsPerPlane := (int(height) + int(rowsPerStrip) - 1) / int(rowsPerStrip)
		planes := 1
		if planar == PlanarConfigPlanar {
			planes = int(samples)
		}
		if len(offsets) != stripsPerPlane*planes {
			return nil, errFormat(InconsistentSizesEncountered)
		}

		img.ChunkOffsets = offsets
		img.ChunkBytes = counts

	case !hasStripBytes && !hasStripOffsets && hasTileBytes && hasTileOffsets:
		img.ChunkType = ChunkTile

		tileWidth, err := d.GetTagU32(TagTileWidth)
		if err != nil {
			return nil, err
		}
		tileLength, err := d.GetTagU32(TagTileLength)
		if err != nil {
			return nil, err
		}
		if tileWidth == 0 {
			return nil, errFormatTag(InvalidTagValueType, TagTileWidth)
		}
		if tileLength == 0 {
			return nil, errFormatTag(InvalidTagValueType, TagTileLength)
		}

		attrs := &TileAttributes{
			ImageWidth:      int(width),
			ImageHeight:     int(height),
			SamplesPerPixel: len(bitsPerSample),
			TileWidth:       int(tileWidth),
			TileLength:      int(tileLength),
		}
		img.TileAttrs = attrs

		offsets, err := d.GetTagU64Slice(TagTileOffsets)
		if err != nil {
			return nil, err
		}
		counts, err := d.GetTagU64Slice(TagTileByteCounts)
		if err != nil {
			return nil, err
		}
		if len(offsets) != len(counts) || len(offsets) != attrs.TilesDown()*attrs.TilesAcross() {
			return nil, errFormat(InconsistentSizesEncountered)
		}
		img.ChunkOffsets = offsets
		img.ChunkBytes = counts

	default:
		return nil, errFormat(StripTileTagConflict)
	}

	return img, nil
}

func validPhotometric(p PhotometricInterpretation) bool {
	switch p {
	case PhotometricWhiteIsZero, PhotometricBlackIsZero, PhotometricRGB, PhotometricPalette,
		PhotometricTransparencyMask, PhotometricCMYK, PhotometricYCbCr, PhotometricCIELab:
		return true
	default:
		return false
	}
}

func validCompression(c CompressionMethod) bool {
	switch c {
	case CompressionNone, CompressionHuffman, CompressionFax3, CompressionFax4, CompressionLZW,
		CompressionOldJPEG, CompressionModernJPEG, CompressionDeflate, CompressionOldDeflate,
		CompressionPackBits, CompressionSGILog24, CompressionSGILog32:
		return true
	default:
		return false
	}
}

func intoBytes(v Value) ([]byte, error) {
	elems := v.List()
	out := make([]byte, len(elems))
	for i, e := range elems {
		u, err := e.IntoU64()
		if err != nil {
			return nil, err
		}
		if u > 0xFF {
			return nil, &IntSizeError{}
		}
		out[i] = byte(u)
	}
	return out, nil
}

// ChunkCount returns the number of chunks (strips or tiles) in the image.
func (img *Image) ChunkCount() int { return len(img.ChunkOffsets) }

// ChunkDataDimensions returns the pixel width/height of chunk i's logical
// (unpadded) content.
func (img *Image) ChunkDataDimensions(i int) (width, height uint32) {
	if img.ChunkType == ChunkTile {
		t := img.TileAttrs
		padR, padD := t.GetPadding(i)
		return uint32(t.TileWidth - padR), uint32(t.TileLength - padD)
	}

	rowsPerStrip := img.StripDecoder.RowsPerStrip
	stripIndex := uint32(i)
	rowsRemaining := img.Height - stripIndex*rowsPerStrip
	if rowsRemaining > rowsPerStrip {
		rowsRemaining = rowsPerStrip
	}
	return img.Width, rowsRemaining
}

// SamplesPerPixel returns the number of samples composing one pixel.
func (img *Image) SamplesPerPixel() int { return len(img.BitsPerSample) }

// StripsPerPlane returns the number of strips/tiles making up one sample
// plane (relevant only under PlanarConfigPlanar, where chunk data for each
// sample plane is emitted as its own run of chunks).
func (img *Image) StripsPerPlane() int {
	if img.ChunkType == ChunkTile {
		return img.TileAttrs.TilesAcross() * img.TileAttrs.TilesDown()
	}
	stripCount := (int(img.Height) + int(img.StripDecoder.RowsPerStrip) - 1) / int(img.StripDecoder.RowsPerStrip)
	return stripCount
}
