package tiff

// tagLevel classifies one tag for the purposes of copying metadata from
// a decoded source Directory into a DirectoryEncoder, mirroring the
// bucket names from spec.md §4.8: sample-layout tags are always
// discarded (the new image's own writer controls them), photometric-
// dependent tags are kept only when they still apply to the target
// photometric/planar configuration, sub-IFD pointers are followed
// rather than copied verbatim, and anything else is either kept or
// dropped depending on policy.
type tagLevel int

const (
	levelUnknown tagLevel = iota
	levelSampleLayout
	levelSubIFD
	levelPhotometricAll
	levelPhotometricPlanar
	levelPhotometricYCbCr
	levelValue
)

func classifyTag(tag Tag) tagLevel {
	switch tag {
	case TagImageWidth, TagImageLength, TagBitsPerSample, TagPhotometricInterp,
		TagStripOffsets, TagSamplesPerPixel, TagRowsPerStrip, TagStripByteCounts,
		TagTileWidth, TagTileLength, TagTileOffsets, TagTileByteCounts,
		TagCompression, TagPredictor, TagSampleFormat:
		return levelSampleLayout
	case TagPlanarConfig:
		return levelPhotometricPlanar
	case TagComponentsConfig:
		return levelPhotometricYCbCr
	case TagWhitePoint, TagPrimaryChroma, TagColorSpace:
		return levelPhotometricAll
	case TagExifIFD, TagGpsIFD, TagInteropIFD:
		return levelSubIFD
	case TagMake, TagModel, TagOrientation, TagImageDescription, TagSoftware,
		TagDateTime, TagArtist, TagHostComputer, TagCopyright,
		TagXResolution, TagYResolution, TagResolutionUnit,
		TagExposureTime, TagFNumber, TagICCProfile, TagISO,
		TagExifVersion, TagDateTimeOriginal, TagCreateDate,
		TagShutterSpeedValue, TagExposureCompensate, TagMeteringMode,
		TagFocalLength, TagUserComment, TagFlashpixVersion:
		return levelValue
	default:
		return levelUnknown
	}
}

// MetadataCopyPolicy controls how unknown tags and photometric-
// dependent tags are treated by CopyMetadata.
type MetadataCopyPolicy struct {
	// AllowUnknown keeps tags this core does not specifically
	// recognize; otherwise they are dropped.
	AllowUnknown bool
	// TargetPhotometric and TargetPlanar describe the destination
	// image's layout, used to decide whether a photometric-dependent
	// tag still applies to it.
	TargetPhotometric PhotometricInterpretation
	TargetPlanar      PlanarConfiguration
}

func (p MetadataCopyPolicy) photometricApplies(level tagLevel) bool {
	switch level {
	case levelPhotometricAll:
		return true
	case levelPhotometricPlanar:
		return p.TargetPlanar == PlanarConfigPlanar
	case levelPhotometricYCbCr:
		return p.TargetPhotometric == PhotometricYCbCr
	default:
		return true
	}
}

// CopyMetadata walks the tags of src's currently loaded directory and
// writes each into dst, per MetadataCopyPolicy: sample-layout tags are
// always skipped (the caller's own ImageEncoder controls those),
// photometric-dependent tags are skipped unless they still apply to
// the target layout, sub-IFD pointer tags (ExifIFD, GPSIFD, InteropIFD)
// are followed by repositioning src and recursing into a matching
// sub-directory of dst, and unrecognized tags are kept only when
// policy.AllowUnknown is set. src is repositioned back to its original
// directory before returning, success or failure.
func CopyMetadata(dst *DirectoryEncoder, src *Decoder, policy MetadataCopyPolicy) error {
	dir := src.Directory()
	for _, de := range dir.Entries() {
		level := classifyTag(de.Tag)

		switch level {
		case levelSampleLayout:
			continue
		case levelUnknown:
			if !policy.AllowUnknown {
				continue
			}
		case levelPhotometricAll, levelPhotometricPlanar, levelPhotometricYCbCr:
			if !policy.photometricApplies(level) {
				continue
			}
		case levelSubIFD:
			if err := copySubIFD(dst, src, de, policy); err != nil {
				return err
			}
			continue
		}

		value, err := src.GetTag(de.Tag)
		if err != nil {
			return err
		}
		encoded, err := valueToEncodedValue(de.Entry.Type, value)
		if err != nil {
			return err
		}
		dst.WriteTag(de.Tag, encoded)
	}
	return nil
}

// copySubIFD follows a pointer tag (ExifIFD/GPSIFD/InteropIFD) to its
// sub-directory, copies its tags into a sub-IFD of dst, and rewrites
// the pointer tag in dst to the sub-directory's freshly written
// offset.
func copySubIFD(dst *DirectoryEncoder, src *Decoder, de DirEntry, policy MetadataCopyPolicy) error {
	value, err := src.GetTag(de.Tag)
	if err != nil {
		return err
	}
	offset, err := value.IntoU64()
	if err != nil {
		return err
	}

	savedOffset := src.IfdPointer()
	if err := src.RestartAtImage(offset); err != nil {
		return err
	}

	dst.SubdirectoryStart()
	err = CopyMetadata(dst, src, policy)
	if restoreErr := src.RestartAtImage(savedOffset); err == nil {
		err = restoreErr
	}
	if err != nil {
		return err
	}
	subOffset, err := dst.SubdirectoryClose()
	if err != nil {
		return err
	}

	if dst.enc.bigTIFF {
		dst.WriteTag(de.Tag, IFD8s(uint64(subOffset)))
	} else {
		dst.WriteTag(de.Tag, IFDs(uint32(subOffset)))
	}
	return nil
}

// valueToEncodedValue re-serializes a decoded Value back into an
// EncodedValue of the same on-disk type t, so that copied tags round-
// trip exactly rather than being normalized through a lossy common
// representation.
func valueToEncodedValue(t Type, v Value) (EncodedValue, error) {
	elems := v.List()

	switch t {
	case TypeByte:
		out := make([]uint8, len(elems))
		for i, e := range elems {
			u, err := e.IntoU64()
			if err != nil {
				return nil, err
			}
			out[i] = uint8(u)
		}
		return Bytes(out...), nil
	case TypeUndefined:
		out := make([]byte, len(elems))
		for i, e := range elems {
			u, err := e.IntoU64()
			if err != nil {
				return nil, err
			}
			out[i] = byte(u)
		}
		return Undefined(out), nil
	case TypeSByte:
		out := make([]int8, len(elems))
		for i, e := range elems {
			n, err := e.IntoI64()
			if err != nil {
				return nil, err
			}
			out[i] = int8(n)
		}
		return SBytes(out...), nil
	case TypeShort:
		out := make([]uint16, len(elems))
		for i, e := range elems {
			u, err := e.IntoU64()
			if err != nil {
				return nil, err
			}
			out[i] = uint16(u)
		}
		return Shorts(out...), nil
	case TypeSShort:
		out := make([]int16, len(elems))
		for i, e := range elems {
			n, err := e.IntoI64()
			if err != nil {
				return nil, err
			}
			out[i] = int16(n)
		}
		return SShorts(out...), nil
	case TypeLong, TypeIFD:
		out := make([]uint32, len(elems))
		for i, e := range elems {
			u, err := e.IntoU64()
			if err != nil {
				return nil, err
			}
			out[i] = uint32(u)
		}
		if t == TypeIFD {
			return IFDs(out...), nil
		}
		return Longs(out...), nil
	case TypeSLong:
		out := make([]int32, len(elems))
		for i, e := range elems {
			n, err := e.IntoI64()
			if err != nil {
				return nil, err
			}
			out[i] = int32(n)
		}
		return SLongs(out...), nil
	case TypeLong8, TypeIFD8:
		out := make([]uint64, len(elems))
		for i, e := range elems {
			u, err := e.IntoU64()
			if err != nil {
				return nil, err
			}
			out[i] = u
		}
		if t == TypeIFD8 {
			return IFD8s(out...), nil
		}
		return Long8s(out...), nil
	case TypeSLong8:
		out := make([]int64, len(elems))
		for i, e := range elems {
			n, err := e.IntoI64()
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return SLong8s(out...), nil
	case TypeFloat:
		out := make([]float32, len(elems))
		for i, e := range elems {
			f, err := e.IntoF64()
			if err != nil {
				return nil, err
			}
			out[i] = float32(f)
		}
		return Floats(out...), nil
	case TypeDouble:
		out := make([]float64, len(elems))
		for i, e := range elems {
			f, err := e.IntoF64()
			if err != nil {
				return nil, err
			}
			out[i] = f
		}
		return Doubles(out...), nil
	case TypeRational:
		out := make([]Rational, len(elems))
		for i, e := range elems {
			num, den, ok := e.RationalParts()
			if !ok {
				return nil, errFormat(InvalidTagValueType)
			}
			out[i] = Rational{Num: num, Den: den}
		}
		return Rationals(out...), nil
	case TypeSRational:
		out := make([]SRational, len(elems))
		for i, e := range elems {
			num, den, ok := e.SRationalParts()
			if !ok {
				return nil, errFormat(InvalidTagValueType)
			}
			out[i] = SRational{Num: num, Den: den}
		}
		return SRationals(out...), nil
	case TypeASCII:
		s, err := v.IntoString()
		if err != nil {
			return nil, err
		}
		return ASCII(s), nil
	default:
		return nil, errFormat(InvalidTagValueType)
	}
}
