package tiff

// Limits bounds the memory a Decoder will commit to a single operation,
// guarding against hostile or corrupt size fields in the IFD.
type Limits struct {
	// DecodingBufferSize caps the total bytes a single chunk decode (strip
	// or tile) may expand to. The None, PackBits, LZW, Deflate and
	// ModernJPEG codecs enforce it; the CCITT Fax4 and SGILog codecs do
	// not check it.
	DecodingBufferSize uint64
	// IFDValueSize caps the bytes a single tag entry's value may occupy
	// when dereferenced from an offset.
	IFDValueSize uint64
	// IntermediateBufferSize caps the compressed byte length of a single
	// chunk; ExpandChunk checks it before decompressing.
	IntermediateBufferSize uint64
}

// DefaultLimits returns generous but finite limits, matching the defaults
// a decoder should apply when the caller does not override them.
func DefaultLimits() Limits {
	return Limits{
		DecodingBufferSize:     256 << 20, // 256 MiB
		IFDValueSize:           64 << 20,  // 64 MiB
		IntermediateBufferSize: 256 << 20, // 256 MiB
	}
}

func (l Limits) checkIFDValueSize(n uint64) error {
	if n > l.IFDValueSize {
		return ErrLimitsExceeded
	}
	return nil
}

func (l Limits) checkDecodingBufferSize(n uint64) error {
	if n > l.DecodingBufferSize {
		return ErrLimitsExceeded
	}
	return nil
}

func (l Limits) checkIntermediateBufferSize(n uint64) error {
	if n > l.IntermediateBufferSize {
		return ErrLimitsExceeded
	}
	return nil
}
