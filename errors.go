package tiff

import "fmt"

// FormatKind enumerates the ways a TIFF file can be structurally malformed.
type FormatKind int

// Format error kinds, see spec §7.
const (
	TiffSignatureNotFound FormatKind = iota
	TiffSignatureInvalid
	ImageFileDirectoryNotFound
	InconsistentSizesEncountered
	InvalidDimensions
	InvalidTag
	InvalidTagValueType
	RequiredTagNotFound
	UnknownPredictor
	UnknownPlanarConfiguration
	StripTileTagConflict
	CycleInOffsets
	SamplesPerPixelIsZero
	CompressedDataCorrupt
)

func (k FormatKind) String() string {
	switch k {
	case TiffSignatureNotFound:
		return "TIFF signature not found"
	case TiffSignatureInvalid:
		return "TIFF signature invalid"
	case ImageFileDirectoryNotFound:
		return "image file directory not found"
	case InconsistentSizesEncountered:
		return "inconsistent sizes encountered"
	case InvalidDimensions:
		return "invalid dimensions"
	case InvalidTag:
		return "image contains invalid tag"
	case InvalidTagValueType:
		return "tag did not have the expected value type"
	case RequiredTagNotFound:
		return "required tag not found"
	case UnknownPredictor:
		return "unknown predictor encountered"
	case UnknownPlanarConfiguration:
		return "unknown planar configuration"
	case StripTileTagConflict:
		return "file should contain either strip or tile tags, not a mix"
	case CycleInOffsets:
		return "file contained a cycle in the list of IFDs"
	case SamplesPerPixelIsZero:
		return "samples per pixel is zero"
	case CompressedDataCorrupt:
		return "compressed data is corrupt"
	default:
		return "format error"
	}
}

// FormatError reports that the input is not a valid TIFF image.
//
// It carries the offending tag (when relevant) and, for
// InvalidDimensions, the width/height that were rejected.
type FormatError struct {
	Kind    FormatKind
	Tag     Tag
	Width   uint64
	Height  uint64
	Pred    uint16
	Planar  uint16
	Message string
}

func (e *FormatError) Error() string {
	switch e.Kind {
	case InvalidTagValueType, RequiredTagNotFound:
		return fmt.Sprintf("tiff: %s: %s", e.Kind, e.Tag)
	case UnknownPredictor:
		return fmt.Sprintf("tiff: %s %d", e.Kind, e.Pred)
	case UnknownPlanarConfiguration:
		return fmt.Sprintf("tiff: %s %d", e.Kind, e.Planar)
	case InvalidDimensions:
		return fmt.Sprintf("tiff: invalid dimensions: %dx%d", e.Width, e.Height)
	case CompressedDataCorrupt:
		return fmt.Sprintf("tiff: compressed data is corrupt: %s", e.Message)
	default:
		return fmt.Sprintf("tiff: %s", e.Kind)
	}
}

func errFormat(kind FormatKind) error { return &FormatError{Kind: kind} }

func errFormatTag(kind FormatKind, tag Tag) error { return &FormatError{Kind: kind, Tag: tag} }

func errInvalidDimensions(w, h uint64) error {
	return &FormatError{Kind: InvalidDimensions, Width: w, Height: h}
}

func errUnknownPredictor(p uint16) error { return &FormatError{Kind: UnknownPredictor, Pred: p} }

func errUnknownPlanar(p uint16) error {
	return &FormatError{Kind: UnknownPlanarConfiguration, Planar: p}
}

func errCorrupt(message string) error {
	return &FormatError{Kind: CompressedDataCorrupt, Message: message}
}

// UnsupportedKind enumerates semantically well-formed but unimplemented features.
type UnsupportedKind int

const (
	UnknownInterpretation UnsupportedKind = iota
	UnknownCompressionMethod
	UnsupportedCompressionMethod
	UnsupportedSampleDepth
	UnsupportedSampleFormat
	UnsupportedColorType
	UnsupportedBitsPerChannel
	UnsupportedPlanarConfig
	HorizontalPredictorUnsupported
	FloatingPointPredictorUnsupported
	InconsistentBitsPerSample
	UnsupportedInterpretation
	MisalignedTileBoundaries
)

// UnsupportedError reports that the input uses a valid but unimplemented feature.
type UnsupportedError struct {
	Kind    UnsupportedKind
	Detail  string
	Code    uint16
	Value   uint64
	Photo   PhotometricInterpretation
	Samples uint
}

func (e *UnsupportedError) Error() string {
	switch e.Kind {
	case UnsupportedCompressionMethod:
		return fmt.Sprintf("tiff: unsupported compression method %d", e.Code)
	case UnsupportedSampleDepth:
		return fmt.Sprintf("tiff: %d samples per pixel is unsupported", e.Samples)
	case UnsupportedBitsPerChannel:
		return fmt.Sprintf("tiff: %d bits per channel not supported", e.Value)
	case UnsupportedInterpretation:
		return fmt.Sprintf("tiff: unsupported photometric interpretation %q", e.Photo)
	case InconsistentBitsPerSample:
		return fmt.Sprintf("tiff: inconsistent bits per sample: %s", e.Detail)
	default:
		if e.Detail != "" {
			return fmt.Sprintf("tiff: unsupported feature: %s", e.Detail)
		}
		return "tiff: unsupported feature"
	}
}

func errUnsupported(kind UnsupportedKind, detail string) error {
	return &UnsupportedError{Kind: kind, Detail: detail}
}

func errUnsupportedCompression(code uint16) error {
	return &UnsupportedError{Kind: UnsupportedCompressionMethod, Code: code}
}

func errUnsupportedSampleDepth(n uint) error {
	return &UnsupportedError{Kind: UnsupportedSampleDepth, Samples: n}
}

func errUnsupportedBitsPerChannel(n uint64) error {
	return &UnsupportedError{Kind: UnsupportedBitsPerChannel, Value: n}
}

// UsageKind enumerates operations that are incompatible with a specific image.
type UsageKind int

const (
	InvalidChunkType UsageKind = iota
	InvalidChunkIndex
	PredictorCompressionMismatch
	PredictorIncompatible
	PredictorUnavailable
	InsufficientOutputBufferSize
	RequiredTagMissingForModify
	CloseNonExistentIfd
	DirectoryAlreadyFinished
)

// UsageError reports that the caller attempted an operation that is
// incompatible with the image being decoded or encoded.
type UsageError struct {
	Kind     UsageKind
	Expected ChunkType
	Actual   ChunkType
	Index    uint32
	Needed   int
	Provided int
}

func (e *UsageError) Error() string {
	switch e.Kind {
	case InvalidChunkType:
		return fmt.Sprintf("tiff: operation is only valid for %s chunks, got %s", e.Expected, e.Actual)
	case InvalidChunkIndex:
		return fmt.Sprintf("tiff: invalid chunk index (%d) requested", e.Index)
	case InsufficientOutputBufferSize:
		return fmt.Sprintf("tiff: output buffer too small, needed %d but have %d", e.Needed, e.Provided)
	case PredictorCompressionMismatch:
		return "tiff: requested predictor is not compatible with the requested compression"
	case PredictorIncompatible:
		return "tiff: requested predictor is not compatible with the image's format"
	case PredictorUnavailable:
		return "tiff: requested predictor is not available"
	case RequiredTagMissingForModify:
		return "tiff: cannot modify a tag that was never written"
	case CloseNonExistentIfd:
		return "tiff: no sub-directory is open to close"
	case DirectoryAlreadyFinished:
		return "tiff: Finish called more than once on this directory"
	default:
		return "tiff: usage error"
	}
}

// LimitsExceededError is returned whenever a Limits check rejects an allocation.
type LimitsExceededError struct{}

func (e *LimitsExceededError) Error() string { return "tiff: decoder limits exceeded" }

// ErrLimitsExceeded is the sentinel value returned by allocation checks; callers
// may also match it with errors.As(&LimitsExceededError{}).
var ErrLimitsExceeded = &LimitsExceededError{}

// IntSizeError reports that an integer did not fit into the platform or format size required.
type IntSizeError struct{}

func (e *IntSizeError) Error() string { return "tiff: platform or format size limits exceeded" }
