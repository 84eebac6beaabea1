// Package tiff implements the core binary-format engine of a TIFF
// (Tagged Image File Format) decoder and encoder: IFD traversal for
// classic TIFF and BigTIFF, tag entry resolution into typed values,
// and strip/tile pixel decoding through a pluggable compression and
// predictor pipeline.
//
// The package is bit-faithful to TIFF 6.0 and the BigTIFF extension.
// It yields raw planar/chunky pixel buffers plus a descriptor of how
// to interpret them; it does not build image.Image values, perform
// color-space conversion, or provide file/network I/O beyond a
// caller-supplied io.ReaderAt/io.WriterAt.
package tiff
