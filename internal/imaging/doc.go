// Package imaging turns composition jobs into pixels.
//
// It covers everything that touches raster data: decoding uploaded photos
// (with EXIF orientation applied), holding them in a Library keyed by image
// id, rendering jobs onto surfaces, encoding the results and drawing
// template wireframes.
//
// # Coordinate System
//
// Template slots are normalized to the output surface (0..1 on both axes,
// origin top-left). Crop regions are in the source image's pixel space,
// relative to its bounds. A slot maps to destination pixels by scaling with
// the surface size and rounding each edge to the nearest pixel.
//
// # Rendering
//
// Renderer paints the background, then each filled slot in ascending stack
// order. The crop region is resampled into the slot rectangle and clipped by
// an anti-aliased rounded-rectangle mask. Slots whose image is missing are
// skipped rather than failing the render.
//
// # Thread Safety
//
// Library is safe for concurrent use. A Renderer is immutable once built and
// may render many jobs at once; RenderBatch does exactly that over a
// read-only Table snapshot.
package imaging
