// Package model provides the output representation for rendered content.
//
// This package defines the user-facing data structures produced by the
// rendering pipeline. Every parse, extraction, and fallback path ultimately
// yields these types, making them the primary API for consuming results.
//
// # Items
//
// The [Item] type is one positioned, styled content unit: a rectangle on the
// page with optional text, colors, font metrics, and four-sided box metrics.
// Marker items ([ItemTypeTruncation], [ItemTypeWarning]) are synthetic items
// appended by the pipeline to describe degraded results; they carry no
// geometry.
//
// # Geometry
//
// Geometric primitives support position and validity calculations:
//
//   - [BBox] - bounding box with intersection and validity checks
//   - [Edges] - four-sided box metric (margin, padding, border width)
//
// Coordinates use a screen coordinate system: the origin is the top-left
// corner of the viewport, Y grows downward.
package model
