// Package text provides the glyph subsystem feeding the canvas glyph
// operation: font faces shaped through go-text/typesetting, bidirectional
// run segmentation, and quad layout of pre-baked glyphs against an
// externally managed atlas.
//
// The package produces geometry only. Rasterizing glyphs into the atlas
// and uploading it is the embedder's concern; a GlyphSource hands out the
// baked atlas regions this package lays out.
package text
