// Package sink writes rendered badges out: one image file per badge, or
// badges placed on the pages of a PDF document.
//
// Renderers and the packer never touch the filesystem. The pipeline hands
// rasters to an [ImageSink] or placements to a [DocumentSink].
package sink

import "image"

// ImageSink stores single rendered badges.
type ImageSink interface {
	// WriteImage stores img under name (without extension) and returns
	// where it went.
	WriteImage(name string, img image.Image) (string, error)
}

// DocumentSink receives packed placements, page by page.
type DocumentSink interface {
	// AddPage starts a page of w x h points.
	AddPage(w, h float64) error

	// Place draws img with its top-left corner at (x, y), scaled to w x h
	// points, on the current page.
	Place(img image.Image, x, y, w, h float64) error

	// Pages returns the number of pages started so far.
	Pages() int

	// Close finishes and writes the document.
	Close() error
}
