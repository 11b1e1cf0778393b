package sink

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/go-pdf/fpdf"

	"github.com/osumercury/badgemaker/pkg/errors"
)

// PDFOption configures PDF output.
type PDFOption func(*PDF)

// WithLossless embeds rasters as PNG instead of JPEG.
func WithLossless(lossless bool) PDFOption {
	return func(p *PDF) { p.lossless = lossless }
}

// WithPDFJPEGQuality sets the JPEG quality for lossy embedding.
func WithPDFJPEGQuality(q int) PDFOption {
	return func(p *PDF) { p.quality = q }
}

// PDF is a DocumentSink backed by fpdf. Units are points.
type PDF struct {
	doc      *fpdf.Fpdf
	path     string
	lossless bool
	quality  int
	pages    int
	images   int
}

// NewPDF starts a document that Close writes to path.
func NewPDF(path string, opts ...PDFOption) *PDF {
	doc := fpdf.NewCustom(&fpdf.InitType{UnitStr: "pt", SizeStr: "Letter"})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.SetCreator("badgemaker", true)

	p := &PDF{doc: doc, path: path, quality: DefaultJPEGQuality}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AddPage starts a page of w x h points.
func (p *PDF) AddPage(w, h float64) error {
	p.doc.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})
	p.pages++
	return p.err("add page %d", p.pages)
}

// Place embeds img on the current page.
func (p *PDF) Place(img image.Image, x, y, w, h float64) error {
	if p.pages == 0 {
		return errors.New(errors.ErrCodeInternal, "place before first page")
	}
	var buf bytes.Buffer
	format, typ := imaging.JPEG, "JPG"
	if p.lossless {
		format, typ = imaging.PNG, "PNG"
	}
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(p.quality)); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "encode image %d", p.images)
	}

	name := fmt.Sprintf("badge-%d", p.images)
	p.images++
	opts := fpdf.ImageOptions{ImageType: typ}
	p.doc.RegisterImageOptionsReader(name, opts, &buf)
	p.doc.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	return p.err("place image %s", name)
}

// Pages returns the number of pages started.
func (p *PDF) Pages() int { return p.pages }

// Close writes the document.
func (p *PDF) Close() error {
	if err := p.doc.OutputFileAndClose(p.path); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", p.path)
	}
	return nil
}

func (p *PDF) err(format string, args ...any) error {
	if p.doc.Err() {
		return errors.Wrap(errors.ErrCodeIO, p.doc.Error(), format, args...)
	}
	return nil
}

// Ensure PDF implements DocumentSink.
var _ DocumentSink = (*PDF)(nil)
