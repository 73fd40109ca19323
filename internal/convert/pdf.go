package convert

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Page dimensions in points.
var pageSizes = map[string][2]float64{
	"a4":     {595.28, 841.89},
	"letter": {612.00, 792.00},
	"legal":  {612.00, 1008.00},
}

const pdfMargin = 50.0

type PDFOptions struct {
	PageSize  string // a4, letter, legal
	Landscape bool
}

func DefaultPDFOptions() PDFOptions {
	return PDFOptions{PageSize: "a4"}
}

// FitToPage computes the placement of an imgW x imgH image on a
// pageW x pageH page with the given margin: the image is scaled down
// (never up) to fit the printable area preserving aspect ratio, then
// centered. Returns the drawn width/height and the top-left offset.
func FitToPage(imgW, imgH, pageW, pageH, margin float64) (w, h, x, y float64) {
	printableW := pageW - 2*margin
	printableH := pageH - 2*margin

	scale := printableW / imgW
	if s := printableH / imgH; s < scale {
		scale = s
	}
	if scale > 1.0 {
		scale = 1.0
	}

	w = imgW * scale
	h = imgH * scale
	x = (pageW - w) / 2
	y = (pageH - h) / 2
	return w, h, x, y
}

// ToPDF embeds a raster image as PNG on a single PDF page.
func (c *ImageConverter) ToPDF(data []byte, sourceExt string, opts PDFOptions) (*Result, error) {
	img, err := c.decode(data, sourceExt)
	if err != nil {
		return nil, adapterErrorf("image to pdf", err)
	}

	size, ok := pageSizes[opts.PageSize]
	if !ok {
		size = pageSizes["a4"]
	}
	pageW, pageH := size[0], size[1]
	orientation := "P"
	if opts.Landscape {
		pageW, pageH = pageH, pageW
		orientation = "L"
	}

	png, err := c.encode(img, "png")
	if err != nil {
		return nil, adapterErrorf("image to pdf", err)
	}

	bounds := img.Bounds()
	w, h, x, y := FitToPage(float64(bounds.Dx()), float64(bounds.Dy()), pageW, pageH, pdfMargin)

	sizeName := map[string]string{"a4": "A4", "letter": "Letter", "legal": "Legal"}[opts.PageSize]
	if sizeName == "" {
		sizeName = "A4"
	}

	pdf := gofpdf.New(orientation, "pt", sizeName, "")
	pdf.AddPage()
	imgOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("source", imgOpts, bytes.NewReader(png))
	pdf.ImageOptions("source", x, y, w, h, false, imgOpts, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, adapterErrorf("image to pdf", fmt.Errorf("pdf encoding failed: %w", err))
	}
	return &Result{Bytes: buf.Bytes(), MIMEType: "application/pdf"}, nil
}
