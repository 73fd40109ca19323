package convert

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	ico "github.com/biessek/golang-ico"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// defaultCanvas is the raster size used when the caller does not
// override dimensions.
const defaultCanvas = 512

// placeholderSVG is served when an ICO cannot be decoded at all. The
// caller still receives HTTP success; the image itself states the
// failure.
const placeholderSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="256" height="256" viewBox="0 0 256 256">
  <rect width="256" height="256" fill="#f3f4f6"/>
  <text x="128" y="120" text-anchor="middle" font-family="sans-serif" font-size="18" fill="#6b7280">Conversion Failed</text>
  <text x="128" y="148" text-anchor="middle" font-family="sans-serif" font-size="12" fill="#9ca3af">The icon could not be decoded</text>
</svg>`

// VectorConverter rasterizes SVG sources and performs the best-effort
// icon conversions.
type VectorConverter struct {
	images *ImageConverter
}

func NewVectorConverter(images *ImageConverter) *VectorConverter {
	return &VectorConverter{images: images}
}

func (c *VectorConverter) render(data []byte, width, height int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse svg: %w", err)
	}

	if width <= 0 {
		width = defaultCanvas
	}
	if height <= 0 {
		height = defaultCanvas
	}

	icon.SetTarget(0, 0, float64(width), float64(height))
	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(width, height, scanner), 1.0)
	return rgba, nil
}

// Rasterize renders an SVG onto a canvas (512x512 unless overridden)
// and encodes it in the target raster format.
func (c *VectorConverter) Rasterize(data []byte, target string, width, height int) (*Result, error) {
	img, err := c.render(data, width, height)
	if err != nil {
		return nil, adapterErrorf("svg rasterize", err)
	}
	out, err := c.images.encode(img, target)
	if err != nil {
		return nil, adapterErrorf("svg rasterize", err)
	}
	return &Result{Bytes: out}, nil
}

// ToICO rasterizes an SVG and hands it to the ICO approximation.
func (c *VectorConverter) ToICO(data []byte) (*Result, error) {
	img, err := c.render(data, 0, 0)
	if err != nil {
		return nil, adapterErrorf("svg to ico", err)
	}
	return c.images.ToICO(img)
}

// ICOToSVG is best-effort only. It decodes the ICO as a raster image,
// re-encodes it as PNG and wraps that as a base64 data URI inside a
// minimal SVG shell. It is not a vector trace. When every decode
// attempt fails it emits the fixed placeholder SVG and reports the
// result as a fallback rather than an error.
func (c *VectorConverter) ICOToSVG(data []byte) (*Result, error) {
	img, err := ico.Decode(bytes.NewReader(data))
	if err != nil {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return &Result{
			Bytes:    []byte(placeholderSVG),
			MIMEType: "image/svg+xml",
			Fallback: true,
		}, nil
	}

	png, err := c.images.encode(img, "png")
	if err != nil {
		return &Result{
			Bytes:    []byte(placeholderSVG),
			MIMEType: "image/svg+xml",
			Fallback: true,
		}, nil
	}

	bounds := img.Bounds()
	svg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="%d" height="%d" viewBox="0 0 %d %d">
  <image width="%d" height="%d" xlink:href="data:image/png;base64,%s"/>
</svg>`,
		bounds.Dx(), bounds.Dy(), bounds.Dx(), bounds.Dy(),
		bounds.Dx(), bounds.Dy(), base64.StdEncoding.EncodeToString(png))

	return &Result{Bytes: []byte(svg), MIMEType: "image/svg+xml"}, nil
}
