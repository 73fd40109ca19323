package convert

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"sort"

	"github.com/Kagami/go-avif"
	ico "github.com/biessek/golang-ico"
	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	gavif "github.com/gen2brain/avif"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Lossy encoders (jpeg, webp) run at a fixed quality.
const encodeQuality = 90

// icoSizes are the resolutions generated by the ICO approximation,
// smallest first.
var icoSizes = []int{16, 32, 48, 64, 128, 256}

// ImageConverter performs raster transcodes and the image-derived
// conversions (ICO approximation, watermark pipeline, PDF embedding).
type ImageConverter struct{}

func NewImageConverter() *ImageConverter {
	return &ImageConverter{}
}

// decode decodes raster bytes, falling back to the webp, avif and ico
// decoders for sources the generic registry misses.
func (c *ImageConverter) decode(data []byte, sourceExt string) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err == nil {
		return img, nil
	}

	switch sourceExt {
	case "webp":
		if img, werr := webp.Decode(bytes.NewReader(data)); werr == nil {
			return img, nil
		}
	case "avif":
		if img, aerr := gavif.Decode(bytes.NewReader(data)); aerr == nil {
			return img, nil
		}
	case "ico":
		if img, ierr := ico.Decode(bytes.NewReader(data)); ierr == nil {
			return img, nil
		}
	}
	return nil, fmt.Errorf("failed to decode image: %w", err)
}

func (c *ImageConverter) encode(img image.Image, target string) ([]byte, error) {
	buf := &bytes.Buffer{}
	switch target {
	case "jpeg":
		if err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(encodeQuality)); err != nil {
			return nil, err
		}
	case "png":
		if err := imaging.Encode(buf, img, imaging.PNG); err != nil {
			return nil, err
		}
	case "webp":
		if err := webp.Encode(buf, img, &webp.Options{Quality: encodeQuality}); err != nil {
			return nil, err
		}
	case "avif":
		if err := avif.Encode(buf, img, &avif.Options{Quality: 25, Speed: 8}); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("no encoder for format %q", target)
	}
	return buf.Bytes(), nil
}

// Transcode re-encodes raster bytes into the target format.
func (c *ImageConverter) Transcode(data []byte, sourceExt, target string) (*Result, error) {
	img, err := c.decode(data, sourceExt)
	if err != nil {
		return nil, adapterErrorf("image transcode", err)
	}
	out, err := c.encode(img, target)
	if err != nil {
		return nil, adapterErrorf("image transcode", err)
	}
	return &Result{Bytes: out}, nil
}

// ToICO approximates an ICO: it renders the standard icon resolutions
// and returns the largest one as a single PNG. This is not a real
// multi-image ICO container.
func (c *ImageConverter) ToICO(img image.Image) (*Result, error) {
	sizes := append([]int(nil), icoSizes...)
	sort.Sort(sort.Reverse(sort.IntSlice(sizes)))

	var out []byte
	for _, size := range sizes {
		resized := imaging.Fit(img, size, size, imaging.Lanczos)
		encoded, err := c.encode(resized, "png")
		if err != nil {
			continue
		}
		if out == nil {
			out = encoded
		}
	}
	if out == nil {
		return nil, adapterErrorf("ico generation", fmt.Errorf("no resolution could be encoded"))
	}
	return &Result{Bytes: out, MIMEType: "image/x-icon"}, nil
}

// RemoveWatermark runs the fixed filter pipeline intended to visually
// obscure overlays. There is no watermark detection; every input gets
// the same treatment and the output is always PNG.
func (c *ImageConverter) RemoveWatermark(data []byte, sourceExt string) (*Result, error) {
	img, err := c.decode(data, sourceExt)
	if err != nil {
		return nil, adapterErrorf("watermark removal", err)
	}

	nrgba := imaging.Clone(img)
	nrgba = imaging.Sharpen(nrgba, 1.0)
	nrgba = medianFilter(nrgba)
	nrgba = imaging.Blur(nrgba, 0.8)
	nrgba = imaging.AdjustBrightness(nrgba, 3)
	nrgba = imaging.AdjustSaturation(nrgba, 10)
	nrgba = imaging.AdjustGamma(nrgba, 1.05)
	nrgba = imaging.Sharpen(nrgba, 0.8)

	out, err := c.encode(nrgba, "png")
	if err != nil {
		return nil, adapterErrorf("watermark removal", err)
	}
	return &Result{Bytes: out, MIMEType: "image/png"}, nil
}

// medianFilter applies a 3x3 median per channel, the denoise step of
// the watermark pipeline.
func medianFilter(src *image.NRGBA) *image.NRGBA {
	bounds := src.Bounds()
	dst := image.NewNRGBA(bounds)
	w, h := bounds.Dx(), bounds.Dy()

	var window [9]uint8
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for ch := 0; ch < 4; ch++ {
				n := 0
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						sx, sy := x+dx, y+dy
						if sx < 0 || sy < 0 || sx >= w || sy >= h {
							continue
						}
						window[n] = src.Pix[sy*src.Stride+sx*4+ch]
						n++
					}
				}
				sub := window[:n]
				sort.Slice(sub, func(i, j int) bool { return sub[i] < sub[j] })
				dst.Pix[y*dst.Stride+x*4+ch] = sub[n/2]
			}
		}
	}
	return dst
}
