package convert

import (
	"bytes"
	"image"
	"strings"
	"testing"
)

func TestRasterizeHonorsExplicitCanvas(t *testing.T) {
	v := NewVectorConverter(NewImageConverter())
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="4" height="4"><circle cx="2" cy="2" r="2" fill="#00f"/></svg>`)

	res, err := v.Rasterize(svg, "png", 64, 32)
	if err != nil {
		t.Fatalf("Rasterize failed: %v", err)
	}
	img, _, err := image.Decode(bytes.NewReader(res.Bytes))
	if err != nil {
		t.Fatalf("output not decodable: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 32 {
		t.Fatalf("canvas = %dx%d, want 64x32", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestRasterizeRejectsInvalidSVG(t *testing.T) {
	v := NewVectorConverter(NewImageConverter())
	if _, err := v.Rasterize([]byte("not xml at all %%%"), "png", 0, 0); err == nil {
		t.Fatal("expected error for invalid svg")
	}
}

func TestICOToSVGWrapsDecodableRaster(t *testing.T) {
	v := NewVectorConverter(NewImageConverter())
	// The adapter tolerates non-ICO rasters via the generic decoder.
	res, err := v.ICOToSVG(testPNG(t, 12, 12))
	if err != nil {
		t.Fatalf("ICOToSVG failed: %v", err)
	}
	if res.Fallback {
		t.Fatal("decodable input should not fall back")
	}
	body := string(res.Bytes)
	if !strings.Contains(body, "data:image/png;base64,") {
		t.Fatalf("missing embedded raster: %s", body)
	}
	if !strings.Contains(body, `width="12"`) {
		t.Fatalf("dimensions not carried over: %s", body)
	}
}

func TestICOToSVGPlaceholderOnGarbage(t *testing.T) {
	v := NewVectorConverter(NewImageConverter())
	res, err := v.ICOToSVG([]byte{0xde, 0xad, 0xbe, 0xef})
	if err != nil {
		t.Fatalf("expected soft failure, got error: %v", err)
	}
	if !res.Fallback {
		t.Fatal("result not marked as fallback")
	}
	if !strings.Contains(string(res.Bytes), "Conversion Failed") {
		t.Fatalf("placeholder marker missing: %s", res.Bytes)
	}
	if res.MIMEType != "image/svg+xml" {
		t.Fatalf("mime = %q", res.MIMEType)
	}
}
