package classify

import "testing"

func TestDetectKinds(t *testing.T) {
	cases := []struct {
		fileName string
		want     Kind
	}{
		{"photo.jpg", KindImage},
		{"photo.jpeg", KindImage},
		{"photo.png", KindImage},
		{"photo.webp", KindImage},
		{"photo.avif", KindImage},
		{"photo.gif", KindImage},
		{"photo.tiff", KindImage},
		{"icon.svg", KindVector},
		{"icon.ico", KindVector},
		{"clip.mp4", KindVideo},
		{"clip.avi", KindVideo},
		{"clip.mov", KindVideo},
		{"clip.webm", KindVideo},
		{"clip.mkv", KindVideo},
		{"clip.flv", KindVideo},
		{"track.mp3", KindAudio},
		{"track.wav", KindAudio},
		{"track.aac", KindAudio},
		{"track.ogg", KindAudio},
		{"track.flac", KindAudio},
		{"report.pdf", KindDocument},
		{"report.docx", KindDocument},
		{"report.doc", KindDocument},
		{"report.rtf", KindDocument},
		{"report.txt", KindDocument},
		{"app.js", KindSourceCode},
		{"app.ts", KindSourceCode},
		{"app.jsx", KindSourceCode},
		{"app.tsx", KindSourceCode},
		{"page.html", KindSourceCode},
		{"style.css", KindSourceCode},
		{"data.json", KindSourceCode},
		{"data.xml", KindSourceCode},
		{"conf.yaml", KindSourceCode},
		{"conf.yml", KindSourceCode},
		{"archive.zip", KindUnknown},
		{"noextension", KindUnknown},
		{"", KindUnknown},
	}

	for _, tc := range cases {
		if got := Detect(tc.fileName); got != tc.want {
			t.Errorf("Detect(%q) = %s, want %s", tc.fileName, got, tc.want)
		}
	}
}

func TestDetectIsCaseInsensitive(t *testing.T) {
	if Detect("photo.SVG") != Detect("photo.svg") {
		t.Fatalf("case-sensitive classification: %s vs %s", Detect("photo.SVG"), Detect("photo.svg"))
	}
	if got := Detect("photo.SVG"); got != KindVector {
		t.Fatalf("Detect(photo.SVG) = %s, want %s", got, KindVector)
	}
	if got := Detect("CLIP.MP4"); got != KindVideo {
		t.Fatalf("Detect(CLIP.MP4) = %s, want %s", got, KindVideo)
	}
}

func TestVectorCheckedBeforeImage(t *testing.T) {
	// svg and ico are in the image set too; the vector check wins.
	for _, name := range []string{"a.svg", "a.ico"} {
		if got := Detect(name); got != KindVector {
			t.Errorf("Detect(%q) = %s, want %s", name, got, KindVector)
		}
	}
}

func TestMIMEType(t *testing.T) {
	cases := map[string]string{
		"png":               "image/png",
		"jpg":               "image/jpeg",
		"jpeg":              "image/jpeg",
		"webp":              "image/webp",
		"avif":              "image/avif",
		"ico":               "image/x-icon",
		"svg":               "image/svg+xml",
		"pdf":               "application/pdf",
		"watermark-removed": "image/png",
		"mp4":               "video/mp4",
		"mp3":               "audio/mpeg",
		"html":              "text/html",
		"txt":               "text/plain",
		"js":                "text/javascript",
		"bogus":             "application/octet-stream",
	}
	for target, want := range cases {
		if got := MIMEType(target); got != want {
			t.Errorf("MIMEType(%q) = %q, want %q", target, got, want)
		}
	}
}

func TestExt(t *testing.T) {
	cases := map[string]string{
		"a.PNG":     "png",
		"a.b.c.txt": "txt",
		"noext":     "",
		".hidden":   "hidden",
	}
	for name, want := range cases {
		if got := Ext(name); got != want {
			t.Errorf("Ext(%q) = %q, want %q", name, got, want)
		}
	}
}
