package convert

import (
	"strings"
	"testing"
)

func TestTxtToHTMLWrapsLines(t *testing.T) {
	c := NewDocumentConverter("")
	res, err := c.TxtTo([]byte("alpha\nbeta\r\ngamma"), "html")
	if err != nil {
		t.Fatalf("TxtTo failed: %v", err)
	}
	body := string(res.Bytes)
	for _, want := range []string{"<p>alpha</p>", "<p>beta</p>", "<p>gamma</p>"} {
		if !strings.Contains(body, want) {
			t.Errorf("output missing %q: %s", want, body)
		}
	}
	if !strings.HasPrefix(body, "<!DOCTYPE html>") {
		t.Fatalf("missing html skeleton: %s", body)
	}
	if res.MIMEType != "text/html" {
		t.Fatalf("mime = %q, want text/html", res.MIMEType)
	}
}

func TestTxtToTxtPassesThrough(t *testing.T) {
	c := NewDocumentConverter("")
	input := []byte("line one\nline two")
	res, err := c.TxtTo(input, "txt")
	if err != nil {
		t.Fatalf("TxtTo failed: %v", err)
	}
	if string(res.Bytes) != string(input) {
		t.Fatalf("passthrough modified the bytes: %q", res.Bytes)
	}
}

// Angle brackets pass through unescaped. Documented behavior, not a
// bug to fix here.
func TestTxtToHTMLDoesNotEscape(t *testing.T) {
	c := NewDocumentConverter("")
	res, err := c.TxtTo([]byte("<b>bold</b>"), "html")
	if err != nil {
		t.Fatalf("TxtTo failed: %v", err)
	}
	if !strings.Contains(string(res.Bytes), "<p><b>bold</b></p>") {
		t.Fatalf("unexpected escaping: %s", res.Bytes)
	}
}

func TestPDFExtractIsAStub(t *testing.T) {
	c := NewDocumentConverter("")
	res, err := c.PDFExtract([]byte("%PDF-1.4 ..."), "txt")
	if err != nil {
		t.Fatalf("PDFExtract failed: %v", err)
	}
	if !strings.Contains(string(res.Bytes), "placeholder") {
		t.Fatalf("stub text missing: %s", res.Bytes)
	}

	res, err = c.PDFExtract(nil, "html")
	if err != nil {
		t.Fatalf("PDFExtract html failed: %v", err)
	}
	if !strings.HasPrefix(string(res.Bytes), "<!DOCTYPE html>") {
		t.Fatalf("html stub missing skeleton: %s", res.Bytes)
	}
}
