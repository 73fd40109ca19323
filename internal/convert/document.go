package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

const htmlSkeleton = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Converted Document</title>
</head>
<body>
%s
</body>
</html>`

// pdfExtractionStub stands in for real PDF text extraction, which is
// not implemented.
const pdfExtractionStub = "PDF text extraction produced no content. " +
	"This converter currently emits placeholder output for PDF sources."

// DocumentConverter handles docx, txt and pdf sources. DOCX goes
// through pandoc; txt is transformed in-process; pdf extraction is a
// placeholder.
type DocumentConverter struct {
	pandocPath string
}

func NewDocumentConverter(pandocPath string) *DocumentConverter {
	if pandocPath == "" {
		pandocPath = "pandoc"
	}
	return &DocumentConverter{pandocPath: pandocPath}
}

// DocxTo converts DOCX bytes to html or plain text via pandoc. Pandoc
// cannot read binary formats from a pipe, so the input goes through a
// temp file. Failures propagate.
func (c *DocumentConverter) DocxTo(ctx context.Context, data []byte, target string) (*Result, error) {
	to := "html"
	if target == "txt" {
		to = "plain"
	}

	tmp, err := os.CreateTemp("", "convert_input_*.docx")
	if err != nil {
		return nil, adapterErrorf("docx conversion", fmt.Errorf("failed to create temp file: %w", err))
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, adapterErrorf("docx conversion", fmt.Errorf("failed to write temp file: %w", err))
	}
	tmp.Close()

	cmd := exec.CommandContext(ctx, c.pandocPath, tmp.Name(), "-f", "docx", "-t", to, "--wrap=none")
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, adapterErrorf("docx conversion",
			fmt.Errorf("pandoc failed: %v, stderr: %s", err, stderr.String()))
	}

	if target == "txt" {
		return &Result{Bytes: out.Bytes(), MIMEType: "text/plain"}, nil
	}
	return &Result{Bytes: []byte(fmt.Sprintf(htmlSkeleton, out.String())), MIMEType: "text/html"}, nil
}

// TxtTo wraps each line of a plain-text file in a paragraph tag for
// html targets and passes the bytes through unchanged for txt targets.
// Angle brackets are intentionally not escaped.
func (c *DocumentConverter) TxtTo(data []byte, target string) (*Result, error) {
	if target == "txt" {
		return &Result{Bytes: data, MIMEType: "text/plain"}, nil
	}

	lines := strings.Split(string(data), "\n")
	var body strings.Builder
	for _, line := range lines {
		body.WriteString("<p>")
		body.WriteString(strings.TrimRight(line, "\r"))
		body.WriteString("</p>\n")
	}
	return &Result{
		Bytes:    []byte(fmt.Sprintf(htmlSkeleton, body.String())),
		MIMEType: "text/html",
	}, nil
}

// PDFExtract returns placeholder text for pdf sources; real extraction
// is not wired up.
func (c *DocumentConverter) PDFExtract(data []byte, target string) (*Result, error) {
	if target == "txt" {
		return &Result{Bytes: []byte(pdfExtractionStub), MIMEType: "text/plain"}, nil
	}
	body := "<p>" + pdfExtractionStub + "</p>\n"
	return &Result{
		Bytes:    []byte(fmt.Sprintf(htmlSkeleton, body)),
		MIMEType: "text/html",
	}, nil
}
