package source

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/rotisserie/eris"
)

// TextExtractor converts a PDF file to text.
type TextExtractor interface {
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// PdfToText extracts text with the poppler pdftotext tool.
type PdfToText struct {
	binPath string
}

// NewPdfToText returns a PdfToText using binPath, or "pdftotext" from PATH.
func NewPdfToText(binPath string) *PdfToText {
	if binPath == "" {
		binPath = "pdftotext"
	}
	return &PdfToText{binPath: binPath}
}

// ExtractText runs pdftotext -layout and returns its output.
func (p *PdfToText) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	cmd := exec.CommandContext(ctx, p.binPath, "-layout", "-enc", "UTF-8", pdfPath, "-")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", eris.Wrapf(err, "source: pdftotext %s: %s", pdfPath, stderr.String())
	}
	return stdout.String(), nil
}
