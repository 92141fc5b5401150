// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pdiddy/statute-engine/internal/container"
)

// DefaultPDFImage is the container image used for PDF text extraction.
const DefaultPDFImage = "pdftotext:latest"

// PDFSource extracts plain text from PDF files by piping them through
// the pdftotext container image. It depends on a container.Runtime
// (docker or podman) injected at construction time.
type PDFSource struct {
	runtime container.Runtime
	image   string
}

// NewPDFSource creates a source that runs the given image under rt.
// An empty image selects DefaultPDFImage. The image must exist locally.
func NewPDFSource(rt container.Runtime, image string) (*PDFSource, error) {
	if image == "" {
		image = DefaultPDFImage
	}
	if err := rt.ImageExists(image); err != nil {
		return nil, fmt.Errorf("pdftotext image not available in %s: %w", rt.Name(), err)
	}
	return &PDFSource{runtime: rt, image: image}, nil
}

// Text pipes the PDF through pdftotext with layout preserved, reading
// from stdin and writing to stdout inside the container.
func (p *PDFSource) Text(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := p.runtime.Run(p.image, []string{"-layout", "-", "-"}, f, &out); err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", path, err)
	}

	if out.Len() == 0 {
		return "", fmt.Errorf("pdftotext produced empty output for %s", path)
	}

	return out.String(), nil
}
