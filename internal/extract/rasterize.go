package extract

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
)

// PageImage is one rendered PDF page.
type PageImage struct {
	Index int
	PNG   []byte
}

// Rasterizer renders each page of a PDF to an image.
type Rasterizer interface {
	Rasterize(ctx context.Context, doc []byte, dpi int) ([]PageImage, error)
}

// PopplerRasterizer shells out to pdftoppm.
type PopplerRasterizer struct {
	binary string
}

func NewPopplerRasterizer() *PopplerRasterizer {
	return &PopplerRasterizer{binary: "pdftoppm"}
}

// Available reports whether pdftoppm is on PATH.
func (p *PopplerRasterizer) Available() bool {
	_, err := exec.LookPath(p.binary)
	return err == nil
}

func (p *PopplerRasterizer) Rasterize(ctx context.Context, doc []byte, dpi int) ([]PageImage, error) {
	if dpi <= 0 {
		dpi = 300
	}

	tmpDir, err := os.MkdirTemp("", "tamilprep-ocr-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	src := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(src, doc, 0o600); err != nil {
		return nil, fmt.Errorf("write temp pdf: %w", err)
	}

	prefix := filepath.Join(tmpDir, "page")
	cmd := exec.CommandContext(ctx, p.binary, "-png", "-r", strconv.Itoa(dpi), src, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, out)
	}

	files, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, err
	}
	// pdftoppm zero-pads page numbers to the width of the page count, so
	// lexical order is page order.
	sort.Strings(files)

	pages := make([]PageImage, 0, len(files))
	for i, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read page %d: %w", i+1, err)
		}
		pages = append(pages, PageImage{Index: i, PNG: data})
	}
	return pages, nil
}
