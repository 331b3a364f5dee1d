package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
)

// buildPDF writes a minimal PDF with one page per entry. An empty entry makes
// a page whose content stream shows no text.
func buildPDF(pages ...string) []byte {
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}
	for i, text := range pages {
		objs = append(objs, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			5+2*i,
		))
		content := "q Q"
		if text != "" {
			content = fmt.Sprintf("BT /F1 12 Tf 72 712 Td (%s) Tj ET", text)
		}
		objs = append(objs, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func TestPDFTextLayer_ExtractText(t *testing.T) {
	tests := []struct {
		name  string
		pages []string
		want  string
	}{
		{"single page", []string{"Hello page one"}, "Hello page one"},
		{"pages joined with newline", []string{"First page", "Second page"}, "First page\nSecond page"},
		{"blank page contributes nothing", []string{"First page", "", "Third page"}, "First page\nThird page"},
		{"no text at all", []string{"", ""}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewPDFTextLayer().ExtractText(context.Background(), buildPDF(tt.pages...))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPDFTextLayer_Malformed(t *testing.T) {
	doc := buildPDF("Hello page one")
	inputs := map[string][]byte{
		"not a pdf":      []byte("plain text, not a document"),
		"truncated":      doc[:len(doc)/2],
		"bad xref start": bytes.Replace(doc, []byte("startxref\n"), []byte("startxref\n9"), 1),
	}

	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			if _, err := NewPDFTextLayer().ExtractText(context.Background(), in); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestPDFTextLayer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewPDFTextLayer().ExtractText(ctx, buildPDF("Hello page one")); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
