package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/otiai10/gosseract/v2"
)

type fakeRasterizer struct {
	pages []PageImage
	err   error
	dpi   int
}

func (f *fakeRasterizer) Rasterize(_ context.Context, _ []byte, dpi int) ([]PageImage, error) {
	f.dpi = dpi
	return f.pages, f.err
}

type fakeOCRClient struct {
	languages []string
	vars      map[gosseract.SettableVariable]string
	seen      []string
	current   string
	failOn    string
	closed    bool
}

func (c *fakeOCRClient) SetLanguage(langs ...string) error {
	c.languages = langs
	return nil
}

func (c *fakeOCRClient) SetVariable(key gosseract.SettableVariable, value string) error {
	if c.vars == nil {
		c.vars = map[gosseract.SettableVariable]string{}
	}
	c.vars[key] = value
	return nil
}

func (c *fakeOCRClient) SetImageFromBytes(data []byte) error {
	c.current = string(data)
	c.seen = append(c.seen, c.current)
	return nil
}

func (c *fakeOCRClient) Text() (string, error) {
	if c.current == c.failOn {
		return "", errors.New("recognition failed")
	}
	return "  text of " + c.current + " \n", nil
}

func (c *fakeOCRClient) Close() error {
	c.closed = true
	return nil
}

func newTestEngine(raster *fakeRasterizer, client *fakeOCRClient) *TesseractEngine {
	e := NewTesseractEngine(raster, 300)
	e.clientFactory = func() ocrClient { return client }
	return e
}

func pages(names ...string) []PageImage {
	out := make([]PageImage, len(names))
	for i, n := range names {
		out[i] = PageImage{Index: i, PNG: []byte(n)}
	}
	return out
}

func TestTesseractEngine_Recognize(t *testing.T) {
	raster := &fakeRasterizer{pages: pages("p1", "p2", "p3")}
	client := &fakeOCRClient{}
	e := newTestEngine(raster, client)

	got, err := e.Recognize(context.Background(), []byte("%PDF"), Request{Language: "tam+eng"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "text of p1\ntext of p2\ntext of p3"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if strings.Join(client.seen, ",") != "p1,p2,p3" {
		t.Fatalf("pages recognized out of order: %v", client.seen)
	}
	if len(client.languages) != 1 || client.languages[0] != "tam+eng" {
		t.Fatalf("language not set: %v", client.languages)
	}
	if raster.dpi != 300 || client.vars["user_defined_dpi"] != "300" {
		t.Fatalf("dpi not applied: raster %d, var %q", raster.dpi, client.vars["user_defined_dpi"])
	}
	if !client.closed {
		t.Fatal("client not closed")
	}
	if e.Name() != "tesseract" {
		t.Fatalf("name = %q", e.Name())
	}
}

func TestTesseractEngine_NoLanguageLeavesDefault(t *testing.T) {
	client := &fakeOCRClient{}
	e := newTestEngine(&fakeRasterizer{pages: pages("p1")}, client)

	if _, err := e.Recognize(context.Background(), nil, Request{}); err != nil {
		t.Fatal(err)
	}
	if client.languages != nil {
		t.Fatalf("SetLanguage called with %v", client.languages)
	}
}

func TestTesseractEngine_Errors(t *testing.T) {
	t.Run("rasterizer", func(t *testing.T) {
		rasterErr := errors.New("pdftoppm missing")
		e := newTestEngine(&fakeRasterizer{err: rasterErr}, &fakeOCRClient{})
		if _, err := e.Recognize(context.Background(), nil, Request{}); !errors.Is(err, rasterErr) {
			t.Fatalf("expected rasterizer error, got %v", err)
		}
	})

	t.Run("page", func(t *testing.T) {
		client := &fakeOCRClient{failOn: "p2"}
		e := newTestEngine(&fakeRasterizer{pages: pages("p1", "p2", "p3")}, client)
		_, err := e.Recognize(context.Background(), nil, Request{})
		if err == nil || !strings.Contains(err.Error(), "page 2") {
			t.Fatalf("expected page 2 error, got %v", err)
		}
		if !client.closed {
			t.Fatal("client not closed after failure")
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		e := newTestEngine(&fakeRasterizer{pages: pages("p1")}, &fakeOCRClient{})
		if _, err := e.Recognize(ctx, nil, Request{}); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})
}
