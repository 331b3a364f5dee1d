package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/stemsi/tamilprep-backend/internal/config"
)

// Sentinel errors for document uploads.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
)

const pdfMIME = "application/pdf"

var pdfMagic = []byte("%PDF-")

// MediaService validates and reads uploaded documents. Uploaded PDFs are held
// in memory for the request only and never written to disk.
type MediaService struct {
	cfg *config.Config
}

// NewMediaService creates a new MediaService.
func NewMediaService(cfg *config.Config) *MediaService {
	return &MediaService{cfg: cfg}
}

// ReadPDF checks the declared type, size and magic bytes of an upload and
// returns its contents.
func (s *MediaService) ReadPDF(file multipart.File, header *multipart.FileHeader) ([]byte, error) {
	contentType := header.Header.Get("Content-Type")
	if contentType != "" && contentType != pdfMIME && contentType != "application/octet-stream" {
		return nil, fmt.Errorf("%w: %s (allowed: %s)", ErrUnsupportedFileType, contentType, pdfMIME)
	}

	if header.Size > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, header.Size, s.cfg.MaxUploadBytes)
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, s.cfg.MaxUploadBytes)
	}

	if !bytes.HasPrefix(data, pdfMagic) {
		sniffed := http.DetectContentType(data)
		return nil, fmt.Errorf("%w: content looks like %s", ErrUnsupportedFileType, sniffed)
	}

	return data, nil
}
