package receipt

import (
	"fmt"
	"log/slog"

	"github.com/hsatools/receipt-parse/internal/scanning"
)

// Service handles receipt parse requests: normalize the uploaded document,
// run the configured scanner, apply the uniform post-processing contract.
type Service struct {
	scanner scanning.Scanner
}

// NewService creates a new Service
func NewService(scanner scanning.Scanner) *Service {
	return &Service{scanner: scanner}
}

// ParseReceipt converts the uploaded document to a still image and extracts
// a ReceiptRecord with the configured scanner. The record is constructed
// fresh per request and has no identity beyond the response it is returned
// in.
func (s *Service) ParseReceipt(filename string, data []byte, contentType string) (*scanning.ReceiptRecord, error) {
	imageData, mimeType, err := scanning.PrepareImage(data, contentType, filename)
	if err != nil {
		slog.Error("Failed to convert receipt",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		return nil, err
	}

	record, err := s.scanner.ScanReceipt(imageData, mimeType)
	if err != nil {
		slog.Error("Failed to scan receipt",
			"filename", filename,
			"content_type", mimeType,
			"file_size", len(imageData),
			"error", err,
		)
		return nil, fmt.Errorf("scanning receipt: %w", err)
	}

	record.Normalize()
	return record, nil
}

// Method returns the active extraction backend name
func (s *Service) Method() string { return s.scanner.Method() }

// Model returns the active model identifier
func (s *Service) Model() string { return s.scanner.Model() }
