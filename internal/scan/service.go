// Package scan orchestrates a receipt scan: image conversion, structured
// LLM extraction when configured, and the Vision OCR + text parsing
// fallback.
package scan

import (
	"context"
	"fmt"

	"github.com/snapledger/snapledger/internal/extract"
	"github.com/snapledger/snapledger/internal/models"
	"github.com/snapledger/snapledger/internal/parser"
	"github.com/snapledger/snapledger/internal/vision"
	"go.uber.org/zap"
)

// Source identifies which path produced a scan result.
const (
	SourceStructured = "structured"
	SourceOCR        = "ocr"
)

// TextDetector is the OCR collaborator.
type TextDetector interface {
	DetectText(ctx context.Context, image []byte) (string, error)
}

// Result is the outcome of one scan. RawText is only populated on the OCR
// path; the structured path never sees intermediate text.
type Result struct {
	Receipt *models.ParsedReceipt `json:"receipt"`
	RawText string                `json:"raw_text,omitempty"`
	Source  string                `json:"source"`
}

// Service runs receipt scans. The extractor is optional: without one, every
// scan goes through OCR and the heuristic parser.
type Service struct {
	detector  TextDetector
	extractor extract.Extractor
	renderPDF func(data []byte, page int) ([]byte, error)
	logger    *zap.Logger
}

// NewService creates a scan service. extractor may be nil.
func NewService(detector TextDetector, extractor extract.Extractor, logger *zap.Logger) *Service {
	return &Service{
		detector:  detector,
		extractor: extractor,
		renderPDF: vision.RenderPDFPage,
		logger:    logger,
	}
}

// Scan analyzes a receipt image and returns its structured contents.
//
// The structured extraction path is preferred when available; a pre-parsed
// receipt from it is reshaped as-is, never re-run through the text
// heuristics. On extraction failure the scan falls back to OCR + parsing
// rather than failing outright.
func (s *Service) Scan(ctx context.Context, image []byte, mimeType string) (*Result, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("empty image")
	}

	if mimeType == "application/pdf" {
		page, err := s.renderPDF(image, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to convert PDF receipt: %w", err)
		}
		image = page
		mimeType = "image/png"
	}

	if s.extractor != nil {
		structured, err := s.extractor.ExtractReceipt(ctx, image, mimeType)
		if err == nil {
			return &Result{
				Receipt: structured.ToParsed(),
				Source:  SourceStructured,
			}, nil
		}
		s.logger.Warn("Structured extraction failed, falling back to OCR", zap.Error(err))
	}

	text, err := s.detector.DetectText(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("text detection failed: %w", err)
	}

	return &Result{
		Receipt: parser.Parse(text),
		RawText: text,
		Source:  SourceOCR,
	}, nil
}
