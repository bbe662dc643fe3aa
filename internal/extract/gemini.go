package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/snapledger/snapledger/internal/models"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiExtractor extracts structured receipt data using Google Gemini.
type GeminiExtractor struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *zap.Logger
}

// NewGeminiExtractor creates a Gemini-backed extractor.
func NewGeminiExtractor(ctx context.Context, apiKey, modelName string, logger *zap.Logger) (*GeminiExtractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash-exp"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.2)
	model.SetTopK(32)
	model.SetTopP(0.95)
	model.SetMaxOutputTokens(2048)

	return &GeminiExtractor{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// ExtractReceipt sends the receipt image to Gemini and decodes the
// structured response.
func (e *GeminiExtractor) ExtractReceipt(ctx context.Context, image []byte, mimeType string) (*models.StructuredReceipt, error) {
	e.logger.Debug("Extracting receipt with Gemini", zap.Int("image_bytes", len(image)))

	parts := []genai.Part{
		genai.ImageData(formatFromMIME(mimeType), image),
		genai.Text(receiptPrompt),
	}

	resp, err := e.model.GenerateContent(ctx, parts...)
	if err != nil {
		e.logger.Error("Gemini request failed", zap.Error(err))
		return nil, fmt.Errorf("gemini extraction failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	receipt, err := decodeReceiptJSON(sb.String())
	if err != nil {
		return nil, err
	}

	e.logger.Info("Receipt extracted with Gemini",
		zap.String("vendor", receipt.Vendor),
		zap.Int("item_count", len(receipt.Items)))

	return receipt, nil
}

// Close releases the underlying client.
func (e *GeminiExtractor) Close() error {
	return e.client.Close()
}

// formatFromMIME maps a MIME type to the bare format suffix genai expects.
func formatFromMIME(mimeType string) string {
	switch mimeType {
	case "image/jpeg", "image/jpg":
		return "jpeg"
	case "image/gif":
		return "gif"
	default:
		return "png"
	}
}
