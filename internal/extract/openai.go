package extract

import (
	"context"
	"encoding/base64"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"github.com/snapledger/snapledger/internal/models"
	"go.uber.org/zap"
)

// OpenAIExtractor extracts structured receipt data using an OpenAI vision
// model.
type OpenAIExtractor struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAIExtractor creates an OpenAI-backed extractor.
func NewOpenAIExtractor(apiKey, model string, logger *zap.Logger) (*OpenAIExtractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAIExtractor{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}, nil
}

// ExtractReceipt sends the receipt image to the vision model and decodes the
// structured response.
func (e *OpenAIExtractor) ExtractReceipt(ctx context.Context, image []byte, mimeType string) (*models.StructuredReceipt, error) {
	e.logger.Debug("Extracting receipt with OpenAI", zap.Int("image_bytes", len(image)))

	if mimeType == "" {
		mimeType = "image/png"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		MaxTokens:   2048,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an expert at reading retail receipts. Extract itemized data accurately and respond with valid JSON only.",
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: receiptPrompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		e.logger.Error("OpenAI request failed", zap.Error(err))
		return nil, fmt.Errorf("openai extraction failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from openai")
	}

	receipt, err := decodeReceiptJSON(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	e.logger.Info("Receipt extracted with OpenAI",
		zap.String("vendor", receipt.Vendor),
		zap.Int("item_count", len(receipt.Items)))

	return receipt, nil
}
