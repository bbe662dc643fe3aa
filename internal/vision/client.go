// Package vision wraps the Google Cloud Vision document text detection API.
// It is the OCR collaborator of the receipt pipeline: image bytes in, raw
// recognized text out. Parsing the text is someone else's job.
package vision

import (
	"context"
	"encoding/base64"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"
)

// Client performs OCR on receipt images.
type Client struct {
	service *vision.Service
	logger  *zap.Logger
}

// NewClient creates a Vision API client authenticated by API key.
func NewClient(ctx context.Context, apiKey string, logger *zap.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("vision api key is required")
	}

	service, err := vision.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create vision service: %w", err)
	}

	return &Client{
		service: service,
		logger:  logger,
	}, nil
}

// DetectText runs document text detection over the image and returns the
// full recognized text, newline-separated in reading order.
func (c *Client) DetectText(ctx context.Context, image []byte) (string, error) {
	c.logger.Debug("Running document text detection", zap.Int("image_bytes", len(image)))

	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{
			{
				Image: &vision.Image{
					Content: base64.StdEncoding.EncodeToString(image),
				},
				Features: []*vision.Feature{
					{Type: "DOCUMENT_TEXT_DETECTION"},
				},
			},
		},
	}

	resp, err := c.service.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		c.logger.Error("Vision API call failed", zap.Error(err))
		return "", fmt.Errorf("vision annotate failed: %w", err)
	}

	if len(resp.Responses) == 0 {
		return "", fmt.Errorf("empty response from vision api")
	}

	r := resp.Responses[0]
	if r.Error != nil {
		return "", fmt.Errorf("vision api error: %s", r.Error.Message)
	}
	if r.FullTextAnnotation == nil || r.FullTextAnnotation.Text == "" {
		c.logger.Warn("No text detected in image")
		return "", nil
	}

	c.logger.Info("Text detected",
		zap.Int("text_length", len(r.FullTextAnnotation.Text)))

	return r.FullTextAnnotation.Text, nil
}
