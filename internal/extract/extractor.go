// Package extract provides structured receipt extraction through vision
// LLMs. An Extractor returns a pre-parsed receipt object; when one is
// available the heuristic text pipeline is bypassed entirely.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/snapledger/snapledger/internal/models"
)

// Extractor analyzes a receipt image and returns its structured contents.
type Extractor interface {
	ExtractReceipt(ctx context.Context, image []byte, mimeType string) (*models.StructuredReceipt, error)
}

// receiptPrompt instructs the model to return itemized receipt data as bare
// JSON matching models.StructuredReceipt.
const receiptPrompt = `Analyze this receipt image and extract the following information in JSON format:
{
  "vendor": "store name",
  "date": "YYYY-MM-DD",
  "items": [
    {
      "name": "item description",
      "quantity": 1.0,
      "unit_price": 0.00,
      "total": 0.00
    }
  ],
  "subtotal": 0.00,
  "tax": 0.00,
  "total": 0.00
}

Instructions:
- Extract ALL line items from the receipt
- For each item, include name, quantity, unit price, and total
- If quantity is not shown, use 1
- If unit price is not shown, use the total for that item
- Include subtotal, tax, and final total
- Use the exact date format YYYY-MM-DD
- Return ONLY valid JSON, no other text`

// decodeReceiptJSON parses a model response into a StructuredReceipt.
// Models wrap output in markdown fences or prose despite instructions, so
// the JSON object is located by its outermost braces first.
func decodeReceiptJSON(text string) (*models.StructuredReceipt, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	text = text[start : end+1]

	var receipt models.StructuredReceipt
	if err := json.Unmarshal([]byte(text), &receipt); err != nil {
		return nil, fmt.Errorf("failed to decode receipt JSON: %w", err)
	}

	return &receipt, nil
}
