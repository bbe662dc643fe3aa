// Package parser turns raw OCR text from a photographed receipt into a
// structured record: a vendor name plus an ordered list of purchased items.
//
// The pipeline is a pure, synchronous function over an in-memory string. No
// state is shared across calls, so it is safe to invoke from any number of
// goroutines. Extraction is best-effort: noisy input yields fewer items,
// never an error.
package parser

import (
	"strings"

	"github.com/snapledger/snapledger/internal/models"
)

// Parse converts newline-separated OCR text into a ParsedReceipt. It is
// total over any input: empty or degenerate text produces vendor "Unknown"
// and the single sentinel item.
func Parse(text string) *models.ParsedReceipt {
	lines := splitLines(text)

	vendor := DetectVendor(lines)
	items := ExtractItems(lines, vendor)

	if len(items) == 0 {
		items = []models.Item{models.SentinelItem()}
	}

	return &models.ParsedReceipt{
		Vendor: vendor,
		Items:  items,
	}
}

// splitLines trims each input line and drops empty ones, preserving
// document order.
func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
