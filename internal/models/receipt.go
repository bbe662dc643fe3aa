package models

import "strconv"

// SentinelItemName marks a receipt where no line items could be extracted.
// The frontend uses it to prompt for manual entry.
const SentinelItemName = "No items detected - please add manually"

// Item is a single purchased line item recovered from receipt text.
// Quantity and Price are kept as decimal strings exactly as they appeared
// in the source text; Price always carries two fractional digits.
type Item struct {
	Quantity   string `json:"quantity"`
	Name       string `json:"name"`
	ItemNumber string `json:"itemNumber"`
	Price      string `json:"price"`
}

// ParsedReceipt is the result of parsing one receipt. Items preserves the
// order in which items were detected in the source text and is never empty:
// when nothing could be extracted it holds the single sentinel item.
type ParsedReceipt struct {
	Vendor string `json:"vendor"`
	Items  []Item `json:"items"`
}

// SentinelItem returns the placeholder item substituted when extraction
// yields nothing.
func SentinelItem() Item {
	return Item{
		Quantity: "1",
		Name:     SentinelItemName,
		Price:    "0.00",
	}
}

// StructuredReceipt is the pre-parsed receipt object returned by an LLM
// extraction service. When a scan produces one, it is taken as-is and the
// heuristic text pipeline is bypassed entirely.
type StructuredReceipt struct {
	Vendor   string           `json:"vendor"`
	Date     string           `json:"date"`
	Items    []StructuredItem `json:"items"`
	Subtotal float64          `json:"subtotal"`
	Tax      float64          `json:"tax"`
	Total    float64          `json:"total"`
}

// StructuredItem is one line item as emitted by the LLM extraction prompt.
type StructuredItem struct {
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	Total      float64 `json:"total"`
	ItemNumber string  `json:"item_number,omitempty"`
}

// ToParsed converts a structured extraction result into the common
// ParsedReceipt shape. This is a pure reshaping step: no field is run back
// through the text heuristics. The sentinel invariant still holds.
func (s *StructuredReceipt) ToParsed() *ParsedReceipt {
	vendor := s.Vendor
	if vendor == "" {
		vendor = "Unknown"
	}

	items := make([]Item, 0, len(s.Items))
	for _, it := range s.Items {
		if it.Name == "" {
			continue
		}
		qty := it.Quantity
		if qty == 0 {
			qty = 1
		}
		total := it.Total
		if total == 0 && it.UnitPrice != 0 {
			total = it.UnitPrice * qty
		}
		items = append(items, Item{
			Quantity:   strconv.FormatFloat(qty, 'f', -1, 64),
			Name:       it.Name,
			ItemNumber: it.ItemNumber,
			Price:      strconv.FormatFloat(total, 'f', 2, 64),
		})
	}

	if len(items) == 0 {
		items = []Item{SentinelItem()}
	}

	return &ParsedReceipt{Vendor: vendor, Items: items}
}
