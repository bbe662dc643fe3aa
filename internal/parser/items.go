package parser

import (
	"regexp"
	"strings"

	"github.com/snapledger/snapledger/internal/models"
)

var (
	// qty, free-text name, trailing price on one line: "2 APPLES 3.99"
	inlineQtyNamePriceRe = regexp.MustCompile(`^(\d+)\s+(.+?)\s+(\d+\.\d{2})\s*$`)
	// qty and name with no trailing price: "1 HARPOON IPA DRAFT"
	qtyNameRe = regexp.MustCompile(`^(\d+)\s+(.+)$`)
	// any prefix text followed by a price: "CHEESE BURGER 17.00"
	namePriceRe = regexp.MustCompile(`^(.+?)\s+\$?\s*(\d+\.\d{2})\s*$`)

	itemCodeRe   = regexp.MustCompile(`#\s*\d+`)
	skuRe        = regexp.MustCompile(`(?i)SKU:?\s*\d+`)
	leadingQtyRe = regexp.MustCompile(`^\d+\s+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	junkNameRe   = regexp.MustCompile(`^[\d\s\-\.\,\$]+$`)
)

// ExtractItems walks the lines with a single forward cursor and converts
// them into item records. Each successful pattern match consumes the lines
// it used, so a price line is never attributed twice. Standalone price lines
// with no preceding unmatched name are dropped; that loses genuinely
// orphaned prices but prevents double counting after a two-line match.
func ExtractItems(lines []string, vendor string) []models.Item {
	var items []models.Item

	i := 0
	for i < len(lines) {
		line := lines[i]

		// Skip conditions, checked before any pattern.
		if line == vendor ||
			ContainsSkipKeyword(line) ||
			ContainsDateTime(line) ||
			len(line) < 2 ||
			IsPriceOnly(line) {
			i++
			continue
		}

		// Pattern 1: inline qty + name + price.
		if m := inlineQtyNamePriceRe.FindStringSubmatch(line); m != nil {
			name := cleanItemName(m[2], false)
			if acceptableName(name) {
				items = append(items, models.Item{
					Quantity: m[1],
					Name:     name,
					Price:    m[3],
				})
				i++
				continue
			}
		}

		// Pattern 2: qty + name on this line, price alone on the next.
		if m := qtyNameRe.FindStringSubmatch(line); m != nil && i+1 < len(lines) && IsPriceOnly(lines[i+1]) {
			name := cleanItemName(m[2], false)
			if acceptableName(name) && !ContainsSkipKeyword(name) {
				items = append(items, models.Item{
					Quantity: m[1],
					Name:     name,
					Price:    priceFromLine(lines[i+1]),
				})
				i += 2
				continue
			}
		}

		// Pattern 3: name + price, quantity defaults to 1. The raw prefix is
		// keyword-checked before cleaning.
		if m := namePriceRe.FindStringSubmatch(line); m != nil && !ContainsSkipKeyword(m[1]) {
			name := cleanItemName(m[1], true)
			if acceptableName(name) {
				items = append(items, models.Item{
					Quantity: "1",
					Name:     name,
					Price:    m[2],
				})
				i++
				continue
			}
		}

		i++
	}

	return items
}

// cleanItemName strips item-code fragments and normalizes whitespace.
// stripLeadingQty additionally removes a leading quantity that a free-text
// prefix pattern may have captured.
func cleanItemName(name string, stripLeadingQty bool) string {
	name = itemCodeRe.ReplaceAllString(name, "")
	name = skuRe.ReplaceAllString(name, "")
	if stripLeadingQty {
		name = leadingQtyRe.ReplaceAllString(name, "")
	}
	name = whitespaceRe.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// acceptableName rejects names that are too short or purely
// numeric/punctuation/currency.
func acceptableName(name string) bool {
	return len(name) >= 2 && !junkNameRe.MatchString(name)
}

// priceFromLine extracts the two-decimal amount from a price-only line.
func priceFromLine(line string) string {
	s := strings.TrimSpace(line)
	s = strings.TrimPrefix(s, "$")
	return strings.TrimSpace(s)
}
