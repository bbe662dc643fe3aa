package parser

import (
	"strings"
	"unicode"
)

// vendorSkipTerms reject candidate vendor lines outright: a line that equals
// or contains one of these is boilerplate, not a business name. The tail
// entries are observed OCR false positives.
var vendorSkipTerms = []string{
	"receipt", "invoice", "order", "sale", "your", "card", "here",
	"welcome", "thank", "visit", "www", "http", ".com",
	"customer copy", "duplicate",
}

// vendorFillerPhrases are rejected picks that occasionally slip through and
// trigger the fallback scan.
var vendorFillerPhrases = map[string]bool{
	"card here": true,
	"your":      true,
	"card":      true,
	"here":      true,
}

// structuralWords never appear in a business name on the vendor line.
var structuralWords = map[string]bool{
	"table":  true,
	"server": true,
	"check":  true,
	"guest":  true,
}

const (
	vendorScanWindow   = 15
	fallbackScanWindow = 20
)

// DetectVendor picks the most likely business name from the top of the
// receipt. The first line in the scan window that survives all rejection
// heuristics wins; ties are resolved by document order. Returns "Unknown"
// when no line qualifies.
func DetectVendor(lines []string) string {
	limit := vendorScanWindow
	if len(lines) < limit {
		limit = len(lines)
	}

	candidate := ""
	for i := 0; i < limit; i++ {
		line := lines[i]
		if len(line) < 3 || len(line) > 30 {
			continue
		}
		if IsNumericPunctuationOnly(line) {
			continue
		}
		lower := strings.ToLower(line)
		if containsAnyTerm(lower, vendorSkipTerms) {
			continue
		}
		words := strings.Fields(line)
		if len(words) < 1 || len(words) > 4 {
			continue
		}
		if line[0] >= '0' && line[0] <= '9' {
			continue
		}
		if !hasUppercase(line) {
			continue
		}
		if hasStructuralWord(words) {
			continue
		}
		candidate = line
		break
	}

	if candidate == "" {
		return "Unknown"
	}
	if vendorFillerPhrases[strings.ToLower(candidate)] {
		if v := fallbackVendor(lines); v != "" {
			return v
		}
		return "Unknown"
	}
	return candidate
}

// fallbackVendor rescans a wider window for a venue-type line when the first
// pass landed on a filler phrase.
func fallbackVendor(lines []string) string {
	limit := fallbackScanWindow
	if len(lines) < limit {
		limit = len(lines)
	}
	for i := 0; i < limit; i++ {
		line := lines[i]
		if len(line) < 5 {
			continue
		}
		lower := strings.ToLower(line)
		if strings.Contains(lower, "bar") ||
			strings.Contains(lower, "restaurant") ||
			strings.Contains(lower, "cafe") {
			return line
		}
	}
	return ""
}

func containsAnyTerm(lower string, terms []string) bool {
	for _, t := range terms {
		if lower == t || strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

func hasUppercase(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

func hasStructuralWord(words []string) bool {
	for _, w := range words {
		if structuralWords[strings.ToLower(w)] {
			return true
		}
	}
	return false
}
