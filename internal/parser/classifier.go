package parser

import (
	"regexp"
	"strings"
)

// skipKeywords is the boilerplate vocabulary. A line containing any of these
// terms (case-insensitive substring) is receipt metadata, not a purchasable
// item. This list is the main tuning surface of the parser: extend it here,
// never inside the extraction logic. It must stay read-only at runtime so
// concurrent parses need no locking.
var skipKeywords = []string{
	// totals and tax
	"subtotal", "sub-total", "total", "tax", "gst", "hst", "pst",
	// payment
	"cash", "credit", "debit", "visa", "mastercard", "amex", "discover",
	"change", "balance", "tender", "payment",
	// receipt boilerplate
	"thank", "receipt", "invoice", "order", "purchase",
	// card / terminal metadata
	"card", "auth", "approval", "terminal", "merchant", "reference",
	// address / phone fragments
	"phone", "tel:", "street", "avenue",
	// gratuity
	"gratuity", "tip", "service charge", "svc chg",
	// table service metadata
	"table", "server", "party", "guest", "check",
	// storefront filler
	"welcome", "visit", "book", "event",
}

// SkipKeywords returns a copy of the boilerplate vocabulary, for inspection
// and rule-by-rule testing.
func SkipKeywords() []string {
	out := make([]string, len(skipKeywords))
	copy(out, skipKeywords)
	return out
}

const numericPunctuation = " -().,:"

var (
	priceOnlyRe = regexp.MustCompile(`^\d+\.\d{2}$`)
	dateTimeRe  = regexp.MustCompile(`\d{1,2}[:/]\d{1,2}[:/]\d{2,4}`)
)

// IsNumericPunctuationOnly reports whether every character of the line is a
// digit or basic punctuation. Such lines carry no vendor or item text.
func IsNumericPunctuationOnly(line string) bool {
	for _, r := range line {
		if r >= '0' && r <= '9' {
			continue
		}
		if strings.ContainsRune(numericPunctuation, r) {
			continue
		}
		return false
	}
	return len(line) > 0
}

// IsPriceOnly reports whether the entire line is a single two-decimal amount,
// optionally prefixed by a currency symbol.
func IsPriceOnly(line string) bool {
	s := strings.TrimSpace(line)
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSpace(s)
	return priceOnlyRe.MatchString(s)
}

// ContainsSkipKeyword reports whether the line contains any boilerplate
// vocabulary term, case-insensitively.
func ContainsSkipKeyword(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range skipKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// ContainsDateTime reports whether the line contains a date- or time-like
// pattern such as 12:30 or 04/17/2025.
func ContainsDateTime(line string) bool {
	return dateTimeRe.MatchString(line)
}
