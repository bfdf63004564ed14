package parser

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// numberPattern is a literal with optional comma grouping and 1-2 decimals.
const numberPattern = `\d+(?:,\d+)*(?:\.\d{1,2})?`

// AmountExtractor finds the first monetary amount in free text
type AmountExtractor struct {
	pattern *regexp.Regexp
	strip   *regexp.Regexp
}

// NewAmountExtractor builds the prefix/suffix amount pattern from the currency tokens.
func NewAmountExtractor(currencyTokens []string) *AmountExtractor {
	if len(currencyTokens) == 0 {
		currencyTokens = DefaultVocabulary().CurrencyTokens
	}

	quotedTokens := make([]string, 0, len(currencyTokens))
	prefixTokens := make([]string, 0, len(currencyTokens))
	suffixTokens := make([]string, 0, len(currencyTokens))
	for _, tok := range currencyTokens {
		quoted := regexp.QuoteMeta(tok)
		quotedTokens = append(quotedTokens, quoted)
		if isWordToken(tok) {
			// Rs / INR must not be the tail of a longer word, e.g. "hours 5".
			prefixTokens = append(prefixTokens, `\b`+quoted+`\.?`)
			suffixTokens = append(suffixTokens, quoted+`\b\.?`)
		} else {
			prefixTokens = append(prefixTokens, quoted)
			suffixTokens = append(suffixTokens, quoted)
		}
	}

	prefix := `(?:` + strings.Join(prefixTokens, "|") + `)\s*[:\-.]?\s*(` + numberPattern + `)`
	suffix := `(` + numberPattern + `)(?:\s?/-|\s*[:\-.]?\s*(?:` + strings.Join(suffixTokens, "|") + `))`

	return &AmountExtractor{
		pattern: regexp.MustCompile(`(?i)` + prefix + `|` + suffix),
		strip:   regexp.MustCompile(`(?i)` + strings.Join(quotedTokens, "|")),
	}
}

// Extract returns the first amount in document order. A matched "0" is
// returned as zero; rejecting it is the caller's business.
func (e *AmountExtractor) Extract(text string) (decimal.Decimal, bool) {
	m := e.pattern.FindStringSubmatch(text)
	if m == nil {
		return decimal.Zero, false
	}

	raw := m[1]
	if raw == "" {
		raw = m[2]
	}

	amount, err := decimal.NewFromString(e.normalize(raw))
	if err != nil || amount.IsNegative() {
		return decimal.Zero, false
	}
	return amount, true
}

func (e *AmountExtractor) normalize(raw string) string {
	s := strings.ReplaceAll(raw, ",", "")
	s = strings.ReplaceAll(s, "/-", "")
	s = e.strip.ReplaceAllString(s, "")
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func isWordToken(tok string) bool {
	for _, r := range tok {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return tok != ""
}
