package utils

import (
	"regexp"
	"strings"
)

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	trailingDigits    = regexp.MustCompile(`\s*\d+$`)
)

// payeePrefixes are rails/terminal markers banks glue in front of the counterparty
var payeePrefixes = []string{
	"POS ", "UPI-", "UPI/", "VPA ", "IMPS-", "IMPS/", "NEFT-", "NEFT/", "ECOM ",
}

// StripRailPrefix removes a leading payment rail marker such as "UPI-" or "POS ".
func StripRailPrefix(payeeRaw string) string {
	clean := strings.TrimSpace(payeeRaw)
	for _, p := range payeePrefixes {
		if strings.HasPrefix(strings.ToUpper(clean), p) {
			return strings.TrimSpace(clean[len(p):])
		}
	}
	return clean
}

// CleanPayeeName removes payment rail prefixes and trailing reference digits
func CleanPayeeName(payeeRaw string) string {
	if payeeRaw == "" {
		return ""
	}

	clean := StripRailPrefix(payeeRaw)
	clean = trailingDigits.ReplaceAllString(clean, "")

	return strings.TrimSpace(clean)
}

// Contains checks if text contains any of the given keywords
func Contains(text string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// CollapseWhitespace folds every whitespace run into one space and trims the ends.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
