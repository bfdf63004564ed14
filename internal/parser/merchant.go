package parser

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"paisometer/internal/models"
	"paisometer/internal/utils"
)

const (
	maxMerchantLen = 30

	// DefaultMinCapitalizedOffset is how far into the text a capitalized
	// phrase must start; anything earlier is usually the sender/bank name.
	DefaultMinCapitalizedOffset = 5
)

var (
	merchantDisallowed = regexp.MustCompile(`[^A-Za-z0-9 &.]`)
	capitalizedPhrase  = regexp.MustCompile(`[A-Z][a-zA-Z0-9&._\-]{2,}(?:\s+[A-Z][a-zA-Z0-9&._\-]{2,})?`)
)

// MerchantExtractor finds the counterparty of a transaction message
type MerchantExtractor struct {
	connectors []*regexp.Regexp
	stopWords  map[string]bool
	brands     []string
	jargon     map[string]bool

	// MinCapitalizedOffset rejects capitalized candidates starting at or before this byte offset.
	MinCapitalizedOffset int
}

// NewMerchantExtractor compiles the connector patterns from the vocabulary.
func NewMerchantExtractor(v Vocabulary) *MerchantExtractor {
	e := &MerchantExtractor{
		stopWords:            make(map[string]bool, len(v.StopWords)),
		brands:               v.Brands,
		jargon:               make(map[string]bool, len(v.BankingJargon)),
		MinCapitalizedOffset: DefaultMinCapitalizedOffset,
	}

	for _, c := range v.Connectors {
		e.connectors = append(e.connectors,
			regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(c)+`\s+([A-Za-z0-9 &_.\-()/']{2,60})`))
	}
	for _, w := range v.StopWords {
		e.stopWords[strings.ToLower(w)] = true
	}
	for _, j := range v.BankingJargon {
		e.jargon[strings.ToUpper(j)] = true
	}

	return e
}

// Extract returns the merchant label, or models.UnknownMerchant when nothing matches.
func (e *MerchantExtractor) Extract(text string) string {
	if m, ok := e.byConnector(text); ok {
		return m
	}
	if m, ok := e.byBrand(text); ok {
		return m
	}
	if m, ok := e.byCapitalization(text); ok {
		return m
	}
	return models.UnknownMerchant
}

// byConnector looks for "at Swiggy", "to Rahul", ... in connector order.
func (e *MerchantExtractor) byConnector(text string) (string, bool) {
	for _, pat := range e.connectors {
		m := pat.FindStringSubmatch(text)
		if len(m) < 2 || strings.TrimSpace(m[1]) == "" {
			continue
		}

		run := e.cutAtStopWord(m[1])
		clean := utils.StripRailPrefix(run)
		clean = merchantDisallowed.ReplaceAllString(clean, "")
		clean = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(clean), "."))
		clean = strings.TrimSpace(utils.Truncate(clean, maxMerchantLen))

		if len(clean) > 2 && !e.jargon[strings.ToUpper(clean)] {
			return clean, true
		}
	}
	return "", false
}

// cutAtStopWord keeps the words of run up to the next connector/stop word
// or the end of a sentence.
func (e *MerchantExtractor) cutAtStopWord(run string) string {
	var kept []string
	for _, word := range strings.Fields(run) {
		bare := strings.ToLower(strings.Trim(word, ".,()/'-"))
		if e.stopWords[bare] {
			break
		}
		kept = append(kept, word)
		if strings.HasSuffix(word, ".") && strings.Count(word, ".") == 1 {
			break
		}
	}
	return strings.Join(kept, " ")
}

func (e *MerchantExtractor) byBrand(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, b := range e.brands {
		brand := strings.ToLower(b)
		if brand != "" && strings.Contains(lower, brand) {
			// Casers carry state; one per call keeps Extract goroutine-safe.
			title := cases.Title(language.Und).String(brand)
			return utils.Truncate(title, maxMerchantLen), true
		}
	}
	return "", false
}

func (e *MerchantExtractor) byCapitalization(text string) (string, bool) {
	for _, loc := range capitalizedPhrase.FindAllStringIndex(text, -1) {
		candidate := text[loc[0]:loc[1]]
		if e.jargon[strings.ToUpper(candidate)] {
			continue
		}
		if loc[0] <= e.MinCapitalizedOffset {
			continue
		}
		return utils.Truncate(candidate, maxMerchantLen), true
	}
	return "", false
}
