package parser

import (
	"regexp"
	"strings"
	"time"
)

// Candidate is one (matched text, resolved time) pair produced by a fuzzy
// date search over a message.
type Candidate struct {
	Text string
	Time time.Time
}

// DateResolver turns natural-language date expressions into times.
// ResolveToken resolves a single token ("yesterday") against a reference
// time; Search scans free text for date expressions anywhere in it.
type DateResolver interface {
	ResolveToken(token string, now time.Time) (time.Time, bool)
	Search(text string, now time.Time) []Candidate
}

var explicitPatterns = []struct {
	re     *regexp.Regexp
	layout string
}{
	{regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`), "2006-01-02"},
	{regexp.MustCompile(`^\d{1,2}\.\d{1,2}\.\d{4}`), "2.1.2006"},
}

// DateExtractor finds a date expression anchored at the start of a message.
type DateExtractor struct {
	resolver DateResolver
}

func NewDateExtractor(resolver DateResolver) *DateExtractor {
	return &DateExtractor{resolver: resolver}
}

// Extract returns the date found at position 0 of msg and the number of
// bytes it consumed. Strategies are tried in order, first match wins:
// explicit anchored formats, a single natural-language leading token, then
// a fuzzy search constrained to prefix matches. Resolver failures degrade
// to "no match" for that strategy only.
func (e *DateExtractor) Extract(msg string, now time.Time) (time.Time, int, bool) {
	if msg == "" {
		return time.Time{}, 0, false
	}

	for _, p := range explicitPatterns {
		match := p.re.FindString(msg)
		if match == "" {
			continue
		}
		// A pattern hit that fails strict parsing (month 13) is no match.
		parsed, err := time.Parse(p.layout, match)
		if err == nil {
			return parsed, len(match), true
		}
	}

	lower := strings.ToLower(msg)

	if fields := strings.Fields(msg); len(fields) > 0 {
		token := strings.TrimRight(fields[0], ",.;")
		if token != "" {
			if parsed, ok := e.resolver.ResolveToken(token, now); ok &&
				strings.HasPrefix(lower, strings.ToLower(token)) {
				return parsed, len(token), true
			}
		}
	}

	for _, cand := range e.resolver.Search(msg, now) {
		matched := strings.TrimRight(strings.TrimSpace(cand.Text), ",.;")
		if matched == "" {
			continue
		}
		// Guard against the resolver matching mid-message substrings.
		if strings.HasPrefix(lower, strings.ToLower(matched)) {
			return cand.Time, len(matched), true
		}
	}

	return time.Time{}, 0, false
}
