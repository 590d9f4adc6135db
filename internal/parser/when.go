package parser

import (
	"strings"
	"time"
	"unicode"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// WhenResolver resolves natural-language date expressions with the
// olebedev/when rule engine (English plus common rules). Times come back
// naive, relative to the supplied reference time.
type WhenResolver struct {
	w *when.Parser
}

func NewWhenResolver() *WhenResolver {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &WhenResolver{w: w}
}

// ResolveToken resolves a single token such as "yesterday" or "monday".
// The whole token has to be consumed by the match; bare numbers are never
// dates in this grammar, they are amounts.
func (r *WhenResolver) ResolveToken(token string, now time.Time) (time.Time, bool) {
	if !hasLetter(token) {
		return time.Time{}, false
	}
	res, err := r.w.Parse(token, now)
	if err != nil || res == nil {
		return time.Time{}, false
	}
	if res.Index != 0 || len(res.Text) != len(token) {
		return time.Time{}, false
	}
	return res.Time, true
}

// Search scans the full text for a date expression. when reports a single
// best match; the extractor applies its own prefix guard on top.
func (r *WhenResolver) Search(text string, now time.Time) []Candidate {
	res, err := r.w.Parse(text, now)
	if err != nil || res == nil || !hasLetter(res.Text) {
		return nil
	}
	return []Candidate{{Text: res.Text, Time: res.Time}}
}

func hasLetter(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}
