// Package classifier derives sentiment and priority from message text using
// fixed keyword lexicons. Matching is case-insensitive substring search, so
// "cannot access" also counts towards "cannot".
package classifier

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mikey/support-triage/internal/core"
)

// Priority categories, in reporting order
const (
	CategoryUrgency  = "urgency"
	CategoryImpact   = "impact"
	CategoryBusiness = "business"
)

var (
	positiveWords = []string{"thanks", "great", "appreciate", "good", "helpful", "excellent", "pleased", "perfect", "resolved"}
	negativeWords = []string{"cannot", "error", "issue", "problem", "frustrated", "disappointed", "urgent", "failed", "wrong", "bad"}

	priorityFactors = []struct {
		category string
		words    []string
	}{
		{CategoryUrgency, []string{"immediately", "urgent", "critical", "emergency", "asap"}},
		{CategoryImpact, []string{"cannot access", "system down", "blocked", "broken", "error"}},
		{CategoryBusiness, []string{"revenue", "customer", "production", "deadline", "lost"}},
	}
)

// ClassifySentiment scores text against the positive and negative lexicons
func ClassifySentiment(text string) core.SentimentResult {
	lower := normalize(text)
	pos := matchAll(lower, positiveWords)
	neg := matchAll(lower, negativeWords)

	label := core.SentimentNeutral
	switch {
	case len(pos) > len(neg):
		label = core.SentimentPositive
	case len(neg) > len(pos):
		label = core.SentimentNegative
	}

	return core.SentimentResult{
		Label:           label,
		Score:           float64(len(pos)-len(neg)) / float64(max(len(pos)+len(neg), 1)),
		MatchedPositive: pos,
		MatchedNegative: neg,
	}
}

// ClassifyPriority marks text Urgent when any priority category matches
func ClassifyPriority(text string) core.PriorityResult {
	lower := normalize(text)
	factors := make([]core.PriorityFactor, 0, len(priorityFactors))
	for _, pf := range priorityFactors {
		if matches := matchAll(lower, pf.words); len(matches) > 0 {
			factors = append(factors, core.PriorityFactor{Category: pf.category, Matches: matches})
		}
	}

	label := core.PriorityNormal
	if len(factors) > 0 {
		label = core.PriorityUrgent
	}
	return core.PriorityResult{Label: label, Factors: factors}
}

// normalize lower-cases text. A Caser is stateful, so one is built per call.
func normalize(text string) string {
	return cases.Lower(language.Und).String(text)
}

// matchAll returns the words contained in text, in lexicon order
func matchAll(text string, words []string) []string {
	matched := make([]string, 0)
	for _, w := range words {
		if strings.Contains(text, w) {
			matched = append(matched, w)
		}
	}
	return matched
}
