package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormattedScore returns the score rounded to two decimals, e.g. "-0.33"
func (s SentimentResult) FormattedScore() string {
	return strconv.FormatFloat(s.Score, 'f', 2, 64)
}

// Summary returns a one-line description such as "Negative (33.33333333333333% negative sentiment)"
func (s SentimentResult) Summary() string {
	pct := strconv.FormatFloat(math.Abs(s.Score*100), 'f', -1, 64)
	return fmt.Sprintf("%s (%s%% %s sentiment)", s.Label, pct, strings.ToLower(string(s.Label)))
}

// Reasons returns one "<category>: kw, kw" entry per matched factor
func (p PriorityResult) Reasons() []string {
	reasons := make([]string, 0, len(p.Factors))
	for _, f := range p.Factors {
		reasons = append(reasons, f.Category+": "+strings.Join(f.Matches, ", "))
	}
	return reasons
}

// Summary returns "Urgent due to ..." or "Normal priority"
func (p PriorityResult) Summary() string {
	if len(p.Factors) == 0 {
		return "Normal priority"
	}
	return "Urgent due to " + strings.Join(p.Reasons(), " and ")
}
