package classifier

import (
	"reflect"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/mikey/support-triage/internal/core"
)

func TestClassifySentiment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		label   core.SentimentLabel
		score   string
		pos     []string
		neg     []string
		summary string
	}{
		{
			name:    "empty text",
			text:    "",
			label:   core.SentimentNeutral,
			score:   "0.00",
			pos:     []string{},
			neg:     []string{},
			summary: "Neutral (0% neutral sentiment)",
		},
		{
			name:    "all positive",
			text:    "Thank you, your team was great and very helpful!",
			label:   core.SentimentPositive,
			score:   "1.00",
			pos:     []string{"great", "helpful"},
			neg:     []string{},
			summary: "Positive (100% positive sentiment)",
		},
		{
			name:    "negative outweighs positive",
			text:    "This is urgent, the system is down and I cannot access my account. Thanks for nothing.",
			label:   core.SentimentNegative,
			score:   "-0.33",
			pos:     []string{"thanks"},
			neg:     []string{"cannot", "urgent"},
			summary: "Negative (33.33333333333333% negative sentiment)",
		},
		{
			name:    "tie is neutral",
			text:    "Good news, the ERROR is gone",
			label:   core.SentimentNeutral,
			score:   "0.00",
			pos:     []string{"good"},
			neg:     []string{"error"},
			summary: "Neutral (0% neutral sentiment)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ClassifySentiment(tt.text)
			if got.Label != tt.label {
				t.Errorf("label = %q, want %q", got.Label, tt.label)
			}
			if got.FormattedScore() != tt.score {
				t.Errorf("score = %q, want %q", got.FormattedScore(), tt.score)
			}
			if !reflect.DeepEqual(got.MatchedPositive, tt.pos) {
				t.Errorf("positive = %v, want %v", got.MatchedPositive, tt.pos)
			}
			if !reflect.DeepEqual(got.MatchedNegative, tt.neg) {
				t.Errorf("negative = %v, want %v", got.MatchedNegative, tt.neg)
			}
			if got.Summary() != tt.summary {
				t.Errorf("summary = %q, want %q", got.Summary(), tt.summary)
			}
		})
	}
}

func TestClassifyPriority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		label   core.PriorityLabel
		reasons []string
		summary string
	}{
		{
			name:    "no match",
			text:    "Just wanted to say hello",
			label:   core.PriorityNormal,
			reasons: []string{},
			summary: "Normal priority",
		},
		{
			name:    "urgency and impact",
			text:    "This is urgent, the system is down and I cannot access my account. Thanks for nothing.",
			label:   core.PriorityUrgent,
			reasons: []string{"urgency: urgent", "impact: cannot access"},
			summary: "Urgent due to urgency: urgent and impact: cannot access",
		},
		{
			name:    "all categories",
			text:    "SYSTEM DOWN in production, we lost revenue, fix ASAP",
			label:   core.PriorityUrgent,
			reasons: []string{"urgency: asap", "impact: system down", "business: revenue, production, lost"},
			summary: "Urgent due to urgency: asap and impact: system down and business: revenue, production, lost",
		},
		{
			name:    "single business keyword is enough",
			text:    "A customer asked about invoices",
			label:   core.PriorityUrgent,
			reasons: []string{"business: customer"},
			summary: "Urgent due to business: customer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ClassifyPriority(tt.text)
			if got.Label != tt.label {
				t.Errorf("label = %q, want %q", got.Label, tt.label)
			}
			if !reflect.DeepEqual(got.Reasons(), tt.reasons) {
				t.Errorf("reasons = %v, want %v", got.Reasons(), tt.reasons)
			}
			if got.Summary() != tt.summary {
				t.Errorf("summary = %q, want %q", got.Summary(), tt.summary)
			}
		})
	}
}

// fillers contain no lexicon keyword, alone or joined by spaces
var fillers = []string{"hello", "account", "team", "order", "invoice", "please", "the", "my", "shipping"}

func TestProperty_NoKeywordsIsNeutralNormal(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		words := rapid.SliceOf(rapid.SampledFrom(fillers)).Draw(rt, "words")
		text := strings.Join(words, " ")

		s := ClassifySentiment(text)
		if s.Label != core.SentimentNeutral || s.Score != 0 {
			rt.Fatalf("sentiment = %q/%v, want Neutral/0", s.Label, s.Score)
		}
		if len(s.MatchedPositive) != 0 || len(s.MatchedNegative) != 0 {
			rt.Fatalf("unexpected indicators %v %v", s.MatchedPositive, s.MatchedNegative)
		}
		if p := ClassifyPriority(text); p.Label != core.PriorityNormal || len(p.Factors) != 0 {
			rt.Fatalf("priority = %q with %d factors, want Normal", p.Label, len(p.Factors))
		}
	})
}

func TestProperty_SentimentFollowsMatchCounts(t *testing.T) {
	vocab := append(append(append([]string{}, positiveWords...), negativeWords...), fillers...)

	rapid.Check(t, func(rt *rapid.T) {
		words := rapid.SliceOf(rapid.SampledFrom(vocab)).Draw(rt, "words")
		text := strings.Join(words, " ")

		wantPos, wantNeg := map[string]bool{}, map[string]bool{}
		for _, w := range words {
			for _, p := range positiveWords {
				if w == p {
					wantPos[w] = true
				}
			}
			for _, n := range negativeWords {
				if w == n {
					wantNeg[w] = true
				}
			}
		}

		s := ClassifySentiment(text)
		if len(s.MatchedPositive) != len(wantPos) || len(s.MatchedNegative) != len(wantNeg) {
			rt.Fatalf("matched %d/%d, want %d/%d", len(s.MatchedPositive), len(s.MatchedNegative), len(wantPos), len(wantNeg))
		}

		var want core.SentimentLabel
		switch {
		case len(wantPos) > len(wantNeg):
			want = core.SentimentPositive
		case len(wantNeg) > len(wantPos):
			want = core.SentimentNegative
		default:
			want = core.SentimentNeutral
		}
		if s.Label != want {
			rt.Fatalf("label = %q, want %q", s.Label, want)
		}
		if s.Score < -1 || s.Score > 1 {
			rt.Fatalf("score %v out of range", s.Score)
		}
	})
}

func TestProperty_AnyPriorityKeywordIsUrgent(t *testing.T) {
	var keywords []string
	for _, pf := range priorityFactors {
		keywords = append(keywords, pf.words...)
	}

	rapid.Check(t, func(rt *rapid.T) {
		before := rapid.SliceOf(rapid.SampledFrom(fillers)).Draw(rt, "before")
		kw := rapid.SampledFrom(keywords).Draw(rt, "keyword")
		after := rapid.SliceOf(rapid.SampledFrom(fillers)).Draw(rt, "after")

		text := strings.Join(append(append(before, strings.ToUpper(kw)), after...), " ")
		if p := ClassifyPriority(text); p.Label != core.PriorityUrgent {
			rt.Fatalf("priority for %q = %q, want Urgent", text, p.Label)
		}
	})
}
