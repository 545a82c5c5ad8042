package core

import (
	"time"
)

// SentimentLabel is the tone of a message
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "Positive"
	SentimentNegative SentimentLabel = "Negative"
	SentimentNeutral  SentimentLabel = "Neutral"
)

// PriorityLabel is how quickly a message should be handled
type PriorityLabel string

const (
	PriorityUrgent PriorityLabel = "Urgent"
	PriorityNormal PriorityLabel = "Normal"
)

// Source records which path produced a value
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// Message represents an inbound support email
type Message struct {
	Sender     string    `json:"sender"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// Text returns the text that gets analysed: the subject and body separated
// by a newline, or just the body when there is no subject.
func (m *Message) Text() string {
	if m.Subject == "" {
		return m.Body
	}
	return m.Subject + "\n" + m.Body
}

// ContactMetadata holds contact identifiers and requirement flags found in a message
type ContactMetadata struct {
	Emails       []string `json:"emails"`
	Phones       []string `json:"phones"`
	Requirements []string `json:"requirements"`
}

// SentimentResult is the keyword-derived sentiment of a text
type SentimentResult struct {
	Label           SentimentLabel `json:"label"`
	Score           float64        `json:"score"`
	MatchedPositive []string       `json:"matchedPositive"`
	MatchedNegative []string       `json:"matchedNegative"`
}

// PriorityFactor is one lexicon category that matched
type PriorityFactor struct {
	Category string   `json:"category"`
	Matches  []string `json:"matches"`
}

// PriorityResult is the keyword-derived priority of a text
type PriorityResult struct {
	Label   PriorityLabel    `json:"label"`
	Factors []PriorityFactor `json:"factors"`
}

// Sources tells a caller which path produced each part of a TriageResult
type Sources struct {
	Analysis Source `json:"analysis"`
	Response Source `json:"response"`
}

// TriageResult is the outcome of triaging a single message.
//
// Sentiment, Priority and Metadata come from the model when it answered with
// a usable analysis and from the keyword fallback otherwise. SentimentDetail
// and PriorityDetail are always keyword-derived, so they may not explain a
// model-provided label.
type TriageResult struct {
	Sentiment         SentimentLabel  `json:"sentiment"`
	Priority          PriorityLabel   `json:"priority"`
	Metadata          ContactMetadata `json:"metadata"`
	SentimentDetail   SentimentResult `json:"sentimentDetail"`
	PriorityDetail    PriorityResult  `json:"priorityDetail"`
	SuggestedResponse string          `json:"suggestedResponse"`
	Sources           Sources         `json:"sources"`
}

// Status is where a record is in the operator workflow
type Status string

const (
	StatusPending   Status = "Pending"
	StatusResponded Status = "Responded"
)

// Record is a triaged message kept by the inbox
type Record struct {
	ID          string       `json:"id"`
	Message     Message      `json:"message"`
	Result      TriageResult `json:"result"`
	Status      Status       `json:"status"`
	Response    string       `json:"response"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	RespondedAt *time.Time   `json:"respondedAt,omitempty"`
}

// Reply is an outbound answer to a support message
type Reply struct {
	To      string
	Subject string
	Body    string
}

// SentimentCounts breaks a record set down by sentiment
type SentimentCounts struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// Stats summarises the inbox for the dashboard
type Stats struct {
	Total       int             `json:"total"`
	Resolved    int             `json:"resolved"`
	Pending     int             `json:"pending"`
	Urgent      int             `json:"urgent"`
	Sentiment   SentimentCounts `json:"sentiment"`
	Last24Hours int             `json:"last24Hours"`
}
