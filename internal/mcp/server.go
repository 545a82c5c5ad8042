// Package mcp exposes triage as MCP (Model Context Protocol) tools so AI
// assistants can classify support mail and read the inbox.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mikey/support-triage/internal/core"
)

// Inbox is the read side of the inbox used by the tools
type Inbox interface {
	List(ctx context.Context) ([]*core.Record, error)
	Stats(ctx context.Context, now time.Time) (*core.Stats, error)
}

// Server wraps the triage services and exposes them as MCP tools
type Server struct {
	server  *gomcp.Server
	triager core.Triager
	inbox   Inbox
	now     func() time.Time
}

// NewServer creates a new MCP server
func NewServer(triager core.Triager, inbox Inbox, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		triager: triager,
		inbox:   inbox,
		now:     time.Now,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "support-triage", Version: version},
		nil,
	)
	s.registerTools()

	return s
}

// Run serves MCP over stdio until the client disconnects or ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

type analyzeInput struct {
	Text    string `json:"text" jsonschema:"required,the message body to triage"`
	Subject string `json:"subject,omitempty" jsonschema:"the message subject"`
	Sender  string `json:"sender,omitempty" jsonschema:"the sender address"`
}

type analyzeOutput struct {
	Sentiment         string   `json:"sentiment"`
	Score             string   `json:"score"`
	Priority          string   `json:"priority"`
	PriorityReasons   []string `json:"priority_reasons"`
	Emails            []string `json:"emails"`
	Phones            []string `json:"phones"`
	Requirements      []string `json:"requirements"`
	SuggestedResponse string   `json:"suggested_response"`
	AnalysisSource    string   `json:"analysis_source"`
	ResponseSource    string   `json:"response_source"`
}

type listEmailsInput struct {
	Status   string `json:"status,omitempty" jsonschema:"filter by status (Pending, Responded)"`
	Priority string `json:"priority,omitempty" jsonschema:"filter by priority (Urgent, Normal)"`
}

type emailOutput struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Subject   string `json:"subject"`
	Sentiment string `json:"sentiment"`
	Priority  string `json:"priority"`
	Status    string `json:"status"`
	Received  string `json:"received"`
}

type listEmailsOutput struct {
	Emails []emailOutput `json:"emails"`
	Count  int           `json:"count"`
}

type getStatsInput struct{}

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "analyze_message",
		Description: "Classify a support message by sentiment and priority, extract contact details and draft a reply.",
	}, s.handleAnalyze)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_emails",
		Description: "List triaged support emails, urgent first, with optional status and priority filters.",
	}, s.handleListEmails)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_stats",
		Description: "Summarise the inbox: totals, resolved, pending, urgent, sentiment breakdown and the last 24 hours.",
	}, s.handleGetStats)
}

func (s *Server) handleAnalyze(ctx context.Context, _ *gomcp.CallToolRequest, input analyzeInput) (*gomcp.CallToolResult, analyzeOutput, error) {
	msg := &core.Message{Sender: input.Sender, Subject: input.Subject, Body: input.Text}
	result, err := s.triager.Triage(ctx, msg)
	if err != nil {
		var vErr *core.ValidationError
		if errors.As(err, &vErr) {
			return errorResult(vErr.Error()), analyzeOutput{}, nil
		}
		return errorResult(fmt.Sprintf("triaging message: %s", err)), analyzeOutput{}, nil
	}

	return nil, analyzeOutput{
		Sentiment:         string(result.Sentiment),
		Score:             result.SentimentDetail.FormattedScore(),
		Priority:          string(result.Priority),
		PriorityReasons:   result.PriorityDetail.Reasons(),
		Emails:            result.Metadata.Emails,
		Phones:            result.Metadata.Phones,
		Requirements:      result.Metadata.Requirements,
		SuggestedResponse: result.SuggestedResponse,
		AnalysisSource:    string(result.Sources.Analysis),
		ResponseSource:    string(result.Sources.Response),
	}, nil
}

func (s *Server) handleListEmails(ctx context.Context, _ *gomcp.CallToolRequest, input listEmailsInput) (*gomcp.CallToolResult, listEmailsOutput, error) {
	records, err := s.inbox.List(ctx)
	if err != nil {
		return errorResult(fmt.Sprintf("listing emails: %s", err)), listEmailsOutput{}, nil
	}

	out := listEmailsOutput{Emails: []emailOutput{}}
	for _, r := range records {
		if input.Status != "" && string(r.Status) != input.Status {
			continue
		}
		if input.Priority != "" && string(r.Result.Priority) != input.Priority {
			continue
		}
		out.Emails = append(out.Emails, emailOutput{
			ID:        r.ID,
			Sender:    r.Message.Sender,
			Subject:   r.Message.Subject,
			Sentiment: string(r.Result.Sentiment),
			Priority:  string(r.Result.Priority),
			Status:    string(r.Status),
			Received:  r.Message.ReceivedAt.Format(time.RFC3339),
		})
	}
	out.Count = len(out.Emails)

	return nil, out, nil
}

func (s *Server) handleGetStats(ctx context.Context, _ *gomcp.CallToolRequest, _ getStatsInput) (*gomcp.CallToolResult, core.Stats, error) {
	stats, err := s.inbox.Stats(ctx, s.now())
	if err != nil {
		return errorResult(fmt.Sprintf("computing stats: %s", err)), core.Stats{}, nil
	}
	return nil, *stats, nil
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
