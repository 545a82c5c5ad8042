package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mikey/support-triage/internal/adapters/intake"
	"github.com/mikey/support-triage/internal/core"
	"github.com/mikey/support-triage/internal/di"
	"github.com/mikey/support-triage/internal/triage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func analyzeCmd(flags *di.CLIFlags) *cobra.Command {
	var (
		text     string
		jsonOut  bool
		deadline time.Duration
	)

	cmd := &cobra.Command{
		Use:   "analyze [email-file]",
		Short: "Triage one message",
		Long: `Triage one RFC 822 message read from a file or stdin, or the raw text
given with --text.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := di.BuildCLIContainer(flags)
			if err != nil {
				return err
			}

			return container.Invoke(func(logger *zap.Logger, pipeline *triage.Pipeline, gateway core.Gateway) error {
				defer logger.Sync()
				defer closeGateway(logger, gateway)

				msg, err := readMessage(cmd, args, text)
				if err != nil {
					return err
				}

				ctx, cancel := context.WithTimeout(cmd.Context(), deadline)
				defer cancel()

				start := time.Now()
				result, err := pipeline.Triage(ctx, msg)
				if err != nil {
					return err
				}

				if jsonOut {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(result)
				}
				printResult(cmd.OutOrStdout(), flags.Provider, msg, result, time.Since(start))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Analyze this text instead of reading a message")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the result as JSON")
	cmd.Flags().DurationVar(&deadline, "timeout", 60*time.Second, "Maximum time to spend on the message")

	return cmd
}

// readMessage returns the message named by args, or text when set
func readMessage(cmd *cobra.Command, args []string, text string) (*core.Message, error) {
	if text != "" {
		return &core.Message{Body: text, ReceivedAt: time.Now().UTC()}, nil
	}

	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()
		r = f
	}

	return intake.ParseMessage(r, "")
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	urgentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	positiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	negativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	neutralStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	replyStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

func sentimentStyle(label core.SentimentLabel) lipgloss.Style {
	switch label {
	case core.SentimentPositive:
		return positiveStyle
	case core.SentimentNegative:
		return negativeStyle
	default:
		return neutralStyle
	}
}

func priorityStyle(label core.PriorityLabel) lipgloss.Style {
	if label == core.PriorityUrgent {
		return urgentStyle
	}
	return normalStyle
}

func printResult(w io.Writer, provider string, msg *core.Message, result *core.TriageResult, duration time.Duration) {
	field := func(name, value string) {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render(name+":"), value)
	}

	fmt.Fprintln(w, headerStyle.Render("Message"))
	field("From", msg.Sender)
	field("Subject", msg.Subject)
	field("Body length", fmt.Sprintf("%d bytes", len(msg.Body)))

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("Triage"))
	field("Provider", provider)
	field("Sentiment", fmt.Sprintf("%s (score %s, %s)",
		sentimentStyle(result.Sentiment).Render(string(result.Sentiment)),
		result.SentimentDetail.FormattedScore(), result.Sources.Analysis))
	field("Priority", priorityStyle(result.Priority).Render(string(result.Priority)))
	field("Reason", result.PriorityDetail.Summary())
	field("Emails", strings.Join(result.Metadata.Emails, ", "))
	field("Phones", strings.Join(result.Metadata.Phones, ", "))
	field("Requirements", strings.Join(result.Metadata.Requirements, "; "))
	field("Processing time", duration.String())

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Suggested response (%s)", result.Sources.Response)))
	fmt.Fprintln(w, replyStyle.Render(result.SuggestedResponse))
}

func closeGateway(logger *zap.Logger, gateway core.Gateway) {
	if closer, ok := gateway.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close gateway", zap.Error(err))
		}
	}
}
