package main

import (
	"fmt"
	"os"

	"github.com/mikey/support-triage/internal/di"
	"github.com/spf13/cobra"
)

func main() {
	flags := &di.CLIFlags{}

	rootCmd := &cobra.Command{
		Use:   "triage-cli",
		Short: "Triage customer support email from the command line",
		Long: `triage-cli classifies support email by sentiment and priority, extracts
contact details and drafts a reply. The language model is tried first and
keyword rules are used when it is unavailable.`,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()

	// LLM provider flags
	pf.StringVar(&flags.Provider, "provider", "gemini", "LLM provider (gemini, openai, anthropic, bedrock, offline)")
	pf.IntVar(&flags.MaxTokens, "max-tokens", 1000, "Maximum tokens for LLM response")
	pf.Float64Var(&flags.Temperature, "temperature", 0.1, "Temperature for LLM generation")
	pf.Float64Var(&flags.TopP, "top-p", 0.9, "Top-p for LLM generation")
	pf.IntVar(&flags.MaxBodySize, "max-body-size", 4096, "Maximum message size to send to LLM")

	// Bedrock flags
	pf.StringVar(&flags.BedrockRegion, "bedrock-region", "us-east-1", "AWS region for Bedrock")
	pf.StringVar(&flags.BedrockModelID, "bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Gemini flags
	pf.StringVar(&flags.GeminiAPIKey, "gemini-api-key", os.Getenv("GEMINI_API_KEY"), "API key for Google Gemini")
	pf.StringVar(&flags.GeminiModelName, "gemini-model", "gemini-1.5-flash", "Gemini model name")

	// OpenAI flags
	pf.StringVar(&flags.OpenAIAPIKey, "openai-api-key", os.Getenv("OPENAI_API_KEY"), "API key for OpenAI")
	pf.StringVar(&flags.OpenAIModelName, "openai-model", "gpt-4o-mini", "OpenAI model name")
	pf.StringVar(&flags.OpenAIBaseURL, "openai-base-url", "", "OpenAI-compatible API base URL")

	// Anthropic flags
	pf.StringVar(&flags.AnthropicAPIKey, "anthropic-api-key", os.Getenv("ANTHROPIC_API_KEY"), "API key for Anthropic")
	pf.StringVar(&flags.AnthropicModelName, "anthropic-model", "claude-3-5-haiku-latest", "Anthropic model name")

	pf.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	pf.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	pf.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	rootCmd.AddCommand(analyzeCmd(flags))
	rootCmd.AddCommand(batchCmd(flags))
	rootCmd.AddCommand(mcpCmd(flags))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
