package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"echoverse/internal/apierr"
	"echoverse/internal/cli"
	"echoverse/internal/rewrite"
	"echoverse/internal/tts"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	ExitOK         = 0
	ExitGeneral    = 1
	ExitUsage      = 2
	ExitSetup      = 3
	ExitValidation = 4
	ExitSynthesis  = 5
	ExitInterrupt  = 130
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// Context with signal cancellation.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Create the CLI environment with production defaults.
	env := cli.DefaultEnv()

	// Root command.
	rootCmd := &cobra.Command{
		Use:     "echoverse",
		Short:   "Turn text into tone-shaped audio narration",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Silence Cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Subcommands.
	rootCmd.AddCommand(cli.NarrateCmd(env))
	rootCmd.AddCommand(cli.RewriteCmd(env))
	rootCmd.AddCommand(cli.SpeakCmd(env))
	rootCmd.AddCommand(cli.ConfigCmd(env))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps errors to exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	// Check for context cancellation (interrupt).
	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	// Usage errors (ExitUsage = 2): Cobra flag/arg parsing errors.
	if isCobraUsageError(err) {
		return ExitUsage
	}

	// Setup errors (ExitSetup = 3).
	if errors.Is(err, cli.ErrAPIKeyMissing) || errors.Is(err, rewrite.ErrEmptyAPIKey) {
		return ExitSetup
	}

	// Validation errors (ExitValidation = 4).
	if errors.Is(err, cli.ErrInvalidVoice) || errors.Is(err, cli.ErrFileNotFound) ||
		errors.Is(err, cli.ErrEmptyInput) || errors.Is(err, cli.ErrOutputExists) ||
		errors.Is(err, tts.ErrEmptyText) {
		return ExitValidation
	}

	// Synthesis and API errors (ExitSynthesis = 5).
	if errors.Is(err, tts.ErrSynthesis) || errors.Is(err, tts.ErrNoAudio) ||
		errors.Is(err, apierr.ErrRateLimit) || errors.Is(err, apierr.ErrTimeout) ||
		errors.Is(err, apierr.ErrAuthFailed) {
		return ExitSynthesis
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate Cobra usage errors.
// These patterns are stable across Cobra versions (tested with v1.8+).
// Cobra doesn't expose typed errors, so string matching is the only reliable approach.
var cobraUsageErrorPatterns = []string{
	"required flag",             // Missing required flag
	"unknown flag",              // Flag doesn't exist
	"unknown shorthand",         // Short flag doesn't exist
	"flag needs an argument",    // Flag provided without value
	"invalid argument",          // Invalid flag value type
	"if any flags in the group", // Mutually exclusive flag violation
	"accepts ",                  // Wrong number of arguments (e.g., "accepts 1 arg(s)")
	"requires at least",         // Too few arguments
	"requires at most",          // Too many arguments
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
