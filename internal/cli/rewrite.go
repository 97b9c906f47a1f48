package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"echoverse/internal/rewrite"
)

// RewriteCmd creates the rewrite command, which runs the text rewrite stage
// only and prints or writes the result without synthesizing audio.
func RewriteCmd(env *Env) *cobra.Command {
	var (
		tone    string
		output  string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "rewrite <text-file>",
		Short: "Rewrite text in a tone without narrating it",
		Long: `Rewrite sends the text through the Gemini API in the selected tone and
prints the result to stdout. Chunks that fail to rewrite are kept verbatim.

Use "-" as the file argument to read from stdin.`,
		Example: `  echoverse rewrite notes.txt -t Inspiring
  echoverse rewrite notes.txt -o rewritten.txt
  cat notes.txt | echoverse rewrite - -t Suspenseful`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRewrite(cmd, env, args[0], tone, output, verbose)
		},
	}

	cmd.Flags().StringVarP(&tone, "tone", "t", string(rewrite.ToneNeutral), "Rewrite tone: Neutral, Suspenseful, Inspiring")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the result to a file instead of stdout")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Print per-chunk rewrite diagnostics")

	return cmd
}

func runRewrite(cmd *cobra.Command, env *Env, inputPath, tone, output string, verbose bool) error {
	ctx := cmd.Context()

	input, err := readInputText(inputPath, env.Stdin)
	if err != nil {
		return err
	}

	settings := loadSettings(env.Getenv)
	if settings.APIKey == "" {
		return ErrAPIKeyMissing
	}

	rw, err := env.RewriterFactory.NewRewriter(settings, rewrite.WithProgress(rewriteProgress(env.Stderr)))
	if err != nil {
		return err
	}

	outcome, err := rw.Rewrite(ctx, input, rewrite.Tone(tone))
	if err != nil {
		return err
	}
	if outcome.AllFailed {
		warnAllFailed(env.Stderr)
	}
	if verbose && len(outcome.Diagnostics) > 0 {
		printDiagnostics(env.Stderr, outcome.Diagnostics)
	}

	if output != "" {
		if err := writeFileAtomic(output, []byte(outcome.Text+"\n")); err != nil {
			return err
		}
		_, _ = successColour.Fprintf(env.Stdout, "Wrote %s\n", output)
		return nil
	}

	_, err = fmt.Fprintln(env.Stdout, outcome.Text)
	return err
}
