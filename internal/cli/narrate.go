package cli

import (
	"io"

	"github.com/spf13/cobra"

	"echoverse/internal/config"
	"echoverse/internal/rewrite"
	"echoverse/internal/tts"
)

// NarrateCmd creates the narrate command: the full text → rewrite → speech
// pipeline. The env parameter provides injectable dependencies for testing.
func NarrateCmd(env *Env) *cobra.Command {
	var (
		tone     string
		voice    string
		output   string
		play     bool
		verbose  bool
		parallel int
	)

	cmd := &cobra.Command{
		Use:   "narrate <text-file>",
		Short: "Rewrite text in a tone and narrate it to an MP3 file",
		Long: `Narrate converts a text file into a spoken MP3.

The text is first rewritten in the selected tone by the Gemini API, then
synthesized with Google Cloud Text-to-Speech. Long input is processed in
chunks; chunks whose rewrite fails are narrated verbatim so no text is lost.

Use "-" as the file argument to read from stdin.`,
		Example: `  echoverse narrate story.txt
  echoverse narrate story.txt -t Suspenseful -v Kate -o story.mp3
  echoverse narrate story.txt --play
  cat story.txt | echoverse narrate -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNarrate(cmd, env, args[0], tone, voice, output, play, verbose, parallel)
		},
	}

	cmd.Flags().StringVarP(&tone, "tone", "t", string(rewrite.ToneNeutral), "Narration tone: Neutral, Suspenseful, Inspiring")
	cmd.Flags().StringVarP(&voice, "voice", "v", VoiceLisa.String(), "Narrator voice: "+VoiceNames())
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: <input>.mp3)")
	cmd.Flags().BoolVar(&play, "play", false, "Play the narration after writing it")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Print per-chunk rewrite diagnostics")
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 1, "Concurrent synthesis requests (1-4)")

	return cmd
}

// runNarrate executes the narration pipeline.
// Validation order: input -> voice -> API key -> output path.
func runNarrate(cmd *cobra.Command, env *Env, inputPath, tone, voiceName, output string, play, verbose bool, parallel int) error {
	ctx := cmd.Context()

	input, err := readInputText(inputPath, env.Stdin)
	if err != nil {
		return err
	}

	v, err := ParseVoice(voiceName)
	if err != nil {
		return err
	}

	settings := loadSettings(env.Getenv)
	if settings.APIKey == "" {
		return ErrAPIKeyMissing
	}

	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		return err
	}
	outPath := config.ResolveOutputPath(output, cfg.OutputDir, deriveOutputPath(inputPath, ".mp3"))

	// Rewrite stage.
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

	// Synthesis stage.
	synth, err := env.SynthesizerFactory.NewSynthesizer(ctx, v)
	if err != nil {
		return err
	}
	if c, ok := synth.(io.Closer); ok {
		defer func() { _ = c.Close() }()
	}

	audio, err := tts.SynthesizeAll(ctx, synth, outcome.Text,
		tts.WithParallel(parallel),
		tts.WithProgress(synthesisProgress(env.Stderr)),
	)
	if err != nil {
		return err
	}

	if err := writeFileAtomic(outPath, audio); err != nil {
		return err
	}
	_, _ = successColour.Fprintf(env.Stdout, "Wrote %s (%d KB)\n", outPath, len(audio)/1024)

	if play {
		return env.Play(ctx, audio)
	}
	return nil
}
