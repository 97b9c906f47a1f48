package cli

import (
	"io"

	"github.com/spf13/cobra"

	"echoverse/internal/config"
	"echoverse/internal/tts"
)

// SpeakCmd creates the speak command, which synthesizes text verbatim,
// skipping the rewrite stage.
func SpeakCmd(env *Env) *cobra.Command {
	var (
		voice    string
		output   string
		play     bool
		parallel int
	)

	cmd := &cobra.Command{
		Use:   "speak <text-file>",
		Short: "Narrate text verbatim without rewriting it",
		Long: `Speak synthesizes the text exactly as written, without the rewrite stage.
No Gemini API key is needed; only Google Cloud Text-to-Speech credentials.

Use "-" as the file argument to read from stdin.`,
		Example: `  echoverse speak script.txt -v Michael
  echoverse speak script.txt --play
  echo "Hello there" | echoverse speak -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSpeak(cmd, env, args[0], voice, output, play, parallel)
		},
	}

	cmd.Flags().StringVarP(&voice, "voice", "v", VoiceLisa.String(), "Narrator voice: "+VoiceNames())
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: <input>.mp3)")
	cmd.Flags().BoolVar(&play, "play", false, "Play the narration after writing it")
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 1, "Concurrent synthesis requests (1-4)")

	return cmd
}

func runSpeak(cmd *cobra.Command, env *Env, inputPath, voiceName, output string, play bool, parallel int) error {
	ctx := cmd.Context()

	input, err := readInputText(inputPath, env.Stdin)
	if err != nil {
		return err
	}

	v, err := ParseVoice(voiceName)
	if err != nil {
		return err
	}

	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		return err
	}
	outPath := config.ResolveOutputPath(output, cfg.OutputDir, deriveOutputPath(inputPath, ".mp3"))

	synth, err := env.SynthesizerFactory.NewSynthesizer(ctx, v)
	if err != nil {
		return err
	}
	if c, ok := synth.(io.Closer); ok {
		defer func() { _ = c.Close() }()
	}

	audio, err := tts.SynthesizeAll(ctx, synth, input,
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
