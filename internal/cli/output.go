package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"echoverse/internal/rewrite"
)

// Colour scheme for user-facing messages.
var (
	warnColour    = color.New(color.FgYellow)
	successColour = color.New(color.FgGreen)
)

// rewriteProgress returns a progress callback for the rewrite stage.
func rewriteProgress(w io.Writer) func(part, total int) {
	return func(part, total int) {
		_, _ = fmt.Fprintf(w, "  Rewriting part %d/%d...\n", part, total)
	}
}

// synthesisProgress returns a progress callback for the synthesis stage.
func synthesisProgress(w io.Writer) func(part, total int) {
	return func(part, total int) {
		_, _ = fmt.Fprintf(w, "  Synthesizing part %d/%d...\n", part, total)
	}
}

// warnAllFailed reports total rewrite failure; the pipeline continues with
// the original text, so this is a warning rather than an error.
func warnAllFailed(w io.Writer) {
	_, _ = warnColour.Fprintln(w, "Warning: rewrite failed for every part; narrating the original text")
}

// printDiagnostics dumps per-chunk failure details for --verbose.
func printDiagnostics(w io.Writer, diags []rewrite.Diagnostic) {
	for _, d := range diags {
		_, _ = fmt.Fprintf(w, "  part %d: status=%d body=%q", d.Part, d.Status, d.BodyPreview)
		if d.FallbackInfo != "" {
			_, _ = fmt.Fprintf(w, " client=%q", d.FallbackInfo)
		}
		_, _ = fmt.Fprintln(w)
	}
}

// readInputText reads the narration source: a file path, or stdin for "-".
// The result is validated to be non-empty after trimming.
func readInputText(path string, stdin io.Reader) (string, error) {
	var data []byte
	var err error

	if path == "-" {
		data, err = io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(path) // #nosec G304 -- user-specified input file
		if err != nil {
			if os.IsNotExist(err) {
				return "", fmt.Errorf("%s: %w", path, ErrFileNotFound)
			}
			return "", fmt.Errorf("failed to read input: %w", err)
		}
	}

	s := string(data)
	if strings.TrimSpace(s) == "" {
		return "", ErrEmptyInput
	}
	return s, nil
}

// deriveOutputPath converts an input path to an output path with ext.
// Stdin input ("-") gets a fixed default name.
func deriveOutputPath(inputPath, ext string) string {
	if inputPath == "-" {
		return "narration" + ext
	}
	base := filepath.Base(inputPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ext
}

// writeFileAtomic writes data to path, failing if the file already exists
// (O_EXCL) to prevent accidental overwrites. On write failure, the partial
// file is removed.
func writeFileAtomic(path string, data []byte) error {
	// #nosec G302 G304 -- user-specified output file with standard permissions
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%s: %w", path, ErrOutputExists)
		}
		return fmt.Errorf("cannot create output file: %w", err)
	}

	writeErr := func() error {
		defer func() { _ = f.Close() }()
		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}()

	if writeErr != nil {
		_ = os.Remove(path)
		return writeErr
	}
	return nil
}
