package cli

import "errors"

// CLI-specific sentinel errors.
// These are validation/usage errors that don't belong to domain packages.

var (
	// ErrAPIKeyMissing indicates GEMINI_API_KEY environment variable is not set.
	ErrAPIKeyMissing = errors.New("GEMINI_API_KEY environment variable not set")

	// ErrFileNotFound indicates the specified input file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrEmptyInput indicates the input text is empty after trimming.
	ErrEmptyInput = errors.New("input text is empty")

	// ErrOutputExists indicates the output file already exists.
	ErrOutputExists = errors.New("output file already exists")
)
