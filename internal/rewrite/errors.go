package rewrite

import "errors"

// ErrEmptyAPIKey indicates that the API key was not provided.
var ErrEmptyAPIKey = errors.New("API key is required")
