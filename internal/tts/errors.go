package tts

import "errors"

// ErrEmptyText indicates there was no text left to synthesize after trimming.
var ErrEmptyText = errors.New("no text to synthesize")

// ErrNoAudio indicates the provider returned an empty audio payload.
var ErrNoAudio = errors.New("no audio produced")

// ErrSynthesis wraps a chunk that failed after exhausting its retries.
var ErrSynthesis = errors.New("speech synthesis failed")
