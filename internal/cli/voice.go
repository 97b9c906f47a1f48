package cli

import (
	"errors"
	"fmt"
	"strings"
)

// Voice represents a validated narrator voice.
// Zero value is invalid and must not be used.
// Use ParseVoice to create from user input, or the pre-parsed constants.
type Voice struct {
	name         string
	ttsName      string
	languageCode string
}

// Compile-time interface compliance check.
var _ fmt.Stringer = Voice{}

// ErrInvalidVoice indicates an unknown voice name was specified.
var ErrInvalidVoice = errors.New("invalid voice")

// Pre-parsed voice constants mapping friendly names to Google TTS voices.
var (
	VoiceLisa    = Voice{name: "Lisa", ttsName: "en-GB-Neural2-A", languageCode: "en-GB"}
	VoiceMichael = Voice{name: "Michael", ttsName: "en-US-Neural2-D", languageCode: "en-US"}
	VoiceAllison = Voice{name: "Allison", ttsName: "en-US-Neural2-C", languageCode: "en-US"}
	VoiceKate    = Voice{name: "Kate", ttsName: "en-AU-Neural2-C", languageCode: "en-AU"}
)

// voices indexes the known voices by lowercase name.
var voices = map[string]Voice{
	"lisa":    VoiceLisa,
	"michael": VoiceMichael,
	"allison": VoiceAllison,
	"kate":    VoiceKate,
}

// VoiceNames returns the accepted voice names for help and error messages.
func VoiceNames() string {
	return "Lisa, Michael, Allison, Kate"
}

// ParseVoice validates and parses a voice name, case-insensitively.
// Returns ErrInvalidVoice if the name is not recognized.
func ParseVoice(s string) (Voice, error) {
	if s == "" {
		return Voice{}, fmt.Errorf("voice cannot be empty: %w", ErrInvalidVoice)
	}
	v, ok := voices[strings.ToLower(s)]
	if !ok {
		return Voice{}, fmt.Errorf("unknown voice %q (use one of: %s): %w", s, VoiceNames(), ErrInvalidVoice)
	}
	return v, nil
}

// String returns the friendly voice name.
func (v Voice) String() string {
	return v.name
}

// TTSName returns the provider voice identifier.
func (v Voice) TTSName() string {
	return v.ttsName
}

// LanguageCode returns the BCP-47 language code of the voice.
func (v Voice) LanguageCode() string {
	return v.languageCode
}

// IsZero returns true if this is the zero value (no voice set).
func (v Voice) IsZero() bool {
	return v.name == ""
}

// OrDefault returns the voice, or VoiceLisa if zero.
func (v Voice) OrDefault() Voice {
	if v.IsZero() {
		return VoiceLisa
	}
	return v
}
