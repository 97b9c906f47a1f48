// Package text provides input trimming and chunking for remote generation
// and synthesis calls. Lengths are measured in runes so a hard cut never
// splits a UTF-8 sequence.
package text

import (
	"strings"
	"unicode/utf8"
)

// Separator joins paragraphs within a chunk and chunks within reassembled
// output. It matches the paragraph boundary the chunker splits on.
const Separator = "\n\n"

// TruncationMarker is appended to input that was cut by Trim.
const TruncationMarker = "[TRUNCATED]"

// Trim caps s at maxChars runes. Empty input yields an empty string and
// input within the limit is returned unchanged. Truncated input gets a
// visible marker appended. Trim is idempotent for a fixed maxChars.
func Trim(s string, maxChars int) string {
	if s == "" || maxChars <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxChars]) + Separator + TruncationMarker
}

// Chunk splits s into ordered, non-empty chunks of at most maxChars runes.
//
// Paragraphs (blank-line separated blocks) are accumulated into a chunk
// while they fit together with the separator. A paragraph that alone
// exceeds maxChars is hard-cut into maxChars-sized slices. Blank
// paragraphs are dropped. Empty input yields no chunks.
func Chunk(s string, maxChars int) []string {
	if s == "" || maxChars <= 0 {
		return nil
	}

	var chunks []string
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, p := range strings.Split(s, Separator) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		pLen := utf8.RuneCountInString(p)

		if curLen+pLen+len(Separator) <= maxChars {
			if cur.Len() > 0 {
				cur.WriteString(Separator)
				curLen += len(Separator)
			}
			cur.WriteString(p)
			curLen += pLen
			continue
		}

		flush()
		if pLen <= maxChars {
			cur.WriteString(p)
			curLen = pLen
			continue
		}

		// Oversized paragraph: hard cut into maxChars slices.
		runes := []rune(p)
		for start := 0; start < len(runes); start += maxChars {
			end := min(start+maxChars, len(runes))
			chunks = append(chunks, string(runes[start:end]))
		}
	}

	flush()
	return chunks
}
