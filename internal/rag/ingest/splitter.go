package ingest

import (
	"strings"
	"unicode/utf8"
)

// Separators ordered from "best" to "worst" for semantic meaning.
// The empty separator splits between characters.
var defaultSeparators = []string{"\n\n", "\n", ".", "?", "!", " ", ""}

type textSplitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

func newTextSplitter(chunkSize, overlap int) *textSplitter {
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &textSplitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: defaultSeparators,
	}
}

// split never returns an empty or whitespace only chunk. Lengths are counted
// in characters, not bytes.
func (s *textSplitter) split(text string) []string {
	var out []string
	for _, c := range s.splitRecursive(text, s.separators) {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out
}

func (s *textSplitter) splitRecursive(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var remaining []string
	for i, sep := range separators {
		if sep == "" {
			separator = ""
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			remaining = separators[i+1:]
			break
		}
	}

	var chunks []string
	var fitting []string
	for _, piece := range splitKeepSeparator(text, separator) {
		if charLen(piece) <= s.chunkSize {
			fitting = append(fitting, piece)
			continue
		}
		if len(fitting) > 0 {
			chunks = append(chunks, s.merge(fitting)...)
			fitting = nil
		}
		if len(remaining) == 0 {
			// a single token longer than the chunk size, keep it whole
			chunks = append(chunks, piece)
			continue
		}
		chunks = append(chunks, s.splitRecursive(piece, remaining)...)
	}
	if len(fitting) > 0 {
		chunks = append(chunks, s.merge(fitting)...)
	}
	return chunks
}

// merge packs consecutive pieces into chunks of at most chunkSize characters.
// Each new chunk starts with up to overlap characters worth of whole pieces
// taken from the end of the previous one.
func (s *textSplitter) merge(pieces []string) []string {
	var chunks []string
	var current []string
	total := 0

	for _, piece := range pieces {
		l := charLen(piece)
		if total+l > s.chunkSize && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, ""))
			for total > s.overlap || (total+l > s.chunkSize && total > 0) {
				total -= charLen(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += l
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, ""))
	}
	return chunks
}

// splitKeepSeparator cuts text after every occurrence of sep, so the
// separator stays at the end of the piece it terminates and the pieces
// concatenate back to text.
func splitKeepSeparator(text, sep string) []string {
	if sep == "" {
		pieces := make([]string, 0, len(text))
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
		return pieces
	}

	var pieces []string
	for {
		idx := strings.Index(text, sep)
		if idx < 0 {
			break
		}
		pieces = append(pieces, text[:idx+len(sep)])
		text = text[idx+len(sep):]
	}
	if text != "" {
		pieces = append(pieces, text)
	}
	return pieces
}

func charLen(s string) int {
	return utf8.RuneCountInString(s)
}
