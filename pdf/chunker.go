package pdf

import (
	"strings"
	"unicode/utf8"
)

// Chunking defaults tuned for embedding-sized retrieval passages.
const (
	DefaultMinChunkLength = 1000
	DefaultMaxChunkLength = 2000
	DefaultChunkOverlap   = 100
)

// ChunkConfig controls how extracted text is split. Chunks grow by whole
// sentences until MinLength is reached and never exceed MaxLength except
// when a single sentence is itself longer than MaxLength, in which case
// it is hard-split. Overlap carries the tail of each chunk into the next.
type ChunkConfig struct {
	MinLength int `json:"min_length" mapstructure:"min_length"`
	MaxLength int `json:"max_length" mapstructure:"max_length"`
	Overlap   int `json:"overlap" mapstructure:"overlap"`
}

// DefaultChunkConfig returns the chunking defaults.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		MinLength: DefaultMinChunkLength,
		MaxLength: DefaultMaxChunkLength,
		Overlap:   DefaultChunkOverlap,
	}
}

// Chunk splits text into sentence-aligned chunks per cfg. Zero or negative
// config fields fall back to the defaults. Returns nil for whitespace-only
// input.
func Chunk(text string, cfg ChunkConfig) []string {
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultMinChunkLength
	}
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = DefaultMaxChunkLength
	}
	if cfg.MaxLength < cfg.MinLength {
		cfg.MaxLength = cfg.MinLength
	}
	if cfg.Overlap < 0 {
		cfg.Overlap = 0
	}
	if cfg.Overlap >= cfg.MinLength {
		cfg.Overlap = cfg.MinLength - 1
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	sentences := splitSentences(text)

	var chunks []string
	var current strings.Builder

	// carried tracks overlap text seeded into current so a flush or the
	// final pass never emits a chunk that is pure carry-over.
	carried := ""
	flush := func() {
		chunk := strings.TrimSpace(current.String())
		current.Reset()
		if chunk == "" || chunk == carried {
			carried = ""
			return
		}
		chunks = append(chunks, chunk)
		carried = ""
		if cfg.Overlap > 0 && len(chunk) > cfg.Overlap {
			start := len(chunk) - cfg.Overlap
			for start < len(chunk) && !utf8.RuneStart(chunk[start]) {
				start++
			}
			carried = strings.TrimSpace(chunk[start:])
			current.WriteString(carried)
		}
	}

	for _, sentence := range sentences {
		// Hard-split sentences that cannot fit in any chunk, filling
		// whatever room the current chunk (including overlap carry) has
		// left. Cuts land on rune boundaries.
		for len(sentence) > cfg.MaxLength {
			room := cfg.MaxLength - current.Len()
			if current.Len() > 0 {
				room--
			}
			cut := 0
			if room > 0 {
				cut = runeBoundary(sentence, room)
			}
			if cut == 0 {
				if current.Len() == 0 {
					// MaxLength smaller than one rune; emit the rune whole.
					_, cut = utf8.DecodeRuneInString(sentence)
				} else {
					flush()
					continue
				}
			}
			if current.Len() > 0 {
				current.WriteString(" ")
			}
			current.WriteString(sentence[:cut])
			sentence = sentence[cut:]
			flush()
		}
		if sentence == "" {
			continue
		}

		if current.Len() > 0 && current.Len()+1+len(sentence) > cfg.MaxLength {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)

		if current.Len() >= cfg.MinLength {
			flush()
		}
	}

	if chunk := strings.TrimSpace(current.String()); chunk != "" && chunk != carried {
		chunks = append(chunks, chunk)
	}

	return chunks
}

// runeBoundary returns the largest cut index not exceeding max that does
// not split a multibyte rune.
func runeBoundary(s string, max int) int {
	if max >= len(s) {
		return len(s)
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return max
}

// splitSentences breaks text on sentence-ending punctuation followed by
// whitespace. Newlines collapse into spaces first so PDF line wrapping
// does not fragment sentences.
func splitSentences(text string) []string {
	text = strings.Join(strings.Fields(text), " ")

	var sentences []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			end := i + 1
			// Consume runs of closing punctuation.
			for end < len(text) && (text[end] == '.' || text[end] == '!' || text[end] == '?' || text[end] == '"' || text[end] == '\'' || text[end] == ')') {
				end++
			}
			if end >= len(text) || text[end] == ' ' {
				sentence := strings.TrimSpace(text[start:end])
				if sentence != "" {
					sentences = append(sentences, sentence)
				}
				start = end
				i = end
			}
		}
	}
	if tail := strings.TrimSpace(text[start:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}
