// Package tokenizer counts tokens for budgeting conversation history windows.
package tokenizer

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

const defaultEncoding = "cl100k_base"

// Count returns the token count of text under the model's encoding. Unknown
// models fall back to cl100k_base, and if no encoding can be loaded at all a
// words-based estimate is used so callers never fail on counting.
func Count(text, model string) int {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(defaultEncoding)
	}
	if err != nil {
		return Estimate(text)
	}
	return len(enc.Encode(text, nil, nil))
}

// Estimate is a rough token count, about 4/3 tokens per word of English.
func Estimate(text string) int {
	words := strings.Fields(text)
	return max(len(words)*4/3, 1)
}
